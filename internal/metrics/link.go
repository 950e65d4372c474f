package metrics

import (
	"math"

	"github.com/san-kum/dnamc/internal/sim"
)

// MeanLink averages the Fuller linking number in turns. Sweeps without
// topology tracking are skipped; the value is NaN when none were seen.
type MeanLink struct {
	name    string
	sum     float64
	samples int
}

func NewMeanLink() *MeanLink {
	return &MeanLink{name: "mean_link_turns"}
}

func (m *MeanLink) Name() string { return m.name }

func (m *MeanLink) Observe(s sim.Sample) {
	if !s.HasLink {
		return
	}
	m.sum += s.Link / (2 * math.Pi)
	m.samples++
}

func (m *MeanLink) Value() float64 {
	if m.samples == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.samples)
}

func (m *MeanLink) Reset() {
	m.sum = 0
	m.samples = 0
}
