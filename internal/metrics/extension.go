package metrics

import (
	"math"

	"github.com/san-kum/dnamc/internal/sim"
)

// Extension is the mean terminal z coordinate in Angstrom.
type Extension struct {
	name    string
	sum     float64
	samples int
}

func NewExtension() *Extension {
	return &Extension{name: "mean_extension"}
}

func (e *Extension) Name() string { return e.name }

func (e *Extension) Observe(s sim.Sample) {
	e.sum += s.Coord.Z
	e.samples++
}

func (e *Extension) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Extension) Reset() {
	e.sum = 0
	e.samples = 0
}

// LateralRMS is the root-mean-square distance of the terminus from the
// z axis.
type LateralRMS struct {
	name    string
	sumSq   float64
	samples int
}

func NewLateralRMS() *LateralRMS {
	return &LateralRMS{name: "lateral_rms"}
}

func (l *LateralRMS) Name() string { return l.name }

func (l *LateralRMS) Observe(s sim.Sample) {
	l.sumSq += s.Coord.X*s.Coord.X + s.Coord.Y*s.Coord.Y
	l.samples++
}

func (l *LateralRMS) Value() float64 {
	if l.samples == 0 {
		return 0
	}
	return math.Sqrt(l.sumSq / float64(l.samples))
}

func (l *LateralRMS) Reset() {
	l.sumSq = 0
	l.samples = 0
}
