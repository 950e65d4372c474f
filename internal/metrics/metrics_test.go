package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/dnamc/internal/sim"
)

func TestAcceptance(t *testing.T) {
	m := NewAcceptance()
	if m.Value() != 0 {
		t.Error("expected zero before any sweep")
	}

	m.Observe(sim.Sample{Accepted: 3, Trials: 10})
	m.Observe(sim.Sample{Accepted: 7, Trials: 10})
	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestExtensionAndLateral(t *testing.T) {
	ext := NewExtension()
	lat := NewLateralRMS()

	for _, c := range []r3.Vec{{X: 3, Y: 4, Z: 10}, {X: 0, Y: 0, Z: 20}} {
		s := sim.Sample{Coord: c}
		ext.Observe(s)
		lat.Observe(s)
	}

	if got := ext.Value(); math.Abs(got-15) > 1e-12 {
		t.Errorf("mean extension = %f, want 15", got)
	}
	if got, want := lat.Value(), math.Sqrt(12.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("lateral rms = %f, want %f", got, want)
	}
}

func TestMeanLinkSkipsUntracked(t *testing.T) {
	m := NewMeanLink()
	m.Observe(sim.Sample{Link: 100})
	if !math.IsNaN(m.Value()) {
		t.Errorf("expected NaN without tracked sweeps, got %f", m.Value())
	}

	m.Observe(sim.Sample{Link: 2 * math.Pi, HasLink: true})
	m.Observe(sim.Sample{Link: 4 * math.Pi, HasLink: true})
	if got := m.Value(); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("mean link = %f turns, want 1.5", got)
	}
}

func TestDefaultNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 default metrics, got %d", len(seen))
	}
}
