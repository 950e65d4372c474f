package score

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

type fakeChain struct {
	r   r3.Vec
	lk  float64
	err error
}

func (f fakeChain) TerminalCoordinate() r3.Vec   { return f.r }
func (f fakeChain) LinkFuller() (float64, error) { return f.lk, f.err }

func TestTweezersIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		tw    Tweezers
		empty bool
	}{
		{"zero", Tweezers{}, true},
		{"force", Tweezers{Force: 1}, false},
		{"xy", Tweezers{XYStiffness: 0.1}, false},
		{"stiffness only", Tweezers{TorsionalStiffness: 1}, false},
		{"target only", Tweezers{}.WithTarget(0), false},
		{"trap removed", Tweezers{TorsionalStiffness: 1}.WithTarget(3).WithoutTrap(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tw.IsEmpty(); got != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestTweezersEnergy(t *testing.T) {
	c := fakeChain{r: r3.Vec{X: 1, Y: 2, Z: 100}, lk: 10}
	tw := Tweezers{Force: 2, XYStiffness: 0.5, TorsionalStiffness: 3, KT: 40}.WithTarget(8)

	got, err := tw.Evaluate(c)
	if err != nil {
		t.Fatal(err)
	}
	want := (-2*100+0.5*0.5*5)/40.0 + 0.5*3*4
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("energy = %f, want %f", got, want)
	}
}

func TestTweezersDefaultKT(t *testing.T) {
	c := fakeChain{r: r3.Vec{Z: DefaultKT}}
	got, _ := Tweezers{Force: 1}.Evaluate(c)
	if math.Abs(got+1) > 1e-12 {
		t.Errorf("energy = %f, want -1", got)
	}
}

func TestTweezersWithTargetIsValue(t *testing.T) {
	base := Tweezers{TorsionalStiffness: 1}.WithTarget(1)
	moved := base.WithTarget(2)
	if tg, _ := base.Target(); tg != 1 {
		t.Errorf("WithTarget mutated the original: target %f", tg)
	}
	if tg, _ := moved.Target(); tg != 2 {
		t.Errorf("moved target = %f", tg)
	}
}

func TestTweezersErrors(t *testing.T) {
	boom := errors.New("boom")
	tw := Tweezers{TorsionalStiffness: 1}.WithTarget(0)
	if _, err := tw.Evaluate(fakeChain{err: boom}); !errors.Is(err, boom) {
		t.Errorf("expected link error, got %v", err)
	}
	if _, err := tw.Evaluate(fakeChain{lk: math.NaN()}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
}

func TestMetropolis(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	if !Metropolis(r, 1, 0) || !Metropolis(r, 1, 1) {
		t.Error("downhill or flat moves must be accepted")
	}

	n, acc := 100000, 0
	for i := 0; i < n; i++ {
		if Metropolis(r, 0, 1) {
			acc++
		}
	}
	rate := float64(acc) / float64(n)
	if math.Abs(rate-math.Exp(-1)) > 0.01 {
		t.Errorf("uphill acceptance %f, want %f", rate, math.Exp(-1))
	}
}
