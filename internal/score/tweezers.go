// Package score evaluates the energy of a chain held in magnetic/optical
// tweezers and implements the Metropolis acceptance test.
package score

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultKT is the thermal energy at 298 K in pN·Å.
const DefaultKT = 41.0

// ErrNonFinite indicates a NaN or Inf energy.
var ErrNonFinite = errors.New("score: non-finite energy")

// Chain is the part of a chain state an energy needs.
type Chain interface {
	TerminalCoordinate() r3.Vec
	LinkFuller() (float64, error)
}

// Functional maps a chain to a reduced (kT) energy.
type Functional interface {
	Evaluate(c Chain) (float64, error)
	IsEmpty() bool
}

// Tweezers combines a stretching force along +z, a harmonic torsional trap
// on the Fuller linking number and a harmonic lateral trap on the terminus.
// It is a value: changing the trap center builds a new Tweezers.
type Tweezers struct {
	Force              float64 // pN
	TorsionalStiffness float64 // kT/rad²
	XYStiffness        float64 // pN/Å
	KT                 float64 // pN·Å; zero means DefaultKT

	target    float64
	hasTarget bool
}

// WithTarget returns a copy centered on target (radians).
func (t Tweezers) WithTarget(target float64) Tweezers {
	t.target = target
	t.hasTarget = true
	return t
}

// WithoutTrap returns a copy with the torsional trap removed.
func (t Tweezers) WithoutTrap() Tweezers {
	t.TorsionalStiffness = 0
	t.target = 0
	t.hasTarget = false
	return t
}

// Target returns the trap center and whether one is set.
func (t Tweezers) Target() (float64, bool) { return t.target, t.hasTarget }

// Trapped reports whether the torsional term contributes.
func (t Tweezers) Trapped() bool { return t.hasTarget && t.TorsionalStiffness != 0 }

func (t Tweezers) IsEmpty() bool {
	return t.Force == 0 && t.TorsionalStiffness == 0 && t.XYStiffness == 0 && !t.hasTarget
}

func (t Tweezers) kT() float64 {
	if t.KT == 0 {
		return DefaultKT
	}
	return t.KT
}

func (t Tweezers) Evaluate(c Chain) (float64, error) {
	e := 0.0
	if t.Force != 0 || t.XYStiffness != 0 {
		r := c.TerminalCoordinate()
		e += (-t.Force*r.Z + 0.5*t.XYStiffness*(r.X*r.X+r.Y*r.Y)) / t.kT()
	}
	if t.Trapped() {
		lk, err := c.LinkFuller()
		if err != nil {
			return 0, err
		}
		d := lk - t.target
		e += 0.5 * t.TorsionalStiffness * d * d
	}
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return e, fmt.Errorf("%w: %v", ErrNonFinite, e)
	}
	return e, nil
}

func (t Tweezers) String() string {
	s := fmt.Sprintf("force=%.3gpN xy=%.3gpN/Å", t.Force, t.XYStiffness)
	if t.hasTarget {
		s += fmt.Sprintf(" trap=%.3gkT/rad² target=%.4f turns", t.TorsionalStiffness, t.target/(2*math.Pi))
	}
	return s
}
