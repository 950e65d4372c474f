package sim

import "math"

// ramp walks a torsional trap center from the chain's linking number toward
// the requested one without passing it.
type ramp struct {
	target    float64
	current   float64
	increment float64
	cutoff    float64
	stats     RampStats
}

func newRamp(start, target, step float64) *ramp {
	inc := math.Copysign(step, target-start)
	if target == start {
		inc = 0
	}
	r := &ramp{
		target:    target,
		current:   start,
		increment: inc,
		cutoff:    math.Abs(inc) / 2,
	}
	r.stats = RampStats{
		Start:     start,
		Target:    target,
		Increment: inc,
		Cutoff:    r.cutoff,
		Centers:   []float64{start},
	}
	return r
}

// converged reports whether the trap center is within cutoff of the target.
func (r *ramp) converged() bool {
	return math.Abs(r.current-r.target) <= r.cutoff
}

// caught reports whether the chain's link has reached the current center.
func (r *ramp) caught(link float64) bool {
	return math.Abs(link-r.current) <= r.cutoff
}

func (r *ramp) advance() {
	r.current += r.increment
	r.stats.Adjustments++
	r.stats.Centers = append(r.stats.Centers, r.current)
}
