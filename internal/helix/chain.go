package helix

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// conformation is one complete, self-consistent view of the chain.
type conformation struct {
	params   []Params
	frames   []Frame
	origins  []r3.Vec
	twist    float64
	wrFuller float64
}

func newConformation(steps int) *conformation {
	return &conformation{
		params:  make([]Params, steps),
		frames:  make([]Frame, steps+1),
		origins: make([]r3.Vec, steps+1),
	}
}

func (c *conformation) copyFrom(src *conformation) {
	copy(c.params, src.params)
	copy(c.frames, src.frames)
	copy(c.origins, src.origins)
	c.twist = src.twist
	c.wrFuller = src.wrFuller
}

// rebuild recomputes frames and origins downstream of step i.
func (c *conformation) rebuild(from int) {
	c.frames[0] = Identity()
	c.origins[0] = r3.Vec{}
	for i := from; i < len(c.params); i++ {
		rot, d := StepTransform(c.params[i])
		c.frames[i+1] = c.frames[i].Mul(rot)
		c.origins[i+1] = r3.Add(c.origins[i], c.frames[i].Apply(d))
	}
}

func (c *conformation) sumTwist() {
	c.twist = 0
	for _, p := range c.params {
		c.twist += p[Twist]
	}
}

// Chain is a base-pair-level model of a double helix with N base pairs and
// N-1 steps. The first base pair sits at the origin with the identity frame.
type Chain struct {
	committed *conformation
	staged    *conformation
	pending   int
	track     bool
}

// New creates a chain of n base pairs with every step set to p.
func New(n int, p Params) (*Chain, error) {
	if n < 1 {
		return nil, ErrTooShort
	}
	ps := make([]Params, n-1)
	for i := range ps {
		ps[i] = p
	}
	return FromParams(ps)
}

// FromParams creates a chain from explicit step parameters.
func FromParams(ps []Params) (*Chain, error) {
	for i, p := range ps {
		if !p.IsValid() {
			return nil, fmt.Errorf("step %d: %w", i, ErrInvalidParams)
		}
	}
	c := &Chain{
		committed: newConformation(len(ps)),
		staged:    newConformation(len(ps)),
		pending:   -1,
	}
	copy(c.committed.params, ps)
	c.committed.rebuild(0)
	c.committed.sumTwist()
	return c, nil
}

func (c *Chain) NumBasePairs() int { return len(c.committed.frames) }
func (c *Chain) NumSteps() int     { return len(c.committed.params) }

// view returns the staged conformation while a trial is pending.
func (c *Chain) view() *conformation {
	if c.pending >= 0 {
		return c.staged
	}
	return c.committed
}

func (c *Chain) check(i int, p Params) error {
	if i < 0 || i >= c.NumSteps() {
		return fmt.Errorf("%w: %d (steps=%d)", ErrStepIndex, i, c.NumSteps())
	}
	if !p.IsValid() {
		return fmt.Errorf("step %d: %w", i, ErrInvalidParams)
	}
	return nil
}

func (c *Chain) apply(conf *conformation, i int, p Params) {
	conf.twist += p[Twist] - conf.params[i][Twist]
	conf.params[i] = p
	conf.rebuild(i)
	if c.track {
		conf.wrFuller = fullerWrithe(conf.frames)
	}
}

// Update sets step i unconditionally.
func (c *Chain) Update(i int, p Params) error {
	if c.pending >= 0 {
		return ErrTrialPending
	}
	if err := c.check(i, p); err != nil {
		return err
	}
	c.apply(c.committed, i, p)
	return nil
}

// StageTrial computes the chain with step i set to p without discarding the
// committed state.
func (c *Chain) StageTrial(i int, p Params) error {
	if c.pending >= 0 {
		return ErrTrialPending
	}
	if err := c.check(i, p); err != nil {
		return err
	}
	c.staged.copyFrom(c.committed)
	c.apply(c.staged, i, p)
	c.pending = i
	return nil
}

func (c *Chain) CommitTrial() error {
	if c.pending < 0 {
		return ErrNoTrial
	}
	c.committed, c.staged = c.staged, c.committed
	c.pending = -1
	return nil
}

func (c *Chain) RollbackTrial() error {
	if c.pending < 0 {
		return ErrNoTrial
	}
	c.pending = -1
	return nil
}

// Pending reports the step index of the staged trial, if any.
func (c *Chain) Pending() (int, bool) {
	return c.pending, c.pending >= 0
}

// Step returns the parameters of step i in the current view.
func (c *Chain) Step(i int) Params {
	return c.view().params[i]
}

// Params returns a copy of all step parameters in the current view.
func (c *Chain) Params() []Params {
	v := c.view()
	out := make([]Params, len(v.params))
	copy(out, v.params)
	return out
}

// Measure recovers step i from the frames and origins of base pairs i and
// i+1 rather than from the stored parameters.
func (c *Chain) Measure(i int) (Params, error) {
	if i < 0 || i >= c.NumSteps() {
		return Params{}, fmt.Errorf("%w: %d (steps=%d)", ErrStepIndex, i, c.NumSteps())
	}
	v := c.view()
	inv := v.frames[i].T()
	rot := inv.Mul(v.frames[i+1])
	d := inv.Apply(r3.Sub(v.origins[i+1], v.origins[i]))
	return FrameToParams(rot, d), nil
}

func (c *Chain) TerminalCoordinate() r3.Vec {
	v := c.view()
	return v.origins[len(v.origins)-1]
}

func (c *Chain) TerminalFrame() Frame {
	v := c.view()
	return v.frames[len(v.frames)-1]
}

// Origins returns a copy of every base-pair origin in the current view.
func (c *Chain) Origins() []r3.Vec {
	v := c.view()
	out := make([]r3.Vec, len(v.origins))
	copy(out, v.origins)
	return out
}

// SetTrackTopology turns twist/writhe bookkeeping on or off. Turning it on
// brings the cached values up to date immediately.
func (c *Chain) SetTrackTopology(on bool) {
	if on && !c.track {
		c.committed.wrFuller = fullerWrithe(c.committed.frames)
		if c.pending >= 0 {
			c.staged.wrFuller = fullerWrithe(c.staged.frames)
		}
	}
	c.track = on
}

func (c *Chain) TrackTopology() bool { return c.track }

// Twist returns the total twist in radians.
func (c *Chain) Twist() (float64, error) {
	if !c.track {
		return 0, ErrTopologyDisabled
	}
	return c.view().twist, nil
}

// WritheFuller returns the writhe in radians from Fuller's formula
// relative to the lab z axis.
func (c *Chain) WritheFuller() (float64, error) {
	if !c.track {
		return 0, ErrTopologyDisabled
	}
	return c.view().wrFuller, nil
}

// WritheExact returns the writhe in radians from the Gauss double integral
// over the base-pair origins, closed along z at both ends.
func (c *Chain) WritheExact() (float64, error) {
	if !c.track {
		return 0, ErrTopologyDisabled
	}
	return exactWrithe(c.view().origins), nil
}

// LinkFuller returns twist + Fuller writhe in radians.
func (c *Chain) LinkFuller() (float64, error) {
	if !c.track {
		return 0, ErrTopologyDisabled
	}
	v := c.view()
	return v.twist + v.wrFuller, nil
}

// LinkExact returns twist + exact writhe in radians.
func (c *Chain) LinkExact() (float64, error) {
	wr, err := c.WritheExact()
	if err != nil {
		return 0, err
	}
	return c.view().twist + wr, nil
}
