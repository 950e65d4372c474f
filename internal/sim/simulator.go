package sim

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/dnamc/internal/helix"
	"github.com/san-kum/dnamc/internal/score"
	"github.com/san-kum/dnamc/internal/steps"
)

type Simulator struct {
	chain     Chain
	sampler   steps.Sampler
	final     score.Tweezers
	rand      *rand.Rand
	cfg       Config
	table     []int
	check     io.Writer
	logger    *log.Logger
	metrics   []Metric
	observers []Observer
}

// New creates a simulator. final is the fully configured functional; its
// trap target, if any, is the requested linking number in radians.
func New(chain Chain, sampler steps.Sampler, final score.Tweezers, r *rand.Rand, cfg Config) *Simulator {
	if cfg.RampIncrement == 0 {
		cfg.RampIncrement = DefaultRampIncrement
	}
	if cfg.MaxRampSweeps == 0 {
		cfg.MaxRampSweeps = DefaultMaxRampSweeps
	}
	return &Simulator{
		chain:     chain,
		sampler:   sampler,
		final:     final,
		rand:      r,
		cfg:       cfg,
		logger:    log.New(io.Discard),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

// WithSequence makes every step draw from its dinucleotide class.
func (s *Simulator) WithSequence(table []int) *Simulator {
	s.table = table
	return s
}

// WithCheck replaces the sampled record with one "fuller exact" writhe line
// per sweep written to w.
func (s *Simulator) WithCheck(w io.Writer) *Simulator {
	s.check = w
	return s
}

func (s *Simulator) WithLogger(l *log.Logger) *Simulator {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Chain() Chain { return s.chain }

// LinkConstrained reports whether a ramp toward a target link will run.
func (s *Simulator) LinkConstrained() bool { return s.final.Trapped() }

// PreRun is the functional used before the trap engages.
func (s *Simulator) PreRun() score.Tweezers {
	if s.LinkConstrained() {
		return s.final.WithoutTrap()
	}
	return s.final
}

func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if err := s.validateConfig(); err != nil {
		return nil, err
	}
	result := &Result{
		Coords:  make([]r3.Vec, 0, s.cfg.NumStep),
		Frames:  make([]helix.Frame, 0, s.cfg.NumStep),
		Mode:    s.cfg.Writhe,
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Info("relaxing", "sweeps", s.cfg.RelaxStep, "score", s.PreRun())
	if err := s.repeat(ctx, PhaseRelax, s.cfg.RelaxStep, s.PreRun()); err != nil {
		return nil, err
	}

	if s.LinkConstrained() {
		stats, err := s.rampLink(ctx)
		if err != nil {
			return nil, err
		}
		result.Ramp = stats
	}

	if s.cfg.Writhe != WritheNone || s.check != nil {
		s.chain.SetTrackTopology(true)
	}
	if err := s.sample(ctx, result); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Info("done", "accepted", result.Accepted, "trials", result.Trials,
		"rate", fmt.Sprintf("%.2f%%", 100*result.AcceptRate()))
	return result, nil
}

func (s *Simulator) validateConfig() error {
	if s.cfg.NumStep < 0 {
		return fmt.Errorf("%w: n_step must be non-negative, got %d", ErrConfiguration, s.cfg.NumStep)
	}
	if s.cfg.RelaxStep < 0 || s.cfg.LinkRelaxStep < 0 {
		return fmt.Errorf("%w: relax sweeps must be non-negative", ErrConfiguration)
	}
	if s.cfg.RampIncrement <= 0 {
		return fmt.Errorf("%w: ramp increment must be positive", ErrConfiguration)
	}
	if s.cfg.MaxRampSweeps < 0 {
		return fmt.Errorf("%w: max ramp sweeps must be non-negative", ErrConfiguration)
	}
	if s.check != nil && s.cfg.Writhe != WritheNone {
		return fmt.Errorf("%w: check mode cannot be combined with link output", ErrConfiguration)
	}
	if s.table != nil && len(s.table) != s.chain.NumSteps() {
		return fmt.Errorf("%w: sequence covers %d steps, chain has %d",
			ErrSamplerExhausted, len(s.table), s.chain.NumSteps())
	}
	if s.table != nil && !s.sampler.SequenceAware() {
		return fmt.Errorf("%w: sequence requires a sequence-aware database", ErrConfiguration)
	}
	return nil
}

func (s *Simulator) propose(i int) helix.Params {
	if s.table != nil {
		return s.sampler.SampleClass(s.rand, s.table[i])
	}
	return s.sampler.Sample(s.rand)
}

func (s *Simulator) trial(i int, fn score.Tweezers) (bool, error) {
	return Attempt(s.chain, i, s.propose(i), fn, s.rand)
}

// sweep runs one trial per step index in order.
func (s *Simulator) sweep(phase Phase, n int, fn score.Tweezers) (int, error) {
	accepted := 0
	for i := 0; i < s.chain.NumSteps(); i++ {
		ok, err := s.trial(i, fn)
		if err != nil {
			return accepted, &SimulationError{Phase: phase, Sweep: n, Step: i, Wrapped: err}
		}
		if ok {
			accepted++
		}
	}
	return accepted, nil
}

func (s *Simulator) repeat(ctx context.Context, phase Phase, sweeps int, fn score.Tweezers) error {
	for n := 0; n < sweeps; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		acc, err := s.sweep(phase, n, fn)
		if err != nil {
			return err
		}
		s.notify(phase, n, acc)
	}
	return nil
}

// rampLink moves the trap center toward the requested link and then relaxes
// under the final functional.
func (s *Simulator) rampLink(ctx context.Context) (*RampStats, error) {
	target, _ := s.final.Target()
	s.chain.SetTrackTopology(true)

	start, err := s.chain.LinkFuller()
	if err != nil {
		return nil, err
	}
	rp := newRamp(start, target, s.cfg.RampIncrement)
	fn := s.final.WithTarget(rp.current)
	s.logger.Info("ramping link", "from", turns(start), "to", turns(target), "cutoff", rp.cutoff)

	// without steps the link can never follow the trap
	if !rp.converged() && s.chain.NumSteps() == 0 {
		return nil, fmt.Errorf("%w: chain has no steps (link %.4f, target %.4f turns)",
			ErrRampStalled, turns(start), turns(target))
	}

	for !rp.converged() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rp.stats.Sweeps >= s.cfg.MaxRampSweeps {
			return nil, fmt.Errorf("%w after %d sweeps (center %.4f, target %.4f turns)",
				ErrRampStalled, rp.stats.Sweeps, turns(rp.current), turns(target))
		}
		sweep := rp.stats.Sweeps
		rp.stats.Sweeps++

		accepted := 0
		for i := 0; i < s.chain.NumSteps(); i++ {
			ok, err := s.trial(i, fn)
			if err != nil {
				return nil, &SimulationError{Phase: PhaseRamp, Sweep: sweep, Step: i, Wrapped: err}
			}
			if ok {
				accepted++
			}

			link, err := s.chain.LinkFuller()
			if err != nil {
				return nil, err
			}
			if rp.caught(link) {
				rp.advance()
				fn = s.final.WithTarget(rp.current)
				s.logger.Debug("trap re-centered", "center", turns(rp.current), "link", turns(link))
			}
			if rp.converged() {
				break
			}
		}
		s.notify(PhaseRamp, sweep, accepted)
	}

	s.logger.Info("link relax", "sweeps", s.cfg.LinkRelaxStep, "adjustments", rp.stats.Adjustments)
	if err := s.repeat(ctx, PhaseLinkRelax, s.cfg.LinkRelaxStep, s.final); err != nil {
		return nil, err
	}
	link, err := s.chain.LinkFuller()
	if err != nil {
		return nil, err
	}
	rp.stats.FinalLink = link
	if rp.stats.FinalLinkExact, err = s.chain.LinkExact(); err != nil {
		return nil, err
	}
	return &rp.stats, nil
}

func (s *Simulator) sample(ctx context.Context, result *Result) error {
	every := s.cfg.NumStep / 10
	for n := 0; n < s.cfg.NumStep; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		acc, err := s.sweep(PhaseSample, n, s.final)
		if err != nil {
			return err
		}
		result.Accepted += acc
		result.Trials += s.chain.NumSteps()

		if err := s.record(n, result); err != nil {
			return &SimulationError{Phase: PhaseSample, Sweep: n, Step: -1, Wrapped: err}
		}
		if s.cfg.SnapshotPrefix != "" {
			if err := s.chain.Save(fmt.Sprintf("%s_%d.csv", s.cfg.SnapshotPrefix, n)); err != nil {
				return err
			}
		}
		sample := s.notify(PhaseSample, n, acc)
		for _, m := range s.metrics {
			m.Observe(sample)
		}
		if every > 0 && (n+1)%every == 0 {
			s.logger.Debug("sampling", "sweep", n+1, "of", s.cfg.NumStep)
		}
	}
	return nil
}

func (s *Simulator) record(n int, result *Result) error {
	if s.check != nil {
		fuller, err := s.chain.WritheFuller()
		if err != nil {
			return err
		}
		exact, err := s.chain.WritheExact()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(s.check, "%.10f %.10f\n", fuller, exact)
		return err
	}

	coord := s.chain.TerminalCoordinate()
	frame := s.chain.TerminalFrame()
	if !finite(coord.X, coord.Y, coord.Z) || !frame.IsValid() || !frame.IsOrthonormal(frameTolerance) {
		return ErrNumericDivergence
	}
	if err := s.checkTerminalStep(); err != nil {
		return err
	}
	result.Coords = append(result.Coords, coord)
	result.Frames = append(result.Frames, frame)

	if s.cfg.Writhe == WritheNone {
		return nil
	}
	tw, err := s.chain.Twist()
	if err != nil {
		return err
	}
	var wr float64
	if s.cfg.Writhe == WritheExact {
		wr, err = s.chain.WritheExact()
	} else {
		wr, err = s.chain.WritheFuller()
	}
	if err != nil {
		return err
	}
	result.Twist = append(result.Twist, tw)
	result.Writhe = append(result.Writhe, wr)
	return nil
}

// checkTerminalStep compares the last step measured from the rebuilt frames
// with the parameters the chain stores for it.
func (s *Simulator) checkTerminalStep() error {
	n := s.chain.NumSteps()
	if n == 0 {
		return nil
	}
	got, err := s.chain.Measure(n - 1)
	if err != nil {
		return err
	}
	want := s.chain.Step(n - 1)
	for k := range got {
		d := got[k] - want[k]
		if k >= helix.Tilt {
			d = math.Remainder(d, 2*math.Pi)
		}
		if math.Abs(d) > frameTolerance {
			return fmt.Errorf("%w: step %d measures %v, stored %v", ErrNumericDivergence, n-1, got, want)
		}
	}
	return nil
}

func (s *Simulator) notify(phase Phase, n, accepted int) Sample {
	sample := Sample{
		Phase:    phase,
		Sweep:    n,
		Accepted: accepted,
		Trials:   s.chain.NumSteps(),
		Coord:    s.chain.TerminalCoordinate(),
		Frame:    s.chain.TerminalFrame(),
	}
	if s.chain.TrackTopology() {
		if lk, err := s.chain.LinkFuller(); err == nil {
			sample.Link, sample.HasLink = lk, true
		}
	}
	for _, o := range s.observers {
		o.OnSweep(sample)
	}
	return sample
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func turns(rad float64) float64 { return rad / (2 * math.Pi) }
