package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/dnamc/internal/config"
	"github.com/san-kum/dnamc/internal/helix"
	"github.com/san-kum/dnamc/internal/metrics"
	"github.com/san-kum/dnamc/internal/npz"
	"github.com/san-kum/dnamc/internal/sim"
	"github.com/san-kum/dnamc/internal/steps"
)

// Experiment turns a run config into ready simulators. The sampler and
// sequence table are built once in Setup and shared read-only by every
// simulator it creates.
type Experiment struct {
	cfg       *config.Config
	sampler   steps.Sampler
	table     []int
	initial   []helix.Params
	seed      int64
	logger    *log.Logger
	observers []sim.Observer
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	seed := cfg.Seed
	if !cfg.ConstantSeed && seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Experiment{
		cfg:    cfg,
		seed:   seed,
		logger: log.New(io.Discard),
	}
}

func (e *Experiment) WithLogger(l *log.Logger) *Experiment {
	if l != nil {
		e.logger = l
	}
	return e
}

// AddObserver attaches o to the simulator of the primary run.
func (e *Experiment) AddObserver(o sim.Observer) {
	e.observers = append(e.observers, o)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Seed is the resolved seed of the primary run.
func (e *Experiment) Seed() int64 { return e.seed }

// Setup validates the config and loads every input. All failures surface
// here, before any sweep runs.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	src := e.cfg.Source()
	sampler, err := steps.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", sim.ErrMissingFile, err)
		}
		return fmt.Errorf("%w: step source: %v", sim.ErrConfiguration, err)
	}
	e.sampler = sampler
	e.logger.Info("step sampler ready", "mode", src.Mode(), "sequence_aware", sampler.SequenceAware())

	if e.cfg.InFrame != "" {
		c, err := helix.Load(e.cfg.InFrame)
		if err != nil {
			return fmt.Errorf("%w: in-frame: %v", sim.ErrConfiguration, err)
		}
		n := c.NumBasePairs()
		if e.cfg.Seq != "" && n != len(e.cfg.Seq) {
			return fmt.Errorf("%w: in-frame has %d base pairs, sequence %d",
				sim.ErrConfiguration, n, len(e.cfg.Seq))
		}
		if e.cfg.NumBasePairs != 0 && e.cfg.NumBasePairs != n {
			return fmt.Errorf("%w: n_bp %d conflicts with in-frame length %d",
				sim.ErrConfiguration, e.cfg.NumBasePairs, n)
		}
		e.initial = c.Params()
		e.cfg.NumBasePairs = n
	}

	if e.cfg.Seq != "" {
		if !sampler.SequenceAware() {
			return fmt.Errorf("%w: sequence requires a sequence-aware step source", sim.ErrConfiguration)
		}
		table, err := steps.IndexTable(sampler, e.cfg.Seq)
		if err != nil {
			return fmt.Errorf("%w: %v", sim.ErrSamplerExhausted, err)
		}
		e.table = table
	}
	return nil
}

func (e *Experiment) newChain() (*helix.Chain, error) {
	if e.initial != nil {
		return helix.FromParams(e.initial)
	}
	return helix.New(e.cfg.BasePairs(), e.sampler.Average())
}

// NewSimulator builds a simulator on a fresh chain seeded with seed.
// Observers are not attached.
func (e *Experiment) NewSimulator(seed int64) (*sim.Simulator, error) {
	return e.newSimulator(seed, e.cfg.SnapshotPrefix)
}

func (e *Experiment) newSimulator(seed int64, snapshots string) (*sim.Simulator, error) {
	if e.sampler == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	chain, err := e.newChain()
	if err != nil {
		return nil, fmt.Errorf("%w: initial chain: %v", sim.ErrConfiguration, err)
	}

	cfg := e.cfg.Sim()
	cfg.SnapshotPrefix = snapshots
	s := sim.New(chain, e.sampler, e.cfg.Tweezers(), rand.New(rand.NewSource(seed)), cfg).
		WithLogger(e.logger)
	if e.table != nil {
		s.WithSequence(e.table)
	}
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	return s, nil
}

// Run executes the primary run. In check mode the writhe pairs go to the
// check file and the returned result carries no trajectory.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	s, err := e.NewSimulator(e.seed)
	if err != nil {
		return nil, err
	}
	for _, o := range e.observers {
		s.AddObserver(o)
	}
	e.simulator = s

	if e.cfg.CheckFuller != "" {
		f, err := os.Create(e.cfg.CheckFuller)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		s.WithCheck(f)
		res, err := s.Run(ctx)
		if err != nil {
			return nil, err
		}
		return res, f.Close()
	}
	return s.Run(ctx)
}

// Ensemble runs n replicas seeded Seed()..Seed()+n-1 concurrently. Replica
// snapshots get an "_r<replica>" suffix on the prefix and observers are
// not attached.
func (e *Experiment) Ensemble(ctx context.Context, n int) ([]*sim.Result, error) {
	if e.cfg.CheckFuller != "" {
		return nil, fmt.Errorf("%w: check mode runs a single replica", sim.ErrConfiguration)
	}
	build := func(replica int, seed int64) (*sim.Simulator, error) {
		prefix := e.cfg.SnapshotPrefix
		if prefix != "" {
			prefix = fmt.Sprintf("%s_r%d", prefix, replica)
		}
		s, err := e.newSimulator(seed, prefix)
		if err != nil {
			return nil, err
		}
		return s.WithLogger(e.logger.With("replica", replica)), nil
	}
	return sim.NewEnsemble(build, n, e.seed).Run(ctx)
}

// GetSimulator returns the simulator of the last Run.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// WriteOutputs saves the trajectory archive unless in check mode, and the
// final chain when out-frame is set.
func (e *Experiment) WriteOutputs(res *sim.Result) error {
	if e.cfg.CheckFuller == "" {
		if err := npz.FromResult(res).Save(e.cfg.Out); err != nil {
			return fmt.Errorf("write %s: %w", e.cfg.Out, err)
		}
		e.logger.Info("wrote trajectory", "path", e.cfg.Out, "sweeps", len(res.Coords))
	}
	if e.cfg.OutFrame != "" {
		if e.simulator == nil {
			return fmt.Errorf("experiment not run")
		}
		if err := e.simulator.Chain().Save(e.cfg.OutFrame); err != nil {
			return fmt.Errorf("write %s: %w", e.cfg.OutFrame, err)
		}
	}
	return nil
}
