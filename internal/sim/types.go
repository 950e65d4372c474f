package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/dnamc/internal/helix"
)

// Chain is the mutable chain state a simulator drives. *helix.Chain
// implements it.
type Chain interface {
	NumSteps() int
	Step(i int) helix.Params
	Update(i int, p helix.Params) error
	StageTrial(i int, p helix.Params) error
	CommitTrial() error
	RollbackTrial() error
	TerminalCoordinate() r3.Vec
	TerminalFrame() helix.Frame
	SetTrackTopology(on bool)
	TrackTopology() bool
	Twist() (float64, error)
	WritheFuller() (float64, error)
	WritheExact() (float64, error)
	LinkFuller() (float64, error)
	LinkExact() (float64, error)
	Measure(i int) (helix.Params, error)
	Save(path string) error
}

type Phase int

const (
	PhaseRelax Phase = iota
	PhaseRamp
	PhaseLinkRelax
	PhaseSample
)

func (p Phase) String() string {
	switch p {
	case PhaseRelax:
		return "relax"
	case PhaseRamp:
		return "ramp"
	case PhaseLinkRelax:
		return "link-relax"
	case PhaseSample:
		return "sample"
	}
	return "unknown"
}

// WritheMode selects which writhe, if any, is recorded per sampled sweep.
type WritheMode int

const (
	WritheNone WritheMode = iota
	WritheFuller
	WritheExact
)

func (m WritheMode) String() string {
	switch m {
	case WritheFuller:
		return "fuller"
	case WritheExact:
		return "exact"
	}
	return "none"
}

// Sample is what observers and metrics see after each sweep.
type Sample struct {
	Phase    Phase
	Sweep    int
	Accepted int
	Trials   int
	Coord    r3.Vec
	Frame    helix.Frame
	Link     float64
	HasLink  bool
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSweep(s Sample)
}

// DefaultRampIncrement is the angular step of the trap ramp (20°).
const DefaultRampIncrement = 20 * math.Pi / 180

// DefaultMaxRampSweeps bounds a ramp whose config leaves the limit unset.
const DefaultMaxRampSweeps = 100000

// frameTolerance bounds the drift of rebuilt frames before a sweep is
// reported as diverged.
const frameTolerance = 1e-6

type Config struct {
	NumStep       int
	RelaxStep     int
	LinkRelaxStep int
	Writhe        WritheMode
	// RampIncrement defaults to DefaultRampIncrement.
	RampIncrement float64
	// MaxRampSweeps bounds the ramp; zero selects DefaultMaxRampSweeps.
	MaxRampSweeps int
	// SnapshotPrefix, when set, saves the chain after every sampled sweep.
	SnapshotPrefix string
}

func DefaultConfig() Config {
	return Config{
		NumStep:       1000,
		RelaxStep:     100,
		LinkRelaxStep: 100,
		RampIncrement: DefaultRampIncrement,
		MaxRampSweeps: DefaultMaxRampSweeps,
	}
}

// RampStats describes a completed trap ramp.
type RampStats struct {
	Start       float64
	Target      float64
	Increment   float64
	Cutoff      float64
	Adjustments int
	Sweeps      int
	// Centers lists every trap center used, in order.
	Centers []float64
	// FinalLink is the Fuller link after link relaxation.
	FinalLink float64
	// FinalLinkExact is the same conformation's link with exact writhe.
	FinalLinkExact float64
}

type Result struct {
	Coords   []r3.Vec
	Frames   []helix.Frame
	Twist    []float64
	Writhe   []float64
	Mode     WritheMode
	Accepted int
	Trials   int
	Ramp     *RampStats
	Metrics  map[string]float64
}

// AcceptRate is accepted/trials over the sampling phase, zero when no
// trials ran.
func (r *Result) AcceptRate() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(r.Trials)
}
