package metrics

import "github.com/san-kum/dnamc/internal/sim"

// Acceptance is the fraction of accepted trials over observed sweeps.
type Acceptance struct {
	name     string
	accepted int
	trials   int
}

func NewAcceptance() *Acceptance {
	return &Acceptance{
		name: "accept_rate",
	}
}

func (a *Acceptance) Name() string {
	return a.name
}

func (a *Acceptance) Observe(s sim.Sample) {
	a.accepted += s.Accepted
	a.trials += s.Trials
}

func (a *Acceptance) Value() float64 {
	if a.trials == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.trials)
}

func (a *Acceptance) Reset() {
	a.accepted = 0
	a.trials = 0
}

// Default returns the metrics every run reports.
func Default() []sim.Metric {
	return []sim.Metric{
		NewAcceptance(),
		NewExtension(),
		NewLateralRMS(),
		NewMeanLink(),
	}
}
