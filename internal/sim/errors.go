package sim

import (
	"errors"
	"fmt"
)

// Domain errors for Monte-Carlo runs.
var (
	// ErrConfiguration indicates inconsistent or missing run settings.
	ErrConfiguration = errors.New("sim: invalid configuration")

	// ErrMissingFile indicates a referenced input file does not exist.
	ErrMissingFile = errors.New("sim: input file not found")

	// ErrNumericDivergence indicates a NaN/Inf energy or coordinate.
	ErrNumericDivergence = errors.New("sim: numeric divergence (NaN or Inf detected)")

	// ErrSamplerExhausted indicates the step database cannot cover the sequence.
	ErrSamplerExhausted = errors.New("sim: step sampler cannot cover sequence")

	// ErrRampStalled indicates the linking-number ramp hit its sweep limit.
	ErrRampStalled = errors.New("sim: trap ramp did not converge")
)

// SimulationError wraps an error with the position in the run where it occurred.
type SimulationError struct {
	Phase   Phase
	Sweep   int
	Step    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s sweep %d step %d: %v", e.Phase, e.Sweep, e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
