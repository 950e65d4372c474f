package helix

import "errors"

var (
	// ErrTrialPending indicates a second trial was staged before the first resolved.
	ErrTrialPending = errors.New("helix: a trial is already pending")

	// ErrNoTrial indicates commit or rollback without a staged trial.
	ErrNoTrial = errors.New("helix: no pending trial")

	// ErrStepIndex indicates a step index outside [0, NumSteps).
	ErrStepIndex = errors.New("helix: step index out of range")

	// ErrInvalidParams indicates NaN or Inf step parameters.
	ErrInvalidParams = errors.New("helix: invalid step parameters (NaN or Inf)")

	// ErrTopologyDisabled indicates a twist/writhe query while tracking is off.
	ErrTopologyDisabled = errors.New("helix: topology tracking is disabled")

	// ErrTooShort indicates a chain with fewer than one base pair.
	ErrTooShort = errors.New("helix: chain needs at least one base pair")
)
