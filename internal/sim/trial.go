package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/san-kum/dnamc/internal/helix"
	"github.com/san-kum/dnamc/internal/score"
)

// Attempt tries to move step i of c to p under fn.
//
// An empty functional accepts unconditionally. Otherwise the move is staged,
// scored and then either committed or rolled back by the Metropolis test.
// Energy failures and non-finite parameters abort with ErrNumericDivergence,
// after the staged trial has been rolled back. Protocol errors from the
// chain are returned as they are.
func Attempt(c Chain, i int, p helix.Params, fn score.Functional, r *rand.Rand) (bool, error) {
	if fn.IsEmpty() {
		if err := c.Update(i, p); err != nil {
			return false, chainError(err)
		}
		return true, nil
	}

	old, err := fn.Evaluate(c)
	if err != nil {
		return false, diverged(err)
	}
	if err := c.StageTrial(i, p); err != nil {
		return false, chainError(err)
	}
	cur, err := fn.Evaluate(c)
	if err != nil {
		if rbErr := c.RollbackTrial(); rbErr != nil {
			return false, rbErr
		}
		return false, diverged(err)
	}

	if score.Metropolis(r, old, cur) {
		return true, c.CommitTrial()
	}
	return false, c.RollbackTrial()
}

func diverged(err error) error {
	return fmt.Errorf("%w: %w", ErrNumericDivergence, err)
}

func chainError(err error) error {
	if errors.Is(err, helix.ErrInvalidParams) {
		return diverged(err)
	}
	return err
}
