// Package helix models a nucleic-acid double helix as a chain of rigid
// base-pair steps.
//
// Each step is described by six [Params] (Shift, Slide, Rise, Tilt, Roll,
// Twist) using the 3DNA convention. A [Chain] composes the steps into
// base-pair frames and origins, starting from the identity frame at the lab
// origin, and keeps the derived quantities needed by a Monte-Carlo driver:
//
//   - terminal coordinate and terminal frame
//   - twist, Fuller writhe and exact writhe (radians)
//   - linking number as twist + writhe
//
// # Trials
//
// A chain supports a two-phase update. [Chain.StageTrial] computes the
// perturbed chain into a staging buffer while the committed state stays
// intact; every accessor reads the staged view until [Chain.CommitTrial] or
// [Chain.RollbackTrial] resolves it. At most one trial may be pending.
//
//	if err := c.StageTrial(i, p); err != nil {
//	    return err
//	}
//	if accept {
//	    c.CommitTrial()
//	} else {
//	    c.RollbackTrial()
//	}
//
// # Thread Safety
//
// Chain instances are NOT thread-safe. Replicas must each own a chain.
package helix
