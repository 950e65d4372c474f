// Package sim runs base-pair-level Monte-Carlo simulations of a double helix.
//
// A [Simulator] owns one chain and drives it through four phases:
//
//   - relax: full sweeps under the trap-free functional
//   - ramp: walks a torsional trap from the current linking number to the
//     requested one in fixed angular increments, re-centering the trap as
//     soon as the chain catches up
//   - link relax: full sweeps under the final functional
//   - sample: full sweeps under the final functional, recording the
//     terminal coordinate, terminal frame and optionally twist/writhe
//
// Each sweep runs [Attempt] once per step index in order. A trial is
// propose, evaluate, then exactly one of commit or rollback.
//
// # Example
//
//	s := sim.New(chain, sampler, score.Tweezers{Force: 2}, rng, sim.DefaultConfig())
//	result, err := s.Run(ctx)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For independent replicas use
// [Ensemble], which gives every replica its own chain and random source.
package sim
