// Package analysis summarizes sampled trajectories.
//
//   - [Summarize]: mean, standard deviation and standard error of a series
//   - [Autocorrelation]: normalized autocorrelation function via FFT
//   - [IntegratedTime]: integrated autocorrelation time in sweeps
//
// # Correlated Samples
//
// Successive Monte-Carlo sweeps are correlated, so the naive standard error
// underestimates the uncertainty of a mean. Summarize scales it by the
// integrated autocorrelation time:
//
//	s := analysis.Summarize(traj.Extension())
//	fmt.Printf("%.2f ± %.2f Å (tau %.1f sweeps)\n", s.Mean, s.StdErr, s.Tau)
package analysis
