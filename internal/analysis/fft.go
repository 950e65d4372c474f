package analysis

import (
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// FFT returns the discrete Fourier transform of data, all n bins.
func FFT(data []float64) []complex128 {
	in := make([]complex128, len(data))
	for i, v := range data {
		in[i] = complex(v, 0)
	}
	if len(in) == 0 {
		return in
	}
	return fourier.NewCmplxFFT(len(in)).Coefficients(nil, in)
}

// DominantPeriod returns the period, in samples, of the strongest
// non-constant Fourier bin of data. Flat series and series shorter than four
// samples return 0.
func DominantPeriod(data []float64) float64 {
	n := len(data)
	if n < 4 {
		return 0
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	best, power := 0, 0.0
	for k, c := range FFT(centered)[1 : n/2+1] {
		if p := real(c)*real(c) + imag(c)*imag(c); p > power {
			best, power = k+1, p
		}
	}
	if best == 0 || power < 1e-20*float64(n) {
		return 0
	}
	return float64(n) / float64(best)
}

// Autocorrelation returns the normalized autocorrelation of data for lags
// 0..len(data)-1. The series is mean-subtracted and zero-padded, so the
// estimate is the biased one. A constant series yields nil.
func Autocorrelation(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	mean := stat.Mean(data, nil)

	padded := make([]float64, 2*n)
	for i, v := range data {
		padded[i] = v - mean
	}
	ft := fourier.NewFFT(len(padded))
	spec := ft.Coefficients(nil, padded)
	for i, c := range spec {
		spec[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	raw := ft.Sequence(nil, spec)

	c0 := raw[0]
	if c0 <= 0 {
		return nil
	}
	acf := make([]float64, n)
	for i := range acf {
		acf[i] = raw[i] / c0
	}
	return acf
}

// IntegratedTime estimates tau = 1 + 2·Σ rho(t) with Sokal's automatic
// window: the sum stops at the first lag M with M >= window·tau(M).
// It returns 1 for series too short or too flat to estimate.
func IntegratedTime(data []float64, window float64) float64 {
	acf := Autocorrelation(data)
	if len(acf) < 2 {
		return 1
	}
	tau := 1.0
	for m := 1; m < len(acf); m++ {
		tau += 2 * acf[m]
		if float64(m) >= window*tau {
			break
		}
	}
	if tau < 1 {
		return 1
	}
	return tau
}
