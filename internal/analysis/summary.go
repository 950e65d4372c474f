package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the Sokal window constant used by Summarize.
const DefaultWindow = 5.0

type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	// Tau is the integrated autocorrelation time in sweeps.
	Tau float64
	// StdErr is the error of Mean corrected for autocorrelation.
	StdErr float64
}

func Summarize(data []float64) Summary {
	s := Summary{N: len(data)}
	if s.N == 0 {
		s.Mean, s.StdDev, s.StdErr = math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	if s.N < 2 {
		s.StdDev = 0
	}
	s.Min, s.Max = data[0], data[0]
	for _, v := range data[1:] {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Tau = IntegratedTime(data, DefaultWindow)
	s.StdErr = s.StdDev * math.Sqrt(s.Tau/float64(s.N))
	return s
}

// Turns converts a series in radians to turns.
func Turns(rad []float64) []float64 {
	out := make([]float64, len(rad))
	for i, v := range rad {
		out[i] = v / (2 * math.Pi)
	}
	return out
}
