// Package optim sweeps run parameters over a grid, e.g. forces for a
// force-extension curve.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dnamc/internal/experiment"
)

// Point is one evaluated grid point.
type Point struct {
	Params     map[string]float64
	Metrics    map[string]float64
	AcceptRate float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Scan runs one experiment per grid point, varying the last parameter
// fastest, and returns the points in that order.
func (g *GridSearch) Scan(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
) ([]Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	points := make([]Point, 0)
	err := g.scanRecursive(ctx, 0, make(map[string]float64), buildExperiment, &points)
	return points, err
}

func (g *GridSearch) scanRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	points *[]Point,
) error {
	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return fmt.Errorf("grid point %v: %w", current, err)
		}
		if err := exp.Setup(); err != nil {
			return fmt.Errorf("grid point %v: %w", current, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("grid point %v: %w", current, err)
		}

		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		*points = append(*points, Point{Params: params, Metrics: result.Metrics, AcceptRate: result.AcceptRate()})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.scanRecursive(ctx, depth+1, newParams, buildExperiment, points); err != nil {
			return err
		}
	}
	return nil
}

// Best returns the point with the smallest metric value, or the largest
// when maximize is set. NaN values never win.
func Best(points []Point, metricName string, maximize bool) (Point, bool) {
	best := math.Inf(1)
	if maximize {
		best = math.Inf(-1)
	}
	var bestPoint Point
	found := false
	for _, p := range points {
		val, ok := p.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			continue
		}
		if (!maximize && val < best) || (maximize && val > best) {
			best = val
			bestPoint = p
			found = true
		}
	}
	return bestPoint, found
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
