// Package dynamics provides deterministic simulations of the dynamical
// systems the agent can compute on demand: the logistic map and the Lorenz
// system. All functions are pure; rendering is left to the caller.
package dynamics

import (
	"fmt"
	"math"
)

// Regime labels the qualitative long-run behavior of an iterated map.
type Regime string

const (
	RegimeFixedPoint Regime = "Fixed Point"
	RegimePeriod2    Regime = "Period-2"
	RegimePeriod4    Regime = "Period-4"
	RegimeChaotic    Regime = "Chaotic"
)

// LogisticResult holds the outcome of a logistic map simulation.
type LogisticResult struct {
	R      float64
	Regime Regime
	Status string
	Series []float64
}

const (
	// DefaultLogisticSteps is the number of iterations when none is given.
	DefaultLogisticSteps = 100
	// DefaultLogisticX0 is the initial condition.
	DefaultLogisticX0 = 0.5

	// regimeWindow is how many trailing iterates the regime heuristic sees.
	regimeWindow = 20
)

// LogisticMap iterates x <- r*x*(1-x) for steps iterations starting at x0 and
// classifies the asymptotic regime by counting distinct values (rounded to
// 4 decimals) among the last 20 iterates. Counting distinct late iterates is
// a coarse approximation, not a Lyapunov-exponent test; it is good enough to
// tell a fixed point from a period-2/4 orbit from chaos for textbook r values.
func LogisticMap(r float64, steps int, x0 float64) (*LogisticResult, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, fmt.Errorf("r must be finite")
	}

	series := make([]float64, steps)
	x := x0
	for i := 0; i < steps; i++ {
		x = r * x * (1 - x)
		series[i] = x
	}

	regime := classifyRegime(series)
	status := fmt.Sprintf(
		"Computed logistic map for r=%g: system is in %s regime (based on the last %d iterates).",
		r, regime, regimeWindow,
	)

	return &LogisticResult{
		R:      r,
		Regime: regime,
		Status: status,
		Series: series,
	}, nil
}

func classifyRegime(series []float64) Regime {
	window := series
	if len(window) > regimeWindow {
		window = window[len(window)-regimeWindow:]
	}

	distinct := make(map[float64]struct{}, len(window))
	for _, v := range window {
		distinct[math.Round(v*1e4)/1e4] = struct{}{}
	}

	switch len(distinct) {
	case 1:
		return RegimeFixedPoint
	case 2:
		return RegimePeriod2
	case 4:
		return RegimePeriod4
	default:
		return RegimeChaotic
	}
}
