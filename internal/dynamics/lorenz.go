package dynamics

import (
	"fmt"
	"math"
)

// Default Lorenz parameters, the classic chaotic set.
const (
	DefaultSigma    = 10.0
	DefaultRho      = 28.0
	DefaultBeta     = 2.667
	DefaultDuration = 40.0

	// samplesPerUnit fixes the integrator step at 1/100 time units.
	samplesPerUnit = 100
)

// LorenzResult holds the outcome of a Lorenz system integration.
type LorenzResult struct {
	Sigma, Rho, Beta float64
	Status           string
	Trajectory       [][3]float64
}

// Lorenz integrates the Lorenz system with fixed-step RK4 over duration time
// units at 100 samples per unit, starting from (1, 1, 1).
func Lorenz(sigma, rho, beta, duration float64) (*LorenzResult, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %g", duration)
	}

	n := int(duration * samplesPerUnit)
	dt := 1.0 / samplesPerUnit

	deriv := func(s [3]float64) [3]float64 {
		x, y, z := s[0], s[1], s[2]
		return [3]float64{
			sigma * (y - x),
			x*(rho-z) - y,
			x*y - beta*z,
		}
	}

	traj := make([][3]float64, n)
	state := [3]float64{1, 1, 1}
	for i := 0; i < n; i++ {
		state = rk4Step(state, dt, deriv)
		if !finite(state) {
			return nil, fmt.Errorf("integration diverged at step %d", i)
		}
		traj[i] = state
	}

	status := fmt.Sprintf(
		"Lorenz trajectory generated with sigma=%g, rho=%g, beta=%g over %g time units (%d points).",
		sigma, rho, beta, duration, n,
	)

	return &LorenzResult{
		Sigma:      sigma,
		Rho:        rho,
		Beta:       beta,
		Status:     status,
		Trajectory: traj,
	}, nil
}

func rk4Step(s [3]float64, dt float64, f func([3]float64) [3]float64) [3]float64 {
	k1 := f(s)
	k2 := f(add(s, scale(k1, dt/2)))
	k3 := f(add(s, scale(k2, dt/2)))
	k4 := f(add(s, scale(k3, dt)))

	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = s[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}

func add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func scale(a [3]float64, c float64) [3]float64 {
	return [3]float64{a[0] * c, a[1] * c, a[2] * c}
}

func finite(s [3]float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
