package dynamics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLorenzDefaultTrajectory(t *testing.T) {
	res, err := Lorenz(DefaultSigma, DefaultRho, DefaultBeta, DefaultDuration)
	require.NoError(t, err)

	require.Len(t, res.Trajectory, int(DefaultDuration*samplesPerUnit))
	for i, p := range res.Trajectory {
		for _, v := range p {
			require.Falsef(t, math.IsNaN(v) || math.IsInf(v, 0),
				"non-finite value at point %d", i)
		}
	}
}

func TestLorenzDeterministic(t *testing.T) {
	a, err := Lorenz(DefaultSigma, DefaultRho, DefaultBeta, 5)
	require.NoError(t, err)
	b, err := Lorenz(DefaultSigma, DefaultRho, DefaultBeta, 5)
	require.NoError(t, err)

	assert.Equal(t, a.Trajectory, b.Trajectory)
}

func TestLorenzStaysOnAttractor(t *testing.T) {
	res, err := Lorenz(DefaultSigma, DefaultRho, DefaultBeta, 10)
	require.NoError(t, err)

	// The attractor is bounded; every coordinate stays well inside +-100.
	for _, p := range res.Trajectory {
		for _, v := range p {
			assert.Less(t, math.Abs(v), 100.0)
		}
	}
}

func TestLorenzRejectsBadDuration(t *testing.T) {
	_, err := Lorenz(DefaultSigma, DefaultRho, DefaultBeta, 0)
	assert.Error(t, err)

	_, err = Lorenz(DefaultSigma, DefaultRho, DefaultBeta, -1)
	assert.Error(t, err)
}
