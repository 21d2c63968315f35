package sod_shock_tube

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSOD(t *testing.T) {
	sol := Solve(0.1)
	// Known plateau values and shock position for the standard Sod state
	assert.InDelta(t, 0.3031, sol.PPost, 0.0001)
	assert.InDelta(t, 0.4263, sol.RhoMiddle, 0.0001)
	assert.InDelta(t, 0.2656, sol.RhoPost, 0.0001)
	assert.InDelta(t, 0.6752, sol.X4, 0.0001)
	assert.True(t, sol.X1 < sol.X2 && sol.X2 < sol.X3 && sol.X3 < sol.X4)

	sol2 := Solve(0.2)
	assert.InDelta(t, 0.8504, sol2.X4, 0.0001)

	// Left and right of all waves the initial states are untouched
	rho, p, u := sol.At(0)
	assert.Equal(t, []float64{RhoL, PL, UL}, []float64{rho, p, u})
	rho, p, u = sol.At(1)
	assert.Equal(t, []float64{RhoR, PR, UR}, []float64{rho, p, u})

	// Density decreases monotonically through the rarefaction fan
	X, Rho, P, U, E := sol.Sample(101)
	last := math.Inf(1)
	for i, x := range X {
		if x > sol.X1 && x < sol.X2 {
			assert.True(t, Rho[i] < last)
			last = Rho[i]
		}
		assert.True(t, Rho[i] > 0 && P[i] > 0 && E[i] > 0)
		assert.True(t, U[i] >= 0)
	}
}
