package EulerMCL

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gomcl/MCL"
	"github.com/notargets/gomcl/sod_shock_tube"
)

func TestFreeStreamPreservation(t *testing.T) {
	c, err := NewSimulation(0.5, 0.05, 1.4, 16, FreeStream, MCL.LumpedWithDiagonalNbrs{}, 1)
	assert.Nil(t, err)
	var (
		q0 = make([]float64, c.Q.Len())
	)
	copy(q0, c.Q.Data())
	assert.Nil(t, c.Run())
	for n, val := range c.Q.Data() {
		assert.InDelta(t, q0[n], val, 1.e-12)
	}
}

func TestSODShockTube(t *testing.T) {
	var (
		finalTime = 0.1
	)
	c, err := NewSimulation(0.5, finalTime, 1.4, 100, SOD, MCL.LumpedWithDiagonalNbrs{}, 2)
	assert.Nil(t, err)
	mass0 := c.TotalMass()
	assert.Nil(t, c.Run())

	// Global density bounds survive the full run
	rhoMin, rhoMax := c.DensityRange()
	assert.True(t, rhoMin >= 0.125-1.e-9)
	assert.True(t, rhoMax <= 1+1.e-9)

	// No mass enters or leaves before the waves reach the ends
	assert.InDelta(t, mass0, c.TotalMass(), 1.e-6)

	// Admissibility everywhere, and agreement with the analytic solution
	// in the undisturbed regions away from the waves
	sol := sod_shock_tube.Solve(finalTime)
	for i := 0; i < c.Ev.NDof; i++ {
		x, _ := c.Fes.DofCoords(i)
		rho, _, p := c.Primitive(i)
		assert.True(t, rho > 0 && p > 0)
		rhoExact, _, _ := sol.At(x)
		if x < sol.X1-0.1 || x > sol.X4+0.1 {
			assert.InDelta(t, rhoExact, rho, 0.01)
		}
	}
}

func TestStepHoldsGlobalBounds(t *testing.T) {
	// CFL 1 leaves no stability slack: only the per-stage step re-cap
	// inside Step keeps the later RK stages from leaking the initial
	// density range
	c, err := NewSimulation(1.0, 0.02, 1.4, 64, SOD, MCL.LumpedWithDiagonalNbrs{}, 1)
	assert.Nil(t, err)
	for iter := 0; iter < 20; iter++ {
		_, err = c.Step(1)
		assert.Nil(t, err)
		rhoMin, rhoMax := c.DensityRange()
		assert.True(t, rhoMin >= 0.125-1.e-12)
		assert.True(t, rhoMax <= 1+1.e-12)
	}
}

func TestGammaReachesTheSolver(t *testing.T) {
	c, err := NewSimulation(0.5, 0.02, 5./3., 8, FreeStream, MCL.LumpedDiagonal{}, 1)
	assert.Nil(t, err)
	assert.Equal(t, 5./3., c.Eq.Gamma)
	// Free stream preservation holds for the monatomic gas too
	assert.Nil(t, c.Run())
	rhoMin, rhoMax := c.DensityRange()
	assert.InDelta(t, 1, rhoMin, 1.e-12)
	assert.InDelta(t, 1, rhoMax, 1.e-12)
}

func TestDensityWave(t *testing.T) {
	c, err := NewSimulation(0.5, 0.05, 1.4, 32, DensityWave, MCL.LumpedDiagonal{}, 1)
	assert.Nil(t, err)
	assert.Nil(t, c.Run())
	rhoMin, rhoMax := c.DensityRange()
	assert.True(t, rhoMin >= 0.5-1.e-9 && rhoMax <= 1.5+1.e-9)
	for i := 0; i < c.Ev.NDof; i++ {
		rho, u, p := c.Primitive(i)
		assert.True(t, rho > 0 && p > 0)
		assert.False(t, math.IsNaN(u))
	}
}
