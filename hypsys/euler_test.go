package hypsys

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gomcl/mesh"
)

func TestEulerStateAlgebra(t *testing.T) {
	var (
		eq = NewEuler(1, 1.4)
		q  = eq.ConservedFromPrimitive(1.2, []float64{0.5}, 2.0)
	)
	assert.Equal(t, 3, eq.NumVars())
	assert.InDelta(t, 2.0, eq.Pressure(q), 1.e-14)
	assert.True(t, eq.Admissible(q))
	assert.False(t, eq.Admissible([]float64{1, 0, -1}))
	assert.False(t, eq.Admissible([]float64{-1, 0, 1}))
}

func TestEulerFlux(t *testing.T) {
	var (
		eq  = NewEuler(2, 1.4)
		q   = eq.ConservedFromPrimitive(1, []float64{0, 0}, 1)
		out = make([]float64, 4)
	)
	// Quiescent gas: only the pressure contributes, along the direction
	eq.FluxDot(q, []float64{1, 0}, out)
	assert.InDelta(t, 0, out[0], 1.e-14)
	assert.InDelta(t, 1, out[1], 1.e-14)
	assert.InDelta(t, 0, out[2], 1.e-14)
	assert.InDelta(t, 0, out[3], 1.e-14)

	// FluxDot is linear in the direction argument
	var (
		q2       = eq.ConservedFromPrimitive(1.1, []float64{0.3, -0.2}, 0.9)
		f1       = make([]float64, 4)
		f2       = make([]float64, 4)
		fs       = make([]float64, 4)
	)
	eq.FluxDot(q2, []float64{1, 0}, f1)
	eq.FluxDot(q2, []float64{0, 1}, f2)
	eq.FluxDot(q2, []float64{2, 3}, fs)
	for v := 0; v < 4; v++ {
		assert.InDelta(t, 2*f1[v]+3*f2[v], fs[v], 1.e-13)
	}
}

func TestEulerWaveSpeed(t *testing.T) {
	var (
		eq = NewEuler(1, 1.4)
		q  = eq.ConservedFromPrimitive(1, []float64{0}, 1)
		c  = math.Sqrt(1.4)
	)
	assert.InDelta(t, c, eq.MaxWaveSpeed(q, q, []float64{1}), 1.e-14)
	qFast := eq.ConservedFromPrimitive(1, []float64{2}, 1)
	assert.InDelta(t, 2+c, eq.MaxWaveSpeed(q, qFast, []float64{-1}), 1.e-14)
}

func TestEulerBoundaryAndTracked(t *testing.T) {
	var (
		eq   = NewEuler(1, 1.4)
		qInf = eq.ConservedFromPrimitive(0.5, []float64{1}, 0.7)
		out  = make([]float64, 3)
	)
	eq.SetFarField(qInf)
	eq.BoundaryState([]float64{1, 0, 2}, []float64{1}, mesh.BC_FarField, out)
	assert.Equal(t, qInf, out)

	tracked := eq.Tracked()
	assert.Equal(t, 3, len(tracked))
	// Density and energy limit linearly, pressure is derived
	assert.Equal(t, 0, tracked[0].Component)
	assert.Equal(t, 2, tracked[1].Component)
	assert.Equal(t, -1, tracked[2].Component)
	assert.InDelta(t, 0.7, tracked[2].Eval(qInf), 1.e-14)
}

func TestAdvection(t *testing.T) {
	var (
		eq  = NewAdvection([]float64{2, -1})
		out = make([]float64, 1)
	)
	assert.Equal(t, 1, eq.NumVars())
	assert.Equal(t, 2, eq.Dim())
	eq.FluxDot([]float64{3}, []float64{1, 1}, out)
	assert.InDelta(t, 3, out[0], 1.e-14)
	assert.InDelta(t, 1, eq.MaxWaveSpeed(nil, nil, []float64{0, 1}), 1.e-14)
	assert.True(t, eq.Admissible([]float64{1.5}))
	assert.False(t, eq.Admissible([]float64{math.NaN()}))
}
