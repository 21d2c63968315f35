package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix(t *testing.T) {
	{ // Basic operations
		A := NewMatrix(2, 2, []float64{1, 2, 3, 4})
		B := A.Copy()
		assert.Equal(t, A.Data(), B.Data())
		B.Set(0, 0, 10)
		assert.Equal(t, 1., A.At(0, 0))
		C := A.Mul(NewMatrix(2, 2, []float64{1, 0, 0, 1}))
		assert.Equal(t, A.Data(), C.Data())
		assert.Equal(t, 4., A.Max())
		assert.Equal(t, 1., A.Min())
		assert.Equal(t, []float64{1, 3}, A.Col(0).Data())
		assert.Equal(t, []float64{3, 4}, A.Row(1).Data())
		assert.Equal(t, []float64{3, 7}, A.SumRows().Data())
	}
	{ // Inverse
		A := NewMatrix(2, 2, []float64{4, 7, 2, 6})
		Ainv, err := A.Inverse()
		assert.Nil(t, err)
		I := A.Mul(Ainv)
		assert.InDelta(t, 1, I.At(0, 0), 1.e-12)
		assert.InDelta(t, 0, I.At(0, 1), 1.e-12)
		_, err = NewMatrix(2, 3).Inverse()
		assert.NotNil(t, err)
	}
	{ // Read only protection
		A := NewMatrix(2, 2, []float64{1, 2, 3, 4})
		A.SetReadOnly("A")
		assert.Panics(t, func() { A.Set(0, 0, 1) })
		A.SetWritable()
		assert.NotPanics(t, func() { A.Set(0, 0, 1) })
	}
	{ // Transpose and MulVec
		A := NewMatrix(2, 3, []float64{1, 2, 3, 4, 5, 6})
		At := A.Transpose()
		nr, nc := At.Dims()
		assert.Equal(t, []int{3, 2}, []int{nr, nc})
		assert.Equal(t, A.At(0, 2), At.At(2, 0))
		v := A.MulVec(NewVector(3, []float64{1, 1, 1}))
		assert.Equal(t, []float64{6, 15}, v.Data())
	}
}

func TestVector(t *testing.T) {
	v := NewVector(3, []float64{3, 1, 2})
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 1., v.Min())
	assert.Equal(t, 3., v.Max())
	assert.Equal(t, 6., v.Sum())
	assert.Equal(t, 14., v.Dot(v))
	w := v.Copy().Scale(2)
	assert.Equal(t, []float64{6, 2, 4}, w.Data())
	assert.Equal(t, []float64{3, 1, 2}, v.Data())
	w.Subtract(v)
	assert.Equal(t, []float64{3, 1, 2}, w.Data())
	w.Apply(math.Sqrt)
	assert.InDelta(t, math.Sqrt(3), w.AtVec(0), 1.e-15)
	u := NewVectorConstant(4, 2.5)
	assert.Equal(t, 10., u.Sum())
}

func TestIndex(t *testing.T) {
	r := NewRange(2, 5)
	assert.Equal(t, Index{2, 3, 4, 5}, r)
	assert.True(t, r.Contains(4))
	assert.False(t, r.Contains(6))
	assert.Equal(t, 3, len(NewIndex(3)))
}

func TestMathHelpers(t *testing.T) {
	assert.Equal(t, 8., POW(2, 3))
	assert.Equal(t, 0.25, POW(2, -2))
	assert.Equal(t, 1., Min(1, 2))
	assert.Equal(t, 2., Max(1, 2))
	assert.Equal(t, []float64{7, 7}, ConstArray(2, 7))
}
