package fespace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gomcl/mesh"
)

func TestDofInfo1D(t *testing.T) {
	var (
		msh  = mesh.NewMesh1D(0, 1, 4)
		fes  = NewFESpace(msh)
		dofs = NewDofInfo(fes)
	)
	assert.Equal(t, 5, dofs.NDof)
	assert.Equal(t, 4, dofs.EdgeCount())
	assert.Equal(t, []int{1}, dofs.Nbrs[0])
	assert.Equal(t, []int{1, 3}, dofs.Nbrs[2])
	assert.Equal(t, []int{3}, dofs.Nbrs[4])
	// Edge endpoints are ordered and each dof knows its incident edges
	for n, ep := range dofs.Edges {
		assert.True(t, ep.I < ep.J)
		assert.Contains(t, dofs.Incid[ep.I], n)
		assert.Contains(t, dofs.Incid[ep.J], n)
	}
	assert.Equal(t, 2, len(dofs.BdrFaces))
}

func TestDofInfo2D(t *testing.T) {
	var (
		points = [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		tris   = [][]int{{0, 1, 2}, {0, 2, 3}}
		msh    = mesh.NewMesh2DFromElements(points, tris)
		fes    = NewFESpace(msh)
		dofs   = NewDofInfo(fes)
	)
	assert.Equal(t, 4, dofs.NDof)
	// Four square sides plus the shared diagonal
	assert.Equal(t, 5, dofs.EdgeCount())
	assert.Equal(t, 4, len(dofs.BdrFaces))
	// The diagonal dofs see every other vertex
	assert.Equal(t, []int{1, 2, 3}, dofs.Nbrs[0])
	assert.Equal(t, []int{0, 1, 3}, dofs.Nbrs[2])
	// Graph symmetry
	for i := 0; i < dofs.NDof; i++ {
		for _, j := range dofs.Nbrs[i] {
			assert.Contains(t, dofs.Nbrs[j], i)
		}
	}
	// Boundary faces carry two dofs each in 2D
	for _, bf := range dofs.BdrFaces {
		assert.Equal(t, 2, len(bf.Dofs))
		assert.Equal(t, mesh.BC_FarField, bf.Tag)
	}
}

func TestRefOperators(t *testing.T) {
	for _, msh := range []*mesh.Mesh{
		mesh.NewMesh1D(0, 1, 1),
		mesh.NewMesh2DFromElements(
			[][2]float64{{0, 0}, {1, 0}, {0, 1}}, [][]int{{0, 1, 2}}),
	} {
		var (
			fes = NewFESpace(msh)
			np  = fes.NpElem
			G   = fes.RefGradients()
			M   = fes.RefMassMatrix()
			F   = fes.RefFaceMat()
		)
		// Gradients of a partition of unity sum to zero
		for d := 0; d < msh.GType.Dim(); d++ {
			var sum float64
			for b := 0; b < np; b++ {
				sum += G.At(d, b)
			}
			assert.Equal(t, 0., sum)
		}
		// Mass matrix integrates the constant to the reference volume
		var total float64
		for a := 0; a < np; a++ {
			for b := 0; b < np; b++ {
				total += M.At(a, b)
			}
		}
		assert.InDelta(t, msh.GType.RefVolume(), total, 1.e-15)
		// Face weights integrate the constant to the unit face measure
		for lf := 0; lf < msh.GType.NumFaces(); lf++ {
			var sum float64
			for b := 0; b < np; b++ {
				sum += F.At(lf, b)
			}
			assert.Equal(t, 1., sum)
		}
	}
}
