package MCL

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gomcl/fespace"
	"github.com/notargets/gomcl/mesh"
)

func unitSquareTwoTris() *mesh.Mesh {
	points := [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	tris := [][]int{{0, 1, 2}, {0, 2, 3}}
	return mesh.NewMesh2DFromElements(points, tris)
}

func buildOps(t *testing.T, msh *mesh.Mesh, useDiagonalNbrs bool) (*fespace.FESpace, *fespace.DofInfo, *OperatorSet) {
	fes := fespace.NewFESpace(msh)
	dofs := fespace.NewDofInfo(fes)
	ops, err := NewOperatorSet(fes, dofs, useDiagonalNbrs)
	assert.Nil(t, err)
	return fes, dofs, ops
}

func TestOperatorSetRebuildIsIdentical(t *testing.T) {
	for _, msh := range []*mesh.Mesh{
		mesh.NewMesh1D(0, 1, 4),
		unitSquareTwoTris(),
	} {
		fes := fespace.NewFESpace(msh)
		dofs := fespace.NewDofInfo(fes)
		ops1, err := NewOperatorSet(fes, dofs, true)
		assert.Nil(t, err)
		ops2, err := NewOperatorSet(fes, dofs, true)
		assert.Nil(t, err)
		// Same mesh, same tensors, bit for bit
		assert.Equal(t, ops1.DetJ.Data(), ops2.DetJ.Data())
		assert.Equal(t, ops1.GradProd.data, ops2.GradProd.data)
		assert.Equal(t, ops1.LumpedMass.Data(), ops2.LumpedMass.Data())
		assert.Equal(t, ops1.Edges, ops2.Edges)
		assert.Equal(t, ops1.BdrGeom, ops2.BdrGeom)
	}
}

func TestPrecGradZeroRowSum(t *testing.T) {
	// Partition of unity: the preconditioned gradient entries of each
	// element sum to zero over the trailing index
	for _, msh := range []*mesh.Mesh{
		mesh.NewMesh1D(-1, 1, 3),
		unitSquareTwoTris(),
	} {
		_, _, ops := buildOps(t, msh, false)
		for e := 0; e < ops.K; e++ {
			for d := 0; d < ops.Dim; d++ {
				var sum float64
				for b := 0; b < ops.Np; b++ {
					sum += ops.PrecGrad(e, 0, b, d)
				}
				assert.InDelta(t, 0, sum, 1.e-14)
			}
		}
	}
}

func TestLumpedMass(t *testing.T) {
	var (
		K        = 4
		msh      = mesh.NewMesh1D(0, 1, K)
		h        = 1. / float64(K)
		_, _, ops = buildOps(t, msh, false)
	)
	var total float64
	for i := 0; i < msh.NVerts; i++ {
		mi := ops.LumpedMass.AtVec(i)
		assert.True(t, mi > 0)
		if i == 0 || i == msh.NVerts-1 {
			assert.InDelta(t, 0.5*h, mi, 1.e-14)
		} else {
			assert.InDelta(t, h, mi, 1.e-14)
		}
		total += mi
	}
	assert.InDelta(t, 1, total, 1.e-14)

	// Triangle mesh covering the unit square
	_, _, ops2 := buildOps(t, unitSquareTwoTris(), false)
	total = 0
	for i := 0; i < 4; i++ {
		total += ops2.LumpedMass.AtVec(i)
	}
	assert.InDelta(t, 1, total, 1.e-14)
}

func TestLORMassMatrixRowSums(t *testing.T) {
	// Row lumping preserves row sums regardless of the stencil choice, so
	// both policies conserve mass identically
	for _, useDiagonalNbrs := range []bool{false, true} {
		for _, msh := range []*mesh.Mesh{
			mesh.NewMesh1D(0, 1, 2),
			unitSquareTwoTris(),
		} {
			fes, _, ops := buildOps(t, msh, useDiagonalNbrs)
			var (
				lor  = ops.MassMatLOR[msh.GType]
				ref  = fes.RefMassMatrix()
				np   = ops.Np
			)
			for a := 0; a < np; a++ {
				var sumLor, sumRef float64
				for b := 0; b < np; b++ {
					sumLor += lor.At(a, b)
					sumRef += ref.At(a, b)
				}
				assert.InDelta(t, sumRef, sumLor, 1.e-15)
			}
			if !useDiagonalNbrs {
				// Fully lumped: no off-diagonal mass couplings survive
				for a := 0; a < np; a++ {
					for b := 0; b < np; b++ {
						if a != b {
							assert.Equal(t, 0., lor.At(a, b))
						}
					}
				}
				for n := range ops.Edges {
					assert.Equal(t, 0., ops.Edges[n].MLor)
				}
			}
		}
	}
}

func TestEdgeCoeffSkewSymmetry(t *testing.T) {
	var (
		msh           = mesh.NewMesh1D(0, 1, 4)
		_, dofs, ops  = buildOps(t, msh, false)
	)
	for n, ep := range dofs.Edges {
		interior := ep.I != 0 && ep.I != msh.NVerts-1 &&
			ep.J != 0 && ep.J != msh.NVerts-1
		if !interior {
			continue
		}
		for d := 0; d < ops.Dim; d++ {
			assert.InDelta(t, -ops.Edges[n].Cij[d], ops.Edges[n].Cji[d], 1.e-14)
		}
	}
}

func TestDegenerateJacobianFails(t *testing.T) {
	// Collinear vertices: zero-area triangle
	points := [][2]float64{{0, 0}, {1, 0}, {2, 0}}
	msh := mesh.NewMesh2DFromElements(points, [][]int{{0, 1, 2}})
	fes := fespace.NewFESpace(msh)
	dofs := fespace.NewDofInfo(fes)
	_, err := NewOperatorSet(fes, dofs, false)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "degenerate element Jacobian")
}

func TestBdrGeomNormals(t *testing.T) {
	var (
		msh          = mesh.NewMesh1D(0, 1, 2)
		_, dofs, ops = buildOps(t, msh, false)
	)
	assert.Equal(t, 2, len(dofs.BdrFaces))
	for n, bf := range dofs.BdrFaces {
		if bf.Dofs[0] == 0 {
			assert.Equal(t, -1., ops.BdrGeom[n].Normal[0])
		} else {
			assert.Equal(t, 1., ops.BdrGeom[n].Normal[0])
		}
		assert.Equal(t, 1., ops.BdrGeom[n].Bi[0])
	}

	// Unit-square triangle mesh: normals are unit length and face weights
	// split the edge measure between its two dofs
	_, dofs2, ops2 := buildOps(t, unitSquareTwoTris(), false)
	assert.Equal(t, 4, len(dofs2.BdrFaces))
	for n := range dofs2.BdrFaces {
		var (
			geom = ops2.BdrGeom[n]
			nrm  = geom.Normal[0]*geom.Normal[0] + geom.Normal[1]*geom.Normal[1]
		)
		assert.InDelta(t, 1, nrm, 1.e-14)
		assert.InDelta(t, 1, geom.Area, 1.e-14)
		// Outward: the normal points away from the square's center
		var mx, my float64
		for _, dof := range dofs2.BdrFaces[n].Dofs {
			x, y := unitSquareTwoTris().VertCoords(dof)
			mx += x / 2
			my += y / 2
		}
		assert.True(t, (mx-0.5)*geom.Normal[0]+(my-0.5)*geom.Normal[1] > 0)
		for _, bi := range geom.Bi {
			assert.InDelta(t, 0.5, bi, 1.e-14)
		}
	}
}
