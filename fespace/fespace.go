package fespace

import (
	"fmt"

	"github.com/notargets/gomcl/mesh"
	"github.com/notargets/gomcl/utils"
)

/*
	Continuous Galerkin H1 space of piecewise-linear (P1) nodal basis
	functions. Degrees of freedom coincide with mesh vertices; an element
	sees NpElem local dofs, and shared dofs couple neighboring elements
	through the connectivity graph rather than through duplicated storage.
*/
type FESpace struct {
	Msh      *mesh.Mesh
	NDof     int     // Global degrees of freedom
	NpElem   int     // Local dofs per element
	Elem2Dof [][]int // K x NpElem, global dof of each local dof
}

func NewFESpace(msh *mesh.Mesh) (fes *FESpace) {
	var (
		np = msh.GType.NumVerts()
	)
	fes = &FESpace{
		Msh:      msh,
		NDof:     msh.NVerts,
		NpElem:   np,
		Elem2Dof: make([][]int, msh.K),
	}
	// P1 nodal dofs are the element vertices
	for k := 0; k < msh.K; k++ {
		fes.Elem2Dof[k] = make([]int, np)
		copy(fes.Elem2Dof[k], msh.EToV[k])
	}
	return
}

// DofCoords returns the physical coordinates of global dof i.
func (fes *FESpace) DofCoords(i int) (x, y float64) {
	return fes.Msh.VertCoords(i)
}

// RefGradients returns the constant reference gradients of the P1 basis,
// dimensioned Dim x NpElem.
func (fes *FESpace) RefGradients() (G utils.Matrix) {
	switch fes.Msh.GType {
	case mesh.Segment:
		G = utils.NewMatrix(1, 2, []float64{-1, 1})
	case mesh.Triangle:
		G = utils.NewMatrix(2, 3, []float64{
			-1, 1, 0,
			-1, 0, 1,
		})
	default:
		panic(fmt.Errorf("unsupported geometry type: %s", fes.Msh.GType.Print()))
	}
	return
}

// RefMassMatrix returns the consistent mass matrix of the P1 basis on the
// reference element.
func (fes *FESpace) RefMassMatrix() (M utils.Matrix) {
	switch fes.Msh.GType {
	case mesh.Segment:
		M = utils.NewMatrix(2, 2, []float64{
			1. / 3., 1. / 6.,
			1. / 6., 1. / 3.,
		})
	case mesh.Triangle:
		M = utils.NewMatrix(3, 3, []float64{
			1. / 12., 1. / 24., 1. / 24.,
			1. / 24., 1. / 12., 1. / 24.,
			1. / 24., 1. / 24., 1. / 12.,
		})
	default:
		panic(fmt.Errorf("unsupported geometry type: %s", fes.Msh.GType.Print()))
	}
	return
}

// RefFaceMat returns the reference-face integration weights of each local
// basis function, dimensioned NumFaces x NpElem. Scaling by the physical
// face measure happens during operator construction.
func (fes *FESpace) RefFaceMat() (F utils.Matrix) {
	switch fes.Msh.GType {
	case mesh.Segment:
		// Point faces: basis value at the endpoint
		F = utils.NewMatrix(2, 2, []float64{
			1, 0,
			0, 1,
		})
	case mesh.Triangle:
		// Each edge integrates the two incident hat functions to half the
		// unit edge length
		F = utils.NewMatrix(3, 3, []float64{
			0.5, 0.5, 0,
			0, 0.5, 0.5,
			0.5, 0, 0.5,
		})
	default:
		panic(fmt.Errorf("unsupported geometry type: %s", fes.Msh.GType.Print()))
	}
	return
}
