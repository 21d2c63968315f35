package fespace

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"

	"github.com/notargets/gomcl/mesh"
	"github.com/notargets/gomcl/utils"
)

// EdgePair is one undirected graph edge (I < J) of the sparsity pattern.
type EdgePair struct {
	I, J int
}

// BdrFace couples a mesh boundary face with the global dofs living on it.
type BdrFace struct {
	Elem, LocalFace int
	Dofs            []int
	Tag             mesh.BCTag
}

/*
	DofInfo supplies the static connectivity of the discrete operator: for
	each degree of freedom the set of dofs it couples with (the nonzero
	sparsity pattern of the stiffness graph), the unique undirected edge
	list over that pattern, and the face adjacency of boundary dofs. It is
	rebuilt only on mesh change.
*/
type DofInfo struct {
	NDof     int
	Nbrs     [][]int // Sorted neighbor dofs, self excluded
	Edges    []EdgePair
	Incid    [][]int     // Edge indices incident to each dof
	Graph    *sparse.CSR // Symmetric sparsity pattern including the diagonal
	BdrFaces []BdrFace
}

func NewDofInfo(fes *FESpace) (dofs *DofInfo) {
	var (
		msh = fes.Msh
		dok = utils.NewDOK(fes.NDof, fes.NDof)
	)
	for k := 0; k < msh.K; k++ {
		for _, i := range fes.Elem2Dof[k] {
			for _, j := range fes.Elem2Dof[k] {
				dok.Set(i, j, 1)
			}
		}
	}
	dok.SetReadOnly("DofGraph")
	dofs = &DofInfo{
		NDof:  fes.NDof,
		Nbrs:  make([][]int, fes.NDof),
		Graph: dok.ToCSR(),
	}
	for i := 0; i < fes.NDof; i++ {
		dofs.Graph.DoRowNonZero(i, func(_, j int, _ float64) {
			if j != i {
				dofs.Nbrs[i] = append(dofs.Nbrs[i], j)
			}
		})
		sort.Ints(dofs.Nbrs[i])
		for _, j := range dofs.Nbrs[i] {
			if i < j {
				dofs.Edges = append(dofs.Edges, EdgePair{I: i, J: j})
			}
		}
	}
	dofs.Incid = make([][]int, fes.NDof)
	for n, ep := range dofs.Edges {
		dofs.Incid[ep.I] = append(dofs.Incid[ep.I], n)
		dofs.Incid[ep.J] = append(dofs.Incid[ep.J], n)
	}
	// Boundary face dof lists from the mesh's face inventory
	fverts := msh.GType.FaceVerts()
	for _, bf := range msh.BdrFaces {
		face := BdrFace{
			Elem:      bf.Elem,
			LocalFace: bf.LocalFace,
			Tag:       bf.Tag,
		}
		for _, lv := range fverts[bf.LocalFace] {
			face.Dofs = append(face.Dofs, fes.Elem2Dof[bf.Elem][lv])
		}
		dofs.BdrFaces = append(dofs.BdrFaces, face)
	}
	return
}

// EdgeCount reports the number of unique undirected graph edges.
func (dofs *DofInfo) EdgeCount() int { return len(dofs.Edges) }

func (dofs *DofInfo) Print() (o string) {
	o = fmt.Sprintf("DofInfo: %d dofs, %d graph edges, %d boundary faces, NNZ = %d\n",
		dofs.NDof, len(dofs.Edges), len(dofs.BdrFaces), dofs.Graph.NNZ())
	return
}
