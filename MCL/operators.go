package MCL

import (
	"fmt"
	"math"

	"github.com/notargets/gomcl/fespace"
	"github.com/notargets/gomcl/mesh"
	"github.com/notargets/gomcl/utils"
)

// ElemTensor is a named, dimensioned (element, p, q) array with
// bounds-checked access.
type ElemTensor struct {
	K, P, Q int
	data    []float64
}

func NewElemTensor(K, P, Q int) (t ElemTensor) {
	t = ElemTensor{
		K:    K,
		P:    P,
		Q:    Q,
		data: make([]float64, K*P*Q),
	}
	return
}

func (t ElemTensor) index(e, p, q int) int {
	if e < 0 || e >= t.K || p < 0 || p >= t.P || q < 0 || q >= t.Q {
		panic(fmt.Errorf("ElemTensor index out of bounds: (%d,%d,%d), dims (%d,%d,%d)",
			e, p, q, t.K, t.P, t.Q))
	}
	return q + t.Q*(p+t.P*e)
}

func (t ElemTensor) At(e, p, q int) float64       { return t.data[t.index(e, p, q)] }
func (t ElemTensor) Set(e, p, q int, val float64) { t.data[t.index(e, p, q)] = val }

// EdgeCoeff carries the static per-edge discrete operator coefficients,
// aligned with DofInfo.Edges. For interior edges Cji = -Cij; boundary
// closure breaks the antisymmetry of C but never of the antidiffusive
// flux built from it.
type EdgeCoeff struct {
	Cij, Cji []float64 // c_ij = Int(phi_i grad(phi_j)), length Dim
	MLor     float64   // Off-diagonal low-order-remap mass entry
}

// BdrFaceGeom is the geometric data of one boundary face, aligned with
// DofInfo.BdrFaces.
type BdrFaceGeom struct {
	Normal []float64 // Outward unit normal
	Area   float64
	Bi     []float64 // Int(phi_i) over the face, per face dof
}

/*
	OperatorSet is the immutable set of element-local operators built once
	from a mesh snapshot: Jacobian determinants, adjugates, the
	preconditioned gradient operator and its GradProd factor, the
	low-order-remap (LOR) mass matrix per geometry type, the lumped mass
	vector, assembled graph-edge coefficients, and boundary face geometry.
	It is passed read-only into every evaluation; rebuilding happens only
	through NewOperatorSet after a mesh change.
*/
type OperatorSet struct {
	GType           mesh.GeometryType
	K, Np, Dim      int
	DetJ            utils.Vector
	Adjugates       []utils.Matrix // K of Dim x Dim
	GradProd        ElemTensor     // (elem, dim, localDof): adj(J)^T * refGrad
	MassMatRef      utils.Matrix
	MassMatRefInv   utils.Matrix
	MassMatLOR      map[mesh.GeometryType]utils.Matrix
	Dof2LocNbr      map[mesh.GeometryType][][]int
	FaceMat         utils.Matrix // Reference face weights, NumFaces x Np
	LumpedMass      utils.Vector // Global, strictly positive
	Edges           []EdgeCoeff  // Aligned with DofInfo.Edges
	BdrGeom         []BdrFaceGeom
	UseDiagonalNbrs bool
}

// NewOperatorSet precomputes all static tensors for the given space and
// connectivity. A degenerate element Jacobian is a fatal precondition
// violation and aborts construction.
func NewOperatorSet(fes *fespace.FESpace, dofs *fespace.DofInfo, useDiagonalNbrs bool) (ops *OperatorSet, err error) {
	var (
		msh = fes.Msh
	)
	ops = &OperatorSet{
		GType:           msh.GType,
		K:               msh.K,
		Np:              fes.NpElem,
		Dim:             msh.GType.Dim(),
		MassMatLOR:      make(map[mesh.GeometryType]utils.Matrix),
		Dof2LocNbr:      make(map[mesh.GeometryType][][]int),
		UseDiagonalNbrs: useDiagonalNbrs,
	}
	if err = ops.ComputePrecGradOp(fes); err != nil {
		return
	}
	ops.MassMatRef = fes.RefMassMatrix()
	if ops.MassMatRefInv, err = ops.MassMatRef.Inverse(); err != nil {
		err = fmt.Errorf("reference mass matrix inversion failed: %s", err.Error())
		return
	}
	ops.MassMatRef.SetReadOnly("MassMatRef")
	ops.MassMatRefInv.SetReadOnly("MassMatRefInv")
	ops.ComputeLORMassMatrix(fes.RefMassMatrix(), msh.GType, useDiagonalNbrs)
	ops.FaceMat = fes.RefFaceMat()
	ops.FaceMat.SetReadOnly("FaceMat")
	ops.computeLumpedMass(fes)
	ops.assembleEdgeCoeffs(fes, dofs)
	if err = ops.computeBdrGeom(fes, dofs); err != nil {
		return
	}
	return
}

// ComputePrecGradOp computes, for every element, the Jacobian
// determinant, the adjugate, and GradProd = adj(J)^T * refGrad. The
// preconditioned gradient operator entries c_ab are exposed through
// PrecGrad without storing the redundant leading index.
func (ops *OperatorSet) ComputePrecGradOp(fes *fespace.FESpace) (err error) {
	var (
		msh  = fes.Msh
		d    = ops.Dim
		np   = ops.Np
		Ghat = fes.RefGradients()
	)
	ops.DetJ = utils.NewVector(ops.K)
	ops.Adjugates = make([]utils.Matrix, ops.K)
	ops.GradProd = NewElemTensor(ops.K, d, np)
	for e := 0; e < ops.K; e++ {
		J := utils.NewMatrix(d, d)
		x0, y0 := msh.VertCoords(msh.EToV[e][0])
		for col := 0; col < d; col++ {
			xc, yc := msh.VertCoords(msh.EToV[e][col+1])
			J.Set(0, col, xc-x0)
			if d > 1 {
				J.Set(1, col, yc-y0)
			}
		}
		var detJ float64
		adj := utils.NewMatrix(d, d)
		switch d {
		case 1:
			detJ = J.At(0, 0)
			adj.Set(0, 0, 1)
		case 2:
			detJ = J.At(0, 0)*J.At(1, 1) - J.At(0, 1)*J.At(1, 0)
			adj.Set(0, 0, J.At(1, 1))
			adj.Set(0, 1, -J.At(0, 1))
			adj.Set(1, 0, -J.At(1, 0))
			adj.Set(1, 1, J.At(0, 0))
		}
		if detJ <= 0 {
			err = fmt.Errorf("degenerate element Jacobian: element %d, detJ = %g", e, detJ)
			return
		}
		ops.DetJ.Set(e, detJ)
		ops.Adjugates[e] = adj
		// GradProd(e,:,b) = adj(J)^T * Ghat(:,b)
		for b := 0; b < np; b++ {
			for di := 0; di < d; di++ {
				var sum float64
				for dj := 0; dj < d; dj++ {
					sum += adj.At(dj, di) * Ghat.At(dj, b)
				}
				ops.GradProd.Set(e, di, b, sum)
			}
		}
	}
	return
}

// PrecGrad is the preconditioned gradient operator: the element-local
// entry c_ab = Int(phi_a grad(phi_b)) over element e, component dim. For
// affine P1 elements the entry is independent of a; the a index is kept
// for interface fidelity and bounds checking.
func (ops *OperatorSet) PrecGrad(e, a, b, dim int) float64 {
	if a < 0 || a >= ops.Np {
		panic(fmt.Errorf("PrecGrad local dof out of bounds: a = %d, Np = %d", a, ops.Np))
	}
	scale := ops.GType.RefVolume() / float64(ops.Np)
	return scale * ops.GradProd.At(e, dim, b)
}

/*
	ComputeLORMassMatrix builds the low-order-remap mass matrix on the
	reference element of the given geometry type and caches it per type.
	useDiagonalNbrs selects the compactness of the low-order mass stencil:
	when true, off-diagonal couplings to the element-local neighbor dofs
	are retained; when false, they are lumped row-wise onto the diagonal,
	which preserves row sums (and therefore conservation) while removing
	all off-diagonal mass antidiffusion.
*/
func (ops *OperatorSet) ComputeLORMassMatrix(refMat utils.Matrix, gtype mesh.GeometryType, useDiagonalNbrs bool) {
	if _, cached := ops.MassMatLOR[gtype]; cached {
		return
	}
	var (
		np  = gtype.NumVerts()
		lor = utils.NewMatrix(np, np)
		nbr = make([][]int, np)
	)
	for a := 0; a < np; a++ {
		diag := refMat.At(a, a)
		for b := 0; b < np; b++ {
			if b == a {
				continue
			}
			if useDiagonalNbrs {
				lor.Set(a, b, refMat.At(a, b))
				nbr[a] = append(nbr[a], b)
			} else {
				diag += refMat.At(a, b)
			}
		}
		lor.Set(a, a, diag)
	}
	ops.MassMatLOR[gtype] = lor.SetReadOnly("MassMatLOR")
	ops.Dof2LocNbr[gtype] = nbr
}

func (ops *OperatorSet) computeLumpedMass(fes *fespace.FESpace) {
	var (
		scale = ops.GType.RefVolume() / float64(ops.Np)
	)
	ops.LumpedMass = utils.NewVector(fes.NDof)
	for e := 0; e < ops.K; e++ {
		detJ := ops.DetJ.AtVec(e)
		for _, i := range fes.Elem2Dof[e] {
			ops.LumpedMass.Set(i, ops.LumpedMass.AtVec(i)+detJ*scale)
		}
	}
}

func (ops *OperatorSet) assembleEdgeCoeffs(fes *fespace.FESpace, dofs *fespace.DofInfo) {
	var (
		edgeIdx = make(map[fespace.EdgePair]int, len(dofs.Edges))
		lor     = ops.MassMatLOR[ops.GType]
	)
	ops.Edges = make([]EdgeCoeff, len(dofs.Edges))
	for n := range ops.Edges {
		ops.Edges[n].Cij = make([]float64, ops.Dim)
		ops.Edges[n].Cji = make([]float64, ops.Dim)
		edgeIdx[dofs.Edges[n]] = n
	}
	for e := 0; e < ops.K; e++ {
		detJ := ops.DetJ.AtVec(e)
		for a := 0; a < ops.Np; a++ {
			for b := a + 1; b < ops.Np; b++ {
				var (
					gi, gj = fes.Elem2Dof[e][a], fes.Elem2Dof[e][b]
					la, lb = a, b
				)
				if gi > gj {
					gi, gj = gj, gi
					la, lb = lb, la
				}
				n, found := edgeIdx[fespace.EdgePair{I: gi, J: gj}]
				if !found {
					panic(fmt.Errorf("mismatched sparsity pattern: element %d couples dofs (%d,%d) outside the graph", e, gi, gj))
				}
				ec := &ops.Edges[n]
				for d := 0; d < ops.Dim; d++ {
					ec.Cij[d] += ops.PrecGrad(e, la, lb, d)
					ec.Cji[d] += ops.PrecGrad(e, lb, la, d)
				}
				ec.MLor += detJ * lor.At(la, lb)
			}
		}
	}
}

func (ops *OperatorSet) computeBdrGeom(fes *fespace.FESpace, dofs *fespace.DofInfo) (err error) {
	var (
		msh    = fes.Msh
		fverts = msh.GType.FaceVerts()
	)
	ops.BdrGeom = make([]BdrFaceGeom, len(dofs.BdrFaces))
	for n, bf := range dofs.BdrFaces {
		var (
			fv     = fverts[bf.LocalFace]
			normal = make([]float64, ops.Dim)
			area   float64
		)
		switch ops.GType {
		case mesh.Segment:
			// Point faces: local face 0 is the low end of the element
			if bf.LocalFace == 0 {
				normal[0] = -1
			} else {
				normal[0] = 1
			}
			area = 1
		case mesh.Triangle:
			var (
				va, vb = msh.EToV[bf.Elem][fv[0]], msh.EToV[bf.Elem][fv[1]]
			)
			xa, ya := msh.VertCoords(va)
			xb, yb := msh.VertCoords(vb)
			tx, ty := xb-xa, yb-ya
			area = math.Sqrt(tx*tx + ty*ty)
			if area == 0 {
				err = fmt.Errorf("degenerate boundary face: element %d, face %d", bf.Elem, bf.LocalFace)
				return
			}
			// CCW element orientation puts the outward normal to the right
			// of the edge tangent
			normal[0] = ty / area
			normal[1] = -tx / area
		}
		geom := BdrFaceGeom{
			Normal: normal,
			Area:   area,
			Bi:     make([]float64, len(bf.Dofs)),
		}
		for fi, lv := range fv {
			geom.Bi[fi] = area * ops.FaceMat.At(bf.LocalFace, lv)
		}
		ops.BdrGeom[n] = geom
	}
	return
}
