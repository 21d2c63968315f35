package MCL

import (
	"math"

	"github.com/notargets/gomcl/hypsys"
)

/*
	LowOrderPolicy is the strategy for the bound-preserving low-order flux
	on one graph edge. Variants differ in the compactness of the
	low-order-remap mass stencil; the graph-viscosity flux itself is
	shared. Selected at construction of the Evolution operator.
*/
type LowOrderPolicy interface {
	Print() string
	UseDiagonalNbrs() bool
	// LinearFluxLumping computes the lumped low-order flux for graph edge
	// (i,j): the central Galerkin part plus graph viscosity. Contributions
	// to dofs i and j are written into yI and yJ; the returned dE is the
	// symmetric viscosity coefficient of the edge. Applying the low-order
	// flux alone never pushes either endpoint outside the convex hull of
	// its neighbors' values (local extremum diminishing).
	LinearFluxLumping(sys hypsys.System, uI, uJ, cij, cji []float64, yI, yJ []float64) (dE float64)
}

type rusanovLumping struct{}

func (rusanovLumping) LinearFluxLumping(sys hypsys.System, uI, uJ, cij, cji []float64, yI, yJ []float64) (dE float64) {
	var (
		nv             = sys.NumVars()
		dim            = sys.Dim()
		fIij, fJij     = make([]float64, nv), make([]float64, nv)
		fIji, fJji     = make([]float64, nv), make([]float64, nv)
		normIJ, normJI float64
	)
	for d := 0; d < dim; d++ {
		normIJ += cij[d] * cij[d]
		normJI += cji[d] * cji[d]
	}
	normIJ, normJI = math.Sqrt(normIJ), math.Sqrt(normJI)
	if normIJ > 0 {
		n := make([]float64, dim)
		for d := 0; d < dim; d++ {
			n[d] = cij[d] / normIJ
		}
		dE = sys.MaxWaveSpeed(uI, uJ, n) * normIJ
	}
	if normJI > 0 {
		n := make([]float64, dim)
		for d := 0; d < dim; d++ {
			n[d] = cji[d] / normJI
		}
		dE = math.Max(dE, sys.MaxWaveSpeed(uJ, uI, n)*normJI)
	}
	sys.FluxDot(uI, cij, fIij)
	sys.FluxDot(uJ, cij, fJij)
	sys.FluxDot(uI, cji, fIji)
	sys.FluxDot(uJ, cji, fJji)
	for v := 0; v < nv; v++ {
		yI[v] = -(fJij[v] - fIij[v]) + dE*(uJ[v]-uI[v])
		yJ[v] = -(fIji[v] - fJji[v]) + dE*(uI[v]-uJ[v])
	}
	return
}

// LumpedDiagonal keeps only the diagonal of the low-order-remap mass
// matrix: the most compact stencil, with no mass antidiffusion.
type LumpedDiagonal struct {
	rusanovLumping
}

func (LumpedDiagonal) Print() string         { return "Lumped Diagonal" }
func (LumpedDiagonal) UseDiagonalNbrs() bool { return false }

// LumpedWithDiagonalNbrs retains the element-local neighbor couplings in
// the low-order-remap mass matrix, recovering consistent-mass accuracy
// through the antidiffusive mass correction.
type LumpedWithDiagonalNbrs struct {
	rusanovLumping
}

func (LumpedWithDiagonalNbrs) Print() string         { return "Lumped With Diagonal Neighbors" }
func (LumpedWithDiagonalNbrs) UseDiagonalNbrs() bool { return true }
