package MCL

import (
	"fmt"
	"sync"

	"github.com/notargets/gomcl/fespace"
	"github.com/notargets/gomcl/hypsys"
	"github.com/notargets/gomcl/utils"
)

/*
	Evolution is the monolithic-convex-limiting evolution operator: given
	the current discrete state it computes the explicit time derivative by
	blending a bound-preserving low-order scheme with a limited high-order
	antidiffusive correction, node by node and edge by edge.

	The operator borrows the finite element space, connectivity, and
	hyperbolic system; it exclusively owns the precomputed OperatorSet and
	all transient evaluation buffers. It carries no state across calls
	beyond the static operators, so it can be driven repeatedly by an
	external Runge-Kutta integrator.
*/
type Evolution struct {
	Fes    *fespace.FESpace
	Sys    hypsys.System
	Dofs   *fespace.DofInfo
	Ops    *OperatorSet
	Policy LowOrderPolicy
	// LowOrderCFL scales the effective low-order step used for the bound
	// predictions, relative to the convexity limit m_i/(2 sum_j d_ij)
	LowOrderCFL float64
	NVars, NDof int
	pmEdge      *utils.PartitionMap
	pmDof       *utils.PartitionMap
}

func NewEvolution(fes *fespace.FESpace, sys hypsys.System, dofs *fespace.DofInfo,
	policy LowOrderPolicy, parallelDegree int) (ev *Evolution, err error) {
	if sys.Dim() != fes.Msh.GType.Dim() {
		err = fmt.Errorf("system dimension %d does not match mesh dimension %d",
			sys.Dim(), fes.Msh.GType.Dim())
		return
	}
	ev = &Evolution{
		Fes:         fes,
		Sys:         sys,
		Dofs:        dofs,
		Policy:      policy,
		LowOrderCFL: 1,
		NVars:       sys.NumVars(),
		NDof:        fes.NDof,
	}
	if ev.Ops, err = NewOperatorSet(fes, dofs, policy.UseDiagonalNbrs()); err != nil {
		return
	}
	ev.pmEdge = utils.NewPartitionMap(parallelDegree, len(dofs.Edges))
	ev.pmDof = utils.NewPartitionMap(parallelDegree, fes.NDof)
	return
}

// Rebuild recomputes the static operator set after a mesh change.
func (ev *Evolution) Rebuild() (err error) {
	ev.Ops, err = NewOperatorSet(ev.Fes, ev.Dofs, ev.Policy.UseDiagonalNbrs())
	return
}

// Mult writes into y the discrete time derivative of x for a serial
// (single-partition) run. x is never mutated.
func (ev *Evolution) Mult(x, y utils.Vector) (err error) {
	return ev.ComputeTimeDerivative(x, y, nil)
}

// ComputeTimeDerivative is the MPI-aware entry point: ghost carries the
// externally-synchronized neighbor state for partition-interface faces
// and must be complete before the call; nil means a serial run.
func (ev *Evolution) ComputeTimeDerivative(x, y utils.Vector, ghost *GhostBuffer) (err error) {
	return ev.Evaluate(x, y, ghost, nil)
}

// EvalDiagnostics captures the transient internals of one evaluation:
// local bounds, limiting coefficients, and the low-order prediction.
// All fields are overwritten per call and never persisted by the
// operator itself.
type EvalDiagnostics struct {
	Alpha        []float64    // Per graph edge
	XMin, XMax   utils.Matrix // NumTracked x NDof
	ULow         utils.Matrix // NVars x NDof, low-order prediction
	UDotLow      utils.Matrix // NVars x NDof, low-order time derivative
	RawA         utils.Matrix // Edges x NVars, raw antidiffusive flux
	SumD, DtLow  utils.Vector // Per dof: viscosity sum, stable low-order step
	TrackedNames []string
}

// Evaluate computes the time derivative and optionally exposes the
// evaluation internals through diag.
func (ev *Evolution) Evaluate(x, y utils.Vector, ghost *GhostBuffer, diag *EvalDiagnostics) (err error) {
	var (
		nv, nd = ev.NVars, ev.NDof
		ne     = len(ev.Dofs.Edges)
	)
	if x.Len() != nv*nd || y.Len() != nv*nd {
		err = fmt.Errorf("state length mismatch: have x[%d], y[%d], need %d", x.Len(), y.Len(), nv*nd)
		return
	}
	var (
		sv = stateView{data: x.Data(), nv: nv, nd: nd}
		ws = newEvalScratch(nv, nd, ne, ev.linearTracked())
	)
	ev.lowOrderPass(sv, ws)
	if err = ev.faceTermPass(sv, ws, ghost); err != nil {
		return
	}
	ev.finishLowOrder(sv, ws)
	if err = ev.checkAdmissible(ws); err != nil {
		return
	}
	ev.collectBounds(sv, ws)
	ev.computeRawAntidiffusion(sv, ws)
	ev.solveEdgeLimiters(ws)
	ev.accumulate(ws, y)
	if diag != nil {
		ev.fillDiagnostics(ws, diag)
	}
	return
}

// stateView provides bounds-checked access to a flat state vector with
// one contiguous block per conserved variable.
type stateView struct {
	data   []float64
	nv, nd int
}

func (sv stateView) At(v, i int) float64 {
	if v < 0 || v >= sv.nv || i < 0 || i >= sv.nd {
		panic(fmt.Errorf("state index out of bounds: var %d, dof %d, dims %d x %d", v, i, sv.nv, sv.nd))
	}
	return sv.data[v*sv.nd+i]
}

// GetNodeVal gathers all conserved variables at dof i into u.
func (sv stateView) GetNodeVal(i int, u []float64) {
	for v := 0; v < sv.nv; v++ {
		u[v] = sv.At(v, i)
	}
}

type evalScratch struct {
	nv, nd, ne int
	tracked    []hypsys.TrackedQuantity // Linearly limited quantities
	d          []float64                // ne
	ubarIJ     []float64                // ne*nv, bar states seen from I
	ubarJI     []float64                // ne*nv, bar states seen from J
	rawA       []float64                // ne*nv
	alpha      []float64                // ne
	rLow       []float64                // nv*nd, mass-scaled low-order residual
	uDotLow    []float64                // nv*nd
	uLow       []float64                // nv*nd
	sumD       []float64                // nd
	dtLow      []float64                // nd
	xMin, xMax []float64                // len(tracked)*nd
	// Face bar states of boundary dofs, folded into the bounds so the
	// convex decomposition of the limited update covers the face terms
	hasBdrBar            []bool
	bdrBarMin, bdrBarMax []float64 // nv*nd
}

func newEvalScratch(nv, nd, ne int, tracked []hypsys.TrackedQuantity) (ws *evalScratch) {
	ws = &evalScratch{
		nv:      nv,
		nd:      nd,
		ne:      ne,
		tracked: tracked,
		d:       make([]float64, ne),
		ubarIJ:  make([]float64, ne*nv),
		ubarJI:  make([]float64, ne*nv),
		rawA:    make([]float64, ne*nv),
		alpha:   make([]float64, ne),
		rLow:    make([]float64, nv*nd),
		uDotLow: make([]float64, nv*nd),
		uLow:    make([]float64, nv*nd),
		sumD:    make([]float64, nd),
		dtLow:   make([]float64, nd),
		xMin:    make([]float64, len(tracked)*nd),
		xMax:    make([]float64, len(tracked)*nd),
		hasBdrBar: make([]bool, nd),
		bdrBarMin: make([]float64, nv*nd),
		bdrBarMax: make([]float64, nv*nd),
	}
	return
}

func (ev *Evolution) linearTracked() (tq []hypsys.TrackedQuantity) {
	for _, q := range ev.Sys.Tracked() {
		if q.Component >= 0 {
			tq = append(tq, q)
		}
	}
	return
}

/*
	lowOrderPass traverses all graph edges in parallel partitions: each
	worker computes the low-order flux, the graph viscosity, and the bar
	states of its edges, accumulating nodal contributions into a private
	partial sum. Partials are merged in fixed worker order so the result
	is independent of scheduling.
*/
func (ev *Evolution) lowOrderPass(sv stateView, ws *evalScratch) {
	var (
		nv, nd = ws.nv, ws.nd
		NP     = ev.pmEdge.ParallelDegree
		parts  = make([][]float64, NP)
		partsD = make([][]float64, NP)
		wg     sync.WaitGroup
	)
	for np := 0; np < NP; np++ {
		parts[np] = make([]float64, nv*nd)
		partsD[np] = make([]float64, nd)
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			var (
				eMin, eMax = ev.pmEdge.GetBucketRange(np)
				uI, uJ     = make([]float64, nv), make([]float64, nv)
				yI, yJ     = make([]float64, nv), make([]float64, nv)
			)
			for en := eMin; en < eMax; en++ {
				var (
					ep = ev.Dofs.Edges[en]
					ec = ev.Ops.Edges[en]
				)
				sv.GetNodeVal(ep.I, uI)
				sv.GetNodeVal(ep.J, uJ)
				dE := ev.Policy.LinearFluxLumping(ev.Sys, uI, uJ, ec.Cij, ec.Cji, yI, yJ)
				ws.d[en] = dE
				for v := 0; v < nv; v++ {
					parts[np][v*nd+ep.I] += yI[v]
					parts[np][v*nd+ep.J] += yJ[v]
					// Bar states: the convex intermediate values the
					// low-order flux drives each endpoint toward
					if dE > 0 {
						ws.ubarIJ[en*nv+v] = uI[v] + 0.5*yI[v]/dE
						ws.ubarJI[en*nv+v] = uJ[v] + 0.5*yJ[v]/dE
					} else {
						ws.ubarIJ[en*nv+v] = 0.5 * (uI[v] + uJ[v])
						ws.ubarJI[en*nv+v] = 0.5 * (uI[v] + uJ[v])
					}
				}
				partsD[np][ep.I] += dE
				partsD[np][ep.J] += dE
			}
		}(np)
	}
	wg.Wait()
	for np := 0; np < NP; np++ {
		for n, val := range parts[np] {
			ws.rLow[n] += val
		}
		for i, val := range partsD[np] {
			ws.sumD[i] += val
		}
	}
}

func (ev *Evolution) finishLowOrder(sv stateView, ws *evalScratch) {
	var (
		nv, nd = ws.nv, ws.nd
	)
	for i := 0; i < nd; i++ {
		var (
			mi = ev.Ops.LumpedMass.AtVec(i)
		)
		if ws.sumD[i] > 0 {
			ws.dtLow[i] = ev.LowOrderCFL * mi / (2 * ws.sumD[i])
		}
		for v := 0; v < nv; v++ {
			ws.uDotLow[v*nd+i] = ws.rLow[v*nd+i] / mi
			ws.uLow[v*nd+i] = sv.At(v, i) + ws.dtLow[i]*ws.uDotLow[v*nd+i]
		}
	}
}

// checkAdmissible enforces the low-order scheme's stability precondition:
// an inadmissible low-order prediction means the external step-size
// policy has been violated, which is fatal here rather than silently
// repaired (clamping would break conservation).
func (ev *Evolution) checkAdmissible(ws *evalScratch) (err error) {
	var (
		u = make([]float64, ws.nv)
	)
	for i := 0; i < ws.nd; i++ {
		for v := 0; v < ws.nv; v++ {
			u[v] = ws.uLow[v*ws.nd+i]
		}
		if !ev.Sys.Admissible(u) {
			err = fmt.Errorf("low-order prediction inadmissible at dof %d: %v; the time-step policy has violated the low-order stability bound", i, u)
			return
		}
	}
	return
}

func (ev *Evolution) fillDiagnostics(ws *evalScratch, diag *EvalDiagnostics) {
	var (
		nv, nd, ne = ws.nv, ws.nd, ws.ne
		nq         = len(ws.tracked)
	)
	diag.Alpha = append(diag.Alpha[:0], ws.alpha...)
	diag.XMin = utils.NewMatrix(nq, nd, append([]float64{}, ws.xMin...))
	diag.XMax = utils.NewMatrix(nq, nd, append([]float64{}, ws.xMax...))
	diag.ULow = utils.NewMatrix(nv, nd, append([]float64{}, ws.uLow...))
	diag.UDotLow = utils.NewMatrix(nv, nd, append([]float64{}, ws.uDotLow...))
	diag.RawA = utils.NewMatrix(ne, nv, append([]float64{}, ws.rawA...))
	diag.SumD = utils.NewVector(nd, append([]float64{}, ws.sumD...))
	diag.DtLow = utils.NewVector(nd, append([]float64{}, ws.dtLow...))
	diag.TrackedNames = diag.TrackedNames[:0]
	for _, q := range ws.tracked {
		diag.TrackedNames = append(diag.TrackedNames, q.Name)
	}
}
