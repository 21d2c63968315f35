package MCL

import (
	"sync"

	"github.com/notargets/gomcl/utils"
)

const (
	// Dead band on the raw antidiffusive flux magnitude; an edge whose
	// flux is below it carries no meaningful antidiffusion and passes
	// unlimited
	limiterEps = 1.e-14
	// Backtracking depth for derived-quantity positivity enforcement
	maxBacktrack = 30
)

/*
	collectBounds computes, for each dof and each linearly tracked
	quantity, the admissible interval [xMin, xMax] spanned by the current
	value, the low-order predictions of the dof and its graph neighbors,
	and the bar states of its incident edges. Including the bar states
	guarantees feasibility: every edge's limiting problem has nonnegative
	headroom. The pass is dof-parallel; each dof writes only its own
	entries.
*/
func (ev *Evolution) collectBounds(sv stateView, ws *evalScratch) {
	var (
		nv, nd = ws.nv, ws.nd
		NP     = ev.pmDof.ParallelDegree
		wg     sync.WaitGroup
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			var (
				iMin, iMax = ev.pmDof.GetBucketRange(np)
			)
			for i := iMin; i < iMax; i++ {
				for qi, q := range ws.tracked {
					var (
						c      = q.Component
						mn, mx float64
					)
					mn = ws.uLow[c*nd+i]
					mx = mn
					cur := sv.At(c, i)
					mn, mx = utils.Min(mn, cur), utils.Max(mx, cur)
					for _, j := range ev.Dofs.Nbrs[i] {
						val := ws.uLow[c*nd+j]
						mn, mx = utils.Min(mn, val), utils.Max(mx, val)
					}
					for _, en := range ev.Dofs.Incid[i] {
						var bar float64
						if ev.Dofs.Edges[en].I == i {
							bar = ws.ubarIJ[en*nv+c]
						} else {
							bar = ws.ubarJI[en*nv+c]
						}
						mn, mx = utils.Min(mn, bar), utils.Max(mx, bar)
					}
					if ws.hasBdrBar[i] {
						mn = utils.Min(mn, ws.bdrBarMin[c*nd+i])
						mx = utils.Max(mx, ws.bdrBarMax[c*nd+i])
					}
					ws.xMin[qi*nd+i] = mn
					ws.xMax[qi*nd+i] = mx
				}
			}
		}(np)
	}
	wg.Wait()
}

/*
	computeRawAntidiffusion assembles the skew-symmetric raw antidiffusive
	flux per edge: the consistent-mass correction through the
	low-order-remap mass entry plus the graph-viscosity difference. By
	construction A(i,j) = -A(j,i), so the later accumulation conserves
	globally to roundoff.
*/
func (ev *Evolution) computeRawAntidiffusion(sv stateView, ws *evalScratch) {
	var (
		nv, nd = ws.nv, ws.nd
		NP     = ev.pmEdge.ParallelDegree
		wg     sync.WaitGroup
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			var (
				eMin, eMax = ev.pmEdge.GetBucketRange(np)
			)
			for en := eMin; en < eMax; en++ {
				var (
					ep   = ev.Dofs.Edges[en]
					mLor = ev.Ops.Edges[en].MLor
					dE   = ws.d[en]
				)
				for v := 0; v < nv; v++ {
					dotDiff := ws.uDotLow[v*nd+ep.I] - ws.uDotLow[v*nd+ep.J]
					ws.rawA[en*nv+v] = mLor*dotDiff + dE*(sv.At(v, ep.I)-sv.At(v, ep.J))
				}
			}
		}(np)
	}
	wg.Wait()
}

/*
	solveEdgeLimiters computes, per edge, the limiting coefficient alpha
	in [0,1]. For each linearly tracked quantity the coefficient is capped
	by the ratio of the remaining admissible headroom (distance from the
	edge's bar state to the binding bound, scaled by twice the graph
	viscosity) to the flux magnitude, on whichever endpoint the flux
	pushes toward a bound; a flux moving a value away from a bound is
	unconstrained by it. The edge coefficient is the minimum over all
	quantities and both endpoints. Derived positivity quantities
	(e.g. pressure) are enforced afterwards by backtracking alpha toward
	zero, which degrades gracefully to the pure low-order scheme.
*/
func (ev *Evolution) solveEdgeLimiters(ws *evalScratch) {
	var (
		NP = ev.pmEdge.ParallelDegree
		wg sync.WaitGroup
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			var (
				eMin, eMax = ev.pmEdge.GetBucketRange(np)
			)
			for en := eMin; en < eMax; en++ {
				ws.alpha[en] = ev.limitEdge(ws, en)
			}
		}(np)
	}
	wg.Wait()
}

func (ev *Evolution) limitEdge(ws *evalScratch, en int) (alpha float64) {
	var (
		nv, nd = ws.nv, ws.nd
		ep     = ev.Dofs.Edges[en]
		dE     = ws.d[en]
	)
	if dE <= 0 {
		// No viscosity conduit for this edge: no bound-preserving budget
		// exists, fall back fully to the low-order scheme
		return 0
	}
	alpha = 1
	for qi, q := range ws.tracked {
		var (
			c    = q.Component
			a    = ws.rawA[en*nv+c]
			upI  = 2 * dE * (ws.xMax[qi*nd+ep.I] - ws.ubarIJ[en*nv+c])
			dnI  = 2 * dE * (ws.ubarIJ[en*nv+c] - ws.xMin[qi*nd+ep.I])
			upJ  = 2 * dE * (ws.xMax[qi*nd+ep.J] - ws.ubarJI[en*nv+c])
			dnJ  = 2 * dE * (ws.ubarJI[en*nv+c] - ws.xMin[qi*nd+ep.J])
			aQ   = 1.
			amag = a
		)
		switch {
		case a > limiterEps:
			aQ = utils.Min(upI, dnJ) / amag
		case a < -limiterEps:
			aQ = utils.Min(dnI, upJ) / -amag
		}
		if aQ < alpha {
			alpha = aQ
		}
	}
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	alpha = ev.backtrackDerived(ws, en, alpha)
	return
}

// backtrackDerived halves alpha until the limited bar states of both
// endpoints are physically admissible, ending at zero if no positive
// coefficient is feasible.
func (ev *Evolution) backtrackDerived(ws *evalScratch, en int, alpha float64) float64 {
	var (
		nv  = ws.nv
		dE  = ws.d[en]
		bI  = make([]float64, nv)
		bJ  = make([]float64, nv)
		any bool
	)
	for _, q := range ev.Sys.Tracked() {
		if q.Component < 0 {
			any = true
			break
		}
	}
	if !any || alpha == 0 || dE <= 0 {
		return alpha
	}
	for iter := 0; iter < maxBacktrack; iter++ {
		ok := true
		for v := 0; v < nv; v++ {
			bI[v] = ws.ubarIJ[en*nv+v] + alpha*ws.rawA[en*nv+v]/(2*dE)
			bJ[v] = ws.ubarJI[en*nv+v] - alpha*ws.rawA[en*nv+v]/(2*dE)
		}
		for _, q := range ev.Sys.Tracked() {
			if q.Component >= 0 {
				continue
			}
			if q.Eval(bI) <= 0 || q.Eval(bJ) <= 0 {
				ok = false
				break
			}
		}
		if ok {
			return alpha
		}
		alpha *= 0.5
	}
	return 0
}

/*
	accumulate folds the limited antidiffusive fluxes into the final time
	derivative, exactly once per edge direction pair: +alpha*A to dof I
	and -alpha*A to dof J, scaled by inverse lumped mass. The edge loop is
	partitioned with per-worker partial sums merged in fixed order.
*/
func (ev *Evolution) accumulate(ws *evalScratch, y utils.Vector) {
	var (
		nv, nd = ws.nv, ws.nd
		NP     = ev.pmEdge.ParallelDegree
		parts  = make([][]float64, NP)
		wg     sync.WaitGroup
		yD     = y.Data()
	)
	for np := 0; np < NP; np++ {
		parts[np] = make([]float64, nv*nd)
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			var (
				eMin, eMax = ev.pmEdge.GetBucketRange(np)
			)
			for en := eMin; en < eMax; en++ {
				var (
					ep = ev.Dofs.Edges[en]
					al = ws.alpha[en]
				)
				if al == 0 {
					continue
				}
				for v := 0; v < nv; v++ {
					f := al * ws.rawA[en*nv+v]
					parts[np][v*nd+ep.I] += f
					parts[np][v*nd+ep.J] -= f
				}
			}
		}(np)
	}
	wg.Wait()
	for i := 0; i < nd; i++ {
		var (
			mi = ev.Ops.LumpedMass.AtVec(i)
		)
		for v := 0; v < nv; v++ {
			var sum float64
			for np := 0; np < NP; np++ {
				sum += parts[np][v*nd+i]
			}
			yD[v*nd+i] = ws.uDotLow[v*nd+i] + sum/mi
		}
	}
}
