package MCL

import (
	"fmt"

	"github.com/notargets/gomcl/fespace"
	"github.com/notargets/gomcl/mesh"
)

/*
	GhostBuffer carries the neighbor-side state for degrees of freedom on
	partition-interface faces. It is filled by an external ghost-exchange
	transport before ComputeTimeDerivative is called; the evolution
	operator only reads it. A missing entry for an interface dof is a
	precondition violation.
*/
type GhostBuffer struct {
	Vals map[int][]float64 // Global dof -> neighbor-side conserved state
}

func NewGhostBuffer() *GhostBuffer {
	return &GhostBuffer{Vals: make(map[int][]float64)}
}

func (g *GhostBuffer) Set(dof int, u []float64) {
	val := make([]float64, len(u))
	copy(val, u)
	g.Vals[dof] = val
}

/*
	FaceTerm gathers the two-sided trace of the state at one face dof and
	computes the weak flux contribution: y1 receives the owning side,
	y2 the neighbor side with opposite sign, so that what leaves one side
	enters the other exactly (discrete conservation across the face). The
	neighbor dof of an interface face is owned by the other partition, so
	the local assembly consumes y1 only; y2 is what the neighbor rank
	accumulates on its own copy, reported here for exchange verification.
	For a true boundary face (no neighbor), the exterior trace comes from
	the hyperbolic system's boundary policy and y2 is left untouched. The
	returned lm is the face wave speed used in the low-order stability
	accounting.
*/
func (ev *Evolution) FaceTerm(sv stateView, bf fespace.BdrFace, geom BdrFaceGeom, fi int,
	ghost *GhostBuffer, y1, y2 []float64) (lm float64, err error) {
	var (
		nv     = ev.NVars
		dof    = bf.Dofs[fi]
		bi     = geom.Bi[fi]
		uFace  = make([]float64, nv) // Trace from the owning element
		uNbr   = make([]float64, nv) // Trace from the neighbor / exterior
		fFace  = make([]float64, nv)
		fNbr   = make([]float64, nv)
		shared = bf.Tag == mesh.BC_Interface
	)
	sv.GetNodeVal(dof, uFace)
	if shared {
		if ghost == nil {
			err = fmt.Errorf("interface face at dof %d requires a synchronized ghost buffer", dof)
			return
		}
		val, found := ghost.Vals[dof]
		if !found {
			err = fmt.Errorf("ghost buffer missing entry for interface dof %d", dof)
			return
		}
		copy(uNbr, val)
	} else {
		ev.Sys.BoundaryState(uFace, geom.Normal, bf.Tag, uNbr)
	}
	lm = ev.Sys.MaxWaveSpeed(uFace, uNbr, geom.Normal)
	ev.Sys.FluxDot(uFace, geom.Normal, fFace)
	ev.Sys.FluxDot(uNbr, geom.Normal, fNbr)
	// f(u)·n - fhat(u, uNbr, n) with a local Lax-Friedrichs fhat
	for v := 0; v < nv; v++ {
		y1[v] = bi * (0.5*(fFace[v]-fNbr[v]) + 0.5*lm*(uNbr[v]-uFace[v]))
		if shared {
			y2[v] = -y1[v]
		}
	}
	return
}

// faceTermPass accumulates all boundary and interface face contributions
// into the low-order residual. Face counts are small compared to the
// edge graph, so the loop runs serially and deterministically.
func (ev *Evolution) faceTermPass(sv stateView, ws *evalScratch, ghost *GhostBuffer) (err error) {
	var (
		nv, nd = ws.nv, ws.nd
		y1, y2 = make([]float64, nv), make([]float64, nv)
		lm     float64
	)
	for n, bf := range ev.Dofs.BdrFaces {
		geom := ev.Ops.BdrGeom[n]
		for fi := range bf.Dofs {
			if lm, err = ev.FaceTerm(sv, bf, geom, fi, ghost, y1, y2); err != nil {
				return
			}
			dof := bf.Dofs[fi]
			for v := 0; v < nv; v++ {
				ws.rLow[v*nd+dof] += y1[v]
			}
			// The penalty part acts like half an edge viscosity in the
			// convexity budget
			ws.sumD[dof] += 0.5 * geom.Bi[fi] * lm
			if lm > 0 {
				// Face bar state: the value the face term drives this dof
				// toward; recorded so collectBounds can widen the local
				// interval of boundary dofs accordingly
				for v := 0; v < nv; v++ {
					bar := sv.At(v, dof) + y1[v]/(geom.Bi[fi]*lm)
					if !ws.hasBdrBar[dof] {
						ws.bdrBarMin[v*nd+dof] = bar
						ws.bdrBarMax[v*nd+dof] = bar
					} else {
						if bar < ws.bdrBarMin[v*nd+dof] {
							ws.bdrBarMin[v*nd+dof] = bar
						}
						if bar > ws.bdrBarMax[v*nd+dof] {
							ws.bdrBarMax[v*nd+dof] = bar
						}
					}
				}
				ws.hasBdrBar[dof] = true
			}
		}
	}
	return
}
