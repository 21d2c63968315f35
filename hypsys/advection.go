package hypsys

import (
	"fmt"
	"math"

	"github.com/notargets/gomcl/mesh"
)

/*
	Linear advection of a scalar with constant velocity. The simplest
	member of the hyperbolic family, used heavily by the limiter tests:
	its single tracked quantity makes bound preservation easy to observe.
*/
type Advection struct {
	Vel  []float64
	UInf float64 // Inflow value used by the far-field policy
}

func NewAdvection(vel []float64) (eq *Advection) {
	if len(vel) != 1 && len(vel) != 2 {
		panic(fmt.Errorf("unsupported dimension for advection: %d", len(vel)))
	}
	eq = &Advection{Vel: vel}
	return
}

func (eq *Advection) NumVars() int { return 1 }
func (eq *Advection) Dim() int     { return len(eq.Vel) }

func (eq *Advection) Print() string {
	return fmt.Sprintf("Linear Advection in %d Dimensions, Velocity = %v", eq.Dim(), eq.Vel)
}

func (eq *Advection) FluxDot(u, dir, out []float64) {
	var aDir float64
	for d := range eq.Vel {
		aDir += eq.Vel[d] * dir[d]
	}
	out[0] = aDir * u[0]
}

func (eq *Advection) MaxWaveSpeed(uL, uR, n []float64) (lm float64) {
	for d := range eq.Vel {
		lm += eq.Vel[d] * n[d]
	}
	lm = math.Abs(lm)
	return
}

func (eq *Advection) BoundaryState(u, n []float64, tag mesh.BCTag, uOut []float64) {
	switch tag {
	case mesh.BC_FarField, mesh.BC_Out:
		uOut[0] = eq.UInf
	default:
		panic(fmt.Errorf("no boundary policy for tag: %s", tag.Print()))
	}
}

func (eq *Advection) Tracked() []TrackedQuantity {
	return []TrackedQuantity{
		{Name: "U", Component: 0, Eval: func(u []float64) float64 { return u[0] }},
	}
}

func (eq *Advection) Admissible(u []float64) bool {
	return !math.IsNaN(u[0]) && !math.IsInf(u[0], 0)
}
