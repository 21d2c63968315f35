package hypsys

import (
	"fmt"
	"math"

	"github.com/notargets/gomcl/mesh"
)

/*
	Compressible Euler equations for a calorically perfect gas in 1 or 2
	dimensions. Conserved variables are [Rho, RhoU, (RhoV,) Ener].
*/
type Euler struct {
	Gamma float64
	dim   int
	// Far field states used by the boundary policy; QOut covers the
	// outflow-tagged faces and follows QInf until set explicitly
	QInf, QOut []float64
}

func NewEuler(dim int, gamma float64) (eq *Euler) {
	if dim != 1 && dim != 2 {
		panic(fmt.Errorf("unsupported dimension for Euler equations: %d", dim))
	}
	eq = &Euler{
		Gamma: gamma,
		dim:   dim,
		QInf:  make([]float64, dim+2),
	}
	// Quiescent unit-density far field unless overridden
	eq.QInf[0] = 1
	eq.QInf[dim+1] = 1 / (gamma - 1)
	return
}

// SetFarField installs the far-field conserved state used by the
// boundary policy.
func (eq *Euler) SetFarField(q []float64) {
	if len(q) != eq.NumVars() {
		panic(fmt.Errorf("far field state has %d vars, need %d", len(q), eq.NumVars()))
	}
	copy(eq.QInf, q)
}

// SetFarFieldOut installs a distinct far-field state for outflow-tagged
// boundary faces, e.g. the right state of a shock tube.
func (eq *Euler) SetFarFieldOut(q []float64) {
	if len(q) != eq.NumVars() {
		panic(fmt.Errorf("far field state has %d vars, need %d", len(q), eq.NumVars()))
	}
	eq.QOut = make([]float64, eq.NumVars())
	copy(eq.QOut, q)
}

func (eq *Euler) NumVars() int { return eq.dim + 2 }
func (eq *Euler) Dim() int     { return eq.dim }

func (eq *Euler) Print() string {
	return fmt.Sprintf("Euler Equations in %d Dimensions, Gamma = %.3f", eq.dim, eq.Gamma)
}

// Pressure computes the thermodynamic pressure of a conserved state.
func (eq *Euler) Pressure(u []float64) (p float64) {
	var (
		rho = u[0]
		q   float64
	)
	for d := 0; d < eq.dim; d++ {
		q += u[1+d] * u[1+d]
	}
	q *= 0.5 / rho
	p = (eq.Gamma - 1) * (u[eq.dim+1] - q)
	return
}

func (eq *Euler) FluxDot(u, dir, out []float64) {
	var (
		rho  = u[0]
		ener = u[eq.dim+1]
		p    = eq.Pressure(u)
		vDir float64 // velocity dotted with dir
	)
	for d := 0; d < eq.dim; d++ {
		vDir += u[1+d] / rho * dir[d]
	}
	out[0] = rho * vDir
	for d := 0; d < eq.dim; d++ {
		out[1+d] = u[1+d]*vDir + p*dir[d]
	}
	out[eq.dim+1] = (ener + p) * vDir
}

func (eq *Euler) MaxWaveSpeed(uL, uR, n []float64) (lm float64) {
	speed := func(u []float64) (s float64) {
		var (
			rho  = u[0]
			p    = eq.Pressure(u)
			vN   float64
			cVel = math.Sqrt(eq.Gamma * p / rho)
		)
		for d := 0; d < eq.dim; d++ {
			vN += u[1+d] / rho * n[d]
		}
		s = math.Abs(vN) + cVel
		return
	}
	lm = math.Max(speed(uL), speed(uR))
	return
}

func (eq *Euler) BoundaryState(u, n []float64, tag mesh.BCTag, uOut []float64) {
	switch tag {
	case mesh.BC_FarField:
		copy(uOut, eq.QInf)
	case mesh.BC_Out:
		if eq.QOut != nil {
			copy(uOut, eq.QOut)
		} else {
			copy(uOut, eq.QInf)
		}
	default:
		// Interface faces take their exterior state from the ghost buffer,
		// never from the boundary policy
		panic(fmt.Errorf("no boundary policy for tag: %s", tag.Print()))
	}
}

func (eq *Euler) Tracked() []TrackedQuantity {
	return []TrackedQuantity{
		{Name: "Rho", Component: 0, Eval: func(u []float64) float64 { return u[0] }},
		{Name: "Ener", Component: eq.dim + 1, Eval: func(u []float64) float64 { return u[eq.dim+1] }},
		{Name: "Pressure", Component: -1, Eval: eq.Pressure},
	}
}

func (eq *Euler) Admissible(u []float64) bool {
	return u[0] > 0 && eq.Pressure(u) > 0
}

// ConservedFromPrimitive converts [rho, velocity..., p] to conserved form.
func (eq *Euler) ConservedFromPrimitive(rho float64, vel []float64, p float64) (q []float64) {
	q = make([]float64, eq.NumVars())
	q[0] = rho
	var ke float64
	for d := 0; d < eq.dim; d++ {
		q[1+d] = rho * vel[d]
		ke += 0.5 * rho * vel[d] * vel[d]
	}
	q[eq.dim+1] = p/(eq.Gamma-1) + ke
	return
}
