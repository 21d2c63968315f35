package EulerMCL

import (
	"fmt"
	"math"

	"github.com/notargets/gomcl/MCL"
	"github.com/notargets/gomcl/fespace"
	"github.com/notargets/gomcl/hypsys"
	"github.com/notargets/gomcl/mesh"
	"github.com/notargets/gomcl/utils"
)

type CaseType uint

const (
	SOD CaseType = iota
	DensityWave
	FreeStream
)

var case_names = []string{
	"Sod's Shock Tube",
	"Traveling Density Wave",
	"Uniform Free Stream",
}

/*
	Simulation drives the limited evolution operator through explicit
	SSP-RK3 time stepping on a 1D domain [0,1]. The step size follows the
	operator's own stable low-order step, scaled by the user CFL.
*/
type Simulation struct {
	CFL, FinalTime float64
	Msh            *mesh.Mesh
	Fes            *fespace.FESpace
	Dofs           *fespace.DofInfo
	Eq             *hypsys.Euler
	Ev             *MCL.Evolution
	Q              utils.Vector // Conserved state, NVars x NDof flattened
	Case           CaseType
}

func NewSimulation(CFL, FinalTime, gamma float64, K int, caseType CaseType,
	policy MCL.LowOrderPolicy, parallelDegree int) (c *Simulation, err error) {
	c = &Simulation{
		CFL:       CFL,
		FinalTime: FinalTime,
		Msh:       mesh.NewMesh1D(0, 1, K),
		Eq:        hypsys.NewEuler(1, gamma),
		Case:      caseType,
	}
	// Outflow tagging must precede connectivity construction
	c.Msh.TagBoundaryFaces(func(x, y float64) mesh.BCTag {
		if x > 0.5 {
			return mesh.BC_Out
		}
		return mesh.BC_FarField
	})
	c.Fes = fespace.NewFESpace(c.Msh)
	c.Dofs = fespace.NewDofInfo(c.Fes)
	if c.Ev, err = MCL.NewEvolution(c.Fes, c.Eq, c.Dofs, policy, parallelDegree); err != nil {
		return
	}
	c.Q = utils.NewVector(c.Ev.NVars * c.Ev.NDof)
	switch caseType {
	case SOD:
		c.initializeSOD()
	case DensityWave:
		c.initializeDensityWave()
	case FreeStream:
		c.initializeFreeStream()
	default:
		err = fmt.Errorf("unknown case type: %d", caseType)
		return
	}
	fmt.Printf("%s\nSolving %s with Monolithic Convex Limiting\n", c.Eq.Print(), case_names[caseType])
	fmt.Printf("Low Order Policy: %s\n", policy.Print())
	fmt.Printf("CFL = %8.4f, Polynomial Degree N = 1 (linear), Num Elements K = %d\n\n", CFL, K)
	return
}

func (c *Simulation) setDof(i int, q []float64) {
	for v := range q {
		c.Q.Set(v*c.Ev.NDof+i, q[v])
	}
}

func (c *Simulation) initializeSOD() {
	var (
		left  = c.Eq.ConservedFromPrimitive(1, []float64{0}, 1)
		right = c.Eq.ConservedFromPrimitive(0.125, []float64{0}, 0.1)
	)
	c.Eq.SetFarField(left)
	c.Eq.SetFarFieldOut(right)
	for i := 0; i < c.Ev.NDof; i++ {
		x, _ := c.Fes.DofCoords(i)
		if x < 0.5 {
			c.setDof(i, left)
		} else {
			c.setDof(i, right)
		}
	}
}

func (c *Simulation) initializeDensityWave() {
	var (
		qInf = c.Eq.ConservedFromPrimitive(1, []float64{1}, 1)
	)
	c.Eq.SetFarField(qInf)
	for i := 0; i < c.Ev.NDof; i++ {
		x, _ := c.Fes.DofCoords(i)
		rho := 1 + 0.5*math.Sin(2*math.Pi*x)
		c.setDof(i, c.Eq.ConservedFromPrimitive(rho, []float64{1}, 1))
	}
}

func (c *Simulation) initializeFreeStream() {
	var (
		qInf = c.Eq.ConservedFromPrimitive(1, []float64{0.5}, 1)
	)
	c.Eq.SetFarField(qInf)
	for i := 0; i < c.Ev.NDof; i++ {
		c.setDof(i, qInf)
	}
}

// Retry limit for shrinking the SSP-RK3 step when a later stage's
// stable bound is tighter than the first stage's
const maxStepRetries = 20

/*
	Step advances the state by one SSP-RK3 step and reports the step
	taken, capped at maxDT. The evolution operator preserves local bounds
	per evaluation, for steps up to that evaluation's own stable low-order
	step, so dt is re-capped against every stage's DtLow: when a later
	stage reports a tighter bound the whole step is redone at the smaller
	dt. SSP-RK3 is then a convex combination of bound-preserving forward
	Euler substeps and the composed step inherits the guarantee.
*/
func (c *Simulation) Step(maxDT float64) (dt float64, err error) {
	var (
		n    = c.Q.Len()
		r    = utils.NewVector(n)
		diag = &MCL.EvalDiagnostics{}
		q0   = c.Q.Data()
		rD   = r.Data()
		r1   = make([]float64, n)
		q1   = make([]float64, n)
		q2   = make([]float64, n)
	)
	// Stage 1 derivative, with the stable step from the operator diagnostics
	if err = c.Ev.Evaluate(c.Q, r, nil, diag); err != nil {
		return
	}
	copy(r1, rD)
	dt = c.CFL * diag.DtLow.Min()
	if dt <= 0 {
		err = fmt.Errorf("non-positive stable time step: %v", dt)
		return
	}
	if dt > maxDT {
		dt = maxDT
	}
	update1 := func(u0, rhs float64) (u1 float64) {
		u1 = u0 + dt*rhs
		return
	}
	update2 := func(u0, u1, rhs float64) (u2 float64) {
		u2 = (3*u0 + u1 + dt*rhs) * (1. / 4.)
		return
	}
	update3 := func(u0, u2, rhs float64) (u3 float64) {
		u3 = (u0 + 2*u2 + 2*dt*rhs) * (1. / 3.)
		return
	}
	for try := 0; try < maxStepRetries; try++ {
		// SSP RK Stage 1
		for i := range q0 {
			q1[i] = update1(q0[i], r1[i])
		}
		// SSP RK Stage 2
		if err = c.Ev.Evaluate(utils.NewVector(n, q1), r, nil, diag); err != nil {
			return
		}
		if stable := c.CFL * diag.DtLow.Min(); stable < dt {
			dt = stable
			continue
		}
		for i := range q0 {
			q2[i] = update2(q0[i], q1[i], rD[i])
		}
		// SSP RK Stage 3
		if err = c.Ev.Evaluate(utils.NewVector(n, q2), r, nil, diag); err != nil {
			return
		}
		if stable := c.CFL * diag.DtLow.Min(); stable < dt {
			dt = stable
			continue
		}
		for i := range q0 {
			q0[i] = update3(q0[i], q2[i], rD[i])
		}
		return
	}
	err = fmt.Errorf("no stable step found after %d reductions, dt = %v", maxStepRetries, dt)
	return
}

func (c *Simulation) Run() (err error) {
	var (
		logFrequency = 50
		Time, dt     float64
		tstep        int
	)
	for Time < c.FinalTime {
		if dt, err = c.Step(c.FinalTime - Time); err != nil {
			return
		}
		Time += dt
		tstep++
		isDone := math.Abs(Time-c.FinalTime) < 0.000001
		if tstep%logFrequency == 0 || isDone {
			rhoMin, rhoMax := c.DensityRange()
			fmt.Printf("Time = %8.4f, dt = %8.6f, tstep = %d, rho_min = %8.6f, rho_max = %8.6f, mass = %8.6f\n",
				Time, dt, tstep, rhoMin, rhoMax, c.TotalMass())
		}
	}
	return
}

// TotalMass integrates the density with the lumped mass vector.
func (c *Simulation) TotalMass() (mass float64) {
	for i := 0; i < c.Ev.NDof; i++ {
		mass += c.Ev.Ops.LumpedMass.AtVec(i) * c.Q.AtVec(i)
	}
	return
}

func (c *Simulation) DensityRange() (rhoMin, rhoMax float64) {
	rhoMin, rhoMax = math.Inf(1), math.Inf(-1)
	for i := 0; i < c.Ev.NDof; i++ {
		rho := c.Q.AtVec(i)
		rhoMin, rhoMax = math.Min(rhoMin, rho), math.Max(rhoMax, rho)
	}
	return
}

// Primitive extracts the primitive state at dof i.
func (c *Simulation) Primitive(i int) (rho, u, p float64) {
	var (
		nd = c.Ev.NDof
		q  = []float64{c.Q.AtVec(i), c.Q.AtVec(nd + i), c.Q.AtVec(2*nd + i)}
	)
	rho = q[0]
	u = q[1] / q[0]
	p = c.Eq.Pressure(q)
	return
}
