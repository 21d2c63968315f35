package hypsys

import (
	"github.com/notargets/gomcl/mesh"
)

/*
	System abstracts the first-order hyperbolic conservation law being
	solved: the physical flux, wave-speed bounds used to construct the
	low-order graph viscosity, the boundary-condition policy, and the
	physically bounded quantities the limiter must track. The evolution
	operator calls into the system per edge and per face; the system never
	calls back.
*/
type System interface {
	NumVars() int
	Dim() int
	// FluxDot writes f(u)·dir into out. dir need not be unit length; the
	// flux is linear in the direction components.
	FluxDot(u, dir, out []float64)
	// MaxWaveSpeed bounds the largest characteristic speed of the states
	// uL, uR along the unit direction n.
	MaxWaveSpeed(uL, uR, n []float64) float64
	// BoundaryState produces the exterior ghost state for a boundary face
	// with outward unit normal n, per the tag's boundary policy.
	BoundaryState(u, n []float64, tag mesh.BCTag, uOut []float64)
	// Tracked lists the quantities whose local bounds the limiter enforces.
	Tracked() []TrackedQuantity
	// Admissible reports whether the state is physically valid (e.g.
	// positive density and pressure).
	Admissible(u []float64) bool
	Print() string
}

// TrackedQuantity is one physically bounded quantity. Component >= 0
// names a conserved variable limited exactly by headroom ratios;
// Component < 0 marks a derived quantity (e.g. pressure) whose
// positivity is enforced by backtracking the limiting coefficient.
type TrackedQuantity struct {
	Name      string
	Component int
	Eval      func(u []float64) float64
}
