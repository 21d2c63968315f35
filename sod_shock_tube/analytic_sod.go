package sod_shock_tube

import (
	"math"
)

/*
	Analytic solution of Sod's shock tube on [0,1] with the diaphragm at
	x = 0.5: left state (rho, p) = (1, 1), right state (0.125, 0.1), both
	at rest, gamma = 1.4. Used as the reference for solver validation.
*/
const (
	gamma        = 1.4
	x0           = 0.5
	RhoL, PL, UL = 1., 1., 0.
	RhoR, PR, UR = 0.125, 0.1, 0.
)

type Solution struct {
	T float64
	// Post-shock and contact plateau states
	PPost, VPost, RhoPost, RhoMiddle float64
	// Wave positions: rarefaction head and tail, contact, shock
	X1, X2, X3, X4 float64
}

func Solve(t float64) (sol *Solution) {
	var (
		mu    = math.Sqrt((gamma - 1) / (gamma + 1))
		cL    = math.Sqrt(gamma * PL / RhoL)
		pPost = fzero(shockTubeFunc, math.Pi)
		vPost = 2 * (math.Sqrt(gamma) / (gamma - 1)) * (1 - math.Pow(pPost, (gamma-1)/(2*gamma)))
		c2    = cL - 0.5*(gamma-1)*vPost
	)
	sol = &Solution{
		T:         t,
		PPost:     pPost,
		VPost:     vPost,
		RhoPost:   RhoR * ((pPost/PR + mu*mu) / (1 + mu*mu*(pPost/PR))),
		RhoMiddle: RhoL * math.Pow(pPost/PL, 1./gamma),
	}
	vShock := vPost * (sol.RhoPost / RhoR) / (sol.RhoPost/RhoR - 1)
	sol.X1 = x0 - cL*t
	sol.X2 = x0 + t*(vPost-c2)
	sol.X3 = x0 + vPost*t
	sol.X4 = x0 + vShock*t
	return
}

// At evaluates the primitive state at position x.
func (sol *Solution) At(x float64) (rho, p, u float64) {
	var (
		mu = math.Sqrt((gamma - 1) / (gamma + 1))
		cL = math.Sqrt(gamma * PL / RhoL)
	)
	switch {
	case x < sol.X1:
		rho, p, u = RhoL, PL, UL
	case x <= sol.X2:
		// Rarefaction fan
		c := mu*mu*((x0-x)/sol.T) + (1-mu*mu)*cL
		rho = RhoL * math.Pow(c/cL, 2/(gamma-1))
		p = PL * math.Pow(rho/RhoL, gamma)
		u = (1 - mu*mu) * ((x-x0)/sol.T + cL)
	case x <= sol.X3:
		rho, p, u = sol.RhoMiddle, sol.PPost, sol.VPost
	case x <= sol.X4:
		rho, p, u = sol.RhoPost, sol.PPost, sol.VPost
	default:
		rho, p, u = RhoR, PR, UR
	}
	return
}

// Sample evaluates the solution on n uniform points spanning [0,1].
func (sol *Solution) Sample(n int) (X, Rho, P, U, E []float64) {
	X = make([]float64, n)
	Rho = make([]float64, n)
	P = make([]float64, n)
	U = make([]float64, n)
	E = make([]float64, n)
	for i := 0; i < n; i++ {
		X[i] = float64(i) / float64(n-1)
		Rho[i], P[i], U[i] = sol.At(X[i])
		E[i] = P[i] / ((gamma - 1) * Rho[i])
	}
	return
}

func fzero(f func(P float64) (y float64), start float64) float64 {
	var (
		tol = 0.0000001
		res float64
	)
	start_old := start / 2
	res = f(start_old)
	for math.Abs(res) > tol {
		resNew := f(start)
		deriv := (start - start_old) / (resNew - res)
		start_new := math.Abs(start - 0.01*f(start)/deriv)
		start_old = start
		start = start_new
		res = resNew
	}
	return start
}

// shockTubeFunc is the Rankine-Hugoniot / Riemann-invariant matching
// condition whose root is the post-shock pressure.
func shockTubeFunc(P float64) (y float64) {
	var (
		mu  = math.Sqrt((gamma - 1) / (gamma + 1))
		mu2 = mu * mu
	)
	y = (P-PR)*math.Sqrt((1-mu2)/(RhoR*(P+mu2*PR))) -
		2*(math.Sqrt(gamma)/(gamma-1))*(1-math.Pow(P, (gamma-1)/(2*gamma)))
	return
}
