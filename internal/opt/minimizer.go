// Package opt abstracts the external nonlinear solvers behind small
// minimizer interfaces so callers stay decoupled from any particular
// library's calling convention.
package opt

// Objective evaluates the function value at x. When grad is non-nil it
// must additionally be filled with the gradient at x.
type Objective func(x, grad []float64) float64

// Result holds the outcome of a minimization run.
type Result struct {
	Fun         float64   // Final objective value
	X           []float64 // Final point
	Gradient    []float64 // Final gradient (nil for derivative-free solvers)
	Iterations  int       // Iterations performed
	Evaluations int       // Function/gradient evaluations, 0 if not reported
	Status      string    // Solver-specific termination status
	Success     bool      // Whether the solver reports convergence
}

// Minimizer finds a local minimum of an unconstrained objective starting
// from x0. Non-convergence is reported through Result.Success, not as an
// error; errors are reserved for misconfigured problems.
type Minimizer interface {
	Minimize(obj Objective, x0 []float64) (*Result, error)
}

// ConstrainedMinimizer additionally enforces equality constraints
// c(x) = 0, each supplied as value plus gradient.
type ConstrainedMinimizer interface {
	Minimize(obj Objective, eqcons []Objective, x0 []float64) (*Result, error)
}
