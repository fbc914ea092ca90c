package opt

import (
	"fmt"

	"github.com/curioloop/optimizer/slsqp"
)

// SLSQP wraps the external SLSQP solver to conform to the
// ConstrainedMinimizer interface.
type SLSQP struct {
	Tol     float64
	MaxIter int
	Bounds  []slsqp.Bound // Optional per-dof bounds
}

// Minimize runs the solver from x0, enforcing every entry of eqcons as an
// equality constraint c(x) = 0.
func (s *SLSQP) Minimize(obj Objective, eqcons []Objective, x0 []float64) (*Result, error) {
	cons := make([]slsqp.Evaluation, len(eqcons))
	for i, c := range eqcons {
		cons[i] = slsqp.Evaluation(c)
	}

	p := slsqp.Problem{
		N:      len(x0),
		Object: slsqp.Evaluation(obj),
		EqCons: cons,
		Stop: slsqp.Termination{
			Accuracy:      s.Tol,
			MaxIterations: s.MaxIter,
		},
		Bounds: s.Bounds,
	}

	sol, err := p.New()
	if err != nil {
		return nil, fmt.Errorf("configure SLSQP: %w", err)
	}

	r := sol.Fit(x0, sol.Init())

	// The solver carries one extra workspace slot at the end of the
	// gradient vector.
	grad := r.G
	if len(grad) > len(x0) {
		grad = grad[:len(x0)]
	}

	return &Result{
		Fun:        r.F,
		X:          r.X,
		Gradient:   grad,
		Iterations: r.NumIter,
		Status:     fmt.Sprintf("SLSQP status %v", r.Status),
		Success:    r.OK,
	}, nil
}
