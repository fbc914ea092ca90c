package opt

import (
	"fmt"
	"math"

	"github.com/curioloop/optimizer/lbfgsb"
)

// LBFGSB wraps the external L-BFGS-B solver to conform to the Minimizer
// interface. Tol drives both the relative function-decrease test and the
// projected-gradient test, mirroring the ftol/gtol convention of other
// L-BFGS-B frontends.
type LBFGSB struct {
	Tol         float64
	MaxIter     int
	Corrections int            // BFGS correction pairs (default 10)
	Bounds      []lbfgsb.Bound // Optional per-dof bounds
}

// Minimize runs the solver from x0 until its stopping tests trigger or the
// iteration cap is hit.
func (l *LBFGSB) Minimize(obj Objective, x0 []float64) (*Result, error) {
	m := l.Corrections
	if m <= 0 {
		m = 10
	}

	// The solver's function-decrease test is factr*epsmch; dividing the
	// requested tolerance by epsmch recovers an absolute-style ftol.
	epsmch := math.Nextafter(1, 2) - 1

	p := lbfgsb.Problem{
		N:    len(x0),
		M:    m,
		Eval: lbfgsb.Evaluation(obj),
		Stop: lbfgsb.Termination{
			MaxIterations:     l.MaxIter,
			EpsAccuracyFactor: l.Tol / epsmch,
			ProjGradTolerance: l.Tol,
		},
		Bounds: l.Bounds,
	}

	s, err := p.New(nil)
	if err != nil {
		return nil, fmt.Errorf("configure L-BFGS-B: %w", err)
	}

	r := s.Fit(x0, s.Init())
	return &Result{
		Fun:         r.F,
		X:           r.X,
		Gradient:    r.G,
		Iterations:  r.NumIter,
		Evaluations: r.NumEval,
		Status:      fmt.Sprintf("L-BFGS-B status %v", r.Status),
		Success:     r.OK,
	}, nil
}
