// Package qfm computes quadratic-flux-minimizing surfaces: surface shapes
// minimizing the normal-field-squared residual of a magnetic field model,
// subject to a constraint on a scalar surface label such as the enclosed
// volume or toroidal flux. Where exact flux surfaces exist the residual
// vanishes; elsewhere the QFM surface approximates one.
package qfm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/qfmsurface/internal/field"
	"github.com/cwbudde/qfmsurface/internal/opt"
)

// QfmSurface binds a field model, a surface, a label functional and a
// target label value, and drives external solvers towards the constrained
// minimum of the QFM residual. The configuration is immutable after New;
// the surface's dof vector is the single piece of shared mutable state,
// rewritten on every evaluation so the label and residual evaluators always
// see the candidate point.
//
// The label constraint is enforced either with a quadratic penalty
// (MinimizePenaltyLBFGS, MinimizePenaltyMayfly) or exactly by a constrained
// SQP solver (MinimizeExactSLSQP).
type QfmSurface struct {
	field    field.Field
	surface  Surface
	label    Functional
	target   float64
	residual ResidualFactory
}

// New creates a QfmSurface orchestrator. residual builds the QFM residual
// evaluator for the surface and field model; label measures the constrained
// surface quantity whose value should reach targetLabel.
func New(f field.Field, s Surface, label Functional, targetLabel float64, residual ResidualFactory) *QfmSurface {
	return &QfmSurface{
		field:    f,
		surface:  s,
		label:    label,
		target:   targetLabel,
		residual: residual,
	}
}

// Result records the outcome of a solver driver run. The surface is the
// same object passed to New, mutated in place to the final dofs.
type Result struct {
	Fun        float64     // Final objective value
	Gradient   []float64   // Final gradient
	Iterations int         // Solver iterations performed
	Info       *opt.Result // Solver-specific diagnostics
	Success    bool        // Whether the solver reports convergence
	Surface    Surface     // The surface, holding the final dofs
}

// LabelConstraint sets the surface dofs to x and returns the constraint
// residual
//
//	0.5 * (label(x) - targetLabel)^2
//
// plus its gradient with respect to the dofs when derivatives is 1.
// derivatives outside {0, 1} is a caller bug and panics.
func (q *QfmSurface) LabelConstraint(x []float64, derivatives int) (float64, []float64) {
	if derivatives != 0 && derivatives != 1 {
		panic(fmt.Sprintf("qfm: LabelConstraint derivatives must be 0 or 1, got %d", derivatives))
	}

	q.surface.SetDofs(x)
	rl := q.label.J() - q.target
	val := 0.5 * rl * rl
	if derivatives == 0 {
		return val, nil
	}

	dl := q.label.DJ()
	grad := make([]float64, len(dl))
	for i, d := range dl {
		grad[i] = rl * d
	}
	return val, grad
}

// Objective sets the surface dofs to x and returns the pure QFM residual,
// plus its gradient when derivatives is 1. No constraint term is included.
// derivatives outside {0, 1} panics.
func (q *QfmSurface) Objective(x []float64, derivatives int) (float64, []float64) {
	if derivatives != 0 && derivatives != 1 {
		panic(fmt.Sprintf("qfm: Objective derivatives must be 0 or 1, got %d", derivatives))
	}

	q.surface.SetDofs(x)
	res := q.residual(q.surface, q.field)

	r := res.J()
	if derivatives == 0 {
		return r, nil
	}
	return r, res.DJ()
}

// PenaltyObjective sets the surface dofs to x and returns
//
//	residual(x) + 0.5 * weight * (label(x) - targetLabel)^2
//
// plus its gradient when derivatives is 1 and additionally its Hessian when
// derivatives is 2. The Hessian is the quadratic-penalty approximation
//
//	d2r + weight*rl*d2l + weight*(dl ⊗ dl)
//
// whose rank-one term comes from differentiating rl*dl a second time.
// derivatives outside {0, 1, 2} panics.
func (q *QfmSurface) PenaltyObjective(x []float64, derivatives int, weight float64) (float64, []float64, *mat.SymDense) {
	if derivatives < 0 || derivatives > 2 {
		panic(fmt.Sprintf("qfm: PenaltyObjective derivatives must be 0, 1 or 2, got %d", derivatives))
	}

	q.surface.SetDofs(x)
	res := q.residual(q.surface, q.field)

	r := res.J()
	rl := q.label.J() - q.target

	val := r + 0.5*weight*rl*rl
	if derivatives == 0 {
		return val, nil, nil
	}

	dr := res.DJ()
	dl := q.label.DJ()
	grad := make([]float64, len(dr))
	for i := range grad {
		grad[i] = dr[i] + weight*rl*dl[i]
	}
	if derivatives == 1 {
		return val, grad, nil
	}

	var penalty mat.SymDense
	penalty.ScaleSym(weight*rl, q.label.D2J())

	var hess mat.SymDense
	hess.AddSym(res.D2J(), &penalty)
	hess.SymRankOne(&hess, weight, mat.NewVecDense(len(dl), dl))
	return val, grad, &hess
}

// MinimizePenaltyLBFGS finds the dofs approximately solving
//
//	min residual(x) + 0.5 * weight * (label(x) - targetLabel)^2
//
// with the bound-capable L-BFGS-B solver, starting from the surface's
// current dofs. tol drives both the function-decrease and the
// projected-gradient stopping tests. Non-convergence is reported through
// Result.Success, never as an error.
func (q *QfmSurface) MinimizePenaltyLBFGS(tol float64, maxiter int, weight float64) (*Result, error) {
	minimizer := &opt.LBFGSB{
		Tol:         tol,
		MaxIter:     maxiter,
		Corrections: 200,
	}

	obj := func(x, grad []float64) float64 {
		if grad == nil {
			val, _, _ := q.PenaltyObjective(x, 0, weight)
			return val
		}
		val, g, _ := q.PenaltyObjective(x, 1, weight)
		copy(grad, g)
		return val
	}

	res, err := minimizer.Minimize(obj, q.surface.Dofs())
	if err != nil {
		return nil, err
	}
	return q.finish(res), nil
}

// MinimizeExactSLSQP finds the dofs approximately solving
//
//	min residual(x)  subject to  label(x) = targetLabel
//
// with the constrained SLSQP solver, starting from the surface's current
// dofs. The equality constraint handed to the solver is the label
// constraint residual 0.5*(label-target)^2 together with its gradient,
// forced to zero.
func (q *QfmSurface) MinimizeExactSLSQP(tol float64, maxiter int) (*Result, error) {
	minimizer := &opt.SLSQP{
		Tol:     tol,
		MaxIter: maxiter,
	}

	obj := func(x, grad []float64) float64 {
		if grad == nil {
			val, _ := q.Objective(x, 0)
			return val
		}
		val, g := q.Objective(x, 1)
		copy(grad, g)
		return val
	}
	con := func(x, grad []float64) float64 {
		if grad == nil {
			val, _ := q.LabelConstraint(x, 0)
			return val
		}
		val, g := q.LabelConstraint(x, 1)
		copy(grad, g)
		return val
	}

	res, err := minimizer.Minimize(obj, []opt.Objective{con}, q.surface.Dofs())
	if err != nil {
		return nil, err
	}
	return q.finish(res), nil
}

// MinimizePenaltyMayfly minimizes the penalty objective with the
// derivative-free mayfly swarm optimizer, for residual landscapes too rough
// for a quasi-Newton start. bound is the symmetric box limit applied to
// every dof. The swarm initializes its own random population within the
// bounds; unlike the gradient-based drivers this does not restart from the
// surface's current dofs. The recorded gradient comes from one order-1
// evaluation at the swarm's best point.
func (q *QfmSurface) MinimizePenaltyMayfly(iters, pop int, seed int64, weight, bound float64) (*Result, error) {
	minimizer := opt.NewMayfly(iters, pop, seed, bound)

	obj := func(x, grad []float64) float64 {
		val, _, _ := q.PenaltyObjective(x, 0, weight)
		return val
	}

	res, err := minimizer.Minimize(obj, q.surface.Dofs())
	if err != nil {
		return nil, err
	}
	_, grad, _ := q.PenaltyObjective(res.X, 1, weight)
	res.Gradient = grad
	return q.finish(res), nil
}

// finish writes the solver's final point back into the surface and wraps
// the solver result in the driver record. Writing the dofs last keeps the
// surface state equal to the point that produced Fun and Gradient even if
// the solver's internal last evaluation was elsewhere.
func (q *QfmSurface) finish(res *opt.Result) *Result {
	q.surface.SetDofs(res.X)
	return &Result{
		Fun:        res.Fun,
		Gradient:   res.Gradient,
		Iterations: res.Iterations,
		Info:       res,
		Success:    res.Success,
		Surface:    q.surface,
	}
}
