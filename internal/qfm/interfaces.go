package qfm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/qfmsurface/internal/field"
)

// Surface holds the degrees of freedom describing a surface shape.
// Implementations own the dof allocation; the dof count is fixed per
// instance, and the solver drivers overwrite the vector in place on every
// evaluation.
type Surface interface {
	// Dofs returns a copy of the current dof vector.
	Dofs() []float64
	// SetDofs overwrites the dof vector with x. The length of x must
	// match the surface's dof count.
	SetDofs(x []float64)
}

// Functional is a scalar quantity of a surface (a label such as volume or
// toroidal flux, or the QFM residual itself) together with its derivatives
// with respect to the surface dofs. All three methods evaluate against the
// surface's current dof state.
type Functional interface {
	J() float64
	DJ() []float64
	D2J() *mat.SymDense
}

// ResidualFactory constructs a QFM residual evaluator bound to the surface
// and field model. The orchestrator builds a fresh evaluator per call so
// the residual always reflects the just-written surface state.
type ResidualFactory func(s Surface, f field.Field) Functional
