package problem

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/qfmsurface/internal/qfm"
)

// Quadratic is the functional 0.5*(x-c)ᵀA(x-c) of the surface dofs, with
// analytic gradient and Hessian. With A the identity and c the dof vector
// of a reference surface it measures the squared shape deviation from that
// reference, which is the synthetic stand-in used for the QFM residual in
// the demo problems.
type Quadratic struct {
	Surface qfm.Surface
	A       *mat.SymDense
	Center  []float64
}

// J returns 0.5*(x-c)ᵀA(x-c) at the surface's current dofs.
func (q *Quadratic) J() float64 {
	d := q.delta()
	n := len(d)
	var sum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum += d[i] * q.A.At(i, j) * d[j]
		}
	}
	return 0.5 * sum
}

// DJ returns the gradient A(x-c).
func (q *Quadratic) DJ() []float64 {
	d := q.delta()
	n := len(d)
	grad := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			grad[i] += q.A.At(i, j) * d[j]
		}
	}
	return grad
}

// D2J returns a copy of A.
func (q *Quadratic) D2J() *mat.SymDense {
	// CopySym copies min(dims) and never grows the receiver, so it must
	// be allocated at A's size up front.
	h := mat.NewSymDense(q.A.SymmetricDim(), nil)
	h.CopySym(q.A)
	return h
}

func (q *Quadratic) delta() []float64 {
	x := q.Surface.Dofs()
	d := make([]float64, len(x))
	for i, v := range x {
		d[i] = v - q.Center[i]
	}
	return d
}

// Linear is the functional cᵀx + b of the surface dofs, a degenerate label
// with constant gradient and zero curvature.
type Linear struct {
	Surface qfm.Surface
	Coeffs  []float64
	Offset  float64
}

func (l *Linear) J() float64 {
	x := l.Surface.Dofs()
	val := l.Offset
	for i, c := range l.Coeffs {
		val += c * x[i]
	}
	return val
}

func (l *Linear) DJ() []float64 {
	grad := make([]float64, len(l.Coeffs))
	copy(grad, l.Coeffs)
	return grad
}

func (l *Linear) D2J() *mat.SymDense {
	return mat.NewSymDense(len(l.Coeffs), nil)
}

// Zero is the identically-zero functional of an n-dof surface. A field
// admitting exact flux surfaces has zero QFM residual on them; Zero stands
// in for that degenerate case.
type Zero struct {
	N int
}

func (z *Zero) J() float64         { return 0 }
func (z *Zero) DJ() []float64      { return make([]float64, z.N) }
func (z *Zero) D2J() *mat.SymDense { return mat.NewSymDense(z.N, nil) }

// Volume is the enclosed-volume label of an ellipsoid surface whose dofs
// are the three semi-axes (a, b, c): V = 4/3·π·abc.
type Volume struct {
	Surface qfm.Surface
}

func (v *Volume) J() float64 {
	x := v.Surface.Dofs()
	return 4.0 / 3.0 * math.Pi * x[0] * x[1] * x[2]
}

func (v *Volume) DJ() []float64 {
	x := v.Surface.Dofs()
	k := 4.0 / 3.0 * math.Pi
	return []float64{k * x[1] * x[2], k * x[0] * x[2], k * x[0] * x[1]}
}

func (v *Volume) D2J() *mat.SymDense {
	x := v.Surface.Dofs()
	k := 4.0 / 3.0 * math.Pi
	h := mat.NewSymDense(3, nil)
	h.SetSym(0, 1, k*x[2])
	h.SetSym(0, 2, k*x[1])
	h.SetSym(1, 2, k*x[0])
	return h
}
