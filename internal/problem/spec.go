package problem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/qfmsurface/internal/field"
	"github.com/cwbudde/qfmsurface/internal/qfm"
)

// Built bundles an assembled demo problem ready for the solver drivers.
type Built struct {
	Name        string
	QFM         *qfm.QfmSurface
	Surface     qfm.Surface
	Label       qfm.Functional
	TargetLabel float64
}

// Build assembles a named demo problem:
//
//   - "ellipsoid": semi-axis surface starting at (1, 1, 1); the residual is
//     the squared shape deviation from the reference ellipsoid
//     (1.2, 0.8, 1.0); the label is the enclosed volume with a target of
//     1.5 unit-sphere volumes.
//   - "degenerate": three dofs with an identically-zero residual and the
//     linear label a+b+c targeting 2; every dof vector on that plane is
//     optimal, so any converged solve must land on it.
func Build(name string) (*Built, error) {
	switch name {
	case "ellipsoid":
		surface := NewDofSurface([]float64{1, 1, 1})
		label := &Volume{Surface: surface}
		target := 4.0 / 3.0 * math.Pi * 1.5

		reference := []float64{1.2, 0.8, 1.0}
		eye := mat.NewSymDense(3, nil)
		for i := 0; i < 3; i++ {
			eye.SetSym(i, i, 1)
		}
		residual := func(s qfm.Surface, f field.Field) qfm.Functional {
			return &Quadratic{Surface: s, A: eye, Center: reference}
		}

		q := qfm.New(field.NewToroidal(1, 1), surface, label, target, residual)
		return &Built{Name: name, QFM: q, Surface: surface, Label: label, TargetLabel: target}, nil

	case "degenerate":
		surface := NewDofSurface([]float64{0.5, 0.5, 0.5})
		label := &Linear{Surface: surface, Coeffs: []float64{1, 1, 1}}
		target := 2.0

		residual := func(s qfm.Surface, f field.Field) qfm.Functional {
			return &Zero{N: 3}
		}

		q := qfm.New(field.NewToroidal(1, 1), surface, label, target, residual)
		return &Built{Name: name, QFM: q, Surface: surface, Label: label, TargetLabel: target}, nil

	default:
		return nil, fmt.Errorf("unknown problem %q", name)
	}
}

// Names lists the available demo problems.
func Names() []string {
	return []string{"ellipsoid", "degenerate"}
}
