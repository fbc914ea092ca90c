// Package problem provides concrete surfaces, labels and residual
// evaluators implementing the collaborator contracts of the qfm package,
// so the CLI, the job server and the end-to-end tests have something to
// solve. The physics lives here, never in the orchestrator.
package problem

import "fmt"

// DofSurface is a plain dof-vector surface with no geometry of its own.
// The dof count is fixed at construction.
type DofSurface struct {
	dofs []float64
}

// NewDofSurface creates a surface holding a copy of dofs.
func NewDofSurface(dofs []float64) *DofSurface {
	s := &DofSurface{dofs: make([]float64, len(dofs))}
	copy(s.dofs, dofs)
	return s
}

// Dofs returns a copy of the current dof vector.
func (s *DofSurface) Dofs() []float64 {
	out := make([]float64, len(s.dofs))
	copy(out, s.dofs)
	return out
}

// SetDofs overwrites the dof vector. Panics if the length of x does not
// match the surface's dof count.
func (s *DofSurface) SetDofs(x []float64) {
	if len(x) != len(s.dofs) {
		panic(fmt.Sprintf("problem: dof length %d does not match surface dof count %d", len(x), len(s.dofs)))
	}
	copy(s.dofs, x)
}
