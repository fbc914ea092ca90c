package store

import (
	"fmt"
	"time"
)

// RunConfig holds the configuration of a solve run (record copy).
// This avoids import cycles with the server package.
type RunConfig struct {
	Problem string    `json:"problem"`           // Demo problem name
	Method  string    `json:"method"`            // lbfgs, slsqp, mayfly
	Tol     float64   `json:"tol"`               // Convergence tolerance
	MaxIter int       `json:"maxIter"`           // Iteration cap per solve
	Weights []float64 `json:"weights,omitempty"` // Penalty continuation schedule (lbfgs, mayfly)
	Pop     int       `json:"pop,omitempty"`     // Mayfly population size
	Seed    int64     `json:"seed,omitempty"`    // Mayfly random seed
	Bound   float64   `json:"bound,omitempty"`   // Mayfly symmetric box limit
}

// RunRecord is the persisted outcome of a solve run. All fields are
// serialized to JSON. The dof vector is the surface state at the end of the
// run, i.e. the point that produced Fun and GradNorm.
type RunRecord struct {
	// RunID is the unique identifier for this solve run
	RunID string `json:"runId"`

	// Config holds the run configuration, kept for reproducibility
	Config RunConfig `json:"config"`

	// Fun is the final objective value reported by the solver
	Fun float64 `json:"fun"`

	// GradNorm is the euclidean norm of the final gradient
	GradNorm float64 `json:"gradNorm"`

	// Iterations is the total solver iteration count
	Iterations int `json:"iterations"`

	// Success reports whether the solver converged
	Success bool `json:"success"`

	// Dofs is the final surface dof vector
	Dofs []float64 `json:"dofs"`

	// Label and TargetLabel record the final label value against its target
	Label       float64 `json:"label"`
	TargetLabel float64 `json:"targetLabel"`

	// Timestamp records when this record was created
	Timestamp time.Time `json:"timestamp"`
}

// RunInfo contains metadata about a run without the full dof vector.
// Used for listing runs without loading large parameter arrays.
type RunInfo struct {
	RunID     string    `json:"runId"`
	Problem   string    `json:"problem"`
	Method    string    `json:"method"`
	Fun       float64   `json:"fun"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// ToInfo converts a full RunRecord to RunInfo (metadata only).
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:     r.RunID,
		Problem:   r.Config.Problem,
		Method:    r.Config.Method,
		Fun:       r.Fun,
		Success:   r.Success,
		Timestamp: r.Timestamp,
	}
}

// Validate checks if the record has valid data.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(r.Dofs) == 0 {
		return &ValidationError{Field: "Dofs", Reason: "cannot be empty"}
	}
	if r.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	if r.Config.Method == "" {
		return &ValidationError{Field: "Config.Method", Reason: "cannot be empty"}
	}
	if r.Config.Tol <= 0 {
		return &ValidationError{Field: "Config.Tol", Reason: "must be positive"}
	}
	if r.Config.MaxIter <= 0 {
		return &ValidationError{Field: "Config.MaxIter", Reason: "must be positive"}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}
