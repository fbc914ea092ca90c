package store

// Store defines the interface for solve-record persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if a record doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveResult atomically saves the record for the given run.
	// An existing record for this runID is overwritten. Implementations
	// should use atomic write strategies (temp file + rename) to prevent
	// corruption on failure.
	SaveResult(runID string, record *RunRecord) error

	// LoadResult retrieves the record for the given run.
	// Returns ErrNotFound if no record exists for this runID.
	LoadResult(runID string) (*RunRecord, error)

	// ListResults returns metadata for all stored runs. The returned
	// slice may be empty.
	ListResults() ([]RunInfo, error)

	// DeleteResult removes the record and all associated artifacts
	// (result.json, trace.jsonl) for the given run.
	// Returns ErrNotFound if no record exists for this runID.
	DeleteResult(runID string) error
}

// ErrNotFound is returned when a requested run record does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run record error.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run record not found: " + e.RunID
	}
	return "run record not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
