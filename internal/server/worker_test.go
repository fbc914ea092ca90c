package server

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/qfmsurface/internal/store"
)

func TestRunJob_Completes(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	err := runJob(context.Background(), jm, nil, "", job.ID)
	if err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	done, _ := jm.GetJob(job.ID)
	if done.State != StateCompleted {
		t.Fatalf("Expected state completed, got %s", done.State)
	}
	if !done.Success {
		t.Error("Expected converged solve")
	}
	if math.Abs(done.Label-done.TargetLabel) > 1e-3 {
		t.Errorf("Expected label %g near target %g", done.Label, done.TargetLabel)
	}
	if len(done.Dofs) != 3 {
		t.Errorf("Expected 3 dofs, got %d", len(done.Dofs))
	}
	if done.EndTime == nil {
		t.Error("Expected end time to be set")
	}
}

func TestRunJob_PersistsRecord(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	if err := runJob(context.Background(), jm, st, tmpDir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	record, err := st.LoadResult(job.ID)
	if err != nil {
		t.Fatalf("Failed to load persisted record: %v", err)
	}
	if record.RunID != job.ID {
		t.Errorf("Expected record run ID %s, got %s", job.ID, record.RunID)
	}
	if record.Config.Problem != "degenerate" {
		t.Errorf("Expected persisted config, got problem %q", record.Config.Problem)
	}
}

func TestRunJob_WritesContinuationTrace(t *testing.T) {
	tmpDir := t.TempDir()
	st, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	jm := NewJobManager()
	cfg := JobConfig{
		Problem: "ellipsoid",
		Method:  "lbfgs",
		Tol:     1e-10,
		MaxIter: 500,
		Weights: []float64{1, 10},
	}
	job := jm.CreateJob(cfg)

	if err := runJob(context.Background(), jm, st, tmpDir, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	reader, err := store.NewTraceReader(tmpDir, job.ID)
	if err != nil {
		t.Fatalf("Failed to open trace: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read trace: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 trace entries, got %d", len(entries))
	}
}

func TestRunJob_FailsOnBadProblem(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{
		Problem: "no-such-problem",
		Method:  "lbfgs",
		Tol:     1e-6,
		MaxIter: 100,
	})

	err := runJob(context.Background(), jm, nil, "", job.ID)
	if err == nil {
		t.Fatal("Expected error for unknown problem")
	}

	failed, _ := jm.GetJob(job.ID)
	if failed.State != StateFailed {
		t.Errorf("Expected state failed, got %s", failed.State)
	}
	if failed.Error == "" {
		t.Error("Expected error message to be recorded")
	}
}

func TestRunJob_CancelledBeforeStart(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runJob(ctx, jm, nil, "", job.ID)
	if err == nil {
		t.Fatal("Expected context error")
	}

	cancelled, _ := jm.GetJob(job.ID)
	if cancelled.State != StateCancelled {
		t.Errorf("Expected state cancelled, got %s", cancelled.State)
	}
	if cancelled.EndTime == nil {
		t.Error("Expected end time to be set")
	}
}

func TestRunJob_UnknownJob(t *testing.T) {
	jm := NewJobManager()

	err := runJob(context.Background(), jm, nil, "", "nonexistent")
	if err == nil {
		t.Fatal("Expected error for unknown job ID")
	}
}

func TestMarkJobFailed(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	markJobFailed(jm, job.ID, context.DeadlineExceeded)

	failed, _ := jm.GetJob(job.ID)
	if failed.State != StateFailed {
		t.Errorf("Expected state failed, got %s", failed.State)
	}
	if failed.Error != context.DeadlineExceeded.Error() {
		t.Errorf("Unexpected error message: %s", failed.Error)
	}
	if failed.EndTime == nil || failed.EndTime.After(time.Now()) {
		t.Error("Expected a valid end time")
	}
}
