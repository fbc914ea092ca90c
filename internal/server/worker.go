package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/qfmsurface/internal/runner"
	"github.com/cwbudde/qfmsurface/internal/store"
)

// runJob executes a solve job in the background. If recordStore is not
// nil the final run record is persisted under the job's ID, and a
// continuation trace is written when the job has more than one penalty
// weight.
func runJob(ctx context.Context, jm *JobManager, recordStore store.Store, dataDir, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "problem", job.Config.Problem, "method", job.Config.Method)

	// Check for cancellation before starting the expensive solve
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	var tracer *store.TraceWriter
	if recordStore != nil && len(job.Config.Weights) > 1 {
		tracer, err = store.NewTraceWriter(dataDir, jobID, false)
		if err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("failed to create trace writer: %w", err))
			return err
		}
		defer tracer.Close()
	}

	start := time.Now()
	record, err := runner.Execute(job.Config, tracer)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	elapsed := time.Since(start)

	// Check for cancellation after the solve; the solvers only stop at
	// their iteration caps, so this is the first point a cancel request
	// can take effect.
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	record.RunID = jobID
	if recordStore != nil {
		if err := recordStore.SaveResult(jobID, record); err != nil {
			slog.Warn("Failed to persist run record", "job_id", jobID, "error", err)
			// The in-memory job still carries the results
		}
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Fun = record.Fun
		j.GradNorm = record.GradNorm
		j.Iterations = record.Iterations
		j.Success = record.Success
		j.Dofs = record.Dofs
		j.Label = record.Label
		j.TargetLabel = record.TargetLabel
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"fun", record.Fun,
		"grad_norm", record.GradNorm,
		"success", record.Success,
	)

	return nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
