// Package runner executes configured solve runs against the demo problems
// and assembles persistable run records. It is shared by the CLI and the
// job server.
package runner

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/qfmsurface/internal/problem"
	"github.com/cwbudde/qfmsurface/internal/qfm"
	"github.com/cwbudde/qfmsurface/internal/store"
)

// Execute runs one configured solve and returns its persistable record.
// tracer may be nil; when set, one entry per penalty continuation stage is
// written. Solver non-convergence is recorded in the result, not returned
// as an error.
func Execute(cfg store.RunConfig, tracer *store.TraceWriter) (*store.RunRecord, error) {
	built, err := problem.Build(cfg.Problem)
	if err != nil {
		return nil, err
	}

	weights := cfg.Weights
	if len(weights) == 0 {
		weights = []float64{1}
	}

	var res *qfm.Result
	switch cfg.Method {
	case "lbfgs":
		res, err = continuation(built, weights, tracer, func(w float64) (*qfm.Result, error) {
			return built.QFM.MinimizePenaltyLBFGS(cfg.Tol, cfg.MaxIter, w)
		})
	case "mayfly":
		pop := cfg.Pop
		if pop <= 0 {
			pop = 30
		}
		bound := cfg.Bound
		if bound <= 0 {
			bound = 10
		}
		res, err = continuation(built, weights, tracer, func(w float64) (*qfm.Result, error) {
			return built.QFM.MinimizePenaltyMayfly(cfg.MaxIter, pop, cfg.Seed, w, bound)
		})
	case "slsqp":
		start := time.Now()
		res, err = built.QFM.MinimizeExactSLSQP(cfg.Tol, cfg.MaxIter)
		if err == nil {
			slog.Info("SLSQP solve finished",
				"fun", res.Fun, "iters", res.Iterations,
				"success", res.Success, "elapsed", time.Since(start))
		}
	default:
		return nil, fmt.Errorf("unknown method %q", cfg.Method)
	}
	if err != nil {
		return nil, err
	}

	return &store.RunRecord{
		Config:      cfg,
		Fun:         res.Fun,
		GradNorm:    floats.Norm(res.Gradient, 2),
		Iterations:  res.Iterations,
		Success:     res.Success,
		Dofs:        built.Surface.Dofs(),
		Label:       built.Label.J(),
		TargetLabel: built.TargetLabel,
		Timestamp:   time.Now(),
	}, nil
}

// continuation runs the penalty solve once per weight. The surface keeps
// its dofs between calls, so gradient-based stages restart from the
// previous stage's optimum; the mayfly driver draws a fresh random
// population per stage and only its trace benefits from the schedule.
// Larger weights enforce the label more tightly, so the schedule should
// be increasing.
func continuation(built *problem.Built, weights []float64, tracer *store.TraceWriter, solve func(weight float64) (*qfm.Result, error)) (*qfm.Result, error) {
	var last *qfm.Result
	total := 0

	for i, w := range weights {
		res, err := solve(w)
		if err != nil {
			return nil, err
		}
		total += res.Iterations

		dev := math.Abs(built.Label.J() - built.TargetLabel)
		slog.Info("Penalty stage finished",
			"stage", i, "weight", w, "fun", res.Fun,
			"label_dev", dev, "iters", res.Iterations, "success", res.Success)

		if tracer != nil {
			entry := store.TraceEntry{
				Stage:          i,
				Weight:         w,
				Fun:            res.Fun,
				LabelDeviation: dev,
				Iterations:     res.Iterations,
				Success:        res.Success,
				Timestamp:      time.Now(),
			}
			if err := tracer.Write(entry); err != nil {
				return nil, err
			}
		}

		last = res
	}

	last.Iterations = total
	return last, nil
}
