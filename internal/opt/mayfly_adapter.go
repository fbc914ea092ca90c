package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// Mayfly wraps the external mayfly swarm optimizer to conform to the
// Minimizer interface. It is derivative-free: the gradient argument of the
// objective is never requested.
type Mayfly struct {
	maxIters int
	popSize  int
	seed     int64
	bound    float64
}

// NewMayfly creates a new mayfly optimizer adapter. bound is the symmetric
// box limit applied to every dof.
func NewMayfly(maxIters, popSize int, seed int64, bound float64) *Mayfly {
	return &Mayfly{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
		bound:    bound,
	}
}

// Minimize runs the swarm search. The starting point x0 only fixes the
// problem dimension; the external library initializes its own random
// population within the bounds.
func (m *Mayfly) Minimize(obj Objective, x0 []float64) (*Result, error) {
	config := mayfly.NewDefaultConfig()

	config.ObjectiveFunc = func(x []float64) float64 { return obj(x, nil) }
	config.ProblemSize = len(x0)
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize

	// The external library uses one scalar bound pair for all dimensions.
	config.LowerBound = -m.bound
	config.UpperBound = m.bound

	// Set random seed for reproducibility
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, fmt.Errorf("mayfly optimization: %w", err)
	}

	return &Result{
		Fun:        result.GlobalBest.Cost,
		X:          result.GlobalBest.Position,
		Iterations: m.maxIters,
		Status:     "mayfly swarm finished",
		Success:    true,
	}, nil
}
