package anneal

import (
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/metaopt/internal/opt"
)

// Solution is the capability contract a type must satisfy to be annealed.
// The type parameter is the concrete solution type itself, so Neighbor and
// Clone stay fully typed without casts.
type Solution[T any] interface {
	opt.Solution

	// Clone returns an independent copy of the solution.
	Clone() T

	// Neighbor produces one neighboring candidate without modifying the
	// receiver.
	Neighbor(rng *rand.Rand) (T, error)
}

// Status reports where an algorithm instance is in its lifecycle.
type Status string

const (
	StatusReady     Status = "ready"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Algorithm minimizes an objective by the Metropolis accept/reject loop
// over a single current/best solution pair, with a geometrically cooling
// temperature clamped to a floor.
type Algorithm[T Solution[T]] struct {
	Config Config

	status Status
}

// NewAlgorithm creates a simulated annealing algorithm after validating the
// config.
func NewAlgorithm[T Solution[T]](cfg Config) (*Algorithm[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Algorithm[T]{Config: cfg, status: StatusReady}, nil
}

// Status returns the lifecycle status of the most recent Execute call.
func (a *Algorithm[T]) Status() Status {
	return a.status
}

func (a *Algorithm[T]) cooldown(temperature float64) float64 {
	return math.Max(temperature*a.Config.CoolingRate, a.Config.MinimalTemperature)
}

// Execute runs the annealing loop from the initial solution and returns the
// best solution seen together with run statistics. The rng is the only
// source of randomness for the whole run; a fixed seed reproduces the run
// exactly. A neighbor generation failure aborts the run without retry.
func (a *Algorithm[T]) Execute(initial T, rng *rand.Rand) (*Result[T], error) {
	if rng == nil {
		a.status = StatusFailed
		return nil, opt.NewExecError("random source is nil")
	}

	start := time.Now()
	a.status = StatusRunning

	current := initial
	best := current.Clone()
	temperature := a.Config.InitialTemperature

	iterations := 0
	for i := 0; i < a.Config.MaxIterations; i++ {
		neighbor, err := current.Neighbor(rng)
		if err != nil {
			a.status = StatusFailed
			return nil, opt.WrapExecError("could not generate a new solution", err)
		}

		// Improving moves always pass; worsening moves pass with the
		// Metropolis probability exp(-delta/T).
		delta := neighbor.Objective() - current.Objective()
		accepted := delta <= 0
		if !accepted {
			accepted = math.Exp(-delta/temperature) > rng.Float64()
		}

		if accepted {
			current = neighbor
			if current.Objective() < best.Objective() {
				best = current.Clone()
			}
		}

		// The best-seen solution is tracked separately from current: the
		// search may wander away from it and still report it at the end.
		temperature = a.cooldown(temperature)
		iterations++

		if a.Config.StopThreshold != nil && best.Objective() <= *a.Config.StopThreshold {
			slog.Debug("Stop threshold reached",
				"iteration", iterations,
				"objective", best.Objective(),
				"threshold", *a.Config.StopThreshold,
			)
			break
		}
	}

	a.status = StatusSucceeded
	return &Result[T]{
		Best:       best,
		Runtime:    time.Since(start),
		Iterations: iterations,
	}, nil
}
