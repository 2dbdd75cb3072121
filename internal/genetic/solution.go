package genetic

import (
	"math/rand"

	"github.com/cwbudde/metaopt/internal/opt"
)

// Solution is the capability contract a type must satisfy to be evolved.
// The type parameter is the concrete solution type itself, so Crossover and
// Clone stay fully typed without casts.
type Solution[T any] interface {
	opt.Solution

	// Clone returns an independent copy of the solution.
	Clone() T

	// Mutate perturbs the solution in place. The rate is interpreted by the
	// solution, not by the algorithm.
	Mutate(rate float64, rng *rand.Rand) error

	// Crossover produces one or more children from two parents. Neither
	// parent is modified.
	Crossover(other T, rng *rand.Rand) ([]T, error)
}
