package genetic

import (
	"fmt"

	"github.com/cwbudde/metaopt/internal/opt"
)

// Config holds the parameters of a genetic algorithm run.
// Construct it through New so every instance in circulation is valid.
type Config struct {
	// Generations is the number of generations to evolve.
	Generations int
	// PopulationSize is the number of individuals kept after each generation.
	PopulationSize int
	// MutationRate is passed through to each offspring's Mutate call.
	MutationRate float64
	// PairsParents is the number of parent pairs mated per generation.
	PairsParents int
	// StopThreshold stops the run early once the best objective reaches it.
	// Nil disables early stopping.
	StopThreshold *float64
}

// New builds a validated config. It is the only validation point; the
// returned config is treated as immutable.
func New(generations, populationSize int, mutationRate float64, pairsParents int, stopThreshold *float64) (Config, error) {
	cfg := Config{
		Generations:    generations,
		PopulationSize: populationSize,
		MutationRate:   mutationRate,
		PairsParents:   pairsParents,
		StopThreshold:  stopThreshold,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the stock parameters: 100 generations, population
// of 100, mutation rate 0.1, 2 parent pairs, no stop threshold.
func DefaultConfig() Config {
	return Config{
		Generations:    100,
		PopulationSize: 100,
		MutationRate:   0.1,
		PairsParents:   2,
	}
}

// Validate checks every config invariant and reports the first violation.
func (c Config) Validate() error {
	if c.Generations <= 0 {
		return opt.NewConfigError(fmt.Sprintf("the number of generations must be > 0 (got %d)", c.Generations))
	}
	if c.PopulationSize <= 0 {
		return opt.NewConfigError(fmt.Sprintf("the population size must be > 0 (got %d)", c.PopulationSize))
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return opt.NewConfigError(fmt.Sprintf("the mutation rate must be between 0 and 1 (got %g)", c.MutationRate))
	}
	if 2*c.PairsParents > c.PopulationSize {
		return opt.NewConfigError(fmt.Sprintf(
			"the population size must cover the parents selected each generation (2*%d > %d)",
			c.PairsParents, c.PopulationSize,
		))
	}
	return nil
}
