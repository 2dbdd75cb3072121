package genetic

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/metaopt/internal/opt"
)

// Algorithm evolves a population of solutions toward a minimal objective
// using elitist mating and elitist replacement: the top-ranked individuals
// mate, and offspring compete against the full prior population for
// survival.
type Algorithm[T Solution[T]] struct {
	Config Config
}

// NewAlgorithm creates a genetic algorithm after validating the config.
func NewAlgorithm[T Solution[T]](cfg Config) (*Algorithm[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Algorithm[T]{Config: cfg}, nil
}

// Execute runs the algorithm over the initial individuals and returns the
// best solution found together with run statistics. The rng is the only
// source of randomness for the whole run; a fixed seed reproduces the run
// exactly. A single capability failure aborts the run without retry.
func (a *Algorithm[T]) Execute(initial []T, rng *rand.Rand) (*Result[T], error) {
	if rng == nil {
		return nil, opt.NewExecError("random source is nil")
	}

	start := time.Now()

	pop := newPopulation[T](a.Config.PopulationSize + 2*a.Config.PairsParents)
	pop.addIndividuals(initial)
	pop.sort()

	generations := 0
	for g := 0; g < a.Config.Generations; g++ {
		offspring, err := pop.generateOffspring(a.Config.PairsParents, rng)
		if err != nil {
			return nil, err
		}

		for i := range offspring {
			if err := offspring[i].Mutate(a.Config.MutationRate, rng); err != nil {
				return nil, opt.WrapExecError("could not mutate offspring", err)
			}
		}

		// Offspring compete with the full prior population, then the
		// weakest are dropped.
		pop.addIndividuals(offspring)
		pop.sort()
		pop.truncate(a.Config.PopulationSize)
		generations++

		if a.Config.StopThreshold != nil {
			best, err := pop.bestIndividual()
			if err != nil {
				return nil, err
			}
			if best.Objective() <= *a.Config.StopThreshold {
				slog.Debug("Stop threshold reached",
					"generation", generations,
					"objective", best.Objective(),
					"threshold", *a.Config.StopThreshold,
				)
				break
			}
		}
	}

	best, err := pop.bestIndividual()
	if err != nil {
		return nil, err
	}

	return &Result[T]{
		Best:        best,
		Runtime:     time.Since(start),
		Generations: generations,
	}, nil
}
