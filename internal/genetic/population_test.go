package genetic

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/metaopt/internal/opt"
)

// scalarSolution minimizes its raw value. Crossover yields the midpoint and
// the better parent, so offspring are deterministic and easy to assert on.
type scalarSolution struct {
	v float64
}

func (s *scalarSolution) Objective() float64 {
	return s.v
}

func (s *scalarSolution) Clone() *scalarSolution {
	return &scalarSolution{v: s.v}
}

func (s *scalarSolution) Mutate(rate float64, rng *rand.Rand) error {
	s.v += (rng.Float64() - 0.5) * rate
	return nil
}

func (s *scalarSolution) Crossover(other *scalarSolution, rng *rand.Rand) ([]*scalarSolution, error) {
	return []*scalarSolution{
		{v: (s.v + other.v) / 2},
		{v: math.Min(s.v, other.v)},
	}, nil
}

// crossFailSolution fails every crossover attempt.
type crossFailSolution struct {
	scalarSolution
}

func (s *crossFailSolution) Clone() *crossFailSolution {
	return &crossFailSolution{scalarSolution{v: s.v}}
}

func (s *crossFailSolution) Mutate(rate float64, rng *rand.Rand) error {
	return nil
}

func (s *crossFailSolution) Crossover(other *crossFailSolution, rng *rand.Rand) ([]*crossFailSolution, error) {
	return nil, fmt.Errorf("incompatible parents")
}

func newScalarPopulation(values ...float64) *population[*scalarSolution] {
	pop := newPopulation[*scalarSolution](len(values))
	for _, v := range values {
		pop.addIndividuals([]*scalarSolution{{v: v}})
	}
	return pop
}

func TestPopulationSortAndBest(t *testing.T) {
	pop := newScalarPopulation(3, -1, 7, 0.5)
	pop.sort()

	best, err := pop.bestIndividual()
	if err != nil {
		t.Fatalf("Expected best individual: %v", err)
	}
	if best.Objective() != -1 {
		t.Errorf("Expected minimum objective -1, got %g", best.Objective())
	}
}

func TestPopulationSortIdempotent(t *testing.T) {
	pop := newScalarPopulation(5, 2, 2, -3, 9)
	pop.sort()

	once := make([]*scalarSolution, len(pop.elements))
	copy(once, pop.elements)

	pop.sort()
	for i := range once {
		if pop.elements[i] != once[i] {
			t.Fatalf("Second sort reordered element %d", i)
		}
	}
}

func TestPopulationSortHandlesNaN(t *testing.T) {
	// Incomparable objectives are treated as equal: they must never panic
	// and never rank ahead of comparable smaller values preceding them.
	pop := newScalarPopulation(2, -1, math.NaN(), 5)
	pop.sort()

	if pop.size() != 4 {
		t.Fatalf("Sort dropped elements: %d", pop.size())
	}
	best, err := pop.bestIndividual()
	if err != nil {
		t.Fatalf("Expected best individual: %v", err)
	}
	if best.Objective() != -1 {
		t.Errorf("Expected -1 first after sort, got %g", best.Objective())
	}
}

func TestPopulationTruncate(t *testing.T) {
	pop := newScalarPopulation(1, 2, 3, 4, 5)
	pop.sort()
	pop.truncate(3)

	if pop.size() != 3 {
		t.Fatalf("Expected 3 survivors, got %d", pop.size())
	}
	for i, want := range []float64{1, 2, 3} {
		if pop.elements[i].Objective() != want {
			t.Errorf("Survivor %d: expected %g, got %g", i, want, pop.elements[i].Objective())
		}
	}

	pop.truncate(10)
	if pop.size() != 3 {
		t.Errorf("Truncate above size should be a no-op, got %d", pop.size())
	}
}

func TestPopulationGenerateOffspringPairsTopRanked(t *testing.T) {
	pop := newScalarPopulation(1, 2, 3, 4)
	pop.sort()

	rng := rand.New(rand.NewSource(1))
	offspring, err := pop.generateOffspring(2, rng)
	if err != nil {
		t.Fatalf("Expected offspring: %v", err)
	}

	// Pairs are (1,2) and (3,4); each yields midpoint then better parent.
	want := []float64{1.5, 1, 3.5, 3}
	if len(offspring) != len(want) {
		t.Fatalf("Expected %d offspring, got %d", len(want), len(offspring))
	}
	for i, w := range want {
		if offspring[i].Objective() != w {
			t.Errorf("Offspring %d: expected %g, got %g", i, w, offspring[i].Objective())
		}
	}
}

func TestPopulationGenerateOffspringUndersized(t *testing.T) {
	pop := newScalarPopulation(1, 2, 3)
	pop.sort()

	rng := rand.New(rand.NewSource(1))
	_, err := pop.generateOffspring(2, rng)
	if err == nil {
		t.Fatal("Expected error for undersized population")
	}

	var execErr *opt.ExecError
	if !errors.As(err, &execErr) {
		t.Errorf("Expected *opt.ExecError, got %T", err)
	}
}

func TestPopulationGenerateOffspringPropagatesFailure(t *testing.T) {
	pop := newPopulation[*crossFailSolution](2)
	pop.addIndividuals([]*crossFailSolution{
		{scalarSolution{v: 1}},
		{scalarSolution{v: 2}},
	})
	pop.sort()

	rng := rand.New(rand.NewSource(1))
	_, err := pop.generateOffspring(1, rng)
	if err == nil {
		t.Fatal("Expected crossover failure to propagate")
	}

	var execErr *opt.ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("Expected *opt.ExecError, got %T", err)
	}
}

func TestPopulationBestIndividualEmpty(t *testing.T) {
	pop := newPopulation[*scalarSolution](0)

	_, err := pop.bestIndividual()
	if err == nil {
		t.Fatal("Expected error for empty population")
	}

	var execErr *opt.ExecError
	if !errors.As(err, &execErr) {
		t.Errorf("Expected *opt.ExecError, got %T", err)
	}
}

func TestPopulationBestIndividualReturnsCopy(t *testing.T) {
	pop := newScalarPopulation(4)
	pop.sort()

	best, err := pop.bestIndividual()
	if err != nil {
		t.Fatalf("Expected best individual: %v", err)
	}

	best.v = -100
	if pop.elements[0].v != 4 {
		t.Error("Mutating the returned best must not affect the population")
	}
}
