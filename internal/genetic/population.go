package genetic

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/cwbudde/metaopt/internal/opt"
)

// population holds the evolving candidate set for one run. It is owned
// exclusively by that run and is discarded when Execute returns.
type population[T Solution[T]] struct {
	elements []T
}

func newPopulation[T Solution[T]](capacity int) *population[T] {
	return &population[T]{
		elements: make([]T, 0, capacity),
	}
}

// addIndividuals appends without deduplication.
func (p *population[T]) addIndividuals(individuals []T) {
	p.elements = append(p.elements, individuals...)
}

// sort orders the elements ascending by objective, best first. Incomparable
// objectives (NaN on either side) are treated as equal rather than
// panicking; the sort is stable so equal keys keep a deterministic order.
func (p *population[T]) sort() {
	sort.SliceStable(p.elements, func(i, j int) bool {
		a := p.elements[i].Objective()
		b := p.elements[j].Objective()
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		return a < b
	})
}

// truncate keeps only the first size elements. Called after sort, this is
// elitist survival: the lowest objectives stay.
func (p *population[T]) truncate(size int) {
	if len(p.elements) > size {
		p.elements = p.elements[:size]
	}
}

// generateOffspring mates the top-ranked elements pairwise, (0,1), (2,3) and
// so on, and flattens all children into a single slice. The config invariant
// guarantees enough parents exist for a valid run; an undersized population
// is an execution error here.
func (p *population[T]) generateOffspring(pairs int, rng *rand.Rand) ([]T, error) {
	if 2*pairs > len(p.elements) {
		return nil, opt.NewExecError(fmt.Sprintf(
			"not enough individuals for %d parent pairs (population has %d)",
			pairs, len(p.elements),
		))
	}

	var offspring []T
	for idx := 0; idx < pairs; idx++ {
		children, err := p.elements[2*idx].Crossover(p.elements[2*idx+1], rng)
		if err != nil {
			return nil, opt.WrapExecError("could not generate offspring", err)
		}
		offspring = append(offspring, children...)
	}
	return offspring, nil
}

// bestIndividual returns a copy of the lowest-objective element.
func (p *population[T]) bestIndividual() (T, error) {
	var zero T
	if len(p.elements) == 0 {
		return zero, opt.NewExecError("empty population")
	}
	return p.elements[0].Clone(), nil
}

func (p *population[T]) size() int {
	return len(p.elements)
}
