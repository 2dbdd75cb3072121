package knapsack

import (
	"fmt"
	"math/rand"
)

// Solution is a candidate item selection for one Problem. Membership is a
// dense per-item slice rather than a set so that every stochastic operator
// iterates items in index order; a seeded run is then fully reproducible.
// The total value and weight are kept in sync incrementally.
type Solution struct {
	problem *Problem
	items   []bool
	value   float64
	weight  float64
}

// NewSolution builds a solution holding exactly the given items.
func NewSolution(problem *Problem, items []int) (*Solution, error) {
	s := &Solution{
		problem: problem,
		items:   make([]bool, problem.NumberItems()),
	}
	for _, idx := range items {
		if idx < 0 || idx >= problem.NumberItems() {
			return nil, fmt.Errorf("item index %d out of range [0, %d)", idx, problem.NumberItems())
		}
		if !s.items[idx] {
			s.toggle(idx)
		}
	}
	return s, nil
}

// NewRandomSolution builds a solution with count distinct randomly chosen
// items.
func NewRandomSolution(problem *Problem, count int, rng *rand.Rand) (*Solution, error) {
	if count > problem.NumberItems() {
		return nil, fmt.Errorf("cannot pick %d distinct items from %d", count, problem.NumberItems())
	}
	s := &Solution{
		problem: problem,
		items:   make([]bool, problem.NumberItems()),
	}
	for picked := 0; picked < count; {
		idx := rng.Intn(problem.NumberItems())
		if !s.items[idx] {
			s.toggle(idx)
			picked++
		}
	}
	return s, nil
}

// toggle flips item membership and updates the cached totals.
func (s *Solution) toggle(idx int) {
	if s.items[idx] {
		s.items[idx] = false
		s.value -= s.problem.Values[idx]
		s.weight -= s.problem.Weights[idx]
	} else {
		s.items[idx] = true
		s.value += s.problem.Values[idx]
		s.weight += s.problem.Weights[idx]
	}
}

// Objective returns the negated total value, or 0 for an overweight
// selection. Every infeasible solution scores the same worst value,
// regardless of how far over capacity it is.
func (s *Solution) Objective() float64 {
	if s.weight > s.problem.MaxWeight {
		return 0
	}
	return -s.value
}

// Value returns the total value of the selected items.
func (s *Solution) Value() float64 {
	return s.value
}

// Weight returns the total weight of the selected items.
func (s *Solution) Weight() float64 {
	return s.weight
}

// Items returns the selected item indices in ascending order.
func (s *Solution) Items() []int {
	var out []int
	for idx, in := range s.items {
		if in {
			out = append(out, idx)
		}
	}
	return out
}

// Clone returns an independent copy of the solution.
func (s *Solution) Clone() *Solution {
	items := make([]bool, len(s.items))
	copy(items, s.items)
	return &Solution{
		problem: s.problem,
		items:   items,
		value:   s.value,
		weight:  s.weight,
	}
}

// Neighbor returns a copy with one uniformly random item toggled in or out.
func (s *Solution) Neighbor(rng *rand.Rand) (*Solution, error) {
	if s.problem.NumberItems() == 0 {
		return nil, fmt.Errorf("cannot generate a neighbor for an empty item table")
	}
	neighbor := s.Clone()
	neighbor.toggle(rng.Intn(s.problem.NumberItems()))
	return neighbor, nil
}

// Mutate toggles each item independently with the given probability.
func (s *Solution) Mutate(rate float64, rng *rand.Rand) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("mutation rate %g outside [0, 1]", rate)
	}
	for idx := range s.items {
		if rng.Float64() < rate {
			s.toggle(idx)
		}
	}
	return nil
}

// Crossover splits the union of both parents' items uniformly at random
// into two children. Parents are left untouched.
func (s *Solution) Crossover(other *Solution, rng *rand.Rand) ([]*Solution, error) {
	if s.problem != other.problem {
		return nil, fmt.Errorf("cannot cross solutions of different problems")
	}

	first := &Solution{problem: s.problem, items: make([]bool, len(s.items))}
	second := &Solution{problem: s.problem, items: make([]bool, len(s.items))}
	for idx := range s.items {
		if !s.items[idx] && !other.items[idx] {
			continue
		}
		if rng.Float64() < 0.5 {
			first.toggle(idx)
		} else {
			second.toggle(idx)
		}
	}
	return []*Solution{first, second}, nil
}
