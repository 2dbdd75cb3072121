package knapsack

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Problem is a 0/1 knapsack instance: items with fixed values and weights,
// and a maximum total weight.
type Problem struct {
	// MaxWeight is the capacity of the knapsack.
	MaxWeight float64
	// Weights holds the weight of each item.
	Weights []float64
	// Values holds the value of each item.
	Values []float64
	// Optimal is the best known total value, when one is recorded.
	Optimal float64
	// KnownOptimal reports whether Optimal is meaningful.
	KnownOptimal bool
}

// NewProblem creates a knapsack instance over the given item table.
func NewProblem(values, weights []float64, maxWeight float64) (*Problem, error) {
	if len(values) != len(weights) {
		return nil, fmt.Errorf("mismatched item table: %d values vs %d weights", len(values), len(weights))
	}
	return &Problem{
		MaxWeight: maxWeight,
		Weights:   weights,
		Values:    values,
	}, nil
}

// NumberItems returns the number of items in the instance.
func (p *Problem) NumberItems() int {
	return len(p.Values)
}

// Load reads knapsack instances from a file. Instances are separated by a
// line containing only "---"; each instance is four lines: the maximum
// weight, the comma-separated weights, the comma-separated values, and the
// known optimal value.
func Load(path string) ([]*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}

	var (
		problems []*Problem
		block    []string
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		problem, err := parseInstance(block)
		if err != nil {
			return fmt.Errorf("instance %d: %w", len(problems)+1, err)
		}
		problems = append(problems, problem)
		block = block[:0]
		return nil
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "---" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if line != "" {
			block = append(block, line)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return problems, nil
}

func parseInstance(lines []string) (*Problem, error) {
	if len(lines) != 4 {
		return nil, fmt.Errorf("expected 4 lines (max weight, weights, values, optimal), got %d", len(lines))
	}

	maxWeight, err := strconv.ParseFloat(lines[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid max weight %q: %w", lines[0], err)
	}
	weights, err := parseFloats(lines[1])
	if err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}
	values, err := parseFloats(lines[2])
	if err != nil {
		return nil, fmt.Errorf("invalid values: %w", err)
	}
	optimal, err := strconv.ParseFloat(lines[3], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid optimal value %q: %w", lines[3], err)
	}

	problem, err := NewProblem(values, weights, maxWeight)
	if err != nil {
		return nil, err
	}
	problem.Optimal = optimal
	problem.KnownOptimal = true
	return problem, nil
}

func parseFloats(line string) ([]float64, error) {
	fields := strings.Split(line, ",")
	out := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d (%q): %w", i, field, err)
		}
		out[i] = v
	}
	return out, nil
}
