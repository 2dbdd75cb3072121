package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/metaopt/internal/anneal"
	"github.com/cwbudde/metaopt/internal/genetic"
	"github.com/cwbudde/metaopt/internal/knapsack"
	"github.com/spf13/cobra"
)

var (
	problemPath string
	algorithm   string
	seed        int64
	threshold   float64

	generations  int
	popSize      int
	mutationRate float64
	pairsParents int

	iters       int
	initialTemp float64
	minimalTemp float64
	coolingRate float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an optimizer over knapsack instances from a file",
	Long: `Loads knapsack instances (separated by "---", four lines each:
max weight, weights, values, optimal value) and minimizes each one with
the selected algorithm.`,
	RunE: runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&problemPath, "file", "", "Knapsack instance file (required)")
	runCmd.Flags().StringVar(&algorithm, "algo", "sa", "Algorithm: ga, sa")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().Float64Var(&threshold, "stop-threshold", 0, "Stop early once the best objective reaches this value")

	runCmd.Flags().IntVar(&generations, "generations", 100, "GA: number of generations")
	runCmd.Flags().IntVar(&popSize, "pop", 100, "GA: population size")
	runCmd.Flags().Float64Var(&mutationRate, "mutation", 0.1, "GA: mutation rate")
	runCmd.Flags().IntVar(&pairsParents, "pairs", 2, "GA: parent pairs per generation")

	runCmd.Flags().IntVar(&iters, "iters", 1000, "SA: max iterations")
	runCmd.Flags().Float64Var(&initialTemp, "temp", 1.0, "SA: initial temperature")
	runCmd.Flags().Float64Var(&minimalTemp, "min-temp", 0.0, "SA: minimal temperature")
	runCmd.Flags().Float64Var(&coolingRate, "cooling", 0.99, "SA: cooling rate")

	runCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	slog.Info("Loading problem file", "file", problemPath)

	problems, err := knapsack.Load(problemPath)
	if err != nil {
		return fmt.Errorf("failed to load problems: %w", err)
	}

	var stopThreshold *float64
	if cmd.Flags().Changed("stop-threshold") {
		stopThreshold = &threshold
	}

	slog.Info("Starting optimization", "algorithm", algorithm, "instances", len(problems), "seed", seed)

	for i, problem := range problems {
		rng := rand.New(rand.NewSource(seed))

		var (
			best       *knapsack.Solution
			iterations int
			runtime    time.Duration
		)
		switch algorithm {
		case "ga":
			best, iterations, runtime, err = runGenetic(problem, stopThreshold, rng)
		case "sa":
			best, iterations, runtime, err = runAnnealing(problem, stopThreshold, rng)
		default:
			return fmt.Errorf("unknown algorithm: %s", algorithm)
		}
		if err != nil {
			return fmt.Errorf("instance %d: %w", i+1, err)
		}

		slog.Info("Optimization complete",
			"instance", i+1,
			"elapsed", runtime,
			"iterations", iterations,
			"best_value", best.Value(),
			"best_weight", best.Weight(),
			"best_objective", best.Objective(),
		)

		line := fmt.Sprintf("Instance %d: value=%g weight=%g items=%v (%d iterations, %v)",
			i+1, best.Value(), best.Weight(), best.Items(), iterations, runtime)
		if problem.KnownOptimal {
			line += fmt.Sprintf(" optimal=%g gap=%g", problem.Optimal, problem.Optimal-best.Value())
		}
		fmt.Println(line)
	}

	return nil
}

func runGenetic(problem *knapsack.Problem, stopThreshold *float64, rng *rand.Rand) (*knapsack.Solution, int, time.Duration, error) {
	cfg, err := genetic.New(generations, popSize, mutationRate, pairsParents, stopThreshold)
	if err != nil {
		return nil, 0, 0, err
	}
	algo, err := genetic.NewAlgorithm[*knapsack.Solution](cfg)
	if err != nil {
		return nil, 0, 0, err
	}

	initial := make([]*knapsack.Solution, cfg.PopulationSize)
	for i := range initial {
		s, err := knapsack.NewRandomSolution(problem, 1, rng)
		if err != nil {
			return nil, 0, 0, err
		}
		initial[i] = s
	}

	result, err := algo.Execute(initial, rng)
	if err != nil {
		return nil, 0, 0, err
	}
	return result.Best, result.Generations, result.Runtime, nil
}

func runAnnealing(problem *knapsack.Problem, stopThreshold *float64, rng *rand.Rand) (*knapsack.Solution, int, time.Duration, error) {
	cfg, err := anneal.New(iters, initialTemp, minimalTemp, coolingRate, stopThreshold)
	if err != nil {
		return nil, 0, 0, err
	}
	algo, err := anneal.NewAlgorithm[*knapsack.Solution](cfg)
	if err != nil {
		return nil, 0, 0, err
	}

	initial, err := knapsack.NewSolution(problem, nil)
	if err != nil {
		return nil, 0, 0, err
	}

	result, err := algo.Execute(initial, rng)
	if err != nil {
		return nil, 0, 0, err
	}
	return result.Best, result.Iterations, result.Runtime, nil
}
