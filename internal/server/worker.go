package server

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/metaopt/internal/anneal"
	"github.com/cwbudde/metaopt/internal/genetic"
	"github.com/cwbudde/metaopt/internal/knapsack"
)

// jobOutcome carries the result of one optimization run.
type jobOutcome struct {
	best       *knapsack.Solution
	iterations int
	err        error
}

// runJob executes an optimization job in the background. The run itself is
// single-threaded; only the job bookkeeping is shared.
func runJob(ctx context.Context, jm *JobManager, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	defer jm.releaseCancel(jobID)

	// Check for cancellation before starting the run
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "algorithm", job.Config.Algorithm, "seed", job.Config.Seed)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateRunning,
		Timestamp: time.Now(),
	})

	problem, err := knapsack.NewProblem(job.Config.Values, job.Config.Weights, job.Config.MaxWeight)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("invalid problem: %w", err))
		return err
	}

	rng := rand.New(rand.NewSource(job.Config.Seed))
	start := time.Now()

	// The solver does not observe the context; a cancelled run is abandoned
	// and its outcome drains into the buffered channel.
	done := make(chan jobOutcome, 1)
	go func() {
		var o jobOutcome
		switch job.Config.Algorithm {
		case "ga":
			o.best, o.iterations, o.err = runGeneticJob(job.Config, problem, rng)
		case "sa":
			o.best, o.iterations, o.err = runAnnealingJob(job.Config, problem, rng)
		default:
			o.err = fmt.Errorf("unknown algorithm: %s", job.Config.Algorithm)
		}
		done <- o
	}()

	var outcome jobOutcome
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	case outcome = <-done:
	}
	if outcome.err != nil {
		markJobFailed(jm, jobID, outcome.err)
		return outcome.err
	}
	best, iterations := outcome.best, outcome.iterations

	elapsed := time.Since(start)

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestItems = best.Items()
		j.BestValue = best.Value()
		j.BestWeight = best.Weight()
		j.BestObjective = best.Objective()
		j.Iterations = iterations
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"best_value", best.Value(),
		"best_objective", best.Objective(),
		"iterations", iterations,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:         jobID,
		State:         StateCompleted,
		Iterations:    iterations,
		BestObjective: best.Objective(),
		BestValue:     best.Value(),
		Timestamp:     time.Now(),
	})

	return nil
}

// runGeneticJob seeds a random population and evolves it. Nil parameters
// fall back to the algorithm defaults.
func runGeneticJob(config JobConfig, problem *knapsack.Problem, rng *rand.Rand) (*knapsack.Solution, int, error) {
	defaults := genetic.DefaultConfig()
	mutationRate := defaults.MutationRate
	if config.MutationRate != nil {
		mutationRate = *config.MutationRate
	}

	cfg, err := genetic.New(config.Generations, config.PopulationSize, mutationRate, config.PairsParents, config.StopThreshold)
	if err != nil {
		return nil, 0, err
	}
	algo, err := genetic.NewAlgorithm[*knapsack.Solution](cfg)
	if err != nil {
		return nil, 0, err
	}

	initial := make([]*knapsack.Solution, cfg.PopulationSize)
	for i := range initial {
		s, err := knapsack.NewRandomSolution(problem, 1, rng)
		if err != nil {
			return nil, 0, err
		}
		initial[i] = s
	}

	result, err := algo.Execute(initial, rng)
	if err != nil {
		return nil, 0, err
	}
	return result.Best, result.Generations, nil
}

// runAnnealingJob anneals from the empty selection. Nil parameters fall
// back to the algorithm defaults.
func runAnnealingJob(config JobConfig, problem *knapsack.Problem, rng *rand.Rand) (*knapsack.Solution, int, error) {
	defaults := anneal.DefaultConfig()
	initialTemperature := defaults.InitialTemperature
	if config.InitialTemperature != nil {
		initialTemperature = *config.InitialTemperature
	}
	coolingRate := defaults.CoolingRate
	if config.CoolingRate != nil {
		coolingRate = *config.CoolingRate
	}

	cfg, err := anneal.New(config.MaxIterations, initialTemperature, config.MinimalTemperature, coolingRate, config.StopThreshold)
	if err != nil {
		return nil, 0, err
	}
	algo, err := anneal.NewAlgorithm[*knapsack.Solution](cfg)
	if err != nil {
		return nil, 0, err
	}

	initial, err := knapsack.NewSolution(problem, nil)
	if err != nil {
		return nil, 0, err
	}

	result, err := algo.Execute(initial, rng)
	if err != nil {
		return nil, 0, err
	}
	return result.Best, result.Iterations, nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateFailed,
		Timestamp: time.Now(),
	})

	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCancelled,
		Timestamp: time.Now(),
	})

	slog.Info("Job cancelled", "job_id", jobID)
}
