package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobFinished = errors.New("job already finished")
)

// terminal reports whether a state admits no further transitions.
func (s JobState) terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// JobConfig describes one optimization job: a knapsack instance given
// inline, the algorithm to run and its parameters. Unset algorithm
// parameters are filled from the algorithm's defaults at job creation.
type JobConfig struct {
	// Algorithm selects the optimizer: "ga" or "sa".
	Algorithm string `json:"algorithm"`

	// Knapsack instance.
	MaxWeight float64   `json:"maxWeight"`
	Weights   []float64 `json:"weights"`
	Values    []float64 `json:"values"`

	Seed          int64    `json:"seed"`
	StopThreshold *float64 `json:"stopThreshold,omitempty"`

	// Genetic algorithm parameters. MutationRate is a pointer because zero
	// is a valid rate and must stay distinguishable from unset.
	Generations    int      `json:"generations,omitempty"`
	PopulationSize int      `json:"populationSize,omitempty"`
	MutationRate   *float64 `json:"mutationRate,omitempty"`
	PairsParents   int      `json:"pairsParents,omitempty"`

	// Simulated annealing parameters. InitialTemperature and CoolingRate
	// are pointers for the same reason; MinimalTemperature defaults to
	// zero, so the zero value needs no distinction.
	MaxIterations      int      `json:"maxIterations,omitempty"`
	InitialTemperature *float64 `json:"initialTemperature,omitempty"`
	MinimalTemperature float64  `json:"minimalTemperature,omitempty"`
	CoolingRate        *float64 `json:"coolingRate,omitempty"`
}

// Job represents one optimization run and its outcome
type Job struct {
	ID            string     `json:"id"`
	State         JobState   `json:"state"`
	Config        JobConfig  `json:"config"`
	BestItems     []int      `json:"bestItems,omitempty"`
	BestValue     float64    `json:"bestValue"`
	BestWeight    float64    `json:"bestWeight"`
	BestObjective float64    `json:"bestObjective"`
	Iterations    int        `json:"iterations"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	cancels     map[string]context.CancelFunc
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		cancels:     make(map[string]context.CancelFunc),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob creates a new job with the given configuration
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job
}

// GetJob retrieves a job by ID
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	return job, exists
}

// ListJobs returns all jobs
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// UpdateJob applies a mutation to a job while holding the manager's lock
func (jm *JobManager) UpdateJob(id string, update func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	update(job)
	return nil
}

// RegisterCancel associates a job with the cancel function of its worker
// context so the job can be cancelled via CancelJob.
func (jm *JobManager) RegisterCancel(id string, cancel context.CancelFunc) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.cancels[id] = cancel
}

// CancelJob cancels a pending or running job. It returns ErrJobNotFound for
// unknown IDs and ErrJobFinished when the job already reached a terminal
// state. The state transition to cancelled is performed by the worker.
func (jm *JobManager) CancelJob(id string) (*Job, error) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if job.State.terminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrJobFinished, id, job.State)
	}

	if cancel, ok := jm.cancels[id]; ok {
		cancel()
	}
	return job, nil
}

// releaseCancel drops the cancel function once the worker is done with the
// job, releasing the worker context.
func (jm *JobManager) releaseCancel(id string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if cancel, ok := jm.cancels[id]; ok {
		cancel()
		delete(jm.cancels, id)
	}
}
