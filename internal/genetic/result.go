package genetic

import "time"

// Result is a read-only snapshot created once at the end of a run.
type Result[T Solution[T]] struct {
	// Best is a copy of the lowest-objective individual found.
	Best T
	// Runtime is the elapsed wall time of the run.
	Runtime time.Duration
	// Generations is the number of generations actually evolved, which may
	// be lower than the configured count when the stop threshold fires.
	Generations int
}
