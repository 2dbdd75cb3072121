package anneal

import "time"

// Result is a read-only snapshot created once at the end of a run.
type Result[T Solution[T]] struct {
	// Best is a copy of the lowest-objective solution seen during the run.
	Best T
	// Runtime is the elapsed wall time of the run.
	Runtime time.Duration
	// Iterations is the number of iterations actually performed, which may
	// be lower than the configured count when the stop threshold fires.
	Iterations int
}
