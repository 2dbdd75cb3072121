package anneal

import (
	"fmt"

	"github.com/cwbudde/metaopt/internal/opt"
)

// Config holds the parameters of a simulated annealing run.
// Construct it through New so every instance in circulation is valid.
type Config struct {
	// MaxIterations bounds the run.
	MaxIterations int
	// InitialTemperature is the starting temperature.
	InitialTemperature float64
	// MinimalTemperature is the floor the temperature is clamped to.
	MinimalTemperature float64
	// CoolingRate is the multiplicative decay applied each iteration.
	CoolingRate float64
	// StopThreshold stops the run early once the best objective reaches it.
	// Nil disables early stopping.
	StopThreshold *float64
}

// New builds a validated config. It is the only validation point; the
// returned config is treated as immutable.
func New(maxIterations int, initialTemperature, minimalTemperature, coolingRate float64, stopThreshold *float64) (Config, error) {
	cfg := Config{
		MaxIterations:      maxIterations,
		InitialTemperature: initialTemperature,
		MinimalTemperature: minimalTemperature,
		CoolingRate:        coolingRate,
		StopThreshold:      stopThreshold,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the stock parameters: 1000 iterations, initial
// temperature 1.0, minimal temperature 0.0, cooling rate 0.99, no stop
// threshold.
func DefaultConfig() Config {
	return Config{
		MaxIterations:      1000,
		InitialTemperature: 1.0,
		MinimalTemperature: 0.0,
		CoolingRate:        0.99,
	}
}

// Validate checks every config invariant and reports the first violation.
func (c Config) Validate() error {
	if c.MinimalTemperature < 0 {
		return opt.NewConfigError(fmt.Sprintf("the minimal temperature must be >= 0 (got %g)", c.MinimalTemperature))
	}
	if c.InitialTemperature < c.MinimalTemperature {
		return opt.NewConfigError(fmt.Sprintf(
			"the initial temperature must be >= the minimal temperature (%g < %g)",
			c.InitialTemperature, c.MinimalTemperature,
		))
	}
	if c.CoolingRate < 0 || c.CoolingRate > 1 {
		return opt.NewConfigError(fmt.Sprintf("the cooling rate must be between 0 and 1 (got %g)", c.CoolingRate))
	}
	return nil
}
