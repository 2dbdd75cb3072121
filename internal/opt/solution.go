package opt

// Solution is the base capability every optimizable type provides.
// Objective returns the scalar value to minimize; it must be deterministic
// for a given internal state and must not panic on valid state.
type Solution interface {
	Objective() float64
}
