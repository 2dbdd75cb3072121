package opt

// ConfigError reports a configuration parameter outside its contract.
// It is only returned from config constructors; a run never starts with an
// invalid config.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// NewConfigError creates a ConfigError with the given reason.
func NewConfigError(reason string) error {
	return &ConfigError{Reason: reason}
}

// ExecError reports a failure during an optimization run: a solution
// capability call failed, or an operation was attempted on an empty or
// undersized population. A single ExecError aborts the whole run.
type ExecError struct {
	Reason string
	Cause  error
}

func (e *ExecError) Error() string {
	if e.Cause != nil {
		return "execution failed: " + e.Reason + ": " + e.Cause.Error()
	}
	return "execution failed: " + e.Reason
}

func (e *ExecError) Unwrap() error {
	return e.Cause
}

// NewExecError creates an ExecError without an underlying cause.
func NewExecError(reason string) error {
	return &ExecError{Reason: reason}
}

// WrapExecError creates an ExecError around a solution capability error.
func WrapExecError(reason string, cause error) error {
	return &ExecError{Reason: reason, Cause: cause}
}
