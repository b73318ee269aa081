package dispatch

import "fmt"

// UnknownToolError reports a call name with no registered handler.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}

// ValidationError reports a required parameter that is missing after
// resolution.
type ValidationError struct {
	Tool  string
	Param string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required parameter %q", e.Tool, e.Param)
}

// ResolutionError reports a parameter the resolver could not fill. It
// short-circuits only the affected call.
type ResolutionError struct {
	Tool  string
	Param string
	Cause error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: could not resolve parameter %q: %v", e.Tool, e.Param, e.Cause)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// ExecutionError reports a handler that was invoked and failed.
type ExecutionError struct {
	Tool  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tool, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
