// Package dispatch routes parsed tool calls to registered handlers after
// resolving their parameters.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ml-agent-backend/core/toolcall"
)

// HandlerFunc executes a tool call with fully resolved parameters and
// returns a human-readable result message.
type HandlerFunc func(ctx context.Context, params map[string]string) (string, error)

// HandlerSpec declares a tool handler and its parameter schema.
type HandlerSpec struct {
	Name string

	// PathParams are path-like inputs eligible for auto_detect resolution.
	PathParams []string
	// NameParams are name-like inputs eligible for auto_generate resolution.
	NameParams []string
	// Required must be non-empty after resolution.
	Required []string

	Handler HandlerFunc
}

// Result is the outcome of dispatching one call. Err is one of the typed
// errors in this package; it never aborts the processing of sibling calls.
type Result struct {
	Tool    string
	Success bool
	Message string
	Notes   []string
	Err     error
}

// String renders the result as a single presentation line per note/outcome.
func (r Result) String() string {
	var lines []string
	lines = append(lines, r.Notes...)
	if r.Success {
		lines = append(lines, fmt.Sprintf("%s: %s", r.Tool, r.Message))
	} else {
		lines = append(lines, fmt.Sprintf("%s failed: %v", r.Tool, r.Err))
	}
	return strings.Join(lines, "\n")
}

// Dispatcher maps call names to handlers.
type Dispatcher struct {
	resolver *Resolver
	handlers map[string]HandlerSpec
}

// NewDispatcher creates a dispatcher using the given resolver.
func NewDispatcher(resolver *Resolver) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		handlers: make(map[string]HandlerSpec),
	}
}

// Register adds a handler. Registering the same name twice replaces the
// earlier handler.
func (d *Dispatcher) Register(spec HandlerSpec) {
	d.handlers[spec.Name] = spec
}

// Dispatch resolves and executes a single call. query is the original
// free-text request, used as context for parameter resolution.
func (d *Dispatcher) Dispatch(ctx context.Context, call toolcall.Call, query string) Result {
	spec, ok := d.handlers[call.Name]
	if !ok {
		return Result{Tool: call.Name, Err: &UnknownToolError{Tool: call.Name}}
	}

	params := call.Params
	if params == nil {
		params = toolcall.NewParams()
	}

	resolved, notes, err := d.resolver.Resolve(spec, params, query)
	if err != nil {
		return Result{Tool: call.Name, Err: err}
	}

	message, err := spec.Handler(ctx, resolved)
	if err != nil {
		return Result{Tool: call.Name, Notes: notes, Err: &ExecutionError{Tool: call.Name, Cause: err}}
	}

	return Result{Tool: call.Name, Success: true, Message: message, Notes: notes}
}

// DispatchAll processes every call in the batch independently: a failure in
// one call does not prevent the others from being attempted. Results are
// returned in call order.
func (d *Dispatcher) DispatchAll(ctx context.Context, calls []toolcall.Call, query string) []Result {
	results := make([]Result, 0, len(calls))
	for _, call := range calls {
		result := d.Dispatch(ctx, call, query)
		if result.Err != nil {
			log.Printf("Tool call %s failed: %v", call.Name, result.Err)
		}
		results = append(results, result)
	}
	return results
}

// FormatResults concatenates results in call order for presentation.
func FormatResults(results []Result) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}
