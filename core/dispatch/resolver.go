package dispatch

import (
	"fmt"

	"ml-agent-backend/core/dataset"
	"ml-agent-backend/core/toolcall"

	"github.com/google/uuid"
)

// Sentinel parameter values a caller may pass to request resolution.
const (
	SentinelAutoDetect   = "auto_detect"
	SentinelAutoGenerate = "auto_generate"
)

// Resolver fills missing or sentinel call parameters before a handler is
// invoked: path-like parameters through the dataset locator, name-like
// parameters with a generated unique name.
type Resolver struct {
	locator *dataset.Locator
	roots   []string

	// newName is swappable for tests.
	newName func() string
}

// NewResolver creates a resolver searching the given roots for datasets.
func NewResolver(locator *dataset.Locator, roots []string) *Resolver {
	return &Resolver{
		locator: locator,
		roots:   roots,
		newName: func() string {
			return "ml-project-" + uuid.New().String()[:8]
		},
	}
}

// Resolve returns the final parameter map for a call against the handler's
// declared schema, plus human-readable notes about what was filled in.
// A path-like parameter that cannot be located fails with a ResolutionError;
// the handler must not be invoked in that case.
func (r *Resolver) Resolve(spec HandlerSpec, params *toolcall.Params, query string) (map[string]string, []string, error) {
	resolved := params.Map()
	var notes []string

	for _, name := range spec.PathParams {
		value, ok := resolved[name]
		if ok && value != "" && value != SentinelAutoDetect {
			continue
		}
		path, err := r.locator.Locate(r.roots, query)
		if err != nil {
			return nil, nil, &ResolutionError{Tool: spec.Name, Param: name, Cause: err}
		}
		resolved[name] = path
		notes = append(notes, fmt.Sprintf("Auto-detected dataset: %s", path))
	}

	for _, name := range spec.NameParams {
		value, ok := resolved[name]
		if ok && value != "" && value != SentinelAutoGenerate {
			continue
		}
		generated := r.newName()
		resolved[name] = generated
		notes = append(notes, fmt.Sprintf("Auto-generated name: %s", generated))
	}

	for _, name := range spec.Required {
		if resolved[name] == "" {
			return nil, nil, &ValidationError{Tool: spec.Name, Param: name}
		}
	}

	return resolved, notes, nil
}
