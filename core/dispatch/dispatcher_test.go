package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ml-agent-backend/core/dataset"
	"ml-agent-backend/core/toolcall"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, datasets ...string) (*Resolver, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range datasets {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("a,b\n"), 0o644))
	}
	return NewResolver(dataset.NewLocator(nil, nil), []string{dir}), dir
}

func callWith(name string, kv ...string) toolcall.Call {
	params := toolcall.NewParams()
	for i := 0; i+1 < len(kv); i += 2 {
		params.Set(kv[i], kv[i+1])
	}
	return toolcall.Call{Name: name, Params: params}
}

func TestDispatchUnknownTool(t *testing.T) {
	resolver, _ := newTestResolver(t)
	d := NewDispatcher(resolver)

	result := d.Dispatch(context.Background(), callWith("nope"), "")

	assert.False(t, result.Success)
	var unknownErr *UnknownToolError
	require.ErrorAs(t, result.Err, &unknownErr)
	assert.Equal(t, "nope", unknownErr.Tool)
}

func TestDispatchInvokesHandler(t *testing.T) {
	resolver, _ := newTestResolver(t)
	d := NewDispatcher(resolver)

	var got map[string]string
	d.Register(HandlerSpec{
		Name: "echo",
		Handler: func(_ context.Context, params map[string]string) (string, error) {
			got = params
			return "echoed", nil
		},
	})

	result := d.Dispatch(context.Background(), callWith("echo", "key", "value"), "")

	assert.True(t, result.Success)
	assert.Equal(t, "echoed", result.Message)
	assert.Equal(t, map[string]string{"key": "value"}, got)
}

func TestDispatchAutoDetectResolvesPath(t *testing.T) {
	resolver, dir := newTestResolver(t, "netflix_churn.csv")
	d := NewDispatcher(resolver)

	var got map[string]string
	d.Register(HandlerSpec{
		Name:       "process_dataset",
		PathParams: []string{"dataset_path"},
		Required:   []string{"dataset_path"},
		Handler: func(_ context.Context, params map[string]string) (string, error) {
			got = params
			return "ok", nil
		},
	})

	for _, value := range []string{SentinelAutoDetect, ""} {
		call := callWith("process_dataset", "dataset_path", value)
		result := d.Dispatch(context.Background(), call, "analyze churn")

		require.True(t, result.Success)
		assert.Equal(t, filepath.Join(dir, "netflix_churn.csv"), got["dataset_path"])
		require.Len(t, result.Notes, 1)
		assert.Contains(t, result.Notes[0], "Auto-detected dataset")
	}
}

func TestDispatchAutoDetectMissingParamResolved(t *testing.T) {
	resolver, dir := newTestResolver(t, "data.csv")
	d := NewDispatcher(resolver)

	var got map[string]string
	d.Register(HandlerSpec{
		Name:       "process_dataset",
		PathParams: []string{"dataset_path"},
		Handler: func(_ context.Context, params map[string]string) (string, error) {
			got = params
			return "ok", nil
		},
	})

	// dataset_path not supplied at all.
	result := d.Dispatch(context.Background(), callWith("process_dataset"), "")

	require.True(t, result.Success)
	assert.Equal(t, filepath.Join(dir, "data.csv"), got["dataset_path"])
}

func TestDispatchResolutionFailureSkipsHandler(t *testing.T) {
	resolver, _ := newTestResolver(t) // no datasets
	d := NewDispatcher(resolver)

	invoked := false
	d.Register(HandlerSpec{
		Name:       "process_dataset",
		PathParams: []string{"dataset_path"},
		Required:   []string{"dataset_path"},
		Handler: func(_ context.Context, _ map[string]string) (string, error) {
			invoked = true
			return "ok", nil
		},
	})

	call := callWith("process_dataset", "dataset_path", SentinelAutoDetect)
	result := d.Dispatch(context.Background(), call, "churn")

	assert.False(t, result.Success)
	assert.False(t, invoked, "handler must not be invoked when resolution fails")

	var resErr *ResolutionError
	require.ErrorAs(t, result.Err, &resErr)
	assert.Equal(t, "dataset_path", resErr.Param)
	assert.ErrorIs(t, result.Err, dataset.ErrNoDatasets)
}

func TestDispatchAutoGenerateName(t *testing.T) {
	resolver, _ := newTestResolver(t)
	resolver.newName = func() string { return "ml-project-test1234" }
	d := NewDispatcher(resolver)

	var got map[string]string
	d.Register(HandlerSpec{
		Name:       "create_project",
		NameParams: []string{"project_name"},
		Required:   []string{"project_name"},
		Handler: func(_ context.Context, params map[string]string) (string, error) {
			got = params
			return "ok", nil
		},
	})

	for _, value := range []string{SentinelAutoGenerate, ""} {
		result := d.Dispatch(context.Background(), callWith("create_project", "project_name", value), "")

		require.True(t, result.Success)
		assert.Equal(t, "ml-project-test1234", got["project_name"])
	}

	// An explicit name is kept.
	result := d.Dispatch(context.Background(), callWith("create_project", "project_name", "Given"), "")
	require.True(t, result.Success)
	assert.Equal(t, "Given", got["project_name"])
}

func TestDispatchMissingRequiredParam(t *testing.T) {
	resolver, _ := newTestResolver(t)
	d := NewDispatcher(resolver)

	d.Register(HandlerSpec{
		Name:     "generate_training_code",
		Required: []string{"task_description"},
		Handler: func(_ context.Context, _ map[string]string) (string, error) {
			return "ok", nil
		},
	})

	result := d.Dispatch(context.Background(), callWith("generate_training_code"), "")

	assert.False(t, result.Success)
	var valErr *ValidationError
	require.ErrorAs(t, result.Err, &valErr)
	assert.Equal(t, "task_description", valErr.Param)
}

func TestDispatchHandlerErrorWrapped(t *testing.T) {
	resolver, _ := newTestResolver(t)
	d := NewDispatcher(resolver)

	d.Register(HandlerSpec{
		Name: "failing",
		Handler: func(_ context.Context, _ map[string]string) (string, error) {
			return "", assert.AnError
		},
	})

	result := d.Dispatch(context.Background(), callWith("failing"), "")

	assert.False(t, result.Success)
	var execErr *ExecutionError
	require.ErrorAs(t, result.Err, &execErr)
	assert.ErrorIs(t, result.Err, assert.AnError)
}

func TestDispatchAllContinuesPastFailures(t *testing.T) {
	resolver, _ := newTestResolver(t)
	d := NewDispatcher(resolver)

	var invocations []string
	d.Register(HandlerSpec{
		Name: "good",
		Handler: func(_ context.Context, _ map[string]string) (string, error) {
			invocations = append(invocations, "good")
			return "fine", nil
		},
	})
	d.Register(HandlerSpec{
		Name: "bad",
		Handler: func(_ context.Context, _ map[string]string) (string, error) {
			invocations = append(invocations, "bad")
			return "", assert.AnError
		},
	})

	calls := []toolcall.Call{
		callWith("bad"),
		callWith("missing_tool"),
		callWith("good"),
	}

	results := d.DispatchAll(context.Background(), calls, "")

	require.Len(t, results, 3)
	assert.False(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.Equal(t, []string{"bad", "good"}, invocations)

	formatted := FormatResults(results)
	assert.Contains(t, formatted, "bad failed")
	assert.Contains(t, formatted, "unknown tool: missing_tool")
	assert.Contains(t, formatted, "good: fine")
}

func TestDispatchNilParams(t *testing.T) {
	resolver, _ := newTestResolver(t)
	d := NewDispatcher(resolver)

	d.Register(HandlerSpec{
		Name: "noop",
		Handler: func(_ context.Context, _ map[string]string) (string, error) {
			return "ok", nil
		},
	})

	result := d.Dispatch(context.Background(), toolcall.Call{Name: "noop"}, "")
	assert.True(t, result.Success)
}
