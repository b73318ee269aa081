package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"ml-agent-backend/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, reg *Registry, id string, status models.JobStatus) models.JobSnapshot {
	t.Helper()
	var snap models.JobSnapshot
	require.Eventually(t, func() bool {
		var err error
		snap, err = reg.Get(id)
		return err == nil && snap.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

// blockingRunner blocks until its context is cancelled or release is closed.
func blockingRunner(release <-chan struct{}) Runner {
	return func(ctx context.Context, exec *Execution) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-release:
			return "done", nil
		}
	}
}

func TestCreateReturnsPendingSnapshot(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	reg := New(models.JobKindTraining, blockingRunner(release))

	snap := reg.Create(map[string]string{"dataset_path": "data.csv"})

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, models.JobKindTraining, snap.Kind)
	assert.Equal(t, models.JobStatusPending, snap.Status)
	assert.Equal(t, map[string]string{"dataset_path": "data.csv"}, snap.InputParams)
	assert.Nil(t, snap.StartedAt)
	assert.Nil(t, snap.CompletedAt)

	// The job is observable immediately after Create returns.
	got, err := reg.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
}

func TestJobCompletes(t *testing.T) {
	reg := New(models.JobKindTraining, func(ctx context.Context, exec *Execution) (string, error) {
		exec.AppendLog("working")
		exec.SetMetric("accuracy", 0.9)
		return "models/out", nil
	})

	snap := reg.Create(nil)
	got := waitForStatus(t, reg, snap.ID, models.JobStatusCompleted)

	require.NotNil(t, got.ResultLocation)
	assert.Equal(t, "models/out", *got.ResultLocation)
	assert.Nil(t, got.ErrorMessage)
	assert.Equal(t, 0.9, got.Metrics["accuracy"])
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.CompletedAt)
	assert.False(t, got.StartedAt.Before(got.CreatedAt))
	assert.False(t, got.CompletedAt.Before(*got.StartedAt))
	assert.Contains(t, got.Logs, "working")
	assert.Equal(t, "Job completed successfully", got.Logs[len(got.Logs)-1])
}

func TestJobFails(t *testing.T) {
	reg := New(models.JobKindTraining, func(ctx context.Context, exec *Execution) (string, error) {
		return "", assert.AnError
	})

	snap := reg.Create(nil)
	got := waitForStatus(t, reg, snap.ID, models.JobStatusFailed)

	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, assert.AnError.Error(), *got.ErrorMessage)
	assert.Nil(t, got.ResultLocation)
}

func TestGetUnknownJob(t *testing.T) {
	reg := New(models.JobKindTraining, blockingRunner(nil))

	_, err := reg.Get("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.Logs("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelRunningJob(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	reg := New(models.JobKindTraining, blockingRunner(release))

	snap := reg.Create(nil)
	waitForStatus(t, reg, snap.ID, models.JobStatusRunning)

	assert.True(t, reg.Cancel(snap.ID))

	got, err := reg.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Nil(t, got.ResultLocation)
	assert.Nil(t, got.ErrorMessage)
}

func TestCancelTerminalJobFails(t *testing.T) {
	reg := New(models.JobKindTraining, func(ctx context.Context, exec *Execution) (string, error) {
		return "ok", nil
	})

	snap := reg.Create(nil)
	before := waitForStatus(t, reg, snap.ID, models.JobStatusCompleted)

	assert.False(t, reg.Cancel(snap.ID))

	after, err := reg.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCancelUnknownJobFails(t *testing.T) {
	reg := New(models.JobKindTraining, blockingRunner(nil))
	assert.False(t, reg.Cancel("no-such-id"))
}

// The runner here ignores its context and reports success after cancellation;
// the cancelled status must stand.
func TestRunnerCannotOverwriteCancelled(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	reg := New(models.JobKindTraining, func(ctx context.Context, exec *Execution) (string, error) {
		defer close(done)
		<-release
		exec.AppendLog("late log line")
		return "late result", nil
	})

	snap := reg.Create(nil)
	waitForStatus(t, reg, snap.ID, models.JobStatusRunning)

	require.True(t, reg.Cancel(snap.ID))
	close(release)
	<-done

	// Give finish a moment to run after the runner returned.
	time.Sleep(20 * time.Millisecond)

	got, err := reg.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, got.Status)
	assert.Nil(t, got.ResultLocation)
	assert.NotContains(t, got.Logs, "late log line")
}

func TestConcurrentCancelExactlyOneWins(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	reg := New(models.JobKindTraining, blockingRunner(release))

	snap := reg.Create(nil)
	waitForStatus(t, reg, snap.ID, models.JobStatusRunning)

	const n = 16
	results := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = reg.Cancel(snap.ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	got, err := reg.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, got.Status)
}

func TestListCreationOrderAndIdempotence(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	reg := New(models.JobKindTraining, blockingRunner(release))

	a := reg.Create(nil)
	b := reg.Create(nil)
	c := reg.Create(nil)

	first := reg.List()
	second := reg.List()

	require.Len(t, first, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{first[0].ID, first[1].ID, first[2].ID})
	assert.Equal(t, first, second)
}

func TestSnapshotsAreCopies(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	reg := New(models.JobKindTraining, blockingRunner(release))

	snap := reg.Create(map[string]string{"k": "v"})

	// Mutating the snapshot must not reach registry state.
	snap.InputParams["k"] = "changed"
	snap.Logs = append(snap.Logs, "injected")

	got, err := reg.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "v", got.InputParams["k"])
	assert.NotContains(t, got.Logs, "injected")

	logs, err := reg.Logs(snap.ID)
	require.NoError(t, err)
	assert.NotContains(t, logs, "injected")
}

func TestLogsOrdered(t *testing.T) {
	reg := New(models.JobKindDeployment, func(ctx context.Context, exec *Execution) (string, error) {
		exec.AppendLog("one")
		exec.AppendLog("two")
		exec.AppendLog("three")
		return "r", nil
	})

	snap := reg.Create(nil)
	got := waitForStatus(t, reg, snap.ID, models.JobStatusCompleted)

	require.Len(t, got.Logs, 5)
	assert.Equal(t, []string{"one", "two", "three"}, got.Logs[1:4])
}
