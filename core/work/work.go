// Package work supplies the domain-specific routines executed by the job
// registries. Training and deployment are simulated: they produce the same
// observable trace (logs, metrics, result location) as the real routines
// without doing any compute.
package work

import (
	"context"
	"fmt"
	"time"

	"ml-agent-backend/core/registry"
)

var trainingSteps = []string{
	"Loading dataset...",
	"Preprocessing data...",
	"Initializing model...",
	"Training model...",
	"Evaluating model...",
	"Saving model...",
}

// TrainingRunner returns a runner that walks through the training steps with
// stepDelay between them, reporting progress after each. It observes
// cancellation between steps.
func TrainingRunner(stepDelay time.Duration) registry.Runner {
	return func(ctx context.Context, exec *registry.Execution) (string, error) {
		if path := exec.Params()["dataset_path"]; path != "" {
			exec.AppendLog(fmt.Sprintf("Using dataset %s", path))
		}

		for i, step := range trainingSteps {
			if err := wait(ctx, stepDelay); err != nil {
				return "", err
			}
			exec.AppendLog(fmt.Sprintf("Step %d: %s", i+1, step))
			exec.SetMetric("progress", float64(i+1)/float64(len(trainingSteps)))
		}

		exec.SetMetric("accuracy", 0.85)
		exec.SetMetric("precision", 0.83)
		exec.SetMetric("recall", 0.87)
		exec.SetMetric("f1_score", 0.85)

		return fmt.Sprintf("models/%s/model.pkl", exec.ID()), nil
	}
}

// DeploymentRunner returns a runner that simulates rolling out a model and
// reports the endpoint URL it would be served from.
func DeploymentRunner(delay time.Duration, endpointBase string) registry.Runner {
	return func(ctx context.Context, exec *registry.Execution) (string, error) {
		exec.AppendLog("Preparing deployment...")
		if err := wait(ctx, delay); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s/models/%s", endpointBase, exec.ID()), nil
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
