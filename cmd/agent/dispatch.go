package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"ml-agent-backend/config"
	"ml-agent-backend/core/dataset"
	"ml-agent-backend/core/dispatch"
	"ml-agent-backend/core/models"
	"ml-agent-backend/core/registry"
	"ml-agent-backend/core/repository"
	"ml-agent-backend/core/toolcall"
	"ml-agent-backend/core/tools"
	"ml-agent-backend/core/work"

	"github.com/spf13/cobra"
)

var (
	dispatchQuery string
	dispatchWait  bool
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch [text]",
	Short: "Parse tool calls from text and execute them",
	Long: `Extract <function>...</function> / <param>key:value</param> tool calls from
the given text (or stdin) and dispatch them. Long-running calls start
background jobs; pass --wait to block until they finish.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDispatch,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchQuery, "query", "", "Original free-text request, used for dataset auto-detection")
	dispatchCmd.Flags().BoolVar(&dispatchWait, "wait", false, "Wait for started jobs to reach a terminal state")
	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, args []string) error {
	text, err := inputText(args)
	if err != nil {
		return err
	}

	calls := toolcall.Parse(text)
	if len(calls) == 0 {
		fmt.Println("No tool calls found")
		return nil
	}

	cfg := config.Load()

	locCfg, err := config.LoadLocatorConfig(cfg.LocatorConfigPath)
	if err != nil {
		return err
	}
	locator := dataset.NewLocator(locCfg.Extensions, locCfg.KeywordGroups)
	roots := locCfg.Roots(cfg.WorkDir)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	projectRepo := repository.NewProjectRepository(db)

	training := registry.New(models.JobKindTraining, work.TrainingRunner(cfg.TrainingStepDelay))
	deployment := registry.New(models.JobKindDeployment, work.DeploymentRunner(cfg.DeploymentDelay, cfg.EndpointBase))

	dispatcher := dispatch.NewDispatcher(dispatch.NewResolver(locator, roots))
	svc := tools.NewService(projectRepo, training, deployment, locator, roots, cfg.WorkDir)
	svc.RegisterAll(dispatcher)

	query := dispatchQuery
	if query == "" {
		query = text
	}

	results := dispatcher.DispatchAll(cmd.Context(), calls, query)
	fmt.Println(dispatch.FormatResults(results))

	if dispatchWait {
		waitForJobs(cmd.Context(), training, deployment)
	}
	return nil
}

func inputText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// waitForJobs polls both registries until every job is terminal.
func waitForJobs(ctx context.Context, registries ...*registry.Registry) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		pending := false
		for _, reg := range registries {
			for _, snap := range reg.List() {
				if !snap.Status.Terminal() {
					pending = true
				}
			}
		}
		if !pending {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
