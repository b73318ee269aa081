package main

import (
	"fmt"

	"ml-agent-backend/config"
	"ml-agent-backend/core/dataset"

	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Show which data files dataset detection would find",
	RunE:  runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(_ *cobra.Command, _ []string) error {
	cfg := config.Load()

	locCfg, err := config.LoadLocatorConfig(cfg.LocatorConfigPath)
	if err != nil {
		return err
	}

	locator := dataset.NewLocator(locCfg.Extensions, locCfg.KeywordGroups)
	fmt.Print(locator.DebugReport(locCfg.Roots(cfg.WorkDir)))
	return nil
}
