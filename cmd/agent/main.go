package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "agent",
	Short:        "ML agent command line interface",
	Long:         `Parse tool calls out of generated text, execute them, and inspect dataset detection.`,
	SilenceUsage: true,
}

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
