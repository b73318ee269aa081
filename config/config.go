package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Database
	DatabaseURL string

	// Server
	ServerPort string

	// Jobs
	TrainingStepDelay time.Duration
	DeploymentDelay   time.Duration
	EndpointBase      string

	// Agent
	WorkDir           string
	LocatorConfigPath string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "postgres://localhost/ml_agent?sslmode=disable"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		TrainingStepDelay: getDurationMs("TRAINING_STEP_DELAY_MS", 2000),
		DeploymentDelay:   getDurationMs("DEPLOYMENT_DELAY_MS", 3000),
		EndpointBase:      getEnv("ENDPOINT_BASE", "https://api.ml-agent.local"),
		WorkDir:           getEnv("AGENT_WORK_DIR", defaultWorkDir()),
		LocatorConfigPath: getEnv("LOCATOR_CONFIG", ""),
	}
}

func defaultWorkDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ml-agent"
	}
	return filepath.Join(home, ".ml-agent")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationMs(key string, defaultMs int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(defaultMs) * time.Millisecond
}
