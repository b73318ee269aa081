package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocatorConfig controls where datasets are searched for and how they are
// matched against queries.
type LocatorConfig struct {
	SearchRoots   []string   `yaml:"search_roots"`
	Extensions    []string   `yaml:"extensions"`
	KeywordGroups [][]string `yaml:"keyword_groups"`
}

// LoadLocatorConfig reads the YAML locator configuration. An empty path
// yields an empty config; the locator falls back to its built-in defaults
// for any unset field.
func LoadLocatorConfig(path string) (*LocatorConfig, error) {
	cfg := &LocatorConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locator config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse locator config: %w", err)
	}

	return cfg, nil
}

// Roots returns the configured search roots, or the default set: the current
// directory, the agent work dir, and the work dir's immediate
// subdirectories.
func (c *LocatorConfig) Roots(workDir string) []string {
	if len(c.SearchRoots) > 0 {
		return c.SearchRoots
	}

	roots := []string{".", workDir}
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return roots
	}
	for _, entry := range entries {
		if entry.IsDir() {
			roots = append(roots, filepath.Join(workDir, entry.Name()))
		}
	}
	return roots
}
