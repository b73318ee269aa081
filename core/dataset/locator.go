// Package dataset finds candidate input files for a task across configured
// search directories and ranks them by relevance to a free-text query.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoDatasets is returned when no candidate file exists across all search
// roots. This is a normal outcome; callers must handle it explicitly.
var ErrNoDatasets = errors.New("no datasets found in search directories")

// DefaultExtensions is the set of recognized data-file extensions.
var DefaultExtensions = []string{".csv"}

// DefaultKeywordGroups maps query keywords to dataset-name keywords. A file
// is considered relevant when its name contains any token of a group the
// query also matched.
var DefaultKeywordGroups = [][]string{
	{"netflix", "churn", "customer"},
	{"twitter", "sentiment", "social"},
	{"plant", "disease", "agriculture"},
}

// Locator enumerates data files under a set of search roots.
type Locator struct {
	extensions    []string
	keywordGroups [][]string
}

// NewLocator creates a locator with the given extensions and keyword groups;
// nil arguments select the defaults.
func NewLocator(extensions []string, keywordGroups [][]string) *Locator {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if len(keywordGroups) == 0 {
		keywordGroups = DefaultKeywordGroups
	}
	return &Locator{extensions: extensions, keywordGroups: keywordGroups}
}

// Locate returns the best candidate data file for the query, or ErrNoDatasets.
// Roots are searched in the given order, non-recursively; within a root,
// candidates follow directory read order, which is not guaranteed stable
// across platforms. Callers may only rely on "first match wins".
func (l *Locator) Locate(roots []string, query string) (string, error) {
	candidates := l.enumerate(roots)
	if len(candidates) == 0 {
		return "", ErrNoDatasets
	}

	if query != "" {
		if match := l.bestMatch(candidates, query); match != "" {
			return match, nil
		}
	}

	return candidates[0], nil
}

// enumerate collects files with a recognized extension across roots.
// Unreadable roots are skipped.
func (l *Locator) enumerate(roots []string) []string {
	var files []string
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if l.recognized(entry.Name()) {
				files = append(files, filepath.Join(root, entry.Name()))
			}
		}
	}
	return files
}

func (l *Locator) recognized(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range l.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// bestMatch returns the first candidate whose name shares a keyword group
// with the query, or "" when none does.
func (l *Locator) bestMatch(candidates []string, query string) string {
	query = strings.ToLower(query)

	for _, path := range candidates {
		name := strings.ToLower(filepath.Base(path))
		for _, group := range l.keywordGroups {
			if containsAny(query, group) && containsAny(name, group) {
				return path
			}
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// DebugReport describes what each search root contains and which file would
// be selected, for troubleshooting dataset detection.
func (l *Locator) DebugReport(roots []string) string {
	var sb strings.Builder
	sb.WriteString("Dataset detection report\n")

	var total []string
	for _, root := range roots {
		sb.WriteString(fmt.Sprintf("\nSearching: %s\n", root))
		entries, err := os.ReadDir(root)
		if err != nil {
			sb.WriteString(fmt.Sprintf("  error: %v\n", err))
			continue
		}

		found := 0
		for _, entry := range entries {
			if entry.IsDir() || !l.recognized(entry.Name()) {
				continue
			}
			path := filepath.Join(root, entry.Name())
			total = append(total, path)
			sb.WriteString(fmt.Sprintf("  - %s\n", path))
			found++
		}
		if found == 0 {
			sb.WriteString("  no data files found\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\nTotal data files found: %d\n", len(total)))
	if len(total) > 0 {
		sb.WriteString(fmt.Sprintf("Fallback selection: %s\n", total[0]))
	}
	return sb.String()
}
