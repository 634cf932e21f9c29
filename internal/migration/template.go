package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const unitTemplate = `-- Migration: %s
-- Write the statements that move the database from one state to the next.
-- Statements are executed in order; end each with a semicolon.
-- There is no need to record history here; the runner takes care of that.
`

var labelSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

// GenerateOptions controls migration file generation.
type GenerateOptions struct {
	// Label is the human part of the identifier, e.g. "add index".
	Label string
	// Dir is the migration directory; created if missing.
	Dir string
	// Now overrides the ordering-key timestamp (tests); zero means time.Now.
	Now time.Time
}

// Generate writes a new migration unit file with a timestamp ordering key and
// the sanitized label, and returns its path.
func Generate(opts GenerateOptions) (string, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return "", fmt.Errorf("migration directory is required")
	}
	label := sanitizeLabel(opts.Label)
	if label == "" {
		return "", fmt.Errorf("migration label is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create migration directory: %w", err)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	name := fmt.Sprintf("%s_%s.sql", now.Format("20060102T1504"), label)
	path := filepath.Join(opts.Dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration file %s already exists", name)
	}

	content := fmt.Sprintf(unitTemplate, label)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write migration file: %w", err)
	}
	return path, nil
}

// sanitizeLabel lowercases the label and collapses everything outside
// [a-z0-9_] into single underscores.
func sanitizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " ", "_")
	s = labelSanitizer.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
