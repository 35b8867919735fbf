package planner

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Timestamps persist as RFC 3339 UTC text so that lexical and
// chronological ordering agree.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// nullable maps the empty string to NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// References persist as a comma-joined string, empty stored as NULL.
func joinReferences(refs []string) sql.NullString {
	if len(refs) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.Join(refs, ","), Valid: true}
}

func splitReferences(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	return strings.Split(s.String, ",")
}

// absDirectory normalizes dir to an absolute, cleaned path. An empty dir
// resolves to the current working directory, matching plan creation
// defaults so that search and create agree on what a directory means.
func absDirectory(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", &ValidationError{Field: "directory", Reason: "cannot resolve current working directory"}
		}
		return filepath.Clean(cwd), nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &ValidationError{Field: "directory", Reason: "cannot make path absolute"}
	}
	return abs, nil
}
