// Package tag provides standardized tag functions for structured logging.
//
// All tag keys use kebab-case naming convention for consistency.
// Use these functions instead of raw strings to ensure consistent
// and type-safe log output across the codebase.
package tag

import (
	"log/slog"
	"time"
)

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Error creates a tag for error objects.
func Error(err any) slog.Attr {
	return slog.Any("err", err)
}

// Job creates a tag for job names.
func Job(name string) slog.Attr {
	return slog.String("job", name)
}

// Jobs creates a tag for the number of jobs in a run.
func Jobs(n int) slog.Attr {
	return slog.Int("jobs", n)
}

// Failed creates a tag for the number of failed jobs.
func Failed(n int) slog.Attr {
	return slog.Int("failed", n)
}

// Driver creates a tag for database driver names.
func Driver(name string) slog.Attr {
	return slog.String("driver", name)
}

// File creates a tag for file paths.
func File(path string) slog.Attr {
	return slog.String("file", path)
}

// Output creates a tag for output file paths.
func Output(path string) slog.Attr {
	return slog.String("output", path)
}

// Rows creates a tag for row counts.
func Rows(n int) slog.Attr {
	return slog.Int("rows", n)
}

// Columns creates a tag for column counts.
func Columns(n int) slog.Attr {
	return slog.Int("columns", n)
}

// Duration creates a tag for elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Count creates a tag for generic counts.
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Config creates a tag for configuration file paths.
func Config(path string) slog.Attr {
	return slog.String("config", path)
}

// Locale creates a tag for locale names.
func Locale(name string) slog.Attr {
	return slog.String("locale", name)
}

// SQL creates a tag for query text.
func SQL(query string) slog.Attr {
	return slog.String("sql", query)
}

// Reason creates a tag for explanations.
func Reason(r string) slog.Attr {
	return slog.String("reason", r)
}
