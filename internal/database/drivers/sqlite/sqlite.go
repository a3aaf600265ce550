// Package sqlite provides the SQLite driver backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dagu-org/sqljson/internal/database"
	"github.com/dagu-org/sqljson/internal/projector"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteDriver implements the Driver interface for SQLite.
type SQLiteDriver struct{}

var _ database.Driver = (*SQLiteDriver)(nil)

// Name returns the driver name.
func (d *SQLiteDriver) Name() string {
	return "sqlite"
}

// Aliases returns alternative driver names.
func (d *SQLiteDriver) Aliases() []string {
	return []string{"sqlite3"}
}

// Match reports whether url points at a SQLite database.
func (d *SQLiteDriver) Match(url string) bool {
	if database.HasScheme(url, "sqlite:", "sqlite3:", "file:") {
		return true
	}
	lower := strings.ToLower(url)
	return strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") || strings.HasSuffix(lower, ".sqlite3")
}

// Open opens the database file named by url.
func (d *SQLiteDriver) Open(ctx context.Context, url string) (*sql.DB, error) {
	return database.OpenDB(ctx, "sqlite", DSN(url))
}

// DSN converts a job url into a modernc.org/sqlite data source name.
// "sqlite:path" and "sqlite://path" become "path"; "file:" urls are passed
// through unchanged.
func DSN(url string) string {
	lower := strings.ToLower(url)
	for _, prefix := range []string{"sqlite3://", "sqlite://", "sqlite3:", "sqlite:"} {
		if strings.HasPrefix(lower, prefix) {
			return url[len(prefix):]
		}
	}
	return url
}

// ColumnKind maps declared column types. Expression columns have no
// declared type and may hold a different storage class in every row, so
// their values are classified one by one.
func (d *SQLiteDriver) ColumnKind(ct *sql.ColumnType) projector.Kind {
	declared := ct.DatabaseTypeName()
	if declared == "" {
		return projector.KindDynamic
	}
	switch projector.NormalizeTypeName(declared) {
	case "REAL", "FLOAT", "DOUBLE":
		// SQLite stores all floating point values as 8-byte IEEE.
		return projector.KindDouble
	}
	if kind := projector.ParseKind(declared); kind != projector.KindUnsupported {
		return kind
	}
	return affinityKind(declared)
}

// ConvertValue passes SQLite values through unchanged.
func (d *SQLiteDriver) ConvertValue(_ projector.Column, v any) (any, error) {
	return v, nil
}

// affinityKind applies SQLite's column affinity rules to a declared type
// that is not a known type name.
func affinityKind(declared string) projector.Kind {
	upper := strings.ToUpper(declared)
	switch {
	case strings.Contains(upper, "INT"):
		return projector.KindInteger
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		return projector.KindText
	case strings.Contains(upper, "BLOB"):
		return projector.KindUnsupported
	case strings.Contains(upper, "REAL"), strings.Contains(upper, "FLOA"), strings.Contains(upper, "DOUB"):
		return projector.KindDouble
	default:
		return projector.KindDecimal
	}
}

func init() {
	database.RegisterDriver(&SQLiteDriver{})
}
