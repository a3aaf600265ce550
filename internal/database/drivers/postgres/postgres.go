// Package postgres provides the PostgreSQL drivers. The default driver uses
// pgx; lib/pq is available as "pq".
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dagu-org/sqljson/internal/database"
	"github.com/dagu-org/sqljson/internal/projector"
	"github.com/jackc/pgx/v5/pgtype"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver (lib/pq)
)

var schemes = []string{"postgres://", "postgresql://"}

// PostgresDriver implements the Driver interface for PostgreSQL using pgx.
type PostgresDriver struct{}

var _ database.Driver = (*PostgresDriver)(nil)

// Name returns the driver name.
func (d *PostgresDriver) Name() string {
	return "postgres"
}

// Aliases returns alternative driver names.
func (d *PostgresDriver) Aliases() []string {
	return []string{"postgresql", "pgx"}
}

// Match reports whether url is a PostgreSQL connection url.
func (d *PostgresDriver) Match(url string) bool {
	return database.HasScheme(url, schemes...)
}

// Open establishes a connection to PostgreSQL.
func (d *PostgresDriver) Open(ctx context.Context, url string) (*sql.DB, error) {
	return database.OpenDB(ctx, "pgx", url)
}

// ColumnKind maps PostgreSQL type names.
func (d *PostgresDriver) ColumnKind(ct *sql.ColumnType) projector.Kind {
	return ColumnKind(ct.DatabaseTypeName())
}

// ConvertValue turns array values into cursors.
func (d *PostgresDriver) ConvertValue(col projector.Column, v any) (any, error) {
	return ConvertValue(col, v)
}

// PQDriver implements the Driver interface for PostgreSQL using lib/pq.
type PQDriver struct{}

var _ database.Driver = (*PQDriver)(nil)

// Name returns the driver name.
func (d *PQDriver) Name() string {
	return "pq"
}

// Aliases returns alternative driver names.
func (d *PQDriver) Aliases() []string {
	return []string{"libpq"}
}

// Match reports whether url is a PostgreSQL connection url.
func (d *PQDriver) Match(url string) bool {
	return database.HasScheme(url, schemes...)
}

// Open establishes a connection to PostgreSQL.
func (d *PQDriver) Open(ctx context.Context, url string) (*sql.DB, error) {
	return database.OpenDB(ctx, "postgres", url)
}

// ColumnKind maps PostgreSQL type names.
func (d *PQDriver) ColumnKind(ct *sql.ColumnType) projector.Kind {
	return ColumnKind(ct.DatabaseTypeName())
}

// ConvertValue turns array values into cursors.
func (d *PQDriver) ConvertValue(col projector.Column, v any) (any, error) {
	return ConvertValue(col, v)
}

// extraKinds covers PostgreSQL type names missing from the generic table.
var extraKinds = map[string]projector.Kind{
	"JSONB":  projector.KindText,
	"XML":    projector.KindText,
	"CITEXT": projector.KindText,
	"INET":   projector.KindText,
	"CIDR":   projector.KindText,
	"OID":    projector.KindInteger,
}

// ColumnKind maps a PostgreSQL type name such as "INT4", "NUMERIC" or
// "_TEXT" to a projector kind.
func ColumnKind(typeName string) projector.Kind {
	if kind, ok := extraKinds[projector.NormalizeTypeName(typeName)]; ok {
		return kind
	}
	return projector.ParseKind(typeName)
}

var (
	typeMapMu sync.Mutex
	typeMap   = pgtype.NewMap()
)

// ConvertValue parses array values in PostgreSQL text format into a cursor
// over their elements. Multidimensional arrays are flattened in row-major
// order. Other values are returned unchanged.
func ConvertValue(col projector.Column, v any) (any, error) {
	if col.Kind != projector.KindArray {
		return v, nil
	}

	var src string
	switch v := v.(type) {
	case string:
		src = v
	case []byte:
		src = string(v)
	default:
		return nil, fmt.Errorf("unexpected %T value for array column %s", v, col.Name)
	}

	elems, err := parseArray(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse array column %s: %w", col.Name, err)
	}
	return projector.NewScalarArrayCursor(elementTypeName(col.TypeName), elems, nil), nil
}

func parseArray(src string) ([]any, error) {
	typeMapMu.Lock()
	defer typeMapMu.Unlock()

	var arr pgtype.Array[*string]
	if err := typeMap.SQLScanner(&arr).Scan(src); err != nil {
		return nil, err
	}
	elems := make([]any, len(arr.Elements))
	for i, e := range arr.Elements {
		if e != nil {
			elems[i] = *e
		}
	}
	return elems, nil
}

// elementTypeName returns the element type of an array column, replacing
// PostgreSQL-only names with a generic name of the same kind.
func elementTypeName(arrayType string) string {
	elemType := projector.ElementTypeName(arrayType)
	switch extraKinds[projector.NormalizeTypeName(elemType)] {
	case projector.KindText:
		return "TEXT"
	case projector.KindInteger:
		return "INT8"
	}
	return elemType
}

func init() {
	database.RegisterDriver(&PostgresDriver{})
	database.RegisterDriver(&PQDriver{})
}
