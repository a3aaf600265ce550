// Package duckdb provides the DuckDB driver. LIST and ARRAY columns are
// exposed as nested cursors; lists of STRUCT values become rows with one
// column per struct field.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dagu-org/sqljson/internal/database"
	"github.com/dagu-org/sqljson/internal/projector"
	"github.com/duckdb/duckdb-go/v2"
	"github.com/shopspring/decimal"
)

// DuckDBDriver implements the Driver interface for DuckDB.
type DuckDBDriver struct{}

var _ database.Driver = (*DuckDBDriver)(nil)

// Name returns the driver name.
func (d *DuckDBDriver) Name() string {
	return "duckdb"
}

// Aliases returns alternative driver names.
func (d *DuckDBDriver) Aliases() []string {
	return nil
}

// Match reports whether url points at a DuckDB database.
func (d *DuckDBDriver) Match(url string) bool {
	return database.HasScheme(url, "duckdb:") || strings.HasSuffix(strings.ToLower(url), ".duckdb")
}

// Open opens the database named by url. "duckdb:" alone opens an in-memory
// database.
func (d *DuckDBDriver) Open(ctx context.Context, url string) (*sql.DB, error) {
	return database.OpenDB(ctx, "duckdb", DSN(url))
}

// DSN strips the "duckdb:" or "duckdb://" prefix from url.
func DSN(url string) string {
	lower := strings.ToLower(url)
	for _, prefix := range []string{"duckdb://", "duckdb:"} {
		if strings.HasPrefix(lower, prefix) {
			return url[len(prefix):]
		}
	}
	return url
}

// ColumnKind maps DuckDB type names.
func (d *DuckDBDriver) ColumnKind(ct *sql.ColumnType) projector.Kind {
	return database.DefaultColumnKind(ct)
}

// ConvertValue implements database.Driver.
func (d *DuckDBDriver) ConvertValue(col projector.Column, v any) (any, error) {
	return ConvertValue(col, v)
}

// ConvertValue converts DuckDB decimals to exact decimals and lists to
// cursors over their elements.
func ConvertValue(col projector.Column, v any) (any, error) {
	switch v := v.(type) {
	case duckdb.Decimal:
		if v.Value == nil {
			return nil, nil
		}
		return decimal.NewFromBigInt(v.Value, -int32(v.Scale)), nil
	case *duckdb.Decimal:
		if v == nil {
			return nil, nil
		}
		return ConvertValue(col, *v)
	case []any:
		if col.Kind != projector.KindArray {
			return v, nil
		}
		return arrayCursor(col.TypeName, v)
	default:
		return v, nil
	}
}

func arrayCursor(typeName string, elems []any) (projector.Cursor, error) {
	elemType := projector.ElementTypeName(typeName)
	if !isStruct(elemType) {
		return projector.NewScalarArrayCursor(elemType, elems, ConvertValue), nil
	}
	fields, err := ParseStructFields(elemType)
	if err != nil {
		return nil, err
	}
	return projector.NewStructArrayCursor(fields, elems, ConvertValue), nil
}

func isStruct(typeName string) bool {
	return strings.HasPrefix(strings.ToUpper(typeName), "STRUCT(") && strings.HasSuffix(typeName, ")")
}

// ParseStructFields splits a type name such as
// `STRUCT("a" INTEGER, "b" DECIMAL(10,2)[])` into its fields. Field names
// may be double-quoted with "" as the escaped quote.
func ParseStructFields(typeName string) ([]projector.Field, error) {
	if !isStruct(typeName) {
		return nil, fmt.Errorf("not a struct type: %s", typeName)
	}
	body := typeName[len("STRUCT(") : len(typeName)-1]

	var fields []projector.Field
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, rest, err := cutFieldName(part)
		if err != nil {
			return nil, fmt.Errorf("invalid struct type %s: %w", typeName, err)
		}
		fieldType := strings.TrimSpace(rest)
		if fieldType == "" {
			return nil, fmt.Errorf("invalid struct type %s: field %s has no type", typeName, name)
		}
		fields = append(fields, projector.Field{Name: name, TypeName: fieldType})
	}
	return fields, nil
}

// splitTopLevel splits s at commas outside parentheses, brackets and
// double quotes.
func splitTopLevel(s string) []string {
	var (
		parts   []string
		depth   int
		quoted  bool
		current strings.Builder
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, current.String())
			current.Reset()
			continue
		}
		current.WriteByte(c)
	}
	return append(parts, current.String())
}

func cutFieldName(s string) (name, rest string, err error) {
	if !strings.HasPrefix(s, `"`) {
		name, rest, _ = strings.Cut(s, " ")
		return name, rest, nil
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] != '"' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		return b.String(), s[i+1:], nil
	}
	return "", "", fmt.Errorf("unterminated field name in %q", s)
}

func init() {
	database.RegisterDriver(&DuckDBDriver{})
}
