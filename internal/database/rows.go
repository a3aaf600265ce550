package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dagu-org/sqljson/internal/projector"
)

// Rows adapts *sql.Rows to projector.Cursor. Column kinds come from the
// driver and every non-nil value passes through the driver's converter.
type Rows struct {
	rows    *sql.Rows
	driver  Driver
	columns []projector.Column
	dest    []any
	ptrs    []any
}

var _ projector.Cursor = (*Rows)(nil)

// NewRows wraps rows produced by a connection of driver.
func NewRows(rows *sql.Rows, driver Driver) *Rows {
	return &Rows{rows: rows, driver: driver}
}

// Query executes query on db and returns its result as a cursor.
func Query(ctx context.Context, db *sql.DB, driver Driver, query string) (*Rows, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return NewRows(rows, driver), nil
}

// Columns implements projector.Cursor. Column metadata is read once.
func (r *Rows) Columns() ([]projector.Column, error) {
	if r.columns != nil {
		return r.columns, nil
	}

	types, err := r.rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	columns := make([]projector.Column, len(types))
	for i, ct := range types {
		columns[i] = projector.Column{
			Ordinal:  i + 1,
			Name:     ct.Name(),
			Kind:     r.driver.ColumnKind(ct),
			TypeName: ct.DatabaseTypeName(),
		}
	}
	r.columns = columns
	r.dest = make([]any, len(columns))
	r.ptrs = make([]any, len(columns))
	for i := range r.dest {
		r.ptrs[i] = &r.dest[i]
	}
	return r.columns, nil
}

// Next implements projector.Cursor.
func (r *Rows) Next() bool {
	return r.rows.Next()
}

// Values implements projector.Cursor.
func (r *Rows) Values() ([]any, error) {
	if _, err := r.Columns(); err != nil {
		return nil, err
	}
	clear(r.dest)
	if err := r.rows.Scan(r.ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	values := make([]any, len(r.dest))
	for i, v := range r.dest {
		if v == nil || r.columns[i].Kind == projector.KindUnsupported {
			values[i] = v
			continue
		}
		converted, err := r.driver.ConvertValue(r.columns[i], v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", r.columns[i].Name, err)
		}
		values[i] = converted
	}
	return values, nil
}

// Err implements projector.Cursor.
func (r *Rows) Err() error {
	return r.rows.Err()
}

// Close implements projector.Cursor.
func (r *Rows) Close() error {
	return r.rows.Close()
}
