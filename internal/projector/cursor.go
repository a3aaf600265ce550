package projector

import (
	"errors"
	"fmt"
)

// Column describes one column of a cursor.
type Column struct {
	// Ordinal is the 1-based position of the column.
	Ordinal int
	Name    string
	Kind    Kind
	// TypeName is the type name reported by the driver, used in warnings.
	TypeName string
}

// Cursor is a forward-only, read-once view over result rows.
//
// Values returned for KindArray columns are either nil or a Cursor over the
// array elements. The first column of a nested cursor is a correlation
// column and is never projected.
type Cursor interface {
	Columns() ([]Column, error)
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error
}

// ValueConverter normalizes a raw value of the given column into a value
// the projector can write. Array values must come back as a Cursor.
type ValueConverter func(col Column, v any) (any, error)

// Field is one data column of an array element.
type Field struct {
	Name     string
	TypeName string
}

// IndexColumnName is the name of the correlation column of array cursors.
const IndexColumnName = "index"

// ValueFieldName is the field name used for scalar array elements.
const ValueFieldName = "value"

var errNoRow = errors.New("cursor is not positioned on a row")

// ArrayCursor exposes the elements of an in-memory array as rows. Column 1
// holds the 1-based element index, the following columns hold the element
// fields. Scalar elements have a single field; struct elements are read
// from map[string]any by field name.
type ArrayCursor struct {
	columns  []Column
	elems    []any
	isStruct bool
	convert  ValueConverter
	pos      int
	closed   bool
}

var _ Cursor = (*ArrayCursor)(nil)

// NewScalarArrayCursor returns a cursor over scalar elements of elemType.
func NewScalarArrayCursor(elemType string, elems []any, convert ValueConverter) *ArrayCursor {
	return newArrayCursor([]Field{{Name: ValueFieldName, TypeName: elemType}}, false, elems, convert)
}

// NewStructArrayCursor returns a cursor over struct elements with the given fields.
func NewStructArrayCursor(fields []Field, elems []any, convert ValueConverter) *ArrayCursor {
	return newArrayCursor(fields, true, elems, convert)
}

func newArrayCursor(fields []Field, isStruct bool, elems []any, convert ValueConverter) *ArrayCursor {
	columns := make([]Column, 0, len(fields)+1)
	columns = append(columns, Column{Ordinal: 1, Name: IndexColumnName, Kind: KindInteger, TypeName: "INTEGER"})
	for i, f := range fields {
		columns = append(columns, Column{
			Ordinal:  i + 2,
			Name:     f.Name,
			Kind:     ParseKind(f.TypeName),
			TypeName: f.TypeName,
		})
	}
	return &ArrayCursor{
		columns:  columns,
		elems:    elems,
		isStruct: isStruct,
		convert:  convert,
	}
}

// Columns implements Cursor.
func (c *ArrayCursor) Columns() ([]Column, error) {
	return c.columns, nil
}

// Next implements Cursor.
func (c *ArrayCursor) Next() bool {
	if c.closed || c.pos >= len(c.elems) {
		return false
	}
	c.pos++
	return true
}

// Values implements Cursor.
func (c *ArrayCursor) Values() ([]any, error) {
	if c.closed || c.pos == 0 || c.pos > len(c.elems) {
		return nil, errNoRow
	}
	elem := c.elems[c.pos-1]
	values := make([]any, len(c.columns))
	values[0] = int64(c.pos)
	for i, col := range c.columns[1:] {
		var raw any
		if c.isStruct {
			if elem != nil {
				fields, ok := elem.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("array element %d: expected struct, got %T", c.pos, elem)
				}
				raw = fields[col.Name]
			}
		} else {
			raw = elem
		}
		v, err := c.convertValue(col, raw)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", c.pos, err)
		}
		values[i+1] = v
	}
	return values, nil
}

func (c *ArrayCursor) convertValue(col Column, v any) (any, error) {
	if v == nil || c.convert == nil {
		return v, nil
	}
	return c.convert(col, v)
}

// Err implements Cursor.
func (c *ArrayCursor) Err() error {
	return nil
}

// Close implements Cursor.
func (c *ArrayCursor) Close() error {
	c.closed = true
	return nil
}
