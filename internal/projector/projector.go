// Package projector streams query results into JSON.
//
// A Projector walks a Cursor row by row and writes one JSON array. At the
// top level every row becomes an object keyed by column name. Columns of
// KindArray hold nested cursors which are projected recursively into a JSON
// array under the column's field.
package projector

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dagu-org/sqljson/internal/locale"
)

// Projector writes cursors to sinks.
type Projector struct {
	formatter Formatter
	warnings  *Warnings
}

// Option configures a Projector.
type Option func(*Projector)

// WithFormatter sets the formatter used for date and time columns.
func WithFormatter(f Formatter) Option {
	return func(p *Projector) {
		p.formatter = f
	}
}

// WithWarnings collects unsupported column warnings into w.
func WithWarnings(w *Warnings) Option {
	return func(p *Projector) {
		p.warnings = w
	}
}

// New returns a Projector. Without WithFormatter temporal values are
// written in ISO 8601 form.
func New(opts ...Option) *Projector {
	p := &Projector{formatter: locale.ISO()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Project writes all rows of cur to sink as a JSON array and returns the
// number of top-level rows written. The cursor is not closed.
func (p *Projector) Project(cur Cursor, sink Sink) (int, error) {
	return p.project(cur, sink, "", 0)
}

// project writes the rows of cur as one JSON array. At depth 0 each row is
// an object. Deeper, group is the field name the array is written under and
// column 1 is skipped.
func (p *Projector) project(cur Cursor, sink Sink, group string, depth int) (int, error) {
	columns, err := cur.Columns()
	if err != nil {
		return 0, fmt.Errorf("failed to read columns: %w", err)
	}

	data := columns
	if depth > 0 && len(data) > 0 {
		data = data[1:]
	}

	if err := sink.BeginArray(); err != nil {
		return 0, err
	}

	var rows int
	for cur.Next() {
		values, err := cur.Values()
		if err != nil {
			return rows, fmt.Errorf("failed to read row %d: %w", rows+1, err)
		}
		if len(values) != len(columns) {
			return rows, fmt.Errorf("row %d has %d values, expected %d", rows+1, len(values), len(columns))
		}
		if depth > 0 {
			values = values[1:]
		}

		switch {
		case depth == 0:
			err = p.writeObject(sink, data, values, group, depth)
		case len(data) == 1:
			err = p.writeColumn(sink, data[0], values[0], group, depth, false)
		case depth == 1:
			err = p.writeObject(sink, data, values, group, depth)
		default:
			err = p.writeList(sink, data, values, group, depth)
		}
		if err != nil {
			return rows, err
		}
		rows++
	}
	if err := cur.Err(); err != nil {
		return rows, fmt.Errorf("failed to read rows: %w", err)
	}

	return rows, sink.EndArray()
}

func (p *Projector) writeObject(sink Sink, columns []Column, values []any, group string, depth int) error {
	if err := sink.BeginObject(); err != nil {
		return err
	}
	for i, col := range columns {
		if err := p.writeColumn(sink, col, values[i], group, depth, true); err != nil {
			return err
		}
	}
	return sink.EndObject()
}

func (p *Projector) writeList(sink Sink, columns []Column, values []any, group string, depth int) error {
	if err := sink.BeginArray(); err != nil {
		return err
	}
	for i, col := range columns {
		if err := p.writeColumn(sink, col, values[i], group, depth, false); err != nil {
			return err
		}
	}
	return sink.EndArray()
}

// writeColumn writes one value, preceded by its field name when named is
// set. Unsupported columns are skipped.
func (p *Projector) writeColumn(sink Sink, col Column, v any, group string, depth int, named bool) error {
	if col.Kind == KindDynamic {
		col.Kind = valueKind(v)
		if col.TypeName == "" {
			col.TypeName = fmt.Sprintf("%T", v)
		}
	}
	if col.Kind == KindUnsupported {
		name := col.Name
		if depth > 0 {
			name = group
		}
		p.warnings.Unsupported(name, col.TypeName)
		return nil
	}

	if named {
		if err := sink.Name(col.Name); err != nil {
			return err
		}
	}

	if v == nil || col.Kind == KindNull {
		return sink.Null()
	}

	var err error
	switch col.Kind {
	case KindText:
		err = writeText(sink, col, v)
	case KindBool:
		err = writeBool(sink, col, v)
	case KindInteger:
		err = writeInteger(sink, col, v)
	case KindFloat:
		err = writeFloat(sink, col, v)
	case KindDouble:
		err = writeDouble(sink, col, v)
	case KindDecimal:
		err = writeDecimal(sink, col, v)
	case KindDate:
		err = writeDate(sink, p.formatter, col, v)
	case KindTime:
		err = writeTime(sink, p.formatter, col, v)
	case KindDateTime:
		err = writeDateTime(sink, p.formatter, col, v)
	case KindArray:
		err = p.writeArray(sink, col, v, group, depth)
	default:
		err = conversionError(col, v)
	}
	return err
}

func (p *Projector) writeArray(sink Sink, col Column, v any, group string, depth int) error {
	nested, ok := v.(Cursor)
	if !ok {
		return conversionError(col, v)
	}
	defer func() { _ = nested.Close() }()

	if depth == 0 {
		group = col.Name
	}
	_, err := p.project(nested, sink, group, depth+1)
	return err
}

// valueKind classifies a value of a column without a declared type.
func valueKind(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindText
	case bool:
		return KindBool
	case int64, int32, int16, int8, int, uint64, uint32, uint16, uint8, uint:
		return KindInteger
	case float64, float32:
		return KindDouble
	case decimal.Decimal, *decimal.Decimal:
		return KindDecimal
	case time.Time, *time.Time:
		return KindDateTime
	default:
		return KindUnsupported
	}
}
