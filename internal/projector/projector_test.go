package projector_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/dagu-org/sqljson/internal/jsonsink"
	"github.com/dagu-org/sqljson/internal/projector"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceCursor serves fixed rows.
type sliceCursor struct {
	columns []projector.Column
	rows    [][]any
	pos     int
	err     error
	closed  bool
}

func newCursor(columns []projector.Column, rows ...[]any) *sliceCursor {
	for i := range columns {
		columns[i].Ordinal = i + 1
		if columns[i].Kind == projector.KindUnsupported && columns[i].TypeName != "" {
			columns[i].Kind = projector.ParseKind(columns[i].TypeName)
		}
	}
	return &sliceCursor{columns: columns, rows: rows}
}

func (c *sliceCursor) Columns() ([]projector.Column, error) { return c.columns, nil }

func (c *sliceCursor) Next() bool {
	if c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Values() ([]any, error) { return c.rows[c.pos-1], nil }
func (c *sliceCursor) Err() error             { return c.err }

func (c *sliceCursor) Close() error {
	c.closed = true
	return nil
}

func col(name, typeName string) projector.Column {
	return projector.Column{Name: name, TypeName: typeName}
}

func project(t *testing.T, p *projector.Projector, cur projector.Cursor) (string, int) {
	t.Helper()
	var buf bytes.Buffer
	w := jsonsink.New(&buf)
	rows, err := p.Project(cur, w)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.String(), rows
}

type fixedFormatter struct{}

func (fixedFormatter) FormatDate(t time.Time) string     { return "D:" + t.Format("2006-01-02") }
func (fixedFormatter) FormatTime(t time.Time) string     { return "T:" + t.Format("15:04") }
func (fixedFormatter) FormatDateTime(t time.Time) string { return "DT:" + t.Format("2006-01-02 15:04") }

func TestProject_SingleValues(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		typeName string
		value    any
		want     string
	}{
		{name: "text", typeName: "VARCHAR", value: "hello", want: `"hello"`},
		{name: "text from bytes", typeName: "TEXT", value: []byte("raw"), want: `"raw"`},
		{name: "null text", typeName: "VARCHAR", value: nil, want: `null`},
		{name: "explicit null type", typeName: "NULL", value: "ignored", want: `null`},
		{name: "bool true", typeName: "BOOLEAN", value: true, want: `true`},
		{name: "bool from int", typeName: "BOOLEAN", value: int64(0), want: `false`},
		{name: "bit byte", typeName: "BIT", value: []byte{1}, want: `true`},
		{name: "bool text", typeName: "BOOL", value: "t", want: `true`},
		{name: "integer", typeName: "INTEGER", value: int64(42), want: `42`},
		{name: "int64 max", typeName: "BIGINT", value: int64(math.MaxInt64), want: `9223372036854775807`},
		{name: "uint64 max", typeName: "UBIGINT", value: uint64(math.MaxUint64), want: `18446744073709551615`},
		{name: "integer text", typeName: "INT8", value: []byte("-17"), want: `-17`},
		{name: "hugeint", typeName: "HUGEINT", value: new(big.Int).Lsh(big.NewInt(1), 100), want: `1267650600228229401496703205376`},
		{name: "hugeint text", typeName: "NUMERIC(38)", value: "12", want: `12`},
		{name: "float", typeName: "REAL", value: float32(1.25), want: `1.25`},
		{name: "float from double", typeName: "FLOAT4", value: float64(0.1), want: `0.1`},
		{name: "double", typeName: "DOUBLE", value: 3.141592653589793, want: `3.141592653589793`},
		{name: "double text", typeName: "FLOAT8", value: []byte("2.5"), want: `2.5`},
		{name: "decimal keeps scale", typeName: "DECIMAL(10,3)", value: "12.340", want: `12.340`},
		{name: "decimal value", typeName: "NUMERIC", value: decimal.RequireFromString("-0.00100"), want: `-0.00100`},
		{name: "decimal big", typeName: "DECIMAL", value: []byte("123456789012345678901234567890.123456789"), want: `123456789012345678901234567890.123456789`},
		{name: "decimal integer", typeName: "DECIMAL", value: int64(7), want: `7`},
		{name: "date", typeName: "DATE", value: ts, want: `"D:2024-01-02"`},
		{name: "date text", typeName: "DATE", value: "2024-01-02", want: `"D:2024-01-02"`},
		{name: "null date", typeName: "DATE", value: nil, want: `null`},
		{name: "time", typeName: "TIME", value: "03:04:05", want: `"T:03:04"`},
		{name: "datetime", typeName: "TIMESTAMP", value: ts, want: `"DT:2024-01-02 03:04"`},
		{name: "datetime text", typeName: "DATETIME", value: []byte("2024-01-02 03:04:05"), want: `"DT:2024-01-02 03:04"`},
		{name: "null array", typeName: "INTEGER[]", value: nil, want: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cur := newCursor([]projector.Column{col("c", tt.typeName)}, []any{tt.value})
			got, rows := project(t, projector.New(projector.WithFormatter(fixedFormatter{})), cur)
			assert.Equal(t, `[{"c":`+tt.want+`}]`, got)
			assert.Equal(t, 1, rows)
		})
	}
}

func TestProject_ZeroRows(t *testing.T) {
	t.Parallel()

	cur := newCursor([]projector.Column{col("id", "INTEGER"), col("name", "VARCHAR")})
	got, rows := project(t, projector.New(), cur)
	assert.Equal(t, `[]`, got)
	assert.Zero(t, rows)
}

func TestProject_ColumnOrder(t *testing.T) {
	t.Parallel()

	cur := newCursor(
		[]projector.Column{col("z", "INTEGER"), col("a", "VARCHAR"), col("m", "BOOLEAN")},
		[]any{int64(1), "x", true},
		[]any{int64(2), nil, false},
	)
	got, rows := project(t, projector.New(), cur)
	assert.Equal(t, `[{"z":1,"a":"x","m":true},{"z":2,"a":null,"m":false}]`, got)
	assert.Equal(t, 2, rows)
}

func TestProject_UnsupportedColumns(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 1000)
	for i := range rows {
		rows[i] = []any{int64(i), []byte{0xde, 0xad}, "x"}
	}
	cur := newCursor([]projector.Column{col("id", "INTEGER"), col("payload", "BLOB"), col("tag", "UUID")}, rows...)

	warnings := projector.NewWarnings()
	var buf bytes.Buffer
	w := jsonsink.New(&buf)
	n, err := projector.New(projector.WithWarnings(warnings)).Project(cur, w)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, 1000, n)
	assert.Equal(t, []string{
		"Unsupported column, payload, type BLOB",
		"Unsupported column, tag, type UUID",
	}, warnings.List())
	assert.Contains(t, buf.String(), `{"id":999}`)
	assert.NotContains(t, buf.String(), "payload")
}

func TestProject_UnsupportedWithoutWarnings(t *testing.T) {
	t.Parallel()

	cur := newCursor([]projector.Column{col("blob", "BLOB"), col("id", "INTEGER")}, []any{[]byte{1}, int64(1)})
	got, _ := project(t, projector.New(), cur)
	assert.Equal(t, `[{"id":1}]`, got)
}

func TestProject_DynamicColumns(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	dynamic := projector.Column{Name: "v", Kind: projector.KindDynamic}
	cur := newCursor([]projector.Column{col("id", "INTEGER"), dynamic},
		[]any{int64(1), nil},
		[]any{int64(2), int64(42)},
		[]any{int64(3), "hello"},
		[]any{int64(4), 1.5},
		[]any{int64(5), ts},
		[]any{int64(6), []byte{0x01}},
	)

	warnings := projector.NewWarnings()
	var buf bytes.Buffer
	w := jsonsink.New(&buf)
	n, err := projector.New(projector.WithWarnings(warnings)).Project(cur, w)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, 6, n)
	assert.Equal(t,
		`[{"id":1,"v":null},{"id":2,"v":42},{"id":3,"v":"hello"},{"id":4,"v":1.5},`+
			`{"id":5,"v":"2024-01-02T03:04:05Z"},{"id":6}]`,
		buf.String())
	assert.Equal(t, []string{"Unsupported column, v, type []uint8"}, warnings.List())
}

func TestProject_NestedArrays(t *testing.T) {
	t.Parallel()

	t.Run("scalar elements", func(t *testing.T) {
		t.Parallel()
		tags := projector.NewScalarArrayCursor("VARCHAR", []any{"a", nil, "c"}, nil)
		cur := newCursor([]projector.Column{col("id", "INTEGER"), col("tags", "VARCHAR[]")}, []any{int64(1), tags})

		got, _ := project(t, projector.New(), cur)
		assert.Equal(t, `[{"id":1,"tags":["a",null,"c"]}]`, got)
		assert.False(t, tags.Next())
	})

	t.Run("two data columns directly under a row", func(t *testing.T) {
		t.Parallel()
		nested := newCursor(
			[]projector.Column{col("idx", "INTEGER"), col("sku", "VARCHAR"), col("qty", "INTEGER")},
			[]any{int64(1), "A-1", int64(2)},
			[]any{int64(2), "B-7", int64(5)},
		)
		cur := newCursor([]projector.Column{col("order", "INTEGER"), col("lines", "ARRAY")}, []any{int64(10), nested})

		got, _ := project(t, projector.New(), cur)
		assert.Equal(t, `[{"order":10,"lines":[{"sku":"A-1","qty":2},{"sku":"B-7","qty":5}]}]`, got)
		assert.True(t, nested.closed)
	})

	t.Run("two data columns two levels deep", func(t *testing.T) {
		t.Parallel()
		inner := newCursor(
			[]projector.Column{col("idx", "INTEGER"), col("x", "INTEGER"), col("y", "INTEGER")},
			[]any{int64(1), int64(1), int64(2)},
			[]any{int64(2), int64(3), int64(4)},
		)
		outer := projector.NewScalarArrayCursor("ARRAY", []any{inner}, nil)
		cur := newCursor([]projector.Column{col("points", "ARRAY")}, []any{outer})

		got, _ := project(t, projector.New(), cur)
		assert.Equal(t, `[{"points":[[[1,2],[3,4]]]}]`, got)
	})

	t.Run("struct elements", func(t *testing.T) {
		t.Parallel()
		items := projector.NewStructArrayCursor(
			[]projector.Field{{Name: "name", TypeName: "VARCHAR"}, {Name: "price", TypeName: "DECIMAL(5,2)"}},
			[]any{
				map[string]any{"name": "pen", "price": "1.50"},
				map[string]any{"name": "ink", "price": nil},
			},
			nil,
		)
		cur := newCursor([]projector.Column{col("items", "STRUCT(name VARCHAR, price DECIMAL(5,2))[]")}, []any{items})

		got, _ := project(t, projector.New(), cur)
		assert.Equal(t, `[{"items":[{"name":"pen","price":1.50},{"name":"ink","price":null}]}]`, got)
	})

	t.Run("empty nested array", func(t *testing.T) {
		t.Parallel()
		empty := projector.NewScalarArrayCursor("INTEGER", nil, nil)
		cur := newCursor([]projector.Column{col("ids", "INTEGER[]")}, []any{empty})

		got, _ := project(t, projector.New(), cur)
		assert.Equal(t, `[{"ids":[]}]`, got)
	})

	t.Run("unsupported nested column warns with group name", func(t *testing.T) {
		t.Parallel()
		blobs := projector.NewScalarArrayCursor("BLOB", []any{[]byte{1}, []byte{2}}, nil)
		cur := newCursor([]projector.Column{col("files", "BLOB[]")}, []any{blobs})

		warnings := projector.NewWarnings()
		got, _ := project(t, projector.New(projector.WithWarnings(warnings)), cur)
		assert.Equal(t, `[{"files":[]}]`, got)
		assert.Equal(t, []string{"Unsupported column, files, type BLOB"}, warnings.List())
	})

	t.Run("converter builds deeper cursors", func(t *testing.T) {
		t.Parallel()
		var convert projector.ValueConverter
		convert = func(c projector.Column, v any) (any, error) {
			if c.Kind == projector.KindArray {
				return projector.NewScalarArrayCursor(projector.ElementTypeName(c.TypeName), v.([]any), convert), nil
			}
			return v, nil
		}
		matrix := projector.NewScalarArrayCursor("INTEGER[]", []any{
			[]any{int64(1), int64(2)},
			[]any{int64(3)},
		}, convert)
		cur := newCursor([]projector.Column{col("m", "INTEGER[][]")}, []any{matrix})

		got, _ := project(t, projector.New(), cur)
		assert.Equal(t, `[{"m":[[1,2],[3]]}]`, got)
	})
}

func TestProject_Errors(t *testing.T) {
	t.Parallel()

	t.Run("cursor error", func(t *testing.T) {
		t.Parallel()
		errBoom := errors.New("connection reset")
		cur := newCursor([]projector.Column{col("id", "INTEGER")}, []any{int64(1)})
		cur.err = errBoom

		_, err := projector.New().Project(cur, jsonsink.New(&bytes.Buffer{}))
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("conversion error", func(t *testing.T) {
		t.Parallel()
		cur := newCursor([]projector.Column{col("n", "INTEGER")}, []any{"not a number"})

		_, err := projector.New().Project(cur, jsonsink.New(&bytes.Buffer{}))
		assert.ErrorIs(t, err, projector.ErrConversion)
	})

	t.Run("array value is not a cursor", func(t *testing.T) {
		t.Parallel()
		cur := newCursor([]projector.Column{col("a", "INTEGER[]")}, []any{"{1,2}"})

		_, err := projector.New().Project(cur, jsonsink.New(&bytes.Buffer{}))
		assert.ErrorIs(t, err, projector.ErrConversion)
	})

	t.Run("non-finite double", func(t *testing.T) {
		t.Parallel()
		cur := newCursor([]projector.Column{col("d", "DOUBLE")}, []any{math.Inf(1)})

		_, err := projector.New().Project(cur, jsonsink.New(&bytes.Buffer{}))
		assert.Error(t, err)
	})

	t.Run("sink failure", func(t *testing.T) {
		t.Parallel()
		cur := newCursor([]projector.Column{col("s", "VARCHAR")}, []any{"payload"})
		w := jsonsink.New(failingWriter{}, jsonsink.WithFlushBytes(1))

		_, err := projector.New().Project(cur, w)
		assert.ErrorIs(t, err, errWrite)
	})
}

var errWrite = fmt.Errorf("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestDecimalLiteral(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12.340", projector.DecimalLiteral(decimal.RequireFromString("12.340")))
	assert.Equal(t, "1000", projector.DecimalLiteral(decimal.RequireFromString("1E+3")))
	assert.Equal(t, "0", projector.DecimalLiteral(decimal.Zero))
}
