package projector

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrConversion is returned when a value cannot be represented as the
// column's kind.
var ErrConversion = errors.New("cannot convert value")

func conversionError(col Column, v any) error {
	return fmt.Errorf("%w %T(%v) to %s for column %s", ErrConversion, v, v, col.Kind, col.Name)
}

func writeText(sink Sink, col Column, v any) error {
	switch v := v.(type) {
	case string:
		return sink.String(v)
	case []byte:
		return sink.String(string(v))
	case time.Time:
		return sink.String(v.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return sink.String(v.String())
	case int64:
		return sink.String(strconv.FormatInt(v, 10))
	case float64:
		return sink.String(strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		return sink.String(strconv.FormatBool(v))
	default:
		return sink.String(fmt.Sprint(v))
	}
}

func writeBool(sink Sink, col Column, v any) error {
	switch v := v.(type) {
	case bool:
		return sink.Bool(v)
	case int64:
		return sink.Bool(v != 0)
	case []byte:
		// BIT(1) columns arrive as a single raw byte.
		if len(v) == 1 && v[0] <= 1 {
			return sink.Bool(v[0] == 1)
		}
		return writeBoolString(sink, col, string(v))
	case string:
		return writeBoolString(sink, col, v)
	default:
		return conversionError(col, v)
	}
}

func writeBoolString(sink Sink, col Column, s string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return conversionError(col, s)
	}
	return sink.Bool(b)
}

func writeInteger(sink Sink, col Column, v any) error {
	switch v := v.(type) {
	case int64:
		return sink.Int64(v)
	case int:
		return sink.Int64(int64(v))
	case int32:
		return sink.Int64(int64(v))
	case int16:
		return sink.Int64(int64(v))
	case int8:
		return sink.Int64(int64(v))
	case uint64:
		return sink.Uint64(v)
	case uint:
		return sink.Uint64(uint64(v))
	case uint32:
		return sink.Uint64(uint64(v))
	case uint16:
		return sink.Uint64(uint64(v))
	case uint8:
		return sink.Uint64(uint64(v))
	case bool:
		if v {
			return sink.Int64(1)
		}
		return sink.Int64(0)
	case *big.Int:
		return sink.Number(v.String())
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return conversionError(col, v)
		}
		return sink.Number(strconv.FormatFloat(v, 'f', 0, 64))
	case []byte:
		return writeIntegerString(sink, col, string(v))
	case string:
		return writeIntegerString(sink, col, v)
	default:
		return conversionError(col, v)
	}
}

func writeIntegerString(sink Sink, col Column, s string) error {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return sink.Int64(n)
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return sink.Uint64(n)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return conversionError(col, s)
	}
	return sink.Number(n.String())
}

func writeFloat(sink Sink, col Column, v any) error {
	switch v := v.(type) {
	case float32:
		return sink.Float32(v)
	case float64:
		return sink.Float32(float32(v))
	case int64:
		return sink.Float32(float32(v))
	case []byte, string:
		f, err := parseFloat(v, 32)
		if err != nil {
			return conversionError(col, v)
		}
		return sink.Float32(float32(f))
	default:
		return conversionError(col, v)
	}
}

func writeDouble(sink Sink, col Column, v any) error {
	switch v := v.(type) {
	case float64:
		return sink.Float64(v)
	case float32:
		// Widen through the shortest decimal form to avoid float32 noise digits.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
		return sink.Float64(f)
	case int64:
		return sink.Float64(float64(v))
	case []byte, string:
		f, err := parseFloat(v, 64)
		if err != nil {
			return conversionError(col, v)
		}
		return sink.Float64(f)
	default:
		return conversionError(col, v)
	}
}

func parseFloat(v any, bitSize int) (float64, error) {
	var s string
	switch v := v.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	}
	return strconv.ParseFloat(strings.TrimSpace(s), bitSize)
}

func writeDecimal(sink Sink, col Column, v any) error {
	var d decimal.Decimal
	switch v := v.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		d = *v
	case []byte:
		parsed, err := decimal.NewFromString(strings.TrimSpace(string(v)))
		if err != nil {
			return conversionError(col, v)
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return conversionError(col, v)
		}
		d = parsed
	case int64:
		d = decimal.NewFromInt(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return conversionError(col, v)
		}
		d = decimal.NewFromFloat(v)
	case float32:
		d = decimal.NewFromFloat32(v)
	case *big.Int:
		d = decimal.NewFromBigInt(v, 0)
	default:
		return conversionError(col, v)
	}
	return sink.Number(DecimalLiteral(d))
}

// DecimalLiteral renders d as a JSON number keeping its scale, so 12.340
// stays 12.340.
func DecimalLiteral(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

var (
	dateLayouts = []string{
		"2006-01-02",
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
	}
	timeLayouts = []string{
		"15:04:05.999999999",
		"15:04:05.999999999Z07:00",
		"15:04:05.999999999Z07",
		"15:04",
	}
	dateTimeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999Z07",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

func toTime(col Column, v any, layouts []string) (time.Time, error) {
	var s string
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		return *v, nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return time.Time{}, conversionError(col, v)
	}
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, conversionError(col, s)
}

func writeDate(sink Sink, f Formatter, col Column, v any) error {
	t, err := toTime(col, v, dateLayouts)
	if err != nil {
		return err
	}
	return sink.String(f.FormatDate(t))
}

func writeTime(sink Sink, f Formatter, col Column, v any) error {
	t, err := toTime(col, v, timeLayouts)
	if err != nil {
		return err
	}
	return sink.String(f.FormatTime(t))
}

func writeDateTime(sink Sink, f Formatter, col Column, v any) error {
	t, err := toTime(col, v, dateTimeLayouts)
	if err != nil {
		return err
	}
	return sink.String(f.FormatDateTime(t))
}
