package projector

import "time"

// Sink receives JSON tokens. Implementations validate nesting and report
// write failures through the returned errors.
type Sink interface {
	BeginArray() error
	EndArray() error
	BeginObject() error
	EndObject() error
	Name(name string) error

	Null() error
	Bool(v bool) error
	Int64(v int64) error
	Uint64(v uint64) error
	Float32(v float32) error
	Float64(v float64) error
	// Number writes a pre-formatted JSON number literal.
	Number(literal string) error
	String(v string) error
}

// Formatter renders temporal values.
type Formatter interface {
	FormatDate(t time.Time) string
	FormatTime(t time.Time) string
	FormatDateTime(t time.Time) string
}
