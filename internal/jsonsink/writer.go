// Package jsonsink writes JSON token by token on top of a jsoniter.Stream.
//
// The Writer tracks the open containers so that separators are inserted
// automatically and malformed sequences (a value in an object without a
// field name, a name inside an array, unbalanced ends) are rejected instead
// of producing invalid output.
package jsonsink

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrNameOutsideObject = errors.New("field name outside of an object")
	ErrMissingName       = errors.New("object value without a field name")
	ErrDuplicateName     = errors.New("field name already pending")
	ErrUnbalanced        = errors.New("unbalanced container end")
	ErrMultipleValues    = errors.New("document already has a top-level value")
	ErrIncomplete        = errors.New("document is incomplete")
	ErrInvalidNumber     = errors.New("invalid number literal")
	ErrClosed            = errors.New("writer is closed")
)

const defaultFlushBytes = 64 * 1024

type containerKind int

const (
	arrayContainer containerKind = iota
	objectContainer
)

type container struct {
	kind    containerKind
	opened  bool
	entries int
}

// Writer emits one JSON document to an io.Writer.
type Writer struct {
	api        jsoniter.API
	stream     *jsoniter.Stream
	stack      []*container
	named      bool
	done       bool
	closed     bool
	flushBytes int
}

// Option configures a Writer.
type Option func(*Writer)

// WithIndent pretty-prints the output with n spaces per level.
func WithIndent(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.api = jsoniter.Config{IndentionStep: n}.Froze()
		}
	}
}

// WithFlushBytes sets the buffered size after which the writer flushes.
func WithFlushBytes(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.flushBytes = n
		}
	}
}

// New returns a Writer that writes to out.
func New(out io.Writer, opts ...Option) *Writer {
	w := &Writer{
		api:        jsoniter.ConfigDefault,
		flushBytes: defaultFlushBytes,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.stream = jsoniter.NewStream(w.api, out, 4096)
	return w
}

// BeginArray opens an array.
func (w *Writer) BeginArray() error {
	return w.begin(arrayContainer)
}

// EndArray closes the innermost array.
func (w *Writer) EndArray() error {
	return w.end(arrayContainer)
}

// BeginObject opens an object.
func (w *Writer) BeginObject() error {
	return w.begin(objectContainer)
}

// EndObject closes the innermost object.
func (w *Writer) EndObject() error {
	return w.end(objectContainer)
}

// Name writes the field name for the next value of the current object.
func (w *Writer) Name(name string) error {
	if err := w.usable(); err != nil {
		return err
	}
	top := w.top()
	if top == nil || top.kind != objectContainer {
		return ErrNameOutsideObject
	}
	if w.named {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	w.open(top)
	if top.entries > 0 {
		w.stream.WriteMore()
	}
	w.stream.WriteObjectField(name)
	w.named = true
	return w.check()
}

// Null writes null.
func (w *Writer) Null() error {
	return w.value(w.stream.WriteNil)
}

// Bool writes true or false.
func (w *Writer) Bool(v bool) error {
	return w.value(func() { w.stream.WriteBool(v) })
}

// Int64 writes a signed integer.
func (w *Writer) Int64(v int64) error {
	return w.value(func() { w.stream.WriteInt64(v) })
}

// Uint64 writes an unsigned integer.
func (w *Writer) Uint64(v uint64) error {
	return w.value(func() { w.stream.WriteUint64(v) })
}

// Float32 writes a number with single precision. NaN and infinities fail.
func (w *Writer) Float32(v float32) error {
	return w.value(func() { w.stream.WriteFloat32(v) })
}

// Float64 writes a number with double precision. NaN and infinities fail.
func (w *Writer) Float64(v float64) error {
	return w.value(func() { w.stream.WriteFloat64(v) })
}

var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Number writes literal verbatim after checking it is a valid JSON number.
func (w *Writer) Number(literal string) error {
	if !numberLiteral.MatchString(literal) {
		return fmt.Errorf("%w: %q", ErrInvalidNumber, literal)
	}
	return w.value(func() { w.stream.WriteRaw(literal) })
}

// String writes a quoted string.
func (w *Writer) String(v string) error {
	return w.value(func() { w.stream.WriteString(v) })
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Close flushes the document. It fails if containers are still open or no
// value was written. Further writes fail with ErrClosed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.Flush(); err != nil {
		return err
	}
	if len(w.stack) > 0 || !w.done {
		return ErrIncomplete
	}
	return nil
}

func (w *Writer) begin(kind containerKind) error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	w.stack = append(w.stack, &container{kind: kind})
	w.named = false
	return nil
}

func (w *Writer) end(kind containerKind) error {
	if err := w.usable(); err != nil {
		return err
	}
	top := w.top()
	if top == nil || top.kind != kind || w.named {
		return ErrUnbalanced
	}
	w.stack = w.stack[:len(w.stack)-1]
	switch {
	case !top.opened && kind == arrayContainer:
		w.stream.WriteEmptyArray()
	case !top.opened:
		w.stream.WriteEmptyObject()
	case kind == arrayContainer:
		w.stream.WriteArrayEnd()
	default:
		w.stream.WriteObjectEnd()
	}
	w.afterValue()
	return w.check()
}

func (w *Writer) value(write func()) error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	write()
	w.afterValue()
	return w.check()
}

// beforeValue validates the position of a new value and writes the
// separator that precedes it.
func (w *Writer) beforeValue() error {
	if err := w.usable(); err != nil {
		return err
	}
	top := w.top()
	switch {
	case top == nil:
		if w.done {
			return ErrMultipleValues
		}
	case top.kind == objectContainer:
		if !w.named {
			return ErrMissingName
		}
	default:
		w.open(top)
		if top.entries > 0 {
			w.stream.WriteMore()
		}
	}
	return nil
}

func (w *Writer) afterValue() {
	top := w.top()
	if top == nil {
		w.done = true
		return
	}
	top.entries++
	w.named = false
}

// open writes the opening token of c the first time it gets content, so
// empty containers render as [] and {} even when indenting.
func (w *Writer) open(c *container) {
	if c.opened {
		return
	}
	c.opened = true
	if c.kind == arrayContainer {
		w.stream.WriteArrayStart()
	} else {
		w.stream.WriteObjectStart()
	}
}

func (w *Writer) top() *container {
	if len(w.stack) == 0 {
		return nil
	}
	return w.stack[len(w.stack)-1]
}

func (w *Writer) usable() error {
	if w.closed {
		return ErrClosed
	}
	return w.stream.Error
}

func (w *Writer) check() error {
	if w.stream.Error != nil {
		return w.stream.Error
	}
	if w.stream.Buffered() >= w.flushBytes {
		return w.Flush()
	}
	return nil
}
