// Package jsonstream writes a JSON document incrementally, one value at a time,
// without holding the document in memory.
package jsonstream

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrUnbalanced is returned when a scope is closed by the wrong End call,
	// or the document is closed with scopes still open.
	ErrUnbalanced = errors.New("jsonstream: unbalanced scope")
	// ErrKeyExpected is returned when a value is written into an object without a key
	ErrKeyExpected = errors.New("jsonstream: object member requires a key")
	// ErrUnexpected is returned for a key or value the current scope does not accept
	ErrUnexpected = errors.New("jsonstream: value not allowed here")
)

type scopeKind int

const (
	scopeArray scopeKind = iota
	scopeObject
)

type scope struct {
	kind    scopeKind
	count   int
	haveKey bool
}

// Writer emits a JSON document through nested array and object scopes.
// Separators are inserted by the writer; the first error is sticky.
type Writer struct {
	w      *bufio.Writer
	dst    io.Writer
	stack  []scope
	done   bool
	err    error
	closed bool
}

// NewWriter creates a Writer on top of w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), dst: w}
}

// Err returns the first error encountered
func (w *Writer) Err() error {
	return w.err
}

// Depth returns the number of open scopes
func (w *Writer) Depth() int {
	return len(w.stack)
}

// BeginArray opens an array scope
func (w *Writer) BeginArray() error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	w.stack = append(w.stack, scope{kind: scopeArray})
	return w.writeByte('[')
}

// EndArray closes the innermost scope, which must be an array
func (w *Writer) EndArray() error {
	return w.end(scopeArray, ']')
}

// BeginObject opens an object scope
func (w *Writer) BeginObject() error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	w.stack = append(w.stack, scope{kind: scopeObject})
	return w.writeByte('{')
}

// EndObject closes the innermost scope, which must be an object
func (w *Writer) EndObject() error {
	return w.end(scopeObject, '}')
}

// Key writes an object member name. The next call must produce its value.
func (w *Writer) Key(name string) error {
	if w.err != nil {
		return w.err
	}
	top := w.top()
	if top == nil || top.kind != scopeObject || top.haveKey {
		return w.fail(fmt.Errorf("%w: key %q", ErrUnexpected, name))
	}
	if top.count > 0 {
		if err := w.writeByte(','); err != nil {
			return err
		}
	}
	if err := w.encode(name); err != nil {
		return err
	}
	top.haveKey = true
	return w.writeByte(':')
}

// Value writes v, encoded with encoding/json, as the next array element or member value
func (w *Writer) Value(v any) error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	return w.encode(v)
}

// Member writes a key and its value
func (w *Writer) Member(name string, v any) error {
	if err := w.Key(name); err != nil {
		return err
	}
	return w.Value(v)
}

// Flush pushes buffered output to the underlying writer
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		return w.fail(err)
	}
	if f, ok := w.dst.(interface{ Flush() }); ok {
		f.Flush()
	}
	return nil
}

// Close verifies every scope was closed and flushes. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}
	if len(w.stack) > 0 {
		return w.fail(fmt.Errorf("%w: %d scope(s) still open", ErrUnbalanced, len(w.stack)))
	}
	return w.Flush()
}

func (w *Writer) top() *scope {
	if len(w.stack) == 0 {
		return nil
	}
	return &w.stack[len(w.stack)-1]
}

// beforeValue places the separator for a value in the current position
func (w *Writer) beforeValue() error {
	if w.err != nil {
		return w.err
	}
	top := w.top()
	if top == nil {
		if w.done {
			return w.fail(fmt.Errorf("%w: document already has a root value", ErrUnexpected))
		}
		w.done = true
		return nil
	}
	switch top.kind {
	case scopeObject:
		if !top.haveKey {
			return w.fail(ErrKeyExpected)
		}
		top.haveKey = false
	case scopeArray:
		if top.count > 0 {
			if err := w.writeByte(','); err != nil {
				return err
			}
		}
	}
	top.count++
	return nil
}

func (w *Writer) end(kind scopeKind, b byte) error {
	if w.err != nil {
		return w.err
	}
	top := w.top()
	if top == nil || top.kind != kind {
		return w.fail(ErrUnbalanced)
	}
	if top.haveKey {
		return w.fail(fmt.Errorf("%w: dangling key", ErrUnbalanced))
	}
	w.stack = w.stack[:len(w.stack)-1]
	return w.writeByte(b)
}

func (w *Writer) encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return w.fail(fmt.Errorf("jsonstream: encode: %w", err))
	}
	if _, err := w.w.Write(data); err != nil {
		return w.fail(err)
	}
	return nil
}

func (w *Writer) writeByte(b byte) error {
	if err := w.w.WriteByte(b); err != nil {
		return w.fail(err)
	}
	return nil
}

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}
