package jsonstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWriter_EmptyArray(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.BeginArray(); err != nil {
		t.Fatal(err)
	}
	if err := w.EndArray(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]" {
		t.Errorf("got %q, want []", buf.String())
	}
}

func TestWriter_NestedDocument(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	steps := []func() error{
		w.BeginArray,
		w.BeginObject,
		func() error { return w.Member("page", map[string]any{"title": "A", "ns": 0, "id": 1}) },
		func() error { return w.Key("comments") },
		w.BeginArray,
		func() error { return w.Value(map[string]any{"id": 1, "parentId": nil}) },
		func() error { return w.Value(map[string]any{"id": 2, "parentId": 1}) },
		w.EndArray,
		w.EndObject,
		w.BeginObject,
		func() error { return w.Member("page", map[string]any{"title": "B", "ns": 2, "id": 5}) },
		func() error { return w.Key("comments") },
		w.BeginArray,
		w.EndArray,
		w.EndObject,
		w.EndArray,
		w.Close,
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	var doc []map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(doc) != 2 {
		t.Fatalf("got %d groups, want 2", len(doc))
	}
	var comments []map[string]any
	if err := json.Unmarshal(doc[0]["comments"], &comments); err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 {
		t.Errorf("got %d comments, want 2", len(comments))
	}
}

func TestWriter_DepthTracksOpenScopes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if w.Depth() != 0 {
		t.Fatalf("new writer depth = %d", w.Depth())
	}

	steps := []struct {
		name  string
		step  func() error
		depth int
	}{
		{"begin array", w.BeginArray, 1},
		{"begin object", w.BeginObject, 2},
		{"key", func() error { return w.Key("comments") }, 2},
		{"nested array", w.BeginArray, 3},
		{"value", func() error { return w.Value(1) }, 3},
		{"end nested", w.EndArray, 2},
		{"end object", w.EndObject, 1},
		{"end array", w.EndArray, 0},
	}
	for _, s := range steps {
		if err := s.step(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if w.Depth() != s.depth {
			t.Errorf("after %s depth = %d, want %d", s.name, w.Depth(), s.depth)
		}
	}

	// A mismatched close leaves the depth alone
	w2 := NewWriter(&bytes.Buffer{})
	_ = w2.BeginArray()
	if err := w2.EndObject(); !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced, got %v", err)
	}
	if w2.Depth() != 1 {
		t.Errorf("depth after mismatched close = %d, want 1", w2.Depth())
	}
}

func TestWriter_Errors(t *testing.T) {
	tests := []struct {
		name string
		run  func(w *Writer) error
		want error
	}{
		{
			name: "value without key in object",
			run: func(w *Writer) error {
				_ = w.BeginObject()
				return w.Value(1)
			},
			want: ErrKeyExpected,
		},
		{
			name: "mismatched end",
			run: func(w *Writer) error {
				_ = w.BeginArray()
				return w.EndObject()
			},
			want: ErrUnbalanced,
		},
		{
			name: "unclosed scope on close",
			run: func(w *Writer) error {
				_ = w.BeginArray()
				_ = w.BeginObject()
				return w.Close()
			},
			want: ErrUnbalanced,
		},
		{
			name: "key in array",
			run: func(w *Writer) error {
				_ = w.BeginArray()
				return w.Key("x")
			},
			want: ErrUnexpected,
		},
		{
			name: "second root value",
			run: func(w *Writer) error {
				_ = w.Value(1)
				return w.Value(2)
			},
			want: ErrUnexpected,
		},
		{
			name: "dangling key",
			run: func(w *Writer) error {
				_ = w.BeginObject()
				_ = w.Key("a")
				return w.EndObject()
			},
			want: ErrUnbalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(&bytes.Buffer{})
			err := tt.run(w)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if !errors.Is(w.Err(), tt.want) {
				t.Errorf("sticky error = %v, want %v", w.Err(), tt.want)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_StickyWriteError(t *testing.T) {
	w := NewWriter(failingWriter{})
	_ = w.BeginArray()
	_ = w.Value("x")
	_ = w.EndArray()
	if err := w.Close(); err == nil {
		t.Fatal("expected flush error")
	}
	if err := w.Value("y"); err == nil {
		t.Error("writer should keep returning the first error")
	}
}

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

func TestWriter_FlushPropagates(t *testing.T) {
	var rec flushRecorder
	w := NewWriter(&rec)
	_ = w.BeginArray()
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if rec.flushes != 1 {
		t.Errorf("flushes = %d, want 1", rec.flushes)
	}
	if rec.String() != "[" {
		t.Errorf("buffered output = %q", rec.String())
	}
}
