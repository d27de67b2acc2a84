package construct

import (
	"bytes"
	"fmt"
)

// constField expects an exact byte sequence.
type constField struct {
	leafField
	name string
	want []byte
}

func (f *constField) Name() string { return f.name }
func (f *constField) Kind() string { return "Const" }

func (f *constField) Parse(r *Reader) (any, error) {
	start := r.Pos()
	b, err := r.ReadN(len(f.want))
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	if !bytes.Equal(b, f.want) {
		return nil, fieldErr(f.name, start, fmt.Errorf("%w: got % x, want % x", ErrConstMismatch, b, f.want))
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Build writes the expected bytes; the value is ignored.
func (f *constField) Build(w *Writer, _ any) error {
	w.Write(f.want)
	return nil
}

// Const matches a fixed byte sequence; anything else fails the parse.
func Const(name string, want []byte) Field {
	w := make([]byte, len(want))
	copy(w, want)
	return &constField{name: name, want: w}
}

// bytesField is a fixed-length raw byte slice.
type bytesField struct {
	leafField
	name string
	size int
}

func (f *bytesField) Name() string { return f.name }
func (f *bytesField) Kind() string { return "Bytes" }

func (f *bytesField) Parse(r *Reader) (any, error) {
	start := r.Pos()
	b, err := r.ReadN(f.size)
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (f *bytesField) Build(w *Writer, v any) error {
	start := w.Len()
	b, ok := v.([]byte)
	if !ok {
		return fieldErr(f.name, start, fmt.Errorf("%w: %T is not a byte slice", ErrBadValue, v))
	}
	if len(b) != f.size {
		return fieldErr(f.name, start, fmt.Errorf("%w: %d bytes, want %d", ErrBadValue, len(b), f.size))
	}
	w.Write(b)
	return nil
}

// Bytes reads exactly size raw bytes.
func Bytes(name string, size int) Field { return &bytesField{name: name, size: size} }

// paddingField skips bytes without interpreting them. It is the one kind
// allowed to break sibling contiguity on purpose.
type paddingField struct {
	leafField
	size int
}

func (f *paddingField) Name() string { return "" }
func (f *paddingField) Kind() string { return "Padding" }

func (f *paddingField) Parse(r *Reader) (any, error) {
	start := r.Pos()
	if _, err := r.ReadN(f.size); err != nil {
		return nil, fieldErr("(padding)", start, err)
	}
	return nil, nil
}

func (f *paddingField) Build(w *Writer, _ any) error {
	w.Write(make([]byte, f.size))
	return nil
}

// Padding consumes size bytes and discards them.
func Padding(size int) Field { return &paddingField{size: size} }

// computedField consumes no bytes; its value is derived from earlier
// siblings.
type computedField struct {
	leafField
	name string
	fn   func(lookup func(string) (any, bool)) any
}

func (f *computedField) Name() string { return f.name }
func (f *computedField) Kind() string { return "Computed" }

func (f *computedField) Parse(r *Reader) (any, error) {
	return f.fn(r.Lookup), nil
}

func (f *computedField) Build(_ *Writer, _ any) error { return nil }

// Computed yields a value derived from previously parsed fields without
// consuming any bytes.
func Computed(name string, fn func(lookup func(string) (any, bool)) any) Field {
	return &computedField{name: name, fn: fn}
}
