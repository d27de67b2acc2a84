package construct

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// Encoding names a supported string byte encoding.
type Encoding string

const (
	ASCII   Encoding = "ascii"
	UTF8    Encoding = "utf8"
	UTF16LE Encoding = "utf16le"
	UTF32LE Encoding = "utf32le"
)

// unitSize is the width of one code unit, which is also the width of the
// NUL terminator for that encoding.
func (e Encoding) unitSize() (int, error) {
	switch e {
	case ASCII, UTF8:
		return 1, nil
	case UTF16LE:
		return 2, nil
	case UTF32LE:
		return 4, nil
	default:
		return 0, fmt.Errorf("unsupported string encoding %q", e)
	}
}

func (e Encoding) decode(b []byte) (string, error) {
	switch e {
	case ASCII, UTF8:
		return string(b), nil
	case UTF16LE:
		if len(b)%2 != 0 {
			return "", fmt.Errorf("utf16 string has odd byte length %d", len(b))
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(b[i*2:])
		}
		return string(utf16.Decode(units)), nil
	case UTF32LE:
		if len(b)%4 != 0 {
			return "", fmt.Errorf("utf32 string byte length %d not a multiple of 4", len(b))
		}
		runes := make([]rune, len(b)/4)
		for i := range runes {
			runes[i] = rune(binary.LittleEndian.Uint32(b[i*4:]))
		}
		return string(runes), nil
	default:
		return "", fmt.Errorf("unsupported string encoding %q", e)
	}
}

func (e Encoding) encode(s string) ([]byte, error) {
	switch e {
	case ASCII, UTF8:
		return []byte(s), nil
	case UTF16LE:
		units := utf16.Encode([]rune(s))
		out := make([]byte, len(units)*2)
		for i, u := range units {
			binary.LittleEndian.PutUint16(out[i*2:], u)
		}
		return out, nil
	case UTF32LE:
		runes := []rune(s)
		out := make([]byte, len(runes)*4)
		for i, r := range runes {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(r))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported string encoding %q", e)
	}
}

// cString is terminated by an all-zero code unit. Its consumed size
// includes the terminator.
type cString struct {
	leafField
	name string
	enc  Encoding
}

func (f *cString) Name() string { return f.name }
func (f *cString) Kind() string { return "CString" }

func (f *cString) Parse(r *Reader) (any, error) {
	start := r.Pos()
	unit, err := f.enc.unitSize()
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	var raw []byte
	for {
		u, err := r.ReadN(unit)
		if err != nil {
			return nil, fieldErr(f.name, start, err)
		}
		if isZero(u) {
			break
		}
		raw = append(raw, u...)
	}
	s, err := f.enc.decode(raw)
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	return s, nil
}

func (f *cString) Build(w *Writer, v any) error {
	start := w.Len()
	s, ok := v.(string)
	if !ok {
		return fieldErr(f.name, start, fmt.Errorf("%w: %T is not a string", ErrBadValue, v))
	}
	unit, err := f.enc.unitSize()
	if err != nil {
		return fieldErr(f.name, start, err)
	}
	b, err := f.enc.encode(s)
	if err != nil {
		return fieldErr(f.name, start, err)
	}
	w.Write(b)
	w.Write(make([]byte, unit))
	return nil
}

// CString reads code units until an all-zero unit. The terminator counts
// toward the field's size.
func CString(name string, enc Encoding) Field { return &cString{name: name, enc: enc} }

// paddedString occupies a fixed number of bytes; trailing NULs are
// stripped from the value.
type paddedString struct {
	leafField
	name string
	size int
	enc  Encoding
}

func (f *paddedString) Name() string { return f.name }
func (f *paddedString) Kind() string { return "PaddedString" }

func (f *paddedString) Parse(r *Reader) (any, error) {
	start := r.Pos()
	b, err := r.ReadN(f.size)
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	unit, err := f.enc.unitSize()
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	trimmed := b
	for len(trimmed) >= unit && isZero(trimmed[len(trimmed)-unit:]) {
		trimmed = trimmed[:len(trimmed)-unit]
	}
	s, err := f.enc.decode(trimmed)
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	return s, nil
}

func (f *paddedString) Build(w *Writer, v any) error {
	start := w.Len()
	s, ok := v.(string)
	if !ok {
		return fieldErr(f.name, start, fmt.Errorf("%w: %T is not a string", ErrBadValue, v))
	}
	b, err := f.enc.encode(s)
	if err != nil {
		return fieldErr(f.name, start, err)
	}
	if len(b) > f.size {
		return fieldErr(f.name, start, fmt.Errorf("%w: %d encoded bytes exceed size %d", ErrBadValue, len(b), f.size))
	}
	cell := make([]byte, f.size)
	copy(cell, b)
	w.Write(cell)
	return nil
}

// PaddedString reads a fixed-size, NUL-padded string.
func PaddedString(name string, size int, enc Encoding) Field {
	return &paddedString{name: name, size: size, enc: enc}
}

// pascalString is length-prefixed with a varint byte count. Its size
// includes the prefix.
type pascalString struct {
	leafField
	name string
	enc  Encoding
}

func (f *pascalString) Name() string { return f.name }
func (f *pascalString) Kind() string { return "PascalString" }

func (f *pascalString) Parse(r *Reader) (any, error) {
	start := r.Pos()
	n, err := readUvarint(r)
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	if n > uint64(r.Remaining()) {
		return nil, fieldErr(f.name, start, ErrTruncated)
	}
	b, err := r.ReadN(int(n))
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	s, err := f.enc.decode(b)
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	return s, nil
}

func (f *pascalString) Build(w *Writer, v any) error {
	start := w.Len()
	s, ok := v.(string)
	if !ok {
		return fieldErr(f.name, start, fmt.Errorf("%w: %T is not a string", ErrBadValue, v))
	}
	b, err := f.enc.encode(s)
	if err != nil {
		return fieldErr(f.name, start, err)
	}
	w.Write(binary.AppendUvarint(nil, uint64(len(b))))
	w.Write(b)
	return nil
}

// PascalString reads a varint byte-length prefix followed by that many
// bytes of string data.
func PascalString(name string, enc Encoding) Field {
	return &pascalString{name: name, enc: enc}
}

func isZero(b []byte) bool {
	return bytes.Count(b, []byte{0}) == len(b)
}
