package construct

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"unicode/utf16"
)

func encodeString(t *testing.T, enc Encoding, s string) []byte {
	t.Helper()
	switch enc {
	case ASCII, UTF8:
		return []byte(s)
	case UTF16LE:
		units := utf16.Encode([]rune(s))
		out := make([]byte, len(units)*2)
		for i, u := range units {
			binary.LittleEndian.PutUint16(out[i*2:], u)
		}
		return out
	case UTF32LE:
		runes := []rune(s)
		out := make([]byte, len(runes)*4)
		for i, r := range runes {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(r))
		}
		return out
	}
	t.Fatalf("unknown encoding %q", enc)
	return nil
}

func TestCString(t *testing.T) {
	encodings := []Encoding{ASCII, UTF8, UTF16LE, UTF32LE}
	terminator := map[Encoding]int{ASCII: 1, UTF8: 1, UTF16LE: 2, UTF32LE: 4}

	for _, enc := range encodings {
		t.Run(string(enc), func(t *testing.T) {
			body := encodeString(t, enc, "=QWERTY=")
			buf := append(append([]byte{}, body...), make([]byte, terminator[enc])...)

			r := NewReader(buf)
			got, err := CString("s", enc).Parse(r)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != "=QWERTY=" {
				t.Errorf("Parse() = %q, want %q", got, "=QWERTY=")
			}
			// terminator counts toward the consumed size
			if r.Pos() != len(buf) {
				t.Errorf("consumed %d bytes, want %d", r.Pos(), len(buf))
			}
		})
	}
}

func TestCStringMissingTerminator(t *testing.T) {
	r := NewReader([]byte("abc"))
	if _, err := CString("s", ASCII).Parse(r); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestPaddedString(t *testing.T) {
	tests := []struct {
		name string
		enc  Encoding
		size int
		text string
	}{
		{name: "ascii", enc: ASCII, size: 12, text: "hello"},
		{name: "utf8", enc: UTF8, size: 12, text: "héllo"},
		{name: "utf16le", enc: UTF16LE, size: 24, text: "hello"},
		{name: "utf32le", enc: UTF32LE, size: 40, text: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := encodeString(t, tt.enc, tt.text)
			buf := make([]byte, tt.size)
			copy(buf, body)

			r := NewReader(buf)
			got, err := PaddedString("s", tt.size, tt.enc).Parse(r)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.text {
				t.Errorf("Parse() = %q, want %q", got, tt.text)
			}
			if r.Pos() != tt.size {
				t.Errorf("consumed %d bytes, want %d", r.Pos(), tt.size)
			}
		})
	}
}

func TestPascalString(t *testing.T) {
	body := encodeString(t, UTF16LE, "=QWERTY=")
	buf := append([]byte{byte(len(body))}, body...)

	r := NewReader(buf)
	got, err := PascalString("s", UTF16LE).Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got != "=QWERTY=" {
		t.Errorf("Parse() = %q, want %q", got, "=QWERTY=")
	}
	// prefix counts toward the consumed size
	if r.Pos() != len(buf) {
		t.Errorf("consumed %d bytes, want %d", r.Pos(), len(buf))
	}
}

func TestPascalStringPrefixBeyondBuffer(t *testing.T) {
	r := NewReader([]byte{0x10, 'a', 'b'})
	if _, err := PascalString("s", ASCII).Parse(r); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestBuildStringFramings(t *testing.T) {
	const text = "=QWERTY="
	terminator := map[Encoding]int{ASCII: 1, UTF8: 1, UTF16LE: 2, UTF32LE: 4}

	for _, enc := range []Encoding{ASCII, UTF8, UTF16LE, UTF32LE} {
		t.Run(string(enc), func(t *testing.T) {
			body := encodeString(t, enc, text)

			fields := []struct {
				field Field
				want  []byte
			}{
				{field: CString("s", enc), want: append(append([]byte{}, body...), make([]byte, terminator[enc])...)},
				{field: PascalString("s", enc), want: append([]byte{byte(len(body))}, body...)},
			}
			for _, tt := range fields {
				built, err := Build(tt.field, text)
				if err != nil {
					t.Fatalf("%s Build failed: %v", tt.field.Kind(), err)
				}
				if !bytes.Equal(built, tt.want) {
					t.Errorf("%s Build() = % x, want % x", tt.field.Kind(), built, tt.want)
				}
			}

			padded := make([]byte, len(body)+8)
			copy(padded, body)
			built, err := Build(PaddedString("s", len(padded), enc), text)
			if err != nil {
				t.Fatalf("PaddedString Build failed: %v", err)
			}
			if !bytes.Equal(built, padded) {
				t.Errorf("PaddedString Build() = % x, want % x", built, padded)
			}
		})
	}
}

// All string framings across all encodings in one struct, after the
// original test fixture.
func TestAllStringTypes(t *testing.T) {
	encodings := []Encoding{ASCII, UTF8, UTF16LE, UTF32LE}
	terminator := map[Encoding]int{ASCII: 1, UTF8: 1, UTF16LE: 2, UTF32LE: 4}
	const text = "=QWERTY="
	const padded = 40

	var fields []Field
	var buf []byte
	for _, enc := range encodings {
		body := encodeString(t, enc, text)

		fields = append(fields, CString("cstring_"+string(enc), enc))
		buf = append(buf, body...)
		buf = append(buf, make([]byte, terminator[enc])...)

		fields = append(fields, PaddedString("paddedstring_"+string(enc), padded, enc))
		cell := make([]byte, padded)
		copy(cell, body)
		buf = append(buf, cell...)

		fields = append(fields, PascalString("pascalstring_"+string(enc), enc))
		buf = append(buf, byte(len(body)))
		buf = append(buf, body...)
	}

	r := NewReader(buf)
	v, err := Struct("strings", fields...).Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	parsed := v.(map[string]any)
	if len(parsed) != 12 { // 3 string types * 4 encodings
		t.Fatalf("parsed %d fields, want 12", len(parsed))
	}
	for name, val := range parsed {
		if val != text {
			t.Errorf("%s = %q, want %q", name, val, text)
		}
	}
	if r.Pos() != len(buf) {
		t.Errorf("consumed %d bytes, want %d", r.Pos(), len(buf))
	}
}
