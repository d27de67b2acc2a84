package construct

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// Port of the original "simple struct" fixture: const header, int,
// cstring, enum, and a nested struct.
func simpleStruct() (*StructField, []byte) {
	format := Struct("simple",
		Const("my_header", []byte("FAKE")),
		U32LE("my_int"),
		CString("my_string", ASCII),
		Enum(U8("my_enum"), map[uint64]string{1: "ONE", 2: "TWO", 3: "THREE"}),
		Struct("my_inner",
			U16LE("my_id"),
			Enum(U32LE("my_value"), map[uint64]string{1: "HOT", 2: "COLD", 3: "JUST_RIGHT"}),
		),
	)
	buf := []byte("FAKE")
	buf = append(buf, 0x11, 0x00, 0x00, 0x00) // my_int = 17
	buf = append(buf, []byte("helloworld\x00")...)
	buf = append(buf, 0x01)                   // my_enum = ONE
	buf = append(buf, 0x03, 0x00)             // my_id = 3
	buf = append(buf, 0x01, 0x00, 0x00, 0x00) // my_value = HOT
	return format, buf
}

func TestStructParse(t *testing.T) {
	format, buf := simpleStruct()

	r := NewReader(buf)
	v, err := format.Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	parsed := v.(map[string]any)

	if got := parsed["my_int"]; got != uint64(17) {
		t.Errorf("my_int = %v, want 17", got)
	}
	if got := parsed["my_string"]; got != "helloworld" {
		t.Errorf("my_string = %v, want helloworld", got)
	}
	if got := parsed["my_enum"]; got != "ONE" {
		t.Errorf("my_enum = %v, want ONE", got)
	}
	inner := parsed["my_inner"].(map[string]any)
	if got := inner["my_id"]; got != uint64(3) {
		t.Errorf("my_inner.my_id = %v, want 3", got)
	}
	if got := inner["my_value"]; got != "HOT" {
		t.Errorf("my_inner.my_value = %v, want HOT", got)
	}
	if r.Pos() != len(buf) {
		t.Errorf("consumed %d bytes, want %d", r.Pos(), len(buf))
	}
}

func TestConstMismatch(t *testing.T) {
	format, buf := simpleStruct()
	buf[0] = 'X'

	_, err := format.Parse(NewReader(buf))
	if !errors.Is(err, ErrConstMismatch) {
		t.Fatalf("expected ErrConstMismatch, got %v", err)
	}
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if pe.Field != "my_header" || pe.Offset != 0 {
		t.Errorf("error context = (%q, %d), want (\"my_header\", 0)", pe.Field, pe.Offset)
	}
}

func TestEnumUnmappedValue(t *testing.T) {
	r := NewReader([]byte{0x09})
	v, err := Enum(U8("flag"), map[uint64]string{1: "ONE"}).Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v != "9" {
		t.Errorf("Parse() = %q, want \"9\"", v)
	}
}

func TestArrayFixedCount(t *testing.T) {
	format := Array("xs", Count(3), U8("x"))
	r := NewReader([]byte{1, 2, 3})
	v, err := format.Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := v.([]any)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []uint64{1, 2, 3} {
		if got[i] != want {
			t.Errorf("xs[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestArrayCountOf(t *testing.T) {
	format := Struct("packet",
		U8("n"),
		Array("xs", CountOf("n"), U16LE("x")),
	)
	r := NewReader([]byte{2, 0x0a, 0x00, 0x0b, 0x00})
	v, err := format.Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	xs := v.(map[string]any)["xs"].([]any)
	if len(xs) != 2 || xs[0] != uint64(10) || xs[1] != uint64(11) {
		t.Errorf("xs = %v, want [10 11]", xs)
	}
}

func TestArrayCountOfMissingField(t *testing.T) {
	format := Struct("packet",
		Array("xs", CountOf("nope"), U8("x")),
	)
	_, err := format.Parse(NewReader([]byte{1, 2, 3}))
	if !errors.Is(err, ErrBadReference) {
		t.Fatalf("expected ErrBadReference, got %v", err)
	}
}

func TestSwitch(t *testing.T) {
	format := Struct("msg",
		Enum(U8("tag"), map[uint64]string{1: "SMALL", 2: "BIG"}),
		Switch("body", "tag", map[string]Field{
			"SMALL": U8("v"),
			"BIG":   U32LE("v"),
		}, nil),
	)

	tests := []struct {
		name string
		buf  []byte
		want any
	}{
		{name: "small branch", buf: []byte{1, 0x07}, want: uint64(7)},
		{name: "big branch", buf: []byte{2, 0x07, 0x00, 0x00, 0x00}, want: uint64(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.buf)
			v, err := format.Parse(r)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := v.(map[string]any)["body"]; got != tt.want {
				t.Errorf("body = %v, want %v", got, tt.want)
			}
			if r.Pos() != len(tt.buf) {
				t.Errorf("consumed %d bytes, want %d", r.Pos(), len(tt.buf))
			}
		})
	}
}

func TestSwitchNoBranch(t *testing.T) {
	format := Struct("msg",
		U8("tag"),
		Switch("body", "tag", map[string]Field{"1": U8("v")}, nil),
	)
	_, err := format.Parse(NewReader([]byte{9, 0x07}))
	if !errors.Is(err, ErrNoBranch) {
		t.Fatalf("expected ErrNoBranch, got %v", err)
	}
}

func TestSwitchDefault(t *testing.T) {
	format := Struct("msg",
		U8("tag"),
		Switch("body", "tag", map[string]Field{"1": U8("v")}, U16LE("v")),
	)
	r := NewReader([]byte{9, 0x0a, 0x00})
	v, err := format.Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := v.(map[string]any)["body"]; got != uint64(10) {
		t.Errorf("body = %v, want 10", got)
	}
}

func TestIf(t *testing.T) {
	format := Struct("msg",
		U8("has_extra"),
		If("has_extra", U16LE("extra")),
		U8("tail"),
	)

	// condition false: gated field consumes nothing
	r := NewReader([]byte{0, 0xff})
	v, err := format.Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	parsed := v.(map[string]any)
	if parsed["extra"] != nil {
		t.Errorf("extra = %v, want nil", parsed["extra"])
	}
	if parsed["tail"] != uint64(0xff) {
		t.Errorf("tail = %v, want 255", parsed["tail"])
	}

	// condition true
	r = NewReader([]byte{1, 0x0a, 0x00, 0xff})
	v, err = format.Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	parsed = v.(map[string]any)
	if parsed["extra"] != uint64(10) {
		t.Errorf("extra = %v, want 10", parsed["extra"])
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	format := Struct("msg",
		Peek(U8("probe")),
		U8("actual"),
	)
	r := NewReader([]byte{0x2a})
	v, err := format.Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	parsed := v.(map[string]any)
	if parsed["probe"] != uint64(42) || parsed["actual"] != uint64(42) {
		t.Errorf("probe/actual = %v/%v, want 42/42", parsed["probe"], parsed["actual"])
	}
	if r.Pos() != 1 {
		t.Errorf("consumed %d bytes, want 1", r.Pos())
	}
}

func TestPadding(t *testing.T) {
	format := Struct("msg",
		U8("a"),
		Padding(3),
		U8("b"),
	)
	r := NewReader([]byte{1, 0, 0, 0, 2})
	v, err := format.Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	parsed := v.(map[string]any)
	if parsed["a"] != uint64(1) || parsed["b"] != uint64(2) {
		t.Errorf("a/b = %v/%v, want 1/2", parsed["a"], parsed["b"])
	}
	if len(parsed) != 2 {
		t.Errorf("padding leaked into values: %v", parsed)
	}
}

// A declared size near MaxInt must fail cleanly, not overflow the bounds
// check and panic.
func TestOversizedFieldIsTruncated(t *testing.T) {
	format := Struct("msg",
		U8("a"),
		Bytes("big", math.MaxInt),
	)
	_, err := format.Parse(NewReader([]byte{1, 2, 3}))
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestBuildRoundTrip(t *testing.T) {
	format, buf := simpleStruct()

	v, err := format.Parse(NewReader(buf))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	built, err := Build(format, v)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !bytes.Equal(built, buf) {
		t.Errorf("Build() = % x, want % x", built, buf)
	}
}

func TestBuildFromValues(t *testing.T) {
	format, buf := simpleStruct()

	built, err := Build(format, map[string]any{
		"my_int":    uint64(17),
		"my_string": "helloworld",
		"my_enum":   "ONE",
		"my_inner": map[string]any{
			"my_id":    uint64(3),
			"my_value": "HOT",
		},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !bytes.Equal(built, buf) {
		t.Errorf("Build() = % x, want % x", built, buf)
	}
}

func TestBuildValueErrors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value any
	}{
		{name: "uint8 overflow", field: U8("v"), value: uint64(256)},
		{name: "int16 overflow", field: I16LE("v"), value: int64(40000)},
		{name: "wrong type", field: U16LE("v"), value: "ten"},
		{name: "bytes length mismatch", field: Bytes("v", 4), value: []byte{1, 2}},
		{name: "unknown enum name", field: Enum(U8("v"), map[uint64]string{1: "ONE"}), value: "NINE"},
		{name: "padded string too long", field: PaddedString("v", 2, ASCII), value: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.field, tt.value); !errors.Is(err, ErrBadValue) {
				t.Errorf("expected ErrBadValue, got %v", err)
			}
		})
	}
}

func TestBuildEnumDecimalString(t *testing.T) {
	built, err := Build(Enum(U8("v"), map[uint64]string{1: "ONE"}), "9")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !bytes.Equal(built, []byte{9}) {
		t.Errorf("Build() = % x, want 09", built)
	}
}

func TestBuildCountOfArray(t *testing.T) {
	format := Struct("packet",
		U8("n"),
		Array("xs", CountOf("n"), U16LE("x")),
	)
	built, err := Build(format, map[string]any{
		"n":  uint64(2),
		"xs": []any{uint64(10), uint64(11)},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []byte{2, 0x0a, 0x00, 0x0b, 0x00}
	if !bytes.Equal(built, want) {
		t.Errorf("Build() = % x, want % x", built, want)
	}

	// element count disagreeing with the count field
	_, err = Build(format, map[string]any{
		"n":  uint64(3),
		"xs": []any{uint64(10)},
	})
	if !errors.Is(err, ErrBadValue) {
		t.Errorf("expected ErrBadValue, got %v", err)
	}
}

func TestBuildIfAndPadding(t *testing.T) {
	format := Struct("msg",
		U8("has_extra"),
		If("has_extra", U16LE("extra")),
		Padding(2),
		U8("tail"),
	)

	built, err := Build(format, map[string]any{
		"has_extra": uint64(0),
		"tail":      uint64(5),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []byte{0, 0, 0, 5}
	if !bytes.Equal(built, want) {
		t.Errorf("Build() = % x, want % x", built, want)
	}

	built, err = Build(format, map[string]any{
		"has_extra": uint64(1),
		"extra":     uint64(10),
		"tail":      uint64(5),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want = []byte{1, 0x0a, 0x00, 0, 0, 5}
	if !bytes.Equal(built, want) {
		t.Errorf("Build() = % x, want % x", built, want)
	}
}

func TestBuildSwitch(t *testing.T) {
	format := Struct("msg",
		U8("tag"),
		Switch("body", "tag", map[string]Field{
			"1": U8("v"),
			"2": U32LE("v"),
		}, nil),
	)
	built, err := Build(format, map[string]any{
		"tag":  uint64(2),
		"body": uint64(10),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []byte{2, 0x0a, 0x00, 0x00, 0x00}
	if !bytes.Equal(built, want) {
		t.Errorf("Build() = % x, want % x", built, want)
	}
}

func TestComputed(t *testing.T) {
	format := Struct("msg",
		U8("w"),
		U8("h"),
		Computed("area", func(lookup func(string) (any, bool)) any {
			w, _ := lookup("w")
			h, _ := lookup("h")
			return w.(uint64) * h.(uint64)
		}),
	)
	r := NewReader([]byte{3, 4})
	v, err := format.Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := v.(map[string]any)["area"]; got != uint64(12) {
		t.Errorf("area = %v, want 12", got)
	}
	if r.Pos() != 2 {
		t.Errorf("consumed %d bytes, want 2", r.Pos())
	}
}
