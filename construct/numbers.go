package construct

import (
	"encoding/binary"
	"fmt"
	"math"
)

// intField is every fixed-width integer leaf. Unsigned values parse as
// uint64, signed as int64, regardless of width.
type intField struct {
	leafField
	name   string
	kind   string
	size   int
	signed bool
	order  binary.ByteOrder
}

func (f *intField) Name() string { return f.name }
func (f *intField) Kind() string { return f.kind }

func (f *intField) Parse(r *Reader) (any, error) {
	start := r.Pos()
	b, err := r.ReadN(f.size)
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	var u uint64
	switch f.size {
	case 1:
		u = uint64(b[0])
	case 2:
		u = uint64(f.order.Uint16(b))
	case 4:
		u = uint64(f.order.Uint32(b))
	case 8:
		u = f.order.Uint64(b)
	}
	if !f.signed {
		return u, nil
	}
	// sign-extend from the field width
	shift := uint(64 - f.size*8)
	return int64(u<<shift) >> shift, nil
}

func (f *intField) Build(w *Writer, v any) error {
	start := w.Len()
	var u uint64
	if f.signed {
		n, err := toInt64(v)
		if err != nil {
			return fieldErr(f.name, start, fmt.Errorf("%w: %v", ErrBadValue, err))
		}
		if f.size < 8 {
			limit := int64(1) << uint(f.size*8-1)
			if n < -limit || n >= limit {
				return fieldErr(f.name, start, fmt.Errorf("%w: %d overflows %d bytes", ErrBadValue, n, f.size))
			}
		}
		u = uint64(n)
	} else {
		n, err := toUint64(v)
		if err != nil {
			return fieldErr(f.name, start, fmt.Errorf("%w: %v", ErrBadValue, err))
		}
		if f.size < 8 && n>>uint(f.size*8) != 0 {
			return fieldErr(f.name, start, fmt.Errorf("%w: %d overflows %d bytes", ErrBadValue, n, f.size))
		}
		u = n
	}
	var scratch [8]byte
	switch f.size {
	case 1:
		scratch[0] = byte(u)
	case 2:
		f.order.PutUint16(scratch[:2], uint16(u))
	case 4:
		f.order.PutUint32(scratch[:4], uint32(u))
	case 8:
		f.order.PutUint64(scratch[:8], u)
	}
	w.Write(scratch[:f.size])
	return nil
}

func newInt(name string, size int, signed bool, order binary.ByteOrder) *intField {
	sign := "u"
	if signed {
		sign = "s"
	}
	end := "l"
	if order == binary.BigEndian {
		end = "b"
	}
	return &intField{
		name:   name,
		kind:   fmt.Sprintf("Int%d%s%s", size*8, sign, end),
		size:   size,
		signed: signed,
		order:  order,
	}
}

func U8(name string) Field    { return newInt(name, 1, false, binary.LittleEndian) }
func I8(name string) Field    { return newInt(name, 1, true, binary.LittleEndian) }
func U16LE(name string) Field { return newInt(name, 2, false, binary.LittleEndian) }
func U16BE(name string) Field { return newInt(name, 2, false, binary.BigEndian) }
func I16LE(name string) Field { return newInt(name, 2, true, binary.LittleEndian) }
func I16BE(name string) Field { return newInt(name, 2, true, binary.BigEndian) }
func U32LE(name string) Field { return newInt(name, 4, false, binary.LittleEndian) }
func U32BE(name string) Field { return newInt(name, 4, false, binary.BigEndian) }
func I32LE(name string) Field { return newInt(name, 4, true, binary.LittleEndian) }
func I32BE(name string) Field { return newInt(name, 4, true, binary.BigEndian) }
func U64LE(name string) Field { return newInt(name, 8, false, binary.LittleEndian) }
func U64BE(name string) Field { return newInt(name, 8, false, binary.BigEndian) }
func I64LE(name string) Field { return newInt(name, 8, true, binary.LittleEndian) }
func I64BE(name string) Field { return newInt(name, 8, true, binary.BigEndian) }

// floatField parses IEEE 754 floats. Values are always float64.
type floatField struct {
	leafField
	name  string
	kind  string
	size  int
	order binary.ByteOrder
}

func (f *floatField) Name() string { return f.name }
func (f *floatField) Kind() string { return f.kind }

func (f *floatField) Parse(r *Reader) (any, error) {
	start := r.Pos()
	b, err := r.ReadN(f.size)
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	if f.size == 4 {
		return float64(math.Float32frombits(f.order.Uint32(b))), nil
	}
	return math.Float64frombits(f.order.Uint64(b)), nil
}

func (f *floatField) Build(w *Writer, v any) error {
	n, ok := v.(float64)
	if !ok {
		return fieldErr(f.name, w.Len(), fmt.Errorf("%w: %T is not a float", ErrBadValue, v))
	}
	var scratch [8]byte
	if f.size == 4 {
		f.order.PutUint32(scratch[:4], math.Float32bits(float32(n)))
	} else {
		f.order.PutUint64(scratch[:8], math.Float64bits(n))
	}
	w.Write(scratch[:f.size])
	return nil
}

func newFloat(name string, size int, order binary.ByteOrder) *floatField {
	end := "l"
	if order == binary.BigEndian {
		end = "b"
	}
	return &floatField{name: name, kind: fmt.Sprintf("Float%d%s", size*8, end), size: size, order: order}
}

func F32LE(name string) Field { return newFloat(name, 4, binary.LittleEndian) }
func F32BE(name string) Field { return newFloat(name, 4, binary.BigEndian) }
func F64LE(name string) Field { return newFloat(name, 8, binary.LittleEndian) }
func F64BE(name string) Field { return newFloat(name, 8, binary.BigEndian) }

// varIntField is an unsigned LEB128 varint.
type varIntField struct {
	leafField
	name string
}

func (f *varIntField) Name() string { return f.name }
func (f *varIntField) Kind() string { return "VarInt" }

func (f *varIntField) Parse(r *Reader) (any, error) {
	start := r.Pos()
	v, err := readUvarint(r)
	if err != nil {
		return nil, fieldErr(f.name, start, err)
	}
	return v, nil
}

func (f *varIntField) Build(w *Writer, v any) error {
	n, err := toUint64(v)
	if err != nil {
		return fieldErr(f.name, w.Len(), fmt.Errorf("%w: %v", ErrBadValue, err))
	}
	w.Write(binary.AppendUvarint(nil, n))
	return nil
}

// VarInt is an unsigned variable-length integer, 7 bits per byte, low
// group first, high bit set on all but the last byte.
func VarInt(name string) Field { return &varIntField{name: name} }

func readUvarint(r *Reader) (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift >= 64 || (shift == 63 && b > 1) {
			return 0, fmt.Errorf("varint overflows 64 bits")
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}
