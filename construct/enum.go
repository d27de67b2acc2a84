package construct

import (
	"fmt"
	"math"
	"strconv"
)

// enumField wraps an integer leaf and maps its value to a name. Unmapped
// values surface as their decimal string rather than failing; the buffer
// still parsed, the mapping is just incomplete.
type enumField struct {
	leafField
	base   Field
	values map[uint64]string
}

func (f *enumField) Name() string { return f.base.Name() }
func (f *enumField) Kind() string { return fmt.Sprintf("Enum(%s)", f.base.Kind()) }

func (f *enumField) Parse(r *Reader) (any, error) {
	start := r.Pos()
	v, err := f.base.Parse(r)
	if err != nil {
		return nil, err
	}
	u, err := toUint64(v)
	if err != nil {
		return nil, fieldErr(f.base.Name(), start, err)
	}
	if name, ok := f.values[u]; ok {
		return name, nil
	}
	return strconv.FormatUint(u, 10), nil
}

// Build reverses the name mapping. A decimal string that names no enum
// value encodes as that integer, mirroring how unmapped values parse.
func (f *enumField) Build(w *Writer, v any) error {
	start := w.Len()
	s, ok := v.(string)
	if !ok {
		return fieldErr(f.base.Name(), start, fmt.Errorf("%w: %T is not an enum name", ErrBadValue, v))
	}
	for u, name := range f.values {
		if name == s {
			return f.base.Build(w, u)
		}
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fieldErr(f.base.Name(), start, fmt.Errorf("%w: unknown enum name %q", ErrBadValue, s))
	}
	return f.base.Build(w, u)
}

// Enum maps the parsed value of an integer field to a symbolic name.
func Enum(base Field, values map[uint64]string) Field {
	return &enumField{base: base, values: values}
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("%T is not an unsigned integer", v)
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%T is not an integer", v)
	}
}
