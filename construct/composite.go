package construct

import "fmt"

// StructField is an ordered sequence of named sub-fields. Parsing yields
// a map[string]any; each parsed value is bound into the current scope so
// later siblings can reference it.
type StructField struct {
	name   string
	fields []Field
}

// Struct declares a nested structure.
func Struct(name string, fields ...Field) *StructField {
	return &StructField{name: name, fields: fields}
}

func (s *StructField) Name() string    { return s.name }
func (s *StructField) Kind() string    { return "Struct" }
func (s *StructField) Fields() []Field { return s.fields }

func (s *StructField) Parse(r *Reader) (any, error) {
	r.PushScope()
	defer r.PopScope()
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		v, err := f.Parse(r)
		if err != nil {
			return nil, err
		}
		if f.Name() != "" {
			r.Bind(f.Name(), v)
			out[f.Name()] = v
		}
	}
	return out, nil
}

func (s *StructField) Build(w *Writer, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fieldErr(s.name, w.Len(), fmt.Errorf("%w: %T is not a field map", ErrBadValue, v))
	}
	w.PushScope()
	defer w.PopScope()
	for _, f := range s.fields {
		sub := m[f.Name()]
		if err := f.Build(w, sub); err != nil {
			return err
		}
		if f.Name() != "" {
			w.Bind(f.Name(), sub)
		}
	}
	return nil
}

// Counter resolves an array length, either fixed or from a previously
// parsed sibling field.
type Counter struct {
	n  int
	of string
}

// Count is a fixed array length.
func Count(n int) Counter { return Counter{n: n} }

// CountOf takes the array length from an earlier sibling field.
func CountOf(field string) Counter { return Counter{of: field} }

func (c Counter) resolve(lookup func(string) (any, bool)) (int, error) {
	if c.of == "" {
		return c.n, nil
	}
	v, ok := lookup(c.of)
	if !ok {
		return 0, fmt.Errorf("%w: count field %q not yet parsed", ErrBadReference, c.of)
	}
	n, err := toUint64(v)
	if err != nil {
		return 0, fmt.Errorf("%w: count field %q: %v", ErrBadReference, c.of, err)
	}
	return int(n), nil
}

// ArrayField repeats an element definition a resolved number of times.
type ArrayField struct {
	name  string
	count Counter
	elem  Field
}

// Array declares a repeated field. The element definition is reused for
// every index.
func Array(name string, count Counter, elem Field) *ArrayField {
	return &ArrayField{name: name, count: count, elem: elem}
}

func (a *ArrayField) Name() string { return a.name }
func (a *ArrayField) Kind() string { return fmt.Sprintf("Array[%s]", a.elem.Kind()) }
func (a *ArrayField) Elem() Field  { return a.elem }

// Length resolves the element count against already-parsed siblings.
func (a *ArrayField) Length(r *Reader) (int, error) {
	n, err := a.count.resolve(r.Lookup)
	if err != nil {
		return 0, fieldErr(a.name, r.Pos(), err)
	}
	if n < 0 {
		return 0, fieldErr(a.name, r.Pos(), fmt.Errorf("%w: negative count %d", ErrBadReference, n))
	}
	return n, nil
}

func (a *ArrayField) Parse(r *Reader) (any, error) {
	n, err := a.Length(r)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := a.elem.Parse(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (a *ArrayField) Build(w *Writer, v any) error {
	start := w.Len()
	items, ok := v.([]any)
	if !ok {
		return fieldErr(a.name, start, fmt.Errorf("%w: %T is not a slice", ErrBadValue, v))
	}
	n, err := a.count.resolve(w.Lookup)
	if err != nil {
		return fieldErr(a.name, start, err)
	}
	if n != len(items) {
		return fieldErr(a.name, start, fmt.Errorf("%w: %d elements, count says %d", ErrBadValue, len(items), n))
	}
	for _, item := range items {
		if err := a.elem.Build(w, item); err != nil {
			return err
		}
	}
	return nil
}

// SwitchField picks one of several branch definitions based on the value
// of an earlier sibling. Only the taken branch consumes bytes.
type SwitchField struct {
	name  string
	on    string
	cases map[string]Field
	dflt  Field
}

// Switch declares a branching field. Integer discriminants are matched
// against their decimal string; string discriminants (e.g. enum names)
// match directly. A nil dflt makes an unmatched value a parse failure.
func Switch(name, on string, cases map[string]Field, dflt Field) *SwitchField {
	return &SwitchField{name: name, on: on, cases: cases, dflt: dflt}
}

func (s *SwitchField) Name() string { return s.name }
func (s *SwitchField) Kind() string { return fmt.Sprintf("Switch(%s)", s.on) }

// Choose resolves the branch the discriminant selects.
func (s *SwitchField) Choose(r *Reader) (Field, error) {
	return s.choose(r.Lookup, r.Pos())
}

func (s *SwitchField) choose(lookup func(string) (any, bool), pos int) (Field, error) {
	v, ok := lookup(s.on)
	if !ok {
		return nil, fieldErr(s.name, pos, fmt.Errorf("%w: switch field %q not yet parsed", ErrBadReference, s.on))
	}
	if f, ok := s.cases[caseKey(v)]; ok {
		return f, nil
	}
	if s.dflt != nil {
		return s.dflt, nil
	}
	return nil, fieldErr(s.name, pos, fmt.Errorf("%w: no case for %v", ErrNoBranch, v))
}

func (s *SwitchField) Parse(r *Reader) (any, error) {
	branch, err := s.Choose(r)
	if err != nil {
		return nil, err
	}
	return branch.Parse(r)
}

func (s *SwitchField) Build(w *Writer, v any) error {
	branch, err := s.choose(w.Lookup, w.Len())
	if err != nil {
		return err
	}
	return branch.Build(w, v)
}

func caseKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// IfField parses its inner field only when the discriminant sibling is
// truthy; otherwise it consumes zero bytes and yields nil.
type IfField struct {
	on    string
	inner Field
}

// If gates a field on an earlier sibling. Zero integers, empty strings
// and false are falsy; everything else is truthy.
func If(on string, inner Field) *IfField {
	return &IfField{on: on, inner: inner}
}

func (f *IfField) Name() string { return f.inner.Name() }
func (f *IfField) Kind() string { return fmt.Sprintf("If(%s)", f.inner.Kind()) }
func (f *IfField) Inner() Field { return f.inner }

// Taken reports whether the gated field is present.
func (f *IfField) Taken(r *Reader) (bool, error) {
	return f.taken(r.Lookup, r.Pos())
}

func (f *IfField) taken(lookup func(string) (any, bool), pos int) (bool, error) {
	v, ok := lookup(f.on)
	if !ok {
		return false, fieldErr(f.inner.Name(), pos, fmt.Errorf("%w: condition field %q not yet parsed", ErrBadReference, f.on))
	}
	return truthy(v), nil
}

func (f *IfField) Parse(r *Reader) (any, error) {
	taken, err := f.Taken(r)
	if err != nil {
		return nil, err
	}
	if !taken {
		return nil, nil
	}
	return f.inner.Parse(r)
}

func (f *IfField) Build(w *Writer, v any) error {
	taken, err := f.taken(w.Lookup, w.Len())
	if err != nil {
		return err
	}
	if !taken {
		return nil
	}
	return f.inner.Build(w, v)
}

func truthy(v any) bool {
	switch n := v.(type) {
	case bool:
		return n
	case uint64:
		return n != 0
	case int64:
		return n != 0
	case float64:
		return n != 0
	case string:
		return n != ""
	case nil:
		return false
	default:
		return true
	}
}

// PeekField parses its inner field and then rewinds the cursor, so the
// value is observed without consuming bytes.
type PeekField struct {
	inner Field
}

// Peek probes ahead without moving the cursor.
func Peek(inner Field) *PeekField { return &PeekField{inner: inner} }

func (f *PeekField) Name() string { return f.inner.Name() }
func (f *PeekField) Kind() string { return fmt.Sprintf("Peek(%s)", f.inner.Kind()) }
func (f *PeekField) Inner() Field { return f.inner }

func (f *PeekField) Parse(r *Reader) (any, error) {
	start := r.Pos()
	v, err := f.inner.Parse(r)
	r.Seek(start)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Build writes nothing: the peeked bytes belong to the field that owns them.
func (f *PeekField) Build(_ *Writer, _ any) error { return nil }
