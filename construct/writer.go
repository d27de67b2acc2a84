package construct

// Writer accumulates bytes while building. Like Reader it carries a scope
// stack of already-built sibling values so later fields can refer back to
// them (array counts, switch discriminants).
type Writer struct {
	buf    []byte
	scopes []map[string]any
}

func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Write appends b to the output.
func (w *Writer) Write(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte { return w.buf }

// PushScope opens a new sibling scope. Struct building pushes one scope
// per nesting level.
func (w *Writer) PushScope() {
	w.scopes = append(w.scopes, make(map[string]any))
}

func (w *Writer) PopScope() {
	if len(w.scopes) > 0 {
		w.scopes = w.scopes[:len(w.scopes)-1]
	}
}

// Bind records a built value in the innermost scope.
func (w *Writer) Bind(name string, v any) {
	if name == "" || len(w.scopes) == 0 {
		return
	}
	w.scopes[len(w.scopes)-1][name] = v
}

// Lookup resolves a field reference, innermost scope first.
func (w *Writer) Lookup(name string) (any, bool) {
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if v, ok := w.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}
