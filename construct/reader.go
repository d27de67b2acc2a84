package construct

// Reader is a cursor over the byte buffer being parsed. It also carries a
// scope stack of already-parsed sibling values so later fields can refer
// back to them (array counts, switch discriminants).
type Reader struct {
	buf    []byte
	pos    int
	scopes []map[string]any
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// ReadN consumes exactly n bytes. The returned slice aliases the buffer.
func (r *Reader) ReadN(n int) ([]byte, error) {
	// n near MaxInt must not overflow the bounds check
	if n < 0 || n > len(r.buf)-r.pos {
		return nil, ErrTruncated
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadByte consumes a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, ErrTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// Seek moves the cursor to an absolute position. Used by Peek to rewind.
func (r *Reader) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(r.buf) {
		pos = len(r.buf)
	}
	r.pos = pos
}

// PushScope opens a new sibling scope. Struct parsing pushes one scope
// per nesting level.
func (r *Reader) PushScope() {
	r.scopes = append(r.scopes, make(map[string]any))
}

func (r *Reader) PopScope() {
	if len(r.scopes) > 0 {
		r.scopes = r.scopes[:len(r.scopes)-1]
	}
}

// Bind records a parsed value in the innermost scope.
func (r *Reader) Bind(name string, v any) {
	if name == "" || len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = v
}

// Lookup resolves a field reference, innermost scope first.
func (r *Reader) Lookup(name string) (any, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if v, ok := r.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}
