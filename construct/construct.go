// Package construct provides declarative descriptions of binary layouts:
// integer and float leaves, strings in several framings, nested structs,
// arrays, and conditional fields. A definition is independent of any
// particular byte buffer and can be parsed against any buffer that
// satisfies it.
package construct

// Field is one named field of a structure definition.
type Field interface {
	// Name returns the field's declared name. Padding fields have none.
	Name() string
	// Kind returns a short human-readable type string, e.g. "Int16ul".
	Kind() string
	// Parse consumes the field's bytes from r and returns its value.
	Parse(r *Reader) (any, error)
	// Build appends the encoding of value to w. It is the inverse of
	// Parse: a value Parse produced builds back to the bytes it came from.
	Build(w *Writer, value any) error
}

// Build encodes a parsed value against a definition and returns the bytes.
func Build(f Field, value any) ([]byte, error) {
	w := NewWriter()
	if err := f.Build(w, value); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Leaf marks field kinds whose parsed value has no named sub-fields.
// Tools that need to attribute byte spans to fields (like the annotator
// in the root package) treat any field that is neither a Leaf nor one of
// the composite kinds defined here as unsupported.
type Leaf interface {
	Field
	leaf()
}

// leafField is embedded by every leaf kind.
type leafField struct{}

func (leafField) leaf() {}
