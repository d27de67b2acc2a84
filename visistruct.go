// Package visistruct recovers the byte offset and size of every field of
// a parsed binary structure. Parsing a buffer against a construct
// definition yields values but discards layout; Annotate re-runs the same
// parse while recording the cursor position before and after each field,
// producing a tree that mirrors the definition's nesting.
package visistruct

import (
	"errors"
	"fmt"

	"github.com/danofsteel32/visistruct/construct"
)

// ErrUnsupportedField means the definition contains a field kind the
// annotator cannot observe. Refusing is deliberate; guessing would
// silently produce wrong offsets.
var ErrUnsupportedField = errors.New("unsupported field kind")

// FieldAnnotation records one field's position within the buffer: where
// it starts, how many bytes it consumed, the value it parsed to, and its
// sub-fields in encounter order. A tree is built fresh per Annotate call
// and never mutated afterwards.
type FieldAnnotation struct {
	Name     string            `json:"name"`
	Kind     string            `json:"kind"`
	Offset   int               `json:"offset"`
	Size     int               `json:"size"`
	Value    any               `json:"value,omitempty"`
	Children []FieldAnnotation `json:"children,omitempty"`
}

// Leaves returns the annotations with no children and a nonzero size, in
// document order. These are the spans that own bytes of the buffer.
func (a *FieldAnnotation) Leaves() []FieldAnnotation {
	var out []FieldAnnotation
	a.Walk(func(n *FieldAnnotation, depth int) {
		if len(n.Children) == 0 && n.Size > 0 {
			out = append(out, *n)
		}
	})
	return out
}

// Walk visits every annotation in the tree pre-order, root included at
// depth 0.
func (a *FieldAnnotation) Walk(fn func(n *FieldAnnotation, depth int)) {
	a.walk(fn, 0)
}

func (a *FieldAnnotation) walk(fn func(n *FieldAnnotation, depth int), depth int) {
	fn(a, depth)
	for i := range a.Children {
		a.Children[i].walk(fn, depth+1)
	}
}

// Annotate parses buf against def, recording each field's byte span. The
// root annotation covers everything the definition consumed, so its Size
// is the total bytes read. If the parse fails the failure is returned
// as-is and no partial tree is produced. The call is self-contained:
// independent calls on independent buffers may run concurrently.
func Annotate(def construct.Field, buf []byte) (*FieldAnnotation, error) {
	r := construct.NewReader(buf)
	return annotateField(def, r)
}

// AnnotateParsed encodes an already-parsed value back to bytes with the
// definition and annotates the result, for when the parsed form is at hand
// but the raw bytes are not. The built bytes are returned alongside the
// tree so they can feed the hex dump.
func AnnotateParsed(def construct.Field, parsed any) (*FieldAnnotation, []byte, error) {
	raw, err := construct.Build(def, parsed)
	if err != nil {
		return nil, nil, err
	}
	root, err := Annotate(def, raw)
	if err != nil {
		return nil, nil, err
	}
	return root, raw, nil
}

func annotateField(f construct.Field, r *construct.Reader) (*FieldAnnotation, error) {
	start := r.Pos()

	switch def := f.(type) {
	case *construct.StructField:
		r.PushScope()
		defer r.PopScope()
		node := &FieldAnnotation{Name: def.Name(), Kind: def.Kind(), Offset: start}
		value := make(map[string]any, len(def.Fields()))
		for _, sub := range def.Fields() {
			child, err := annotateField(sub, r)
			if err != nil {
				return nil, err
			}
			if sub.Name() != "" {
				r.Bind(sub.Name(), child.Value)
				value[sub.Name()] = child.Value
			}
			node.Children = append(node.Children, *child)
		}
		node.Size = r.Pos() - start
		node.Value = value
		return node, nil

	case *construct.ArrayField:
		n, err := def.Length(r)
		if err != nil {
			return nil, err
		}
		node := &FieldAnnotation{Name: def.Name(), Kind: def.Kind(), Offset: start}
		value := make([]any, 0, n)
		for i := 0; i < n; i++ {
			child, err := annotateField(def.Elem(), r)
			if err != nil {
				return nil, err
			}
			child.Name = fmt.Sprintf("[%d]", i)
			value = append(value, child.Value)
			node.Children = append(node.Children, *child)
		}
		node.Size = r.Pos() - start
		node.Value = value
		return node, nil

	case *construct.SwitchField:
		branch, err := def.Choose(r)
		if err != nil {
			return nil, err
		}
		child, err := annotateField(branch, r)
		if err != nil {
			return nil, err
		}
		return &FieldAnnotation{
			Name:     def.Name(),
			Kind:     def.Kind(),
			Offset:   start,
			Size:     child.Size,
			Value:    child.Value,
			Children: []FieldAnnotation{*child},
		}, nil

	case *construct.IfField:
		taken, err := def.Taken(r)
		if err != nil {
			return nil, err
		}
		if !taken {
			return &FieldAnnotation{Name: def.Name(), Kind: def.Kind(), Offset: start}, nil
		}
		child, err := annotateField(def.Inner(), r)
		if err != nil {
			return nil, err
		}
		child.Kind = def.Kind()
		return child, nil

	case *construct.PeekField:
		child, err := annotateField(def.Inner(), r)
		r.Seek(start)
		if err != nil {
			return nil, err
		}
		// A probe observes bytes it does not own.
		return &FieldAnnotation{
			Name:   def.Name(),
			Kind:   def.Kind(),
			Offset: start,
			Value:  child.Value,
		}, nil
	}

	if _, ok := f.(construct.Leaf); !ok {
		return nil, fmt.Errorf("%w: %q (%T)", ErrUnsupportedField, f.Name(), f)
	}

	v, err := f.Parse(r)
	if err != nil {
		return nil, err
	}
	name := f.Name()
	if name == "" {
		name = "(padding)"
	}
	return &FieldAnnotation{
		Name:   name,
		Kind:   f.Kind(),
		Offset: start,
		Size:   r.Pos() - start,
		Value:  v,
	}, nil
}
