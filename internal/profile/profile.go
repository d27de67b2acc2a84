// Package profile loads structure definitions from JSON or YAML
// documents, so layouts can be described without recompiling. A profile
// compiles into a construct definition.
package profile

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danofsteel32/visistruct/construct"
)

// Profile is a named top-level structure definition.
type Profile struct {
	Name   string      `json:"name" yaml:"name" jsonschema:"title=Name,description=Name of the top-level structure"`
	Fields []FieldSpec `json:"fields" yaml:"fields" jsonschema:"title=Fields,description=Fields in declaration order"`
}

// FieldSpec describes one field. Which keys apply depends on type.
type FieldSpec struct {
	Name     string               `json:"name,omitempty" yaml:"name,omitempty" jsonschema:"title=Name,description=Field name"`
	Type     string               `json:"type" yaml:"type" jsonschema:"title=Type,description=Field type (uint8..uint64 int8..int64 float32 float64 varint const enum cstring paddedstring pascalstring bytes padding struct array switch if peek)"`
	Endian   string               `json:"endian,omitempty" yaml:"endian,omitempty" jsonschema:"title=Endianness,description=little (default) or big"`
	Size     int                  `json:"size,omitempty" yaml:"size,omitempty" jsonschema:"title=Size,description=Byte size for paddedstring/bytes/padding"`
	Encoding string               `json:"encoding,omitempty" yaml:"encoding,omitempty" jsonschema:"title=Encoding,description=String encoding: ascii utf8 utf16le utf32le"`
	Value    string               `json:"value,omitempty" yaml:"value,omitempty" jsonschema:"title=Value,description=Expected bytes for const: literal text or 0x-prefixed hex"`
	Base     string               `json:"base,omitempty" yaml:"base,omitempty" jsonschema:"title=Base,description=Integer base type for enum (default uint8)"`
	Values   map[string]string    `json:"values,omitempty" yaml:"values,omitempty" jsonschema:"title=Values,description=Enum mapping of integer value to name"`
	Count    int                  `json:"count,omitempty" yaml:"count,omitempty" jsonschema:"title=Count,description=Fixed array length"`
	CountOf  string               `json:"count_of,omitempty" yaml:"count_of,omitempty" jsonschema:"title=Count Of,description=Sibling field holding the array length"`
	Of       *FieldSpec           `json:"of,omitempty" yaml:"of,omitempty" jsonschema:"title=Of,description=Array element definition"`
	Fields   []FieldSpec          `json:"fields,omitempty" yaml:"fields,omitempty" jsonschema:"title=Fields,description=Sub-fields for struct"`
	On       string               `json:"on,omitempty" yaml:"on,omitempty" jsonschema:"title=On,description=Sibling field that drives switch/if"`
	Cases    map[string]FieldSpec `json:"cases,omitempty" yaml:"cases,omitempty" jsonschema:"title=Cases,description=Switch branches keyed by discriminant value"`
	Default  *FieldSpec           `json:"default,omitempty" yaml:"default,omitempty" jsonschema:"title=Default,description=Switch branch when no case matches"`
	Inner    *FieldSpec           `json:"inner,omitempty" yaml:"inner,omitempty" jsonschema:"title=Inner,description=Wrapped field for if/peek"`
}

// Load reads a profile from disk. YAML and JSON are both accepted; the
// extension picks the decoder, defaulting to YAML, which also parses
// JSON documents.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("parse profile %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("parse profile %s: %w", path, err)
		}
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(p.Fields) == 0 {
		return nil, fmt.Errorf("profile %s: no fields", path)
	}
	return &p, nil
}

// Compile turns the profile into a construct definition.
func (p *Profile) Compile() (construct.Field, error) {
	fields := make([]construct.Field, 0, len(p.Fields))
	for _, spec := range p.Fields {
		f, err := compileField(spec, p.Name+"."+spec.Name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return construct.Struct(p.Name, fields...), nil
}

func compileField(spec FieldSpec, path string) (construct.Field, error) {
	switch strings.ToLower(spec.Type) {
	case "uint8", "uint16", "uint32", "uint64", "int8", "int16", "int32", "int64", "float32", "float64":
		return compileNumber(spec, path)
	case "varint":
		return construct.VarInt(spec.Name), nil
	case "const":
		want, err := constBytes(spec.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", path, err)
		}
		return construct.Const(spec.Name, want), nil
	case "enum":
		return compileEnum(spec, path)
	case "cstring":
		return construct.CString(spec.Name, encoding(spec)), nil
	case "paddedstring", "padded_string":
		if spec.Size <= 0 {
			return nil, fmt.Errorf("field %s: paddedstring needs a positive size", path)
		}
		return construct.PaddedString(spec.Name, spec.Size, encoding(spec)), nil
	case "pascalstring", "pascal_string":
		return construct.PascalString(spec.Name, encoding(spec)), nil
	case "bytes":
		if spec.Size <= 0 {
			return nil, fmt.Errorf("field %s: bytes needs a positive size", path)
		}
		return construct.Bytes(spec.Name, spec.Size), nil
	case "padding":
		if spec.Size <= 0 {
			return nil, fmt.Errorf("field %s: padding needs a positive size", path)
		}
		return construct.Padding(spec.Size), nil
	case "struct":
		fields := make([]construct.Field, 0, len(spec.Fields))
		for _, sub := range spec.Fields {
			f, err := compileField(sub, path+"."+sub.Name)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
		return construct.Struct(spec.Name, fields...), nil
	case "array":
		if spec.Of == nil {
			return nil, fmt.Errorf("field %s: array needs an element definition", path)
		}
		elem, err := compileField(*spec.Of, path+".of")
		if err != nil {
			return nil, err
		}
		count := construct.Count(spec.Count)
		if spec.CountOf != "" {
			count = construct.CountOf(spec.CountOf)
		}
		return construct.Array(spec.Name, count, elem), nil
	case "switch":
		if spec.On == "" {
			return nil, fmt.Errorf("field %s: switch needs an 'on' field", path)
		}
		cases := make(map[string]construct.Field, len(spec.Cases))
		for key, sub := range spec.Cases {
			f, err := compileField(sub, path+"["+key+"]")
			if err != nil {
				return nil, err
			}
			cases[key] = f
		}
		var dflt construct.Field
		if spec.Default != nil {
			f, err := compileField(*spec.Default, path+".default")
			if err != nil {
				return nil, err
			}
			dflt = f
		}
		return construct.Switch(spec.Name, spec.On, cases, dflt), nil
	case "if":
		if spec.On == "" || spec.Inner == nil {
			return nil, fmt.Errorf("field %s: if needs 'on' and 'inner'", path)
		}
		inner, err := compileField(*spec.Inner, path+".inner")
		if err != nil {
			return nil, err
		}
		return construct.If(spec.On, inner), nil
	case "peek":
		if spec.Inner == nil {
			return nil, fmt.Errorf("field %s: peek needs 'inner'", path)
		}
		inner, err := compileField(*spec.Inner, path+".inner")
		if err != nil {
			return nil, err
		}
		return construct.Peek(inner), nil
	default:
		return nil, fmt.Errorf("field %s: unknown type %q", path, spec.Type)
	}
}

func compileNumber(spec FieldSpec, path string) (construct.Field, error) {
	big := false
	switch strings.ToLower(spec.Endian) {
	case "", "little", "le":
	case "big", "be":
		big = true
	default:
		return nil, fmt.Errorf("field %s: unknown endianness %q", path, spec.Endian)
	}
	key := strings.ToLower(spec.Type)
	if big {
		key += ":be"
	}
	ctor, ok := numberCtors[key]
	if !ok {
		return nil, fmt.Errorf("field %s: unknown number type %q", path, spec.Type)
	}
	return ctor(spec.Name), nil
}

var numberCtors = map[string]func(string) construct.Field{
	"uint8":      construct.U8,
	"uint8:be":   construct.U8,
	"int8":       construct.I8,
	"int8:be":    construct.I8,
	"uint16":     construct.U16LE,
	"uint16:be":  construct.U16BE,
	"int16":      construct.I16LE,
	"int16:be":   construct.I16BE,
	"uint32":     construct.U32LE,
	"uint32:be":  construct.U32BE,
	"int32":      construct.I32LE,
	"int32:be":   construct.I32BE,
	"uint64":     construct.U64LE,
	"uint64:be":  construct.U64BE,
	"int64":      construct.I64LE,
	"int64:be":   construct.I64BE,
	"float32":    construct.F32LE,
	"float32:be": construct.F32BE,
	"float64":    construct.F64LE,
	"float64:be": construct.F64BE,
}

func compileEnum(spec FieldSpec, path string) (construct.Field, error) {
	base := spec.Base
	if base == "" {
		base = "uint8"
	}
	inner, err := compileNumber(FieldSpec{Name: spec.Name, Type: base, Endian: spec.Endian}, path)
	if err != nil {
		return nil, err
	}
	values := make(map[uint64]string, len(spec.Values))
	for key, name := range spec.Values {
		n, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: enum key %q is not an unsigned integer", path, key)
		}
		values[n] = name
	}
	return construct.Enum(inner, values), nil
}

// constBytes accepts either literal text or a 0x-prefixed hex string.
func constBytes(v string) ([]byte, error) {
	if v == "" {
		return nil, fmt.Errorf("const needs a value")
	}
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		b, err := hex.DecodeString(v[2:])
		if err != nil {
			return nil, fmt.Errorf("const hex value: %w", err)
		}
		return b, nil
	}
	return []byte(v), nil
}

// encoding defaults to ascii, matching the most common profile usage.
func encoding(spec FieldSpec) construct.Encoding {
	if spec.Encoding == "" {
		return construct.ASCII
	}
	return construct.Encoding(strings.ToLower(spec.Encoding))
}
