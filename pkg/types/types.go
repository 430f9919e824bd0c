// Package types holds the semantic value types of the language, the struct
// and enum templates, and the table that resolves and sizes them.
package types

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	Void Kind = iota
	U8
	I8
	U16
	I16
	U32
	I32
	U64
	I64
	Pointer
	Array
	Struct
	Enum
)

var kindNames = [...]string{
	Void:    "void",
	U8:      "u8",
	I8:      "i8",
	U16:     "u16",
	I16:     "i16",
	U32:     "u32",
	I32:     "i32",
	U64:     "u64",
	I64:     "i64",
	Pointer: "pointer",
	Array:   "array",
	Struct:  "struct",
	Enum:    "enum",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// primitiveWidths maps the integer kinds to their byte width.
var primitiveWidths = map[Kind]int{
	U8: 1, I8: 1,
	U16: 2, I16: 2,
	U32: 4, I32: 4,
	U64: 8, I64: 8,
}

// primitiveNames is the keyword table used by the resolver.
var primitiveNames = map[string]Kind{
	"void": Void,
	"u8":   U8, "i8": I8,
	"u16": U16, "i16": I16,
	"u32": U32, "i32": I32,
	"u64": U64, "i64": I64,
}

// Type is a resolved value type. Elem is set for pointers and arrays, Len for
// arrays, Name for structs and enums, Enum for enums.
type Type struct {
	Kind Kind
	Elem *Type
	Len  uint16
	Name string
	Enum *EnumTemplate
}

// Bool is the one-byte type produced by comparisons and tested by conditions.
var Bool = Type{Kind: U8}

func Prim(k Kind) Type { return Type{Kind: k} }

func PointerTo(t Type) Type { return Type{Kind: Pointer, Elem: &t} }

func ArrayOf(t Type, n uint16) Type { return Type{Kind: Array, Elem: &t, Len: n} }

func StructNamed(name string) Type { return Type{Kind: Struct, Name: name} }

func EnumOf(e *EnumTemplate) Type { return Type{Kind: Enum, Name: e.Name, Enum: e} }

// IsPrimitive reports whether t can take part in arithmetic, comparison,
// shifts and casts. Pointers count as primitive.
func (t Type) IsPrimitive() bool {
	switch t.Kind {
	case Void, Array, Struct, Enum:
		return false
	}
	return true
}

func (t Type) IsInteger() bool {
	_, ok := primitiveWidths[t.Kind]
	return ok
}

func (t Type) IsSigned() bool {
	switch t.Kind {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// Bits is the width in bits of a primitive type.
func (t Type) Bits() int {
	if t.Kind == Pointer {
		return 16
	}
	return primitiveWidths[t.Kind] * 8
}

// Equal is structural equality.
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Pointer:
		return Equal(*a.Elem, *b.Elem)
	case Array:
		return a.Len == b.Len && Equal(*a.Elem, *b.Elem)
	case Struct:
		return a.Name == b.Name
	case Enum:
		return a.Name == b.Name && a.Enum.sameVariants(b.Enum)
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case Pointer:
		return "@" + t.Elem.String()
	case Array:
		return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
	case Struct, Enum:
		return t.Name
	}
	return t.Kind.String()
}

// EnumTemplate lists variants in declaration order; a variant's discriminant
// is its index.
type EnumTemplate struct {
	Name     string
	Variants []string
}

func (e *EnumTemplate) CustomName() string { return e.Name }

func (e *EnumTemplate) Discriminant(variant string) (uint8, bool) {
	for i, v := range e.Variants {
		if v == variant {
			return uint8(i), true
		}
	}
	return 0, false
}

func (e *EnumTemplate) sameVariants(o *EnumTemplate) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil || len(e.Variants) != len(o.Variants) {
		return false
	}
	for i := range e.Variants {
		if e.Variants[i] != o.Variants[i] {
			return false
		}
	}
	return true
}

type Field struct {
	Name   string
	Type   Type
	Offset int
}

// StructTemplate is a struct's final layout. Field offsets are fixed when the
// template is built and never change.
type StructTemplate struct {
	Name   string
	Fields []Field
}

func (s *StructTemplate) CustomName() string { return s.Name }

func (s *StructTemplate) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *StructTemplate) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct %s {", s.Name)
	for i, f := range s.Fields {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, " %s: %s @%d", f.Name, f.Type, f.Offset)
	}
	sb.WriteString(" }")
	return sb.String()
}

// Custom is a user-declared type: a *StructTemplate or an *EnumTemplate.
type Custom interface {
	CustomName() string
}

// FnTemplate is a function signature.
type FnTemplate struct {
	Name    string
	Params  []Type
	Ret     Type
	Builtin bool
}

func (f *FnTemplate) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn %s(%s) -> %s", f.Name, strings.Join(parts, ", "), f.Ret)
}
