package types

import (
	"fmt"
	"strings"

	"github.com/SteveSapuko/mycc/pkg/syntax"
)

// Table is the flat global table of declared structs and enums.
type Table struct {
	structs map[string]*StructTemplate
	enums   map[string]*EnumTemplate
	order   []Custom
}

func NewTable() *Table {
	return &Table{
		structs: make(map[string]*StructTemplate),
		enums:   make(map[string]*EnumTemplate),
	}
}

func (t *Table) AddStruct(s *StructTemplate) {
	if _, ok := t.structs[s.Name]; !ok {
		t.order = append(t.order, s)
	}
	t.structs[s.Name] = s
}

func (t *Table) AddEnum(e *EnumTemplate) {
	if _, ok := t.enums[e.Name]; !ok {
		t.order = append(t.order, e)
	}
	t.enums[e.Name] = e
}

func (t *Table) Lookup(name string) (Custom, bool) {
	if s, ok := t.structs[name]; ok {
		return s, true
	}
	if e, ok := t.enums[name]; ok {
		return e, true
	}
	return nil, false
}

func (t *Table) Struct(name string) (*StructTemplate, bool) {
	s, ok := t.structs[name]
	return s, ok
}

func (t *Table) Enum(name string) (*EnumTemplate, bool) {
	e, ok := t.enums[name]
	return e, ok
}

// Customs returns every declared type in declaration order.
func (t *Table) Customs() []Custom {
	return t.order
}

// Size returns the byte size of ty. Struct sizes rely on the templates having
// passed the recursion check before they were added.
func (t *Table) Size(ty Type) int {
	switch ty.Kind {
	case Void:
		return 0
	case Pointer:
		return 2
	case Enum:
		return 1
	case Array:
		return t.Size(*ty.Elem) * int(ty.Len)
	case Struct:
		s, ok := t.structs[ty.Name]
		if !ok {
			panic(fmt.Sprintf("types: size of undeclared struct %q", ty.Name))
		}
		size := 0
		for _, f := range s.Fields {
			size += t.Size(f.Type)
		}
		return size
	}
	return primitiveWidths[ty.Kind]
}

// UnresolvedError names the identifier a type declaration could not resolve.
type UnresolvedError struct {
	Name syntax.Token
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("line %d:%d: unknown type %q", e.Name.Line, e.Name.Col, e.Name.Text)
}

// Resolve converts a type declaration against the declared types.
func (t *Table) Resolve(d syntax.TypeDecl) (Type, error) {
	return t.resolve(d, nil)
}

// ResolveTentative is Resolve with the names in pending treated as structs
// that are being defined in the same batch.
func (t *Table) ResolveTentative(d syntax.TypeDecl, pending map[string]bool) (Type, error) {
	return t.resolve(d, pending)
}

func (t *Table) resolve(d syntax.TypeDecl, pending map[string]bool) (Type, error) {
	switch d := d.(type) {
	case *syntax.NamedType:
		if k, ok := primitiveNames[d.Name.Text]; ok {
			return Prim(k), nil
		}
		if pending[d.Name.Text] {
			return StructNamed(d.Name.Text), nil
		}
		if s, ok := t.structs[d.Name.Text]; ok {
			return StructNamed(s.Name), nil
		}
		if e, ok := t.enums[d.Name.Text]; ok {
			return EnumOf(e), nil
		}
		return Type{}, &UnresolvedError{Name: d.Name}
	case *syntax.PointerType:
		elem, err := t.resolve(d.Elem, pending)
		if err != nil {
			return Type{}, err
		}
		return PointerTo(elem), nil
	case *syntax.ArrayType:
		elem, err := t.resolve(d.Elem, pending)
		if err != nil {
			return Type{}, err
		}
		return ArrayOf(elem, d.Len), nil
	}
	panic(fmt.Sprintf("types: unexpected type declaration %T", d))
}

// IsPrimitiveName reports whether name is one of the primitive keywords.
func IsPrimitiveName(name string) bool {
	_, ok := primitiveNames[name]
	return ok
}

func (t *Table) String() string {
	var sb strings.Builder
	for _, c := range t.order {
		switch c := c.(type) {
		case *StructTemplate:
			fmt.Fprintf(&sb, "%s size=%d\n", c, t.Size(StructNamed(c.Name)))
		case *EnumTemplate:
			fmt.Fprintf(&sb, "enum %s { %s }\n", c.Name, strings.Join(c.Variants, ", "))
		}
	}
	return sb.String()
}
