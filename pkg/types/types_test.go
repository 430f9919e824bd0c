package types

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"

	"github.com/SteveSapuko/mycc/pkg/syntax"
)

func named(name string) *syntax.NamedType {
	return &syntax.NamedType{Name: syntax.Token{Kind: syntax.Ident, Text: name, Line: 1, Col: 1}}
}

func newTestTable() *Table {
	tab := NewTable()
	tab.AddEnum(&EnumTemplate{Name: "Color", Variants: []string{"Red", "Green"}})
	tab.AddStruct(&StructTemplate{Name: "P", Fields: []Field{
		{Name: "x", Type: Prim(U8), Offset: 0},
		{Name: "y", Type: Prim(U16), Offset: 1},
	}})
	tab.AddStruct(&StructTemplate{Name: "Q", Fields: []Field{
		{Name: "p", Type: StructNamed("P"), Offset: 0},
		{Name: "ps", Type: ArrayOf(StructNamed("P"), 2), Offset: 3},
		{Name: "next", Type: PointerTo(StructNamed("Q")), Offset: 9},
	}})
	return tab
}

func TestSize(t *testing.T) {
	tab := newTestTable()
	color, _ := tab.Enum("Color")
	tests := []struct {
		ty   Type
		want int
	}{
		{Prim(Void), 0},
		{Prim(U8), 1},
		{Prim(I16), 2},
		{Prim(U32), 4},
		{Prim(I64), 8},
		{PointerTo(Prim(U64)), 2},
		{EnumOf(color), 1},
		{ArrayOf(Prim(U16), 10), 20},
		{StructNamed("P"), 3},
		{StructNamed("Q"), 11},
		{ArrayOf(StructNamed("Q"), 3), 33},
	}
	for _, tt := range tests {
		if got := tab.Size(tt.ty); got != tt.want {
			t.Errorf("Size(%s) = %d, want %d", tt.ty, got, tt.want)
		}
	}
}

func TestSizeUndeclaredStructPanics(t *testing.T) {
	defer func() {
		be.True(t, recover() != nil)
	}()
	NewTable().Size(StructNamed("Missing"))
}

func TestEqual(t *testing.T) {
	a := &EnumTemplate{Name: "E", Variants: []string{"A", "B"}}
	b := &EnumTemplate{Name: "E", Variants: []string{"A", "C"}}
	tests := []struct {
		name string
		x, y Type
		want bool
	}{
		{"same primitive", Prim(U8), Prim(U8), true},
		{"signedness", Prim(U8), Prim(I8), false},
		{"pointer elem", PointerTo(Prim(U8)), PointerTo(Prim(U8)), true},
		{"pointer elem differs", PointerTo(Prim(U8)), PointerTo(Prim(U16)), false},
		{"array len", ArrayOf(Prim(U8), 2), ArrayOf(Prim(U8), 3), false},
		{"struct name", StructNamed("P"), StructNamed("P"), true},
		{"struct vs enum", StructNamed("E"), EnumOf(a), false},
		{"enum variants", EnumOf(a), EnumOf(b), false},
		{"enum same template", EnumOf(a), EnumOf(a), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, Equal(tt.x, tt.y), tt.want)
		})
	}
}

func TestPredicates(t *testing.T) {
	e := &EnumTemplate{Name: "E"}
	be.True(t, Prim(U8).IsPrimitive())
	be.True(t, PointerTo(Prim(U8)).IsPrimitive())
	be.True(t, !EnumOf(e).IsPrimitive())
	be.True(t, !ArrayOf(Prim(U8), 1).IsPrimitive())
	be.True(t, !Prim(Void).IsPrimitive())

	be.True(t, Prim(I32).IsInteger())
	be.True(t, !PointerTo(Prim(U8)).IsInteger())
	be.True(t, Prim(I8).IsSigned())
	be.True(t, !Prim(U64).IsSigned())

	be.Equal(t, Prim(U16).Bits(), 16)
	be.Equal(t, Prim(I64).Bits(), 64)
	be.Equal(t, PointerTo(Prim(U8)).Bits(), 16)
}

func TestString(t *testing.T) {
	tab := newTestTable()
	be.Equal(t, ArrayOf(PointerTo(StructNamed("P")), 4).String(), "[@P; 4]")
	be.Equal(t, Prim(I16).String(), "i16")
	be.Equal(t, tab.String(),
		"enum Color { Red, Green }\n"+
			"struct P { x: u8 @0, y: u16 @1 } size=3\n"+
			"struct Q { p: P @0, ps: [P; 2] @3, next: @Q @9 } size=11\n")

	fn := &FnTemplate{Name: "f", Params: []Type{Prim(U8), PointerTo(Prim(U16))}, Ret: Prim(Void)}
	be.Equal(t, fn.String(), "fn f(u8, @u16) -> void")
}

func TestDiscriminant(t *testing.T) {
	e := &EnumTemplate{Name: "E", Variants: []string{"A", "B", "C"}}
	d, ok := e.Discriminant("C")
	be.True(t, ok)
	be.Equal(t, d, uint8(2))
	_, ok = e.Discriminant("D")
	be.True(t, !ok)
}

func TestResolve(t *testing.T) {
	tab := newTestTable()

	ty, err := tab.Resolve(&syntax.ArrayType{Elem: &syntax.PointerType{Elem: named("P")}, Len: 3})
	be.Err(t, err, nil)
	be.True(t, Equal(ty, ArrayOf(PointerTo(StructNamed("P")), 3)))

	ty, err = tab.Resolve(named("Color"))
	be.Err(t, err, nil)
	be.Equal(t, ty.Kind, Enum)

	_, err = tab.Resolve(&syntax.PointerType{Elem: named("Nope")})
	var unresolved *UnresolvedError
	be.True(t, errors.As(err, &unresolved))
	be.Equal(t, unresolved.Name.Text, "Nope")

	ty, err = tab.ResolveTentative(named("Later"), map[string]bool{"Later": true})
	be.Err(t, err, nil)
	be.True(t, Equal(ty, StructNamed("Later")))

	be.True(t, IsPrimitiveName("u32"))
	be.True(t, !IsPrimitiveName("P"))
}

func TestCustomsKeepDeclarationOrder(t *testing.T) {
	tab := newTestTable()
	var names []string
	for _, c := range tab.Customs() {
		names = append(names, c.CustomName())
	}
	be.Equal(t, names, []string{"Color", "P", "Q"})

	c, ok := tab.Lookup("Color")
	be.True(t, ok)
	_, isEnum := c.(*EnumTemplate)
	be.True(t, isEnum)
	_, ok = tab.Lookup("Missing")
	be.True(t, !ok)
}
