package semantics

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"

	"github.com/SteveSapuko/mycc/pkg/syntax"
	"github.com/SteveSapuko/mycc/pkg/types"
)

func analyze(src string) (*Program, error) {
	tokens, err := syntax.Tokenize(src)
	if err != nil {
		return nil, err
	}
	stmts, err := syntax.Parse(tokens, src)
	if err != nil {
		return nil, err
	}
	return Analyze(stmts)
}

func mustAnalyze(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := analyze(src)
	be.Err(t, err, nil)
	return prog
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *semantics.Error, got %v", err)
	}
	return se.Kind
}

func TestStructLayout(t *testing.T) {
	prog := mustAnalyze(t, `
struct Inner { a: u8, b: u16 }
struct Outer { x: u32, in: Inner, arr: [Inner; 3], p: @Outer, tail: i8 }
`)
	outer, ok := prog.Types.Struct("Outer")
	be.True(t, ok)

	wantOffsets := []int{0, 4, 7, 16, 18}
	for i, f := range outer.Fields {
		be.Equal(t, f.Offset, wantOffsets[i])
	}
	be.Equal(t, prog.Types.Size(types.StructNamed("Inner")), 3)
	be.Equal(t, prog.Types.Size(types.StructNamed("Outer")), 19)
}

func TestStructForwardReference(t *testing.T) {
	prog := mustAnalyze(t, `
struct A { b: B, n: u8 }
struct B { v: u16 }
`)
	a, _ := prog.Types.Struct("A")
	be.Equal(t, a.Fields[1].Offset, 2)
}

func TestRecursiveStructs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ok   bool
	}{
		{"Direct by value", "struct A { x: A }", false},
		{"Through pointer", "struct A { p: @A }", true},
		{"Mutual by value", "struct A { b: B } struct B { a: A }", false},
		{"Mutual with pointer", "struct A { b: B } struct B { a: @A }", true},
		{"Through array", "struct A { xs: [A; 2] }", false},
		{"Through array of pointers", "struct A { xs: [@A; 2] }", true},
		{"Three step cycle", "struct A { b: B } struct B { c: C } struct C { a: A }", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyze(tt.src)
			if tt.ok {
				be.Err(t, err, nil)
				return
			}
			be.Equal(t, kindOf(t, err), RecursiveStruct)
		})
	}
}

func TestEnumDiscriminants(t *testing.T) {
	prog := mustAnalyze(t, `
enum Color { Red, Green, Blue }
let c: Color = Color::Green;
`)
	e, ok := prog.Types.Enum("Color")
	be.True(t, ok)
	for i, v := range []string{"Red", "Green", "Blue"} {
		d, ok := e.Discriminant(v)
		be.True(t, ok)
		be.Equal(t, int(d), i)
	}

	decl := prog.Stmts[1].(*VarDecl)
	ev := decl.Init.(*EnumValue)
	be.Equal(t, ev.Value, uint8(1))
	be.Equal(t, prog.Types.Size(decl.T), 1)
}

func TestScopeRestoration(t *testing.T) {
	prog := mustAnalyze(t, `
fn f() -> u16 {
	let x: u16 = 1 as u16;
	{
		let x: u8 = 2;
		x = 3;
	}
	return x;
}
`)
	fn := prog.Functions()[0]
	inner := fn.Body.Stmts[1].(*Block)
	assign := inner.Stmts[1].(*ExprStmt).X.(*Assign)
	be.Equal(t, assign.T, types.Prim(types.U8))

	ret := fn.Body.Stmts[2].(*Return)
	be.Equal(t, ret.Value.Type(), types.Prim(types.U16))
}

func TestScopeStackLeave(t *testing.T) {
	ss := NewScopeStack()
	ss.DeclareVar("x", types.Prim(types.U16))

	leave := ss.EnterScope()
	ss.EnterBreakable()
	ss.DeclareVar("x", types.Prim(types.U8))
	inner, _ := ss.LookupVar("x")
	be.Equal(t, inner, types.Prim(types.U8))
	be.True(t, ss.IsBreakable())
	leave()

	outer, ok := ss.LookupVar("x")
	be.True(t, ok)
	be.Equal(t, outer, types.Prim(types.U16))
	be.True(t, ss.IsUsed("x"))
	be.True(t, !ss.IsBreakable())
	be.Equal(t, ss.Depth(), 0)
}

func TestFunctionArguments(t *testing.T) {
	decl := "fn f(a: u8, b: u16) -> void { }\n"
	tests := []struct {
		name string
		call string
		want ErrorKind
		ok   bool
	}{
		{"Correct", "f(1, 2 as u16);", 0, true},
		{"Too few", "f(1);", ArgCount, false},
		{"Swapped", "f(1 as u16, 2);", WrongType, false},
		{"Unknown", "g();", UndeclaredFn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyze(decl + tt.call)
			if tt.ok {
				be.Err(t, err, nil)
				return
			}
			be.Equal(t, kindOf(t, err), tt.want)
		})
	}
}

func TestWrongTypeDetails(t *testing.T) {
	_, err := analyze("let a: u8 = 300;")
	var se *Error
	be.True(t, errors.As(err, &se))
	be.Equal(t, se.Kind, WrongType)
	be.Equal(t, se.Expected, types.Prim(types.U8))
	be.Equal(t, se.Actual, types.Prim(types.U16))
	be.Equal(t, se.Tok.Line, 1)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ErrorKind
	}{
		{"Used id at file scope", "let a: u8; let a: u8;", UsedId},
		{"Function name reused", "fn a() { } let a: u8;", UsedId},
		{"Unknown type", "let a: Foo;", UnknownType},
		{"Unknown field type", "struct S { f: Nope }", UnknownType},
		{"Undeclared variable", "b = 1;", UndeclaredVar},
		{"Init before declare", "let a: u8 = a;", UndeclaredVar},
		{"Field of non-struct", "let a: u8; a.x;", NotAStruct},
		{"Index non-array", "let a: u8; a[0];", NotAnArray},
		{"Index with struct", "struct S { v: u8 } let s: S; let a: [u8; 2]; a[s];", NotAnArray},
		{"Index with u32", "let a: [u8; 2]; a[70000];", NotAnArray},
		{"Enum value of struct", "struct S { v: u8 } S::A;", NotAnEnum},
		{"Enum value of unknown", "Nope::A;", UnknownType},
		{"Missing field", "struct S { v: u8 } let s: S; s.w;", NoStructField},
		{"Missing variant", "enum E { A } E::B;", NoEnumVariant},
		{"Duplicate params", "fn f(a: u8, a: u8) { }", FnDuplicateParams},
		{"Duplicate fields", "struct S { a: u8, a: u16 }", StructDuplicateFields},
		{"Duplicate variants", "enum E { A, A }", EnumDuplicateVariants},
		{"Add structs", "struct S { v: u8 } let a: S; let b: S; a + b;", NotPrimitive},
		{"Compare arrays", "let a: [u8; 2]; let b: [u8; 2]; a < b;", NotPrimitive},
		{"Cast to struct", "struct S { v: u8 } let a: u8; a as S;", NotPrimitive},
		{"Shift by variable", "let a: u8; let b: u8; a << b;", ShiftAmountErr},
		{"Shift too far", "let a: u8; a << 9;", ShiftAmountErr},
		{"Deref non-pointer", "let a: u8; *a;", CantDeref},
		{"Break outside loop", "break;", CantBreak},
		{"Break inside function outside loop", "fn f() { break; }", CantBreak},
		{"Return at top level", "return;", CantReturn},
		{"Local function", "fn f() { fn g() { } }", IllegalLocalDeclr},
		{"Local struct", "{ struct S { a: u8 } }", IllegalLocalDeclr},
		{"Assign to literal", "1 = 2;", NotAssignable},
		{"Assign to address", "let a: u8; &a = 2;", NotAssignable},
		{"Condition not u8", "let a: u16; if a { }", WrongType},
		{"Logical on u16", "let a: u16; a && 1;", WrongType},
		{"Mixed widths", "let a: u16; a + 1;", WrongType},
		{"Return type", "fn f() -> u16 { return 1; }", WrongType},
		{"Bare return in u8 function", "fn f() -> u8 { return; }", WrongType},
		{"Main with parameters", "fn main(a: u8) { }", ArgCount},
		{"Function sees no globals", "let g: u8; fn f() { g = 1; }", UndeclaredVar},
		{"Local reuses parameter", "fn f(a: u8) { let a: u8; }", UsedId},
		{"Redeclare in same block", "{ let a: u8; let a: u8; }", UsedId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyze(tt.src)
			be.Equal(t, kindOf(t, err), tt.want)
		})
	}
}

func TestAnalyzeAccepts(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"Mutual recursion", "fn a(n: u8) -> u8 { return b(n); } fn b(n: u8) -> u8 { return a(n); }"},
		{"Shadow global in block", "let a: u8; { let a: u16; }"},
		{"Shadow function in local", "fn f() { } fn g() { let f: u8; }"},
		{"Pointer index", "let a: [u16; 4]; let p: @u16 = &a[0]; p[2 as u16] = 7 as u16;"},
		{"Deref assignment", "let a: u8; let p: @u8 = &a; *p = 4;"},
		{"Compare enums", "enum E { A, B } let e: E = E::A; if e == E::B { }"},
		{"Compare structs", "struct S { v: u8 } let a: S; let b: S; a != b;"},
		{"Shift by width", "let a: u16; a >> 16;"},
		{"Signed cast", "let a: i8 = 3 as i8; let b: i32 = a as i32;"},
		{"Break in nested if", "loop { if 1 { break; } }"},
		{"Builtins", "out(in());"},
		{"Field of array element", "struct P { x: u8 } let ps: [P; 2]; ps[1].x = 4;"},
		{"Return void call", "fn g() { } fn f() { return g(); }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyze(tt.src)
			be.Err(t, err, nil)
		})
	}
}

func TestTypedTree(t *testing.T) {
	prog := mustAnalyze(t, "let a: u16 = 255 as u16 + 1 as u16; let b: u8 = a < 300;")
	be.Equal(t, prog.String(),
		"(let a u16 (+ (as 255:u8 u16) (as 1:u8 u16)):u16)\n"+
			"(let b u8 (< a:u16 300:u16):u8)\n")
}
