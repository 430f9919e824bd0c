package syntax

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func parseString(t *testing.T, src string) []Stmt {
	t.Helper()
	tokens, err := Tokenize(src)
	be.Err(t, err, nil)
	stmts, err := Parse(tokens, src)
	be.Err(t, err, nil)
	return stmts
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"VarDecl", "let x: u8 = 1 + 2;", "(let x u8 (+ 1 2))"},
		{"VarDecl without init", "let buf: [u8; 4];", "(let buf [u8; 4])"},
		{"Function", "fn f(a: u8, b: @u16) -> [u8; 4] { return a; }",
			"(fn f (a:u8 b:@u16) [u8; 4] {(return a)})"},
		{"Function defaults to void", "fn main() { }", "(fn main () void {})"},
		{"Struct", "struct S { a: u8, next: @S }", "(struct S (a:u8 next:@S))"},
		{"Enum with trailing comma", "enum C { R, G, }", "(enum C (R G))"},
		{"Assignment is right associative", "x = y = 3;", "(= x (= y 3))"},
		{"Shift binds tighter than term", "a + b == c << 2;", "(== (+ a b) (<< c 2))"},
		{"Term is left associative", "a - b + c ~| d;", "(~| (+ (- a b) c) d)"},
		{"Cast binds tighter than unary", "-x as u16;", "(- (as x u16))"},
		{"Chained casts", "x as u8 as i16;", "(as (as x u8) i16)"},
		{"Paths", "p.a[i + 1].b;", "p.a[(+ i 1)].b"},
		{"Ref and deref", "*p = &q.x;", "(= (* p) (& q.x))"},
		{"Else if chain", "if a { } else if b { } else { }", "(if a {} (if b {} {}))"},
		{"Enum value and call", "Color::Green == f(1, x);", "(== Color::Green (call f 1 x))"},
		{"Logical", "a && b || c;", "(|| (&& a b) c)"},
		{"Loops", "loop { break; } while x < 3 { x = x + 1; }",
			"(loop {(break)})(while (< x 3) {(= x (+ x 1))})"},
		{"Bare return", "fn f() { return; }", "(fn f () void {(return)})"},
		{"Nested block", "{ let a: u8; { a; } }", "{(let a u8) {a}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := parseString(t, tt.input)
			var sb strings.Builder
			for _, s := range stmts {
				sb.WriteString(s.String())
			}
			be.Equal(t, sb.String(), tt.expected)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Missing colon", "let x u8;", `expected ":"`},
		{"Missing operand", "1 +;", "expected expression"},
		{"Array too long", "let a: [u8; 70000];", "does not fit in 16 bits"},
		{"Reserved keyword", "for;", `unexpected keyword "for"`},
		{"Unterminated block", "fn f() { let a: u8;", "unterminated block"},
		{"Literal too large", "99999999999999999999999;", "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			be.Err(t, err, nil)
			_, err = Parse(tokens, tt.input)
			be.Err(t, err, tt.want)
		})
	}
}

func TestParseErrorSnippet(t *testing.T) {
	src := "let a: u8 = 1;\nlet b u8;"
	tokens, err := Tokenize(src)
	be.Err(t, err, nil)
	_, err = Parse(tokens, src)
	be.Err(t, err, "line 2:7")
	be.True(t, strings.Contains(err.Error(), "|> let b u8;"))
	be.True(t, strings.Contains(err.Error(), "|>       ^"))
}
