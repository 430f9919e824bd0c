package semantics

import (
	"fmt"
	"strings"

	"github.com/SteveSapuko/mycc/pkg/types"
)

// Program is the typed result of analysing one compilation unit. Stmts keeps
// the source order of the top level, declarations included.
type Program struct {
	Types *types.Table
	Stmts []Stmt
}

// Functions returns the function declarations in source order.
func (p *Program) Functions() []*FnDecl {
	var fns []*FnDecl
	for _, s := range p.Stmts {
		if f, ok := s.(*FnDecl); ok {
			fns = append(fns, f)
		}
	}
	return fns
}

//  Operators

type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpAnd
	OpOr
	OpNor
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
)

var binOpText = [...]string{
	OpAdd: "+", OpSub: "-", OpAnd: "&", OpOr: "|", OpNor: "~|",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
}

func (o BinOp) String() string { return binOpText[o] }

// IsComparison reports whether the operator yields a boolean.
func (o BinOp) IsComparison() bool { return o >= OpEq }

var binOps = map[string]BinOp{
	"+": OpAdd, "-": OpSub, "&": OpAnd, "|": OpOr, "~|": OpNor,
	"==": OpEq, "!=": OpNe, "<": OpLt, ">": OpGt, "<=": OpLe, ">=": OpGe,
}

type UnOp uint8

const (
	OpNeg UnOp = iota
	OpNot
)

func (o UnOp) String() string {
	if o == OpNeg {
		return "-"
	}
	return "!"
}

//  Variable paths

// Variable is a typed addressable path.
type Variable interface {
	varNode()
	Type() types.Type
	String() string
}

type VarRef struct {
	Name string
	T    types.Type
}

// Field selects a struct field at a fixed byte offset from the head.
type Field struct {
	Head   Variable
	Name   string
	Offset int
	T      types.Type
}

// Index selects an element of an array head or of the memory a pointer head
// points at.
type Index struct {
	Head  Variable
	Index Expr
	T     types.Type
}

func (*VarRef) varNode() {}
func (*Field) varNode()  {}
func (*Index) varNode()  {}

func (v *VarRef) Type() types.Type { return v.T }
func (v *Field) Type() types.Type  { return v.T }
func (v *Index) Type() types.Type  { return v.T }

func (v *VarRef) String() string { return v.Name }
func (v *Field) String() string  { return fmt.Sprintf("%s.%s", v.Head, v.Name) }
func (v *Index) String() string  { return fmt.Sprintf("%s[%s]", v.Head, v.Index) }

//  Expressions

// Expr is a typed expression.
type Expr interface {
	exprNode()
	Type() types.Type
	String() string
}

// Assign stores Value into Target, which is a *Read or a *Deref.
type Assign struct {
	Target Expr
	Value  Expr
	T      types.Type
}

// Logical is a short-circuit && (And true) or ||.
type Logical struct {
	And         bool
	Left, Right Expr
}

type Binary struct {
	Op          BinOp
	Left, Right Expr
	T           types.Type
}

type Shift struct {
	Left   bool
	X      Expr
	Amount uint8
	T      types.Type
}

type Unary struct {
	Op UnOp
	X  Expr
	T  types.Type
}

type Cast struct {
	X Expr
	T types.Type
}

type Call struct {
	Fn   *types.FnTemplate
	Args []Expr
}

type Literal struct {
	Value uint64
	T     types.Type
}

type EnumValue struct {
	Variant string
	Value   uint8
	T       types.Type
}

// AddrOf is &Path.
type AddrOf struct {
	Path Variable
	T    types.Type
}

// Deref is *Path.
type Deref struct {
	Path Variable
	T    types.Type
}

// Read loads the value stored at Path.
type Read struct {
	Path Variable
}

func (*Assign) exprNode()    {}
func (*Logical) exprNode()   {}
func (*Binary) exprNode()    {}
func (*Shift) exprNode()     {}
func (*Unary) exprNode()     {}
func (*Cast) exprNode()      {}
func (*Call) exprNode()      {}
func (*Literal) exprNode()   {}
func (*EnumValue) exprNode() {}
func (*AddrOf) exprNode()    {}
func (*Deref) exprNode()     {}
func (*Read) exprNode()      {}

func (e *Assign) Type() types.Type    { return e.T }
func (e *Logical) Type() types.Type   { return types.Bool }
func (e *Binary) Type() types.Type    { return e.T }
func (e *Shift) Type() types.Type     { return e.T }
func (e *Unary) Type() types.Type     { return e.T }
func (e *Cast) Type() types.Type      { return e.T }
func (e *Call) Type() types.Type      { return e.Fn.Ret }
func (e *Literal) Type() types.Type   { return e.T }
func (e *EnumValue) Type() types.Type { return e.T }
func (e *AddrOf) Type() types.Type    { return e.T }
func (e *Deref) Type() types.Type     { return e.T }
func (e *Read) Type() types.Type      { return e.Path.Type() }

func (e *Assign) String() string { return fmt.Sprintf("(= %s %s)", e.Target, e.Value) }
func (e *Logical) String() string {
	op := "||"
	if e.And {
		op = "&&"
	}
	return fmt.Sprintf("(%s %s %s)", op, e.Left, e.Right)
}
func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s):%s", e.Op, e.Left, e.Right, e.T)
}
func (e *Shift) String() string {
	op := ">>"
	if e.Left {
		op = "<<"
	}
	return fmt.Sprintf("(%s %s %d):%s", op, e.X, e.Amount, e.T)
}
func (e *Unary) String() string { return fmt.Sprintf("(%s %s):%s", e.Op, e.X, e.T) }
func (e *Cast) String() string  { return fmt.Sprintf("(as %s %s)", e.X, e.T) }
func (e *Call) String() string {
	parts := []string{e.Fn.Name}
	for _, a := range e.Args {
		parts = append(parts, a.String())
	}
	return "(call " + strings.Join(parts, " ") + ")"
}
func (e *Literal) String() string   { return fmt.Sprintf("%d:%s", e.Value, e.T) }
func (e *EnumValue) String() string { return fmt.Sprintf("%s::%s", e.T, e.Variant) }
func (e *AddrOf) String() string    { return fmt.Sprintf("(& %s)", e.Path) }
func (e *Deref) String() string     { return fmt.Sprintf("(* %s)", e.Path) }
func (e *Read) String() string      { return fmt.Sprintf("%s:%s", e.Path, e.Path.Type()) }

//  Statements

type Stmt interface {
	stmtNode()
	String() string
}

type VarDecl struct {
	Name string
	T    types.Type
	Init Expr // nil when absent
}

type FnDecl struct {
	Fn         *types.FnTemplate
	ParamNames []string
	Body       *Block
}

// TypeDecl marks where a struct or enum was declared. It generates no code.
type TypeDecl struct {
	Custom types.Custom
}

type ExprStmt struct {
	X Expr
}

type Loop struct {
	Body *Block
}

type While struct {
	Cond Expr
	Body *Block
}

// If's Else is nil, a *Block or an *If.
type If struct {
	Cond Expr
	Then *Block
	Else Stmt
}

type Break struct{}

// Return's Value is nil in a void function.
type Return struct {
	Value Expr
}

type Block struct {
	Stmts []Stmt
}

func (*VarDecl) stmtNode()  {}
func (*FnDecl) stmtNode()   {}
func (*TypeDecl) stmtNode() {}
func (*ExprStmt) stmtNode() {}
func (*Loop) stmtNode()     {}
func (*While) stmtNode()    {}
func (*If) stmtNode()       {}
func (*Break) stmtNode()    {}
func (*Return) stmtNode()   {}
func (*Block) stmtNode()    {}

func (s *VarDecl) String() string {
	if s.Init == nil {
		return fmt.Sprintf("(let %s %s)", s.Name, s.T)
	}
	return fmt.Sprintf("(let %s %s %s)", s.Name, s.T, s.Init)
}
func (s *FnDecl) String() string {
	return fmt.Sprintf("(%s %s)", s.Fn, s.Body)
}
func (s *TypeDecl) String() string  { return fmt.Sprintf("(type %s)", s.Custom.CustomName()) }
func (s *ExprStmt) String() string  { return s.X.String() }
func (s *Loop) String() string      { return fmt.Sprintf("(loop %s)", s.Body) }
func (s *While) String() string     { return fmt.Sprintf("(while %s %s)", s.Cond, s.Body) }
func (s *Break) String() string     { return "(break)" }
func (s *Return) String() string {
	if s.Value == nil {
		return "(return)"
	}
	return fmt.Sprintf("(return %s)", s.Value)
}
func (s *If) String() string {
	if s.Else == nil {
		return fmt.Sprintf("(if %s %s)", s.Cond, s.Then)
	}
	return fmt.Sprintf("(if %s %s %s)", s.Cond, s.Then, s.Else)
}
func (s *Block) String() string {
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Stmts {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
