package syntax

import (
	"fmt"
	"strings"
)

//  Type declarations

// TypeDecl is a type as written in source, before resolution.
type TypeDecl interface {
	typeNode()
	First() Token
	String() string
}

// NamedType is a primitive keyword or a struct/enum name.
type NamedType struct {
	Name Token
}

// PointerType is @T.
type PointerType struct {
	At   Token
	Elem TypeDecl
}

// ArrayType is [T; n].
type ArrayType struct {
	Open Token
	Elem TypeDecl
	Len  uint16
}

func (*NamedType) typeNode()   {}
func (*PointerType) typeNode() {}
func (*ArrayType) typeNode()   {}

func (t *NamedType) First() Token   { return t.Name }
func (t *PointerType) First() Token { return t.At }
func (t *ArrayType) First() Token   { return t.Open }

func (t *NamedType) String() string   { return t.Name.Text }
func (t *PointerType) String() string { return "@" + t.Elem.String() }
func (t *ArrayType) String() string   { return fmt.Sprintf("[%s; %d]", t.Elem, t.Len) }

//  Variable paths

// Variable is an addressable path: a name followed by field and index steps.
//
//	a.b[i].c
//	^ ^ ^  ^
//	| | |  FieldAccess{Head: IndexAccess{...}, Field: c}
//	| | IndexAccess{Head: FieldAccess{...}, Index: i}
//	| FieldAccess{Head: VarName{a}, Field: b}
//	VarName{a}
type Variable interface {
	varNode()
	First() Token
	String() string
}

type VarName struct {
	Name Token
}

type FieldAccess struct {
	Head  Variable
	Field Token
}

type IndexAccess struct {
	Head  Variable
	Open  Token
	Index Expr
}

func (*VarName) varNode()     {}
func (*FieldAccess) varNode() {}
func (*IndexAccess) varNode() {}

func (v *VarName) First() Token     { return v.Name }
func (v *FieldAccess) First() Token { return v.Head.First() }
func (v *IndexAccess) First() Token { return v.Head.First() }

func (v *VarName) String() string     { return v.Name.Text }
func (v *FieldAccess) String() string { return fmt.Sprintf("%s.%s", v.Head, v.Field.Text) }
func (v *IndexAccess) String() string { return fmt.Sprintf("%s[%s]", v.Head, v.Index) }

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	First() Token
	String() string
}

// Assign is Target = Value. Target is checked for assignability later.
type Assign struct {
	Target Expr
	Op     Token
	Value  Expr
}

// LogicalExpr is && or ||. It is separate from BinaryExpr because the right
// side is evaluated only when needed.
type LogicalExpr struct {
	Op    Token
	Left  Expr
	Right Expr
}

// BinaryExpr covers equality, comparison and the arithmetic/bitwise term tier.
//
//	x + 1
//	^ ^ ^
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Op    Token
	Left  Expr
	Right Expr
}

// ShiftExpr is Left << Amount or Left >> Amount.
type ShiftExpr struct {
	Op     Token
	Left   Expr
	Amount Expr
}

// UnaryExpr is -X or !X.
type UnaryExpr struct {
	Op Token
	X  Expr
}

// CastExpr is X as To.
type CastExpr struct {
	X  Expr
	As Token
	To TypeDecl
}

type CallExpr struct {
	Name Token
	Args []Expr
}

type GroupExpr struct {
	Open Token
	X    Expr
}

// Literal is a decimal integer constant.
type Literal struct {
	Tok   Token
	Value uint64
}

// EnumValue is Enum::Variant.
type EnumValue struct {
	Enum    Token
	Variant Token
}

// RefExpr is &Path or *Path.
type RefExpr struct {
	Op   Token
	Path Variable
}

// PathExpr reads a variable path.
type PathExpr struct {
	Path Variable
}

func (*Assign) exprNode()      {}
func (*LogicalExpr) exprNode() {}
func (*BinaryExpr) exprNode()  {}
func (*ShiftExpr) exprNode()   {}
func (*UnaryExpr) exprNode()   {}
func (*CastExpr) exprNode()    {}
func (*CallExpr) exprNode()    {}
func (*GroupExpr) exprNode()   {}
func (*Literal) exprNode()     {}
func (*EnumValue) exprNode()   {}
func (*RefExpr) exprNode()     {}
func (*PathExpr) exprNode()    {}

func (e *Assign) First() Token      { return e.Target.First() }
func (e *LogicalExpr) First() Token { return e.Left.First() }
func (e *BinaryExpr) First() Token  { return e.Left.First() }
func (e *ShiftExpr) First() Token   { return e.Left.First() }
func (e *UnaryExpr) First() Token   { return e.Op }
func (e *CastExpr) First() Token    { return e.X.First() }
func (e *CallExpr) First() Token    { return e.Name }
func (e *GroupExpr) First() Token   { return e.Open }
func (e *Literal) First() Token     { return e.Tok }
func (e *EnumValue) First() Token   { return e.Enum }
func (e *RefExpr) First() Token     { return e.Op }
func (e *PathExpr) First() Token    { return e.Path.First() }

func (e *Assign) String() string { return fmt.Sprintf("(= %s %s)", e.Target, e.Value) }
func (e *LogicalExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op.Text, e.Left, e.Right)
}
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op.Text, e.Left, e.Right)
}
func (e *ShiftExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op.Text, e.Left, e.Amount)
}
func (e *UnaryExpr) String() string { return fmt.Sprintf("(%s %s)", e.Op.Text, e.X) }
func (e *CastExpr) String() string  { return fmt.Sprintf("(as %s %s)", e.X, e.To) }
func (e *CallExpr) String() string {
	parts := []string{e.Name.Text}
	for _, a := range e.Args {
		parts = append(parts, a.String())
	}
	return "(call " + strings.Join(parts, " ") + ")"
}
func (e *GroupExpr) String() string { return e.X.String() }
func (e *Literal) String() string   { return fmt.Sprintf("%d", e.Value) }
func (e *EnumValue) String() string { return e.Enum.Text + "::" + e.Variant.Text }
func (e *RefExpr) String() string   { return fmt.Sprintf("(%s %s)", e.Op.Text, e.Path) }
func (e *PathExpr) String() string  { return e.Path.String() }

//  Statement nodes

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
	First() Token
	String() string
}

// Param is a name: type pair, used for function parameters and struct fields.
type Param struct {
	Name Token
	Type TypeDecl
}

// VarDecl is let Name: Type (= Init)?;
type VarDecl struct {
	Let  Token
	Name Token
	Type TypeDecl
	Init Expr // nil when absent
}

type FnDecl struct {
	Fn     Token
	Name   Token
	Params []Param
	Ret    TypeDecl
	Body   *Block
}

type StructDecl struct {
	Kw     Token
	Name   Token
	Fields []Param
}

type EnumDecl struct {
	Kw       Token
	Name     Token
	Variants []Token
}

type ExprStmt struct {
	X Expr
}

type LoopStmt struct {
	Kw   Token
	Body *Block
}

type WhileStmt struct {
	Kw   Token
	Cond Expr
	Body *Block
}

// IfStmt's Else is nil, a *Block or another *IfStmt.
type IfStmt struct {
	Kw   Token
	Cond Expr
	Then *Block
	Else Stmt
}

type BreakStmt struct {
	Kw Token
}

type ReturnStmt struct {
	Kw    Token
	Value Expr // nil for a bare return
}

type Block struct {
	Open  Token
	Stmts []Stmt
}

func (*VarDecl) stmtNode()    {}
func (*FnDecl) stmtNode()     {}
func (*StructDecl) stmtNode() {}
func (*EnumDecl) stmtNode()   {}
func (*ExprStmt) stmtNode()   {}
func (*LoopStmt) stmtNode()   {}
func (*WhileStmt) stmtNode()  {}
func (*IfStmt) stmtNode()     {}
func (*BreakStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}
func (*Block) stmtNode()      {}

func (s *VarDecl) First() Token    { return s.Let }
func (s *FnDecl) First() Token     { return s.Fn }
func (s *StructDecl) First() Token { return s.Kw }
func (s *EnumDecl) First() Token   { return s.Kw }
func (s *ExprStmt) First() Token   { return s.X.First() }
func (s *LoopStmt) First() Token   { return s.Kw }
func (s *WhileStmt) First() Token  { return s.Kw }
func (s *IfStmt) First() Token     { return s.Kw }
func (s *BreakStmt) First() Token  { return s.Kw }
func (s *ReturnStmt) First() Token { return s.Kw }
func (s *Block) First() Token      { return s.Open }

func (s *VarDecl) String() string {
	if s.Init == nil {
		return fmt.Sprintf("(let %s %s)", s.Name.Text, s.Type)
	}
	return fmt.Sprintf("(let %s %s %s)", s.Name.Text, s.Type, s.Init)
}

func (s *FnDecl) String() string {
	return fmt.Sprintf("(fn %s (%s) %s %s)", s.Name.Text, paramsString(s.Params), s.Ret, s.Body)
}

func (s *StructDecl) String() string {
	return fmt.Sprintf("(struct %s (%s))", s.Name.Text, paramsString(s.Fields))
}

func (s *EnumDecl) String() string {
	names := make([]string, len(s.Variants))
	for i, v := range s.Variants {
		names[i] = v.Text
	}
	return fmt.Sprintf("(enum %s (%s))", s.Name.Text, strings.Join(names, " "))
}

func (s *ExprStmt) String() string  { return s.X.String() }
func (s *LoopStmt) String() string  { return fmt.Sprintf("(loop %s)", s.Body) }
func (s *WhileStmt) String() string { return fmt.Sprintf("(while %s %s)", s.Cond, s.Body) }
func (s *IfStmt) String() string {
	if s.Else == nil {
		return fmt.Sprintf("(if %s %s)", s.Cond, s.Then)
	}
	return fmt.Sprintf("(if %s %s %s)", s.Cond, s.Then, s.Else)
}
func (s *BreakStmt) String() string { return "(break)" }
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "(return)"
	}
	return fmt.Sprintf("(return %s)", s.Value)
}
func (s *Block) String() string {
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func paramsString(ps []Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.Name.Text + ":" + p.Type.String()
	}
	return strings.Join(parts, " ")
}
