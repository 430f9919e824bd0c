package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by Tokenize and builds an
// untyped syntax tree.
//
// Grammar:
//
//	program    = item* EOF
//	item       = varDecl | structDecl | enumDecl | fnDecl | stmt
//	varDecl    = "let" IDENT ":" type ("=" expr)? ";"
//	structDecl = "struct" IDENT "{" fields? "}"
//	enumDecl   = "enum" IDENT "{" IDENT ("," IDENT)* ","? "}"
//	fnDecl     = "fn" IDENT "(" fields? ")" ("->" type)? block
//	fields     = IDENT ":" type ("," IDENT ":" type)* ","?
//	type       = "@" type | "[" type ";" INT "]" | IDENT
//	stmt       = block | "loop" block | "while" expr block
//	           | "if" expr block ("else" (block | if))?
//	           | "break" ";" | "return" expr? ";" | expr ";"
//	block      = "{" item* "}"
//	expr       = assign
//	assign     = logic ("=" assign)?
//	logic      = equality (("&&" | "||") equality)*
//	equality   = comparison (("==" | "!=") comparison)*
//	comparison = term (("<" | ">" | "<=" | ">=") term)*
//	term       = shift (("+" | "-" | "&" | "|" | "~|") shift)*
//	shift      = unary (("<<" | ">>") primary)*
//	unary      = ("-" | "!") unary | cast
//	cast       = call ("as" type)*
//	call       = IDENT "(" (expr ("," expr)*)? ")" | primary
//	primary    = "(" expr ")" | INT | IDENT "::" IDENT | ("&" | "*") path | path
//	path       = IDENT ("." IDENT | "[" expr "]")*
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// Parse builds the statement list for a whole source file.
func Parse(tokens []Token, rawSource string) ([]Stmt, error) {
	p := NewParser(tokens, rawSource)
	var stmts []Stmt
	for p.peek().Kind != EOF {
		s, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// fmtError wraps an error message with the source line where the token
// appears and a caret under its column.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1

	if lineIdx < 0 || lineIdx >= len(p.sourceLines) {
		return fmt.Errorf("line %d:%d: %s", tok.Line, tok.Col, msg)
	}
	line := strings.TrimRight(p.sourceLines[lineIdx], "\r")
	caret := strings.Repeat(" ", max(tok.Col-1, 0)) + "^"
	return fmt.Errorf("line %d:%d: %s\n  |> %s\n  |> %s", tok.Line, tok.Col, msg, line, caret)
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		if len(p.tokens) > 0 {
			last := p.tokens[len(p.tokens)-1]
			return Token{Kind: EOF, Line: last.Line, Col: last.Col}
		}
		return Token{Kind: EOF, Line: 1, Col: 1}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// check reports whether the current token is an operator, punctuation or
// keyword with the given text.
func (p *Parser) check(text string) bool {
	tok := p.peek()
	return (tok.Kind == Op || tok.Kind == Punct || tok.Kind == Keyword) && tok.Text == text
}

// match consumes the current token if check(text) holds.
func (p *Parser) match(text string) (Token, bool) {
	if p.check(text) {
		return p.advance(), true
	}
	return Token{}, false
}

func (p *Parser) expect(text string) (Token, error) {
	if tok, ok := p.match(text); ok {
		return tok, nil
	}
	tok := p.peek()
	return tok, p.fmtError(tok, "expected %q, got %s", text, describe(tok))
}

func (p *Parser) expectIdent() (Token, error) {
	tok := p.advance()
	if tok.Kind != Ident {
		return tok, p.fmtError(tok, "expected identifier, got %s", describe(tok))
	}
	return tok, nil
}

func describe(tok Token) string {
	if tok.Kind == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Text)
}

//  Declarations

func (p *Parser) parseItem() (Stmt, error) {
	tok := p.peek()
	if tok.Kind == Keyword {
		switch tok.Text {
		case "let":
			return p.parseVarDecl()
		case "fn":
			return p.parseFnDecl()
		case "struct":
			return p.parseStructDecl()
		case "enum":
			return p.parseEnumDecl()
		}
	}
	return p.parseStatement()
}

func (p *Parser) parseVarDecl() (Stmt, error) {
	let := p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	decl := &VarDecl{Let: let, Name: name, Type: typ}
	if _, ok := p.match("="); ok {
		decl.Init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseFnDecl() (Stmt, error) {
	fn := p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	params, err := p.parseFields(")")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	var ret TypeDecl = &NamedType{Name: Token{Kind: Ident, Text: "void", Line: name.Line, Col: name.Col}}
	if _, ok := p.match("->"); ok {
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FnDecl{Fn: fn, Name: name, Params: params, Ret: ret, Body: body}, nil
}

func (p *Parser) parseStructDecl() (Stmt, error) {
	kw := p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	fields, err := p.parseFields("}")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return &StructDecl{Kw: kw, Name: name, Fields: fields}, nil
}

func (p *Parser) parseEnumDecl() (Stmt, error) {
	kw := p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	decl := &EnumDecl{Kw: kw, Name: name}
	for {
		v, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		decl.Variants = append(decl.Variants, v)
		if _, ok := p.match(","); !ok || p.check("}") {
			break
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseFields reads name: type pairs up to (not including) the closing token.
func (p *Parser) parseFields(closing string) ([]Param, error) {
	var params []Param
	for !p.check(closing) {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: name, Type: typ})
		if _, ok := p.match(","); !ok {
			break
		}
	}
	return params, nil
}

func (p *Parser) parseType() (TypeDecl, error) {
	if at, ok := p.match("@"); ok {
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &PointerType{At: at, Elem: elem}, nil
	}
	if open, ok := p.match("["); ok {
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
		lenTok := p.advance()
		if lenTok.Kind != Int {
			return nil, p.fmtError(lenTok, "expected array length, got %s", describe(lenTok))
		}
		n, err := strconv.ParseUint(lenTok.Text, 10, 16)
		if err != nil {
			return nil, p.fmtError(lenTok, "array length %s does not fit in 16 bits", lenTok.Text)
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		return &ArrayType{Open: open, Elem: elem, Len: uint16(n)}, nil
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, p.fmtError(name, "expected type, got %s", describe(name))
	}
	return &NamedType{Name: name}, nil
}

//  Statements

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	if tok.Kind == Punct && tok.Text == "{" {
		return p.parseBlock()
	}
	if tok.Kind == Keyword {
		switch tok.Text {
		case "loop":
			p.advance()
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return &LoopStmt{Kw: tok, Body: body}, nil
		case "while":
			p.advance()
			cond, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return &WhileStmt{Kw: tok, Cond: cond, Body: body}, nil
		case "if":
			return p.parseIf()
		case "break":
			p.advance()
			if _, err := p.expect(";"); err != nil {
				return nil, err
			}
			return &BreakStmt{Kw: tok}, nil
		case "return":
			p.advance()
			ret := &ReturnStmt{Kw: tok}
			if !p.check(";") {
				v, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				ret.Value = v
			}
			if _, err := p.expect(";"); err != nil {
				return nil, err
			}
			return ret, nil
		case "for", "continue", "else", "as":
			return nil, p.fmtError(tok, "unexpected keyword %q", tok.Text)
		}
	}

	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return &ExprStmt{X: x}, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	kw := p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	s := &IfStmt{Kw: kw, Cond: cond, Then: then}
	if _, ok := p.match("else"); ok {
		if p.check("if") {
			s.Else, err = p.parseIf()
		} else {
			s.Else, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *Parser) parseBlock() (*Block, error) {
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	b := &Block{Open: open}
	for !p.check("}") {
		if p.peek().Kind == EOF {
			return nil, p.fmtError(open, "unterminated block")
		}
		s, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	p.advance()
	return b, nil
}

//  Expressions

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssign()
}

func (p *Parser) parseAssign() (Expr, error) {
	target, err := p.parseLogic()
	if err != nil {
		return nil, err
	}
	if op, ok := p.match("="); ok {
		value, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		return &Assign{Target: target, Op: op, Value: value}, nil
	}
	return target, nil
}

func (p *Parser) parseLogic() (Expr, error) {
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.check("&&") || p.check("||") {
		op := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseBinaryTier parses a left-associative chain of next separated by ops.
func (p *Parser) parseBinaryTier(next func() (Expr, error), ops ...string) (Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.peek().Kind == Op && p.peek().Text == op {
				matched = true
				break
			}
		}
		if !matched {
			return expr, nil
		}
		op := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

func (p *Parser) parseEquality() (Expr, error) {
	return p.parseBinaryTier(p.parseComparison, "==", "!=")
}

func (p *Parser) parseComparison() (Expr, error) {
	return p.parseBinaryTier(p.parseTerm, "<", ">", "<=", ">=")
}

func (p *Parser) parseTerm() (Expr, error) {
	return p.parseBinaryTier(p.parseShift, "+", "-", "&", "|", "~|")
}

func (p *Parser) parseShift() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check("<<") || p.check(">>") {
		op := p.advance()
		amount, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		expr = &ShiftExpr{Op: op, Left: expr, Amount: amount}
	}
	return expr, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.check("-") || p.check("!") {
		op := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, X: x}, nil
	}
	return p.parseCast()
}

func (p *Parser) parseCast() (Expr, error) {
	expr, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	for {
		as, ok := p.match("as")
		if !ok {
			return expr, nil
		}
		to, err := p.parseType()
		if err != nil {
			return nil, err
		}
		expr = &CastExpr{X: expr, As: as, To: to}
	}
}

func (p *Parser) parseCall() (Expr, error) {
	if p.peek().Kind != Ident || !p.peekAt(1).Is(Punct, "(") {
		return p.parsePrimary()
	}
	name := p.advance()
	p.advance()
	call := &CallExpr{Name: name}
	for !p.check(")") {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if _, ok := p.match(","); !ok {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch {
	case tok.Is(Punct, "("):
		p.advance()
		x, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return &GroupExpr{Open: tok, X: x}, nil

	case tok.Kind == Int:
		p.advance()
		v, err := strconv.ParseUint(tok.Text, 10, 64)
		if err != nil {
			return nil, p.fmtError(tok, "integer literal %s out of range", tok.Text)
		}
		return &Literal{Tok: tok, Value: v}, nil

	case tok.Is(Op, "&"), tok.Is(Op, "*"):
		p.advance()
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		return &RefExpr{Op: tok, Path: path}, nil

	case tok.Kind == Ident && p.peekAt(1).Is(Op, "::"):
		p.advance()
		p.advance()
		variant, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &EnumValue{Enum: tok, Variant: variant}, nil

	case tok.Kind == Ident:
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		return &PathExpr{Path: path}, nil
	}
	return nil, p.fmtError(tok, "expected expression, got %s", describe(tok))
}

func (p *Parser) parsePath() (Variable, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var v Variable = &VarName{Name: name}
	for {
		if _, ok := p.match("."); ok {
			field, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			v = &FieldAccess{Head: v, Field: field}
			continue
		}
		if open, ok := p.match("["); ok {
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			v = &IndexAccess{Head: v, Open: open, Index: idx}
			continue
		}
		return v, nil
	}
}
