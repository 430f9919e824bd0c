package semantics

import (
	"fmt"

	"github.com/SteveSapuko/mycc/pkg/syntax"
	"github.com/SteveSapuko/mycc/pkg/types"
)

func (a *analyzer) stmt(s syntax.Stmt) (Stmt, error) {
	switch s := s.(type) {
	case *syntax.VarDecl:
		return a.varDecl(s)
	case *syntax.FnDecl:
		return nil, errAt(IllegalLocalDeclr, s.Fn)
	case *syntax.StructDecl:
		return nil, errAt(IllegalLocalDeclr, s.Kw)
	case *syntax.EnumDecl:
		return nil, errAt(IllegalLocalDeclr, s.Kw)
	case *syntax.ExprStmt:
		x, err := a.expr(s.X)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: x}, nil
	case *syntax.LoopStmt:
		body, err := a.loopBody(s.Body)
		if err != nil {
			return nil, err
		}
		return &Loop{Body: body}, nil
	case *syntax.WhileStmt:
		cond, err := a.cond(s.Cond)
		if err != nil {
			return nil, err
		}
		body, err := a.loopBody(s.Body)
		if err != nil {
			return nil, err
		}
		return &While{Cond: cond, Body: body}, nil
	case *syntax.IfStmt:
		return a.ifStmt(s)
	case *syntax.BreakStmt:
		if !a.ss.IsBreakable() {
			return nil, errAt(CantBreak, s.Kw)
		}
		return &Break{}, nil
	case *syntax.ReturnStmt:
		return a.returnStmt(s)
	case *syntax.Block:
		return a.block(s)
	}
	panic(fmt.Sprintf("semantics: unexpected statement %T", s))
}

func (a *analyzer) varDecl(s *syntax.VarDecl) (Stmt, error) {
	t, err := a.resolve(s.Type)
	if err != nil {
		return nil, err
	}
	decl := &VarDecl{Name: s.Name.Text, T: t}
	if s.Init != nil {
		init, err := a.expr(s.Init)
		if err != nil {
			return nil, err
		}
		if !types.Equal(t, init.Type()) {
			return nil, wrongType(t, init.Type(), s.Init.First())
		}
		decl.Init = init
	}
	if a.ss.IsUsed(s.Name.Text) {
		return nil, errAt(UsedId, s.Name)
	}
	a.ss.DeclareVar(s.Name.Text, t)
	return decl, nil
}

func (a *analyzer) cond(e syntax.Expr) (Expr, error) {
	c, err := a.expr(e)
	if err != nil {
		return nil, err
	}
	if !types.Equal(c.Type(), types.Bool) {
		return nil, wrongType(types.Bool, c.Type(), e.First())
	}
	return c, nil
}

func (a *analyzer) loopBody(b *syntax.Block) (*Block, error) {
	defer a.ss.EnterScope()()
	a.ss.EnterBreakable()
	return a.block(b)
}

func (a *analyzer) ifStmt(s *syntax.IfStmt) (Stmt, error) {
	cond, err := a.cond(s.Cond)
	if err != nil {
		return nil, err
	}
	then, err := a.block(s.Then)
	if err != nil {
		return nil, err
	}
	typed := &If{Cond: cond, Then: then}
	if s.Else != nil {
		if typed.Else, err = a.stmt(s.Else); err != nil {
			return nil, err
		}
	}
	return typed, nil
}

func (a *analyzer) returnStmt(s *syntax.ReturnStmt) (Stmt, error) {
	want, ok := a.ss.NearestReturnType()
	if !ok {
		return nil, errAt(CantReturn, s.Kw)
	}
	if s.Value == nil {
		if want.Kind != types.Void {
			return nil, wrongType(want, types.Prim(types.Void), s.Kw)
		}
		return &Return{}, nil
	}
	v, err := a.expr(s.Value)
	if err != nil {
		return nil, err
	}
	if !types.Equal(want, v.Type()) {
		return nil, wrongType(want, v.Type(), s.Value.First())
	}
	return &Return{Value: v}, nil
}

func (a *analyzer) block(b *syntax.Block) (*Block, error) {
	defer a.ss.EnterScope()()
	typed := &Block{}
	for _, s := range b.Stmts {
		ts, err := a.stmt(s)
		if err != nil {
			return nil, err
		}
		typed.Stmts = append(typed.Stmts, ts)
	}
	return typed, nil
}
