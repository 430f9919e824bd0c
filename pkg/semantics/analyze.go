// Package semantics checks a parsed program and produces the typed tree that
// code generation consumes.
package semantics

import (
	"errors"

	"github.com/SteveSapuko/mycc/pkg/syntax"
	"github.com/SteveSapuko/mycc/pkg/types"
)

type analyzer struct {
	ss *ScopeStack

	// Declarations are built before the top level is walked; the walk looks
	// them up to keep source order in the output.
	decls map[syntax.Stmt]Stmt
}

// Analyze type-checks a whole compilation unit. Custom types are defined
// first, then function signatures, then function bodies, and the remaining
// top-level statements last. The first error aborts the analysis.
func Analyze(stmts []syntax.Stmt) (*Program, error) {
	a := &analyzer{
		ss:    NewScopeStack(),
		decls: make(map[syntax.Stmt]Stmt),
	}

	if err := a.defineEnums(stmts); err != nil {
		return nil, err
	}
	if err := a.defineStructs(stmts); err != nil {
		return nil, err
	}
	fns, err := a.defineFnSignatures(stmts)
	if err != nil {
		return nil, err
	}
	for _, fn := range fns {
		if err := a.defineFnBody(fn); err != nil {
			return nil, err
		}
	}

	prog := &Program{Types: a.ss.Types()}
	for _, s := range stmts {
		if typed, ok := a.decls[s]; ok {
			prog.Stmts = append(prog.Stmts, typed)
			continue
		}
		typed, err := a.stmt(s)
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, typed)
	}
	return prog, nil
}

// resolve turns a type declaration into a type, reporting unknown names.
func (a *analyzer) resolve(d syntax.TypeDecl) (types.Type, error) {
	t, err := a.ss.Types().Resolve(d)
	return t, unknownType(err)
}

func unknownType(err error) error {
	var ue *types.UnresolvedError
	if errors.As(err, &ue) {
		return errAt(UnknownType, ue.Name)
	}
	return err
}

func (a *analyzer) defineEnums(stmts []syntax.Stmt) error {
	for _, s := range stmts {
		d, ok := s.(*syntax.EnumDecl)
		if !ok {
			continue
		}
		if a.ss.IsUsed(d.Name.Text) {
			return errAt(UsedId, d.Name)
		}
		tmpl := &types.EnumTemplate{Name: d.Name.Text}
		seen := make(map[string]bool)
		for _, v := range d.Variants {
			if seen[v.Text] {
				return errAt(EnumDuplicateVariants, v)
			}
			seen[v.Text] = true
			tmpl.Variants = append(tmpl.Variants, v.Text)
		}
		a.ss.DeclareType(tmpl)
		a.decls[s] = &TypeDecl{Custom: tmpl}
	}
	return nil
}

type fnDef struct {
	decl  *syntax.FnDecl
	typed *FnDecl
}

func (a *analyzer) defineFnSignatures(stmts []syntax.Stmt) ([]fnDef, error) {
	var fns []fnDef
	for _, s := range stmts {
		d, ok := s.(*syntax.FnDecl)
		if !ok {
			continue
		}
		if a.ss.IsUsed(d.Name.Text) {
			return nil, errAt(UsedId, d.Name)
		}
		tmpl := &types.FnTemplate{Name: d.Name.Text}
		typed := &FnDecl{Fn: tmpl}
		seen := make(map[string]bool)
		for _, p := range d.Params {
			if seen[p.Name.Text] {
				return nil, errAt(FnDuplicateParams, p.Name)
			}
			seen[p.Name.Text] = true
			pt, err := a.resolve(p.Type)
			if err != nil {
				return nil, err
			}
			tmpl.Params = append(tmpl.Params, pt)
			typed.ParamNames = append(typed.ParamNames, p.Name.Text)
		}
		ret, err := a.resolve(d.Ret)
		if err != nil {
			return nil, err
		}
		tmpl.Ret = ret
		if d.Name.Text == "main" && len(d.Params) > 0 {
			return nil, &Error{Kind: ArgCount, Tok: d.Name, Want: 0, Got: len(d.Params)}
		}

		a.ss.DeclareFn(tmpl)
		a.decls[s] = typed
		fns = append(fns, fnDef{decl: d, typed: typed})
	}
	return fns, nil
}

func (a *analyzer) defineFnBody(fn fnDef) error {
	defer a.ss.EnterScope()()
	a.ss.EnterReturnable(fn.typed.Fn.Ret)
	for i, name := range fn.typed.ParamNames {
		a.ss.DeclareVar(name, fn.typed.Fn.Params[i])
	}

	// The body shares the parameters' scope, so a local cannot reuse a
	// parameter name.
	body := &Block{}
	for _, s := range fn.decl.Body.Stmts {
		typed, err := a.stmt(s)
		if err != nil {
			return err
		}
		body.Stmts = append(body.Stmts, typed)
	}
	fn.typed.Body = body
	return nil
}
