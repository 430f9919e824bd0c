package compiler

import "github.com/SteveSapuko/mycc/pkg/semantics"

// Prune returns a copy of prog without the functions that neither main nor
// the top-level statements can reach.
func Prune(prog *semantics.Program) *semantics.Program {
	funcs := make(map[string]*semantics.FnDecl)
	for _, fn := range prog.Functions() {
		funcs[fn.Fn.Name] = fn
	}

	reachable := make(map[string]bool)
	var worklist []string
	addReachable := func(name string) {
		if !reachable[name] {
			reachable[name] = true
			worklist = append(worklist, name)
		}
	}

	if _, ok := funcs["main"]; ok {
		addReachable("main")
	}
	for _, s := range prog.Stmts {
		if _, ok := s.(*semantics.FnDecl); ok {
			continue
		}
		calls := make(map[string]bool)
		findCallsStmt(s, calls)
		for call := range calls {
			addReachable(call)
		}
	}

	for len(worklist) > 0 {
		curr := worklist[0]
		worklist = worklist[1:]

		fn, exists := funcs[curr]
		if !exists {
			// builtin
			continue
		}
		calls := make(map[string]bool)
		findCallsStmt(fn.Body, calls)
		for call := range calls {
			addReachable(call)
		}
	}

	out := &semantics.Program{Types: prog.Types}
	for _, s := range prog.Stmts {
		if fn, ok := s.(*semantics.FnDecl); ok && !reachable[fn.Fn.Name] {
			continue
		}
		out.Stmts = append(out.Stmts, s)
	}
	return out
}

func findCallsStmt(s semantics.Stmt, calls map[string]bool) {
	switch n := s.(type) {
	case *semantics.VarDecl:
		findCallsExpr(n.Init, calls)
	case *semantics.ExprStmt:
		findCallsExpr(n.X, calls)
	case *semantics.Block:
		for _, st := range n.Stmts {
			findCallsStmt(st, calls)
		}
	case *semantics.Loop:
		findCallsStmt(n.Body, calls)
	case *semantics.While:
		findCallsExpr(n.Cond, calls)
		findCallsStmt(n.Body, calls)
	case *semantics.If:
		findCallsExpr(n.Cond, calls)
		findCallsStmt(n.Then, calls)
		if n.Else != nil {
			findCallsStmt(n.Else, calls)
		}
	case *semantics.Return:
		findCallsExpr(n.Value, calls)
	}
}

func findCallsExpr(e semantics.Expr, calls map[string]bool) {
	switch n := e.(type) {
	case nil:
	case *semantics.Call:
		calls[n.Fn.Name] = true
		for _, a := range n.Args {
			findCallsExpr(a, calls)
		}
	case *semantics.Assign:
		findCallsExpr(n.Target, calls)
		findCallsExpr(n.Value, calls)
	case *semantics.Logical:
		findCallsExpr(n.Left, calls)
		findCallsExpr(n.Right, calls)
	case *semantics.Binary:
		findCallsExpr(n.Left, calls)
		findCallsExpr(n.Right, calls)
	case *semantics.Shift:
		findCallsExpr(n.X, calls)
	case *semantics.Unary:
		findCallsExpr(n.X, calls)
	case *semantics.Cast:
		findCallsExpr(n.X, calls)
	case *semantics.Read:
		findCallsVar(n.Path, calls)
	case *semantics.AddrOf:
		findCallsVar(n.Path, calls)
	case *semantics.Deref:
		findCallsVar(n.Path, calls)
	}
}

// findCallsVar looks inside index expressions of a path.
func findCallsVar(v semantics.Variable, calls map[string]bool) {
	switch n := v.(type) {
	case *semantics.Field:
		findCallsVar(n.Head, calls)
	case *semantics.Index:
		findCallsVar(n.Head, calls)
		findCallsExpr(n.Index, calls)
	}
}
