package semantics

import (
	"fmt"
	"strings"

	"github.com/SteveSapuko/mycc/pkg/types"
)

type opKind uint8

const (
	opEnterScope opKind = iota
	opEnterBreakable
	opEnterReturnable
	opDeclareVar
)

// scopeOp is one entry of the scope log. saved is the used-identifier set
// captured by an enter-scope marker.
type scopeOp struct {
	kind  opKind
	name  string
	typ   types.Type
	saved map[string]bool
}

// ScopeStack tracks variable scopes as an append-only log of operations;
// lookups scan it backward so the most recent declaration wins. Functions
// and custom types live in a flat global table next to the log.
type ScopeStack struct {
	ops  []scopeOp
	used map[string]bool

	types   *types.Table
	fns     map[string]*types.FnTemplate
	fnOrder []string
}

// Builtins are pre-declared intrinsic functions.
var Builtins = []*types.FnTemplate{
	{Name: "out", Params: []types.Type{types.Prim(types.U8)}, Ret: types.Prim(types.Void), Builtin: true},
	{Name: "in", Ret: types.Prim(types.U8), Builtin: true},
}

func NewScopeStack() *ScopeStack {
	s := &ScopeStack{
		used:  make(map[string]bool),
		types: types.NewTable(),
		fns:   make(map[string]*types.FnTemplate),
	}
	for _, b := range Builtins {
		s.DeclareFn(b)
	}
	return s
}

// Types exposes the global struct/enum table.
func (s *ScopeStack) Types() *types.Table {
	return s.types
}

// IsUsed reports whether name is already declared in the current scope.
func (s *ScopeStack) IsUsed(name string) bool {
	return s.used[name]
}

// EnterScope opens a scope and returns the function that closes it.
//
//	defer ss.EnterScope()()
func (s *ScopeStack) EnterScope() (leave func()) {
	saved := s.used
	s.ops = append(s.ops, scopeOp{kind: opEnterScope, saved: saved})
	s.used = make(map[string]bool)
	depth := len(s.ops) - 1
	return func() { s.leaveScope(depth) }
}

// leaveScope pops every operation down to and including the marker at
// index depth and restores the identifier set it captured.
func (s *ScopeStack) leaveScope(depth int) {
	if depth >= len(s.ops) || s.ops[depth].kind != opEnterScope {
		panic(fmt.Sprintf("semantics: unbalanced scope exit at depth %d", depth))
	}
	s.used = s.ops[depth].saved
	s.ops = s.ops[:depth]
}

func (s *ScopeStack) EnterBreakable() {
	s.ops = append(s.ops, scopeOp{kind: opEnterBreakable})
}

func (s *ScopeStack) EnterReturnable(ret types.Type) {
	s.ops = append(s.ops, scopeOp{kind: opEnterReturnable, typ: ret})
}

func (s *ScopeStack) IsBreakable() bool {
	for i := len(s.ops) - 1; i >= 0; i-- {
		switch s.ops[i].kind {
		case opEnterBreakable:
			return true
		case opEnterReturnable:
			return false
		}
	}
	return false
}

func (s *ScopeStack) NearestReturnType() (types.Type, bool) {
	for i := len(s.ops) - 1; i >= 0; i-- {
		if s.ops[i].kind == opEnterReturnable {
			return s.ops[i].typ, true
		}
	}
	return types.Type{}, false
}

func (s *ScopeStack) DeclareVar(name string, t types.Type) {
	s.used[name] = true
	s.ops = append(s.ops, scopeOp{kind: opDeclareVar, name: name, typ: t})
}

func (s *ScopeStack) LookupVar(name string) (types.Type, bool) {
	for i := len(s.ops) - 1; i >= 0; i-- {
		if op := s.ops[i]; op.kind == opDeclareVar && op.name == name {
			return op.typ, true
		}
	}
	return types.Type{}, false
}

func (s *ScopeStack) DeclareFn(f *types.FnTemplate) {
	s.used[f.Name] = true
	if _, ok := s.fns[f.Name]; !ok {
		s.fnOrder = append(s.fnOrder, f.Name)
	}
	s.fns[f.Name] = f
}

func (s *ScopeStack) LookupFn(name string) (*types.FnTemplate, bool) {
	f, ok := s.fns[name]
	return f, ok
}

// DeclareType registers a finished struct or enum template.
func (s *ScopeStack) DeclareType(c types.Custom) {
	s.used[c.CustomName()] = true
	switch c := c.(type) {
	case *types.StructTemplate:
		s.types.AddStruct(c)
	case *types.EnumTemplate:
		s.types.AddEnum(c)
	}
}

func (s *ScopeStack) LookupType(name string) (types.Custom, bool) {
	return s.types.Lookup(name)
}

// Depth is the number of open scopes.
func (s *ScopeStack) Depth() int {
	n := 0
	for _, op := range s.ops {
		if op.kind == opEnterScope {
			n++
		}
	}
	return n
}

// String dumps the log, one operation per line.
func (s *ScopeStack) String() string {
	var sb strings.Builder
	for _, op := range s.ops {
		switch op.kind {
		case opEnterScope:
			sb.WriteString("scope\n")
		case opEnterBreakable:
			sb.WriteString("breakable\n")
		case opEnterReturnable:
			fmt.Fprintf(&sb, "returnable %s\n", op.typ)
		case opDeclareVar:
			fmt.Fprintf(&sb, "var %s: %s\n", op.name, op.typ)
		}
	}
	return sb.String()
}
