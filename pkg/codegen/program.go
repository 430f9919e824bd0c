package codegen

import (
	"fmt"

	"github.com/SteveSapuko/mycc/pkg/semantics"
	"github.com/SteveSapuko/mycc/pkg/types"
)

// maxSites is how many call sites one function can return to; the site id
// pushed by the caller is a single byte.
const maxSites = 256

// LimitError reports a valid program that does not fit the machine.
type LimitError struct {
	Fn  string
	Msg string
}

func (e *LimitError) Error() string {
	if e.Fn == "" {
		return "codegen: entry: " + e.Msg
	}
	return fmt.Sprintf("codegen: function %s: %s", e.Fn, e.Msg)
}

// Generator holds the state of one code generation run.
type Generator struct {
	out       []Instruction
	types     *types.Table
	syms      *SymbolTable
	depth     int // SP - BP in bytes
	loops     []loopLabels
	sites     map[string][]string
	nextLabel int
	fnName    string // "" in the entry frame
	err       error
}

func fnLabel(name string) string  { return "fn_" + name }
func retLabel(name string) string { return "ret_" + name }

func (g *Generator) size(t types.Type) int { return g.types.Size(t) }

func (g *Generator) lookup(name string) Symbol {
	sym, ok := g.syms.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("codegen: variable %q has no slot", name))
	}
	return sym
}

// Generate lowers prog to an instruction list. The entry code runs the
// top-level statements with BP = SP = 0, then calls main when there is one
// and halts. Function bodies follow, then their epilogues.
func Generate(prog *semantics.Program) ([]Instruction, error) {
	g := &Generator{
		types: prog.Types,
		sites: make(map[string][]string),
		syms:  NewSymbolTable(),
	}

	g.comment("entry")
	for _, r := range []Reg{SPL, SPH, BPL, BPH} {
		g.imr(r, 0)
	}
	var main *semantics.FnDecl
	for _, s := range prog.Stmts {
		if fn, ok := s.(*semantics.FnDecl); ok && fn.Fn.Name == "main" {
			main = fn
		}
		g.stmt(s)
	}
	if main != nil {
		g.comment("call main")
		g.imr(SPL, 0)
		g.imr(SPH, 0)
		g.depth = 0
		g.call(&semantics.Call{Fn: main.Fn})
	}
	g.op(Hlt)

	fns := prog.Functions()
	for _, fn := range fns {
		g.function(fn)
	}
	for _, fn := range fns {
		g.epilogue(fn.Fn.Name)
	}

	if g.err != nil {
		return nil, g.err
	}
	return g.out, nil
}

// function emits a body. Parameters sit at BP+0 upward in declaration order.
func (g *Generator) function(fn *semantics.FnDecl) {
	g.fnName = fn.Fn.Name
	g.syms = NewSymbolTable()
	g.depth = 0
	for i, name := range fn.ParamNames {
		t := fn.Fn.Params[i]
		g.syms.Allocate(name, t, g.size(t))
	}
	g.depth = g.syms.Next()

	g.comment("%s", fn.Fn)
	g.label(fnLabel(fn.Fn.Name))
	for _, s := range fn.Body.Stmts {
		g.stmt(s)
	}
	g.jump(Jmp, retLabel(fn.Fn.Name))
	g.fnName = ""
}

// epilogue restores the caller's frame and jumps back to the call site whose
// id the caller pushed.
func (g *Generator) epilogue(name string) {
	g.label(retLabel(name))
	g.reg(Rmov, BPL)
	g.reg(Amov, SPL)
	g.reg(Rmov, BPH)
	g.reg(Amov, SPH)
	g.reg(Pop, BPH)
	g.reg(Pop, BPL)
	g.reg(Pop, R0)
	for i, site := range g.sites[name] {
		g.imr(R1, uint8(i))
		g.reg(Rmov, R0)
		g.reg(Sub, R1)
		g.jump(Bze, site)
	}
	g.op(Hlt)
}

// callSite registers a new return point for callee and returns its label
// and id.
func (g *Generator) callSite(callee string) (string, uint8) {
	id := len(g.sites[callee])
	if id >= maxSites && g.err == nil {
		g.err = &LimitError{Fn: callee, Msg: fmt.Sprintf("more than %d call sites", maxSites)}
	}
	label := fmt.Sprintf("site_%s_%d", callee, id)
	g.sites[callee] = append(g.sites[callee], label)
	return label, uint8(id)
}

// call emits a call and returns the slot holding the result, which is left
// on top of the stack.
func (g *Generator) call(e *semantics.Call) loc {
	start := g.depth
	if e.Fn.Builtin {
		return g.builtin(e)
	}

	retSize := g.size(e.Fn.Ret)
	g.increaseSP(retSize)
	site, id := g.callSite(e.Fn.Name)
	g.imr(R0, id)
	g.push(R0)
	g.push(BPL)
	g.push(BPH)

	argsStart := g.depth
	for _, a := range e.Args {
		g.pushExpr(a)
	}
	n := uint16(g.depth - argsStart)
	g.reg(Rmov, SPL)
	g.imr(R0, uint8(n))
	g.reg(Sub, R0)
	g.reg(Amov, BPL)
	g.reg(Rmov, SPH)
	g.imr(R0, uint8(n>>8))
	g.reg(Sbc, R0)
	g.reg(Amov, BPH)
	g.jump(Jmp, fnLabel(e.Fn.Name))
	g.label(site)

	g.depth = start + retSize
	return stackLoc(start, retSize)
}

func (g *Generator) builtin(e *semantics.Call) loc {
	start := g.depth
	switch e.Fn.Name {
	case "out":
		v := g.operand(e.Args[0])
		g.load(v, 0, R1, R0)
		g.reg(Rmov, R1)
		g.op(Out)
		g.dropTo(start)
		return stackLoc(start, 0)
	case "in":
		g.op(In)
		g.reg(Amov, R1)
		g.push(R1)
		return stackLoc(start, 1)
	}
	panic("codegen: unknown builtin " + e.Fn.Name)
}
