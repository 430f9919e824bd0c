package codegen

import (
	"fmt"

	"github.com/SteveSapuko/mycc/pkg/semantics"
)

type loopLabels struct {
	end   string
	depth int
}

func (g *Generator) stmt(s semantics.Stmt) {
	switch s := s.(type) {
	case *semantics.VarDecl:
		g.varDecl(s)

	case *semantics.ExprStmt:
		if a, ok := s.X.(*semantics.Assign); ok {
			g.assign(a, nil)
			return
		}
		mark := g.depth
		g.pushExpr(s.X)
		g.dropTo(mark)

	case *semantics.Block:
		g.block(s)

	case *semantics.Loop:
		start, end := g.newLabel(), g.newLabel()
		g.label(start)
		g.loopBody(s.Body, end)
		g.jump(Jmp, start)
		g.label(end)

	case *semantics.While:
		start, end := g.newLabel(), g.newLabel()
		g.label(start)
		g.test(s.Cond, end)
		g.loopBody(s.Body, end)
		g.jump(Jmp, start)
		g.label(end)

	case *semantics.If:
		elseLabel := g.newLabel()
		g.test(s.Cond, elseLabel)
		g.block(s.Then)
		if s.Else == nil {
			g.label(elseLabel)
			return
		}
		end := g.newLabel()
		g.jump(Jmp, end)
		g.label(elseLabel)
		g.stmt(s.Else)
		g.label(end)

	case *semantics.Break:
		if len(g.loops) == 0 {
			panic("codegen: break outside of a loop")
		}
		l := g.loops[len(g.loops)-1]
		g.decreaseSP(g.depth - l.depth)
		g.jump(Jmp, l.end)

	case *semantics.Return:
		if s.Value != nil {
			size := g.size(s.Value.Type())
			mark := g.depth
			v := g.operand(s.Value)
			g.copyBytes(v, baseLoc(-(size+3), size), size)
			// The epilogue resets SP, so the temporaries are not popped here.
			g.depth = mark
		}
		g.jump(Jmp, retLabel(g.fnName))

	case *semantics.FnDecl, *semantics.TypeDecl:
		// Emitted by Generate.

	default:
		panic(fmt.Sprintf("codegen: unexpected statement %T", s))
	}
}

func (g *Generator) varDecl(s *semantics.VarDecl) {
	size := g.size(s.T)
	off := g.syms.Next()
	if off < g.depth {
		panic(fmt.Sprintf("codegen: slot %d for %s is below depth %d", off, s.Name, g.depth))
	}
	g.comment("let %s: %s @%d", s.Name, s.T, off)
	g.increaseSP(off - g.depth + size)
	if s.Init != nil {
		g.expr(s.Init, baseLoc(off, size))
	}
	// Declared after the initializer so that it still sees a shadowed name.
	g.syms.Allocate(s.Name, s.T, size)
}

// test jumps to target when the boolean cond is zero.
func (g *Generator) test(cond semantics.Expr, target string) {
	mark := g.depth
	c := g.operand(cond)
	g.load(c, 0, R1, R1)
	g.dropTo(mark)
	g.imr(R0, 0)
	g.reg(Rmov, R1)
	g.reg(Add, R0)
	g.jump(Bze, target)
}

func (g *Generator) loopBody(b *semantics.Block, end string) {
	g.loops = append(g.loops, loopLabels{end: end, depth: g.depth})
	g.block(b)
	g.loops = g.loops[:len(g.loops)-1]
}

// block runs b's statements and pops whatever they allocated.
func (g *Generator) block(b *semantics.Block) {
	depth := g.depth
	mark := g.syms.Mark()
	for _, s := range b.Stmts {
		g.stmt(s)
	}
	g.dropTo(depth)
	g.syms.Release(mark)
}
