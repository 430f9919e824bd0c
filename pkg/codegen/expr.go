package codegen

import (
	"fmt"

	"github.com/SteveSapuko/mycc/pkg/semantics"
)

// operand returns where the value of e can be read. Constants and static
// variable paths need no code; anything else is evaluated onto the stack and
// stays there until the caller drops it.
func (g *Generator) operand(e semantics.Expr) loc {
	size := g.size(e.Type())
	if c, ok := constant(e); ok {
		return immLoc(littleEndian(c, size))
	}
	switch e := e.(type) {
	case *semantics.Read:
		if off, ok := g.staticOffset(e.Path); ok {
			return baseLoc(off, size)
		}
		return g.loadIndirect(size, func() loc { return g.pushAddress(e.Path) })
	case *semantics.Deref:
		return g.loadIndirect(size, func() loc { return g.pushExpr(&semantics.Read{Path: e.Path}) })
	case *semantics.AddrOf:
		return g.pushAddress(e.Path)
	case *semantics.Call:
		return g.call(e)
	}
	return g.pushExpr(e)
}

// pushExpr evaluates e into new bytes on top of the stack.
func (g *Generator) pushExpr(e semantics.Expr) loc {
	switch e.(type) {
	case *semantics.Read, *semantics.Deref, *semantics.AddrOf, *semantics.Call:
		l := g.operand(e)
		if l.kind == locImm {
			break
		}
		return g.materialize(l)
	}
	size := g.size(e.Type())
	start := g.depth
	g.increaseSP(size)
	dst := stackLoc(start, size)
	g.expr(e, dst)
	return dst
}

// expr writes the value of e to dst. The stack is back at its starting
// depth afterwards.
func (g *Generator) expr(e semantics.Expr, dst loc) {
	size := g.size(e.Type())
	if c, ok := constant(e); ok {
		g.copyBytes(immLoc(littleEndian(c, size)), dst, size)
		return
	}

	mark := g.depth
	switch e := e.(type) {
	case *semantics.Read, *semantics.Deref, *semantics.AddrOf, *semantics.Call:
		g.copyBytes(g.operand(e), dst, size)

	case *semantics.Assign:
		g.assign(e, &dst)

	case *semantics.Logical:
		g.logical(e, dst)

	case *semantics.Binary:
		l := g.operand(e.Left)
		r := g.operand(e.Right)
		n := g.size(e.Left.Type())
		switch {
		case e.Op == semantics.OpEq || e.Op == semantics.OpNe:
			g.equal(l, r, dst, n, e.Op == semantics.OpNe)
		case e.Op.IsComparison():
			g.compare(e.Op, l, r, dst, n, e.Left.Type().IsSigned())
		default:
			g.arith(e.Op, l, r, dst, n)
		}

	case *semantics.Shift:
		g.expr(e.X, dst)
		g.shift(dst, size, e.Left, int(e.Amount), e.T.IsSigned())

	case *semantics.Unary:
		n := g.size(e.X.Type())
		x := g.operand(e.X)
		if e.Op == semantics.OpNot {
			g.equal(x, zeros(n), dst, n, false)
		} else {
			g.arith(semantics.OpSub, zeros(n), x, dst, n)
		}

	case *semantics.Cast:
		x := g.operand(e.X)
		g.cast(x, dst, g.size(e.X.Type()), size, e.X.Type().IsSigned())

	default:
		panic(fmt.Sprintf("codegen: unexpected expression %T", e))
	}
	g.dropTo(mark)
}

// logical evaluates && and || into the one-byte dst, skipping the right
// side when the left one decides.
func (g *Generator) logical(e *semantics.Logical, dst loc) {
	end := g.newLabel()
	g.expr(e.Left, dst)
	g.load(dst, 0, R1, R1)
	g.imr(R0, 0)
	g.reg(Rmov, R1)
	g.reg(Add, R0)
	if e.And {
		g.jump(Bze, end)
	} else {
		g.jump(Bnz, end)
	}
	g.expr(e.Right, dst)
	g.label(end)
}

// assign stores the value into the target and, when dst is given, into dst
// as the value of the whole expression.
func (g *Generator) assign(e *semantics.Assign, dst *loc) {
	mark := g.depth
	size := g.size(e.T)
	v := g.operand(e.Value)

	switch t := e.Target.(type) {
	case *semantics.Read:
		if off, ok := g.staticOffset(t.Path); ok {
			g.copyBytes(v, baseLoc(off, size), size)
		} else {
			g.storeIndirect(v, size, func() loc { return g.pushAddress(t.Path) })
		}
	case *semantics.Deref:
		g.storeIndirect(v, size, func() loc { return g.pushExpr(&semantics.Read{Path: t.Path}) })
	default:
		panic(fmt.Sprintf("codegen: cannot assign to %T", t))
	}

	if dst != nil {
		g.copyBytes(v, *dst, size)
	}
	g.dropTo(mark)
}
