package codegen

import (
	"fmt"
	"math/bits"

	"github.com/SteveSapuko/mycc/pkg/semantics"
	"github.com/SteveSapuko/mycc/pkg/types"
)

// staticOffset returns the BP offset of v when the whole path is known at
// compile time: a variable followed by fields and constant array indices.
func (g *Generator) staticOffset(v semantics.Variable) (int, bool) {
	switch v := v.(type) {
	case *semantics.VarRef:
		return g.lookup(v.Name).Offset, true
	case *semantics.Field:
		off, ok := g.staticOffset(v.Head)
		return off + v.Offset, ok
	case *semantics.Index:
		if v.Head.Type().Kind != types.Array {
			return 0, false
		}
		c, ok := constant(v.Index)
		if !ok {
			return 0, false
		}
		off, ok := g.staticOffset(v.Head)
		return off + int(c)*g.size(v.T), ok
	}
	panic(fmt.Sprintf("codegen: unexpected variable %T", v))
}

// pushAddress pushes the 16-bit address of v, low byte first.
func (g *Generator) pushAddress(v semantics.Variable) loc {
	start := g.depth
	if off, ok := g.staticOffset(v); ok {
		o := uint16(off)
		g.ima(uint8(o))
		g.reg(Add, BPL)
		g.reg(Amov, R0)
		g.ima(uint8(o >> 8))
		g.reg(Adc, BPH)
		g.reg(Amov, R1)
		g.push(R0)
		g.push(R1)
		return stackLoc(start, 2)
	}

	switch v := v.(type) {
	case *semantics.Field:
		addr := g.pushAddress(v.Head)
		g.addConst(addr, v.Offset)
		return addr

	case *semantics.Index:
		var addr loc
		if v.Head.Type().Kind == types.Pointer {
			addr = g.pushExpr(&semantics.Read{Path: v.Head})
		} else {
			addr = g.pushAddress(v.Head)
		}
		elem := g.size(v.T)
		if c, ok := constant(v.Index); ok {
			g.addConst(addr, int(c)*elem)
			return addr
		}
		idx := g.pushScaledIndex(v.Index, elem)
		g.carryChain(false, addr, idx, &addr, 2, false)
		g.dropTo(start + 2)
		return addr
	}
	panic(fmt.Sprintf("codegen: no address for %T", v))
}

// addConst adds n to the 16-bit value at addr in place.
func (g *Generator) addConst(addr loc, n int) {
	if uint16(n) == 0 {
		return
	}
	g.carryChain(false, addr, immLoc(littleEndian(uint64(n), 2)), &addr, 2, false)
}

// pushScaledIndex pushes idx*elem as a u16. The product is built by shifting
// and adding since the machine has no multiply.
func (g *Generator) pushScaledIndex(idx semantics.Expr, elem int) loc {
	u16 := types.Prim(types.U16)
	start := g.depth
	var cur loc
	if types.Equal(idx.Type(), u16) {
		cur = g.pushExpr(idx)
	} else {
		cur = g.pushExpr(&semantics.Cast{X: idx, T: u16})
	}

	switch {
	case elem == 0:
		g.copyBytes(zeros(2), cur, 2)
		return cur
	case elem == 1:
		return cur
	case elem&(elem-1) == 0:
		g.shift(cur, 2, true, bits.TrailingZeros(uint(elem)), false)
		return cur
	}

	g.increaseSP(2)
	acc := stackLoc(start+2, 2)
	g.copyBytes(zeros(2), acc, 2)
	for b := elem; b != 0; b >>= 1 {
		if b&1 == 1 {
			g.carryChain(false, acc, cur, &acc, 2, false)
		}
		if b > 1 {
			g.shiftLeftOnce(cur, 2)
		}
	}
	g.copyBytes(acc, cur, 2)
	g.dropTo(start + 2)
	return cur
}

// withBase points BP at the address in addr while body runs. Only stack and
// immediate locations can be reached inside body.
func (g *Generator) withBase(addr loc, body func()) {
	g.push(BPL)
	g.push(BPH)
	g.load(addr, 1, R1, R0)
	g.load(addr, 0, R0, R0)
	g.reg(Rmov, R0)
	g.reg(Amov, BPL)
	g.reg(Rmov, R1)
	g.reg(Amov, BPH)
	body()
	g.pop(BPH)
	g.pop(BPL)
}

// loadIndirect copies size bytes from the address pushed by pushAddr into a
// new stack slot and returns that slot.
func (g *Generator) loadIndirect(size int, pushAddr func() loc) loc {
	start := g.depth
	g.increaseSP(size)
	tmp := stackLoc(start, size)
	addr := pushAddr()
	g.withBase(addr, func() {
		for k := 0; k < size; k++ {
			g.addrBasePlus(k)
			g.op(Ld)
			g.reg(Amov, R1)
			g.store(R1, tmp, k, R0)
		}
	})
	g.dropTo(start + size)
	return tmp
}

// storeIndirect writes the size bytes of v to the address pushed by pushAddr.
func (g *Generator) storeIndirect(v loc, size int, pushAddr func() loc) {
	mark := g.depth
	v = g.materialize(v)
	addr := pushAddr()
	g.withBase(addr, func() {
		for k := 0; k < size; k++ {
			g.load(v, k, R1, R0)
			g.addrBasePlus(k)
			g.reg(Rmov, R1)
			g.op(Str)
		}
	})
	g.dropTo(mark)
}
