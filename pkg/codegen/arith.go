package codegen

import "github.com/SteveSapuko/mycc/pkg/semantics"

// carryChain adds (or subtracts) r from l one byte at a time, low byte
// first. The carry between bytes is parked on the stack because every
// address computation clobbers C. With bias set the top bytes are offset by
// 0x80 first, which turns an unsigned borrow into a signed comparison. With a
// nil dst, R1 holds the final carry or borrow on return.
func (g *Generator) carryChain(sub bool, l, r loc, dst *loc, n int, bias bool) {
	alu := Add
	if sub {
		alu = Sub
	}
	for k := 0; k < n; k++ {
		g.load(l, k, R0, R1)
		g.load(r, k, R1, R1)
		if bias && k == n-1 {
			g.ima(0x80)
			g.reg(Add, R0)
			g.reg(Amov, R0)
			g.ima(0x80)
			g.reg(Add, R1)
			g.reg(Amov, R1)
		}

		g.reg(Rmov, R0)
		g.reg(alu, R1)
		g.reg(Amov, R0)
		g.imr(R1, 0)
		g.op(Acz)
		g.reg(Adc, R1)
		g.reg(Amov, R1)

		if k > 0 {
			g.reg(Rmov, R0)
			g.pop(R0)
			g.reg(alu, R0)
			g.reg(Amov, R0)
			g.op(Acz)
			g.reg(Adc, R1)
			g.reg(Amov, R1)
		}
		if k < n-1 {
			g.push(R1)
		}
		if dst != nil {
			g.store(R0, *dst, k, R1)
		}
	}
}

// orR0R1 leaves R0|R1 in R0. Clobbers R1.
func (g *Generator) orR0R1() {
	g.reg(Rmov, R0)
	g.reg(Nor, R1)
	g.reg(Amov, R0)
	g.imr(R1, 0)
	g.reg(Rmov, R0)
	g.reg(Nor, R1)
	g.reg(Amov, R0)
}

// arith writes l op r to dst for the arithmetic and bitwise operators.
func (g *Generator) arith(op semantics.BinOp, l, r, dst loc, n int) {
	switch op {
	case semantics.OpAdd:
		g.carryChain(false, l, r, &dst, n, false)
		return
	case semantics.OpSub:
		g.carryChain(true, l, r, &dst, n, false)
		return
	}
	for k := 0; k < n; k++ {
		g.load(l, k, R0, R1)
		g.load(r, k, R1, R1)
		switch op {
		case semantics.OpAnd:
			g.reg(Rmov, R0)
			g.reg(And, R1)
			g.reg(Amov, R0)
		case semantics.OpNor:
			g.reg(Rmov, R0)
			g.reg(Nor, R1)
			g.reg(Amov, R0)
		case semantics.OpOr:
			g.orR0R1()
		default:
			panic("codegen: not an arithmetic operator: " + op.String())
		}
		g.store(R0, dst, k, R1)
	}
}

// compare writes the boolean l op r to dst[0] for the ordering operators.
func (g *Generator) compare(op semantics.BinOp, l, r, dst loc, n int, signed bool) {
	swap := op == semantics.OpGt || op == semantics.OpLe
	invert := op == semantics.OpLe || op == semantics.OpGe
	if swap {
		l, r = r, l
	}
	g.carryChain(true, l, r, nil, n, signed)
	if invert {
		g.invertR1()
	}
	g.store(R1, dst, 0, R0)
}

// invertR1 turns the boolean in R1 into its negation.
func (g *Generator) invertR1() {
	g.ima(1)
	g.reg(Sub, R1)
	g.reg(Amov, R1)
}

// equal writes l == r (or l != r) to dst[0]. The byte differences are
// OR-accumulated in dst itself.
func (g *Generator) equal(l, r, dst loc, n int, negate bool) {
	g.imr(R1, 0)
	g.store(R1, dst, 0, R0)
	for k := 0; k < n; k++ {
		g.load(l, k, R0, R1)
		g.load(r, k, R1, R1)
		g.reg(Rmov, R0)
		g.reg(Sub, R1)
		g.reg(Amov, R0)
		g.load(dst, 0, R1, R1)
		g.orR0R1()
		g.store(R0, dst, 0, R1)
	}

	g.load(dst, 0, R0, R1)
	g.imr(R1, 1)
	g.reg(Rmov, R0)
	g.reg(Sub, R1)
	g.carryToR1()
	if negate {
		g.invertR1()
	}
	g.store(R1, dst, 0, R0)
}

// carryToR1 copies C into R1 as 0 or 1.
func (g *Generator) carryToR1() {
	g.imr(R1, 0)
	g.op(Acz)
	g.reg(Adc, R1)
	g.reg(Amov, R1)
}

// signFill leaves 0xFF in R1 when the top bit of R0 is set, else 0.
func (g *Generator) signFill() {
	g.reg(Rmov, R0)
	g.reg(Add, R0)
	g.imr(R1, 0)
	g.op(Acz)
	g.reg(Sbc, R1)
	g.reg(Amov, R1)
}

// cast copies src, a value of m bytes, to dst as a value of n bytes.
// Narrowing drops the top bytes; widening fills with zero or sign bytes.
func (g *Generator) cast(src, dst loc, m, n int, signed bool) {
	g.copyBytes(src, dst, min(m, n))
	if n <= m {
		return
	}
	if signed {
		g.load(src, m-1, R0, R1)
		g.signFill()
	} else {
		g.imr(R1, 0)
	}
	for k := m; k < n; k++ {
		g.store(R1, dst, k, R0)
	}
}

// shift shifts the n bytes at v in place. Whole bytes move first, then the
// remaining bits shift one pass at a time.
func (g *Generator) shift(v loc, n int, left bool, amount int, signed bool) {
	m := amount / 8
	if m > 0 {
		if left {
			for k := n - 1; k >= 0; k-- {
				if k-m >= 0 {
					g.load(v, k-m, R1, R0)
				} else {
					g.imr(R1, 0)
				}
				g.store(R1, v, k, R0)
			}
		} else {
			for k := 0; k+m < n; k++ {
				g.load(v, k+m, R1, R0)
				g.store(R1, v, k, R0)
			}
			if signed {
				g.load(v, n-1, R0, R1)
				g.signFill()
			} else {
				g.imr(R1, 0)
			}
			for k := max(n-m, 0); k < n; k++ {
				g.store(R1, v, k, R0)
			}
		}
	}
	if m >= n {
		return
	}
	for p := 0; p < amount%8; p++ {
		if left {
			g.shiftLeftOnce(v, n)
		} else {
			g.shiftRightOnce(v, n, signed)
		}
	}
}

func (g *Generator) shiftLeftOnce(v loc, n int) {
	for k := n - 1; k >= 1; k-- {
		g.load(v, k, R0, R1)
		g.load(v, k-1, R1, R1)
		g.reg(Rmov, R1)
		g.reg(Add, R1)
		g.reg(Rmov, R0)
		g.reg(Adc, R0)
		g.reg(Amov, R0)
		g.store(R0, v, k, R1)
	}
	g.load(v, 0, R0, R1)
	g.reg(Rmov, R0)
	g.reg(Add, R0)
	g.reg(Amov, R0)
	g.store(R0, v, 0, R1)
}

func (g *Generator) shiftRightOnce(v loc, n int, signed bool) {
	for k := 0; k < n-1; k++ {
		g.load(v, k, R0, R1)
		g.load(v, k+1, R1, R1)
		g.reg(Ror, R1)
		g.reg(Ror, R0)
		g.reg(Amov, R0)
		g.store(R0, v, k, R1)
	}
	g.load(v, n-1, R0, R1)
	if signed {
		g.reg(Rmov, R0)
		g.reg(Add, R0)
	} else {
		g.op(Clc)
	}
	g.reg(Ror, R0)
	g.reg(Amov, R0)
	g.store(R0, v, n-1, R1)
}
