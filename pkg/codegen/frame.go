package codegen

import "fmt"

// maxFrame is the largest SP-BP distance a frame may reach.
const maxFrame = 0xFFFF

//  Emission

func (g *Generator) emit(in Instruction) { g.out = append(g.out, in) }

func (g *Generator) op(op Op) { g.emit(Instruction{Op: op}) }

func (g *Generator) reg(op Op, r Reg) { g.emit(Instruction{Op: op, Reg: r}) }

func (g *Generator) ima(v uint8) { g.emit(Instruction{Op: Ima, Imm: v}) }

func (g *Generator) imr(r Reg, v uint8) { g.emit(Instruction{Op: Imr, Reg: r, Imm: v}) }

func (g *Generator) jump(op Op, target string) { g.emit(Instruction{Op: op, Target: target}) }

func (g *Generator) label(name string) { g.emit(Label(name)) }

func (g *Generator) comment(format string, args ...any) {
	g.emit(Comment(fmt.Sprintf(format, args...)))
}

func (g *Generator) newLabel() string {
	l := fmt.Sprintf("L%d", g.nextLabel)
	g.nextLabel++
	return l
}

//  Stack pointer

// increaseSP reserves n bytes on top of the stack. Clobbers A and C.
func (g *Generator) increaseSP(n int) {
	if n == 0 {
		return
	}
	g.ima(uint8(n))
	g.reg(Add, SPL)
	g.reg(Amov, SPL)
	g.ima(uint8(n >> 8))
	g.reg(Adc, SPH)
	g.reg(Amov, SPH)
	g.grow(n)
}

// grow records n more bytes on the stack.
func (g *Generator) grow(n int) {
	g.depth += n
	if g.depth > maxFrame && g.err == nil {
		g.err = &LimitError{Fn: g.fnName, Msg: fmt.Sprintf("frame needs %d bytes", g.depth)}
	}
}

// decreaseSP lowers SP by n without touching the tracked depth. Clobbers
// R0, A and C; R1 survives.
func (g *Generator) decreaseSP(n int) {
	if n == 0 {
		return
	}
	g.reg(Rmov, SPL)
	g.imr(R0, uint8(n))
	g.reg(Sub, R0)
	g.reg(Amov, SPL)
	g.reg(Rmov, SPH)
	g.imr(R0, uint8(n>>8))
	g.reg(Sbc, R0)
	g.reg(Amov, SPH)
}

// dropTo pops everything above mark.
func (g *Generator) dropTo(mark int) {
	if g.depth < mark {
		panic(fmt.Sprintf("codegen: drop to %d above depth %d", mark, g.depth))
	}
	g.decreaseSP(g.depth - mark)
	g.depth = mark
}

func (g *Generator) push(r Reg) {
	g.reg(Push, r)
	g.grow(1)
}

func (g *Generator) pop(r Reg) {
	g.reg(Pop, r)
	g.depth--
}

//  Addressing

// addrBasePlus points MAR at BP+n. Negative n wraps. Clobbers A and C.
func (g *Generator) addrBasePlus(n int) {
	v := uint16(n)
	g.ima(uint8(v))
	g.reg(Add, BPL)
	g.reg(Amov, MARL)
	g.ima(uint8(v >> 8))
	g.reg(Adc, BPH)
	g.reg(Amov, MARH)
}

// addrStackMinus points MAR at SP-n. Clobbers scratch, A and C.
func (g *Generator) addrStackMinus(scratch Reg, n int) {
	v := uint16(n)
	g.reg(Rmov, SPL)
	g.imr(scratch, uint8(v))
	g.reg(Sub, scratch)
	g.reg(Amov, MARL)
	g.reg(Rmov, SPH)
	g.imr(scratch, uint8(v>>8))
	g.reg(Sbc, scratch)
	g.reg(Amov, MARH)
}

//  Value locations

type locKind uint8

const (
	locImm locKind = iota
	locBase
	locStack
)

// loc is where the bytes of a value live. Base and stack locations both
// record a BP offset; a stack location is addressed from SP so it stays
// reachable while BP is borrowed for an indirect access.
type loc struct {
	kind locKind
	imm  []byte
	off  int
	size int
}

func immLoc(b []byte) loc { return loc{kind: locImm, imm: b, size: len(b)} }

func baseLoc(off, size int) loc { return loc{kind: locBase, off: off, size: size} }

func stackLoc(start, size int) loc { return loc{kind: locStack, off: start, size: size} }

func zeros(n int) loc { return immLoc(make([]byte, n)) }

// load puts byte k of l into r. scratch may equal r.
func (g *Generator) load(l loc, k int, r, scratch Reg) {
	switch l.kind {
	case locImm:
		g.imr(r, l.imm[k])
		return
	case locBase:
		g.addrBasePlus(l.off + k)
	case locStack:
		g.addrStackMinus(scratch, g.depth-l.off-k)
	}
	g.op(Ld)
	g.reg(Amov, r)
}

// store writes r to byte k of l. scratch must differ from r.
func (g *Generator) store(r Reg, l loc, k int, scratch Reg) {
	if r == scratch {
		panic("codegen: store scratch aliases source register")
	}
	switch l.kind {
	case locImm:
		panic("codegen: store to immediate")
	case locBase:
		g.addrBasePlus(l.off + k)
	case locStack:
		g.addrStackMinus(scratch, g.depth-l.off-k)
	}
	g.reg(Rmov, r)
	g.op(Str)
}

// copyBytes copies the first n bytes of src to dst.
func (g *Generator) copyBytes(src, dst loc, n int) {
	for k := 0; k < n; k++ {
		g.load(src, k, R1, R0)
		g.store(R1, dst, k, R0)
	}
}

// materialize returns l unchanged unless it is base-relative, in which case
// its bytes are copied to a new stack slot.
func (g *Generator) materialize(l loc) loc {
	if l.kind != locBase {
		return l
	}
	start := g.depth
	g.increaseSP(l.size)
	dst := stackLoc(start, l.size)
	g.copyBytes(l, dst, l.size)
	return dst
}
