// Package cpu simulates the 8-bit accumulator machine that mycc targets.
package cpu

import (
	"errors"
	"fmt"

	"github.com/SteveSapuko/mycc/pkg/asm"
	"github.com/SteveSapuko/mycc/pkg/codegen"
)

// ErrStepLimit is returned by Run when the program is still going after the
// allowed number of steps.
var ErrStepLimit = errors.New("cpu: step limit reached")

type CPU struct {
	Prog asm.Program

	A    uint8
	Regs [codegen.NumRegs]uint8

	Z bool
	N bool
	C bool

	PC     int
	Steps  int
	Halted bool

	Memory [65536]byte

	// Input is consumed by In, one byte per op; In reads 0 once it is empty.
	Input  []byte
	Output []byte
}

func New(prog asm.Program) *CPU {
	return &CPU{Prog: prog}
}

func pair(lo, hi uint8) uint16 { return uint16(hi)<<8 | uint16(lo) }

func (c *CPU) SP() uint16  { return pair(c.Regs[codegen.SPL], c.Regs[codegen.SPH]) }
func (c *CPU) BP() uint16  { return pair(c.Regs[codegen.BPL], c.Regs[codegen.BPH]) }
func (c *CPU) MAR() uint16 { return pair(c.Regs[codegen.MARL], c.Regs[codegen.MARH]) }

func (c *CPU) setSP(v uint16) {
	c.Regs[codegen.SPL] = uint8(v)
	c.Regs[codegen.SPH] = uint8(v >> 8)
}

func (c *CPU) Read(addr uint16) byte { return c.Memory[addr] }

// ReadN returns n bytes starting at addr, wrapping at the top of memory.
func (c *CPU) ReadN(addr uint16, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = c.Memory[addr+uint16(i)]
	}
	return out
}

// Current returns the op at PC.
func (c *CPU) Current() (asm.Op, bool) {
	if c.PC < 0 || c.PC >= len(c.Prog.Code) {
		return asm.Op{}, false
	}
	return c.Prog.Code[c.PC], true
}

func (c *CPU) updateFlags() {
	c.Z = c.A == 0
	c.N = c.A&0x80 != 0
}

func (c *CPU) carryIn() uint16 {
	if c.C {
		return 1
	}
	return 0
}

// Step executes one op.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}
	op, ok := c.Current()
	if !ok {
		c.Halted = true
		return fmt.Errorf("cpu: pc %d outside program of %d ops", c.PC, len(c.Prog.Code))
	}
	c.PC++
	c.Steps++

	var r *uint8
	if op.Op.Shape() == codegen.RegOperand || op.Op.Shape() == codegen.RegImmOperand {
		r = &c.Regs[op.Reg]
	}

	switch op.Op {
	case codegen.Nop:
	case codegen.Hlt:
		c.Halted = true

	case codegen.Add, codegen.Adc:
		s := uint16(c.A) + uint16(*r)
		if op.Op == codegen.Adc {
			s += c.carryIn()
		}
		c.A = uint8(s)
		c.C = s > 0xFF
		c.updateFlags()
	case codegen.Sub, codegen.Sbc:
		d := int(c.A) - int(*r)
		if op.Op == codegen.Sbc {
			d -= int(c.carryIn())
		}
		c.A = uint8(d)
		c.C = d < 0
		c.updateFlags()
	case codegen.Ror:
		v := *r
		c.A = v >> 1
		if c.C {
			c.A |= 0x80
		}
		c.C = v&1 != 0
		c.updateFlags()
	case codegen.Nor:
		c.A = ^(c.A | *r)
		c.updateFlags()
	case codegen.And:
		c.A &= *r
		c.updateFlags()
	case codegen.Acz:
		c.A = 0
		c.updateFlags()
	case codegen.Stc:
		c.C = true
	case codegen.Clc:
		c.C = false

	case codegen.Rmov:
		c.A = *r
	case codegen.Amov:
		*r = c.A
	case codegen.Ima:
		c.A = op.Imm
	case codegen.Imr:
		*r = op.Imm

	case codegen.Ld:
		c.A = c.Memory[c.MAR()]
	case codegen.Str:
		c.Memory[c.MAR()] = c.A

	case codegen.In:
		c.A = 0
		if len(c.Input) > 0 {
			c.A = c.Input[0]
			c.Input = c.Input[1:]
		}
	case codegen.Out:
		c.Output = append(c.Output, c.A)

	case codegen.Push:
		sp := c.SP()
		c.Memory[sp] = *r
		c.setSP(sp + 1)
	case codegen.Pop:
		sp := c.SP() - 1
		c.setSP(sp)
		*r = c.Memory[sp]

	case codegen.Jmp:
		c.PC = op.Dest
	case codegen.Bca:
		c.branch(c.C, op.Dest)
	case codegen.Bnc:
		c.branch(!c.C, op.Dest)
	case codegen.Bze:
		c.branch(c.Z, op.Dest)
	case codegen.Bnz:
		c.branch(!c.Z, op.Dest)
	case codegen.Bsi:
		c.branch(c.N, op.Dest)
	case codegen.Bpa:
		c.branch(!c.N, op.Dest)

	default:
		c.Halted = true
		return fmt.Errorf("cpu: unknown op %s at %d", op.Op, c.PC-1)
	}
	return nil
}

func (c *CPU) branch(cond bool, dest int) {
	if cond {
		c.PC = dest
	}
}

// Run steps until the machine halts. A maxSteps of 0 means no limit.
func (c *CPU) Run(maxSteps int) error {
	for n := 0; !c.Halted; n++ {
		if maxSteps > 0 && n >= maxSteps {
			return ErrStepLimit
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}
