// Package codegen lowers a typed program to the instruction set of the 8-bit
// accumulator machine.
package codegen

import (
	"fmt"
	"strings"
)

type Op uint8

const (
	Nop Op = iota
	Hlt
	Add
	Adc
	Sub
	Sbc
	Ror
	Nor
	And
	Stc
	Clc
	Acz
	Rmov
	Amov
	Ima
	Imr
	Ld
	Str
	In
	Out
	Push
	Pop
	Jmp
	Bca
	Bnc
	Bze
	Bnz
	Bsi
	Bpa
)

// Shape is the operand layout of an op.
type Shape uint8

const (
	NoOperand Shape = iota
	RegOperand
	ImmOperand
	RegImmOperand
	TargetOperand
)

var opInfo = [...]struct {
	name  string
	shape Shape
}{
	Nop:  {"nop", NoOperand},
	Hlt:  {"hlt", NoOperand},
	Add:  {"add", RegOperand},
	Adc:  {"adc", RegOperand},
	Sub:  {"sub", RegOperand},
	Sbc:  {"sbc", RegOperand},
	Ror:  {"ror", RegOperand},
	Nor:  {"nor", RegOperand},
	And:  {"and", RegOperand},
	Stc:  {"stc", NoOperand},
	Clc:  {"clc", NoOperand},
	Acz:  {"acz", NoOperand},
	Rmov: {"rmov", RegOperand},
	Amov: {"amov", RegOperand},
	Ima:  {"ima", ImmOperand},
	Imr:  {"imr", RegImmOperand},
	Ld:   {"ld", NoOperand},
	Str:  {"str", NoOperand},
	In:   {"in", NoOperand},
	Out:  {"out", NoOperand},
	Push: {"push", RegOperand},
	Pop:  {"pop", RegOperand},
	Jmp:  {"jmp", TargetOperand},
	Bca:  {"bca", TargetOperand},
	Bnc:  {"bnc", TargetOperand},
	Bze:  {"bze", TargetOperand},
	Bnz:  {"bnz", TargetOperand},
	Bsi:  {"bsi", TargetOperand},
	Bpa:  {"bpa", TargetOperand},
}

func (o Op) String() string {
	if int(o) < len(opInfo) {
		return opInfo[o].name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

func (o Op) Shape() Shape { return opInfo[o].shape }

// ParseOp looks a mnemonic up, ignoring case.
func ParseOp(s string) (Op, bool) {
	s = strings.ToLower(s)
	for i, info := range opInfo {
		if info.name == s {
			return Op(i), true
		}
	}
	return 0, false
}

type Reg uint8

const (
	R0 Reg = iota
	R1
	BPL
	BPH
	SPL
	SPH
	MARL
	MARH
	NumRegs
)

var regNames = [...]string{"r0", "r1", "bpl", "bph", "spl", "sph", "marl", "marh"}

func (r Reg) String() string {
	if r < NumRegs {
		return regNames[r]
	}
	return fmt.Sprintf("reg(%d)", int(r))
}

func ParseReg(s string) (Reg, bool) {
	s = strings.ToLower(s)
	for i, n := range regNames {
		if n == s {
			return Reg(i), true
		}
	}
	return 0, false
}

type Kind uint8

const (
	KindOp Kind = iota
	KindLabel
	KindComment
)

// Instruction is one record of the output stream: a machine op, a label
// definition or a comment. Target holds the branch target of an op or the
// name of a label.
type Instruction struct {
	Kind   Kind
	Op     Op
	Reg    Reg
	Imm    uint8
	Target string
	Text   string
}

func Label(name string) Instruction { return Instruction{Kind: KindLabel, Target: name} }

func Comment(text string) Instruction { return Instruction{Kind: KindComment, Text: text} }

func (in Instruction) String() string {
	switch in.Kind {
	case KindLabel:
		return in.Target + ":"
	case KindComment:
		return "; " + in.Text
	}
	switch in.Op.Shape() {
	case RegOperand:
		return fmt.Sprintf("%s %s", in.Op, in.Reg)
	case ImmOperand:
		return fmt.Sprintf("%s 0x%02x", in.Op, in.Imm)
	case RegImmOperand:
		return fmt.Sprintf("%s %s, 0x%02x", in.Op, in.Reg, in.Imm)
	case TargetOperand:
		return fmt.Sprintf("%s %s", in.Op, in.Target)
	}
	return in.Op.String()
}
