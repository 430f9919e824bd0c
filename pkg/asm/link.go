package asm

import (
	"fmt"

	"github.com/SteveSapuko/mycc/pkg/codegen"
)

// Op is a linked machine op. Dest is the index of the branch target in
// Program.Code.
type Op struct {
	codegen.Instruction
	Dest int
}

// Program is an executable instruction list with labels resolved.
type Program struct {
	Code   []Op
	Labels map[string]int // label -> index into Code

	// Record maps each op back to its index in the unlinked stream, which
	// is also its line in Format's output.
	Record []int
}

// Link drops labels and comments and resolves every branch target to the
// index of the op that follows its label.
func Link(code []codegen.Instruction) (Program, error) {
	p := Program{Labels: make(map[string]int)}

	// pass 1: label addresses
	n := 0
	for _, in := range code {
		switch in.Kind {
		case codegen.KindLabel:
			if _, exists := p.Labels[in.Target]; exists {
				return Program{}, fmt.Errorf("duplicate label '%s'", in.Target)
			}
			p.Labels[in.Target] = n
		case codegen.KindOp:
			n++
		}
	}

	// pass 2: resolve
	p.Code = make([]Op, 0, n)
	p.Record = make([]int, 0, n)
	for i, in := range code {
		if in.Kind != codegen.KindOp {
			continue
		}
		op := Op{Instruction: in}
		if in.Op.Shape() == codegen.TargetOperand {
			dest, ok := p.Labels[in.Target]
			if !ok {
				return Program{}, fmt.Errorf("undefined label '%s' at record %d", in.Target, i)
			}
			op.Dest = dest
		}
		p.Code = append(p.Code, op)
		p.Record = append(p.Record, i)
	}
	return p, nil
}
