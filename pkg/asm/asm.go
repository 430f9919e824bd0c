// Package asm renders instruction streams as text listings, reads them back
// and links them for execution.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/SteveSapuko/mycc/pkg/codegen"
)

// Format renders one record per line. Ops are indented, labels and comments
// start at column 0.
func Format(code []codegen.Instruction) string {
	var sb strings.Builder
	for _, in := range code {
		if in.Kind == codegen.KindOp {
			sb.WriteString("    ")
		}
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Parse reads a listing back into records. Mnemonics and registers are
// case-insensitive; labels are not.
func Parse(text string) ([]codegen.Instruction, error) {
	var code []codegen.Instruction
	defined := make(map[string]int)
	type use struct {
		label  string
		lineNo int
	}
	var uses []use

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ";") {
			code = append(code, codegen.Comment(strings.TrimSpace(line[1:])))
			continue
		}

		line = strings.TrimSpace(stripComments(line))
		if strings.HasSuffix(line, ":") {
			name := strings.TrimSpace(strings.TrimSuffix(line, ":"))
			if !isIdentifier(name) {
				return nil, fmt.Errorf("invalid label '%s' on line %d", name, lineNo)
			}
			if prev, exists := defined[name]; exists {
				return nil, fmt.Errorf("duplicate label '%s' on line %d (first on line %d)", name, lineNo, prev)
			}
			defined[name] = lineNo
			code = append(code, codegen.Label(name))
			continue
		}

		in, err := parseOp(line, lineNo)
		if err != nil {
			return nil, err
		}
		if in.Op.Shape() == codegen.TargetOperand {
			uses = append(uses, use{in.Target, lineNo})
		}
		code = append(code, in)
	}

	for _, u := range uses {
		if _, ok := defined[u.label]; !ok {
			return nil, fmt.Errorf("undefined label '%s' on line %d", u.label, u.lineNo)
		}
	}
	return code, nil
}

func parseOp(line string, lineNo int) (codegen.Instruction, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	op, ok := codegen.ParseOp(fields[0])
	if !ok {
		return codegen.Instruction{}, fmt.Errorf("unknown instruction on line %d: %s", lineNo, fields[0])
	}
	operands := fields[1:]
	in := codegen.Instruction{Op: op}

	want := map[codegen.Shape]int{
		codegen.NoOperand:     0,
		codegen.RegOperand:    1,
		codegen.ImmOperand:    1,
		codegen.RegImmOperand: 2,
		codegen.TargetOperand: 1,
	}[op.Shape()]
	if len(operands) != want {
		return in, fmt.Errorf("%s expects %d operand(s) on line %d, got %d", op, want, lineNo, len(operands))
	}

	var err error
	switch op.Shape() {
	case codegen.RegOperand:
		in.Reg, err = parseRegister(operands[0], lineNo)
	case codegen.ImmOperand:
		in.Imm, err = parseImmediate(operands[0], lineNo)
	case codegen.RegImmOperand:
		if in.Reg, err = parseRegister(operands[0], lineNo); err == nil {
			in.Imm, err = parseImmediate(operands[1], lineNo)
		}
	case codegen.TargetOperand:
		if !isIdentifier(operands[0]) {
			err = fmt.Errorf("invalid label '%s' on line %d", operands[0], lineNo)
		}
		in.Target = operands[0]
	}
	return in, err
}

func stripComments(line string) string {
	if semicolon := strings.Index(line, ";"); semicolon >= 0 {
		return line[:semicolon]
	}
	return line
}

func parseRegister(token string, lineNo int) (codegen.Reg, error) {
	r, ok := codegen.ParseReg(token)
	if !ok {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	return r, nil
}

func parseImmediate(token string, lineNo int) (uint8, error) {
	value, err := strconv.ParseUint(token, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
	}
	if value > 0xFF {
		return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
	}
	return uint8(value), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
