package main

import (
	"fmt"
	"strings"

	"github.com/SteveSapuko/mycc/pkg/codegen"
	"github.com/SteveSapuko/mycc/pkg/cpu"
)

const (
	stackRows   = 16
	listingRows = 24
)

func flagName(name string, set bool) string {
	if set {
		return name
	}
	return "-"
}

// registerLines renders the accumulator, the register file and the flags.
func registerLines(m *cpu.CPU) []string {
	lines := []string{
		fmt.Sprintf("A    %02x", m.A),
	}
	for r := codegen.Reg(0); r < codegen.NumRegs; r++ {
		lines = append(lines, fmt.Sprintf("%-4s %02x", r, m.Regs[r]))
	}
	lines = append(lines,
		fmt.Sprintf("SP   %04x", m.SP()),
		fmt.Sprintf("BP   %04x", m.BP()),
		fmt.Sprintf("MAR  %04x", m.MAR()),
		fmt.Sprintf("flags %s %s %s", flagName("Z", m.Z), flagName("N", m.N), flagName("C", m.C)),
		fmt.Sprintf("pc %d  steps %d", m.PC, m.Steps),
	)
	if m.Halted {
		lines = append(lines, "halted")
	}
	return lines
}

// stackLines shows the top rows of the stack, newest first. A marker
// points at the byte BP addresses.
func stackLines(m *cpu.CPU, rows int) []string {
	sp, bp := m.SP(), m.BP()
	var lines []string
	for i := 1; i <= rows; i++ {
		addr := sp - uint16(i)
		if int(sp)-i < 0 {
			break
		}
		mark := "  "
		if addr == bp {
			mark = "bp"
		}
		lines = append(lines, fmt.Sprintf("%s %04x  %02x", mark, addr, m.Read(addr)))
	}
	return lines
}

// listingWindow returns rows lines of the listing centred on line cur,
// with the current line marked.
func listingWindow(listing []string, cur, rows int) []string {
	if len(listing) == 0 {
		return nil
	}
	start := max(cur-rows/2, 0)
	end := min(start+rows, len(listing))
	start = max(end-rows, 0)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		prefix := "   "
		if i == cur {
			prefix = "=> "
		}
		lines = append(lines, prefix+strings.TrimLeft(listing[i], " "))
	}
	return lines
}

// currentLine maps PC to its line in the listing, or -1 once PC has left
// the program.
func currentLine(m *cpu.CPU) int {
	if m.PC < 0 || m.PC >= len(m.Prog.Record) {
		return -1
	}
	return m.Prog.Record[m.PC]
}

// outputLine renders what the program has written, printable bytes as
// text and the rest as hex escapes.
func outputLine(out []byte) string {
	var sb strings.Builder
	for _, b := range out {
		if b >= 0x20 && b < 0x7f {
			sb.WriteByte(b)
		} else {
			fmt.Fprintf(&sb, "\\x%02x", b)
		}
	}
	return sb.String()
}
