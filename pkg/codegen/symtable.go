package codegen

import (
	"fmt"
	"strings"

	"github.com/SteveSapuko/mycc/pkg/types"
)

type Symbol struct {
	Name   string
	Type   types.Type
	Offset int // from BP
	Size   int
}

// SymbolTable maps the variables of one frame to BP offsets. Offsets are
// bump-allocated and never reused, even after the block that declared a
// variable has closed; closing a block only hides its names.
type SymbolTable struct {
	entries []Symbol
	next    int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Allocate places name at the next free offset.
func (s *SymbolTable) Allocate(name string, t types.Type, size int) Symbol {
	sym := Symbol{Name: name, Type: t, Offset: s.next, Size: size}
	s.entries = append(s.entries, sym)
	s.next += size
	return sym
}

func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Name == name {
			return s.entries[i], true
		}
	}
	return Symbol{}, false
}

// Mark returns a position to pass to Release when a block closes.
func (s *SymbolTable) Mark() int { return len(s.entries) }

func (s *SymbolTable) Release(mark int) { s.entries = s.entries[:mark] }

// Next is the offset the next allocation will get.
func (s *SymbolTable) Next() int { return s.next }

func (s *SymbolTable) String() string {
	var sb strings.Builder
	for _, e := range s.entries {
		fmt.Fprintf(&sb, "%s: %s @%d (%d bytes)\n", e.Name, e.Type, e.Offset, e.Size)
	}
	return sb.String()
}
