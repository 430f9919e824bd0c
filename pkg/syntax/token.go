package syntax

import "fmt"

// Kind classifies a token. Operators and punctuation keep their exact text
// in Token.Text, so the parser matches on Kind plus Text.
type Kind int

const (
	EOF Kind = iota
	Keyword
	Ident
	Int
	Op
	Punct
)

var kindNames = [...]string{
	EOF:     "EOF",
	Keyword: "KEYWORD",
	Ident:   "IDENT",
	Int:     "INT",
	Op:      "OP",
	Punct:   "PUNCT",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords are lexed as identifiers and then reclassified.
var keywords = map[string]bool{
	"let":      true,
	"if":       true,
	"fn":       true,
	"else":     true,
	"while":    true,
	"loop":     true,
	"for":      true,
	"return":   true,
	"continue": true,
	"struct":   true,
	"enum":     true,
	"break":    true,
	"as":       true,
}

// Token is a single lexical unit.
type Token struct {
	Kind Kind
	Text string // the exact source text that was matched
	Line int    // 1-based source line
	Col  int    // 1-based source column
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(k Kind, text string) bool {
	return t.Kind == k && t.Text == text
}

func (t Token) String() string {
	return fmt.Sprintf("%-8s %-10q %d:%d", t.Kind, t.Text, t.Line, t.Col)
}
