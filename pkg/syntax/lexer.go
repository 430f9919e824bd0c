package syntax

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// rules is the tokenizer definition. Order matters: longer operators are
// listed before their prefixes.
var rules = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Ident", Pattern: `[_a-zA-Z][_a-zA-Z0-9]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Op", Pattern: `->|::|&&|\|\||==|!=|<=|>=|<<|>>|~\||[-=+&|!*<>@]`},
	{Name: "Punct", Pattern: `[()\[\]{};:,.]`},
})

var symbols = rules.Symbols()

// Tokenize splits src into tokens. Whitespace and line comments are dropped
// and the result always ends with an EOF token.
func Tokenize(src string) ([]Token, error) {
	lex, err := rules.LexString("", src)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("lex error: %v", err)
	}

	tokens := make([]Token, 0, len(raw))
	for _, r := range raw {
		tok := Token{Text: r.Value, Line: r.Pos.Line, Col: r.Pos.Column}
		switch r.Type {
		case lexer.EOF:
			tok.Kind = EOF
			tok.Text = ""
		case symbols["Comment"], symbols["Whitespace"]:
			continue
		case symbols["Ident"]:
			tok.Kind = Ident
			if keywords[r.Value] {
				tok.Kind = Keyword
			}
		case symbols["Int"]:
			tok.Kind = Int
		case symbols["Op"]:
			tok.Kind = Op
		case symbols["Punct"]:
			tok.Kind = Punct
		default:
			return nil, fmt.Errorf("lex error: line %d:%d: unexpected %q", r.Pos.Line, r.Pos.Column, r.Value)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
