// Package casebook reads compiler test cases out of Markdown documents and
// checks them against the compiler and the simulator.
//
// A case starts at a heading of the form "Test: name" and holds one mycc
// fence with the program plus any of these fences:
//
//	input   bytes fed to in(), as hex
//	output  bytes the program must write with out(), as hex
//	result  bytes main must return, as hex, least significant first
//	error   the name of the analysis error the program must fail with
package casebook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/SteveSapuko/mycc/pkg/codegen"
	"github.com/SteveSapuko/mycc/pkg/compiler"
	"github.com/SteveSapuko/mycc/pkg/semantics"
)

type FenceType string

const (
	FenceSource FenceType = "mycc"
	FenceInput  FenceType = "input"
	FenceOutput FenceType = "output"
	FenceResult FenceType = "result"
	FenceError  FenceType = "error"
)

// Case is one test case. The byte fields are nil when their fence is absent.
type Case struct {
	Name   string
	Line   int // line of the source fence
	Source string
	Input  []byte
	Output []byte
	Result []byte
	Error  string
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(markdown string) ([]Case, error) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var cur *Case
	seen := make(map[FenceType]bool)

	finish := func() error {
		if cur == nil {
			return nil
		}
		if err := validate(cur, seen); err != nil {
			return err
		}
		cases = append(cases, *cur)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			cur = &Case{Name: strings.TrimPrefix(heading, "Test: ")}
			seen = make(map[FenceType]bool)

		case *ast.FencedCodeBlock:
			lang := FenceType(n.Language(source))
			line := lineOf(n, source)
			if lang == "" {
				return ast.WalkContinue, nil
			}
			if !known(lang) {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s'", line, lang)
			}
			if cur == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", line, lang)
			}
			if seen[lang] {
				return ast.WalkStop, fmt.Errorf("line %d: multiple %s fences in test '%s'", line, lang, cur.Name)
			}
			seen[lang] = true

			content := fenceContent(n, source)
			var err error
			switch lang {
			case FenceSource:
				cur.Source = content
				cur.Line = line
			case FenceInput:
				cur.Input, err = parseHex(content)
			case FenceOutput:
				cur.Output, err = parseHex(content)
			case FenceResult:
				cur.Result, err = parseHex(content)
			case FenceError:
				cur.Error = strings.TrimSpace(content)
			}
			if err != nil {
				return ast.WalkStop, fmt.Errorf("line %d: test '%s': %w", line, cur.Name, err)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func known(lang FenceType) bool {
	switch lang {
	case FenceSource, FenceInput, FenceOutput, FenceResult, FenceError:
		return true
	}
	return false
}

func validate(c *Case, seen map[FenceType]bool) error {
	if !seen[FenceSource] {
		return fmt.Errorf("test '%s' has no mycc fence", c.Name)
	}
	if !seen[FenceOutput] && !seen[FenceResult] && !seen[FenceError] {
		return fmt.Errorf("test '%s' has no output, result or error fence", c.Name)
	}
	if seen[FenceError] && (seen[FenceOutput] || seen[FenceResult]) {
		return fmt.Errorf("test '%s' expects both an error and a run", c.Name)
	}
	if seen[FenceError] {
		if _, ok := semantics.ParseErrorKind(c.Error); !ok && c.Error != "LimitError" {
			return fmt.Errorf("test '%s': unknown error kind '%s'", c.Name, c.Error)
		}
	}
	return nil
}

// parseHex reads whitespace-separated bytes such as "0x41 42 ff".
func parseHex(s string) ([]byte, error) {
	out := []byte{}
	for _, f := range strings.Fields(s) {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(f), "0x"), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s'", f)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	// the first content line sits one below the opening fence
	return bytes.Count(source[:node.Lines().At(0).Start], []byte("\n"))
}

// Check compiles and runs c and reports the first expectation it misses.
func Check(c Case, opts compiler.Options) error {
	if c.Error != "" {
		_, err := compiler.Compile(c.Source, opts)
		if err == nil {
			return fmt.Errorf("expected %s error, compiled fine", c.Error)
		}
		if got := errorKind(err); got != c.Error {
			return fmt.Errorf("expected %s error, got %v", c.Error, err)
		}
		return nil
	}

	r, m, err := compiler.Run(c.Source, opts, c.Input)
	if err != nil {
		return err
	}
	if c.Output != nil && !bytes.Equal(m.Output, c.Output) {
		return fmt.Errorf("output: got % x, want % x", m.Output, c.Output)
	}
	if c.Result != nil {
		if r.Main() == nil {
			return fmt.Errorf("result fence but no main")
		}
		if got := r.MainResult(m); !bytes.Equal(got, c.Result) {
			return fmt.Errorf("result: got % x, want % x", got, c.Result)
		}
	}
	return nil
}

func errorKind(err error) string {
	switch e := errors.Cause(err).(type) {
	case *semantics.Error:
		return e.Kind.String()
	case *codegen.LimitError:
		return "LimitError"
	}
	return ""
}
