// Package compiler runs the mycc pipeline: preprocess, tokenize, parse,
// analyze, generate and link.
package compiler

import (
	"github.com/pkg/errors"

	"github.com/SteveSapuko/mycc/pkg/asm"
	"github.com/SteveSapuko/mycc/pkg/codegen"
	"github.com/SteveSapuko/mycc/pkg/cpu"
	"github.com/SteveSapuko/mycc/pkg/semantics"
	"github.com/SteveSapuko/mycc/pkg/syntax"
)

// DefaultMaxSteps bounds Run when Options.MaxSteps is zero.
const DefaultMaxSteps = 1_000_000

type Options struct {
	BaseDir  string // where #include paths are resolved from
	Prune    bool   // drop functions the entry code can never reach
	MaxSteps int
}

// Result holds the output of every phase that ran.
type Result struct {
	Source  string // after preprocessing
	Tokens  []syntax.Token
	AST     []syntax.Stmt
	Program *semantics.Program
	Code    []codegen.Instruction
	Listing string
	Linked  asm.Program
}

// Analyze runs the front end and the semantic analysis only.
func Analyze(src string, opts Options) (*Result, error) {
	r := &Result{}
	var err error

	r.Source, err = syntax.Preprocess(src, opts.BaseDir)
	if err != nil {
		return r, errors.Wrap(err, "preprocess")
	}
	r.Tokens, err = syntax.Tokenize(r.Source)
	if err != nil {
		return r, errors.Wrap(err, "tokenize")
	}
	r.AST, err = syntax.Parse(r.Tokens, r.Source)
	if err != nil {
		return r, errors.Wrap(err, "parse")
	}
	r.Program, err = semantics.Analyze(r.AST)
	if err != nil {
		return r, errors.Wrap(err, "analyze")
	}
	return r, nil
}

// Compile runs every phase and returns the linked program with its listing.
func Compile(src string, opts Options) (*Result, error) {
	r, err := Analyze(src, opts)
	if err != nil {
		return r, err
	}
	if opts.Prune {
		r.Program = Prune(r.Program)
	}

	r.Code, err = codegen.Generate(r.Program)
	if err != nil {
		return r, errors.Wrap(err, "generate")
	}
	r.Listing = asm.Format(r.Code)

	r.Linked, err = asm.Link(r.Code)
	if err != nil {
		return r, errors.Wrap(err, "link")
	}
	return r, nil
}

// Run compiles src and simulates it until it halts, feeding input to the in
// port.
func Run(src string, opts Options, input []byte) (*Result, *cpu.CPU, error) {
	r, err := Compile(src, opts)
	if err != nil {
		return r, nil, err
	}
	m := cpu.New(r.Linked)
	m.Input = append([]byte(nil), input...)

	limit := opts.MaxSteps
	if limit == 0 {
		limit = DefaultMaxSteps
	}
	if err := m.Run(limit); err != nil {
		return r, m, errors.Wrap(err, "run")
	}
	return r, m, nil
}

// Main returns the declaration of main, if the program has one.
func (r *Result) Main() *semantics.FnDecl {
	if r.Program == nil {
		return nil
	}
	for _, fn := range r.Program.Functions() {
		if fn.Fn.Name == "main" {
			return fn
		}
	}
	return nil
}

// MainResult reads the value main returned. The entry code calls main with
// an empty stack, so its return slot starts at address 0.
func (r *Result) MainResult(m *cpu.CPU) []byte {
	fn := r.Main()
	if fn == nil {
		return nil
	}
	return m.ReadN(0, r.Program.Types.Size(fn.Fn.Ret))
}
