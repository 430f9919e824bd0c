package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pkg/errors"

	"github.com/SteveSapuko/mycc/pkg/codegen"
	"github.com/SteveSapuko/mycc/pkg/cpu"
	"github.com/SteveSapuko/mycc/pkg/semantics"
)

func hasLabel(code []codegen.Instruction, name string) bool {
	for _, in := range code {
		if in.Kind == codegen.KindLabel && in.Target == name {
			return true
		}
	}
	return false
}

func TestCompilePhases(t *testing.T) {
	r, err := Compile("#define N 3\nfn main() -> u8 { return N; }", Options{})
	be.Err(t, err, nil)
	be.True(t, len(r.Tokens) > 0)
	be.Equal(t, len(r.AST), 1)
	be.Equal(t, len(r.Program.Functions()), 1)
	be.True(t, strings.Contains(r.Source, "return 3;"))
	be.True(t, strings.Contains(r.Listing, "fn_main:"))
	be.True(t, strings.Contains(r.Listing, "    hlt\n"))
	be.True(t, len(r.Linked.Code) > 0)
	be.True(t, r.Main() != nil)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		prefix string
	}{
		{"preprocess", "#pragma once", "preprocess: "},
		{"tokenize", "let a: u8 = $;", "tokenize: "},
		{"parse", "let a u8;", "parse: "},
		{"analyze", "let a: u8 = 300;", "analyze: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, Options{})
			be.Err(t, err)
			be.True(t, strings.HasPrefix(err.Error(), tt.prefix))
		})
	}
}

func TestCompileErrorCause(t *testing.T) {
	_, err := Compile("let a: u8 = 300;", Options{})
	se, ok := errors.Cause(err).(*semantics.Error)
	be.True(t, ok)
	be.Equal(t, se.Kind, semantics.WrongType)
	be.Equal(t, se.Expected.String(), "u8")
}

func TestCompileLimitError(t *testing.T) {
	src := "fn f() { }\n" + strings.Repeat("f();\n", 300)
	_, err := Compile(src, Options{})
	be.Err(t, err, "generate: ")
	_, ok := errors.Cause(err).(*codegen.LimitError)
	be.True(t, ok)
}

func TestAnalyzeOnly(t *testing.T) {
	r, err := Analyze("fn main() -> u8 { return 1; }", Options{})
	be.Err(t, err, nil)
	be.True(t, r.Program != nil)
	be.Equal(t, len(r.Code), 0)
	be.Equal(t, r.Listing, "")
}

func TestInclude(t *testing.T) {
	dir := t.TempDir()
	lib := "fn twice(x: u8) -> u8 { return x + x; }\n"
	be.Err(t, os.WriteFile(filepath.Join(dir, "lib.mc"), []byte(lib), 0644), nil)

	r, m, err := Run("#include \"lib.mc\"\nfn main() -> u8 { return twice(21); }", Options{BaseDir: dir}, nil)
	be.Err(t, err, nil)
	be.Equal(t, r.MainResult(m), []byte{42})
}

func TestPrune(t *testing.T) {
	src := `
fn unused() -> u8 { return helper(); }
fn helper() -> u8 { return 1; }
fn used() -> u8 { return helper(); }
fn init() -> u8 { return 2; }
let g: u8 = init();
fn main() -> u8 { return used(); }
`
	full, err := Compile(src, Options{})
	be.Err(t, err, nil)
	be.True(t, hasLabel(full.Code, "fn_unused"))

	pruned, err := Compile(src, Options{Prune: true})
	be.Err(t, err, nil)
	be.True(t, !hasLabel(pruned.Code, "fn_unused"))
	for _, name := range []string{"fn_helper", "fn_used", "fn_init", "fn_main"} {
		be.True(t, hasLabel(pruned.Code, name))
	}

	_, m, err := Run(src, Options{Prune: true}, nil)
	be.Err(t, err, nil)
	be.Equal(t, m.Read(0), byte(1))
}

func TestPruneLooksInsidePaths(t *testing.T) {
	src := `
fn idx() -> u8 { return 1; }
let a: [u8; 2];
a[idx()] = 4;
`
	r, err := Compile(src, Options{Prune: true})
	be.Err(t, err, nil)
	be.True(t, hasLabel(r.Code, "fn_idx"))
}

func TestRunStepLimit(t *testing.T) {
	_, m, err := Run("loop { }", Options{MaxSteps: 500}, nil)
	be.Equal(t, errors.Cause(err), cpu.ErrStepLimit)
	be.True(t, strings.HasPrefix(err.Error(), "run: "))
	be.Equal(t, m.Steps, 500)
}

func TestMainResultWithoutMain(t *testing.T) {
	r, m := run(t, "let a: u8 = 1;")
	be.True(t, r.Main() == nil)
	be.Equal(t, len(r.MainResult(m)), 0)
}
