package casebook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/SteveSapuko/mycc/pkg/compiler"
)

func TestCaseBook(t *testing.T) {
	files, err := filepath.Glob("testdata/*.md")
	be.Err(t, err, nil)
	be.True(t, len(files) > 0)

	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".md"), func(t *testing.T) {
			content, err := os.ReadFile(file)
			be.Err(t, err, nil)

			cases, err := Extract(string(content))
			be.Err(t, err, nil)
			for _, c := range cases {
				t.Run(c.Name, func(t *testing.T) {
					if err := Check(c, compiler.Options{}); err != nil {
						t.Errorf("line %d: %v", c.Line, err)
					}
				})
			}
		})
	}
}

func TestExtract(t *testing.T) {
	md := "# Title\n\n## Test: first\n\n```mycc\nfn main() -> u8 { return 1; }\n```\n\n```result\n0x01\n```\n\n" +
		"Some prose.\n\n## Test: second\n\n```mycc\nout(7);\n```\n\n```input\n\n```\n\n```output\n07\n```\n"
	cases, err := Extract(md)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "first")
	be.Equal(t, cases[0].Source, "fn main() -> u8 { return 1; }\n")
	be.Equal(t, cases[0].Line, 5)
	be.Equal(t, cases[0].Result, []byte{1})
	be.True(t, cases[0].Output == nil)

	be.Equal(t, cases[1].Name, "second")
	be.Equal(t, cases[1].Output, []byte{7})
	be.Equal(t, cases[1].Input, []byte{})
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"fence outside case", "```mycc\nx;\n```\n", "outside of test case"},
		{"unknown fence", "## Test: a\n\n```wasm\n```\n", "unknown fence language 'wasm'"},
		{"no source", "## Test: a\n\n```output\n01\n```\n", "has no mycc fence"},
		{"no expectation", "## Test: a\n\n```mycc\nx;\n```\n", "has no output, result or error fence"},
		{"two sources", "## Test: a\n\n```mycc\n```\n\n```mycc\n```\n", "multiple mycc fences"},
		{"bad hex", "## Test: a\n\n```mycc\n```\n\n```output\nzz\n```\n", "invalid hex byte 'zz'"},
		{"unknown kind", "## Test: a\n\n```mycc\n```\n\n```error\nOops\n```\n", "unknown error kind 'Oops'"},
		{"error and run", "## Test: a\n\n```mycc\n```\n\n```error\nUsedId\n```\n\n```output\n01\n```\n", "expects both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.md)
			be.Err(t, err, tt.want)
		})
	}
}

func TestCheckReportsMismatch(t *testing.T) {
	err := Check(Case{Name: "x", Source: "out(1);", Output: []byte{2}}, compiler.Options{})
	be.Err(t, err, "output: got 01, want 02")

	err = Check(Case{Name: "x", Source: "let a: u8 = 1;", Error: "UsedId"}, compiler.Options{})
	be.Err(t, err, "expected UsedId error, compiled fine")

	err = Check(Case{Name: "x", Source: "let a: u8; let a: u8;", Error: "WrongType"}, compiler.Options{})
	be.Err(t, err, "expected WrongType error")

	err = Check(Case{Name: "x", Source: "out(1);", Result: []byte{1}}, compiler.Options{})
	be.Err(t, err, "no main")
}
