package syntax

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestPreprocessDefines(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name:     "Simple define",
			src:      "#define N 10\nlet x: u8 = N;",
			expected: "\nlet x: u8 = 10;",
		},
		{
			name:     "Nested define",
			src:      "#define A 4\n#define B (A + 1)\nB;",
			expected: "\n\n(4 + 1);",
		},
		{
			name:     "Word boundary",
			src:      "#define N 3\nlet NN: u8 = N;",
			expected: "\nlet NN: u8 = 3;",
		},
		{
			name:     "Comments untouched",
			src:      "#define N 3\nN; // N stays",
			expected: "\n3; // N stays",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Preprocess(tt.src, ".")
			be.Err(t, err, nil)
			be.Equal(t, got, tt.expected)
		})
	}
}

func TestPreprocessInclude(t *testing.T) {
	dir := t.TempDir()
	lib := "#define W 2\nfn twice(x: u8) -> u8 { return x + x; }"
	be.Err(t, os.WriteFile(filepath.Join(dir, "lib.mc"), []byte(lib), 0644), nil)

	src := "#include \"lib.mc\"\n#include \"lib.mc\"\nlet y: u8 = twice(W);"
	got, err := Preprocess(src, dir)
	be.Err(t, err, nil)
	be.Equal(t, got, "\nfn twice(x: u8) -> u8 { return x + x; }\n\nlet y: u8 = twice(2);")
}

func TestPreprocessCircularInclude(t *testing.T) {
	dir := t.TempDir()
	be.Err(t, os.WriteFile(filepath.Join(dir, "a.mc"), []byte(`#include "b.mc"`), 0644), nil)
	be.Err(t, os.WriteFile(filepath.Join(dir, "b.mc"), []byte(`#include "a.mc"`), 0644), nil)

	_, err := Preprocess(`#include "a.mc"`, dir)
	be.Err(t, err, "circular include")
}

func TestPreprocessUnknownDirective(t *testing.T) {
	_, err := Preprocess("#pragma once", ".")
	be.Err(t, err, "unknown directive #pragma")
}
