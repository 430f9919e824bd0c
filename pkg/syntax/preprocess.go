package syntax

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Preprocess expands `#include "file"` and `#define NAME VALUE` directives.
// Included files are resolved against baseDir first and the working
// directory second; each file is spliced at most once and include cycles are
// errors. Directive lines are replaced by blank lines so line numbers of the
// including file stay put.
func Preprocess(src string, baseDir string) (string, error) {
	pp := &preprocessor{
		defines: make(map[string]string),
		done:    make(map[string]bool),
	}
	return pp.run(src, baseDir, nil)
}

type preprocessor struct {
	defines map[string]string
	done    map[string]bool
}

func (pp *preprocessor) run(src, baseDir string, stack []string) (string, error) {
	lines := strings.Split(src, "\n")
	var out strings.Builder

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#define"):
			fields := strings.Fields(strings.TrimPrefix(trimmed, "#define"))
			if len(fields) == 0 || !isIdent(fields[0]) {
				return "", fmt.Errorf("line %d: malformed #define", i+1)
			}
			pp.defines[fields[0]] = pp.expand(strings.Join(fields[1:], " "))

		case strings.HasPrefix(trimmed, "#include"):
			parts := strings.SplitN(trimmed, "\"", 3)
			if len(parts) < 3 {
				return "", fmt.Errorf("line %d: invalid include directive: %s", i+1, trimmed)
			}
			text, err := pp.include(parts[1], baseDir, stack)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			out.WriteString(text)

		case strings.HasPrefix(trimmed, "#"):
			return "", fmt.Errorf("line %d: unknown directive %s", i+1, strings.Fields(trimmed)[0])

		default:
			out.WriteString(pp.expand(line))
		}
		if i < len(lines)-1 {
			out.WriteString("\n")
		}
	}
	return out.String(), nil
}

func (pp *preprocessor) include(name, baseDir string, stack []string) (string, error) {
	path := filepath.Join(baseDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if cwdPath, absErr := filepath.Abs(name); absErr == nil {
			if _, err := os.Stat(cwdPath); err == nil {
				path = cwdPath
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for _, s := range stack {
		if s == abs {
			return "", fmt.Errorf("circular include of %s", name)
		}
	}
	if pp.done[abs] {
		return "", nil
	}
	pp.done[abs] = true

	content, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read included file %s: %w", name, err)
	}
	return pp.run(string(content), filepath.Dir(abs), append(stack, abs))
}

// expand substitutes defined names on identifier boundaries. Text after a
// line comment is left untouched.
func (pp *preprocessor) expand(line string) string {
	if len(pp.defines) == 0 {
		return line
	}
	var sb strings.Builder
	n := len(line)
	for i := 0; i < n; {
		if strings.HasPrefix(line[i:], "//") {
			sb.WriteString(line[i:])
			break
		}
		if !isIdentStart(line[i]) {
			sb.WriteByte(line[i])
			i++
			continue
		}
		start := i
		for i < n && isIdentPart(line[i]) {
			i++
		}
		word := line[start:i]
		if v, ok := pp.defines[word]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(word)
		}
	}
	return sb.String()
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
