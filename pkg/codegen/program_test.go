package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/SteveSapuko/mycc/pkg/semantics"
	"github.com/SteveSapuko/mycc/pkg/syntax"
)

func generate(src string) ([]Instruction, error) {
	tokens, err := syntax.Tokenize(src)
	if err != nil {
		return nil, err
	}
	stmts, err := syntax.Parse(tokens, src)
	if err != nil {
		return nil, err
	}
	prog, err := semantics.Analyze(stmts)
	if err != nil {
		return nil, err
	}
	return Generate(prog)
}

func labels(code []Instruction) map[string]bool {
	out := make(map[string]bool)
	for _, in := range code {
		if in.Kind == KindLabel {
			out[in.Target] = true
		}
	}
	return out
}

func TestGenerateLayout(t *testing.T) {
	code, err := generate(`
fn twice(x: u8) -> u8 { return x + x; }
fn main() -> u8 { return twice(2) + twice(3); }
`)
	be.Err(t, err, nil)

	got := labels(code)
	for _, want := range []string{"fn_main", "ret_main", "fn_twice", "ret_twice", "site_main_0", "site_twice_0", "site_twice_1"} {
		if !got[want] {
			t.Errorf("missing label %s", want)
		}
	}

	// the entry code zeroes both frame registers and ends in hlt before the
	// first function body
	be.Equal(t, code[0].Kind, KindComment)
	for i, r := range []Reg{SPL, SPH, BPL, BPH} {
		be.Equal(t, code[i+1], Instruction{Op: Imr, Reg: r})
	}
	for _, in := range code {
		if in.Kind == KindLabel && strings.HasPrefix(in.Target, "fn_") {
			break
		}
		if in.Kind == KindOp && in.Op == Jmp {
			be.Equal(t, in.Target, "fn_main")
		}
	}
}

func TestEpilogueDispatch(t *testing.T) {
	code, err := generate("fn f() { } f(); f(); f();")
	be.Err(t, err, nil)

	var bze []string
	inRet := false
	for _, in := range code {
		if in.Kind == KindLabel {
			inRet = in.Target == "ret_f"
		}
		if inRet && in.Kind == KindOp && in.Op == Bze {
			bze = append(bze, in.Target)
		}
	}
	be.Equal(t, bze, []string{"site_f_0", "site_f_1", "site_f_2"})
}

func TestCallSiteLimit(t *testing.T) {
	src := "fn f() { }\n" + strings.Repeat("f();\n", maxSites+1)
	_, err := generate(src)
	var le *LimitError
	be.True(t, errors.As(err, &le))
	be.Equal(t, le.Fn, "f")
	be.Err(t, err, "more than 256 call sites")

	_, err = generate("fn f() { }\n" + strings.Repeat("f();\n", maxSites))
	be.Err(t, err, nil)
}

func TestLimitErrorMessage(t *testing.T) {
	be.Equal(t, (&LimitError{Msg: "stack too deep"}).Error(), "codegen: entry: stack too deep")
	be.Equal(t, (&LimitError{Fn: "f", Msg: "x"}).Error(), "codegen: function f: x")
}
