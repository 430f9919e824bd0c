package codegen

import (
	"github.com/SteveSapuko/mycc/pkg/semantics"
	"github.com/SteveSapuko/mycc/pkg/types"
)

func bitWidth(t types.Type) int {
	if t.Kind == types.Enum {
		return 8
	}
	return t.Bits()
}

func mask(v uint64, t types.Type) uint64 {
	b := bitWidth(t)
	if b >= 64 {
		return v
	}
	return v & (1<<b - 1)
}

func signExtend(v uint64, t types.Type) uint64 {
	b := bitWidth(t)
	if !t.IsSigned() || b >= 64 || v&(1<<(b-1)) == 0 {
		return v
	}
	return v | ^(1<<b - 1)
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// littleEndian splits v into n bytes, least significant first.
func littleEndian(v uint64, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// constant folds e when every leaf is a literal or an enum value.
func constant(e semantics.Expr) (uint64, bool) {
	switch e := e.(type) {
	case *semantics.Literal:
		return mask(e.Value, e.T), true
	case *semantics.EnumValue:
		return uint64(e.Value), true

	case *semantics.Cast:
		x, ok := constant(e.X)
		if !ok {
			return 0, false
		}
		return mask(signExtend(x, e.X.Type()), e.T), true

	case *semantics.Unary:
		x, ok := constant(e.X)
		if !ok {
			return 0, false
		}
		if e.Op == semantics.OpNot {
			return boolValue(x == 0), true
		}
		return mask(-x, e.T), true

	case *semantics.Shift:
		x, ok := constant(e.X)
		if !ok {
			return 0, false
		}
		if e.Left {
			return mask(x<<e.Amount, e.T), true
		}
		if e.T.IsSigned() {
			return mask(uint64(int64(signExtend(x, e.T))>>e.Amount), e.T), true
		}
		return x >> e.Amount, true

	case *semantics.Logical:
		l, ok := constant(e.Left)
		if !ok {
			return 0, false
		}
		r, ok := constant(e.Right)
		if !ok {
			return 0, false
		}
		if e.And == (l == 0) {
			return l, true
		}
		return r, true

	case *semantics.Binary:
		if !e.Left.Type().IsPrimitive() && e.Left.Type().Kind != types.Enum {
			return 0, false
		}
		l, ok := constant(e.Left)
		if !ok {
			return 0, false
		}
		r, ok := constant(e.Right)
		if !ok {
			return 0, false
		}
		return foldBinary(e.Op, l, r, e.Left.Type()), true
	}
	return 0, false
}

func foldBinary(op semantics.BinOp, l, r uint64, t types.Type) uint64 {
	switch op {
	case semantics.OpAdd:
		return mask(l+r, t)
	case semantics.OpSub:
		return mask(l-r, t)
	case semantics.OpAnd:
		return l & r
	case semantics.OpOr:
		return l | r
	case semantics.OpNor:
		return mask(^(l | r), t)
	case semantics.OpEq:
		return boolValue(l == r)
	case semantics.OpNe:
		return boolValue(l != r)
	}

	var less func(a, b uint64) bool
	if t.IsSigned() {
		less = func(a, b uint64) bool { return int64(signExtend(a, t)) < int64(signExtend(b, t)) }
	} else {
		less = func(a, b uint64) bool { return a < b }
	}
	switch op {
	case semantics.OpLt:
		return boolValue(less(l, r))
	case semantics.OpGt:
		return boolValue(less(r, l))
	case semantics.OpLe:
		return boolValue(!less(r, l))
	case semantics.OpGe:
		return boolValue(!less(l, r))
	}
	panic("codegen: unknown operator " + op.String())
}
