package semantics

import (
	"fmt"

	"github.com/SteveSapuko/mycc/pkg/syntax"
	"github.com/SteveSapuko/mycc/pkg/types"
)

// literalType is the smallest unsigned type that holds v.
func literalType(v uint64) types.Type {
	switch {
	case v <= 0xFF:
		return types.Prim(types.U8)
	case v <= 0xFFFF:
		return types.Prim(types.U16)
	case v <= 0xFFFFFFFF:
		return types.Prim(types.U32)
	}
	return types.Prim(types.U64)
}

func (a *analyzer) expr(e syntax.Expr) (Expr, error) {
	switch e := e.(type) {
	case *syntax.GroupExpr:
		return a.expr(e.X)
	case *syntax.Literal:
		return &Literal{Value: e.Value, T: literalType(e.Value)}, nil
	case *syntax.PathExpr:
		v, err := a.variable(e.Path)
		if err != nil {
			return nil, err
		}
		return &Read{Path: v}, nil
	case *syntax.Assign:
		return a.assign(e)
	case *syntax.LogicalExpr:
		return a.logical(e)
	case *syntax.BinaryExpr:
		return a.binary(e)
	case *syntax.ShiftExpr:
		return a.shift(e)
	case *syntax.UnaryExpr:
		return a.unary(e)
	case *syntax.CastExpr:
		return a.cast(e)
	case *syntax.CallExpr:
		return a.call(e)
	case *syntax.EnumValue:
		return a.enumValue(e)
	case *syntax.RefExpr:
		return a.ref(e)
	}
	panic(fmt.Sprintf("semantics: unexpected expression %T", e))
}

func (a *analyzer) variable(v syntax.Variable) (Variable, error) {
	switch v := v.(type) {
	case *syntax.VarName:
		t, ok := a.ss.LookupVar(v.Name.Text)
		if !ok {
			return nil, errAt(UndeclaredVar, v.Name)
		}
		return &VarRef{Name: v.Name.Text, T: t}, nil

	case *syntax.FieldAccess:
		head, err := a.variable(v.Head)
		if err != nil {
			return nil, err
		}
		ht := head.Type()
		if ht.Kind != types.Struct {
			return nil, withActual(NotAStruct, ht, v.Field)
		}
		tmpl, _ := a.ss.Types().Struct(ht.Name)
		f, ok := tmpl.Field(v.Field.Text)
		if !ok {
			return nil, &Error{Kind: NoStructField, Tok: v.Field, Name: tmpl.Name}
		}
		return &Field{Head: head, Name: f.Name, Offset: f.Offset, T: f.Type}, nil

	case *syntax.IndexAccess:
		head, err := a.variable(v.Head)
		if err != nil {
			return nil, err
		}
		ht := head.Type()
		if ht.Kind != types.Array && ht.Kind != types.Pointer {
			return nil, withActual(NotAnArray, ht, v.Open)
		}
		idx, err := a.expr(v.Index)
		if err != nil {
			return nil, err
		}
		if k := idx.Type().Kind; k != types.U8 && k != types.U16 {
			return nil, withActual(NotAnArray, idx.Type(), v.Index.First())
		}
		return &Index{Head: head, Index: idx, T: *ht.Elem}, nil
	}
	panic(fmt.Sprintf("semantics: unexpected variable %T", v))
}

func (a *analyzer) assign(e *syntax.Assign) (Expr, error) {
	var target Expr
	switch t := e.Target.(type) {
	case *syntax.PathExpr:
		v, err := a.variable(t.Path)
		if err != nil {
			return nil, err
		}
		target = &Read{Path: v}
	case *syntax.RefExpr:
		if t.Op.Text != "*" {
			return nil, errAt(NotAssignable, e.Op)
		}
		d, err := a.ref(t)
		if err != nil {
			return nil, err
		}
		target = d
	default:
		return nil, errAt(NotAssignable, e.Op)
	}

	value, err := a.expr(e.Value)
	if err != nil {
		return nil, err
	}
	if !types.Equal(target.Type(), value.Type()) {
		return nil, wrongType(target.Type(), value.Type(), e.Value.First())
	}
	return &Assign{Target: target, Value: value, T: target.Type()}, nil
}

func (a *analyzer) logical(e *syntax.LogicalExpr) (Expr, error) {
	left, err := a.expr(e.Left)
	if err != nil {
		return nil, err
	}
	if !types.Equal(left.Type(), types.Bool) {
		return nil, wrongType(types.Bool, left.Type(), e.Left.First())
	}
	right, err := a.expr(e.Right)
	if err != nil {
		return nil, err
	}
	if !types.Equal(right.Type(), types.Bool) {
		return nil, wrongType(types.Bool, right.Type(), e.Right.First())
	}
	return &Logical{And: e.Op.Text == "&&", Left: left, Right: right}, nil
}

func (a *analyzer) binary(e *syntax.BinaryExpr) (Expr, error) {
	op, ok := binOps[e.Op.Text]
	if !ok {
		panic(fmt.Sprintf("semantics: unknown binary operator %q", e.Op.Text))
	}
	left, err := a.expr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := a.expr(e.Right)
	if err != nil {
		return nil, err
	}

	lt := left.Type()
	switch op {
	case OpEq, OpNe:
		if lt.Kind == types.Void {
			return nil, withActual(NotPrimitive, lt, e.Op)
		}
	default:
		if !lt.IsPrimitive() {
			return nil, withActual(NotPrimitive, lt, e.Op)
		}
	}
	if !types.Equal(lt, right.Type()) {
		return nil, wrongType(lt, right.Type(), e.Right.First())
	}

	t := lt
	if op.IsComparison() {
		t = types.Bool
	}
	return &Binary{Op: op, Left: left, Right: right, T: t}, nil
}

func (a *analyzer) shift(e *syntax.ShiftExpr) (Expr, error) {
	x, err := a.expr(e.Left)
	if err != nil {
		return nil, err
	}
	if !x.Type().IsPrimitive() {
		return nil, withActual(NotPrimitive, x.Type(), e.Op)
	}

	amount := e.Amount
	for {
		g, ok := amount.(*syntax.GroupExpr)
		if !ok {
			break
		}
		amount = g.X
	}
	lit, ok := amount.(*syntax.Literal)
	if !ok || lit.Value > uint64(x.Type().Bits()) {
		return nil, errAt(ShiftAmountErr, e.Amount.First())
	}
	return &Shift{Left: e.Op.Text == "<<", X: x, Amount: uint8(lit.Value), T: x.Type()}, nil
}

func (a *analyzer) unary(e *syntax.UnaryExpr) (Expr, error) {
	x, err := a.expr(e.X)
	if err != nil {
		return nil, err
	}
	if !x.Type().IsPrimitive() {
		return nil, withActual(NotPrimitive, x.Type(), e.Op)
	}
	if e.Op.Text == "!" {
		return &Unary{Op: OpNot, X: x, T: types.Bool}, nil
	}
	return &Unary{Op: OpNeg, X: x, T: x.Type()}, nil
}

func (a *analyzer) cast(e *syntax.CastExpr) (Expr, error) {
	x, err := a.expr(e.X)
	if err != nil {
		return nil, err
	}
	if !x.Type().IsPrimitive() {
		return nil, withActual(NotPrimitive, x.Type(), e.As)
	}
	to, err := a.resolve(e.To)
	if err != nil {
		return nil, err
	}
	if !to.IsPrimitive() {
		return nil, withActual(NotPrimitive, to, e.To.First())
	}
	return &Cast{X: x, T: to}, nil
}

func (a *analyzer) call(e *syntax.CallExpr) (Expr, error) {
	fn, ok := a.ss.LookupFn(e.Name.Text)
	if !ok {
		return nil, errAt(UndeclaredFn, e.Name)
	}
	if len(e.Args) != len(fn.Params) {
		return nil, &Error{Kind: ArgCount, Tok: e.Name, Want: len(fn.Params), Got: len(e.Args)}
	}
	call := &Call{Fn: fn}
	for i, arg := range e.Args {
		typed, err := a.expr(arg)
		if err != nil {
			return nil, err
		}
		if !types.Equal(typed.Type(), fn.Params[i]) {
			return nil, wrongType(fn.Params[i], typed.Type(), arg.First())
		}
		call.Args = append(call.Args, typed)
	}
	return call, nil
}

func (a *analyzer) enumValue(e *syntax.EnumValue) (Expr, error) {
	custom, ok := a.ss.LookupType(e.Enum.Text)
	if !ok {
		return nil, errAt(UnknownType, e.Enum)
	}
	tmpl, ok := custom.(*types.EnumTemplate)
	if !ok {
		return nil, errAt(NotAnEnum, e.Enum)
	}
	d, ok := tmpl.Discriminant(e.Variant.Text)
	if !ok {
		return nil, &Error{Kind: NoEnumVariant, Tok: e.Variant, Name: tmpl.Name}
	}
	return &EnumValue{Variant: e.Variant.Text, Value: d, T: types.EnumOf(tmpl)}, nil
}

func (a *analyzer) ref(e *syntax.RefExpr) (Expr, error) {
	v, err := a.variable(e.Path)
	if err != nil {
		return nil, err
	}
	if e.Op.Text == "&" {
		return &AddrOf{Path: v, T: types.PointerTo(v.Type())}, nil
	}
	if v.Type().Kind != types.Pointer {
		return nil, withActual(CantDeref, v.Type(), e.Op)
	}
	return &Deref{Path: v, T: *v.Type().Elem}, nil
}
