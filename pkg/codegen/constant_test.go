package codegen

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/SteveSapuko/mycc/pkg/semantics"
	"github.com/SteveSapuko/mycc/pkg/types"
)

func lit(v uint64, k types.Kind) *semantics.Literal {
	return &semantics.Literal{Value: v, T: types.Prim(k)}
}

func TestConstantFolding(t *testing.T) {
	i8 := types.Prim(types.I8)
	minusOne := &semantics.Unary{Op: semantics.OpNeg, X: &semantics.Cast{X: lit(1, types.U8), T: i8}, T: i8}

	tests := []struct {
		name string
		e    semantics.Expr
		want uint64
	}{
		{"u8 add wraps", &semantics.Binary{Op: semantics.OpAdd, Left: lit(0xFF, types.U8), Right: lit(1, types.U8), T: types.Prim(types.U8)}, 0},
		{"u16 add carries", &semantics.Binary{Op: semantics.OpAdd, Left: lit(0x00FF, types.U16), Right: lit(1, types.U16), T: types.Prim(types.U16)}, 0x0100},
		{"u8 sub wraps", &semantics.Binary{Op: semantics.OpSub, Left: lit(0, types.U8), Right: lit(1, types.U8), T: types.Prim(types.U8)}, 0xFF},
		{"nor", &semantics.Binary{Op: semantics.OpNor, Left: lit(0x0F, types.U8), Right: lit(0x30, types.U8), T: types.Prim(types.U8)}, 0xC0},
		{"negate", minusOne, 0xFF},
		{"signed less", &semantics.Binary{Op: semantics.OpLt, Left: minusOne, Right: lit(0, types.I8), T: types.Bool}, 1},
		{"unsigned less", &semantics.Binary{Op: semantics.OpLt, Left: lit(0xFF, types.U8), Right: lit(0, types.U8), T: types.Bool}, 0},
		{"sign-extending cast", &semantics.Cast{X: minusOne, T: types.Prim(types.I16)}, 0xFFFF},
		{"zero-extending cast", &semantics.Cast{X: lit(0xFF, types.U8), T: types.Prim(types.U16)}, 0xFF},
		{"narrowing cast", &semantics.Cast{X: lit(0x1234, types.U16), T: types.Prim(types.U8)}, 0x34},
		{"shift left drops bits", &semantics.Shift{Left: true, X: lit(0x81, types.U8), Amount: 1, T: types.Prim(types.U8)}, 0x02},
		{"arithmetic shift right", &semantics.Shift{X: &semantics.Cast{X: lit(0x80, types.U8), T: i8}, Amount: 1, T: i8}, 0xC0},
		{"logical shift right", &semantics.Shift{X: lit(0x80, types.U8), Amount: 7, T: types.Prim(types.U8)}, 1},
		{"not", &semantics.Unary{Op: semantics.OpNot, X: lit(7, types.U8), T: types.Prim(types.U8)}, 0},
		{"and short-circuits", &semantics.Logical{And: true, Left: lit(0, types.U8), Right: lit(9, types.U8)}, 0},
		{"or keeps left", &semantics.Logical{Left: lit(3, types.U8), Right: lit(0, types.U8)}, 3},
		{"enum value", &semantics.EnumValue{Variant: "Green", Value: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := constant(tt.e)
			be.True(t, ok)
			be.Equal(t, got, tt.want)
		})
	}
}

func TestNotConstant(t *testing.T) {
	read := &semantics.Read{Path: &semantics.VarRef{Name: "x", T: types.Prim(types.U8)}}
	_, ok := constant(&semantics.Binary{Op: semantics.OpAdd, Left: lit(1, types.U8), Right: read, T: types.Prim(types.U8)})
	be.True(t, !ok)
}

func TestLittleEndian(t *testing.T) {
	be.Equal(t, littleEndian(0x01020304, 4), []byte{4, 3, 2, 1})
	be.Equal(t, littleEndian(0xABCD, 1), []byte{0xCD})
}
