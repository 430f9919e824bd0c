package semantics

import (
	"fmt"

	"github.com/SteveSapuko/mycc/pkg/syntax"
	"github.com/SteveSapuko/mycc/pkg/types"
)

// ErrorKind is the closed set of analysis failures.
type ErrorKind int

const (
	UsedId ErrorKind = iota
	UnknownType
	UndeclaredVar
	UndeclaredFn
	WrongType
	NotAStruct
	NotAnArray
	NotAnEnum
	NoStructField
	NoEnumVariant
	ArgCount
	FnDuplicateParams
	StructDuplicateFields
	EnumDuplicateVariants
	NotPrimitive
	ShiftAmountErr
	CantDeref
	CantBreak
	CantReturn
	IllegalLocalDeclr
	RecursiveStruct
	NotAssignable
)

var errorKindNames = [...]string{
	UsedId:                "UsedId",
	UnknownType:           "UnknownType",
	UndeclaredVar:         "UndeclaredVar",
	UndeclaredFn:          "UndeclaredFn",
	WrongType:             "WrongType",
	NotAStruct:            "NotAStruct",
	NotAnArray:            "NotAnArray",
	NotAnEnum:             "NotAnEnum",
	NoStructField:         "NoStructField",
	NoEnumVariant:         "NoEnumVariant",
	ArgCount:              "ArgCount",
	FnDuplicateParams:     "FnDuplicateParams",
	StructDuplicateFields: "StructDuplicateFields",
	EnumDuplicateVariants: "EnumDuplicateVariants",
	NotPrimitive:          "NotPrimitive",
	ShiftAmountErr:        "ShiftAmountErr",
	CantDeref:             "CantDeref",
	CantBreak:             "CantBreak",
	CantReturn:            "CantReturn",
	IllegalLocalDeclr:     "IllegalLocalDeclr",
	RecursiveStruct:       "RecursiveStruct",
	NotAssignable:         "NotAssignable",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseErrorKind maps a kind name back to its value.
func ParseErrorKind(name string) (ErrorKind, bool) {
	for k, n := range errorKindNames {
		if n == name {
			return ErrorKind(k), true
		}
	}
	return 0, false
}

// Error is a structured analysis failure. Tok is the offending token. Which
// of the other fields are set depends on Kind.
type Error struct {
	Kind     ErrorKind
	Tok      syntax.Token
	Expected types.Type // WrongType
	Actual   types.Type // WrongType, NotAStruct, NotAnArray, NotPrimitive, CantDeref
	Name     string     // struct or enum name for NoStructField, NoEnumVariant, RecursiveStruct
	Want     int        // ArgCount
	Got      int        // ArgCount
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Tok.Line, e.Tok.Col, e.message())
}

func (e *Error) message() string {
	name := e.Tok.Text
	switch e.Kind {
	case UsedId:
		return fmt.Sprintf("identifier %q is already declared", name)
	case UnknownType:
		return fmt.Sprintf("unknown type %q", name)
	case UndeclaredVar:
		return fmt.Sprintf("undeclared variable %q", name)
	case UndeclaredFn:
		return fmt.Sprintf("undeclared function %q", name)
	case WrongType:
		return fmt.Sprintf("wrong type: expected %s, found %s", e.Expected, e.Actual)
	case NotAStruct:
		return fmt.Sprintf("cannot access field %q of non-struct type %s", name, e.Actual)
	case NotAnArray:
		return fmt.Sprintf("cannot index into %s", e.Actual)
	case NotAnEnum:
		return fmt.Sprintf("%q is not an enum", name)
	case NoStructField:
		return fmt.Sprintf("struct %s has no field %q", e.Name, name)
	case NoEnumVariant:
		return fmt.Sprintf("enum %s has no variant %q", e.Name, name)
	case ArgCount:
		return fmt.Sprintf("function %q takes %d arguments, got %d", name, e.Want, e.Got)
	case FnDuplicateParams:
		return fmt.Sprintf("duplicate parameter %q", name)
	case StructDuplicateFields:
		return fmt.Sprintf("struct %s has duplicate field %q", e.Name, name)
	case EnumDuplicateVariants:
		return fmt.Sprintf("duplicate enum variant %q", name)
	case NotPrimitive:
		return fmt.Sprintf("operation needs a primitive type, found %s", e.Actual)
	case ShiftAmountErr:
		return "shift amount must be a literal no larger than the operand width"
	case CantDeref:
		return fmt.Sprintf("cannot dereference %s", e.Actual)
	case CantBreak:
		return "break outside of a loop"
	case CantReturn:
		return "return outside of a function"
	case IllegalLocalDeclr:
		return fmt.Sprintf("%s declarations are only allowed at file scope", name)
	case RecursiveStruct:
		return fmt.Sprintf("struct %s contains itself", e.Name)
	case NotAssignable:
		return "left side of assignment is not assignable"
	}
	return e.Kind.String()
}

func errAt(kind ErrorKind, tok syntax.Token) *Error {
	return &Error{Kind: kind, Tok: tok}
}

func wrongType(expected, actual types.Type, tok syntax.Token) *Error {
	return &Error{Kind: WrongType, Tok: tok, Expected: expected, Actual: actual}
}

func withActual(kind ErrorKind, actual types.Type, tok syntax.Token) *Error {
	return &Error{Kind: kind, Tok: tok, Actual: actual}
}
