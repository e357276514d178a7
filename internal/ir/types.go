package ir

import "fmt"

// Type is the static type of an IR value. The set of implementations is closed.
type Type interface {
	Node
	isType()
}

// IntWidth is the bit width of an integer type.
type IntWidth uint8

const (
	Width1  IntWidth = 1
	Width8  IntWidth = 8
	Width16 IntWidth = 16
	Width32 IntWidth = 32
	Width64 IntWidth = 64
)

// Valid reports whether w belongs to the closed width set.
func (w IntWidth) Valid() bool {
	switch w {
	case Width1, Width8, Width16, Width32, Width64:
		return true
	}
	return false
}

// IntType is an integer of a given width and signedness.
type IntType struct {
	Width    IntWidth
	Unsigned bool
}

// FloatType is a 32-bit IEEE float.
type FloatType struct{}

// DoubleType is a 64-bit IEEE float.
type DoubleType struct{}

// VoidType is the absence of a value.
type VoidType struct{}

// PointerType points to a value of Base.
type PointerType struct {
	Base Type
}

// Common types.
var (
	I1     Type = IntType{Width: Width1}
	I8     Type = IntType{Width: Width8}
	I16    Type = IntType{Width: Width16}
	I32    Type = IntType{Width: Width32}
	I64    Type = IntType{Width: Width64}
	U8     Type = IntType{Width: Width8, Unsigned: true}
	U16    Type = IntType{Width: Width16, Unsigned: true}
	U32    Type = IntType{Width: Width32, Unsigned: true}
	U64    Type = IntType{Width: Width64, Unsigned: true}
	Float  Type = FloatType{}
	Double Type = DoubleType{}
	Void   Type = VoidType{}
)

// NewIntType describes a signed or unsigned integer.
func NewIntType(width IntWidth, unsigned bool) IntType {
	return IntType{Width: width, Unsigned: unsigned}
}

// NewPointerType describes a pointer to base.
func NewPointerType(base Type) PointerType {
	return PointerType{Base: base}
}

func (IntType) isType()     {}
func (FloatType) isType()   {}
func (DoubleType) isType()  {}
func (VoidType) isType()    {}
func (PointerType) isType() {}

func (t IntType) String() string {
	if t.Unsigned {
		return fmt.Sprintf("u%d", t.Width)
	}
	return fmt.Sprintf("i%d", t.Width)
}

func (FloatType) String() string  { return "float" }
func (DoubleType) String() string { return "double" }
func (VoidType) String() string   { return "void" }

func (t PointerType) String() string {
	return typeString(t.Base) + "*"
}

// TypesEqual reports structural equality: same variant and equal fields,
// recursively through pointer bases.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case IntType:
		bt, ok := b.(IntType)
		return ok && at == bt
	case FloatType:
		_, ok := b.(FloatType)
		return ok
	case DoubleType:
		_, ok := b.(DoubleType)
		return ok
	case VoidType:
		_, ok := b.(VoidType)
		return ok
	case PointerType:
		bt, ok := b.(PointerType)
		return ok && TypesEqual(at.Base, bt.Base)
	}
	return false
}

// SizeOf returns the storage size of t in bytes.
func SizeOf(t Type) int {
	switch tt := t.(type) {
	case IntType:
		if tt.Width == Width1 {
			return 1
		}
		return int(tt.Width) / 8
	case FloatType:
		return 4
	case DoubleType, PointerType:
		return 8
	default:
		return 0
	}
}

// IsInteger reports whether t is an integer type.
func IsInteger(t Type) bool {
	_, ok := t.(IntType)
	return ok
}

// IsFloating reports whether t is float or double.
func IsFloating(t Type) bool {
	switch t.(type) {
	case FloatType, DoubleType:
		return true
	}
	return false
}

func typeString(t Type) string {
	if t == nil {
		return "<type?>"
	}
	return t.String()
}
