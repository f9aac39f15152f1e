package types

import "fmt"

// Kind enumerates every type of the shading language. Types carry no payload,
// so equivalence is a tag comparison.
type Kind uint8

const (
	// KindInvalid marks an absent operand (unary form) and unresolved type names.
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindFloat
	KindVec2
	KindVec3
	KindVec4
	KindMat2
	KindMat3
	KindMat4
	// KindError poisons an expression whose diagnostic was already reported.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	case KindVec4:
		return "vec4"
	case KindMat2:
		return "mat2"
	case KindMat3:
		return "mat3"
	case KindMat4:
		return "mat4"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

var kindByName = map[string]Kind{
	"void":  KindVoid,
	"bool":  KindBool,
	"int":   KindInt,
	"float": KindFloat,
	"vec2":  KindVec2,
	"vec3":  KindVec3,
	"vec4":  KindVec4,
	"mat2":  KindMat2,
	"mat3":  KindMat3,
	"mat4":  KindMat4,
}

// Parse maps a surface type name to its Kind. "error" is not a surface type.
func Parse(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// IsEquivalent is structural equality of tags.
func IsEquivalent(a, b Kind) bool {
	return a == b
}

func (k Kind) IsError() bool  { return k == KindError }
func (k Kind) IsVector() bool { return k >= KindVec2 && k <= KindVec4 }
func (k Kind) IsMatrix() bool { return k >= KindMat2 && k <= KindMat4 }
func (k Kind) IsScalar() bool { return k == KindInt || k == KindFloat || k == KindBool }

// Lanes returns the component count: vector width, matrix column count, 1 for scalars
// and 0 for void/error/invalid.
func (k Kind) Lanes() int {
	switch {
	case k.IsVector():
		return int(k-KindVec2) + 2
	case k.IsMatrix():
		return int(k-KindMat2) + 2
	case k.IsScalar():
		return 1
	default:
		return 0
	}
}

// LaneType is the type of one component: float for vectors, the column vector for matrices.
func (k Kind) LaneType() Kind {
	switch {
	case k.IsVector():
		return KindFloat
	case k.IsMatrix():
		return VectorOf(k.Lanes())
	default:
		return k
	}
}

// VectorOf returns vecN for n in 2..4, float for n == 1 and KindInvalid otherwise.
func VectorOf(n int) Kind {
	switch n {
	case 1:
		return KindFloat
	case 2, 3, 4:
		return KindVec2 + Kind(n-2)
	default:
		return KindInvalid
	}
}

// MatrixOf returns matN for n in 2..4.
func MatrixOf(n int) Kind {
	if n < 2 || n > 4 {
		return KindInvalid
	}
	return KindMat2 + Kind(n-2)
}

// Family groups kinds by how operators treat them.
type Family uint8

const (
	FamilyNone Family = 0
	FamilyBool Family = 1 << iota
	FamilyInt
	FamilyFloat
	FamilyVector
	FamilyMatrix
)

const (
	FamilyScalarNumeric = FamilyInt | FamilyFloat
	FamilyNumeric       = FamilyScalarNumeric | FamilyVector | FamilyMatrix
)

func (k Kind) Family() Family {
	switch {
	case k == KindBool:
		return FamilyBool
	case k == KindInt:
		return FamilyInt
	case k == KindFloat:
		return FamilyFloat
	case k.IsVector():
		return FamilyVector
	case k.IsMatrix():
		return FamilyMatrix
	default:
		return FamilyNone
	}
}
