package mir

import (
	"shadec/internal/ast"
	"shadec/internal/types"
)

// InstrKind enumerates instruction kinds in MIR.
type InstrKind uint8

const (
	InstrAssign InstrKind = iota
	InstrCall
)

type Instr struct {
	Kind InstrKind

	Assign AssignInstr
	Call   CallInstr
}

// AssignInstr stores the value of Src into Dst.
type AssignInstr struct {
	Dst Place
	Src RValue
}

type CallInstr struct {
	HasDst bool
	Dst    Place
	Callee FuncID
	Name   string
	Args   []Operand
}

type OperandKind uint8

const (
	OperandConst OperandKind = iota
	// OperandCopy reads the current value of a place.
	OperandCopy
)

type Operand struct {
	Kind OperandKind
	Type types.Kind

	Const Const
	Place Place
}

type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	// ConstZero is the all-zero value of Operand.Type (global initialisers).
	ConstZero
	// ConstVoid is the value of a void expression.
	ConstVoid
)

type Const struct {
	Kind       ConstKind
	IntValue   int64
	FloatValue float64
	BoolValue  bool
}

type RValueKind uint8

const (
	RValueUse RValueKind = iota
	RValueUnaryOp
	RValueBinaryOp
	// RValueExtract reads one lane of a vector or one column of a matrix.
	RValueExtract
	// RValueInsert yields a copy of a vector/matrix with one lane replaced.
	RValueInsert
	// RValueShuffle builds a vector from selected lanes of another vector.
	RValueShuffle
	// RValueSplat builds a vector with every lane equal to a scalar.
	RValueSplat
)

type RValue struct {
	Kind RValueKind

	Use     Operand
	Unary   UnaryOp
	Binary  BinaryOp
	Extract ExtractOp
	Insert  InsertOp
	Shuffle ShuffleOp
	Splat   SplatOp
}

type UnaryKind uint8

const (
	UnaryNeg UnaryKind = iota
	UnaryNot
)

func (k UnaryKind) String() string {
	if k == UnaryNot {
		return "not"
	}
	return "neg"
}

type UnaryOp struct {
	Op      UnaryKind
	Operand Operand
}

// BinaryOp covers arithmetic, comparison and logical operators. Operands are
// scalars of one type, vectors/matrices of one type, or a vector/matrix pair
// for multiplication.
type BinaryOp struct {
	Op    ast.ExprBinaryOp
	Left  Operand
	Right Operand
}

type ExtractOp struct {
	Vector Operand
	Index  Operand
}

type InsertOp struct {
	Vector Operand
	Index  Operand
	Value  Operand
}

type ShuffleOp struct {
	Vector Operand
	Lanes  []int
}

type SplatOp struct {
	Value Operand
	Type  types.Kind
}
