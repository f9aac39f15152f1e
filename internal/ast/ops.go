package ast

import "shadec/internal/types"

// ExprBinaryOp enumerates binary operators, fixed when the tree is built.
type ExprBinaryOp uint8

const (
	// Арифметические
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	// Сравнения
	ExprBinaryLess
	ExprBinaryLessEq
	ExprBinaryGreater
	ExprBinaryGreaterEq
	ExprBinaryEq
	ExprBinaryNotEq
	// Логические
	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr
	// Присваивания
	ExprBinaryAssign
	ExprBinaryAddAssign
	ExprBinarySubAssign
	ExprBinaryMulAssign
	ExprBinaryDivAssign
)

var binaryOpText = [...]string{
	ExprBinaryAdd:        "+",
	ExprBinarySub:        "-",
	ExprBinaryMul:        "*",
	ExprBinaryDiv:        "/",
	ExprBinaryLess:       "<",
	ExprBinaryLessEq:     "<=",
	ExprBinaryGreater:    ">",
	ExprBinaryGreaterEq:  ">=",
	ExprBinaryEq:         "==",
	ExprBinaryNotEq:      "!=",
	ExprBinaryLogicalAnd: "&&",
	ExprBinaryLogicalOr:  "||",
	ExprBinaryAssign:     "=",
	ExprBinaryAddAssign:  "+=",
	ExprBinarySubAssign:  "-=",
	ExprBinaryMulAssign:  "*=",
	ExprBinaryDivAssign:  "/=",
}

func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// ParseBinaryOp maps an operator token to its enum.
func ParseBinaryOp(tok string) (ExprBinaryOp, bool) {
	for i, text := range binaryOpText {
		if text == tok {
			return ExprBinaryOp(i), true
		}
	}
	return 0, false
}

// BinaryCategory groups operators by the lattice rule that types them.
type BinaryCategory uint8

const (
	BinaryArithmetic BinaryCategory = iota
	BinaryRelational
	BinaryEquality
	BinaryLogical
	BinaryAssignment
)

func (op ExprBinaryOp) Category() BinaryCategory {
	switch {
	case op <= ExprBinaryDiv:
		return BinaryArithmetic
	case op <= ExprBinaryGreaterEq:
		return BinaryRelational
	case op <= ExprBinaryNotEq:
		return BinaryEquality
	case op <= ExprBinaryLogicalOr:
		return BinaryLogical
	default:
		return BinaryAssignment
	}
}

// Arith returns the arithmetic operator of + - * / and of their compound
// assignment forms. Plain `=` reports false.
func (op ExprBinaryOp) Arith() (types.ArithOp, bool) {
	switch op {
	case ExprBinaryAdd, ExprBinaryAddAssign:
		return types.ArithAdd, true
	case ExprBinarySub, ExprBinarySubAssign:
		return types.ArithSub, true
	case ExprBinaryMul, ExprBinaryMulAssign:
		return types.ArithMul, true
	case ExprBinaryDiv, ExprBinaryDivAssign:
		return types.ArithDiv, true
	default:
		return 0, false
	}
}

// ExprUnaryOp enumerates prefix operators.
type ExprUnaryOp uint8

const (
	ExprUnaryPlus ExprUnaryOp = iota
	ExprUnaryMinus
	ExprUnaryInc
	ExprUnaryDec
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryPlus:
		return "+"
	case ExprUnaryMinus:
		return "-"
	case ExprUnaryInc:
		return "++"
	case ExprUnaryDec:
		return "--"
	default:
		return "?"
	}
}

func (op ExprUnaryOp) Arith() types.ArithOp {
	switch op {
	case ExprUnaryMinus:
		return types.ArithSub
	case ExprUnaryInc:
		return types.ArithInc
	case ExprUnaryDec:
		return types.ArithDec
	default:
		return types.ArithAdd
	}
}

// Mutates reports whether the operator writes its operand back.
func (op ExprUnaryOp) Mutates() bool {
	return op == ExprUnaryInc || op == ExprUnaryDec
}

func ParseUnaryOp(tok string) (ExprUnaryOp, bool) {
	switch tok {
	case "+":
		return ExprUnaryPlus, true
	case "-":
		return ExprUnaryMinus, true
	case "++":
		return ExprUnaryInc, true
	case "--":
		return ExprUnaryDec, true
	default:
		return 0, false
	}
}

// ExprPostfixOp enumerates x++ and x--.
type ExprPostfixOp uint8

const (
	ExprPostfixInc ExprPostfixOp = iota
	ExprPostfixDec
)

func (op ExprPostfixOp) String() string {
	if op == ExprPostfixDec {
		return "--"
	}
	return "++"
}

func ParsePostfixOp(tok string) (ExprPostfixOp, bool) {
	switch tok {
	case "++":
		return ExprPostfixInc, true
	case "--":
		return ExprPostfixDec, true
	default:
		return 0, false
	}
}
