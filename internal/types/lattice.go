package types

// Issue is the outcome of a lattice query. The checker maps each issue to one
// diagnostic; IssueNone means the result is usable (possibly KindError, which
// is never reported twice).
type Issue uint8

const (
	IssueNone Issue = iota
	IssueIncompatibleOperand
	IssueIncompatibleOperands
	IssueInaccessibleSwizzle
	IssueInvalidSwizzle
	IssueSwizzleOutOfBound
	IssueOversizedVector
	IssueNotIndexable
	IssueIndexNotInteger
)

func (i Issue) String() string {
	switch i {
	case IssueNone:
		return "none"
	case IssueIncompatibleOperand:
		return "incompatible operand"
	case IssueIncompatibleOperands:
		return "incompatible operands"
	case IssueInaccessibleSwizzle:
		return "inaccessible swizzle"
	case IssueInvalidSwizzle:
		return "invalid swizzle"
	case IssueSwizzleOutOfBound:
		return "swizzle out of bound"
	case IssueOversizedVector:
		return "oversized vector"
	case IssueNotIndexable:
		return "not indexable"
	case IssueIndexNotInteger:
		return "index not integer"
	default:
		return "unknown issue"
	}
}

// ArithOp is the operator family handled by Arithmetic. Add and Sub double as
// unary plus and minus when the left operand is absent.
type ArithOp uint8

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithInc
	ArithDec
)

func (op ArithOp) String() string {
	switch op {
	case ArithAdd:
		return "+"
	case ArithSub:
		return "-"
	case ArithMul:
		return "*"
	case ArithDiv:
		return "/"
	case ArithInc:
		return "++"
	case ArithDec:
		return "--"
	default:
		return "?"
	}
}

func (op ArithOp) unary() bool {
	return op == ArithAdd || op == ArithSub || op == ArithInc || op == ArithDec
}

func poisoned(kinds ...Kind) bool {
	for _, k := range kinds {
		if k == KindError {
			return true
		}
	}
	return false
}

// Arithmetic combines operand types of + - * / ++ --. Pass KindInvalid as left
// for the unary form.
func Arithmetic(op ArithOp, left, right Kind) (Kind, Issue) {
	if poisoned(left, right) {
		return KindError, IssueNone
	}
	if left == KindInvalid {
		if op.unary() && right.Family()&FamilyNumeric != 0 {
			return right, IssueNone
		}
		return KindError, IssueIncompatibleOperand
	}
	if op == ArithInc || op == ArithDec || right == KindInvalid {
		return KindError, IssueIncompatibleOperands
	}
	if left == right {
		if left.Family()&FamilyNumeric == 0 {
			return KindError, IssueIncompatibleOperands
		}
		return left, IssueNone
	}
	// скаляр float растягивается на все компоненты вектора/матрицы
	if left == KindFloat && right.Family()&(FamilyVector|FamilyMatrix) != 0 {
		return right, IssueNone
	}
	if right == KindFloat && left.Family()&(FamilyVector|FamilyMatrix) != 0 {
		return left, IssueNone
	}
	if op == ArithMul {
		if vec, ok := vectorMatrixPair(left, right); ok {
			return vec, IssueNone
		}
	}
	return KindError, IssueIncompatibleOperands
}

func vectorMatrixPair(a, b Kind) (Kind, bool) {
	if a.IsMatrix() {
		a, b = b, a
	}
	if a.IsVector() && b.IsMatrix() && a.Lanes() == b.Lanes() {
		return a, true
	}
	return KindInvalid, false
}

// Relational handles < <= > >=: only int/int and float/float compare.
func Relational(left, right Kind) (Kind, Issue) {
	if poisoned(left, right) {
		return KindError, IssueNone
	}
	if left == right && (left == KindInt || left == KindFloat) {
		return KindBool, IssueNone
	}
	return KindError, IssueIncompatibleOperands
}

// Equality handles == and !=.
func Equality(left, right Kind) (Kind, Issue) {
	if poisoned(left, right) {
		return KindError, IssueNone
	}
	if left != KindInvalid && IsEquivalent(left, right) {
		return KindBool, IssueNone
	}
	return KindError, IssueIncompatibleOperands
}

// Logical handles && and ||.
func Logical(left, right Kind) (Kind, Issue) {
	if poisoned(left, right) {
		return KindError, IssueNone
	}
	if left == KindBool && right == KindBool {
		return KindBool, IssueNone
	}
	return KindError, IssueIncompatibleOperands
}

// Assignment requires equivalent sides and yields the target type.
func Assignment(target, value Kind) (Kind, Issue) {
	if poisoned(target, value) {
		return KindError, IssueNone
	}
	if target != KindInvalid && IsEquivalent(target, value) {
		return target, IssueNone
	}
	return KindError, IssueIncompatibleOperands
}

// CompoundAssignment types `target op= value` as Assignment(target, Arithmetic(op, target, value)).
func CompoundAssignment(op ArithOp, target, value Kind) (Kind, Issue) {
	combined, issue := Arithmetic(op, target, value)
	if issue != IssueNone || combined == KindError {
		return combined, issue
	}
	return Assignment(target, combined)
}

// Postfix handles x++ and x--.
func Postfix(operand Kind) (Kind, Issue) {
	if poisoned(operand) {
		return KindError, IssueNone
	}
	if operand.Family()&FamilyNumeric != 0 {
		return operand, IssueNone
	}
	return KindError, IssueIncompatibleOperand
}

// Index types base[subscript]: a vector yields float, a matrix yields its column.
func Index(base, subscript Kind) (Kind, Issue) {
	if poisoned(base, subscript) {
		return KindError, IssueNone
	}
	if !base.IsVector() && !base.IsMatrix() {
		return KindError, IssueNotIndexable
	}
	if subscript != KindInt {
		return KindError, IssueIndexNotInteger
	}
	return base.LaneType(), IssueNone
}
