package mir

import (
	"fmt"

	"shadec/internal/ast"
	"shadec/internal/types"
)

func (l *funcLowerer) lowerBinary(id ast.ExprID) (Operand, error) {
	data, _ := l.builder.Exprs.Binary(id)
	if data.Op.Category() == ast.BinaryAssignment {
		return l.lowerAssign(id, data)
	}
	ty, err := l.exprType(id)
	if err != nil {
		return Operand{}, err
	}
	// && и || вычисляют оба операнда, без короткого замыкания
	left, err := l.lowerExpr(data.Left)
	if err != nil {
		return Operand{}, err
	}
	right, err := l.lowerExpr(data.Right)
	if err != nil {
		return Operand{}, err
	}

	switch data.Op.Category() {
	case ast.BinaryArithmetic:
		return l.arith(data.Op, left, right, ty), nil
	case ast.BinaryEquality:
		eq := l.equal(left, right)
		if data.Op == ast.ExprBinaryNotEq {
			return l.temp(types.KindBool, RValue{Kind: RValueUnaryOp, Unary: UnaryOp{Op: UnaryNot, Operand: eq}}), nil
		}
		return eq, nil
	case ast.BinaryRelational, ast.BinaryLogical:
		return l.temp(types.KindBool, binary(data.Op, left, right)), nil
	default:
		return Operand{}, fmt.Errorf("mir: unexpected operator %s", data.Op)
	}
}

func binary(op ast.ExprBinaryOp, left, right Operand) RValue {
	return RValue{Kind: RValueBinaryOp, Binary: BinaryOp{Op: op, Left: left, Right: right}}
}

// arithOp strips the assignment from a compound operator.
func arithOp(op ast.ExprBinaryOp) ast.ExprBinaryOp {
	switch op {
	case ast.ExprBinaryAddAssign:
		return ast.ExprBinaryAdd
	case ast.ExprBinarySubAssign:
		return ast.ExprBinarySub
	case ast.ExprBinaryMulAssign:
		return ast.ExprBinaryMul
	case ast.ExprBinaryDivAssign:
		return ast.ExprBinaryDiv
	default:
		return op
	}
}

// arith lowers + - * /. Equal operand types map to one instruction; a float
// scalar against a vector or matrix is broadcast lane by lane; vector/matrix
// products stay a single multiply.
func (l *funcLowerer) arith(op ast.ExprBinaryOp, left, right Operand, ty types.Kind) Operand {
	op = arithOp(op)
	switch {
	case left.Type == right.Type:
		return l.temp(ty, binary(op, left, right))
	case left.Type == types.KindFloat && (right.Type.IsVector() || right.Type.IsMatrix()):
		return l.broadcast(op, left, right, true)
	case right.Type == types.KindFloat && (left.Type.IsVector() || left.Type.IsMatrix()):
		return l.broadcast(op, right, left, false)
	default:
		return l.temp(ty, binary(op, left, right))
	}
}

// broadcast combines scalar s with every lane of v via extract/compute/insert.
// Matrix columns recurse into their own lanes.
func (l *funcLowerer) broadcast(op ast.ExprBinaryOp, s, v Operand, scalarLeft bool) Operand {
	res := v
	for i := 0; i < v.Type.Lanes(); i++ {
		lane := l.extract(v, i)
		var val Operand
		switch {
		case lane.Type.IsVector():
			val = l.broadcast(op, s, lane, scalarLeft)
		case scalarLeft:
			val = l.temp(types.KindFloat, binary(op, s, lane))
		default:
			val = l.temp(types.KindFloat, binary(op, lane, s))
		}
		res = l.insert(res, i, val)
	}
	return res
}

// equal compares scalars directly and composites lane-wise, and-reducing the results.
func (l *funcLowerer) equal(left, right Operand) Operand {
	if !left.Type.IsVector() && !left.Type.IsMatrix() {
		return l.temp(types.KindBool, binary(ast.ExprBinaryEq, left, right))
	}
	var acc Operand
	for i := 0; i < left.Type.Lanes(); i++ {
		eq := l.equal(l.extract(left, i), l.extract(right, i))
		if i == 0 {
			acc = eq
			continue
		}
		acc = l.temp(types.KindBool, binary(ast.ExprBinaryLogicalAnd, acc, eq))
	}
	return acc
}

func (l *funcLowerer) lowerUnary(id ast.ExprID) (Operand, error) {
	data, _ := l.builder.Exprs.Unary(id)
	switch data.Op {
	case ast.ExprUnaryInc, ast.ExprUnaryDec:
		return l.incDec(data.Operand, data.Op == ast.ExprUnaryDec, true)
	}
	operand, err := l.lowerExpr(data.Operand)
	if err != nil {
		return Operand{}, err
	}
	if data.Op == ast.ExprUnaryPlus {
		return operand, nil
	}
	return l.temp(operand.Type, RValue{Kind: RValueUnaryOp, Unary: UnaryOp{Op: UnaryNeg, Operand: operand}}), nil
}

func (l *funcLowerer) lowerPostfix(id ast.ExprID) (Operand, error) {
	data, _ := l.builder.Exprs.Postfix(id)
	return l.incDec(data.Operand, data.Op == ast.ExprPostfixDec, false)
}

// incDec adds or subtracts one and stores the result back. Prefix forms
// yield the new value, postfix forms the value read before the update.
func (l *funcLowerer) incDec(target ast.ExprID, dec, prefix bool) (Operand, error) {
	cur, err := l.lowerExpr(target)
	if err != nil {
		return Operand{}, err
	}
	var old Operand
	if !prefix {
		old = l.temp(cur.Type, RValue{Kind: RValueUse, Use: cur})
		cur = old
	}
	op := ast.ExprBinaryAdd
	if dec {
		op = ast.ExprBinarySub
	}
	var next Operand
	switch {
	case cur.Type == types.KindInt:
		next = l.temp(cur.Type, binary(op, cur, intConst(1)))
	case cur.Type == types.KindFloat:
		next = l.temp(cur.Type, binary(op, cur, floatConst(1)))
	case cur.Type.IsVector():
		one := l.temp(cur.Type, RValue{Kind: RValueSplat, Splat: SplatOp{Value: floatConst(1), Type: cur.Type}})
		next = l.temp(cur.Type, binary(op, cur, one))
	case cur.Type.IsMatrix():
		next = l.broadcast(op, floatConst(1), cur, false)
	default:
		return Operand{}, fmt.Errorf("mir: cannot increment %s", cur.Type)
	}
	if err := l.storeInto(target, next); err != nil {
		return Operand{}, err
	}
	if prefix {
		return next, nil
	}
	return old, nil
}
