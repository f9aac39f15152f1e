package sema

import (
	"fmt"

	"shadec/internal/ast"
	"shadec/internal/types"
)

func (tc *typeChecker) typeBinary(id ast.ExprID, expr *ast.Expr) types.Kind {
	data, _ := tc.builder.Exprs.Binary(id)
	if data.Op.Category() == ast.BinaryAssignment {
		return tc.typeAssign(data, expr)
	}
	left := tc.typeExpr(data.Left)
	right := tc.typeExpr(data.Right)

	var (
		ty    types.Kind
		issue types.Issue
	)
	switch data.Op.Category() {
	case ast.BinaryArithmetic:
		op, _ := data.Op.Arith()
		ty, issue = types.Arithmetic(op, left, right)
	case ast.BinaryRelational:
		ty, issue = types.Relational(left, right)
	case ast.BinaryEquality:
		ty, issue = types.Equality(left, right)
	case ast.BinaryLogical:
		ty, issue = types.Logical(left, right)
	}
	tc.reportIssue(issue, expr.Span, fmt.Sprintf("%s %s %s", left, data.Op, right))
	return ty
}

func (tc *typeChecker) typeAssign(data *ast.ExprBinaryData, expr *ast.Expr) types.Kind {
	target := tc.typeExpr(data.Left)
	value := tc.typeExpr(data.Right)
	if !tc.requireAssignable(data.Left, target) {
		return types.KindError
	}
	var (
		ty    types.Kind
		issue types.Issue
	)
	if op, compound := data.Op.Arith(); compound {
		ty, issue = types.CompoundAssignment(op, target, value)
	} else {
		ty, issue = types.Assignment(target, value)
	}
	tc.reportIssue(issue, expr.Span, fmt.Sprintf("%s %s %s", target, data.Op, value))
	return ty
}

func (tc *typeChecker) typeUnary(id ast.ExprID, expr *ast.Expr) types.Kind {
	data, _ := tc.builder.Exprs.Unary(id)
	operand := tc.typeExpr(data.Operand)
	if data.Op.Mutates() && !tc.requireAssignable(data.Operand, operand) {
		return types.KindError
	}
	ty, issue := types.Arithmetic(data.Op.Arith(), types.KindInvalid, operand)
	tc.reportIssue(issue, expr.Span, fmt.Sprintf("%s%s", data.Op, operand))
	return ty
}

func (tc *typeChecker) typePostfix(id ast.ExprID, expr *ast.Expr) types.Kind {
	data, _ := tc.builder.Exprs.Postfix(id)
	operand := tc.typeExpr(data.Operand)
	if !tc.requireAssignable(data.Operand, operand) {
		return types.KindError
	}
	ty, issue := types.Postfix(operand)
	tc.reportIssue(issue, expr.Span, fmt.Sprintf("%s%s", operand, data.Op))
	return ty
}
