package sema

import (
	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/types"
)

// requireAssignable reports NotAssignable unless expr denotes storage.
// A poisoned target was already reported and passes silently as false.
func (tc *typeChecker) requireAssignable(expr ast.ExprID, ty types.Kind) bool {
	if ty == types.KindError {
		return false
	}
	if IsAssignable(tc.builder, tc.result, expr) {
		return true
	}
	tc.report(diag.SemaNotAssignable, tc.exprSpan(expr), "expression is not assignable")
	return false
}

// IsAssignable: a variable, an index into an assignable value, or a swizzle
// of an assignable vector that names each lane at most once.
func IsAssignable(b *ast.Builder, res *Result, expr ast.ExprID) bool {
	node := b.Exprs.Get(expr)
	if node == nil {
		return false
	}
	switch node.Kind {
	case ast.ExprIdent:
		item, ok := res.Refs[expr]
		if !ok {
			return false
		}
		_, isVar := b.Items.Var(item)
		return isVar
	case ast.ExprIndex:
		data, _ := b.Exprs.Index(expr)
		return IsAssignable(b, res, data.Target)
	case ast.ExprField:
		data, _ := b.Exprs.Field(expr)
		if !IsAssignable(b, res, data.Target) {
			return false
		}
		return !hasRepeatedLane(b.Name(data.Field))
	default:
		return false
	}
}

func hasRepeatedLane(field string) bool {
	var seen [types.MaxSwizzle]bool
	for i := 0; i < len(field); i++ {
		lane, ok := types.Lane(field[i])
		if !ok {
			return false
		}
		if seen[lane] {
			return true
		}
		seen[lane] = true
	}
	return false
}
