package sema

import (
	"fmt"

	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/types"
)

// typeExpr computes and records the type of expr; children are typed first.
func (tc *typeChecker) typeExpr(id ast.ExprID) types.Kind {
	expr := tc.builder.Exprs.Get(id)
	if expr == nil {
		return types.KindError
	}
	var ty types.Kind
	switch expr.Kind {
	case ast.ExprIntLit:
		ty = types.KindInt
	case ast.ExprFloatLit:
		ty = types.KindFloat
	case ast.ExprBoolLit:
		ty = types.KindBool
	case ast.ExprIdent:
		ty = tc.typeIdent(id, expr)
	case ast.ExprBinary:
		ty = tc.typeBinary(id, expr)
	case ast.ExprUnary:
		ty = tc.typeUnary(id, expr)
	case ast.ExprPostfix:
		ty = tc.typePostfix(id, expr)
	case ast.ExprIndex:
		ty = tc.typeIndex(id, expr)
	case ast.ExprField:
		ty = tc.typeField(id, expr)
	case ast.ExprCall:
		ty = tc.typeCall(id, expr)
	case ast.ExprEmpty:
		ty = types.KindVoid
	default:
		// ExprError уже диагностирован декодером
		ty = types.KindError
	}
	return tc.record(id, ty)
}

func (tc *typeChecker) typeIdent(id ast.ExprID, expr *ast.Expr) types.Kind {
	data, _ := tc.builder.Exprs.Ident(id)
	b, ok := tc.scopes.Lookup(data.Name)
	if !ok {
		tc.report(diag.SemaNoDeclarationFound, expr.Span, "no declaration found for '%s'", tc.builder.Name(data.Name))
		return types.KindError
	}
	tc.result.Refs[id] = b.Item
	if b.Kind != ast.ItemVar {
		diag.ReportError(tc.reporter, diag.SemaNotAVariable, expr.Span,
			fmt.Sprintf("'%s' is a function, not a variable", tc.builder.Name(data.Name))).
			WithNote(b.Span, "declared here").
			Emit()
		return types.KindError
	}
	return b.Type
}

func (tc *typeChecker) typeIndex(id ast.ExprID, expr *ast.Expr) types.Kind {
	data, _ := tc.builder.Exprs.Index(id)
	base := tc.typeExpr(data.Target)
	sub := tc.typeExpr(data.Index)
	ty, issue := types.Index(base, sub)
	switch issue {
	case types.IssueNotIndexable:
		tc.reportIssue(issue, tc.exprSpan(data.Target), base.String())
	case types.IssueIndexNotInteger:
		tc.reportIssue(issue, tc.exprSpan(data.Index), sub.String())
	default:
		tc.reportIssue(issue, expr.Span, "")
	}
	return ty
}

func (tc *typeChecker) typeField(id ast.ExprID, expr *ast.Expr) types.Kind {
	data, _ := tc.builder.Exprs.Field(id)
	base := tc.typeExpr(data.Target)
	field := tc.builder.Name(data.Field)
	ty, issue := types.Swizzle(base, field)
	tc.reportIssue(issue, data.FieldSpan, fmt.Sprintf("'.%s' on %s", field, base))
	return ty
}

// typeCall resolves the callee, then matches argument count and per-argument
// equivalence with the formals. Any mismatch makes the call Error.
func (tc *typeChecker) typeCall(id ast.ExprID, expr *ast.Expr) types.Kind {
	data, _ := tc.builder.Exprs.Call(id)
	argTypes := make([]types.Kind, len(data.Args))
	for i, arg := range data.Args {
		argTypes[i] = tc.typeExpr(arg)
	}

	name := tc.builder.Name(data.Callee)
	b, ok := tc.scopes.Lookup(data.Callee)
	if !ok {
		tc.report(diag.SemaNoDeclarationFound, data.CalleeSpan, "no declaration found for function '%s'", name)
		return types.KindError
	}
	tc.result.Refs[id] = b.Item
	if b.Kind != ast.ItemFn {
		diag.ReportError(tc.reporter, diag.SemaNotAFunction, data.CalleeSpan,
			fmt.Sprintf("'%s' is not a function", name)).
			WithNote(b.Span, "declared here").
			Emit()
		return types.KindError
	}
	fn, _ := tc.builder.Items.Fn(b.Item)
	if len(fn.Params) != len(data.Args) {
		diag.ReportError(tc.reporter, diag.SemaArgCountMismatch, expr.Span,
			fmt.Sprintf("function '%s' expects %d argument(s), got %d", name, len(fn.Params), len(data.Args))).
			WithNote(b.Span, "declared here").
			Emit()
		return types.KindError
	}
	result := fn.ReturnType
	for i, param := range fn.Params {
		v, _ := tc.builder.Items.Var(param)
		want, got := v.Type, argTypes[i]
		if got == types.KindError || want == types.KindVoid || want == types.KindInvalid {
			result = types.KindError
			continue
		}
		if !types.IsEquivalent(want, got) {
			diag.ReportError(tc.reporter, diag.SemaArgTypeMismatch, tc.exprSpan(data.Args[i]),
				fmt.Sprintf("argument %d of '%s': expected %s, got %s", i+1, name, want, got)).
				WithNote(v.NameSpan, fmt.Sprintf("parameter '%s' declared here", tc.builder.Name(v.Name))).
				Emit()
			result = types.KindError
		}
	}
	return result
}
