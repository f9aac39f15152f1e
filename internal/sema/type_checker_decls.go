package sema

import (
	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/symbols"
	"shadec/internal/trace"
	"shadec/internal/types"
)

// declare registers a top-level or local declaration in the current frame.
func (tc *typeChecker) declare(itemID ast.ItemID) {
	item := tc.builder.Items.Get(itemID)
	if item == nil {
		return
	}
	switch item.Kind {
	case ast.ItemVar:
		v, _ := tc.builder.Items.Var(itemID)
		tc.insert(itemID, binding{Kind: ast.ItemVar, Type: tc.varType(v)})
	case ast.ItemFn:
		fn, _ := tc.builder.Items.Fn(itemID)
		tc.insert(itemID, binding{Kind: ast.ItemFn, Type: fn.ReturnType})
	}
}

// varType validates a variable's declared type; void and invalid types poison the binding.
func (tc *typeChecker) varType(v *ast.VarItem) types.Kind {
	switch v.Type {
	case types.KindVoid:
		tc.report(diag.SemaVoidVariable, v.NameSpan, "variable '%s' declared void", tc.builder.Name(v.Name))
		return types.KindError
	case types.KindInvalid:
		return types.KindError
	default:
		return v.Type
	}
}

func (tc *typeChecker) walkItem(itemID ast.ItemID) {
	item := tc.builder.Items.Get(itemID)
	if item == nil || item.Kind != ast.ItemFn {
		// у переменных нет инициализаторов, проверять нечего
		return
	}
	fn, _ := tc.builder.Items.Fn(itemID)
	tc.checkFn(itemID, fn)
}

func (tc *typeChecker) checkFn(itemID ast.ItemID, fn *ast.FnItem) {
	span := trace.Begin(tc.tracer, trace.ScopeItem, "check_fn", tc.passSpan).
		WithExtra("name", tc.builder.Name(fn.Name))
	defer span.End("")

	prevItem, prevFn := tc.fnItem, tc.fn
	prevLoop, prevSwitch := tc.loopDepth, tc.switchDepth
	tc.fnItem, tc.fn = itemID, fn
	tc.loopDepth, tc.switchDepth = 0, 0
	defer func() {
		tc.fnItem, tc.fn = prevItem, prevFn
		tc.loopDepth, tc.switchDepth = prevLoop, prevSwitch
	}()

	tc.enter(symbols.ScopeFunction)
	for _, param := range fn.Params {
		tc.declare(param)
	}
	// тело функции делит кадр с параметрами: `int f(int a) { int a; }` это конфликт
	tc.checkBlock(fn.Body, false)
	tc.leave()

	if fn.ReturnType == types.KindVoid || fn.ReturnType == types.KindError {
		return
	}
	var returns bool
	if tc.opts.DeepReturnCheck {
		returns = tc.alwaysReturns(fn.Body)
	} else {
		returns = tc.hasTopLevelReturn(fn.Body)
	}
	if !returns {
		tc.report(diag.SemaReturnMissing, fn.NameSpan, "function '%s' must return %s",
			tc.builder.Name(fn.Name), fn.ReturnType)
	}
}
