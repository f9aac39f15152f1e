package sema

import (
	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/symbols"
	"shadec/internal/trace"
	"shadec/internal/types"
)

func (tc *typeChecker) walkStmt(stmtID ast.StmtID) {
	stmt := tc.builder.Stmts.Get(stmtID)
	if stmt == nil {
		return
	}
	if tc.tracer.Level() >= trace.LevelDebug {
		span := trace.Begin(tc.tracer, trace.ScopeNode, "stmt_"+stmt.Kind.String(), tc.passSpan)
		defer span.End("")
	}

	switch stmt.Kind {
	case ast.StmtBlock:
		tc.checkBlock(stmtID, true)
	case ast.StmtDecl:
		if decl, ok := tc.builder.Stmts.Decl(stmtID); ok {
			tc.declare(decl.Item)
		}
	case ast.StmtExpr:
		if es, ok := tc.builder.Stmts.Expr(stmtID); ok {
			tc.typeExpr(es.Expr)
		}
	case ast.StmtIf:
		tc.checkIf(stmtID)
	case ast.StmtFor:
		tc.checkFor(stmtID)
	case ast.StmtWhile:
		tc.checkWhile(stmtID)
	case ast.StmtBreak:
		if tc.loopDepth <= 0 && tc.switchDepth <= 0 {
			tc.report(diag.SemaBreakOutsideLoop, stmt.Span, "break is not inside a loop or switch")
		}
	case ast.StmtContinue:
		if tc.loopDepth <= 0 {
			tc.report(diag.SemaContinueOutsideLoop, stmt.Span, "continue is not inside a loop")
		}
	case ast.StmtReturn:
		tc.checkReturn(stmtID, stmt)
	case ast.StmtSwitch:
		tc.checkSwitch(stmtID)
	}
}

// checkBlock registers local declarations, then checks statements. With
// open=false the block reuses the current frame (function bodies).
func (tc *typeChecker) checkBlock(stmtID ast.StmtID, open bool) {
	block, ok := tc.builder.Stmts.Block(stmtID)
	if !ok {
		tc.walkStmt(stmtID)
		return
	}
	if open {
		tc.enter(symbols.ScopeBlock)
		defer tc.leave()
	}
	for _, decl := range block.Decls {
		tc.declare(decl)
	}
	for _, child := range block.Stmts {
		tc.walkStmt(child)
	}
}

// checkTest types a branch/loop condition; poisoned tests stay silent.
func (tc *typeChecker) checkTest(expr ast.ExprID) {
	ty := tc.typeExpr(expr)
	if ty == types.KindBool || ty == types.KindError {
		return
	}
	tc.report(diag.SemaTestNotBoolean, tc.exprSpan(expr), "test expression must be bool, got %s", ty)
}

func (tc *typeChecker) checkIf(stmtID ast.StmtID) {
	ifStmt, ok := tc.builder.Stmts.If(stmtID)
	if !ok {
		return
	}
	tc.checkTest(ifStmt.Cond)
	tc.enter(symbols.ScopeBranch)
	tc.walkStmt(ifStmt.Then)
	tc.leave()
	if ifStmt.Else.IsValid() {
		tc.enter(symbols.ScopeBranch)
		tc.walkStmt(ifStmt.Else)
		tc.leave()
	}
}

func (tc *typeChecker) checkFor(stmtID ast.StmtID) {
	forStmt, ok := tc.builder.Stmts.For(stmtID)
	if !ok {
		return
	}
	tc.loopDepth++
	tc.enter(symbols.ScopeLoop)
	if !tc.builder.Exprs.IsEmpty(forStmt.Init) {
		tc.typeExpr(forStmt.Init)
	}
	// пустое условие `for (;;)` означает true
	if !tc.builder.Exprs.IsEmpty(forStmt.Cond) {
		tc.checkTest(forStmt.Cond)
	}
	if !tc.builder.Exprs.IsEmpty(forStmt.Step) {
		tc.typeExpr(forStmt.Step)
	}
	tc.walkStmt(forStmt.Body)
	tc.leave()
	tc.loopDepth--
}

func (tc *typeChecker) checkWhile(stmtID ast.StmtID) {
	whileStmt, ok := tc.builder.Stmts.While(stmtID)
	if !ok {
		return
	}
	tc.loopDepth++
	tc.enter(symbols.ScopeLoop)
	tc.checkTest(whileStmt.Cond)
	tc.walkStmt(whileStmt.Body)
	tc.leave()
	tc.loopDepth--
}

func (tc *typeChecker) checkReturn(stmtID ast.StmtID, stmt *ast.Stmt) {
	ret, _ := tc.builder.Stmts.Return(stmtID)
	actual := types.KindVoid
	if ret != nil && !tc.builder.Exprs.IsEmpty(ret.Expr) {
		actual = tc.typeExpr(ret.Expr)
	}
	if tc.fn == nil {
		return
	}
	expected := tc.fn.ReturnType
	if actual == types.KindError || expected == types.KindError {
		return
	}
	if !types.IsEquivalent(actual, expected) {
		tc.report(diag.SemaReturnMismatch, stmt.Span, "returning %s from a function declared %s", actual, expected)
	}
}

func (tc *typeChecker) checkSwitch(stmtID ast.StmtID) {
	sw, ok := tc.builder.Stmts.Switch(stmtID)
	if !ok {
		return
	}
	tc.switchDepth++
	tc.enter(symbols.ScopeSwitch)
	defer func() {
		tc.leave()
		tc.switchDepth--
	}()

	valueType := tc.typeExpr(sw.Value)
	if valueType != types.KindInt && valueType != types.KindError {
		tc.report(diag.SemaSwitchNotInteger, tc.exprSpan(sw.Value), "switch value must be int, got %s", valueType)
	}

	seen := make(map[int64]ast.ExprID, len(sw.Cases))
	var defaultSeen bool
	for _, c := range sw.Cases {
		if c.IsDefault() {
			if defaultSeen {
				tc.report(diag.SemaDuplicateCase, c.Span, "multiple default labels in one switch")
			}
			defaultSeen = true
		} else {
			tc.checkCaseLabel(c.Label, seen)
		}
		for _, child := range c.Body {
			tc.walkStmt(child)
		}
	}
}

func (tc *typeChecker) checkCaseLabel(label ast.ExprID, seen map[int64]ast.ExprID) {
	ty := tc.typeExpr(label)
	if ty == types.KindError {
		return
	}
	value, ok := CaseValue(tc.builder, label)
	if !ok || ty != types.KindInt {
		tc.report(diag.SemaCaseNotConstant, tc.exprSpan(label), "case label must be an int constant")
		return
	}
	if prev, dup := seen[value]; dup {
		diag.ReportError(tc.reporter, diag.SemaDuplicateCase, tc.exprSpan(label), "duplicate case value").
			WithNote(tc.exprSpan(prev), "previous case is here").
			Emit()
		return
	}
	seen[value] = label
}

// CaseValue folds a case label: an int literal, optionally under unary +/-.
func CaseValue(b *ast.Builder, label ast.ExprID) (int64, bool) {
	expr := b.Exprs.Get(label)
	if expr == nil {
		return 0, false
	}
	switch expr.Kind {
	case ast.ExprIntLit:
		lit, _ := b.Exprs.Literal(label)
		return lit.Int, true
	case ast.ExprUnary:
		un, _ := b.Exprs.Unary(label)
		v, ok := CaseValue(b, un.Operand)
		if !ok {
			return 0, false
		}
		switch un.Op {
		case ast.ExprUnaryMinus:
			return -v, true
		case ast.ExprUnaryPlus:
			return v, true
		}
	}
	return 0, false
}
