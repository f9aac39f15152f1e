package sema

import (
	"shadec/internal/ast"
)

// hasTopLevelReturn scans only the body's own statement list; a return
// nested in an if or loop does not count.
func (tc *typeChecker) hasTopLevelReturn(body ast.StmtID) bool {
	block, ok := tc.builder.Stmts.Block(body)
	if !ok {
		st := tc.builder.Stmts.Get(body)
		return st != nil && st.Kind == ast.StmtReturn
	}
	for _, child := range block.Stmts {
		if st := tc.builder.Stmts.Get(child); st != nil && st.Kind == ast.StmtReturn {
			return true
		}
	}
	return false
}

// alwaysReturns reports whether every path through stmtID ends in a return.
func (tc *typeChecker) alwaysReturns(stmtID ast.StmtID) bool {
	stmt := tc.builder.Stmts.Get(stmtID)
	if stmt == nil {
		return false
	}
	switch stmt.Kind {
	case ast.StmtReturn:
		return true
	case ast.StmtBlock:
		block, _ := tc.builder.Stmts.Block(stmtID)
		for _, child := range block.Stmts {
			if tc.alwaysReturns(child) {
				return true
			}
		}
		return false
	case ast.StmtIf:
		ifStmt, _ := tc.builder.Stmts.If(stmtID)
		return ifStmt.Else.IsValid() && tc.alwaysReturns(ifStmt.Then) && tc.alwaysReturns(ifStmt.Else)
	case ast.StmtWhile:
		w, _ := tc.builder.Stmts.While(stmtID)
		return tc.isTrueLiteral(w.Cond) && !tc.breaksOut(w.Body)
	case ast.StmtFor:
		f, _ := tc.builder.Stmts.For(stmtID)
		infinite := tc.builder.Exprs.IsEmpty(f.Cond) || tc.isTrueLiteral(f.Cond)
		return infinite && !tc.breaksOut(f.Body)
	case ast.StmtSwitch:
		return tc.switchAlwaysReturns(stmtID)
	default:
		return false
	}
}

// switchAlwaysReturns: needs a default; control falls through cases, so a
// case is covered when some later body (including its own) returns first.
func (tc *typeChecker) switchAlwaysReturns(stmtID ast.StmtID) bool {
	sw, _ := tc.builder.Stmts.Switch(stmtID)
	hasDefault := false
	for _, c := range sw.Cases {
		if c.IsDefault() {
			hasDefault = true
		}
	}
	if !hasDefault || len(sw.Cases) == 0 {
		return false
	}
	// идём с конца: tail говорит, вернёт ли управление всё, что после текущего case
	tail := false
	for i := len(sw.Cases) - 1; i >= 0; i-- {
		bodyReturns, bodyBreaks := false, false
		for _, child := range sw.Cases[i].Body {
			if tc.breaksOut(child) {
				bodyBreaks = true
				break
			}
			if tc.alwaysReturns(child) {
				bodyReturns = true
				break
			}
		}
		switch {
		case bodyReturns:
			tail = true
		case bodyBreaks:
			return false
		case !tail:
			return false
		}
	}
	return tail
}

// breaksOut reports whether a break may leave the enclosing loop or switch
// from inside stmtID; nested loops and switches capture their own breaks.
func (tc *typeChecker) breaksOut(stmtID ast.StmtID) bool {
	stmt := tc.builder.Stmts.Get(stmtID)
	if stmt == nil {
		return false
	}
	switch stmt.Kind {
	case ast.StmtBreak:
		return true
	case ast.StmtBlock:
		block, _ := tc.builder.Stmts.Block(stmtID)
		for _, child := range block.Stmts {
			if tc.breaksOut(child) {
				return true
			}
		}
	case ast.StmtIf:
		ifStmt, _ := tc.builder.Stmts.If(stmtID)
		return tc.breaksOut(ifStmt.Then) || (ifStmt.Else.IsValid() && tc.breaksOut(ifStmt.Else))
	}
	return false
}

func (tc *typeChecker) isTrueLiteral(expr ast.ExprID) bool {
	node := tc.builder.Exprs.Get(expr)
	if node == nil || node.Kind != ast.ExprBoolLit {
		return false
	}
	lit, _ := tc.builder.Exprs.Literal(expr)
	return lit.Bool
}
