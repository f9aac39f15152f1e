package mir

import (
	"fmt"

	"shadec/internal/ast"
	"shadec/internal/sema"
	"shadec/internal/symbols"
	"shadec/internal/trace"
)

// lowerBlock lowers declarations and statements of a block. With open=false
// the block shares the current frame (function bodies share it with params).
func (l *funcLowerer) lowerBlock(stmtID ast.StmtID, open bool) error {
	block, ok := l.builder.Stmts.Block(stmtID)
	if !ok {
		return l.lowerStmt(stmtID)
	}
	if open {
		l.scopes.Enter(symbols.ScopeBlock)
		defer l.scopes.Exit()
	}
	for _, decl := range block.Decls {
		if _, err := l.declareLocal(decl); err != nil {
			return err
		}
	}
	for _, child := range block.Stmts {
		if l.curBlock().Terminated() {
			// остаток блока недостижим
			return nil
		}
		if err := l.lowerStmt(child); err != nil {
			return err
		}
	}
	return nil
}

func (l *funcLowerer) lowerStmt(stmtID ast.StmtID) error {
	stmt := l.builder.Stmts.Get(stmtID)
	if stmt == nil {
		return fmt.Errorf("mir: statement %d not found", stmtID)
	}
	if l.curBlock().Terminated() {
		return nil
	}
	if l.tracer.Level() >= trace.LevelDebug {
		span := trace.Begin(l.tracer, trace.ScopeNode, "lower_"+stmt.Kind.String(), l.parent)
		defer span.End("")
	}

	switch stmt.Kind {
	case ast.StmtBlock:
		return l.lowerBlock(stmtID, true)

	case ast.StmtDecl:
		data, _ := l.builder.Stmts.Decl(stmtID)
		_, err := l.declareLocal(data.Item)
		return err

	case ast.StmtExpr:
		data, _ := l.builder.Stmts.Expr(stmtID)
		_, err := l.lowerExpr(data.Expr)
		return err

	case ast.StmtIf:
		return l.lowerIf(stmtID)

	case ast.StmtFor:
		return l.lowerFor(stmtID)

	case ast.StmtWhile:
		return l.lowerWhile(stmtID)

	case ast.StmtBreak:
		if len(l.loopStack) == 0 {
			return fmt.Errorf("mir: break outside of a loop or switch")
		}
		l.gotoBlock(l.loopStack[len(l.loopStack)-1].breakTarget)
		return nil

	case ast.StmtContinue:
		for i := len(l.loopStack) - 1; i >= 0; i-- {
			if target := l.loopStack[i].continueTarget; target != NoBlockID {
				l.gotoBlock(target)
				return nil
			}
		}
		return fmt.Errorf("mir: continue outside of a loop")

	case ast.StmtReturn:
		data, _ := l.builder.Stmts.Return(stmtID)
		if data == nil || l.builder.Exprs.IsEmpty(data.Expr) {
			l.setTerm(&Terminator{Kind: TermReturn})
			return nil
		}
		op, err := l.lowerExpr(data.Expr)
		if err != nil {
			return err
		}
		l.setTerm(&Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: op}})
		return nil

	case ast.StmtSwitch:
		return l.lowerSwitch(stmtID)

	default:
		return fmt.Errorf("mir: unsupported statement kind %s", stmt.Kind)
	}
}

func (l *funcLowerer) lowerIf(stmtID ast.StmtID) error {
	data, _ := l.builder.Stmts.If(stmtID)
	cond, err := l.lowerExpr(data.Cond)
	if err != nil {
		return err
	}
	thenBB := l.newBlock()
	elseBB := NoBlockID
	if data.Else.IsValid() {
		elseBB = l.newBlock()
	}
	joinBB := l.newBlock()
	falseTarget := joinBB
	if elseBB != NoBlockID {
		falseTarget = elseBB
	}
	l.setTerm(&Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: thenBB, Else: falseTarget}})

	l.startBlock(thenBB)
	if err := l.lowerBranch(data.Then); err != nil {
		return err
	}
	l.gotoBlock(joinBB)

	if elseBB != NoBlockID {
		l.startBlock(elseBB)
		if err := l.lowerBranch(data.Else); err != nil {
			return err
		}
		l.gotoBlock(joinBB)
	}
	l.startBlock(joinBB)
	return nil
}

func (l *funcLowerer) lowerBranch(stmtID ast.StmtID) error {
	l.scopes.Enter(symbols.ScopeBranch)
	defer l.scopes.Exit()
	return l.lowerStmt(stmtID)
}

func (l *funcLowerer) lowerFor(stmtID ast.StmtID) error {
	data, _ := l.builder.Stmts.For(stmtID)
	l.scopes.Enter(symbols.ScopeLoop)
	defer l.scopes.Exit()

	if !l.builder.Exprs.IsEmpty(data.Init) {
		if _, err := l.lowerExpr(data.Init); err != nil {
			return err
		}
	}
	headerBB := l.newBlock()
	bodyBB := l.newBlock()
	stepBB := l.newBlock()
	exitBB := l.newBlock()

	l.gotoBlock(headerBB)
	l.startBlock(headerBB)
	if l.builder.Exprs.IsEmpty(data.Cond) {
		l.gotoBlock(bodyBB)
	} else {
		cond, err := l.lowerExpr(data.Cond)
		if err != nil {
			return err
		}
		l.setTerm(&Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: bodyBB, Else: exitBB}})
	}

	l.startBlock(bodyBB)
	l.loopStack = append(l.loopStack, loopCtx{breakTarget: exitBB, continueTarget: stepBB})
	err := l.lowerStmt(data.Body)
	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	if err != nil {
		return err
	}
	l.gotoBlock(stepBB)

	l.startBlock(stepBB)
	if !l.builder.Exprs.IsEmpty(data.Step) {
		if _, err := l.lowerExpr(data.Step); err != nil {
			return err
		}
	}
	l.gotoBlock(headerBB)

	l.startBlock(exitBB)
	return nil
}

func (l *funcLowerer) lowerWhile(stmtID ast.StmtID) error {
	data, _ := l.builder.Stmts.While(stmtID)
	l.scopes.Enter(symbols.ScopeLoop)
	defer l.scopes.Exit()

	headerBB := l.newBlock()
	bodyBB := l.newBlock()
	exitBB := l.newBlock()

	l.gotoBlock(headerBB)
	l.startBlock(headerBB)
	cond, err := l.lowerExpr(data.Cond)
	if err != nil {
		return err
	}
	l.setTerm(&Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: bodyBB, Else: exitBB}})

	l.startBlock(bodyBB)
	l.loopStack = append(l.loopStack, loopCtx{breakTarget: exitBB, continueTarget: headerBB})
	err = l.lowerStmt(data.Body)
	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	if err != nil {
		return err
	}
	l.gotoBlock(headerBB)

	l.startBlock(exitBB)
	return nil
}

// lowerSwitch emits one block per case; bodies fall through to the next case
// unless they end in break/return.
func (l *funcLowerer) lowerSwitch(stmtID ast.StmtID) error {
	data, _ := l.builder.Stmts.Switch(stmtID)
	l.scopes.Enter(symbols.ScopeSwitch)
	defer l.scopes.Exit()

	value, err := l.lowerExpr(data.Value)
	if err != nil {
		return err
	}
	caseBBs := make([]BlockID, len(data.Cases))
	for i := range data.Cases {
		caseBBs[i] = l.newBlock()
	}
	exitBB := l.newBlock()

	term := SwitchTerm{Value: value, Default: exitBB}
	for i, c := range data.Cases {
		if c.IsDefault() {
			term.Default = caseBBs[i]
			continue
		}
		v, ok := sema.CaseValue(l.builder, c.Label)
		if !ok {
			return fmt.Errorf("mir: case label %d is not constant", c.Label)
		}
		term.Cases = append(term.Cases, SwitchCase{Value: v, Target: caseBBs[i]})
	}
	l.setTerm(&Terminator{Kind: TermSwitch, Switch: term})

	l.loopStack = append(l.loopStack, loopCtx{breakTarget: exitBB, continueTarget: NoBlockID})
	defer func() { l.loopStack = l.loopStack[:len(l.loopStack)-1] }()
	for i, c := range data.Cases {
		l.startBlock(caseBBs[i])
		for _, child := range c.Body {
			if l.curBlock().Terminated() {
				break
			}
			if err := l.lowerStmt(child); err != nil {
				return err
			}
		}
		next := exitBB
		if i+1 < len(caseBBs) {
			next = caseBBs[i+1]
		}
		l.gotoBlock(next)
	}
	l.startBlock(exitBB)
	return nil
}
