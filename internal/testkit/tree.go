// Package testkit holds helpers shared by package tests: an in-code AST
// builder and span invariant checks.
package testkit

import (
	"shadec/internal/ast"
	"shadec/internal/source"
	"shadec/internal/types"
)

// Tree assembles small programs in code. Every node receives a fresh
// one-byte span so diagnostics on different nodes can be told apart.
type Tree struct {
	B    *ast.Builder
	File ast.FileID
	off  uint32
}

func NewTree() *Tree {
	b := ast.NewBuilder(ast.Hints{}, nil)
	t := &Tree{B: b}
	t.File = b.Files.New(source.Span{})
	return t
}

// Span allocates the next distinct span.
func (t *Tree) Span() source.Span {
	t.off++
	return source.Span{Start: t.off, End: t.off + 1}
}

func (t *Tree) name(s string) source.StringID {
	return t.B.StringsInterner.Intern(s)
}

// Var creates a variable item that is not attached to the file (locals, params).
func (t *Tree) Var(name string, ty types.Kind) ast.ItemID {
	return t.B.Items.NewVar(t.Span(), t.name(name), t.Span(), ty)
}

// Param is Var under the name used for formal parameters.
func (t *Tree) Param(name string, ty types.Kind) ast.ItemID { return t.Var(name, ty) }

// Global creates a top-level variable.
func (t *Tree) Global(name string, ty types.Kind) ast.ItemID {
	id := t.Var(name, ty)
	t.B.PushItem(t.File, id)
	return id
}

// Fn creates a top-level function.
func (t *Tree) Fn(name string, ret types.Kind, params []ast.ItemID, body ast.StmtID) ast.ItemID {
	id := t.B.Items.NewFn(t.Span(), t.name(name), t.Span(), ret, params, body)
	t.B.PushItem(t.File, id)
	return id
}

// Params is sugar for a formal parameter list.
func Params(ids ...ast.ItemID) []ast.ItemID { return ids }

func (t *Tree) Block(decls []ast.ItemID, stmts ...ast.StmtID) ast.StmtID {
	return t.B.Stmts.NewBlock(t.Span(), decls, stmts)
}

func (t *Tree) Decl(item ast.ItemID) ast.StmtID { return t.B.Stmts.NewDecl(t.Span(), item) }

func (t *Tree) Expr(e ast.ExprID) ast.StmtID { return t.B.Stmts.NewExpr(t.Span(), e) }

func (t *Tree) If(cond ast.ExprID, then, els ast.StmtID) ast.StmtID {
	return t.B.Stmts.NewIf(t.Span(), cond, then, els)
}

func (t *Tree) For(init, cond, step ast.ExprID, body ast.StmtID) ast.StmtID {
	return t.B.Stmts.NewFor(t.Span(), init, cond, step, body)
}

func (t *Tree) While(cond ast.ExprID, body ast.StmtID) ast.StmtID {
	return t.B.Stmts.NewWhile(t.Span(), cond, body)
}

func (t *Tree) Break() ast.StmtID    { return t.B.Stmts.NewBreak(t.Span()) }
func (t *Tree) Continue() ast.StmtID { return t.B.Stmts.NewContinue(t.Span()) }

// Return with ast.NoExprID is a bare return.
func (t *Tree) Return(e ast.ExprID) ast.StmtID { return t.B.Stmts.NewReturn(t.Span(), e) }

func (t *Tree) Switch(value ast.ExprID, cases ...ast.SwitchCase) ast.StmtID {
	return t.B.Stmts.NewSwitch(t.Span(), value, cases)
}

func (t *Tree) Case(label ast.ExprID, body ...ast.StmtID) ast.SwitchCase {
	return ast.SwitchCase{Span: t.Span(), Label: label, Body: body}
}

func (t *Tree) Default(body ...ast.StmtID) ast.SwitchCase {
	return ast.SwitchCase{Span: t.Span(), Label: ast.NoExprID, Body: body}
}

func (t *Tree) Int(v int64) ast.ExprID     { return t.B.Exprs.NewIntLit(t.Span(), v) }
func (t *Tree) Float(v float64) ast.ExprID { return t.B.Exprs.NewFloatLit(t.Span(), v) }
func (t *Tree) Bool(v bool) ast.ExprID     { return t.B.Exprs.NewBoolLit(t.Span(), v) }
func (t *Tree) Empty() ast.ExprID          { return t.B.Exprs.NewEmpty(t.Span()) }

func (t *Tree) Ident(name string) ast.ExprID {
	return t.B.Exprs.NewIdent(t.Span(), t.name(name))
}

func (t *Tree) Bin(op ast.ExprBinaryOp, left, right ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewBinary(t.Span(), op, left, right)
}

// Assign is sugar for `name = value`.
func (t *Tree) Assign(target, value ast.ExprID) ast.ExprID {
	return t.Bin(ast.ExprBinaryAssign, target, value)
}

func (t *Tree) Unary(op ast.ExprUnaryOp, operand ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewUnary(t.Span(), op, operand)
}

func (t *Tree) Postfix(op ast.ExprPostfixOp, operand ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewPostfix(t.Span(), op, operand)
}

func (t *Tree) Index(target, index ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewIndex(t.Span(), target, index)
}

func (t *Tree) Field(target ast.ExprID, field string) ast.ExprID {
	return t.B.Exprs.NewField(t.Span(), target, t.name(field), t.Span())
}

func (t *Tree) Call(callee string, args ...ast.ExprID) ast.ExprID {
	return t.B.Exprs.NewCall(t.Span(), t.name(callee), t.Span(), args)
}
