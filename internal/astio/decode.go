package astio

import (
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/source"
	"shadec/internal/types"
)

// Build appends doc to b as a new ast file whose spans point into src.
// Problems in the document become diagnostics; the offending node is replaced
// by an error expression (or dropped, for declarations) so checking can run.
// size is the source length used to validate spans, 0 disables the check.
func Build(doc *Document, b *ast.Builder, src source.FileID, size uint32, rep diag.Reporter) ast.FileID {
	d := &decoder{b: b, src: src, size: size, rep: rep}
	if doc == nil {
		fileID := b.Files.New(source.Span{File: src})
		d.report(diag.AstMalformedDocument, source.Span{File: src}, "empty AST document")
		return fileID
	}
	fileSpan := d.span(doc.Span)
	if fileSpan.Empty() {
		for _, n := range doc.Decls {
			if n != nil {
				fileSpan = coverFrom(fileSpan, source.Span{File: src, Start: n.Span.Start, End: n.Span.End})
			}
		}
		if size > 0 && fileSpan.End > size {
			fileSpan.End = size
		}
	}
	fileID := b.Files.New(fileSpan)
	if doc.Version != FormatVersion {
		d.report(diag.AstUnsupportedVersion, fileSpan,
			fmt.Sprintf("AST format version %d is not supported (want %d)", doc.Version, FormatVersion))
		return fileID
	}
	for _, n := range doc.Decls {
		if item := d.decl(n); item.IsValid() {
			b.PushItem(fileID, item)
		}
	}
	return fileID
}

// coverFrom treats an empty span as "nothing yet".
func coverFrom(acc, sp source.Span) source.Span {
	if acc.Empty() {
		return sp
	}
	return acc.Cover(sp)
}

type decoder struct {
	b    *ast.Builder
	src  source.FileID
	size uint32
	rep  diag.Reporter
}

func (d *decoder) report(code diag.Code, sp source.Span, msg string) {
	if d.rep == nil {
		return
	}
	diag.ReportError(d.rep, code, sp, msg).Emit()
}

// span clamps out-of-range positions and reports them once per node.
func (d *decoder) span(p Pos) source.Span {
	sp := source.Span{File: d.src, Start: p.Start, End: p.End}
	bad := sp.End < sp.Start || (d.size > 0 && sp.End > d.size)
	if !bad {
		return sp
	}
	if d.size > 0 && sp.End > d.size {
		sp.End = d.size
	}
	if sp.Start > sp.End {
		sp.Start = sp.End
	}
	d.report(diag.AstMalformedNode, sp, fmt.Sprintf("span %d..%d is out of range", p.Start, p.End))
	return sp
}

// nameSpan falls back to the node span sp when the name has no own span.
func (d *decoder) nameSpan(n *Node, sp source.Span) source.Span {
	if n.NameSpan != nil {
		return d.span(*n.NameSpan)
	}
	return sp
}

// intern stores identifiers in NFC so visually equal names resolve equally.
func (d *decoder) intern(s string) source.StringID {
	return d.b.StringsInterner.Intern(norm.NFC.String(s))
}

func (d *decoder) typeName(name string, sp source.Span) types.Kind {
	if ty, ok := types.Parse(name); ok {
		return ty
	}
	d.report(diag.AstUnknownType, sp, fmt.Sprintf("unknown type %q", name))
	return types.KindError
}

func (d *decoder) decl(n *Node) ast.ItemID {
	if n == nil {
		return ast.NoItemID
	}
	switch n.Kind {
	case "var":
		return d.varItem(n)
	case "fn":
		return d.fnItem(n)
	default:
		d.report(diag.AstUnknownKind, d.span(n.Span), fmt.Sprintf("unknown declaration kind %q", n.Kind))
		return ast.NoItemID
	}
}

func (d *decoder) varItem(n *Node) ast.ItemID {
	sp := d.span(n.Span)
	if n.Name == "" {
		d.report(diag.AstMalformedNode, sp, "variable without a name")
	}
	nameSpan := d.nameSpan(n, sp)
	return d.b.Items.NewVar(sp, d.intern(n.Name), nameSpan, d.typeName(n.Type, sp))
}

func (d *decoder) fnItem(n *Node) ast.ItemID {
	sp := d.span(n.Span)
	if n.Name == "" {
		d.report(diag.AstMalformedNode, sp, "function without a name")
	}
	params := make([]ast.ItemID, 0, len(n.Params))
	for _, p := range n.Params {
		if p == nil || p.Kind != "var" {
			d.report(diag.AstMalformedNode, sp, "function parameter must be a var node")
			continue
		}
		params = append(params, d.varItem(p))
	}
	var body ast.StmtID
	if n.Body == nil || n.Body.Kind != "block" {
		d.report(diag.AstMalformedNode, sp, "function body must be a block")
		body = d.b.Stmts.NewBlock(source.Span{File: d.src, Start: sp.End, End: sp.End}, nil, nil)
	} else {
		body = d.block(n.Body)
	}
	return d.b.Items.NewFn(sp, d.intern(n.Name), d.nameSpan(n, sp), d.typeName(n.Type, sp), params, body)
}

func (d *decoder) block(n *Node) ast.StmtID {
	decls := make([]ast.ItemID, 0, len(n.Decls))
	for _, v := range n.Decls {
		if v == nil || v.Kind != "var" {
			d.report(diag.AstMalformedNode, d.span(n.Span), "block declarations must be var nodes")
			continue
		}
		decls = append(decls, d.varItem(v))
	}
	stmts := make([]ast.StmtID, 0, len(n.Stmts))
	for _, s := range n.Stmts {
		stmts = append(stmts, d.stmt(s, n.Span))
	}
	return d.b.Stmts.NewBlock(d.span(n.Span), decls, stmts)
}

// errStmt wraps an error expression so a broken statement keeps its place.
func (d *decoder) errStmt(sp source.Span) ast.StmtID {
	return d.b.Stmts.NewExpr(sp, d.b.Exprs.NewError(sp))
}

func (d *decoder) stmt(n *Node, parent Pos) ast.StmtID {
	if n == nil {
		sp := d.span(parent)
		d.report(diag.AstMalformedNode, sp, "missing statement")
		return d.errStmt(sp)
	}
	sp := d.span(n.Span)
	switch n.Kind {
	case "block":
		return d.block(n)
	case "decl":
		if n.Item == nil || n.Item.Kind != "var" {
			d.report(diag.AstMalformedNode, sp, "decl statement needs a var item")
			return d.errStmt(sp)
		}
		return d.b.Stmts.NewDecl(sp, d.varItem(n.Item))
	case "expr":
		return d.b.Stmts.NewExpr(sp, d.expr(n.Expr, n.Span))
	case "if":
		cond := d.expr(n.Cond, n.Span)
		then := d.stmt(n.Then, n.Span)
		els := ast.NoStmtID
		if n.Else != nil {
			els = d.stmt(n.Else, n.Span)
		}
		return d.b.Stmts.NewIf(sp, cond, then, els)
	case "for":
		init := d.optExpr(n.Init, n.Span)
		cond := d.optExpr(n.Cond, n.Span)
		step := d.optExpr(n.Step, n.Span)
		return d.b.Stmts.NewFor(sp, init, cond, step, d.stmt(n.Body, n.Span))
	case "while":
		return d.b.Stmts.NewWhile(sp, d.expr(n.Cond, n.Span), d.stmt(n.Body, n.Span))
	case "break":
		return d.b.Stmts.NewBreak(sp)
	case "continue":
		return d.b.Stmts.NewContinue(sp)
	case "return":
		value := ast.NoExprID
		if n.Expr != nil {
			value = d.expr(n.Expr, n.Span)
		}
		return d.b.Stmts.NewReturn(sp, value)
	case "switch":
		value := d.expr(n.Expr, n.Span)
		cases := make([]ast.SwitchCase, 0, len(n.Cases))
		for _, c := range n.Cases {
			if c == nil {
				d.report(diag.AstMalformedNode, sp, "nil switch case")
				continue
			}
			sc := ast.SwitchCase{Span: d.span(c.Span), Label: ast.NoExprID}
			if c.Label != nil {
				sc.Label = d.expr(c.Label, c.Span)
			}
			for _, s := range c.Body {
				sc.Body = append(sc.Body, d.stmt(s, c.Span))
			}
			cases = append(cases, sc)
		}
		return d.b.Stmts.NewSwitch(sp, value, cases)
	default:
		d.report(diag.AstUnknownKind, sp, fmt.Sprintf("unknown statement kind %q", n.Kind))
		return d.errStmt(sp)
	}
}

// optExpr maps an absent for-clause to an empty expression.
func (d *decoder) optExpr(n *Node, parent Pos) ast.ExprID {
	if n == nil {
		end := d.span(parent).End
		return d.b.Exprs.NewEmpty(source.Span{File: d.src, Start: end, End: end})
	}
	return d.expr(n, parent)
}

func (d *decoder) expr(n *Node, parent Pos) ast.ExprID {
	if n == nil {
		sp := d.span(parent)
		d.report(diag.AstMalformedNode, sp, "missing expression")
		return d.b.Exprs.NewError(sp)
	}
	sp := d.span(n.Span)
	switch n.Kind {
	case "int":
		v, err := strconv.ParseInt(n.Lit, 0, 64)
		if err != nil {
			return d.malformed(sp, fmt.Sprintf("bad int literal %q", n.Lit))
		}
		return d.b.Exprs.NewIntLit(sp, v)
	case "float":
		v, err := strconv.ParseFloat(n.Lit, 64)
		if err != nil {
			return d.malformed(sp, fmt.Sprintf("bad float literal %q", n.Lit))
		}
		return d.b.Exprs.NewFloatLit(sp, v)
	case "bool":
		v, err := strconv.ParseBool(n.Lit)
		if err != nil {
			return d.malformed(sp, fmt.Sprintf("bad bool literal %q", n.Lit))
		}
		return d.b.Exprs.NewBoolLit(sp, v)
	case "ident":
		if n.Name == "" {
			return d.malformed(sp, "identifier without a name")
		}
		return d.b.Exprs.NewIdent(sp, d.intern(n.Name))
	case "binary":
		op, ok := ast.ParseBinaryOp(n.Op)
		if !ok {
			return d.unknownOp(sp, n.Op)
		}
		return d.b.Exprs.NewBinary(sp, op, d.expr(n.Left, n.Span), d.expr(n.Right, n.Span))
	case "unary":
		op, ok := ast.ParseUnaryOp(n.Op)
		if !ok {
			return d.unknownOp(sp, n.Op)
		}
		return d.b.Exprs.NewUnary(sp, op, d.expr(n.Operand, n.Span))
	case "postfix":
		op, ok := ast.ParsePostfixOp(n.Op)
		if !ok {
			return d.unknownOp(sp, n.Op)
		}
		return d.b.Exprs.NewPostfix(sp, op, d.expr(n.Operand, n.Span))
	case "index":
		return d.b.Exprs.NewIndex(sp, d.expr(n.Target, n.Span), d.expr(n.Index, n.Span))
	case "field":
		if n.Name == "" {
			return d.malformed(sp, "field access without a field name")
		}
		return d.b.Exprs.NewField(sp, d.expr(n.Target, n.Span), d.intern(n.Name), d.nameSpan(n, sp))
	case "call":
		if n.Name == "" {
			return d.malformed(sp, "call without a callee")
		}
		args := make([]ast.ExprID, 0, len(n.Args))
		for _, a := range n.Args {
			args = append(args, d.expr(a, n.Span))
		}
		return d.b.Exprs.NewCall(sp, d.intern(n.Name), d.nameSpan(n, sp), args)
	case "empty":
		return d.b.Exprs.NewEmpty(sp)
	case "error":
		// узел восстановления парсера: без диагностики файл ушёл бы в lowering
		return d.malformed(sp, "syntax error recovered by the parser")
	default:
		d.report(diag.AstUnknownKind, sp, fmt.Sprintf("unknown expression kind %q", n.Kind))
		return d.b.Exprs.NewError(sp)
	}
}

func (d *decoder) malformed(sp source.Span, msg string) ast.ExprID {
	d.report(diag.AstMalformedNode, sp, msg)
	return d.b.Exprs.NewError(sp)
}

func (d *decoder) unknownOp(sp source.Span, op string) ast.ExprID {
	d.report(diag.AstUnknownOperator, sp, fmt.Sprintf("unknown operator %q", op))
	return d.b.Exprs.NewError(sp)
}
