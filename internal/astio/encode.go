package astio

import (
	"strconv"

	"shadec/internal/ast"
	"shadec/internal/source"
)

// Encode converts a built file back into a document. path and text fill the
// header; text may be empty.
func Encode(b *ast.Builder, fileID ast.FileID, path, text string) *Document {
	e := &encoder{b: b}
	doc := &Document{Version: FormatVersion, Path: path, Source: text}
	file := b.Files.Get(fileID)
	if file == nil {
		return doc
	}
	doc.Span = pos(file.Span)
	for _, item := range file.Items {
		if n := e.item(item); n != nil {
			doc.Decls = append(doc.Decls, n)
		}
	}
	return doc
}

type encoder struct {
	b *ast.Builder
}

func pos(sp source.Span) Pos { return Pos{Start: sp.Start, End: sp.End} }

func posPtr(sp source.Span) *Pos {
	p := pos(sp)
	return &p
}

func (e *encoder) name(id source.StringID) string {
	s, _ := e.b.StringsInterner.Lookup(id)
	return s
}

func (e *encoder) item(id ast.ItemID) *Node {
	item := e.b.Items.Get(id)
	if item == nil {
		return nil
	}
	if v, ok := e.b.Items.Var(id); ok {
		return &Node{Kind: "var", Span: pos(item.Span), Name: e.name(v.Name), NameSpan: posPtr(v.NameSpan), Type: v.Type.String()}
	}
	fn, _ := e.b.Items.Fn(id)
	n := &Node{Kind: "fn", Span: pos(item.Span), Name: e.name(fn.Name), NameSpan: posPtr(fn.NameSpan), Type: fn.ReturnType.String()}
	for _, p := range fn.Params {
		n.Params = append(n.Params, e.item(p))
	}
	n.Body = e.stmt(fn.Body)
	return n
}

func (e *encoder) stmt(id ast.StmtID) *Node {
	st := e.b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	n := &Node{Kind: st.Kind.String(), Span: pos(st.Span)}
	switch st.Kind {
	case ast.StmtBlock:
		data, _ := e.b.Stmts.Block(id)
		for _, d := range data.Decls {
			n.Decls = append(n.Decls, e.item(d))
		}
		for _, s := range data.Stmts {
			n.Stmts = append(n.Stmts, e.stmt(s))
		}
	case ast.StmtDecl:
		data, _ := e.b.Stmts.Decl(id)
		n.Item = e.item(data.Item)
	case ast.StmtExpr:
		data, _ := e.b.Stmts.Expr(id)
		n.Expr = e.expr(data.Expr)
	case ast.StmtIf:
		data, _ := e.b.Stmts.If(id)
		n.Cond = e.expr(data.Cond)
		n.Then = e.stmt(data.Then)
		if data.Else.IsValid() {
			n.Else = e.stmt(data.Else)
		}
	case ast.StmtFor:
		data, _ := e.b.Stmts.For(id)
		n.Init = e.optExpr(data.Init)
		n.Cond = e.optExpr(data.Cond)
		n.Step = e.optExpr(data.Step)
		n.Body = e.stmt(data.Body)
	case ast.StmtWhile:
		data, _ := e.b.Stmts.While(id)
		n.Cond = e.expr(data.Cond)
		n.Body = e.stmt(data.Body)
	case ast.StmtReturn:
		data, _ := e.b.Stmts.Return(id)
		if data.Expr.IsValid() {
			n.Expr = e.expr(data.Expr)
		}
	case ast.StmtSwitch:
		data, _ := e.b.Stmts.Switch(id)
		n.Expr = e.expr(data.Value)
		for _, c := range data.Cases {
			out := &Case{Span: pos(c.Span)}
			if !c.IsDefault() {
				out.Label = e.expr(c.Label)
			}
			for _, s := range c.Body {
				out.Body = append(out.Body, e.stmt(s))
			}
			n.Cases = append(n.Cases, out)
		}
	}
	return n
}

func (e *encoder) optExpr(id ast.ExprID) *Node {
	if !id.IsValid() || e.b.Exprs.IsEmpty(id) {
		return nil
	}
	return e.expr(id)
}

func (e *encoder) expr(id ast.ExprID) *Node {
	ex := e.b.Exprs.Get(id)
	if ex == nil {
		return nil
	}
	n := &Node{Kind: ex.Kind.String(), Span: pos(ex.Span)}
	switch ex.Kind {
	case ast.ExprIntLit:
		lit, _ := e.b.Exprs.Literal(id)
		n.Lit = strconv.FormatInt(lit.Int, 10)
	case ast.ExprFloatLit:
		lit, _ := e.b.Exprs.Literal(id)
		n.Lit = strconv.FormatFloat(lit.Float, 'g', -1, 64)
	case ast.ExprBoolLit:
		lit, _ := e.b.Exprs.Literal(id)
		n.Lit = strconv.FormatBool(lit.Bool)
	case ast.ExprIdent:
		data, _ := e.b.Exprs.Ident(id)
		n.Name = e.name(data.Name)
	case ast.ExprBinary:
		data, _ := e.b.Exprs.Binary(id)
		n.Op = data.Op.String()
		n.Left = e.expr(data.Left)
		n.Right = e.expr(data.Right)
	case ast.ExprUnary:
		data, _ := e.b.Exprs.Unary(id)
		n.Op = data.Op.String()
		n.Operand = e.expr(data.Operand)
	case ast.ExprPostfix:
		data, _ := e.b.Exprs.Postfix(id)
		n.Op = data.Op.String()
		n.Operand = e.expr(data.Operand)
	case ast.ExprIndex:
		data, _ := e.b.Exprs.Index(id)
		n.Target = e.expr(data.Target)
		n.Index = e.expr(data.Index)
	case ast.ExprField:
		data, _ := e.b.Exprs.Field(id)
		n.Target = e.expr(data.Target)
		n.Name = e.name(data.Field)
		n.NameSpan = posPtr(data.FieldSpan)
	case ast.ExprCall:
		data, _ := e.b.Exprs.Call(id)
		n.Name = e.name(data.Callee)
		n.NameSpan = posPtr(data.CalleeSpan)
		for _, a := range data.Args {
			n.Args = append(n.Args, e.expr(a))
		}
	}
	return n
}
