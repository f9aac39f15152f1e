package ast

import (
	"testing"

	"shadec/internal/source"
	"shadec/internal/types"
)

func TestArenaIsOneBased(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(0) != nil {
		t.Fatalf("index 0 must be empty")
	}
	id := a.Allocate(42)
	if id != 1 || *a.Get(id) != 42 {
		t.Fatalf("unexpected first allocation %d", id)
	}
	if a.Get(2) != nil {
		t.Fatalf("out of range get must be nil")
	}
}

func TestBuilderRoundTrip(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	file := b.Files.New(source.Span{})
	x := b.StringsInterner.Intern("x")
	v := b.Items.NewVar(source.Span{}, x, source.Span{}, types.KindVec3)
	b.PushItem(file, v)

	ref := b.Exprs.NewIdent(source.Span{}, x)
	sw := b.Exprs.NewField(source.Span{}, ref, b.StringsInterner.Intern("xy"), source.Span{})
	body := b.Stmts.NewBlock(source.Span{}, nil, []StmtID{b.Stmts.NewExpr(source.Span{}, sw)})
	fn := b.Items.NewFn(source.Span{}, b.StringsInterner.Intern("main"), source.Span{}, types.KindVoid, nil, body)
	b.PushItem(file, fn)

	if got := b.Files.Get(file).Items; len(got) != 2 || got[1] != fn {
		t.Fatalf("unexpected file items %v", got)
	}
	if data, ok := b.Items.Var(v); !ok || data.Type != types.KindVec3 {
		t.Fatalf("var payload lost")
	}
	if _, ok := b.Items.Fn(v); ok {
		t.Fatalf("var must not decode as fn")
	}
	field, ok := b.Exprs.Field(sw)
	if !ok || field.Target != ref || b.Name(field.Field) != "xy" {
		t.Fatalf("field payload lost")
	}
	blk, ok := b.Stmts.Block(body)
	if !ok || len(blk.Stmts) != 1 {
		t.Fatalf("block payload lost")
	}
	if name, _ := b.Items.DeclName(fn); b.Name(name) != "main" {
		t.Fatalf("decl name lost")
	}
}

func TestBinaryOpCategories(t *testing.T) {
	cases := map[string]BinaryCategory{
		"+": BinaryArithmetic, "/": BinaryArithmetic,
		"<=": BinaryRelational, ">": BinaryRelational,
		"==": BinaryEquality, "!=": BinaryEquality,
		"&&": BinaryLogical, "||": BinaryLogical,
		"=": BinaryAssignment, "*=": BinaryAssignment,
	}
	for tok, want := range cases {
		op, ok := ParseBinaryOp(tok)
		if !ok {
			t.Fatalf("token %q not parsed", tok)
		}
		if op.String() != tok {
			t.Fatalf("String() = %q, want %q", op.String(), tok)
		}
		if op.Category() != want {
			t.Fatalf("%q category %d, want %d", tok, op.Category(), want)
		}
	}
	if _, ok := ParseBinaryOp("%"); ok {
		t.Fatalf("%% is not an operator of the language")
	}
	if arith, ok := ExprBinaryDivAssign.Arith(); !ok || arith != types.ArithDiv {
		t.Fatalf("/= must map to division")
	}
	if _, ok := ExprBinaryAssign.Arith(); ok {
		t.Fatalf("plain assignment has no arithmetic part")
	}
}

func TestUnaryOps(t *testing.T) {
	op, ok := ParseUnaryOp("-")
	if !ok || op.Arith() != types.ArithSub || op.Mutates() {
		t.Fatalf("unary minus misparsed")
	}
	if !ExprUnaryInc.Mutates() || ExprUnaryInc.Arith() != types.ArithInc {
		t.Fatalf("prefix ++ misparsed")
	}
	if p, ok := ParsePostfixOp("--"); !ok || p != ExprPostfixDec {
		t.Fatalf("postfix -- misparsed")
	}
}
