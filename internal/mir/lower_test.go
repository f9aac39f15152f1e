package mir

import (
	"strings"
	"testing"

	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/sema"
	"shadec/internal/testkit"
	"shadec/internal/types"
)

func TestLowerGlobalAssignment(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("x", types.KindFloat)
	sum := tr.Bin(ast.ExprBinaryAdd, tr.Float(2.0), tr.Float(3.0))
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil, tr.Expr(tr.Assign(tr.Ident("x"), sum))))

	m, dump := lowerTree(t, tr, sema.Options{})
	if len(m.Globals) != 1 || m.Globals[0].Type != types.KindFloat {
		t.Fatalf("unexpected globals: %+v", m.Globals)
	}
	expectContains(t, dump,
		"G0: float name=x init=zeroinit float",
		"fn main() -> void:",
		"L0: float [temp] name=tmp1",
		"L0 = 2.0 + 3.0",
		"G0 = copy L0",
		"    return\n",
	)
}

func TestLowerParamsGetSlots(t *testing.T) {
	tr := testkit.NewTree()
	a := tr.Param("a", types.KindFloat)
	b := tr.Param("b", types.KindFloat)
	tr.Fn("add", types.KindFloat, testkit.Params(a, b),
		tr.Block(nil, tr.Return(tr.Bin(ast.ExprBinaryAdd, tr.Ident("a"), tr.Ident("b")))))

	m, dump := lowerTree(t, tr, sema.Options{})
	f := m.FuncByName("add")
	if f == nil {
		t.Fatalf("function add not lowered")
	}
	if len(f.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(f.Params))
	}
	for _, p := range f.Params {
		if f.Locals[p].Flags&LocalFlagParam == 0 {
			t.Fatalf("param local L%d lacks the param flag", p)
		}
	}
	expectContains(t, dump,
		"fn add(L0, L2) -> float:",
		"L1 = copy L0",
		"L3 = copy L2",
		"L4 = copy L1 + copy L3",
		"return copy L4",
	)
}

func TestLowerCallForwardReference(t *testing.T) {
	tr := testkit.NewTree()
	r := tr.Var("r", types.KindFloat)
	tr.Fn("main", types.KindVoid, nil, tr.Block([]ast.ItemID{r},
		tr.Expr(tr.Assign(tr.Ident("r"), tr.Call("twice", tr.Float(1.5)))),
		tr.Expr(tr.Call("noop")),
	))
	x := tr.Param("x", types.KindFloat)
	tr.Fn("twice", types.KindFloat, testkit.Params(x),
		tr.Block(nil, tr.Return(tr.Bin(ast.ExprBinaryMul, tr.Ident("x"), tr.Float(2)))))
	tr.Fn("noop", types.KindVoid, nil, tr.Block(nil))

	_, dump := lowerTree(t, tr, sema.Options{})
	expectContains(t, dump,
		"L1 = call twice(1.5)",
		"L0 = copy L1",
		"    call noop()\n",
		"fn noop() -> void:",
	)
}

func TestLowerVectorEquality(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("a", types.KindVec3)
	tr.Global("b", types.KindVec3)
	tr.Fn("same", types.KindBool, nil,
		tr.Block(nil, tr.Return(tr.Bin(ast.ExprBinaryEq, tr.Ident("a"), tr.Ident("b")))))
	tr.Fn("differ", types.KindBool, nil,
		tr.Block(nil, tr.Return(tr.Bin(ast.ExprBinaryNotEq, tr.Ident("a"), tr.Ident("b")))))

	m, dump := lowerTree(t, tr, sema.Options{})
	same := m.FuncByName("same")
	var sb strings.Builder
	dumpFunc(&sb, same, DumpOptions{})
	body := sb.String()
	if got := strings.Count(body, "extract"); got != 6 {
		t.Fatalf("expected 6 lane extracts, got %d:\n%s", got, body)
	}
	if got := strings.Count(body, " == "); got != 3 {
		t.Fatalf("expected 3 lane compares, got %d:\n%s", got, body)
	}
	if got := strings.Count(body, " && "); got != 2 {
		t.Fatalf("expected 2 and-reductions, got %d:\n%s", got, body)
	}
	expectContains(t, dump, "= not copy L")
}

func TestLowerScalarBroadcast(t *testing.T) {
	tr := testkit.NewTree()
	m := tr.Var("m", types.KindMat2)
	v := tr.Var("v", types.KindVec3)
	tr.Fn("main", types.KindVoid, nil, tr.Block([]ast.ItemID{m, v},
		tr.Expr(tr.Assign(tr.Ident("m"), tr.Bin(ast.ExprBinaryMul, tr.Float(2), tr.Ident("m")))),
		tr.Expr(tr.Assign(tr.Ident("v"), tr.Bin(ast.ExprBinaryAdd, tr.Ident("v"), tr.Ident("v")))),
	))

	_, dump := lowerTree(t, tr, sema.Options{})
	// 2 столбца + 4 компоненты
	if got := strings.Count(dump, "insert"); got != 6 {
		t.Fatalf("expected 6 inserts, got %d:\n%s", got, dump)
	}
	if got := strings.Count(dump, "2.0 * copy"); got != 4 {
		t.Fatalf("expected 4 scalar products, got %d:\n%s", got, dump)
	}
	// одинаковые векторные типы складываются одной инструкцией
	expectContains(t, dump, "copy L1 + copy L1")
}

func TestLowerSwizzleAssignment(t *testing.T) {
	tr := testkit.NewTree()
	p := tr.Param("p", types.KindVec2)
	v := tr.Var("v", types.KindVec4)
	tr.Fn("main", types.KindVoid, testkit.Params(p), tr.Block([]ast.ItemID{v},
		tr.Expr(tr.Assign(tr.Field(tr.Ident("v"), "zx"), tr.Ident("p"))),
	))

	_, dump := lowerTree(t, tr, sema.Options{})
	expectContains(t, dump,
		"L3 = extract copy L1, 0",
		"L4 = insert copy L2, 2, copy L3",
		"L5 = extract copy L1, 1",
		"L6 = insert copy L4, 0, copy L5",
		"L2 = copy L6",
	)
}

func TestLowerSwizzleRead(t *testing.T) {
	tr := testkit.NewTree()
	v := tr.Var("v", types.KindVec4)
	f := tr.Var("f", types.KindFloat)
	w := tr.Var("w", types.KindVec3)
	tr.Fn("main", types.KindVoid, nil, tr.Block([]ast.ItemID{v, f, w},
		tr.Expr(tr.Assign(tr.Ident("f"), tr.Field(tr.Ident("v"), "y"))),
		tr.Expr(tr.Assign(tr.Ident("w"), tr.Field(tr.Ident("v"), "wzx"))),
	))

	_, dump := lowerTree(t, tr, sema.Options{})
	expectContains(t, dump,
		"L3 = extract copy L0, 1",
		"L4 = shuffle copy L0 [3 2 0]",
	)
}

func TestLowerIndexAssignment(t *testing.T) {
	tr := testkit.NewTree()
	m := tr.Var("m", types.KindMat3)
	tr.Fn("main", types.KindVoid, nil, tr.Block([]ast.ItemID{m},
		tr.Expr(tr.Assign(tr.Index(tr.Index(tr.Ident("m"), tr.Int(1)), tr.Int(2)), tr.Float(4))),
	))

	_, dump := lowerTree(t, tr, sema.Options{})
	expectContains(t, dump,
		"L1 = extract copy L0, 1",
		"L2 = insert copy L1, 2, 4.0",
		"L3 = insert copy L0, 1, copy L2",
		"L0 = copy L3",
	)
}

func TestLowerPostfixYieldsOldValue(t *testing.T) {
	tr := testkit.NewTree()
	i := tr.Var("i", types.KindInt)
	tr.Fn("bump", types.KindInt, nil, tr.Block([]ast.ItemID{i},
		tr.Return(tr.Postfix(ast.ExprPostfixInc, tr.Ident("i"))),
	))

	_, dump := lowerTree(t, tr, sema.Options{})
	expectContains(t, dump,
		"L1 = copy L0",
		"L2 = copy L1 + 1",
		"L0 = copy L2",
		"return copy L1",
	)
}

func TestLowerPrefixOnVectorUsesSplat(t *testing.T) {
	tr := testkit.NewTree()
	v := tr.Var("v", types.KindVec3)
	tr.Fn("main", types.KindVoid, nil, tr.Block([]ast.ItemID{v},
		tr.Expr(tr.Unary(ast.ExprUnaryDec, tr.Ident("v"))),
		tr.Expr(tr.Unary(ast.ExprUnaryInc, tr.Field(tr.Ident("v"), "xy"))),
	))

	_, dump := lowerTree(t, tr, sema.Options{})
	expectContains(t, dump,
		"L1 = splat<vec3> 1.0",
		"L2 = copy L0 - copy L1",
		"L0 = copy L2",
		"splat<vec2> 1.0",
	)
}

func TestLowerIfElse(t *testing.T) {
	tr := testkit.NewTree()
	c := tr.Param("c", types.KindBool)
	tr.Fn("pick", types.KindInt, testkit.Params(c), tr.Block(nil,
		tr.If(tr.Ident("c"), tr.Return(tr.Int(1)), tr.Return(tr.Int(2))),
	))

	m, dump := lowerTree(t, tr, sema.Options{DeepReturnCheck: true})
	f := m.FuncByName("pick")
	if len(f.Blocks) != 4 {
		t.Fatalf("expected entry, then, else and join blocks, got %d:\n%s", len(f.Blocks), dump)
	}
	expectContains(t, dump,
		"if copy L1 then bb1 else bb2",
		"return 1",
		"return 2",
		"  bb3:\n    unreachable",
	)
}

func TestLowerLoops(t *testing.T) {
	tr := testkit.NewTree()
	i := tr.Var("i", types.KindInt)
	forBody := tr.Block(nil,
		tr.If(tr.Bin(ast.ExprBinaryEq, tr.Ident("i"), tr.Int(3)), tr.Continue(), ast.NoStmtID),
		tr.If(tr.Bin(ast.ExprBinaryGreater, tr.Ident("i"), tr.Int(5)), tr.Break(), ast.NoStmtID),
	)
	tr.Fn("main", types.KindVoid, nil, tr.Block([]ast.ItemID{i},
		tr.For(
			tr.Assign(tr.Ident("i"), tr.Int(0)),
			tr.Bin(ast.ExprBinaryLess, tr.Ident("i"), tr.Int(10)),
			tr.Postfix(ast.ExprPostfixInc, tr.Ident("i")),
			forBody,
		),
		tr.While(tr.Bool(false), tr.Block(nil, tr.Break())),
	))

	m, dump := lowerTree(t, tr, sema.Options{})
	f := m.FuncByName("main")
	gotos := 0
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermGoto {
			gotos++
		}
	}
	if gotos < 4 {
		t.Fatalf("expected loop back-edges and exits, got %d gotos:\n%s", gotos, dump)
	}
	expectContains(t, dump, "L0 = 0", "copy L0 < 10", "if false then")
}

func TestLowerSwitchFallthrough(t *testing.T) {
	tr := testkit.NewTree()
	x := tr.Param("x", types.KindInt)
	r := tr.Var("r", types.KindInt)
	tr.Fn("classify", types.KindInt, testkit.Params(x), tr.Block([]ast.ItemID{r},
		tr.Switch(tr.Ident("x"),
			tr.Case(tr.Int(1), tr.Expr(tr.Assign(tr.Ident("r"), tr.Int(10)))),
			tr.Case(tr.Unary(ast.ExprUnaryMinus, tr.Int(2)), tr.Expr(tr.Assign(tr.Ident("r"), tr.Int(20))), tr.Break()),
			tr.Default(tr.Expr(tr.Assign(tr.Ident("r"), tr.Int(0)))),
		),
		tr.Return(tr.Ident("r")),
	))

	m, dump := lowerTree(t, tr, sema.Options{})
	f := m.FuncByName("classify")
	var sw *Terminator
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermSwitch {
			sw = &f.Blocks[i].Term
		}
	}
	if sw == nil {
		t.Fatalf("no switch terminator:\n%s", dump)
	}
	if len(sw.Switch.Cases) != 2 || sw.Switch.Cases[0].Value != 1 || sw.Switch.Cases[1].Value != -2 {
		t.Fatalf("unexpected cases: %+v", sw.Switch.Cases)
	}
	// case 1 проваливается в case -2
	first := &f.Blocks[sw.Switch.Cases[0].Target]
	if first.Term.Kind != TermGoto || first.Term.Goto.Target != sw.Switch.Cases[1].Target {
		t.Fatalf("case 1 must fall through into case -2:\n%s", dump)
	}
	if sw.Switch.Default == sw.Switch.Cases[1].Target {
		t.Fatalf("default must have its own block")
	}
}

func TestLowerRejectsIllTypedTree(t *testing.T) {
	tr := testkit.NewTree()
	tr.Fn("main", types.KindVoid, nil,
		tr.Block(nil, tr.Expr(tr.Bin(ast.ExprBinaryAdd, tr.Int(1), tr.Bool(true)))))

	bag := diag.NewBag(0)
	res := sema.Check(tr.B, tr.File, sema.Options{Reporter: diag.BagReporter{Bag: bag}})
	if !bag.HasErrors() {
		t.Fatalf("expected a diagnostic for int + bool")
	}
	if _, err := Lower(tr.B, tr.File, res, Options{}); err == nil {
		t.Fatalf("lowering an ill-typed tree must fail")
	}
}
