package sema

import (
	"maps"
	"testing"

	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/testkit"
	"shadec/internal/types"
)

func TestFloatAssignmentChecksClean(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("x", types.KindFloat)
	sum := tr.Bin(ast.ExprBinaryAdd, tr.Float(2.0), tr.Float(3.0))
	assign := tr.Assign(tr.Ident("x"), sum)
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil, tr.Expr(assign)))

	res, bag := runCheck(tr, Options{})
	expectCodes(t, bag)
	if got := res.TypeOf(sum); got != types.KindFloat {
		t.Fatalf("sum type: got %s, want float", got)
	}
	if got := res.TypeOf(assign); got != types.KindFloat {
		t.Fatalf("assignment type: got %s, want float", got)
	}
	if res.Errors != 0 {
		t.Fatalf("expected zero errors, got %d", res.Errors)
	}
}

func TestOversizedSwizzle(t *testing.T) {
	tr := testkit.NewTree()
	v := tr.Var("v", types.KindVec3)
	sw := tr.Field(tr.Ident("v"), "xyzw")
	tr.Fn("main", types.KindVoid, nil, tr.Block([]ast.ItemID{v}, tr.Expr(sw)))

	res, bag := runCheck(tr, Options{})
	expectCodes(t, bag, diag.SemaOversizedVector)
	if res.TypeOf(sw) != types.KindError {
		t.Fatalf("oversized swizzle must be error-typed")
	}
}

func TestSwizzleDiagnostics(t *testing.T) {
	cases := []struct {
		name  string
		base  types.Kind
		field string
		want  []diag.Code
		ty    types.Kind
	}{
		{"vec3 xy", types.KindVec3, "xy", nil, types.KindVec2},
		{"vec4 single lane", types.KindVec4, "w", nil, types.KindFloat},
		{"vec2 z", types.KindVec2, "z", []diag.Code{diag.SemaSwizzleOutOfBound}, types.KindError},
		{"vec4 five", types.KindVec4, "xyzzw", []diag.Code{diag.SemaOversizedVector}, types.KindError},
		{"vec3 bad char", types.KindVec3, "xq", []diag.Code{diag.SemaInvalidSwizzle}, types.KindError},
		{"int base", types.KindInt, "x", []diag.Code{diag.SemaInaccessibleSwizzle}, types.KindError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := testkit.NewTree()
			tr.Global("b", tc.base)
			sw := tr.Field(tr.Ident("b"), tc.field)
			tr.Fn("main", types.KindVoid, nil, tr.Block(nil, tr.Expr(sw)))
			res, bag := runCheck(tr, Options{})
			expectCodes(t, bag, tc.want...)
			if got := res.TypeOf(sw); got != tc.ty {
				t.Fatalf("type: got %s, want %s", got, tc.ty)
			}
		})
	}
}

func TestForWithIntTestAndLegalBreak(t *testing.T) {
	tr := testkit.NewTree()
	i := tr.Var("i", types.KindInt)
	init := tr.Assign(tr.Ident("i"), tr.Int(0))
	test := tr.Ident("i")
	step := tr.Assign(tr.Ident("i"), tr.Bin(ast.ExprBinaryAdd, tr.Ident("i"), tr.Int(1)))
	loop := tr.For(init, test, step, tr.Block(nil, tr.Break()))
	tr.Fn("main", types.KindVoid, nil, tr.Block([]ast.ItemID{i}, loop))

	_, bag := runCheck(tr, Options{})
	expectCodes(t, bag, diag.SemaTestNotBoolean)
	if got := bag.Items()[0].Primary; got != tr.B.Exprs.Get(test).Span {
		t.Fatalf("diagnostic must point at the test expression, got %v", got)
	}
}

func TestBreakContinuePlacement(t *testing.T) {
	tr := testkit.NewTree()
	x := tr.Var("x", types.KindInt)
	sw := tr.Switch(tr.Ident("x"),
		tr.Case(tr.Int(1), tr.Break()),
		tr.Default(tr.Continue()),
	)
	nested := tr.While(tr.Bool(true), tr.Block(nil,
		tr.While(tr.Bool(true), tr.Block(nil, tr.Break())),
		tr.Continue(),
	))
	tr.Fn("main", types.KindVoid, nil, tr.Block([]ast.ItemID{x},
		tr.Break(),
		sw,
		nested,
		tr.Continue(),
	))

	_, bag := runCheck(tr, Options{})
	expectCodes(t, bag,
		diag.SemaBreakOutsideLoop,
		diag.SemaContinueOutsideLoop, // continue inside switch only
		diag.SemaContinueOutsideLoop,
	)
}

func TestReturnMissingIsShallow(t *testing.T) {
	build := func() *testkit.Tree {
		tr := testkit.NewTree()
		branch := tr.If(tr.Bool(true), tr.Block(nil, tr.Return(tr.Int(1))), ast.NoStmtID)
		tr.Fn("f", types.KindInt, nil, tr.Block(nil, branch))
		return tr
	}
	_, bag := runCheck(build(), Options{})
	expectCodes(t, bag, diag.SemaReturnMissing)

	_, bag = runCheck(build(), Options{DeepReturnCheck: true})
	expectCodes(t, bag, diag.SemaReturnMissing)
}

func TestDeepReturnCheck(t *testing.T) {
	tr := testkit.NewTree()
	both := tr.If(tr.Bool(true),
		tr.Block(nil, tr.Return(tr.Int(1))),
		tr.Block(nil, tr.Return(tr.Int(2))))
	tr.Fn("a", types.KindInt, nil, tr.Block(nil, both))

	x := tr.Param("x", types.KindInt)
	sw := tr.Switch(tr.Ident("x"),
		tr.Case(tr.Int(0)),
		tr.Case(tr.Int(1), tr.Return(tr.Int(1))),
		tr.Default(tr.Return(tr.Int(2))),
	)
	tr.Fn("b", types.KindInt, testkit.Params(x), tr.Block(nil, sw))

	loop := tr.While(tr.Bool(true), tr.Block(nil, tr.Return(tr.Int(3))))
	tr.Fn("c", types.KindInt, nil, tr.Block(nil, loop))

	_, bag := runCheck(tr, Options{DeepReturnCheck: true})
	expectCodes(t, bag)

	_, bag = runCheck(tr, Options{})
	expectCodes(t, bag, diag.SemaReturnMissing, diag.SemaReturnMissing, diag.SemaReturnMissing)
}

func TestReturnMismatch(t *testing.T) {
	tr := testkit.NewTree()
	tr.Fn("v", types.KindVoid, nil, tr.Block(nil, tr.Return(tr.Int(1))))
	tr.Fn("f", types.KindFloat, nil, tr.Block(nil, tr.Return(tr.Int(1))))
	tr.Fn("g", types.KindFloat, nil, tr.Block(nil, tr.Return(ast.NoExprID)))
	tr.Fn("h", types.KindFloat, nil, tr.Block(nil, tr.Return(tr.Ident("nope"))))

	_, bag := runCheck(tr, Options{})
	expectCodes(t, bag,
		diag.SemaReturnMismatch,
		diag.SemaReturnMismatch,
		diag.SemaReturnMismatch,
		diag.SemaNoDeclarationFound,
	)
}

func TestErrorOperandsDoNotCascade(t *testing.T) {
	tr := testkit.NewTree()
	bad := tr.Bin(ast.ExprBinaryAdd, tr.Ident("y"), tr.Float(1))
	chain := tr.Bin(ast.ExprBinaryMul, bad, tr.Bool(true))
	cond := tr.Bin(ast.ExprBinaryLess, chain, tr.Int(0))
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil, tr.If(cond, tr.Block(nil), ast.NoStmtID)))

	res, bag := runCheck(tr, Options{})
	expectCodes(t, bag, diag.SemaNoDeclarationFound)
	if res.TypeOf(cond) != types.KindError {
		t.Fatalf("poison must propagate to the condition")
	}
}

func TestArithmeticDiagnostics(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("v", types.KindVec2)
	tr.Global("m", types.KindMat2)
	tr.Global("b", types.KindBool)
	mul := tr.Bin(ast.ExprBinaryMul, tr.Ident("v"), tr.Ident("m"))
	add := tr.Bin(ast.ExprBinaryAdd, tr.Ident("v"), tr.Ident("m"))
	bools := tr.Bin(ast.ExprBinaryDiv, tr.Ident("b"), tr.Ident("b"))
	neg := tr.Unary(ast.ExprUnaryMinus, tr.Ident("b"))
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil,
		tr.Expr(mul), tr.Expr(add), tr.Expr(bools), tr.Expr(neg)))

	res, bag := runCheck(tr, Options{})
	expectCodes(t, bag,
		diag.SemaIncompatibleOperands,
		diag.SemaIncompatibleOperands,
		diag.SemaIncompatibleOperand,
	)
	if res.TypeOf(mul) != types.KindVec2 {
		t.Fatalf("vec2*mat2 must be vec2, got %s", res.TypeOf(mul))
	}
}

func TestDeclarationConflictsAndShadowing(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("g", types.KindInt)
	tr.Global("g", types.KindFloat)

	a := tr.Param("a", types.KindInt)
	redecl := tr.Var("a", types.KindInt)
	tr.Fn("f", types.KindVoid, testkit.Params(a), tr.Block([]ast.ItemID{redecl}))

	inner := tr.Var("g", types.KindVec2)
	use := tr.Field(tr.Ident("g"), "xy")
	tr.Fn("h", types.KindVoid, nil, tr.Block(nil,
		tr.Block([]ast.ItemID{inner}, tr.Expr(use)),
	))

	res, bag := runCheck(tr, Options{})
	expectCodes(t, bag, diag.SemaDeclarationConflict, diag.SemaDeclarationConflict)
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("conflict must point at the previous declaration")
	}
	if res.TypeOf(use) != types.KindVec2 {
		t.Fatalf("inner declaration must shadow the global")
	}
}

func TestCalls(t *testing.T) {
	tr := testkit.NewTree()
	// вызов раньше объявления: глобальная регистрация идёт первым проходом
	early := tr.Call("add", tr.Int(1), tr.Int(2))
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil,
		tr.Expr(early),
		tr.Expr(tr.Call("add", tr.Int(1))),
		tr.Expr(tr.Call("add", tr.Int(1), tr.Float(2))),
		tr.Expr(tr.Call("missing")),
		tr.Expr(tr.Call("k")),
		tr.Expr(tr.Ident("add")),
	))
	x, y := tr.Param("x", types.KindInt), tr.Param("y", types.KindInt)
	tr.Fn("add", types.KindInt, testkit.Params(x, y), tr.Block(nil,
		tr.Return(tr.Bin(ast.ExprBinaryAdd, tr.Ident("x"), tr.Ident("y")))))
	tr.Global("k", types.KindInt)

	res, bag := runCheck(tr, Options{})
	expectCodes(t, bag,
		diag.SemaArgCountMismatch,
		diag.SemaArgTypeMismatch,
		diag.SemaNoDeclarationFound,
		diag.SemaNotAFunction,
		diag.SemaNotAVariable,
	)
	if res.TypeOf(early) != types.KindInt {
		t.Fatalf("call type: got %s, want int", res.TypeOf(early))
	}
}

func TestAssignability(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("v", types.KindVec3)
	tr.Global("w", types.KindVec2)
	tr.Fn("one", types.KindInt, nil, tr.Block(nil, tr.Return(tr.Int(1))))
	okSwizzle := tr.Assign(tr.Field(tr.Ident("v"), "zx"), tr.Ident("w"))
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil,
		tr.Expr(okSwizzle),
		tr.Expr(tr.Assign(tr.Int(1), tr.Int(2))),
		tr.Expr(tr.Assign(tr.Field(tr.Ident("v"), "xx"), tr.Ident("w"))),
		tr.Expr(tr.Postfix(ast.ExprPostfixInc, tr.Call("one"))),
		tr.Expr(tr.Unary(ast.ExprUnaryInc, tr.Index(tr.Ident("v"), tr.Int(0)))),
	))

	res, bag := runCheck(tr, Options{})
	expectCodes(t, bag, diag.SemaNotAssignable, diag.SemaNotAssignable, diag.SemaNotAssignable)
	if res.TypeOf(okSwizzle) != types.KindVec2 {
		t.Fatalf("swizzle assignment type: got %s", res.TypeOf(okSwizzle))
	}
}

func TestCompoundAssignmentAndIndex(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("v", types.KindVec4)
	tr.Global("m", types.KindMat3)
	tr.Global("f", types.KindFloat)
	scaled := tr.Bin(ast.ExprBinaryMulAssign, tr.Ident("v"), tr.Float(2))
	column := tr.Index(tr.Ident("m"), tr.Int(1))
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil,
		tr.Expr(scaled),
		tr.Expr(column),
		tr.Expr(tr.Bin(ast.ExprBinaryAddAssign, tr.Ident("f"), tr.Ident("v"))),
		tr.Expr(tr.Index(tr.Ident("v"), tr.Float(1))),
		tr.Expr(tr.Index(tr.Ident("f"), tr.Int(0))),
	))

	res, bag := runCheck(tr, Options{})
	expectCodes(t, bag,
		diag.SemaIncompatibleOperands, // f += v yields vec4, not float
		diag.SemaIndexNotInteger,
		diag.SemaNotIndexable,
	)
	if res.TypeOf(scaled) != types.KindVec4 || res.TypeOf(column) != types.KindVec3 {
		t.Fatalf("unexpected types %s %s", res.TypeOf(scaled), res.TypeOf(column))
	}
}

func TestSwitchRules(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("f", types.KindFloat)
	tr.Global("i", types.KindInt)
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil,
		tr.Switch(tr.Ident("f"), tr.Default()),
		tr.Switch(tr.Ident("i"),
			tr.Case(tr.Int(1)),
			tr.Case(tr.Unary(ast.ExprUnaryMinus, tr.Int(1))),
			tr.Case(tr.Int(1)),
			tr.Case(tr.Ident("i")),
			tr.Default(tr.Break()),
		),
	))

	_, bag := runCheck(tr, Options{})
	expectCodes(t, bag, diag.SemaSwitchNotInteger, diag.SemaDuplicateCase, diag.SemaCaseNotConstant)
}

func TestSwitchSharesOneFrame(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("i", types.KindInt)
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil,
		tr.Switch(tr.Ident("i"),
			tr.Case(tr.Int(1), tr.Decl(tr.Var("t", types.KindInt))),
			tr.Case(tr.Int(2), tr.Decl(tr.Var("t", types.KindFloat))),
			// видно объявление из предыдущего case
			tr.Default(tr.Expr(tr.Assign(tr.Ident("t"), tr.Int(0)))),
		),
		// после switch кадр закрыт
		tr.Expr(tr.Ident("t")),
	))

	_, bag := runCheck(tr, Options{})
	expectCodes(t, bag, diag.SemaDeclarationConflict, diag.SemaNoDeclarationFound)
}

func TestVoidVariable(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("nothing", types.KindVoid)
	use := tr.Bin(ast.ExprBinaryAdd, tr.Ident("nothing"), tr.Int(1))
	tr.Fn("main", types.KindVoid, nil, tr.Block(nil, tr.Expr(use)))

	_, bag := runCheck(tr, Options{})
	expectCodes(t, bag, diag.SemaVoidVariable)
}

func TestCheckIsIdempotent(t *testing.T) {
	tr := testkit.NewTree()
	tr.Global("color", types.KindVec4)
	n := tr.Param("n", types.KindInt)
	i := tr.Var("i", types.KindInt)
	body := tr.Block([]ast.ItemID{i},
		tr.For(
			tr.Assign(tr.Ident("i"), tr.Int(0)),
			tr.Bin(ast.ExprBinaryLess, tr.Ident("i"), tr.Ident("n")),
			tr.Postfix(ast.ExprPostfixInc, tr.Ident("i")),
			tr.Block(nil, tr.Expr(tr.Bin(ast.ExprBinaryMulAssign, tr.Field(tr.Ident("color"), "xyz"), tr.Float(0.5)))),
		),
		tr.Return(tr.Field(tr.Ident("color"), "w")),
	)
	tr.Fn("shade", types.KindFloat, testkit.Params(n), body)

	first, bag1 := runCheck(tr, Options{})
	second, bag2 := runCheck(tr, Options{})
	expectCodes(t, bag1)
	expectCodes(t, bag2)
	if !maps.Equal(first.ExprTypes, second.ExprTypes) {
		t.Fatalf("types differ between runs")
	}
	if len(first.ExprTypes) == 0 {
		t.Fatalf("expected recorded types")
	}
}
