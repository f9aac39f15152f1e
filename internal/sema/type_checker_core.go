package sema

import (
	"fmt"

	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/source"
	"shadec/internal/symbols"
	"shadec/internal/trace"
	"shadec/internal/types"
)

// binding is the checking-time payload of a scope entry.
type binding struct {
	Item ast.ItemID
	Kind ast.ItemKind
	Type types.Kind // variable type or function return type
	Span source.Span
}

type typeChecker struct {
	builder  *ast.Builder
	fileID   ast.FileID
	reporter diag.Reporter
	tracer   trace.Tracer
	opts     Options
	result   *Result

	scopes *symbols.Stack[binding]

	// контекст текущей функции; сохраняется и восстанавливается в checkFn
	fnItem      ast.ItemID
	fn          *ast.FnItem
	loopDepth   int
	switchDepth int

	passSpan uint64
}

func (tc *typeChecker) run() {
	file := tc.builder.Files.Get(tc.fileID)
	if file == nil {
		return
	}

	root := trace.Begin(tc.tracer, trace.ScopePass, "sema_check", 0)
	defer root.End("")
	tc.passSpan = root.ID()

	phase := func(name string) func() {
		span := trace.Begin(tc.tracer, trace.ScopePass, name, tc.passSpan)
		return func() { span.End("") }
	}

	tc.scopes = symbols.NewStack[binding]()
	tc.scopes.Enter(symbols.ScopeGlobal)

	done := phase("register_globals")
	for _, itemID := range file.Items {
		tc.declare(itemID)
	}
	done()

	done = phase("walk_items")
	for _, itemID := range file.Items {
		tc.walkItem(itemID)
	}
	done()

	tc.scopes.Exit()
	root.WithExtra("exprs", fmt.Sprint(len(tc.result.ExprTypes)))
}

func (tc *typeChecker) report(code diag.Code, span source.Span, format string, args ...any) {
	if tc.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	diag.ReportError(tc.reporter, code, span, msg).Emit()
}

// reportIssue maps a lattice issue onto its diagnostic; IssueNone is silent.
func (tc *typeChecker) reportIssue(issue types.Issue, span source.Span, what string) {
	switch issue {
	case types.IssueNone:
		return
	case types.IssueIncompatibleOperand:
		tc.report(diag.SemaIncompatibleOperand, span, "incompatible operand: %s", what)
	case types.IssueIncompatibleOperands:
		tc.report(diag.SemaIncompatibleOperands, span, "incompatible operands: %s", what)
	case types.IssueInaccessibleSwizzle:
		tc.report(diag.SemaInaccessibleSwizzle, span, "swizzle %s", what)
	case types.IssueInvalidSwizzle:
		tc.report(diag.SemaInvalidSwizzle, span, "invalid swizzle %s", what)
	case types.IssueSwizzleOutOfBound:
		tc.report(diag.SemaSwizzleOutOfBound, span, "swizzle %s out of bound", what)
	case types.IssueOversizedVector:
		tc.report(diag.SemaOversizedVector, span, "swizzle %s is oversized", what)
	case types.IssueNotIndexable:
		tc.report(diag.SemaNotIndexable, span, "%s cannot be indexed", what)
	case types.IssueIndexNotInteger:
		tc.report(diag.SemaIndexNotInteger, span, "index must be int, got %s", what)
	default:
		tc.report(diag.SemaInfo, span, "%s: %s", issue, what)
	}
}

// insert binds item in the top frame, reporting a conflict with the earlier declaration.
func (tc *typeChecker) insert(itemID ast.ItemID, b binding) {
	name, span := tc.builder.Items.DeclName(itemID)
	b.Item = itemID
	b.Span = span
	err := tc.scopes.Insert(name, b)
	if err == nil {
		return
	}
	prev, _ := tc.scopes.LookupLocal(name)
	diag.ReportError(tc.reporter, diag.SemaDeclarationConflict, span,
		fmt.Sprintf("declaration of '%s' conflicts with previous declaration", tc.builder.Name(name))).
		WithNote(prev.Span, "previous declaration is here").
		Emit()
}

func (tc *typeChecker) enter(kind symbols.ScopeKind) { tc.scopes.Enter(kind) }
func (tc *typeChecker) leave()                        { tc.scopes.Exit() }

func (tc *typeChecker) record(expr ast.ExprID, ty types.Kind) types.Kind {
	tc.result.ExprTypes[expr] = ty
	return ty
}

func (tc *typeChecker) exprSpan(expr ast.ExprID) source.Span {
	if e := tc.builder.Exprs.Get(expr); e != nil {
		return e.Span
	}
	return source.Span{}
}
