package sema

import (
	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/trace"
	"shadec/internal/types"
)

// Options configure a semantic pass over a file.
type Options struct {
	Reporter diag.Reporter
	Tracer   trace.Tracer
	// DeepReturnCheck replaces the top-level scan for `return` with an
	// all-paths analysis of the function body.
	DeepReturnCheck bool
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	// ExprTypes holds the resolved type of every visited expression;
	// ill-typed nodes map to types.KindError.
	ExprTypes map[ast.ExprID]types.Kind
	// Refs maps identifier and call expressions to the declaration they resolved to.
	Refs map[ast.ExprID]ast.ItemID
	// Errors counts error diagnostics produced by this pass.
	Errors int
}

// TypeOf returns the recorded type of expr, KindInvalid when it was never visited.
func (r *Result) TypeOf(expr ast.ExprID) types.Kind {
	if r == nil {
		return types.KindInvalid
	}
	return r.ExprTypes[expr]
}

// Check performs scoped name resolution and type checking of one file.
// Diagnostics go to opts.Reporter; the AST is never modified, so repeated
// runs over the same builder give identical results.
func Check(builder *ast.Builder, fileID ast.FileID, opts Options) *Result {
	res := &Result{
		ExprTypes: make(map[ast.ExprID]types.Kind),
		Refs:      make(map[ast.ExprID]ast.ItemID),
	}
	if builder == nil || fileID == ast.NoFileID {
		return res
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	counter := &diag.CountingReporter{Next: opts.Reporter}
	checker := typeChecker{
		builder:  builder,
		fileID:   fileID,
		reporter: counter,
		tracer:   tracer,
		opts:     opts,
		result:   res,
	}
	checker.run()
	res.Errors = counter.Errors
	return res
}
