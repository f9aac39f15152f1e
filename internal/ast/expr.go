package ast

import "shadec/internal/source"

type ExprKind uint8

const (
	ExprIntLit ExprKind = iota
	ExprFloatLit
	ExprBoolLit
	ExprIdent
	ExprBinary
	ExprUnary
	ExprPostfix
	ExprIndex
	// ExprField is member access; for vectors it is a swizzle.
	ExprField
	ExprCall
	// ExprEmpty stands for an omitted expression (e.g. `for (;;)` parts).
	ExprEmpty
	// ExprError replaces a malformed subtree.
	ExprError
)

func (k ExprKind) String() string {
	switch k {
	case ExprIntLit:
		return "int"
	case ExprFloatLit:
		return "float"
	case ExprBoolLit:
		return "bool"
	case ExprIdent:
		return "ident"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprPostfix:
		return "postfix"
	case ExprIndex:
		return "index"
	case ExprField:
		return "field"
	case ExprCall:
		return "call"
	case ExprEmpty:
		return "empty"
	case ExprError:
		return "error"
	default:
		return "expr?"
	}
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprLiteralData struct {
	Int   int64
	Float float64
	Bool  bool
}

type ExprIdentData struct {
	Name source.StringID
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprPostfixData struct {
	Op      ExprPostfixOp
	Operand ExprID
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type ExprFieldData struct {
	Target    ExprID
	Field     source.StringID
	FieldSpan source.Span
}

type ExprCallData struct {
	Callee     source.StringID
	CalleeSpan source.Span
	Args       []ExprID
}

type Exprs struct {
	Arena     *Arena[Expr]
	Literals  *Arena[ExprLiteralData]
	Idents    *Arena[ExprIdentData]
	Binaries  *Arena[ExprBinaryData]
	Unaries   *Arena[ExprUnaryData]
	Postfixes *Arena[ExprPostfixData]
	Indices   *Arena[ExprIndexData]
	Fields    *Arena[ExprFieldData]
	Calls     *Arena[ExprCallData]
}

func NewExprs(capHint uint) *Exprs {
	small := capHint >> 3
	return &Exprs{
		Arena:     NewArena[Expr](capHint),
		Literals:  NewArena[ExprLiteralData](capHint >> 1),
		Idents:    NewArena[ExprIdentData](capHint >> 1),
		Binaries:  NewArena[ExprBinaryData](capHint >> 1),
		Unaries:   NewArena[ExprUnaryData](small),
		Postfixes: NewArena[ExprPostfixData](small),
		Indices:   NewArena[ExprIndexData](small),
		Fields:    NewArena[ExprFieldData](small),
		Calls:     NewArena[ExprCallData](small),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) NewIntLit(span source.Span, v int64) ExprID {
	return e.new(ExprIntLit, span, e.Literals.Allocate(ExprLiteralData{Int: v}))
}

func (e *Exprs) NewFloatLit(span source.Span, v float64) ExprID {
	return e.new(ExprFloatLit, span, e.Literals.Allocate(ExprLiteralData{Float: v}))
}

func (e *Exprs) NewBoolLit(span source.Span, v bool) ExprID {
	return e.new(ExprBoolLit, span, e.Literals.Allocate(ExprLiteralData{Bool: v}))
}

func (e *Exprs) NewIdent(span source.Span, name source.StringID) ExprID {
	return e.new(ExprIdent, span, e.Idents.Allocate(ExprIdentData{Name: name}))
}

func (e *Exprs) NewBinary(span source.Span, op ExprBinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

func (e *Exprs) NewUnary(span source.Span, op ExprUnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, span, e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
}

func (e *Exprs) NewPostfix(span source.Span, op ExprPostfixOp, operand ExprID) ExprID {
	return e.new(ExprPostfix, span, e.Postfixes.Allocate(ExprPostfixData{Op: op, Operand: operand}))
}

func (e *Exprs) NewIndex(span source.Span, target, index ExprID) ExprID {
	return e.new(ExprIndex, span, e.Indices.Allocate(ExprIndexData{Target: target, Index: index}))
}

func (e *Exprs) NewField(span source.Span, target ExprID, field source.StringID, fieldSpan source.Span) ExprID {
	return e.new(ExprField, span, e.Fields.Allocate(ExprFieldData{Target: target, Field: field, FieldSpan: fieldSpan}))
}

func (e *Exprs) NewCall(span source.Span, callee source.StringID, calleeSpan source.Span, args []ExprID) ExprID {
	return e.new(ExprCall, span, e.Calls.Allocate(ExprCallData{Callee: callee, CalleeSpan: calleeSpan, Args: args}))
}

func (e *Exprs) NewEmpty(span source.Span) ExprID {
	return e.new(ExprEmpty, span, 0)
}

func (e *Exprs) NewError(span source.Span) ExprID {
	return e.new(ExprError, span, 0)
}

// Literal returns the payload of any literal kind.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	expr := e.Get(id)
	if expr == nil || (expr.Kind != ExprIntLit && expr.Kind != ExprFloatLit && expr.Kind != ExprBoolLit) {
		return nil, false
	}
	return e.Literals.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Postfix(id ExprID) (*ExprPostfixData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprPostfix {
		return nil, false
	}
	return e.Postfixes.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIndex {
		return nil, false
	}
	return e.Indices.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Field(id ExprID) (*ExprFieldData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprField {
		return nil, false
	}
	return e.Fields.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

// IsEmpty treats a missing id like an explicit empty expression.
func (e *Exprs) IsEmpty(id ExprID) bool {
	expr := e.Get(id)
	return expr == nil || expr.Kind == ExprEmpty
}
