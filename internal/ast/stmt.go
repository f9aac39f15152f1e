package ast

import "shadec/internal/source"

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtDecl
	StmtExpr
	StmtIf
	StmtFor
	StmtWhile
	StmtBreak
	StmtContinue
	StmtReturn
	StmtSwitch
)

func (k StmtKind) String() string {
	switch k {
	case StmtBlock:
		return "block"
	case StmtDecl:
		return "decl"
	case StmtExpr:
		return "expr"
	case StmtIf:
		return "if"
	case StmtFor:
		return "for"
	case StmtWhile:
		return "while"
	case StmtBreak:
		return "break"
	case StmtContinue:
		return "continue"
	case StmtReturn:
		return "return"
	case StmtSwitch:
		return "switch"
	default:
		return "stmt?"
	}
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// BlockStmt holds local declarations first, then statements.
type BlockStmt struct {
	Decls []ItemID
	Stmts []StmtID
}

type DeclStmt struct {
	Item ItemID
}

type ExprStmt struct {
	Expr ExprID
}

type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID when absent
}

// ForStmt: Init and Step may be NoExprID or ExprEmpty.
type ForStmt struct {
	Init ExprID
	Cond ExprID
	Step ExprID
	Body StmtID
}

type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

type ReturnStmt struct {
	Expr ExprID // NoExprID for bare return
}

// SwitchCase with Label == NoExprID is the default case.
type SwitchCase struct {
	Span  source.Span
	Label ExprID
	Body  []StmtID
}

func (c SwitchCase) IsDefault() bool { return !c.Label.IsValid() }

type SwitchStmt struct {
	Value ExprID
	Cases []SwitchCase
}

type Stmts struct {
	Arena    *Arena[Stmt]
	Blocks   *Arena[BlockStmt]
	Decls    *Arena[DeclStmt]
	Exprs    *Arena[ExprStmt]
	Ifs      *Arena[IfStmt]
	Fors     *Arena[ForStmt]
	Whiles   *Arena[WhileStmt]
	Returns  *Arena[ReturnStmt]
	Switches *Arena[SwitchStmt]
}

func NewStmts(capHint uint) *Stmts {
	small := capHint >> 3
	return &Stmts{
		Arena:    NewArena[Stmt](capHint),
		Blocks:   NewArena[BlockStmt](capHint >> 1),
		Decls:    NewArena[DeclStmt](small),
		Exprs:    NewArena[ExprStmt](capHint >> 1),
		Ifs:      NewArena[IfStmt](small),
		Fors:     NewArena[ForStmt](small),
		Whiles:   NewArena[WhileStmt](small),
		Returns:  NewArena[ReturnStmt](small),
		Switches: NewArena[SwitchStmt](small),
	}
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (s *Stmts) NewBlock(span source.Span, decls []ItemID, stmts []StmtID) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(BlockStmt{Decls: decls, Stmts: stmts}))
}

func (s *Stmts) NewDecl(span source.Span, item ItemID) StmtID {
	return s.new(StmtDecl, span, s.Decls.Allocate(DeclStmt{Item: item}))
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(ExprStmt{Expr: expr}))
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(IfStmt{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) NewFor(span source.Span, init, cond, step ExprID, body StmtID) StmtID {
	return s.new(StmtFor, span, s.Fors.Allocate(ForStmt{Init: init, Cond: cond, Step: step, Body: body}))
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	return s.new(StmtWhile, span, s.Whiles.Allocate(WhileStmt{Cond: cond, Body: body}))
}

func (s *Stmts) NewBreak(span source.Span) StmtID {
	return s.new(StmtBreak, span, 0)
}

func (s *Stmts) NewContinue(span source.Span) StmtID {
	return s.new(StmtContinue, span, 0)
}

func (s *Stmts) NewReturn(span source.Span, expr ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnStmt{Expr: expr}))
}

func (s *Stmts) NewSwitch(span source.Span, value ExprID, cases []SwitchCase) StmtID {
	return s.new(StmtSwitch, span, s.Switches.Allocate(SwitchStmt{Value: value, Cases: cases}))
}

func (s *Stmts) Block(id StmtID) (*BlockStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(st.Payload)), true
}

func (s *Stmts) Decl(id StmtID) (*DeclStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtDecl {
		return nil, false
	}
	return s.Decls.Get(uint32(st.Payload)), true
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(st.Payload)), true
}

func (s *Stmts) If(id StmtID) (*IfStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(st.Payload)), true
}

func (s *Stmts) For(id StmtID) (*ForStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtFor {
		return nil, false
	}
	return s.Fors.Get(uint32(st.Payload)), true
}

func (s *Stmts) While(id StmtID) (*WhileStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtWhile {
		return nil, false
	}
	return s.Whiles.Get(uint32(st.Payload)), true
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(st.Payload)), true
}

func (s *Stmts) Switch(id StmtID) (*SwitchStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtSwitch {
		return nil, false
	}
	return s.Switches.Get(uint32(st.Payload)), true
}
