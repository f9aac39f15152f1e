// Package ast is the arena-backed syntax tree consumed by the checker and the
// lowering pass. Nodes are produced by an external parser (see internal/astio)
// and are never mutated once built.
package ast

import "shadec/internal/source"

type Hints struct{ Files, Items, Stmts, Exprs uint }

type Builder struct {
	Files           *Files
	Items           *Items
	Stmts           *Stmts
	Exprs           *Exprs
	StringsInterner *source.Interner
}

// NewBuilder allocates arenas sized by hints; a nil interner gets a fresh one.
func NewBuilder(hints Hints, interner *source.Interner) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 2
	}
	if hints.Items == 0 {
		hints.Items = 1 << 6
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if interner == nil {
		interner = source.NewInterner()
	}
	return &Builder{
		Files:           NewFiles(hints.Files),
		Items:           NewItems(hints.Items),
		Stmts:           NewStmts(hints.Stmts),
		Exprs:           NewExprs(hints.Exprs),
		StringsInterner: interner,
	}
}

func (b *Builder) PushItem(file FileID, item ItemID) {
	if f := b.Files.Get(file); f != nil {
		f.Items = append(f.Items, item)
	}
}

// Name resolves an interned identifier; unknown ids render as "_".
func (b *Builder) Name(id source.StringID) string {
	if s, ok := b.StringsInterner.Lookup(id); ok && s != "" {
		return s
	}
	return "_"
}
