package ast

import (
	"shadec/internal/source"
	"shadec/internal/types"
)

type ItemKind uint8

const (
	// ItemVar is a variable declaration: global, local or formal parameter.
	ItemVar ItemKind = iota
	ItemFn
)

func (k ItemKind) String() string {
	switch k {
	case ItemVar:
		return "var"
	case ItemFn:
		return "fn"
	default:
		return "item?"
	}
}

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

type VarItem struct {
	Name     source.StringID
	NameSpan source.Span
	Type     types.Kind
}

type FnItem struct {
	Name       source.StringID
	NameSpan   source.Span
	ReturnType types.Kind
	Params     []ItemID // ItemVar
	Body       StmtID   // StmtBlock
}

type Items struct {
	Arena *Arena[Item]
	Vars  *Arena[VarItem]
	Fns   *Arena[FnItem]
}

func NewItems(capHint uint) *Items {
	return &Items{
		Arena: NewArena[Item](capHint),
		Vars:  NewArena[VarItem](capHint),
		Fns:   NewArena[FnItem](capHint >> 2),
	}
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) new(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{Kind: kind, Span: span, Payload: payload}))
}

func (i *Items) NewVar(span source.Span, name source.StringID, nameSpan source.Span, ty types.Kind) ItemID {
	payload := i.Vars.Allocate(VarItem{Name: name, NameSpan: nameSpan, Type: ty})
	return i.new(ItemVar, span, PayloadID(payload))
}

func (i *Items) NewFn(span source.Span, name source.StringID, nameSpan source.Span, ret types.Kind, params []ItemID, body StmtID) ItemID {
	payload := i.Fns.Allocate(FnItem{
		Name:       name,
		NameSpan:   nameSpan,
		ReturnType: ret,
		Params:     params,
		Body:       body,
	})
	return i.new(ItemFn, span, PayloadID(payload))
}

func (i *Items) Var(id ItemID) (*VarItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemVar {
		return nil, false
	}
	return i.Vars.Get(uint32(item.Payload)), true
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

// DeclName returns the declared name and its span for any item kind.
func (i *Items) DeclName(id ItemID) (source.StringID, source.Span) {
	if v, ok := i.Var(id); ok {
		return v.Name, v.NameSpan
	}
	if fn, ok := i.Fn(id); ok {
		return fn.Name, fn.NameSpan
	}
	return source.NoStringID, source.Span{}
}
