package mir

import (
	"shadec/internal/ast"
	"shadec/internal/source"
	"shadec/internal/types"
)

type FuncID int32
type BlockID int32
type LocalID int32
type GlobalID int32

const (
	NoFuncID   FuncID   = -1
	NoBlockID  BlockID  = -1
	NoLocalID  LocalID  = -1
	NoGlobalID GlobalID = -1
)

type LocalFlags uint8

const (
	// LocalFlagParam marks the incoming value of a formal parameter.
	LocalFlagParam LocalFlags = 1 << iota
	// LocalFlagTemp marks compiler-introduced temporaries.
	LocalFlagTemp
)

// Local is a storage slot in the function's entry region.
type Local struct {
	Item  ast.ItemID // NoItemID for temporaries
	Type  types.Kind
	Flags LocalFlags
	Name  string
	Span  source.Span
}

// Global is module-level storage; it is always zero-initialised.
type Global struct {
	Item ast.ItemID
	Type types.Kind
	Name string
	Span source.Span
}

type PlaceKind uint8

const (
	PlaceLocal PlaceKind = iota
	PlaceGlobal
)

type Place struct {
	Kind   PlaceKind
	Local  LocalID
	Global GlobalID
}

func LocalPlace(id LocalID) Place   { return Place{Kind: PlaceLocal, Local: id, Global: NoGlobalID} }
func GlobalPlace(id GlobalID) Place { return Place{Kind: PlaceGlobal, Local: NoLocalID, Global: id} }

func (p Place) IsValid() bool {
	switch p.Kind {
	case PlaceGlobal:
		return p.Global != NoGlobalID
	default:
		return p.Local != NoLocalID
	}
}
