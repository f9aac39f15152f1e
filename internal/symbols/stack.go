// Package symbols provides the lexical scope stack shared by the checker and
// the lowering pass. Each pass instantiates Stack with its own binding payload.
package symbols

import (
	"errors"

	"shadec/internal/source"
)

var (
	// ErrDeclarationConflict is returned when the name already exists in the top frame.
	ErrDeclarationConflict = errors.New("symbols: declaration conflict")
	// ErrNoScope is returned by Insert when no frame is open.
	ErrNoScope = errors.New("symbols: no open scope")
)

// ScopeKind records which construct opened a frame.
type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota + 1
	ScopeFunction
	ScopeBlock
	ScopeBranch
	ScopeLoop
	ScopeSwitch
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeBranch:
		return "branch"
	case ScopeLoop:
		return "loop"
	case ScopeSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

type frame[B any] struct {
	kind  ScopeKind
	names map[source.StringID]B
	order []source.StringID
}

// Stack is a stack of frames mapping names to bindings. Lookup walks from the
// innermost frame outwards, so inner declarations shadow outer ones.
type Stack[B any] struct {
	frames []frame[B]
}

func NewStack[B any]() *Stack[B] {
	return &Stack[B]{frames: make([]frame[B], 0, 8)}
}

// Enter pushes an empty frame.
func (s *Stack[B]) Enter(kind ScopeKind) {
	s.frames = append(s.frames, frame[B]{
		kind:  kind,
		names: make(map[source.StringID]B),
	})
}

// Exit pops the top frame and drops its bindings. Exiting with no open frame
// is a pairing bug in the caller.
func (s *Stack[B]) Exit() ScopeKind {
	if len(s.frames) == 0 {
		panic("symbols: Exit without open scope")
	}
	top := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = frame[B]{}
	s.frames = s.frames[:len(s.frames)-1]
	return top.kind
}

// Insert binds name in the top frame only.
func (s *Stack[B]) Insert(name source.StringID, binding B) error {
	if len(s.frames) == 0 {
		return ErrNoScope
	}
	top := &s.frames[len(s.frames)-1]
	if _, exists := top.names[name]; exists {
		return ErrDeclarationConflict
	}
	top.names[name] = binding
	top.order = append(top.order, name)
	return nil
}

// Lookup returns the innermost binding of name.
func (s *Stack[B]) Lookup(name source.StringID) (B, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].names[name]; ok {
			return b, true
		}
	}
	var zero B
	return zero, false
}

// LookupLocal searches the top frame only.
func (s *Stack[B]) LookupLocal(name source.StringID) (B, bool) {
	var zero B
	if len(s.frames) == 0 {
		return zero, false
	}
	b, ok := s.frames[len(s.frames)-1].names[name]
	return b, ok
}

// Depth is the number of open frames; 1 means only the global frame is open.
func (s *Stack[B]) Depth() int {
	return len(s.frames)
}

// Kind returns the kind of the top frame, 0 when empty.
func (s *Stack[B]) Kind() ScopeKind {
	if len(s.frames) == 0 {
		return 0
	}
	return s.frames[len(s.frames)-1].kind
}

// Names lists the top frame's bindings in insertion order.
func (s *Stack[B]) Names() []source.StringID {
	if len(s.frames) == 0 {
		return nil
	}
	top := s.frames[len(s.frames)-1]
	out := make([]source.StringID, len(top.order))
	copy(out, top.order)
	return out
}
