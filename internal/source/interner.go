package source

type StringID uint32

const NoStringID StringID = 0

// Interner maps identifier text to dense ids; id 0 is the empty string.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	id := StringID(len(i.byID))
	s = string([]byte(s)) // не держим чужой буфер
	i.byID = append(i.byID, s)
	i.index[s] = id
	return id
}

func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics on an id that was never interned.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("source: unknown string id")
	}
	return s
}

func (i *Interner) Len() int {
	return len(i.byID)
}
