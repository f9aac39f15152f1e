package mir

import "shadec/internal/ast"

type Module struct {
	Globals    []Global
	Funcs      map[FuncID]*Func
	FuncByItem map[ast.ItemID]FuncID
}

// FuncByName returns the function with the given name, nil when absent.
func (m *Module) FuncByName(name string) *Func {
	if m == nil {
		return nil
	}
	for _, f := range m.Funcs {
		if f != nil && f.Name == name {
			return f
		}
	}
	return nil
}
