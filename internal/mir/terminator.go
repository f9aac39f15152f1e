package mir

type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermGoto
	TermIf
	TermSwitch
	TermUnreachable
)

type Terminator struct {
	Kind TermKind

	Return      ReturnTerm
	Goto        GotoTerm
	If          IfTerm
	Switch      SwitchTerm
	Unreachable struct{}
}

type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

type GotoTerm struct {
	Target BlockID
}

type IfTerm struct {
	Cond Operand
	Then BlockID
	Else BlockID
}

type SwitchCase struct {
	Value  int64
	Target BlockID
}

// SwitchTerm jumps to the case whose Value equals the scrutinee, else to Default.
type SwitchTerm struct {
	Value   Operand
	Cases   []SwitchCase
	Default BlockID
}

// Successors lists the blocks control may reach from t.
func (t *Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermGoto:
		return []BlockID{t.Goto.Target}
	case TermIf:
		return []BlockID{t.If.Then, t.If.Else}
	case TermSwitch:
		out := make([]BlockID, 0, len(t.Switch.Cases)+1)
		for _, c := range t.Switch.Cases {
			out = append(out, c.Target)
		}
		return append(out, t.Switch.Default)
	default:
		return nil
	}
}
