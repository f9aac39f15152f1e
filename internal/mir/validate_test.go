package mir

import (
	"strings"
	"testing"

	"shadec/internal/types"
)

func TestValidateReportsBrokenFunctions(t *testing.T) {
	f := &Func{
		ID:     0,
		Name:   "broken",
		Result: types.KindInt,
		Locals: []Local{{Type: types.KindInt, Name: "a"}},
		Blocks: []Block{
			{ID: 0, Term: Terminator{Kind: TermGoto, Goto: GotoTerm{Target: 7}}},
			{ID: 1, Instrs: []Instr{{Kind: InstrAssign, Assign: AssignInstr{Dst: LocalPlace(3), Src: RValue{Kind: RValueUse, Use: intConst(1)}}}}},
			{ID: 2, Term: Terminator{Kind: TermReturn}},
			{ID: 3, Term: Terminator{Kind: TermSwitch, Switch: SwitchTerm{
				Value:   copyOf(LocalPlace(0), types.KindInt),
				Cases:   []SwitchCase{{Value: 1, Target: 2}, {Value: 1, Target: 2}},
				Default: 2,
			}}},
		},
		Entry: 0,
	}
	m := &Module{Funcs: map[FuncID]*Func{0: f}}

	err := Validate(m)
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{
		"target bb7 does not exist",
		"bb1: unterminated block",
		"local L3 does not exist",
		"bb2: missing return value",
		"duplicate case 1",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q does not mention %q", msg, want)
		}
	}
}

func TestValidateAcceptsMinimalFunction(t *testing.T) {
	f := &Func{
		Name:   "main",
		Result: types.KindVoid,
		Blocks: []Block{{ID: 0, Term: Terminator{Kind: TermReturn}}},
		Entry:  0,
	}
	if err := Validate(&Module{Funcs: map[FuncID]*Func{0: f}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
