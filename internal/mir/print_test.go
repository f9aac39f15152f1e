package mir

import (
	"testing"

	"shadec/internal/types"
)

func TestFormatFloatKeepsDecimalPoint(t *testing.T) {
	cases := map[float64]string{
		1:      "1.0",
		-3:     "-3.0",
		0.25:   "0.25",
		1e21:   "1e+21",
		1.5e-7: "1.5e-07",
	}
	for in, want := range cases {
		if got := formatFloat(in); got != want {
			t.Fatalf("formatFloat(%v): got %q, want %q", in, got, want)
		}
	}
}

func TestFormatTerm(t *testing.T) {
	cases := []struct {
		term Terminator
		want string
	}{
		{Terminator{Kind: TermReturn}, "return"},
		{Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: boolConst(true)}}, "return true"},
		{Terminator{Kind: TermGoto, Goto: GotoTerm{Target: 4}}, "goto bb4"},
		{Terminator{Kind: TermSwitch, Switch: SwitchTerm{
			Value:   copyOf(LocalPlace(2), types.KindInt),
			Cases:   []SwitchCase{{Value: 1, Target: 1}, {Value: -5, Target: 2}},
			Default: 3,
		}}, "switch copy L2 [1 -> bb1, -5 -> bb2] default bb3"},
		{Terminator{Kind: TermUnreachable}, "unreachable"},
		{Terminator{}, "<unterminated>"},
	}
	for _, tc := range cases {
		if got := formatTerm(&tc.term); got != tc.want {
			t.Fatalf("formatTerm: got %q, want %q", got, tc.want)
		}
	}
}
