package mir

import (
	"strings"
	"testing"

	"shadec/internal/diag"
	"shadec/internal/sema"
	"shadec/internal/testkit"
)

// lowerTree checks the tree, lowers it and validates the result.
func lowerTree(t *testing.T, tr *testkit.Tree, opts sema.Options) (*Module, string) {
	t.Helper()
	bag := diag.NewBag(0)
	opts.Reporter = diag.BagReporter{Bag: bag}
	res := sema.Check(tr.B, tr.File, opts)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	m, err := Lower(tr.B, tr.File, res, Options{})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if err := Validate(m); err != nil {
		t.Fatalf("validate: %v", err)
	}
	var sb strings.Builder
	if err := DumpModule(&sb, m, DumpOptions{}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	return m, sb.String()
}

func expectContains(t *testing.T, dump string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(dump, w) {
			t.Fatalf("dump does not contain %q:\n%s", w, dump)
		}
	}
}
