package sema

import (
	"slices"
	"testing"

	"shadec/internal/diag"
	"shadec/internal/testkit"
)

func runCheck(tr *testkit.Tree, opts Options) (*Result, *diag.Bag) {
	bag := diag.NewBag(0)
	opts.Reporter = diag.BagReporter{Bag: bag}
	return Check(tr.B, tr.File, opts), bag
}

func diagCodes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func expectCodes(t *testing.T, bag *diag.Bag, want ...diag.Code) {
	t.Helper()
	got := diagCodes(bag)
	if !slices.Equal(got, want) {
		t.Fatalf("diagnostics mismatch:\n got: %v\nwant: %v\nitems: %+v", got, want, bag.Items())
	}
}
