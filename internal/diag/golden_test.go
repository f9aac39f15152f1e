package diag

import (
	"testing"

	"shadec/internal/source"
)

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("testdata/sample.ast.json", []byte("a\nb\n"))

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     SemaInfo,
			Message:  "another",
			Primary:  source.Span{File: file, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SemaDeclarationConflict,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
			Notes:    []Note{{Span: source.Span{File: file, Start: 2, End: 3}, Msg: "note line"}},
		},
	}

	want := "error SEM3001 testdata/sample.ast.json:1:1 first line second\n" +
		"warning SEM3000 testdata/sample.ast.json:2:1 another\n" +
		"note SEM3001 testdata/sample.ast.json:2:1 note line"
	if got := FormatShort(diags, fs, true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
	if FormatShort(nil, fs, true) != "" {
		t.Fatalf("empty input must render empty")
	}
}
