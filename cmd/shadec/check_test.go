package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shadec/internal/astio"
	"shadec/internal/driver"
)

const checkSource = "int n;\nvoid main() { n = 1.0; }\n"

// sampleDoc assigns a float to an int global.
func sampleDoc() *astio.Document {
	return &astio.Document{
		Version: astio.FormatVersion,
		Path:    "sample.frag",
		Source:  checkSource,
		Decls: []*astio.Node{
			{Kind: "var", Span: astio.Pos{Start: 0, End: 6}, Name: "n", Type: "int"},
			{Kind: "fn", Span: astio.Pos{Start: 7, End: 31}, Name: "main", Type: "void", Body: &astio.Node{
				Kind: "block", Span: astio.Pos{Start: 19, End: 31}, Stmts: []*astio.Node{
					{Kind: "expr", Span: astio.Pos{Start: 21, End: 29}, Expr: &astio.Node{
						Kind: "binary", Op: "=", Span: astio.Pos{Start: 21, End: 28},
						Left:  &astio.Node{Kind: "ident", Name: "n", Span: astio.Pos{Start: 21, End: 22}},
						Right: &astio.Node{Kind: "float", Lit: "1.0", Span: astio.Pos{Start: 25, End: 28}},
					}},
				},
			}},
		},
	}
}

func diagnoseSample(t *testing.T) *driver.Result {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sample.ast.json")
	if err := astio.WriteFile(p, sampleDoc()); err != nil {
		t.Fatal(err)
	}
	res, err := driver.DiagnoseFile(context.Background(), p, driver.Options{})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	return res
}

func TestReportResultsShort(t *testing.T) {
	res := diagnoseSample(t)
	st := defaultSettings()
	st.format = formatShort
	var out, errOut bytes.Buffer
	err := reportResults(&out, &errOut, []*driver.Result{res}, st)
	if !errors.Is(err, errHasErrors) {
		t.Fatalf("expected errHasErrors, got %v", err)
	}
	if !strings.Contains(out.String(), "SEM3004") {
		t.Fatalf("short output:\n%s", out.String())
	}
	if !strings.Contains(errOut.String(), "checked 1 file(s): 1 error") {
		t.Fatalf("summary:\n%s", errOut.String())
	}
}

func TestReportResultsJSON(t *testing.T) {
	res := diagnoseSample(t)
	broken := &driver.Result{Path: "broken.ast.json", Err: os.ErrNotExist}
	st := defaultSettings()
	st.format = formatJSON
	var out, errOut bytes.Buffer
	if err := reportResults(&out, &errOut, []*driver.Result{res, broken}, st); !errors.Is(err, errHasErrors) {
		t.Fatalf("expected errHasErrors, got %v", err)
	}
	var payload struct {
		Files []struct {
			Path        string `json:"path"`
			Error       string `json:"error"`
			Diagnostics struct {
				Count int `json:"count"`
			} `json:"diagnostics"`
		} `json:"files"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out.String())
	}
	if len(payload.Files) != 2 || payload.Files[0].Diagnostics.Count != 1 || payload.Files[1].Error == "" {
		t.Fatalf("payload: %+v", payload)
	}
	if errOut.Len() != 0 {
		t.Fatalf("json mode must keep stderr clean, got %q", errOut.String())
	}
}

func TestCollectDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.ast.json", "a.astpack", "skip.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	explicit := filepath.Join(dir, "skip.txt")
	files, err := collectDocuments([]string{dir, explicit})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := []string{filepath.Join(dir, "a.astpack"), filepath.Join(dir, "b.ast.json"), explicit}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("files: %v", files)
	}
	if _, err := collectDocuments([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("missing paths must fail")
	}
}
