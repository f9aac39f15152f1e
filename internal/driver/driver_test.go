package driver

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"shadec/internal/astio"
	"shadec/internal/diag"
)

const goodSource = "float x;\nvoid main() { x = 2.0 + 3.0; }\n"

func goodDoc() *astio.Document {
	return &astio.Document{
		Version: astio.FormatVersion,
		Path:    "good.frag",
		Source:  goodSource,
		Span:    astio.Pos{Start: 0, End: 40},
		Decls: []*astio.Node{
			{Kind: "var", Span: astio.Pos{Start: 0, End: 8}, Name: "x", Type: "float"},
			{Kind: "fn", Span: astio.Pos{Start: 9, End: 39}, Name: "main", Type: "void", Body: &astio.Node{
				Kind: "block", Span: astio.Pos{Start: 21, End: 39}, Stmts: []*astio.Node{
					{Kind: "expr", Span: astio.Pos{Start: 23, End: 37}, Expr: &astio.Node{
						Kind: "binary", Op: "=", Span: astio.Pos{Start: 23, End: 36},
						Left: &astio.Node{Kind: "ident", Name: "x", Span: astio.Pos{Start: 23, End: 24}},
						Right: &astio.Node{Kind: "binary", Op: "+", Span: astio.Pos{Start: 27, End: 36},
							Left:  &astio.Node{Kind: "float", Lit: "2.0", Span: astio.Pos{Start: 27, End: 30}},
							Right: &astio.Node{Kind: "float", Lit: "3.0", Span: astio.Pos{Start: 33, End: 36}},
						},
					}},
				},
			}},
		},
	}
}

// badDoc assigns to an undeclared name.
func badDoc() *astio.Document {
	doc := goodDoc()
	doc.Path = "bad.frag"
	doc.Decls[1].Body.Stmts[0].Expr.Left.Name = "y"
	return doc
}

func writeDoc(t *testing.T, dir, name string, doc *astio.Document) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := astio.WriteFile(p, doc); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func bagCodes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestDiagnoseFileClean(t *testing.T) {
	p := writeDoc(t, t.TempDir(), "good.ast.json", goodDoc())
	res, err := DiagnoseFile(context.Background(), p, Options{Lower: true, EnableTimings: true})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bagCodes(res.Bag))
	}
	if res.Module == nil || len(res.Module.Funcs) != 1 {
		t.Fatalf("expected a lowered module with one function")
	}
	if res.Timer == nil || !strings.Contains(res.Timer.Summary(), "check") {
		t.Fatalf("timings must include the check phase")
	}
}

func TestDiagnoseFileReportsSemaErrors(t *testing.T) {
	p := writeDoc(t, t.TempDir(), "bad.astpack", badDoc())
	res, err := DiagnoseFile(context.Background(), p, Options{Lower: true})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if got := bagCodes(res.Bag); !slices.Equal(got, []diag.Code{diag.SemaNoDeclarationFound}) {
		t.Fatalf("codes: %v", got)
	}
	if res.Module != nil {
		t.Fatalf("a file with errors must not be lowered")
	}
}

func TestDiagnoseFileMissingSource(t *testing.T) {
	doc := goodDoc()
	doc.Source = ""
	doc.Path = "missing.frag"
	p := writeDoc(t, t.TempDir(), "m.ast.json", doc)
	res, err := DiagnoseFile(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	codes := bagCodes(res.Bag)
	if !slices.Contains(codes, diag.IOLoadFileError) {
		t.Fatalf("expected a load warning, got %v", codes)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("a missing source alone is not an error: %v", codes)
	}
}

// The load warning fills a one-item bag, so the checker's error is rejected
// by the limit; the file must still count as failed and stay unlowered.
func TestDiagnoseFileLimitKeepsErrorsFatal(t *testing.T) {
	doc := badDoc()
	doc.Source = ""
	doc.Path = "missing-source.frag"
	dir := t.TempDir()
	p := writeDoc(t, dir, "limited.ast.json", doc)

	res, err := DiagnoseFile(context.Background(), p, Options{Lower: true, MaxDiagnostics: 1})
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if got := bagCodes(res.Bag); !slices.Equal(got, []diag.Code{diag.IOLoadFileError}) {
		t.Fatalf("codes: %v", got)
	}
	if res.Sema == nil || res.Sema.Errors != 1 {
		t.Fatalf("checker must report one error")
	}
	if res.Module != nil {
		t.Fatalf("a file with dropped errors must not be lowered")
	}
	if res.Bag.Dropped() < 1 || res.Bag.DroppedErrors() != 1 {
		t.Fatalf("dropped=%d droppedErrors=%d", res.Bag.Dropped(), res.Bag.DroppedErrors())
	}
	if !res.HasErrors() {
		t.Fatalf("result must report errors")
	}

	cache, err := OpenDiskCache(filepath.Join(dir, "cache"), "shadec")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	opts := Options{MaxDiagnostics: 1, Cache: cache}
	if _, err := DiagnoseFile(context.Background(), p, opts); err != nil {
		t.Fatalf("first cached run: %v", err)
	}
	cached, err := DiagnoseFile(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("second cached run: %v", err)
	}
	if !cached.Cached || !cached.HasErrors() {
		t.Fatalf("cache hit must keep dropped errors: cached=%t errors=%t", cached.Cached, cached.HasErrors())
	}
}

func TestDiagnoseFileUnreadable(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "broken.ast.json")
	if err := os.WriteFile(p, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := DiagnoseFile(context.Background(), p, Options{}); err == nil {
		t.Fatalf("malformed documents must fail to load")
	}
}

func TestDiagnoseFileUsesCache(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenDiskCache(filepath.Join(dir, "cache"), "shadec")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	p := writeDoc(t, dir, "bad.ast.json", badDoc())
	opts := Options{Cache: cache}

	first, err := DiagnoseFile(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Cached {
		t.Fatalf("first run cannot be a cache hit")
	}
	second, err := DiagnoseFile(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second run must be served from the cache")
	}
	if !slices.Equal(bagCodes(first.Bag), bagCodes(second.Bag)) {
		t.Fatalf("cached diagnostics differ: %v vs %v", bagCodes(first.Bag), bagCodes(second.Bag))
	}

	// другая глубина проверки даёт другой ключ
	opts.DeepReturnCheck = true
	third, err := DiagnoseFile(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.Cached {
		t.Fatalf("options must be part of the cache key")
	}
}

func TestDiagnoseDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b.ast.json", badDoc())
	writeDoc(t, dir, "a.astpack", goodDoc())
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "c.ast.json"), []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}

	var (
		mu     sync.Mutex
		events []Event
	)
	sink := FuncSink(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	results, err := DiagnoseDir(context.Background(), dir, Options{Sink: sink}, 2)
	if err != nil {
		t.Fatalf("diagnose dir: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	names := []string{filepath.Base(results[0].Path), filepath.Base(results[1].Path), filepath.Base(results[2].Path)}
	if !slices.Equal(names, []string{"a.astpack", "b.ast.json", "c.ast.json"}) {
		t.Fatalf("order: %v", names)
	}
	if results[0].HasErrors() || !results[1].HasErrors() {
		t.Fatalf("unexpected error state")
	}
	if results[2].Err == nil {
		t.Fatalf("unreadable document must carry its load error")
	}
	queued := 0
	for _, e := range events {
		if e.Status == StatusQueued {
			queued++
		}
	}
	if queued != 3 {
		t.Fatalf("every file must be queued once, got %d", queued)
	}
}

func TestDiagnoseDirCanceled(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.ast.json", goodDoc())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DiagnoseDir(ctx, dir, Options{}, 1); err == nil {
		t.Fatalf("canceled context must abort the run")
	}
}
