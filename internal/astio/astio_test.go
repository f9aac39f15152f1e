package astio

import (
	"reflect"
	"slices"
	"testing"

	"shadec/internal/ast"
	"shadec/internal/diag"
	"shadec/internal/sema"
	"shadec/internal/source"
	"shadec/internal/testkit"
)

const sampleSource = "float x;\nvoid main() { x = 2.0 + 3.0; }\n"

const sampleJSON = `{
  "version": 1,
  "path": "sample.frag",
  "span": {"start": 0, "end": 40},
  "decls": [
    {"kind": "var", "span": {"start": 0, "end": 8}, "name": "x", "name_span": {"start": 6, "end": 7}, "type": "float"},
    {"kind": "fn", "span": {"start": 9, "end": 39}, "name": "main", "name_span": {"start": 14, "end": 18}, "type": "void",
     "body": {"kind": "block", "span": {"start": 21, "end": 39}, "stmts": [
       {"kind": "expr", "span": {"start": 23, "end": 37}, "expr":
         {"kind": "binary", "op": "=", "span": {"start": 23, "end": 36},
          "left": {"kind": "ident", "name": "x", "span": {"start": 23, "end": 24}},
          "right": {"kind": "binary", "op": "+", "span": {"start": 27, "end": 36},
            "left": {"kind": "float", "lit": "2.0", "span": {"start": 27, "end": 30}},
            "right": {"kind": "float", "lit": "3.0", "span": {"start": 33, "end": 36}}}}}
     ]}}
  ]
}`

func buildDoc(t *testing.T, doc *Document, text string) (*ast.Builder, ast.FileID, *source.FileSet, source.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	src := fs.AddVirtual("sample.frag", []byte(text))
	b := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(0)
	size := uint32(len(text))
	fileID := Build(doc, b, src, size, diag.BagReporter{Bag: bag})
	return b, fileID, fs, src, bag
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestBuildFromJSON(t *testing.T) {
	doc, err := Unmarshal([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, fileID, fs, src, bag := buildDoc(t, doc, sampleSource)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if err := testkit.CheckSpanInvariants(b, fileID, fs.Get(src)); err != nil {
		t.Fatalf("span invariants: %v", err)
	}
	file := b.Files.Get(fileID)
	if len(file.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(file.Items))
	}
	fn, ok := b.Items.Fn(file.Items[1])
	if !ok || b.Name(fn.Name) != "main" {
		t.Fatalf("second item must be fn main")
	}

	checkBag := diag.NewBag(0)
	res := sema.Check(b, fileID, sema.Options{Reporter: diag.BagReporter{Bag: checkBag}})
	if res.Errors != 0 {
		t.Fatalf("decoded program must check clean: %+v", checkBag.Items())
	}
}

func TestBuildReportsBrokenNodes(t *testing.T) {
	doc := &Document{
		Version: FormatVersion,
		Span:    Pos{0, 40},
		Decls: []*Node{
			{Kind: "struct", Span: Pos{0, 5}},
			{Kind: "var", Span: Pos{0, 8}, Name: "v", Type: "vec5"},
			{Kind: "fn", Span: Pos{9, 39}, Name: "main", Type: "void", Body: &Node{
				Kind: "block", Span: Pos{21, 39}, Stmts: []*Node{
					{Kind: "goto", Span: Pos{23, 27}},
					{Kind: "expr", Span: Pos{23, 37}, Expr: &Node{Kind: "binary", Op: "<<", Span: Pos{23, 36}}},
					{Kind: "expr", Span: Pos{23, 37}, Expr: &Node{Kind: "int", Lit: "x12", Span: Pos{27, 30}}},
					{Kind: "expr", Span: Pos{23, 37}},
				},
			}},
		},
	}
	b, fileID, _, _, bag := buildDoc(t, doc, sampleSource)
	want := []diag.Code{
		diag.AstUnknownKind,
		diag.AstUnknownType,
		diag.AstUnknownKind,
		diag.AstUnknownOperator,
		diag.AstMalformedNode,
		diag.AstMalformedNode,
	}
	if got := codes(bag); !slices.Equal(got, want) {
		t.Fatalf("codes: got %v, want %v", got, want)
	}
	// struct отброшен, остальное на месте
	if n := len(b.Files.Get(fileID).Items); n != 2 {
		t.Fatalf("expected 2 items, got %d", n)
	}
	fn, _ := b.Items.Fn(b.Files.Get(fileID).Items[1])
	body, _ := b.Stmts.Block(fn.Body)
	if len(body.Stmts) != 4 {
		t.Fatalf("broken statements must keep their place, got %d", len(body.Stmts))
	}
	for _, st := range body.Stmts {
		es, ok := b.Stmts.Expr(st)
		if !ok || b.Exprs.Get(es.Expr).Kind != ast.ExprError {
			t.Fatalf("statement %d must wrap an error expression", st)
		}
	}
}

func TestBuildRejectsUnknownVersion(t *testing.T) {
	doc := &Document{Version: 7, Span: Pos{0, 8}, Decls: []*Node{{Kind: "var", Span: Pos{0, 8}, Name: "x", Type: "int"}}}
	b, fileID, _, _, bag := buildDoc(t, doc, sampleSource)
	if got := codes(bag); !slices.Equal(got, []diag.Code{diag.AstUnsupportedVersion}) {
		t.Fatalf("codes: %v", got)
	}
	if len(b.Files.Get(fileID).Items) != 0 {
		t.Fatalf("no items may be decoded from an unsupported document")
	}
}

func TestBuildClampsSpans(t *testing.T) {
	doc := &Document{Version: FormatVersion, Decls: []*Node{
		{Kind: "var", Span: Pos{0, 400}, Name: "x", Type: "int"},
	}}
	b, fileID, fs, src, bag := buildDoc(t, doc, sampleSource)
	if got := codes(bag); !slices.Equal(got, []diag.Code{diag.AstMalformedNode}) {
		t.Fatalf("codes: %v", got)
	}
	if err := testkit.CheckSpanInvariants(b, fileID, fs.Get(src)); err != nil {
		t.Fatalf("clamped spans must satisfy invariants: %v", err)
	}
}

func TestIdentifiersAreNFC(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	doc := &Document{Version: FormatVersion, Span: Pos{0, 8}, Decls: []*Node{
		{Kind: "var", Span: Pos{0, 4}, Name: composed, Type: "float"},
		{Kind: "var", Span: Pos{4, 8}, Name: decomposed, Type: "float"},
	}}
	b, fileID, _, _, _ := buildDoc(t, doc, sampleSource)
	items := b.Files.Get(fileID).Items
	first, _ := b.Items.Var(items[0])
	second, _ := b.Items.Var(items[1])
	if first.Name != second.Name {
		t.Fatalf("NFC-equal names must intern to one id")
	}

	bag := diag.NewBag(0)
	sema.Check(b, fileID, sema.Options{Reporter: diag.BagReporter{Bag: bag}})
	if got := codes(bag); !slices.Equal(got, []diag.Code{diag.SemaDeclarationConflict}) {
		t.Fatalf("expected a declaration conflict, got %v", got)
	}
}

func TestEncodeThroughMsgpack(t *testing.T) {
	doc, err := Unmarshal([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, fileID, _, _, _ := buildDoc(t, doc, sampleSource)
	encoded := Encode(b, fileID, "sample.frag", sampleSource)

	data, err := Marshal(encoded, FormatMsgpack)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := Unmarshal(data, FormatMsgpack)
	if err != nil {
		t.Fatalf("unmarshal msgpack: %v", err)
	}
	b2, fileID2, _, _, bag := buildDoc(t, back, back.Source)
	if bag.Len() != 0 {
		t.Fatalf("re-decoding produced diagnostics: %+v", bag.Items())
	}
	if again := Encode(b2, fileID2, "sample.frag", sampleSource); !reflect.DeepEqual(again, encoded) {
		t.Fatalf("documents differ after msgpack transfer")
	}
}

func TestFormatForPath(t *testing.T) {
	cases := map[string]Format{
		"a.ast.json":   FormatJSON,
		"b.astpack":    FormatMsgpack,
		"dir/c.MP":     FormatMsgpack,
		"no-extension": FormatJSON,
	}
	for path, want := range cases {
		if got := FormatForPath(path); got != want {
			t.Fatalf("FormatForPath(%q): got %s, want %s", path, got, want)
		}
	}
}
