package diag

import (
	"fmt"
	"sort"
	"strings"

	"shadec/internal/source"
)

type shortLine struct {
	sev    string
	code   string
	path   string
	line   uint32
	column uint32
	msg    string
}

// FormatShort renders one line per diagnostic ("error SEM3004 a.ast.json:3:7 message"),
// sorted by position. Notes follow as "note" lines when includeNotes is set.
// The output is stable and doubles as the golden format in tests.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	lines := make([]shortLine, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		lines = append(lines, resolveLine(fs, d.Primary, d.Severity.Label(), d.Code, d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			lines = append(lines, resolveLine(fs, n.Span, "note", d.Code, n.Msg))
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.path != b.path {
			return a.path < b.path
		}
		if a.line != b.line {
			return a.line < b.line
		}
		if a.column != b.column {
			return a.column < b.column
		}
		return a.code < b.code
	})
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.line, l.column, l.msg)
	}
	return sb.String()
}

func resolveLine(fs *source.FileSet, sp source.Span, sev string, code Code, msg string) shortLine {
	out := shortLine{sev: sev, code: code.ID(), msg: sanitizeMessage(msg), line: 1, column: 1}
	if f := fs.Get(sp.File); f != nil {
		out.path = strings.TrimPrefix(f.Path, "./")
		start, _ := fs.Resolve(sp)
		out.line, out.column = start.Line, start.Col
	}
	return out
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r", "")
	return strings.TrimSpace(strings.ReplaceAll(msg, "\n", " "))
}
