package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"shadec/internal/diag"
	"shadec/internal/source"
)

type palette struct {
	err, warn, info, note, code, gutter, caret, path *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgCyan),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue, color.Bold),
		caret:  color.New(color.FgGreen, color.Bold),
		path:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret, p.path} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <sev> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	p := newPalette(opts.Color)
	var sb strings.Builder
	for i, d := range bag.Items() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(&sb, "%s: %s %s: %s\n",
			p.path.Sprintf("%s:%d:%d", formatPath(fs.Get(d.Primary.File), opts.PathMode, opts.BaseDir), start.Line, start.Col),
			p.severity(d.Severity).Sprint(d.Severity.Label()),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		writeSnippet(&sb, fs, d.Primary, p, opts)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(&sb, "  %s %s:%d:%d: %s\n",
				p.note.Sprint("note:"),
				formatPath(fs.Get(n.Span.File), opts.PathMode, opts.BaseDir), ns.Line, ns.Col,
				n.Msg,
			)
			writeSnippet(&sb, fs, n.Span, p, opts)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// writeSnippet prints the first line of sp with a caret underline. Columns
// are measured in display cells so wide runes stay aligned.
func writeSnippet(sb *strings.Builder, fs *source.FileSet, sp source.Span, p palette, opts PrettyOpts) {
	f := fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	tab := opts.TabWidth
	if tab <= 0 {
		tab = 4
	}
	startCol := clampCol(int(start.Col)-1, len(line))
	endCol := len(line)
	if end.Line == start.Line {
		endCol = clampCol(int(end.Col)-1, len(line))
	}
	prefix := expandTabs(line[:startCol], tab)
	marked := expandTabs(line[startCol:endCol], tab)
	shown := expandTabs(line, tab)

	pad := runewidth.StringWidth(prefix)
	width := runewidth.StringWidth(marked)
	if width == 0 {
		width = 1
	}
	if opts.Width > 0 && runewidth.StringWidth(shown) > opts.Width {
		shown = runewidth.Truncate(shown, opts.Width, "…")
		if pad >= opts.Width {
			pad = opts.Width - 1
			width = 1
		} else if pad+width > opts.Width {
			width = opts.Width - pad
		}
	}

	num := fmt.Sprint(start.Line)
	gutter := strings.Repeat(" ", len(num))
	fmt.Fprintf(sb, " %s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), shown)
	fmt.Fprintf(sb, " %s %s %s%s\n",
		gutter, p.gutter.Sprint("|"),
		strings.Repeat(" ", pad),
		p.caret.Sprint("^"+strings.Repeat("~", width-1)),
	)
}

func clampCol(col, limit int) int {
	if col < 0 {
		return 0
	}
	if col > limit {
		return limit
	}
	return col
}

func expandTabs(s string, tab int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tab))
}

// Summary renders "N errors, M warnings" for the end of a run.
func Summary(bag *diag.Bag) string {
	if bag == nil {
		return "no diagnostics"
	}
	errs, warns := bag.DroppedErrors(), 0
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	return fmt.Sprintf("%d %s, %d %s", errs, plural(errs, "error"), warns, plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
