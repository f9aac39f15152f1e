package diagfmt

import (
	"encoding/json"
	"io"

	"shadec/internal/diag"
	"shadec/internal/source"
)

// Location is a span in machine-readable form; line/column fields are
// 1-based and only filled with JSONOpts.IncludePositions.
type Location struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteRecord struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

// Record is one diagnostic. Title is the fixed description of Code.
type Record struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location Location     `json:"location"`
	Notes    []NoteRecord `json:"notes,omitempty"`
}

// DiagnosticsOutput is the JSON document for one bag. Dropped counts what the
// bag limit discarded, Truncated what JSONOpts.Max cut from the output.
type DiagnosticsOutput struct {
	Diagnostics []Record `json:"diagnostics"`
	Count       int      `json:"count"`
	Errors      int      `json:"errors"`
	Warnings    int      `json:"warnings"`
	Dropped     int      `json:"dropped,omitempty"`
	Truncated   int      `json:"truncated,omitempty"`
}

type locator struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (l locator) locate(sp source.Span) Location {
	loc := Location{
		File:      formatPath(l.fs.Get(sp.File), l.opts.PathMode, l.opts.BaseDir),
		StartByte: sp.Start,
		EndByte:   sp.End,
	}
	if !l.opts.IncludePositions {
		return loc
	}
	start, end := l.fs.Resolve(sp)
	loc.StartLine, loc.StartCol = start.Line, start.Col
	loc.EndLine, loc.EndCol = end.Line, end.Col
	return loc
}

// BuildDiagnosticsOutput converts bag without serializing it. Timing notes
// are always kept since they carry the payload of ObsTimings.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []Record{}}
	if bag == nil {
		return out
	}
	l := locator{fs: fs, opts: opts}
	items := bag.Items()
	limit := len(items)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
		out.Truncated = len(items) - limit
	}
	for i := range items {
		d := &items[i]
		switch d.Severity {
		case diag.SevError:
			out.Errors++
		case diag.SevWarning:
			out.Warnings++
		}
		if i >= limit {
			continue
		}
		rec := Record{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: l.locate(d.Primary),
		}
		if opts.IncludeNotes || d.Code == diag.ObsTimings {
			for _, n := range d.Notes {
				rec.Notes = append(rec.Notes, NoteRecord{Message: n.Msg, Location: l.locate(n.Span)})
			}
		}
		out.Diagnostics = append(out.Diagnostics, rec)
	}
	out.Count = len(out.Diagnostics)
	out.Dropped = bag.Dropped()
	out.Errors += bag.DroppedErrors()
	return out
}

// JSON writes BuildDiagnosticsOutput as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
