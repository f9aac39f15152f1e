package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"shadec/internal/ast"
	"shadec/internal/source"
)

// CheckSpanInvariants validates spans of a decoded file against its source:
// the file span lies within the content, every item span is non-empty and
// inside the file span, and each function body lies inside its item.
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > size {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, size)
	}

	for _, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		sp := item.Span
		if sp.Empty() {
			return fmt.Errorf("empty item span: %v", sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("item span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if sp.Start < f.Span.Start || sp.End > f.Span.End {
			return fmt.Errorf("item span %v is outside file span %v", sp, f.Span)
		}
		fn, ok := b.Items.Fn(it)
		if !ok {
			continue
		}
		body := b.Stmts.Get(fn.Body)
		if body == nil {
			return fmt.Errorf("function item %d has no body", it)
		}
		if body.Span.Start < sp.Start || body.Span.End > sp.End {
			return fmt.Errorf("body span %v is outside function span %v", body.Span, sp)
		}
	}
	return nil
}
