package diag

import (
	"sort"
)

// Bag collects diagnostics up to a limit.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
	// ошибки, отброшенные лимитом, всё равно делают результат ошибочным
	droppedErrors int
}

// NewBag creates a bag; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	hint := max
	if hint <= 0 || hint > 64 {
		hint = 64
	}
	return &Bag{items: make([]Diagnostic, 0, hint), max: max}
}

// Add возвращает false, если лимит исчерпан.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		if d.Severity >= SevError {
			b.droppedErrors++
		}
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int { return b.max }

// Dropped counts diagnostics rejected by the limit.
func (b *Bag) Dropped() int { return b.dropped }

// DroppedErrors counts the error-severity part of Dropped.
func (b *Bag) DroppedErrors() int { return b.droppedErrors }

// RecordDropped restores drop counters, e.g. from a cached run.
func (b *Bag) RecordDropped(total, errors int) {
	b.dropped += total
	b.droppedErrors += errors
}

func (b *Bag) Len() int { return len(b.items) }

// Items возвращает внутренний срез; не модифицировать.
func (b *Bag) Items() []Diagnostic { return b.items }

// HasErrors includes errors rejected by the limit.
func (b *Bag) HasErrors() bool {
	if b.droppedErrors > 0 {
		return true
	}
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) CountErrors() int {
	n := b.droppedErrors
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			n++
		}
	}
	return n
}

// Merge appends other's items, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.max > 0 && len(b.items)+len(other.items) > b.max {
		b.max = len(b.items) + len(other.items)
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
	b.droppedErrors += other.droppedErrors
}

// Sort orders by file, start, end, severity (desc) and code for stable output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup удаляет повторы по Code+Primary.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		span [3]uint32
	}
	seen := make(map[key]struct{}, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		k := key{code: d.Code, span: [3]uint32{uint32(d.Primary.File), d.Primary.Start, d.Primary.End}}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	b.items = out
}

// Filter keeps diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	out := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			out = append(out, d)
		}
	}
	b.items = out
}
