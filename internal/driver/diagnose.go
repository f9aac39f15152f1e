package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fortio.org/safecast"

	"shadec/internal/ast"
	"shadec/internal/astio"
	"shadec/internal/diag"
	"shadec/internal/mir"
	"shadec/internal/observ"
	"shadec/internal/sema"
	"shadec/internal/source"
	"shadec/internal/trace"
)

// Options содержит опции для диагностики
type Options struct {
	MaxDiagnostics  int
	DeepReturnCheck bool
	// Lower runs MIR lowering when the check produced no errors.
	Lower         bool
	EnableTimings bool
	// Cache skips decoding and checking of documents seen before. It is
	// bypassed when Lower is set since the module itself is not cached.
	Cache *DiskCache
	Sink  ProgressSink
}

// Result is everything known about one AST document after a run.
type Result struct {
	Path    string
	FileSet *source.FileSet
	Source  source.FileID
	Builder *ast.Builder
	File    ast.FileID
	Bag     *diag.Bag
	Sema    *sema.Result
	Module  *mir.Module
	Timer   *observ.Timer
	Cached  bool
	// Err is set by DiagnoseDir when the document could not be read at all.
	Err error
}

// HasErrors reports error diagnostics or a load failure.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	return r.Err != nil || (r.Bag != nil && r.Bag.HasErrors())
}

// DiagnoseFile decodes the AST document at path, checks it and, on request,
// lowers it. Problems with the program are diagnostics in Result.Bag; the
// returned error covers only documents that could not be read.
func DiagnoseFile(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "diagnose_file", trace.ParentFromContext(ctx)).WithExtra("path", path)
	defer span.End("")

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	res := &Result{Path: path, FileSet: source.NewFileSet(), Bag: diag.NewBag(opts.MaxDiagnostics), Timer: timer}
	// counter sees every error, including those the bag limit rejects
	counter := &diag.CountingReporter{Next: diag.BagReporter{Bag: res.Bag}}
	reporter := diag.NewDedupReporter(counter)
	started := time.Now()

	emit(opts.Sink, Event{File: path, Stage: StageDecode, Status: StatusWorking})
	done := timer.Track("load")
	doc, raw, err := astio.ReadFile(path)
	done("")
	if err != nil {
		emit(opts.Sink, Event{File: path, Stage: StageDecode, Status: StatusError, Err: err})
		return nil, err
	}
	size := loadSource(res, doc, path, reporter)

	useCache := opts.Cache != nil && !opts.Lower
	var key Digest
	if useCache {
		key = CacheKey(raw, opts)
		var payload CachePayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			trace.Point(tracer, trace.ScopeDriver, "cache_error", err.Error(), span.ID())
		}
		if hit {
			for _, d := range payload.Diagnostics {
				res.Bag.Add(d)
			}
			res.Bag.RecordDropped(payload.Dropped, payload.DroppedErrors)
			res.Cached = true
			trace.Point(tracer, trace.ScopeDriver, "cache_hit", key.String(), span.ID())
			emit(opts.Sink, Event{File: path, Stage: StageCheck, Status: StatusCached, Elapsed: time.Since(started)})
			return res, nil
		}
	}

	done = timer.Track("decode")
	res.Builder = ast.NewBuilder(ast.Hints{}, nil)
	res.File = astio.Build(doc, res.Builder, res.Source, size, reporter)
	items := 0
	if f := res.Builder.Files.Get(res.File); f != nil {
		items = len(f.Items)
	}
	done(fmt.Sprintf("items=%d", items))

	emit(opts.Sink, Event{File: path, Stage: StageCheck, Status: StatusWorking})
	done = timer.Track("check")
	res.Sema = sema.Check(res.Builder, res.File, sema.Options{
		Reporter:        reporter,
		Tracer:          tracer,
		DeepReturnCheck: opts.DeepReturnCheck,
	})
	done(fmt.Sprintf("errors=%d", res.Sema.Errors))

	// load, decode and check errors all block lowering, even when the bag
	// limit kept none of them
	if opts.Lower && counter.Errors == 0 && res.Sema.Errors == 0 {
		emit(opts.Sink, Event{File: path, Stage: StageLower, Status: StatusWorking})
		done = timer.Track("lower")
		res.Module = lower(res, tracer, reporter)
		done("")
	}

	res.Bag.Sort()

	if useCache {
		payload := &CachePayload{
			Path:          path,
			Items:         items,
			Errors:        res.Bag.CountErrors(),
			Diagnostics:   res.Bag.Items(),
			Dropped:       res.Bag.Dropped(),
			DroppedErrors: res.Bag.DroppedErrors(),
		}
		if err := opts.Cache.Put(key, payload); err != nil {
			trace.Point(tracer, trace.ScopeDriver, "cache_error", err.Error(), span.ID())
		}
	}

	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Sink, Event{File: path, Status: status, Elapsed: time.Since(started)})
	span.WithExtra("diags", fmt.Sprint(res.Bag.Len()))
	return res, nil
}

// loadSource registers the program text the document's spans refer to and
// returns its length (0 when unknown).
func loadSource(res *Result, doc *astio.Document, path string, rep diag.Reporter) uint32 {
	var content []byte
	switch {
	case doc.Source != "":
		name := doc.Path
		if name == "" {
			name = path
		}
		res.Source = res.FileSet.AddVirtual(name, []byte(doc.Source))
		content = []byte(doc.Source)
	case doc.Path != "":
		p := doc.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		id, err := res.FileSet.Load(p)
		if err != nil {
			res.Source = res.FileSet.AddVirtual(doc.Path, nil)
			diag.ReportWarning(rep, diag.IOLoadFileError, source.Span{File: res.Source},
				fmt.Sprintf("source text unavailable: %v", err)).Emit()
			return 0
		}
		res.Source = id
		content = res.FileSet.Get(id).Content
	default:
		res.Source = res.FileSet.AddVirtual(path, nil)
		return 0
	}
	n, err := safecast.Conv[uint32](len(content))
	if err != nil {
		panic(fmt.Errorf("source too large: %w", err))
	}
	return n
}

// lower turns lowering and validation failures into internal-error diagnostics.
func lower(res *Result, tracer trace.Tracer, rep diag.Reporter) *mir.Module {
	fileSpan := source.Span{File: res.Source}
	if f := res.Builder.Files.Get(res.File); f != nil {
		fileSpan = f.Span
	}
	m, err := mir.Lower(res.Builder, res.File, res.Sema, mir.Options{Tracer: tracer})
	if err != nil {
		diag.ReportError(rep, diag.LowInternalError, fileSpan, fmt.Sprintf("lowering failed: %v", err)).Emit()
		return nil
	}
	if err := mir.Validate(m); err != nil {
		diag.ReportError(rep, diag.LowInternalError, fileSpan, fmt.Sprintf("invalid MIR: %v", err)).Emit()
		return nil
	}
	return m
}
