package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"shadec/internal/trace"
)

// IsDocument reports whether path looks like an AST document.
func IsDocument(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".ast.json") || strings.HasSuffix(lower, ".astpack")
}

// ListDocuments walks dir and returns AST documents in lexical order.
func ListDocuments(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsDocument(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}

// DiagnoseDir runs DiagnoseFile over every document under dir with at most
// jobs workers (GOMAXPROCS when jobs <= 0). Each file gets its own builder
// and bag; results keep the order of ListDocuments.
func DiagnoseDir(ctx context.Context, dir string, opts Options, jobs int) ([]*Result, error) {
	files, err := ListDocuments(dir)
	if err != nil {
		return nil, err
	}
	return DiagnoseFiles(ctx, files, opts, jobs)
}

// DiagnoseFiles is DiagnoseDir over an explicit list.
func DiagnoseFiles(ctx context.Context, files []string, opts Options, jobs int) ([]*Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "diagnose_files", trace.ParentFromContext(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	for _, p := range files {
		emit(opts.Sink, Event{File: p, Status: StatusQueued})
	}

	results := make([]*Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, p := range files {
		i, p := i, p
		g.Go(func() error {
			res, err := DiagnoseFile(gctx, p, opts)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				// нечитаемый документ не останавливает остальные
				results[i] = &Result{Path: p, Err: err}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
