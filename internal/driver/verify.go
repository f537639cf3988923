// Package driver orchestrates the verification pipeline: decode IR documents,
// validate them, verify ownership per function, and fan the work out across
// files with bounded parallelism.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"borrowck/internal/diag"
	"borrowck/internal/ir"
	"borrowck/internal/observ"
	"borrowck/internal/ownership"
)

// IRFileSuffix is the extension the directory walker picks up.
const IRFileSuffix = ".mir.json"

// Options configure a driver run.
type Options struct {
	// Analysis is forwarded to the ownership engine.
	Analysis ownership.Options
	// Jobs bounds worker goroutines for directory runs; 0 means GOMAXPROCS.
	Jobs int
	// Cache, when non-nil, short-circuits files whose digest already has a
	// stored verdict.
	Cache *DiskCache
	// Sink receives progress events; nil means no progress reporting.
	Sink ProgressSink
}

func (o Options) sink() ProgressSink {
	if o.Sink == nil {
		return NopSink{}
	}
	return o.Sink
}

// FileResult is the outcome of verifying one IR document.
type FileResult struct {
	Path      string
	Fns       []string
	Bag       *diag.Bag
	Clean     bool
	Converged bool
	Cached    bool
	Timing    observ.Report
}

// VerifyFile decodes, validates and verifies a single IR document.
func VerifyFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sink := opts.sink()
	timer := observ.NewTimer()
	analysis := opts.Analysis

	start := time.Now()
	sink.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusWorking})

	endLoad := timer.Begin("load")
	data, err := os.ReadFile(path)
	if err != nil {
		sink.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if opts.Cache != nil {
		key := fileDigest(data, analysis)
		var cached CachedResult
		hit, err := opts.Cache.Get(key, &cached)
		if err == nil && hit {
			endLoad("cache hit")
			sink.OnEvent(Event{File: path, Stage: StageVerify, Status: StatusCached, Elapsed: time.Since(start)})
			return resultFromCache(path, &cached, analysis, timer), nil
		}
		// Cache read errors degrade to a plain run.
	}

	module, err := ir.DecodeModule(bytes.NewReader(data))
	if err != nil {
		sink.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	endLoad(fmt.Sprintf("%d functions", len(module.Funcs)))

	endValidate := timer.Begin("validate")
	if err := ir.Validate(module); err != nil {
		sink.OnEvent(Event{File: path, Stage: StageValidate, Status: StatusError, Err: err})
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	endValidate("")

	sink.OnEvent(Event{File: path, Stage: StageVerify, Status: StatusWorking})
	endVerify := timer.Begin("verify")
	reports := ownership.VerifyModule(module, analysis)
	endVerify(fmt.Sprintf("%d functions", len(reports)))

	result := collectReports(path, reports, analysis, timer)

	if opts.Cache != nil {
		key := fileDigest(data, analysis)
		payload := &CachedResult{
			Schema:      diskCacheSchemaVersion,
			Fns:         result.Fns,
			Clean:       result.Clean,
			Converged:   result.Converged,
			Diagnostics: append([]diag.Diagnostic(nil), result.Bag.Items()...),
		}
		// Failing to persist is not a verification failure.
		_ = opts.Cache.Put(key, payload)
	}

	sink.OnEvent(Event{File: path, Stage: StageVerify, Status: StatusDone, Elapsed: time.Since(start)})
	return result, nil
}

func collectReports(path string, reports []ownership.Report, opts ownership.Options, timer *observ.Timer) *FileResult {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = ownership.DefaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiags)
	result := &FileResult{
		Path:      path,
		Fns:       make([]string, 0, len(reports)),
		Bag:       bag,
		Clean:     true,
		Converged: true,
	}
	for _, report := range reports {
		result.Fns = append(result.Fns, report.Fn)
		result.Clean = result.Clean && report.Clean
		result.Converged = result.Converged && report.Converged
		for _, d := range report.Diags {
			bag.Add(d)
		}
	}
	bag.Sort()
	if timer != nil {
		result.Timing = timer.Report()
	}
	return result
}

func resultFromCache(path string, cached *CachedResult, opts ownership.Options, timer *observ.Timer) *FileResult {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = ownership.DefaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiags)
	for _, d := range cached.Diagnostics {
		bag.Add(d)
	}
	result := &FileResult{
		Path:      path,
		Fns:       append([]string(nil), cached.Fns...),
		Bag:       bag,
		Clean:     cached.Clean,
		Converged: cached.Converged,
		Cached:    true,
	}
	if timer != nil {
		result.Timing = timer.Report()
	}
	return result
}

// ListIRFiles returns the sorted list of IR documents below dir.
func ListIRFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, IRFileSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// VerifyDir verifies every IR document below dir in parallel. Results come
// back in sorted path order regardless of completion order. The first hard
// error (unreadable or malformed input) cancels the remaining work.
func VerifyDir(ctx context.Context, dir string, opts Options) ([]FileResult, error) {
	files, err := ListIRFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	sink := opts.sink()
	for _, path := range files {
		sink.OnEvent(Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			res, err := VerifyFile(gctx, path, opts)
			if err != nil {
				return err
			}
			// Index i is unique per goroutine, no mutex needed.
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// VerifyPath verifies a single document or every document below a directory.
func VerifyPath(ctx context.Context, path string, opts Options) ([]FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return VerifyDir(ctx, path, opts)
	}
	res, err := VerifyFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return []FileResult{*res}, nil
}
