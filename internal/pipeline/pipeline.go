// Package pipeline computes metrics for a set of files concurrently.
//
// One producer feeds file paths to a pool of consumers over a bounded
// channel. Each consumer keeps its results locally and hands a single
// partial result to the composer when its input closes. The composer
// merges the partials, aggregates project metrics and sorts the output.
// All stages share one errgroup scope: the first failure cancels the
// others and no output is returned.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/unbound-force/wcc/internal/coverage"
	"github.com/unbound-force/wcc/internal/metrics"
	"github.com/unbound-force/wcc/internal/structure"
)

// ErrConcurrency is returned (wrapped) when a worker fails outside
// the analysis itself.
var ErrConcurrency = errors.New("concurrency failure")

// Mode selects the analysis granularity.
type Mode string

// Analysis modes.
const (
	ModeFiles     Mode = "files"
	ModeFunctions Mode = "functions"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFiles, ModeFunctions:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want files or functions)", s)
}

// Parser turns a source file into its unit tree.
type Parser interface {
	Parse(path string) (*structure.Unit, error)
}

// Options configures Run.
type Options struct {
	// Files are the absolute paths to analyze.
	Files []string

	// ProjectRoot is the directory names are reported relative to.
	ProjectRoot string

	Parser     Parser
	Coverage   coverage.Source
	Thresholds metrics.Thresholds
	Mode       Mode
	Sort       metrics.SortKey

	// Threads is the number of consumers. Values outside
	// [1, DefaultThreads()] are replaced by DefaultThreads().
	Threads int

	// SkipParseErrors routes files the parser rejects to the ignored
	// list instead of failing the run.
	SkipParseErrors bool

	// Logger receives per-file debug output. Nil discards it.
	Logger *log.Logger
}

// Output is the result of a run.
type Output struct {
	Files        []metrics.FileMetrics  `json:"files"`
	Project      metrics.ProjectMetrics `json:"project"`
	IgnoredFiles []string               `json:"ignored_files"`
}

// DefaultThreads returns one less than the number of CPUs, at least 1.
func DefaultThreads() int {
	return max(runtime.NumCPU()-1, 1)
}

// NormalizeThreads clamps n to [1, DefaultThreads()], using the
// default for out-of-range values.
func NormalizeThreads(n int) int {
	if n < 1 || n > DefaultThreads() {
		return DefaultThreads()
	}
	return n
}

// partial is what one consumer hands to the composer.
type partial struct {
	data    metrics.ProjectData
	files   []metrics.FileMetrics
	ignored []string
}

// Run analyzes opts.Files. It returns the first error raised by any
// stage; ctx cancellation also aborts the run.
func Run(ctx context.Context, opts Options) (*Output, error) {
	if opts.Parser == nil || opts.Coverage == nil {
		return nil, errors.New("pipeline: parser and coverage source are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Sort == "" {
		opts.Sort = metrics.SortWCC
	}
	threads := NormalizeThreads(opts.Threads)

	g, ctx := errgroup.WithContext(ctx)
	paths := make(chan string, threads)
	partials := make(chan partial, threads)

	// Producer.
	g.Go(func() error {
		defer close(paths)
		seen := make(map[string]bool, len(opts.Files))
		for _, p := range opts.Files {
			p = filepath.Clean(p)
			if seen[p] {
				continue
			}
			seen[p] = true
			select {
			case paths <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	// Consumers.
	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		g.Go(func() (err error) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: consumer panic: %v", ErrConcurrency, r)
				}
			}()
			return consume(ctx, opts, logger, paths, partials)
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(partials)
		return nil
	})

	// Composer.
	var out *Output
	g.Go(func() error {
		out = compose(opts, partials)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("analysis complete",
		"files", len(out.Files), "ignored", len(out.IgnoredFiles), "threads", threads)
	return out, nil
}

func consume(ctx context.Context, opts Options, logger *log.Logger, paths <-chan string, partials chan<- partial) error {
	var local partial
	withFunctions := opts.Mode == ModeFunctions

	for path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		lc, ok := opts.Coverage.Lines(path)
		if !ok {
			logger.Debug("no coverage data", "file", path)
			local.ignored = append(local.ignored, relName(path, opts.ProjectRoot))
			continue
		}
		name, ok := opts.Coverage.DisplayName(path, opts.ProjectRoot)
		if !ok {
			local.ignored = append(local.ignored, relName(path, opts.ProjectRoot))
			continue
		}

		root, err := opts.Parser.Parse(path)
		if err != nil {
			if opts.SkipParseErrors {
				logger.Warn("skipping unparsable file", "file", path, "err", err)
				local.ignored = append(local.ignored, name)
				continue
			}
			return err
		}

		fm, data := metrics.File(name, root, lc, opts.Thresholds, withFunctions)
		logger.Debug("analyzed", "file", name,
			"wcc", fm.Metrics.Cyclomatic.WCC, "crap", fm.Metrics.Cyclomatic.CRAP,
			"coverage", fm.Metrics.Coverage)
		local.files = append(local.files, fm)
		local.data.Merge(data)
	}

	select {
	case partials <- local:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func compose(opts Options, partials <-chan partial) *Output {
	var (
		data    metrics.ProjectData
		files   []metrics.FileMetrics
		ignored []string
	)
	for p := range partials {
		data.Merge(p.data)
		files = append(files, p.files...)
		ignored = append(ignored, p.ignored...)
	}

	var precomputed *float64
	if total, ok := opts.Coverage.ProjectCoverage(); ok {
		precomputed = &total
	}

	metrics.SortFiles(files, opts.Sort)
	sort.Strings(ignored)
	if files == nil {
		files = []metrics.FileMetrics{}
	}
	if ignored == nil {
		ignored = []string{}
	}
	return &Output{
		Files:        files,
		Project:      metrics.Aggregate(files, data, opts.Thresholds, precomputed),
		IgnoredFiles: ignored,
	}
}

func relName(path, root string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
