// Package batch decodes many specifications concurrently.
//
// Every document is decoded on its own cursor by exactly one worker; no
// decoder state is shared between workers.
package batch

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/gemspec/internal/gemspec"
)

// ExtractFunc loads one specification from a file.
type ExtractFunc func(path string) (*gemspec.Specification, error)

// Result is the outcome for one input path.
type Result struct {
	Path  string
	Spec  *gemspec.Specification
	Error error
}

type job struct {
	index int
	path  string
}

// Scanner runs an ExtractFunc over a list of paths with a fixed number of
// workers.
type Scanner struct {
	workers int
	extract ExtractFunc
	logger  *log.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a scanner with the specified number of workers.
// Values below one are raised to one.
func NewScanner(workers int, extract ExtractFunc, opts ...Option) *Scanner {
	s := &Scanner{
		workers: max(workers, 1),
		extract: extract,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan extracts every path and returns one Result per path, in input
// order. Once ctx is done, remaining paths fail with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	jobChan := make(chan job, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < min(s.workers, max(len(paths), 1)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobChan {
				results[j.index] = s.scanOne(ctx, j)
			}
		}()
	}

	for i, path := range paths {
		jobChan <- job{index: i, path: path}
	}
	close(jobChan)
	wg.Wait()

	return results
}

func (s *Scanner) scanOne(ctx context.Context, j job) Result {
	if err := ctx.Err(); err != nil {
		return Result{Path: j.path, Error: err}
	}
	spec, err := s.extract(j.path)
	if err != nil {
		s.logger.Debug("decode failed", "path", j.path, "err", err)
		return Result{Path: j.path, Error: err}
	}
	s.logger.Debug("decoded", "path", j.path, "gem", spec.FullName())
	return Result{Path: j.path, Spec: spec}
}

// Specs returns the successfully decoded specifications, in input order.
func Specs(results []Result) []*gemspec.Specification {
	specs := make([]*gemspec.Specification, 0, len(results))
	for _, r := range results {
		if r.Error == nil {
			specs = append(specs, r.Spec)
		}
	}
	return specs
}

// Failures returns the results that carry an error.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Error != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
