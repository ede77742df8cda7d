package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/fingerprint"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/ignorelist"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/imgmatch"
)

func New(extractor fingerprint.Extractor, workers int, ignore *ignorelist.IgnoreList) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scanner{
		extractor: extractor,
		workers:   workers,
		ignore:    ignore,
		logger:    logrus.WithField("strategy", extractor.Strategy()),
	}
}

// Scanner walks a directory tree and fingerprints the images it finds.
type Scanner struct {
	extractor fingerprint.Extractor
	workers   int
	ignore    *ignorelist.IgnoreList
	logger    *logrus.Entry

	// OnProgress, if set, is called from the collector after every file.
	OnProgress func(processed int64)

	processed atomic.Int64
	failed    atomic.Int64
}

// Listing is the outcome of Walk, in lexical traversal order.
type Listing struct {
	Candidates  []string
	Unsupported []string
	Ignored     int
}

type Result struct {
	Records     []*imgmatch.Record
	Failures    []*DecodeError
	Unsupported []string
	// Skipped counts candidates never processed because ctx was cancelled.
	Skipped int
}

func (r *Result) Interrupted() bool {
	return r.Skipped > 0
}

func (s *Scanner) Processed() int64 { return s.processed.Load() }
func (s *Scanner) Failed() int64    { return s.failed.Load() }

// Walk lists root recursively. Hidden entries and ignored paths are skipped.
func (s *Scanner) Walk(root string) (*Listing, error) {
	l := &Listing{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.WithField("path", path).Warnf("Skipping unreadable entry: %v", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if s.ignore.Contains(path) {
			l.Ignored++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if IsSupported(path) {
			l.Candidates = append(l.Candidates, path)
		} else {
			l.Unsupported = append(l.Unsupported, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	s.logger.Debugf("Found %d candidates, %d unsupported files, %d ignored", len(l.Candidates), len(l.Unsupported), l.Ignored)
	return l, nil
}

type job struct {
	index int
	path  string
}

type outcome struct {
	index  int
	record *imgmatch.Record
	err    error
}

// Scan fingerprints every candidate of the listing on a bounded pool of
// workers. Records keep the order of the listing. Cancelling ctx stops
// feeding new files; files already handed to a worker are finished.
func (s *Scanner) Scan(ctx context.Context, l *Listing) *Result {
	jobs := make(chan job)
	outcomes := make(chan outcome, s.workers)

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go s.work(jobs, outcomes, &wg)
	}

	sent := 0
	go func() {
		defer close(jobs)
	loop:
		for i, path := range l.Candidates {
			// Checked first: select chooses randomly when a worker is also free.
			if ctx.Err() != nil {
				break
			}
			select {
			case <-ctx.Done():
				break loop
			case jobs <- job{index: i, path: path}:
				sent++
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Single collector: slots are indexed by listing position.
	slots := make([]*imgmatch.Record, len(l.Candidates))
	failures := make([]*DecodeError, len(l.Candidates))
	for o := range outcomes {
		if o.err != nil {
			var de *DecodeError
			if !errors.As(o.err, &de) {
				de = &DecodeError{Path: l.Candidates[o.index], Err: o.err}
			}
			failures[o.index] = de
			s.failed.Inc()
			s.logger.WithField("path", de.Path).Warnf("Skipping image: %v", de.Err)
		} else {
			slots[o.index] = o.record
		}
		n := s.processed.Inc()
		if s.OnProgress != nil {
			s.OnProgress(n)
		}
	}

	res := &Result{Unsupported: l.Unsupported, Skipped: len(l.Candidates) - sent}
	for i := range slots {
		if slots[i] != nil {
			res.Records = append(res.Records, slots[i])
		}
		if failures[i] != nil {
			res.Failures = append(res.Failures, failures[i])
		}
	}
	if res.Interrupted() {
		s.logger.Warnf("Scan interrupted, %d files were not processed", res.Skipped)
	}
	return res
}

func (s *Scanner) work(jobs <-chan job, outcomes chan<- outcome, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		r, err := buildRecord(j.path, s.extractor)
		outcomes <- outcome{index: j.index, record: r, err: err}
	}
}
