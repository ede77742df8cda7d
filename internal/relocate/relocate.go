package relocate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/imgmatch"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/storage"
)

// Journal receives every completed move.
type Journal interface {
	RecordMove(source, destination string) error
}

func New(outDir string, workers int, dryRun bool, journal Journal) *Mover {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Mover{
		outDir:  outDir,
		workers: workers,
		dryRun:  dryRun,
		journal: journal,
		logger:  logrus.WithField("output", outDir),
	}
}

// Mover gathers every cluster with more than one member into its own folder.
type Mover struct {
	outDir  string
	workers int
	dryRun  bool
	journal Journal
	logger  *logrus.Entry
}

type Summary struct {
	Clusters int
	Planned  int
	Moved    int
	Failed   int
	Skipped  int
}

// Plan assigns a destination to every member of every multi-member cluster.
// Folders are numbered in partition order; clashing file names get a
// numeric suffix.
func (m *Mover) Plan(entries []imgmatch.Entry) []storage.Move {
	var moves []storage.Move
	cluster := 0
	for _, e := range entries {
		if len(e.Absorbed) == 0 {
			continue
		}
		cluster++
		dir := filepath.Join(m.outDir, fmt.Sprintf("group_%04d", cluster))
		taken := make(map[string]struct{})
		for _, src := range append([]string{e.Representative}, e.Absorbed...) {
			moves = append(moves, storage.Move{Source: src, Destination: freeName(dir, filepath.Base(src), taken)})
		}
	}
	return moves
}

func freeName(dir, base string, taken map[string]struct{}) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := base
	for i := 1; ; i++ {
		dst := filepath.Join(dir, name)
		if _, ok := taken[strings.ToLower(name)]; !ok {
			if _, err := os.Lstat(dst); errors.Is(err, os.ErrNotExist) {
				taken[strings.ToLower(name)] = struct{}{}
				return dst
			}
		}
		name = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
}

// Relocate moves the files of every multi-member cluster. A failed move is
// logged and counted; it never stops the other moves. Cancelling ctx skips
// moves that have not started.
func (m *Mover) Relocate(ctx context.Context, entries []imgmatch.Entry) (*Summary, error) {
	moves := m.Plan(entries)
	sum := &Summary{Planned: len(moves)}
	for _, e := range entries {
		if len(e.Absorbed) > 0 {
			sum.Clusters++
		}
	}

	if m.dryRun {
		for _, mv := range moves {
			m.logger.WithField("path", mv.Source).Infof("Would move to %s", mv.Destination)
		}
		return sum, nil
	}

	dirs := make(map[string]struct{})
	for _, mv := range moves {
		dir := filepath.Dir(mv.Destination)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return sum, fmt.Errorf("creating group directory: %w", err)
		}
		dirs[dir] = struct{}{}
	}

	var moved, failed, skipped atomic.Int64
	g := errgroup.Group{}
	g.SetLimit(m.workers)
	for _, mv := range moves {
		if ctx.Err() != nil {
			skipped.Inc()
			continue
		}
		mv := mv
		g.Go(func() error {
			logger := m.logger.WithField("path", mv.Source)
			if err := moveFile(mv.Source, mv.Destination); err != nil {
				logger.Errorf("Error moving file: %v", err)
				failed.Inc()
				return nil
			}
			moved.Inc()
			logger.Debugf("Moved to %s", mv.Destination)
			if m.journal != nil {
				if err := m.journal.RecordMove(mv.Source, mv.Destination); err != nil {
					logger.Errorf("Error recording move: %v", err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	sum.Moved = int(moved.Load())
	sum.Failed = int(failed.Load())
	sum.Skipped = int(skipped.Load())
	return sum, nil
}

// moveFile renames src to dst, copying across file systems. An existing dst
// is never replaced.
func moveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination %s already exists", dst)
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("renaming: %w", err)
	}
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("copying across devices: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing source after copy: %w", err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	//goland:noinspection GoUnhandledErrorResult
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
