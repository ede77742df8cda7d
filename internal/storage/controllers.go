package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

type Move struct {
	Source      string
	Destination string
}

type RunInfo struct {
	ID      string
	Root    string
	Started time.Time
	Moves   int
}

// Run is the journal of a single relocation pass.
type Run struct {
	s  Storage
	ID string
}

// BeginRun registers a new run for the scan of root.
func (s Storage) BeginRun(root string, started time.Time) (*Run, error) {
	id := uuid.New().String()
	err := s.createRun(id, map[string][]byte{
		rootKey:    []byte(root),
		startedKey: formatTime(started),
	})
	if err != nil {
		return nil, fmt.Errorf("creating run %s: %w", id, err)
	}
	return &Run{s: s, ID: id}, nil
}

// RecordMove stores a completed move. Safe for concurrent use.
func (r *Run) RecordMove(source, destination string) error {
	return r.s.putMove(r.ID, destination, source)
}

// Forget drops a move that has been undone.
func (s Storage) Forget(runID string, m Move) error {
	return s.deleteMove(runID, m.Destination)
}

// Moves lists the journal of runID ordered by destination.
func (s Storage) Moves(runID string) ([]Move, error) {
	var moves []Move
	err := s.db.View(func(tx *bolt.Tx) error {
		run := runBucket(tx, runID)
		if run == nil {
			return fmt.Errorf("%w %s", ErrUnknownRun, runID)
		}
		return run.Bucket([]byte(movesBucket)).ForEach(func(k, v []byte) error {
			moves = append(moves, Move{Source: string(v), Destination: string(k)})
			return nil
		})
	})
	return moves, err
}

// Runs lists every recorded run, oldest first.
func (s Storage) Runs() ([]RunInfo, error) {
	var runs []RunInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		return b.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil
			}
			run := b.Bucket(k)
			meta := run.Bucket([]byte(metaBucket))
			started, err := parseTime(meta.Get([]byte(startedKey)))
			if err != nil {
				return fmt.Errorf("parsing start of run %s: %w", k, err)
			}
			info := RunInfo{ID: string(k), Root: string(meta.Get([]byte(rootKey))), Started: started}
			if err := run.Bucket([]byte(movesBucket)).ForEach(func(_, _ []byte) error {
				info.Moves++
				return nil
			}); err != nil {
				return err
			}
			runs = append(runs, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Started.Before(runs[j].Started)
	})
	return runs, nil
}
