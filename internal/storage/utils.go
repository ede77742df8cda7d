package storage

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	rootKey    = "root"
	startedKey = "started"
)

var ErrUnknownRun = errors.New("unknown run")

func formatTime(t time.Time) []byte {
	return []byte(strconv.FormatInt(t.UnixNano(), 10))
}

func parseTime(data []byte) (time.Time, error) {
	nano, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, nano), nil
}

func runBucket(tx *bolt.Tx, runID string) *bolt.Bucket {
	return tx.Bucket([]byte(runsBucket)).Bucket([]byte(runID))
}

func (s Storage) createRun(runID string, meta map[string][]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		run, err := b.CreateBucket([]byte(runID))
		if err != nil {
			return err
		}
		m, err := run.CreateBucket([]byte(metaBucket))
		if err != nil {
			return err
		}
		if _, err := run.CreateBucket([]byte(movesBucket)); err != nil {
			return err
		}
		for k, v := range meta {
			if err := m.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s Storage) putMove(runID string, destination, source string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		run := runBucket(tx, runID)
		if run == nil {
			return fmt.Errorf("%w %s", ErrUnknownRun, runID)
		}
		return run.Bucket([]byte(movesBucket)).Put([]byte(destination), []byte(source))
	})
}

func (s Storage) deleteMove(runID string, destination string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		run := runBucket(tx, runID)
		if run == nil {
			return fmt.Errorf("%w %s", ErrUnknownRun, runID)
		}
		return run.Bucket([]byte(movesBucket)).Delete([]byte(destination))
	})
}
