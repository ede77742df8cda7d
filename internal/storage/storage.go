package storage

import (
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

const journalFile = "journal.db"

// New opens the move journal kept in dir, creating both if needed.
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	dbPath := filepath.Join(dir, journalFile)
	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening database file: %w", err)
	}
	s := Storage{db}
	if err = s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initilizing buckets: %w", err)
	}
	return &s, nil
}

// Storage records which files a run relocated so that the run can be undone.
// It is never consulted while detecting duplicates.
type Storage struct {
	db *bolt.DB
}

func (s Storage) Close() error {
	return s.db.Close()
}
