package storage

import (
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	runsBucket = "runs"

	metaBucket  = "meta"
	movesBucket = "moves"
)

var bucketNames = []string{
	runsBucket,
}

func (s Storage) initBuckets() error {
	logrus.Debug("Initializing buckets")
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range bucketNames {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}
