package imgmatch

import (
	"fmt"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/similarity"
	"github.com/sirupsen/logrus"
)

// Cluster partitions records with greedy first-match clustering. Records are
// visited in input order; every unclaimed record seeds a group and claims all
// later and earlier unclaimed records that are similar to it. Candidates are
// only ever compared with the seed, never with members it absorbed.
//
// A comparator error aborts clustering, since it means fingerprints of
// different lengths were mixed. The records are then left unclustered.
func Cluster(records []*Record, cmp similarity.Comparator) (*Partition, error) {
	reset(records)

	p := &Partition{ran: true, Total: len(records)}
	if len(records) < 2 {
		p.Representatives = append(p.Representatives, records...)
		logrus.Debugf("Only %d records, nothing to cluster", len(records))
		return p, nil
	}

	claimed := make([]bool, len(records))
	for i, seed := range records {
		if claimed[i] {
			continue
		}
		for j, candidate := range records {
			if j == i || claimed[j] {
				continue
			}
			score, err := cmp.Compare(seed.Fingerprint, candidate.Fingerprint)
			if err != nil {
				reset(records)
				return nil, fmt.Errorf("comparing %s with %s: %w", seed.ID, candidate.ID, err)
			}
			if cmp.Similar(score) {
				logrus.WithField("path", candidate.ID).Debugf("Absorbed by %s with score %v", seed.ID, score)
				claimed[j] = true
				candidate.Absorbed = true
				seed.Group = append(seed.Group, candidate)
			}
		}
	}

	for i, r := range records {
		if !claimed[i] {
			p.Representatives = append(p.Representatives, r)
		}
	}
	return p, nil
}

func reset(records []*Record) {
	for _, r := range records {
		r.Absorbed = false
		r.Group = nil
	}
}
