package imgmatch

// Partition is the outcome of Cluster. Every input record is either one of
// Representatives or a member of exactly one representative's Group.
type Partition struct {
	Representatives []*Record
	Total           int

	ran bool
}

// Ran is false for a partition that was not produced by Cluster.
func (p *Partition) Ran() bool {
	return p != nil && p.ran
}

// Insufficient reports that fewer than two records were clustered, so no
// absorption was possible.
func (p *Partition) Insufficient() bool {
	return p.Ran() && p.Total < 2
}

// Clusters returns the representatives that absorbed at least one record.
func (p *Partition) Clusters() []*Record {
	var out []*Record
	for _, r := range p.Representatives {
		if len(r.Group) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Absorbed counts the records that are not kept.
func (p *Partition) Absorbed() int {
	n := 0
	for _, r := range p.Representatives {
		n += len(r.Group)
	}
	return n
}

type Entry struct {
	Representative string
	Absorbed       []string
}

// Entries flattens the partition to identifiers, in representative order.
func (p *Partition) Entries() []Entry {
	out := make([]Entry, 0, len(p.Representatives))
	for _, r := range p.Representatives {
		e := Entry{Representative: r.ID}
		for _, m := range r.Group {
			e.Absorbed = append(e.Absorbed, m.ID)
		}
		out = append(out, e)
	}
	return out
}

// KeeperEntries is Entries with the best member of every group named as the
// one to keep. Groups have the same members as in Entries; the records
// themselves are not changed.
func (p *Partition) KeeperEntries() []Entry {
	out := make([]Entry, 0, len(p.Representatives))
	for _, rep := range p.Representatives {
		keeper := rep
		for _, m := range rep.Group {
			if m.better(keeper) {
				keeper = m
			}
		}
		e := Entry{Representative: keeper.ID}
		for _, m := range append([]*Record{rep}, rep.Group...) {
			if m != keeper {
				e.Absorbed = append(e.Absorbed, m.ID)
			}
		}
		out = append(out, e)
	}
	return out
}
