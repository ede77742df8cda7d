package imgmatch

import (
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/fingerprint"
)

// Record describes one decoded image. Only Absorbed and Group change, and
// only while clustering.
type Record struct {
	ID                   string
	ByteSize             int64
	PixelWidth           int
	PixelHeight          int
	VerticalResolution   float64
	HorizontalResolution float64
	Fingerprint          fingerprint.Fingerprint

	// Absorbed is set once another record claimed this one.
	Absorbed bool
	// Group holds the records absorbed into this one, in claim order.
	Group []*Record
}

// better reports whether r is a preferable keeper over other: larger file,
// then higher resolution, then more pixels.
func (r *Record) better(other *Record) bool {
	if r.ByteSize != other.ByteSize {
		return r.ByteSize > other.ByteSize
	}
	if rr, or := r.VerticalResolution*r.HorizontalResolution, other.VerticalResolution*other.HorizontalResolution; rr != or {
		return rr > or
	}
	return r.PixelWidth*r.PixelHeight > other.PixelWidth*other.PixelHeight
}
