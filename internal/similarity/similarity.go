package similarity

import (
	"errors"
	"fmt"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/fingerprint"
)

const (
	DefaultPercentageThreshold = 65.0
	DefaultHammingThreshold    = 10
)

var ErrLengthMismatch = errors.New("fingerprint length mismatch")

// LengthMismatchError means two fingerprints of one run were produced with
// different settings. It is never caused by the image content.
type LengthMismatchError struct {
	Left, Right int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%v: %d bits vs %d bits", ErrLengthMismatch, e.Left, e.Right)
}

func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

// Score is either a percentage of matching bits or a count of differing
// bits, depending on the comparator that produced it.
type Score float64

// Comparator measures two fingerprints and decides whether a score means
// "similar". Implementations are pure and safe for concurrent use.
type Comparator interface {
	Compare(a, b fingerprint.Fingerprint) (Score, error)
	Similar(s Score) bool
}

func differingBits(a, b fingerprint.Fingerprint) (int, error) {
	if a.Len() != b.Len() {
		return 0, &LengthMismatchError{Left: a.Len(), Right: b.Len()}
	}
	return a.Diff(b), nil
}

// Percentage scores the share of agreeing bits in [0, 100].
type Percentage struct {
	Threshold float64
}

func (p Percentage) Compare(a, b fingerprint.Fingerprint) (Score, error) {
	d, err := differingBits(a, b)
	if err != nil {
		return 0, err
	}
	if a.Len() == 0 {
		return 100, nil
	}
	return Score(float64(a.Len()-d) / float64(a.Len()) * 100), nil
}

func (p Percentage) Similar(s Score) bool {
	return float64(s) >= p.Threshold
}

func (p Percentage) String() string {
	return fmt.Sprintf("similarity >= %.1f%%", p.Threshold)
}

// Hamming scores the number of differing bits.
type Hamming struct {
	Threshold int
}

func (h Hamming) Compare(a, b fingerprint.Fingerprint) (Score, error) {
	d, err := differingBits(a, b)
	if err != nil {
		return 0, err
	}
	return Score(d), nil
}

func (h Hamming) Similar(s Score) bool {
	return s < Score(h.Threshold)
}

func (h Hamming) String() string {
	return fmt.Sprintf("hamming distance < %d", h.Threshold)
}

// ForStrategy pairs a hash strategy with its metric: average hashes are
// compared by percentage, the others by Hamming distance.
func ForStrategy(strategy fingerprint.Strategy, percentage float64, hamming int) (Comparator, error) {
	switch strategy {
	case fingerprint.Average:
		if percentage < 0 || percentage > 100 {
			return nil, fmt.Errorf("similarity threshold %v is outside [0, 100]", percentage)
		}
		return Percentage{Threshold: percentage}, nil
	case fingerprint.Gradient, fingerprint.Perception:
		if hamming < 0 {
			return nil, fmt.Errorf("hamming threshold %d is negative", hamming)
		}
		return Hamming{Threshold: hamming}, nil
	default:
		return nil, fmt.Errorf("unknown hash strategy %q", strategy)
	}
}
