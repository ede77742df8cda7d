package fingerprint

import (
	"fmt"
	"image"
	"strings"

	"github.com/corona10/goimagehash"
)

type Strategy string

const (
	Average    Strategy = "average"
	Gradient   Strategy = "gradient"
	Perception Strategy = "perception"
)

const (
	DefaultAverageGrid     = 32
	DefaultGradientWidth   = 9
	DefaultGradientHeight  = 8
	perceptionHashBitCount = 64
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Average, Gradient, Perception:
		return st, nil
	default:
		return "", fmt.Errorf("unknown hash strategy %q", s)
	}
}

// Extractor reduces an image to a fingerprint whose length is fixed for the
// lifetime of the extractor. Implementations are safe for concurrent use.
type Extractor interface {
	Extract(p Pixels) (Fingerprint, error)
	ExtractImage(img image.Image) (Fingerprint, error)
	Bits() int
	Strategy() Strategy
}

type Options struct {
	Strategy   Strategy
	GridWidth  int
	GridHeight int
}

// New returns the extractor for opts.Strategy. Zero grid sizes select the
// strategy defaults.
func New(opts Options) (Extractor, error) {
	switch opts.Strategy {
	case Average:
		w, h := orDefault(opts.GridWidth, DefaultAverageGrid), orDefault(opts.GridHeight, DefaultAverageGrid)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("average hash grid %dx%d is too small", w, h)
		}
		return &AverageHasher{width: w, height: h}, nil
	case Gradient:
		w, h := orDefault(opts.GridWidth, DefaultGradientWidth), orDefault(opts.GridHeight, DefaultGradientHeight)
		if w < 2 || h < 1 {
			return nil, fmt.Errorf("gradient hash grid %dx%d is too small, need at least 2x1", w, h)
		}
		return &GradientHasher{width: w, height: h}, nil
	case Perception:
		return &PerceptionHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hash strategy %q", opts.Strategy)
	}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// AverageHasher sets one bit per grid cell whose gray value exceeds the grid mean.
type AverageHasher struct {
	width, height int
}

func (a *AverageHasher) Bits() int          { return a.width * a.height }
func (a *AverageHasher) Strategy() Strategy { return Average }

func (a *AverageHasher) Extract(p Pixels) (Fingerprint, error) {
	if p.width == 0 || p.height == 0 {
		return Fingerprint{}, ErrEmptyImage
	}
	return a.ExtractImage(p.Image())
}

func (a *AverageHasher) ExtractImage(img image.Image) (Fingerprint, error) {
	small, err := shrink(img, a.width, a.height)
	if err != nil {
		return Fingerprint{}, err
	}
	gray := small.Gray()
	sum := 0
	for _, v := range gray {
		sum += v
	}

	// v > sum/n, without the division.
	n := len(gray)
	b := newBuilder(n)
	for i, v := range gray {
		if v*n > sum {
			b.set(i)
		}
	}
	return b.done(), nil
}

// GradientHasher sets one bit per horizontally adjacent pair whose left pixel
// is brighter than the right one.
type GradientHasher struct {
	width, height int
}

func (g *GradientHasher) Bits() int          { return (g.width - 1) * g.height }
func (g *GradientHasher) Strategy() Strategy { return Gradient }

func (g *GradientHasher) Extract(p Pixels) (Fingerprint, error) {
	if p.width == 0 || p.height == 0 {
		return Fingerprint{}, ErrEmptyImage
	}
	return g.ExtractImage(p.Image())
}

func (g *GradientHasher) ExtractImage(img image.Image) (Fingerprint, error) {
	small, err := shrink(img, g.width, g.height)
	if err != nil {
		return Fingerprint{}, err
	}
	b := newBuilder(g.Bits())
	i := 0
	for y := 0; y < small.height; y++ {
		for x := 0; x < small.width-1; x++ {
			if lightness(small.RGB(x, y)) > lightness(small.RGB(x+1, y)) {
				b.set(i)
			}
			i++
		}
	}
	return b.done(), nil
}

// PerceptionHasher delegates to the DCT based hash of goimagehash.
type PerceptionHasher struct{}

func (*PerceptionHasher) Bits() int          { return perceptionHashBitCount }
func (*PerceptionHasher) Strategy() Strategy { return Perception }

func (h *PerceptionHasher) Extract(p Pixels) (Fingerprint, error) {
	if p.width == 0 || p.height == 0 {
		return Fingerprint{}, ErrEmptyImage
	}
	return h.ExtractImage(p.Image())
}

func (*PerceptionHasher) ExtractImage(img image.Image) (Fingerprint, error) {
	if img.Bounds().Empty() {
		return Fingerprint{}, ErrEmptyImage
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("calculating hash: %w", err)
	}
	return FromUint64(hash.GetHash()), nil
}
