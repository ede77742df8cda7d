package fingerprint

import (
	"fmt"
	"math/bits"
	"strings"
)

const wordBits = 64

// Fingerprint is a fixed-length bit sequence. Bit 0 is the most significant
// bit of the first word. Unused trailing bits of the last word are always zero.
type Fingerprint struct {
	words []uint64
	n     int
}

type builder struct {
	words []uint64
	n     int
}

func newBuilder(n int) *builder {
	return &builder{words: make([]uint64, (n+wordBits-1)/wordBits), n: n}
}

func (b *builder) set(i int) {
	b.words[i/wordBits] |= 1 << uint(wordBits-1-i%wordBits)
}

func (b *builder) done() Fingerprint {
	return Fingerprint{words: b.words, n: b.n}
}

// FromBools packs the given bits in order.
func FromBools(bs []bool) Fingerprint {
	b := newBuilder(len(bs))
	for i, v := range bs {
		if v {
			b.set(i)
		}
	}
	return b.done()
}

// FromUint64 builds a 64-bit fingerprint, most significant bit first.
func FromUint64(v uint64) Fingerprint {
	return Fingerprint{words: []uint64{v}, n: wordBits}
}

// Parse reads a string of '0' and '1' characters.
func Parse(s string) (Fingerprint, error) {
	b := newBuilder(len(s))
	for i, c := range s {
		switch c {
		case '1':
			b.set(i)
		case '0':
		default:
			return Fingerprint{}, fmt.Errorf("invalid bit %q at position %d", c, i)
		}
	}
	return b.done(), nil
}

// Len returns the number of bits.
func (f Fingerprint) Len() int {
	return f.n
}

// Bit reports whether bit i is set.
func (f Fingerprint) Bit(i int) bool {
	if i < 0 || i >= f.n {
		return false
	}
	return f.words[i/wordBits]&(1<<uint(wordBits-1-i%wordBits)) != 0
}

// Diff counts the positions where f and other differ. Both must have the
// same length; callers that cannot guarantee it compare Len first.
func (f Fingerprint) Diff(other Fingerprint) int {
	d := 0
	for i := range f.words {
		d += bits.OnesCount64(f.words[i] ^ other.words[i])
	}
	return d
}

func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.n == other.n && f.Diff(other) == 0
}

func (f Fingerprint) String() string {
	var sb strings.Builder
	sb.Grow(f.n)
	for i := 0; i < f.n; i++ {
		if f.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Hex renders the packed words, used where the bit string is too long to read.
func (f Fingerprint) Hex() string {
	var sb strings.Builder
	for _, w := range f.words {
		fmt.Fprintf(&sb, "%016x", w)
	}
	return sb.String()
}
