package fingerprint

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

var ErrEmptyImage = errors.New("image has no pixels")

// Pixels is an immutable 8-bit RGBA buffer. Every transformation returns a
// new buffer.
type Pixels struct {
	width  int
	height int
	pix    []uint8
}

// NewPixels copies pix, which holds width*height R,G,B,A quadruples in
// row-major order.
func NewPixels(width, height int, pix []uint8) (Pixels, error) {
	if width <= 0 || height <= 0 {
		return Pixels{}, ErrEmptyImage
	}
	if len(pix) != width*height*4 {
		return Pixels{}, fmt.Errorf("pixel buffer has %d bytes, want %d", len(pix), width*height*4)
	}
	cp := make([]uint8, len(pix))
	copy(cp, pix)
	return Pixels{width: width, height: height, pix: cp}, nil
}

// FromImage converts any decoded image into a buffer.
func FromImage(img image.Image) (Pixels, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Pixels{}, ErrEmptyImage
	}
	pix := make([]uint8, 0, w*h*4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pix = append(pix, c.R, c.G, c.B, c.A)
		}
	}
	return Pixels{width: w, height: h, pix: pix}, nil
}

func (p Pixels) Width() int  { return p.width }
func (p Pixels) Height() int { return p.height }

// RGB returns the color channels at (x, y).
func (p Pixels) RGB(x, y int) (r, g, b uint8) {
	i := (y*p.width + x) * 4
	return p.pix[i], p.pix[i+1], p.pix[i+2]
}

// Image exposes a copy of the buffer as an image.Image.
func (p Pixels) Image() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.pix)
	return img
}

// shrink scales img to width x height. The source is never modified; when it
// already has the target size it is only converted.
func shrink(img image.Image, width, height int) (Pixels, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return Pixels{}, ErrEmptyImage
	}
	if bounds.Dx() == width && bounds.Dy() == height {
		return FromImage(img)
	}
	return FromImage(resize.Resize(uint(width), uint(height), img, resize.Bilinear))
}

// Gray returns R+G+B of every pixel in row-major order. It is the
// unweighted channel mean scaled by three.
func (p Pixels) Gray() []int {
	out := make([]int, 0, p.width*p.height)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			r, g, b := p.RGB(x, y)
			out = append(out, int(r)+int(g)+int(b))
		}
	}
	return out
}

// lightness is the HSL lightness (max+min)/2, scaled by two to stay integral.
func lightness(r, g, b uint8) int {
	hi, lo := r, r
	for _, c := range []uint8{g, b} {
		if c > hi {
			hi = c
		}
		if c < lo {
			lo = c
		}
	}
	return int(hi) + int(lo)
}
