package region

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Background is the color key reserved for "no land". Pure white pixels
// are excluded from all accounting.
const Background uint32 = 0xFFFFFF

// ErrInvalidInput marks fatal input errors: missing or empty images and
// out-of-domain estimator parameters.
var ErrInvalidInput = errors.New("invalid input")

// Grid holds one packed 24-bit color key per pixel, row major. A key is
// (R<<16)|(G<<8)|B with 8-bit channels; alpha is discarded.
type Grid struct {
	W, H int
	keys []uint32
}

func FromImage(img image.Image) (*Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrInvalidInput, w, h)
	}

	g := &Grid{W: w, H: h, keys: make([]uint32, w*h)}
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Non-premultiplied channels: alpha is dropped, never
			// composited into the color key.
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			g.keys[i] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			i++
		}
	}
	return g, nil
}

// Key returns the packed color key at (x, y).
func (g *Grid) Key(x, y int) uint32 {
	return g.keys[y*g.W+x]
}

func (g *Grid) row(y int) []uint32 {
	return g.keys[y*g.W : (y+1)*g.W]
}

// ResizeNearest returns a w×h grid sampling g at the nearest source
// coordinate. Keys are copied, never interpolated, so every key in the
// result occurs in g. Returns g itself when the dimensions already match.
func (g *Grid) ResizeNearest(w, h int) *Grid {
	if w == g.W && h == g.H {
		return g
	}

	dst := &Grid{W: w, H: h, keys: make([]uint32, w*h)}
	for y := range h {
		src := g.row(y * g.H / h)
		drow := dst.keys[y*w : (y+1)*w]
		for x := range w {
			drow[x] = src[x*g.W/w]
		}
	}
	return dst
}
