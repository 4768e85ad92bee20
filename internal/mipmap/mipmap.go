// Package mipmap builds box-filtered mip chains for single-channel
// thumbnail textures.
package mipmap

import (
	"image"
	"math/bits"
)

// Chain holds pre-computed downscaled versions of a grayscale image.
//
// Level 0 is the original image; each further level halves both
// dimensions (rounding down, never below 1) until a 1x1 level is reached.
type Chain struct {
	levels []*image.Gray
}

// LevelCount returns the number of mip levels for a w×h texture,
// 1 + floor(log2(max(w, h))). It returns 0 for empty sizes.
func LevelCount(w, h int) int {
	m := max(w, h)
	if m <= 0 {
		return 0
	}
	return bits.Len(uint(m))
}

// Generate creates a mip chain from src. The source becomes level 0 and is
// not copied. Returns nil if src is nil or empty.
func Generate(src *image.Gray) *Chain {
	if src == nil || src.Rect.Empty() {
		return nil
	}

	n := LevelCount(src.Rect.Dx(), src.Rect.Dy())
	c := &Chain{levels: make([]*image.Gray, n)}
	c.levels[0] = src
	for i := 1; i < n; i++ {
		c.levels[i] = downsample(c.levels[i-1])
	}
	return c
}

// downsample averages each 2x2 block of src into one pixel. Odd edges
// reuse the last row or column.
func downsample(src *image.Gray) *image.Gray {
	b := src.Rect
	sw, sh := b.Dx(), b.Dy()
	dw, dh := max(1, sw/2), max(1, sh/2)
	dst := image.NewGray(image.Rect(0, 0, dw, dh))

	at := func(x, y int) uint16 {
		return uint16(src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}

	for dy := range dh {
		for dx := range dw {
			sx, sy := dx*2, dy*2
			sx1, sy1 := min(sx+1, sw-1), min(sy+1, sh-1)
			sum := at(sx, sy) + at(sx1, sy) + at(sx, sy1) + at(sx1, sy1)
			dst.Pix[dy*dst.Stride+dx] = byte(sum / 4)
		}
	}
	return dst
}

// Level returns the image at level n, or nil if n is out of range.
func (c *Chain) Level(n int) *image.Gray {
	if c == nil || n < 0 || n >= len(c.levels) {
		return nil
	}
	return c.levels[n]
}

// NumLevels returns the number of levels in the chain, 0 for a nil chain.
func (c *Chain) NumLevels() int {
	if c == nil {
		return 0
	}
	return len(c.levels)
}

// Bytes returns each level as tightly packed rows, the layout expected by
// texture uploads.
func (c *Chain) Bytes() [][]byte {
	out := make([][]byte, c.NumLevels())
	for i, lvl := range c.levels {
		w, h := lvl.Rect.Dx(), lvl.Rect.Dy()
		buf := make([]byte, w*h)
		for y := range h {
			row := lvl.PixOffset(lvl.Rect.Min.X, lvl.Rect.Min.Y+y)
			copy(buf[y*w:(y+1)*w], lvl.Pix[row:row+w])
		}
		out[i] = buf
	}
	return out
}
