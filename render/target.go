// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/pointviz"
)

// ErrInvalidDimensions is returned when a target size is not positive.
var ErrInvalidDimensions = errors.New("render: invalid dimensions")

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %w: width=%d, height=%d", pointviz.ErrGPUResource, ErrInvalidDimensions, width, height)
	}
	return nil
}

// ColorTarget is the visible RGBA8 frame, drawn through a gg context.
//
// ColorTarget is NOT safe for concurrent use.
type ColorTarget struct {
	dc *gg.Context
}

// NewColorTarget allocates a width×height color target.
func NewColorTarget(width, height int) (*ColorTarget, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	return &ColorTarget{dc: gg.NewContext(width, height)}, nil
}

// Width returns the target width in pixels, 0 once destroyed.
func (t *ColorTarget) Width() int {
	if t.dc == nil {
		return 0
	}
	return t.dc.Width()
}

// Height returns the target height in pixels, 0 once destroyed.
func (t *ColorTarget) Height() int {
	if t.dc == nil {
		return 0
	}
	return t.dc.Height()
}

// Format returns the pixel format (RGBA8).
func (t *ColorTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Context returns the drawing context, nil once destroyed.
func (t *ColorTarget) Context() *gg.Context {
	return t.dc
}

// Clear fills the whole target with bg.
func (t *ColorTarget) Clear(bg gg.RGBA) {
	if t.dc != nil {
		t.dc.ClearWithColor(bg)
	}
}

// Resize reallocates the target. Contents are not preserved.
func (t *ColorTarget) Resize(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}
	if t.dc == nil {
		return errTargetDestroyed
	}
	return t.dc.Resize(width, height)
}

// Pixels returns the RGBA8 pixel bytes, row-major with no padding.
func (t *ColorTarget) Pixels() []byte {
	if t.dc == nil {
		return nil
	}
	return t.dc.ResizeTarget().Data()
}

// Image returns a snapshot of the target.
func (t *ColorTarget) Image() image.Image {
	if t.dc == nil {
		return nil
	}
	return t.dc.Image()
}

// EncodePNG writes the target as PNG.
func (t *ColorTarget) EncodePNG(w io.Writer) error {
	if t.dc == nil {
		return errTargetDestroyed
	}
	return t.dc.EncodePNG(w)
}

// Destroy releases the target. Safe to call multiple times.
func (t *ColorTarget) Destroy() {
	if t.dc != nil {
		_ = t.dc.Close()
		t.dc = nil
	}
}

var errTargetDestroyed = errors.New("render: target destroyed")

// IDTarget is an integer-exact R32Uint target. Each pixel holds the pick id
// of the marker drawn there, 0 where nothing was drawn. Writes replace the
// stored value; there is no filtering or blending.
type IDTarget struct {
	width, height int
	ids           []uint32
}

// NewIDTarget allocates a width×height ID target cleared to 0.
func NewIDTarget(width, height int) (*IDTarget, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	return &IDTarget{width: width, height: height, ids: make([]uint32, width*height)}, nil
}

// Width returns the target width in pixels.
func (t *IDTarget) Width() int { return t.width }

// Height returns the target height in pixels.
func (t *IDTarget) Height() int { return t.height }

// Format returns the pixel format (R32Uint).
func (t *IDTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatR32Uint
}

// Clear sets every pixel to 0.
func (t *IDTarget) Clear() {
	clear(t.ids)
}

// Set stores id at (x, y). Out-of-bounds writes are dropped.
func (t *IDTarget) Set(x, y int, id uint32) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height || t.ids == nil {
		return
	}
	t.ids[y*t.width+x] = id
}

// At returns the id at (x, y) with the coordinate clamped to the target.
// A destroyed target reads as 0 everywhere.
func (t *IDTarget) At(x, y int) uint32 {
	if t.ids == nil {
		return 0
	}
	x = max(0, min(x, t.width-1))
	y = max(0, min(y, t.height-1))
	return t.ids[y*t.width+x]
}

// Resize reallocates the target cleared to 0.
func (t *IDTarget) Resize(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}
	if t.ids == nil {
		return errTargetDestroyed
	}
	t.width, t.height = width, height
	t.ids = make([]uint32, width*height)
	return nil
}

// Destroy releases the target. Safe to call multiple times.
func (t *IDTarget) Destroy() {
	t.ids = nil
	t.width, t.height = 0, 0
}
