// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/pointviz"
)

// SoftwareDevice keeps textures in CPU memory.
//
// It backs headless rendering (the CLI) and tests. Live reports the number
// of textures that have been created and not yet destroyed, which makes
// leaked or double-freed handles observable.
//
// Thread safety: SoftwareDevice is safe for concurrent use.
type SoftwareDevice struct {
	maxTextures int
	live        atomic.Int64
	created     atomic.Int64
}

// SoftwareOption configures a SoftwareDevice.
type SoftwareOption func(*SoftwareDevice)

// WithMaxTextures caps the number of live textures. Allocations beyond the
// cap fail with pointviz.ErrGPUResource, like an exhausted device would.
// Zero or negative means unlimited.
func WithMaxTextures(n int) SoftwareOption {
	return func(d *SoftwareDevice) {
		d.maxTextures = n
	}
}

// NewSoftwareDevice creates a CPU texture device.
func NewSoftwareDevice(opts ...SoftwareOption) *SoftwareDevice {
	d := &SoftwareDevice{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Info reports a software adapter.
func (d *SoftwareDevice) Info() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "pointviz software", Type: gpucontext.AdapterTypeSoftware}
}

// CreateTexture copies levels into a new in-memory texture.
func (d *SoftwareDevice) CreateTexture(desc TextureDescriptor, levels [][]byte) (Texture, error) {
	if err := desc.Validate(levels); err != nil {
		return nil, fmt.Errorf("%w: create texture %q: %w", pointviz.ErrGPUResource, desc.Label, err)
	}
	if n := d.live.Add(1); d.maxTextures > 0 && n > int64(d.maxTextures) {
		d.live.Add(-1)
		return nil, fmt.Errorf("%w: create texture %q: device limit of %d textures reached",
			pointviz.ErrGPUResource, desc.Label, d.maxTextures)
	}
	d.created.Add(1)

	t := &SoftwareTexture{desc: desc, dev: d, levels: make([][]byte, desc.MipLevelCount)}
	for i := range t.levels {
		if levels != nil {
			t.levels[i] = append([]byte(nil), levels[i]...)
		} else {
			w, h := desc.LevelSize(i)
			t.levels[i] = make([]byte, int(w*h)*BytesPerPixel(desc.Format))
		}
	}
	return t, nil
}

// Live returns the number of textures created and not yet destroyed.
func (d *SoftwareDevice) Live() int {
	return int(d.live.Load())
}

// Created returns the total number of textures ever created.
func (d *SoftwareDevice) Created() int {
	return int(d.created.Load())
}

// SoftwareTexture is a texture held in CPU memory.
type SoftwareTexture struct {
	desc   TextureDescriptor
	dev    *SoftwareDevice
	once   sync.Once
	levels [][]byte
}

// Width returns the level 0 width.
func (t *SoftwareTexture) Width() uint32 { return t.desc.Width }

// Height returns the level 0 height.
func (t *SoftwareTexture) Height() uint32 { return t.desc.Height }

// Format returns the texel format.
func (t *SoftwareTexture) Format() gputypes.TextureFormat { return t.desc.Format }

// MipLevelCount returns the number of mip levels.
func (t *SoftwareTexture) MipLevelCount() uint32 { return t.desc.MipLevelCount }

// Level returns the raw bytes of mip level n, or nil once destroyed or out
// of range.
func (t *SoftwareTexture) Level(n int) []byte {
	if n < 0 || n >= len(t.levels) {
		return nil
	}
	return t.levels[n]
}

// Destroyed reports whether Destroy has been called.
func (t *SoftwareTexture) Destroyed() bool {
	return t.levels == nil
}

// Destroy releases the texture memory. Safe to call multiple times.
func (t *SoftwareTexture) Destroy() {
	t.once.Do(func() {
		t.levels = nil
		t.dev.live.Add(-1)
	})
}

// Gray returns level 0 of an R8 texture as an image, or nil for other
// formats or a destroyed texture.
func (t *SoftwareTexture) Gray() *image.Gray {
	if t.desc.Format != gputypes.TextureFormatR8Unorm || t.levels == nil {
		return nil
	}
	w, h := int(t.desc.Width), int(t.desc.Height)
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, t.levels[0])
	return img
}

// Swizzled returns level 0 of an R8 texture sampled the way shaders see it,
// red replicated into green and blue with opaque alpha.
func (t *SoftwareTexture) Swizzled() *image.RGBA {
	g := t.Gray()
	if g == nil {
		return nil
	}
	out := image.NewRGBA(g.Rect)
	for i, v := range g.Pix {
		out.Pix[i*4+0] = v
		out.Pix[i*4+1] = v
		out.Pix[i*4+2] = v
		out.Pix[i*4+3] = 0xff
	}
	return out
}

var (
	_ Device  = (*SoftwareDevice)(nil)
	_ Texture = (*SoftwareTexture)(nil)
)
