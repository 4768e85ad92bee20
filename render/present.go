// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Presentation errors.
var (
	// ErrPresenterClosed is returned by Present after Close.
	ErrPresenterClosed = errors.New("render: presenter is closed")

	// ErrNoTextureCreator is returned when the drawer cannot create textures.
	ErrNoTextureCreator = errors.New("render: drawer has no texture creator")
)

// textureDestroyer matches host textures that can be released.
type textureDestroyer interface {
	Destroy()
}

// Presenter copies a ColorTarget to a host surface through a cached
// texture. The texture is created on first use, updated in place while the
// size is unchanged and recreated after a resize.
//
// Presenter is NOT safe for concurrent use.
type Presenter struct {
	texture gpucontext.Texture
	// old is the texture replaced by a resize. It may still be referenced
	// by in-flight frames, so it is released after the next draw.
	old    gpucontext.Texture
	closed bool
}

// Present uploads src and draws it at the drawer's origin.
func (p *Presenter) Present(dc gpucontext.TextureDrawer, src *ColorTarget) error {
	if p.closed {
		return ErrPresenterClosed
	}
	w, h := src.Width(), src.Height()
	data := src.Pixels()
	if data == nil {
		return errTargetDestroyed
	}

	if p.texture != nil && (p.texture.Width() != w || p.texture.Height() != h) {
		release(p.old)
		p.old, p.texture = p.texture, nil
	}

	if p.texture == nil {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrNoTextureCreator
		}
		tex, err := creator.NewTextureFromRGBA(w, h, data)
		if err != nil {
			return fmt.Errorf("render: create present texture: %w", err)
		}
		p.texture = tex
	} else if updater, ok := p.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return fmt.Errorf("render: update present texture: %w", err)
		}
	}

	if err := dc.DrawTexture(p.texture, 0, 0); err != nil {
		return fmt.Errorf("render: draw present texture: %w", err)
	}
	release(p.old)
	p.old = nil
	return nil
}

// Close releases the cached textures. Close is idempotent.
func (p *Presenter) Close() {
	if p.closed {
		return
	}
	p.closed = true
	release(p.old)
	release(p.texture)
	p.old, p.texture = nil, nil
}

func release(t gpucontext.Texture) {
	if d, ok := t.(textureDestroyer); ok {
		d.Destroy()
	}
}
