// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
)

type mockTexture struct {
	w, h      int
	updates   int
	destroyed bool
}

func (m *mockTexture) Width() int                   { return m.w }
func (m *mockTexture) Height() int                  { return m.h }
func (m *mockTexture) UpdateData(data []byte) error { m.updates++; return nil }
func (m *mockTexture) Destroy()                     { m.destroyed = true }

type mockDrawer struct {
	created   []*mockTexture
	drawn     int
	noCreator bool
}

func (m *mockDrawer) DrawTexture(tex gpucontext.Texture, x, y float32) error {
	m.drawn++
	return nil
}

func (m *mockDrawer) TextureCreator() gpucontext.TextureCreator {
	if m.noCreator {
		return nil
	}
	return m
}

func (m *mockDrawer) NewTextureFromRGBA(w, h int, data []byte) (gpucontext.Texture, error) {
	if len(data) != w*h*4 {
		return nil, errors.New("bad data length")
	}
	tex := &mockTexture{w: w, h: h}
	m.created = append(m.created, tex)
	return tex, nil
}

func TestPresenter_CreatesOnceThenUpdates(t *testing.T) {
	target, _ := NewColorTarget(8, 6)
	defer target.Destroy()
	dc := &mockDrawer{}
	var p Presenter

	for range 3 {
		if err := p.Present(dc, target); err != nil {
			t.Fatalf("Present() error = %v", err)
		}
	}
	if len(dc.created) != 1 {
		t.Fatalf("created %d textures, want 1", len(dc.created))
	}
	if dc.created[0].updates != 2 {
		t.Errorf("updates = %d, want 2", dc.created[0].updates)
	}
	if dc.drawn != 3 {
		t.Errorf("drawn = %d, want 3", dc.drawn)
	}
}

func TestPresenter_RecreatesAfterResize(t *testing.T) {
	target, _ := NewColorTarget(8, 6)
	defer target.Destroy()
	dc := &mockDrawer{}
	var p Presenter

	_ = p.Present(dc, target)
	_ = target.Resize(16, 12)
	if err := p.Present(dc, target); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if len(dc.created) != 2 {
		t.Fatalf("created %d textures, want 2", len(dc.created))
	}
	if !dc.created[0].destroyed {
		t.Error("old texture not released after resize")
	}

	p.Close()
	p.Close()
	if !dc.created[1].destroyed {
		t.Error("current texture not released by Close")
	}
	if err := p.Present(dc, target); !errors.Is(err, ErrPresenterClosed) {
		t.Errorf("Present() after Close error = %v, want ErrPresenterClosed", err)
	}
}

func TestPresenter_NoCreator(t *testing.T) {
	target, _ := NewColorTarget(2, 2)
	defer target.Destroy()
	var p Presenter
	if err := p.Present(&mockDrawer{noCreator: true}, target); !errors.Is(err, ErrNoTextureCreator) {
		t.Errorf("Present() error = %v, want ErrNoTextureCreator", err)
	}
}
