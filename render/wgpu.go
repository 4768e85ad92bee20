// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/pointviz"
)

// ErrNoWGPUDevice is returned by NewWGPUDevice when the handle does not
// carry a *wgpu.Device.
var ErrNoWGPUDevice = errors.New("render: handle does not provide a wgpu device")

// WGPUDevice allocates textures on a host-provided WebGPU device.
//
// The device and queue belong to the host; WGPUDevice only creates and
// releases its own resources.
type WGPUDevice struct {
	handle DeviceHandle
	device *wgpu.Device
}

// NewWGPUDevice wraps the WebGPU device carried by h.
func NewWGPUDevice(h DeviceHandle) (*WGPUDevice, error) {
	dev, ok := h.Device().(*wgpu.Device)
	if !ok || dev == nil {
		return nil, ErrNoWGPUDevice
	}
	info := h.AdapterInfo()
	pointviz.Logger().Info("render: using wgpu device", "adapter", info.Name, "type", info.Type)
	return &WGPUDevice{handle: h, device: dev}, nil
}

// Info returns the host adapter metadata.
func (d *WGPUDevice) Info() gpucontext.AdapterInfo {
	return d.handle.AdapterInfo()
}

// CreateTexture creates the texture and writes every mip level through the
// device queue. On failure nothing stays allocated.
func (d *WGPUDevice) CreateTexture(desc TextureDescriptor, levels [][]byte) (Texture, error) {
	if err := desc.Validate(levels); err != nil {
		return nil, fmt.Errorf("%w: create texture %q: %w", pointviz.ErrGPUResource, desc.Label, err)
	}

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create texture %q: %w", pointviz.ErrGPUResource, desc.Label, err)
	}

	bpp := uint32(BytesPerPixel(desc.Format))
	queue := d.device.Queue()
	for i, data := range levels {
		w, h := desc.LevelSize(i)
		err := queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: uint32(i),
				Aspect:   gputypes.TextureAspectAll,
			},
			data,
			&wgpu.ImageDataLayout{BytesPerRow: w * bpp, RowsPerImage: h},
			&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
		if err != nil {
			tex.Release()
			return nil, fmt.Errorf("%w: upload %q level %d: %w", pointviz.ErrGPUResource, desc.Label, i, err)
		}
	}

	return &wgpuTexture{desc: desc, tex: tex}, nil
}

type wgpuTexture struct {
	desc TextureDescriptor
	once sync.Once
	tex  *wgpu.Texture
}

func (t *wgpuTexture) Width() uint32                  { return t.desc.Width }
func (t *wgpuTexture) Height() uint32                 { return t.desc.Height }
func (t *wgpuTexture) Format() gputypes.TextureFormat { return t.desc.Format }
func (t *wgpuTexture) MipLevelCount() uint32          { return t.desc.MipLevelCount }

func (t *wgpuTexture) Destroy() {
	t.once.Do(t.tex.Release)
}

var (
	_ Device  = (*WGPUDevice)(nil)
	_ Texture = (*wgpuTexture)(nil)
)
