// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/pointviz/internal/mipmap"
)

// DeviceHandle provides GPU device access from the host application.
// The host owns the device; pointviz receives it and never creates one.
type DeviceHandle = gpucontext.DeviceProvider

// Device is the render context passed explicitly to every component that
// allocates GPU resources. There is no process-wide device.
//
// Implementations: [SoftwareDevice] keeps textures in memory and is used
// for headless rendering and tests; [WGPUDevice] uploads to a host-provided
// WebGPU device.
type Device interface {
	// CreateTexture allocates a texture and uploads one tightly packed
	// byte slice per mip level. Failures wrap pointviz.ErrGPUResource.
	CreateTexture(desc TextureDescriptor, levels [][]byte) (Texture, error)

	// Info describes the adapter behind the device.
	Info() gpucontext.AdapterInfo
}

// Texture is a device-resident image.
type Texture interface {
	Width() uint32
	Height() uint32
	Format() gputypes.TextureFormat
	MipLevelCount() uint32

	// Destroy releases the texture. Calling it more than once is a no-op.
	Destroy()
}

// TextureDescriptor describes parameters for creating a 2D texture.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	Width  uint32
	Height uint32

	// MipLevelCount is the number of mip levels, 1 for none.
	MipLevelCount uint32

	Format gputypes.TextureFormat
	Usage  gputypes.TextureUsage
}

// ThumbnailDescriptor describes a single-channel w×h thumbnail with a full
// mip chain, sampled by shaders and written from the CPU.
func ThumbnailDescriptor(label string, w, h int) TextureDescriptor {
	return TextureDescriptor{
		Label:         label,
		Width:         uint32(w),
		Height:        uint32(h),
		MipLevelCount: uint32(mipmap.LevelCount(w, h)),
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}
}

// Errors returned by TextureDescriptor.Validate.
var (
	errEmptyTexture      = errors.New("texture has zero size")
	errUnsupportedFormat = errors.New("unsupported texture format")
)

// BytesPerPixel returns the texel size of the formats pointviz allocates,
// or 0 for any other format.
func BytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatR32Uint:
		return 4
	default:
		return 0
	}
}

// LevelSize returns the dimensions of mip level n.
func (d TextureDescriptor) LevelSize(n int) (w, h uint32) {
	return max(1, d.Width>>n), max(1, d.Height>>n)
}

// Validate checks the descriptor and, when levels is non-nil, that one
// correctly sized slice is supplied per mip level.
func (d TextureDescriptor) Validate(levels [][]byte) error {
	if d.Width == 0 || d.Height == 0 {
		return errEmptyTexture
	}
	bpp := BytesPerPixel(d.Format)
	if bpp == 0 {
		return fmt.Errorf("%w: %s", errUnsupportedFormat, d.Format)
	}
	if want := uint32(mipmap.LevelCount(int(d.Width), int(d.Height))); d.MipLevelCount == 0 || d.MipLevelCount > want {
		return fmt.Errorf("mip level count %d outside [1, %d]", d.MipLevelCount, want)
	}
	if levels == nil {
		return nil
	}
	if len(levels) != int(d.MipLevelCount) {
		return fmt.Errorf("got %d mip levels, want %d", len(levels), d.MipLevelCount)
	}
	for i, data := range levels {
		w, h := d.LevelSize(i)
		if want := int(w*h) * bpp; len(data) != want {
			return fmt.Errorf("mip level %d: got %d bytes, want %d", i, len(data), want)
		}
	}
	return nil
}

// NullDeviceHandle is a DeviceHandle with no GPU behind it, used when
// pointviz runs headless.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "null", Type: gpucontext.AdapterTypeUnknown}
}

var _ DeviceHandle = NullDeviceHandle{}

// Open returns a device for the host-provided handle. A handle that carries
// a WebGPU device yields a [WGPUDevice]; anything else, including
// [NullDeviceHandle], falls back to a [SoftwareDevice].
func Open(h DeviceHandle) Device {
	if h != nil {
		if dev, err := NewWGPUDevice(h); err == nil {
			return dev
		}
	}
	return NewSoftwareDevice()
}
