// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the explicit render context of pointviz.
//
// # Key Principle
//
// pointviz RECEIVES a GPU device from the host application, it does NOT
// create its own. The host passes a [DeviceHandle]; [Open] turns it into a
// [Device], which every component that allocates GPU resources takes as a
// constructor argument. There is no process-wide device.
//
// # Devices
//
//   - WGPUDevice: uploads thumbnail textures to the host's wgpu device
//   - SoftwareDevice: keeps textures in memory for headless use and tests
//
// # Targets
//
//   - ColorTarget: RGBA8 frame drawn through a gg context
//   - IDTarget: R32Uint pick buffer with exact integer writes
//
// # Presentation
//
// [Presenter] copies a ColorTarget onto any gpucontext.TextureDrawer.
package render
