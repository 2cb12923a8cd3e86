// Package gpu provides the HAL-level GPU plumbing for the shade reactor.
//
// This is an internal package: it owns backend acquisition (instance,
// adapter, device, queue), surface configuration, shader pipeline
// construction, and per-frame encoding/submission. It is built on the
// gogpu/wgpu HAL (zero CGO), which supports Vulkan on native platforms
// and a noop backend for headless operation and tests.
//
// Key components:
//
//   - Backend: a GPU context (instance + device + queue) selected by an
//     explicit probe chain or an exact kind; shareable across surfaces.
//   - Surface: an owned presentable color target with clamped sizing,
//     sRGB-preferring format negotiation, and acquire-failure tracking.
//   - Pipeline: a compiled shader bound into a render pipeline with its
//     uniform buffer and bind group (binding 0, group 0).
//   - Session: one-frame encode/submit/present, including the optional
//     RGBA readback used to hand frames to an external presenter.
//
// All types in this package are owned and driven by a single goroutine
// (the reactor); none of them are safe for concurrent use.
package gpu
