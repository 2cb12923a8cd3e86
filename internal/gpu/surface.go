package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// maxAcquireFailures is how many consecutive failed frame acquisitions
// a surface tolerates before the failure is reported upward. Until then
// each failure just skips the frame; the next tick retries.
const maxAcquireFailures = 3

// PreferredFormat picks the surface color format from the candidate
// list: the first sRGB format if one exists, otherwise the first entry.
// An empty list falls back to BGRA8UnormSrgb, the most widely supported
// presentable format.
func PreferredFormat(formats []gputypes.TextureFormat) gputypes.TextureFormat {
	if len(formats) == 0 {
		return gputypes.TextureFormatBGRA8UnormSrgb
	}
	for _, f := range formats {
		if isSRGB(f) {
			return f
		}
	}
	return formats[0]
}

func isSRGB(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatBGRA8UnormSrgb, gputypes.TextureFormatRGBA8UnormSrgb:
		return true
	}
	return false
}

// ClampSize forces each dimension to at least 1. Surfaces are commonly
// resized to zero while a window is minimized or mid-layout; a zero
// extent is invalid for texture creation.
func ClampSize(w, h uint32) (uint32, uint32) {
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return w, h
}

// Surface is an owned presentable color target. It holds the current
// texture and view at the configured size and format; Configure
// recreates them on resize.
type Surface struct {
	device hal.Device

	format gputypes.TextureFormat
	width  uint32
	height uint32

	tex  hal.Texture
	view hal.TextureView

	acquireFails int
}

// NewSurface creates a surface of the given size (clamped to ≥1),
// negotiating the format from the candidate list via PreferredFormat.
func NewSurface(device hal.Device, width, height uint32, formats []gputypes.TextureFormat) (*Surface, error) {
	s := &Surface{
		device: device,
		format: PreferredFormat(formats),
	}
	if err := s.Configure(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Configure resizes the surface, clamping each dimension to ≥1 and
// recreating the color texture and view. A no-op when the clamped size
// matches the current one and the textures exist.
func (s *Surface) Configure(width, height uint32) error {
	width, height = ClampSize(width, height)
	if width == s.width && height == s.height && s.tex != nil {
		return nil
	}
	s.releaseTextures()

	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label: "shade_surface",
		Size: hal.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        s.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create surface texture: %w", err)
	}
	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "shade_surface_view",
	})
	if err != nil {
		s.device.DestroyTexture(tex)
		return fmt.Errorf("create surface view: %w", err)
	}

	s.tex = tex
	s.view = view
	s.width = width
	s.height = height
	return nil
}

// Acquire returns the next presentable texture view. A failure skips
// the frame: the error wraps ErrAcquireFailed until the bounded retry
// budget is exhausted, after which it wraps ErrTooManyAcquireFailures
// exactly once so the caller can report upward; the counter then
// restarts. A successful acquire resets the counter.
func (s *Surface) Acquire() (hal.TextureView, error) {
	if s.view == nil {
		s.acquireFails++
		if s.acquireFails >= maxAcquireFailures {
			n := s.acquireFails
			s.acquireFails = 0
			return nil, fmt.Errorf("%w after %d attempts: %w",
				ErrTooManyAcquireFailures, n, ErrSurfaceDestroyed)
		}
		return nil, fmt.Errorf("%w: %w", ErrAcquireFailed, ErrSurfaceDestroyed)
	}
	s.acquireFails = 0
	return s.view, nil
}

// Texture returns the current color texture. Valid until the next
// Configure or Destroy.
func (s *Surface) Texture() hal.Texture { return s.tex }

// Format returns the negotiated color format.
func (s *Surface) Format() gputypes.TextureFormat { return s.format }

// Width returns the configured width (always ≥ 1).
func (s *Surface) Width() uint32 { return s.width }

// Height returns the configured height (always ≥ 1).
func (s *Surface) Height() uint32 { return s.height }

// AcquireFailures returns the consecutive acquire failure count.
func (s *Surface) AcquireFailures() int { return s.acquireFails }

func (s *Surface) releaseTextures() {
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.tex != nil {
		s.device.DestroyTexture(s.tex)
		s.tex = nil
	}
}

// Destroy releases the surface's textures. Safe to call repeatedly.
func (s *Surface) Destroy() {
	s.releaseTextures()
	s.width = 0
	s.height = 0
}
