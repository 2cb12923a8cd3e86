package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// gpuTimeout bounds the fence wait after a frame submission.
const gpuTimeout = 5 * time.Second

// Session encodes and submits one frame at a time for a single
// device/queue pair. It holds no per-frame state between calls.
type Session struct {
	device hal.Device
	queue  hal.Queue
}

// NewSession creates a frame session on the given device and queue.
func NewSession(device hal.Device, queue hal.Queue) *Session {
	return &Session{device: device, queue: queue}
}

// RenderFrame uploads the uniform, acquires the surface's presentable
// view, and submits one full-screen draw: clear to black, bind the
// pipeline and its group, draw 3 vertices / 1 instance. The fence wait
// bounds submission latency so a wedged driver cannot hang the reactor
// forever.
func (s *Session) RenderFrame(surf *Surface, pipe *Pipeline, u Uniform) error {
	_, err := s.renderFrame(surf, pipe, u, false)
	return err
}

// RenderFrameRGBA renders like RenderFrame and additionally reads the
// frame back as tightly packed RGBA bytes (width*height*4), for
// delivery to an external presenter.
func (s *Session) RenderFrameRGBA(surf *Surface, pipe *Pipeline, u Uniform) ([]byte, error) {
	return s.renderFrame(surf, pipe, u, true)
}

func (s *Session) renderFrame(surf *Surface, pipe *Pipeline, u Uniform, readback bool) ([]byte, error) {
	pipe.WriteUniform(u)

	view, err := surf.Acquire()
	if err != nil {
		return nil, err
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "shade_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("shade_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "shade_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	rp.SetPipeline(pipe.pipeline)
	rp.SetBindGroup(0, pipe.bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	var (
		stagingBuf  hal.Buffer
		alignedRow  uint32
		stagingSize uint64
	)
	w, h := surf.Width(), surf.Height()
	if readback {
		// Copy pitch must be 256-byte aligned (WebGPU/DX12 rule).
		const copyPitchAlignment = 256
		bytesPerRow := w * 4
		alignedRow = (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
		stagingSize = uint64(alignedRow) * uint64(h)

		stagingBuf, err = s.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "shade_staging",
			Size:  stagingSize,
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			encoder.DiscardEncoding()
			return nil, fmt.Errorf("create staging buffer: %w", err)
		}
		defer s.device.DestroyBuffer(stagingBuf)

		// The render pass leaves the texture in attachment layout;
		// the copy needs transfer-source layout.
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: surf.Texture(),
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		encoder.CopyTextureToBuffer(surf.Texture(), stagingBuf, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedRow, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: surf.Texture(), MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: surf.Texture(),
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := s.device.Wait(fence, 1, gpuTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return nil, errors.New("wait for GPU: fence timeout")
	}

	if !readback {
		return nil, nil
	}

	raw := make([]byte, stagingSize)
	if err := s.queue.ReadBuffer(stagingBuf, 0, raw); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return packRGBA(raw, w, h, alignedRow, surf.Format()), nil
}

// packRGBA strips per-row copy padding and swizzles BGRA-ordered
// formats into RGBA byte order.
func packRGBA(raw []byte, w, h, alignedRow uint32, format gputypes.TextureFormat) []byte {
	bytesPerRow := w * 4
	out := make([]byte, uint64(bytesPerRow)*uint64(h))
	for row := uint32(0); row < h; row++ {
		src := raw[row*alignedRow : row*alignedRow+bytesPerRow]
		copy(out[row*bytesPerRow:], src)
	}
	switch format {
	case gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		for i := 0; i+3 < len(out); i += 4 {
			out[i], out[i+2] = out[i+2], out[i]
		}
	}
	return out
}
