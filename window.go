package shade

import (
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/shade/internal/gpu"
)

// window is the reactor-private per-surface render state. It is
// created on RegisterWindow, mutated only by the reactor, and
// destroyed on DestroyWindow.
type window struct {
	id WindowID

	backend     *gpu.Backend
	ownsBackend bool
	surface     *gpu.Surface
	session     *gpu.Session

	// pipeline is nil until the first successful shader run;
	// rendering is a no-op while nil.
	pipeline *gpu.Pipeline

	mouse   *[2]float32
	visible bool
	paused  bool

	prevFrame time.Time
	elapsed   float64
	fps       *rateEstimator
	uniform   gpu.Uniform

	handler FrameHandler
}

// update advances the simulation by the wall-clock interval since the
// previous frame and recomputes the input uniform. Called once per
// tick while unpaused.
func (w *window) update(now time.Time) {
	w.fps.Push(now)
	w.elapsed += now.Sub(w.prevFrame).Seconds()
	w.prevFrame = now

	width, height := w.surface.Width(), w.surface.Height()
	w.uniform = gpu.Uniform{
		Time:   float32(w.elapsed),
		Aspect: float32(width) / float32(height),
		Mouse:  normalizeMouse(w.mouse, width, height),
	}
}

// normalizeMouse maps a raw pointer position on a width×height surface
// into [-1, 1] per axis. An absent pointer maps to the origin.
func normalizeMouse(pos *[2]float32, width, height uint32) [2]float32 {
	if pos == nil {
		return [2]float32{}
	}
	return [2]float32{
		pos[0]/float32(width)*2 - 1,
		pos[1]/float32(height)*2 - 1,
	}
}

// render draws one frame with the last computed uniform and notifies
// the frame handler. A window without a pipeline renders nothing.
//
// Handlers implementing gpucontext.TextureUpdater receive the frame's
// RGBA pixels before the FrameInfo notification.
func (w *window) render() error {
	if w.pipeline == nil {
		return nil
	}

	if updater, ok := w.handler.(gpucontext.TextureUpdater); ok {
		rgba, err := w.session.RenderFrameRGBA(w.surface, w.pipeline, w.uniform)
		if err != nil {
			return err
		}
		if err := updater.UpdateData(rgba); err != nil {
			Logger().Warn("frame presenter rejected pixels",
				"window", uint64(w.id), "error", err)
		}
	} else {
		if err := w.session.RenderFrame(w.surface, w.pipeline, w.uniform); err != nil {
			return err
		}
	}

	fi := FrameInfo{Time: float32(w.elapsed)}
	if rate, ok := w.fps.Rate(); ok {
		fi.FPS = float32(rate)
	}
	w.handler.OnFrame(fi)
	return nil
}

// reset zeroes accumulated time, restarts the frame-time reference and
// the rate estimator, and forces one update pass so the uniform
// reflects the reset immediately.
func (w *window) reset(now time.Time) {
	w.elapsed = 0
	w.prevFrame = now
	w.fps.Reset()
	w.update(now)
}

// installPipeline replaces the window's pipeline wholesale and
// unpauses it.
func (w *window) installPipeline(p *gpu.Pipeline) {
	if w.pipeline != nil {
		w.pipeline.Destroy()
	}
	w.pipeline = p
	w.paused = false
}

// destroy releases the window's GPU resources: pipeline, surface, and
// the backend when privately owned.
func (w *window) destroy() {
	if w.pipeline != nil {
		w.pipeline.Destroy()
		w.pipeline = nil
	}
	if w.surface != nil {
		w.surface.Destroy()
		w.surface = nil
	}
	if w.ownsBackend && w.backend != nil {
		w.backend.Destroy()
	}
	w.backend = nil
	w.session = nil
}
