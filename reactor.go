package shade

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gogpu/shade/internal/gpu"
	"github.com/gogpu/shade/shader"
)

// reactor is the single goroutine that owns all graphics state. Every
// GPU mutation happens here, serialized through the inbox; callers
// never touch GPU objects directly.
type reactor struct {
	cfg   Config
	inbox <-chan command
	done  <-chan struct{}

	// ids allocates window and backend identifiers. Shared with the
	// Graphics facade, which assigns window ids at registration.
	ids *atomic.Uint64

	// shared is the process-wide backend, nil under private sharing.
	shared  *gpu.Backend
	windows map[WindowID]*window

	onError func(error)
}

// newSharedBackend creates the process-wide backend used by every
// window under the shared policy.
func newSharedBackend(ids *atomic.Uint64, cfg Config) (*gpu.Backend, error) {
	return gpu.NewBackend(ids.Add(1), cfg.backendOptions())
}

// run is the reactor loop: it races the next inbox command against the
// fixed-rate scheduling tick until Close fires. Both arms are polled
// in one select, so neither starves the other under normal load.
func (r *reactor) run() {
	interval := time.Second / time.Duration(r.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			r.teardown()
			return
		case cmd := <-r.inbox:
			r.handle(cmd)
		case now := <-ticker.C:
			r.tick(now)
		}
	}
}

func (r *reactor) handle(cmd command) {
	switch c := cmd.(type) {
	case registerCmd:
		r.handleRegister(c)
	case destroyCmd:
		if w, ok := r.windows[c.id]; ok {
			delete(r.windows, c.id)
			w.destroy()
			Logger().Info("window destroyed", "window", uint64(c.id))
		}
	case resizeCmd:
		r.handleResize(c)
	case runCmd:
		r.handleRun(c)
	case mouseCmd:
		if w, ok := r.windows[c.id]; ok {
			w.mouse = c.pos
		}
	case visibilityCmd:
		if w, ok := r.windows[c.id]; ok {
			w.visible = c.visible
		}
	case pausedCmd:
		if w, ok := r.windows[c.id]; ok {
			// Resuming resets the frame-time reference so the pause
			// gap is not accumulated into simulation time.
			if !c.paused {
				w.prevFrame = time.Now()
			}
			w.paused = c.paused
		}
	case resetCmd:
		if w, ok := r.windows[c.id]; ok {
			w.reset(time.Now())
		}
	}
}

// handleRegister creates the window's backend (shared or private) and
// surface. Failures are recoverable: they are reported through the
// error handler and the registration is dropped, leaving the reactor
// and all other windows untouched.
func (r *reactor) handleRegister(c registerCmd) {
	backend := r.shared
	owns := false
	if backend == nil {
		b, err := gpu.NewBackend(r.ids.Add(1), r.cfg.backendOptions())
		if err != nil {
			r.report(fmt.Errorf("register window %d: %w", uint64(c.id), err))
			return
		}
		backend = b
		owns = true
	}

	surf, err := gpu.NewSurface(backend.Device(), c.size.Width, c.size.Height, nil)
	if err != nil {
		if owns {
			backend.Destroy()
		}
		r.report(fmt.Errorf("register window %d: %w", uint64(c.id), err))
		return
	}

	r.windows[c.id] = &window{
		id:          c.id,
		backend:     backend,
		ownsBackend: owns,
		surface:     surf,
		session:     gpu.NewSession(backend.Device(), backend.Queue()),
		visible:     true,
		prevFrame:   time.Now(),
		fps:         newRateEstimator(r.cfg.FPSWindow),
		handler:     c.handler,
	}
	Logger().Info("window registered",
		"window", uint64(c.id),
		"width", surf.Width(), "height", surf.Height(),
		"backend", backend.Kind().String())
}

// handleResize reconfigures the surface (dimensions clamped to ≥1) and
// immediately re-renders once, so the displayed frame matches the new
// size without waiting for the next tick.
func (r *reactor) handleResize(c resizeCmd) {
	w, ok := r.windows[c.id]
	if !ok {
		return
	}
	if err := w.surface.Configure(c.size.Width, c.size.Height); err != nil {
		r.report(fmt.Errorf("resize window %d: %w", uint64(c.id), err))
		return
	}
	Logger().Debug("window resized",
		"window", uint64(c.id), "width", w.surface.Width(), "height", w.surface.Height())
	if w.visible {
		r.renderWindow(w)
	}
}

// handleRun compiles and validates the shader, builds a fresh pipeline
// against the window's surface format, and installs it. On any failure
// the existing pipeline stays untouched and the error goes back on the
// reply channel.
func (r *reactor) handleRun(c runCmd) {
	w, ok := r.windows[c.id]
	if !ok {
		c.reply <- ErrWindowNotFound
		return
	}

	mod, err := shader.Compile(c.source)
	if err != nil {
		c.reply <- err
		return
	}
	if err := mod.Validate(); err != nil {
		c.reply <- err
		return
	}

	pipe, err := gpu.NewPipeline(w.backend.Device(), w.backend.Queue(), mod.SPIRV, w.surface.Format())
	if err != nil {
		c.reply <- fmt.Errorf("build pipeline: %w", err)
		return
	}
	w.installPipeline(pipe)
	Logger().Info("shader installed", "window", uint64(c.id))
	c.reply <- nil
}

// tick advances every unpaused window and renders every visible one.
// Pause and visibility are independent: a paused-but-visible window
// keeps presenting its last state without advancing time; an invisible
// unpaused window keeps advancing time without issuing GPU work.
func (r *reactor) tick(now time.Time) {
	for _, w := range r.windows {
		if !w.paused {
			w.update(now)
		}
		if w.visible {
			r.renderWindow(w)
		}
	}
	r.drainBackendErrors()
}

// renderWindow renders one frame. A plain acquire failure only skips
// the frame; repeated failures and all other render errors are
// reported upward.
func (r *reactor) renderWindow(w *window) {
	err := w.render()
	switch {
	case err == nil:
	case errors.Is(err, gpu.ErrTooManyAcquireFailures):
		r.report(fmt.Errorf("window %d: %w", uint64(w.id), err))
	case errors.Is(err, gpu.ErrAcquireFailed):
		Logger().Warn("frame skipped", "window", uint64(w.id), "error", err)
	default:
		r.report(fmt.Errorf("render window %d: %w", uint64(w.id), err))
	}
}

// drainBackendErrors forwards async device errors to the error handler.
func (r *reactor) drainBackendErrors() {
	drain := func(b *gpu.Backend) {
		if b == nil {
			return
		}
		for {
			select {
			case err := <-b.Errors():
				r.report(fmt.Errorf("backend %d: %w", b.ID(), err))
			default:
				return
			}
		}
	}
	drain(r.shared)
	for _, w := range r.windows {
		if w.ownsBackend {
			drain(w.backend)
		}
	}
}

// report logs a recoverable error and forwards it to the configured
// error handler.
func (r *reactor) report(err error) {
	Logger().Error("recoverable graphics error", "error", err)
	if r.onError != nil {
		r.onError(err)
	}
}

// teardown answers any queued run requests with ErrClosed, then
// releases every window and finally the shared backend.
func (r *reactor) teardown() {
drainInbox:
	for {
		select {
		case cmd := <-r.inbox:
			if rc, ok := cmd.(runCmd); ok {
				rc.reply <- ErrClosed
			}
		default:
			break drainInbox
		}
	}

	for id, w := range r.windows {
		delete(r.windows, id)
		w.destroy()
	}
	if r.shared != nil {
		r.shared.Destroy()
		r.shared = nil
	}
	Logger().Info("graphics reactor stopped")
}
