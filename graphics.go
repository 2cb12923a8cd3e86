// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shade

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// WindowID identifies a registered window. IDs are process-unique,
// monotonically allocated, non-zero, and never reused.
type WindowID uint64

// Size is a surface extent in pixels. Zero dimensions are clamped to 1
// when applied.
type Size struct {
	Width  uint32
	Height uint32
}

// inboxDepth buffers the command inbox so bursts of fire-and-forget
// commands don't block UI-side callers waiting on the reactor.
const inboxDepth = 64

// Graphics is the public front door to the graphics reactor. It spawns
// the reactor goroutine and hands out WindowHandle values; it never
// touches GPU state itself.
//
// Graphics and the handles it returns are safe for concurrent use:
// every operation is a message into the reactor's single-consumer
// inbox. Commands from one goroutine are processed in the order sent;
// commands from different goroutines interleave in arrival order.
type Graphics struct {
	inbox chan command
	done  chan struct{}
	once  sync.Once

	// ids allocates window and backend identifiers; shared with the
	// reactor so every id comes from one counter.
	ids atomic.Uint64
}

// New validates the config, creates the shared backend when the
// sharing policy calls for one, and starts the reactor.
//
// With an explicit backend kind, a creation failure is fatal and
// returned here. With auto detection the probe chain falls back to the
// universally available noop device, so New only fails on a config
// error or an exhausted chain.
func New(cfg Config, opts ...Option) (*Graphics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("shade: %w", err)
	}
	cfg = cfg.withDefaults()

	g := &Graphics{
		inbox: make(chan command, inboxDepth),
		done:  make(chan struct{}),
	}

	r := &reactor{
		cfg:     cfg,
		inbox:   g.inbox,
		done:    g.done,
		ids:     &g.ids,
		windows: make(map[WindowID]*window),
	}
	for _, opt := range opts {
		opt(r)
	}

	if cfg.shareBackend() {
		b, err := newSharedBackend(&g.ids, cfg)
		if err != nil {
			return nil, fmt.Errorf("shade: %w", err)
		}
		r.shared = b
	}

	go r.run()
	return g, nil
}

// RegisterWindow allocates a window id, posts the registration, and
// immediately returns a handle. Registration is asynchronous: the
// window exists in the reactor only after the command is processed,
// observable through the first frame notification.
//
// Surface or backend creation failures during registration are
// recoverable: they are reported through the handler configured with
// WithErrorHandler and the window is not created; handle operations on
// it are then ignored (and Run reports ErrWindowNotFound).
func (g *Graphics) RegisterWindow(size Size, handler FrameHandler) *WindowHandle {
	id := WindowID(g.ids.Add(1))
	g.send(registerCmd{id: id, size: size, handler: handler})
	return &WindowHandle{graphics: g, id: id}
}

// Close stops the reactor and releases every GPU resource it owns.
// Pending Run calls fail with ErrClosed. Safe to call more than once.
func (g *Graphics) Close() {
	g.once.Do(func() { close(g.done) })
}

// send posts a command unless the instance is closed. Reports whether
// the command was accepted.
func (g *Graphics) send(cmd command) bool {
	select {
	case <-g.done:
		return false
	default:
	}
	select {
	case g.inbox <- cmd:
		return true
	case <-g.done:
		return false
	}
}

// WindowHandle addresses one registered window. Handles are lightweight
// and may be copied and used from any goroutine; all methods post
// messages to the reactor.
//
// Every method except Run is fire-and-forget: calls addressing a
// destroyed window are silently ignored, since a destroy may race
// commands already in flight.
type WindowHandle struct {
	graphics *Graphics
	id       WindowID
}

// ID returns the window's identifier.
func (h *WindowHandle) ID() WindowID { return h.id }

// Run compiles and validates the shader source, installs it as the
// window's pipeline, and unpauses the window. It blocks the caller —
// never the reactor — until the reactor replies or ctx is done.
//
// Failures are structured: *shader.ParseError for source that does not
// compile, *shader.ValidateError for a missing vs_main/fs_main entry
// point — both carry the offending source. A failed Run leaves the
// previously installed pipeline untouched. Running on a destroyed
// window reports ErrWindowNotFound.
func (h *WindowHandle) Run(ctx context.Context, source string) error {
	reply := make(chan error, 1)
	if !h.graphics.send(runCmd{id: h.id, source: source, reply: reply}) {
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-h.graphics.done:
		return ErrClosed
	}
}

// Resize reconfigures the window's surface, clamping each dimension to
// at least 1, and re-renders once immediately.
func (h *WindowHandle) Resize(size Size) {
	h.graphics.send(resizeCmd{id: h.id, size: size})
}

// SetMousePosition updates the pointer position in raw surface
// coordinates, or clears it with nil. The shader sees the position
// normalized to [-1, 1] per axis ((0, 0) when absent).
func (h *WindowHandle) SetMousePosition(pos *[2]float32) {
	if pos != nil {
		p := *pos
		pos = &p
	}
	h.graphics.send(mouseCmd{id: h.id, pos: pos})
}

// SetVisibility toggles rendering. An invisible window issues no GPU
// work and no frame notifications, but still advances time while
// unpaused, so re-showing it reflects true elapsed time.
func (h *WindowHandle) SetVisibility(visible bool) {
	h.graphics.send(visibilityCmd{id: h.id, visible: visible})
}

// SetPaused toggles simulation time. A paused-but-visible window keeps
// presenting its last rendered state. Unpausing resets the frame-time
// reference to now, so time spent paused is not accumulated.
func (h *WindowHandle) SetPaused(paused bool) {
	h.graphics.send(pausedCmd{id: h.id, paused: paused})
}

// Reset zeroes the window's accumulated time and restarts its
// frame-rate estimator.
func (h *WindowHandle) Reset() {
	h.graphics.send(resetCmd{id: h.id})
}

// Destroy removes the window and releases its GPU resources.
func (h *WindowHandle) Destroy() {
	h.graphics.send(destroyCmd{id: h.id})
}
