package shade

// FrameInfo is the read-only snapshot delivered to a window's frame
// handler once per rendered frame.
type FrameInfo struct {
	// Time is the window's accumulated simulation time in seconds
	// since the last reset.
	Time float32

	// FPS is the rolling frame-rate estimate, or 0 until the
	// estimator has collected at least two samples.
	FPS float32
}

// FrameHandler receives one notification per rendered frame.
//
// OnFrame is invoked on the reactor's own goroutine: treat it as a
// notification and return quickly — blocking stalls every window.
//
// A handler that additionally implements gpucontext.TextureUpdater
// (UpdateData([]byte) error) is treated as a presenter: each rendered
// frame is read back as tightly packed RGBA bytes (width*height*4) and
// delivered via UpdateData before OnFrame fires.
type FrameHandler interface {
	OnFrame(FrameInfo)
}

// FrameFunc adapts a plain function to a FrameHandler.
type FrameFunc func(FrameInfo)

// OnFrame calls f(fi).
func (f FrameFunc) OnFrame(fi FrameInfo) { f(fi) }
