package shade

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/shade/internal/gpu"
	"github.com/gogpu/shade/shader"
)

const testShaderSource = `
struct Params {
    time: f32,
    aspect: f32,
    mouse: vec2<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(index) - 1);
    let y = f32(i32(index & 1u) * 2 - 1);
    return vec4<f32>(x, y, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    let r = 0.5 + 0.5 * sin(params.time);
    return vec4<f32>(r, params.mouse.x, params.mouse.y, 1.0);
}
`

// newTestWindow builds a reactor-style window on a private noop backend.
func newTestWindow(t *testing.T, width, height uint32, handler FrameHandler) *window {
	t.Helper()
	if handler == nil {
		handler = FrameFunc(func(FrameInfo) {})
	}
	b, err := gpu.NewBackend(1, gpu.BackendOptions{Kind: gpu.KindNoop})
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	surf, err := gpu.NewSurface(b.Device(), width, height, nil)
	if err != nil {
		b.Destroy()
		t.Fatalf("NewSurface failed: %v", err)
	}
	w := &window{
		id:          1,
		backend:     b,
		ownsBackend: true,
		surface:     surf,
		session:     gpu.NewSession(b.Device(), b.Queue()),
		visible:     true,
		prevFrame:   time.Now(),
		fps:         newRateEstimator(30),
		handler:     handler,
	}
	t.Cleanup(w.destroy)
	return w
}

// installTestPipeline compiles the test shader onto the window.
func installTestPipeline(t *testing.T, w *window) {
	t.Helper()
	mod, err := shader.Compile(testShaderSource)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if err := mod.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	pipe, err := gpu.NewPipeline(w.backend.Device(), w.backend.Queue(), mod.SPIRV, w.surface.Format())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	w.installPipeline(pipe)
}

func TestNormalizeMouse(t *testing.T) {
	tests := []struct {
		name          string
		pos           *[2]float32
		width, height uint32
		want          [2]float32
	}{
		{"absent pointer", nil, 200, 100, [2]float32{0, 0}},
		{"top right", &[2]float32{200, 0}, 200, 100, [2]float32{1, -1}},
		{"bottom left", &[2]float32{0, 100}, 200, 100, [2]float32{-1, 1}},
		{"center", &[2]float32{100, 50}, 200, 100, [2]float32{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeMouse(tt.pos, tt.width, tt.height)
			if got != tt.want {
				t.Errorf("normalizeMouse = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindowUpdateAccumulatesTime(t *testing.T) {
	w := newTestWindow(t, 100, 100, nil)
	base := time.Now()
	w.prevFrame = base

	w.update(base.Add(100 * time.Millisecond))
	if w.elapsed < 0.099 || w.elapsed > 0.101 {
		t.Errorf("elapsed = %v, want ≈ 0.1", w.elapsed)
	}
	w.update(base.Add(250 * time.Millisecond))
	if w.elapsed < 0.249 || w.elapsed > 0.251 {
		t.Errorf("elapsed = %v, want ≈ 0.25", w.elapsed)
	}
	if w.uniform.Time != float32(w.elapsed) {
		t.Errorf("uniform.Time = %v, want %v", w.uniform.Time, w.elapsed)
	}
}

func TestWindowUpdateUniform(t *testing.T) {
	w := newTestWindow(t, 200, 100, nil)
	w.mouse = &[2]float32{200, 0}

	w.update(time.Now())
	if w.uniform.Aspect != 2 {
		t.Errorf("uniform.Aspect = %v, want 2", w.uniform.Aspect)
	}
	if w.uniform.Mouse != ([2]float32{1, -1}) {
		t.Errorf("uniform.Mouse = %v, want (1,-1)", w.uniform.Mouse)
	}
}

func TestWindowResetZeroesState(t *testing.T) {
	w := newTestWindow(t, 100, 100, nil)
	base := time.Now()
	w.prevFrame = base
	for i := 1; i <= 5; i++ {
		w.update(base.Add(time.Duration(i) * 50 * time.Millisecond))
	}
	if w.elapsed == 0 {
		t.Fatal("expected accumulated time before reset")
	}

	resetAt := base.Add(time.Second)
	w.reset(resetAt)
	if w.elapsed != 0 {
		t.Errorf("elapsed = %v after reset, want 0", w.elapsed)
	}
	if w.uniform.Time != 0 {
		t.Errorf("uniform.Time = %v after reset, want 0", w.uniform.Time)
	}
	// The estimator keeps only the sample pushed by the forced update.
	if len(w.fps.samples) != 1 {
		t.Errorf("estimator holds %d samples after reset, want 1", len(w.fps.samples))
	}
	if !w.prevFrame.Equal(resetAt) {
		t.Error("frame-time reference not reset")
	}
}

func TestWindowRenderWithoutPipeline(t *testing.T) {
	var calls atomic.Int32
	w := newTestWindow(t, 100, 100, FrameFunc(func(FrameInfo) { calls.Add(1) }))

	if err := w.render(); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if calls.Load() != 0 {
		t.Error("handler invoked without a pipeline")
	}
}

func TestWindowRenderInvokesHandler(t *testing.T) {
	var got FrameInfo
	var calls atomic.Int32
	w := newTestWindow(t, 100, 100, FrameFunc(func(fi FrameInfo) {
		got = fi
		calls.Add(1)
	}))
	installTestPipeline(t, w)

	base := time.Now()
	w.prevFrame = base
	w.update(base.Add(500 * time.Millisecond))

	if err := w.render(); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("handler invoked %d times, want 1", calls.Load())
	}
	if got.Time < 0.49 || got.Time > 0.51 {
		t.Errorf("FrameInfo.Time = %v, want ≈ 0.5", got.Time)
	}
	// One estimator sample: no rate yet, FPS defaults to 0.
	if got.FPS != 0 {
		t.Errorf("FrameInfo.FPS = %v, want 0 before two samples", got.FPS)
	}
}

// presenterHandler records pixel deliveries in addition to frames.
type presenterHandler struct {
	frames int
	pixels []byte
}

func (p *presenterHandler) OnFrame(FrameInfo) { p.frames++ }

func (p *presenterHandler) UpdateData(data []byte) error {
	p.pixels = data
	return nil
}

func TestWindowRenderDeliversPixelsToPresenter(t *testing.T) {
	p := &presenterHandler{}
	w := newTestWindow(t, 64, 32, p)
	installTestPipeline(t, w)
	w.update(time.Now())

	if err := w.render(); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if p.frames != 1 {
		t.Fatalf("handler invoked %d times, want 1", p.frames)
	}
	if want := 64 * 32 * 4; len(p.pixels) != want {
		t.Errorf("pixel payload = %d bytes, want %d", len(p.pixels), want)
	}
}

func TestWindowInstallPipelineReplacesAndUnpauses(t *testing.T) {
	w := newTestWindow(t, 32, 32, nil)
	w.paused = true
	installTestPipeline(t, w)
	first := w.pipeline
	if w.paused {
		t.Error("install did not unpause the window")
	}

	installTestPipeline(t, w)
	if w.pipeline == first {
		t.Error("pipeline was not replaced wholesale")
	}
}

func TestWindowDestroyIdempotent(t *testing.T) {
	w := newTestWindow(t, 32, 32, nil)
	installTestPipeline(t, w)
	w.destroy()
	w.destroy()
}
