// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shade is a live shader playground: it compiles and validates
// WGSL shader programs and renders them continuously to one or more
// window surfaces while exposing timing, mouse, and visibility state to
// the shader.
//
// The core of the package is a graphics reactor — a single goroutine
// that owns every GPU resource (backends, surfaces, pipelines) and
// serializes all mutation through a command inbox. Callers interact
// through lightweight handles that post messages into the inbox and
// never touch GPU state directly, so no locking is needed anywhere in
// the render path.
//
// # Basic usage
//
//	g, err := shade.New(shade.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Close()
//
//	win := g.RegisterWindow(shade.Size{Width: 800, Height: 600},
//	    shade.FrameFunc(func(fi shade.FrameInfo) {
//	        fmt.Printf("t=%.2fs fps=%.1f\n", fi.Time, fi.FPS)
//	    }))
//	defer win.Destroy()
//
//	if err := win.Run(ctx, wgslSource); err != nil {
//	    // err carries the offending source for diagnostics.
//	    fmt.Println(err)
//	}
//
// The reactor ticks at a fixed rate (60 Hz by default). On every tick
// each unpaused window advances its simulation time and recomputes the
// input uniform; each visible window with a compiled pipeline renders
// one frame and invokes its frame handler.
//
// # Shader contract
//
// A shader program must declare a vertex entry point named vs_main and
// a fragment entry point named fs_main. Binding 0 of bind group 0 is a
// uniform buffer visible to both stages:
//
//	struct Input {
//	    time:   f32,        // seconds since the last reset
//	    aspect: f32,        // surface width / height
//	    mouse:  vec2<f32>,  // normalized to [-1,1], (0,0) when absent
//	}
//
// Each frame draws three vertices of one instance — the canonical
// full-screen triangle — so shaders need no vertex buffers.
//
// By default shade produces no log output. Call [SetLogger] to enable
// structured logging.
package shade
