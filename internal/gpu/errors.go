package gpu

import "errors"

// Package errors.
var (
	// ErrSurfaceDestroyed is returned when acquiring a frame from a
	// surface whose textures have been released.
	ErrSurfaceDestroyed = errors.New("gpu: surface destroyed")

	// ErrAcquireFailed wraps a failure to obtain the next presentable
	// texture. The frame is skipped and acquisition retried next tick.
	ErrAcquireFailed = errors.New("gpu: acquire frame failed")

	// ErrTooManyAcquireFailures is reported upward after acquisition
	// has failed maxAcquireFailures times in a row.
	ErrTooManyAcquireFailures = errors.New("gpu: repeated acquire failures")
)
