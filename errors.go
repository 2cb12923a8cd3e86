package shade

import "errors"

// Package errors.
var (
	// ErrClosed is returned when using a Graphics or WindowHandle
	// after Close.
	ErrClosed = errors.New("shade: graphics closed")

	// ErrWindowNotFound is returned by Run when the addressed window
	// was destroyed or never registered. Fire-and-forget commands on
	// unknown windows are silently ignored instead; only Run reports,
	// because the caller is waiting on a reply.
	ErrWindowNotFound = errors.New("shade: window not found")
)
