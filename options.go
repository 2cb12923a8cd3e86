package shade

// Option configures a Graphics instance during creation.
//
// Example:
//
//	g, err := shade.New(shade.DefaultConfig(),
//	    shade.WithErrorHandler(func(err error) {
//	        log.Printf("graphics: %v", err)
//	    }))
type Option func(*reactor)

// WithErrorHandler installs a handler for recoverable runtime errors
// that have no caller waiting for a reply: window registration
// failures, repeated frame-acquire failures, render faults, and async
// device errors.
//
// The handler runs on the reactor goroutine and must not block. When
// no handler is set these errors are only logged.
func WithErrorHandler(fn func(error)) Option {
	return func(r *reactor) {
		r.onError = fn
	}
}
