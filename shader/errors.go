package shader

import "fmt"

// ParseError reports WGSL source that failed to compile. It wraps the
// compiler's diagnostic and retains the offending source text.
type ParseError struct {
	// Source is the full shader source that failed to parse.
	Source string
	// Err is the underlying compiler diagnostic.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse shader: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidateError reports a shader that compiled but violates the
// playground contract (wrong or missing entry points, malformed
// binary). It retains the offending source text.
type ValidateError struct {
	// Source is the full shader source that failed validation.
	Source string
	// Reason describes the violated rule.
	Reason string
}

func (e *ValidateError) Error() string {
	return fmt.Sprintf("validate shader: %s", e.Reason)
}
