// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader compiles and validates WGSL shader programs.
//
// Compilation is a pure function from source text to a compiled
// [Module]; it has no side effects on any GPU state. Failures are
// structured: a [ParseError] for source that does not compile, a
// [ValidateError] for source that compiles but does not satisfy the
// playground's entry point contract. Both carry the offending source
// text so callers can render diagnostics with context.
package shader
