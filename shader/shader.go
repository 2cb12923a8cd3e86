package shader

import (
	"github.com/gogpu/naga"
)

// Entry point names every playground shader must declare.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Stage identifies a shader pipeline stage.
type Stage int

const (
	// StageVertex is the vertex stage.
	StageVertex Stage = iota
	// StageFragment is the fragment stage.
	StageFragment
)

// String returns the stage's lowercase name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// EntryPoint is one entry point declared by a compiled shader.
type EntryPoint struct {
	Name  string
	Stage Stage
}

// Module is a compiled shader program ready for pipeline creation.
type Module struct {
	// Source is the original WGSL text.
	Source string
	// SPIRV is the compiled binary as 32-bit words.
	SPIRV []uint32
	// EntryPoints lists the vertex and fragment entry points found in
	// the binary, in declaration order.
	EntryPoints []EntryPoint
}

// Compile parses WGSL source into a Module. A compiler failure is
// returned as a *ParseError carrying the source text.
//
// Compile does not check the entry point contract; call
// [Module.Validate] for that.
func Compile(source string) (*Module, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	entries, err := entryPoints(words)
	if err != nil {
		return nil, &ValidateError{Source: source, Reason: err.Error()}
	}

	return &Module{
		Source:      source,
		SPIRV:       words,
		EntryPoints: entries,
	}, nil
}

// Validate checks the playground's entry point contract: the module
// must declare a vertex entry point named vs_main and a fragment entry
// point named fs_main. A violation is returned as a *ValidateError
// carrying the source text.
func (m *Module) Validate() error {
	if !m.HasEntryPoint(VertexEntryPoint, StageVertex) {
		return &ValidateError{
			Source: m.Source,
			Reason: "missing vertex entry point " + VertexEntryPoint,
		}
	}
	if !m.HasEntryPoint(FragmentEntryPoint, StageFragment) {
		return &ValidateError{
			Source: m.Source,
			Reason: "missing fragment entry point " + FragmentEntryPoint,
		}
	}
	return nil
}

// HasEntryPoint reports whether the module declares an entry point
// with the given name and stage.
func (m *Module) HasEntryPoint(name string, stage Stage) bool {
	for _, ep := range m.EntryPoints {
		if ep.Name == name && ep.Stage == stage {
			return true
		}
	}
	return false
}
