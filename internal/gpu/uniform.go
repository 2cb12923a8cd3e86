package gpu

import (
	"encoding/binary"
	"math"
)

// UniformSize is the byte size of the per-frame input uniform:
// {time f32, aspect f32, mouse vec2<f32>}, 16 bytes, already satisfying
// WebGPU's uniform alignment rules.
const UniformSize = 16

// Uniform is the per-frame shader input, bound at binding 0 of bind
// group 0 and visible to both the vertex and fragment stages.
type Uniform struct {
	// Time is seconds since the window's last reset.
	Time float32
	// Aspect is surface width / height.
	Aspect float32
	// Mouse is the pointer position normalized to [-1, 1] per axis,
	// or (0, 0) when no pointer is present.
	Mouse [2]float32
}

// Pack serializes the uniform as little-endian f32 words in field
// order, matching the WGSL struct layout.
func (u Uniform) Pack() []byte {
	buf := make([]byte, UniformSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(u.Time))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(u.Aspect))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(u.Mouse[0]))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(u.Mouse[1]))
	return buf
}
