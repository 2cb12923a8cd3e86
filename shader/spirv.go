package shader

import (
	"errors"
	"fmt"
)

// SPIR-V constants needed to walk the instruction stream.
// See the SPIR-V specification, "Physical Layout of a SPIR-V Module".
const (
	spirvMagic      = 0x07230203
	spirvHeaderLen  = 5
	opEntryPoint    = 15
	execModelVertex = 0
	execModelFrag   = 4
)

// entryPoints scans a SPIR-V binary for OpEntryPoint instructions and
// returns the vertex and fragment entry points it declares. Other
// execution models (compute etc.) are ignored.
func entryPoints(words []uint32) ([]EntryPoint, error) {
	if len(words) < spirvHeaderLen {
		return nil, errors.New("binary shorter than SPIR-V header")
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("bad SPIR-V magic %#08x", words[0])
	}

	var entries []EntryPoint
	for i := spirvHeaderLen; i < len(words); {
		word := words[i]
		opcode := word & 0xFFFF
		count := int(word >> 16)
		if count == 0 || i+count > len(words) {
			return nil, fmt.Errorf("truncated instruction at word %d", i)
		}
		if opcode == opEntryPoint && count >= 4 {
			// Operands: execution model, entry point id, literal name.
			model := words[i+1]
			name := decodeLiteralString(words[i+3 : i+count])
			switch model {
			case execModelVertex:
				entries = append(entries, EntryPoint{Name: name, Stage: StageVertex})
			case execModelFrag:
				entries = append(entries, EntryPoint{Name: name, Stage: StageFragment})
			}
		}
		i += count
	}
	return entries, nil
}

// decodeLiteralString reads a SPIR-V literal string: UTF-8 bytes packed
// little-endian into words, NUL-terminated.
func decodeLiteralString(words []uint32) string {
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(w >> shift)
			if b == 0 {
				return string(buf)
			}
			buf = append(buf, b)
		}
	}
	return string(buf)
}
