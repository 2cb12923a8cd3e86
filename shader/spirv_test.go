package shader

import "testing"

// buildEntryPoint assembles an OpEntryPoint instruction for tests.
func buildEntryPoint(model uint32, name string) []uint32 {
	// Literal string: UTF-8 packed little-endian, NUL-terminated,
	// padded to a word boundary.
	data := append([]byte(name), 0)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	nameWords := make([]uint32, len(data)/4)
	for i := range nameWords {
		nameWords[i] = uint32(data[i*4]) |
			uint32(data[i*4+1])<<8 |
			uint32(data[i*4+2])<<16 |
			uint32(data[i*4+3])<<24
	}

	count := 3 + len(nameWords)
	words := []uint32{uint32(count)<<16 | opEntryPoint, model, 1}
	return append(words, nameWords...)
}

func buildModule(instructions ...[]uint32) []uint32 {
	words := []uint32{spirvMagic, 0x00010000, 0, 10, 0}
	for _, inst := range instructions {
		words = append(words, inst...)
	}
	return words
}

func TestEntryPointsScan(t *testing.T) {
	words := buildModule(
		buildEntryPoint(execModelVertex, "vs_main"),
		buildEntryPoint(execModelFrag, "fs_main"),
	)
	entries, err := entryPoints(words)
	if err != nil {
		t.Fatalf("entryPoints failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("found %d entry points, want 2", len(entries))
	}
	if entries[0].Name != "vs_main" || entries[0].Stage != StageVertex {
		t.Errorf("entry 0 = %+v, want vs_main/vertex", entries[0])
	}
	if entries[1].Name != "fs_main" || entries[1].Stage != StageFragment {
		t.Errorf("entry 1 = %+v, want fs_main/fragment", entries[1])
	}
}

func TestEntryPointsIgnoresComputeModel(t *testing.T) {
	const execModelGLCompute = 5
	words := buildModule(buildEntryPoint(execModelGLCompute, "main"))
	entries, err := entryPoints(words)
	if err != nil {
		t.Fatalf("entryPoints failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("found %d entry points, want 0", len(entries))
	}
}

func TestEntryPointsBadMagic(t *testing.T) {
	words := buildModule()
	words[0] = 0xDEADBEEF
	if _, err := entryPoints(words); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestEntryPointsTooShort(t *testing.T) {
	if _, err := entryPoints([]uint32{spirvMagic, 0}); err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestEntryPointsTruncatedInstruction(t *testing.T) {
	words := buildModule()
	// Claims 10 words but the stream ends immediately.
	words = append(words, uint32(10)<<16|opEntryPoint)
	if _, err := entryPoints(words); err == nil {
		t.Error("expected error for truncated instruction")
	}
}

func TestDecodeLiteralStringStopsAtNul(t *testing.T) {
	// "ab" + NUL + garbage in the next word.
	words := []uint32{0x00006261, 0xFFFFFFFF}
	if got := decodeLiteralString(words); got != "ab" {
		t.Errorf("decoded %q, want %q", got, "ab")
	}
}
