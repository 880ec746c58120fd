package vkrender

import (
	"encoding/binary"
	"testing"

	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/volumetric/render"
	"github.com/vkngwrapper/volumetric/scene"
	"github.com/vkngwrapper/volumetric/shaders"
)

func spirvWords(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

func TestBytesToBytecode(t *testing.T) {
	got, err := bytesToBytecode(spirvWords(spirvMagic, 0x00010000, 0, 12, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{spirvMagic, 0x00010000, 0, 12, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestBytesToBytecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"empty", nil},
		{"partial word", append(spirvWords(spirvMagic), 0x01)},
		{"glsl text", []byte("#version 450\n\nvoid main() {}\n\n\n\n")},
		{"wrong magic", spirvWords(0xdeadbeef, 0x00010000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := bytesToBytecode(tt.code); err == nil {
				t.Error("bytesToBytecode() = nil error, want error")
			}
		})
	}
}

func TestEmbeddedShadersConvert(t *testing.T) {
	for _, load := range []func() ([]byte, error){shaders.QuadVertex, shaders.QuadFragment} {
		code, err := load()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := bytesToBytecode(code); err != nil {
			t.Errorf("bytesToBytecode(embedded) = %v", err)
		}
	}
}

func TestVertexInputState(t *testing.T) {
	desc := render.QuadPipeline(spirvWords(spirvMagic), spirvWords(spirvMagic))
	state, err := vertexInputState(desc)
	if err != nil {
		t.Fatal(err)
	}

	if len(state.VertexBindingDescriptions) != 1 {
		t.Fatalf("%d bindings, want 1", len(state.VertexBindingDescriptions))
	}
	if state.VertexBindingDescriptions[0].Stride != scene.VertexSize {
		t.Errorf("stride = %d, want %d", state.VertexBindingDescriptions[0].Stride, scene.VertexSize)
	}

	want := []core1_0.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: core1_0.FormatR32G32B32A32SignedFloat, Offset: 0},
		{Binding: 0, Location: 1, Format: core1_0.FormatR32G32B32SignedFloat, Offset: 16},
	}
	if len(state.VertexAttributeDescriptions) != len(want) {
		t.Fatalf("%d attributes, want %d", len(state.VertexAttributeDescriptions), len(want))
	}
	for i := range want {
		if state.VertexAttributeDescriptions[i] != want[i] {
			t.Errorf("attribute %d = %+v, want %+v", i, state.VertexAttributeDescriptions[i], want[i])
		}
	}
}

func TestVertexInputStateRejectsUnknownFormat(t *testing.T) {
	desc := render.QuadPipeline(spirvWords(spirvMagic), spirvWords(spirvMagic))
	desc.Attributes = []render.VertexAttribute{{Name: "a_Weird", Location: 0, Format: render.AttributeFormat(42)}}
	if _, err := vertexInputState(desc); err == nil {
		t.Error("vertexInputState() = nil error, want error")
	}
}
