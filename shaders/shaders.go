// Package shaders embeds the compiled SPIR-V for the quad pipeline.
package shaders

import "embed"

//go:generate glslc -o quad.vert.spv quad.vert
//go:generate glslc -o quad.frag.spv quad.frag

//go:embed quad.vert.spv quad.frag.spv
var fileSystem embed.FS

// QuadVertex returns the vertex stage: a_Pos, a_Color and the Transform block in,
// v_Color out.
func QuadVertex() ([]byte, error) {
	return fileSystem.ReadFile("quad.vert.spv")
}

// QuadFragment returns the fragment stage writing v_Color to Target0.
func QuadFragment() ([]byte, error) {
	return fileSystem.ReadFile("quad.frag.spv")
}
