// Package scene holds the fixed data drawn by the demo: two triangles, the
// transform applied to them and the colour the target is cleared to.
package scene

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v3/common"
)

const (
	// VertexCount is the number of vertices in the vertex buffer.
	VertexCount = 6

	// VertexSize is the packed size of one Vertex in the vertex buffer.
	VertexSize = 7 * 4

	// TransformSize is the packed size of one Transform in the constant buffer.
	TransformSize = 16 * 4
)

// Vertex is one corner of a triangle as laid out in the vertex buffer.
type Vertex struct {
	Pos   mgl32.Vec4
	Color mgl32.Vec3
}

// Transform is the constant buffer record read by the vertex stage.
type Transform struct {
	Matrix mgl32.Mat4
}

var (
	red   = mgl32.Vec3{1, 0, 0}
	green = mgl32.Vec3{0, 1, 0}
	blue  = mgl32.Vec3{0, 0, 1}
)

var triangles = [VertexCount]Vertex{
	{Pos: mgl32.Vec4{-0.2, -0.5, 0, 1}, Color: red},
	{Pos: mgl32.Vec4{-0.8, -0.5, 0, 1}, Color: green},
	{Pos: mgl32.Vec4{-0.5, 0.5, 0, 1}, Color: blue},
	{Pos: mgl32.Vec4{0.2, -0.5, 0, 1}, Color: red},
	{Pos: mgl32.Vec4{0.8, -0.5, 0, 1}, Color: green},
	{Pos: mgl32.Vec4{0.5, 0.5, 0, 1}, Color: blue},
}

// ClearColor is the opaque gray the render target is cleared to every frame.
var ClearColor = mgl32.Vec4{0.3, 0.3, 0.3, 1.0}

// Triangles returns a copy of the two triangles uploaded to the vertex buffer.
func Triangles() [VertexCount]Vertex {
	return triangles
}

// IdentityTransform returns the transform uploaded every frame.
func IdentityTransform() Transform {
	return Transform{Matrix: mgl32.Ident4()}
}

// MarshalBinary returns the vertex in vertex buffer layout.
func (v Vertex) MarshalBinary() ([]byte, error) {
	return encode(v)
}

// MarshalBinary returns the transform in constant buffer layout (column major).
func (t Transform) MarshalBinary() ([]byte, error) {
	return encode(t.Matrix)
}

// UnmarshalTransform parses a constant buffer record written by
// Transform.MarshalBinary.
func UnmarshalTransform(data []byte) (Transform, error) {
	if len(data) != TransformSize {
		return Transform{}, errors.Newf("transform record is %d bytes, expected %d", len(data), TransformSize)
	}

	var t Transform
	err := binary.Read(bytes.NewReader(data), common.ByteOrder, &t.Matrix)
	if err != nil {
		return Transform{}, errors.Wrap(err, "decode transform")
	}

	return t, nil
}

// VertexBytes packs vertices back to back in vertex buffer layout.
func VertexBytes(vertices []Vertex) ([]byte, error) {
	return encode(vertices)
}

func encode(data any) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return nil, errors.Wrap(err, "encode gpu data")
	}

	return buf.Bytes(), nil
}
