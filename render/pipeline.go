package render

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/volumetric/scene"
)

// AttributeFormat is the data format of one vertex attribute.
type AttributeFormat int

const (
	FormatFloat3 AttributeFormat = iota + 1
	FormatFloat4
)

func (f AttributeFormat) String() string {
	switch f {
	case FormatFloat3:
		return "float3"
	case FormatFloat4:
		return "float4"
	default:
		return "unknown"
	}
}

// VertexAttribute binds one field of the vertex record to a shader input.
type VertexAttribute struct {
	Name     string
	Location int
	Format   AttributeFormat
	Offset   int
}

// PipelineDesc describes a graphics pipeline: the shader pair and the names
// and slots of its vertex buffer, constant buffer and render target. Shader
// code is opaque to everything except the device that compiles it.
type PipelineDesc struct {
	VertexShader   []byte
	FragmentShader []byte

	VertexStride int
	Attributes   []VertexAttribute

	ConstantBuffer  string
	ConstantBinding int
	ConstantSize    int

	RenderTarget string
}

// QuadPipeline describes the demo pipeline: scene.Vertex input, one
// scene.Transform constant buffer and a single colour target.
func QuadPipeline(vertexShader, fragmentShader []byte) PipelineDesc {
	v := scene.Vertex{}
	return PipelineDesc{
		VertexShader:   vertexShader,
		FragmentShader: fragmentShader,
		VertexStride:   int(unsafe.Sizeof(v)),
		Attributes: []VertexAttribute{
			{Name: "a_Pos", Location: 0, Format: FormatFloat4, Offset: int(unsafe.Offsetof(v.Pos))},
			{Name: "a_Color", Location: 1, Format: FormatFloat3, Offset: int(unsafe.Offsetof(v.Color))},
		},
		ConstantBuffer:  "Transform",
		ConstantBinding: 0,
		ConstantSize:    scene.TransformSize,
		RenderTarget:    "Target0",
	}
}

// Validate reports layout mistakes that would otherwise only surface as a
// pipeline creation failure on the device.
func (d PipelineDesc) Validate() error {
	if len(d.VertexShader) == 0 {
		return errors.New("pipeline: empty vertex shader")
	}
	if len(d.FragmentShader) == 0 {
		return errors.New("pipeline: empty fragment shader")
	}
	if d.VertexStride <= 0 {
		return errors.Newf("pipeline: invalid vertex stride %d", d.VertexStride)
	}
	if len(d.Attributes) == 0 {
		return errors.New("pipeline: no vertex attributes")
	}

	names := make(map[string]struct{}, len(d.Attributes))
	locations := make(map[int]struct{}, len(d.Attributes))
	for _, attr := range d.Attributes {
		if attr.Name == "" {
			return errors.Newf("pipeline: attribute at location %d has no name", attr.Location)
		}
		if _, dup := names[attr.Name]; dup {
			return errors.Newf("pipeline: duplicate attribute name %q", attr.Name)
		}
		if _, dup := locations[attr.Location]; dup {
			return errors.Newf("pipeline: attribute %q reuses location %d", attr.Name, attr.Location)
		}
		if attr.Format != FormatFloat3 && attr.Format != FormatFloat4 {
			return errors.Newf("pipeline: attribute %q has unsupported format %s", attr.Name, attr.Format)
		}
		if attr.Offset < 0 || attr.Offset+attr.Format.size() > d.VertexStride {
			return errors.Newf("pipeline: attribute %q at offset %d overruns stride %d", attr.Name, attr.Offset, d.VertexStride)
		}
		names[attr.Name] = struct{}{}
		locations[attr.Location] = struct{}{}
	}

	if d.ConstantBuffer == "" {
		return errors.New("pipeline: constant buffer has no name")
	}
	if d.ConstantSize <= 0 {
		return errors.Newf("pipeline: constant buffer %q has size %d", d.ConstantBuffer, d.ConstantSize)
	}
	if d.RenderTarget == "" {
		return errors.New("pipeline: render target has no name")
	}

	return nil
}

func (f AttributeFormat) size() int {
	switch f {
	case FormatFloat3:
		return 12
	case FormatFloat4:
		return 16
	default:
		return 0
	}
}
