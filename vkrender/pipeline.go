package vkrender

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/volumetric/render"
)

const spirvMagic = 0x07230203

// createRenderPass builds two compatible single-attachment passes over the
// swapchain image. The first clears it; the second resumes drawing after a
// constant buffer update ended the first, keeping what was drawn.
func (r *Renderer) createRenderPass() error {
	var err error
	r.renderPass, err = r.colorPass(core1_0.AttachmentLoadOpClear, core1_0.ImageLayoutUndefined, 0)
	if err != nil {
		return errors.Wrapf(err, "render target %q", r.desc.RenderTarget)
	}

	r.resumeRenderPass, err = r.colorPass(core1_0.AttachmentLoadOpLoad, khr_swapchain.ImageLayoutPresentSrc, core1_0.AccessColorAttachmentRead)
	if err != nil {
		return errors.Wrapf(err, "render target %q", r.desc.RenderTarget)
	}

	return nil
}

func (r *Renderer) colorPass(loadOp core1_0.AttachmentLoadOp, initialLayout core1_0.ImageLayout, extraAccess core1_0.AccessFlags) (core1_0.RenderPass, error) {
	pass, _, err := r.deviceDriver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         r.swapchainImageFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         loadOp,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  initialLayout,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{Attachment: 0, Layout: core1_0.ImageLayoutColorAttachmentOptimal},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass:    core1_0.SubpassExternal,
				DstSubpass:    0,
				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite | extraAccess,
			},
		},
	})
	return pass, err
}

func (r *Renderer) createDescriptorSetLayout() error {
	var err error
	r.descriptorSetLayout, _, err = r.deviceDriver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         r.desc.ConstantBinding,
				DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,

				StageFlags: core1_0.StageVertex,
			},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "constant buffer %q", r.desc.ConstantBuffer)
	}

	return nil
}

// bytesToBytecode converts SPIR-V bytes to the words a shader module
// expects. Anything that is not a whole number of words starting with the
// SPIR-V magic number is rejected before it reaches the driver.
func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Newf("shader code is %d bytes, not a whole number of SPIR-V words", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}

	if byteCode[0] != spirvMagic {
		return nil, errors.Newf("shader code starts with %#08x, not the SPIR-V magic number", byteCode[0])
	}

	return byteCode, nil
}

func attributeFormat(format render.AttributeFormat) (core1_0.Format, error) {
	switch format {
	case render.FormatFloat3:
		return core1_0.FormatR32G32B32SignedFloat, nil
	case render.FormatFloat4:
		return core1_0.FormatR32G32B32A32SignedFloat, nil
	default:
		return 0, errors.Newf("unsupported vertex attribute format %s", format)
	}
}

func vertexInputState(desc render.PipelineDesc) (*core1_0.PipelineVertexInputStateCreateInfo, error) {
	state := &core1_0.PipelineVertexInputStateCreateInfo{
		VertexBindingDescriptions: []core1_0.VertexInputBindingDescription{
			{
				Binding:   0,
				Stride:    desc.VertexStride,
				InputRate: core1_0.VertexInputRateVertex,
			},
		},
	}

	for _, attr := range desc.Attributes {
		format, err := attributeFormat(attr.Format)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", attr.Name)
		}

		state.VertexAttributeDescriptions = append(state.VertexAttributeDescriptions, core1_0.VertexInputAttributeDescription{
			Binding:  0,
			Location: uint32(attr.Location),
			Format:   format,
			Offset:   attr.Offset,
		})
	}

	return state, nil
}

func (r *Renderer) createShaderModule(stage string, code []byte) (core1_0.ShaderModule, error) {
	byteCode, err := bytesToBytecode(code)
	if err != nil {
		return core1_0.ShaderModule{}, errors.Wrapf(err, "%s shader", stage)
	}

	module, _, err := r.deviceDriver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: byteCode,
	})
	if err != nil {
		return core1_0.ShaderModule{}, errors.Wrapf(err, "%s shader", stage)
	}

	return module, nil
}

func (r *Renderer) createGraphicsPipeline() error {
	start := hrtime.Now()

	vertShader, err := r.createShaderModule("vertex", r.desc.VertexShader)
	if err != nil {
		return err
	}
	defer r.deviceDriver.DestroyShaderModule(vertShader, nil)

	fragShader, err := r.createShaderModule("fragment", r.desc.FragmentShader)
	if err != nil {
		return err
	}
	defer r.deviceDriver.DestroyShaderModule(fragShader, nil)

	vertexInput, err := vertexInputState(r.desc)
	if err != nil {
		return err
	}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   "main",
	}

	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(r.swapchainExtent.Width),
				Height:   float32(r.swapchainExtent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: r.swapchainExtent,
			},
		},
	}

	// No culling: the triangles are drawn regardless of winding.
	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	r.pipelineLayout, _, err = r.deviceDriver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{
			r.descriptorSetLayout,
		},
	})
	if err != nil {
		return err
	}

	pipelines, _, err := r.deviceDriver.CreateGraphicsPipelines(nil, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			Layout:             r.pipelineLayout,
			RenderPass:         r.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		return err
	}
	r.graphicsPipeline = pipelines[0]

	render.Logger().Info("graphics pipeline built",
		"attributes", len(r.desc.Attributes),
		"constant_buffer", r.desc.ConstantBuffer,
		"render_target", r.desc.RenderTarget,
		"elapsed", hrtime.Since(start))
	return nil
}
