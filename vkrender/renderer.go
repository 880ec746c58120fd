// Package vkrender is the Vulkan device behind the render loop. It builds the
// single quad pipeline once, owns the vertex and constant buffers, and
// executes render.Command lists one frame at a time.
package vkrender

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/volumetric/render"
	"github.com/vkngwrapper/volumetric/scene"
)

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
var deviceExtensions = []string{khr_swapchain.ExtensionName}

type Config struct {
	ApplicationName string

	// APIVersion is the minimum Vulkan version the instance is created for.
	APIVersion common.APIVersion

	// VSync selects FIFO presentation; otherwise mailbox is preferred when
	// the surface offers it.
	VSync bool

	// Validation enables VK_LAYER_KHRONOS_validation and the debug messenger
	// when the layer is installed.
	Validation bool
}

// Renderer implements render.Device and render.Presenter.
type Renderer struct {
	cfg    Config
	window *sdl.Window
	desc   render.PipelineDesc

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	deviceDriver   core1_0.CoreDeviceDriver

	debugDriver      ext_debug_utils.ExtensionDriver
	debugMessenger   ext_debug_utils.DebugUtilsMessenger
	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	queueFamilies  queueFamilies

	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue

	swapchainExtension    khr_swapchain.ExtensionDriver
	swapchain             khr_swapchain.Swapchain
	swapchainImages       []core1_0.Image
	swapchainImageFormat  core1_0.Format
	swapchainExtent       core1_0.Extent2D
	swapchainImageViews   []core1_0.ImageView
	swapchainFramebuffers []core1_0.Framebuffer

	renderPass          core1_0.RenderPass
	resumeRenderPass    core1_0.RenderPass
	descriptorSetLayout core1_0.DescriptorSetLayout
	descriptorPool      core1_0.DescriptorPool
	descriptorSet       core1_0.DescriptorSet
	pipelineLayout      core1_0.PipelineLayout
	graphicsPipeline    core1_0.Pipeline

	commandPool core1_0.CommandPool

	vertexCount        int
	vertexBuffer       core1_0.Buffer
	vertexBufferMemory core1_0.DeviceMemory

	transformBuffer       core1_0.Buffer
	transformBufferMemory core1_0.DeviceMemory

	imageAvailableSemaphore  core1_0.Semaphore
	renderFinishedSemaphores []core1_0.Semaphore
	inFlightFence            core1_0.Fence

	frame frameState
}

// frameState tracks the one frame that may be in flight.
type frameState struct {
	commandBuffer core1_0.CommandBuffer
	imageIndex    int
	acquired      bool
	clearColor    mgl32.Vec4
}

// New creates every Vulkan object the demo needs, uploads vertices and
// builds the pipeline described by desc. On failure everything created so
// far is destroyed.
func New(window *sdl.Window, desc render.PipelineDesc, vertices []scene.Vertex, cfg Config) (*Renderer, error) {
	err := desc.Validate()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:    cfg,
		window: window,
		desc:   desc,
	}

	err = r.init(vertices)
	if err != nil {
		r.Destroy()
		return nil, err
	}

	return r, nil
}

func (r *Renderer) init(vertices []scene.Vertex) error {
	var err error
	r.globalDriver, err = core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return errors.Wrap(err, "load vulkan driver")
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"create instance", r.createInstance},
		{"set up debug messenger", r.setupDebugMessenger},
		{"create surface", r.createSurface},
		{"pick physical device", r.pickPhysicalDevice},
		{"create logical device", r.createLogicalDevice},
		{"create swapchain", r.createSwapchain},
		{"create image views", r.createImageViews},
		{"create render pass", r.createRenderPass},
		{"create descriptor set layout", r.createDescriptorSetLayout},
		{"create graphics pipeline", r.createGraphicsPipeline},
		{"create framebuffers", r.createFramebuffers},
		{"create command pool", r.createCommandPool},
		{"create vertex buffer", func() error { return r.createVertexBuffer(vertices) }},
		{"create transform buffer", r.createTransformBuffer},
		{"create descriptor pool", r.createDescriptorPool},
		{"create descriptor set", r.createDescriptorSet},
		{"create sync objects", r.createSyncObjects},
	}

	for _, step := range steps {
		err = step.fn()
		if err != nil {
			return errors.Wrap(err, step.name)
		}
	}

	return nil
}

// Destroy waits for the device to go idle and releases every object in
// reverse creation order. It is safe to call on a partially built Renderer.
func (r *Renderer) Destroy() {
	if r.deviceDriver != nil {
		_, err := r.deviceDriver.DeviceWaitIdle()
		if err != nil {
			render.Logger().Warn("device wait idle before teardown", "err", err)
		}

		if r.frame.commandBuffer.Initialized() {
			r.deviceDriver.FreeCommandBuffers(r.frame.commandBuffer)
			r.frame.commandBuffer = core1_0.CommandBuffer{}
		}

		if r.inFlightFence.Initialized() {
			r.deviceDriver.DestroyFence(r.inFlightFence, nil)
		}

		for _, semaphore := range r.renderFinishedSemaphores {
			r.deviceDriver.DestroySemaphore(semaphore, nil)
		}
		r.renderFinishedSemaphores = nil

		if r.imageAvailableSemaphore.Initialized() {
			r.deviceDriver.DestroySemaphore(r.imageAvailableSemaphore, nil)
		}

		if r.descriptorPool.Initialized() {
			r.deviceDriver.DestroyDescriptorPool(r.descriptorPool, nil)
		}

		if r.transformBuffer.Initialized() {
			r.deviceDriver.DestroyBuffer(r.transformBuffer, nil)
		}

		if r.transformBufferMemory.Initialized() {
			r.deviceDriver.FreeMemory(r.transformBufferMemory, nil)
		}

		if r.vertexBuffer.Initialized() {
			r.deviceDriver.DestroyBuffer(r.vertexBuffer, nil)
		}

		if r.vertexBufferMemory.Initialized() {
			r.deviceDriver.FreeMemory(r.vertexBufferMemory, nil)
		}

		if r.commandPool.Initialized() {
			r.deviceDriver.DestroyCommandPool(r.commandPool, nil)
		}

		for _, framebuffer := range r.swapchainFramebuffers {
			r.deviceDriver.DestroyFramebuffer(framebuffer, nil)
		}
		r.swapchainFramebuffers = nil

		if r.graphicsPipeline.Initialized() {
			r.deviceDriver.DestroyPipeline(r.graphicsPipeline, nil)
		}

		if r.pipelineLayout.Initialized() {
			r.deviceDriver.DestroyPipelineLayout(r.pipelineLayout, nil)
		}

		if r.descriptorSetLayout.Initialized() {
			r.deviceDriver.DestroyDescriptorSetLayout(r.descriptorSetLayout, nil)
		}

		if r.renderPass.Initialized() {
			r.deviceDriver.DestroyRenderPass(r.renderPass, nil)
		}

		if r.resumeRenderPass.Initialized() {
			r.deviceDriver.DestroyRenderPass(r.resumeRenderPass, nil)
		}

		for _, imageView := range r.swapchainImageViews {
			r.deviceDriver.DestroyImageView(imageView, nil)
		}
		r.swapchainImageViews = nil

		if r.swapchain.Initialized() {
			r.swapchainExtension.DestroySwapchain(r.swapchain, nil)
		}

		r.deviceDriver.DestroyDevice(nil)
		r.deviceDriver = nil
	}

	if r.debugMessenger.Initialized() {
		r.debugDriver.DestroyDebugUtilsMessenger(r.debugMessenger, nil)
		r.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if r.surface.Initialized() {
		r.surfaceExtension.DestroySurface(r.surface, nil)
		r.surface = khr_surface.Surface{}
	}

	if r.instanceDriver != nil {
		r.instanceDriver.DestroyInstance(nil)
		r.instanceDriver = nil
	}
}
