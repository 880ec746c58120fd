package vkrender

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/volumetric/render"
	"github.com/vkngwrapper/volumetric/scene"
)

var errFrameInFlight = errors.New("previous frame has not been cleaned up")

var (
	_ render.Device    = (*Renderer)(nil)
	_ render.Presenter = (*Renderer)(nil)
)

// Execute acquires the next swapchain image, records cmds into a transient
// command buffer and submits it. Only one frame may be in flight: Cleanup
// must run before the next Execute.
func (r *Renderer) Execute(cmds []render.Command) error {
	if r.frame.commandBuffer.Initialized() || r.frame.acquired {
		return errFrameInFlight
	}

	imageIndex, res, err := r.swapchainExtension.AcquireNextImage(r.swapchain, common.NoTimeout, &r.imageAvailableSemaphore, nil)
	if res == khr_swapchain.VKErrorOutOfDate {
		return errors.New("acquire image: swapchain out of date")
	} else if err != nil {
		return errors.Wrap(err, "acquire image")
	}
	r.frame.imageIndex = imageIndex
	r.frame.acquired = true

	_, err = r.deviceDriver.ResetFences(r.inFlightFence)
	if err != nil {
		return err
	}

	buffers, _, err := r.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        r.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return err
	}
	r.frame.commandBuffer = buffers[0]

	_, err = r.deviceDriver.BeginCommandBuffer(r.frame.commandBuffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return err
	}

	err = r.record(cmds)
	if err != nil {
		return err
	}

	_, err = r.deviceDriver.EndCommandBuffer(r.frame.commandBuffer)
	if err != nil {
		return err
	}

	_, err = r.deviceDriver.QueueSubmit(r.graphicsQueue, &r.inFlightFence,
		core1_0.SubmitInfo{
			WaitSemaphores:   []core1_0.Semaphore{r.imageAvailableSemaphore},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{r.frame.commandBuffer},
			SignalSemaphores: []core1_0.Semaphore{r.renderFinishedSemaphores[imageIndex]},
		},
	)
	if err != nil {
		return errors.Wrap(err, "submit frame")
	}

	return nil
}

// recorder turns one frame's commands into Vulkan commands. The render pass
// opens at the first draw with the most recent clear colour. A constant
// buffer update is a transfer and may not sit inside a render pass, so one
// that follows a draw closes the pass and later draws resume it with the
// image contents kept.
type recorder struct {
	r      *Renderer
	buffer core1_0.CommandBuffer

	passOpen bool
	begun    bool
	drawn    bool
}

func (r *Renderer) record(cmds []render.Command) error {
	rec := &recorder{r: r, buffer: r.frame.commandBuffer}

	for _, cmd := range cmds {
		var err error
		switch cmd.Op {
		case render.OpClear:
			err = rec.clear(cmd.Color)
		case render.OpUpdateTransform:
			err = rec.updateTransform(cmd.Transform)
		case render.OpDraw:
			err = rec.draw(cmd.Slice)
		default:
			err = errors.Newf("unknown command %s", cmd.Op)
		}
		if err != nil {
			return err
		}
	}

	return rec.finish()
}

func (rec *recorder) clear(color mgl32.Vec4) error {
	if rec.drawn {
		return errors.New("clear after draw within one frame is not supported")
	}
	rec.r.frame.clearColor = color
	return nil
}

func (rec *recorder) updateTransform(t scene.Transform) error {
	data, err := rec.r.transformBytes(t)
	if err != nil {
		return errors.Wrap(err, "update transform")
	}

	driver := rec.r.deviceDriver
	if rec.passOpen {
		driver.CmdEndRenderPass(rec.buffer)
		rec.passOpen = false
	}

	// Earlier draws in this frame must finish reading the old value.
	if rec.drawn {
		err = driver.CmdPipelineBarrier(rec.buffer, core1_0.PipelineStageVertexShader, core1_0.PipelineStageTransfer, 0,
			[]core1_0.MemoryBarrier{{SrcAccessMask: core1_0.AccessUniformRead, DstAccessMask: core1_0.AccessTransferWrite}}, nil, nil)
		if err != nil {
			return errors.Wrap(err, "update transform")
		}
	}

	driver.CmdUpdateBuffer(rec.buffer, rec.r.transformBuffer, 0, len(data), data)

	err = driver.CmdPipelineBarrier(rec.buffer, core1_0.PipelineStageTransfer, core1_0.PipelineStageVertexShader, 0,
		[]core1_0.MemoryBarrier{{SrcAccessMask: core1_0.AccessTransferWrite, DstAccessMask: core1_0.AccessUniformRead}}, nil, nil)
	return errors.Wrap(err, "update transform")
}

func (rec *recorder) draw(slice render.Slice) error {
	r := rec.r
	if slice.First < 0 || slice.Count < 0 || slice.First+slice.Count > r.vertexCount {
		return errors.Newf("draw %+v outside vertex buffer of %d vertices", slice, r.vertexCount)
	}

	if !rec.passOpen {
		err := rec.beginPass()
		if err != nil {
			return err
		}
	}

	r.deviceDriver.CmdBindPipeline(rec.buffer, core1_0.PipelineBindPointGraphics, r.graphicsPipeline)
	r.deviceDriver.CmdBindVertexBuffers(rec.buffer, 0, []core1_0.Buffer{r.vertexBuffer}, []int{0})
	r.deviceDriver.CmdBindDescriptorSets(rec.buffer, core1_0.PipelineBindPointGraphics, r.pipelineLayout, 0, []core1_0.DescriptorSet{
		r.descriptorSet,
	}, nil)
	r.deviceDriver.CmdDraw(rec.buffer, slice.Count, 1, uint32(slice.First), 0)
	rec.drawn = true
	return nil
}

// finish closes the open pass. A frame with no draws still runs the clearing
// pass so the image is cleared and moved to the present layout.
func (rec *recorder) finish() error {
	if !rec.begun {
		err := rec.beginPass()
		if err != nil {
			return err
		}
	}

	if rec.passOpen {
		rec.r.deviceDriver.CmdEndRenderPass(rec.buffer)
		rec.passOpen = false
	}
	return nil
}

func (rec *recorder) beginPass() error {
	r := rec.r
	pass := r.renderPass
	var clearValues []core1_0.ClearValue
	if rec.begun {
		pass = r.resumeRenderPass
	} else {
		c := r.frame.clearColor
		clearValues = []core1_0.ClearValue{core1_0.ClearValueFloat{c[0], c[1], c[2], c[3]}}
	}

	err := r.deviceDriver.CmdBeginRenderPass(rec.buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  pass,
			Framebuffer: r.swapchainFramebuffers[r.frame.imageIndex],
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: r.swapchainExtent,
			},
			ClearValues: clearValues,
		})
	if err != nil {
		return errors.Wrap(err, "begin render pass")
	}

	rec.passOpen = true
	rec.begun = true
	return nil
}

// Present queues the acquired image for display. With FIFO presentation this
// is where the loop waits for vertical blank.
func (r *Renderer) Present() error {
	if !r.frame.acquired {
		return errors.New("present: no frame has been executed")
	}
	r.frame.acquired = false

	res, err := r.swapchainExtension.QueuePresent(r.presentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{r.renderFinishedSemaphores[r.frame.imageIndex]},
		Swapchains:     []khr_swapchain.Swapchain{r.swapchain},
		ImageIndices:   []int{r.frame.imageIndex},
	})
	if res == khr_swapchain.VKSuboptimal {
		render.Logger().Debug("suboptimal present", "image", r.frame.imageIndex)
		return nil
	}
	if res == khr_swapchain.VKErrorOutOfDate {
		return errors.New("present: swapchain out of date")
	}
	if err != nil {
		return errors.Wrap(err, "present")
	}

	return nil
}

// Cleanup waits for the submitted frame to finish and frees its command
// buffer.
func (r *Renderer) Cleanup() error {
	if !r.frame.commandBuffer.Initialized() {
		return nil
	}

	_, err := r.deviceDriver.WaitForFences(true, common.NoTimeout, r.inFlightFence)
	if err != nil {
		return errors.Wrap(err, "wait for frame")
	}

	r.deviceDriver.FreeCommandBuffers(r.frame.commandBuffer)
	r.frame.commandBuffer = core1_0.CommandBuffer{}
	return nil
}
