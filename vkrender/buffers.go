package vkrender

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/volumetric/scene"
)

func (r *Renderer) createCommandPool() error {
	pool, _, err := r.deviceDriver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: r.queueFamilies.graphics,
		Flags:            core1_0.CommandPoolCreateTransient,
	})
	if err != nil {
		return err
	}

	r.commandPool = pool
	return nil
}

// createVertexBuffer uploads the vertices once through a staging buffer into
// device-local memory; the GPU only ever reads it afterwards.
func (r *Renderer) createVertexBuffer(vertices []scene.Vertex) error {
	if len(vertices) == 0 {
		return errors.New("no vertices to upload")
	}

	data, err := scene.VertexBytes(vertices)
	if err != nil {
		return err
	}
	bufferSize := len(data)

	stagingBuffer, stagingBufferMemory, err := r.createBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if stagingBuffer.Initialized() {
		defer r.deviceDriver.DestroyBuffer(stagingBuffer, nil)
	}
	if stagingBufferMemory.Initialized() {
		defer r.deviceDriver.FreeMemory(stagingBufferMemory, nil)
	}

	if err != nil {
		return err
	}

	err = writeData(r.deviceDriver, stagingBufferMemory, 0, data)
	if err != nil {
		return err
	}

	r.vertexBuffer, r.vertexBufferMemory, err = r.createBuffer(bufferSize, core1_0.BufferUsageTransferDst|core1_0.BufferUsageVertexBuffer, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}
	r.vertexCount = len(vertices)

	return r.copyBuffer(stagingBuffer, r.vertexBuffer, bufferSize)
}

// createTransformBuffer allocates the constant buffer holding exactly one
// transform record. It is only written by CmdUpdateBuffer inside a frame's
// command buffer, so updates land in command order.
func (r *Renderer) createTransformBuffer() error {
	var err error
	r.transformBuffer, r.transformBufferMemory, err = r.createBuffer(r.desc.ConstantSize, core1_0.BufferUsageUniformBuffer|core1_0.BufferUsageTransferDst, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return errors.Wrapf(err, "constant buffer %q", r.desc.ConstantBuffer)
	}

	return nil
}

func (r *Renderer) transformBytes(t scene.Transform) ([]byte, error) {
	data, err := t.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if len(data) != r.desc.ConstantSize {
		return nil, errors.Newf("transform is %d bytes, constant buffer %q holds %d", len(data), r.desc.ConstantBuffer, r.desc.ConstantSize)
	}

	return data, nil
}

func (r *Renderer) createDescriptorPool() error {
	var err error
	r.descriptorPool, _, err = r.deviceDriver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets: 1,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
			},
		},
	})
	return err
}

func (r *Renderer) createDescriptorSet() error {
	sets, _, err := r.deviceDriver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: r.descriptorPool,
		SetLayouts:     []core1_0.DescriptorSetLayout{r.descriptorSetLayout},
	})
	if err != nil {
		return err
	}
	r.descriptorSet = sets[0]

	return r.deviceDriver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          r.descriptorSet,
			DstBinding:      r.desc.ConstantBinding,
			DstArrayElement: 0,

			DescriptorType: core1_0.DescriptorTypeUniformBuffer,

			BufferInfo: []core1_0.DescriptorBufferInfo{
				{
					Buffer: r.transformBuffer,
					Offset: 0,
					Range:  r.desc.ConstantSize,
				},
			},
		},
	}, nil)
}

func (r *Renderer) createSyncObjects() error {
	var err error
	r.imageAvailableSemaphore, _, err = r.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return err
	}

	// Presentation may still be waiting on an image's semaphore when the next
	// frame is submitted, so there is one per swapchain image.
	for i := 0; i < len(r.swapchainImages); i++ {
		semaphore, _, err := r.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return err
		}

		r.renderFinishedSemaphores = append(r.renderFinishedSemaphores, semaphore)
	}

	r.inFlightFence, _, err = r.deviceDriver.CreateFence(nil, core1_0.FenceCreateInfo{
		Flags: core1_0.FenceCreateSignaled,
	})
	return err
}

func writeData(driver core1_0.DeviceDriver, memory core1_0.DeviceMemory, offset int, data []byte) error {
	memoryPtr, _, err := driver.MapMemory(memory, offset, len(data), 0)
	if err != nil {
		return err
	}
	defer driver.UnmapMemory(memory)

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), len(data))
	copy(dataBuffer, data)
	return nil
}

func (r *Renderer) createBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (core1_0.Buffer, core1_0.DeviceMemory, error) {
	buffer, _, err := r.deviceDriver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, err
	}

	memRequirements := r.deviceDriver.GetBufferMemoryRequirements(buffer)
	memProperties := r.instanceDriver.GetPhysicalDeviceMemoryProperties(r.physicalDevice)
	memoryTypeIndex, err := findMemoryType(memProperties.MemoryTypes, memRequirements.MemoryTypeBits, properties)
	if err != nil {
		return buffer, core1_0.DeviceMemory{}, err
	}

	memory, _, err := r.deviceDriver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return buffer, core1_0.DeviceMemory{}, err
	}

	_, err = r.deviceDriver.BindBufferMemory(buffer, memory, 0)
	return buffer, memory, err
}

func findMemoryType(memoryTypes []core1_0.MemoryType, typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range memoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Newf("no memory type matches filter %#x with properties %s", typeFilter, properties)
}

// submitOnce records a throwaway command buffer, submits it and waits for
// the graphics queue to drain. The buffer is freed on every path.
func (r *Renderer) submitOnce(record func(buffer core1_0.CommandBuffer) error) error {
	buffers, _, err := r.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        r.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return err
	}
	buffer := buffers[0]
	defer r.deviceDriver.FreeCommandBuffers(buffer)

	_, err = r.deviceDriver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return err
	}

	err = record(buffer)
	if err != nil {
		return err
	}

	_, err = r.deviceDriver.EndCommandBuffer(buffer)
	if err != nil {
		return err
	}

	_, err = r.deviceDriver.QueueSubmit(r.graphicsQueue, nil, core1_0.SubmitInfo{
		CommandBuffers: []core1_0.CommandBuffer{buffer},
	})
	if err != nil {
		return err
	}

	_, err = r.deviceDriver.QueueWaitIdle(r.graphicsQueue)
	return err
}

func (r *Renderer) copyBuffer(src core1_0.Buffer, dst core1_0.Buffer, size int) error {
	return r.submitOnce(func(buffer core1_0.CommandBuffer) error {
		return r.deviceDriver.CmdCopyBuffer(buffer, src, dst, core1_0.BufferCopy{Size: size})
	})
}
