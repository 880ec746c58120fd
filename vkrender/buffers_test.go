package vkrender

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/mocks"
	"github.com/vkngwrapper/core/v3/mocks/mocks1_0"
	"go.uber.org/mock/gomock"
)

func TestCopyBufferSubmitsAndFrees(t *testing.T) {
	r, driver := newRecordingRenderer(t)
	device := mocks.NewDummyDevice(common.Vulkan1_2, nil)
	r.commandPool = mocks.NewDummyCommandPool(device)
	buffer := mocks.NewDummyCommandBuffer(r.commandPool, device)
	src, dst := mocks.NewDummyBuffer(device), mocks.NewDummyBuffer(device)

	gomock.InOrder(
		driver.EXPECT().AllocateCommandBuffers(gomock.Any()).Return([]core1_0.CommandBuffer{buffer}, core1_0.VKSuccess, nil),
		driver.EXPECT().BeginCommandBuffer(buffer, gomock.Any()).Return(core1_0.VKSuccess, nil),
		driver.EXPECT().CmdCopyBuffer(buffer, src, dst, core1_0.BufferCopy{Size: 168}).Return(nil),
		driver.EXPECT().EndCommandBuffer(buffer).Return(core1_0.VKSuccess, nil),
		driver.EXPECT().QueueSubmit(r.graphicsQueue, gomock.Nil(), core1_0.SubmitInfo{CommandBuffers: []core1_0.CommandBuffer{buffer}}).Return(core1_0.VKSuccess, nil),
		driver.EXPECT().QueueWaitIdle(r.graphicsQueue).Return(core1_0.VKSuccess, nil),
		driver.EXPECT().FreeCommandBuffers(buffer),
	)

	if err := r.copyBuffer(src, dst, 168); err != nil {
		t.Fatalf("copyBuffer() = %v", err)
	}
}

func TestSubmitOnceFreesOnFailure(t *testing.T) {
	errLost := errors.New("device lost")

	tests := []struct {
		name   string
		expect func(driver *mocks1_0.MockCoreDeviceDriver, buffer core1_0.CommandBuffer)
		record error
	}{
		{
			name: "begin",
			expect: func(driver *mocks1_0.MockCoreDeviceDriver, buffer core1_0.CommandBuffer) {
				driver.EXPECT().BeginCommandBuffer(buffer, gomock.Any()).Return(core1_0.VKErrorDeviceLost, errLost)
			},
		},
		{
			name: "record",
			expect: func(driver *mocks1_0.MockCoreDeviceDriver, buffer core1_0.CommandBuffer) {
				driver.EXPECT().BeginCommandBuffer(buffer, gomock.Any()).Return(core1_0.VKSuccess, nil)
			},
			record: errLost,
		},
		{
			name: "submit",
			expect: func(driver *mocks1_0.MockCoreDeviceDriver, buffer core1_0.CommandBuffer) {
				driver.EXPECT().BeginCommandBuffer(buffer, gomock.Any()).Return(core1_0.VKSuccess, nil)
				driver.EXPECT().EndCommandBuffer(buffer).Return(core1_0.VKSuccess, nil)
				driver.EXPECT().QueueSubmit(gomock.Any(), gomock.Nil(), gomock.Any()).Return(core1_0.VKErrorDeviceLost, errLost)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, driver := newRecordingRenderer(t)
			device := mocks.NewDummyDevice(common.Vulkan1_2, nil)
			r.commandPool = mocks.NewDummyCommandPool(device)
			buffer := mocks.NewDummyCommandBuffer(r.commandPool, device)

			driver.EXPECT().AllocateCommandBuffers(gomock.Any()).Return([]core1_0.CommandBuffer{buffer}, core1_0.VKSuccess, nil)
			tt.expect(driver, buffer)
			driver.EXPECT().FreeCommandBuffers(buffer)

			err := r.submitOnce(func(core1_0.CommandBuffer) error { return tt.record })
			if !errors.Is(err, errLost) {
				t.Errorf("submitOnce() = %v, want %v", err, errLost)
			}
		})
	}
}
