package vkrender

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/volumetric/render"
)

func (r *Renderer) createSwapchain() error {
	r.swapchainExtension = khr_swapchain.CreateExtensionDriverFromCoreDriver(r.deviceDriver)

	support, err := r.surfaceSupport(r.physicalDevice)
	if err != nil {
		return err
	}

	surfaceFormat, err := chooseSwapSurfaceFormat(support.formats)
	if err != nil {
		return err
	}
	presentMode := chooseSwapPresentMode(support.presentModes, r.cfg.VSync)
	drawableWidth, drawableHeight := r.window.VulkanGetDrawableSize()
	extent := chooseSwapExtent(support.capabilities, int(drawableWidth), int(drawableHeight))

	info := khr_swapchain.SwapchainCreateInfo{
		Surface: r.surface,

		MinImageCount:    chooseImageCount(support.capabilities),
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,
		ImageSharingMode: core1_0.SharingModeExclusive,

		PreTransform:   support.capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	}

	// Images are handed from the graphics family to the present family
	// without ownership transfers.
	if families := r.queueFamilies.distinct(); len(families) > 1 {
		info.ImageSharingMode = core1_0.SharingModeConcurrent
		info.QueueFamilyIndices = families
	}

	r.swapchain, _, err = r.swapchainExtension.CreateSwapchain(nil, info)
	if err != nil {
		return err
	}
	r.swapchainExtent = extent
	r.swapchainImageFormat = surfaceFormat.Format

	render.Logger().Info("swapchain created",
		"format", surfaceFormat.Format,
		"present_mode", presentMode,
		"images", info.MinImageCount,
		"width", extent.Width,
		"height", extent.Height)
	return nil
}

// chooseImageCount asks for one image more than the minimum so acquire does
// not wait on the driver, capped by the surface maximum when there is one.
func chooseImageCount(caps *khr_surface.SurfaceCapabilities) int {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func (r *Renderer) createImageViews() error {
	images, _, err := r.swapchainExtension.GetSwapchainImages(r.swapchain)
	if err != nil {
		return err
	}
	r.swapchainImages = images

	for _, image := range images {
		view, _, err := r.deviceDriver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   r.swapchainImageFormat,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return err
		}

		r.swapchainImageViews = append(r.swapchainImageViews, view)
	}

	return nil
}

func (r *Renderer) createFramebuffers() error {
	for _, imageView := range r.swapchainImageViews {
		framebuffer, _, err := r.deviceDriver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: r.renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				imageView,
			},
			Width:  r.swapchainExtent.Width,
			Height: r.swapchainExtent.Height,
		})
		if err != nil {
			return err
		}

		r.swapchainFramebuffers = append(r.swapchainFramebuffers, framebuffer)
	}

	return nil
}

// chooseSwapSurfaceFormat prefers 8-bit sRGB, matching an Srgba8 colour target.
func chooseSwapSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) (khr_surface.SurfaceFormat, error) {
	if len(availableFormats) == 0 {
		return khr_surface.SurfaceFormat{}, errors.New("surface reports no formats")
	}

	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format, nil
		}
	}

	for _, format := range availableFormats {
		if format.Format == core1_0.FormatR8G8B8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format, nil
		}
	}

	return availableFormats[0], nil
}

// chooseSwapPresentMode returns FIFO, which is always supported and waits
// for vertical blank, when vsync is requested.
func chooseSwapPresentMode(availablePresentModes []khr_surface.PresentMode, vsync bool) khr_surface.PresentMode {
	if vsync {
		return khr_surface.PresentModeFIFO
	}

	for _, presentMode := range availablePresentModes {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// undefinedExtent is the current extent width of a surface whose size is
// set by the swapchain. It arrives as -1 or as the raw uint32 value.
const undefinedExtent = 0xFFFFFFFF

func chooseSwapExtent(capabilities *khr_surface.SurfaceCapabilities, width, height int) core1_0.Extent2D {
	if w := capabilities.CurrentExtent.Width; w != -1 && w != undefinedExtent {
		return capabilities.CurrentExtent
	}

	if width < capabilities.MinImageExtent.Width {
		width = capabilities.MinImageExtent.Width
	}
	if width > capabilities.MaxImageExtent.Width {
		width = capabilities.MaxImageExtent.Width
	}
	if height < capabilities.MinImageExtent.Height {
		height = capabilities.MinImageExtent.Height
	}
	if height > capabilities.MaxImageExtent.Height {
		height = capabilities.MaxImageExtent.Height
	}

	return core1_0.Extent2D{Width: width, Height: height}
}
