package vkrender

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/vkngwrapper/volumetric/render"
)

// queueFamilies are the families the renderer submits and presents on. They
// are often the same family.
type queueFamilies struct {
	graphics int
	present  int
}

func (q queueFamilies) distinct() []int {
	if q.graphics == q.present {
		return []int{q.graphics}
	}
	return []int{q.graphics, q.present}
}

type surfaceSupport struct {
	capabilities *khr_surface.SurfaceCapabilities
	formats      []khr_surface.SurfaceFormat
	presentModes []khr_surface.PresentMode
}

// pickPhysicalDevice takes the first device that has the swapchain
// extension, a graphics queue, a queue that can present to the window and at
// least one surface format and present mode.
func (r *Renderer) pickPhysicalDevice() error {
	devices, _, err := r.instanceDriver.EnumeratePhysicalDevices()
	if err != nil {
		return err
	}

	for _, device := range devices {
		families, ok, err := r.deviceSuitable(device)
		if err != nil {
			return err
		}
		if ok {
			r.physicalDevice = device
			r.queueFamilies = families
			break
		}
	}

	if !r.physicalDevice.Initialized() {
		return errors.Newf("none of %d physical devices can present to the window", len(devices))
	}

	properties, err := r.instanceDriver.GetPhysicalDeviceProperties(r.physicalDevice)
	if err != nil {
		return err
	}

	render.Logger().Info("physical device selected",
		"name", properties.DriverName,
		"type", properties.DriverType,
		"api", properties.APIVersion,
		"graphics_family", r.queueFamilies.graphics,
		"present_family", r.queueFamilies.present,
		"pipeline_cache_uuid", properties.PipelineCacheUUID.String())
	return nil
}

func (r *Renderer) deviceSuitable(device core1_0.PhysicalDevice) (queueFamilies, bool, error) {
	extensions, _, err := r.instanceDriver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return queueFamilies{}, false, err
	}
	if len(missingExtensions(extensions, deviceExtensions)) > 0 {
		return queueFamilies{}, false, nil
	}

	families, ok, err := chooseQueueFamilies(r.instanceDriver.GetPhysicalDeviceQueueFamilyProperties(device), func(family int) (bool, error) {
		supported, _, err := r.surfaceExtension.GetPhysicalDeviceSurfaceSupport(r.surface, device, family)
		return supported, err
	})
	if err != nil || !ok {
		return queueFamilies{}, false, err
	}

	support, err := r.surfaceSupport(device)
	if err != nil {
		return queueFamilies{}, false, err
	}

	return families, len(support.formats) > 0 && len(support.presentModes) > 0, nil
}

// chooseQueueFamilies prefers one family that both draws and presents. When
// no family does both it falls back to the first of each.
func chooseQueueFamilies(properties []*core1_0.QueueFamilyProperties, presents func(family int) (bool, error)) (queueFamilies, bool, error) {
	graphics, present := -1, -1

	for family, props := range properties {
		canPresent, err := presents(family)
		if err != nil {
			return queueFamilies{}, false, errors.Wrapf(err, "queue family %d surface support", family)
		}
		canDraw := props.QueueFlags&core1_0.QueueGraphics != 0

		if canDraw && canPresent {
			return queueFamilies{graphics: family, present: family}, true, nil
		}
		if canDraw && graphics < 0 {
			graphics = family
		}
		if canPresent && present < 0 {
			present = family
		}
	}

	if graphics < 0 || present < 0 {
		return queueFamilies{}, false, nil
	}
	return queueFamilies{graphics: graphics, present: present}, true, nil
}

// missingExtensions lists the required names absent from available.
func missingExtensions(available map[string]*core1_0.ExtensionProperties, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func (r *Renderer) surfaceSupport(device core1_0.PhysicalDevice) (surfaceSupport, error) {
	var support surfaceSupport
	var err error

	support.capabilities, _, err = r.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(r.surface, device)
	if err != nil {
		return support, err
	}

	support.formats, _, err = r.surfaceExtension.GetPhysicalDeviceSurfaceFormats(r.surface, device)
	if err != nil {
		return support, err
	}

	support.presentModes, _, err = r.surfaceExtension.GetPhysicalDeviceSurfacePresentModes(r.surface, device)
	return support, err
}

func (r *Renderer) createLogicalDevice() error {
	available, _, err := r.instanceDriver.EnumerateDeviceExtensionProperties(r.physicalDevice)
	if err != nil {
		return err
	}

	extensionNames := append([]string(nil), deviceExtensions...)
	// Portability implementations such as MoltenVK require this to be enabled
	// whenever they advertise it.
	if _, ok := available[khr_portability_subset.ExtensionName]; ok {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	var queues []core1_0.DeviceQueueCreateInfo
	for _, family := range r.queueFamilies.distinct() {
		queues = append(queues, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: family,
			QueuePriorities:  []float32{1.0},
		})
	}

	device, _, err := r.instanceDriver.CreateDevice(r.physicalDevice, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queues,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return err
	}

	r.deviceDriver, err = r.instanceDriver.BuildDeviceDriver(device)
	if err != nil {
		return errors.Wrap(err, "load device commands")
	}

	r.graphicsQueue = r.deviceDriver.GetQueue(r.queueFamilies.graphics, 0)
	r.presentQueue = r.deviceDriver.GetQueue(r.queueFamilies.present, 0)
	return nil
}
