package vkrender

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/vkngwrapper/volumetric/render"
)

func (r *Renderer) createInstance() error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    r.cfg.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         r.cfg.APIVersion,
	}

	sdlExtensions := r.window.VulkanGetInstanceExtensions()
	extensions, _, err := r.globalDriver.AvailableExtensions()
	if err != nil {
		return err
	}

	missing := missingExtensions(extensions, sdlExtensions)
	if len(missing) > 0 {
		return errors.Newf("no compatible drawing surface: missing instance extensions %v", missing)
	}
	instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, sdlExtensions...)

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if r.cfg.Validation {
		layers, _, err := r.globalDriver.AvailableLayers()
		if err != nil {
			return err
		}

		_, hasDebugUtils := extensions[ext_debug_utils.ExtensionName]
		enabled := hasDebugUtils
		for _, layer := range validationLayers {
			_, hasLayer := layers[layer]
			if !hasLayer {
				render.Logger().Warn("validation layer not available, continuing without it", "layer", layer)
				enabled = false
			}
		}

		if enabled {
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, validationLayers...)
			instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
			instanceOptions.Next = r.debugMessengerOptions()
		} else {
			r.cfg.Validation = false
		}
	}

	instance, _, err := r.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return errors.Wrapf(err, "vulkan %s instance", r.cfg.APIVersion)
	}

	r.instanceDriver, err = r.globalDriver.BuildInstanceDriver(instance)
	if err != nil {
		return errors.Wrap(err, "load instance commands")
	}

	return nil
}

func (r *Renderer) debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    logDebug,
	}
}

func (r *Renderer) setupDebugMessenger() error {
	if !r.cfg.Validation {
		return nil
	}

	var err error
	r.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(r.instanceDriver)
	r.debugMessenger, _, err = r.debugDriver.CreateDebugUtilsMessenger(nil, r.debugMessengerOptions())
	return err
}

func (r *Renderer) createSurface() error {
	r.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(r.instanceDriver)
	surface, err := vkng_sdl2.CreateSurface(r.instanceDriver.Instance(), r.surfaceExtension, r.window)
	if err != nil {
		return err
	}

	r.surface = surface
	return nil
}

func logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	log := render.Logger()
	if severity&ext_debug_utils.SeverityError != 0 {
		log.Error("vulkan validation", "type", msgType, "message", data.Message)
	} else {
		log.Warn("vulkan validation", "type", msgType, "message", data.Message)
	}
	return false
}
