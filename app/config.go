package app

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v3/common"

	"github.com/vkngwrapper/volumetric/scene"
	"github.com/vkngwrapper/volumetric/vkrender"
	"github.com/vkngwrapper/volumetric/window"
)

const (
	WindowTitle  = "Volumetric Data"
	WindowWidth  = 512
	WindowHeight = 512
)

const enableValidationLayers = true

// Config is everything the demo can be tuned with. It is compiled in; the
// program reads no flags, environment or files.
type Config struct {
	Title  string
	Width  int
	Height int

	APIVersion common.APIVersion
	VSync      bool
	Validation bool

	ClearColor mgl32.Vec4
}

func DefaultConfig() Config {
	return Config{
		Title:      WindowTitle,
		Width:      WindowWidth,
		Height:     WindowHeight,
		APIVersion: common.Vulkan1_2,
		VSync:      true,
		Validation: enableValidationLayers,
		ClearColor: scene.ClearColor,
	}
}

func (c Config) window() window.Config {
	return window.Config{
		Title:  c.Title,
		Width:  c.Width,
		Height: c.Height,
	}
}

func (c Config) renderer() vkrender.Config {
	return vkrender.Config{
		ApplicationName: c.Title,
		APIVersion:      c.APIVersion,
		VSync:           c.VSync,
		Validation:      c.Validation,
	}
}
