// Package window owns the SDL window the demo renders into and turns SDL
// events into render.Event values.
package window

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/volumetric/render"
)

type Config struct {
	Title  string
	Width  int
	Height int
}

// Window is a fixed-size, Vulkan-capable SDL window.
type Window struct {
	window *sdl.Window
}

// Open initialises SDL video and creates the window. The window cannot be
// resized; a failure here is fatal to the program.
func Open(cfg Config) (*Window, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Newf("window: invalid size %dx%d", cfg.Width, cfg.Height)
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "window: initialize sdl video")
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(cfg.Width), int32(cfg.Height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrapf(err, "window: create %q", cfg.Title)
	}

	render.Logger().Info("window opened", "title", cfg.Title, "width", cfg.Width, "height", cfg.Height)
	return &Window{window: window}, nil
}

// SDL returns the underlying window for surface creation.
func (w *Window) SDL() *sdl.Window {
	return w.window
}

// PollEvents drains the SDL event queue without blocking, calling handler
// for each close request and key press.
func (w *Window) PollEvents(handler func(render.Event)) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if e, ok := translate(event); ok {
			handler(e)
		}
	}
}

// Close destroys the window and shuts SDL down.
func (w *Window) Close() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}

func translate(event sdl.Event) (render.Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return render.Event{Kind: render.EventClose}, true
	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_CLOSE {
			return render.Event{Kind: render.EventClose}, true
		}
	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN {
			return render.Event{}, false
		}
		key := render.KeyUnknown
		if e.Keysym.Sym == sdl.K_ESCAPE {
			key = render.KeyEscape
		}
		return render.Event{Kind: render.EventKeyPress, Key: key}, true
	}

	return render.Event{}, false
}
