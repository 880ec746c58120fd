// Package app wires the window, the Vulkan renderer and the render loop
// together.
package app

import (
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/vkngwrapper/volumetric/render"
	"github.com/vkngwrapper/volumetric/scene"
	"github.com/vkngwrapper/volumetric/shaders"
	"github.com/vkngwrapper/volumetric/vkrender"
	"github.com/vkngwrapper/volumetric/window"
)

// NewLogger returns the text logger used by the demo, tagged with a fresh
// run identifier so interleaved output from several runs can be told apart.
func NewLogger(out io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("run", uuid.New().String())
}

type Application struct {
	cfg Config

	window   *window.Window
	renderer *vkrender.Renderer
	loop     *render.Loop
}

func New(cfg Config) *Application {
	return &Application{cfg: cfg}
}

// Run opens the window, builds the pipeline once and renders until the loop
// stops. Everything created is released before Run returns.
func (app *Application) Run() error {
	err := app.initWindow()
	if err != nil {
		return err
	}
	defer app.cleanup()

	err = app.initRenderer()
	if err != nil {
		return err
	}

	return app.mainLoop()
}

func (app *Application) initWindow() error {
	var err error
	app.window, err = window.Open(app.cfg.window())
	return err
}

func (app *Application) initRenderer() error {
	desc, err := quadPipeline()
	if err != nil {
		return err
	}

	triangles := scene.Triangles()
	app.renderer, err = vkrender.New(app.window.SDL(), desc, triangles[:], app.cfg.renderer())
	if err != nil {
		return errors.Wrap(err, "create renderer")
	}

	return nil
}

func (app *Application) mainLoop() error {
	frame := render.DefaultFrame()
	frame.ClearColor = app.cfg.ClearColor

	app.loop = render.NewLoop(app.window, app.renderer, app.renderer, frame)
	return app.loop.Run()
}

func (app *Application) cleanup() {
	if app.renderer != nil {
		app.renderer.Destroy()
		app.renderer = nil
	}

	if app.window != nil {
		app.window.Close()
		app.window = nil
	}
}

func quadPipeline() (render.PipelineDesc, error) {
	vert, err := shaders.QuadVertex()
	if err != nil {
		return render.PipelineDesc{}, errors.Wrap(err, "load vertex shader")
	}

	frag, err := shaders.QuadFragment()
	if err != nil {
		return render.PipelineDesc{}, errors.Wrap(err, "load fragment shader")
	}

	return render.QuadPipeline(vert, frag), nil
}
