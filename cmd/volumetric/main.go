package main

import (
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/vkngwrapper/volumetric/app"
	"github.com/vkngwrapper/volumetric/render"
)

func main() {
	// SDL and the Vulkan surface must stay on the thread that created them.
	runtime.LockOSThread()

	if app.ProcessCommandLineArgs(os.Args[1:], os.Stdout) {
		return
	}

	render.SetLogger(app.NewLogger(os.Stderr, slog.LevelInfo))

	err := app.New(app.DefaultConfig()).Run()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
