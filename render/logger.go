package render

import (
	"io"
	"log/slog"
	"math"
	"sync/atomic"
)

// silent is enabled for no level, so records are dropped before any
// attributes are formatted.
var silent = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
	Level: slog.Level(math.MaxInt32),
}))

var shared atomic.Pointer[slog.Logger]

// SetLogger installs the logger used by render, window and vkrender.
// Until it is called, and again after SetLogger(nil), they log nothing.
//
// Lifecycle events are Info, per-frame detail is Debug and validation
// layer output is Warn or Error.
func SetLogger(l *slog.Logger) {
	shared.Store(l)
}

func Logger() *slog.Logger {
	if l := shared.Load(); l != nil {
		return l
	}
	return silent
}
