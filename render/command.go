package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vkngwrapper/volumetric/scene"
)

// Op is the kind of a recorded Command.
type Op int

const (
	OpClear Op = iota + 1
	OpUpdateTransform
	OpDraw
)

func (o Op) String() string {
	switch o {
	case OpClear:
		return "clear"
	case OpUpdateTransform:
		return "update-transform"
	case OpDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Slice is the range of the vertex buffer consumed by a draw.
type Slice struct {
	First int
	Count int
}

// Command is one recorded operation. Only the fields relevant to Op are set.
type Command struct {
	Op        Op
	Color     mgl32.Vec4
	Transform scene.Transform
	Slice     Slice
}

// Device executes recorded commands and reclaims per-frame resources.
type Device interface {
	// Execute submits cmds, in order, for one frame.
	Execute(cmds []Command) error
	// Cleanup releases transient resources of the last executed frame.
	Cleanup() error
}

// Presenter shows the most recently executed frame.
type Presenter interface {
	Present() error
}

// Encoder accumulates commands in program order until Flush.
type Encoder struct {
	cmds []Command
}

// Clear clears the render target to color.
func (e *Encoder) Clear(color mgl32.Vec4) {
	e.cmds = append(e.cmds, Command{Op: OpClear, Color: color})
}

// UpdateTransform overwrites the whole constant buffer with t.
func (e *Encoder) UpdateTransform(t scene.Transform) {
	e.cmds = append(e.cmds, Command{Op: OpUpdateTransform, Transform: t})
}

// Draw draws slice with the pipeline, vertex buffer and constant buffer.
func (e *Encoder) Draw(slice Slice) {
	e.cmds = append(e.cmds, Command{Op: OpDraw, Slice: slice})
}

// Pending returns the number of commands recorded since the last Flush.
func (e *Encoder) Pending() int {
	return len(e.cmds)
}

// Flush hands the recorded commands to dev. The encoder is empty afterwards
// whether or not dev accepted them.
func (e *Encoder) Flush(dev Device) error {
	cmds := e.cmds
	e.cmds = nil
	return dev.Execute(cmds)
}
