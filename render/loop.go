package render

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"

	"github.com/vkngwrapper/volumetric/scene"
)

// State is the run state of a Loop.
type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Frame is what the loop records every iteration.
type Frame struct {
	ClearColor mgl32.Vec4
	Transform  scene.Transform
	Slice      Slice
}

// DefaultFrame clears to scene.ClearColor and draws all of scene.Triangles
// with the identity transform.
func DefaultFrame() Frame {
	return Frame{
		ClearColor: scene.ClearColor,
		Transform:  scene.IdentityTransform(),
		Slice:      Slice{First: 0, Count: scene.VertexCount},
	}
}

// Loop is the single threaded poll/record/flush/present cycle. It owns no
// resources; the event source, device and presenter outlive it.
type Loop struct {
	events    EventSource
	device    Device
	presenter Presenter
	frame     Frame

	encoder Encoder
	state   State
	stats   FrameStats
}

// NewLoop returns a loop in the Running state.
func NewLoop(events EventSource, device Device, presenter Presenter, frame Frame) *Loop {
	return &Loop{
		events:    events,
		device:    device,
		presenter: presenter,
		frame:     frame,
		state:     Running,
	}
}

// State returns the current run state.
func (l *Loop) State() State {
	return l.state
}

// Frames returns the number of frames drawn and presented so far.
func (l *Loop) Frames() int {
	return l.stats.Count
}

// Stats returns timing for the frames drawn so far.
func (l *Loop) Stats() FrameStats {
	return l.stats
}

// Run draws frames until a close request or Escape key press is polled.
// The stop condition is only checked between frames: the frame during which
// the event arrives is still drawn and presented. Any device or present error
// stops the loop and is returned.
func (l *Loop) Run() error {
	log := Logger()

	for l.state == Running {
		start := hrtime.Now()

		l.events.PollEvents(l.handleEvent)

		err := l.drawFrame()
		if err != nil {
			l.state = Stopped
			return errors.Wrapf(err, "frame %d", l.stats.Count)
		}

		l.stats.Add(hrtime.Since(start))
	}

	log.Info("render loop stopped",
		"frames", l.stats.Count,
		"mean_frame", l.stats.Mean(),
		"max_frame", l.stats.Max)
	return nil
}

func (l *Loop) handleEvent(event Event) {
	if event.stops() {
		Logger().Debug("stop requested", "event", event.Kind, "frame", l.stats.Count)
		l.state = Stopped
	}
}

func (l *Loop) drawFrame() error {
	l.encoder.Clear(l.frame.ClearColor)
	l.encoder.UpdateTransform(l.frame.Transform)
	l.encoder.Draw(l.frame.Slice)

	err := l.encoder.Flush(l.device)
	if err != nil {
		return errors.Wrap(err, "execute commands")
	}

	err = l.presenter.Present()
	if err != nil {
		return errors.Wrap(err, "present")
	}

	err = l.device.Cleanup()
	if err != nil {
		return errors.Wrap(err, "cleanup")
	}

	return nil
}
