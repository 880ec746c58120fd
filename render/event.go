package render

// EventKind identifies the input events the loop reacts to.
type EventKind int

const (
	EventClose EventKind = iota + 1
	EventKeyPress
)

func (k EventKind) String() string {
	switch k {
	case EventClose:
		return "close"
	case EventKeyPress:
		return "key-press"
	default:
		return "unknown"
	}
}

// Key is a platform independent key code.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
)

// Event is a single input event surfaced by an EventSource.
type Event struct {
	Kind EventKind
	Key  Key
}

// EventSource delivers pending window events. PollEvents must not block
// waiting for new events; it calls handler once per event queued since the
// previous call and returns.
type EventSource interface {
	PollEvents(handler func(Event))
}

// stops reports whether the event ends the render loop.
func (e Event) stops() bool {
	return e.Kind == EventClose || (e.Kind == EventKeyPress && e.Key == KeyEscape)
}
