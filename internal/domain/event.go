package domain

// EventKind enumerates session lifecycle events.
type EventKind int

const (
	// EventFrameRendered is emitted once per rendered frame.
	EventFrameRendered EventKind = iota + 1
	// EventSurfaceCreated is emitted when the render surface becomes available.
	EventSurfaceCreated
	// EventSurfaceDestroyed is emitted when the render surface goes away.
	EventSurfaceDestroyed
	// EventPaused is emitted when the session stops executing frames.
	EventPaused
	// EventResumed is emitted when frame execution resumes.
	EventResumed
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventFrameRendered:
		return "FrameRendered"
	case EventSurfaceCreated:
		return "SurfaceCreated"
	case EventSurfaceDestroyed:
		return "SurfaceDestroyed"
	case EventPaused:
		return "Paused"
	case EventResumed:
		return "Resumed"
	default:
		return "Unknown"
	}
}

// Event is a single lifecycle event delivered by the session.
type Event struct {
	Kind EventKind

	// Frame is the frame counter for EventFrameRendered, zero otherwise.
	Frame uint64
}
