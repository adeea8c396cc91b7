package platform

import "github.com/go-gl/glfw/v3.3/glfw"

type EventKind int

const (
	EventCloseRequested EventKind = iota
	EventResized
	EventCursorMoved
	EventKeyPressed
	EventKeyReleased
	EventMouseButtonPressed
	EventMouseButtonReleased
	EventScroll
)

// Event is a plain-data window event. Which fields are meaningful
// depends on Kind; the rest are zero.
type Event struct {
	Kind EventKind

	// EventResized
	Width  uint32
	Height uint32

	// EventCursorMoved / EventScroll
	X float64
	Y float64

	// EventKeyPressed / EventKeyReleased
	Key glfw.Key

	// EventMouseButtonPressed / EventMouseButtonReleased
	Button glfw.MouseButton
}
