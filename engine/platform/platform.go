package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/glimmerhal/glimmer/engine/containers"
	"github.com/glimmerhal/glimmer/engine/core"
)

const eventQueueSize = 512

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window

	events   *containers.RingQueue[Event]
	keysHeld map[glfw.Key]bool
}

func New() (*Platform, error) {
	return &Platform{
		events:   containers.NewRingQueue[Event](eventQueueSize),
		keysHeld: make(map[glfw.Key]bool),
	}, nil
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages polls the window system and returns the events gathered
// since the last call, as plain data, oldest first.
func (p *Platform) PumpMessages() []Event {
	glfw.PollEvents()

	if p.events.IsEmpty() {
		return nil
	}
	out := make([]Event, 0, p.events.Len())
	for !p.events.IsEmpty() {
		ev, err := p.events.Dequeue()
		if err != nil {
			break
		}
		out = append(out, ev)
	}
	return out
}

// KeyHeld reports whether the given key is currently held down.
func (p *Platform) KeyHeld(key glfw.Key) bool {
	return p.keysHeld[key]
}

// CursorPos returns the cursor position in screen coordinates.
func (p *Platform) CursorPos() (float64, float64) {
	return p.Window.GetCursorPos()
}

// FramebufferSize returns the drawable surface size in pixels.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// GrabCursor hides the cursor and locks it to the window (for
// mouse-look style input); releasing restores normal behavior.
func (p *Platform) GrabCursor(grab bool) {
	if grab {
		p.Window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		p.Window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

// GetRequiredExtensionNames returns the instance extensions the window
// system needs for surface creation.
func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func (p *Platform) push(ev Event) {
	if err := p.events.Enqueue(ev); err != nil {
		core.LogWarn("event queue full, dropping event kind %d", ev.Kind)
	}
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	switch action {
	case glfw.Press:
		p.keysHeld[key] = true
		p.push(Event{Kind: EventKeyPressed, Key: key})
	case glfw.Release:
		delete(p.keysHeld, key)
		p.push(Event{Kind: EventKeyReleased, Key: key})
	}
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	switch action {
	case glfw.Press:
		p.push(Event{Kind: EventMouseButtonPressed, Button: button})
	case glfw.Release:
		p.push(Event{Kind: EventMouseButtonReleased, Button: button})
	}
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.push(Event{Kind: EventCursorMoved, X: xpos, Y: ypos})
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	p.push(Event{Kind: EventScroll, X: xoff, Y: yoff})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.push(Event{Kind: EventResized, Width: uint32(width), Height: uint32(height)})
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.push(Event{Kind: EventCloseRequested})
}
