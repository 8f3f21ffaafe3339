package engine

import (
	"slices"
	"sync"
)

// EventType names a display-surface event.
type EventType string

const (
	EventResize      EventType = "resize"
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
	EventWheel       EventType = "wheel"
	EventKeyDown     EventType = "keydown"
)

// Event is delivered to window listeners. X and Y are in surface pixels.
type Event struct {
	Type   EventType
	X, Y   float32
	DeltaY float32
	Code   string
	Width  int
	Height int
}

// Listener handles a window event.
type Listener func(Event)

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

type listener struct {
	typ EventType
	fn  Listener
}

// Window is the shared display surface. It holds the attached canvas and
// the global event listeners registered by the core and the active scene.
type Window struct {
	mu        sync.Mutex
	width     int
	height    int
	listeners map[ListenerID]listener
	nextID    ListenerID
	canvas    *Renderer
}

// NewWindow returns a surface of the given size.
func NewWindow(width, height int) *Window {
	return &Window{
		width:     width,
		height:    height,
		listeners: make(map[ListenerID]listener),
	}
}

// Size returns the surface size in pixels.
func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// AddListener registers fn for events of type t.
func (w *Window) AddListener(t EventType, fn Listener) ListenerID {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	w.listeners[w.nextID] = listener{typ: t, fn: fn}
	return w.nextID
}

// RemoveListener unregisters a listener. It reports whether id was registered.
func (w *Window) RemoveListener(id ListenerID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.listeners[id]; !ok {
		return false
	}
	delete(w.listeners, id)
	return true
}

// ListenerCount returns the number of listeners for t, or all listeners
// when t is empty.
func (w *Window) ListenerCount(t EventType) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t == "" {
		return len(w.listeners)
	}
	n := 0
	for _, l := range w.listeners {
		if l.typ == t {
			n++
		}
	}
	return n
}

// Dispatch delivers ev to every listener of its type in registration
// order. A resize event updates the surface size first.
func (w *Window) Dispatch(ev Event) {
	w.mu.Lock()
	if ev.Type == EventResize && ev.Width > 0 && ev.Height > 0 {
		w.width, w.height = ev.Width, ev.Height
	}
	ids := make([]ListenerID, 0, len(w.listeners))
	for id, l := range w.listeners {
		if l.typ == ev.Type {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	fns := make([]Listener, len(ids))
	for i, id := range ids {
		fns[i] = w.listeners[id].fn
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Attach makes r the visible canvas.
func (w *Window) Attach(r *Renderer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.canvas = r
}

// Detach removes r if it is the visible canvas.
func (w *Window) Detach(r *Renderer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.canvas == r {
		w.canvas = nil
	}
}

// Canvas returns the attached renderer, or nil.
func (w *Window) Canvas() *Renderer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canvas
}

// PointerNDC converts surface pixels to normalized device coordinates.
func (w *Window) PointerNDC(x, y float32) (float32, float32) {
	width, height := w.Size()
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return x/float32(width)*2 - 1, -(y/float32(height)*2 - 1)
}
