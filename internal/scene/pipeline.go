// Package scene manages swappable visualization pipelines: the capability
// interface every scene implements, a compile-time registry of scene
// factories, and the switcher that owns the active pipeline.
package scene

import (
	"errors"
	"log"

	"github.com/ayusman/abhinaya/internal/engine"
)

// ID identifies a registered scene.
type ID string

const (
	// Scene1 is the orbiting bloom field.
	Scene1 ID = "scene1"
	// Scene2 is the line-art glitch view.
	Scene2 ID = "scene2"
)

var (
	// ErrSceneLoad is returned when a pipeline could not be constructed.
	// The previously active pipeline stays installed.
	ErrSceneLoad = errors.New("scene load failed")
	// ErrUnknownScene is returned for an ID with no registered factory.
	ErrUnknownScene = errors.New("unknown scene")
	// ErrSuperseded is returned when a construction finished after a newer
	// request was made. Its pipeline is disposed without being activated.
	ErrSuperseded = errors.New("scene switch superseded")
)

// Actions are the effect commands a gesture can trigger. Pipelines that do
// not support a command treat it as a no-op, as does any inactive pipeline.
type Actions interface {
	LightsOn()
	LightsOff()
	TurnIntersectsOn(x, y, z float32)
	TurnIntersectsOff(x, y, z float32)
	RemoveAllArrowHelpers()
	ZoomIn()
	ZoomOut()
	CameraStop()
	CameraResume()
	NormalGlitch()
	WildGlitch()
}

// Pipeline is one complete visualization with its own render graph,
// camera, renderer and window listeners.
type Pipeline interface {
	Actions

	ID() ID
	Graph() *engine.Graph
	Camera() *engine.Camera
	Renderer() *engine.Renderer

	// Render draws and presents one frame. It does nothing when inactive.
	Render() error
	// Activate attaches the renderer to w and registers listeners.
	Activate(w *engine.Window)
	// Disable marks the pipeline inactive, removes its listeners, detaches
	// it from the window and releases its graph and renderer.
	Disable()
	Active() bool

	Orbit() *Orbit
	Zoom() *Zoom
	Resize(width, height int)
}

// Base carries the state every pipeline shares and implements the
// lifecycle, zoom and no-op action hooks. Concrete scenes embed it and
// override what they support.
type Base struct {
	id       ID
	graph    *engine.Graph
	camera   *engine.Camera
	renderer *engine.Renderer
	zoom     Zoom
	orbit    Orbit

	window    *engine.Window
	listeners []engine.ListenerID
	active    bool
	disposed  bool
}

// NewBase returns an inactive base for a viewport of the given size.
func NewBase(id ID, cam *engine.Camera, orbit Orbit, width, height int) Base {
	cam.SetAspect(width, height)
	return Base{
		id:       id,
		graph:    engine.NewGraph(),
		camera:   cam,
		renderer: engine.NewRenderer(width, height),
		zoom:     NewZoom(cam.Fov),
		orbit:    orbit,
	}
}

func (b *Base) ID() ID                     { return b.id }
func (b *Base) Graph() *engine.Graph       { return b.graph }
func (b *Base) Camera() *engine.Camera     { return b.camera }
func (b *Base) Renderer() *engine.Renderer { return b.renderer }
func (b *Base) Active() bool               { return b.active }
func (b *Base) Orbit() *Orbit              { return &b.orbit }
func (b *Base) Zoom() *Zoom                { return &b.zoom }

// Window returns the surface the pipeline is attached to, or nil.
func (b *Base) Window() *engine.Window { return b.window }

// Activate attaches the renderer and registers the resize listener.
// Scenes that need more listeners call it first and then Listen.
func (b *Base) Activate(w *engine.Window) {
	if b.disposed || b.active {
		return
	}
	b.window = w
	w.Attach(b.renderer)
	b.active = true
	b.Listen(engine.EventResize, func(ev engine.Event) {
		b.Resize(ev.Width, ev.Height)
	})
}

// Listen registers fn on the attached window and remembers it for Disable.
func (b *Base) Listen(t engine.EventType, fn engine.Listener) {
	if b.window == nil {
		return
	}
	b.listeners = append(b.listeners, b.window.AddListener(t, fn))
}

// Disable tears the pipeline down. It is safe to call more than once and
// on a pipeline that was never activated.
func (b *Base) Disable() {
	if b.disposed {
		return
	}
	b.active = false
	b.disposed = true
	if b.window != nil {
		for _, id := range b.listeners {
			b.window.RemoveListener(id)
		}
		b.window.Detach(b.renderer)
	}
	b.listeners = nil
	b.graph.Dispose()
	if err := b.renderer.Close(); err != nil {
		log.Printf("scene %s: close renderer: %v", b.id, err)
	}
}

// Resize updates the camera aspect and the renderer viewport.
func (b *Base) Resize(width, height int) {
	if !b.active {
		return
	}
	b.camera.SetAspect(width, height)
	if err := b.renderer.SetSize(width, height); err != nil {
		log.Printf("scene %s: %v", b.id, err)
	}
}

func (b *Base) ZoomIn() {
	if b.active {
		b.zoom.In()
	}
}

func (b *Base) ZoomOut() {
	if b.active {
		b.zoom.Out()
	}
}

func (b *Base) LightsOn()                         {}
func (b *Base) LightsOff()                        {}
func (b *Base) TurnIntersectsOn(_, _, _ float32)  {}
func (b *Base) TurnIntersectsOff(_, _, _ float32) {}
func (b *Base) RemoveAllArrowHelpers()            {}
func (b *Base) CameraStop()                       {}
func (b *Base) CameraResume()                     {}
func (b *Base) NormalGlitch()                     {}
func (b *Base) WildGlitch()                       {}
