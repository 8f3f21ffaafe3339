package controller

import (
	"log"

	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/scene"
)

// Key codes that switch scenes.
const (
	KeyScene1 = "Digit1"
	KeyScene2 = "Digit2"
)

// IdleView is the core's own graph, shown until the first scene installs.
// Its listeners (keyboard, resize, drag) stay registered for the
// controller's lifetime.
type IdleView struct {
	Graph    *engine.Graph
	Camera   *engine.Camera
	Renderer *engine.Renderer
	Controls *engine.DragControls

	listeners []engine.ListenerID
	shown     bool
}

// NewIdleView returns an idle view sized width x height.
func NewIdleView(width, height int) *IdleView {
	cam := engine.NewPerspective(75, float32(width)/float32(height), 0.1, 1000)
	v := &IdleView{
		Graph:    engine.NewGraph(),
		Camera:   cam,
		Renderer: engine.NewRenderer(width, height),
		Controls: engine.NewDragControls(0.5),
	}
	addLights(v.Graph)
	v.Controls.Apply(cam)
	return v
}

// Activate shows the idle view on w.
func (v *IdleView) Activate(w *engine.Window) {
	w.Attach(v.Renderer)
	v.shown = true
}

// Suspend hides the idle view once a scene owns the canvas.
func (v *IdleView) Suspend(w *engine.Window) {
	w.Detach(v.Renderer)
	v.shown = false
}

// Shown reports whether the idle view owns the canvas.
func (v *IdleView) Shown() bool { return v.shown }

// Bind registers the core listeners on w. request is called for the
// scene-switch keys; a key always rebuilds its scene, even when active.
func (v *IdleView) Bind(w *engine.Window, request func(scene.ID)) {
	v.listeners = append(v.listeners,
		w.AddListener(engine.EventKeyDown, func(ev engine.Event) {
			switch ev.Code {
			case KeyScene1:
				request(scene.Scene1)
			case KeyScene2:
				request(scene.Scene2)
			}
		}),
		w.AddListener(engine.EventResize, func(ev engine.Event) {
			v.resize(ev.Width, ev.Height)
		}),
	)
	v.listeners = append(v.listeners, v.Controls.Bind(w)...)
}

func (v *IdleView) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := v.Renderer.SetSize(width, height); err != nil {
		log.Printf("resize idle view: %v", err)
	}
	v.Camera.SetAspect(width, height)
}

// Render draws the idle graph if the idle view is shown.
func (v *IdleView) Render() error {
	if !v.shown {
		return nil
	}
	v.Controls.Apply(v.Camera)
	if err := v.Renderer.Render(v.Graph, v.Camera); err != nil {
		return err
	}
	v.Renderer.Present()
	return nil
}

// Close removes the core listeners and releases the renderer.
func (v *IdleView) Close(w *engine.Window) {
	for _, id := range v.listeners {
		w.RemoveListener(id)
	}
	v.listeners = nil
	v.Suspend(w)
	v.Graph.Dispose()
	if err := v.Renderer.Close(); err != nil {
		log.Printf("close idle renderer: %v", err)
	}
}
