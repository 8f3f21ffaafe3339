package controller

import (
	"context"
	"errors"
	"log"

	"github.com/ayusman/abhinaya/internal/animation"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/scene"
)

// Run is the event loop. It returns when ctx is cancelled, after disposing
// the active scene and the idle view.
//
// Loop order per wakeup:
// 1. Frames update the landmark buffers, then dispatch gestures
// 2. Window events run the registered listeners (core and scene)
// 3. Finished scene builds are installed or discarded
// 4. Ticks advance the active scene and publish a preview
func (c *Controller) Run(ctx context.Context) {
	ticker := c.config.Ticker
	if ticker == nil {
		ticker = animation.NewTicker(c.config.FPS)
	}
	defer ticker.Stop()

	c.state.Idle.Bind(c.state.Window, c.request(ctx))
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case f := <-c.frames:
			c.handleFrame(ctx, &f)
		case ev := <-c.events:
			c.state.Window.Dispatch(ev)
		case id := <-c.requests:
			c.state.Switcher.Request(ctx, id)
		case r := <-c.state.Switcher.Results():
			c.complete(r)
		case <-ticker.C():
			c.tick()
		}
		c.publishStatus()
	}
}

// request returns the callback the keyboard listener uses to switch scenes.
func (c *Controller) request(ctx context.Context) func(scene.ID) {
	return func(id scene.ID) {
		c.state.Switcher.Request(ctx, id)
	}
}

func (c *Controller) complete(r scene.Result) {
	err := c.state.Switcher.Complete(r)
	switch {
	case err == nil:
	case errors.Is(err, scene.ErrSuperseded):
		log.Printf("discarded build: %v", err)
	default:
		log.Printf("scene switch failed: %v", err)
	}
}

// onInstall runs on the loop right after a new pipeline is activated.
func (c *Controller) onInstall(_, p scene.Pipeline) {
	c.state.Switches++
	c.state.Dispatcher.Reset()
	c.state.Bridge.Rebind(p.Graph())
	addLights(p.Graph())
	c.state.Idle.Suspend(c.state.Window)
	p.Resize(c.state.Window.Size())

	if c.config.OnSwitch != nil {
		c.config.OnSwitch(p.ID())
	}
}

// addLights gives every scene graph the same white point and ambient light.
func addLights(g *engine.Graph) {
	point := engine.NewObject(engine.KindLight)
	point.Name = "pointLight"
	point.Material = engine.NewMaterial(engine.Hex(0xffffff))
	point.Intensity = 1
	point.Length = 100

	ambient := engine.NewObject(engine.KindLight)
	ambient.Name = "ambientLight"
	ambient.Material = engine.NewMaterial(engine.Hex(0xffffff))
	ambient.Intensity = 0.5

	g.Add(point, ambient)
}

// handleFrame writes f into the buffers and turns its gesture into actions
// on the active scene.
func (c *Controller) handleFrame(ctx context.Context, f *landmark.Frame) {
	c.state.handled++
	tips := c.state.Bridge.Update(f)
	active := c.state.Switcher.ActiveID()
	pending, _ := c.state.Switcher.Pending()

	for _, in := range gesture.Inputs(f, active, tips.Left, tips.Right) {
		in.Pending = pending
		for _, a := range c.state.Dispatcher.Dispatch(in) {
			c.perform(ctx, a)
		}
	}
}

func (c *Controller) perform(ctx context.Context, a gesture.Action) {
	switch a.Kind {
	case gesture.SwitchScene:
		c.state.Switcher.Request(ctx, a.Scene)
	case gesture.DrawAppend:
		c.state.Bridge.AppendStroke(a.Point)
	case gesture.DrawEnd:
		c.state.Bridge.EndStroke()
	default:
		if p := c.state.Switcher.Active(); p != nil {
			gesture.Apply(p, a)
		}
	}
}

// tick renders one frame of the active scene, or of the idle view when no
// scene is installed, and periodically publishes a preview.
func (c *Controller) tick() {
	c.state.ticks++
	if p := c.state.Switcher.Active(); p != nil {
		if err := c.state.Driver.Step(p); err != nil {
			log.Printf("render %s: %v", p.ID(), err)
		}
	} else if err := c.state.Idle.Render(); err != nil {
		log.Printf("render idle view: %v", err)
	}

	if c.state.ticks%uint64(c.config.PreviewEvery) == 0 {
		c.publishPreview()
	}
}

func (c *Controller) publishPreview() {
	canvas := c.state.Window.Canvas()
	if canvas == nil || canvas.Closed() {
		return
	}
	if err := c.preview.Capture(canvas, c.config.PreviewQuality); err != nil {
		log.Printf("encode preview: %v", err)
	}
}

func (c *Controller) shutdown() {
	c.state.Switcher.Close()
	c.state.Idle.Close(c.state.Window)
}
