// Package animation drives the per-tick camera motion and rendering of the
// active scene.
package animation

import (
	"github.com/ayusman/abhinaya/internal/scene"
)

// Driver advances a pipeline by one tick at a time.
type Driver struct {
	ticks uint64
}

// NewDriver returns a driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Step runs one tick against p: orbit the camera, ease the zoom and render.
// The active flag is checked before every phase, so a pipeline disabled
// mid-tick does no further work. A nil or inactive pipeline is skipped.
func (d *Driver) Step(p scene.Pipeline) error {
	if p == nil || !p.Active() {
		return nil
	}
	cam := p.Camera()

	if o := p.Orbit(); o != nil {
		o.Advance(cam)
	}
	if !p.Active() {
		return nil
	}

	if z := p.Zoom(); z != nil {
		cam.Fov = z.Advance()
	}
	if !p.Active() {
		return nil
	}

	d.ticks++
	return p.Render()
}

// Ticks returns how many ticks reached the render phase.
func (d *Driver) Ticks() uint64 { return d.ticks }
