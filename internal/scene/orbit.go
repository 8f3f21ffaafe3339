package scene

import (
	"github.com/chewxy/math32"

	"github.com/ayusman/abhinaya/internal/engine"
)

// Orbit moves a camera on a fixed path around the origin. Each axis has its
// own angle advanced by a per-tick step in degrees.
type Orbit struct {
	Radius float32
	Step   engine.Vec3
	Angle  engine.Vec3
	// Stopped freezes the angles; the camera is still re-aimed.
	Stopped bool
}

// NewOrbit returns an orbit of radius r with per-axis steps in degrees.
func NewOrbit(r, stepX, stepY, stepZ float32) Orbit {
	return Orbit{Radius: r, Step: engine.V3(stepX, stepY, stepZ)}
}

// Advance steps the angles and places cam on the path looking at the origin.
func (o *Orbit) Advance(cam *engine.Camera) {
	if o.Radius == 0 {
		return
	}
	if !o.Stopped {
		o.Angle = o.Angle.Add(o.Step)
	}
	cam.Position = engine.V3(
		o.Radius*math32.Sin(engine.DegToRad(o.Angle.X)),
		o.Radius*math32.Sin(engine.DegToRad(o.Angle.Y)),
		o.Radius*math32.Cos(engine.DegToRad(o.Angle.Z)),
	)
	cam.LookAt(engine.Vec3{})
}
