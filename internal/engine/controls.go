package engine

import "github.com/chewxy/math32"

// DragControls orbits a camera around the origin from pointer drags and
// wheel events.
type DragControls struct {
	AngleX   float32
	AngleY   float32
	Distance float32

	RotationSpeed float32
	ZoomSpeed     float32

	dragging bool
	prevX    float32
	prevY    float32
}

// NewDragControls returns controls at the given orbit distance.
func NewDragControls(distance float32) *DragControls {
	return &DragControls{
		Distance:      distance,
		RotationSpeed: 0.005,
		ZoomSpeed:     0.1,
	}
}

// Bind registers the controls' listeners on w and returns their IDs.
func (d *DragControls) Bind(w *Window) []ListenerID {
	return []ListenerID{
		w.AddListener(EventPointerDown, func(ev Event) { d.Start(ev.X, ev.Y) }),
		w.AddListener(EventPointerMove, func(ev Event) { d.Drag(ev.X, ev.Y) }),
		w.AddListener(EventPointerUp, func(Event) { d.Stop() }),
		w.AddListener(EventWheel, func(ev Event) { d.Wheel(ev.DeltaY) }),
	}
}

func (d *DragControls) Start(x, y float32) {
	d.dragging = true
	d.prevX, d.prevY = x, y
}

// Drag rotates by the pointer delta. Pitch is clamped to ±90°.
func (d *DragControls) Drag(x, y float32) {
	if !d.dragging {
		return
	}
	d.AngleY += (x - d.prevX) * d.RotationSpeed
	d.AngleX += (y - d.prevY) * d.RotationSpeed
	d.AngleX = math32.Max(-math32.Pi/2, math32.Min(math32.Pi/2, d.AngleX))
	d.prevX, d.prevY = x, y
}

func (d *DragControls) Stop() { d.dragging = false }

// Wheel moves the camera away for positive deltas and closer otherwise.
func (d *DragControls) Wheel(deltaY float32) {
	if deltaY > 0 {
		d.Distance += d.ZoomSpeed
	} else {
		d.Distance -= d.ZoomSpeed
	}
}

// Apply positions cam on the orbit sphere and aims it at the origin.
func (d *DragControls) Apply(cam *Camera) {
	sx, cx := math32.Sincos(d.AngleX)
	sy, cy := math32.Sincos(d.AngleY)
	cam.Position = V3(d.Distance*sy*cx, d.Distance*sx, d.Distance*cy*cx)
	cam.LookAt(Vec3{})
}
