package scene

const (
	// MinFov and MaxFov bound the zoom target in degrees.
	MinFov = 5
	MaxFov = 100
	// ZoomStep is how far one zoom command moves the target.
	ZoomStep = 5
	// DefaultZoomSpeed is the fraction of the remaining distance covered per tick.
	DefaultZoomSpeed = 0.01
)

// Zoom eases a camera's field of view toward a target.
type Zoom struct {
	Current float32
	Target  float32
	Speed   float32
}

// NewZoom returns a zoom at rest at fov.
func NewZoom(fov float32) Zoom {
	return Zoom{Current: fov, Target: clampFov(fov), Speed: DefaultZoomSpeed}
}

// In narrows the target field of view by one step.
func (z *Zoom) In() { z.SetTarget(z.Target - ZoomStep) }

// Out widens the target field of view by one step.
func (z *Zoom) Out() { z.SetTarget(z.Target + ZoomStep) }

// SetTarget sets the target, clamped to [MinFov, MaxFov].
func (z *Zoom) SetTarget(fov float32) { z.Target = clampFov(fov) }

// Advance moves Current a fraction Speed of the way to Target and returns it.
// With Speed in (0, 1] it never overshoots.
func (z *Zoom) Advance() float32 {
	z.Current += (z.Target - z.Current) * z.Speed
	return z.Current
}

func clampFov(fov float32) float32 {
	return max(MinFov, min(MaxFov, fov))
}
