package engine

import "github.com/chewxy/math32"

// Camera is a perspective camera. Fov is the vertical field of view in degrees.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3
	Fov      float32
	Aspect   float32
	Near     float32
	Far      float32
}

// NewPerspective returns a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float32) *Camera {
	return &Camera{
		Target: V3(0, 0, -1),
		Up:     V3(0, 1, 0),
		Fov:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

// LookAt aims the camera at t.
func (c *Camera) LookAt(t Vec3) {
	c.Target = t
}

// SetAspect updates the aspect ratio from a viewport size.
func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// basis returns the camera's right, up and forward unit vectors.
func (c *Camera) basis() (right, up, forward Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	worldUp := c.Up
	if math32.Abs(forward.Dot(worldUp.Normalize())) > 0.999 {
		worldUp = V3(0, 0, 1)
	}
	right = forward.Cross(worldUp).Normalize()
	up = right.Cross(forward)
	return right, up, forward
}

func (c *Camera) focal() float32 {
	return 1 / math32.Tan(DegToRad(c.Fov)/2)
}

// Project maps a world point to normalized device coordinates.
// ok is false for points outside the near/far range.
func (c *Camera) Project(p Vec3) (x, y, depth float32, ok bool) {
	right, up, forward := c.basis()
	d := p.Sub(c.Position)
	depth = d.Dot(forward)
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	f := c.focal()
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	x = f / aspect * d.Dot(right) / depth
	y = f * d.Dot(up) / depth
	return x, y, depth, true
}

// ProjectRadius returns the NDC height of a sphere of radius r at depth.
func (c *Camera) ProjectRadius(r, depth float32) float32 {
	if depth <= 0 {
		return 0
	}
	return c.focal() * r / depth
}

// Ray returns the world-space ray through the NDC point (x, y).
func (c *Camera) Ray(x, y float32) (origin, dir Vec3) {
	right, up, forward := c.basis()
	t := 1 / c.focal()
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	dir = forward.
		Add(right.Scale(x * t * aspect)).
		Add(up.Scale(y * t)).
		Normalize()
	return c.Position, dir
}
