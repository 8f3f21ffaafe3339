// Package engine is a small headless retained-mode 3D engine: a render
// graph, a perspective camera, a raycaster, post-processing passes and a
// shared display surface. Frames are rasterized in software with gogpu/gg.
package engine

import "github.com/chewxy/math32"

// Vec3 is a float32 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float32) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Mul(o Vec3) Vec3      { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Dot(o Vec3) float32   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float32         { return math32.Sqrt(v.Dot(v)) }

// DistanceTo returns the Euclidean distance between v and o.
func (v Vec3) DistanceTo(o Vec3) float32 { return v.Sub(o).Len() }

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return v
	}
	return v.Scale(1 / l)
}

// RotateEuler rotates v by XYZ-ordered Euler angles in radians.
func (v Vec3) RotateEuler(rx, ry, rz float32) Vec3 {
	sx, cx := math32.Sincos(rx)
	sy, cy := math32.Sincos(ry)
	sz, cz := math32.Sincos(rz)

	// R = Rx * Ry * Rz
	x := v.X*(cy*cz) + v.Y*(-cy*sz) + v.Z*sy
	y := v.X*(cx*sz+sx*sy*cz) + v.Y*(cx*cz-sx*sy*sz) + v.Z*(-sx*cy)
	z := v.X*(sx*sz-cx*sy*cz) + v.Y*(sx*cz+cx*sy*sz) + v.Z*(cx*cy)
	return Vec3{x, y, z}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}
