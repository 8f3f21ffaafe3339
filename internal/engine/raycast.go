package engine

import (
	"math"
	"sort"

	"github.com/chewxy/math32"
)

// Hit is a ray intersection.
type Hit struct {
	Object   *Object
	Point    Vec3
	Distance float32
}

// Raycaster intersects a ray with meshes and lines.
type Raycaster struct {
	Origin    Vec3
	Direction Vec3
	Near      float32
	Far       float32
	// LineThreshold is the maximum ray-to-segment distance for a line hit.
	LineThreshold float32
}

// NewRaycaster returns a raycaster along dir with an unbounded far plane.
func NewRaycaster(origin, dir Vec3) *Raycaster {
	return &Raycaster{
		Origin:        origin,
		Direction:     dir.Normalize(),
		Far:           math.MaxFloat32,
		LineThreshold: 1,
	}
}

// Intersect returns hits sorted by distance. When recursive is false only
// the given objects are tested, not their children.
func (r *Raycaster) Intersect(objects []*Object, recursive bool) []Hit {
	var hits []Hit
	for _, o := range objects {
		r.intersect(o, Vec3{}, recursive, &hits)
	}
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

func (r *Raycaster) intersect(o *Object, offset Vec3, recursive bool, hits *[]Hit) {
	if !o.Visible {
		return
	}
	pos := offset.Add(o.Position)

	switch o.Kind {
	case KindMesh:
		if d, ok := r.sphere(pos, o.Radius); ok {
			*hits = append(*hits, Hit{Object: o, Point: r.at(d), Distance: d})
		}
	case KindLine, KindLineSegments:
		if h, ok := r.line(o, pos); ok {
			*hits = append(*hits, h)
		}
	}

	if recursive {
		for _, c := range o.Children {
			r.intersect(c, pos, true, hits)
		}
	}
}

func (r *Raycaster) at(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

func (r *Raycaster) inRange(t float32) bool {
	return t >= r.Near && t <= r.Far
}

func (r *Raycaster) sphere(center Vec3, radius float32) (float32, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || !r.inRange(t) {
		return 0, false
	}
	return t, true
}

func (r *Raycaster) line(o *Object, offset Vec3) (Hit, bool) {
	g := o.Geometry
	if g == nil || g.DrawCount() < 2 {
		return Hit{}, false
	}

	step := 1
	if o.Kind == KindLineSegments {
		step = 2
	}

	best := Hit{Distance: math.MaxFloat32}
	found := false
	for i := 0; i+1 < g.DrawCount(); i += step {
		a := offset.Add(g.Vertex(i))
		b := offset.Add(g.Vertex(i + 1))
		t, p, dist := closestRaySegment(r.Origin, r.Direction, a, b)
		if dist > r.LineThreshold || !r.inRange(t) {
			continue
		}
		if t < best.Distance {
			best = Hit{Object: o, Point: p, Distance: t}
			found = true
		}
	}
	return best, found
}

// closestRaySegment returns the ray parameter, the closest point on the
// segment ab and the distance between ray and segment.
func closestRaySegment(origin, dir, a, b Vec3) (t float32, point Vec3, dist float32) {
	seg := b.Sub(a)
	w := origin.Sub(a)
	aa := dir.Dot(dir)
	bb := dir.Dot(seg)
	cc := seg.Dot(seg)
	dd := dir.Dot(w)
	ee := seg.Dot(w)
	den := aa*cc - bb*bb

	var s float32
	if den > 1e-9 {
		s = clamp01((aa*ee - bb*dd) / den)
	} else if cc > 1e-9 {
		s = clamp01(ee / cc)
	}
	point = a.Add(seg.Scale(s))
	t = point.Sub(origin).Dot(dir) / aa
	if t < 0 {
		t = 0
	}
	dist = origin.Add(dir.Scale(t)).DistanceTo(point)
	return t, point, dist
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
