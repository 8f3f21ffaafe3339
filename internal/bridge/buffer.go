package bridge

import "github.com/ayusman/abhinaya/internal/engine"

// axesPerPoint is the number of indicator segments drawn at each landmark.
const axesPerPoint = 3

var axisColors = [axesPerPoint]engine.Color{
	{R: 1}, {G: 1}, {B: 1},
}

// VisualBuffer is the preallocated geometry of one landmark category: a
// point cloud plus three short axis segments per point. Capacity is fixed
// at creation; frames with fewer landmarks clear the unused tail.
type VisualBuffer struct {
	Points *engine.Object
	Axes   *engine.Object

	capacity   int
	count      int
	axisLength float32
}

func newVisualBuffer(capacity int, axisLength float32, style Style) *VisualBuffer {
	points := engine.NewObject(engine.KindPoints)
	points.Geometry = engine.NewGeometry(capacity, false)
	points.Geometry.SetDrawRange(0)
	points.Material = &engine.Material{Color: style.Color, Opacity: style.Opacity}
	points.Size = style.PointSize

	axes := engine.NewObject(engine.KindLineSegments)
	axes.Geometry = engine.NewGeometry(capacity*axesPerPoint*2, true)
	axes.Geometry.SetDrawRange(0)
	axes.Material = &engine.Material{Color: style.Color, Opacity: style.Opacity, VertexColors: true}

	return &VisualBuffer{
		Points:     points,
		Axes:       axes,
		capacity:   capacity,
		axisLength: axisLength,
	}
}

// Capacity returns the maximum number of landmarks the buffer holds.
func (b *VisualBuffer) Capacity() int { return b.capacity }

// Len returns the number of landmarks written by the last frame.
func (b *VisualBuffer) Len() int { return b.count }

// Position returns the stored position of landmark i.
func (b *VisualBuffer) Position(i int) engine.Vec3 { return b.Points.Geometry.Vertex(i) }

// set writes landmark i and its axis segments.
func (b *VisualBuffer) set(i int, p engine.Vec3) {
	pos := b.Points.Geometry.Positions
	pos[i*3], pos[i*3+1], pos[i*3+2] = p.X, p.Y, p.Z

	lines := b.Axes.Geometry.Positions
	colors := b.Axes.Geometry.Colors
	for a := 0; a < axesPerPoint; a++ {
		end := p
		switch a {
		case 0:
			end.X += b.axisLength
		case 1:
			end.Y += b.axisLength
		case 2:
			end.Z += b.axisLength
		}
		c := axisColors[a]
		k := (i*axesPerPoint + a) * 6
		lines[k], lines[k+1], lines[k+2] = p.X, p.Y, p.Z
		lines[k+3], lines[k+4], lines[k+5] = end.X, end.Y, end.Z
		colors[k], colors[k+1], colors[k+2] = c.R, c.G, c.B
		colors[k+3], colors[k+4], colors[k+5] = c.R, c.G, c.B
	}
}

// finish clears slots left over from a larger previous frame, sets the
// draw ranges to n landmarks and marks both geometries dirty.
func (b *VisualBuffer) finish(n int) {
	if n < b.count {
		clear(b.Points.Geometry.Positions[n*3 : b.count*3])
		lo, hi := n*axesPerPoint*6, b.count*axesPerPoint*6
		clear(b.Axes.Geometry.Positions[lo:hi])
		clear(b.Axes.Geometry.Colors[lo:hi])
	}
	b.count = n
	b.Points.Geometry.SetDrawRange(n)
	b.Axes.Geometry.SetDrawRange(n * axesPerPoint * 2)
	b.Points.Geometry.MarkDirty()
	b.Axes.Geometry.MarkDirty()
}

func (b *VisualBuffer) attach(g *engine.Graph) {
	g.Add(b.Points, b.Axes)
}

func (b *VisualBuffer) dispose(g *engine.Graph) {
	if g != nil {
		g.Remove(b.Points)
		g.Remove(b.Axes)
	}
	b.Points.Dispose()
	b.Axes.Dispose()
	b.count = 0
}
