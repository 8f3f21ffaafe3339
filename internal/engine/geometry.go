package engine

// Geometry is a vertex buffer of positions and optional colors.
// Buffers are allocated once; callers overwrite them in place and call
// MarkDirty to schedule an upload.
type Geometry struct {
	Positions []float32
	Colors    []float32

	count    int
	version  uint64
	disposed bool
}

// NewGeometry allocates room for the given number of vertices.
func NewGeometry(vertices int, withColors bool) *Geometry {
	g := &Geometry{
		Positions: make([]float32, vertices*3),
		count:     vertices,
	}
	if withColors {
		g.Colors = make([]float32, vertices*3)
	}
	return g
}

// Capacity returns the number of vertices the buffers can hold.
func (g *Geometry) Capacity() int { return len(g.Positions) / 3 }

// DrawCount returns how many leading vertices are drawn.
func (g *Geometry) DrawCount() int { return g.count }

// SetDrawRange limits drawing to the first n vertices.
func (g *Geometry) SetDrawRange(n int) {
	if n < 0 {
		n = 0
	}
	if c := g.Capacity(); n > c {
		n = c
	}
	g.count = n
}

// Vertex returns vertex i.
func (g *Geometry) Vertex(i int) Vec3 {
	return Vec3{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
}

// VertexColor returns the color of vertex i, or White without colors.
func (g *Geometry) VertexColor(i int) Color {
	if g.Colors == nil {
		return White
	}
	return Color{g.Colors[i*3], g.Colors[i*3+1], g.Colors[i*3+2]}
}

// Append grows the buffer by one vertex and extends the draw range.
func (g *Geometry) Append(v Vec3) {
	g.Positions = append(g.Positions[:g.count*3], v.X, v.Y, v.Z)
	g.count++
}

// MarkDirty flags the buffers for upload.
func (g *Geometry) MarkDirty() { g.version++ }

// Version counts MarkDirty calls.
func (g *Geometry) Version() uint64 { return g.version }

// Dispose releases the buffers. A disposed geometry draws nothing.
func (g *Geometry) Dispose() {
	g.Positions = nil
	g.Colors = nil
	g.count = 0
	g.disposed = true
}

// Disposed reports whether Dispose was called.
func (g *Geometry) Disposed() bool { return g.disposed }
