package engine

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/gogpu/gg"
)

// ErrRendererClosed is returned when drawing with a closed renderer.
var ErrRendererClosed = errors.New("renderer is closed")

// Renderer rasterizes a graph through a camera into an RGBA frame.
type Renderer struct {
	dc     *gg.Context
	width  int
	height int
	frames uint64
	closed bool
}

// NewRenderer allocates a frame of the given size.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return &Renderer{
		dc:     gg.NewContext(width, height),
		width:  width,
		height: height,
	}
}

// SetSize resizes the frame.
func (r *Renderer) SetSize(width, height int) error {
	if r.closed {
		return ErrRendererClosed
	}
	if err := r.dc.Resize(width, height); err != nil {
		return fmt.Errorf("resize renderer: %w", err)
	}
	r.width, r.height = width, height
	return nil
}

// Size returns the frame size in pixels.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Context exposes the drawing context to post-processing passes.
func (r *Renderer) Context() *gg.Context { return r.dc }

// Clear fills the frame with c.
func (r *Renderer) Clear(c Color) {
	if r.closed {
		return
	}
	r.dc.ClearWithColor(gg.RGB(float64(c.R), float64(c.G), float64(c.B)))
}

// ToPixel converts NDC to frame pixels.
func (r *Renderer) ToPixel(x, y float32) (float64, float64) {
	return float64((x + 1) / 2 * float32(r.width)), float64((1 - y) / 2 * float32(r.height))
}

type drawItem struct {
	obj   *Object
	pos   Vec3
	depth float32
}

// Render clears the frame with the graph background and draws every
// visible object. Meshes are painted back to front.
func (r *Renderer) Render(g *Graph, cam *Camera) error {
	if r.closed {
		return ErrRendererClosed
	}
	r.Clear(g.Background)

	var meshes, rest []drawItem
	for _, c := range g.Children() {
		collect(c, Vec3{}, cam, &meshes, &rest)
	}
	sort.Slice(meshes, func(i, j int) bool {
		return meshes[i].depth > meshes[j].depth
	})

	for _, it := range meshes {
		r.drawMesh(it, cam)
	}
	for _, it := range rest {
		switch it.obj.Kind {
		case KindPoints:
			r.drawPoints(it.obj, it.pos, cam)
		case KindLineSegments:
			r.drawLines(it.obj, it.pos, cam, 2)
		case KindLine:
			r.drawLines(it.obj, it.pos, cam, 1)
		case KindArrow:
			r.drawArrow(it.obj, cam)
		}
	}
	return nil
}

func collect(o *Object, offset Vec3, cam *Camera, meshes, rest *[]drawItem) {
	if !o.Visible {
		return
	}
	pos := offset.Add(o.Position)
	switch o.Kind {
	case KindMesh:
		if _, _, depth, ok := cam.Project(pos); ok {
			*meshes = append(*meshes, drawItem{obj: o, pos: pos, depth: depth})
		}
	case KindPoints, KindLineSegments, KindLine, KindArrow:
		*rest = append(*rest, drawItem{obj: o, pos: pos})
	}
	for _, c := range o.Children {
		collect(c, pos, cam, meshes, rest)
	}
}

func (r *Renderer) setColor(c Color, opacity float32) {
	r.dc.SetRGBA(float64(c.R), float64(c.G), float64(c.B), float64(opacity))
}

func materialOf(o *Object) *Material {
	if o.Material == nil {
		return &Material{Color: White, Opacity: 1}
	}
	return o.Material
}

func (r *Renderer) drawMesh(it drawItem, cam *Camera) {
	x, y, depth, _ := cam.Project(it.pos)
	px, py := r.ToPixel(x, y)
	radius := float64(cam.ProjectRadius(it.obj.Radius, depth) * float32(r.height) / 2)
	if radius < 0.5 {
		radius = 0.5
	}
	m := materialOf(it.obj)
	r.setColor(m.Color, m.Opacity)
	r.dc.DrawCircle(px, py, radius)
	_ = r.dc.Fill()
}

func (r *Renderer) drawPoints(o *Object, offset Vec3, cam *Camera) {
	g := o.Geometry
	if g == nil {
		return
	}
	m := materialOf(o)
	size := float64(o.Size)
	if size <= 0 {
		size = 1
	}
	r.setColor(m.Color, m.Opacity)
	for i := 0; i < g.DrawCount(); i++ {
		x, y, _, ok := cam.Project(offset.Add(g.Vertex(i)))
		if !ok {
			continue
		}
		px, py := r.ToPixel(x, y)
		r.dc.DrawCircle(px, py, size/2)
	}
	_ = r.dc.Fill()
}

func (r *Renderer) drawLines(o *Object, offset Vec3, cam *Camera, step int) {
	g := o.Geometry
	if g == nil {
		return
	}
	m := materialOf(o)
	r.dc.SetLineWidth(1)
	for i := 0; i+1 < g.DrawCount(); i += step {
		ax, ay, _, okA := cam.Project(offset.Add(g.Vertex(i)))
		bx, by, _, okB := cam.Project(offset.Add(g.Vertex(i + 1)))
		if !okA || !okB {
			continue
		}
		c := m.Color
		if m.VertexColors {
			c = g.VertexColor(i)
		}
		r.setColor(c, m.Opacity)
		x1, y1 := r.ToPixel(ax, ay)
		x2, y2 := r.ToPixel(bx, by)
		r.dc.DrawLine(x1, y1, x2, y2)
		_ = r.dc.Stroke()
	}
}

func (r *Renderer) drawArrow(o *Object, cam *Camera) {
	end := o.Position.Add(o.Direction.Scale(o.Length))
	ax, ay, _, okA := cam.Project(o.Position.Add(o.Direction.Scale(cam.Near * 1.01)))
	bx, by, _, okB := cam.Project(end)
	if !okA || !okB {
		return
	}
	m := materialOf(o)
	r.setColor(m.Color, m.Opacity)
	r.dc.SetLineWidth(1)
	x1, y1 := r.ToPixel(ax, ay)
	x2, y2 := r.ToPixel(bx, by)
	r.dc.DrawLine(x1, y1, x2, y2)
	_ = r.dc.Stroke()
}

// Present marks the current frame as shown.
func (r *Renderer) Present() {
	if !r.closed {
		r.frames++
	}
}

// Frames returns the number of presented frames.
func (r *Renderer) Frames() uint64 { return r.frames }

// Image returns the current frame.
func (r *Renderer) Image() image.Image { return r.dc.Image() }

// EncodeJPEG writes the current frame as JPEG.
func (r *Renderer) EncodeJPEG(w io.Writer, quality int) error {
	if r.closed {
		return ErrRendererClosed
	}
	return r.dc.EncodeJPEG(w, quality)
}

// Close releases the drawing context. Close is idempotent.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.dc.Close()
}

// Closed reports whether Close was called.
func (r *Renderer) Closed() bool { return r.closed }
