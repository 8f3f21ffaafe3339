package engine

import (
	"bytes"
	"math"
	"testing"
)

const epsilon = 1e-4

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestLayers(t *testing.T) {
	var l Layers = 1
	l.Enable(1)
	if !l.Has(0) || !l.Has(1) {
		t.Fatalf("layers = %b, want bits 0 and 1", l)
	}
	l.Disable(1)
	if l.Has(1) {
		t.Error("bit 1 still set after Disable")
	}
	l.Toggle(1)
	if !l.Has(1) {
		t.Error("bit 1 not set after Toggle")
	}
	var bloom Layers
	bloom.Set(1)
	if !l.Test(bloom) {
		t.Error("Test() = false, want true")
	}
}

func TestCamera_ProjectCenter(t *testing.T) {
	cam := NewPerspective(60, 1, 0.1, 100)
	cam.Position = V3(0, 0, 10)
	cam.LookAt(Vec3{})

	x, y, depth, ok := cam.Project(Vec3{})
	if !ok {
		t.Fatal("origin should be visible")
	}
	if !near(x, 0) || !near(y, 0) || !near(depth, 10) {
		t.Errorf("Project(origin) = (%f, %f, %f), want (0, 0, 10)", x, y, depth)
	}

	if _, _, _, ok := cam.Project(V3(0, 0, 20)); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestCamera_RayThroughCenter(t *testing.T) {
	cam := NewPerspective(40, 16.0/9, 1, 200)
	cam.Position = V3(0, 0, 20)
	cam.LookAt(Vec3{})

	origin, dir := cam.Ray(0, 0)
	if origin != cam.Position {
		t.Errorf("origin = %v, want camera position", origin)
	}
	if !near(dir.X, 0) || !near(dir.Y, 0) || !near(dir.Z, -1) {
		t.Errorf("dir = %v, want (0, 0, -1)", dir)
	}
}

func TestRaycaster_Sphere(t *testing.T) {
	a := NewSphere(1, White)
	a.Position = V3(0, 0, -5)
	b := NewSphere(1, White)
	b.Position = V3(0, 0, -10)

	rc := NewRaycaster(Vec3{}, V3(0, 0, -1))
	hits := rc.Intersect([]*Object{b, a}, false)
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].Object != a {
		t.Error("nearest hit should be the closer sphere")
	}
	if !near(hits[0].Distance, 4) {
		t.Errorf("distance = %f, want 4", hits[0].Distance)
	}

	rc.Far = 3
	if hits := rc.Intersect([]*Object{a}, false); len(hits) != 0 {
		t.Errorf("expected no hits beyond far, got %d", len(hits))
	}
}

func TestRaycaster_LineThreshold(t *testing.T) {
	line := NewObject(KindLine)
	line.Geometry = NewGeometry(2, false)
	copy(line.Geometry.Positions, []float32{-5, 0.5, -10, 5, 0.5, -10})

	parent := NewObject(KindGroup)
	parent.Add(line)

	rc := NewRaycaster(Vec3{}, V3(0, 0, -1))
	if hits := rc.Intersect([]*Object{parent}, false); len(hits) != 0 {
		t.Error("non-recursive intersect should skip children")
	}
	hits := rc.Intersect([]*Object{parent}, true)
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	if !near(hits[0].Point.Y, 0.5) {
		t.Errorf("hit point = %v, want y=0.5", hits[0].Point)
	}

	rc.LineThreshold = 0.1
	if hits := rc.Intersect([]*Object{parent}, true); len(hits) != 0 {
		t.Error("expected miss with tight threshold")
	}
}

func TestGeometry_DrawRangeAndDispose(t *testing.T) {
	g := NewGeometry(4, true)
	if g.Capacity() != 4 || g.DrawCount() != 4 {
		t.Fatalf("capacity/draw = %d/%d, want 4/4", g.Capacity(), g.DrawCount())
	}
	g.SetDrawRange(10)
	if g.DrawCount() != 4 {
		t.Errorf("draw range not clamped: %d", g.DrawCount())
	}
	g.MarkDirty()
	if g.Version() != 1 {
		t.Errorf("version = %d, want 1", g.Version())
	}
	g.Dispose()
	if !g.Disposed() || g.DrawCount() != 0 {
		t.Error("geometry not released")
	}
}

func TestGraph_RemoveIf(t *testing.T) {
	g := NewGraph()
	s := NewSphere(1, White)
	a1 := NewArrow(V3(0, 0, -1), Vec3{}, 10, White)
	a2 := NewArrow(V3(0, 1, 0), Vec3{}, 10, White)
	g.Add(a1, s, a2)

	removed := g.RemoveIf(func(o *Object) bool { return o.Kind == KindArrow })
	if len(removed) != 2 {
		t.Errorf("removed %d, want 2", len(removed))
	}
	if g.Len() != 1 || !g.Contains(s) {
		t.Error("sphere should remain")
	}
}

func TestWindow_Listeners(t *testing.T) {
	w := NewWindow(100, 50)

	var order []int
	id1 := w.AddListener(EventResize, func(Event) { order = append(order, 1) })
	w.AddListener(EventResize, func(Event) { order = append(order, 2) })
	w.AddListener(EventPointerDown, func(Event) { order = append(order, 3) })

	if n := w.ListenerCount(EventResize); n != 2 {
		t.Errorf("resize listeners = %d, want 2", n)
	}
	if n := w.ListenerCount(""); n != 3 {
		t.Errorf("total listeners = %d, want 3", n)
	}

	w.Dispatch(Event{Type: EventResize, Width: 200, Height: 100})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("dispatch order = %v, want [1 2]", order)
	}
	if width, height := w.Size(); width != 200 || height != 100 {
		t.Errorf("size = %dx%d, want 200x100", width, height)
	}

	if !w.RemoveListener(id1) {
		t.Error("RemoveListener() = false, want true")
	}
	if w.RemoveListener(id1) {
		t.Error("second RemoveListener() = true, want false")
	}
}

func TestWindow_AttachDetach(t *testing.T) {
	w := NewWindow(10, 10)
	r1 := NewRenderer(10, 10)
	r2 := NewRenderer(10, 10)
	defer r1.Close()
	defer r2.Close()

	w.Attach(r1)
	w.Detach(r2)
	if w.Canvas() != r1 {
		t.Error("detaching a different renderer must not remove the canvas")
	}
	w.Detach(r1)
	if w.Canvas() != nil {
		t.Error("canvas should be nil after detach")
	}
}

func TestRenderer_RenderAndEncode(t *testing.T) {
	r := NewRenderer(64, 48)
	g := NewGraph()
	g.Background = Hex(0x101010)
	g.Add(NewSphere(1, Hex(0xff0000)))

	cam := NewPerspective(60, 64.0/48, 0.1, 100)
	cam.Position = V3(0, 0, 5)
	cam.LookAt(Vec3{})

	c := NewComposer(r)
	c.AddPass(RenderPass{})
	if err := c.Render(g, cam); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if r.Frames() != 1 {
		t.Errorf("frames = %d, want 1", r.Frames())
	}

	var buf bytes.Buffer
	if err := r.EncodeJPEG(&buf, 70); err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty JPEG")
	}

	r.Close()
	if err := r.Render(g, cam); err != ErrRendererClosed {
		t.Errorf("Render() after Close error = %v, want ErrRendererClosed", err)
	}
}

func TestBloomPass_Threshold(t *testing.T) {
	g := NewGraph()
	bright := NewSphere(1, White)
	dark := NewSphere(1, Black)
	dark.Position = V3(2, 0, 0)
	g.Add(bright, dark)

	cam := NewPerspective(60, 1, 0.1, 100)
	cam.Position = V3(0, 0, 10)

	r := NewRenderer(32, 32)
	defer r.Close()
	b := NewBloomPass(1, 0.5, 0)
	if err := b.Apply(r, g, cam); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(b.Glows()) != 1 {
		t.Errorf("glows = %d, want 1", len(b.Glows()))
	}
}

func TestDragControls(t *testing.T) {
	d := NewDragControls(0.5)
	d.Drag(10, 10)
	if d.AngleY != 0 {
		t.Error("drag without start should not rotate")
	}
	d.Start(0, 0)
	d.Drag(0, 100000)
	if !near(d.AngleX, math.Pi/2) {
		t.Errorf("pitch = %f, want clamped to pi/2", d.AngleX)
	}
	d.Stop()
	d.Wheel(1)
	if !near(d.Distance, 0.6) {
		t.Errorf("distance = %f, want 0.6", d.Distance)
	}

	cam := NewPerspective(75, 1, 0.1, 1000)
	d.Apply(cam)
	if !near(cam.Position.Len(), 0.6) {
		t.Errorf("camera distance = %f, want 0.6", cam.Position.Len())
	}
}

func TestGlitchPass_Wild(t *testing.T) {
	r := NewRenderer(32, 32)
	defer r.Close()
	p := NewGlitchPass(1)
	for i := 0; i < 5; i++ {
		if err := p.Apply(r, nil, nil); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}
	if p.Glitches() != 0 {
		t.Errorf("calm pass glitched after 5 frames: %d", p.Glitches())
	}
	p.GoWild = true
	for i := 0; i < 5; i++ {
		_ = p.Apply(r, nil, nil)
	}
	if p.Glitches() != 5 {
		t.Errorf("glitches = %d, want 5", p.Glitches())
	}
}
