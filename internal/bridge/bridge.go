// Package bridge turns landmark frames into render-graph geometry. Each
// category (face, left hand, right hand) owns a fixed-capacity
// VisualBuffer that is rewritten in place every frame.
package bridge

import (
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/landmark"
)

// Category is a landmark group with its own buffer.
type Category int

const (
	Face Category = iota
	LeftHand
	RightHand
	numCategories
)

func (c Category) String() string {
	switch c {
	case Face:
		return "face"
	case LeftHand:
		return "left_hand"
	case RightHand:
		return "right_hand"
	}
	return "unknown"
}

// Style is the look of a category's points.
type Style struct {
	Color     engine.Color
	Opacity   float32
	PointSize float32
}

// Config controls projection and buffer sizing.
type Config struct {
	// SourceWidth and SourceHeight are the pixel dimensions of the
	// tracking backend's camera frames.
	SourceWidth  float64
	SourceHeight float64
	// FaceScale and HandScale multiply the projected coordinates per axis.
	FaceScale engine.Vec3
	HandScale engine.Vec3

	FaceCapacity int
	HandCapacity int

	FaceAxisLength float32
	HandAxisLength float32

	FaceStyle Style
	HandStyle Style
	// StrokeColor is the color of drawn polylines.
	StrokeColor engine.Color
}

// DefaultConfig returns the settings used by the tracking backend.
func DefaultConfig() Config {
	return Config{
		SourceWidth:    640,
		SourceHeight:   480,
		FaceScale:      engine.V3(1, 1, 1),
		HandScale:      engine.V3(0.5, 0.5, 1),
		FaceCapacity:   landmark.MaxFaceLandmarks,
		HandCapacity:   landmark.MaxHandLandmarks,
		FaceAxisLength: 0.005,
		HandAxisLength: 0.02,
		FaceStyle:      Style{Color: engine.Hex(0x00ff00), Opacity: 0.8, PointSize: 1},
		HandStyle:      Style{Color: engine.Hex(0xff0000), Opacity: 0.8, PointSize: 5},
		StrokeColor:    engine.Hex(0x0000ff),
	}
}

// Fingertips are the projected index fingertips of the current frame.
// A nil field means the hand is absent or too short to have one.
type Fingertips struct {
	Left  *engine.Vec3
	Right *engine.Vec3
}

// Bridge writes frames into the visual buffers of one render graph.
type Bridge struct {
	cfg     Config
	graph   *engine.Graph
	buffers [numCategories]*VisualBuffer
	tips    [numCategories]engine.Vec3

	stroke *engine.Object
}

// New returns a bridge drawing into g. g may be nil until Rebind.
func New(cfg Config, g *engine.Graph) *Bridge {
	return &Bridge{cfg: cfg, graph: g}
}

// Graph returns the graph the bridge draws into.
func (b *Bridge) Graph() *engine.Graph { return b.graph }

// Buffer returns the buffer of c, or nil when c was absent from the last frame.
func (b *Bridge) Buffer(c Category) *VisualBuffer { return b.buffers[c] }

// Update applies f: present categories are rewritten, absent ones are
// disposed. It returns the projected fingertips of the hands in f.
func (b *Bridge) Update(f *landmark.Frame) Fingertips {
	var tips Fingertips
	b.apply(Face, f.Face)
	if b.apply(LeftHand, f.Hand(landmark.Left)) {
		tips.Left = &b.tips[LeftHand]
	}
	if b.apply(RightHand, f.Hand(landmark.Right)) {
		tips.Right = &b.tips[RightHand]
	}
	return tips
}

// apply updates one category and reports whether it has a fingertip.
func (b *Bridge) apply(c Category, lms []landmark.Point3D) bool {
	if len(lms) == 0 {
		b.release(c)
		return false
	}
	if b.graph == nil {
		return false
	}

	buf := b.buffers[c]
	if buf == nil {
		buf = b.newBuffer(c)
		buf.attach(b.graph)
		b.buffers[c] = buf
	}

	scale := b.cfg.HandScale
	if c == Face {
		scale = b.cfg.FaceScale
	}

	var center engine.Vec3
	for _, p := range lms {
		center = center.Add(b.project(p, scale))
	}
	center = center.Scale(1 / float32(len(lms)))

	n := min(len(lms), buf.Capacity())
	for i := 0; i < n; i++ {
		buf.set(i, b.project(lms[i], scale).Sub(center))
	}
	buf.finish(n)

	if c == Face || n <= landmark.IndexTip {
		return false
	}
	b.tips[c] = buf.Position(landmark.IndexTip)
	return true
}

func (b *Bridge) newBuffer(c Category) *VisualBuffer {
	if c == Face {
		return newVisualBuffer(b.cfg.FaceCapacity, b.cfg.FaceAxisLength, b.cfg.FaceStyle)
	}
	return newVisualBuffer(b.cfg.HandCapacity, b.cfg.HandAxisLength, b.cfg.HandStyle)
}

// project maps a source-pixel landmark into normalized device space.
func (b *Bridge) project(p landmark.Point3D, scale engine.Vec3) engine.Vec3 {
	x := (p.X/b.cfg.SourceWidth*2 - 1) * float64(scale.X)
	y := -(p.Y/b.cfg.SourceHeight*2 - 1) * float64(scale.Y)
	z := p.Z * float64(scale.Z)
	return engine.V3(float32(x), float32(y), float32(z))
}

func (b *Bridge) release(c Category) {
	if buf := b.buffers[c]; buf != nil {
		buf.dispose(b.graph)
		b.buffers[c] = nil
	}
}

// Rebind disposes every buffer and the stroke in progress and starts
// drawing into g. Buffers are recreated by the next frame.
func (b *Bridge) Rebind(g *engine.Graph) {
	for c := range b.buffers {
		b.release(Category(c))
	}
	b.EndStroke()
	b.graph = g
}

// AppendStroke extends the polyline being drawn, starting one if needed.
func (b *Bridge) AppendStroke(p engine.Vec3) {
	if b.graph == nil {
		return
	}
	if b.stroke == nil {
		b.stroke = engine.NewObject(engine.KindLine)
		b.stroke.Name = "stroke"
		b.stroke.Geometry = engine.NewGeometry(0, false)
		b.stroke.Material = engine.NewMaterial(b.cfg.StrokeColor)
		b.graph.Add(b.stroke)
	}
	b.stroke.Geometry.Append(p)
	b.stroke.Geometry.MarkDirty()
}

// EndStroke finishes the polyline. Finished strokes stay in the graph.
func (b *Bridge) EndStroke() {
	b.stroke = nil
}

// Stroke returns the polyline being drawn, or nil.
func (b *Bridge) Stroke() *engine.Object { return b.stroke }
