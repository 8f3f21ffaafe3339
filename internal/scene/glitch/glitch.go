// Package glitch implements scene2: random-walk line art watched by a slow
// orbiting camera, with an optional glitch post-process.
package glitch

import (
	"context"
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/scene"
)

const (
	lineCount  = 50
	walkLength = 50
	walkStep   = 10

	markerRadius  = 5
	lineThreshold = 3
)

// Scene is the glitch pipeline.
type Scene struct {
	scene.Base

	lines   *engine.Object
	marker  *engine.Object
	pointer [2]float32

	composer *engine.Composer
	glitch   *engine.GlitchPass
	wild     bool
}

// Register adds scene2 to reg.
func Register(reg *scene.Registry) {
	reg.Register(scene.Scene2, New)
}

// New builds an inactive glitch scene.
func New(ctx context.Context, opts scene.Options) (scene.Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cam := engine.NewPerspective(70, 1, 1, 10000)
	s := &Scene{
		Base: scene.NewBase(scene.Scene2, cam, scene.NewOrbit(1.2, 0.1, 0.1, 0.1), opts.Width, opts.Height),
	}
	s.Graph().Background = engine.Hex(0xf0f0f0)

	s.marker = engine.NewSphere(markerRadius, engine.Hex(0xff0000))
	s.marker.Visible = false
	s.Graph().Add(s.marker)

	s.lines = buildLines(randomWalk())
	s.Graph().Add(s.lines)
	return s, nil
}

func randomWalk() []engine.Vec3 {
	points := make([]engine.Vec3, 0, walkLength)
	var point, dir engine.Vec3
	for i := 0; i < walkLength; i++ {
		dir = dir.Add(engine.V3(rand.Float32()-0.5, rand.Float32()-0.5, rand.Float32()-0.5))
		dir = dir.Normalize().Scale(walkStep)
		point = point.Add(dir)
		points = append(points, point)
	}
	return points
}

// transform scales, rotates and then translates v.
type transform struct {
	pos, rot, scale engine.Vec3
}

func randomTransform(spread float32) transform {
	return transform{
		pos:   engine.V3(rand.Float32()*spread*2-spread, rand.Float32()*spread*2-spread, rand.Float32()*spread*2-spread),
		rot:   engine.V3(rand.Float32()*2*math32.Pi, rand.Float32()*2*math32.Pi, rand.Float32()*2*math32.Pi),
		scale: engine.V3(rand.Float32()+0.5, rand.Float32()+0.5, rand.Float32()+0.5),
	}
}

func (t transform) apply(v engine.Vec3) engine.Vec3 {
	return v.Mul(t.scale).RotateEuler(t.rot.X, t.rot.Y, t.rot.Z).Add(t.pos)
}

// buildLines places copies of the walk under a shared parent. The engine
// has no per-object rotation or scale, so both transforms are baked into
// each copy's vertices and the parent keeps only a position.
func buildLines(walk []engine.Vec3) *engine.Object {
	parentT := randomTransform(20)
	parent := engine.NewObject(engine.KindGroup)
	parent.Name = "lines"
	parent.Position = parentT.pos
	parentT.pos = engine.Vec3{}

	for i := 0; i < lineCount; i++ {
		kind := engine.KindLineSegments
		if rand.Float32() > 0.5 {
			kind = engine.KindLine
		}
		obj := engine.NewObject(kind)
		obj.Material = engine.NewMaterial(engine.Hex(rand.Uint32N(0xffffff)))
		obj.Geometry = engine.NewGeometry(len(walk), false)

		objT := randomTransform(200)
		for j, v := range walk {
			w := parentT.apply(objT.apply(v))
			copy(obj.Geometry.Positions[j*3:], []float32{w.X, w.Y, w.Z})
		}
		parent.Add(obj)
	}
	return parent
}

// Activate attaches the scene and tracks the pointer.
func (s *Scene) Activate(w *engine.Window) {
	s.Base.Activate(w)
	s.Listen(engine.EventPointerMove, s.onPointerMove)
}

// Disable drops the post-process chain and tears the scene down.
func (s *Scene) Disable() {
	s.composer = nil
	s.glitch = nil
	s.Base.Disable()
}

func (s *Scene) onPointerMove(ev engine.Event) {
	if !s.Active() {
		return
	}
	s.pointer[0], s.pointer[1] = s.Window().PointerNDC(ev.X, ev.Y)
}

// Render highlights the line under the pointer and draws the frame,
// through the glitch chain when one is set up.
func (s *Scene) Render() error {
	if !s.Active() {
		return nil
	}
	s.pick()

	if s.composer != nil {
		return s.composer.Render(s.Graph(), s.Camera())
	}
	if err := s.Renderer().Render(s.Graph(), s.Camera()); err != nil {
		return err
	}
	s.Renderer().Present()
	return nil
}

func (s *Scene) pick() {
	origin, dir := s.Camera().Ray(s.pointer[0], s.pointer[1])
	rc := engine.NewRaycaster(origin, dir)
	rc.LineThreshold = lineThreshold

	hits := rc.Intersect([]*engine.Object{s.lines}, true)
	if len(hits) == 0 {
		s.marker.Visible = false
		return
	}
	s.marker.Visible = true
	s.marker.Position = hits[0].Point
}

func (s *Scene) initPostProcessing() {
	s.composer = engine.NewComposer(s.Renderer())
	s.composer.AddPass(engine.RenderPass{})
	s.glitch = engine.NewGlitchPass(rand.Uint64())
	s.composer.AddPass(s.glitch)
}

// NormalGlitch installs a fresh glitch chain at standard intensity.
func (s *Scene) NormalGlitch() {
	if !s.Active() {
		return
	}
	s.initPostProcessing()
	s.wild = false
}

// WildGlitch switches the glitch to maximum intensity, setting the chain
// up first if needed.
func (s *Scene) WildGlitch() {
	if !s.Active() {
		return
	}
	if s.glitch == nil {
		s.initPostProcessing()
	}
	s.glitch.GoWild = true
	s.wild = true
}

// CameraStop freezes the orbit and drops the glitch chain.
func (s *Scene) CameraStop() {
	if !s.Active() || s.Orbit().Stopped {
		return
	}
	s.Orbit().Stopped = true
	s.composer = nil
	s.glitch = nil
	s.wild = false
}

// CameraResume restarts the orbit.
func (s *Scene) CameraResume() {
	if s.Active() {
		s.Orbit().Stopped = false
	}
}

// Glitching reports whether a glitch chain is set up and whether it is wild.
func (s *Scene) Glitching() (on, wild bool) {
	return s.composer != nil, s.wild
}
