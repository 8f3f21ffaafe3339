// Package bloom implements scene1: an orbiting field of spheres rendered
// with selective bloom. Pointer clicks and gesture rays toggle which
// spheres glow.
package bloom

import (
	"context"
	"log"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/scene"
)

// Layer is the render layer of objects that glow.
const Layer = 1

const (
	sphereCount  = 100
	sphereRadius = 0.3

	bloomStrength  = 1
	bloomRadius    = 0.5
	bloomThreshold = 0

	// fadeTicks is the length of the bloom fade-in on lights on.
	fadeTicks = 30

	arrowLength = 50
	rayFar      = 100
)

// Scene is the bloom pipeline.
type Scene struct {
	scene.Base

	bloomLayer engine.Layers
	bloomPass  *engine.BloomPass
	bloomComp  *engine.Composer
	finalComp  *engine.Composer

	dark  *engine.Material
	saved map[uuid.UUID]*engine.Material
	fade  *gween.Tween
}

// Register adds scene1 to reg.
func Register(reg *scene.Registry) {
	reg.Register(scene.Scene1, New)
}

// New builds an inactive bloom scene.
func New(ctx context.Context, opts scene.Options) (scene.Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cam := engine.NewPerspective(40, 1, 1, 200)
	cam.Position = engine.V3(0, 0, 20)
	cam.LookAt(engine.Vec3{})

	s := &Scene{
		Base:  scene.NewBase(scene.Scene1, cam, scene.NewOrbit(5, 0.1, 0.131, 0.122), opts.Width, opts.Height),
		dark:  engine.NewMaterial(engine.Black),
		saved: make(map[uuid.UUID]*engine.Material),
	}
	s.bloomLayer.Set(Layer)
	s.initBloom()
	s.populate()
	return s, nil
}

func (s *Scene) initBloom() {
	r := s.Renderer()
	s.bloomPass = engine.NewBloomPass(bloomStrength, bloomRadius, bloomThreshold)

	s.bloomComp = engine.NewComposer(r)
	s.bloomComp.RenderToScreen = false
	s.bloomComp.AddPass(engine.RenderPass{})
	s.bloomComp.AddPass(s.bloomPass)

	s.finalComp = engine.NewComposer(r)
	s.finalComp.AddPass(engine.RenderPass{})
	s.finalComp.AddPass(engine.MixPass{Bloom: s.bloomPass})
}

// populate scatters spheres on a shell between radius 2 and 6.
func (s *Scene) populate() {
	for i := 0; i < sphereCount; i++ {
		c := engine.HSL(rand.Float32(), 0.7, rand.Float32()*0.2+0.05)
		scale := rand.Float32()*rand.Float32() + 0.5

		sphere := engine.NewSphere(sphereRadius*scale, c)
		dir := engine.V3(rand.Float32()*10-5, rand.Float32()*10-5, rand.Float32()*10-5)
		sphere.Position = dir.Normalize().Scale(rand.Float32()*4 + 2)
		sphere.Layers.Enable(Layer)
		s.Graph().Add(sphere)
	}
}

// Activate attaches the scene and listens for resize and pointer clicks.
func (s *Scene) Activate(w *engine.Window) {
	s.Base.Activate(w)
	s.Listen(engine.EventPointerDown, s.onPointerDown)
}

// Render runs the selective bloom: non-glowing meshes are darkened for the
// bloom composer, restored, and the final composer mixes the glow in.
func (s *Scene) Render() error {
	if !s.Active() {
		return nil
	}
	if s.fade != nil {
		v, done := s.fade.Update(1)
		s.bloomPass.Strength = v
		if done {
			s.fade = nil
		}
	}

	s.Graph().Traverse(s.darkenNonBloomed)
	err := s.bloomComp.Render(s.Graph(), s.Camera())
	s.Graph().Traverse(s.restoreMaterial)
	if err != nil {
		return err
	}
	return s.finalComp.Render(s.Graph(), s.Camera())
}

func (s *Scene) darkenNonBloomed(o *engine.Object) {
	if o.Kind == engine.KindMesh && !s.bloomLayer.Test(o.Layers) {
		s.saved[o.ID] = o.Material
		o.Material = s.dark
	}
}

func (s *Scene) restoreMaterial(o *engine.Object) {
	if m, ok := s.saved[o.ID]; ok {
		o.Material = m
		delete(s.saved, o.ID)
	}
}

func (s *Scene) onPointerDown(ev engine.Event) {
	if !s.Active() {
		return
	}
	x, y := s.Window().PointerNDC(ev.X, ev.Y)
	origin, dir := s.Camera().Ray(x, y)
	if hit := s.firstMesh(engine.NewRaycaster(origin, dir)); hit != nil {
		hit.Layers.Toggle(Layer)
	}
}

// firstMesh returns the nearest top-level mesh hit by rc.
func (s *Scene) firstMesh(rc *engine.Raycaster) *engine.Object {
	for _, h := range rc.Intersect(s.Graph().Children(), false) {
		if h.Object.Kind == engine.KindMesh {
			return h.Object
		}
	}
	return nil
}

func (s *Scene) setBloom(on bool) {
	s.Graph().Traverse(func(o *engine.Object) {
		if o.Kind != engine.KindMesh {
			return
		}
		if on {
			o.Layers.Enable(Layer)
		} else {
			o.Layers.Disable(Layer)
		}
	})

	// With the lights off only the layer flip darkens; strength stays full.
	if !on {
		s.fade = nil
		s.bloomPass.Strength = bloomStrength
		return
	}
	s.bloomPass.Strength = 0
	s.fade = gween.New(0, bloomStrength, fadeTicks, ease.OutQuad)
}

// LightsOn puts every mesh back on the bloom layer and fades the glow in.
func (s *Scene) LightsOn() {
	if s.Active() {
		s.setBloom(true)
	}
}

// LightsOff takes every mesh off the bloom layer.
func (s *Scene) LightsOff() {
	if s.Active() {
		s.setBloom(false)
	}
}

// TurnIntersectsOn casts a ray from the camera through the fingertip, marks
// it with an arrow and makes the first sphere hit glow.
func (s *Scene) TurnIntersectsOn(x, y, z float32) {
	if !s.Active() {
		return
	}
	if hit := s.castFingerRay(engine.V3(x, y, z)); hit != nil {
		hit.Layers.Enable(Layer)
	}
}

// TurnIntersectsOff is TurnIntersectsOn but removes the glow.
func (s *Scene) TurnIntersectsOff(x, y, z float32) {
	if !s.Active() {
		return
	}
	if hit := s.castFingerRay(engine.V3(x, y, z)); hit != nil {
		hit.Layers.Disable(Layer)
	}
}

func (s *Scene) castFingerRay(finger engine.Vec3) *engine.Object {
	cam := s.Camera()
	dir := finger.Sub(cam.Position).Normalize()

	arrow := engine.NewArrow(dir, cam.Position, arrowLength, engine.Hex(rand.Uint32N(0xffffff)))
	s.Graph().Add(arrow)

	rc := engine.NewRaycaster(cam.Position, dir)
	rc.Far = rayFar
	hit := s.firstMesh(rc)
	if hit != nil {
		log.Printf("scene1: ray hit %s", hit.ID)
	}
	return hit
}

// RemoveAllArrowHelpers deletes every ray marker.
func (s *Scene) RemoveAllArrowHelpers() {
	if !s.Active() {
		return
	}
	removed := s.Graph().RemoveIf(func(o *engine.Object) bool {
		return o.Kind == engine.KindArrow
	})
	for _, o := range removed {
		o.Dispose()
	}
}

// Strength returns the current bloom strength.
func (s *Scene) Strength() float32 { return s.bloomPass.Strength }
