package scene

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ayusman/abhinaya/internal/engine"
)

type fakeScene struct {
	Base
	renders int
}

func newFake(id ID, opts Options) *fakeScene {
	cam := engine.NewPerspective(50, 1, 0.1, 100)
	return &fakeScene{Base: NewBase(id, cam, NewOrbit(1, 1, 1, 1), opts.Width, opts.Height)}
}

func (f *fakeScene) Activate(w *engine.Window) {
	f.Base.Activate(w)
	f.Listen(engine.EventPointerDown, func(engine.Event) {})
}

func (f *fakeScene) Render() error {
	if !f.Active() {
		return nil
	}
	f.renders++
	return nil
}

func fakeFactory(id ID) Factory {
	return func(ctx context.Context, opts Options) (Pipeline, error) {
		return newFake(id, opts), nil
	}
}

// gatedFactory blocks construction until gate is closed.
func gatedFactory(id ID, gate <-chan struct{}, built chan<- *fakeScene, calls *atomic.Int32) Factory {
	return func(ctx context.Context, opts Options) (Pipeline, error) {
		calls.Add(1)
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		p := newFake(id, opts)
		built <- p
		return p, nil
	}
}

func nextResult(t *testing.T, s *Switcher) Result {
	t.Helper()
	select {
	case r := <-s.Results():
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for construction")
	}
	return Result{}
}

func TestZoom_Converges(t *testing.T) {
	z := Zoom{Current: 75, Target: 40, Speed: 0.01}

	prev := z.Current
	for i := 0; i < 1000; i++ {
		cur := z.Advance()
		if cur > prev {
			t.Fatalf("tick %d: fov moved away from target: %f -> %f", i, prev, cur)
		}
		if cur < 40 {
			t.Fatalf("tick %d: fov overshot target: %f", i, cur)
		}
		prev = cur
	}
	if z.Current > 40.01 {
		t.Errorf("fov after 1000 ticks = %f, want close to 40", z.Current)
	}
}

func TestZoom_TargetClamped(t *testing.T) {
	z := NewZoom(40)
	for i := 0; i < 20; i++ {
		z.In()
	}
	if z.Target != MinFov {
		t.Errorf("target = %f, want %d", z.Target, MinFov)
	}
	for i := 0; i < 40; i++ {
		z.Out()
	}
	if z.Target != MaxFov {
		t.Errorf("target = %f, want %d", z.Target, MaxFov)
	}
	if z.Current != 40 {
		t.Errorf("zoom commands must not snap current: %f", z.Current)
	}
}

func TestOrbit_Advance(t *testing.T) {
	o := NewOrbit(5, 0.1, 0.131, 0.122)
	cam := engine.NewPerspective(40, 1, 1, 200)

	o.Advance(cam)

	rad := func(d float64) float64 { return d * math.Pi / 180 }
	want := []float64{
		5 * math.Sin(rad(0.1)),
		5 * math.Sin(rad(0.131)),
		5 * math.Cos(rad(0.122)),
	}
	got := []float32{cam.Position.X, cam.Position.Y, cam.Position.Z}
	for i := range want {
		if math.Abs(float64(got[i])-want[i]) > 1e-4 {
			t.Errorf("axis %d = %f, want %f", i, got[i], want[i])
		}
	}
	if cam.Target != (engine.Vec3{}) {
		t.Errorf("camera target = %v, want origin", cam.Target)
	}

	o.Stopped = true
	before := o.Angle
	o.Advance(cam)
	if o.Angle != before {
		t.Error("stopped orbit advanced its angles")
	}
}

func TestSwitcher_NoListenerAccumulation(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Scene1, fakeFactory(Scene1))
	reg.Register(Scene2, fakeFactory(Scene2))

	w := engine.NewWindow(320, 240)
	s := NewSwitcher(reg, w)
	ctx := context.Background()

	var history []Pipeline
	for _, id := range []ID{Scene1, Scene2, Scene1} {
		if err := s.SwitchTo(ctx, id); err != nil {
			t.Fatalf("SwitchTo(%s) error = %v", id, err)
		}
		active := s.Active()
		history = append(history, active)

		if s.ActiveID() != id {
			t.Errorf("active = %s, want %s", s.ActiveID(), id)
		}
		if n := w.ListenerCount(""); n != 2 {
			t.Errorf("after %s: %d listeners registered, want 2", id, n)
		}
		if w.Canvas() != active.Renderer() {
			t.Errorf("after %s: window canvas is not the active renderer", id)
		}
	}

	for i, p := range history[:len(history)-1] {
		if p.Active() {
			t.Errorf("pipeline %d still active", i)
		}
		if !p.Renderer().Closed() {
			t.Errorf("pipeline %d renderer not released", i)
		}
	}
	if history[0] == history[2] {
		t.Error("returning to scene1 should build a fresh pipeline")
	}

	s.Close()
	if n := w.ListenerCount(""); n != 0 {
		t.Errorf("after Close: %d listeners, want 0", n)
	}
}

func TestSwitcher_LoadFailureKeepsActive(t *testing.T) {
	loadErr := errors.New("boom")
	reg := NewRegistry()
	reg.Register(Scene1, fakeFactory(Scene1))
	reg.Register(Scene2, func(context.Context, Options) (Pipeline, error) {
		return nil, loadErr
	})

	w := engine.NewWindow(320, 240)
	s := NewSwitcher(reg, w)
	ctx := context.Background()

	if err := s.SwitchTo(ctx, Scene1); err != nil {
		t.Fatalf("SwitchTo(scene1) error = %v", err)
	}
	first := s.Active()

	err := s.SwitchTo(ctx, Scene2)
	if !errors.Is(err, ErrSceneLoad) || !errors.Is(err, loadErr) {
		t.Fatalf("SwitchTo(scene2) error = %v, want ErrSceneLoad wrapping cause", err)
	}
	if s.Active() != first || !first.Active() {
		t.Error("previous pipeline should stay installed and active")
	}
	if _, pending := s.Pending(); pending {
		t.Error("failed request should not stay pending")
	}

	err = s.SwitchTo(ctx, "scene9")
	if !errors.Is(err, ErrSceneLoad) || !errors.Is(err, ErrUnknownScene) {
		t.Errorf("SwitchTo(scene9) error = %v, want ErrUnknownScene", err)
	}
}

func TestSwitcher_SupersededIsDisposed(t *testing.T) {
	gate1 := make(chan struct{})
	gate2 := make(chan struct{})
	built := make(chan *fakeScene, 4)
	var calls atomic.Int32

	reg := NewRegistry()
	reg.Register(Scene1, gatedFactory(Scene1, gate1, built, &calls))
	reg.Register(Scene2, gatedFactory(Scene2, gate2, built, &calls))

	w := engine.NewWindow(320, 240)
	s := NewSwitcher(reg, w)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slow := s.Request(ctx, Scene2)
	fast := s.Request(ctx, Scene1)
	if fast <= slow {
		t.Fatalf("tokens not increasing: %d then %d", slow, fast)
	}

	close(gate1)
	r := nextResult(t, s)
	if r.Token != fast {
		t.Fatalf("first result token = %d, want %d", r.Token, fast)
	}
	if err := s.Complete(r); err != nil {
		t.Fatalf("Complete(latest) error = %v", err)
	}

	close(gate2)
	r = nextResult(t, s)
	err := s.Complete(r)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Complete(stale) error = %v, want ErrSuperseded", err)
	}
	stale := r.Pipeline.(*fakeScene)
	if stale.Active() || !stale.Renderer().Closed() {
		t.Error("superseded pipeline should be disposed without activation")
	}

	if s.ActiveID() != Scene1 {
		t.Errorf("active = %s, want scene1", s.ActiveID())
	}
	if n := w.ListenerCount(""); n != 2 {
		t.Errorf("%d listeners registered, want 2", n)
	}
}

func TestSwitcher_CoalescesPendingRequest(t *testing.T) {
	gate := make(chan struct{})
	built := make(chan *fakeScene, 4)
	var calls atomic.Int32

	reg := NewRegistry()
	reg.Register(Scene2, gatedFactory(Scene2, gate, built, &calls))

	s := NewSwitcher(reg, engine.NewWindow(320, 240))
	ctx := context.Background()

	a := s.Request(ctx, Scene2)
	b := s.Request(ctx, Scene2)
	if a != b {
		t.Errorf("tokens = %d, %d; want the same token", a, b)
	}
	if id, ok := s.Pending(); !ok || id != Scene2 {
		t.Errorf("Pending() = %s, %v; want scene2, true", id, ok)
	}

	close(gate)
	if err := s.Complete(nextResult(t, s)); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("factory called %d times, want 1", n)
	}
}

func TestBase_InactiveIsNoop(t *testing.T) {
	p := newFake(Scene1, Options{Width: 100, Height: 100})

	p.ZoomIn()
	if p.Zoom().Target != 50 {
		t.Error("zoom changed on a pipeline that was never activated")
	}

	w := engine.NewWindow(100, 100)
	p.Activate(w)
	p.ZoomIn()
	if p.Zoom().Target != 45 {
		t.Errorf("target = %f, want 45", p.Zoom().Target)
	}

	p.Disable()
	p.Disable()
	p.ZoomOut()
	if p.Zoom().Target != 45 {
		t.Error("zoom changed after Disable")
	}
	if err := p.Render(); err != nil || p.renders != 0 {
		t.Errorf("Render() after Disable = %v, renders = %d", err, p.renders)
	}

	p.Activate(w)
	if p.Active() {
		t.Error("a disposed pipeline must not reactivate")
	}
}

func TestSwitcher_CloseDisposesUncollectedBuild(t *testing.T) {
	gate := make(chan struct{})
	close(gate)
	built := make(chan *fakeScene, 1)
	var calls atomic.Int32

	reg := NewRegistry()
	reg.Register(Scene1, gatedFactory(Scene1, gate, built, &calls))
	s := NewSwitcher(reg, engine.NewWindow(320, 240))

	s.Request(context.Background(), Scene1)
	var p *fakeScene
	select {
	case p = <-built:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for construction")
	}

	s.Close()
	if p.Active() || !p.Renderer().Closed() {
		t.Error("uncollected pipeline should be disposed by Close")
	}
	select {
	case r := <-s.Results():
		t.Errorf("result for %s left after Close", r.ID)
	default:
	}
}

func TestSwitcher_CancelledBuildIsDisposed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	built := make(chan *fakeScene, 1)

	reg := NewRegistry()
	reg.Register(Scene1, func(_ context.Context, opts Options) (Pipeline, error) {
		p := newFake(Scene1, opts)
		built <- p
		cancel()
		return p, nil
	})
	s := NewSwitcher(reg, engine.NewWindow(320, 240))

	s.Request(ctx, Scene1)
	s.Close()

	p := <-built
	if !p.Renderer().Closed() {
		t.Error("build finished after cancel should be disposed")
	}
	select {
	case r := <-s.Results():
		t.Errorf("cancelled build delivered a result for %s", r.ID)
	default:
	}
}

func TestRegistry_BuildErrorDisposesPipeline(t *testing.T) {
	loadErr := errors.New("half built")
	var partial *fakeScene

	reg := NewRegistry()
	reg.Register(Scene2, func(_ context.Context, opts Options) (Pipeline, error) {
		partial = newFake(Scene2, opts)
		return partial, loadErr
	})

	p, err := reg.Build(context.Background(), Scene2, Options{Width: 10, Height: 10})
	if !errors.Is(err, loadErr) {
		t.Fatalf("Build() error = %v, want %v", err, loadErr)
	}
	if p != nil {
		t.Errorf("Build() pipeline = %v, want nil", p)
	}
	if !partial.Renderer().Closed() {
		t.Error("pipeline returned with an error should be disposed")
	}
}
