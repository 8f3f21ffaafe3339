package engine

import "math/rand/v2"

// Pass is one step of a post-processing chain.
type Pass interface {
	Apply(r *Renderer, g *Graph, cam *Camera) error
}

// Composer runs passes in order against a renderer.
type Composer struct {
	renderer *Renderer
	passes   []Pass
	// RenderToScreen presents the frame after the last pass.
	RenderToScreen bool
}

// NewComposer returns a composer that presents its output.
func NewComposer(r *Renderer) *Composer {
	return &Composer{renderer: r, RenderToScreen: true}
}

// AddPass appends p to the chain.
func (c *Composer) AddPass(p Pass) {
	c.passes = append(c.passes, p)
}

// Passes returns the chain.
func (c *Composer) Passes() []Pass { return c.passes }

// Render applies every pass.
func (c *Composer) Render(g *Graph, cam *Camera) error {
	for _, p := range c.passes {
		if err := p.Apply(c.renderer, g, cam); err != nil {
			return err
		}
	}
	if c.RenderToScreen {
		c.renderer.Present()
	}
	return nil
}

// RenderPass rasterizes the graph.
type RenderPass struct{}

func (RenderPass) Apply(r *Renderer, g *Graph, cam *Camera) error {
	return r.Render(g, cam)
}

// Glow is a projected bright disc captured by a BloomPass.
type Glow struct {
	X, Y   float64
	Radius float64
	Color  Color
}

// BloomPass captures the meshes brighter than Threshold. It does not draw;
// a MixPass composites the captured glows onto the final frame.
type BloomPass struct {
	Strength  float32
	Radius    float32
	Threshold float32

	glows []Glow
}

// NewBloomPass returns a bloom pass with the given parameters.
func NewBloomPass(strength, radius, threshold float32) *BloomPass {
	return &BloomPass{Strength: strength, Radius: radius, Threshold: threshold}
}

func (b *BloomPass) Apply(r *Renderer, g *Graph, cam *Camera) error {
	b.glows = b.glows[:0]
	g.Traverse(func(o *Object) {
		if o.Kind != KindMesh || !o.Visible || o.Material == nil {
			return
		}
		if o.Material.Color.Luminance() <= b.Threshold {
			return
		}
		x, y, depth, ok := cam.Project(o.Position)
		if !ok {
			return
		}
		px, py := r.ToPixel(x, y)
		radius := float64(cam.ProjectRadius(o.Radius, depth) * float32(r.height) / 2)
		b.glows = append(b.glows, Glow{X: px, Y: py, Radius: radius, Color: o.Material.Color})
	})
	return nil
}

// Glows returns what the last Apply captured.
func (b *BloomPass) Glows() []Glow { return b.glows }

// MixPass draws the glows of a BloomPass on top of the frame.
type MixPass struct {
	Bloom *BloomPass
}

func (m MixPass) Apply(r *Renderer, _ *Graph, _ *Camera) error {
	if m.Bloom == nil || m.Bloom.Strength <= 0 {
		return nil
	}
	dc := r.Context()
	spread := 1 + float64(m.Bloom.Radius)*2
	alpha := float64(m.Bloom.Strength) * 0.35
	if alpha > 1 {
		alpha = 1
	}
	for _, gl := range m.Bloom.glows {
		dc.SetRGBA(float64(gl.Color.R), float64(gl.Color.G), float64(gl.Color.B), alpha)
		dc.DrawCircle(gl.X, gl.Y, gl.Radius*spread)
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// GlitchPass displaces random horizontal bands. It fires at random
// intervals, or on every frame when GoWild is set.
type GlitchPass struct {
	GoWild bool

	rng    *rand.Rand
	frame  int
	nextAt int
	count  int
}

// NewGlitchPass returns a glitch pass seeded with seed.
func NewGlitchPass(seed uint64) *GlitchPass {
	p := &GlitchPass{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
	p.nextAt = p.interval()
	return p
}

func (p *GlitchPass) interval() int {
	return 120 + p.rng.IntN(120)
}

// Glitches returns how many frames have been corrupted.
func (p *GlitchPass) Glitches() int { return p.count }

func (p *GlitchPass) Apply(r *Renderer, _ *Graph, _ *Camera) error {
	p.frame++
	if !p.GoWild && p.frame < p.nextAt {
		return nil
	}
	if p.frame >= p.nextAt {
		p.frame = 0
		p.nextAt = p.interval()
	}
	p.count++

	dc := r.Context()
	w, h := r.Size()
	bands := 3
	if p.GoWild {
		bands = 8
	}
	for i := 0; i < bands; i++ {
		y := p.rng.Float64() * float64(h)
		bh := 2 + p.rng.Float64()*float64(h)/20
		shift := (p.rng.Float64() - 0.5) * float64(w) / 5
		dc.SetRGBA(p.rng.Float64(), p.rng.Float64(), p.rng.Float64(), 0.5)
		dc.DrawRectangle(shift, y, float64(w), bh)
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	return nil
}
