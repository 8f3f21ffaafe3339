package engine

import "github.com/google/uuid"

// Kind identifies how an object is drawn and hit-tested.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindPoints
	KindLineSegments
	KindLine
	KindArrow
	KindLight
)

// Layers is a bitmask of render layers. Objects start on layer 0.
type Layers uint32

func (l *Layers) Set(n int)         { *l = 1 << n }
func (l *Layers) Enable(n int)      { *l |= 1 << n }
func (l *Layers) Disable(n int)     { *l &^= 1 << n }
func (l *Layers) Toggle(n int)      { *l ^= 1 << n }
func (l Layers) Has(n int) bool     { return l&(1<<n) != 0 }
func (l Layers) Test(o Layers) bool { return l&o != 0 }

// Material is the surface appearance of an object.
type Material struct {
	Color   Color
	Opacity float32
	// VertexColors makes line and point objects use per-vertex colors.
	VertexColors bool
}

// NewMaterial returns an opaque material of the given color.
func NewMaterial(c Color) *Material {
	return &Material{Color: c, Opacity: 1}
}

// Object is a node of the render graph.
type Object struct {
	ID       uuid.UUID
	Name     string
	Kind     Kind
	Position Vec3
	Visible  bool
	Layers   Layers
	Material *Material
	Geometry *Geometry

	// Radius is the bounding sphere radius of a mesh.
	Radius float32
	// Size is the on-screen point size in pixels for KindPoints.
	Size float32
	// Direction and Length describe a KindArrow.
	Direction Vec3
	Length    float32
	// Intensity applies to KindLight.
	Intensity float32

	Children []*Object
}

// NewObject returns a visible object on layer 0 with a fresh ID.
func NewObject(kind Kind) *Object {
	return &Object{
		ID:      uuid.New(),
		Kind:    kind,
		Visible: true,
		Layers:  1,
	}
}

// NewSphere returns a mesh with the given radius and color.
func NewSphere(radius float32, c Color) *Object {
	o := NewObject(KindMesh)
	o.Radius = radius
	o.Material = NewMaterial(c)
	return o
}

// NewArrow returns an arrow helper from origin along dir.
func NewArrow(dir, origin Vec3, length float32, c Color) *Object {
	o := NewObject(KindArrow)
	o.Position = origin
	o.Direction = dir.Normalize()
	o.Length = length
	o.Material = NewMaterial(c)
	return o
}

// Add appends child objects.
func (o *Object) Add(children ...*Object) {
	o.Children = append(o.Children, children...)
}

// Traverse calls fn for o and every descendant, depth first.
func (o *Object) Traverse(fn func(*Object)) {
	fn(o)
	for _, c := range o.Children {
		c.Traverse(fn)
	}
}

// Dispose releases the geometry of o and its descendants.
func (o *Object) Dispose() {
	o.Traverse(func(obj *Object) {
		if obj.Geometry != nil {
			obj.Geometry.Dispose()
		}
	})
}
