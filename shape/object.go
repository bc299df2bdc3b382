// Package shape implements the object hierarchy: leaf primitives (plane,
// sphere/ellipsoid, quadric, disc, triangle, smooth triangle, polygon,
// isosurface, parametric) and CSG compounds (union, intersection, merge),
// all behind one uniform Object capability interface.
package shape

import (
	"povcore/interior"
	pmath "povcore/math"
	"povcore/pattern"
	"povcore/ray"
	"povcore/thread"
)

// Flags is a bitmask of per-object ray-type suppression and behavioural
// toggles (spec §4.1 "Flags").
type Flags uint16

const (
	FlagInverted Flags = 1 << iota
	FlagNoShadow
	FlagNoImage
	FlagNoReflection
	FlagNoRadiosity
	FlagNoPhoton
	FlagDegenerate
	FlagHollow
)

// Has reports whether every bit in mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// AABB is an axis-aligned bounding box in world space. EmptyAABB has Min at
// +infinity and Max at -infinity on every axis and InfiniteAABB the reverse,
// where infinity is the finite 1e17 sentinel below.
type AABB struct {
	Min, Max pmath.Vec3
}

const infinity = 1e17

// maxDistance bounds every primitive's intersection search; POV-Ray's own
// MAX_DISTANCE plays the identical role of rejecting intersections beyond
// any sane scene scale.
const maxDistance = 1e7

func EmptyAABB() AABB {
	return AABB{Min: pmath.NewVec3(infinity, infinity, infinity), Max: pmath.NewVec3(-infinity, -infinity, -infinity)}
}

func InfiniteAABB() AABB {
	return AABB{Min: pmath.NewVec3(-infinity, -infinity, -infinity), Max: pmath.NewVec3(infinity, infinity, infinity)}
}

func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.MinElem(o.Min), Max: b.Max.MaxElem(o.Max)}
}

func (b AABB) Intersect(o AABB) AABB {
	return AABB{Min: b.Min.MaxElem(o.Min), Max: b.Max.MinElem(o.Max)}
}

// Volume returns the box volume, or 0 for an empty/degenerate box (any
// non-positive extent); used by the CSG intersection-monotonicity test.
func (b AABB) Volume() float64 {
	d := b.Max.Sub(b.Min)
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		return 0
	}
	return d.X * d.Y * d.Z
}

func (b AABB) Contains(p pmath.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Transformed returns the AABB of this box after being carried through m;
// since an AABB is not itself rotation-invariant, this conservatively
// re-encloses all 8 transformed corners.
func (b AABB) Transformed(m pmath.Mat4) AABB {
	if b.Volume() == 0 && b.Min.X >= infinity {
		return b
	}
	out := EmptyAABB()
	for i := 0; i < 8; i++ {
		corner := pmath.NewVec3(
			pick(i&1 != 0, b.Min.X, b.Max.X),
			pick(i&2 != 0, b.Min.Y, b.Max.Y),
			pick(i&4 != 0, b.Min.Z, b.Max.Z),
		)
		wc := m.MulVec3(corner)
		out.Min = out.Min.MinElem(wc)
		out.Max = out.Max.MaxElem(wc)
	}
	return out
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return b
	}
	return a
}

// AffineTransform is the forward/inverse matrix pair every primitive and
// compound carries. The inverse is precomputed once at construction/
// transform time rather than re-derived per ray.
type AffineTransform struct {
	Forward pmath.Mat4
	Inverse pmath.Mat4
}

func IdentityTransform() AffineTransform {
	return AffineTransform{Forward: pmath.Mat4Identity(), Inverse: pmath.Mat4Identity()}
}

func NewAffineTransform(forward pmath.Mat4) AffineTransform {
	return AffineTransform{Forward: forward, Inverse: forward.Inverse()}
}

// Combine composes an additional forward transform, recomputing Inverse.
func (a AffineTransform) Combine(additional pmath.Mat4) AffineTransform {
	fwd := additional.Mul(a.Forward)
	return AffineTransform{Forward: fwd, Inverse: fwd.Inverse()}
}

// Intersection is one hit record, as produced by all_intersections and
// consumed by CSG evaluation and shading.
type Intersection struct {
	Depth  float64
	Point  pmath.Vec3
	Object Object
	U, V   float64
	HasUV  bool
	Entry  bool // true if this is a front-facing (entering) hit
	Parent Object
}

// Object is the uniform capability interface every leaf primitive and
// every CSG compound implements.
type Object interface {
	// AllIntersections pushes every valid hit onto stk and reports whether
	// at least one was pushed. Implementations must leave stk balanced on
	// every return path (testable property 1).
	AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool

	// Inside is the strict inside test in world space, already reflecting
	// this object's inversion flag.
	Inside(p pmath.Vec3, th *thread.State) bool

	// Normal returns the unit surface normal at the given intersection.
	Normal(hit Intersection, th *thread.State) pmath.Vec3

	BoundingBox() AABB

	GetFlags() Flags
	SetFlags(Flags)

	Clips() []Object
	SetClips([]Object)

	Texture() *Texture
	SetTexture(*Texture)

	Interior() *interior.Interior
	SetInterior(*interior.Interior)

	// Bound is an optional accelerating object (BOUNDED_BY): if set, a
	// ray that misses it is guaranteed to miss this object too, and the
	// primitive's own (usually more expensive) intersection test can be
	// skipped entirely. Distinct from Clips, which discard hits rather
	// than skip work.
	Bound() Object
	SetBound(Object)

	// IsLightSourceProxy reports whether this object exists purely to
	// carry a light source with no real geometry; CSG intersection tests
	// skip such siblings per spec §4.2.
	IsLightSourceProxy() bool
}

// Texture bundles the pigment/normal-perturbation pattern pair a surface
// shades with; the render package consumes it, this package only carries
// the reference.
type Texture struct {
	Name    string
	Pigment *pattern.Pattern
	Normal  *pattern.Pattern
	Bump    float64
}

// base is embedded by every concrete leaf/compound type to provide the
// common flags/clips/texture/interior bookkeeping without repeating it.
type base struct {
	flags    Flags
	clips    []Object
	texture  *Texture
	interior *interior.Interior
	bound    Object
}

func (b *base) GetFlags() Flags       { return b.flags }
func (b *base) SetFlags(f Flags)      { b.flags = f }
func (b *base) Clips() []Object       { return b.clips }
func (b *base) SetClips(c []Object)   { b.clips = c }
func (b *base) Texture() *Texture     { return b.texture }
func (b *base) SetTexture(t *Texture) { b.texture = t }
func (b *base) Interior() *interior.Interior  { return b.interior }
func (b *base) SetInterior(in *interior.Interior) { b.interior = in }
func (b *base) Bound() Object             { return b.bound }
func (b *base) SetBound(o Object)         { b.bound = o }
func (b *base) IsLightSourceProxy() bool  { return false }

// passesClips reports whether world-space point p lies inside every clip
// object attached to this primitive (spec §4.1 "Clipping").
func passesClips(clips []Object, p pmath.Vec3, th *thread.State) bool {
	for _, c := range clips {
		if !c.Inside(p, th) {
			return false
		}
	}
	return true
}

// rayHitsBound reports whether r intersects bound at all. A nil bound always
// passes, meaning the primitive's own intersection test runs unconditionally.
// This is a pre-dispatch accelerator: it is checked before the primitive does
// any of its own (usually costlier) ray-intersection math, unlike Clips,
// which is checked after a hit point is already computed.
func rayHitsBound(bound Object, r ray.Ray, th *thread.State) bool {
	if bound == nil {
		return true
	}
	stk := AcquireIStack()
	defer ReleaseIStack(stk)
	return bound.AllIntersections(r, stk, th)
}
