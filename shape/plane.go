package shape

import (
	"math"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/thread"
)

// planeDepthTolerance is this primitive's own DEPTH_TOLERANCE, kept
// distinct from every other primitive's per spec's explicit instruction
// not to unify to a single global epsilon.
const planeDepthTolerance = 1e-6

// Plane is the infinite half-space n.p + d = 0.
type Plane struct {
	base
	normal pmath.Vec3 // unit length
	D      float64
}

func NewPlane(normal pmath.Vec3, d float64) *Plane {
	return &Plane{normal: normal.Normalize(), D: d}
}

func (p *Plane) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	if !rayHitsBound(p.bound, r, th) {
		return false
	}
	mark := stk.Len()
	nd := p.normal.Dot(r.Direction)
	if math.Abs(nd) < 1e-12 {
		return false
	}
	t := -(p.normal.Dot(r.Origin) + p.D) / nd
	if t <= planeDepthTolerance || t >= maxDistance {
		return false
	}
	hitPoint := r.At(t)
	if !passesClips(p.clips, hitPoint, th) {
		return false
	}
	stk.Push(Intersection{Depth: t, Point: hitPoint, Object: p})
	return stk.Len() > mark
}

func (p *Plane) Inside(pt pmath.Vec3, th *thread.State) bool {
	side := p.normal.Dot(pt) + p.D
	inside := side < 0
	if p.flags.Has(FlagInverted) {
		return !inside
	}
	return inside
}

func (p *Plane) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	return p.normal
}

func (p *Plane) BoundingBox() AABB {
	return InfiniteAABB()
}

var _ Object = (*Plane)(nil)
