package shape

import (
	"math"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/thread"
)

const discDepthTolerance = 1e-6

// Disc is a planar annulus: ray-plane intersection followed by a radial
// test in local (u,v) coordinates.
type Disc struct {
	base
	Center             pmath.Vec3
	normal             pmath.Vec3
	InnerRadius, OuterRadius float64
	basisU, basisV     pmath.Vec3
}

func NewDisc(center, normal pmath.Vec3, innerRadius, outerRadius float64) *Disc {
	n := normal.Normalize()
	u, v := orthonormalBasis(n)
	return &Disc{Center: center, normal: n, InnerRadius: innerRadius, OuterRadius: outerRadius, basisU: u, basisV: v}
}

func orthonormalBasis(n pmath.Vec3) (pmath.Vec3, pmath.Vec3) {
	var helper pmath.Vec3
	if math.Abs(n.X) < 0.9 {
		helper = pmath.Vec3Right
	} else {
		helper = pmath.Vec3Up
	}
	u := helper.Cross(n).Normalize()
	v := n.Cross(u)
	return u, v
}

func (d *Disc) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	if !rayHitsBound(d.bound, r, th) {
		return false
	}
	mark := stk.Len()
	nd := d.normal.Dot(r.Direction)
	if math.Abs(nd) < 1e-12 {
		return false
	}
	t := d.normal.Dot(d.Center.Sub(r.Origin)) / nd
	if t <= discDepthTolerance || t >= maxDistance {
		return false
	}
	hitPoint := r.At(t)
	local := hitPoint.Sub(d.Center)
	u := local.Dot(d.basisU)
	v := local.Dot(d.basisV)
	r2 := u*u + v*v
	if r2 < d.InnerRadius*d.InnerRadius || r2 > d.OuterRadius*d.OuterRadius {
		return false
	}
	if !passesClips(d.clips, hitPoint, th) {
		return false
	}
	stk.Push(Intersection{Depth: t, Point: hitPoint, Object: d, U: u, V: v, HasUV: true})
	return stk.Len() > mark
}

func (d *Disc) Inside(p pmath.Vec3, th *thread.State) bool {
	// A disc has zero thickness; "inside" follows the plane side test used
	// by clip objects that happen to be discs.
	side := d.normal.Dot(p.Sub(d.Center))
	inside := side < 0
	if d.flags.Has(FlagInverted) {
		return !inside
	}
	return inside
}

func (d *Disc) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	return d.normal
}

func (d *Disc) BoundingBox() AABB {
	r := pmath.NewVec3(d.OuterRadius, d.OuterRadius, d.OuterRadius)
	return AABB{Min: d.Center.Sub(r), Max: d.Center.Add(r)}
}

var _ Object = (*Disc)(nil)
