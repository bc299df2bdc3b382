package shape

import (
	"math"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/thread"
)

const polygonDepthTolerance = 1e-8

// Polygon is a coplanar, possibly non-convex simple polygon. Construction
// verifies coplanarity; a non-coplanar or collinear-degenerate polygon is
// flagged and skipped rather than causing incorrect hits (spec §4.1,
// §7 numerical-breakdown local recovery).
type Polygon struct {
	base
	Vertices []pmath.Vec3
	normal   pmath.Vec3
	d        float64
	dominant int
	degenerate bool
}

func NewPolygon(vertices []pmath.Vec3) *Polygon {
	p := &Polygon{Vertices: vertices}
	p.computePlane()
	return p
}

func (p *Polygon) computePlane() {
	if len(p.Vertices) < 3 {
		p.degenerate = true
		p.base.flags |= FlagDegenerate
		return
	}
	v0, v1, v2 := p.Vertices[0], p.Vertices[1], p.Vertices[2]
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	if n.Dot(n) < 1e-18 {
		p.degenerate = true
		p.base.flags |= FlagDegenerate
		return
	}
	p.normal = n.Normalize()
	p.d = -p.normal.Dot(v0)

	// Coplanarity check: every further vertex must lie on the same plane.
	for _, v := range p.Vertices[3:] {
		if math.Abs(p.normal.Dot(v)+p.d) > 1e-6 {
			p.degenerate = true
			p.base.flags |= FlagDegenerate
			return
		}
	}

	ax, ay, az := math.Abs(p.normal.X), math.Abs(p.normal.Y), math.Abs(p.normal.Z)
	switch {
	case ax >= ay && ax >= az:
		p.dominant = 0
	case ay >= ax && ay >= az:
		p.dominant = 1
	default:
		p.dominant = 2
	}
}

func (p *Polygon) project(v pmath.Vec3) (float64, float64) {
	switch p.dominant {
	case 0:
		return v.Y, v.Z
	case 1:
		return v.X, v.Z
	default:
		return v.X, v.Y
	}
}

// crossingsInclusion implements the standard even-odd crossings test for
// inclusion in a (possibly non-convex) simple polygon in 2D.
func crossingsInclusion(px, py float64, poly [][2]float64) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := poly[i][0], poly[i][1]
		xj, yj := poly[j][0], poly[j][1]
		if (yi > py) != (yj > py) {
			xIntersect := (xj-xi)*(py-yi)/(yj-yi) + xi
			if px < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

func (p *Polygon) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	if p.degenerate {
		return false
	}
	if !rayHitsBound(p.bound, r, th) {
		return false
	}
	mark := stk.Len()

	nd := p.normal.Dot(r.Direction)
	if math.Abs(nd) < 1e-12 {
		return false
	}
	t := -(p.normal.Dot(r.Origin) + p.d) / nd
	if t <= polygonDepthTolerance || t >= maxDistance {
		return false
	}

	hitPoint := r.At(t)
	pu, pv := p.project(hitPoint)

	poly2D := make([][2]float64, len(p.Vertices))
	for i, v := range p.Vertices {
		u, w := p.project(v)
		poly2D[i] = [2]float64{u, w}
	}
	if !crossingsInclusion(pu, pv, poly2D) {
		return false
	}
	if !passesClips(p.clips, hitPoint, th) {
		return false
	}
	stk.Push(Intersection{Depth: t, Point: hitPoint, Object: p})
	return stk.Len() > mark
}

func (p *Polygon) Inside(pt pmath.Vec3, th *thread.State) bool {
	side := p.normal.Dot(pt) + p.d
	inside := side < 0
	if p.flags.Has(FlagInverted) {
		return !inside
	}
	return inside
}

func (p *Polygon) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	return p.normal
}

func (p *Polygon) BoundingBox() AABB {
	box := EmptyAABB()
	for _, v := range p.Vertices {
		box.Min = box.Min.MinElem(v)
		box.Max = box.Max.MaxElem(v)
	}
	return box
}

var _ Object = (*Polygon)(nil)
