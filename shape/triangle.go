package shape

import (
	"math"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/thread"
)

const triangleDepthTolerance = 1e-8

// Triangle is a flat triangle: plane intersection, then a Moller-style
// edge-sign test performed in the projection onto the dominant axis
// chosen at construction to maximise projected area.
type Triangle struct {
	base
	P1, P2, P3 pmath.Vec3
	normal     pmath.Vec3
	dominant   int // 0=x,1=y,2=z — axis dropped when projecting to 2D
	swapped    bool
	degenerate bool
}

func NewTriangle(p1, p2, p3 pmath.Vec3) *Triangle {
	t := &Triangle{P1: p1, P2: p2, P3: p3}
	t.computeNormalAndDominantAxis()
	return t
}

func (t *Triangle) computeNormalAndDominantAxis() {
	e1 := t.P2.Sub(t.P1)
	e2 := t.P3.Sub(t.P1)
	n := e1.Cross(e2)
	lenSq := n.Dot(n)
	if lenSq < 1e-18 {
		t.degenerate = true
		t.base.flags |= FlagDegenerate
		return
	}
	t.normal = n.Normalize()

	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		t.dominant = 0
	case ay >= ax && ay >= az:
		t.dominant = 1
	default:
		t.dominant = 2
	}

	// Normalise vertex winding so the projected edge tests have a
	// consistent sign, recording whether a swap occurred.
	u1, v1 := t.project(t.P1)
	u2, v2 := t.project(t.P2)
	u3, v3 := t.project(t.P3)
	area2 := (u2-u1)*(v3-v1) - (u3-u1)*(v2-v1)
	if area2 < 0 {
		t.P2, t.P3 = t.P3, t.P2
		t.swapped = true
	}
}

func (t *Triangle) project(p pmath.Vec3) (float64, float64) {
	switch t.dominant {
	case 0:
		return p.Y, p.Z
	case 1:
		return p.X, p.Z
	default:
		return p.X, p.Y
	}
}

func (t *Triangle) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	return t.intersectAs(t, r, stk, th)
}

// intersectAs runs the triangle intersection test but records obj (rather
// than t itself) as the hit's Object, so SmoothTriangle can embed Triangle
// and still have its own Normal dispatched via the interface.
func (t *Triangle) intersectAs(obj Object, r ray.Ray, stk *IStack, th *thread.State) bool {
	if t.degenerate {
		return false
	}
	if !rayHitsBound(obj.Bound(), r, th) {
		return false
	}
	mark := stk.Len()

	nd := t.normal.Dot(r.Direction)
	if math.Abs(nd) < 1e-12 {
		return false
	}
	d := -t.normal.Dot(t.P1)
	dist := -(t.normal.Dot(r.Origin) + d) / nd
	if dist <= triangleDepthTolerance || dist >= maxDistance {
		return false
	}

	hitPoint := r.At(dist)
	pu, pv := t.project(hitPoint)
	u1, v1 := t.project(t.P1)
	u2, v2 := t.project(t.P2)
	u3, v3 := t.project(t.P3)

	if !sameSideEdge(pu, pv, u1, v1, u2, v2) ||
		!sameSideEdge(pu, pv, u2, v2, u3, v3) ||
		!sameSideEdge(pu, pv, u3, v3, u1, v1) {
		return false
	}

	if !passesClips(t.clips, hitPoint, th) {
		return false
	}
	stk.Push(Intersection{Depth: dist, Point: hitPoint, Object: obj})
	return stk.Len() > mark
}

// sameSideEdge reports whether point (px,py) is on the inward side (or on)
// the edge from (ax,ay) to (bx,by), given the consistent CCW winding
// established at construction.
func sameSideEdge(px, py, ax, ay, bx, by float64) bool {
	cross := (bx-ax)*(py-ay) - (by-ay)*(px-ax)
	return cross >= -1e-12
}

func (t *Triangle) Inside(p pmath.Vec3, th *thread.State) bool {
	// A triangle has zero volume; treat "inside" as the plane side test,
	// used only when a triangle appears as a clip object.
	side := t.normal.Dot(p.Sub(t.P1))
	inside := side < 0
	if t.flags.Has(FlagInverted) {
		return !inside
	}
	return inside
}

func (t *Triangle) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	return t.normal
}

func (t *Triangle) BoundingBox() AABB {
	min := t.P1.MinElem(t.P2).MinElem(t.P3)
	max := t.P1.MaxElem(t.P2).MaxElem(t.P3)
	return AABB{Min: min, Max: max}
}

var _ Object = (*Triangle)(nil)
