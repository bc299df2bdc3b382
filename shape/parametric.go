package shape

import (
	"math"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/thread"
)

const parametricDepthTolerance = 1e-6

// ParametricSurface is {x(u,v), y(u,v), z(u,v)} over domain
// [UMin,UMax]x[VMin,VMax], traced via a precomputed tree of per-axis
// interval bounds so that ray/cell tests can prune whole (u,v) regions.
type ParametricSurface struct {
	base
	X, Y, Z func(u, v float64) float64

	UMin, UMax, VMin, VMax float64
	Accuracy               float64
	MaxSplits              int

	root *paramCell
}

// paramCell is one node of the (u,v)-domain subdivision tree: its bounds
// are the per-axis [min,max] of X,Y,Z sampled over a coarse grid of the
// cell, cached once at construction.
type paramCell struct {
	u0, u1, v0, v1 float64
	bbox           AABB
	left, right    *paramCell
}

func NewParametricSurface(x, y, z func(u, v float64) float64, uMin, uMax, vMin, vMax float64) *ParametricSurface {
	p := &ParametricSurface{X: x, Y: y, Z: z, UMin: uMin, UMax: uMax, VMin: vMin, VMax: vMax, Accuracy: 0.001, MaxSplits: 24}
	p.root = p.buildCell(uMin, uMax, vMin, vMax, 0)
	return p
}

func (p *ParametricSurface) evalPoint(u, v float64) pmath.Vec3 {
	return pmath.NewVec3(p.X(u, v), p.Y(u, v), p.Z(u, v))
}

func (p *ParametricSurface) cellBBox(u0, u1, v0, v1 float64) AABB {
	box := EmptyAABB()
	const grid = 4
	for i := 0; i <= grid; i++ {
		for j := 0; j <= grid; j++ {
			u := u0 + (u1-u0)*float64(i)/grid
			v := v0 + (v1-v0)*float64(j)/grid
			pt := p.evalPoint(u, v)
			box.Min = box.Min.MinElem(pt)
			box.Max = box.Max.MaxElem(pt)
		}
	}
	// Pad slightly: the coarse grid may miss extrema between samples.
	pad := pmath.NewVec3(1e-4, 1e-4, 1e-4)
	box.Min = box.Min.Sub(pad)
	box.Max = box.Max.Add(pad)
	return box
}

func (p *ParametricSurface) buildCell(u0, u1, v0, v1 float64, depth int) *paramCell {
	cell := &paramCell{u0: u0, u1: u1, v0: v0, v1: v1, bbox: p.cellBBox(u0, u1, v0, v1)}
	largerSpan := math.Max(u1-u0, v1-v0)
	if depth >= p.MaxSplits || largerSpan < p.Accuracy {
		return cell
	}
	if (u1 - u0) >= (v1 - v0) {
		mid := (u0 + u1) / 2
		cell.left = p.buildCell(u0, mid, v0, v1, depth+1)
		cell.right = p.buildCell(mid, u1, v0, v1, depth+1)
	} else {
		mid := (v0 + v1) / 2
		cell.left = p.buildCell(u0, u1, v0, mid, depth+1)
		cell.right = p.buildCell(u0, u1, mid, v1, depth+1)
	}
	return cell
}

// rayBoxHit returns the entry distance along the ray into box, or an ok=
// false if the ray misses it.
func rayBoxHit(o, invD pmath.Vec3, box AABB) (float64, bool) {
	tmin, tmax := -math.MaxFloat64, math.MaxFloat64
	axes := [3][2]float64{{o.X, invD.X}, {o.Y, invD.Y}, {o.Z, invD.Z}}
	bmin := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	bmax := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}
	for i := 0; i < 3; i++ {
		oi, invDi := axes[i][0], axes[i][1]
		t1 := (bmin[i] - oi) * invDi
		t2 := (bmax[i] - oi) * invDi
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func (p *ParametricSurface) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	if !rayHitsBound(p.bound, r, th) {
		return false
	}
	mark := stk.Len()
	invD := pmath.NewVec3(safeInv(r.Direction.X), safeInv(r.Direction.Y), safeInv(r.Direction.Z))

	best := math.MaxFloat64
	var bestU, bestV float64
	var bestPoint pmath.Vec3
	found := false

	var walk func(cell *paramCell)
	walk = func(cell *paramCell) {
		if cell == nil {
			return
		}
		t, ok := rayBoxHit(r.Origin, invD, cell.bbox)
		if !ok || t >= best {
			return
		}
		if cell.left == nil && cell.right == nil {
			// Leaf: take the cell's (u,v) midpoint as the surface point and
			// rank it by its depth along the ray; no further refinement or
			// distance-to-ray check is made.
			mu := (cell.u0 + cell.u1) / 2
			mv := (cell.v0 + cell.v1) / 2
			pt := p.evalPoint(mu, mv)
			depth := pointRayDepth(r, pt)
			if depth > parametricDepthTolerance && depth < best {
				best = depth
				bestU, bestV = mu, mv
				bestPoint = pt
				found = true
			}
			return
		}
		walk(cell.left)
		walk(cell.right)
	}
	walk(p.root)

	if !found || best >= maxDistance {
		return false
	}
	if !passesClips(p.clips, bestPoint, th) {
		return false
	}
	stk.Push(Intersection{Depth: best, Point: bestPoint, Object: p, U: bestU, V: bestV, HasUV: true})
	return stk.Len() > mark
}

func safeInv(v float64) float64 {
	if v == 0 {
		return math.MaxFloat64
	}
	return 1 / v
}

// pointRayDepth returns the parametric t of the closest approach of pt to
// the ray's line, used to rank candidate surface points found by the
// subdivision walk.
func pointRayDepth(r ray.Ray, pt pmath.Vec3) float64 {
	return pt.Sub(r.Origin).Dot(r.Direction)
}

func (p *ParametricSurface) Inside(pt pmath.Vec3, th *thread.State) bool {
	return false
}

// Normal is the cross product of the forward-difference partials
// dP/du x dP/dv at the hit's (u,v), per spec §4.1.
func (p *ParametricSurface) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	const h = 1e-4
	u, v := hit.U, hit.V
	p0 := p.evalPoint(u, v)
	pu := p.evalPoint(u+h, v)
	pv := p.evalPoint(u, v+h)
	du := pu.Sub(p0)
	dv := pv.Sub(p0)
	n := du.Cross(dv)
	if n.NearZero(1e-12) {
		return pmath.Vec3Up
	}
	return n.Normalize()
}

func (p *ParametricSurface) BoundingBox() AABB {
	return p.root.bbox
}

var _ Object = (*ParametricSurface)(nil)
