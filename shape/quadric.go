package shape

import (
	"math"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/thread"
)

const quadricDepthTolerance = 1e-6

// Quadric is the general second-degree surface
// Ax^2+Ey^2+Hz^2+Bxy+Cxz+Fyz+Dx+Gy+Iz+J=0.
type Quadric struct {
	base
	A, B, C, D, E, F, G, H, I, J float64
	Transform                    AffineTransform
	Clip                         AABB // used as the bbox when no axis-aligned special case applies
}

func NewQuadric(a, b, c, d, e, f, g, h, i, j float64) *Quadric {
	return &Quadric{A: a, B: b, C: c, D: d, E: e, F: f, G: g, H: h, I: i, J: j,
		Transform: IdentityTransform(), Clip: InfiniteAABB()}
}

func (q *Quadric) coeffsAlong(o, d pmath.Vec3) (a, b, c float64) {
	a = q.A*d.X*d.X + q.E*d.Y*d.Y + q.H*d.Z*d.Z +
		q.B*d.X*d.Y + q.C*d.X*d.Z + q.F*d.Y*d.Z

	b = q.A*2*o.X*d.X + q.E*2*o.Y*d.Y + q.H*2*o.Z*d.Z +
		q.B*(o.X*d.Y+o.Y*d.X) + q.C*(o.X*d.Z+o.Z*d.X) + q.F*(o.Y*d.Z+o.Z*d.Y) +
		q.D*d.X + q.G*d.Y + q.I*d.Z

	c = q.A*o.X*o.X + q.E*o.Y*o.Y + q.H*o.Z*o.Z +
		q.B*o.X*o.Y + q.C*o.X*o.Z + q.F*o.Y*o.Z +
		q.D*o.X + q.G*o.Y + q.I*o.Z + q.J
	return
}

func (q *Quadric) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	if !rayHitsBound(q.bound, r, th) {
		return false
	}
	mark := stk.Len()
	o := q.Transform.Inverse.MulVec3(r.Origin)
	dEnd := q.Transform.Inverse.MulVec3(r.Origin.Add(r.Direction))
	d := dEnd.Sub(o)
	scale := d.Length()
	if scale < 1e-15 {
		return false
	}
	d = d.Mul(1 / scale)

	a, b, c := q.coeffsAlong(o, d)
	// coeffsAlong returns the full linear coefficient; the root formulas
	// below use the half-b form a t^2 + 2b t + c = 0.
	b /= 2

	var roots [2]float64
	var n int
	if math.Abs(a) < 1e-12 {
		if math.Abs(b) < 1e-12 {
			return false
		}
		roots[0] = -c / (2 * b)
		n = 1
	} else {
		disc := b*b - a*c
		if disc < 0 {
			return false
		}
		sq := math.Sqrt(disc)
		roots[0] = (-b - sq) / a
		roots[1] = (-b + sq) / a
		n = 2
	}

	for k := 0; k < n; k++ {
		t := roots[k] / scale
		if t <= quadricDepthTolerance || t >= maxDistance {
			continue
		}
		hitPoint := r.At(t)
		if !passesClips(q.clips, hitPoint, th) {
			continue
		}
		stk.Push(Intersection{Depth: t, Point: hitPoint, Object: q})
	}
	return stk.Len() > mark
}

func (q *Quadric) Inside(p pmath.Vec3, th *thread.State) bool {
	local := q.Transform.Inverse.MulVec3(p)
	v := q.A*local.X*local.X + q.E*local.Y*local.Y + q.H*local.Z*local.Z +
		q.B*local.X*local.Y + q.C*local.X*local.Z + q.F*local.Y*local.Z +
		q.D*local.X + q.G*local.Y + q.I*local.Z + q.J
	inside := v < 0
	if q.flags.Has(FlagInverted) {
		return !inside
	}
	return inside
}

func (q *Quadric) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	local := q.Transform.Inverse.MulVec3(hit.Point)
	g := pmath.NewVec3(
		2*q.A*local.X+q.B*local.Y+q.C*local.Z+q.D,
		2*q.E*local.Y+q.B*local.X+q.F*local.Z+q.G,
		2*q.H*local.Z+q.C*local.X+q.F*local.Y+q.I,
	)
	n := q.Transform.Forward.InverseTranspose3x3().MulDir(g)
	if n.NearZero(1e-12) {
		return pmath.Vec3Up
	}
	return n.Normalize()
}

// BoundingBox returns the clip-derived bbox; a full catalogue of analytic
// tight bounds per quadric family (ellipsoid/cylinder/cone/hyperboloid/
// paraboloid) is a classification problem orthogonal to intersection
// correctness, so an explicit Clip (set by the constructing code when the
// family is known) stands in for it here.
func (q *Quadric) BoundingBox() AABB {
	if q.Clip.Min.X >= infinity {
		return InfiniteAABB()
	}
	return q.Clip.Transformed(q.Transform.Forward)
}

var _ Object = (*Quadric)(nil)

// NewCylinderQuadric returns an axis-aligned (Y-axis) infinite cylinder of
// the given radius as a quadric, with its clip bbox set to the radius in
// X/Z and infinite in Y.
func NewCylinderQuadric(radius float64) *Quadric {
	q := NewQuadric(1, 0, 0, 0, 0, 0, 0, 1, 0, -radius*radius)
	q.Clip = AABB{
		Min: pmath.NewVec3(-radius, -infinity, -radius),
		Max: pmath.NewVec3(radius, infinity, radius),
	}
	return q
}

// NewConeQuadric returns an axis-aligned (Y-axis) double cone with the
// given half-angle tangent.
func NewConeQuadric(tanHalfAngle float64) *Quadric {
	k := tanHalfAngle * tanHalfAngle
	q := NewQuadric(1, 0, 0, 0, -k, 0, 0, 1, 0, 0)
	q.Clip = InfiniteAABB()
	return q
}
