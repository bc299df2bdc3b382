package shape

import (
	"math"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/thread"
)

const sphereDepthTolerance = 1e-6

// Sphere supports both POV-Ray's spherical fast path and its ellipsoidal
// mode. Uniform scaling mutates Center/Radius directly and keeps Transform
// identity; any non-uniform scale or rotation promotes the sphere to
// ellipsoidal mode, where Transform carries the full affine map from a
// unit sphere at the origin (spec §4.1).
type Sphere struct {
	base
	Center    pmath.Vec3
	Radius    float64
	Transform AffineTransform
	Ellipsoidal bool
}

func NewSphere(center pmath.Vec3, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius, Transform: IdentityTransform()}
}

// Scale mutates Center/Radius directly for a uniform scale factor;
// otherwise it promotes to ellipsoidal mode.
func (s *Sphere) Scale(factor pmath.Vec3) {
	if factor.X == factor.Y && factor.Y == factor.Z {
		s.Center = s.Center.Mul(factor.X)
		s.Radius *= factor.X
		return
	}
	s.promote()
	s.Transform = s.Transform.Combine(pmath.Mat4Scale(factor))
}

func (s *Sphere) Rotate(axis pmath.Vec3, angle float64) {
	s.promote()
	s.Transform = s.Transform.Combine(pmath.Mat4RotationAxis(axis, angle))
}

func (s *Sphere) Translate(delta pmath.Vec3) {
	if !s.Ellipsoidal {
		s.Center = s.Center.Add(delta)
		return
	}
	s.Transform = s.Transform.Combine(pmath.Mat4Translation(delta))
}

func (s *Sphere) promote() {
	if s.Ellipsoidal {
		return
	}
	s.Ellipsoidal = true
	s.Transform = NewAffineTransform(pmath.Mat4Scale(pmath.NewVec3(s.Radius, s.Radius, s.Radius)).Mul(pmath.Mat4Translation(s.Center)))
	s.Center = pmath.Vec3Zero
	s.Radius = 1
}

func (s *Sphere) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	if !rayHitsBound(s.bound, r, th) {
		return false
	}
	mark := stk.Len()

	var o, d pmath.Vec3
	var tScale float64 = 1

	if s.Ellipsoidal {
		o = s.Transform.Inverse.MulVec3(r.Origin)
		dEnd := s.Transform.Inverse.MulVec3(r.Origin.Add(r.Direction))
		d = dEnd.Sub(o)
		tScale = d.Length()
		if tScale < 1e-15 {
			return false
		}
		d = d.Mul(1 / tScale)
	} else {
		o = r.Origin.Sub(s.Center)
		d = r.Direction
	}

	b := o.Dot(d)
	c := o.Dot(o) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return false
	}
	sq := math.Sqrt(disc)

	for _, tLocal := range [2]float64{-b - sq, -b + sq} {
		t := tLocal / tScale
		if t <= sphereDepthTolerance || t >= maxDistance {
			continue
		}
		hitPoint := r.At(t)
		if !passesClips(s.clips, hitPoint, th) {
			continue
		}
		stk.Push(Intersection{Depth: t, Point: hitPoint, Object: s})
	}
	return stk.Len() > mark
}

func (s *Sphere) Inside(p pmath.Vec3, th *thread.State) bool {
	var local pmath.Vec3
	var radius float64
	if s.Ellipsoidal {
		local = s.Transform.Inverse.MulVec3(p)
		radius = 1
	} else {
		local = p.Sub(s.Center)
		radius = s.Radius
	}
	inside := local.Dot(local) < radius*radius
	if s.flags.Has(FlagInverted) {
		return !inside
	}
	return inside
}

func (s *Sphere) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	if !s.Ellipsoidal {
		n := hit.Point.Sub(s.Center)
		if n.NearZero(1e-12) {
			return pmath.Vec3Up
		}
		return n.Normalize()
	}
	local := s.Transform.Inverse.MulVec3(hit.Point)
	n := s.Transform.Forward.InverseTranspose3x3().MulDir(local)
	if n.NearZero(1e-12) {
		return pmath.Vec3Up
	}
	return n.Normalize()
}

func (s *Sphere) BoundingBox() AABB {
	if !s.Ellipsoidal {
		r := pmath.NewVec3(s.Radius, s.Radius, s.Radius)
		return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
	}
	unit := AABB{Min: pmath.NewVec3(-1, -1, -1), Max: pmath.NewVec3(1, 1, 1)}
	return unit.Transformed(s.Transform.Forward)
}

var _ Object = (*Sphere)(nil)
