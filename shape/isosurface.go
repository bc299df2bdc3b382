package shape

import (
	"math"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/stats"
	"povcore/thread"
)

const isosurfaceDepthTolerance = 1e-6

// Container selects the bounding shape an isosurface's function is
// evaluated inside.
type ContainerKind int

const (
	ContainerBox ContainerKind = iota
	ContainerSphere
	ContainerCylinder
)

// IsoFunc is the user-declared scalar field f(x,y,z); Eval returns f(p) so
// that the isosurface's zero level set is f(p) - Threshold = 0.
type IsoFunc interface {
	Eval(p pmath.Vec3) float64
}

type isoFuncAdapter struct {
	fn func(pmath.Vec3) float64
}

func (a isoFuncAdapter) Eval(p pmath.Vec3) float64 { return a.fn(p) }

// NewIsoFunc wraps a plain function as an IsoFunc.
func NewIsoFunc(fn func(pmath.Vec3) float64) IsoFunc {
	return isoFuncAdapter{fn: fn}
}

// Isosurface is the zero-level set of Func - Threshold inside a container
// shape, located via a bracket-then-binary-subdivide search bounded by a
// user-declared max_gradient Lipschitz constant (spec §4.1).
type Isosurface struct {
	base
	id uint64

	Func      IsoFunc
	Threshold float64

	Container     ContainerKind
	ContainerSize pmath.Vec3 // half-extents (box) or radius broadcast (sphere/cylinder)
	Transform     AffineTransform

	MaxGradient float64
	Accuracy    float64
	MaxTrace    int

	Closed bool

	// EvalMode, when true, updates MaxGradient at runtime from observed
	// gradients and is expected to be followed by a post-render advisory
	// reporting the observed maximum/mean (collected by the caller from
	// Stats, not emitted by this type directly).
	EvalMode        bool
	observedMaxGrad float64
	observedSumGrad float64
	observedCount   int
}

var isoIDCounter uint64

func NewIsosurface(fn IsoFunc, threshold float64) *Isosurface {
	isoIDCounter++
	return &Isosurface{
		id:          isoIDCounter,
		Func:        fn,
		Threshold:   threshold,
		Container:   ContainerBox,
		ContainerSize: pmath.NewVec3(1, 1, 1),
		Transform:   IdentityTransform(),
		MaxGradient: 1.0,
		Accuracy:    0.001,
		MaxTrace:    1,
		Closed:      true,
	}
}

func (iso *Isosurface) containerIntersect(o, d pmath.Vec3) (float64, float64, bool) {
	switch iso.Container {
	case ContainerSphere:
		radius := iso.ContainerSize.X
		b := o.Dot(d)
		c := o.Dot(o) - radius*radius
		disc := b*b - c
		if disc < 0 {
			return 0, 0, false
		}
		sq := math.Sqrt(disc)
		return -b - sq, -b + sq, true
	case ContainerCylinder:
		radius := iso.ContainerSize.X
		a := d.X*d.X + d.Z*d.Z
		if a < 1e-15 {
			return 0, 0, false
		}
		b := o.X*d.X + o.Z*d.Z
		c := o.X*o.X + o.Z*o.Z - radius*radius
		disc := b*b - a*c
		if disc < 0 {
			return 0, 0, false
		}
		sq := math.Sqrt(disc)
		return (-b - sq) / a, (-b + sq) / a, true
	default: // box
		tmin, tmax := -math.MaxFloat64, math.MaxFloat64
		o3 := [3]float64{o.X, o.Y, o.Z}
		d3 := [3]float64{d.X, d.Y, d.Z}
		half := [3]float64{iso.ContainerSize.X, iso.ContainerSize.Y, iso.ContainerSize.Z}
		for axis := 0; axis < 3; axis++ {
			if math.Abs(d3[axis]) < 1e-15 {
				if o3[axis] < -half[axis] || o3[axis] > half[axis] {
					return 0, 0, false
				}
				continue
			}
			t1 := (-half[axis] - o3[axis]) / d3[axis]
			t2 := (half[axis] - o3[axis]) / d3[axis]
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
				return 0, 0, false
			}
		}
		return tmin, tmax, true
	}
}

func (iso *Isosurface) f(local pmath.Vec3) float64 {
	return iso.Func.Eval(local) - iso.Threshold
}

func (iso *Isosurface) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	if !rayHitsBound(iso.bound, r, th) {
		return false
	}
	mark := stk.Len()
	o := iso.Transform.Inverse.MulVec3(r.Origin)
	dEnd := iso.Transform.Inverse.MulVec3(r.Origin.Add(r.Direction))
	d := dEnd.Sub(o)
	scale := d.Length()
	if scale < 1e-15 {
		return false
	}
	d = d.Mul(1 / scale)

	t0, t1, ok := iso.containerIntersect(o, d)
	if !ok {
		return false
	}
	if t0 < 0 {
		t0 = 0
	}

	if th != nil {
		th.Stats.Inc(stats.IsosurfaceEvaluations)
	}

	if iso.Closed {
		entryVal := iso.f(o.Add(d.Mul(t0 + 1e-6)))
		if entryVal < 0 {
			worldT := t0 / scale
			if worldT > isosurfaceDepthTolerance && worldT < maxDistance {
				hitPoint := r.At(worldT)
				if passesClips(iso.clips, hitPoint, th) {
					stk.Push(Intersection{Depth: worldT, Point: hitPoint, Object: iso})
				}
			}
		}
	}

	// A near-duplicate ray (typically a shadow ray cast from the same
	// surface point just found) narrows the search to whatever bracket
	// last produced a root here, instead of re-walking the full container
	// span from scratch.
	searchT0, searchT1 := t0, t1
	key := isoKeyFor(iso.id, o, d)
	if th != nil {
		if cachedT0, cachedT1, ok := th.IsoLookup(key); ok {
			if lo, hi := math.Max(t0, cachedT0), math.Min(t1, cachedT1); lo < hi {
				searchT0, searchT1 = lo, hi
			}
		}
	}

	found := 0
	iso.subdivide(o, d, searchT0, searchT1, scale, r, stk, th, &found)
	if found == 0 && (searchT0 != t0 || searchT1 != t1) {
		// the cached bracket missed (the ray moved enough to leave it
		// behind); fall back to the full container span.
		searchT0, searchT1 = t0, t1
		iso.subdivide(o, d, t0, t1, scale, r, stk, th, &found)
	}
	if found > 0 && th != nil {
		th.IsoStore(key, searchT0, searchT1)
	}

	return stk.Len() > mark
}

// isoKeyFor quantizes a local-space ray origin/direction to hundredths of a
// unit so near-identical rays (e.g. a shadow ray cast from a point this
// isosurface was just hit at) share a cache entry.
func isoKeyFor(objectID uint64, o, d pmath.Vec3) thread.IsoKey {
	const scale = 100.0
	q := func(v float64) int64 { return int64(math.Round(v * scale)) }
	return thread.IsoKey{
		ObjectID:  objectID,
		OriginKey: [3]int64{q(o.X), q(o.Y), q(o.Z)},
		DirKey:    [3]int64{q(d.X), q(d.Y), q(d.Z)},
	}
}

// subdivide implements the binary bracket-and-bisect search bounded by
// MaxGradient: a sub-interval is pruned when the midpoint value plus/minus
// the gradient bound cannot cross zero.
func (iso *Isosurface) subdivide(o, d pmath.Vec3, t0, t1, scale float64, r ray.Ray, stk *IStack, th *thread.State, found *int) {
	if *found >= iso.MaxTrace {
		return
	}
	if t1-t0 < iso.Accuracy {
		worldT := ((t0 + t1) / 2) / scale
		if worldT > isosurfaceDepthTolerance && worldT < maxDistance {
			hitPoint := r.At(worldT)
			if passesClips(iso.clips, hitPoint, th) {
				stk.Push(Intersection{Depth: worldT, Point: hitPoint, Object: iso})
				*found++
			}
		}
		return
	}

	mid := (t0 + t1) / 2
	fMid := iso.f(o.Add(d.Mul(mid)))
	bound := iso.MaxGradient * (t1 - t0) / 2

	if th != nil {
		th.Stats.Inc(stats.IsosurfaceBisections)
	}

	if iso.EvalMode {
		observed := math.Abs(fMid) / math.Max(t1-t0, 1e-9)
		iso.observedSumGrad += observed
		iso.observedCount++
		if observed > iso.observedMaxGrad {
			iso.observedMaxGrad = observed
		}
		if observed > iso.MaxGradient {
			iso.MaxGradient = observed
		}
	}

	if fMid-bound > 0 || fMid+bound < 0 {
		// Provably no root crossing in this sub-interval.
		return
	}

	iso.subdivide(o, d, t0, mid, scale, r, stk, th, found)
	if *found < iso.MaxTrace {
		iso.subdivide(o, d, mid, t1, scale, r, stk, th, found)
	}
}

// ObservedGradientStats returns the maximum and mean gradient magnitude
// observed so far in EvalMode, for the post-render advisory.
func (iso *Isosurface) ObservedGradientStats() (max, mean float64) {
	if iso.observedCount == 0 {
		return 0, 0
	}
	return iso.observedMaxGrad, iso.observedSumGrad / float64(iso.observedCount)
}

func (iso *Isosurface) Inside(p pmath.Vec3, th *thread.State) bool {
	local := iso.Transform.Inverse.MulVec3(p)
	inside := iso.f(local) < 0
	if iso.flags.Has(FlagInverted) {
		return !inside
	}
	return inside
}

// Normal is estimated via three finite differences of Func around the hit
// point, then transformed by the inverse transpose (spec §4.1).
func (iso *Isosurface) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	local := iso.Transform.Inverse.MulVec3(hit.Point)
	const eps = 1e-5
	fx := iso.f(local.Add(pmath.NewVec3(eps, 0, 0))) - iso.f(local.Sub(pmath.NewVec3(eps, 0, 0)))
	fy := iso.f(local.Add(pmath.NewVec3(0, eps, 0))) - iso.f(local.Sub(pmath.NewVec3(0, eps, 0)))
	fz := iso.f(local.Add(pmath.NewVec3(0, 0, eps))) - iso.f(local.Sub(pmath.NewVec3(0, 0, eps)))
	grad := pmath.NewVec3(fx, fy, fz)
	n := iso.Transform.Forward.InverseTranspose3x3().MulDir(grad)
	if n.NearZero(1e-12) {
		return pmath.Vec3Up
	}
	return n.Normalize()
}

func (iso *Isosurface) BoundingBox() AABB {
	local := AABB{Min: iso.ContainerSize.Mul(-1), Max: iso.ContainerSize}
	return local.Transformed(iso.Transform.Forward)
}

var _ Object = (*Isosurface)(nil)
