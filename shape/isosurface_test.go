package shape

import (
	"testing"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/thread"
)

// a sphere of radius 1 expressed as an isosurface (x^2+y^2+z^2 - 1), so its
// intersections can be checked against the closed-form sphere geometry.
func unitSphereIso() *Isosurface {
	iso := NewIsosurface(NewIsoFunc(func(p pmath.Vec3) float64 {
		return p.X*p.X + p.Y*p.Y + p.Z*p.Z
	}), 1)
	iso.Container = ContainerSphere
	iso.ContainerSize = pmath.NewVec3(1.5, 1.5, 1.5)
	iso.Accuracy = 1e-6
	iso.MaxGradient = 3
	return iso
}

func TestIsosurfaceHitsUnitSphereFromOutside(t *testing.T) {
	iso := unitSphereIso()
	r := ray.New(pmath.NewVec3(0, 0, -3), pmath.NewVec3(0, 0, 1), ray.NewTicket(5, 0))
	th := thread.NewState(0, 1)

	stk := AcquireIStack()
	defer ReleaseIStack(stk)
	if !iso.AllIntersections(r, stk, th) {
		t.Fatal("expected a hit on the isosurface sphere")
	}
	stk.SortByDepth(0)
	hits := stk.All()
	if !almostEqual(hits[0].Depth, 2, 1e-4) {
		t.Errorf("expected entry depth ~2, got %v", hits[0].Depth)
	}
}

// A second, near-identical ray (as a shadow ray cast from the same point
// would be) must populate and then reuse the per-thread root-bracket cache.
func TestIsosurfaceRootBracketCacheIsPopulatedAndReused(t *testing.T) {
	iso := unitSphereIso()
	th := thread.NewState(0, 1)

	r1 := ray.New(pmath.NewVec3(0, 0, -3), pmath.NewVec3(0, 0, 1), ray.NewTicket(5, 0))
	stk1 := AcquireIStack()
	if !iso.AllIntersections(r1, stk1, th) {
		t.Fatal("expected a hit on the first pass")
	}
	ReleaseIStack(stk1)

	o := iso.Transform.Inverse.MulVec3(r1.Origin)
	dEnd := iso.Transform.Inverse.MulVec3(r1.Origin.Add(r1.Direction))
	d := dEnd.Sub(o)
	d = d.Mul(1 / d.Length())
	key := isoKeyFor(iso.id, o, d)

	if _, _, ok := th.IsoLookup(key); !ok {
		t.Fatal("expected the root bracket cache to hold an entry after the first hit")
	}

	r2 := ray.New(pmath.NewVec3(0, 0, -3), pmath.NewVec3(0, 0, 1), ray.NewTicket(5, 0))
	stk2 := AcquireIStack()
	defer ReleaseIStack(stk2)
	if !iso.AllIntersections(r2, stk2, th) {
		t.Fatal("expected the second, identical ray to still hit using the cached bracket")
	}
}
