package shape

import (
	"math"
	"testing"

	pmath "povcore/math"
	"povcore/ray"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// S1-derived: a unit sphere at the origin hit by a ray along +z from
// (0,0,-3) must intersect at t=2.
func TestSphereUnitIntersection(t *testing.T) {
	s := NewSphere(pmath.Vec3Zero, 1)
	r := ray.New(pmath.NewVec3(0, 0, -3), pmath.NewVec3(0, 0, 1), ray.NewTicket(5, 0))
	stk := AcquireIStack()
	defer ReleaseIStack(stk)

	if !s.AllIntersections(r, stk, nil) {
		t.Fatal("expected a hit")
	}
	stk.SortByDepth(0)
	hits := stk.All()
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits (entry and exit), got %d", len(hits))
	}
	if !almostEqual(hits[0].Depth, 2, 1e-9) {
		t.Errorf("expected near hit t=2, got %v", hits[0].Depth)
	}
	if !almostEqual(hits[1].Depth, 4, 1e-9) {
		t.Errorf("expected far hit t=4, got %v", hits[1].Depth)
	}
}

// S2: CSG difference of a unit sphere minus a smaller offset sphere
// entirely contained within it, punching a clean hole with no tangency.
func TestCSGDifferenceSphereHits(t *testing.T) {
	outer := NewSphere(pmath.Vec3Zero, 1)
	inner := NewSphere(pmath.NewVec3(0.3, 0, 0), 0.3)
	diff := NewDifference(outer, inner)

	r := ray.New(pmath.NewVec3(-2, 0, 0), pmath.NewVec3(1, 0, 0), ray.NewTicket(5, 0))
	stk := AcquireIStack()
	defer ReleaseIStack(stk)

	diff.AllIntersections(r, stk, nil)
	stk.SortByDepth(0)
	hits := stk.All()

	want := []float64{1, 2.0, 2.6, 3}
	if len(hits) != len(want) {
		t.Fatalf("expected %d hits, got %d: %+v", len(want), len(hits), hits)
	}
	for i, w := range want {
		if !almostEqual(hits[i].Depth, w, 1e-6) {
			t.Errorf("hit %d: expected t=%v, got %v", i, w, hits[i].Depth)
		}
	}

	if diff.Inside(pmath.NewVec3(0.3, 0, 0), nil) {
		t.Error("expected the subtracted sphere's center to be outside the difference")
	}
}

// Testable property 1: IStack balance across a compound AllIntersections
// call — the stack must end at the caller's mark plus exactly the hits
// returned.
func TestIStackBalance(t *testing.T) {
	union := NewUnion(NewSphere(pmath.Vec3Zero, 1), NewSphere(pmath.NewVec3(3, 0, 0), 1))
	r := ray.New(pmath.NewVec3(-5, 0, 0), pmath.NewVec3(1, 0, 0), ray.NewTicket(5, 0))

	stk := AcquireIStack()
	defer ReleaseIStack(stk)
	stk.Push(Intersection{Depth: -1}) // simulate caller-held entries
	mark := stk.Len()

	union.AllIntersections(r, stk, nil)
	if stk.Len() < mark {
		t.Fatalf("stack shrank below caller mark: %d < %d", stk.Len(), mark)
	}
	if stk.Len() != mark+4 {
		t.Errorf("expected %d hits (2 spheres x 2 hits each), got %d", 4, stk.Len()-mark)
	}
}

// Testable property 2: union(A) is equivalent to A for inside-tests.
func TestUnionIdempotence(t *testing.T) {
	sphere := NewSphere(pmath.Vec3Zero, 1)
	union := NewUnion(sphere)

	samples := []pmath.Vec3{pmath.Vec3Zero, pmath.NewVec3(0.5, 0, 0), pmath.NewVec3(2, 0, 0)}
	for _, p := range samples {
		if union.Inside(p, nil) != sphere.Inside(p, nil) {
			t.Errorf("union(A).Inside(%v) != A.Inside(%v)", p, p)
		}
	}
}

// Testable property 3: adding a child to an intersection cannot increase
// its bbox volume.
func TestIntersectionMonotonicity(t *testing.T) {
	a := NewSphere(pmath.Vec3Zero, 2)
	b := NewSphere(pmath.NewVec3(1, 0, 0), 1)

	single := NewIntersection(a)
	pair := NewIntersection(a, b)

	if pair.BoundingBox().Volume() > single.BoundingBox().Volume()+1e-9 {
		t.Errorf("adding a child increased intersection bbox volume: %v > %v",
			pair.BoundingBox().Volume(), single.BoundingBox().Volume())
	}
}

// Testable property 4: merge surface suppression — a hit strictly inside
// the other sphere is absent from the merge's hit set.
func TestMergeSuppressesInternalSurfaces(t *testing.T) {
	a := NewSphere(pmath.Vec3Zero, 1)
	b := NewSphere(pmath.NewVec3(0.8, 0, 0), 1)
	merged := NewMerge(a, b)

	r := ray.New(pmath.NewVec3(-3, 0, 0), pmath.NewVec3(1, 0, 0), ray.NewTicket(5, 0))
	stk := AcquireIStack()
	defer ReleaseIStack(stk)
	merged.AllIntersections(r, stk, nil)
	stk.SortByDepth(0)

	for _, h := range stk.All() {
		if a.Inside(h.Point, nil) && h.Object == Object(b) {
			t.Errorf("merge kept a B-surface hit strictly inside A at %v", h.Point)
		}
		if b.Inside(h.Point, nil) && h.Object == Object(a) {
			t.Errorf("merge kept an A-surface hit strictly inside B at %v", h.Point)
		}
	}
}

// Testable property 5: inversion duality.
func TestInversionDuality(t *testing.T) {
	sphere := NewSphere(pmath.NewVec3(0, 0, 0), 1)
	points := []pmath.Vec3{pmath.Vec3Zero, pmath.NewVec3(2, 0, 0), pmath.NewVec3(0.9, 0, 0)}

	for _, p := range points {
		before := sphere.Inside(p, nil)
		sphere.SetFlags(sphere.GetFlags() ^ FlagInverted)
		after := sphere.Inside(p, nil)
		sphere.SetFlags(sphere.GetFlags() ^ FlagInverted)
		if after == before {
			t.Errorf("inversion duality failed at %v: before=%v after=%v", p, before, after)
		}
	}
}

// Testable property 6: plane round trip.
func TestPlaneRoundTrip(t *testing.T) {
	n := pmath.NewVec3(0, 1, 0).Normalize()
	d := -5.0 // plane y = 5
	p := NewPlane(n, d)

	r := ray.New(pmath.Vec3Zero, n, ray.NewTicket(5, 0))
	stk := AcquireIStack()
	defer ReleaseIStack(stk)
	p.AllIntersections(r, stk, nil)

	want := -d / n.Dot(r.Direction)
	hits := stk.All()
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if !almostEqual(hits[0].Depth, want, 1e-9) {
		t.Errorf("expected t=%v, got %v", want, hits[0].Depth)
	}
}

// Testable property 7: sphere/ellipsoid equivalence to 1e-10 in t.
func TestSphereEllipsoidEquivalence(t *testing.T) {
	center := pmath.NewVec3(1, 2, 3)
	radius := 2.5

	spherical := NewSphere(center, radius)

	ellipsoidal := NewSphere(pmath.Vec3Zero, 1)
	ellipsoidal.Scale(pmath.NewVec3(radius, radius, radius))
	ellipsoidal.Translate(center)
	// A rotation, even by zero, switches the sphere to ellipsoidal mode.
	ellipsoidal.Rotate(pmath.NewVec3(0, 1, 0), 0)
	if !ellipsoidal.Ellipsoidal {
		t.Fatal("expected the rotated sphere to be in ellipsoidal mode")
	}

	r := ray.New(pmath.NewVec3(-10, 2, 3), pmath.NewVec3(1, 0, 0), ray.NewTicket(5, 0))

	stkA := AcquireIStack()
	defer ReleaseIStack(stkA)
	stkB := AcquireIStack()
	defer ReleaseIStack(stkB)

	spherical.AllIntersections(r, stkA, nil)
	ellipsoidal.AllIntersections(r, stkB, nil)
	stkA.SortByDepth(0)
	stkB.SortByDepth(0)

	hitsA, hitsB := stkA.All(), stkB.All()
	if len(hitsA) != len(hitsB) {
		t.Fatalf("hit count mismatch: spherical=%d ellipsoidal=%d", len(hitsA), len(hitsB))
	}
	for i := range hitsA {
		if !almostEqual(hitsA[i].Depth, hitsB[i].Depth, 1e-10) {
			t.Errorf("hit %d: spherical t=%v ellipsoidal t=%v", i, hitsA[i].Depth, hitsB[i].Depth)
		}
	}
}

// S6: smooth triangle with all-equal vertex normals interpolates exactly
// to that normal everywhere on the face.
func TestSmoothTriangleNormalInterpolation(t *testing.T) {
	n := pmath.NewVec3(0, 0, 1)
	st := NewSmoothTriangle(
		pmath.NewVec3(0, 0, 0), pmath.NewVec3(1, 0, 0), pmath.NewVec3(0, 1, 0),
		n, n, n,
	)

	r := ray.New(pmath.NewVec3(0.25, 0.25, 1), pmath.NewVec3(0, 0, -1), ray.NewTicket(5, 0))
	stk := AcquireIStack()
	defer ReleaseIStack(stk)
	if !st.AllIntersections(r, stk, nil) {
		t.Fatal("expected a hit on the smooth triangle")
	}
	hits := stk.All()
	if !almostEqual(hits[0].Depth, 1, 1e-9) {
		t.Errorf("expected t=1, got %v", hits[0].Depth)
	}
	got := st.Normal(hits[0], nil)
	if !almostEqual(got.X, 0, 1e-9) || !almostEqual(got.Y, 0, 1e-9) || !almostEqual(got.Z, 1, 1e-9) {
		t.Errorf("expected normal (0,0,1), got %v", got)
	}
}

// A bound object that the ray misses must suppress the primitive's own
// intersection entirely, even though the primitive itself would be hit.
func TestBoundSuppressesIntersectionOnMiss(t *testing.T) {
	s := NewSphere(pmath.Vec3Zero, 1)
	bound := NewSphere(pmath.NewVec3(10, 0, 0), 1)
	s.SetBound(bound)

	r := ray.New(pmath.NewVec3(0, 0, -3), pmath.NewVec3(0, 0, 1), ray.NewTicket(5, 0))
	stk := AcquireIStack()
	defer ReleaseIStack(stk)
	if s.AllIntersections(r, stk, nil) {
		t.Error("expected no hits: ray misses the bound entirely")
	}
	if stk.Len() != 0 {
		t.Errorf("stack left unbalanced after a bound-suppressed test: len=%d", stk.Len())
	}
}

// A bound that the ray does hit must not interfere with the primitive's own
// intersection result.
func TestBoundPassesIntersectionThrough(t *testing.T) {
	s := NewSphere(pmath.Vec3Zero, 1)
	bound := NewSphere(pmath.Vec3Zero, 2)
	s.SetBound(bound)

	r := ray.New(pmath.NewVec3(0, 0, -3), pmath.NewVec3(0, 0, 1), ray.NewTicket(5, 0))
	stk := AcquireIStack()
	defer ReleaseIStack(stk)
	if !s.AllIntersections(r, stk, nil) {
		t.Fatal("expected the sphere's own hits to pass through an intersected bound")
	}
	if got := len(stk.All()); got != 2 {
		t.Errorf("expected 2 hits on the unit sphere, got %d", got)
	}
}
