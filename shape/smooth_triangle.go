package shape

import (
	"math"

	pmath "povcore/math"
	"povcore/ray"
	"povcore/thread"
)

// SmoothTriangle additionally stores per-vertex normals and precomputes a
// barycentric basis so Normal can interpolate between them (Gouraud-style
// shading normal, spec §4.1).
type SmoothTriangle struct {
	Triangle
	N1, N2, N3 pmath.Vec3

	// Precomputed barycentric basis in the dominant-axis projection.
	u1, v1, u2, v2, u3, v3 float64
	invDenom               float64
}

func NewSmoothTriangle(p1, p2, p3, n1, n2, n3 pmath.Vec3) *SmoothTriangle {
	st := &SmoothTriangle{Triangle: *NewTriangle(p1, p2, p3), N1: n1, N2: n2, N3: n3}
	if st.swapped {
		st.N2, st.N3 = n3, n2
	}
	st.precomputeBasis()
	return st
}

func (st *SmoothTriangle) precomputeBasis() {
	st.u1, st.v1 = st.project(st.P1)
	st.u2, st.v2 = st.project(st.P2)
	st.u3, st.v3 = st.project(st.P3)
	denom := (st.v2-st.v3)*(st.u1-st.u3) + (st.u3-st.u2)*(st.v1-st.v3)
	if math.Abs(denom) < 1e-15 {
		st.invDenom = 0
		return
	}
	st.invDenom = 1 / denom
}

// barycentricAt returns (w1,w2,w3) for a projected point, used both for
// the interpolated normal and (if ever needed) interpolated UV/colour.
func (st *SmoothTriangle) barycentricAt(pu, pv float64) (float64, float64, float64) {
	if st.invDenom == 0 {
		return 1, 0, 0
	}
	w1 := ((st.v2-st.v3)*(pu-st.u3) + (st.u3-st.u2)*(pv-st.v3)) * st.invDenom
	w2 := ((st.v3-st.v1)*(pu-st.u3) + (st.u1-st.u3)*(pv-st.v3)) * st.invDenom
	w3 := 1 - w1 - w2
	return w1, w2, w3
}

func (st *SmoothTriangle) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	return st.Triangle.intersectAs(st, r, stk, th)
}

func (st *SmoothTriangle) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	pu, pv := st.project(hit.Point)
	w1, w2, w3 := st.barycentricAt(pu, pv)
	n := st.N1.Mul(w1).Add(st.N2.Mul(w2)).Add(st.N3.Mul(w3))
	if n.NearZero(1e-12) {
		return st.Triangle.normal
	}
	return n.Normalize()
}

var _ Object = (*SmoothTriangle)(nil)
