package media

import (
	"math"
	"sort"

	"povcore/light"
	pmath "povcore/math"
)

// litSpan is one maximal sub-interval of [0,D] illuminated by a particular
// subset of lights, or by no light at all.
type litSpan struct {
	Start, End float64
	LightIdx   []int // empty means unlit
}

// lightInterval solves the [tStart,tEnd] sub-range of [0,D] where a single
// light can deposit energy along the ray, per spec §4.4.
func lightInterval(origin, dir pmath.Vec3, d float64, l *light.Light) (float64, float64, bool) {
	switch l.Kind {
	case light.KindSpot:
		return spotInterval(origin, dir, d, l)
	case light.KindCylinder:
		return cylinderInterval(origin, dir, d, l)
	default: // point/omni
		return 0, d, true
	}
}

// spotInterval solves ((p(t)-c)*a)^2 >= mu^2 * |p(t)-c|^2 for t, where
// p(t) = origin + t*dir, c is the light position, a the cone axis and mu
// the falloff cosine.
func spotInterval(origin, dir pmath.Vec3, d float64, l *light.Light) (float64, float64, bool) {
	oc := origin.Sub(l.Position)
	a := l.Axis
	mu2 := l.FalloffCosine * l.FalloffCosine

	dDotA := dir.Dot(a)
	ocDotA := oc.Dot(a)

	// Coefficients of ((oc+t*dir)*a)^2 - mu2*|oc+t*dir|^2 = 0.
	A := dDotA*dDotA - mu2*dir.Dot(dir)
	B := 2 * (dDotA*ocDotA - mu2*dir.Dot(oc))
	C := ocDotA*ocDotA - mu2*oc.Dot(oc)

	var t0, t1 float64
	if math.Abs(A) < 1e-12 {
		if math.Abs(B) < 1e-12 {
			return 0, 0, false
		}
		t0 = -C / B
		t1 = t0
	} else {
		disc := B*B - 4*A*C
		if disc < 0 {
			return 0, 0, false
		}
		sq := math.Sqrt(disc)
		t0 = (-B - sq) / (2 * A)
		t1 = (-B + sq) / (2 * A)
		if t0 > t1 {
			t0, t1 = t1, t0
		}
	}

	if t0 < 0 {
		t0 = 0
	}
	if t1 > d {
		t1 = d
	}
	if t1 <= t0 {
		return 0, 0, false
	}

	// Drop the portion behind the apex (axis projection non-positive).
	apexProjAtStart := oc.Add(dir.Mul(t0)).Dot(a)
	if apexProjAtStart <= 0 {
		t0 = math.Max(t0, -ocDotA/dDotA)
		if t0 >= t1 {
			return 0, 0, false
		}
	}

	return t0, t1, true
}

// cylinderInterval intersects the ray with the infinite cylinder of the
// given axis and radius, keeping only the forward half-space and clamping
// to [0,D].
func cylinderInterval(origin, dir pmath.Vec3, d float64, l *light.Light) (float64, float64, bool) {
	a := l.Axis
	oc := origin.Sub(l.Position)

	// Project out the axial component so the quadratic is in the
	// perpendicular plane only.
	dPerp := dir.Sub(a.Mul(dir.Dot(a)))
	ocPerp := oc.Sub(a.Mul(oc.Dot(a)))

	A := dPerp.Dot(dPerp)
	B := 2 * dPerp.Dot(ocPerp)
	C := ocPerp.Dot(ocPerp) - l.Radius*l.Radius

	if A < 1e-12 {
		return 0, 0, false
	}
	disc := B*B - 4*A*C
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	t0 := (-B - sq) / (2 * A)
	t1 := (-B + sq) / (2 * A)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 < 0 {
		t0 = 0
	}
	if t1 > d {
		t1 = d
	}
	if t1 <= t0 {
		return 0, 0, false
	}
	return t0, t1, true
}

// partitionLitIntervals merges every light's lit sub-interval into a
// disjoint set of spans covering [0,D], each tagged with the light
// indices illuminating it.
func partitionLitIntervals(origin, dir pmath.Vec3, d float64, lights []*light.Light) []litSpan {
	type boundary struct {
		t     float64
		idx   int
		enter bool
	}
	var boundaries []boundary
	for i, l := range lights {
		if !l.MediaInteraction {
			continue
		}
		t0, t1, ok := lightInterval(origin, dir, d, l)
		if !ok {
			continue
		}
		boundaries = append(boundaries, boundary{t0, i, true}, boundary{t1, i, false})
	}
	if len(boundaries) == 0 {
		return []litSpan{{Start: 0, End: d}}
	}

	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].t < boundaries[j].t })

	var spans []litSpan
	active := map[int]bool{}
	prev := 0.0
	for _, b := range boundaries {
		if b.t > prev {
			spans = append(spans, litSpan{Start: prev, End: b.t, LightIdx: activeList(active)})
		}
		if b.enter {
			active[b.idx] = true
		} else {
			delete(active, b.idx)
		}
		prev = b.t
	}
	if prev < d {
		spans = append(spans, litSpan{Start: prev, End: d, LightIdx: activeList(active)})
	}
	return spans
}

func activeList(active map[int]bool) []int {
	if len(active) == 0 {
		return nil
	}
	out := make([]int, 0, len(active))
	for i := range active {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// allocateSamples distributes N_intervals sample intervals across the
// lit/unlit spans per spec §4.4: never less than one per span, in the
// ratio media.ratio : 1-media.ratio between lit and unlit total length.
func allocateSamples(spans []litSpan, totalIntervals int, ratio float64) []int {
	if totalIntervals < len(spans) {
		totalIntervals = len(spans)
	}
	counts := make([]int, len(spans))
	for i := range counts {
		counts[i] = 1
	}
	remaining := totalIntervals - len(spans)
	if remaining <= 0 {
		return counts
	}

	litLen, unlitLen := 0.0, 0.0
	for _, s := range spans {
		if len(s.LightIdx) > 0 {
			litLen += s.End - s.Start
		} else {
			unlitLen += s.End - s.Start
		}
	}

	for i, s := range spans {
		share := 0.0
		spanLen := s.End - s.Start
		if len(s.LightIdx) > 0 && litLen > 0 {
			share = ratio * spanLen / litLen
		} else if unlitLen > 0 {
			share = (1 - ratio) * spanLen / unlitLen
		}
		counts[i] += int(math.Round(share * float64(remaining)))
	}
	return counts
}
