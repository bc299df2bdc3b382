package pattern

import (
	"math"

	pmath "povcore/math"
	"povcore/stats"
	"povcore/thread"
)

// CrackleParams configures the 3-D Voronoi ("crackle") pattern.
type CrackleParams struct {
	Metric float64 // Lp metric exponent; 2 = Euclidean, 1 = Manhattan
	Solid  bool    // solid mode returns a per-cell random value instead of distances
	Form   float64 // combining weight between nearest and second-nearest distances
}

// cellHash derives a deterministic 32-bit seed for a lattice cell so that
// the same cell always produces the same jittered feature point, from any
// thread, without shared mutable state (testable property 10).
func cellHash(x, y, z int32) uint32 {
	h := uint32(x)*374761393 + uint32(y)*668265263 + uint32(z)*2147483647
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func hashFloat(seed uint32, salt uint32) float64 {
	h := seed ^ salt
	h = (h ^ (h >> 13)) * 1274126177
	h = h ^ (h >> 16)
	return float64(h) / float64(^uint32(0))
}

// featurePointInCell returns the single jittered feature point that lives
// in lattice cell (x,y,z); crackle always uses exactly one feature point
// per cell, and evalCrackle scans the 5x5x5 block of cells around the
// query point's cell.
func featurePointInCell(x, y, z int32, th *thread.State) thread.Point3 {
	key := thread.CellKey{X: x, Y: y, Z: z}
	if th != nil {
		if pts, ok := th.CrackleLookup(key); ok && len(pts) > 0 {
			th.Stats.Inc(stats.CrackleCacheHits)
			return pts[0]
		}
	}
	seed := cellHash(x, y, z)
	jx := hashFloat(seed, 0x9E3779B1)
	jy := hashFloat(seed, 0x85EBCA6B)
	jz := hashFloat(seed, 0xC2B2AE35)
	pt := thread.Point3{X: float64(x) + jx, Y: float64(y) + jy, Z: float64(z) + jz}
	if th != nil {
		th.Stats.Inc(stats.CrackleCacheMisses)
		th.CrackleStore(key, []thread.Point3{pt})
	}
	return pt
}

func lpDistance(a, b pmath.Vec3, metric float64) float64 {
	dx := math.Abs(a.X - b.X)
	dy := math.Abs(a.Y - b.Y)
	dz := math.Abs(a.Z - b.Z)
	switch metric {
	case 1:
		return dx + dy + dz
	case 2:
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	default:
		return math.Pow(math.Pow(dx, metric)+math.Pow(dy, metric)+math.Pow(dz, metric), 1/metric)
	}
}

// evalCrackle implements the 125-cell (5x5x5) neighbourhood Voronoi sampling: the
// radius-2 block around the query point's cell is enough to guarantee
// finding the two nearest feature points under any jitter in [0,1)^3.
func evalCrackle(p pmath.Vec3, params *CrackleParams, th *thread.State) float64 {
	cx := int32(math.Floor(p.X))
	cy := int32(math.Floor(p.Y))
	cz := int32(math.Floor(p.Z))

	metric := params.Metric
	if metric == 0 {
		metric = 2
	}

	var nearest, second float64 = math.MaxFloat64, math.MaxFloat64
	var nearestSeed uint32

	for dx := int32(-2); dx <= 2; dx++ {
		for dy := int32(-2); dy <= 2; dy++ {
			for dz := int32(-2); dz <= 2; dz++ {
				x, y, z := cx+dx, cy+dy, cz+dz
				fp := featurePointInCell(x, y, z, th)
				d := lpDistance(p, pmath.Vec3{X: fp.X, Y: fp.Y, Z: fp.Z}, metric)
				if d < nearest {
					second = nearest
					nearest = d
					nearestSeed = cellHash(x, y, z)
				} else if d < second {
					second = d
				}
			}
		}
	}

	if params.Solid {
		return hashFloat(nearestSeed, 0xA24BAED4)
	}

	form := params.Form
	if form == 0 {
		form = 1
	}
	v := nearest*form + second*(1-form)
	return clamp01(v)
}
