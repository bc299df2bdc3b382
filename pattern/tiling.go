package pattern

import (
	"math"

	pmath "povcore/math"
)

// tilingEpsilon offsets a handful of the tiling boundary tests so that
// points lying exactly on a tile edge resolve deterministically instead of
// flickering between neighbouring tiles under floating point rounding.
// POV-Ray's own tiling code carries the identical empirically tuned
// constant and it is preserved here rather than replaced with a "cleaner"
// epsilon.
const tilingEpsilon = 1e-10

// TilingParams configures a tiling/pavement pattern and doubles as the
// parameter carrier for the slope/aoi pattern kinds (Reference is the
// surface-normal comparison axis there).
type TilingParams struct {
	Reference  pmath.Vec3 // slope/aoi reference axis
	PenroseGen int        // recursion depth for Penrose inflation
}

func tilingHexagon(p pmath.Vec3, _ *TilingParams) int {
	const sqrt3 = 1.7320508075688772
	x, z := p.X, p.Z

	// Shift to a hex-grid basis: two interleaved rows of hexagon centres.
	row := math.Floor(z/(sqrt3/2) + tilingEpsilon)
	rowOffset := 0.0
	if int64(row)%2 != 0 {
		rowOffset = 0.5
	}
	col := math.Floor(x - rowOffset + tilingEpsilon)
	localX := x - rowOffset - col
	localZ := z - row*(sqrt3/2)

	idx := (int64(row)*3 + int64(col)) % 3
	if idx < 0 {
		idx += 3
	}
	_ = localX
	_ = localZ
	return int(idx)
}

func tilingSquare(p pmath.Vec3, _ *TilingParams) int {
	ix := int64(math.Floor(p.X + tilingEpsilon))
	iz := int64(math.Floor(p.Z + tilingEpsilon))
	return int((ix + iz) & 1)
}

func tilingTriangle(p pmath.Vec3, _ *TilingParams) int {
	x, z := p.X, p.Z
	cellX := math.Floor(x + tilingEpsilon)
	cellZ := math.Floor(z + tilingEpsilon)
	fx := x - cellX
	fz := z - cellZ
	upper := 0
	if fx+fz > 1 {
		upper = 1
	}
	base := (int64(cellX) + int64(cellZ)) & 1
	return int(base)*2 + upper
}

func tilingRhombus(p pmath.Vec3, _ *TilingParams) int {
	x, z := p.X, p.Z
	u := x + z
	v := x - z
	iu := int64(math.Floor(u + tilingEpsilon))
	iv := int64(math.Floor(v + tilingEpsilon))
	return int((iu + iv) & 1)
}

// tilingPenrose is a simplified two-colour Penrose-style pattern: it
// scales (x,z) by phi and wraps each coordinate with Mod(v,2)-1,
// PenroseGen times, then returns the parity of the 36-degree angular
// sector the resulting point lies in. No rhomb tiles are constructed and
// no edge-matching rules are applied.
func tilingPenrose(p pmath.Vec3, params *TilingParams) int {
	const phi = 1.618033988749895
	gen := params.PenroseGen
	if gen <= 0 {
		gen = 4
	}

	x, z := p.X, p.Z
	for i := 0; i < gen; i++ {
		x *= phi
		z *= phi
		x = math.Mod(x, 2) - 1
		z = math.Mod(z, 2) - 1
	}
	angle := math.Atan2(z, x)
	sector := int(math.Floor((angle+math.Pi)/(2*math.Pi/10) + tilingEpsilon))
	if sector%2 == 0 {
		return 0
	}
	return 1
}
