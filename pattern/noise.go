package pattern

import (
	"math"

	pmath "povcore/math"
)

// This file implements the portable noise back end shared by every
// noise-family pattern kind. Three selectable flavours are exposed
// (original, range-corrected, improved) even though all three currently
// share one lattice-gradient implementation that differs only in how the
// raw [-1,1] result is rescaled; a platform build with real SIMD kernels
// would instead dispatch here based on cpufeature's probe.

var permutation = buildPermutation()

func buildPermutation() [512]int {
	base := [256]int{
		151, 160, 137, 91, 90, 15, 131, 13, 201, 95, 96, 53, 194, 233, 7, 225,
		140, 36, 103, 30, 69, 142, 8, 99, 37, 240, 21, 10, 23, 190, 6, 148,
		247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219, 203, 117, 35, 11, 32,
		57, 177, 33, 88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175,
		74, 165, 71, 134, 139, 48, 27, 166, 77, 146, 158, 231, 83, 111, 229, 122,
		60, 211, 133, 230, 220, 105, 92, 41, 55, 46, 245, 40, 244, 102, 143, 54,
		65, 25, 63, 161, 1, 216, 80, 73, 209, 76, 132, 187, 208, 89, 18, 169,
		200, 196, 135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173, 186, 3, 64,
		52, 217, 226, 250, 124, 123, 5, 202, 38, 147, 118, 126, 255, 82, 85, 212,
		207, 206, 59, 227, 47, 16, 58, 17, 182, 189, 28, 42, 223, 183, 170, 213,
		119, 248, 152, 2, 44, 154, 163, 70, 221, 153, 101, 155, 167, 43, 172, 9,
		129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232, 178, 185, 112, 104,
		218, 246, 97, 228, 251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162, 241,
		81, 51, 145, 235, 249, 14, 239, 107, 49, 192, 214, 31, 181, 199, 106, 157,
		184, 84, 204, 176, 115, 121, 50, 45, 127, 4, 150, 254, 138, 236, 205, 93,
		222, 114, 67, 29, 24, 72, 243, 141, 128, 195, 78, 66, 215, 61, 156, 180,
	}
	var p [512]int
	for i := 0; i < 256; i++ {
		p[i] = base[i]
		p[i+256] = base[i]
	}
	return p
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func gradient(hash int, x, y, z float64) float64 {
	h := hash & 15
	var u, v float64
	if h < 8 {
		u = x
	} else {
		u = y
	}
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}
	var result float64
	if h&1 == 0 {
		result = u
	} else {
		result = -u
	}
	if h&2 == 0 {
		result += v
	} else {
		result -= v
	}
	return result
}

// noise3 returns the base lattice-gradient noise value, roughly in
// [-1,1]; the generator selector rescales the shared shape differently.
func noise3(p pmath.Vec3, gen NoiseGenerator) float64 {
	xi := int(math.Floor(p.X)) & 255
	yi := int(math.Floor(p.Y)) & 255
	zi := int(math.Floor(p.Z)) & 255

	xf := p.X - math.Floor(p.X)
	yf := p.Y - math.Floor(p.Y)
	zf := p.Z - math.Floor(p.Z)

	u := fade(xf)
	v := fade(yf)
	w := fade(zf)

	perm := &permutation

	a := perm[xi] + yi
	aa := perm[a] + zi
	ab := perm[a+1] + zi
	b := perm[xi+1] + yi
	ba := perm[b] + zi
	bb := perm[b+1] + zi

	lerp := func(a, b, t float64) float64 { return a + t*(b-a) }

	raw := lerp(
		lerp(
			lerp(gradient(perm[aa], xf, yf, zf), gradient(perm[ba], xf-1, yf, zf), u),
			lerp(gradient(perm[ab], xf, yf-1, zf), gradient(perm[bb], xf-1, yf-1, zf), u),
			v,
		),
		lerp(
			lerp(gradient(perm[aa+1], xf, yf, zf-1), gradient(perm[ba+1], xf-1, yf, zf-1), u),
			lerp(gradient(perm[ab+1], xf, yf-1, zf-1), gradient(perm[bb+1], xf-1, yf-1, zf-1), u),
			v,
		),
		w,
	)

	switch gen {
	case NoiseRangeCorrected:
		return clampUnit(raw * 1.4)
	case NoiseOriginalPerlin:
		return clampUnit(raw * 1.2)
	default: // NoiseImprovedPerlin
		return clampUnit(raw * 1.5)
	}
}

// fbm sums octaves of noise3 at doubling frequency, scaling each octave's
// amplitude by persistence (the classical POV-Ray "bumps"/marble turbulence accumulator).
func fbm(p pmath.Vec3, octaves int, persistence float64, gen NoiseGenerator) float64 {
	sum := 0.0
	amp := 1.0
	freq := 1.0
	norm := 0.0
	for o := 0; o < octaves; o++ {
		sum += noise3(p.Mul(freq), gen) * amp
		norm += amp
		amp *= persistence
		freq *= 2
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func graniteValue(p pmath.Vec3, gen NoiseGenerator) float64 {
	v := 0.0
	freq := 1.0
	amp := 1.0
	for o := 0; o < 6; o++ {
		n := noise3(p.Mul(freq), gen)
		v += math.Abs(n) * amp
		amp *= 0.5
		freq *= 2.17
	}
	return clamp01(v)
}

func wrinkleValue(p pmath.Vec3, gen NoiseGenerator) float64 {
	v := 0.0
	freq := 1.0
	amp := 1.0
	for o := 0; o < 8; o++ {
		v += math.Abs(noise3(p.Mul(freq), gen)) * amp
		amp *= 0.5
		freq *= 2.0
	}
	return v
}

func marbleValue(p pmath.Vec3, gen NoiseGenerator) float64 {
	turbulence := fbm(p, 6, 0.55, gen)
	v := math.Sin(p.X*6 + turbulence*8)
	return clamp01(0.5 + 0.5*v)
}

func agateValue(p pmath.Vec3, gen NoiseGenerator) float64 {
	band := math.Abs(noise3(p, gen))
	turbulence := fbm(p, 4, 0.5, gen)
	v := math.Sin((band+turbulence)*10) * math.Exp(-band)
	return clamp01(0.5 + 0.5*v)
}
