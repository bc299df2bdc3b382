// Package pattern implements the procedural scalar-field library used by
// pigments and normal perturbation: noise, crackle/Voronoi, fractals,
// tilings, slope/aoi, density-file and user-function patterns, plus the
// warp chain, frequency/phase/wave-shaping stage and blend maps that sit
// around every pattern kind.
package pattern

import (
	"fmt"
	"math"

	"povcore/density"
	pmath "povcore/math"
	"povcore/thread"
)

// Kind selects the pattern's evaluation algorithm.
type Kind int

const (
	KindBozo Kind = iota
	KindBumps
	KindSpotted
	KindGranite
	KindDents
	KindWrinkles
	KindMarble
	KindAgate
	KindCrackle
	KindFractal
	KindTilingHexagon
	KindTilingSquare
	KindTilingTriangle
	KindTilingRhombus
	KindTilingPenrose
	KindSlope
	KindAOI
	KindFunction
	KindDensityFile
	KindGradient
	KindChecker
	KindWood
	KindImageMap
	KindAverage
	KindSpherical
	KindCylindrical
)

// WaveForm selects the wave-shaping function applied after frequency/phase.
type WaveForm int

const (
	WaveRamp WaveForm = iota
	WaveSine
	WaveTriangle
	WaveScallop
	WaveCubic
	WavePoly
)

// NoiseGenerator selects among the portable noise back-ends. SIMD variants
// are not implemented here (out of scope) and noise evaluation does not
// consult cpufeature; the field is kept so a pattern's declared generator
// choice round-trips.
type NoiseGenerator int

const (
	NoiseOriginalPerlin NoiseGenerator = iota
	NoiseRangeCorrected
	NoiseImprovedPerlin
)

// Warp is one step of a pattern's input-coordinate transform chain.
type Warp struct {
	Matrix      pmath.Mat4 // affine warp (identity if unused)
	Turbulence  *Turbulence
	RepeatAxis  int // -1 = none, 0/1/2 = x/y/z
	RepeatWidth float64
	FlipAxis    int // -1 = none
}

// Turbulence parameterizes the classical fBm-style coordinate perturbation.
type Turbulence struct {
	Octaves int
	Omega   float64
	Lambda  float64
	Amount  pmath.Vec3
}

// BlendEntry is one (threshold, value) pair in a blend map.
type BlendEntry struct {
	Value float64
	Color pmath.Vec3 // used when the map feeds a pigment/colour consumer
}

// BlendMap is an ordered list of entries scanned with early-out once the
// pattern value falls below an entry's threshold.
type BlendMap struct {
	Entries []BlendEntry
}

// Lookup returns the interpolated colour for scalar v in [0,1], scanning in
// order and stopping at the first entry whose threshold exceeds v.
func (m *BlendMap) Lookup(v float64) pmath.Vec3 {
	if len(m.Entries) == 0 {
		return pmath.Vec3{X: v, Y: v, Z: v}
	}
	if v <= m.Entries[0].Value {
		return m.Entries[0].Color
	}
	for i := 1; i < len(m.Entries); i++ {
		if v <= m.Entries[i].Value {
			prev, cur := m.Entries[i-1], m.Entries[i]
			span := cur.Value - prev.Value
			if span <= 0 {
				return cur.Color
			}
			t := (v - prev.Value) / span
			return prev.Color.Add(cur.Color.Sub(prev.Color).Mul(t))
		}
	}
	return m.Entries[len(m.Entries)-1].Color
}

// Pattern is a tagged variant over every pattern kind, plus the warp chain,
// frequency/phase/wave-shaping parameters and optional blend map shared by
// all of them.
type Pattern struct {
	Kind Kind
	Name string

	Warps []Warp

	Frequency float64
	Phase     float64
	Wave      WaveForm
	PolyExp   float64 // exponent used only by WavePoly

	BlendMap *BlendMap

	Noise NoiseGenerator

	Crackle   CrackleParams
	Fractal   FractalParams
	Tiling    TilingParams
	Function  *Function
	Density   *density.Grid
	DensityInterp density.Interpolation

	Image      *ImageMap // KindImageMap only
	Components []*Pattern // KindAverage only: equally weighted sub-patterns
}

func defaultPattern(kind Kind) *Pattern {
	return &Pattern{
		Kind:      kind,
		Frequency: 1,
		Wave:      WaveRamp,
		Noise:     NoiseImprovedPerlin,
	}
}

// NewNoisePattern builds a noise-family pattern (bozo, bumps, spotted, and
// the other solid-noise kinds share one evaluator distinguished by Kind).
func NewNoisePattern(kind Kind) *Pattern {
	return defaultPattern(kind)
}

// NewCrackle builds a Voronoi/crackle pattern with the given parameters.
func NewCrackle(p CrackleParams) *Pattern {
	pat := defaultPattern(KindCrackle)
	pat.Crackle = p
	return pat
}

// NewFractal builds a Julia/Mandelbrot-family pattern.
func NewFractal(p FractalParams) *Pattern {
	pat := defaultPattern(KindFractal)
	pat.Fractal = p
	return pat
}

// NewTiling builds a hexagon/square/triangle/rhombus/Penrose tiling
// pattern; the concrete Kind selects which tiling function runs.
func NewTiling(kind Kind, p TilingParams) *Pattern {
	pat := defaultPattern(kind)
	pat.Tiling = p
	return pat
}

// NewFunctionPattern wraps a parsed user function as a pattern.
func NewFunctionPattern(fn *Function) *Pattern {
	pat := defaultPattern(KindFunction)
	pat.Function = fn
	return pat
}

// NewDensityFilePattern wraps a density grid as a pattern source.
func NewDensityFilePattern(grid *density.Grid, interp density.Interpolation) *Pattern {
	pat := defaultPattern(KindDensityFile)
	pat.Density = grid
	pat.DensityInterp = interp
	return pat
}

// NewImageMapPattern wraps a loaded raster, indexed by the object-space x/y
// plane as u/v (the planar default image_map projection).
func NewImageMapPattern(img *ImageMap) *Pattern {
	pat := defaultPattern(KindImageMap)
	pat.Image = img
	return pat
}

// NewAveragePattern combines components into a single pattern whose value is
// the unweighted mean of each component's Eval, mirroring pattern.cpp's
// average pigment type (a blend map with all-equal weights, without needing
// one).
func NewAveragePattern(components ...*Pattern) *Pattern {
	pat := defaultPattern(KindAverage)
	pat.Components = components
	return pat
}

// NewSphericalPattern builds a pigment-only selector driven by distance from
// the origin, same scalar domain as gradient but radial instead of axial.
func NewSphericalPattern() *Pattern {
	return defaultPattern(KindSpherical)
}

// NewCylindricalPattern builds a pigment-only selector driven by distance
// from the y axis.
func NewCylindricalPattern() *Pattern {
	return defaultPattern(KindCylindrical)
}

// Eval evaluates the pattern at world-space point p, optionally consulting
// the surface normal n (used only by slope/aoi). The raw value (before
// frequency/phase/wave-shaping) is always in [0,1] except fractal exterior
// colouring, which may return up to 1 and tilings, which may return an
// integer-valued index as a float.
func (pat *Pattern) Eval(p pmath.Vec3, n pmath.Vec3, th *thread.State) float64 {
	warped := pat.applyWarps(p, th)

	// Checker and the tiling family return a discrete tile index rather
	// than a continuous [0,1] value; running that index through the
	// frequency/phase/wave pipeline built for continuous patterns would
	// fold any index that happens to be an exact multiple of Frequency
	// back down to the same bucket as index 0, destroying the very
	// distinction these kinds exist to produce.
	switch pat.Kind {
	case KindChecker:
		return checkerValue(warped)
	case KindTilingHexagon:
		return float64(tilingHexagon(warped, &pat.Tiling))
	case KindTilingSquare:
		return float64(tilingSquare(warped, &pat.Tiling))
	case KindTilingTriangle:
		return float64(tilingTriangle(warped, &pat.Tiling))
	case KindTilingRhombus:
		return float64(tilingRhombus(warped, &pat.Tiling))
	case KindTilingPenrose:
		return float64(tilingPenrose(warped, &pat.Tiling))
	}

	var raw float64
	switch pat.Kind {
	case KindBozo:
		raw = clamp01(0.5 + 0.5*noise3(warped, pat.Noise))
	case KindBumps:
		raw = clamp01(0.5 + 0.5*fbm(warped, 4, 0.5, pat.Noise))
	case KindSpotted:
		raw = clamp01(noise3(warped, pat.Noise)*0.5 + 0.5)
	case KindGranite:
		raw = graniteValue(warped, pat.Noise)
	case KindDents:
		raw = clamp01(1 - math.Abs(fbm(warped, 5, 0.5, pat.Noise)))
	case KindWrinkles:
		raw = clamp01(0.5 + 0.5*wrinkleValue(warped, pat.Noise))
	case KindMarble:
		raw = marbleValue(warped, pat.Noise)
	case KindAgate:
		raw = agateValue(warped, pat.Noise)
	case KindCrackle:
		raw = evalCrackle(warped, &pat.Crackle, th)
	case KindFractal:
		raw = evalFractal(warped, &pat.Fractal, th)
	case KindSlope:
		raw = clamp01(0.5 + 0.5*n.Dot(pat.Tiling.Reference))
	case KindAOI:
		raw = clamp01(math.Acos(clampUnit(n.Dot(pat.Tiling.Reference))) / math.Pi)
	case KindFunction:
		if pat.Function != nil {
			raw = clamp01(pat.Function.Eval(warped, th))
		}
	case KindDensityFile:
		if pat.Density != nil {
			raw = clamp01(pat.Density.Sample(warped, pat.DensityInterp))
		}
	case KindGradient:
		raw = fmodUnit(warped.X)
	case KindWood:
		raw = marbleValue(warped, pat.Noise)
	case KindImageMap:
		if pat.Image != nil {
			raw = pat.Image.gray(warped.X, warped.Y)
		}
	case KindAverage:
		raw = averageValue(pat.Components, p, n, th)
	case KindSpherical:
		raw = clamp01(warped.Length())
	case KindCylindrical:
		raw = clamp01(math.Hypot(warped.X, warped.Z))
	default:
		raw = 0
	}

	v := fmodUnit(raw*pat.Frequency + pat.Phase)
	return shapeWave(v, pat.Wave, pat.PolyExp)
}

// ColorAt evaluates the pattern and resolves it through the blend map, if
// any; without a blend map the scalar is returned as a greyscale colour.
// KindImageMap is the one exception: an image map already carries full RGB,
// so it bypasses the blend map and returns the sampled texel directly.
func (pat *Pattern) ColorAt(p, n pmath.Vec3, th *thread.State) pmath.Vec3 {
	if pat.Kind == KindImageMap && pat.Image != nil {
		warped := pat.applyWarps(p, th)
		return pat.Image.At(warped.X, warped.Y)
	}
	v := pat.Eval(p, n, th)
	if pat.BlendMap != nil {
		return pat.BlendMap.Lookup(v)
	}
	return pmath.Vec3{X: v, Y: v, Z: v}
}

// averageValue is the unweighted mean of every component pattern's Eval
// value, giving KindAverage the same blend-free pigment-combination
// behaviour as pattern.cpp's average pigment type.
func averageValue(components []*Pattern, p, n pmath.Vec3, th *thread.State) float64 {
	if len(components) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range components {
		sum += c.Eval(p, n, th)
	}
	return clamp01(sum / float64(len(components)))
}

func (pat *Pattern) applyWarps(p pmath.Vec3, th *thread.State) pmath.Vec3 {
	for i := range pat.Warps {
		w := &pat.Warps[i]
		p = w.Matrix.MulVec3(p)
		if w.Turbulence != nil {
			p = applyTurbulence(p, w.Turbulence)
		}
		if w.RepeatAxis >= 0 && w.RepeatWidth > 0 {
			p = applyRepeat(p, w.RepeatAxis, w.RepeatWidth)
		}
		if w.FlipAxis >= 0 {
			p = applyFlip(p, w.FlipAxis)
		}
	}
	return p
}

func applyRepeat(p pmath.Vec3, axis int, width float64) pmath.Vec3 {
	switch axis {
	case 0:
		p.X = math.Mod(p.X, width)
	case 1:
		p.Y = math.Mod(p.Y, width)
	case 2:
		p.Z = math.Mod(p.Z, width)
	}
	return p
}

func applyFlip(p pmath.Vec3, axis int) pmath.Vec3 {
	switch axis {
	case 0:
		p.X = -p.X
	case 1:
		p.Y = -p.Y
	case 2:
		p.Z = -p.Z
	}
	return p
}

func applyTurbulence(p pmath.Vec3, t *Turbulence) pmath.Vec3 {
	disp := pmath.Vec3Zero
	scale := 1.0
	freq := 1.0
	for o := 0; o < t.Octaves; o++ {
		sample := p.Mul(freq)
		disp.X += noise3(sample, NoiseImprovedPerlin) * scale
		disp.Y += noise3(sample.Add(pmath.NewVec3(5.2, 1.3, 0)), NoiseImprovedPerlin) * scale
		disp.Z += noise3(sample.Add(pmath.NewVec3(0, 7.1, 3.4)), NoiseImprovedPerlin) * scale
		scale *= t.Omega
		freq *= t.Lambda
	}
	return pmath.Vec3{
		X: p.X + disp.X*t.Amount.X,
		Y: p.Y + disp.Y*t.Amount.Y,
		Z: p.Z + disp.Z*t.Amount.Z,
	}
}

func shapeWave(v float64, w WaveForm, polyExp float64) float64 {
	switch w {
	case WaveSine:
		return 0.5 + 0.5*math.Sin(2*math.Pi*(v-0.25))
	case WaveTriangle:
		if v < 0.5 {
			return 2 * v
		}
		return 2 * (1 - v)
	case WaveScallop:
		return math.Abs(math.Sin(math.Pi * v))
	case WaveCubic:
		return v * v * (3 - 2*v)
	case WavePoly:
		if polyExp == 0 {
			polyExp = 1
		}
		return math.Pow(v, polyExp)
	default: // WaveRamp
		return v
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func fmodUnit(v float64) float64 {
	v = math.Mod(v, 1)
	if v < 0 {
		v++
	}
	return v
}

func checkerValue(p pmath.Vec3) float64 {
	ix := int(math.Floor(p.X))
	iz := int(math.Floor(p.Z))
	if (ix+iz)%2 == 0 {
		return 0
	}
	return 1
}

func (k Kind) String() string {
	names := map[Kind]string{
		KindBozo: "bozo", KindBumps: "bumps", KindSpotted: "spotted",
		KindGranite: "granite", KindDents: "dents", KindWrinkles: "wrinkles",
		KindMarble: "marble", KindAgate: "agate", KindCrackle: "crackle",
		KindFractal: "fractal", KindTilingHexagon: "tiling_hexagon",
		KindTilingSquare: "tiling_square", KindTilingTriangle: "tiling_triangle",
		KindTilingRhombus: "tiling_rhombus", KindTilingPenrose: "tiling_penrose",
		KindSlope: "slope", KindAOI: "aoi", KindFunction: "function",
		KindDensityFile: "density_file", KindGradient: "gradient",
		KindChecker: "checker", KindWood: "wood",
		KindImageMap: "image_map", KindAverage: "average",
		KindSpherical: "spherical", KindCylindrical: "cylindrical",
	}
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
