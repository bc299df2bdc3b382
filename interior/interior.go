// Package interior models an object's per-object volumetric properties:
// index of refraction, dispersion, fade distance/power, subsurface
// scattering coefficients, and the media stack that participates in the
// radiative-transfer integral when a ray travels through the object.
package interior

import (
	"math"

	"povcore/core"
	"povcore/media"
)

// Interior is owned by zero or more Objects via shared reference (multiple
// objects may point at the same *Interior; there is no copy-on-write,
// matching the immutable-after-construction rule every pattern/media type
// in this core follows).
type Interior struct {
	Name string

	IOR        float64
	Dispersion float64 // > 0 enables chromatic dispersion on refraction

	FadeDistance float64
	FadePower    float64

	Media []*media.Media

	SubsurfaceScattering bool
	SubsurfaceTranslucency core.Color
	SubsurfaceAnisotropy   float64
}

// NewInterior returns an Interior with IOR 1 (no refraction) and no media,
// the POV-Ray default for an object with no interior{} block at all.
func NewInterior(name string) *Interior {
	return &Interior{
		Name:         name,
		IOR:          1.0,
		FadeDistance: 0,
		FadePower:    0,
	}
}

// Clone returns a copy of the interior's scalar fields with its own Media
// slice whose entries point at the same *media.Media values, matching the
// spec's ownership rule that media pigments are not duplicate-on-write.
func (in *Interior) Clone(newName string) *Interior {
	clone := *in
	clone.Name = newName
	clone.Media = make([]*media.Media, len(in.Media))
	copy(clone.Media, in.Media)
	return &clone
}

// FadeFactor returns the distance-fade multiplier POV-Ray applies to a
// transmitted ray's contribution: 1 when FadeDistance is 0 (fading
// disabled), otherwise 1 / (1 + (distance/FadeDistance)^FadePower).
func (in *Interior) FadeFactor(distance float64) float64 {
	if in.FadeDistance <= 0 {
		return 1
	}
	ratio := distance / in.FadeDistance
	return 1 / (1 + math.Pow(ratio, in.FadePower))
}

// --- Glass-family preset library, in the teacher's "named constructor"
// idiom (see materials.GlassMaterial/MetalMaterial in the original repo). ---

// GlassInterior returns a typical window-glass interior: IOR 1.5, no
// dispersion, no media.
func GlassInterior() *Interior {
	in := NewInterior("glass")
	in.IOR = 1.5
	return in
}

// DiamondInterior returns a high-index, mildly dispersive interior typical
// of gemstone shaders.
func DiamondInterior() *Interior {
	in := NewInterior("diamond")
	in.IOR = 2.42
	in.Dispersion = 0.044
	return in
}

// WaterInterior returns a low-index interior with a colourless distance fade
// (FadeDistance 20, FadePower 2), modelling light absorption over distance through a body of water.
func WaterInterior() *Interior {
	in := NewInterior("water")
	in.IOR = 1.33
	in.FadeDistance = 20
	in.FadePower = 2
	return in
}

// FoggyInterior returns an interior with a single isotropic absorbing
// medium, the common case for "this object is a block of fog" scenes.
func FoggyInterior(density float64) *Interior {
	in := NewInterior("fog")
	in.IOR = 1.0
	m := media.NewMedia()
	m.Absorption = core.Color{R: density, G: density, B: density, A: 0}
	in.Media = append(in.Media, m)
	return in
}
