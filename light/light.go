// Package light holds the light-source data the media integrator and the
// (external) shading stage both read: position/direction, falloff shape,
// and whether the light participates in media lit-interval partitioning.
package light

import (
	"povcore/core"
	pmath "povcore/math"
)

// Kind selects the light's falloff geometry.
type Kind int

const (
	KindPoint Kind = iota
	KindSpot
	KindCylinder
)

// Light is a single scene light source.
type Light struct {
	Kind  Kind
	Color core.Color

	Position pmath.Vec3
	Axis     pmath.Vec3 // spot/cylinder direction, unit length

	// FalloffCosine is the spot cone's cosine-of-falloff mu; Radius is the
	// cylinder light's radius.
	FalloffCosine float64
	Radius        float64

	// MediaInteraction gates whether this light contributes lit intervals
	// to the media integrator at all (some lights are image-only).
	MediaInteraction bool
	// MediaAttenuation scales the light's contribution to in-scattering,
	// separate from its surface-shading intensity.
	MediaAttenuation float64

	NoShadow bool
}

// NewPointLight builds an omnidirectional light at position with colour c.
func NewPointLight(position pmath.Vec3, c core.Color) *Light {
	return &Light{
		Kind:             KindPoint,
		Color:            c,
		Position:         position,
		MediaInteraction: true,
		MediaAttenuation: 1,
	}
}

// NewSpotLight builds a cone light at position pointing along axis with
// the given half-angle cosine cutoff.
func NewSpotLight(position, axis pmath.Vec3, falloffCosine float64, c core.Color) *Light {
	return &Light{
		Kind:             KindSpot,
		Color:            c,
		Position:         position,
		Axis:             axis.Normalize(),
		FalloffCosine:    falloffCosine,
		MediaInteraction: true,
		MediaAttenuation: 1,
	}
}

// NewCylinderLight builds an infinite-cylinder light along axis with the
// given radius, used for architectural strip-light effects.
func NewCylinderLight(position, axis pmath.Vec3, radius float64, c core.Color) *Light {
	return &Light{
		Kind:             KindCylinder,
		Color:            c,
		Position:         position,
		Axis:             axis.Normalize(),
		Radius:           radius,
		MediaInteraction: true,
		MediaAttenuation: 1,
	}
}
