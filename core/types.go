// Package core holds small value types shared across the render core:
// spectral colour and the affine Transform every Object carries.
package core

import (
	"povcore/math"
)

// Color is an RGBA radiance/reflectance value. The render core treats it as
// a 3-band spectral stand-in (R,G,B) plus a transmit/alpha channel; it is
// not a display colour until the (external) image back end tone-maps it.
type Color struct {
	R, G, B, A float64
}

var (
	ColorWhite  = Color{1, 1, 1, 1}
	ColorBlack  = Color{0, 0, 0, 1}
	ColorRed    = Color{1, 0, 0, 1}
	ColorGreen  = Color{0, 1, 0, 1}
	ColorBlue   = Color{0, 0, 1, 1}
	ColorYellow = Color{1, 1, 0, 1}
)

func NewColor(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

func (c Color) Add(o Color) Color {
	return Color{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B, A: c.A + o.A}
}

func (c Color) Sub(o Color) Color {
	return Color{R: c.R - o.R, G: c.G - o.G, B: c.B - o.B, A: c.A - o.A}
}

// Mul scales every channel, A included, by a scalar (attenuation, weight).
func (c Color) Mul(scalar float64) Color {
	return Color{R: c.R * scalar, G: c.G * scalar, B: c.B * scalar, A: c.A * scalar}
}

// MulColor is a component-wise (Hadamard) product, used to modulate a light
// colour by a surface pigment or a medium's transmittance.
func (c Color) MulColor(o Color) Color {
	return Color{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

func (c Color) Lerp(o Color, t float64) Color {
	return c.Add(o.Sub(c).Mul(t))
}

// Greyscale returns the NTSC luma-weighted intensity, used by a few pattern
// kinds (slope, density) that need a single scalar from a colour input.
func (c Color) Greyscale() float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// Clamp clamps every channel to [0,1], used right before the image back end
// receives a final pixel colour.
func (c Color) Clamp() Color {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return Color{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}

// Transform is the affine transform every Object carries: a TRS decomposition
// plus the composed forward matrix. Objects store both the forward and the
// inverse (see shape.AffineTransform) since intersection routines work in
// object space.
type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

func (t Transform) GetMatrix() math.Mat4 {
	translation := math.Mat4Translation(t.Position)
	rotation := t.Rotation.ToMat4()
	scale := math.Mat4Scale(t.Scale)
	return translation.Mul(rotation).Mul(scale)
}

func (t Transform) GetForward() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Front)
}

func (t Transform) GetRight() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Right)
}

func (t Transform) GetUp() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Up)
}
