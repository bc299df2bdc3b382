// Package ray defines the geometric ray the entire render core traces
// against: origin, direction, a type-bit mask (primary/reflect/refract/
// shadow/photon/radiosity), a stack of the interiors the ray currently sits
// inside, and a per-trace Ticket.
package ray

import (
	"povcore/interior"
	pmath "povcore/math"
)

// Flags is a bitmask of ray-type bits; object flags are tested against
// this mask to decide whether a given ray type should see an object at
// all (spec §4.1 "no_image"/"no_reflection"/etc).
type Flags uint16

const (
	Primary Flags = 1 << iota
	Reflection
	Refraction
	Shadow
	Photon
	Radiosity
)

// Ray is the unit of geometric work traced through the scene. It is
// constructed once at the top of a pixel trace and moved by value into
// every recursive call; only the Interiors stack is mutated in place as
// the ray crosses object boundaries.
type Ray struct {
	Origin    pmath.Vec3
	Direction pmath.Vec3 // unit length by convention outside of intermediate transforms

	Flags Flags

	Ticket Ticket

	// Interiors is the stack of interiors this ray currently sits inside,
	// innermost last. A ray's "IsHollowRay" invariant requires every one of
	// these be hollow.
	Interiors []*interior.Interior
}

// New constructs a primary ray; reflect/refract/shadow rays are built by
// copying the parent and overriding Origin/Direction/Flags/Ticket.
func New(origin, direction pmath.Vec3, ticket Ticket) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction.Normalize(),
		Flags:     Primary,
		Ticket:    ticket,
	}
}

// At returns the point along the ray at parametric distance t.
func (r Ray) At(t float64) pmath.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IsType reports whether every bit in mask is set on the ray's flags.
func (r Ray) IsType(mask Flags) bool {
	return r.Flags&mask == mask
}

// WithFlags returns a copy of the ray with a different type mask, used
// when spawning a reflection/refraction/shadow ray from a hit.
func (r Ray) WithFlags(f Flags) Ray {
	next := r
	next.Flags = f
	return next
}

// EnterInterior pushes an interior the ray has just crossed into. Rays own
// this stack exclusively even though the Interior it points to is shared.
func (r *Ray) EnterInterior(in *interior.Interior) {
	r.Interiors = append(r.Interiors, in)
}

// ExitInterior pops the most recently entered interior, if it matches in;
// a mismatch (crossing a surface the ray never registered entering, which
// can happen with degenerate/self-intersecting geometry) is silently a
// no-op rather than a panic, per the spec's local-recovery error policy.
func (r *Ray) ExitInterior(in *interior.Interior) {
	for i := len(r.Interiors) - 1; i >= 0; i-- {
		if r.Interiors[i] == in {
			r.Interiors = append(r.Interiors[:i], r.Interiors[i+1:]...)
			return
		}
	}
}

// IsHollowRay reports whether every interior this ray currently sits
// inside satisfies the caller-supplied isHollow predicate; render.Trace
// uses it to decide whether the straight-line media-volume path applies.
func (r Ray) IsHollowRay(isHollow func(*interior.Interior) bool) bool {
	for _, in := range r.Interiors {
		if !isHollow(in) {
			return false
		}
	}
	return true
}

// CurrentInterior returns the innermost interior the ray is inside, or nil
// if the ray is in open space.
func (r Ray) CurrentInterior() *interior.Interior {
	if len(r.Interiors) == 0 {
		return nil
	}
	return r.Interiors[len(r.Interiors)-1]
}
