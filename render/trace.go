// Package render ties shape, pattern and media together into the single
// operation the rest of this module exists to support: turning a camera
// ray into a colour. It owns no state of its own beyond what a Scene and
// a thread.State already carry.
package render

import (
	"povcore/core"
	"povcore/interior"
	"povcore/light"
	pmath "povcore/math"
	"povcore/media"
	"povcore/ray"
	"povcore/scene"
	"povcore/shape"
	"povcore/thread"
)

const shadowBias = 1e-4

// maxSceneExtent bounds the media integration distance when a ray escapes
// the scene entirely but is still travelling inside an interior (e.g. an
// unbounded fog volume) — matches shape's own maxDistance's role for
// primitives.
const maxSceneExtent = 1e6

// Trace walks r through scn and returns the colour it carries back to the
// camera: direct (Lambertian) lighting at the nearest surface hit, plus
// attenuation/in-scattering from any participating media the ray is
// currently travelling through, plus one level of mirror-style reflection
// recursion bounded by the ray's Ticket.
func Trace(r ray.Ray, scn *scene.Scene, th *thread.State) core.Color {
	if r.Ticket.ExceedsDepth() || r.Ticket.BelowImportanceThreshold(1e-3) {
		return scn.Background
	}

	hit, ok := nearestHit(r, scn.Root, th)
	if !ok {
		return attenuateThroughMedia(r, scn, th, maxSceneExtent, scn.Background)
	}

	if in := hit.Object.Interior(); in != nil && len(in.Media) > 0 && hit.Object.GetFlags().Has(shape.FlagHollow) {
		// traceMediaVolume integrates straight through the crossed span with
		// no refraction bending, an assumption that only holds while every
		// interior the ray already sits inside is itself hollow (IOR<=1, no
		// solid dielectric bending its path). A ray already inside a solid
		// interior falls through to ordinary shading/reflection instead of
		// pretending the straight-line media model still applies.
		if r.IsHollowRay(isHollowInterior) {
			return traceMediaVolume(hit, r, scn, th, in)
		}
	}

	surface := shade(hit, scn, th)
	surface = reflectedColor(hit, r, scn, th, surface)

	return attenuateThroughMedia(r, scn, th, hit.Depth, surface)
}

// traceMediaVolume handles a ray entering a hollow object that carries
// media: it finds where the ray leaves the volume (the next intersection
// along the same ray, possibly another object entirely), continues the
// trace from there, and folds the medium's emission/extinction integral
// over the crossed span in front of whatever the continuation returns.
// The hollow object's own surface contributes no direct shading — matching
// spec §4.1's no_image-style treatment of a pure media container.
func traceMediaVolume(entryHit shape.Intersection, r ray.Ray, scn *scene.Scene, th *thread.State, in *interior.Interior) core.Color {
	innerRay := r
	innerRay.EnterInterior(in)
	innerRay.Origin = r.At(entryHit.Depth + shadowBias)

	exitHit, ok := nearestHit(innerRay, scn.Root, th)

	var span float64
	var beyond core.Color
	if !ok {
		span = maxSceneExtent
		beyond = scn.Background
	} else {
		span = exitHit.Depth
		beyondRay := innerRay
		beyondRay.ExitInterior(in)
		beyondRay.Origin = exitHit.Point.Add(r.Direction.Mul(shadowBias))
		beyondRay.Ticket = r.Ticket.Descend(1.0)
		beyond = Trace(beyondRay, scn, th)
	}

	seg := media.Segment{Origin: entryHit.Point, Direction: r.Direction, Distance: span}
	result := media.Integrate(seg, in.Media, scn.Lights, th, mediaShadow(scn, th))

	t := result.Transmittance * in.FadeFactor(span)
	return core.Color{
		R: result.InScattered.R + beyond.R*t,
		G: result.InScattered.G + beyond.G*t,
		B: result.InScattered.B + beyond.B*t,
		A: 1,
	}
}

// nearestHit finds the closest positive-depth intersection of r against
// root, leaving the scratch IStack balanced on every return path.
func nearestHit(r ray.Ray, root shape.Object, th *thread.State) (shape.Intersection, bool) {
	if root == nil {
		return shape.Intersection{}, false
	}
	stk := shape.AcquireIStack()
	defer shape.ReleaseIStack(stk)

	root.AllIntersections(r, stk, th)
	stk.SortByDepth(0)
	hits := stk.All()
	if len(hits) == 0 {
		return shape.Intersection{}, false
	}
	return hits[0], true
}

// shade computes ambient + per-light Lambertian diffuse at hit, using the
// pigment colour of whichever texture applies at that point (the
// DetermineTextures seam for CSG compounds, the plain Texture() otherwise).
func shade(hit shape.Intersection, scn *scene.Scene, th *thread.State) core.Color {
	n := hit.Object.Normal(hit, th)
	albedo := pigmentAt(hit, n, th)

	result := core.Color{
		R: scn.Ambient.R * albedo.R,
		G: scn.Ambient.G * albedo.G,
		B: scn.Ambient.B * albedo.B,
		A: 1,
	}

	for _, l := range scn.Lights {
		toLight := l.Position.Sub(hit.Point)
		dist := toLight.Length()
		if dist < 1e-12 {
			continue
		}
		ldir := toLight.Mul(1 / dist)

		ndotl := n.Dot(ldir)
		if ndotl <= 0 {
			continue
		}

		if !l.NoShadow && inShadow(hit.Point, ldir, dist, scn.Root, th) {
			continue
		}

		result.R += albedo.R * l.Color.R * ndotl
		result.G += albedo.G * l.Color.G * ndotl
		result.B += albedo.B * l.Color.B * ndotl
	}

	return result
}

func pigmentAt(hit shape.Intersection, n pmath.Vec3, th *thread.State) core.Color {
	tex := textureAt(hit.Object, hit.Point, th)
	if tex == nil || tex.Pigment == nil {
		return core.ColorWhite
	}
	c := tex.Pigment.ColorAt(hit.Point, n, th)
	return core.Color{R: c.X, G: c.Y, B: c.Z, A: 1}
}

// textureAt resolves the applicable texture at p, recursing into CSG
// compounds via DetermineTextures.
func textureAt(o shape.Object, p pmath.Vec3, th *thread.State) *shape.Texture {
	if compound, ok := o.(*shape.Compound); ok {
		textures := compound.DetermineTextures(p, th)
		if len(textures) > 0 {
			return textures[0]
		}
		return nil
	}
	return o.Texture()
}

// inShadow reports whether any opaque geometry lies between p and the
// light at distance dist along ldir.
func inShadow(p, ldir pmath.Vec3, dist float64, root shape.Object, th *thread.State) bool {
	if root == nil {
		return false
	}
	origin := p.Add(ldir.Mul(shadowBias))
	shadowRay := ray.New(origin, ldir, ray.NewTicket(0, 0)).WithFlags(ray.Shadow)

	stk := shape.AcquireIStack()
	defer shape.ReleaseIStack(stk)
	root.AllIntersections(shadowRay, stk, th)
	for _, h := range stk.All() {
		if h.Depth > shadowBias && h.Depth < dist-shadowBias {
			return true
		}
	}
	return false
}

// reflectedColor adds one bounce of mirror reflection scaled by the
// interior's IOR-derived reflectivity (a simplified Fresnel stand-in —
// full Fresnel/refraction belongs to a later shading pass this package
// does not implement).
func reflectedColor(hit shape.Intersection, r ray.Ray, scn *scene.Scene, th *thread.State, base core.Color) core.Color {
	in := hit.Object.Interior()
	if in == nil || in.IOR <= 1.0 {
		return base
	}
	reflectivity := fresnelSchlick(in.IOR)
	if reflectivity < 1e-3 {
		return base
	}

	n := hit.Object.Normal(hit, th)
	incident := r.Direction
	reflectDir := incident.Sub(n.Mul(2 * incident.Dot(n)))

	childTicket := r.Ticket.Descend(reflectivity)
	reflectRay := ray.New(hit.Point.Add(reflectDir.Mul(shadowBias)), reflectDir, childTicket).WithFlags(ray.Reflection)
	reflected := Trace(reflectRay, scn, th)

	return core.Color{
		R: base.R*(1-reflectivity) + reflected.R*reflectivity,
		G: base.G*(1-reflectivity) + reflected.G*reflectivity,
		B: base.B*(1-reflectivity) + reflected.B*reflectivity,
		A: base.A,
	}
}

func fresnelSchlick(ior float64) float64 {
	r0 := (ior - 1) / (ior + 1)
	return r0 * r0
}

// isHollowInterior is the predicate traceMediaVolume's straight-line
// assumption relies on: an interior with IOR<=1 bends nothing, so a ray
// sitting only inside interiors like this one can be integrated as a
// straight segment instead of requiring refraction.
func isHollowInterior(in *interior.Interior) bool {
	return in.IOR <= 1.0
}

// attenuateThroughMedia folds in the participating-media integral for the
// interior the ray currently sits inside, over [0, limit].
func attenuateThroughMedia(r ray.Ray, scn *scene.Scene, th *thread.State, limit float64, surface core.Color) core.Color {
	in := r.CurrentInterior()
	if in == nil || len(in.Media) == 0 || limit <= 0 {
		return surface
	}

	seg := media.Segment{Origin: r.Origin, Direction: r.Direction, Distance: limit}
	result := media.Integrate(seg, in.Media, scn.Lights, th, mediaShadow(scn, th))

	t := result.Transmittance * in.FadeFactor(limit)
	return core.Color{
		R: surface.R*t + result.InScattered.R,
		G: surface.G*t + result.InScattered.G,
		B: surface.B*t + result.InScattered.B,
		A: surface.A,
	}
}

func mediaShadow(scn *scene.Scene, th *thread.State) media.ShadowFn {
	return func(p pmath.Vec3, l *light.Light) float64 {
		toLight := l.Position.Sub(p)
		dist := toLight.Length()
		if dist < 1e-12 {
			return 1
		}
		ldir := toLight.Mul(1 / dist)
		if inShadow(p, ldir, dist, scn.Root, th) {
			return 0
		}
		return 1
	}
}
