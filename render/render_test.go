package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"povcore/camera"
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

// TestTraceUnitSphereLambertian reproduces the single-sphere, single-light
// seed scenario: a unit sphere at the origin, camera at (0,0,-3) looking at
// the origin, a white point light at (2,2,-2), traced through the exact
// center pixel of a 1x1 frame so the primary ray runs along (0,0,1) and
// hits the sphere at t=2.
func TestTraceUnitSphereLambertian(t *testing.T) {
	sph := shape.NewSphere(pmath.Vec3Zero, 1)

	cam := camera.New(math.Pi/2, 1.0)
	cam.SetPosition(pmath.NewVec3(0, 0, -3))
	cam.LookAt(pmath.Vec3Zero, pmath.Vec3Up)

	scn := scene.New()
	scn.Root = sph
	scn.Camera = cam
	scn.AddLight(light.NewPointLight(pmath.NewVec3(2, 2, -2), core.ColorWhite))
	require.NoError(t, scn.Validate())

	origin, dir := cam.RayForPixel(0, 0, 1, 1)
	require.InDelta(t, 0, dir.Sub(pmath.NewVec3(0, 0, 1)).Length(), 1e-9)

	r := ray.New(origin, dir, ray.NewTicket(5, 0))
	th := thread.NewState(0, 1)

	got := Trace(r, scn, th)

	// hit point (0,0,-1), normal (0,0,-1); light direction (2,2,-1)/3,
	// n.L = 1/3, albedo defaults to white (no texture set).
	want := 1.0 / 3.0
	require.InDelta(t, want, got.R, 1e-6)
	require.InDelta(t, want, got.G, 1e-6)
	require.InDelta(t, want, got.B, 1e-6)
}

// TestTraceMissBackground confirms a ray that hits nothing returns the
// scene's background colour unchanged.
func TestTraceMissBackground(t *testing.T) {
	scn := scene.New()
	scn.Root = shape.NewSphere(pmath.NewVec3(10, 10, 10), 1)
	scn.Camera = camera.New(math.Pi/2, 1.0)
	scn.Background = core.NewColor(0.1, 0.2, 0.3, 1)
	require.NoError(t, scn.Validate())

	r := ray.New(pmath.Vec3Zero, pmath.NewVec3(0, 0, 1), ray.NewTicket(5, 0))
	got := Trace(r, scn, thread.NewState(0, 1))

	require.InDelta(t, 0.1, got.R, 1e-9)
	require.InDelta(t, 0.2, got.G, 1e-9)
	require.InDelta(t, 0.3, got.B, 1e-9)
}

// TestAttenuateThroughMediaUnitCubeDiagonal reproduces the homogeneous
// isotropic media seed scenario: absorption-only medium (sigma_a=0.5,
// sigma_s=0) integrated over a diagonal segment of length sqrt(3), with no
// emission and no lights contributing in-scatter, so the result reduces to
// exp(-sigma_a * D).
func TestAttenuateThroughMediaUnitCubeDiagonal(t *testing.T) {
	m := media.NewMedia()
	m.Absorption = core.NewColor(0.5, 0.5, 0.5, 1)
	m.Scattering = core.NewColor(0, 0, 0, 1)
	m.MinSamples = 1
	m.MaxSamples = 1

	in := interior.NewInterior("fog")
	in.Media = append(in.Media, m)

	distance := math.Sqrt(3)
	r := ray.New(pmath.Vec3Zero, pmath.NewVec3(1, 1, 1).Normalize(), ray.NewTicket(5, 0))
	r.Interiors = append(r.Interiors, in)

	scn := scene.New()
	scn.Background = core.NewColor(1, 1, 1, 1)

	got := attenuateThroughMedia(r, scn, thread.NewState(0, 1), distance, scn.Background)

	wantTransmittance := math.Exp(-0.5 * distance)
	wantColor := 1*wantTransmittance + 0 // background white times transmittance, no in-scatter (no lights)

	require.InDelta(t, wantColor, got.R, 1e-6)
	require.InDelta(t, wantColor, got.G, 1e-6)
	require.InDelta(t, wantColor, got.B, 1e-6)
	require.InDelta(t, wantTransmittance, math.Exp(-0.5*distance), 1e-12)
}

// TestTraceSkipsMediaVolumeWhenRayAlreadyInsideSolidInterior confirms a ray
// already travelling inside a solid (refractive) interior falls through to
// ordinary shading at a hollow, media-carrying object instead of being
// routed into the straight-line media integrator, which assumes no
// refraction bending anywhere along the ray's current interior stack.
func TestTraceSkipsMediaVolumeWhenRayAlreadyInsideSolidInterior(t *testing.T) {
	fog := interior.NewInterior("fog")
	fog.Media = append(fog.Media, media.NewMedia())

	sph := shape.NewSphere(pmath.Vec3Zero, 1)
	sph.SetFlags(sph.GetFlags() | shape.FlagHollow)
	sph.SetInterior(fog)

	cam := camera.New(math.Pi/2, 1.0)
	cam.SetPosition(pmath.NewVec3(0, 0, -3))
	cam.LookAt(pmath.Vec3Zero, pmath.Vec3Up)

	scn := scene.New()
	scn.Root = sph
	scn.Camera = cam
	scn.AddLight(light.NewPointLight(pmath.NewVec3(2, 2, -2), core.ColorWhite))
	require.NoError(t, scn.Validate())

	glass := interior.NewInterior("glass")
	glass.IOR = 1.5

	r := ray.New(pmath.NewVec3(0, 0, -3), pmath.NewVec3(0, 0, 1), ray.NewTicket(5, 0))
	r.Interiors = append(r.Interiors, glass)

	got := Trace(r, scn, thread.NewState(0, 1))

	// ordinary Lambertian shading at (0,0,-1): n.L = 1/3, white albedo.
	want := 1.0 / 3.0
	require.InDelta(t, want, got.R, 1e-6)
	require.InDelta(t, want, got.G, 1e-6)
	require.InDelta(t, want, got.B, 1e-6)
}

// TestAttenuateThroughMediaAppliesFadeFactor confirms a non-zero FadeDistance
// actually multiplies into the transmittance attenuateThroughMedia returns,
// on top of the medium's own optical-depth falloff.
func TestAttenuateThroughMediaAppliesFadeFactor(t *testing.T) {
	m := media.NewMedia()
	m.Absorption = core.NewColor(0, 0, 0, 1)
	m.Scattering = core.NewColor(0, 0, 0, 1)
	m.MinSamples = 1
	m.MaxSamples = 1

	in := interior.NewInterior("fading fog")
	in.Media = append(in.Media, m)
	in.FadeDistance = 10
	in.FadePower = 1

	distance := 10.0
	r := ray.New(pmath.Vec3Zero, pmath.NewVec3(0, 0, 1), ray.NewTicket(5, 0))
	r.Interiors = append(r.Interiors, in)

	scn := scene.New()
	scn.Background = core.NewColor(1, 1, 1, 1)

	got := attenuateThroughMedia(r, scn, thread.NewState(0, 1), distance, scn.Background)

	// no absorption/scattering means media transmittance is 1; FadeFactor at
	// distance==FadeDistance with FadePower=1 is 1/(1+1) = 0.5.
	require.InDelta(t, 0.5, got.R, 1e-9)
	require.InDelta(t, 0.5, got.G, 1e-9)
	require.InDelta(t, 0.5, got.B, 1e-9)
}
