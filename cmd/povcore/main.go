// Command povcore renders one of the fixed demo scenes end-to-end and
// writes the result as a PPM image, exercising the full trace pipeline
// (camera -> shape -> pattern -> media -> light -> render) without any
// parser front-end or windowed viewer.
package main

import (
	"bufio"
	"flag"
	"fmt"
	stdmath "math"
	"os"

	"povcore/camera"
	"povcore/config"
	"povcore/core"
	"povcore/interior"
	"povcore/light"
	"povcore/logx"
	pmath "povcore/math"
	"povcore/media"
	"povcore/ray"
	"povcore/render"
	"povcore/scene"
	"povcore/shape"
	"povcore/thread"
)

func main() {
	width := flag.Int("width", 320, "image width in pixels")
	height := flag.Int("height", 240, "image height in pixels")
	out := flag.String("out", "out.ppm", "output PPM path")
	sceneName := flag.String("scene", "sphere", "demo scene: sphere, csg, fog")
	flag.Parse()

	log := logx.Default()
	log.Info("povcore starting", "scene", *sceneName, "width", *width, "height", *height)

	settings := config.Default()
	settings.Width, settings.Height = *width, *height
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid settings: %v\n", err)
		os.Exit(1)
	}

	scn, err := buildScene(*sceneName, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build scene %q: %v\n", *sceneName, err)
		os.Exit(1)
	}
	if err := scn.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid scene: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := renderToPPM(scn, settings, f); err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}
	log.Info("render complete", "out", *out)
}

// buildScene assembles one of a handful of fixed demo scenes; each mirrors
// one of the seed scenarios this render core's test suite also exercises.
func buildScene(name string, settings config.RenderSettings) (*scene.Scene, error) {
	switch name {
	case "sphere":
		return sphereScene(settings), nil
	case "csg":
		return csgScene(settings), nil
	case "fog":
		return fogScene(settings), nil
	default:
		return nil, fmt.Errorf("unknown scene %q", name)
	}
}

func sphereScene(settings config.RenderSettings) *scene.Scene {
	sph := shape.NewSphere(pmath.Vec3Zero, 1)

	cam := camera.New(stdmath.Pi/3, float64(settings.Width)/float64(settings.Height))
	cam.SetPosition(pmath.NewVec3(0, 0, -3))
	cam.LookAt(pmath.Vec3Zero, pmath.Vec3Up)

	scn := scene.New()
	scn.Settings = settings
	scn.Root = sph
	scn.Camera = cam
	scn.Ambient = core.NewColor(0.05, 0.05, 0.05, 1)
	scn.Background = core.NewColor(0, 0, 0, 1)
	scn.AddLight(light.NewPointLight(pmath.NewVec3(2, 2, -2), core.ColorWhite))
	return scn
}

func csgScene(settings config.RenderSettings) *scene.Scene {
	outer := shape.NewSphere(pmath.Vec3Zero, 1)
	inner := shape.NewSphere(pmath.NewVec3(0.3, 0, 0), 0.3)
	diff := shape.NewDifference(outer, inner)

	cam := camera.New(stdmath.Pi/3, float64(settings.Width)/float64(settings.Height))
	cam.SetPosition(pmath.NewVec3(-4, 1, -4))
	cam.LookAt(pmath.Vec3Zero, pmath.Vec3Up)

	scn := scene.New()
	scn.Settings = settings
	scn.Root = diff
	scn.Camera = cam
	scn.Ambient = core.NewColor(0.05, 0.05, 0.05, 1)
	scn.Background = core.NewColor(0, 0, 0, 1)
	scn.AddLight(light.NewPointLight(pmath.NewVec3(3, 3, -3), core.ColorWhite))
	return scn
}

func fogScene(settings config.RenderSettings) *scene.Scene {
	m := media.NewMedia()
	m.Absorption = core.NewColor(0.5, 0.5, 0.5, 1)
	m.Scattering = core.NewColor(0, 0, 0, 1)

	in := interior.NewInterior("fog")
	in.Media = append(in.Media, m)

	container := shape.NewSphere(pmath.Vec3Zero, 50)
	container.SetInterior(in)
	container.SetFlags(container.GetFlags() | shape.FlagHollow | shape.FlagNoImage)

	cam := camera.New(stdmath.Pi/3, float64(settings.Width)/float64(settings.Height))
	cam.SetPosition(pmath.Vec3Zero)
	cam.LookAt(pmath.NewVec3(0, 0, 1), pmath.Vec3Up)

	scn := scene.New()
	scn.Settings = settings
	scn.Root = container
	scn.Camera = cam
	scn.Background = core.NewColor(1, 1, 1, 1)
	return scn
}

// renderToPPM traces every pixel of scn at settings.Width x settings.Height
// and writes a binary-free (P3 ASCII) PPM, the simplest format that needs
// no external image-encoding dependency for a demo this small.
func renderToPPM(scn *scene.Scene, settings config.RenderSettings, w *os.File) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	fmt.Fprintf(bw, "P3\n%d %d\n255\n", settings.Width, settings.Height)

	th := thread.NewState(0, settings.RNGSeed)

	for y := 0; y < settings.Height; y++ {
		for x := 0; x < settings.Width; x++ {
			origin, dir := scn.Camera.RayForPixel(x, y, settings.Width, settings.Height)
			r := ray.New(origin, dir, ray.NewTicket(settings.MaxTraceDepth, 0))
			c := render.Trace(r, scn, th).Clamp()

			fmt.Fprintf(bw, "%d %d %d\n", to255(c.R), to255(c.G), to255(c.B))
		}
	}
	return bw.Flush()
}

func to255(v float64) int {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return int(v*255 + 0.5)
}
