// Package scene assembles what a parser front-end would otherwise hand
// the render core: a root CSG object, the active camera, the light list,
// and validated render settings. It replaces the teacher's rasterizer
// scene graph (Node/transform hierarchy, mesh primitives, frustum
// culling) — in a CSG ray tracer the object tree built in shape.Compound
// already is the scene graph, so there is no separate Node type here.
package scene

import (
	"fmt"

	"povcore/camera"
	"povcore/config"
	"povcore/core"
	"povcore/light"
	"povcore/shape"
)

// Scene is the complete, validated input to a render: the object tree,
// camera, lights, ambient/background color and settings.
type Scene struct {
	Root   shape.Object
	Camera *camera.Camera
	Lights []*light.Light

	Ambient    core.Color
	Background core.Color

	Settings config.RenderSettings
}

// New returns an empty scene with default settings and a black
// background, matching the teacher's NewScene default-construction
// convention (scene.NewScene in the prior rasterizer scene graph).
func New() *Scene {
	return &Scene{
		Settings:   config.Default(),
		Ambient:    core.Color{R: 0, G: 0, B: 0, A: 1},
		Background: core.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

func (s *Scene) AddLight(l *light.Light) {
	s.Lights = append(s.Lights, l)
}

// Validate reports the first structural problem found: a render needs a
// root object, a camera, and settings that pass their own validation.
func (s *Scene) Validate() error {
	if s.Root == nil {
		return fmt.Errorf("scene: no root object set")
	}
	if s.Camera == nil {
		return fmt.Errorf("scene: no camera set")
	}
	if err := s.Settings.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	return nil
}
