// Package config holds the render settings a parser front-end would
// otherwise populate: image dimensions, the active noise generator,
// radiosity/photon toggles, and default media sampling quality. The core
// only validates and consumes this struct; nothing here reads a file or a
// command line (spec.md §6 "global settings block is delivered read-only").
package config

import (
	"fmt"

	"povcore/pattern"
)

// RenderSettings is the validated, read-only settings block every render
// package receives by value (or pointer-to-const-by-convention).
type RenderSettings struct {
	Width, Height int

	NoiseGenerator pattern.NoiseGenerator

	RadiosityEnabled bool
	PhotonsEnabled   bool

	// MaxTraceDepth bounds reflection/refraction recursion (spec §4.3's
	// Ticket.MaxDepth default).
	MaxTraceDepth int

	// Default media sampling quality, checked by Validate. media.NewMedia
	// sets its own Intervals/MinSamples/MaxSamples/Confidence defaults and
	// does not read these fields.
	MediaIntervals int
	MediaMinSamples int
	MediaMaxSamples int
	MediaConfidence float64

	// AdaptiveDepthLimit bounds the media integrator's adaptive-sampling
	// recursion (spec §4.4).
	AdaptiveDepthLimit int

	// RNGSeed seeds every thread.State's RNG stream deterministically;
	// zero means "derive from thread index only" (spec §5's
	// per-render-reproducible-given-seed requirement).
	RNGSeed uint64
}

// Default returns conservative settings suitable for the CLI demo: a small
// image, the improved Perlin noise generator, radiosity/photons off, and
// media quality matching POV-Ray's own out-of-the-box defaults.
func Default() RenderSettings {
	return RenderSettings{
		Width:  320,
		Height: 240,

		NoiseGenerator: pattern.NoiseImprovedPerlin,

		MaxTraceDepth: 5,

		MediaIntervals:  10,
		MediaMinSamples: 1,
		MediaMaxSamples: 1,
		MediaConfidence: 0.9,

		AdaptiveDepthLimit: 3,
	}
}

// Validate reports the first configuration error found, following the
// teacher's fmt.Errorf-wrapping convention for constructor-time validation
// (spec §7: fatal input-validation errors return error, never panic).
func (s RenderSettings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("config: image dimensions must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.MaxTraceDepth < 0 {
		return fmt.Errorf("config: MaxTraceDepth must be >= 0, got %d", s.MaxTraceDepth)
	}
	if s.MediaIntervals <= 0 {
		return fmt.Errorf("config: MediaIntervals must be positive, got %d", s.MediaIntervals)
	}
	if s.MediaMinSamples <= 0 || s.MediaMaxSamples < s.MediaMinSamples {
		return fmt.Errorf("config: media sample bounds invalid (min=%d max=%d)", s.MediaMinSamples, s.MediaMaxSamples)
	}
	if s.MediaConfidence <= 0 || s.MediaConfidence >= 1 {
		return fmt.Errorf("config: MediaConfidence must be in (0,1), got %v", s.MediaConfidence)
	}
	return nil
}
