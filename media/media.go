// Package media implements the participating-medium radiative-transfer
// integrator: lit-interval partitioning against light sources, three
// sample-placement strategies, and the five phase functions, combined into
// an along-ray emission/extinction accumulation.
package media

import (
	"math"

	"povcore/core"
	"povcore/light"
	pmath "povcore/math"
	"povcore/pattern"
	"povcore/thread"
)

// SampleMethod selects the per-interval sampling strategy.
type SampleMethod int

const (
	MethodUniform SampleMethod = iota + 1
	MethodStratified
	MethodAdaptive
)

// DensityPigment is a nested pattern evaluation that scales a medium's base
// coefficients by a spatially varying scalar.
type DensityPigment struct {
	Pattern *pattern.Pattern
}

func (d DensityPigment) sample(p pmath.Vec3, th *thread.State) float64 {
	if d.Pattern == nil {
		return 1
	}
	return d.Pattern.Eval(p, pmath.Vec3Up, th)
}

// Media is one participating-medium entry inside an Interior.
type Media struct {
	Absorption core.Color
	Emission   core.Color
	Scattering core.Color
	ScatteringScale float64

	Phase       PhaseFunction
	Eccentricity float64 // g, used only by Henyey-Greenstein

	Method     SampleMethod
	MinSamples int
	MaxSamples int
	Intervals  int
	Ratio      float64 // lit:unlit sample-count ratio, in [0,1]

	AAThreshold float64
	AALevel     int
	Jitter      float64

	Confidence float64 // target confidence for the chi-square variance cutoff
	Variance   float64 // target per-sample variance

	DensityPigments []DensityPigment
}

// NewMedia returns a Media with POV-Ray-typical defaults: method 2
// (stratified), 1 minimum sample per interval, isotropic phase.
func NewMedia() *Media {
	return &Media{
		ScatteringScale: 1,
		Phase:           PhaseIsotropic,
		Method:          MethodStratified,
		MinSamples:      1,
		MaxSamples:      1,
		Intervals:       10,
		Ratio:           0.9,
		AAThreshold:     0.1,
		AALevel:         3,
		Jitter:          0.5,
		Confidence:      0.9,
		Variance:        1.0 / 128,
	}
}

// coefficientsAt evaluates this medium's local emission/absorption/
// scattering at object-space point p, modulated by its density pigments.
// Extinction = absorption + scattering*scale, per the spec invariant.
func (m *Media) coefficientsAt(p pmath.Vec3, th *thread.State) (emission, extinction, scattering core.Color) {
	density := 1.0
	for _, dp := range m.DensityPigments {
		density *= dp.sample(p, th)
	}
	absorb := m.Absorption.Mul(density)
	scatter := m.Scattering.Mul(density * m.ScatteringScale)
	emit := m.Emission.Mul(density)
	ext := absorb.Add(scatter)
	return emit, ext, scatter
}

// ShadowFn reports what fraction of light reaches point p from the given
// light, accounting for intervening opaque and transparent-media geometry.
// It is supplied by the caller (the render package) rather than imported
// here, so this package never depends on the shape package.
type ShadowFn func(p pmath.Vec3, l *light.Light) float64

// Segment describes the ray segment through a stack of media that the
// integrator walks, from the caller's geometric trace.
type Segment struct {
	Origin    pmath.Vec3
	Direction pmath.Vec3 // unit length
	Distance  float64    // D, the terminal intersection depth
}

// Result is the accumulated in-scattered radiance and the surviving
// transmittance that should scale whatever colour arrives from beyond D.
type Result struct {
	InScattered   core.Color
	Transmittance float64
}

// Integrate solves the radiative-transfer integral along seg through the
// stacked media list, per spec §4.4.
func Integrate(seg Segment, medias []*Media, lights []*light.Light, th *thread.State, shadow ShadowFn) Result {
	if len(medias) == 0 || seg.Distance <= 0 {
		return Result{Transmittance: 1}
	}

	spans := partitionLitIntervals(seg.Origin, seg.Direction, seg.Distance, lights)
	nLit := 0
	for _, s := range spans {
		if len(s.LightIdx) > 0 {
			nLit++
		}
	}

	totalIntervals := 0
	for _, m := range medias {
		if m.Intervals > totalIntervals {
			totalIntervals = m.Intervals
		}
	}
	if nLit > totalIntervals {
		totalIntervals = nLit
	}
	if totalIntervals < 1 {
		totalIntervals = 1
	}
	ratio := medias[0].Ratio
	counts := allocateSamples(spans, totalIntervals, ratio)

	accumulated := core.ColorBlack
	opticalDepthSoFar := 0.0

	for si, span := range spans {
		spanLights := make([]*light.Light, 0, len(span.LightIdx))
		for _, idx := range span.LightIdx {
			spanLights = append(spanLights, lights[idx])
		}

		n := counts[si]
		if n < 1 {
			n = 1
		}

		spanLen := span.End - span.Start
		if spanLen <= 0 {
			continue
		}

		method := medias[0].Method
		switch method {
		case MethodAdaptive:
			emission, od := adaptiveSampleSpan(seg, span, medias, spanLights, th, shadow, 0, opticalDepthSoFar)
			accumulated = accumulated.Add(emission)
			opticalDepthSoFar += od
		default:
			minN := medias[0].MinSamples
			if minN < 1 {
				minN = 1
			}
			if n < minN {
				n = minN
			}
			maxN := medias[0].MaxSamples
			if maxN < minN {
				maxN = minN
			}

			emission, od := fixedSampleSpan(seg, span, medias, spanLights, th, shadow, method, n, maxN)
			attenuated := emission.Mul(math.Exp(-opticalDepthSoFar))
			accumulated = accumulated.Add(attenuated)
			opticalDepthSoFar += od
		}
	}

	return Result{
		InScattered:   accumulated,
		Transmittance: math.Exp(-opticalDepthSoFar),
	}
}

func sampleLightContribution(p pmath.Vec3, viewDir pmath.Vec3, scattering core.Color, m *Media, spanLights []*light.Light, th *thread.State, shadow ShadowFn) core.Color {
	total := core.ColorBlack
	for _, l := range spanLights {
		lightDir := l.Position.Sub(p).Normalize()
		cosTheta := lightDir.Dot(viewDir.Mul(-1))
		ph := evalPhase(m.Phase, cosTheta, m.Eccentricity)

		visibility := 1.0
		if shadow != nil {
			visibility = shadow(p, l)
		}
		contribution := l.Color.Mul(ph * visibility * l.MediaAttenuation).MulColor(scattering)
		total = total.Add(contribution)
	}
	return total
}

func evalMediasAt(p pmath.Vec3, medias []*Media, th *thread.State) (emission, extinctionScalar float64, scatterColor core.Color, scatterMedia *Media) {
	totalEmission := core.ColorBlack
	totalExtinction := core.ColorBlack
	totalScatter := core.ColorBlack
	var anyMedia *Media
	for _, m := range medias {
		e, ext, sc := m.coefficientsAt(p, th)
		totalEmission = totalEmission.Add(e)
		totalExtinction = totalExtinction.Add(ext)
		totalScatter = totalScatter.Add(sc)
		anyMedia = m
	}
	return totalEmission.Greyscale(), totalExtinction.Greyscale(), totalScatter, anyMedia
}

func fixedSampleSpan(seg Segment, span litSpan, medias []*Media, spanLights []*light.Light, th *thread.State, shadow ShadowFn, method SampleMethod, minN, maxN int) (core.Color, float64) {
	spanLen := span.End - span.Start
	accum := core.ColorBlack
	odSum := 0.0
	n := minN

	for {
		accum = core.ColorBlack
		odSum = 0.0
		sumSq := 0.0
		for i := 0; i < n; i++ {
			var frac float64
			if method == MethodStratified {
				jitter := 0.0
				if th != nil {
					jitter = (th.Float64() - 0.5) * span0Jitter(n)
				}
				frac = (float64(i) + 0.5) / float64(n) + jitter
			} else {
				u := 0.5
				if th != nil {
					u = th.Float64()
				}
				frac = (float64(i) + u) / float64(n)
			}
			if frac < 0 {
				frac = 0
			}
			if frac > 1 {
				frac = 1
			}

			t := span.Start + frac*spanLen
			p := seg.Origin.Add(seg.Direction.Mul(t))

			emission, extinction, scatterColor, m := evalMediasAt(p, medias, th)
			if m == nil {
				continue
			}
			inScatter := sampleLightContribution(p, seg.Direction, scatterColor, m, spanLights, th, shadow)
			sampleColor := inScatter.Add(core.Color{R: emission, G: emission, B: emission, A: 0})
			accum = accum.Add(sampleColor)
			sumSq += sampleColor.Greyscale() * sampleColor.Greyscale()
			odSum += extinction * (spanLen / float64(n))
		}
		// Variance-extension loop: the uniform method re-samples at 2x
		// density, up to maxN, while the per-sample variance of the pass
		// exceeds the medium's Variance target.
		if method != MethodUniform || n >= maxN {
			break
		}
		mean := accum.Greyscale() / float64(n)
		if sumSq/float64(n)-mean*mean <= medias[0].Variance {
			break
		}
		n *= 2
		if n > maxN {
			n = maxN
		}
	}

	if n > 0 {
		accum = accum.Mul(1.0 / float64(n))
	}
	return accum, odSum
}

func span0Jitter(n int) float64 {
	if n <= 0 {
		return 0
	}
	return 1.0 / float64(n)
}

// adaptiveSampleSpan implements method 3: sample the two endpoints and the
// midpoint, recursing on halves whose contributions differ by more than
// aa_threshold, down to aa_level levels, attenuating incrementally between
// sub-samples.
func adaptiveSampleSpan(seg Segment, span litSpan, medias []*Media, spanLights []*light.Light, th *thread.State, shadow ShadowFn, level int, odSoFar float64) (core.Color, float64) {
	m := medias[0]
	if level >= m.AALevel || span.End-span.Start < 1e-9 {
		return sampleSingleAdaptivePoint(seg, span.Start, span.End, medias, spanLights, th, shadow, odSoFar)
	}

	cStart, odStart := sampleSingleAdaptivePoint(seg, span.Start, span.Start, medias, spanLights, th, shadow, odSoFar)
	cEnd, _ := sampleSingleAdaptivePoint(seg, span.End, span.End, medias, spanLights, th, shadow, odSoFar)

	diff := math.Abs(cStart.Greyscale() - cEnd.Greyscale())
	if diff <= m.AAThreshold {
		return sampleSingleAdaptivePoint(seg, span.Start, span.End, medias, spanLights, th, shadow, odSoFar)
	}

	mid := (span.Start + span.End) / 2
	leftSpan := litSpan{Start: span.Start, End: mid, LightIdx: span.LightIdx}
	rightSpan := litSpan{Start: mid, End: span.End, LightIdx: span.LightIdx}

	leftColor, leftOD := adaptiveSampleSpan(seg, leftSpan, medias, spanLights, th, shadow, level+1, odSoFar)
	rightColor, rightOD := adaptiveSampleSpan(seg, rightSpan, medias, spanLights, th, shadow, level+1, odSoFar+leftOD)

	_ = odStart
	return leftColor.Add(rightColor.Mul(math.Exp(-leftOD))), leftOD + rightOD
}

func sampleSingleAdaptivePoint(seg Segment, tStart, tEnd float64, medias []*Media, spanLights []*light.Light, th *thread.State, shadow ShadowFn, odSoFar float64) (core.Color, float64) {
	t := (tStart + tEnd) / 2
	p := seg.Origin.Add(seg.Direction.Mul(t))
	emission, extinction, scatterColor, m := evalMediasAt(p, medias, th)
	if m == nil {
		return core.ColorBlack, 0
	}
	inScatter := sampleLightContribution(p, seg.Direction, scatterColor, m, spanLights, th, shadow)
	sampleColor := inScatter.Add(core.Color{R: emission, G: emission, B: emission, A: 0})
	length := tEnd - tStart
	od := extinction * length
	return sampleColor.Mul(math.Exp(-odSoFar) * length), od
}
