// Package cpufeature probes the host CPU once at startup and exposes the
// SIMD feature bits that a future accelerated noise/pattern backend could
// dispatch on. The render core itself only ever executes the portable
// path (spec.md's explicit Non-goal: "SIMD noise kernels ... only as
// optional accelerators behind a portable fallback") — this package's
// sole job is to pick which accelerator *would* run, never to provide one.
package cpufeature

import "golang.org/x/sys/cpu"

// Tier ranks the available dispatch targets from most to least capable.
// Portable is always a valid choice and is what the render core actually
// executes today.
type Tier int

const (
	Portable Tier = iota
	TierSSE2
	TierAVX
	TierAVX2FMA
)

func (t Tier) String() string {
	switch t {
	case TierAVX2FMA:
		return "avx2+fma"
	case TierAVX:
		return "avx"
	case TierSSE2:
		return "sse2"
	default:
		return "portable"
	}
}

// Features snapshots the feature bits this package cares about, read once
// at process start from golang.org/x/sys/cpu.
type Features struct {
	SSE2 bool
	AVX  bool
	AVX2 bool
	FMA  bool
}

// Detect reads the current host's feature bits.
func Detect() Features {
	return Features{
		SSE2: cpu.X86.HasSSE2,
		AVX:  cpu.X86.HasAVX,
		AVX2: cpu.X86.HasAVX2,
		FMA:  cpu.X86.HasFMA,
	}
}

// BestTier picks the highest dispatch tier the detected features support.
// AVX2+FMA beats plain AVX beats SSE2 beats the portable fallback; a
// future accelerated kernel set would key off this, the render core
// itself never does.
func (f Features) BestTier() Tier {
	switch {
	case f.AVX2 && f.FMA:
		return TierAVX2FMA
	case f.AVX:
		return TierAVX
	case f.SSE2:
		return TierSSE2
	default:
		return Portable
	}
}

// Advisory is a short human-readable line describing the detected
// capability and the tier actually in use (always Portable today),
// suitable for logging once at render startup.
func (f Features) Advisory() string {
	best := f.BestTier()
	if best == Portable {
		return "cpufeature: no usable SIMD tier detected, using portable path"
	}
	return "cpufeature: host supports " + best.String() + ", but render core runs the portable path only"
}
