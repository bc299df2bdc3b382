package pattern

import (
	"math"
	"math/cmplx"

	pmath "povcore/math"
	"povcore/thread"
)

// FractalAlgorithm selects which escape-time family evalFractal iterates.
type FractalAlgorithm int

const (
	FractalJulia FractalAlgorithm = iota
	FractalMandelbrot
	FractalJuliaN // julia3/4/x: z <- z^Exponent + c
	FractalMandelN
	FractalMagnet1
	FractalMagnet2
)

// ExteriorColoring selects how an escaped point maps to [0,1].
type ExteriorColoring int

const (
	ExteriorIterCount ExteriorColoring = iota
	ExteriorModulus
	ExteriorModulusSquared
	ExteriorModular
)

// FractalParams configures one Julia/Mandelbrot-family pattern.
type FractalParams struct {
	Algorithm    FractalAlgorithm
	Seed         complex128 // Julia constant; ignored for Mandelbrot variants
	Exponent     float64    // used by JuliaN/MandelN variants
	MaxIterating int
	Bailout      float64
	Exterior     ExteriorColoring
	Interior     float64 // constant interior value (POV-Ray's "interior 0 value" default)
}

// binomial returns C(n,k) by a direct multiplicative loop; no table is
// precomputed, and complexPowN does not call it.
func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result = result * float64(n-i) / float64(i+1)
	}
	return result
}

// complexPowN raises z to a real, possibly non-integer power by repeated
// complex multiplication when the exponent is an integer in [0,33], falling
// back to the general polar (de Moivre) form otherwise:
// r^n * (cos(n*theta) + i*sin(n*theta)).
// The polar branch is iterated many times per pixel across a fractal's
// escape-time loop, and neighbouring pixels land on the same quantized
// n*theta far more often than they land on the same z, so th's per-thread
// sin/cos cache (keyed on that quantized angle) is consulted here instead
// of recomputing cmplx.Pow's internal trig from scratch every call.
func complexPowN(z complex128, n float64, th *thread.State) complex128 {
	if n == math.Trunc(n) && n >= 0 && n <= 33 {
		intN := int(n)
		result := complex(1, 0)
		for i := 0; i < intN; i++ {
			result *= z
		}
		return result
	}

	r := cmplx.Abs(z)
	if r == 0 {
		return 0
	}
	theta := cmplx.Phase(z) * n
	newR := math.Pow(r, n)

	var sin, cos float64
	compute := func() (float64, float64) { return math.Sincos(theta) }
	if th != nil {
		quantized := int32(math.Round(theta * 180 / math.Pi * 100))
		sin, cos = th.SinCos(quantized, compute)
	} else {
		sin, cos = compute()
	}
	return complex(newR*cos, newR*sin)
}

func evalFractal(p pmath.Vec3, params *FractalParams, th *thread.State) float64 {
	maxIter := params.MaxIterating
	if maxIter <= 0 {
		maxIter = 64
	}
	bailout := params.Bailout
	if bailout <= 0 {
		bailout = 4
	}

	var z, c complex128
	switch params.Algorithm {
	case FractalMandelbrot, FractalMandelN, FractalMagnet1, FractalMagnet2:
		z = complex(0, 0)
		c = complex(p.X, p.Z)
	default: // Julia, JuliaN
		z = complex(p.X, p.Z)
		c = params.Seed
	}

	exp := params.Exponent
	if exp == 0 {
		exp = 2
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		switch params.Algorithm {
		case FractalMagnet1:
			num := z*z + c - 1
			den := 2*z + c - 2
			if den == 0 {
				break
			}
			z = num / den
			z = z * z
		case FractalMagnet2:
			num := z*z*z + 3*(c-1)*z + (c-1)*(c-2)
			den := 3*z*z + 3*(c-2)*z + (c-1)*(c-2) + 1
			if den == 0 {
				break
			}
			z = num / den
		case FractalJuliaN, FractalMandelN:
			z = complexPowN(z, exp, th) + c
		default:
			z = z*z + c
		}
		if cmplx.Abs(z) > bailout {
			break
		}
	}

	if iter >= maxIter {
		return clamp01(params.Interior)
	}

	switch params.Exterior {
	case ExteriorModulus:
		return clamp01(cmplx.Abs(z) / bailout)
	case ExteriorModulusSquared:
		m := cmplx.Abs(z)
		return clamp01((m * m) / (bailout * bailout))
	case ExteriorModular:
		return fmodUnit(float64(iter) / 8)
	default: // ExteriorIterCount
		return float64(iter) / float64(maxIter)
	}
}
