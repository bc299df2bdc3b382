// Package density reads and samples binary 3-D density grids (the "density
// file" pattern source used by media and by the density-file pigment/
// pattern kind). Grids are a compact header followed by a flat array of
// unsigned samples; the sample width is inferred from the file size rather
// than stored explicitly.
package density

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	pmath "povcore/math"
)

// Interpolation selects how Sample blends between lattice points.
type Interpolation int

const (
	Nearest Interpolation = iota
	Trilinear
	Tricubic
)

// Grid is a normalized [0,1] density field sampled on a regular lattice of
// NX x NY x NZ points, addressed in object space by (u,v,w) in [0,1]^3.
type Grid struct {
	NX, NY, NZ int
	data       []float64 // normalized to [0,1], length NX*NY*NZ
}

// header is the 6-byte big-endian record at the start of a density file:
// three uint16 axis counts.
type header struct {
	NX, NY, NZ uint16
}

// Read parses a density grid from r. The sample width (1, 2 or 4 bytes per
// point) is derived from the remaining byte count after the header, which
// must be exactly NX*NY*NZ times that width.
func Read(r io.Reader) (*Grid, error) {
	var hdr header
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("density: reading header: %w", err)
	}
	nx, ny, nz := int(hdr.NX), int(hdr.NY), int(hdr.NZ)
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("density: invalid dimensions %dx%dx%d", nx, ny, nz)
	}
	count := nx * ny * nz

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("density: reading samples: %w", err)
	}

	var width int
	switch len(rest) {
	case count:
		width = 1
	case count * 2:
		width = 2
	case count * 4:
		width = 4
	default:
		return nil, fmt.Errorf("density: sample data length %d does not match %d cells at 1, 2 or 4 bytes/sample", len(rest), count)
	}

	data := make([]float64, count)
	switch width {
	case 1:
		for i := 0; i < count; i++ {
			data[i] = float64(rest[i]) / 255.0
		}
	case 2:
		for i := 0; i < count; i++ {
			v := binary.BigEndian.Uint16(rest[i*2:])
			data[i] = float64(v) / 65535.0
		}
	case 4:
		for i := 0; i < count; i++ {
			v := binary.BigEndian.Uint32(rest[i*4:])
			data[i] = float64(v) / 4294967295.0
		}
	}

	return &Grid{NX: nx, NY: ny, NZ: nz, data: data}, nil
}

func (g *Grid) at(x, y, z int) float64 {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if z < 0 {
		z = 0
	}
	if x >= g.NX {
		x = g.NX - 1
	}
	if y >= g.NY {
		y = g.NY - 1
	}
	if z >= g.NZ {
		z = g.NZ - 1
	}
	return g.data[(z*g.NY+y)*g.NX+x]
}

// Sample evaluates the grid at object-space point p (expected in [0,1]^3,
// but safely clamped otherwise) using the requested interpolation.
func (g *Grid) Sample(p pmath.Vec3, interp Interpolation) float64 {
	fx := p.X * float64(g.NX-1)
	fy := p.Y * float64(g.NY-1)
	fz := p.Z * float64(g.NZ-1)

	switch interp {
	case Nearest:
		return g.at(int(math.Round(fx)), int(math.Round(fy)), int(math.Round(fz)))
	case Tricubic:
		return g.sampleTricubic(fx, fy, fz)
	default:
		return g.sampleTrilinear(fx, fy, fz)
	}
}

func (g *Grid) sampleTrilinear(fx, fy, fz float64) float64 {
	x0, y0, z0 := int(math.Floor(fx)), int(math.Floor(fy)), int(math.Floor(fz))
	tx, ty, tz := fx-float64(x0), fy-float64(y0), fz-float64(z0)

	c000 := g.at(x0, y0, z0)
	c100 := g.at(x0+1, y0, z0)
	c010 := g.at(x0, y0+1, z0)
	c110 := g.at(x0+1, y0+1, z0)
	c001 := g.at(x0, y0, z0+1)
	c101 := g.at(x0+1, y0, z0+1)
	c011 := g.at(x0, y0+1, z0+1)
	c111 := g.at(x0+1, y0+1, z0+1)

	c00 := lerp(c000, c100, tx)
	c10 := lerp(c010, c110, tx)
	c01 := lerp(c001, c101, tx)
	c11 := lerp(c011, c111, tx)

	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)

	return lerp(c0, c1, tz)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// cubicHermite is the Catmull-Rom basis used along each axis for tricubic
// interpolation: four samples straddling the interpolated point, weighted
// so the curve passes through every lattice value with continuous slope.
func cubicHermite(p0, p1, p2, p3, t float64) float64 {
	a := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	b := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	c := -0.5*p0 + 0.5*p2
	d := p1
	return ((a*t+b)*t+c)*t + d
}

func (g *Grid) sampleTricubic(fx, fy, fz float64) float64 {
	x0, y0, z0 := int(math.Floor(fx)), int(math.Floor(fy)), int(math.Floor(fz))
	tx, ty, tz := fx-float64(x0), fy-float64(y0), fz-float64(z0)

	var colZ [4]float64
	for dz := -1; dz <= 2; dz++ {
		var colY [4]float64
		for dy := -1; dy <= 2; dy++ {
			p0 := g.at(x0-1, y0+dy, z0+dz)
			p1 := g.at(x0, y0+dy, z0+dz)
			p2 := g.at(x0+1, y0+dy, z0+dz)
			p3 := g.at(x0+2, y0+dy, z0+dz)
			colY[dy+1] = cubicHermite(p0, p1, p2, p3, tx)
		}
		colZ[dz+1] = cubicHermite(colY[0], colY[1], colY[2], colY[3], ty)
	}
	return cubicHermite(colZ[0], colZ[1], colZ[2], colZ[3], tz)
}
