package density

import (
	"bytes"
	"testing"

	pmath "povcore/math"
)

// a 2x2x2 grid, one byte per sample, with a single bright cell at (x=1,y=0,z=0).
func twoCubeGrid(t *testing.T) *Grid {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.Write([]byte{0, 2, 0, 2}) // NX=2, NY=2 (big-endian uint16 pairs)
	buf.Write([]byte{0, 2})       // NZ=2
	buf.Write([]byte{0, 255, 0, 0, 0, 0, 0, 0})

	g, err := Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return g
}

func TestReadParsesHeaderAndSamples(t *testing.T) {
	g := twoCubeGrid(t)
	if g.NX != 2 || g.NY != 2 || g.NZ != 2 {
		t.Fatalf("dimensions = %d,%d,%d, want 2,2,2", g.NX, g.NY, g.NZ)
	}
}

func TestSampleNearestMatchesLatticePoints(t *testing.T) {
	g := twoCubeGrid(t)

	if v := g.Sample(pmath.NewVec3(1, 0, 0), Nearest); v != 1.0 {
		t.Errorf("Sample(1,0,0) = %v, want 1.0", v)
	}
	if v := g.Sample(pmath.NewVec3(0, 0, 0), Nearest); v != 0.0 {
		t.Errorf("Sample(0,0,0) = %v, want 0.0", v)
	}
}

func TestSampleTrilinearInterpolatesBetweenLatticePoints(t *testing.T) {
	g := twoCubeGrid(t)

	got := g.Sample(pmath.NewVec3(0.5, 0, 0), Trilinear)
	if got < 0.49 || got > 0.51 {
		t.Errorf("Sample(0.5,0,0) trilinear = %v, want ~0.5", got)
	}
}

func TestReadRejectsMismatchedSampleLength(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write([]byte{0, 2, 0, 2, 0, 2})
	buf.Write([]byte{0, 1, 2}) // neither 8, 16 nor 32 bytes

	if _, err := Read(buf); err == nil {
		t.Error("expected an error for mismatched sample data length")
	}
}
