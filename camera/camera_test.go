package camera

import (
	"math"
	"testing"

	pmath "povcore/math"
)

func TestRayForPixelCenterLooksForward(t *testing.T) {
	c := New(math.Pi/2, 1.0)
	c.SetPosition(pmath.NewVec3(0, 0, 5))
	c.LookAt(pmath.Vec3Zero, pmath.Vec3Up)

	width, height := 100, 100
	_, dir := c.RayForPixel(width/2, height/2, width, height)

	want := pmath.NewVec3(0, 0, -1)
	if dir.Sub(want).Length() > 0.05 {
		t.Errorf("center pixel ray should point toward target, got %v", dir)
	}
}

func TestRayForPixelCornersDiverge(t *testing.T) {
	c := New(math.Pi/2, 1.0)
	c.SetPosition(pmath.Vec3Zero)
	c.LookAt(pmath.NewVec3(0, 0, -1), pmath.Vec3Up)

	_, topLeft := c.RayForPixel(0, 0, 100, 100)
	_, bottomRight := c.RayForPixel(99, 99, 100, 100)

	if topLeft.Sub(bottomRight).Length() < 0.1 {
		t.Error("opposite corner rays should diverge noticeably")
	}
}
