package pattern

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	pmath "povcore/math"
)

// ImageMap is a loaded raster sampled by u/v into [0,1]^2, the way the
// image_map pigment indexes a 2D file instead of a 3D density grid.
type ImageMap struct {
	Width, Height int
	Pixels        []byte // row-major RGBA, 4 bytes/pixel, top-left origin
}

// LoadImageMap decodes path (any format registered via image.RegisterFormat,
// i.e. whichever of image/jpeg, image/png are blank-imported) into a flat
// RGBA pixel buffer.
func LoadImageMap(path string) (*ImageMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pattern: loading image map: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("pattern: decoding image map %s: %w", path, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, width*height*4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			idx := ((y-bounds.Min.Y)*width + (x - bounds.Min.X)) * 4
			pixels[idx] = uint8(r >> 8)
			pixels[idx+1] = uint8(g >> 8)
			pixels[idx+2] = uint8(b >> 8)
			pixels[idx+3] = uint8(a >> 8)
		}
	}
	return &ImageMap{Width: width, Height: height, Pixels: pixels}, nil
}

// At samples the nearest texel for u,v each wrapped into [0,1), with v=0 at
// the image's top row (matching the file's natural row order).
func (m *ImageMap) At(u, v float64) pmath.Vec3 {
	if m.Width == 0 || m.Height == 0 {
		return pmath.Vec3Zero
	}
	u = fmodUnit(u)
	v = fmodUnit(v)
	x := int(u * float64(m.Width))
	y := int(v * float64(m.Height))
	if x >= m.Width {
		x = m.Width - 1
	}
	if y >= m.Height {
		y = m.Height - 1
	}
	idx := (y*m.Width + x) * 4
	return pmath.NewVec3(
		float64(m.Pixels[idx])/255.0,
		float64(m.Pixels[idx+1])/255.0,
		float64(m.Pixels[idx+2])/255.0,
	)
}

// gray returns the luminance of the sampled texel, used when an image map
// feeds a pattern consumer that expects a scalar (a warp amount, a
// density-like pigment selector) rather than full colour.
func (m *ImageMap) gray(u, v float64) float64 {
	c := m.At(u, v)
	return clamp01(0.299*c.X + 0.587*c.Y + 0.114*c.Z)
}
