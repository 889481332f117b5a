package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// Token colours used by the generated images.
var (
	TokenRed   = color.NRGBA{R: 200, G: 30, B: 30, A: 255}
	TokenBlue  = color.NRGBA{R: 30, G: 60, B: 200, A: 255}
	TokenClear = color.NRGBA{R: 0, G: 0, B: 0, A: 0}
)

// CreateTestImage creates a solid image with the specified dimensions and color.
func CreateTestImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// CreateTokenImage creates a round token on a fully transparent background,
// the shape a cut-out character token usually has.
func CreateTokenImage(width, height int, c color.Color) *image.NRGBA {
	img := CreateTestImage(width, height, TokenClear)
	cx, cy := width/2, height/2
	r := min(width, height) / 2
	for y := range height {
		for x := range width {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, c)
			}
		}
	}
	return img
}

// CreateMarkedImage creates an opaque image with a red top-left pixel and a
// blue bottom-right pixel, so a rotation can be told apart from a flip.
func CreateMarkedImage(width, height int) *image.NRGBA {
	img := CreateTestImage(width, height, color.White)
	img.Set(0, 0, TokenRed)
	img.Set(width-1, height-1, TokenBlue)
	return img
}

// SaveImage encodes img in the format implied by the file extension
// (.png .jpg .jpeg .gif .bmp) and returns the path.
func SaveImage(t *testing.T, img image.Image, path string) string {
	t.Helper()
	MkdirAll(t, filepath.Dir(path))
	require.NoError(t, imaging.Save(img, path), "Failed to encode image %s", path)
	return path
}

// WriteSolidImage saves a width×height image of colour c to dir/name.
func WriteSolidImage(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	return SaveImage(t, CreateTestImage(width, height, c), filepath.Join(dir, name))
}

// LoadImage loads an image from the specified path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()
	img, err := imaging.Open(path)
	require.NoError(t, err, "Failed to decode image %s", path)
	return img
}

// ColorsClose reports whether two colours differ by at most tolerance per
// 8-bit channel. JPEG round trips need a tolerance of a few levels.
func ColorsClose(a, b color.Color, tolerance uint8) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	within := func(x, y uint32) bool {
		x, y = x>>8, y>>8
		if x > y {
			return x-y <= uint32(tolerance)
		}
		return y-x <= uint32(tolerance)
	}
	return within(ar, br) && within(ag, bg) && within(ab, bb) && within(aa, ba)
}
