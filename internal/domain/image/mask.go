package image

import (
	"image"
	"image/color"
	"math"
)

// RoundedMask builds an alpha-only raster for a width×height image with the
// given corner radius: fully opaque inside the rounded rectangle, fully
// transparent beyond the corner arcs, with distance-based antialiasing on
// the arc boundary. A radius at or above half the smaller dimension clamps
// to the inscribed ellipse case.
func RoundedMask(width, height, radius int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))

	if radius < 1 {
		radius = 1
	}
	if half := minInt(width, height) / 2; radius > half {
		radius = half
	}

	r := float64(radius)
	right := float64(width-1) - r
	bottom := float64(height-1) - r

	for y := 0; y < height; y++ {
		fy := float64(y)
		for x := 0; x < width; x++ {
			fx := float64(x)

			// Corner circle center nearest to this pixel, if the pixel
			// falls inside one of the four corner squares.
			var cx, cy float64
			switch {
			case fx < r && fy < r:
				cx, cy = r, r
			case fx > right && fy < r:
				cx, cy = right, r
			case fx < r && fy > bottom:
				cx, cy = r, bottom
			case fx > right && fy > bottom:
				cx, cy = right, bottom
			default:
				mask.SetAlpha(x, y, alpha8(1))
				continue
			}

			d := math.Hypot(fx-cx, fy-cy)
			mask.SetAlpha(x, y, alpha8(r-d))
		}
	}

	return mask
}

// ApplyMask returns a copy of src with its alpha plane replaced by the mask.
// Replace (not multiply) keeps a second pass at the same radius from eroding
// the boundary further. The source buffer is never touched.
func ApplyMask(src *image.NRGBA, mask *image.Alpha) *image.NRGBA {
	bounds := src.Bounds()
	out := image.NewNRGBA(bounds)
	copy(out.Pix, src.Pix)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Pix[out.PixOffset(x, y)+3] = mask.AlphaAt(x, y).A
		}
	}

	return out
}

func alpha8(coverage float64) color.Alpha {
	if coverage <= 0 {
		return color.Alpha{}
	}
	if coverage >= 1 {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{A: uint8(math.Round(coverage * 255))}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
