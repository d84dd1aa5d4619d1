package image

import (
	"image"
	"image/color"
	"testing"
)

func cornerPixels(w, h int) [][2]int {
	return [][2]int{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}}
}

func TestRoundedMask_CornersTransparentCenterOpaque(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		radius int
	}{
		{name: "typical screenshot", width: 120, height: 80, radius: 8},
		{name: "minimum radius", width: 40, height: 40, radius: 1},
		{name: "large radius", width: 200, height: 100, radius: 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := RoundedMask(tt.width, tt.height, tt.radius)

			for _, c := range cornerPixels(tt.width, tt.height) {
				if a := mask.AlphaAt(c[0], c[1]).A; a != 0 {
					t.Errorf("corner pixel (%d,%d) alpha = %d, expected 0", c[0], c[1], a)
				}
			}

			if a := mask.AlphaAt(tt.width/2, tt.height/2).A; a != 0xff {
				t.Errorf("center pixel alpha = %d, expected 255", a)
			}
		})
	}
}

func TestRoundedMask_EdgeMidpointsOpaque(t *testing.T) {
	mask := RoundedMask(100, 60, 10)

	edges := [][2]int{{50, 0}, {50, 59}, {0, 30}, {99, 30}}
	for _, e := range edges {
		if a := mask.AlphaAt(e[0], e[1]).A; a != 0xff {
			t.Errorf("edge midpoint (%d,%d) alpha = %d, expected 255", e[0], e[1], a)
		}
	}
}

func TestRoundedMask_AlphaMonotoneTowardCenter(t *testing.T) {
	mask := RoundedMask(100, 100, 20)

	// Walk the diagonal from the top-left corner toward the center: alpha
	// must never decrease inside the corner's quarter-circle region.
	prev := -1
	for i := 0; i < 20; i++ {
		a := int(mask.AlphaAt(i, i).A)
		if a < prev {
			t.Fatalf("alpha decreased from %d to %d at diagonal step %d", prev, a, i)
		}
		prev = a
	}
}

func TestRoundedMask_BoundaryIsAntialiased(t *testing.T) {
	mask := RoundedMask(200, 200, 40)

	partial := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			a := mask.AlphaAt(x, y).A
			if a > 0 && a < 0xff {
				partial++
			}
		}
	}
	if partial == 0 {
		t.Error("expected partially transparent pixels along the arc boundary")
	}
}

func TestRoundedMask_DegenerateRadiusClampsToEllipse(t *testing.T) {
	// Radius beyond half the smaller dimension must not crash or wrap.
	mask := RoundedMask(40, 40, 1000)

	if a := mask.AlphaAt(0, 0).A; a != 0 {
		t.Errorf("degenerate mask corner alpha = %d, expected 0", a)
	}
	if a := mask.AlphaAt(20, 20).A; a != 0xff {
		t.Errorf("degenerate mask center alpha = %d, expected 255", a)
	}
	// Edge midpoints sit on the inscribed ellipse and stay visible.
	if a := mask.AlphaAt(20, 0).A; a == 0 {
		t.Error("top edge midpoint should not be fully transparent in ellipse case")
	}
}

func TestApplyMask_ReplacesAlphaWithoutMutatingSource(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 0xff})
		}
	}

	mask := RoundedMask(10, 10, 3)
	out := ApplyMask(src, mask)

	if a := src.NRGBAAt(0, 0).A; a != 0xff {
		t.Errorf("source buffer was mutated: corner alpha = %d", a)
	}
	if a := out.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("output corner alpha = %d, expected 0", a)
	}
	if c := out.NRGBAAt(5, 5); c.R != 200 || c.G != 100 || c.B != 50 || c.A != 0xff {
		t.Errorf("output center pixel changed color: %+v", c)
	}
}

func TestApplyMask_SecondPassDoesNotErodeFurther(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 0xff})
		}
	}

	mask := RoundedMask(60, 60, 12)
	once := ApplyMask(src, mask)
	twice := ApplyMask(once, mask)

	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			first := once.NRGBAAt(x, y).A
			second := twice.NRGBAAt(x, y).A
			if second < first {
				t.Fatalf("alpha at (%d,%d) eroded from %d to %d on second pass", x, y, first, second)
			}
		}
	}
}
