package image

import (
	"testing"

	"shotround/internal/platform/config"
)

func TestRadiusPolicy_PercentageMode(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		percentage float64
		expected   int
	}{
		{name: "landscape screenshot", width: 1200, height: 800, percentage: 0.05, expected: 40},
		{name: "portrait", width: 800, height: 1200, percentage: 0.05, expected: 40},
		{name: "square", width: 1000, height: 1000, percentage: 0.1, expected: 100},
		{name: "rounds down", width: 101, height: 200, percentage: 0.05, expected: 5},
		{name: "tiny image clamps to one", width: 10, height: 10, percentage: 0.01, expected: 1},
		{name: "half of smaller dimension", width: 100, height: 60, percentage: 0.5, expected: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewRadiusPolicy(config.RadiusConfig{
				UsePercentage: true,
				Percentage:    tt.percentage,
			})
			if got := policy.Radius(tt.width, tt.height); got != tt.expected {
				t.Errorf("Radius(%d, %d) = %d, expected %d", tt.width, tt.height, got, tt.expected)
			}
		})
	}
}

func TestRadiusPolicy_FixedMode(t *testing.T) {
	policy := NewRadiusPolicy(config.RadiusConfig{
		UsePercentage: false,
		Pixels:        20,
	})

	if got := policy.Radius(1200, 800); got != 20 {
		t.Errorf("expected fixed radius 20, got %d", got)
	}
}

func TestRadiusPolicy_OutOfRangeConfigStillYieldsMinimumOne(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.RadiusConfig
	}{
		{name: "zero percentage", cfg: config.RadiusConfig{UsePercentage: true, Percentage: 0}},
		{name: "negative percentage", cfg: config.RadiusConfig{UsePercentage: true, Percentage: -0.3}},
		{name: "zero fixed pixels", cfg: config.RadiusConfig{Pixels: 0}},
		{name: "negative fixed pixels", cfg: config.RadiusConfig{Pixels: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRadiusPolicy(tt.cfg).Radius(640, 480); got != 1 {
				t.Errorf("expected clamped radius 1, got %d", got)
			}
		})
	}
}

func TestRadiusPolicy_BoundsOverValidRange(t *testing.T) {
	sizes := [][2]int{{1200, 800}, {640, 480}, {33, 77}, {2, 2}, {5000, 3000}}
	percentages := []float64{0.01, 0.05, 0.25, 0.5}

	for _, size := range sizes {
		for _, pct := range percentages {
			policy := NewRadiusPolicy(config.RadiusConfig{UsePercentage: true, Percentage: pct})
			r := policy.Radius(size[0], size[1])

			minDim := size[0]
			if size[1] < minDim {
				minDim = size[1]
			}
			if r < 1 {
				t.Errorf("size %v pct %v: radius %d below 1", size, pct, r)
			}
			if minDim >= 2 && r > minDim/2 {
				t.Errorf("size %v pct %v: radius %d exceeds half of %d", size, pct, r, minDim)
			}
		}
	}
}
