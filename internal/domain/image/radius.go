package image

import (
	"shotround/internal/platform/config"
)

// RadiusPolicy computes the corner radius for a given image size. Pure and
// total: any configuration yields a radius of at least 1.
type RadiusPolicy struct {
	cfg config.RadiusConfig
}

// NewRadiusPolicy creates a policy from the radius configuration.
func NewRadiusPolicy(cfg config.RadiusConfig) *RadiusPolicy {
	return &RadiusPolicy{cfg: cfg}
}

// Radius returns the corner radius in pixels for a width×height image.
// Percentage mode uses the smaller dimension; fixed mode uses the configured
// pixel value. The result is clamped to a minimum of 1.
func (p *RadiusPolicy) Radius(width, height int) int {
	var radius int
	if p.cfg.UsePercentage {
		minDim := width
		if height < minDim {
			minDim = height
		}
		radius = int(float64(minDim) * p.cfg.Percentage)
	} else {
		radius = p.cfg.Pixels
	}

	if radius < 1 {
		radius = 1
	}
	return radius
}
