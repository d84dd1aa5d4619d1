package image

import (
	"context"
	"image"
	"image/draw"
	"image/png"
	"os"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"shotround/internal/platform/config"
	platformerrors "shotround/internal/platform/errors"
	"shotround/internal/platform/logging"
)

// Service runs the full transform chain for one source image: decode,
// radius policy, mask compositing, destination resolution, PNG encode.
// It carries no per-call state and is safe to use concurrently for
// distinct source paths.
type Service struct {
	policy   *RadiusPolicy
	resolver *OutputPathResolver
	logger   *logging.Logger
}

// NewService wires the pure components behind a single transform entry point.
func NewService(cfg *config.Config, logger *logging.Logger) *Service {
	return &Service{
		policy:   NewRadiusPolicy(cfg.Radius),
		resolver: NewOutputPathResolver(cfg.Output),
		logger:   logger,
	}
}

// Transform rounds the corners of the image at sourcePath and writes the
// result as PNG to the resolved destination. Decode failures produce a
// decode-kind error with no output written; write failures remove any
// partial file. Either way the failure stays local to this call.
func (s *Service) Transform(ctx context.Context, sourcePath string) (*Artifact, error) {
	start := time.Now()

	src, err := decodeNRGBA(sourcePath)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	radius := s.policy.Radius(width, height)
	s.logger.DebugTag(logging.TagImage, "computed radius %dpx for %dx%d", radius, width, height)

	mask := RoundedMask(width, height, radius)
	rounded := ApplyMask(src, mask)

	destPath, ephemeral, err := s.resolver.Resolve(sourcePath)
	if err != nil {
		return nil, err
	}

	if err := encodePNG(destPath, rounded); err != nil {
		return nil, err
	}

	s.logger.InfoTag(logging.TagImage, "processed %s -> %s (%dx%d r=%d) in %s",
		sourcePath, destPath, width, height, radius, time.Since(start).Round(time.Millisecond))

	return &Artifact{
		Path:      destPath,
		Ephemeral: ephemeral,
		Width:     width,
		Height:    height,
		Radius:    radius,
	}, nil
}

// decodeNRGBA reads and decodes any registered image format, converting the
// result to non-premultiplied RGBA so the mask can replace the alpha plane.
func decodeNRGBA(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindDecode, "image.Transform", "open source image", err)
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindDecode, "image.Transform", "decode source image", err)
	}

	if nrgba, ok := decoded.(*image.NRGBA); ok {
		return nrgba, nil
	}

	bounds := decoded.Bounds()
	nrgba := image.NewNRGBA(bounds)
	draw.Draw(nrgba, bounds, decoded, bounds.Min, draw.Src)
	return nrgba, nil
}

// encodePNG writes the buffer losslessly, removing the destination on any
// encode failure so callers never observe a partial file.
func encodePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindWrite, "image.Transform", "create destination", err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return platformerrors.Wrap(
			platformerrors.KindWrite, "image.Transform", "encode png", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return platformerrors.Wrap(
			platformerrors.KindWrite, "image.Transform", "flush destination", err)
	}

	return nil
}
