package testing

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"shotround/internal/platform/config"
	"shotround/internal/platform/logging"
)

func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Log = config.LogConfig{
		Level: "DEBUG",
		Dir:   t.TempDir(),
		File:  "test.log",
	}
	cfg.Watch.Folder = t.TempDir()
	cfg.Output.Folder = t.TempDir()
	cfg.Staging.Dir = t.TempDir()
	cfg.Watch.SettleDelay = config.Duration(10 * time.Millisecond)
	cfg.Clipboard.PollInterval = config.Duration(10 * time.Millisecond)

	return cfg
}

func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.New(logging.Config{
		Level:    "DEBUG",
		Dir:      t.TempDir(),
		Filename: "test.log",
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })

	return logger
}

// WriteTestPNG writes a solid opaque PNG to path.
func WriteTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}
