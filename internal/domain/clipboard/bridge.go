// Package clipboard reads and writes the platform clipboard image slot and
// runs the polling trigger that detects externally placed image data.
package clipboard

import (
	xclipboard "golang.design/x/clipboard"

	platformerrors "shotround/internal/platform/errors"
	"shotround/internal/platform/logging"
)

// Bridge exposes the single clipboard image slot. Payloads are PNG-encoded
// raster bytes; non-image clipboard content reads as absent and is
// overwritten on write.
type Bridge interface {
	// Read returns the current clipboard image payload, or false when the
	// clipboard holds no image.
	Read() ([]byte, bool)
	// Write replaces the clipboard contents with the given image payload.
	Write(data []byte) error
}

// Detect negotiates clipboard capability once at startup. On platforms or
// environments without clipboard access it returns a clipboard-kind error;
// callers treat that as a permanent capability absence and run disk-only,
// never retrying per call.
func Detect(logger *logging.Logger) (Bridge, error) {
	if err := xclipboard.Init(); err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindClipboard, "clipboard.Detect", "clipboard unavailable", err)
	}
	logger.InfoTag(logging.TagClip, "clipboard capability available")
	return &systemBridge{}, nil
}

type systemBridge struct{}

func (b *systemBridge) Read() ([]byte, bool) {
	data := xclipboard.Read(xclipboard.FmtImage)
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (b *systemBridge) Write(data []byte) error {
	xclipboard.Write(xclipboard.FmtImage, data)
	return nil
}
