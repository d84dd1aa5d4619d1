package image

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"shotround/internal/platform/config"
	platformerrors "shotround/internal/platform/errors"
)

// OutputPathResolver decides where a transformed image lands. Destination
// precedence: replace the original, else the configured output folder, else
// an ephemeral temp file for clipboard-only runs.
type OutputPathResolver struct {
	cfg config.OutputConfig
}

// NewOutputPathResolver creates a resolver from the output configuration.
func NewOutputPathResolver(cfg config.OutputConfig) *OutputPathResolver {
	return &OutputPathResolver{cfg: cfg}
}

// Resolve returns the destination path for the given input and whether the
// destination is ephemeral. The output folder is created when needed.
func (r *OutputPathResolver) Resolve(inputPath string) (string, bool, error) {
	if !r.cfg.SaveToDesktop && !r.cfg.ReplaceOriginal {
		path := filepath.Join(os.TempDir(), fmt.Sprintf("rounded_%s.png", uuid.NewString()))
		return path, true, nil
	}

	if r.cfg.ReplaceOriginal {
		return inputPath, false, nil
	}

	if err := os.MkdirAll(r.cfg.Folder, 0o755); err != nil {
		return "", false, platformerrors.Wrap(
			platformerrors.KindWrite, "output.Resolve", "create output folder", err)
	}

	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	return filepath.Join(r.cfg.Folder, stem+"_rounded"+ext), false, nil
}
