package clipboard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	platformerrors "shotround/internal/platform/errors"
)

// StagingPrefix marks temp files holding clipboard payloads awaiting
// transform. The janitor sweeps files with this prefix.
const StagingPrefix = "clipboard_"

// stagePayload writes clipboard bytes to a fresh temp file so the transform
// service can consume them through its path-based entry point.
func stagePayload(dir string, data []byte) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s%s.png", StagingPrefix, uuid.NewString()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", platformerrors.Wrap(
			platformerrors.KindClipboard, "clipboard.stage", "write staging file", err)
	}
	return path, nil
}
