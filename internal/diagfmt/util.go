package diagfmt

import (
	"errors"
	"path/filepath"

	"spice/internal/diag"
)

func formatPath(path string, mode PathMode) string {
	if mode == PathModeBasename && path != "" {
		return filepath.Base(path)
	}
	return path
}

func asLocated(err error, target *diag.Located) bool {
	return errors.As(err, target)
}
