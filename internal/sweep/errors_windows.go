//go:build windows

package sweep

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isCrossDevice reports whether err is a rename across volumes, which
// needs the copy-then-remove fallback.
func isCrossDevice(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SAME_DEVICE)
}
