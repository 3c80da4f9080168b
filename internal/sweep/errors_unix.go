//go:build !windows

package sweep

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isCrossDevice reports whether err is a rename across filesystems,
// which needs the copy-then-remove fallback.
func isCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
