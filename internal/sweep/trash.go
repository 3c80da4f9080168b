package sweep

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// moveToTrash relocates item under trashRoot, preserving its path
// relative to the scan root so the original layout can be restored by
// hand. Same-filesystem moves are a single rename; across filesystems
// the subtree is copied and then removed.
func (e *Executor) moveToTrash(item, trashRoot string) (string, error) {
	rel, err := filepath.Rel(e.scanRoot, item)
	if err != nil || filepath.IsAbs(rel) {
		rel = filepath.Base(item)
	}
	dest := filepath.Join(trashRoot, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	if _, err := os.Lstat(dest); err == nil {
		dest = uniquePath(dest)
	}

	if err := os.Rename(item, dest); err != nil {
		if !isCrossDevice(err) {
			return "", err
		}
		// Trash lives on another filesystem: copy, then remove the original.
		if err := copyTree(item, dest); err != nil {
			return "", err
		}
		if err := os.RemoveAll(item); err != nil {
			return "", err
		}
	}
	return dest, nil
}

// uniquePath appends -1, -2, ... until the candidate does not exist.
func uniquePath(path string) string {
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s-%d", path, counter)
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// copyTree duplicates src at dst: directories with their permissions,
// regular files byte for byte, symlinks as links (never followed).
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
