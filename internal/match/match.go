// Package match decides what the scanner may do with a directory:
// report it as a cleanup target, skip it, or refuse to go anywhere
// near it. Classification is a pure function of the path and the
// static config, so results never depend on scan order.
package match

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/drew-simmons/fsweep/internal/config"
)

// Class is the outcome of classifying one directory.
type Class int

const (
	// ClassNone means an ordinary directory: not reported, descended into.
	ClassNone Class = iota

	// ClassTarget means the directory is a cleanup candidate. The match
	// consumes the whole subtree; nothing beneath it is visited.
	ClassTarget

	// ClassExcluded means a glob exclude matched. The directory is never
	// reported, but descent into its children continues — exclusion is
	// advisory per directory, not subtree-wide.
	ClassExcluded

	// ClassProtected means the directory must never be touched: it is the
	// filesystem root, the home directory, or it equals / contains / is
	// contained by a configured protected path.
	ClassProtected

	// ClassIgnored means the directory carries the ignore marker file and
	// the entire subtree is invisible to the scan.
	ClassIgnored
)

func (c Class) String() string {
	switch c {
	case ClassTarget:
		return "target"
	case ClassExcluded:
		return "excluded"
	case ClassProtected:
		return "protected"
	case ClassIgnored:
		return "ignored"
	default:
		return "none"
	}
}

// Matcher classifies directories beneath one scan root. It is stateless
// after construction and safe for concurrent use.
type Matcher struct {
	root      string
	home      string
	cfg       *config.SweepConfig
	protected []string
}

// New builds a Matcher for a resolved scan root. The filesystem root and
// the user's home directory are always protected, regardless of config.
func New(root string, cfg *config.SweepConfig) *Matcher {
	home, err := homedir.Dir()
	if err != nil {
		home = ""
	} else {
		home = filepath.Clean(home)
	}

	protected := make([]string, 0, len(cfg.ProtectedPaths))
	for _, p := range cfg.ProtectedPaths {
		protected = append(protected, filepath.Clean(p))
	}

	return &Matcher{
		root:      filepath.Clean(root),
		home:      home,
		cfg:       cfg,
		protected: protected,
	}
}

// Classify applies the rule precedence protected > ignored > excluded >
// target to one absolute directory path.
func (m *Matcher) Classify(dir string) Class {
	dir = filepath.Clean(dir)

	if m.isProtected(dir) {
		return ClassProtected
	}
	if m.hasIgnoreMarker(dir) {
		return ClassIgnored
	}
	excluded := m.isExcluded(dir)
	if excluded {
		return ClassExcluded
	}
	if m.cfg.TargetFolders[filepath.Base(dir)] {
		return ClassTarget
	}
	return ClassNone
}

// Enterable reports whether descent may continue into a protected
// directory. A directory that merely sits above a protected path stays
// enterable so targets elsewhere in its subtree are still found; the
// protected path itself and everything beneath it are off limits.
func (m *Matcher) Enterable(dir string) bool {
	dir = filepath.Clean(dir)
	if m.isUnconditionallyProtected(dir) {
		return false
	}
	for _, p := range m.protected {
		if dir == p || isAncestor(p, dir) {
			return false
		}
	}
	return true
}

func (m *Matcher) isProtected(dir string) bool {
	if m.isUnconditionallyProtected(dir) {
		return true
	}
	for _, p := range m.protected {
		// Equal to, inside, or above a protected path: deleting any of
		// these would destroy protected content.
		if dir == p || isAncestor(p, dir) || isAncestor(dir, p) {
			return true
		}
	}
	return false
}

// isUnconditionallyProtected covers the two roots that no configuration
// can unprotect.
func (m *Matcher) isUnconditionallyProtected(dir string) bool {
	if dir == string(filepath.Separator) {
		return true
	}
	if vol := filepath.VolumeName(dir); vol != "" && dir == vol+string(filepath.Separator) {
		return true
	}
	return m.home != "" && dir == m.home
}

// isExcluded matches each glob against the scan-relative path and
// against the base name, whichever hits first.
func (m *Matcher) isExcluded(dir string) bool {
	rel, err := filepath.Rel(m.root, dir)
	if err != nil {
		rel = dir
	}
	rel = filepath.ToSlash(rel)
	name := filepath.Base(dir)

	for _, pattern := range m.cfg.ExcludePatterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// hasIgnoreMarker reports whether dir directly contains the reserved
// marker file.
func (m *Matcher) hasIgnoreMarker(dir string) bool {
	info, err := os.Lstat(filepath.Join(dir, config.IgnoreMarkerName))
	return err == nil && info.Mode().IsRegular()
}

// isAncestor reports whether ancestor strictly contains descendant.
func isAncestor(ancestor, descendant string) bool {
	if ancestor == descendant {
		return false
	}
	prefix := ancestor
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(descendant, prefix)
}
