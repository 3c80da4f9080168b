package config

import (
	"path/filepath"
	"sort"

	homedir "github.com/mitchellh/go-homedir"
)

const (
	// DefaultMaxDeleteCount caps how many folders one destructive run may touch.
	DefaultMaxDeleteCount = 50

	// IgnoreMarkerName is the per-directory marker file that halts descent.
	IgnoreMarkerName = ".fsweepignore"

	// ConfigFileName is the name of a per-workspace config file.
	ConfigFileName = "fsweep.toml"
)

// DefaultTargetFolders is the built-in set of artifact directory names.
// User config and flags add to this set; nothing removes from it.
var DefaultTargetFolders = []string{
	"node_modules",
	".next",
	".nuxt",
	".svelte-kit",
	".astro",
	".turbo",
	".parcel-cache",
	".vite",
	"venv",
	".venv",
	"__pycache__",
	".pytest_cache",
	".tox",
	".nox",
	".mypy_cache",
	".ruff_cache",
	".ipynb_checkpoints",
	"build",
	"dist",
	"out",
	"coverage",
	"htmlcov",
	".nyc_output",
	".cache",
	".gradle",
	"target",
	"bin",
	"obj",
	".terraform",
	".terragrunt-cache",
}

// SweepConfig is the effective configuration after merging all sources.
// It is assembled once before the scan starts and treated as immutable
// by every component that receives it.
type SweepConfig struct {
	// TargetFolders is the set of directory base names to match.
	TargetFolders map[string]bool

	// ExcludePatterns are glob patterns matched against a directory's
	// scan-relative path or its base name.
	ExcludePatterns []string

	// ProtectedPaths are absolute paths that must never be swept.
	ProtectedPaths []string

	// MaxDeleteCount caps the plan size for destructive runs.
	MaxDeleteCount int

	// NoDeleteLimit disables the MaxDeleteCount check.
	NoDeleteLimit bool
}

// Overrides holds the partial values contributed by one config source
// (a TOML file or the command line). Nil scalar fields mean "not set".
type Overrides struct {
	TargetFolders   []string
	ExcludePatterns []string
	ProtectedPaths  []string
	MaxDeleteCount  *int
	NoDeleteLimit   *bool
}

// Default returns a SweepConfig with the built-in target set and limits.
func Default() *SweepConfig {
	targets := make(map[string]bool, len(DefaultTargetFolders))
	for _, name := range DefaultTargetFolders {
		targets[name] = true
	}
	return &SweepConfig{
		TargetFolders:  targets,
		MaxDeleteCount: DefaultMaxDeleteCount,
	}
}

// Apply merges one source's overrides into the config. Sets are unioned,
// lists are unique-appended, scalars from a later source win.
func (c *SweepConfig) Apply(o *Overrides) {
	if o == nil {
		return
	}
	for _, name := range o.TargetFolders {
		c.TargetFolders[name] = true
	}
	c.ExcludePatterns = appendUnique(c.ExcludePatterns, o.ExcludePatterns)
	c.ProtectedPaths = appendUniquePaths(c.ProtectedPaths, o.ProtectedPaths)
	if o.MaxDeleteCount != nil {
		c.MaxDeleteCount = *o.MaxDeleteCount
	}
	if o.NoDeleteLimit != nil {
		c.NoDeleteLimit = *o.NoDeleteLimit
	}
}

// TargetNames returns the target folder set as a sorted slice.
func (c *SweepConfig) TargetNames() []string {
	names := make([]string, 0, len(c.TargetFolders))
	for name := range c.TargetFolders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GlobalPath returns the user-wide config file location.
func GlobalPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fsweep", ConfigFileName), nil
}

// LocalPath returns the per-workspace config file location for a scan root.
func LocalPath(scanPath string) string {
	return filepath.Join(scanPath, ConfigFileName)
}

func appendUnique(dst, src []string) []string {
	for _, item := range src {
		found := false
		for _, existing := range dst {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}

func appendUniquePaths(dst, src []string) []string {
	known := make(map[string]bool, len(dst))
	for _, p := range dst {
		known[filepath.Clean(p)] = true
	}
	for _, p := range src {
		cleaned := filepath.Clean(p)
		if !known[cleaned] {
			known[cleaned] = true
			dst = append(dst, cleaned)
		}
	}
	return dst
}
