package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/drew-simmons/fsweep/internal/logutil"
)

// Build assembles the effective config for one run. Sources are merged in
// fixed order — defaults, global config, workspace config, explicit
// --config file, then CLI overrides — with later sources winning.
// Missing files are skipped; unreadable or malformed ones are fatal.
func Build(scanPath, explicitPath string, cli *Overrides) (*SweepConfig, error) {
	cfg := Default()

	sources := make([]string, 0, 3)
	if global, err := GlobalPath(); err == nil {
		sources = append(sources, global)
	}
	sources = append(sources, LocalPath(scanPath))
	if explicitPath != "" {
		abs, err := filepath.Abs(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("resolve config path %s: %w", explicitPath, err)
		}
		sources = append(sources, abs)
	}

	for _, source := range sources {
		if _, err := os.Stat(source); err != nil {
			continue
		}
		overrides, err := LoadOverrides(source)
		if err != nil {
			return nil, err
		}
		logutil.Log.Debugf("merged config overrides from %s", source)
		cfg.Apply(overrides)
	}

	cfg.Apply(cli)
	return cfg, nil
}

// LoadOverrides reads one TOML config file. Keys may live at the top
// level or under an [fsweep] table. Relative protected paths are
// resolved against the config file's directory.
func LoadOverrides(path string) (*Overrides, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("invalid TOML in %s: %w", path, err)
	}

	if sub := v.Sub("fsweep"); sub != nil {
		v = sub
	}

	overrides := &Overrides{}
	var err error
	if overrides.TargetFolders, err = stringList(path, v.Get("target_folders"), "target_folders"); err != nil {
		return nil, err
	}
	if overrides.ExcludePatterns, err = stringList(path, v.Get("exclude_patterns"), "exclude_patterns"); err != nil {
		return nil, err
	}
	rawProtected, err := stringList(path, v.Get("protected_paths"), "protected_paths")
	if err != nil {
		return nil, err
	}
	baseDir := filepath.Dir(path)
	for _, raw := range rawProtected {
		resolved := raw
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(baseDir, resolved)
		}
		overrides.ProtectedPaths = append(overrides.ProtectedPaths, filepath.Clean(resolved))
	}

	if raw := v.Get("max_delete_count"); raw != nil {
		count, ok := asInt(raw)
		if !ok || count < 1 {
			return nil, fmt.Errorf("max_delete_count must be an integer >= 1 in %s", path)
		}
		overrides.MaxDeleteCount = &count
	}
	if raw := v.Get("no_delete_limit"); raw != nil {
		enabled, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("no_delete_limit must be a boolean in %s", path)
		}
		overrides.NoDeleteLimit = &enabled
	}

	return overrides, nil
}

func stringList(path string, raw interface{}, key string) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings in %s", key, path)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be an array of strings in %s", key, path)
		}
		out = append(out, s)
	}
	return out, nil
}

func asInt(raw interface{}) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}
