package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drew-simmons/fsweep/internal/config"
)

func newTestConfig() *config.SweepConfig {
	cfg := config.Default()
	return cfg
}

func mkdirAll(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClassifyPrecedence(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, "proj", "node_modules"))
	mkdirAll(t, filepath.Join(root, "keep", "node_modules"))
	mkdirAll(t, filepath.Join(root, "marked", "node_modules"))
	mkdirAll(t, filepath.Join(root, "plain"))
	if err := os.WriteFile(filepath.Join(root, "marked", config.IgnoreMarkerName), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := newTestConfig()
	cfg.ExcludePatterns = []string{"keep/*"}
	cfg.ProtectedPaths = []string{filepath.Join(root, "proj", "node_modules")}
	m := New(root, cfg)

	tests := []struct {
		name string
		path string
		want Class
	}{
		{"target by name", filepath.Join(root, "marked", "node_modules"), ClassTarget},
		{"protected wins over target", filepath.Join(root, "proj", "node_modules"), ClassProtected},
		{"excluded wins over target", filepath.Join(root, "keep", "node_modules"), ClassExcluded},
		{"ignore marker", filepath.Join(root, "marked"), ClassIgnored},
		{"plain directory", filepath.Join(root, "plain"), ClassNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Classify(tc.path); got != tc.want {
				t.Fatalf("Classify(%s) = %s, want %s", tc.path, got, tc.want)
			}
		})
	}
}

func TestRootAndHomeAlwaysProtected(t *testing.T) {
	root := t.TempDir()
	m := New(root, newTestConfig())

	if got := m.Classify(string(filepath.Separator)); got != ClassProtected {
		t.Fatalf("filesystem root classified %s, want protected", got)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory in test environment")
	}
	if got := m.Classify(home); got != ClassProtected {
		t.Fatalf("home root classified %s, want protected", got)
	}
	if m.Enterable(string(filepath.Separator)) {
		t.Fatal("filesystem root must not be enterable")
	}
}

func TestProtectionCoversAncestorsAndDescendants(t *testing.T) {
	root := t.TempDir()
	protected := mkdirAll(t, filepath.Join(root, "a", "b", "precious"))
	mkdirAll(t, filepath.Join(protected, "inner"))

	cfg := newTestConfig()
	cfg.ProtectedPaths = []string{protected}
	m := New(root, cfg)

	for _, path := range []string{
		protected,
		filepath.Join(protected, "inner"),
		filepath.Join(root, "a", "b"),
		filepath.Join(root, "a"),
	} {
		if got := m.Classify(path); got != ClassProtected {
			t.Fatalf("Classify(%s) = %s, want protected", path, got)
		}
	}

	// Ancestors stay enterable so the rest of their subtree is scanned;
	// the protected path and its interior do not.
	if !m.Enterable(filepath.Join(root, "a")) {
		t.Fatal("ancestor of protected path must stay enterable")
	}
	if m.Enterable(protected) {
		t.Fatal("protected path must not be enterable")
	}
	if m.Enterable(filepath.Join(protected, "inner")) {
		t.Fatal("descendant of protected path must not be enterable")
	}
}

func TestExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig()
	cfg.ExcludePatterns = []string{"vendor", "apps/*/dist"}
	m := New(root, cfg)

	tests := []struct {
		rel  string
		want Class
	}{
		{"vendor", ClassExcluded},                   // by base name
		{filepath.Join("x", "vendor"), ClassExcluded},
		{filepath.Join("apps", "web", "dist"), ClassExcluded}, // by relative path
		{filepath.Join("apps", "web", "src"), ClassNone},
		{"dist", ClassTarget}, // no pattern matches plain dist at root
	}
	for _, tc := range tests {
		path := filepath.Join(root, tc.rel)
		mkdirAll(t, path)
		if got := m.Classify(path); got != tc.want {
			t.Fatalf("Classify(%s) = %s, want %s", tc.rel, got, tc.want)
		}
	}
}

func TestIgnoreMarkerMustBeRegularFile(t *testing.T) {
	root := t.TempDir()
	dir := mkdirAll(t, filepath.Join(root, "cache"))
	mkdirAll(t, filepath.Join(dir, config.IgnoreMarkerName)) // directory, not a marker

	m := New(root, newTestConfig())
	if got := m.Classify(dir); got == ClassIgnored {
		t.Fatal("a directory named like the marker must not trigger ignore")
	}
}

func TestClassifyIsOrderIndependent(t *testing.T) {
	root := t.TempDir()
	path := mkdirAll(t, filepath.Join(root, "pkg", "node_modules"))
	m := New(root, newTestConfig())

	first := m.Classify(path)
	for i := 0; i < 10; i++ {
		if got := m.Classify(path); got != first {
			t.Fatalf("classification changed across calls: %s then %s", first, got)
		}
	}
}
