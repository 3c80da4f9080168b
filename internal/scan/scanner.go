// Package scan walks a workspace tree, classifies every directory, and
// produces the sized list of cleanup candidates the planner acts on.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/drew-simmons/fsweep/internal/config"
	"github.com/drew-simmons/fsweep/internal/logutil"
	"github.com/drew-simmons/fsweep/internal/match"
	"github.com/drew-simmons/fsweep/internal/sizeindex"
)

// Scanner walks the tree rooted at one path. The walk itself is
// sequential and lexically ordered so results are deterministic;
// size measurement of independent matched subtrees runs on a bounded
// worker pool.
type Scanner struct {
	root    string
	matcher *match.Matcher
	index   *sizeindex.Index
	workers int

	mu       sync.Mutex
	warnings []string
}

// New validates the scan root and builds a Scanner. The root must exist
// and be a directory; anything else is a configuration error.
func New(root string, cfg *config.SweepConfig, index *sizeindex.Index, workers int) (*Scanner, error) {
	resolved, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan path %s: %w", root, err)
	}
	resolved = filepath.Clean(resolved)

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path %s does not exist", root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", root)
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scanner{
		root:    resolved,
		matcher: match.New(resolved, cfg),
		index:   index,
		workers: workers,
	}, nil
}

// Root returns the resolved scan root.
func (s *Scanner) Root() string { return s.root }

// Warnings returns the per-directory errors recovered during the scan.
func (s *Scanner) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

func (s *Scanner) addWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logutil.Log.Warn(msg)
	s.mu.Lock()
	s.warnings = append(s.warnings, msg)
	s.mu.Unlock()
}

// Scan walks the tree and returns all findings in discovery order.
// A matched directory consumes its subtree: nothing beneath it is
// visited, so nested targets are never double-counted.
func (s *Scanner) Scan(ctx context.Context) ([]Finding, error) {
	var matched []Finding
	s.walk(ctx, s.root, &matched)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.measure(ctx, matched); err != nil {
		return nil, err
	}
	return matched, nil
}

// walk visits dir's children in lexical order and recurses per the
// matcher's verdict. Unreadable directories are logged and skipped;
// they never abort the scan.
func (s *Scanner) walk(ctx context.Context, dir string, matched *[]Finding) {
	if ctx.Err() != nil {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.addWarning("cannot read %s: %v", dir, err)
		return
	}

	// The ignore marker hides this whole subtree, including dir itself.
	for _, entry := range entries {
		if entry.Name() == config.IgnoreMarkerName && entry.Type().IsRegular() {
			logutil.Log.Debugf("ignore marker found, skipping subtree %s", dir)
			return
		}
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			// Symlinked directories are not followed and never matched.
			continue
		}
		child := filepath.Join(dir, entry.Name())

		switch class := s.matcher.Classify(child); class {
		case match.ClassTarget:
			rel, err := filepath.Rel(s.root, child)
			if err != nil {
				rel = child
			}
			*matched = append(*matched, Finding{
				Path:        child,
				RelPath:     rel,
				MatchedRule: entry.Name(),
			})
		case match.ClassProtected:
			if s.matcher.Enterable(child) {
				s.walk(ctx, child, matched)
			} else {
				logutil.Log.Debugf("protected, not entering %s", child)
			}
		case match.ClassIgnored:
			// Classified from the marker inside child; do not enter.
		case match.ClassExcluded:
			// Excluded directories are skipped as candidates, but their
			// children may still contain targets.
			s.walk(ctx, child, matched)
		default:
			s.walk(ctx, child, matched)
		}
	}
}

// measure fills in sizes for every finding, from the index when the
// fingerprint still matches and by direct measurement otherwise.
func (s *Scanner) measure(ctx context.Context, findings []Finding) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range findings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := &findings[i]
			fingerprint := sizeindex.Fingerprint(f.Path)

			if size, ok := s.index.Lookup(f.Path, fingerprint); ok {
				f.SizeBytes = size
				f.Source = SourceCache
				logutil.Log.Debugf("index hit for %s (%d bytes)", f.Path, size)
				return nil
			}

			f.SizeBytes = s.dirSize(f.Path)
			f.Source = SourceMeasured
			s.index.Record(f.Path, f.SizeBytes, fingerprint)
			return nil
		})
	}
	return g.Wait()
}

// dirSize sums file sizes beneath path without following symlinks.
// Per-entry errors are recovered: the entry is skipped and the walk
// continues.
func (s *Scanner) dirSize(path string) int64 {
	var total int64
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			s.addWarning("cannot stat %s: %v", p, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.addWarning("cannot stat %s: %v", p, err)
			return nil
		}
		// Lstat semantics: a symlink contributes its own link size.
		total += info.Size()
		return nil
	})
	if err != nil {
		s.addWarning("cannot measure %s: %v", path, err)
	}
	return total
}
