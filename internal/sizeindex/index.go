// Package sizeindex persists measured directory sizes between runs so
// unchanged subtrees are not re-walked. The index is best-effort
// acceleration only: a missing or corrupt file is just a cold cache.
package sizeindex

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/drew-simmons/fsweep/internal/logutil"
)

const schemaVersion = "1"

// DefaultFileName is the index file created inside the scan root.
const DefaultFileName = ".fsweep-index.json"

// Entry is one cached measurement. An entry is reusable only while the
// directory's current mtime matches MtimeNS exactly.
type Entry struct {
	SizeBytes  int64     `json:"size_bytes"`
	MtimeNS    int64     `json:"mtime_ns"`
	RecordedAt time.Time `json:"recorded_at"`
}

type indexFile struct {
	SchemaVersion string           `json:"schema_version"`
	Entries       map[string]Entry `json:"entries"`
}

// Index is the in-memory view of the cache for one run. Lookup may be
// called concurrently; Record serializes writers internally.
type Index struct {
	mu      sync.RWMutex
	path    string
	enabled bool
	loaded  map[string]Entry
	updated map[string]Entry
}

// Load reads the index file at path. Any failure — absent file, bad
// JSON, wrong schema — yields an empty index, never an error. A
// disabled index ignores the file and misses every lookup.
func Load(path string, enabled bool) *Index {
	ix := &Index{
		path:    path,
		enabled: enabled,
		loaded:  make(map[string]Entry),
		updated: make(map[string]Entry),
	}
	if !enabled {
		return ix
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logutil.Log.Debugf("size index %s unreadable, starting cold: %v", path, err)
		}
		return ix
	}

	var file indexFile
	if err := json.Unmarshal(raw, &file); err != nil {
		logutil.Log.Debugf("size index %s malformed, starting cold: %v", path, err)
		return ix
	}
	if file.SchemaVersion != schemaVersion {
		logutil.Log.Debugf("size index %s has schema %q, starting cold", path, file.SchemaVersion)
		return ix
	}
	if file.Entries != nil {
		ix.loaded = file.Entries
	}
	return ix
}

// Lookup returns the cached size for path if the stored fingerprint
// matches the directory's current one. A hit is carried forward into
// the entry set written by Persist.
func (ix *Index) Lookup(path string, mtimeNS int64) (int64, bool) {
	if !ix.enabled {
		return 0, false
	}
	ix.mu.RLock()
	entry, ok := ix.loaded[path]
	ix.mu.RUnlock()
	if !ok || entry.MtimeNS != mtimeNS {
		return 0, false
	}

	ix.mu.Lock()
	ix.updated[path] = entry
	ix.mu.Unlock()
	return entry.SizeBytes, true
}

// Record stores a fresh measurement for path.
func (ix *Index) Record(path string, sizeBytes, mtimeNS int64) {
	if !ix.enabled {
		return
	}
	ix.mu.Lock()
	ix.updated[path] = Entry{
		SizeBytes:  sizeBytes,
		MtimeNS:    mtimeNS,
		RecordedAt: time.Now().UTC(),
	}
	ix.mu.Unlock()
}

// Len returns the number of entries that would be persisted.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.updated)
}

// Persist atomically rewrites the index file with the entries touched
// this run. Entries for paths not seen this run are dropped, so the
// index prunes itself. Write-to-temp-then-rename keeps a crash from
// corrupting the previous file.
func (ix *Index) Persist() error {
	if !ix.enabled {
		return nil
	}

	ix.mu.RLock()
	file := indexFile{SchemaVersion: schemaVersion, Entries: ix.updated}
	raw, err := json.MarshalIndent(file, "", "  ")
	ix.mu.RUnlock()
	if err != nil {
		return err
	}
	raw = append(raw, '\n')

	if err := os.MkdirAll(filepath.Dir(ix.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(ix.path), ".fsweep-index-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, ix.path)
}

// Fingerprint returns the change-detection token for a directory: its
// mtime in nanoseconds, or 0 when the directory cannot be statted.
func Fingerprint(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}
