package scan

// Source records where a Finding's size came from.
type Source string

const (
	// SourceCache means the size was reused from the persistent index.
	SourceCache Source = "cache"

	// SourceMeasured means the size was computed by walking the subtree.
	SourceMeasured Source = "measured"
)

// Finding is one matched target directory. Findings are immutable once
// the scan produces them; later stages only read them.
type Finding struct {
	// Path is the absolute, cleaned directory path.
	Path string `json:"path"`

	// RelPath is Path relative to the scan root.
	RelPath string `json:"relative_path"`

	// SizeBytes is the recursive byte sum of all files beneath Path.
	// Symlinks are not followed; their own link size is counted.
	SizeBytes int64 `json:"size_bytes"`

	// MatchedRule is the target-folder name that caused the match.
	MatchedRule string `json:"matched_rule"`

	// Source tells whether SizeBytes came from the cache or a fresh walk.
	Source Source `json:"source"`
}

// TotalBytes sums the sizes of a finding list.
func TotalBytes(findings []Finding) int64 {
	var total int64
	for _, f := range findings {
		total += f.SizeBytes
	}
	return total
}
