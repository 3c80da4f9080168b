package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/drew-simmons/fsweep/internal/sweep"
	"github.com/drew-simmons/fsweep/internal/ui"
)

// WriteMarkdown writes the run report to path, creating parent
// directories as needed.
func WriteMarkdown(path, scanPath string, results []sweep.Result, summary sweep.Summary) error {
	var b strings.Builder

	b.WriteString("# fsweep report\n\n")
	fmt.Fprintf(&b, "- generated_at_utc: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- path: `%s`\n", scanPath)
	fmt.Fprintf(&b, "- dry_run: `%t`\n", summary.DryRun)
	fmt.Fprintf(&b, "- action: `%s`\n", summary.Action)
	b.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&b, "- matched_count: %d\n", summary.MatchedCount)
	fmt.Fprintf(&b, "- total_human: %s\n", ui.FormatSize(summary.TotalBytes))
	fmt.Fprintf(&b, "- deleted: %d\n", summary.Deleted)
	fmt.Fprintf(&b, "- trashed: %d\n", summary.Trashed)
	fmt.Fprintf(&b, "- skipped: %d\n", summary.Skipped)
	fmt.Fprintf(&b, "- failed: %d\n", summary.Failed)
	b.WriteString("\n## Items\n\n")
	b.WriteString("| path | size | status | error |\n")
	b.WriteString("| :--- | ---: | :----- | :---- |\n")
	for _, res := range results {
		f := res.Item.Finding
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n",
			f.Path, ui.FormatSize(f.SizeBytes), res.Status, res.Error)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
