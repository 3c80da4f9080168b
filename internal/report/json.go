// Package report renders run results as a terminal table, a JSON
// payload, or a markdown file. It only reads the records the core
// produced; nothing here mutates state.
package report

import (
	"encoding/json"

	"github.com/drew-simmons/fsweep/internal/plan"
	"github.com/drew-simmons/fsweep/internal/sweep"
	"github.com/drew-simmons/fsweep/internal/ui"
)

// SchemaVersion is the structured-output contract version.
const SchemaVersion = "1"

// Payload is the top-level JSON object for a completed run.
type Payload struct {
	SchemaVersion string         `json:"schema_version"`
	Path          string         `json:"path"`
	DryRun        bool           `json:"dry_run"`
	Action        string         `json:"action"`
	Summary       PayloadSummary `json:"summary"`
	Items         []PayloadItem  `json:"items"`
}

// PayloadSummary aggregates the run for JSON consumers.
type PayloadSummary struct {
	MatchedCount int    `json:"matched_count"`
	TotalBytes   int64  `json:"total_bytes"`
	TotalHuman   string `json:"total_human"`
	Deleted      int    `json:"deleted"`
	Trashed      int    `json:"trashed"`
	Skipped      int    `json:"skipped"`
	Failed       int    `json:"failed"`
}

// PayloadItem is one finding with its outcome.
type PayloadItem struct {
	Path             string `json:"path"`
	RelativePath     string `json:"relative_path"`
	Type             string `json:"type"`
	SizeBytes        int64  `json:"size_bytes"`
	SizeHuman        string `json:"size_human"`
	Source           string `json:"source"`
	Action           string `json:"action"`
	Status           string `json:"status"`
	Error            string `json:"error,omitempty"`
	TrashDestination string `json:"trash_destination,omitempty"`
}

// ErrorPayload replaces the summary/items shape when a run fails
// before producing results.
type ErrorPayload struct {
	SchemaVersion string `json:"schema_version"`
	Error         string `json:"error"`
	ExitCode      int    `json:"exit_code"`
}

// BuildPayload assembles the JSON document from executor output.
func BuildPayload(scanPath string, results []sweep.Result, summary sweep.Summary) Payload {
	items := make([]PayloadItem, 0, len(results))
	for _, res := range results {
		f := res.Item.Finding
		action := string(res.Item.Action)
		if summary.DryRun && res.Item.Action != plan.ActionSkip {
			action = "simulate"
		}
		items = append(items, PayloadItem{
			Path:             f.Path,
			RelativePath:     f.RelPath,
			Type:             f.MatchedRule,
			SizeBytes:        f.SizeBytes,
			SizeHuman:        ui.FormatSize(f.SizeBytes),
			Source:           string(f.Source),
			Action:           action,
			Status:           string(res.Status),
			Error:            res.Error,
			TrashDestination: res.TrashDestination,
		})
	}

	return Payload{
		SchemaVersion: SchemaVersion,
		Path:          scanPath,
		DryRun:        summary.DryRun,
		Action:        string(summary.Action),
		Summary: PayloadSummary{
			MatchedCount: summary.MatchedCount,
			TotalBytes:   summary.TotalBytes,
			TotalHuman:   ui.FormatSize(summary.TotalBytes),
			Deleted:      summary.Deleted,
			Trashed:      summary.Trashed,
			Skipped:      summary.Skipped,
			Failed:       summary.Failed,
		},
		Items: items,
	}
}

// EncodeJSON marshals any payload with stable indentation.
func EncodeJSON(payload interface{}) string {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}
