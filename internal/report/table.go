package report

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/drew-simmons/fsweep/internal/plan"
	"github.com/drew-simmons/fsweep/internal/sweep"
	"github.com/drew-simmons/fsweep/internal/ui"
)

// ResultsTable renders the matched findings before execution.
func ResultsTable(baseName string, items []plan.Item) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(ui.MutedStyle).
		Headers("#", "Directory Relative Path", "Type", "Size")

	for i, item := range items {
		f := item.Finding
		t.Row(strconv.Itoa(i+1), f.RelPath, f.MatchedRule, ui.FormatSize(f.SizeBytes))
	}

	title := ui.TitleStyle.Render(fmt.Sprintf("Results for %s", baseName))
	return title + "\n" + t.Render()
}

// SummaryTable renders the post-execution outcome counts.
func SummaryTable(summary sweep.Summary) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(ui.MutedStyle).
		Headers("Deleted", "Trashed", "Skipped", "Failed")
	t.Row(
		strconv.Itoa(summary.Deleted),
		strconv.Itoa(summary.Trashed),
		strconv.Itoa(summary.Skipped),
		strconv.Itoa(summary.Failed),
	)
	return ui.TitleStyle.Render("Cleanup Summary") + "\n" + t.Render()
}

// FailureLines lists every failed item with its reason. Failures are
// always reported individually, never silently dropped.
func FailureLines(results []sweep.Result) []string {
	var lines []string
	for _, res := range results {
		if res.Status == sweep.StatusFailed {
			lines = append(lines, fmt.Sprintf("%s: %s", res.Item.Finding.Path, res.Error))
		}
	}
	return lines
}
