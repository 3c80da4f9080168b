// Package ui holds the interactive selection screen and the shared
// visual tokens used by table and banner rendering.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"
)

// Color tokens shared across all rendering.
var (
	ColorPrimary = lipgloss.Color("#7C6AEF")
	ColorAccent  = lipgloss.Color("#36C5B0")
	ColorWarning = lipgloss.Color("#E5C07B")
	ColorDanger  = lipgloss.Color("#E06C75")
	ColorMuted   = lipgloss.Color("243")
	ColorText    = lipgloss.Color("252")
)

// Common styles.
var (
	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	SizeStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
	DangerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
	BannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorWarning).
			Padding(0, 1)
)

// FormatSize renders a byte count for humans (1024 base).
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
