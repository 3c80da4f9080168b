package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/spf13/cobra"

	"github.com/drew-simmons/fsweep/internal/logutil"
	"github.com/drew-simmons/fsweep/internal/ui"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Show hints for cleaning global toolchain artifacts",
	Long:  "Print cleanup commands for system-wide tool caches and current disk usage per partition.",
	Run: func(cmd *cobra.Command, args []string) {
		runSystem()
	},
}

// toolAdvice is the static catalog of system-wide cleanup commands.
var toolAdvice = [][3]string{
	{"Docker", "docker system prune", "Removes unused data (images, caches)"},
	{"uv", "uv cache prune", "Removes outdated wheel/source caches"},
	{"pnpm", "pnpm store prune", "Removes unreferenced packages from store"},
	{"npm", "npm cache clean --force", "Clears the global npm cache"},
	{"Cargo", "cargo install cargo-sweep && cargo sweep -v", "Cleans Rust build artifacts"},
	{"Brew", "brew cleanup", "Removes old versions of installed formulae"},
}

func runSystem() {
	fmt.Println(ui.BannerStyle.BorderForeground(ui.ColorPrimary).Render(
		ui.TitleStyle.Render("System-wide Cleanup Recommendations")))

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("Tool", "Cleanup Command", "Description")
	for _, row := range toolAdvice {
		t.Row(row[0], row[1], row[2])
	}
	fmt.Println(t.Render())

	printPartitions()

	fmt.Println(ui.MutedStyle.Render(
		"Note: Run these with caution as they affect your whole system."))
}

// printPartitions lists physical partitions with live usage numbers.
func printPartitions() {
	partitions, err := disk.Partitions(false)
	if err != nil {
		logutil.Log.Debugf("cannot list partitions: %v", err)
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(ui.MutedStyle).
		Headers("Mount", "FS", "Used", "Total", "Use%")
	rows := 0
	for _, p := range partitions {
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		t.Row(
			p.Mountpoint,
			p.Fstype,
			ui.FormatSize(int64(usage.Used)),
			ui.FormatSize(int64(usage.Total)),
			fmt.Sprintf("%.1f%%", usage.UsedPercent),
		)
		rows++
	}
	if rows > 0 {
		fmt.Println(ui.TitleStyle.Render("Disk Usage"))
		fmt.Println(t.Render())
	}
}
