package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/spf13/cobra"

	"github.com/drew-simmons/fsweep/internal/config"
	"github.com/drew-simmons/fsweep/internal/logutil"
	"github.com/drew-simmons/fsweep/internal/match"
	"github.com/drew-simmons/fsweep/internal/plan"
	"github.com/drew-simmons/fsweep/internal/report"
	"github.com/drew-simmons/fsweep/internal/scan"
	"github.com/drew-simmons/fsweep/internal/sizeindex"
	"github.com/drew-simmons/fsweep/internal/sweep"
	"github.com/drew-simmons/fsweep/internal/ui"
)

var (
	cleanForce         bool
	cleanDelete        bool
	cleanTrash         bool
	cleanInteractive   bool
	cleanOutput        string
	cleanReportFile    string
	cleanNoIndex       bool
	cleanIndexFile     string
	cleanConfigFile    string
	cleanTargets       []string
	cleanExcludes      []string
	cleanProtected     []string
	cleanYesDelete     bool
	cleanBestEffort    bool
	cleanMaxDelete     int
	cleanNoDeleteLimit bool
	cleanWorkers       int
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Scan and clean workspace artifacts",
	Long: `Scan a workspace for artifact directories and preview (default) or
perform their removal. Destructive runs require --delete --yes-delete.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		runClean(path)
	},
}

func init() {
	f := cleanCmd.Flags()
	f.BoolVarP(&cleanForce, "force", "f", false, "Skip final confirmation prompt")
	f.BoolVar(&cleanDelete, "delete", false, "Perform deletion instead of the default dry-run preview")
	f.BoolVar(&cleanTrash, "trash", false, "Move directories to ~/"+sweep.TrashDirName+" instead of hard deletion")
	f.BoolVar(&cleanInteractive, "interactive", false, "Select which matched folders to act on")
	f.StringVar(&cleanOutput, "output", "table", "Output format: table or json")
	f.StringVar(&cleanReportFile, "report", "", "Write a markdown report to this file path")
	f.BoolVar(&cleanNoIndex, "no-index", false, "Disable the scan-size index cache")
	f.StringVar(&cleanIndexFile, "index-file", "", "Path to scan index JSON file (default: <scan_path>/"+sizeindex.DefaultFileName+")")
	f.StringVar(&cleanConfigFile, "config", "", "Load config overrides from a TOML file")
	f.StringSliceVar(&cleanTargets, "target-folder", nil, "Add target folder names (repeatable)")
	f.StringSliceVar(&cleanExcludes, "exclude-pattern", nil, "Exclude path/name glob patterns (repeatable)")
	f.StringSliceVar(&cleanProtected, "protected-path", nil, "Protect paths from scan/deletion (repeatable)")
	f.BoolVar(&cleanYesDelete, "yes-delete", false, "Required for destructive runs")
	f.BoolVar(&cleanBestEffort, "best-effort", false, "Return success even if some deletes fail")
	f.IntVar(&cleanMaxDelete, "max-delete-count", 0, "Maximum folders allowed in one destructive run")
	f.BoolVar(&cleanNoDeleteLimit, "no-delete-limit", false, "Disable --max-delete-count protection")
	f.IntVar(&cleanWorkers, "workers", 0, "Size-measurement workers (default: number of CPUs)")
}

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
)

func runClean(path string) {
	output := outputFormat(strings.ToLower(cleanOutput))
	if output != outputTable && output != outputJSON {
		exitWithError(outputTable, fmt.Sprintf("unknown output format %q (want table or json)", cleanOutput), 1)
	}
	if output == outputJSON && cleanInteractive {
		exitWithError(output, "`--interactive` is not supported with `--output json`.", 1)
	}

	resolved, err := filepath.Abs(path)
	if err != nil {
		exitWithError(output, fmt.Sprintf("cannot resolve path %s: %v", path, err), 1)
	}
	resolved = filepath.Clean(resolved)
	if resolved == string(filepath.Separator) {
		exitWithError(output, "Refusing to sweep filesystem root ('/').", 1)
	}
	if home, err := homedir.Dir(); err == nil && resolved == filepath.Clean(home) {
		exitWithError(output, "Refusing to sweep your home directory root.", 1)
	}

	cfg, err := config.Build(resolved, cleanConfigFile, cliOverrides())
	if err != nil {
		exitWithError(output, err.Error(), 1)
	}

	destructive := cleanDelete
	if destructive && !cleanYesDelete {
		exitWithError(output, "Destructive mode requires --yes-delete.", 1)
	}
	if output == outputJSON && destructive && !cleanForce {
		exitWithError(output, "Use `--force` with destructive runs when `--output json` is set.", 1)
	}

	// The scan root itself must not sit at or below a protected path.
	if !match.New(resolved, cfg).Enterable(resolved) {
		exitWithError(output, fmt.Sprintf("Refusing to sweep protected path %s.", resolved), 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	indexPath := cleanIndexFile
	if indexPath == "" {
		indexPath = filepath.Join(resolved, sizeindex.DefaultFileName)
	}
	index := sizeindex.Load(indexPath, !cleanNoIndex)

	scanner, err := scan.New(resolved, cfg, index, cleanWorkers)
	if err != nil {
		exitWithError(output, err.Error(), 1)
	}
	findings, err := scanner.Scan(ctx)
	if err != nil {
		exitWithError(output, fmt.Sprintf("scan interrupted: %v", err), 1)
	}
	if err := index.Persist(); err != nil {
		logutil.Log.Warnf("cannot persist size index %s: %v", indexPath, err)
	}

	if output == outputTable {
		for _, warning := range scanner.Warnings() {
			fmt.Println(lipglossWarn("warning: ") + warning)
		}
	}

	var selector plan.Selector
	if cleanInteractive && len(findings) > 0 {
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			exitWithError(output, "`--interactive` requires a terminal.", 1)
		}
		selector = ui.InteractiveSelector{}
	}

	maxDelete := cfg.MaxDeleteCount
	if cleanMaxDelete > 0 {
		maxDelete = cleanMaxDelete
	}
	p, err := plan.Build(findings, plan.Options{
		Trash:          cleanTrash,
		Destructive:    destructive,
		MaxDeleteCount: maxDelete,
		NoDeleteLimit:  cleanNoDeleteLimit || cfg.NoDeleteLimit,
		Selector:       selector,
	})
	if errors.Is(err, ui.ErrAborted) {
		fmt.Println(ui.MutedStyle.Render("Aborted. No files were changed."))
		return
	}
	if err != nil {
		exitWithError(output, err.Error(), 1)
	}

	executor := sweep.NewExecutor(resolved)
	mode := sweep.ModeSimulate
	if destructive {
		mode = sweep.ModeCommit
	}

	if len(findings) == 0 {
		if output == outputTable {
			fmt.Println(ui.TitleStyle.Render("Everything is clean. No junk found."))
		}
		results, summary := executor.Execute(ctx, p, mode)
		emitJSON(output, resolved, results, summary)
		return
	}

	if output == outputTable {
		printBanner(destructive)
		fmt.Println(report.ResultsTable(filepath.Base(resolved), p.Items))
		label := "Total Potential Savings:"
		if !destructive {
			label = "Total Estimated Savings (Simulation):"
		}
		fmt.Printf("\n%s %s\n\n", label, ui.SizeStyle.Render(ui.FormatSize(actionableBytes(p))))
	}

	if destructive && !cleanForce {
		prompt := "Do you want to delete these folders?"
		if cleanTrash {
			prompt = "Move these folders to ~/" + sweep.TrashDirName + "?"
		}
		if !confirm(prompt) {
			if output == outputTable {
				fmt.Println(ui.MutedStyle.Render("Aborted. No files were changed."))
			}
			return
		}
	}

	results, summary := executor.Execute(ctx, p, mode)

	if output == outputTable {
		printOutcome(resolved, results, summary)
	}

	if cleanReportFile != "" {
		if err := report.WriteMarkdown(cleanReportFile, resolved, results, summary); err != nil {
			exitWithError(output, fmt.Sprintf("cannot write report %s: %v", cleanReportFile, err), 1)
		}
	}

	emitJSON(output, resolved, results, summary)

	if summary.Failed > 0 && !cleanBestEffort {
		if output == outputTable {
			fmt.Println(ui.DangerStyle.Render(
				"One or more directories failed to delete. Use --best-effort to ignore failures."))
		}
		os.Exit(2)
	}
}

// cliOverrides packs the repeatable flags as the final, highest-priority
// config source. Protected paths on the command line resolve against
// the working directory.
func cliOverrides() *config.Overrides {
	overrides := &config.Overrides{
		TargetFolders:   cleanTargets,
		ExcludePatterns: cleanExcludes,
	}
	for _, p := range cleanProtected {
		if abs, err := filepath.Abs(p); err == nil {
			overrides.ProtectedPaths = append(overrides.ProtectedPaths, abs)
		}
	}
	if cleanNoDeleteLimit {
		yes := true
		overrides.NoDeleteLimit = &yes
	}
	return overrides
}

func actionableBytes(p *plan.Plan) int64 {
	var total int64
	for _, item := range p.Items {
		if item.Action != plan.ActionSkip {
			total += item.Finding.SizeBytes
		}
	}
	return total
}

func printBanner(destructive bool) {
	if destructive {
		fmt.Println(ui.BannerStyle.BorderForeground(ui.ColorPrimary).Render(
			ui.TitleStyle.Render("Developer Workspace FSweep")))
	} else {
		fmt.Println(ui.BannerStyle.Render(
			lipglossWarn("DRY-RUN MODE")))
	}
}

func printOutcome(resolved string, results []sweep.Result, summary sweep.Summary) {
	switch {
	case summary.DryRun:
		fmt.Printf("\n%s\n", lipglossWarn(
			"Dry-run complete. Would have recovered "+ui.FormatSize(summary.TotalBytes)+"."))
	case summary.Action == plan.ActionTrash:
		fmt.Printf("\n%s\n", ui.TitleStyle.Render(
			"Moved "+ui.FormatSize(summary.BytesReclaimed)+" to ~/"+sweep.TrashDirName+"."))
	default:
		fmt.Printf("\n%s\n", ui.TitleStyle.Render(
			"Recovered "+ui.FormatSize(summary.BytesReclaimed)+"."))
	}

	fmt.Println(report.SummaryTable(summary))
	for _, line := range report.FailureLines(results) {
		fmt.Println(ui.DangerStyle.Render("failed: ") + line)
	}

	if usage, err := disk.Usage(resolved); err == nil {
		fmt.Println(ui.MutedStyle.Render(fmt.Sprintf(
			"Volume: %s free of %s (%.1f%% used)",
			ui.FormatSize(int64(usage.Free)), ui.FormatSize(int64(usage.Total)), usage.UsedPercent)))
	}
}

// confirm asks a yes/no question on stdin, defaulting to no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func emitJSON(output outputFormat, resolved string, results []sweep.Result, summary sweep.Summary) {
	if output != outputJSON {
		return
	}
	fmt.Println(report.EncodeJSON(report.BuildPayload(resolved, results, summary)))
}

func lipglossWarn(text string) string {
	return ui.TitleStyle.Foreground(ui.ColorWarning).Render(text)
}

// exitWithError reports a fatal error in the requested output format
// and terminates with the given code. Nothing has been mutated when
// this runs: all fatal checks happen before execution starts.
func exitWithError(output outputFormat, message string, code int) {
	if output == outputJSON {
		fmt.Println(report.EncodeJSON(report.ErrorPayload{
			SchemaVersion: report.SchemaVersion,
			Error:         message,
			ExitCode:      code,
		}))
	} else {
		fmt.Println(ui.DangerStyle.Render("Error: ") + message)
	}
	os.Exit(code)
}
