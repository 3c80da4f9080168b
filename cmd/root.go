package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/drew-simmons/fsweep/internal/logutil"
)

var (
	logLevel string

	// Version info populated from main.
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "fsweep",
	Short: "Advanced workspace cleanup tool for developers",
	Long: `fsweep - Advanced workspace cleanup tool for developers.

Finds dependency caches, build outputs, and virtual environments
(node_modules, target, .venv, ...) beneath a directory, reports their
sizes, and removes or trashes them under strict safety controls.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "warn",
		"Log level: debug, info, warn, error")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(systemCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func initLogging() {
	if err := logutil.SetLevel(logLevel); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
