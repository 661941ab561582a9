package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/JonMunkholm/datasight/internal/core"
	"github.com/JonMunkholm/datasight/internal/logging"
	"github.com/spf13/cobra"
)

// Version is filled by -ldflags at release time.
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "datasight",
	Short:         "Inspect CSV and Excel files.",
	Long:          "Load a CSV, XLSX or XLS file, profile its columns and view it sorted and filtered.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintln(cmd.OutOrStdout(), "datasight", version())
			return
		}
		cmd.Help()
	},
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}
	return "(unknown version)"
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, "error:", core.FormatUserError(err))
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("delimiter", "auto", "delimiter for text files: auto, comma, tab, semicolon or pipe")
	rootCmd.PersistentFlags().Int64("max-size", core.DefaultMaxFileSize, "maximum file size in bytes")
}
