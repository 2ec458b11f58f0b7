package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	rootPath string
	verbose  bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "cardqa",
	Version: Version,
	Short:   "Offline quality checks for party-game card decks",
	Long: `cardqa validates card corpora before they ship and keeps the per-family
quality thresholds honest.

  verify     gate a corpus (exit 0 on pass, 1 on fail)
  sweep      sample and score cards into RunReports
  summary    roll RunReports up into markdown
  calibrate  move humor thresholds toward the target pass rate`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&rootPath, "root", "", "Workspace root (defaults to the current directory)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}
