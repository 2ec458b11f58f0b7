package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ntoledo319/HELLDECK/pkg/domain/aggregate"
)

var (
	summaryAI     bool
	summarySeed   string
	summaryCount  string
	summaryOut    string
	summaryWrite  bool
	summaryTopK   int
	summaryFamily string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Roll stored RunReports up into a markdown summary",
	Long: `Aggregate every quality_*.json report by family and render markdown with
families in alphabetical order and the most frequent issue kinds per family.

--ai renders the judge metrics (humor, sense, understandability) instead.
--write saves to summary_out (or judge_out with --ai) from the config.

Examples:
  cardqa summary
  cardqa summary --top-k 3 --out docs/quality_summary.md
  cardqa summary --ai --seed 12345 --count 50 --write
  cardqa summary --family roast_consensus`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		cfg := services.Workspace.Config
		topK := summaryTopK
		if topK <= 0 {
			topK = cfg.TopK
		}

		if summaryFamily != "" {
			r, err := services.Summary.Family(cmd.Context(), summaryFamily)
			if err != nil {
				return MapError(err)
			}
			fmt.Printf("%s: %d run(s), %d row(s), mean pass %.1f%%, mean score %.3f\n",
				r.Family, r.Runs, r.Rows, r.MeanPassRate(), r.MeanScore())
			for _, ic := range r.TopIssues(topK) {
				fmt.Printf("  %s\n", ic)
			}
			return nil
		}

		var md, out string
		if summaryAI {
			md, err = services.Summary.JudgeMarkdown(cmd.Context(), aggregate.Filter{Seed: summarySeed, Count: summaryCount})
			out = cfg.JudgeOut
		} else {
			md, err = services.Summary.Markdown(cmd.Context(), topK)
			out = cfg.SummaryOut
		}
		if err != nil {
			return MapError(err)
		}

		switch {
		case summaryOut != "":
			out = summaryOut
		case summaryWrite:
			out = workspacePath(services.Workspace.Root, out)
		default:
			fmt.Print(md)
			return nil
		}
		if err := writeMarkdown(out, md); err != nil {
			return err
		}
		fmt.Printf("Summary written to %s\n", out)
		return nil
	},
}

func writeMarkdown(path, md string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(md), 0600); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryAI, "ai", false, "Summarize judge metrics instead of pass rates")
	summaryCmd.Flags().StringVar(&summarySeed, "seed", "", "Only reports with this seed (with --ai)")
	summaryCmd.Flags().StringVar(&summaryCount, "count", "", "Only reports with this count (with --ai)")
	summaryCmd.Flags().StringVarP(&summaryOut, "out", "o", "", "Write markdown to this path")
	summaryCmd.Flags().BoolVar(&summaryWrite, "write", false, "Write markdown to the configured output path")
	summaryCmd.Flags().IntVarP(&summaryTopK, "top-k", "k", 0, "Issue kinds listed per family (default from config)")
	summaryCmd.Flags().StringVar(&summaryFamily, "family", "", "Print the rollup of a single family")
	RootCmd.AddCommand(summaryCmd)
}
