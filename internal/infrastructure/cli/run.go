package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain/pipeline"
)

var (
	runFamilies []string
	runSeeds    []int64
	runCount    int
	runTarget   float64
	runStep     float64
	runDryRun   bool
	runJSON     bool
)

var runCmd = &cobra.Command{
	Use:   "run [corpus]",
	Short: "Verify, sweep, summarize and calibrate in one pass",
	Long: `Run the whole pipeline. A corpus that fails verification stops the run
before anything is sampled and exits 1. The summary is written to summary_out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		cfg := services.Workspace.Config
		req := application.PipelineRequest{
			Sweep: application.SweepRequest{
				Corpus:   corpusArg(services, args),
				Families: runFamilies,
				Seeds:    runSeeds,
				Count:    runCount,
			},
			Calibration: overlayParams(cmd, cfg.CalibrationParams(), runTarget, runStep),
			DryRun:      runDryRun,
			TopK:        cfg.TopK,
		}

		ctx := application.WithActor(cmd.Context(), "cli")
		result, err := services.Pipeline.Run(ctx, req)
		if err != nil {
			return MapError(err)
		}

		if result.Summary != "" && cfg.SummaryOut != "" && !runDryRun {
			if err := writeMarkdown(workspacePath(services.Workspace.Root, cfg.SummaryOut), result.Summary); err != nil {
				return err
			}
		}

		if runJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
		} else {
			printRun(result, cfg.IssueCap, cfg.WarningCap)
		}

		if result.State == pipeline.StateFailed {
			return &CLIError{Message: "run stopped: corpus failed verification", ExitCode: ExitFailed}
		}
		return nil
	},
}

func printRun(result *application.PipelineResult, issueCap, warningCap int) {
	fmt.Println(headerStyle.Render("cardqa run " + result.RunID))
	if result.Verify != nil {
		writeReport(os.Stdout, result.Verify, issueCap, warningCap)
	}
	if len(result.Reports) > 0 {
		fmt.Printf("Swept %d report(s)\n", len(result.Reports))
	}
	if result.Calibration != nil {
		for _, d := range result.Calibration.Changed {
			fmt.Printf("  %s\n", d)
		}
		fmt.Printf("%d threshold(s) changed\n", len(result.Calibration.Changed))
	}
	fmt.Printf("State: %s\n", result.State)
}

func init() {
	runCmd.Flags().StringSliceVarP(&runFamilies, "family", "f", nil, "Families to sample (default: all)")
	runCmd.Flags().Int64SliceVar(&runSeeds, "seed", nil, "Sampling seeds")
	runCmd.Flags().IntVarP(&runCount, "count", "n", application.DefaultCount, "Cards per family")
	runCmd.Flags().Float64Var(&runTarget, "target", 0, "Target pass rate (default from config)")
	runCmd.Flags().Float64Var(&runStep, "step", 0, "Threshold step (default from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Do not write profiles or the summary")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the run result as JSON")
	RootCmd.AddCommand(runCmd)
}
