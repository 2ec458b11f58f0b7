package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain/calibration"
)

var (
	calibrateTarget float64
	calibrateStep   float64
	calibrateDryRun bool
	calibrateJSON   bool
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Move per-family humor thresholds toward the target pass rate",
	Long: `Read every stored RunReport, compute each family's mean pass rate and nudge
its min_humor threshold by one step: down when the pass rate is more than 3
points below target, up when it is more than 5 points above, otherwise hold.
Thresholds stay within each family's floor and ceiling. All changes are
written in one update of .cardqa/quality_profiles.yaml.

Exit code is 0 on success, including when nothing changes.

Examples:
  cardqa calibrate
  cardqa calibrate --target 0.80 --step 0.02
  cardqa calibrate --dry-run --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		params := overlayParams(cmd, services.Workspace.Config.CalibrationParams(), calibrateTarget, calibrateStep)

		ctx := application.WithActor(cmd.Context(), "cli")
		result, err := services.Calibration.Calibrate(ctx, params, calibrateDryRun)
		if err != nil {
			return MapError(fmt.Errorf("calibrate: %w", err))
		}

		if calibrateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Printf("Calibrating from %d report(s), target %.0f%%, step %.2f\n",
			result.Reports, params.Target*100, params.Step)
		for _, d := range result.Decisions {
			line := d.String()
			switch d.Direction {
			case calibration.Skip:
				line = dimStyle.Render(line)
			case calibration.Lower, calibration.Raise:
				if d.Changed() {
					line = warnStyle.Render(line)
				}
			}
			fmt.Printf("  %s\n", line)
		}
		switch {
		case result.DryRun:
			fmt.Printf("Dry run: %d threshold(s) would change.\n", len(result.Changed))
		case result.Written:
			fmt.Printf("%s %d threshold(s) updated.\n", passStyle.Render("OK"), len(result.Changed))
		default:
			fmt.Println("No thresholds changed.")
		}
		return nil
	},
}

// overlayParams applies --target and --step when they were set explicitly.
func overlayParams(cmd *cobra.Command, p calibration.Params, target, step float64) calibration.Params {
	if cmd.Flags().Changed("target") {
		p.Target = target
	}
	if cmd.Flags().Changed("step") {
		p.Step = step
	}
	return p
}

func init() {
	defaults := calibration.DefaultParams()
	calibrateCmd.Flags().Float64Var(&calibrateTarget, "target", defaults.Target, "Target pass rate in (0,1]")
	calibrateCmd.Flags().Float64Var(&calibrateStep, "step", defaults.Step, "Threshold step per run")
	calibrateCmd.Flags().BoolVar(&calibrateDryRun, "dry-run", false, "Report decisions without writing profiles")
	calibrateCmd.Flags().BoolVar(&calibrateJSON, "json", false, "Print the result as JSON")
	RootCmd.AddCommand(calibrateCmd)
}
