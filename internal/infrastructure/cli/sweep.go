package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

var (
	sweepFamilies []string
	sweepSeeds    []int64
	sweepCount    int
	sweepJSON     bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep [corpus]",
	Short: "Sample and score cards, writing one RunReport per family and seed",
	Long: `Sample cards from each family, score them against the family's quality
profile, and write quality_<family>_<seed>_<count>.json into the reports
directory. The same seed and count always sample the same cards.

Examples:
  cardqa sweep
  cardqa sweep --family roast_consensus --seed 1 --seed 2 --count 100`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		req := application.SweepRequest{
			Corpus:   corpusArg(services, args),
			Families: sweepFamilies,
			Seeds:    sweepSeeds,
			Count:    sweepCount,
		}
		ctx := application.WithActor(cmd.Context(), "cli")
		reports, err := services.Sweep.Sweep(ctx, req)
		if err != nil {
			return MapError(fmt.Errorf("sweep: %w", err))
		}

		if sweepJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sweepSummaries(reports))
		}
		if len(reports) == 0 {
			fmt.Println("No families with cards to sample.")
			return nil
		}
		for _, r := range reports {
			fmt.Printf("%-22s seed=%-8s %5.1f%% pass  avg %.3f  %s\n",
				r.Family(), r.Seed, r.Summary.PassRate, r.Summary.AvgScore, dimStyle.Render(r.Path))
		}
		fmt.Printf("\n%d report(s) written to %s\n", len(reports), services.Workspace.Reports.Dir())
		return nil
	},
}

type sweepSummary struct {
	Family   string  `json:"family"`
	Seed     string  `json:"seed"`
	Count    string  `json:"count"`
	PassRate float64 `json:"pass_rate"`
	AvgScore float64 `json:"avg_score"`
	Path     string  `json:"path"`
}

func sweepSummaries(reports []*quality.RunReport) []sweepSummary {
	out := make([]sweepSummary, 0, len(reports))
	for _, r := range reports {
		out = append(out, sweepSummary{
			Family:   r.Family(),
			Seed:     r.Seed,
			Count:    r.Count,
			PassRate: r.Summary.PassRate,
			AvgScore: r.Summary.AvgScore,
			Path:     r.Path,
		})
	}
	return out
}

func init() {
	sweepCmd.Flags().StringSliceVarP(&sweepFamilies, "family", "f", nil, "Families to sample (default: all)")
	sweepCmd.Flags().Int64SliceVar(&sweepSeeds, "seed", nil, fmt.Sprintf("Sampling seeds (default: %d)", application.DefaultSeed))
	sweepCmd.Flags().IntVarP(&sweepCount, "count", "n", application.DefaultCount, fmt.Sprintf("Cards per family, at most %d", application.MaxCount))
	sweepCmd.Flags().BoolVar(&sweepJSON, "json", false, "Print written reports as JSON")
	RootCmd.AddCommand(sweepCmd)
}
