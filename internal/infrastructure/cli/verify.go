package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ntoledo319/HELLDECK/internal/infrastructure/watch"
	"github.com/ntoledo319/HELLDECK/internal/infrastructure/wiring"
	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
)

var (
	verifyJSON   bool
	verifyWatch  bool
	verifyPasses bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [corpus]",
	Short: "Validate a card corpus and gate on the verdict",
	Long: `Validate a card corpus file (a deck with a "games" object) or a directory of
per-family documents.

Issues are printed first, then Warnings, each capped by issue_cap and
warning_cap from .cardqa/config.yaml. Exit code is 0 when there are no Issues,
1 when there are, and 2 when the corpus cannot be loaded.

Examples:
  cardqa verify
  cardqa verify app/src/main/assets/gold_cards.json
  cardqa verify decks/ --json
  cardqa verify --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerifyCmd,
}

func runVerifyCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServices()
	if err != nil {
		return err
	}
	if verifyPasses {
		for _, line := range services.Verify.Describe() {
			fmt.Println(line)
		}
		return nil
	}
	path := corpusArg(services, args)

	if verifyWatch {
		return watchVerify(cmd.Context(), services, path)
	}

	ctx := application.WithActor(cmd.Context(), "cli")
	report, err := services.Verify.Verify(ctx, path)
	if err != nil {
		return MapError(err)
	}
	if err := printVerify(os.Stdout, services, report); err != nil {
		return err
	}
	if !report.Passed() {
		return &CLIError{
			Message:  fmt.Sprintf("corpus failed verification with %d issue(s)", len(report.Result.Issues)),
			ExitCode: ExitFailed,
		}
	}
	return nil
}

func printVerify(w io.Writer, services *wiring.AppServices, report *validation.Report) error {
	if verifyJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	cfg := services.Workspace.Config
	writeReport(w, report, cfg.IssueCap, cfg.WarningCap)
	return nil
}

func writeReport(w io.Writer, report *validation.Report, issueCap, warningCap int) {
	_, _ = fmt.Fprintln(w, headerStyle.Render("cardqa verify"))
	_, _ = fmt.Fprintf(w, "%s: %d families, %d cards\n\n", report.Source, report.Families, report.Cards)

	writeFindings(w, "Issues", report.Result.Issues, issueCap)
	writeFindings(w, "Warnings", report.Result.Warnings, warningCap)

	if report.Passed() {
		_, _ = fmt.Fprintf(w, "%s (%d warning(s))\n", passStyle.Render("PASS"), len(report.Result.Warnings))
		return
	}
	order, counts := report.IssueCounts()
	_, _ = fmt.Fprint(w, failStyle.Render("FAIL"))
	for _, kind := range order {
		_, _ = fmt.Fprintf(w, " %s×%d", kind, counts[kind])
	}
	_, _ = fmt.Fprintln(w)
}

// writeFindings prints at most limit findings; zero means no limit.
func writeFindings(w io.Writer, title string, findings []validation.Finding, limit int) {
	if len(findings) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%s (%d):\n", title, len(findings))
	shown := findings
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, f := range shown {
		line := fmt.Sprintf("  - [%s] %s", f.Kind, f.String())
		if f.Severity == validation.SeverityWarning {
			line = warnStyle.Render(line)
		}
		_, _ = fmt.Fprintln(w, line)
	}
	if rest := len(findings) - len(shown); rest > 0 {
		_, _ = fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  ... and %d more", rest)))
	}
	_, _ = fmt.Fprintln(w)
}

func watchVerify(parent context.Context, services *wiring.AppServices, path string) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()
	ctx = application.WithActor(ctx, "watch")

	verifyOnce := func(ctx context.Context) {
		report, err := services.Verify.Verify(ctx, path)
		if err != nil {
			fmt.Println(failStyle.Render(MapError(err).Error()))
			return
		}
		if err := printVerify(os.Stdout, services, report); err != nil {
			services.Logger.Error("print report", "error", err)
		}
	}

	w, err := watch.NewCorpusWatcher(path, watch.DefaultQuiet, services.Logger)
	if err != nil {
		return MapError(err)
	}
	verifyOnce(ctx)
	fmt.Println(dimStyle.Render("watching " + path + " (ctrl+c to stop)"))

	err = w.Run(ctx, func(ctx context.Context, changes []watch.Change) {
		services.Logger.Info("re-verifying", "changes", len(changes))
		verifyOnce(ctx)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Print the report as JSON")
	verifyCmd.Flags().BoolVarP(&verifyWatch, "watch", "w", false, "Re-verify whenever the corpus changes")
	verifyCmd.Flags().BoolVar(&verifyPasses, "passes", false, "List the validation passes and exit")
	RootCmd.AddCommand(verifyCmd)
}
