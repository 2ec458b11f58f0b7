package application_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/calibration"
	"github.com/ntoledo319/HELLDECK/pkg/domain/pipeline"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation/passes"
)

func (w *workspace) pipeline(v *validation.Validator) *application.PipelineService {
	verify := application.NewVerifyService(w.loader, v, w.audit, nil)
	sweep := application.NewSweepService(w.loader, w.repo, w.reports, w.audit, nil)
	summary := application.NewSummaryService(w.reports, w.reports.Dir())
	cal := application.NewCalibrationService(w.reports, w.repo, w.audit, nil)
	return application.NewPipelineService(verify, sweep, summary, cal, w.audit, nil)
}

func TestPipelineService_FailingVerdictStopsBeforeSweep(t *testing.T) {
	w := newWorkspace(t)
	deck := writeDeck(t, w.root, 3)

	result, err := w.pipeline(passes.NewValidator(validation.DefaultOptions())).Run(ctx(), application.PipelineRequest{
		Sweep:       application.SweepRequest{Corpus: deck},
		Calibration: calibration.DefaultParams(),
	})
	if err != nil {
		t.Fatalf("a failing verdict is not an error: %v", err)
	}
	if result.State != pipeline.StateFailed {
		t.Fatalf("state = %s", result.State)
	}
	if result.Verify == nil || result.Verify.Passed() {
		t.Fatal("expected a failing verify report")
	}
	if len(result.Reports) != 0 || result.Calibration != nil {
		t.Fatalf("nothing after verify should run: %+v", result)
	}
	matches, _ := filepath.Glob(filepath.Join(w.reports.Dir(), "quality_*.json"))
	if len(matches) != 0 {
		t.Fatalf("unexpected reports %v", matches)
	}

	runs := w.events(t, domain.ActionRunCompleted)
	if len(runs) != 1 || runs[0].Metadata["state"] != pipeline.StateFailed {
		t.Fatalf("run events = %+v", runs)
	}
}

func TestPipelineService_FullRun(t *testing.T) {
	w := newWorkspace(t)
	deck := writeDeck(t, w.root, 4)

	result, err := w.pipeline(validation.New()).Run(ctx(), application.PipelineRequest{
		Sweep:       application.SweepRequest{Corpus: deck, Seeds: []int64{7}, Count: 4},
		Calibration: calibration.DefaultParams(),
		TopK:        3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.State != pipeline.StateCalibrated {
		t.Fatalf("state = %s", result.State)
	}
	if result.RunID == "" {
		t.Fatal("missing run id")
	}
	if len(result.Reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(result.Reports))
	}
	if !strings.HasPrefix(result.Summary, "# Card Quality Summary") {
		t.Fatalf("summary = %q", result.Summary)
	}
	if result.Calibration == nil || result.Calibration.Reports != 2 {
		t.Fatalf("calibration = %+v", result.Calibration)
	}
	if got := len(w.events(t, domain.ActionRunCompleted)); got != 1 {
		t.Fatalf("run events = %d", got)
	}
}

func TestPipelineService_LoadErrorFails(t *testing.T) {
	w := newWorkspace(t)

	result, err := w.pipeline(validation.New()).Run(ctx(), application.PipelineRequest{
		Sweep:       application.SweepRequest{Corpus: filepath.Join(w.root, "missing.json")},
		Calibration: calibration.DefaultParams(),
	})
	if err == nil {
		t.Fatal("expected load error")
	}
	if result == nil || result.State != pipeline.StateFailed {
		t.Fatalf("result = %+v", result)
	}
}
