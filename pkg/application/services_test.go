package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/aggregate"
	"github.com/ntoledo319/HELLDECK/pkg/domain/calibration"
	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation/passes"
	"github.com/ntoledo319/HELLDECK/pkg/storage"
)

func TestActorFrom(t *testing.T) {
	if got := application.ActorFrom(context.Background()); got != "cli" {
		t.Errorf("default actor = %q", got)
	}
	if got := application.ActorFrom(application.WithActor(context.Background(), "mcp")); got != "mcp" {
		t.Errorf("actor = %q", got)
	}
}

func TestAuditService_LogAndVerify(t *testing.T) {
	w := newWorkspace(t)
	for _, action := range []string{domain.ActionVerifyCompleted, domain.ActionSweepCompleted} {
		if err := w.audit.Log(action, "test", map[string]any{"k": "v"}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	events, err := w.audit.Timeline()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[1].PrevHash != events[0].Hash {
		t.Fatalf("events are not chained: %+v", events)
	}
	violations, err := w.audit.VerifyIntegrity()
	if err != nil || len(violations) != 0 {
		t.Fatalf("clean trail reported %v, %v", violations, err)
	}

	path := filepath.Join(w.root, storage.CardQADir, storage.EventsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), `"k":"v"`, `"k":"w"`, 1)
	if err := os.WriteFile(path, []byte(tampered), 0600); err != nil {
		t.Fatal(err)
	}
	violations, _ = w.audit.VerifyIntegrity()
	if len(violations) == 0 {
		t.Fatal("tampering not detected")
	}
}

type failingAuditRepo struct{}

func (failingAuditRepo) AppendEvent(context.Context, func(string) domain.Event) (domain.Event, error) {
	return domain.Event{}, errors.New("disk full")
}
func (failingAuditRepo) LoadEvents() ([]domain.Event, error) { return nil, nil }

func TestAuditService_RecordError(t *testing.T) {
	svc := application.NewAuditService(failingAuditRepo{})
	if err := svc.Log("act", "actor", nil); err == nil {
		t.Fatal("expected record error")
	}
}

func TestVerifyService(t *testing.T) {
	w := newWorkspace(t)
	deck := writeDeck(t, t.TempDir(), 6)
	svc := application.NewVerifyService(w.loader, passes.NewValidator(validation.DefaultOptions()), w.audit, nil)

	report, err := svc.Verify(ctx(), deck)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.Passed() {
		t.Fatal("a two-family deck of six cards cannot pass")
	}
	if report.Families != 2 || report.Cards != 12 {
		t.Errorf("families=%d cards=%d", report.Families, report.Cards)
	}
	events := w.events(t, domain.ActionVerifyCompleted)
	if len(events) != 1 || events[0].Actor != "test" {
		t.Fatalf("expected one verify event from test, got %+v", events)
	}
	if len(svc.Describe()) != 5 {
		t.Errorf("describe = %v", svc.Describe())
	}
}

func TestVerifyService_LoadError(t *testing.T) {
	w := newWorkspace(t)
	svc := application.NewVerifyService(w.loader, validation.New(), w.audit, nil)

	_, err := svc.Verify(ctx(), filepath.Join(t.TempDir(), "missing.json"))
	var le *corpus.LoadError
	if !errors.As(err, &le) || !errors.Is(err, corpus.ErrCorpusNotFound) {
		t.Fatalf("expected not-found LoadError, got %v", err)
	}
	if n := len(w.events(t, domain.ActionVerifyCompleted)); n != 0 {
		t.Errorf("load failure must not be audited as a verification, got %d", n)
	}
}

func TestSweepService(t *testing.T) {
	w := newWorkspace(t)
	deck := writeDeck(t, t.TempDir(), 8)
	svc := application.NewSweepService(w.loader, w.repo, w.reports, w.audit, nil)

	req := application.SweepRequest{Corpus: deck, Families: []string{string(corpus.RoastConsensus)}, Seeds: []int64{1, 2}, Count: 5}
	first, err := svc.Sweep(ctx(), req)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected one report per seed, got %d", len(first))
	}
	for _, r := range first {
		if r.Family() != string(corpus.RoastConsensus) || r.Summary.Total != 5 {
			t.Errorf("unexpected summary %+v", r.Summary)
		}
		if _, err := os.Stat(r.Path); err != nil {
			t.Errorf("artifact missing: %v", err)
		}
	}

	again, err := svc.Sweep(ctx(), req)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first[0].Rows, again[0].Rows); diff != "" {
		t.Errorf("same seed must reproduce the sweep (-first +again):\n%s", diff)
	}
	if n := len(w.events(t, domain.ActionSweepCompleted)); n != 4 {
		t.Errorf("sweep events = %d, want 4", n)
	}

	stored, err := w.reports.LoadReports(ctx())
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Errorf("re-running a seed replaces its artifact, got %d files", len(stored))
	}
}

func TestSweepService_UnknownFamily(t *testing.T) {
	w := newWorkspace(t)
	deck := writeDeck(t, t.TempDir(), 2)
	svc := application.NewSweepService(w.loader, w.repo, w.reports, nil, nil)

	_, err := svc.Sweep(ctx(), application.SweepRequest{Corpus: deck, Families: []string{"nope"}})
	if err == nil || !strings.Contains(err.Error(), `"nope"`) {
		t.Fatalf("expected unknown family error, got %v", err)
	}
}

func TestSummaryService(t *testing.T) {
	w := newWorkspace(t)
	saveReport(t, w.reports, "title_fight", "1", 40)
	saveReport(t, w.reports, "title_fight", "2", 60)
	saveReport(t, w.reports, "over_under", "1", 90)
	svc := application.NewSummaryService(w.reports, "reports")

	md, err := svc.Markdown(ctx(), 0)
	if err != nil {
		t.Fatal(err)
	}
	over := strings.Index(md, "## over_under")
	title := strings.Index(md, "## title_fight")
	if over < 0 || title < over {
		t.Fatalf("families missing or unsorted:\n%s", md)
	}
	if !strings.Contains(md, "- Average pass rate: 50.0% across 2 run(s)") {
		t.Errorf("unexpected title_fight mean:\n%s", md)
	}

	if _, err := svc.Family(ctx(), "alibi_drop"); !errors.Is(err, aggregate.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}

	judge, err := svc.JudgeMarkdown(ctx(), aggregate.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(judge, "(no AI data)") {
		t.Errorf("judge summary should mark absent data:\n%s", judge)
	}
}

func TestCalibrationService(t *testing.T) {
	w := newWorkspace(t)
	saveReport(t, w.reports, string(corpus.RoastConsensus), "1", 40)
	saveReport(t, w.reports, string(corpus.RedFlagRally), "1", 95)
	saveReport(t, w.reports, string(corpus.ConfessionOrCap), "1", 85)
	saveReport(t, w.reports, string(corpus.TabooTimer), "1", 10)
	svc := application.NewCalibrationService(w.reports, w.repo, w.audit, nil)

	res, err := svc.Calibrate(ctx(), calibration.DefaultParams(), false)
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if !res.Written || len(res.Changed) != 2 {
		t.Fatalf("expected two written changes, got %+v", res)
	}

	profiles, err := w.repo.LoadProfiles()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{
		string(corpus.RoastConsensus):  0.30,
		string(corpus.RedFlagRally):    0.45,
		string(corpus.ConfessionOrCap): 0.35,
	}
	for family, v := range want {
		if got := profiles.For(family).MinHumor; got == nil || *got != v {
			t.Errorf("%s min_humor = %v, want %v", family, got, v)
		}
	}
	if profiles.For(string(corpus.TabooTimer)).Calibrated() {
		t.Error("families without a threshold are never calibrated")
	}
	if profiles.UpdatedAt.IsZero() {
		t.Error("updated_at not stamped")
	}

	skipped := 0
	for _, d := range res.Decisions {
		if d.Direction == calibration.Skip {
			skipped++
		}
	}
	if skipped == 0 {
		t.Error("families without reports should be skipped")
	}
	if n := len(w.events(t, domain.ActionCalibrationAdjusted)); n != 2 {
		t.Errorf("calibration events = %d, want 2", n)
	}
}

func TestCalibrationService_DryRun(t *testing.T) {
	w := newWorkspace(t)
	saveReport(t, w.reports, string(corpus.RoastConsensus), "1", 40)
	svc := application.NewCalibrationService(w.reports, w.repo, w.audit, nil)

	res, err := svc.Calibrate(ctx(), calibration.DefaultParams(), true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Written || len(res.Changed) != 1 {
		t.Fatalf("dry run should plan one change and write nothing: %+v", res)
	}
	path, _ := w.repo.ResolvePath(storage.ProfilesFile)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("dry run wrote the profile store")
	}
}

func TestCalibrationService_NoReportsIsNoop(t *testing.T) {
	w := newWorkspace(t)
	svc := application.NewCalibrationService(w.reports, w.repo, w.audit, nil)

	res, err := svc.Calibrate(ctx(), calibration.DefaultParams(), false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Written || len(res.Changed) != 0 {
		t.Errorf("no data must not change anything: %+v", res)
	}
}

func TestCalibrationService_MalformedReportLeavesStoreUntouched(t *testing.T) {
	w := newWorkspace(t)
	saveReport(t, w.reports, string(corpus.RoastConsensus), "1", 40)
	bad := filepath.Join(w.reports.Dir(), "quality_roast_consensus_2_10.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	svc := application.NewCalibrationService(w.reports, w.repo, w.audit, nil)

	for _, dryRun := range []bool{true, false} {
		res, err := svc.Calibrate(ctx(), calibration.DefaultParams(), dryRun)
		if !errors.Is(err, storage.ErrMalformedReport) {
			t.Fatalf("dryRun=%v: expected ErrMalformedReport, got %v (%+v)", dryRun, err, res)
		}
	}
	path, _ := w.repo.ResolvePath(storage.ProfilesFile)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("profile store written despite a malformed report")
	}
	if n := len(w.events(t, domain.ActionCalibrationAdjusted)); n != 0 {
		t.Errorf("calibration events = %d, want 0", n)
	}
}

func TestCalibrationService_InvalidParams(t *testing.T) {
	w := newWorkspace(t)
	svc := application.NewCalibrationService(w.reports, w.repo, nil, nil)
	p := calibration.DefaultParams()
	p.Step = 0
	if _, err := svc.Calibrate(ctx(), p, false); err == nil {
		t.Fatal("expected invalid params error")
	}
}

type lockedProfiles struct{ *storage.FilesystemRepository }

func (lockedProfiles) UpdateProfiles(context.Context, func(*quality.Profiles) (*quality.Profiles, bool, error)) error {
	return storage.ErrProfileLocked
}

func TestCalibrationService_LockedStore(t *testing.T) {
	w := newWorkspace(t)
	saveReport(t, w.reports, string(corpus.RoastConsensus), "1", 40)
	svc := application.NewCalibrationService(w.reports, lockedProfiles{w.repo}, w.audit, nil)

	if _, err := svc.Calibrate(ctx(), calibration.DefaultParams(), false); !errors.Is(err, storage.ErrProfileLocked) {
		t.Fatalf("expected ErrProfileLocked, got %v", err)
	}
	if n := len(w.events(t, domain.ActionCalibrationAdjusted)); n != 0 {
		t.Errorf("nothing was written, yet %d events recorded", n)
	}
}

func TestProfileService_Init(t *testing.T) {
	w := newWorkspace(t)
	svc := application.NewProfileService(w.repo, w.audit, nil)

	p, err := svc.Init(ctx())
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := svc.Profiles()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p.Names(), loaded.Names()); diff != "" {
		t.Errorf("names differ:\n%s", diff)
	}
	if n := len(w.events(t, domain.ActionProfilesInitialized)); n != 1 {
		t.Errorf("init events = %d", n)
	}
}

func TestLintService(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Round.kt"), []byte("Button(onClick = { })\n"), 0600); err != nil {
		t.Fatal(err)
	}
	findings, err := application.NewLintService(nil).Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 || findings[0].Scanner != "deadclick" {
		t.Errorf("findings = %v", findings)
	}
}
