package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ntoledo319/HELLDECK/internal/infrastructure/config"
	"github.com/ntoledo319/HELLDECK/internal/infrastructure/wiring"
	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/calibration"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()

	cards := make([]map[string]any, 0, 4)
	for i := 0; i < 4; i++ {
		cards = append(cards, map[string]any{
			"text":          fmt.Sprintf("Who would most likely forget birthday number %d of their best friend?", i),
			"quality_score": 10,
			"spice":         2,
		})
	}
	deck, err := json.Marshal(map[string]any{
		"version":     "1",
		"description": "mcp fixture",
		"games": map[string]any{
			"roast_consensus": map[string]any{"game_name": "Roast", "cards": cards},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "deck.json"), deck, 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Corpus = "deck.json"
	cfg.MinCards = 1
	return NewServerWithServices(wiring.BuildWithConfig(root, cfg, nil)), root
}

func TestServer_HandleVerify(t *testing.T) {
	server, root := newTestServer(t)
	ctx := context.Background()

	out, err := server.handleVerify(ctx, VerifyArgs{})
	if err != nil {
		t.Fatalf("handleVerify: %v", err)
	}
	res := out.(VerifyResult)
	if res.Passed {
		t.Error("a one-family deck is missing required families and cannot pass")
	}
	if res.Families != 1 || res.Cards != 4 || len(res.Issues) == 0 {
		t.Errorf("unexpected result %+v", res)
	}

	events, err := server.services.Workspace.Repo.LoadEvents()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Actor != "mcp" || events[0].Action != domain.ActionVerifyCompleted {
		t.Errorf("expected one mcp verify event, got %+v", events)
	}

	if _, err := server.handleVerify(ctx, VerifyArgs{Corpus: filepath.Join(root, "missing.json")}); err == nil {
		t.Error("expected error for missing corpus")
	}
}

func TestServer_SweepSummaryCalibrate(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	out, err := server.handleSweep(ctx, SweepArgs{Count: 4})
	if err != nil {
		t.Fatalf("handleSweep: %v", err)
	}
	if n := len(out.([]any)); n != 1 {
		t.Fatalf("expected one report, got %d", n)
	}

	md, err := server.handleSummary(ctx, SummaryArgs{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "## roast_consensus") {
		t.Errorf("summary missing family:\n%s", md)
	}
	judge, err := server.handleSummary(ctx, SummaryArgs{AI: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(judge, "# AI Judge Summary") {
		t.Errorf("unexpected judge summary:\n%s", judge)
	}

	res, err := server.handleCalibrate(ctx, CalibrateArgs{DryRun: true})
	if err != nil {
		t.Fatalf("handleCalibrate: %v", err)
	}
	cal := res.(*application.CalibrationResult)
	if cal.Written || !cal.DryRun {
		t.Errorf("dry run wrote profiles: %+v", cal)
	}
	found := false
	for _, d := range cal.Decisions {
		if d.Family == "roast_consensus" && d.Direction != calibration.Skip {
			found = true
		}
	}
	if !found {
		t.Error("swept family should have a decision")
	}

	if _, err := server.handleCalibrate(ctx, CalibrateArgs{Target: 2}); err == nil {
		t.Error("expected invalid target to fail")
	}
}

func TestServer_ProfilesAndAudit(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	if _, err := server.handleGetProfiles(ctx, struct{}{}); err != nil {
		t.Fatal(err)
	}
	out, err := server.handleAuditVerify(ctx, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Audit trail intact." {
		t.Errorf("got %v", out)
	}
}

func TestServer_ServeHTTPReturnsCanceled(t *testing.T) {
	server, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := server.ServeHTTP(ctx, "127.0.0.1:0"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestServer_UnknownTransport(t *testing.T) {
	server, _ := newTestServer(t)
	if err := server.Serve(context.Background(), "carrier-pigeon", ""); err == nil {
		t.Fatal("expected unknown transport error")
	}
}
