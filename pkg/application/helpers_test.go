package application_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
	"github.com/ntoledo319/HELLDECK/pkg/storage"
)

type workspace struct {
	root    string
	repo    *storage.FilesystemRepository
	reports *storage.ReportStore
	audit   *application.AuditService
	loader  *storage.CorpusLoader
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	return &workspace{
		root:    root,
		repo:    repo,
		reports: storage.NewReportStore(repo.DefaultReportsDir(), nil),
		audit:   application.NewAuditService(repo),
		loader:  storage.NewCorpusLoader(),
	}
}

func (w *workspace) events(t *testing.T, action string) []domain.Event {
	t.Helper()
	all, err := w.repo.LoadEvents()
	if err != nil {
		t.Fatal(err)
	}
	var out []domain.Event
	for _, e := range all {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// writeDeck writes a small deck with roast_consensus and taboo_timer cards.
func writeDeck(t *testing.T, dir string, perFamily int) string {
	t.Helper()
	roast := make([]map[string]any, 0, perFamily)
	taboo := make([]map[string]any, 0, perFamily)
	for i := 0; i < perFamily; i++ {
		roast = append(roast, map[string]any{
			"text":          fmt.Sprintf("Who would most likely steal slice %d of the pizza at the party?", i),
			"quality_score": 10,
			"spice":         2,
		})
		taboo = append(taboo, map[string]any{
			"text":            fmt.Sprintf("Wedding number %d", i),
			"forbidden_words": []string{"bride", "ring", "vows"},
			"quality_score":   10,
			"spice":           1,
		})
	}
	doc := map[string]any{
		"version":     "1",
		"description": "fixture",
		"games": map[string]any{
			string(corpus.RoastConsensus): map[string]any{"game_name": "Roast Consensus", "cards": roast},
			string(corpus.TabooTimer):     map[string]any{"game_name": "Taboo Timer", "cards": taboo},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "deck.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func saveReport(t *testing.T, store *storage.ReportStore, family string, seed string, passRate float64) {
	t.Helper()
	r := &quality.RunReport{
		Summary: quality.Summary{Game: family, Total: 10, Passed: int(passRate / 10), PassRate: passRate, AvgScore: passRate / 100},
		Seed:    seed,
		Count:   "10",
	}
	if _, err := store.SaveReport(r); err != nil {
		t.Fatal(err)
	}
}

func ctx() context.Context {
	return application.WithActor(context.Background(), "test")
}
