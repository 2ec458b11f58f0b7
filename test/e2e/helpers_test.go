package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func findRepoRoot(t *testing.T) string {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	dir := cwd
	for i := 0; i < 10; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	t.Fatalf("go.mod not found above %s", cwd)
	return ""
}

func shellEscape(value string) string {
	escaped := strings.ReplaceAll(value, "'", "'\"'\"'")
	return "'" + escaped + "'"
}

// writeDeck writes a two-family deck with perFamily cards each. Small decks
// fail the minimum card count check.
func writeDeck(t *testing.T, dir string, perFamily int) string {
	t.Helper()
	roast := make([]map[string]any, 0, perFamily)
	taboo := make([]map[string]any, 0, perFamily)
	for i := 0; i < perFamily; i++ {
		roast = append(roast, map[string]any{
			"text":          fmt.Sprintf("Who would most likely forget birthday number %d of their best friend?", i),
			"quality_score": 10,
			"spice":         2,
		})
		taboo = append(taboo, map[string]any{
			"text":            fmt.Sprintf("Campfire story %d", i),
			"forbidden_words": []string{"tent", "marshmallow", "ghost"},
			"quality_score":   10,
			"spice":           1,
		})
	}
	data, err := json.Marshal(map[string]any{
		"version": "1",
		"games": map[string]any{
			"roast_consensus": map[string]any{"game_name": "Roast Consensus", "cards": roast},
			"taboo_timer":     map[string]any{"game_name": "Taboo Timer", "cards": taboo},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "deck.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}
