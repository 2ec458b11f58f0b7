package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	return string(<-done)
}

// resetFlags restores every flag to its default so commands do not leak
// state between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes cardqa with args against the workspace at root and
// returns what it printed to stdout.
func runCLI(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	RootCmd.SetArgs(append([]string{"--root", root}, args...))
	var err error
	out := captureStdout(t, func() {
		err = RootCmd.Execute()
	})
	return out, err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected *CLIError, got %T: %v", err, err)
	}
	return cliErr.ExitCode
}

// writeDeck writes a small deck with roast_consensus and taboo_timer cards.
// At this size it never meets the minimum card count, so it fails
// verification.
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
			"roast_consensus": map[string]any{"game_name": "Roast Consensus", "cards": roast},
			"taboo_timer":     map[string]any{"game_name": "Taboo Timer", "cards": taboo},
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

func writeConfig(t *testing.T, root, body string) {
	t.Helper()
	dir := filepath.Join(root, ".cardqa")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
}
