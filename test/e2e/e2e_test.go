package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestHappyPath drives the released binary in dist/. It is skipped when the
// binary has not been built.
func TestHappyPath(t *testing.T) {
	bin := filepath.Join(findRepoRoot(t), "dist", "cardqa")
	if _, err := os.Stat(bin); err != nil {
		t.Skipf("cardqa binary not built: %v", err)
	}
	tempDir := t.TempDir()

	run := func(args ...string) (string, int) {
		cmd := exec.Command(bin, args...)
		cmd.Dir = tempDir
		output, err := cmd.CombinedOutput()
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			return string(output), 0
		case errors.As(err, &exitErr):
			return string(output), exitErr.ExitCode()
		default:
			t.Fatalf("cardqa %v: %v", args, err)
			return "", -1
		}
	}
	mustRun := func(args ...string) string {
		out, code := run(args...)
		if code != 0 {
			t.Fatalf("cardqa %v exited %d\n%s", args, code, out)
		}
		return out
	}

	writeDeck(t, tempDir, 4)

	t.Log("Running cardqa init...")
	mustRun("init", "--corpus", "deck.json")
	if _, err := os.Stat(filepath.Join(tempDir, ".cardqa", "config.yaml")); err != nil {
		t.Fatalf("config.yaml missing: %v", err)
	}
	mustRun("profiles", "init")

	t.Log("Running cardqa verify...")
	out, code := run("verify")
	if code != 1 {
		t.Fatalf("verify exit code = %d, want 1\n%s", code, out)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("unexpected verify output: %s", out)
	}

	out, code = run("verify", "missing.json")
	if code != 1 || !strings.Contains(out, "cannot load corpus") || !strings.Contains(out, "Hint:") {
		t.Fatalf("missing corpus: exit %d\n%s", code, out)
	}

	t.Log("Running cardqa sweep...")
	out = mustRun("sweep", "--seed", "1", "--seed", "2", "--count", "4")
	if !strings.Contains(out, "4 report(s) written") {
		t.Errorf("unexpected sweep output: %s", out)
	}

	out = mustRun("summary")
	if !strings.HasPrefix(out, "# Card Quality Summary") {
		t.Errorf("unexpected summary: %s", out)
	}

	t.Log("Running cardqa calibrate...")
	before, err := os.ReadFile(filepath.Join(tempDir, ".cardqa", "quality_profiles.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	mustRun("calibrate", "--dry-run")
	after, err := os.ReadFile(filepath.Join(tempDir, ".cardqa", "quality_profiles.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("dry run rewrote the profile store")
	}
	mustRun("calibrate")

	out = mustRun("audit", "verify")
	if !strings.Contains(out, "intact") {
		t.Errorf("unexpected audit output: %s", out)
	}
}
