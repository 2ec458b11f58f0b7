package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ntoledo319/HELLDECK/internal/infrastructure/wiring"
)

func getWorkspaceRoot() (string, error) {
	if rootPath != "" {
		abs, err := filepath.Abs(rootPath)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path %q: %w", rootPath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("workspace path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("workspace path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadServices() (*wiring.AppServices, error) {
	root, err := getWorkspaceRoot()
	if err != nil {
		return nil, err
	}
	services, err := wiring.BuildAppServices(root, slog.Default())
	if err != nil {
		return nil, MapError(err)
	}
	return services, nil
}

// corpusArg resolves an explicit corpus argument against the working
// directory, or falls back to the configured corpus.
func corpusArg(services *wiring.AppServices, args []string) string {
	if len(args) > 0 && args[0] != "" {
		if abs, err := filepath.Abs(args[0]); err == nil {
			return abs
		}
		return args[0]
	}
	ws := services.Workspace
	return ws.Config.CorpusPath(ws.Root)
}

func workspacePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
