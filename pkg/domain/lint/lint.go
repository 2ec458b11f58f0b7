// Package lint scans an application source tree for leftovers that break the
// play surface: duplicated core symbols, duplicate routes and dead handlers.
// Scanners are stateless and share nothing with corpus validation.
package lint

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Finding is one lint hit.
type Finding struct {
	Scanner string `json:"scanner"`
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d - %s", f.Path, f.Line, f.Message)
	}
	if f.Path != "" {
		return fmt.Sprintf("%s - %s", f.Path, f.Message)
	}
	return f.Message
}

// Scanner inspects the tree under root.
type Scanner interface {
	Name() string
	Scan(root string) ([]Finding, error)
}

// DefaultExtensions are the source files scanned when none are configured.
var DefaultExtensions = []string{".kt"}

type sourceFile struct {
	path string
	text string
}

// walk reads every file under root with one of exts. Test trees are skipped
// when skipTests is set. Unreadable files are reported through skipped.
func walk(root string, exts []string, skipTests bool) (files []sourceFile, skipped []Finding, err error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	if _, err := os.Stat(root); err != nil {
		return nil, nil, fmt.Errorf("scan root %s: %w", root, err)
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || (skipTests && (name == "test" || name == "androidTest")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(exts, filepath.Ext(path)) {
			return nil
		}
		data, readErr := os.ReadFile(path) // #nosec G304 -- walking a user-selected tree
		if readErr != nil {
			skipped = append(skipped, Finding{Path: path, Message: "could not read: " + readErr.Error()})
			return nil
		}
		files = append(files, sourceFile{path: path, text: string(data)})
		return nil
	})
	return files, skipped, err
}

func lineOf(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

// ScanAll runs every scanner and concatenates the findings in scanner order.
func ScanAll(root string, scanners ...Scanner) ([]Finding, error) {
	var out []Finding
	for _, s := range scanners {
		found, err := s.Scan(root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		out = append(out, found...)
	}
	return out, nil
}
