package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
)

const CardQADir = ".cardqa"
const ConfigFile = "config.yaml"
const ProfilesFile = "quality_profiles.yaml"
const ProfilesLockFile = "quality_profiles.lock"
const EventsFile = "events.jsonl"
const EventsLockFile = "events.lock"
const ReportsDir = "reports"

// FilesystemRepository stores workspace state under <root>/.cardqa.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
	lockRetry   retry.Config

	// profilesMu and eventsMu serialize writers inside this process; the
	// matching lock files serialize them across processes.
	profilesMu sync.Mutex
	eventsMu   sync.Mutex
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		lockRetry: retry.Config{
			MaxAttempts:   6,
			InitialDelay:  25 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// Dir returns the .cardqa directory.
func (r *FilesystemRepository) Dir() string {
	return filepath.Join(r.root, CardQADir)
}

// ResolvePath ensures the path is a direct child of .cardqa and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := r.Dir()
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(filepath.Join(r.Dir(), ReportsDir), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", CardQADir, err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(r.Dir())
	return err == nil
}

// DefaultReportsDir is where sweeps write when no reports_dir is configured.
func (r *FilesystemRepository) DefaultReportsDir() string {
	return filepath.Join(r.Dir(), ReportsDir)
}

// lockFile takes the cross-process lock named name, retrying while another
// process holds it. held is returned, wrapped, when the lock never frees up.
func (r *FilesystemRepository) lockFile(ctx context.Context, name string, held error) (func(), error) {
	path, err := r.ResolvePath(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.Dir(), 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", CardQADir, err)
	}

	retryer := retry.New[*os.File](r.lockRetry)
	f, err := retryer.Do(ctx, func(ctx context.Context) (*os.File, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", held, path)
	}
	_ = f.Close()

	return func() { _ = os.Remove(path) }, nil
}
