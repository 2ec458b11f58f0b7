package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// ErrMalformedReport marks a quality report that could not be read or decoded.
var ErrMalformedReport = errors.New("unreadable quality report")

// ReportStore reads and writes quality_*.json sweep artifacts in one directory.
type ReportStore struct {
	dir         string
	retryConfig retry.Config
	logger      *slog.Logger
}

func NewReportStore(dir string, logger *slog.Logger) *ReportStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportStore{
		dir: dir,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		logger: logger,
	}
}

// Dir returns the reports directory.
func (s *ReportStore) Dir() string {
	return s.dir
}

// SaveReport writes the artifact named after its family, seed and count and
// returns its path. An existing artifact for the same triple is replaced.
func (s *ReportStore) SaveReport(report *quality.RunReport) (string, error) {
	seed, err := strconv.ParseInt(report.Seed, 10, 64)
	if err != nil {
		return "", fmt.Errorf("report seed %q: %w", report.Seed, err)
	}
	count, err := strconv.Atoi(report.Count)
	if err != nil {
		return "", fmt.Errorf("report count %q: %w", report.Count, err)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	path := filepath.Join(s.dir, quality.FileName(report.Family(), seed, count))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	report.Path = path
	return path, nil
}

// LoadReports returns every decodable artifact, sorted by path. Files that
// cannot be read or parsed are logged and skipped. A missing directory holds
// no reports.
func (s *ReportStore) LoadReports(ctx context.Context) ([]*quality.RunReport, error) {
	return s.load(ctx, false)
}

// LoadReportsStrict is LoadReports for callers that act on the data: the
// first unreadable or malformed artifact fails the whole load with
// ErrMalformedReport.
func (s *ReportStore) LoadReportsStrict(ctx context.Context) ([]*quality.RunReport, error) {
	return s.load(ctx, true)
}

func (s *ReportStore) load(ctx context.Context, strict bool) ([]*quality.RunReport, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, quality.ReportGlob))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	sort.Strings(paths)

	retryer := retry.New[[]byte](s.retryConfig)
	reports := make([]*quality.RunReport, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := retryer.Do(ctx, func(ctx context.Context) ([]byte, error) {
			// #nosec G304 -- Path comes from a glob inside the reports directory
			return os.ReadFile(path)
		})
		if err == nil {
			var report *quality.RunReport
			report, err = quality.DecodeRunReport(path, data)
			if err == nil {
				reports = append(reports, report)
				continue
			}
		}
		if strict {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedReport, path, err)
		}
		s.logger.Warn("skipping malformed report", "path", path, "error", err)
	}
	return reports, nil
}
