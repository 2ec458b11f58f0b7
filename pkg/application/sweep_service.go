package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// Sweep defaults.
const (
	DefaultSeed  int64 = 12345
	DefaultCount       = 50
	MaxCount           = 2000
)

// SweepRequest selects what to sample. Empty Families means every family in
// the corpus; empty Seeds means DefaultSeed.
type SweepRequest struct {
	Corpus   string
	Families []string
	Seeds    []int64
	Count    int
}

// SweepService samples cards from each family, scores them and writes one
// RunReport per (family, seed).
type SweepService struct {
	source   domain.CorpusSource
	profiles domain.ProfileRepository
	reports  domain.ReportRepository
	audit    domain.AuditLogger
	logger   *slog.Logger
}

func NewSweepService(source domain.CorpusSource, profiles domain.ProfileRepository, reports domain.ReportRepository, audit domain.AuditLogger, logger *slog.Logger) *SweepService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepService{source: source, profiles: profiles, reports: reports, audit: audit, logger: logger}
}

func (s *SweepService) Sweep(ctx context.Context, req SweepRequest) ([]*quality.RunReport, error) {
	count := req.Count
	if count <= 0 {
		count = DefaultCount
	}
	count = min(count, MaxCount)
	seeds := req.Seeds
	if len(seeds) == 0 {
		seeds = []int64{DefaultSeed}
	}

	c, err := s.source.LoadCorpus(ctx, req.Corpus)
	if err != nil {
		return nil, err
	}
	families, err := selectFamilies(c, req.Families)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.LoadProfiles()
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	evaluator := quality.NewEvaluator(profiles)

	var out []*quality.RunReport
	for _, f := range families {
		for _, seed := range seeds {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			report, err := evaluator.Sweep(f, seed, count)
			if errors.Is(err, quality.ErrEmptyFamily) {
				s.logger.Warn("skipping empty family", "family", f.Name)
				break
			}
			if err != nil {
				return out, fmt.Errorf("sweep %s: %w", f.Name, err)
			}
			path, err := s.reports.SaveReport(report)
			if err != nil {
				return out, err
			}
			s.logger.Info("sweep written",
				"family", f.Name,
				"seed", seed,
				"count", count,
				"pass_rate", report.Summary.PassRate,
				"path", path)
			s.record(ctx, report)
			out = append(out, report)
		}
	}
	return out, nil
}

func (s *SweepService) record(ctx context.Context, report *quality.RunReport) {
	if s.audit == nil {
		return
	}
	err := s.audit.Log(domain.ActionSweepCompleted, ActorFrom(ctx), map[string]any{
		"family":    report.Family(),
		"seed":      report.Seed,
		"count":     report.Count,
		"pass_rate": report.Summary.PassRate,
		"avg_score": report.Summary.AvgScore,
	})
	if err != nil {
		s.logger.Warn("audit log failed", "action", domain.ActionSweepCompleted, "error", err)
	}
}

func selectFamilies(c *corpus.Corpus, names []string) ([]*corpus.Family, error) {
	if len(names) == 0 {
		return c.Families, nil
	}
	var out []*corpus.Family
	for _, f := range c.Families {
		if slices.Contains(names, f.Name) {
			out = append(out, f)
		}
	}
	for _, name := range names {
		if _, ok := c.Family(name); !ok {
			return nil, fmt.Errorf("family %q not found in %s", name, c.Source)
		}
	}
	return out, nil
}
