package application

import (
	"context"
	"fmt"

	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/aggregate"
	"github.com/ntoledo319/HELLDECK/pkg/domain/summary"
)

// SummaryService rolls stored RunReports up by family and renders them.
type SummaryService struct {
	reports domain.ReportRepository
	source  string
}

// NewSummaryService reads from reports; source names the reports location in
// rendered output.
func NewSummaryService(reports domain.ReportRepository, source string) *SummaryService {
	return &SummaryService{reports: reports, source: source}
}

// Rollups returns one rollup per family with at least one report, sorted.
func (s *SummaryService) Rollups(ctx context.Context) ([]aggregate.Rollup, error) {
	reports, err := s.reports.LoadReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	return aggregate.ByFamily(reports), nil
}

// Family rolls up a single family. No reports for it is an
// *aggregate.EmptyInputError.
func (s *SummaryService) Family(ctx context.Context, family string) (aggregate.Rollup, error) {
	reports, err := s.reports.LoadReports(ctx)
	if err != nil {
		return aggregate.Rollup{}, fmt.Errorf("load reports: %w", err)
	}
	return aggregate.Merge(family, reports)
}

func (s *SummaryService) Markdown(ctx context.Context, topK int) (string, error) {
	rollups, err := s.Rollups(ctx)
	if err != nil {
		return "", err
	}
	return summary.Render(rollups, summary.Options{TopK: topK, Source: s.source}), nil
}

func (s *SummaryService) JudgeMarkdown(ctx context.Context, filter aggregate.Filter) (string, error) {
	reports, err := s.reports.LoadReports(ctx)
	if err != nil {
		return "", fmt.Errorf("load reports: %w", err)
	}
	return summary.RenderJudge(aggregate.JudgeByFamily(reports, filter)), nil
}
