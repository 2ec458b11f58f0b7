package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
)

// VerifyService loads a corpus and runs the validator over it.
type VerifyService struct {
	source    domain.CorpusSource
	validator *validation.Validator
	audit     domain.AuditLogger
	logger    *slog.Logger
}

func NewVerifyService(source domain.CorpusSource, validator *validation.Validator, audit domain.AuditLogger, logger *slog.Logger) *VerifyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerifyService{source: source, validator: validator, audit: audit, logger: logger}
}

// Verify returns the validation report of the corpus at path. Load failures
// come back as *corpus.LoadError and produce no report.
func (s *VerifyService) Verify(ctx context.Context, path string) (*validation.Report, error) {
	c, err := s.source.LoadCorpus(ctx, path)
	if err != nil {
		s.logger.Error("corpus load failed", "path", path, "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := s.validator.Validate(c)
	s.logger.Info("corpus verified",
		"path", path,
		"families", report.Families,
		"cards", report.Cards,
		"issues", len(report.Result.Issues),
		"warnings", len(report.Result.Warnings),
		"passed", report.Passed())

	if s.audit != nil {
		err := s.audit.Log(domain.ActionVerifyCompleted, ActorFrom(ctx), map[string]any{
			"report_id": report.ID,
			"source":    path,
			"families":  report.Families,
			"cards":     report.Cards,
			"issues":    len(report.Result.Issues),
			"warnings":  len(report.Result.Warnings),
			"passed":    report.Passed(),
		})
		if err != nil {
			s.logger.Warn("audit log failed", "action", domain.ActionVerifyCompleted, "error", err)
		}
	}
	return report, nil
}

// Describe lists the configured passes as "id: name".
func (s *VerifyService) Describe() []string {
	passes := s.validator.Passes()
	out := make([]string, 0, len(passes))
	for _, p := range passes {
		out = append(out, fmt.Sprintf("%s: %s", p.ID(), p.Name()))
	}
	return out
}
