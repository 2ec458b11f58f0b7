package application

import (
	"log/slog"

	"github.com/ntoledo319/HELLDECK/pkg/domain/lint"
)

// LintService runs source scanners over an application tree.
type LintService struct {
	scanners []lint.Scanner
	logger   *slog.Logger
}

// NewLintService uses the duplicate-symbol and dead-handler scanners when
// none are given.
func NewLintService(logger *slog.Logger, scanners ...lint.Scanner) *LintService {
	if logger == nil {
		logger = slog.Default()
	}
	if len(scanners) == 0 {
		scanners = []lint.Scanner{lint.NewDuplicateSymbolScanner(), &lint.DeadHandlerScanner{}}
	}
	return &LintService{scanners: scanners, logger: logger}
}

func (s *LintService) Scan(root string) ([]lint.Finding, error) {
	findings, err := lint.ScanAll(root, s.scanners...)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("lint finished", "root", root, "findings", len(findings))
	return findings, nil
}
