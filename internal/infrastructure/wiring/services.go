package wiring

import (
	"fmt"
	"log/slog"

	"github.com/ntoledo319/HELLDECK/internal/infrastructure/config"
	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation/passes"
)

// AppServices exposes the application services wired to one workspace.
type AppServices struct {
	Workspace   *Workspace
	Verify      *application.VerifyService
	Sweep       *application.SweepService
	Summary     *application.SummaryService
	Calibration *application.CalibrationService
	Profiles    *application.ProfileService
	Lint        *application.LintService
	Pipeline    *application.PipelineService
	Audit       *application.AuditService
	Logger      *slog.Logger
}

// BuildAppServices loads the workspace config under root and constructs the
// services.
func BuildAppServices(root string, logger *slog.Logger) (*AppServices, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return BuildWithConfig(root, cfg, logger), nil
}

// BuildWithConfig wires services around an already loaded config.
func BuildWithConfig(root string, cfg *config.Config, logger *slog.Logger) *AppServices {
	if logger == nil {
		logger = slog.Default()
	}
	ws := NewWorkspace(root, cfg, logger)

	validator := passes.NewValidator(cfg.ValidationOptions())
	if cfg.Workers > 0 {
		validator = validator.WithWorkers(cfg.Workers)
	}

	verifySvc := application.NewVerifyService(ws.Corpus, validator, ws.Audit, logger)
	sweepSvc := application.NewSweepService(ws.Corpus, ws.Repo, ws.Reports, ws.Audit, logger)
	summarySvc := application.NewSummaryService(ws.Reports, ws.Reports.Dir())
	calibrationSvc := application.NewCalibrationService(ws.Reports, ws.Repo, ws.Audit, logger)

	return &AppServices{
		Workspace:   ws,
		Verify:      verifySvc,
		Sweep:       sweepSvc,
		Summary:     summarySvc,
		Calibration: calibrationSvc,
		Profiles:    application.NewProfileService(ws.Repo, ws.Audit, logger),
		Lint:        application.NewLintService(logger),
		Pipeline:    application.NewPipelineService(verifySvc, sweepSvc, summarySvc, calibrationSvc, ws.Audit, logger),
		Audit:       ws.Audit,
		Logger:      logger,
	}
}
