package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/aggregate"
	"github.com/ntoledo319/HELLDECK/pkg/domain/calibration"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// CalibrationResult reports what one calibration run decided.
type CalibrationResult struct {
	Reports   int                    `json:"reports"`
	Decisions []calibration.Decision `json:"decisions"`
	Changed   []calibration.Decision `json:"changed"`
	Written   bool                   `json:"written"`
	DryRun    bool                   `json:"dry_run"`
}

// CalibrationService moves per-family humor thresholds toward the target pass
// rate observed in the stored RunReports.
type CalibrationService struct {
	reports  domain.ReportRepository
	profiles domain.ProfileRepository
	audit    domain.AuditLogger
	logger   *slog.Logger
	now      func() time.Time
}

func NewCalibrationService(reports domain.ReportRepository, profiles domain.ProfileRepository, audit domain.AuditLogger, logger *slog.Logger) *CalibrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalibrationService{reports: reports, profiles: profiles, audit: audit, logger: logger, now: time.Now}
}

// Calibrate plans every family and, unless dryRun, persists all changes in a
// single profile store write. Nothing is written when any step fails,
// including a single report that cannot be read or decoded.
func (s *CalibrationService) Calibrate(ctx context.Context, params calibration.Params, dryRun bool) (*CalibrationResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	reports, err := s.reports.LoadReportsStrict(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	rates := aggregate.PassRates(aggregate.ByFamily(reports))
	result := &CalibrationResult{Reports: len(reports), DryRun: dryRun}

	if dryRun {
		profiles, err := s.profiles.LoadProfiles()
		if err != nil {
			return nil, fmt.Errorf("load profiles: %w", err)
		}
		result.Decisions = calibration.Plan(profiles, rates, params)
		_, result.Changed = calibration.Apply(profiles, result.Decisions)
		return result, nil
	}

	err = s.profiles.UpdateProfiles(ctx, func(current *quality.Profiles) (*quality.Profiles, bool, error) {
		result.Decisions = calibration.Plan(current, rates, params)
		next, changed := calibration.Apply(current, result.Decisions)
		result.Changed = changed
		if len(changed) == 0 {
			return current, false, nil
		}
		next.UpdatedAt = s.now().UTC()
		return next, true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update profiles: %w", err)
	}
	result.Written = len(result.Changed) > 0

	for _, d := range result.Changed {
		s.logger.Info("threshold adjusted",
			"family", d.Family,
			"direction", d.Direction,
			"previous", d.Previous,
			"next", d.Next)
		s.record(ctx, d)
	}
	return result, nil
}

func (s *CalibrationService) record(ctx context.Context, d calibration.Decision) {
	if s.audit == nil {
		return
	}
	md := map[string]any{
		"family":    d.Family,
		"direction": string(d.Direction),
		"previous":  d.Previous,
		"next":      d.Next,
	}
	if d.PassRate != nil {
		md["pass_rate"] = *d.PassRate
	}
	if err := s.audit.Log(domain.ActionCalibrationAdjusted, ActorFrom(ctx), md); err != nil {
		s.logger.Warn("audit log failed", "action", domain.ActionCalibrationAdjusted, "error", err)
	}
}
