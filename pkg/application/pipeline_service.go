package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/calibration"
	"github.com/ntoledo319/HELLDECK/pkg/domain/pipeline"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
)

// PipelineRequest configures one end-to-end run.
type PipelineRequest struct {
	Sweep       SweepRequest
	Calibration calibration.Params
	DryRun      bool
	TopK        int
}

// PipelineResult carries the output of every step that ran.
type PipelineResult struct {
	RunID       string               `json:"run_id"`
	State       string               `json:"state"`
	Verify      *validation.Report   `json:"verify,omitempty"`
	Reports     []*quality.RunReport `json:"reports,omitempty"`
	Summary     string               `json:"summary,omitempty"`
	Calibration *CalibrationResult   `json:"calibration,omitempty"`
}

// PipelineService drives verify, sweep, summarize and calibrate in order.
// A failing verdict stops the run before anything is sampled.
type PipelineService struct {
	verify    *VerifyService
	sweep     *SweepService
	summary   *SummaryService
	calibrate *CalibrationService
	audit     domain.AuditLogger
	logger    *slog.Logger
}

func NewPipelineService(verify *VerifyService, sweep *SweepService, summary *SummaryService, calibrate *CalibrationService, audit domain.AuditLogger, logger *slog.Logger) *PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineService{verify: verify, sweep: sweep, summary: summary, calibrate: calibrate, audit: audit, logger: logger}
}

func (s *PipelineService) Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	result := &PipelineResult{RunID: uuid.NewString()}
	machine, err := pipeline.NewMachine(result.RunID, func() bool {
		return result.Verify != nil && result.Verify.Passed()
	})
	if err != nil {
		return nil, err
	}
	logger := s.logger.With("run_id", result.RunID)

	fail := func(step string, err error) (*PipelineResult, error) {
		_ = machine.Transition(pipeline.EventFail)
		result.State = machine.Current()
		logger.Error("run failed", "step", step, "error", err)
		s.record(ctx, result)
		return result, fmt.Errorf("%s: %w", step, err)
	}

	report, err := s.verify.Verify(ctx, req.Sweep.Corpus)
	if err != nil {
		return fail(pipeline.EventVerify, err)
	}
	result.Verify = report
	if err := machine.Transition(pipeline.EventVerify); err != nil {
		_ = machine.Transition(pipeline.EventFail)
		result.State = machine.Current()
		logger.Warn("corpus failed verification, stopping", "issues", len(report.Result.Issues))
		s.record(ctx, result)
		return result, nil
	}

	if result.Reports, err = s.sweep.Sweep(ctx, req.Sweep); err != nil {
		return fail(pipeline.EventSweep, err)
	}
	if err := machine.Transition(pipeline.EventSweep); err != nil {
		return fail(pipeline.EventSweep, err)
	}

	if result.Summary, err = s.summary.Markdown(ctx, req.TopK); err != nil {
		return fail(pipeline.EventSummarize, err)
	}
	if err := machine.Transition(pipeline.EventSummarize); err != nil {
		return fail(pipeline.EventSummarize, err)
	}

	if result.Calibration, err = s.calibrate.Calibrate(ctx, req.Calibration, req.DryRun); err != nil {
		return fail(pipeline.EventCalibrate, err)
	}
	if err := machine.Transition(pipeline.EventCalibrate); err != nil {
		return fail(pipeline.EventCalibrate, err)
	}

	result.State = machine.Current()
	logger.Info("run completed", "reports", len(result.Reports), "changed", len(result.Calibration.Changed))
	s.record(ctx, result)
	return result, nil
}

func (s *PipelineService) record(ctx context.Context, result *PipelineResult) {
	if s.audit == nil {
		return
	}
	md := map[string]any{
		"run_id":  result.RunID,
		"state":   result.State,
		"reports": len(result.Reports),
	}
	if result.Verify != nil {
		md["verified"] = result.Verify.Passed()
	}
	if err := s.audit.Log(domain.ActionRunCompleted, ActorFrom(ctx), md); err != nil {
		s.logger.Warn("audit log failed", "action", domain.ActionRunCompleted, "error", err)
	}
}
