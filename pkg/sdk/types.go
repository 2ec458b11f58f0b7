package sdk

import (
	"github.com/ntoledo319/HELLDECK/pkg/domain/calibration"
)

// VerifyResult is the verdict returned by cardqa_verify.
type VerifyResult struct {
	Passed   bool     `json:"passed"`
	Families int      `json:"families"`
	Cards    int      `json:"cards"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// SweepRequest selects what cardqa_sweep samples. Zero values use the
// server defaults.
type SweepRequest struct {
	Families []string
	Seeds    []int64
	Count    int
}

// SummaryRequest configures cardqa_summary.
type SummaryRequest struct {
	AI    bool
	Seed  string
	Count string
	TopK  int
}

// CalibrateRequest configures cardqa_calibrate. Zero Target or Step use the
// server's configured values.
type CalibrateRequest struct {
	Target float64
	Step   float64
	DryRun bool
}

// CalibrationResult is the outcome of cardqa_calibrate.
type CalibrationResult struct {
	Reports   int                    `json:"reports"`
	Decisions []calibration.Decision `json:"decisions"`
	Changed   []calibration.Decision `json:"changed"`
	Written   bool                   `json:"written"`
	DryRun    bool                   `json:"dry_run"`
}
