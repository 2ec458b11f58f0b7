// Package validation runs independent checks over a corpus and partitions what
// they find into blocking Issues and advisory Warnings.
package validation

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityIssue   Severity = "issue"   // blocks the run
	SeverityWarning Severity = "warning" // advisory only
)

// FamilyLevel is the Index of a finding that concerns a whole family or the
// document rather than one card.
const FamilyLevel = -1

// Finding is one classified validation outcome.
type Finding struct {
	Pass     string   `json:"pass"`
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Family   string   `json:"family,omitempty"`
	Index    int      `json:"index"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	switch {
	case f.Family == "":
		return f.Message
	case f.Index == FamilyLevel:
		return fmt.Sprintf("%s: %s", f.Family, f.Message)
	default:
		return fmt.Sprintf("%s[%d]: %s", f.Family, f.Index, f.Message)
	}
}

// Result is the partitioned output of one or more passes. Passes return their
// own Result and the caller merges them; nothing is shared between passes.
type Result struct {
	Issues   []Finding `json:"issues"`
	Warnings []Finding `json:"warnings"`
}

// Issue records a blocking finding.
func (r *Result) Issue(pass, kind, family string, index int, format string, args ...any) {
	r.Issues = append(r.Issues, Finding{
		Pass:     pass,
		Kind:     kind,
		Severity: SeverityIssue,
		Family:   family,
		Index:    index,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warn records an advisory finding.
func (r *Result) Warn(pass, kind, family string, index int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{
		Pass:     pass,
		Kind:     kind,
		Severity: SeverityWarning,
		Family:   family,
		Index:    index,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends other after r, keeping order.
func (r *Result) Merge(other Result) {
	r.Issues = append(r.Issues, other.Issues...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Passed is true iff there are no Issues. Warnings never fail a run.
func (r Result) Passed() bool {
	return len(r.Issues) == 0
}

// PassOutcome summarizes one pass within a Report.
type PassOutcome struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Issues   int    `json:"issues"`
	Warnings int    `json:"warnings"`
}

// Report is the output of one validator execution.
type Report struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	Families  int           `json:"families"`
	Cards     int           `json:"cards"`
	Passes    []PassOutcome `json:"passes"`
	Result    Result        `json:"result"`
	CreatedAt time.Time     `json:"created_at"`
}

// Passed reports the overall verdict.
func (r *Report) Passed() bool {
	return r.Result.Passed()
}

// IssueCounts tallies issues by kind in first-seen order.
func (r *Report) IssueCounts() ([]string, map[string]int) {
	var order []string
	counts := make(map[string]int)
	for _, f := range r.Result.Issues {
		if _, ok := counts[f.Kind]; !ok {
			order = append(order, f.Kind)
		}
		counts[f.Kind]++
	}
	return order, counts
}
