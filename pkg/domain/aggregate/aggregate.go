// Package aggregate rolls many RunReports of a family into one set of
// statistics. Rollups are sums, so combining them is associative.
package aggregate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// ErrEmptyInput indicates an aggregation was asked for with no reports.
var ErrEmptyInput = errors.New("no reports to aggregate")

// EmptyInputError names the family that had no reports.
type EmptyInputError struct {
	Family string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no reports to aggregate for family %q", e.Family)
}

// Is allows errors.Is to match ErrEmptyInput.
func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// ErrFamilyMismatch indicates an attempt to combine rollups of two families.
var ErrFamilyMismatch = errors.New("cannot combine rollups of different families")

// Rollup is the merged statistics of one family. Means are taken per run,
// matching how each run already averaged its own rows.
type Rollup struct {
	Family      string            `json:"family"`
	Runs        int               `json:"runs"`
	Rows        int               `json:"rows"`
	PassRateSum float64           `json:"pass_rate_sum"`
	ScoreSum    float64           `json:"score_sum"`
	Issues      quality.Histogram `json:"issues"`
}

// FromReport converts one RunReport into a single-run rollup.
func FromReport(r *quality.RunReport) Rollup {
	return Rollup{
		Family:      r.Family(),
		Runs:        1,
		Rows:        r.Summary.Total,
		PassRateSum: r.Summary.PassRate,
		ScoreSum:    r.Summary.AvgScore,
		Issues:      *r.Summary.TopIssues.Clone(),
	}
}

// MeanPassRate is the mean pass rate as a 0-100 percentage.
func (r Rollup) MeanPassRate() float64 {
	if r.Runs == 0 {
		return 0
	}
	return r.PassRateSum / float64(r.Runs)
}

// MeanPassFraction is MeanPassRate scaled to [0,1].
func (r Rollup) MeanPassFraction() float64 {
	return r.MeanPassRate() / 100
}

// MeanScore is the mean of the per-run average scores.
func (r Rollup) MeanScore() float64 {
	if r.Runs == 0 {
		return 0
	}
	return r.ScoreSum / float64(r.Runs)
}

// TopIssues returns at most k issue kinds by merged frequency.
func (r Rollup) TopIssues(k int) []quality.IssueCount {
	return r.Issues.Top(k)
}

// Combine merges two rollups of the same family.
func Combine(a, b Rollup) (Rollup, error) {
	if a.Family != b.Family {
		return Rollup{}, fmt.Errorf("%w: %q and %q", ErrFamilyMismatch, a.Family, b.Family)
	}
	out := Rollup{
		Family:      a.Family,
		Runs:        a.Runs + b.Runs,
		Rows:        a.Rows + b.Rows,
		PassRateSum: a.PassRateSum + b.PassRateSum,
		ScoreSum:    a.ScoreSum + b.ScoreSum,
		Issues:      *a.Issues.Clone(),
	}
	out.Issues.Merge(&b.Issues)
	return out, nil
}

// Merge rolls up every report of family. Reports of other families are
// ignored; having none of family's is an EmptyInputError.
func Merge(family string, reports []*quality.RunReport) (Rollup, error) {
	acc := Rollup{Family: family}
	for _, r := range reports {
		if r.Family() != family {
			continue
		}
		next, err := Combine(acc, FromReport(r))
		if err != nil {
			return Rollup{}, err
		}
		acc = next
	}
	if acc.Runs == 0 {
		return Rollup{}, &EmptyInputError{Family: family}
	}
	return acc, nil
}

// Families lists the distinct families in reports, sorted.
func Families(reports []*quality.RunReport) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range reports {
		if !seen[r.Family()] {
			seen[r.Family()] = true
			out = append(out, r.Family())
		}
	}
	slices.Sort(out)
	return out
}

// ByFamily rolls up every family present in reports, sorted by family.
func ByFamily(reports []*quality.RunReport) []Rollup {
	families := Families(reports)
	out := make([]Rollup, 0, len(families))
	for _, f := range families {
		// Every listed family has at least one report, so Merge cannot fail.
		r, err := Merge(f, reports)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

// PassRates returns each family's mean pass fraction.
func PassRates(rollups []Rollup) map[string]float64 {
	out := make(map[string]float64, len(rollups))
	for _, r := range rollups {
		out[r.Family] = r.MeanPassFraction()
	}
	return out
}
