package aggregate

import (
	"slices"
	"strings"

	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// Filter narrows reports by the seed and count in their artifact names.
// Empty fields match everything.
type Filter struct {
	Seed  string
	Count string
}

// Match reports whether r passes the filter.
func (f Filter) Match(r *quality.RunReport) bool {
	if f.Seed != "" && r.Seed != f.Seed {
		return false
	}
	if f.Count != "" && r.Count != f.Count {
		return false
	}
	return true
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v != nil {
		m.sum += *v
		m.n++
	}
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// JudgeRollup averages external judge scores over a family's rows. Rows
// without any judge score count toward Rows but not WithJudge.
type JudgeRollup struct {
	Family    string
	Rows      int
	WithJudge int

	humor, sense, understandable mean
}

// MeanHumor is nil when no row carried a humor score.
func (j JudgeRollup) MeanHumor() *float64 { return j.humor.value() }

// MeanSense is nil when no row carried a sense score.
func (j JudgeRollup) MeanSense() *float64 { return j.sense.value() }

// MeanUnderstandable is nil when no row carried an understandability score.
func (j JudgeRollup) MeanUnderstandable() *float64 { return j.understandable.value() }

// JudgeByFamily rolls up judge scores per family, sorted by family. Families
// with no rows are omitted.
func JudgeByFamily(reports []*quality.RunReport, filter Filter) []JudgeRollup {
	byFamily := make(map[string]*JudgeRollup)
	for _, r := range reports {
		if !filter.Match(r) {
			continue
		}
		j := byFamily[r.Family()]
		if j == nil {
			j = &JudgeRollup{Family: r.Family()}
			byFamily[r.Family()] = j
		}
		for _, row := range r.Rows {
			j.Rows++
			m := row.Metrics.Judge()
			if m.Empty() {
				continue
			}
			j.WithJudge++
			j.humor.add(m.Humor)
			j.sense.add(m.Sense)
			j.understandable.add(m.Understandable)
		}
	}

	out := make([]JudgeRollup, 0, len(byFamily))
	for _, j := range byFamily {
		if j.Rows > 0 {
			out = append(out, *j)
		}
	}
	slices.SortFunc(out, func(a, b JudgeRollup) int {
		return strings.Compare(a.Family, b.Family)
	})
	return out
}
