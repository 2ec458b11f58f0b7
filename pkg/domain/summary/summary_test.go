package summary_test

import (
	"strings"
	"testing"

	"github.com/ntoledo319/HELLDECK/pkg/domain/aggregate"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
	"github.com/ntoledo319/HELLDECK/pkg/domain/summary"
)

func rollup(family string, issues ...string) aggregate.Rollup {
	r := aggregate.Rollup{Family: family, Runs: 2, Rows: 100, PassRateSum: 170, ScoreSum: 1.5}
	for i, kind := range issues {
		r.Issues.Add(kind, len(issues)-i)
	}
	return r
}

func TestRender_SortedAndCapped(t *testing.T) {
	out := summary.Render([]aggregate.Rollup{
		rollup("title_fight", "A", "B", "C", "D", "E", "F", "G"),
		rollup("alibi_drop"),
	}, summary.Options{Source: "reports"})

	want := `# Card Quality Summary

Aggregated across all available sweeps in reports.

## alibi_drop

- Rows: 100
- Average pass rate: 85.0% across 2 run(s)
- Average score: 0.750
- Top issues: (none)

## title_fight

- Rows: 100
- Average pass rate: 85.0% across 2 run(s)
- Average score: 0.750
- Top issues: A×7, B×6, C×5, D×4, E×3

`
	if out != want {
		t.Errorf("unexpected render:\n%s", out)
	}
}

func TestRender_Empty(t *testing.T) {
	out := summary.Render(nil, summary.Options{})
	if !strings.Contains(out, "No quality reports found.") {
		t.Errorf("unexpected render:\n%s", out)
	}
}

func TestRenderJudge_AbsentIsNotZero(t *testing.T) {
	reports := []*quality.RunReport{
		{
			Summary: quality.Summary{Game: "reality_check"},
			Rows: []quality.Row{
				{Metrics: quality.Metrics{quality.MetricAIHumor: "0.25"}},
				{Metrics: quality.Metrics{quality.MetricAIHumor: "0.75"}},
			},
		},
	}
	out := summary.RenderJudge(aggregate.JudgeByFamily(reports, aggregate.Filter{}))
	for _, want := range []string{
		"## reality_check",
		"- Rows: 2 | With AI: 2",
		"- Avg humor01: 0.500",
		"- Avg makesSense01: (no AI data)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
