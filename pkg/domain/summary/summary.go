// Package summary renders aggregated quality statistics as Markdown.
package summary

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ntoledo319/HELLDECK/pkg/domain/aggregate"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// DefaultTopK caps the issue kinds listed per family.
const DefaultTopK = 5

const noJudgeData = "(no AI data)"

// Options controls rendering.
type Options struct {
	TopK   int
	Source string
}

func sorted[T any](in []T, family func(T) string) []T {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b T) int {
		return strings.Compare(family(a), family(b))
	})
	return out
}

// Render writes one section per family, families in lexicographic order.
func Render(rollups []aggregate.Rollup, opts Options) string {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	var b strings.Builder
	b.WriteString("# Card Quality Summary\n\n")
	if opts.Source != "" {
		fmt.Fprintf(&b, "Aggregated across all available sweeps in %s.\n\n", opts.Source)
	}
	if len(rollups) == 0 {
		b.WriteString("No quality reports found.\n")
		return b.String()
	}

	for _, r := range sorted(rollups, func(r aggregate.Rollup) string { return r.Family }) {
		fmt.Fprintf(&b, "## %s\n\n", r.Family)
		fmt.Fprintf(&b, "- Rows: %d\n", r.Rows)
		fmt.Fprintf(&b, "- Average pass rate: %.1f%% across %d run(s)\n", r.MeanPassRate(), r.Runs)
		fmt.Fprintf(&b, "- Average score: %.3f\n", r.MeanScore())
		fmt.Fprintf(&b, "- Top issues: %s\n\n", quality.FormatTop(r.TopIssues(topK)))
	}
	return b.String()
}

// RenderJudge writes the external judge averages per family. Missing averages
// are shown as absent, never as zero.
func RenderJudge(rollups []aggregate.JudgeRollup) string {
	var b strings.Builder
	b.WriteString("# AI Judge Summary (Humor & Sense)\n\n")
	b.WriteString("Values are 0..1 averages; only rows with judge scores are included.\n\n")
	if len(rollups) == 0 {
		b.WriteString("No quality reports found.\n")
		return b.String()
	}

	for _, j := range sorted(rollups, func(j aggregate.JudgeRollup) string { return j.Family }) {
		fmt.Fprintf(&b, "## %s\n\n", j.Family)
		fmt.Fprintf(&b, "- Rows: %d | With AI: %d\n", j.Rows, j.WithJudge)
		fmt.Fprintf(&b, "- Avg humor01: %s\n", formatMean(j.MeanHumor()))
		fmt.Fprintf(&b, "- Avg makesSense01: %s\n", formatMean(j.MeanSense()))
		fmt.Fprintf(&b, "- Avg understandable01: %s\n\n", formatMean(j.MeanUnderstandable()))
	}
	return b.String()
}

func formatMean(v *float64) string {
	if v == nil {
		return noJudgeData
	}
	return fmt.Sprintf("%.3f", *v)
}
