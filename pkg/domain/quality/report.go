package quality

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
)

// Judge metric keys as they appear in report rows.
const (
	MetricWordCount        = "wordCount"
	MetricRepeatRatio      = "repeatRatio"
	MetricHumorScore       = "humorScore"
	MetricAIHumor          = "aiHumor"
	MetricAISense          = "aiSense"
	MetricAIUnderstandable = "aiUnderstandable"
)

// Metrics is the string-valued metric map of a row. Numbers and nulls written
// by other tools are accepted and stringified.
type Metrics map[string]string

func (m *Metrics) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Metrics, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'g', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			b, _ := json.Marshal(val)
			out[k] = string(b)
		}
	}
	*m = out
	return nil
}

// Float parses a metric, returning nil when absent or unparsable.
func (m Metrics) Float(key string) *float64 {
	s, ok := m[key]
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// Judge extracts the external judge scores.
func (m Metrics) Judge() corpus.JudgeMetrics {
	return corpus.JudgeMetrics{
		Humor:          m.Float(MetricAIHumor),
		Sense:          m.Float(MetricAISense),
		Understandable: m.Float(MetricAIUnderstandable),
	}
}

// Row is the evaluation of one sampled card.
type Row struct {
	Game    string   `json:"game"`
	I       int      `json:"i"`
	Text    string   `json:"text"`
	Score01 float64  `json:"score01"`
	Pass    bool     `json:"pass"`
	Issues  []string `json:"issues"`
	Metrics Metrics  `json:"metrics"`
}

// Summary is the statistical header of a RunReport.
type Summary struct {
	Game      string    `json:"game"`
	Total     int       `json:"total"`
	Passed    int       `json:"passed"`
	PassRate  float64   `json:"passRate"`
	TopIssues Histogram `json:"topIssues"`
	AvgScore  float64   `json:"avgScore"`
}

// RunReport is the artifact of one sweep of one family. It is never modified
// after NewRunReport returns.
type RunReport struct {
	Summary Summary `json:"summary"`
	Rows    []Row   `json:"rows,omitempty"`

	// Seed and Count come from the artifact name, not the document.
	Seed  string `json:"-"`
	Count string `json:"-"`
	Path  string `json:"-"`
}

// Family returns the family the report was produced for.
func (r *RunReport) Family() string {
	return r.Summary.Game
}

// PassFraction is PassRate scaled to [0,1].
func (r *RunReport) PassFraction() float64 {
	return r.Summary.PassRate / 100
}

// NewRunReport summarizes evaluated rows for family.
func NewRunReport(family string, rows []Row) *RunReport {
	s := Summary{Game: family, Total: len(rows)}
	scoreSum := 0.0
	for _, r := range rows {
		if r.Pass {
			s.Passed++
		}
		scoreSum += r.Score01
		for _, issue := range r.Issues {
			s.TopIssues.Add(issue, 1)
		}
	}
	if len(rows) > 0 {
		s.PassRate = float64(s.Passed) * 100 / float64(len(rows))
		s.AvgScore = scoreSum / float64(len(rows))
	}

	ranked := Histogram{}
	for _, b := range s.TopIssues.Ranked() {
		ranked.Add(b.Kind, b.Count)
	}
	s.TopIssues = ranked
	return &RunReport{Summary: s, Rows: rows}
}

const (
	reportPrefix = "quality_"
	reportExt    = ".json"
)

// ReportGlob matches report artifact names.
const ReportGlob = reportPrefix + "*" + reportExt

// FileName names the artifact for (family, seed, count).
func FileName(family string, seed int64, count int) string {
	return fmt.Sprintf("%s%s_%d_%d%s", reportPrefix, family, seed, count, reportExt)
}

// ParseFileName splits an artifact name into family, seed and count. The
// family may itself contain underscores; seed and count are the last two
// segments.
func ParseFileName(name string) (family, seed, count string, ok bool) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, reportPrefix) || !strings.HasSuffix(base, reportExt) {
		return "", "", "", false
	}
	stem := strings.TrimSuffix(base, reportExt)
	parts := strings.Split(stem, "_")
	if len(parts) < 4 {
		return "", "", "", false
	}
	family = strings.Join(parts[1:len(parts)-2], "_")
	return family, parts[len(parts)-2], parts[len(parts)-1], family != ""
}

// DecodeRunReport parses an artifact. A missing summary.game falls back to
// the family in the artifact name.
func DecodeRunReport(name string, data []byte) (*RunReport, error) {
	var r RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(name), err)
	}
	family, seed, count, ok := ParseFileName(name)
	if ok {
		r.Seed, r.Count = seed, count
	}
	if r.Summary.Game == "" {
		if !ok {
			return nil, fmt.Errorf("decode %s: no family in summary or name", filepath.Base(name))
		}
		r.Summary.Game = family
	}
	r.Path = name
	return &r, nil
}
