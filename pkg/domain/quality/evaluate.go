package quality

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
)

// Card issue kinds reported in rows and histograms.
const (
	IssueTooShort      = "TOO_SHORT"
	IssueTooLong       = "TOO_LONG"
	IssueExcessRepeat  = "EXCESS_REPEAT"
	IssuePlaceholder   = "PLACEHOLDER"
	IssueOptionsBad    = "OPTIONS_BAD"
	IssueLacksContrast = "LACKS_CONTRAST"
	IssueNotTargeted   = "NOT_TARGETED"
	IssueLowHumor      = "LOW_HUMOR"
	IssueNotFunny      = "LLM_NOT_FUNNY"
	IssueUnclear       = "UNCLEAR"
)

// Scoring constants.
const (
	PassScore = 0.60

	weightStructure = 0.35
	weightHumor     = 0.45
	weightJudge     = 0.20

	neutralHumor = 0.4
	neutralJudge = 0.6

	judgeFunnyMin  = 0.35
	judgeClearMin  = 0.5
	contrastMaxSim = 0.6
)

var structuralIssues = []string{IssueTooShort, IssueTooLong, IssueExcessRepeat, IssuePlaceholder, IssueOptionsBad}

// ErrEmptyFamily indicates a sweep over a family with no cards.
var ErrEmptyFamily = errors.New("family has no cards to sample")

// Evaluator scores cards against per-family profiles.
type Evaluator struct {
	Profiles *Profiles
}

// NewEvaluator creates an Evaluator. A nil profile set uses DefaultProfiles.
func NewEvaluator(p *Profiles) *Evaluator {
	if p == nil {
		p = DefaultProfiles()
	}
	return &Evaluator{Profiles: p}
}

// Evaluate scores one card of family.
func (e *Evaluator) Evaluate(family string, card *corpus.Card) Row {
	kind := corpus.KindOf(family)
	profile := e.Profiles.For(family)
	text := strings.TrimSpace(kind.Render(card))

	var issues []string
	add := func(kind string) {
		for _, k := range issues {
			if k == kind {
				return
			}
		}
		issues = append(issues, kind)
	}

	words := strings.Fields(text)
	wc := len(words)
	if wc < profile.MinWords {
		add(IssueTooShort)
	}
	if wc > profile.MaxWords {
		add(IssueTooLong)
	}
	if strings.ContainsAny(text, "{}") {
		add(IssuePlaceholder)
	}

	repeat := repeatRatio(words)
	if repeat > profile.MaxRepeatRatio {
		add(IssueExcessRepeat)
	}

	opts := optionsOf(kind, card)
	if profile.RequireOptions && !opts.ok {
		add(IssueOptionsBad)
	}
	if profile.RequireContrast && opts.ab && !hasContrast(opts.a, opts.b) {
		add(IssueLacksContrast)
	}
	if profile.RequireTargeting && !isTargeted(text) && nounish(words) < 1 {
		add(IssueNotTargeted)
	}

	if profile.MinHumor != nil && card.HumorScore != nil && *card.HumorScore < *profile.MinHumor {
		add(IssueLowHumor)
	}
	judge := card.Metrics
	if judge.Humor != nil && *judge.Humor < judgeFunnyMin {
		add(IssueNotFunny)
	}
	if judge.Understandable != nil && *judge.Understandable < judgeClearMin {
		add(IssueUnclear)
	}

	score := Score(issues, card.HumorScore, judge)
	row := Row{
		Game:    family,
		I:       card.Index,
		Text:    text,
		Score01: score,
		Pass:    len(issues) == 0 || score >= PassScore,
		Issues:  issues,
		Metrics: Metrics{
			MetricWordCount:        strconv.Itoa(wc),
			MetricRepeatRatio:      formatFloat(&repeat),
			MetricHumorScore:       formatFloat(card.HumorScore),
			MetricAIHumor:          formatFloat(judge.Humor),
			MetricAISense:          formatFloat(judge.Sense),
			MetricAIUnderstandable: formatFloat(judge.Understandable),
		},
	}
	if row.Issues == nil {
		row.Issues = []string{}
	}
	return row
}

// Score is the composite 0..1 score: structure, generator humor and judge
// signals, with neutral defaults for absent signals.
func Score(issues []string, humorScore *float64, judge corpus.JudgeMetrics) float64 {
	hit := 0
	for _, s := range structuralIssues {
		for _, k := range issues {
			if k == s {
				hit++
				break
			}
		}
	}
	structure := clamp01(1 - float64(hit)/float64(len(structuralIssues)))

	humor := neutralHumor
	if humorScore != nil && !math.IsNaN(*humorScore) && !math.IsInf(*humorScore, 0) {
		humor = *humorScore
	}

	judgeScore := neutralJudge
	var sum float64
	var n int
	for _, v := range []*float64{judge.Humor, judge.Sense, judge.Understandable} {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n > 0 {
		judgeScore = sum / float64(n)
	}

	return clamp01(weightStructure*structure + weightHumor*humor + weightJudge*judgeScore)
}

// Sweep evaluates count cards of f drawn deterministically from seed.
func (e *Evaluator) Sweep(f *corpus.Family, seed int64, count int) (*RunReport, error) {
	if len(f.Cards) == 0 {
		return nil, ErrEmptyFamily
	}
	indices := corpus.SampleIndices(seed, count, len(f.Cards))
	rows := make([]Row, 0, len(indices))
	for draw, idx := range indices {
		row := e.Evaluate(f.Name, &f.Cards[idx])
		row.I = draw
		rows = append(rows, row)
	}
	report := NewRunReport(f.Name, rows)
	report.Seed = strconv.FormatInt(seed, 10)
	report.Count = strconv.Itoa(count)
	return report, nil
}

func repeatRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	counts := make(map[string]int, len(words))
	top := 0
	for _, w := range words {
		k := strings.ToLower(w)
		counts[k]++
		if counts[k] > top {
			top = counts[k]
		}
	}
	return float64(top) / float64(len(words))
}

type options struct {
	ok   bool
	ab   bool
	a, b string
}

func optionsOf(kind corpus.Kind, card *corpus.Card) options {
	switch kind.ID {
	case corpus.RedFlagRally:
		return abOptions(card.Perk, card.RedFlag)
	case corpus.PoisonPitch:
		a, b, found := splitRather(card.Text)
		if !found {
			return options{}
		}
		return abOptions(a, b)
	case corpus.TabooTimer:
		n := 0
		for _, w := range card.ForbiddenWords {
			if strings.TrimSpace(w) != "" {
				n++
			}
		}
		return options{ok: strings.TrimSpace(card.Text) != "" && n >= 3}
	case corpus.Scatterblast:
		return options{ok: strings.TrimSpace(card.Category) != "" && utf8.RuneCountInString(card.Letter) == 1}
	case corpus.AlibiDrop:
		distinct := make(map[string]bool)
		for _, w := range card.HiddenWords {
			distinct[w] = true
		}
		return options{ok: len(distinct) >= 2}
	default:
		return options{ok: true}
	}
}

func abOptions(a, b string) options {
	ok := strings.TrimSpace(a) != "" && strings.TrimSpace(b) != "" && !strings.EqualFold(a, b)
	return options{
		ok: ok,
		ab: true,
		a:  strings.ToLower(strings.TrimSpace(a)),
		b:  strings.ToLower(strings.TrimSpace(b)),
	}
}

// splitRather extracts the two choices of a "would you rather A or B" prompt.
func splitRather(text string) (string, string, bool) {
	lower := strings.ToLower(text)
	const cue = "would you rather"
	i := strings.Index(lower, cue)
	if i < 0 {
		return "", "", false
	}
	rest := text[i+len(cue):]
	j := strings.LastIndex(strings.ToLower(rest), " or ")
	if j < 0 {
		return "", "", false
	}
	a := strings.Trim(rest[:j], " ,:")
	b := strings.TrimRight(strings.TrimSpace(rest[j+len(" or "):]), "?!.")
	return a, b, true
}

func tokenize(s string) map[string]bool {
	mapped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			return r
		}
		return ' '
	}, s)
	out := make(map[string]bool)
	for _, w := range strings.Fields(mapped) {
		out[w] = true
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

func hasContrast(a, b string) bool {
	if jaccard(tokenize(a), tokenize(b)) > contrastMaxSim {
		return false
	}
	return prefix(a, 5) != prefix(b, 5)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return s
	}
	return string(r[:n])
}

var targetKeywords = []string{
	"most likely", "who ", "who's", "whoever", "who would", "who'd", "who’d",
	"call out", "point at", "pick", "vote", "name the", "tag the",
	"among", "in the room", "because",
}

var socialVerbs = []string{"accuse", "roast", "point at", "choose", "select", "call out", "name"}

func isTargeted(text string) bool {
	t := strings.ToLower(text)
	for _, k := range targetKeywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	hasYou := strings.Contains(t, "you ") || strings.Contains(t, "you're") || strings.Contains(t, "your ")
	if !hasYou {
		return false
	}
	for _, v := range socialVerbs {
		if strings.Contains(t, v) {
			return true
		}
	}
	return false
}

func nounish(words []string) int {
	n := 0
	for _, w := range words {
		w = strings.TrimRightFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
		if strings.HasSuffix(w, "er") || strings.HasSuffix(w, "ist") || strings.HasSuffix(w, "tion") {
			n++
		}
	}
	return n
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
