package quality_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

func f64(v float64) *float64 { return &v }

func TestDefaultProfiles(t *testing.T) {
	p := quality.DefaultProfiles()
	if len(p.Families) != len(corpus.CanonicalIDs()) {
		t.Fatalf("expected a profile per canonical family, got %d", len(p.Families))
	}
	for _, id := range corpus.CanonicalIDs() {
		prof, ok := p.Get(string(id))
		if !ok {
			t.Fatalf("missing profile for %s", id)
		}
		if prof.MaxWords != 28 || prof.MaxRepeatRatio != 0.4 {
			t.Errorf("%s: unexpected limits %+v", id, prof)
		}
	}
	if p.For(string(corpus.TabooTimer)).Calibrated() {
		t.Error("taboo has no humor threshold")
	}
	if got := *p.For(string(corpus.RedFlagRally)).MinHumor; got != 0.40 {
		t.Errorf("red flag min_humor = %v", got)
	}
	if p.For("unknown").MinWords != 5 {
		t.Error("unknown family falls back to the default profile")
	}
}

func TestProfiles_CloneIsIndependent(t *testing.T) {
	p := quality.DefaultProfiles()
	c := p.Clone()
	c.Set(string(corpus.RoastConsensus), c.For(string(corpus.RoastConsensus)).WithMinHumor(0.5))
	if *p.For(string(corpus.RoastConsensus)).MinHumor != 0.35 {
		t.Error("clone mutation leaked into the original")
	}
}

func TestHistogram_RankingAndJSONOrder(t *testing.T) {
	var h quality.Histogram
	h.Add("B", 2)
	h.Add("A", 3)
	h.Add("C", 2)
	h.Add("D", 1)

	got := quality.FormatTop(h.Top(3))
	if got != "A×3, B×2, C×2" {
		t.Errorf("FormatTop = %q", got)
	}

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"B":2,"A":3,"C":2,"D":1}` {
		t.Errorf("marshal = %s", data)
	}

	var back quality.Histogram
	if err := json.Unmarshal([]byte(`{"Z":1,"Y":4}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]quality.IssueCount{{Kind: "Z", Count: 1}, {Kind: "Y", Count: 4}}, back.Buckets()); diff != "" {
		t.Errorf("unmarshal order mismatch (-want +got):\n%s", diff)
	}
	if quality.FormatTop(nil) != "(none)" {
		t.Error("empty histogram renders as (none)")
	}
}

func TestEvaluate(t *testing.T) {
	e := quality.NewEvaluator(nil)

	tests := []struct {
		name       string
		family     corpus.KindID
		card       corpus.Card
		wantIssues []string
		wantPass   bool
	}{
		{
			name:       "clean roast",
			family:     corpus.RoastConsensus,
			card:       corpus.Card{Text: "Who would most likely cry at a car commercial?"},
			wantIssues: []string{},
			wantPass:   true,
		},
		{
			name:       "short untargeted roast",
			family:     corpus.RoastConsensus,
			card:       corpus.Card{Text: "Eat the soup"},
			wantIssues: []string{quality.IssueTooShort, quality.IssueNotTargeted},
			wantPass:   false,
		},
		{
			name:       "placeholder and repeat",
			family:     corpus.ConfessionOrCap,
			card:       corpus.Card{Text: "Confess {thing} thing thing thing"},
			wantIssues: []string{quality.IssuePlaceholder, quality.IssueExcessRepeat},
			wantPass:   false,
		},
		{
			name:   "red flag without contrast",
			family: corpus.RedFlagRally,
			card:   corpus.Card{Perk: "They love dogs a lot", RedFlag: "They love dogs a lot"},
			wantIssues: []string{
				quality.IssueOptionsBad,
				quality.IssueLacksContrast,
			},
			wantPass: false,
		},
		{
			name:       "taboo needs three forbidden words",
			family:     corpus.TabooTimer,
			card:       corpus.Card{Text: "pizza", ForbiddenWords: []string{"cheese", "slice"}},
			wantIssues: []string{quality.IssueOptionsBad},
			wantPass:   false,
		},
		{
			name:   "judge signals",
			family: corpus.FillInFinisher,
			card: corpus.Card{
				Text:       "My therapist quit after I said _",
				HumorScore: f64(0.1),
				Metrics:    corpus.JudgeMetrics{Humor: f64(0.2), Understandable: f64(0.3)},
			},
			wantIssues: []string{quality.IssueLowHumor, quality.IssueNotFunny, quality.IssueUnclear},
			wantPass:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := e.Evaluate(string(tt.family), &tt.card)
			if diff := cmp.Diff(tt.wantIssues, row.Issues); diff != "" {
				t.Errorf("issues mismatch (-want +got):\n%s", diff)
			}
			if row.Pass != tt.wantPass {
				t.Errorf("pass = %v (score %.3f)", row.Pass, row.Score01)
			}
		})
	}
}

func TestScore_Weights(t *testing.T) {
	// No issues, no signals: 0.35*1 + 0.45*0.4 + 0.2*0.6
	if got := quality.Score(nil, nil, corpus.JudgeMetrics{}); math.Abs(got-0.65) > 1e-9 {
		t.Errorf("neutral score = %v, want 0.65", got)
	}
	// Two structural issues drop structure to 0.6.
	got := quality.Score([]string{quality.IssueTooShort, quality.IssuePlaceholder, quality.IssueLowHumor}, f64(1), corpus.JudgeMetrics{Sense: f64(1)})
	want := 0.35*0.6 + 0.45 + 0.2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestNewRunReport(t *testing.T) {
	rows := []quality.Row{
		{Score01: 0.8, Pass: true, Issues: []string{}},
		{Score01: 0.4, Pass: false, Issues: []string{"TOO_SHORT", "PLACEHOLDER"}},
		{Score01: 0.5, Pass: false, Issues: []string{"PLACEHOLDER"}},
		{Score01: 0.7, Pass: true, Issues: []string{"TOO_SHORT", "PLACEHOLDER"}},
	}
	r := quality.NewRunReport("title_fight", rows)
	if r.Summary.Total != 4 || r.Summary.Passed != 2 || r.Summary.PassRate != 50 {
		t.Errorf("unexpected summary %+v", r.Summary)
	}
	if math.Abs(r.Summary.AvgScore-0.6) > 1e-9 {
		t.Errorf("avgScore = %v", r.Summary.AvgScore)
	}
	if got := quality.FormatTop(r.Summary.TopIssues.Top(0)); got != "PLACEHOLDER×3, TOO_SHORT×2" {
		t.Errorf("topIssues = %q", got)
	}

	empty := quality.NewRunReport("x", nil)
	if empty.Summary.PassRate != 0 || empty.Summary.AvgScore != 0 {
		t.Errorf("empty report must be zero, got %+v", empty.Summary)
	}
}

func TestSweep_IsReproducible(t *testing.T) {
	f := &corpus.Family{Name: string(corpus.HotSeatImposter)}
	for i := 0; i < 30; i++ {
		f.Cards = append(f.Cards, corpus.Card{Index: i, Text: "Who here has the most suspicious browser history?"})
	}
	e := quality.NewEvaluator(nil)
	a, err := e.Sweep(f, 7, 12)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	b, _ := e.Sweep(f, 7, 12)
	if diff := cmp.Diff(a.Rows, b.Rows); diff != "" {
		t.Errorf("sweeps with the same seed differ:\n%s", diff)
	}
	if a.Seed != "7" || a.Count != "12" || len(a.Rows) != 12 {
		t.Errorf("unexpected sweep header seed=%s count=%s rows=%d", a.Seed, a.Count, len(a.Rows))
	}

	if _, err := e.Sweep(&corpus.Family{Name: "empty"}, 1, 5); err != quality.ErrEmptyFamily {
		t.Errorf("expected ErrEmptyFamily, got %v", err)
	}
}

func TestFileNames(t *testing.T) {
	name := quality.FileName("red_flag_rally", 12345, 80)
	if name != "quality_red_flag_rally_12345_80.json" {
		t.Fatalf("FileName = %q", name)
	}
	family, seed, count, ok := quality.ParseFileName("/tmp/reports/" + name)
	if !ok || family != "red_flag_rally" || seed != "12345" || count != "80" {
		t.Errorf("ParseFileName = %q %q %q %v", family, seed, count, ok)
	}
	if _, _, _, ok := quality.ParseFileName("quality_x_1.json"); ok {
		t.Error("too few segments must not parse")
	}
}

func TestDecodeRunReport(t *testing.T) {
	doc := `{
	  "summary": {"total": 2, "passed": 1, "passRate": 50.0, "topIssues": {"TOO_LONG": 1}, "avgScore": 0.55},
	  "rows": [
	    {"game": "over_under", "i": 0, "text": "x", "score01": 0.5, "pass": false, "issues": ["TOO_LONG"],
	     "metrics": {"aiHumor": "0.7", "aiSense": null, "aiUnderstandable": 0.9}}
	  ]
	}`
	r, err := quality.DecodeRunReport("quality_over_under_5_2.json", []byte(doc))
	if err != nil {
		t.Fatalf("DecodeRunReport: %v", err)
	}
	if r.Family() != "over_under" || r.Seed != "5" || r.Count != "2" {
		t.Errorf("header = %s %s %s", r.Family(), r.Seed, r.Count)
	}
	judge := r.Rows[0].Metrics.Judge()
	if judge.Humor == nil || *judge.Humor != 0.7 {
		t.Errorf("aiHumor = %v", judge.Humor)
	}
	if judge.Sense != nil {
		t.Error("null aiSense is absent")
	}
	if judge.Understandable == nil || *judge.Understandable != 0.9 {
		t.Errorf("aiUnderstandable = %v", judge.Understandable)
	}

	if _, err := quality.DecodeRunReport("notes.json", []byte(`{"summary": {}}`)); err == nil {
		t.Error("expected error without a family")
	}
}

func TestProfilesValidate(t *testing.T) {
	p := quality.DefaultProfiles()
	if err := p.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	broken := p.Clone()
	prof := broken.For("roast_consensus")
	prof.MinWords, prof.MaxWords = 20, 5
	broken.Set("roast_consensus", prof)
	if err := broken.Validate(); err == nil {
		t.Fatal("expected max_words < min_words to fail")
	}
}
