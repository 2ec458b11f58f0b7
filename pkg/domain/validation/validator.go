package validation

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
)

// Pass is one independent check over a corpus. Check must not mutate the
// corpus and must not depend on any other pass.
type Pass interface {
	ID() string
	Name() string
	Check(c *corpus.Corpus) Result
}

// Options tunes the built-in passes.
type Options struct {
	MinCards         int             `yaml:"min_cards" validate:"gte=1"`
	MinLength        int             `yaml:"min_length" validate:"gte=1"`
	MaxLength        int             `yaml:"max_length" validate:"gtfield=MinLength"`
	HumorRatio       float64         `yaml:"humor_ratio" validate:"gte=0,lte=1"`
	ConformanceRatio float64         `yaml:"conformance_ratio" validate:"gte=0,lte=1"`
	Required         []corpus.KindID `yaml:"required,omitempty"`
	Blocklist        []string        `yaml:"blocklist,omitempty"`
	HumorIndicators  []string        `yaml:"humor_indicators,omitempty"`
}

// DefaultBlocklist is the high-severity term filter. It applies regardless of
// a card's spice level.
var DefaultBlocklist = []string{
	"rape", "nazi", "hitler", "genocide",
	"child abuse", "pedophile", "terrorist", "suicide bomber",
}

// DefaultHumorIndicators are phrases that signal a playable prompt.
var DefaultHumorIndicators = []string{
	"who would", "most likely", "confess", "would you rather",
	"smash or pass", "predict", "category", "number of",
}

// DefaultOptions returns the production thresholds.
func DefaultOptions() Options {
	return Options{
		MinCards:         50,
		MinLength:        10,
		MaxLength:        300,
		HumorRatio:       0.3,
		ConformanceRatio: 0.8,
		Required:         corpus.CanonicalIDs(),
		Blocklist:        DefaultBlocklist,
		HumorIndicators:  DefaultHumorIndicators,
	}
}

// Validator runs a fixed, ordered set of passes.
type Validator struct {
	passes  []Pass
	workers int
	now     func() time.Time
}

// New creates a Validator over the given passes.
func New(passes ...Pass) *Validator {
	return &Validator{passes: passes, workers: len(passes), now: time.Now}
}

// WithWorkers bounds how many passes run at once.
func (v *Validator) WithWorkers(n int) *Validator {
	if n > 0 {
		v.workers = n
	}
	return v
}

// Passes returns the configured passes in order.
func (v *Validator) Passes() []Pass {
	out := make([]Pass, len(v.passes))
	copy(out, v.passes)
	return out
}

// Validate runs every pass against c. Passes run concurrently but their
// findings are merged in pass order, so the report is deterministic.
func (v *Validator) Validate(c *corpus.Corpus) *Report {
	results := make([]Result, len(v.passes))

	var g errgroup.Group
	if v.workers > 0 {
		g.SetLimit(v.workers)
	}
	for i, p := range v.passes {
		g.Go(func() error {
			results[i] = p.Check(c)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{
		ID:        uuid.NewString(),
		Source:    c.Source,
		Families:  len(c.Families),
		Cards:     c.TotalCards(),
		CreatedAt: v.now().UTC(),
	}
	for i, p := range v.passes {
		report.Passes = append(report.Passes, PassOutcome{
			ID:       p.ID(),
			Name:     p.Name(),
			Issues:   len(results[i].Issues),
			Warnings: len(results[i].Warnings),
		})
		report.Result.Merge(results[i])
	}
	return report
}
