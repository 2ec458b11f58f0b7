package passes

import (
	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
)

// KindLowConformance marks a family whose cards mostly miss its pattern.
const KindLowConformance = "low_conformance"

// Pattern measures how many cards of each family satisfy the family predicate.
type Pattern struct {
	Opts validation.Options
}

func (p *Pattern) ID() string   { return PatternID }
func (p *Pattern) Name() string { return "Pattern conformance" }

func (p *Pattern) Check(c *corpus.Corpus) validation.Result {
	var r validation.Result
	for _, f := range c.Families {
		if len(f.Cards) == 0 {
			continue
		}
		kind := f.Kind()
		ok := 0
		for i := range f.Cards {
			if kind.Conforms(&f.Cards[i]) {
				ok++
			}
		}
		if got := ratio(ok, len(f.Cards)); got < p.Opts.ConformanceRatio {
			r.Warn(PatternID, KindLowConformance, f.Name, validation.FamilyLevel,
				"only %.0f%% of cards follow the expected pattern (%s)", got*100, kind.Pattern)
		}
	}
	return r
}
