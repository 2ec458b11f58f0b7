package passes

import (
	"strings"

	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
)

// Tone finding kinds.
const (
	KindBlockedTerm    = "blocked_term"
	KindLowHumorSignal = "low_humor_signal"
)

// Tone applies the blocklist and the humor-indicator heuristic to card
// bodies. Word lists appended by rendering are not scanned.
type Tone struct {
	Opts validation.Options
}

func (p *Tone) ID() string   { return ToneID }
func (p *Tone) Name() string { return "Tone and safety" }

func (p *Tone) Check(c *corpus.Corpus) validation.Result {
	var r validation.Result
	for _, f := range c.Families {
		kind := f.Kind()
		humorous := 0
		for i := range f.Cards {
			card := &f.Cards[i]
			text := strings.ToLower(kind.Body(card))
			for _, term := range p.Opts.Blocklist {
				if strings.Contains(text, term) {
					r.Issue(ToneID, KindBlockedTerm, f.Name, card.Index, "contains blocked term %q", term)
				}
			}
			if containsAny(text, p.Opts.HumorIndicators) {
				humorous++
			}
		}
		if len(f.Cards) == 0 {
			continue
		}
		if got := ratio(humorous, len(f.Cards)); got < p.Opts.HumorRatio {
			r.Warn(ToneID, KindLowHumorSignal, f.Name, validation.FamilyLevel,
				"only %.0f%% of cards have humor indicators", got*100)
		}
	}
	return r
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
