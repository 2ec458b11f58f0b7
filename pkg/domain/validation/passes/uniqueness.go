package passes

import (
	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
)

// Uniqueness finding kinds.
const (
	KindDuplicate            = "duplicate"
	KindCrossFamilyDuplicate = "cross_family_duplicate"
)

// Uniqueness flags repeated card bodies. A repeat inside a family blocks; the
// same body in two families only warns.
type Uniqueness struct{}

func (p *Uniqueness) ID() string   { return UniquenessID }
func (p *Uniqueness) Name() string { return "Uniqueness" }

type firstSeen struct {
	family string
	index  int
}

func (p *Uniqueness) Check(c *corpus.Corpus) validation.Result {
	var r validation.Result
	global := make(map[string]firstSeen)
	crossReported := make(map[string]map[string]bool)

	for _, f := range c.Families {
		kind := f.Kind()
		local := make(map[string]int)
		reported := make(map[string]bool)

		for i := range f.Cards {
			card := &f.Cards[i]
			key := corpus.Normalize(kind.Body(card))
			if key == "" {
				continue
			}

			if first, dup := local[key]; dup {
				if !reported[key] {
					reported[key] = true
					r.Issue(UniquenessID, KindDuplicate, f.Name, card.Index,
						"duplicate of card %d: %s", first, truncate(key, 50))
				}
				continue
			}
			local[key] = card.Index

			seen, ok := global[key]
			if !ok {
				global[key] = firstSeen{family: f.Name, index: card.Index}
				continue
			}
			if seen.family == f.Name {
				continue
			}
			if crossReported[key] == nil {
				crossReported[key] = make(map[string]bool)
			}
			if !crossReported[key][f.Name] {
				crossReported[key][f.Name] = true
				r.Warn(UniquenessID, KindCrossFamilyDuplicate, f.Name, card.Index,
					"also appears in %s[%d]: %s", seen.family, seen.index, truncate(key, 50))
			}
		}
	}
	return r
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
