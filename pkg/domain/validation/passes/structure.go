package passes

import (
	"math"

	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
)

// Structural finding kinds.
const (
	KindMissingVersion      = "missing_version"
	KindMissingDescription  = "missing_description"
	KindMissingFamily       = "missing_family"
	KindMissingGameName     = "missing_game_name"
	KindMissingCards        = "missing_cards"
	KindTooFewCards         = "too_few_cards"
	KindMissingField        = "missing_field"
	KindMalformedField      = "malformed_field"
	KindMissingQualityScore = "missing_quality_score"
	KindBadQualityScore     = "bad_quality_score"
	KindMissingSpice        = "missing_spice"
	KindLegacyFamily        = "legacy_family"
)

// Structure checks family presence, population and per-card shape contracts.
type Structure struct {
	Opts validation.Options
}

func (s *Structure) ID() string   { return StructureID }
func (s *Structure) Name() string { return "Structural validation" }

func (s *Structure) Check(c *corpus.Corpus) validation.Result {
	var r validation.Result

	if c.Format == corpus.FormatDeck {
		if !c.Has(corpus.FieldVersion) {
			r.Issue(StructureID, KindMissingVersion, "", validation.FamilyLevel, "missing required field: version")
		}
		if !c.Has(corpus.FieldDescription) {
			r.Issue(StructureID, KindMissingDescription, "", validation.FamilyLevel, "missing required field: description")
		}
	}

	for _, id := range s.Opts.Required {
		name := string(id)
		f, ok := c.Family(name)
		if !ok {
			r.Issue(StructureID, KindMissingFamily, name, validation.FamilyLevel, "required family missing")
			continue
		}
		if c.Format == corpus.FormatDeck && !f.Has(corpus.FieldGameName) {
			r.Issue(StructureID, KindMissingGameName, name, validation.FamilyLevel, "missing game_name")
		}
		if !f.Has(corpus.FieldCards) {
			r.Issue(StructureID, KindMissingCards, name, validation.FamilyLevel, "missing cards array")
			continue
		}
		if n := len(f.Cards); n < s.Opts.MinCards {
			r.Issue(StructureID, KindTooFewCards, name, validation.FamilyLevel,
				"only %d cards (need %d+)", n, s.Opts.MinCards)
		}
	}

	for _, f := range c.Families {
		kind, canonical := corpus.Lookup(f.Name)
		if !canonical {
			r.Issue(StructureID, KindLegacyFamily, f.Name, validation.FamilyLevel, "legacy family present: %s", f.Name)
			continue
		}
		for i := range f.Cards {
			checkCard(&r, f.Name, kind, &f.Cards[i])
		}
	}
	return r
}

func checkCard(r *validation.Result, family string, kind corpus.Kind, card *corpus.Card) {
	for _, field := range kind.Required {
		if !card.Has(field) {
			r.Issue(StructureID, KindMissingField, family, card.Index, "missing %s", field)
		}
	}
	malformed := make(map[string]bool, len(card.Malformed()))
	for _, field := range card.Malformed() {
		malformed[field] = true
		r.Issue(StructureID, KindMalformedField, family, card.Index, "%s has the wrong type", field)
	}

	switch {
	case !card.Has(corpus.FieldQualityScore):
		r.Issue(StructureID, KindMissingQualityScore, family, card.Index, "missing quality_score")
	case malformed[corpus.FieldQualityScore]:
	case math.Abs(card.QualityScore-corpus.MaxQualityScore) > 1e-9:
		r.Issue(StructureID, KindBadQualityScore, family, card.Index,
			"quality_score is %g (should be %d)", card.QualityScore, corpus.MaxQualityScore)
	}

	if !card.Has(corpus.FieldSpice) {
		r.Issue(StructureID, KindMissingSpice, family, card.Index, "missing spice")
	}
}
