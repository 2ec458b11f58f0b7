package passes

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
)

// Content finding kinds.
const (
	KindEmptyText      = "empty_text"
	KindTooShort       = "too_short"
	KindTooLong        = "too_long"
	KindNotCapitalized = "not_capitalized"
)

// Content checks the rendered text of each card for length and readability.
type Content struct {
	Opts validation.Options
}

func (p *Content) ID() string   { return ContentID }
func (p *Content) Name() string { return "Content quality" }

func (p *Content) Check(c *corpus.Corpus) validation.Result {
	var r validation.Result
	for _, f := range c.Families {
		kind := f.Kind()
		for i := range f.Cards {
			card := &f.Cards[i]
			if strings.TrimSpace(kind.Body(card)) == "" {
				r.Issue(ContentID, KindEmptyText, f.Name, card.Index, "empty text")
				continue
			}

			text := strings.TrimSpace(kind.Render(card))
			n := utf8.RuneCountInString(text)
			if n < p.Opts.MinLength {
				r.Issue(ContentID, KindTooShort, f.Name, card.Index, "text too short (%d chars)", n)
			}
			if n > p.Opts.MaxLength {
				r.Warn(ContentID, KindTooLong, f.Name, card.Index, "text very long (%d chars)", n)
			}
			if !kind.Lowercase {
				first, _ := utf8.DecodeRuneInString(text)
				if !unicode.IsUpper(first) {
					r.Warn(ContentID, KindNotCapitalized, f.Name, card.Index, "doesn't start with capital letter")
				}
			}
		}
	}
	return r
}
