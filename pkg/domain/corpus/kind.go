package corpus

import (
	"strings"
)

// KindID names a game family.
type KindID string

const (
	RoastConsensus    KindID = "roast_consensus"
	ConfessionOrCap   KindID = "confession_or_cap"
	PoisonPitch       KindID = "poison_pitch"
	FillInFinisher    KindID = "fill_in_finisher"
	RedFlagRally      KindID = "red_flag_rally"
	HotSeatImposter   KindID = "hot_seat_imposter"
	TextThreadTrap    KindID = "text_thread_trap"
	TabooTimer        KindID = "taboo_timer"
	TheUnifyingTheory KindID = "the_unifying_theory"
	TitleFight        KindID = "title_fight"
	AlibiDrop         KindID = "alibi_drop"
	RealityCheck      KindID = "reality_check"
	Scatterblast      KindID = "scatterblast"
	OverUnder         KindID = "over_under"
)

// Legacy families retired from the deck.
const (
	MajorityReport KindID = "majority_report"
	OddOneOut      KindID = "odd_one_out"
	HypeOrYike     KindID = "hype_or_yike"
)

// Rendering selects how a card's display text is composed.
type Rendering int

const (
	RenderPlain Rendering = iota
	// RenderPaired joins perk and red flag as "<perk> BUT <red_flag>".
	RenderPaired
	// RenderForbidden appends the forbidden word list.
	RenderForbidden
	// RenderHidden appends the hidden word list.
	RenderHidden
)

// Kind is the shape contract of one family: the fields every card must carry,
// how it renders, and the pattern a well-formed card satisfies.
type Kind struct {
	ID        KindID
	Required  []string
	Rendering Rendering
	// Lowercase marks families whose prompts are intentionally not capitalized.
	Lowercase bool
	// Pattern describes Conforms for reports.
	Pattern  string
	Conforms func(c *Card) bool
}

// Render composes the display text of a card.
func (k Kind) Render(c *Card) string {
	switch k.Rendering {
	case RenderPaired:
		return c.Perk + " BUT " + c.RedFlag
	case RenderForbidden:
		if len(c.ForbiddenWords) > 0 {
			return c.Text + " (forbidden: " + strings.Join(c.ForbiddenWords, ", ") + ")"
		}
		return c.Text
	case RenderHidden:
		if len(c.HiddenWords) > 0 {
			return c.Text + " (hidden: " + strings.Join(c.HiddenWords, ", ") + ")"
		}
		return c.Text
	default:
		return c.Text
	}
}

// Body is the card text without decorations, used for tone, pattern and
// uniqueness checks.
func (k Kind) Body(c *Card) string {
	if k.Rendering == RenderPaired {
		return c.Perk + " " + c.RedFlag
	}
	return c.Text
}

// Normalize folds a body for duplicate detection.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func textContains(needles ...string) func(c *Card) bool {
	return func(c *Card) bool {
		t := strings.ToLower(c.Text)
		for _, n := range needles {
			if strings.Contains(t, n) {
				return true
			}
		}
		return false
	}
}

func textContainsAll(needles ...string) func(c *Card) bool {
	return func(c *Card) bool {
		t := strings.ToLower(c.Text)
		for _, n := range needles {
			if !strings.Contains(t, n) {
				return false
			}
		}
		return true
	}
}

func hasFields(fields ...string) func(c *Card) bool {
	return func(c *Card) bool {
		for _, f := range fields {
			if !c.Has(f) {
				return false
			}
		}
		return true
	}
}

func nonEmptyText(c *Card) bool {
	return strings.TrimSpace(c.Text) != ""
}

func always(*Card) bool { return true }

var canonical = []Kind{
	{ID: RoastConsensus, Required: []string{FieldText}, Pattern: "names a target (who / most likely)", Conforms: textContains("who", "most likely")},
	{ID: ConfessionOrCap, Required: []string{FieldText}, Pattern: "asks for a confession", Conforms: textContains("confess", "have you")},
	{ID: PoisonPitch, Required: []string{FieldText}, Pattern: "offers a would-you-rather", Conforms: textContains("would you rather")},
	{ID: FillInFinisher, Required: []string{FieldText}, Pattern: "contains a blank", Conforms: func(c *Card) bool { return strings.Contains(c.Text, "_") }},
	{ID: RedFlagRally, Required: []string{FieldPerk, FieldRedFlag}, Rendering: RenderPaired, Pattern: "pairs a perk with a red flag", Conforms: hasFields(FieldPerk, FieldRedFlag)},
	{ID: HotSeatImposter, Required: []string{FieldText}, Pattern: "asks a question", Conforms: nonEmptyText},
	{ID: TextThreadTrap, Required: []string{FieldText}, Pattern: "sets up a text scenario", Conforms: nonEmptyText},
	{ID: TabooTimer, Required: []string{FieldText, FieldForbiddenWords}, Rendering: RenderForbidden, Lowercase: true, Pattern: "guess word with forbidden words", Conforms: hasFields(FieldText, FieldForbiddenWords)},
	{ID: TheUnifyingTheory, Required: []string{FieldText}, Pattern: "lists comma-joined items", Conforms: func(c *Card) bool { return strings.Contains(c.Text, ",") }},
	{ID: TitleFight, Required: []string{FieldText}, Pattern: "names a category", Conforms: func(c *Card) bool { return textContains("category")(c) || nonEmptyText(c) }},
	{ID: AlibiDrop, Required: []string{FieldText, FieldHiddenWords}, Rendering: RenderHidden, Pattern: "scenario with hidden words", Conforms: hasFields(FieldText, FieldHiddenWords)},
	{ID: RealityCheck, Required: []string{FieldText}, Pattern: "names a trait", Conforms: nonEmptyText},
	{ID: Scatterblast, Required: []string{FieldText}, Pattern: "names a category and a letter", Conforms: textContainsAll("category", "letter")},
	{ID: OverUnder, Required: []string{FieldText}, Pattern: "asks for a number", Conforms: func(c *Card) bool { return textContains("number", "how many")(c) || nonEmptyText(c) }},
}

var legacy = []KindID{MajorityReport, OddOneOut, HypeOrYike}

var kindsByID = func() map[KindID]Kind {
	m := make(map[KindID]Kind, len(canonical))
	for _, k := range canonical {
		m[k.ID] = k
	}
	return m
}()

// Canonical returns the current family kinds in deck order.
func Canonical() []Kind {
	out := make([]Kind, len(canonical))
	copy(out, canonical)
	return out
}

// CanonicalIDs returns the ids of the current family kinds in deck order.
func CanonicalIDs() []KindID {
	ids := make([]KindID, len(canonical))
	for i, k := range canonical {
		ids[i] = k.ID
	}
	return ids
}

// Lookup returns the canonical kind for a family name.
func Lookup(name string) (Kind, bool) {
	k, ok := kindsByID[KindID(strings.ToLower(name))]
	return k, ok
}

// KindOf returns the kind of a family, or a plain text kind with an always-true
// pattern for families outside the canonical set.
func KindOf(name string) Kind {
	if k, ok := Lookup(name); ok {
		return k
	}
	return Kind{ID: KindID(name), Required: []string{FieldText}, Pattern: "any text", Conforms: always}
}

// IsLegacy reports whether name is a retired family.
func IsLegacy(name string) bool {
	id := KindID(strings.ToLower(name))
	for _, l := range legacy {
		if l == id {
			return true
		}
	}
	return false
}
