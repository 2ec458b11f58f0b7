package corpus

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ntoledo319/HELLDECK/internal/jsonorder"
)

// Card field names as they appear in corpus documents.
const (
	FieldText           = "text"
	FieldPerk           = "perk"
	FieldRedFlag        = "red_flag"
	FieldForbiddenWords = "forbidden_words"
	FieldHiddenWords    = "hidden_words"
	FieldCategory       = "category"
	FieldLetter         = "letter"
	FieldQualityScore   = "quality_score"
	FieldSpice          = "spice"
	FieldHumorScore     = "humor_score"
	FieldMetrics        = "metrics"
)

// MaxQualityScore is the only quality_score a curated card may carry.
const MaxQualityScore = 10

// JudgeMetrics holds optional external judge scores, each in [0,1].
type JudgeMetrics struct {
	Humor          *float64 `json:"aiHumor,omitempty"`
	Sense          *float64 `json:"aiSense,omitempty"`
	Understandable *float64 `json:"aiUnderstandable,omitempty"`
}

// Empty reports whether no judge score is present.
func (m JudgeMetrics) Empty() bool {
	return m.Humor == nil && m.Sense == nil && m.Understandable == nil
}

// UnmarshalJSON accepts each score as a number or a numeric string; empty
// strings and nulls leave the score absent.
func (m *JudgeMetrics) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = JudgeMetrics{}
	for key, dst := range map[string]**float64{
		"aiHumor":          &m.Humor,
		"aiSense":          &m.Sense,
		"aiUnderstandable": &m.Understandable,
	} {
		v, ok := raw[key]
		if !ok || jsonorder.IsNull(v) {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			*dst = &f
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = &f
	}
	return nil
}

// Card is one content item of a family. Decoding never fails on a missing or
// mistyped field; gaps are recorded so the structural pass can report them.
type Card struct {
	Index          int
	Text           string
	Perk           string
	RedFlag        string
	ForbiddenWords []string
	HiddenWords    []string
	Category       string
	Letter         string
	QualityScore   float64
	Spice          int
	HumorScore     *float64
	Metrics        JudgeMetrics

	present   map[string]bool
	malformed []string
}

// Has reports whether the card carried a non-null value for field.
func (c *Card) Has(field string) bool {
	return c.present[field]
}

// MarkPresent records fields as carried by the card. Decoding does this itself;
// it exists for cards assembled in code.
func (c *Card) MarkPresent(fields ...string) {
	if c.present == nil {
		c.present = make(map[string]bool, len(fields))
	}
	for _, f := range fields {
		c.present[f] = true
	}
}

// Malformed lists fields that were present but had the wrong JSON type.
func (c *Card) Malformed() []string {
	return c.malformed
}

func (c *Card) UnmarshalJSON(data []byte) error {
	members, err := jsonorder.Members(data)
	if err != nil {
		return fmt.Errorf("card is not an object: %w", err)
	}

	*c = Card{Index: c.Index}
	for _, m := range members {
		if jsonorder.IsNull(m.Value) {
			continue
		}
		target := c.fieldTarget(m.Key)
		if target == nil {
			continue
		}
		c.MarkPresent(m.Key)
		if err := json.Unmarshal(m.Value, target); err != nil {
			c.malformed = append(c.malformed, m.Key)
		}
	}
	return nil
}

func (c *Card) fieldTarget(field string) any {
	switch field {
	case FieldText:
		return &c.Text
	case FieldPerk:
		return &c.Perk
	case FieldRedFlag:
		return &c.RedFlag
	case FieldForbiddenWords:
		return &c.ForbiddenWords
	case FieldHiddenWords:
		return &c.HiddenWords
	case FieldCategory:
		return &c.Category
	case FieldLetter:
		return &c.Letter
	case FieldQualityScore:
		return &c.QualityScore
	case FieldSpice:
		return &c.Spice
	case FieldHumorScore:
		return &c.HumorScore
	case FieldMetrics:
		return &c.Metrics
	default:
		return nil
	}
}
