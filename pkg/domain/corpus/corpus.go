// Package corpus models the loaded card collection, organized by family.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ntoledo319/HELLDECK/internal/jsonorder"
)

// Document-level field names.
const (
	FieldVersion     = "version"
	FieldDescription = "description"
	FieldGames       = "games"
	FieldGameName    = "game_name"
	FieldCards       = "cards"
	FieldFamily      = "family"
)

// Format identifies the on-disk shape a corpus was loaded from.
type Format string

const (
	// FormatDeck is a single document holding every family under "games".
	FormatDeck Format = "deck"
	// FormatFamilies is a directory with one document per family.
	FormatFamilies Format = "families"
)

// ErrCorpusNotFound indicates the corpus path does not exist.
var ErrCorpusNotFound = errors.New("corpus not found")

// LoadError is a fatal failure to read or parse a corpus. It is reported
// separately from content findings and aborts validation before any pass runs.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load corpus %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load corpus %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Family is a named group of cards sharing one shape contract.
type Family struct {
	Name     string
	GameName string
	Cards    []Card

	present map[string]bool
}

// Kind returns the shape contract for the family.
func (f *Family) Kind() Kind {
	return KindOf(f.Name)
}

// Has reports whether the family document carried field.
func (f *Family) Has(field string) bool {
	return f.present[field]
}

// MarkPresent records document fields as carried by the family.
func (f *Family) MarkPresent(fields ...string) {
	if f.present == nil {
		f.present = make(map[string]bool, len(fields))
	}
	for _, field := range fields {
		f.present[field] = true
	}
}

// Corpus is an in-memory snapshot of every family, in document order.
type Corpus struct {
	Source      string
	Format      Format
	Version     string
	Description string
	Families    []*Family

	present map[string]bool
}

// Has reports whether the deck document carried field.
func (c *Corpus) Has(field string) bool {
	return c.present[field]
}

// MarkPresent records deck document fields as carried.
func (c *Corpus) MarkPresent(fields ...string) {
	if c.present == nil {
		c.present = make(map[string]bool, len(fields))
	}
	for _, field := range fields {
		c.present[field] = true
	}
}

// Family returns the family with the given name.
func (c *Corpus) Family(name string) (*Family, bool) {
	for _, f := range c.Families {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// TotalCards counts cards across all families.
func (c *Corpus) TotalCards() int {
	n := 0
	for _, f := range c.Families {
		n += len(f.Cards)
	}
	return n
}

// ParseDeck parses a single deck document. It fails only on syntax errors or a
// missing/non-object "games" member; everything else is left for validation.
func ParseDeck(source string, data []byte) (*Corpus, error) {
	members, err := jsonorder.Members(data)
	if err != nil {
		return nil, &LoadError{Path: source, Reason: "malformed document", Err: err}
	}

	c := &Corpus{Source: source, Format: FormatDeck}
	var games json.RawMessage
	for _, m := range members {
		if jsonorder.IsNull(m.Value) {
			continue
		}
		switch m.Key {
		case FieldVersion:
			c.MarkPresent(FieldVersion)
			c.Version = scalarString(m.Value)
		case FieldDescription:
			c.MarkPresent(FieldDescription)
			c.Description = scalarString(m.Value)
		case FieldGames:
			games = m.Value
		}
	}
	if games == nil {
		return nil, &LoadError{Path: source, Reason: "missing required field 'games'"}
	}
	c.MarkPresent(FieldGames)

	gameMembers, err := jsonorder.Members(games)
	if err != nil {
		return nil, &LoadError{Path: source, Reason: "'games' must be an object", Err: err}
	}
	for _, gm := range gameMembers {
		f, err := parseFamily(gm.Key, gm.Value)
		if err != nil {
			return nil, &LoadError{Path: source, Reason: fmt.Sprintf("game %q", gm.Key), Err: err}
		}
		c.Families = append(c.Families, f)
	}
	return c, nil
}

// ParseFamilyDocument parses one family document of a families directory.
// The "family" member overrides fallbackName when present.
func ParseFamilyDocument(source, fallbackName string, data []byte) (*Family, error) {
	name := fallbackName
	members, err := jsonorder.Members(data)
	if err != nil {
		return nil, &LoadError{Path: source, Reason: "malformed document", Err: err}
	}
	for _, m := range members {
		if m.Key == FieldFamily && !jsonorder.IsNull(m.Value) {
			if s := scalarString(m.Value); s != "" {
				name = s
			}
		}
	}
	f, err := parseFamily(name, data)
	if err != nil {
		return nil, &LoadError{Path: source, Reason: "family document", Err: err}
	}
	if !f.Has(FieldCards) {
		return nil, &LoadError{Path: source, Reason: "missing required field 'cards'"}
	}
	return f, nil
}

func parseFamily(name string, data []byte) (*Family, error) {
	members, err := jsonorder.Members(data)
	if err != nil {
		return nil, err
	}
	f := &Family{Name: strings.TrimSpace(name)}
	for _, m := range members {
		if jsonorder.IsNull(m.Value) {
			continue
		}
		switch m.Key {
		case FieldGameName:
			f.MarkPresent(FieldGameName)
			f.GameName = scalarString(m.Value)
		case FieldCards:
			var cards []Card
			if err := json.Unmarshal(m.Value, &cards); err != nil {
				return nil, fmt.Errorf("'cards' must be an array of objects: %w", err)
			}
			for i := range cards {
				cards[i].Index = i
			}
			f.Cards = cards
			f.MarkPresent(FieldCards)
		}
	}
	return f, nil
}

func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
