// Package quality holds per-family acceptance profiles, per-card evaluation and
// the RunReport artifact produced by a sweep.
package quality

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
)

var profileValidate = validator.New()

// Threshold bounds every calibrated min_humor must stay within.
const (
	DefaultFloor   = 0.20
	DefaultCeiling = 0.60
)

// Profile is the acceptance contract for one family. MinHumor is the only
// field the calibrator touches; a nil MinHumor is never calibrated.
type Profile struct {
	MinWords         int      `yaml:"min_words" json:"min_words" validate:"gte=0"`
	MaxWords         int      `yaml:"max_words" json:"max_words" validate:"gtefield=MinWords"`
	MaxRepeatRatio   float64  `yaml:"max_repeat_ratio" json:"max_repeat_ratio" validate:"gt=0,lte=1"`
	MinHumor         *float64 `yaml:"min_humor,omitempty" json:"min_humor,omitempty" validate:"omitempty,gte=0,lte=1"`
	RequireOptions   bool     `yaml:"require_options,omitempty" json:"require_options,omitempty"`
	RequireContrast  bool     `yaml:"require_contrast,omitempty" json:"require_contrast,omitempty"`
	RequireTargeting bool     `yaml:"require_targeting,omitempty" json:"require_targeting,omitempty"`
	Floor            float64  `yaml:"floor" json:"floor" validate:"gte=0,lte=1"`
	Ceiling          float64  `yaml:"ceiling" json:"ceiling" validate:"gtefield=Floor,lte=1"`
}

// Calibrated reports whether the profile carries a humor threshold.
func (p Profile) Calibrated() bool {
	return p.MinHumor != nil
}

// WithMinHumor returns a copy of p with a new threshold.
func (p Profile) WithMinHumor(v float64) Profile {
	p.MinHumor = &v
	return p
}

func basic() Profile {
	return Profile{MinWords: 5, MaxWords: 28, MaxRepeatRatio: 0.4, Floor: DefaultFloor, Ceiling: DefaultCeiling}
}

func humor(v float64) *float64 { return &v }

// DefaultProfile is used for families without an explicit profile.
func DefaultProfile() Profile {
	return basic()
}

// DefaultProfiles returns the shipped per-family profiles.
func DefaultProfiles() *Profiles {
	p := func(minWords int, minHumor *float64, opts ...func(*Profile)) Profile {
		out := basic()
		out.MinWords = minWords
		out.MinHumor = minHumor
		for _, o := range opts {
			o(&out)
		}
		return out
	}
	options := func(p *Profile) { p.RequireOptions = true }
	contrast := func(p *Profile) { p.RequireContrast = true }
	targeting := func(p *Profile) { p.RequireTargeting = true }

	return &Profiles{
		Version: 1,
		Families: map[string]Profile{
			string(corpus.RoastConsensus):    p(6, humor(0.35), targeting),
			string(corpus.ConfessionOrCap):   p(5, humor(0.35)),
			string(corpus.PoisonPitch):       p(6, humor(0.30), options, contrast),
			string(corpus.FillInFinisher):    p(5, humor(0.35)),
			string(corpus.RedFlagRally):      p(6, humor(0.40), options, contrast),
			string(corpus.HotSeatImposter):   p(6, humor(0.35)),
			string(corpus.TextThreadTrap):    p(5, humor(0.35), options),
			string(corpus.TabooTimer):        p(3, nil, options),
			string(corpus.TitleFight):        p(5, humor(0.35)),
			string(corpus.AlibiDrop):         p(5, humor(0.35), options),
			string(corpus.Scatterblast):      p(3, nil, options),
			string(corpus.TheUnifyingTheory): p(5, humor(0.35)),
			string(corpus.RealityCheck):      p(5, humor(0.30)),
			string(corpus.OverUnder):         p(5, humor(0.30)),
		},
	}
}

// Profiles is the persisted profile store document.
type Profiles struct {
	Version   int                `yaml:"version" json:"version"`
	UpdatedAt time.Time          `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
	Families  map[string]Profile `yaml:"families" json:"families" validate:"dive"`
}

// For returns the profile of family, falling back to DefaultProfile.
func (p *Profiles) For(family string) Profile {
	if p != nil {
		if prof, ok := p.Families[family]; ok {
			return prof
		}
	}
	return DefaultProfile()
}

// Get returns the explicit profile of family.
func (p *Profiles) Get(family string) (Profile, bool) {
	if p == nil {
		return Profile{}, false
	}
	prof, ok := p.Families[family]
	return prof, ok
}

// Set stores prof for family.
func (p *Profiles) Set(family string, prof Profile) {
	if p.Families == nil {
		p.Families = make(map[string]Profile)
	}
	p.Families[family] = prof
}

// Names returns the profiled families in lexicographic order.
func (p *Profiles) Names() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Families))
	for name := range p.Families {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clone returns a deep copy, so a calibration can be staged without touching
// the loaded document.
func (p *Profiles) Clone() *Profiles {
	out := &Profiles{Version: p.Version, UpdatedAt: p.UpdatedAt, Families: make(map[string]Profile, len(p.Families))}
	for name, prof := range p.Families {
		if prof.MinHumor != nil {
			prof = prof.WithMinHumor(*prof.MinHumor)
		}
		out.Families[name] = prof
	}
	return out
}

// Validate checks every family profile against its field constraints.
func (p *Profiles) Validate() error {
	for _, name := range p.Names() {
		if err := profileValidate.Struct(p.Families[name]); err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
	}
	return nil
}
