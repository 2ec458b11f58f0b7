// Package calibration nudges per-family humor thresholds toward a target pass
// rate. The controller is bang-bang with a dead band and hard clamps.
package calibration

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// Dead band around the target. A family is only adjusted when its pass rate
// falls below Target-LowerBand or rises above Target+UpperBand.
const (
	LowerBand = 0.03
	UpperBand = 0.05
)

// Params configures the controller.
type Params struct {
	Target  float64 `yaml:"target" json:"target" validate:"gt=0,lte=1"`
	Step    float64 `yaml:"step" json:"step" validate:"gt=0,lte=0.5"`
	Floor   float64 `yaml:"floor" json:"floor" validate:"gte=0,lte=1"`
	Ceiling float64 `yaml:"ceiling" json:"ceiling" validate:"gtefield=Floor,lte=1"`
}

var paramsValidate = validator.New()

// Validate reports out-of-range controller parameters.
func (p Params) Validate() error {
	if err := paramsValidate.Struct(p); err != nil {
		return fmt.Errorf("invalid calibration params: %w", err)
	}
	return nil
}

// DefaultParams returns target 0.85, step 0.05, bounds [0.20, 0.60].
func DefaultParams() Params {
	return Params{Target: 0.85, Step: 0.05, Floor: quality.DefaultFloor, Ceiling: quality.DefaultCeiling}
}

// Direction is the outcome of one controller step.
type Direction string

const (
	Hold  Direction = "hold"
	Lower Direction = "lower"
	Raise Direction = "raise"
	// Skip marks a family with no pass-rate history or no threshold.
	Skip Direction = "skip"
)

// Decision is the controller output for one family.
type Decision struct {
	Family    string    `json:"family"`
	Direction Direction `json:"direction"`
	PassRate  *float64  `json:"pass_rate,omitempty"`
	Previous  float64   `json:"previous"`
	Next      float64   `json:"next"`
}

// Changed reports whether the threshold moves.
func (d Decision) Changed() bool {
	return math.Abs(d.Next-d.Previous) >= 1e-6
}

func (d Decision) String() string {
	switch d.Direction {
	case Skip:
		return fmt.Sprintf("%s: skipped (no data)", d.Family)
	case Hold:
		return fmt.Sprintf("%s: %.2f held (pass rate %.1f%%)", d.Family, d.Previous, *d.PassRate*100)
	}
	return fmt.Sprintf("%s: %.2f -> %.2f (%s, pass rate %.1f%%)", d.Family, d.Previous, d.Next, d.Direction, *d.PassRate*100)
}

// Calibrate computes the next threshold from the current one and the observed
// mean pass fraction. It is a pure function of its arguments. Lowering never
// raises a threshold that already sits below the floor.
func Calibrate(current, passRate float64, p Params) (float64, Direction) {
	switch {
	case passRate < p.Target-LowerBand:
		next := round(math.Min(current, math.Max(p.Floor, current-p.Step)))
		if math.Abs(next-current) < 1e-9 {
			return current, Hold
		}
		return next, Lower
	case passRate > p.Target+UpperBand:
		next := round(math.Min(p.Ceiling, current+p.Step))
		if math.Abs(next-current) < 1e-9 {
			return current, Hold
		}
		return next, Raise
	default:
		return current, Hold
	}
}

// round trims float noise so 0.30-0.05 is stored as 0.25.
func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Plan decides every profiled family. Profiles are not modified; Apply does
// that on a copy. Families without a threshold or without a pass rate are
// skipped. Per-profile floor and ceiling only tighten the global bounds.
func Plan(profiles *quality.Profiles, passRates map[string]float64, p Params) []Decision {
	var out []Decision
	for _, family := range profiles.Names() {
		prof, _ := profiles.Get(family)
		if !prof.Calibrated() {
			continue
		}
		current := *prof.MinHumor
		rate, ok := passRates[family]
		if !ok {
			out = append(out, Decision{Family: family, Direction: Skip, Previous: current, Next: current})
			continue
		}
		bounds := p
		if prof.Ceiling > 0 {
			bounds.Floor = math.Max(p.Floor, prof.Floor)
			bounds.Ceiling = math.Min(p.Ceiling, prof.Ceiling)
			// A profile floor above the global ceiling collapses onto it.
			bounds.Floor = math.Min(bounds.Floor, bounds.Ceiling)
		}
		next, dir := Calibrate(current, rate, bounds)
		out = append(out, Decision{Family: family, Direction: dir, PassRate: &rate, Previous: current, Next: next})
	}
	return out
}

// Apply returns a copy of profiles with every changed decision applied, and
// the changed decisions.
func Apply(profiles *quality.Profiles, decisions []Decision) (*quality.Profiles, []Decision) {
	out := profiles.Clone()
	var changed []Decision
	for _, d := range decisions {
		if !d.Changed() {
			continue
		}
		prof, ok := out.Get(d.Family)
		if !ok {
			continue
		}
		out.Set(d.Family, prof.WithMinHumor(d.Next))
		changed = append(changed, d)
	}
	return out, slices.Clip(changed)
}
