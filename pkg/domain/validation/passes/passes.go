// Package passes holds the five built-in validation passes.
package passes

import (
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
)

// Pass IDs, in execution order.
const (
	StructureID  = "structure"
	ContentID    = "content"
	ToneID       = "tone"
	PatternID    = "pattern"
	UniquenessID = "uniqueness"
)

// Default returns the standard ordered pass set.
func Default(opts validation.Options) []validation.Pass {
	return []validation.Pass{
		&Structure{Opts: opts},
		&Content{Opts: opts},
		&Tone{Opts: opts},
		&Pattern{Opts: opts},
		&Uniqueness{},
	}
}

// NewValidator builds a validator with the default pass set.
func NewValidator(opts validation.Options) *validation.Validator {
	return validation.New(Default(opts)...)
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
