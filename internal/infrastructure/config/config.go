// Package config loads the workspace configuration from .cardqa/config.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ntoledo319/HELLDECK/pkg/domain/calibration"
	"github.com/ntoledo319/HELLDECK/pkg/domain/summary"
	"github.com/ntoledo319/HELLDECK/pkg/domain/validation"
	"github.com/ntoledo319/HELLDECK/pkg/storage"
)

// Config is the serialized form of config.yaml. Every field is optional;
// omitted fields keep their defaults.
type Config struct {
	Corpus     string  `yaml:"corpus" validate:"required"`
	ReportsDir string  `yaml:"reports_dir,omitempty"`
	SummaryOut string  `yaml:"summary_out,omitempty"`
	JudgeOut   string  `yaml:"judge_out,omitempty"`
	Target     float64 `yaml:"target" validate:"gt=0,lte=1"`
	Step       float64 `yaml:"step" validate:"gt=0,lte=0.5"`
	Floor      float64 `yaml:"floor" validate:"gte=0,lte=1"`
	Ceiling    float64 `yaml:"ceiling" validate:"gtfield=Floor,lte=1"`
	MinCards   int     `yaml:"min_cards" validate:"gte=1"`
	TopK       int     `yaml:"top_k" validate:"gte=1"`
	IssueCap   int     `yaml:"issue_cap" validate:"gte=0"`
	WarningCap int     `yaml:"warning_cap" validate:"gte=0"`
	Workers    int     `yaml:"workers,omitempty" validate:"gte=0"`
}

var configValidate = validator.New()

// Default returns the built-in configuration.
func Default() *Config {
	p := calibration.DefaultParams()
	return &Config{
		Corpus:     filepath.Join("app", "src", "main", "assets", "gold_cards.json"),
		SummaryOut: filepath.Join("docs", "quality_summary.md"),
		JudgeOut:   filepath.Join("docs", "quality_ai_summary.md"),
		Target:     p.Target,
		Step:       p.Step,
		Floor:      p.Floor,
		Ceiling:    p.Ceiling,
		MinCards:   validation.DefaultOptions().MinCards,
		TopK:       summary.DefaultTopK,
		IssueCap:   10,
		WarningCap: 10,
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads config.yaml under root. A missing file yields Default().
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to config.yaml under root.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		return err
	}
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// CalibrationParams returns the controller parameters.
func (c *Config) CalibrationParams() calibration.Params {
	return calibration.Params{Target: c.Target, Step: c.Step, Floor: c.Floor, Ceiling: c.Ceiling}
}

// ValidationOptions returns the validator thresholds.
func (c *Config) ValidationOptions() validation.Options {
	opts := validation.DefaultOptions()
	opts.MinCards = c.MinCards
	return opts
}

// ReportsPath resolves the reports directory against root.
func (c *Config) ReportsPath(root string) string {
	if c.ReportsDir == "" {
		return storage.NewFilesystemRepository(root).DefaultReportsDir()
	}
	return resolve(root, c.ReportsDir)
}

// CorpusPath resolves the corpus path against root.
func (c *Config) CorpusPath(root string) string {
	return resolve(root, c.Corpus)
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
