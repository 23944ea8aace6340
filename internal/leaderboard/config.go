package leaderboard

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/podium-ml/podium/internal/domain"
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// Config defines the engine configuration for one project leaderboard.
// Configuration is validated at engine creation and immutable afterwards,
// except for the evaluation dataset which may be switched between
// reports via Engine.SetDataset.
type Config struct {
	// Project identifies the logical project whose artifacts are ranked
	// together. It deterministically derives the shared-store key, so
	// every engine instance configured with the same project converges
	// on the same durable record.
	Project string `yaml:"project" json:"project" validate:"required,min=1,max=255"`

	// Dataset is the initial evaluation dataset reference. All
	// artifacts are scored against it; switching datasets later forces
	// a full rescore on the next report.
	Dataset string `yaml:"dataset" json:"dataset"`

	// Metric optionally overrides the category-based default sort
	// metric. When empty, the metric is derived lazily from the model
	// category of the first artifact ever reported.
	Metric string `yaml:"metric" json:"metric" validate:"omitempty,min=1,max=100"`

	// SortDescending pairs a direction with Metric and is only
	// meaningful when Metric is set: true means larger values rank
	// better.
	SortDescending bool `yaml:"sort_descending" json:"sort_descending"`

	// ScoreConcurrency bounds the number of concurrent scorer calls
	// issued by ad-hoc ranking queries. Persisted updates score
	// sequentially inside the atomic update regardless.
	ScoreConcurrency int `yaml:"score_concurrency" json:"score_concurrency" validate:"omitempty,min=1,max=64"`
}

// DefaultConfig returns a Config with production-ready defaults.
// The project must still be set by the caller.
func DefaultConfig() Config {
	return Config{ScoreConcurrency: 4}
}

// overrideMetric returns the explicitly configured sort metric, if any.
func (c Config) overrideMetric() (domain.Metric, bool) {
	if c.Metric == "" {
		return domain.Metric{}, false
	}
	return domain.Metric{Name: c.Metric, Descending: c.SortDescending}, true
}

// NewEngineFromConfig creates an Engine from a configuration map.
// This is the boundary adapter for YAML/JSON configuration.
func NewEngineFromConfig(config map[string]any, deps Dependencies) (*Engine, error) {
	// Use yaml marshaling for clean conversion.
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	// Start with defaults, then overlay user config.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return New(cfg, deps)
}
