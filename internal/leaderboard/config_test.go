package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podium-ml/podium/infrastructure/store"
	"github.com/podium-ml/podium/internal/domain"
)

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config passes",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty project fails",
			mutate:  func(c *Config) { c.Project = "" },
			wantErr: true,
		},
		{
			name:    "zero score concurrency is allowed and means default",
			mutate:  func(c *Config) { c.ScoreConcurrency = 0 },
			wantErr: false,
		},
		{
			name:    "excessive score concurrency fails",
			mutate:  func(c *Config) { c.ScoreConcurrency = 1000 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := irisConfig()
			tt.mutate(&cfg)
			err := validate.Struct(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_OverrideMetric(t *testing.T) {
	cfg := irisConfig()
	_, ok := cfg.overrideMetric()
	assert.False(t, ok)

	cfg.Metric = "rmse"
	cfg.SortDescending = false
	m, ok := cfg.overrideMetric()
	assert.True(t, ok)
	assert.Equal(t, domain.Metric{Name: "rmse", Descending: false}, m)
}

func TestNewEngineFromConfig(t *testing.T) {
	deps := Dependencies{
		Store:    store.NewMemoryStore(),
		Scorer:   newFakeScorer(),
		Registry: newFakeRegistry(),
	}

	engine, err := NewEngineFromConfig(map[string]any{
		"project": "titanic",
		"dataset": "titanic_valid",
		"metric":  "auc",
	}, deps)
	require.NoError(t, err)
	assert.Equal(t, "titanic", engine.Project())
	assert.Equal(t, domain.RecordKey("titanic"), engine.Key())
	assert.Equal(t, domain.DatasetRef("titanic_valid"), engine.Dataset())

	// Defaults survive a partial map.
	assert.Equal(t, 4, engine.cfg.ScoreConcurrency)

	_, err = NewEngineFromConfig(map[string]any{"dataset": "x"}, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
