package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1000, cfg.ChunkRows)
	assert.Equal(t, 100, cfg.CountCheckRows)
	assert.Equal(t, []string{"assay", "disease", "organism", "tissue"}, cfg.RequiredObsColumns)
	assert.Equal(t, []string{"title"}, cfg.RequiredUnsKeys)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
chunk_rows: 500
count_check_rows: 50
organism: "Mus musculus"
disabled_rules:
  - empty-rows
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.ChunkRows)
	assert.Equal(t, 50, cfg.CountCheckRows)
	assert.Equal(t, "Mus musculus", cfg.Organism)
	assert.Equal(t, []string{"empty-rows"}, cfg.DisabledRules)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Unset keys keep their defaults.
	assert.Equal(t, []string{"assay", "disease", "organism", "tissue"}, cfg.RequiredObsColumns)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "chunk_rows: [not a number")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errFor string
	}{
		{
			name:   "negative chunk rows",
			mutate: func(c *Config) { c.ChunkRows = -1 },
			errFor: "chunk_rows",
		},
		{
			name:   "zero count check rows",
			mutate: func(c *Config) { c.CountCheckRows = 0 },
			errFor: "count_check_rows",
		},
		{
			name:   "unknown organism",
			mutate: func(c *Config) { c.Organism = "Danio rerio" },
			errFor: "organism",
		},
		{
			name:   "unknown disabled rule",
			mutate: func(c *Config) { c.DisabledRules = []string{"no-such-rule"} },
			errFor: "disabled_rules",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.LogLevel = "loud" },
			errFor: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errFor)
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.ChunkRows = 250
	cfg.Organism = "Homo sapiens"
	cfg.DisabledRules = []string{"empty-columns"}

	opts := cfg.Options()
	assert.NotEmpty(t, opts)
}

func TestBuildLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"

	log, err := cfg.BuildLogger()
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}
