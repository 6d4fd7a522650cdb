package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("priya")
	cfg.Store.Backend = BackendSQLite
	cfg.Import.DateColumn = "EMI Date"

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "priya", got.Owner)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, BackendSQLite, got.Store.Backend)
	assert.Equal(t, "records", got.Store.Path)
	assert.Equal(t, DefaultBatchLimit, got.Batch.Limit)
	assert.Equal(t, "EMI Date", got.Import.DateColumn)
	assert.Equal(t, cfg.Git, got.Git)
	assert.Equal(t, cfg.Log, got.Log)
}

func TestDefaults(t *testing.T) {
	cfg := Default("priya")

	assert.Equal(t, "priya", cfg.Owner)
	assert.Equal(t, BackendCSV, cfg.Store.Backend)
	assert.Equal(t, 490, cfg.Batch.Limit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.True(t, cfg.Git.AutoCommit)
	require.NoError(t, cfg.Validate())
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("owner: arjun\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "arjun", got.Owner)
	assert.Equal(t, BackendCSV, got.Store.Backend)
	assert.Equal(t, DefaultBatchLimit, got.Batch.Limit)
	assert.Equal(t, "console", got.Log.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "firestore" }, "store.backend"},
		{"limit too high", func(c *Config) { c.Batch.Limit = 501 }, "batch.limit"},
		{"limit negative", func(c *Config) { c.Batch.Limit = -1 }, "batch.limit"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"currency", func(c *Config) { c.Currency = "RUPEE" }, "currency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("o")
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("batch:\n  limit: 1000\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch.limit")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("priya")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "owner: priya")
	assert.Contains(t, contents, "backend: csv")
	assert.Contains(t, contents, "limit: 490")
	assert.Contains(t, contents, "auto_commit: true")
	assert.NotContains(t, contents, "date_column")
}
