package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emitrack/emitrack/internal/store"
)

// FileName is the config file at the root of a data directory.
const FileName = "emitrack.yaml"

// Store backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// DefaultBatchLimit keeps generated batches a little under the store's hard cap.
const DefaultBatchLimit = 490

// Config represents the top-level emitrack.yaml configuration.
type Config struct {
	Owner    string       `yaml:"owner"`
	Currency string       `yaml:"currency"`
	Store    StoreConfig  `yaml:"store"`
	Batch    BatchConfig  `yaml:"batch"`
	Log      LogConfig    `yaml:"log"`
	Import   ImportConfig `yaml:"import"`
	Git      GitConfig    `yaml:"git"`
}

// StoreConfig selects where records live.
type StoreConfig struct {
	Backend string `yaml:"backend"` // csv or sqlite
	Path    string `yaml:"path"`    // relative to the data directory
}

// BatchConfig bounds atomic writes.
type BatchConfig struct {
	Limit int `yaml:"limit"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ImportConfig maps spreadsheet columns to installment fields.
type ImportConfig struct {
	DateColumn      string `yaml:"date_column,omitempty"`
	AmountColumn    string `yaml:"amount_column,omitempty"`
	PrincipalColumn string `yaml:"principal_column,omitempty"`
	InterestColumn  string `yaml:"interest_column,omitempty"`
	BalanceColumn   string `yaml:"balance_column,omitempty"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads an emitrack.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default(owner string) *Config {
	return &Config{
		Owner:    owner,
		Currency: "INR",
		Store: StoreConfig{
			Backend: BackendCSV,
			Path:    "records",
		},
		Batch: BatchConfig{Limit: DefaultBatchLimit},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "emitrack",
			AuthorEmail: "emitrack@localhost",
		},
	}
}

// fillDefaults sets the fields an older or hand-written file may omit.
func (c *Config) fillDefaults() {
	d := Default(c.Owner)
	if c.Currency == "" {
		c.Currency = d.Currency
	}
	if c.Store.Backend == "" {
		c.Store.Backend = d.Store.Backend
	}
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	if c.Batch.Limit == 0 {
		c.Batch.Limit = d.Batch.Limit
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Log.Output == "" {
		c.Log.Output = d.Log.Output
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendCSV, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	if c.Batch.Limit < 1 || c.Batch.Limit > store.MaxBatch {
		errs = append(errs, fmt.Errorf("batch.limit: %d is outside 1..%d", c.Batch.Limit, store.MaxBatch))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if len(c.Currency) != 3 {
		errs = append(errs, fmt.Errorf("currency: %q is not an ISO 4217 code", c.Currency))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
