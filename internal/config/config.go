package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Database        DatabaseConfig        `yaml:"database"`
	Generation      GenerationConfig      `yaml:"generation"`
	Estimator       EstimatorConfig       `yaml:"estimator"`
	Auth            AuthConfig            `yaml:"auth"`
	Worker          WorkerConfig          `yaml:"worker"`
	SnapshotStorage SnapshotStorageConfig `yaml:"snapshot_storage"`
	Log             LogConfig             `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	SnapshotDir string `yaml:"snapshot_dir"`
}

// GenerationConfig contains external projection generation settings.
// Generation runs locally whenever the external path is disabled or unkeyed.
type GenerationConfig struct {
	APIKey      string   `yaml:"-"`        // env-only, never in YAML
	BaseURL     string   `yaml:"base_url"` // empty means the provider default
	Enabled     bool     `yaml:"enabled"`
	Model       string   `yaml:"model"`
	Timeout     Duration `yaml:"timeout"`
	Temperature float64  `yaml:"temperature"`
	MaxTokens   int64    `yaml:"max_tokens"`
}

// Mode returns the active generation mode: "openai" when the external path
// is enabled and keyed, "local" otherwise.
func (g GenerationConfig) Mode() string {
	if g.Enabled && g.APIKey != "" {
		return "openai"
	}
	return "local"
}

// EstimatorConfig contains the baseline coefficients for the local estimator.
// Per-acre values are annual USD for year one before category adjustments.
type EstimatorConfig struct {
	AgRevenuePerAcre  float64 `yaml:"ag_revenue_per_acre"`
	EcoRevenuePerAcre float64 `yaml:"eco_revenue_per_acre"`
	SubsidyPerAcre    float64 `yaml:"subsidy_per_acre"`
	CostPerAcre       float64 `yaml:"cost_per_acre"`
	RevenueGrowth     float64 `yaml:"revenue_growth"`
	EcoGrowth         float64 `yaml:"eco_growth"`
	CostTrend         float64 `yaml:"cost_trend"`
	EcoStartYear      int     `yaml:"eco_start_year"`
	SubsidyFullYears  int     `yaml:"subsidy_full_years"`
	SubsidyTailFactor float64 `yaml:"subsidy_tail_factor"`
}

// AuthConfig contains authentication settings for the admin surface.
type AuthConfig struct {
	AdminAPIKey string `yaml:"-"` // env-only, never in YAML
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	SweepInterval     Duration `yaml:"sweep_interval"`
	ProcessingTimeout Duration `yaml:"processing_timeout"`
	SnapshotInterval  Duration `yaml:"snapshot_interval"`
}

// SnapshotStorageConfig contains S3-compatible storage settings for
// database snapshots. An empty bucket disables uploads entirely.
type SnapshotStorageConfig struct {
	Endpoint  string   `yaml:"endpoint"`
	Bucket    string   `yaml:"bucket"`
	Region    string   `yaml:"region"`
	AccessKey string   `yaml:"-"` // env-only, never in YAML
	SecretKey string   `yaml:"-"` // env-only, never in YAML
	UseSSL    *bool    `yaml:"use_ssl"`
	URLExpiry Duration `yaml:"url_expiry"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	// Determine config path
	configPath := getEnv("LOAM_CONFIG_PATH", "config/loam.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	// Load YAML file (file must exist for this function)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadToolConfig loads configuration for offline CLI commands. Same
// precedence as Load, but admin-key validation is skipped: the commands
// talk to the database directly and never serve HTTP.
func LoadToolConfig() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("LOAM_CONFIG_PATH", "config/loam.yaml")
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			ReadTimeout: Duration(30 * time.Second),
			// Generation runs synchronously inside the trigger request, so the
			// write timeout must comfortably exceed generation.timeout.
			WriteTimeout:    Duration(90 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path:        "data/loam.db",
			SnapshotDir: "data/snapshots",
		},
		Generation: GenerationConfig{
			Enabled:     true,
			Model:       "gpt-4o-mini",
			Timeout:     Duration(30 * time.Second),
			Temperature: 0.7,
			MaxTokens:   3000,
		},
		Estimator: EstimatorConfig{
			AgRevenuePerAcre:  450,
			EcoRevenuePerAcre: 55,
			SubsidyPerAcre:    25,
			CostPerAcre:       320,
			RevenueGrowth:     1.08,
			EcoGrowth:         1.15,
			CostTrend:         0.98,
			EcoStartYear:      3,
			SubsidyFullYears:  5,
			SubsidyTailFactor: 0.5,
		},
		Worker: WorkerConfig{
			SweepInterval:     Duration(1 * time.Minute),
			ProcessingTimeout: Duration(10 * time.Minute),
			SnapshotInterval:  Duration(1 * time.Hour),
		},
		SnapshotStorage: SnapshotStorageConfig{
			Region:    "us-east-1",
			UseSSL:    boolPtr(true),
			URLExpiry: Duration(15 * time.Minute),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing file is OK; use defaults
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("LOAM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOAM_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("LOAM_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("LOAM_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Database
	if v := os.Getenv("LOAM_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Generation (OPENAI_API_KEY and OPENAI_BASE_URL are industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Generation.BaseURL = v
	}
	if v := os.Getenv("LOAM_GENERATION_ENABLED"); v != "" {
		cfg.Generation.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("LOAM_GENERATION_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("LOAM_GENERATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Generation.Timeout = Duration(d)
		}
	}

	// Auth
	if v := os.Getenv("LOAM_ADMIN_API_KEY"); v != "" {
		cfg.Auth.AdminAPIKey = v
	}

	// Worker
	if v := os.Getenv("LOAM_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Worker.SweepInterval = Duration(d)
		}
	}
	if v := os.Getenv("LOAM_PROCESSING_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Worker.ProcessingTimeout = Duration(d)
		}
	}
	if v := os.Getenv("LOAM_SNAPSHOT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Worker.SnapshotInterval = Duration(d)
		}
	}

	// Snapshot storage
	if v := os.Getenv("LOAM_SNAPSHOT_DIR"); v != "" {
		cfg.Database.SnapshotDir = v
	}
	if v := os.Getenv("LOAM_SNAPSHOT_BUCKET"); v != "" {
		cfg.SnapshotStorage.Bucket = v
	}
	if v := os.Getenv("LOAM_S3_ENDPOINT"); v != "" {
		cfg.SnapshotStorage.Endpoint = v
	}
	if v := os.Getenv("LOAM_S3_REGION"); v != "" {
		cfg.SnapshotStorage.Region = v
	}
	if v := os.Getenv("LOAM_S3_ACCESS_KEY"); v != "" {
		cfg.SnapshotStorage.AccessKey = v
	}
	if v := os.Getenv("LOAM_S3_SECRET_KEY"); v != "" {
		cfg.SnapshotStorage.SecretKey = v
	}
	if v := os.Getenv("LOAM_S3_USE_SSL"); v != "" {
		ssl := v == "true" || v == "1"
		cfg.SnapshotStorage.UseSSL = &ssl
	}
	if v := os.Getenv("LOAM_S3_URL_EXPIRY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SnapshotStorage.URLExpiry = Duration(d)
		}
	}

	// Log
	if v := os.Getenv("LOAM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOAM_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// validate checks that required configuration values are set.
// In dev mode (LOAM_DEV_MODE=true), admin key validation is skipped.
// A missing OPENAI_API_KEY is never an error: generation falls back to the
// local estimator.
func (c *Config) validate() error {
	if err := c.Estimator.validate(); err != nil {
		return err
	}

	// Dev mode bypasses admin key validation
	if os.Getenv("LOAM_DEV_MODE") == "true" {
		return nil
	}

	if c.Auth.AdminAPIKey == "" {
		return errors.New("LOAM_ADMIN_API_KEY is required")
	}
	return nil
}

// validate checks the estimator coefficients for values the formula
// cannot produce a valid projection from.
func (e EstimatorConfig) validate() error {
	if e.AgRevenuePerAcre < 0 || e.EcoRevenuePerAcre < 0 || e.SubsidyPerAcre < 0 || e.CostPerAcre < 0 {
		return errors.New("estimator per-acre coefficients must be non-negative")
	}
	if e.RevenueGrowth <= 0 || e.EcoGrowth <= 0 || e.CostTrend <= 0 {
		return errors.New("estimator growth factors must be positive")
	}
	if e.EcoStartYear < 1 || e.EcoStartYear > 10 {
		return errors.New("estimator eco_start_year must be within the 10-year horizon")
	}
	if e.SubsidyFullYears < 0 || e.SubsidyFullYears > 10 {
		return errors.New("estimator subsidy_full_years must be within the 10-year horizon")
	}
	if e.SubsidyTailFactor < 0 {
		return errors.New("estimator subsidy_tail_factor must be non-negative")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func boolPtr(b bool) *bool {
	return &b
}
