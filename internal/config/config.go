// Package config loads application configuration from environment
// variables, with an optional YAML file filling in anything the
// environment left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains request-protection configuration.
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/tariffscope.log"`
}

// PathsConfig locates the raw source files and the artifact directory.
// Source files resolve relative to DataDir unless absolute.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ArtifactsDir string `yaml:"artifacts_dir" envconfig:"ARTIFACTS_DIR" default:"artifacts"`

	TradeFile         string `yaml:"trade_file" envconfig:"TRADE_FILE" default:"bilateral_trade_deficits.csv"`
	ForexFile         string `yaml:"forex_file" envconfig:"FOREX_FILE" default:"forex_data.csv"`
	GSCPIFile         string `yaml:"gscpi_file" envconfig:"GSCPI_FILE" default:"gscpi_monthly.csv"`
	ManufacturingFile string `yaml:"manufacturing_file" envconfig:"MANUFACTURING_FILE" default:"manufacturing_data.csv"`
	UnemploymentFile  string `yaml:"unemployment_file" envconfig:"UNEMPLOYMENT_FILE" default:"unemployment.csv"`
	PoliticalRiskFile string `yaml:"political_risk_file" envconfig:"POLITICAL_RISK_FILE" default:"political_risk_data.csv"`
	TariffFile        string `yaml:"tariff_file" envconfig:"TARIFF_FILE" default:"tariff_actions.csv"`

	// TablesFile optionally overrides the built-in country alias and
	// sector keyword tables.
	TablesFile string `yaml:"tables_file" envconfig:"TABLES_FILE"`
}

// PipelineConfig carries the training policy knobs.
type PipelineConfig struct {
	HorizonDays   int `yaml:"horizon_days" envconfig:"HORIZON_DAYS" default:"90"`
	MinSupervised int `yaml:"min_supervised" envconfig:"MIN_SUPERVISED" default:"50"`
}

const envPrefix = "TARIFFSCOPE"

// Load reads configuration from the environment, then merges in the
// config file if one exists. Environment values take precedence.
func Load() (*Config, error) {
	return LoadFromFile(configFilePath())
}

// LoadFromFile is Load with an explicit config file location.
func LoadFromFile(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs overlays env config on file config, env winning wherever
// it set a non-zero value. envconfig applies struct defaults, so fields
// the environment never touched compare against their defaults instead.
func mergeConfigs(fileCfg, envCfg Config) Config {
	var defaults Config
	_ = envconfig.Process(envPrefix+"_UNUSED_DEFAULTS", &defaults)

	merged := envCfg
	overlayString(&merged.Logging.Level, fileCfg.Logging.Level, defaults.Logging.Level)
	overlayString(&merged.Logging.Output, fileCfg.Logging.Output, defaults.Logging.Output)
	overlayString(&merged.Logging.FilePath, fileCfg.Logging.FilePath, defaults.Logging.FilePath)

	overlayInt(&merged.Server.Port, fileCfg.Server.Port, defaults.Server.Port)
	overlayDuration(&merged.Server.ReadTimeout, fileCfg.Server.ReadTimeout, defaults.Server.ReadTimeout)
	overlayDuration(&merged.Server.WriteTimeout, fileCfg.Server.WriteTimeout, defaults.Server.WriteTimeout)
	overlayDuration(&merged.Server.IdleTimeout, fileCfg.Server.IdleTimeout, defaults.Server.IdleTimeout)
	overlayDuration(&merged.Server.ShutdownTimeout, fileCfg.Server.ShutdownTimeout, defaults.Server.ShutdownTimeout)

	overlayFloat(&merged.Security.RateLimit.RPS, fileCfg.Security.RateLimit.RPS, defaults.Security.RateLimit.RPS)
	overlayInt(&merged.Security.RateLimit.Burst, fileCfg.Security.RateLimit.Burst, defaults.Security.RateLimit.Burst)

	overlayString(&merged.Paths.DataDir, fileCfg.Paths.DataDir, defaults.Paths.DataDir)
	overlayString(&merged.Paths.ArtifactsDir, fileCfg.Paths.ArtifactsDir, defaults.Paths.ArtifactsDir)
	overlayString(&merged.Paths.TradeFile, fileCfg.Paths.TradeFile, defaults.Paths.TradeFile)
	overlayString(&merged.Paths.ForexFile, fileCfg.Paths.ForexFile, defaults.Paths.ForexFile)
	overlayString(&merged.Paths.GSCPIFile, fileCfg.Paths.GSCPIFile, defaults.Paths.GSCPIFile)
	overlayString(&merged.Paths.ManufacturingFile, fileCfg.Paths.ManufacturingFile, defaults.Paths.ManufacturingFile)
	overlayString(&merged.Paths.UnemploymentFile, fileCfg.Paths.UnemploymentFile, defaults.Paths.UnemploymentFile)
	overlayString(&merged.Paths.PoliticalRiskFile, fileCfg.Paths.PoliticalRiskFile, defaults.Paths.PoliticalRiskFile)
	overlayString(&merged.Paths.TariffFile, fileCfg.Paths.TariffFile, defaults.Paths.TariffFile)
	overlayString(&merged.Paths.TablesFile, fileCfg.Paths.TablesFile, defaults.Paths.TablesFile)

	overlayInt(&merged.Pipeline.HorizonDays, fileCfg.Pipeline.HorizonDays, defaults.Pipeline.HorizonDays)
	overlayInt(&merged.Pipeline.MinSupervised, fileCfg.Pipeline.MinSupervised, defaults.Pipeline.MinSupervised)

	return merged
}

func overlayString(dst *string, fileVal, def string) {
	if *dst == def && fileVal != "" {
		*dst = fileVal
	}
}

func overlayInt(dst *int, fileVal, def int) {
	if *dst == def && fileVal != 0 {
		*dst = fileVal
	}
}

func overlayFloat(dst *float64, fileVal, def float64) {
	if *dst == def && fileVal != 0 {
		*dst = fileVal
	}
}

func overlayDuration(dst *time.Duration, fileVal, def time.Duration) {
	if *dst == def && fileVal != 0 {
		*dst = fileVal
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Pipeline.HorizonDays <= 0 {
		return fmt.Errorf("horizon days must be positive, got %d", c.Pipeline.HorizonDays)
	}
	if c.Pipeline.MinSupervised < 1 {
		return fmt.Errorf("min supervised must be at least 1, got %d", c.Pipeline.MinSupervised)
	}
	return nil
}

// SourcePath resolves a source file name against the data directory.
func (c *Config) SourcePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.DataDir, name)
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
