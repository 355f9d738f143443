package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "anubis/internal/errors"
	"anubis/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Plot      PlotConfig      `yaml:"plot" envconfig:"PLOT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=file console both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// IngestConfig controls how the input file is parsed
type IngestConfig struct {
	Delimiter      string        `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
	ReportEvery    int           `yaml:"report_every" envconfig:"REPORT_EVERY" validate:"gte=1"`
	ReportInterval time.Duration `yaml:"report_interval" envconfig:"REPORT_INTERVAL" validate:"gte=0"`
	ErrorPolicy    string        `yaml:"error_policy" envconfig:"ERROR_POLICY" validate:"oneof=skip fail"`
	MaxSkipped     int           `yaml:"max_skipped" envconfig:"MAX_SKIPPED" validate:"gte=0"`
	UpperLimit     *float64      `yaml:"upper_limit" envconfig:"UPPER_LIMIT"`
	LowerLimit     *float64      `yaml:"lower_limit" envconfig:"LOWER_LIMIT"`
}

// PlotConfig controls where and how the artifact is rendered
type PlotConfig struct {
	Output        string        `yaml:"output" envconfig:"OUTPUT" validate:"required"`
	Run           string        `yaml:"run" envconfig:"RUN"`
	ChromePath    string        `yaml:"chrome_path" envconfig:"CHROME_PATH"`
	RenderTimeout time.Duration `yaml:"render_timeout" envconfig:"RENDER_TIMEOUT" validate:"gt=0"`
}

// TelemetryConfig contains tracing, metrics and run record configuration
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	// ManifestFile receives a JSON record of the run, success or not
	ManifestFile string `yaml:"manifest_file" envconfig:"MANIFEST_FILE"`
}

// DelimiterRune returns the ingest delimiter as a rune
func (c IngestConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

// Policy returns the configured error policy
func (c IngestConfig) Policy() domain.ErrorPolicy {
	return domain.ErrorPolicy(c.ErrorPolicy)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "file",
			FilePath: DefaultLogFile,
		},
		Ingest: IngestConfig{
			Delimiter:   DefaultDelimiter,
			ReportEvery: DefaultReportEvery,
			ErrorPolicy: DefaultErrorPolicy,
		},
		Plot: PlotConfig{
			Output:        DefaultOutputPath,
			RenderTimeout: DefaultRenderTimeout,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or the first config file found in the usual locations when path is empty),
// then ANUBIS_* environment variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config file %s", path), err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks field constraints and the cross-field limit rule
func (c *Config) Validate() error {
	// Always JSON, same as the rest of the tooling
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	if c.Ingest.UpperLimit != nil && c.Ingest.LowerLimit != nil &&
		*c.Ingest.LowerLimit >= *c.Ingest.UpperLimit {
		return apperrors.NewConfigError(
			fmt.Sprintf("lower limit %g must be below upper limit %g", *c.Ingest.LowerLimit, *c.Ingest.UpperLimit), nil)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}
