package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "anubis/internal/errors"
	"anubis/pkg/contracts/domain"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "file", cfg.Logging.Output)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)

	assert.Equal(t, ",", cfg.Ingest.Delimiter)
	assert.Equal(t, ',', cfg.Ingest.DelimiterRune())
	assert.Equal(t, 50, cfg.Ingest.ReportEvery)
	assert.Equal(t, domain.ErrorPolicySkip, cfg.Ingest.Policy())
	assert.Nil(t, cfg.Ingest.UpperLimit)
	assert.Nil(t, cfg.Ingest.LowerLimit)

	assert.Equal(t, "total_realtime.pdf", cfg.Plot.Output)
	assert.Equal(t, DefaultRenderTimeout, cfg.Plot.RenderTimeout)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)

	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults",
			file: `
ingest:
  delimiter: ";"
  error_policy: fail
  upper_limit: 1.5
plot:
  output: out/run.svg
  run: "3522"
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ';', cfg.Ingest.DelimiterRune())
				assert.Equal(t, domain.ErrorPolicyFail, cfg.Ingest.Policy())
				require.NotNil(t, cfg.Ingest.UpperLimit)
				assert.Equal(t, 1.5, *cfg.Ingest.UpperLimit)
				assert.Equal(t, "out/run.svg", cfg.Plot.Output)
				assert.Equal(t, "3522", cfg.Plot.Run)
				// untouched keys keep their defaults
				assert.Equal(t, 50, cfg.Ingest.ReportEvery)
			},
		},
		{
			name: "env takes precedence over file",
			file: `
ingest:
  report_every: 10
logging:
  level: warn
`,
			env: map[string]string{
				"ANUBIS_INGEST_REPORT_EVERY":    "25",
				"ANUBIS_INGEST_REPORT_INTERVAL": "2s",
				"ANUBIS_INGEST_LOWER_LIMIT":     "0.2",
				"ANUBIS_TELEMETRY_METRICS_FILE": "metrics.prom",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 25, cfg.Ingest.ReportEvery)
				assert.Equal(t, 2*time.Second, cfg.Ingest.ReportInterval)
				require.NotNil(t, cfg.Ingest.LowerLimit)
				assert.Equal(t, 0.2, *cfg.Ingest.LowerLimit)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "metrics.prom", cfg.Telemetry.MetricsFile)
			},
		},
		{
			name:    "invalid error policy",
			env:     map[string]string{"ANUBIS_INGEST_ERROR_POLICY": "ignore"},
			wantErr: true,
		},
		{
			name:    "multi character delimiter",
			file:    "ingest:\n  delimiter: \"::\"\n",
			wantErr: true,
		},
		{
			name:    "zero report frequency",
			env:     map[string]string{"ANUBIS_INGEST_REPORT_EVERY": "0"},
			wantErr: true,
		},
		{
			name:    "unparseable env value",
			env:     map[string]string{"ANUBIS_INGEST_MAX_SKIPPED": "many"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "ingest: [not, a, map",
			wantErr: true,
		},
		{
			name: "lower limit above upper limit",
			env: map[string]string{
				"ANUBIS_INGEST_UPPER_LIMIT": "0.5",
				"ANUBIS_INGEST_LOWER_LIMIT": "0.9",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// keep the search for config.yaml away from the package directory
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_DiscoversConfigInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), []byte("plot:\n  run: \"7\"\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7", cfg.Plot.Run)
}

func TestValidate_LoggingOutput(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "console"
	cfg.Logging.FilePath = ""
	assert.NoError(t, cfg.Validate())

	cfg.Logging.Output = "file"
	assert.Error(t, cfg.Validate())

	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = "x.log"
	assert.Error(t, cfg.Validate())
}
