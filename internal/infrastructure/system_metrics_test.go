package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anubis/internal/config"
)

func TestSystemMetrics_Collect(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "metrics.prom")
	tel, err := InitializeTelemetry(config.TelemetryConfig{MetricsFile: metricsFile}, nil)
	require.NoError(t, err)

	sm, err := NewSystemMetrics(tel.Meter)
	require.NoError(t, err)

	stats := sm.Collect(context.Background(), time.Now().Add(-time.Second))
	assert.Positive(t, stats.GoRoutines)
	assert.Positive(t, stats.MemorySystem)
	assert.GreaterOrEqual(t, stats.ProcessUptime, time.Second)

	require.NoError(t, tel.Shutdown(context.Background()))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "system_goroutines")
	assert.Contains(t, string(data), "system_memory_system_bytes")
}
