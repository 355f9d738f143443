package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anubis/internal/config"
)

func TestInitializeTelemetry_NoTracing(t *testing.T) {
	tel, err := InitializeTelemetry(config.TelemetryConfig{TraceExporter: "none"}, nil)
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider)
	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Meter)
	require.NotNil(t, tel.Registry)

	_, span := tel.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitializeTelemetry_UnsupportedExporter(t *testing.T) {
	_, err := InitializeTelemetry(config.TelemetryConfig{TraceExporter: "otlp"}, nil)
	assert.Error(t, err)
}

func TestTelemetry_StdoutTraceToFile(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "trace.json")
	tel, err := InitializeTelemetry(config.TelemetryConfig{TraceExporter: "stdout", TraceFile: traceFile}, nil)
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	ctx, span := tel.Tracer.Start(context.Background(), "pipeline.count")
	assert.True(t, span.IsRecording())
	RecordError(ctx, os.ErrNotExist)
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "pipeline.count")
	assert.Contains(t, string(content), "file does not exist")
}

func TestIngestMetrics_WrittenToTextfile(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "ingest.prom")
	tel, err := InitializeTelemetry(config.TelemetryConfig{TraceExporter: "none", MetricsFile: metricsFile}, nil)
	require.NoError(t, err)

	m, err := CreateIngestMetrics(tel.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	m.Records.Add(ctx, 3)
	m.Samples.Add(ctx, 2)
	m.Skipped.Add(ctx, 1)
	m.PhaseDuration.Record(ctx, 0.25)

	families, err := tel.Registry.Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "ingest_records")
	assert.Contains(t, joined, "ingest_skipped_records")
	assert.Contains(t, joined, "ingest_phase_duration")

	require.NoError(t, tel.Shutdown(ctx))

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ingest_samples")
}
