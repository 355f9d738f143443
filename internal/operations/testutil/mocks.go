package testutil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"anubis/internal/operations"
	"anubis/pkg/contracts/domain"
)

// RecordingSink captures every Render call
type RecordingSink struct {
	mu    sync.Mutex
	Err   error
	calls []SinkCall
}

// SinkCall is one captured Render invocation
type SinkCall struct {
	Samples []domain.Sample
	Sealed  bool
	Meta    domain.PlotMeta
}

// Render implements operations.Sink
func (s *RecordingSink) Render(ctx context.Context, series *domain.Series, meta domain.PlotMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, SinkCall{
		Samples: series.Samples(),
		Sealed:  series.Sealed(),
		Meta:    meta,
	})
	return s.Err
}

// Calls returns the captured invocations
func (s *RecordingSink) Calls() []SinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SinkCall(nil), s.calls...)
}

// RecordingReporter captures every snapshot it is given
type RecordingReporter struct {
	Snapshots []domain.ProgressSnapshot
	Finished  int
}

// Report implements operations.ProgressReporter
func (r *RecordingReporter) Report(ctx context.Context, snap domain.ProgressSnapshot) operations.ProgressReport {
	r.Snapshots = append(r.Snapshots, snap)
	return operations.ComputeProgress(snap)
}

// Finish implements operations.ProgressReporter
func (r *RecordingReporter) Finish() { r.Finished++ }

// Factory returns a constructor usable with operations.WithReporter
func (r *RecordingReporter) Factory() func(io.Writer, *slog.Logger) operations.ProgressReporter {
	return func(io.Writer, *slog.Logger) operations.ProgressReporter { return r }
}

// FakeClock advances by Step on every call to Now
type FakeClock struct {
	mu      sync.Mutex
	Current time.Time
	Step    time.Duration
}

// NewFakeClock creates a clock starting at a fixed instant
func NewFakeClock(step time.Duration) *FakeClock {
	return &FakeClock{Current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Step: step}
}

// Now returns the current instant, then advances it
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.Current
	c.Current = c.Current.Add(c.Step)
	return now
}

// FailingOpener returns an opener that fails from the nth call on (1-based)
func FailingOpener(n int, open func(string) (io.ReadCloser, error)) operations.Opener {
	calls := 0
	return func(path string) (io.ReadCloser, error) {
		calls++
		if calls >= n {
			return nil, errors.New("device not ready")
		}
		return open(path)
	}
}

// MockSlogHandler captures slog messages for testing
type MockSlogHandler struct {
	mu      sync.Mutex
	records []MockLogRecord
}

// MockLogRecord represents a captured slog record
type MockLogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// NewMockSlogHandler creates a new mock slog handler
func NewMockSlogHandler() *MockSlogHandler {
	return &MockSlogHandler{}
}

// Handle implements slog.Handler
func (h *MockSlogHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	attrs := make(map[string]any)
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.Any()
		return true
	})

	h.records = append(h.records, MockLogRecord{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})
	return nil
}

// Enabled implements slog.Handler
func (h *MockSlogHandler) Enabled(ctx context.Context, level slog.Level) bool { return true }

// WithAttrs implements slog.Handler; base attributes are dropped
func (h *MockSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }

// WithGroup implements slog.Handler
func (h *MockSlogHandler) WithGroup(name string) slog.Handler { return h }

// GetRecords returns all captured log records
func (h *MockSlogHandler) GetRecords() []MockLogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]MockLogRecord(nil), h.records...)
}

// GetRecordsByLevel returns records filtered by level
func (h *MockSlogHandler) GetRecordsByLevel(level slog.Level) []MockLogRecord {
	var out []MockLogRecord
	for _, r := range h.GetRecords() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Logger returns a logger writing into h
func (h *MockSlogHandler) Logger() *slog.Logger { return slog.New(h) }
