package operations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"anubis/pkg/contracts/domain"
)

// minElapsedSeconds keeps the rate finite on a report taken right at start
const minElapsedSeconds = 1e-3

// ProgressReport is the throughput and ETA derived from one snapshot
type ProgressReport struct {
	Processed      int
	Total          int
	ElapsedSeconds float64
	// Rate is records per second. The +1 keeps the first report non-zero.
	Rate           float64
	Percent        float64
	ElapsedMinutes float64
	ETAMinutes     float64
}

// ComputeProgress derives rate, percent complete and ETA from snap.
// Elapsed time is clamped to a small positive minimum and the remaining
// count never goes below zero, even if the file grew after it was counted.
func ComputeProgress(snap domain.ProgressSnapshot) ProgressReport {
	elapsed := math.Max(snap.ElapsedSeconds, minElapsedSeconds)
	rate := float64(snap.Processed+1) / elapsed

	var percent float64
	if snap.Total > 0 {
		percent = 100 * float64(snap.Processed) / float64(snap.Total)
	}

	remaining := max(snap.Total-snap.Processed, 0)

	return ProgressReport{
		Processed:      snap.Processed,
		Total:          snap.Total,
		ElapsedSeconds: snap.ElapsedSeconds,
		Rate:           rate,
		Percent:        percent,
		ElapsedMinutes: snap.ElapsedSeconds / 60,
		ETAMinutes:     float64(remaining) / (rate * 60),
	}
}

// String renders the one-line status shown on the terminal
func (r ProgressReport) String() string {
	return fmt.Sprintf(" > %d / %d | %.1f%% | %.1fHz | %.1fm elapsed | %.1fm remaining",
		r.Processed, r.Total, r.Percent, r.Rate, r.ElapsedMinutes, r.ETAMinutes)
}

// Reporter writes progress as a single line that each report overwrites
type Reporter struct {
	out     io.Writer
	logger  *slog.Logger
	reports int
	lastLen int
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer, logger *slog.Logger) *Reporter {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{out: out, logger: logger}
}

// Report computes and displays the progress for snap. Snapshots with no
// total are ignored, since there is nothing to measure progress against.
func (r *Reporter) Report(ctx context.Context, snap domain.ProgressSnapshot) ProgressReport {
	if snap.Total <= 0 {
		return ProgressReport{}
	}

	report := ComputeProgress(snap)
	line := report.String()

	// pad so a shorter line fully covers the previous one
	pad := ""
	if n := r.lastLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprint(r.out, "\r"+line+pad)
	r.lastLen = len(line)
	r.reports++

	r.logger.DebugContext(ctx, "Ingest progress",
		slog.Int("processed", report.Processed),
		slog.Int("total", report.Total),
		slog.Float64("percent", report.Percent),
		slog.Float64("rate_hz", report.Rate),
		slog.Float64("eta_minutes", report.ETAMinutes))

	return report
}

// Reports returns how many reports were displayed
func (r *Reporter) Reports() int { return r.reports }

// Finish ends the status line so later output starts on a fresh line
func (r *Reporter) Finish() {
	if r.reports > 0 && r.lastLen > 0 {
		fmt.Fprintln(r.out)
		r.lastLen = 0
	}
}
