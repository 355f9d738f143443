package operations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"anubis/internal/dataprocessing"
	apperrors "anubis/internal/errors"
	"anubis/internal/infrastructure"
	"anubis/pkg/contracts/domain"
)

// Options configures one ingest run
type Options struct {
	Delimiter  rune
	Policy     domain.ErrorPolicy
	MaxSkipped int
	// ReportEvery shows progress on the first record and every Nth after it
	ReportEvery int
	// ReportInterval additionally shows progress when this much time has
	// passed since the last report. Zero disables it.
	ReportInterval time.Duration
	UpperLimit     *float64
	LowerLimit     *float64
	Meta           domain.PlotMeta
}

// Opener opens the input file for one pass
type Opener func(path string) (io.ReadCloser, error)

// Pipeline runs the two-pass ingest: count the lines, parse them into a
// series, then hand the completed series to the sink.
type Pipeline struct {
	opts    Options
	sink    Sink
	out     io.Writer
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.IngestMetrics
	now     func() time.Time
	open    Opener
	state   State

	newReporter func(io.Writer, *slog.Logger) ProgressReporter
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithOutput sets where the line count, progress line and summary go
func WithOutput(w io.Writer) Option { return func(p *Pipeline) { p.out = w } }

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// WithTracer sets the tracer used for phase spans
func WithTracer(t trace.Tracer) Option { return func(p *Pipeline) { p.tracer = t } }

// WithMetrics sets the instruments updated at the end of each phase
func WithMetrics(m *infrastructure.IngestMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock replaces time.Now, for deterministic elapsed times
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// WithOpener replaces os.Open
func WithOpener(open Opener) Option { return func(p *Pipeline) { p.open = open } }

// WithReporter replaces the terminal progress reporter
func WithReporter(newReporter func(io.Writer, *slog.Logger) ProgressReporter) Option {
	return func(p *Pipeline) { p.newReporter = newReporter }
}

// NewPipeline creates a pipeline rendering into sink
func NewPipeline(opts Options, sink Sink, options ...Option) *Pipeline {
	if opts.ReportEvery <= 0 {
		opts.ReportEvery = 50
	}
	p := &Pipeline{
		opts:   opts,
		sink:   sink,
		out:    os.Stdout,
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("anubis"),
		now:    time.Now,
		open:   func(path string) (io.ReadCloser, error) { return os.Open(path) },
		newReporter: func(w io.Writer, l *slog.Logger) ProgressReporter {
			return NewReporter(w, l)
		},
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// State returns the pipeline's current state
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) transition(to State) {
	if !canTransition(p.state, to) {
		panic(fmt.Sprintf("operations: illegal pipeline transition %s → %s", p.state, to))
	}
	p.state = to
}

// Run ingests the file at path and renders it. IO errors during either pass
// and parse errors under the fail policy abort the run before the sink is
// called. A sink error is returned after the series is complete.
func (p *Pipeline) Run(ctx context.Context, path string) (*domain.RunSummary, error) {
	start := p.now()
	p.logger.InfoContext(ctx, "Starting ingest",
		slog.String("input", path),
		slog.String("error_policy", string(p.opts.Policy)))

	p.transition(StateCounting)
	total, err := p.count(ctx, path)
	if err != nil {
		return nil, p.fail(ctx, err)
	}
	fmt.Fprintln(p.out, total)

	p.transition(StateParsing)
	series, summary, err := p.parse(ctx, path, total, start)
	if err != nil {
		return nil, p.fail(ctx, err)
	}

	series.Seal()
	p.transition(StateComplete)

	summary.TotalLines = total
	summary.Samples = series.Len()
	summary.Min, summary.Max, summary.Mean = series.Stats()
	summary.Elapsed = p.now().Sub(start)

	p.logger.InfoContext(ctx, "Ingest complete",
		slog.Int("total_lines", summary.TotalLines),
		slog.Int("samples", summary.Samples),
		slog.Int("skipped", summary.Skipped),
		slog.Int("blank", summary.Blank),
		slog.Int("violations", summary.Violations),
		slog.Float64("min", summary.Min),
		slog.Float64("max", summary.Max),
		slog.Float64("mean", summary.Mean),
		slog.Duration("elapsed", summary.Elapsed))

	if err := p.render(ctx, series); err != nil {
		return summary, err
	}

	fmt.Fprintf(p.out, "%d samples from %d lines (%d skipped, %d blank, %d limit violations)\n",
		summary.Samples, summary.TotalLines, summary.Skipped, summary.Blank, summary.Violations)
	return summary, nil
}

func (p *Pipeline) fail(ctx context.Context, err error) error {
	p.transition(StateFailed)
	p.logger.ErrorContext(ctx, "Ingest failed", slog.String("error", err.Error()))
	return err
}

// count is the first pass: it only counts lines
func (p *Pipeline) count(ctx context.Context, path string) (int, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.count", trace.WithAttributes(attribute.String("input", path)))
	defer span.End()
	phaseStart := p.now()

	f, err := p.open(path)
	if err != nil {
		err = apperrors.NewIOError(fmt.Sprintf("cannot open %s", path), err).WithContext("path", path)
		infrastructure.RecordError(ctx, err)
		return 0, err
	}
	defer f.Close()

	total, err := dataprocessing.CountLines(ctx, f)
	if err != nil {
		err = apperrors.NewIOError(fmt.Sprintf("cannot read %s", path), err).WithContext("path", path)
		infrastructure.RecordError(ctx, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int("total_lines", total))
	p.recordPhase(ctx, "count", phaseStart)
	p.logger.InfoContext(ctx, "Counted input lines", slog.Int("total_lines", total))
	return total, nil
}

// parse is the second pass: it builds the series and drives progress reports
func (p *Pipeline) parse(ctx context.Context, path string, total int, start time.Time) (*domain.Series, *domain.RunSummary, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.parse", trace.WithAttributes(attribute.Int("total_lines", total)))
	defer span.End()
	phaseStart := p.now()

	f, err := p.open(path)
	if err != nil {
		err = apperrors.NewIOError(fmt.Sprintf("cannot reopen %s", path), err).WithContext("path", path)
		infrastructure.RecordError(ctx, err)
		return nil, nil, err
	}
	defer f.Close()

	var (
		series    = domain.NewSeries(total)
		summary   = &domain.RunSummary{}
		monitor   = dataprocessing.NewThresholdMonitor(p.opts.UpperLimit, p.opts.LowerLimit)
		reporter  = p.newReporter(p.out, p.logger)
		gate      = &rate.Sometimes{Every: p.opts.ReportEvery, Interval: p.opts.ReportInterval}
		processed = 0
	)
	scanner := dataprocessing.NewRecordScanner(dataprocessing.ScannerOptions{
		Delimiter:  p.opts.Delimiter,
		Policy:     p.opts.Policy,
		MaxSkipped: p.opts.MaxSkipped,
		Logger:     p.logger,
	})

	for out, err := range scanner.Scan(ctx, f) {
		if err != nil {
			reporter.Finish()
			summary.Records = processed
			p.recordCounts(ctx, summary, series.Len())
			infrastructure.RecordError(ctx, err)
			return nil, nil, err
		}

		switch out.Kind {
		case dataprocessing.OutcomeSample:
			sample := series.Append(out.Value)
			if v, ok := monitor.Check(sample); ok {
				p.logger.WarnContext(ctx, "Voltage outside limits",
					slog.Int("index", sample.Index),
					slog.Int("line", out.Record.Line),
					slog.Float64("value", sample.Value),
					slog.Float64("limit", v.Limit),
					slog.Bool("above", v.Above))
			}
		case dataprocessing.OutcomeSkipped:
			summary.Skipped++
		case dataprocessing.OutcomeBlank:
			summary.Blank++
		}

		if total > 0 {
			gate.Do(func() {
				reporter.Report(ctx, domain.ProgressSnapshot{
					ElapsedSeconds: p.now().Sub(start).Seconds(),
					Processed:      processed,
					Total:          total,
				})
			})
		}
		processed++
	}
	reporter.Finish()

	summary.Records = processed
	summary.Violations = monitor.Count()
	summary.ViolationIndexes = monitor.Indexes()
	p.recordCounts(ctx, summary, series.Len())

	span.SetAttributes(
		attribute.Int("samples", series.Len()),
		attribute.Int("skipped", summary.Skipped))
	p.recordPhase(ctx, "parse", phaseStart)
	return series, summary, nil
}

// render hands the sealed series to the sink, exactly once
func (p *Pipeline) render(ctx context.Context, series *domain.Series) error {
	ctx, span := p.tracer.Start(ctx, "pipeline.render", trace.WithAttributes(attribute.Int("samples", series.Len())))
	defer span.End()
	renderStart := p.now()

	meta := p.opts.Meta
	meta.Limits = dataprocessing.NewThresholdMonitor(p.opts.UpperLimit, p.opts.LowerLimit).Limits()

	if series.Len() == 0 {
		p.logger.WarnContext(ctx, "Series is empty")
	}

	err := p.sink.Render(ctx, series, meta)
	if p.metrics != nil {
		p.metrics.RenderDuration.Record(ctx, p.now().Sub(renderStart).Seconds())
	}
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrTypeRender) {
			err = apperrors.NewRenderError("failed to render series", err)
		}
		infrastructure.RecordError(ctx, err)
		p.logger.ErrorContext(ctx, "Render failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (p *Pipeline) recordPhase(ctx context.Context, phase string, since time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.PhaseDuration.Record(ctx, p.now().Sub(since).Seconds(),
		metric.WithAttributes(attribute.String("phase", phase)))
}

func (p *Pipeline) recordCounts(ctx context.Context, summary *domain.RunSummary, samples int) {
	if p.metrics == nil {
		return
	}
	p.metrics.Records.Add(ctx, int64(summary.Records))
	p.metrics.Samples.Add(ctx, int64(samples))
	p.metrics.Skipped.Add(ctx, int64(summary.Skipped))
	p.metrics.Violations.Add(ctx, int64(summary.Violations))
}
