package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"anubis/internal/config"
	apperrors "anubis/internal/errors"
	"anubis/internal/exporter"
	"anubis/internal/infrastructure"
	"anubis/internal/operations"
	"anubis/internal/validation"
	"anubis/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	shutdownTimeout = 5 * time.Second
)

// flags holds command line overrides. They only apply when set.
type flags struct {
	configPath  string
	output      string
	onError     string
	run         string
	logLevel    string
	logOutput   string
	maxSkipped  int
	upper       float64
	lower       float64
	traceOut    string
	metricsFile string
	manifest    string
}

// run executes the command and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case apperrors.IsType(err, apperrors.ErrTypeUsage):
		fmt.Fprintf(stderr, "Error: %s\n\n%s", err.Error(), cmd.UsageString())
		return exitUsage
	default:
		fmt.Fprintf(stderr, "%s: %s\n", cmd.Name(), err.Error())
		return exitError
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "graph-total <voltage-file>",
		Short: "Plot a voltage log as a time series",
		Long: `graph-total reads a delimited voltage log, one sample per line with the
value in the first field, and plots voltage against sample index.

The line count is printed first, then a progress line that is rewritten as
records are parsed. The plot goes to total_realtime.pdf unless --output
names another file; the extension selects the format (.pdf, .svg, .png,
.xlsx or .csv).

Settings come from config.yaml (or --config), then ANUBIS_* environment
variables, then flags.`,
		Version: config.AppVersion,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return apperrors.NewUsageError(fmt.Sprintf("expected exactly one input file, got %d arguments", len(args)))
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, f, args[0], stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewUsageError(err.Error())
	})

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "configuration file to read")
	fs.StringVarP(&f.output, "output", "o", "", "plot output path (default \"total_realtime.pdf\")")
	fs.StringVar(&f.onError, "on-error", "", "malformed record policy: skip or fail (default \"skip\")")
	fs.StringVar(&f.run, "run", "", "run label appended to the plot title")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&f.logOutput, "log-output", "", "log destination: file, console or both")
	fs.IntVar(&f.maxSkipped, "max-skipped", 0, "abort once more than this many records are skipped (0 = no limit)")
	fs.Float64Var(&f.upper, "upper", 0, "upper voltage limit to flag and draw")
	fs.Float64Var(&f.lower, "lower", 0, "lower voltage limit to flag and draw")
	fs.StringVar(&f.traceOut, "trace", "", "trace exporter: none or stdout")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")
	fs.StringVar(&f.manifest, "manifest", "", "write a JSON record of the run to this file")

	return cmd
}

// apply overlays the flags the user set onto cfg
func (f *flags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("output") {
		cfg.Plot.Output = f.output
	}
	if changed("on-error") {
		cfg.Ingest.ErrorPolicy = f.onError
	}
	if changed("run") {
		cfg.Plot.Run = f.run
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-output") {
		cfg.Logging.Output = f.logOutput
	}
	if changed("max-skipped") {
		cfg.Ingest.MaxSkipped = f.maxSkipped
	}
	if changed("upper") {
		upper := f.upper
		cfg.Ingest.UpperLimit = &upper
	}
	if changed("lower") {
		lower := f.lower
		cfg.Ingest.LowerLimit = &lower
	}
	if changed("trace") {
		cfg.Telemetry.TraceExporter = f.traceOut
	}
	if changed("metrics-file") {
		cfg.Telemetry.MetricsFile = f.metricsFile
	}
	if changed("manifest") {
		cfg.Telemetry.ManifestFile = f.manifest
	}
}

func execute(cmd *cobra.Command, f *flags, path string, stdout io.Writer) error {
	started := time.Now()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize logger", err)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.EnsureRunID(cmd.Context())
	logger.InfoContext(ctx, "Starting graph-total",
		slog.String("version", config.AppVersion),
		slog.String("input", path),
		slog.String("output", cfg.Plot.Output))

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", shutdownErr.Error()))
		}
	}()

	metrics, err := infrastructure.CreateIngestMetrics(tel.Meter)
	if err != nil {
		return apperrors.NewConfigError("failed to create metrics", err)
	}
	system, err := infrastructure.NewSystemMetrics(tel.Meter)
	if err != nil {
		return apperrors.NewConfigError("failed to create system metrics", err)
	}

	sink, err := exporter.New(cfg.Plot.Output, exporter.Options{
		ChromePath:    cfg.Plot.ChromePath,
		RenderTimeout: cfg.Plot.RenderTimeout,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	manifest := operations.NewRunManifest(infrastructure.GetRunID(ctx), path, cfg.Plot.Output, started)
	summary, err := runPipeline(ctx, cfg, sink, path, stdout, logger, tel, metrics)
	manifest.Finish(time.Now(), summary, err)

	stats := system.Collect(ctx, started)
	logger.DebugContext(ctx, "Runtime statistics",
		slog.Int64("heap_bytes", stats.MemoryUsage),
		slog.Int64("allocated_bytes", stats.MemoryAllocated),
		slog.Uint64("gc_cycles", uint64(stats.GCCount)))

	if cfg.Telemetry.ManifestFile != "" {
		if saveErr := manifest.SaveToFile(cfg.Telemetry.ManifestFile); saveErr != nil {
			logger.WarnContext(ctx, "Failed to write run manifest",
				slog.String("manifest", cfg.Telemetry.ManifestFile),
				slog.String("error", saveErr.Error()))
		}
	}

	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Run finished",
		slog.String("output", cfg.Plot.Output),
		slog.Int("samples", summary.Samples),
		slog.Int("skipped", summary.Skipped),
		slog.Duration("duration", time.Since(started)))
	return nil
}

// runPipeline checks the input and output locations, then ingests and renders
func runPipeline(
	ctx context.Context,
	cfg *config.Config,
	sink operations.Sink,
	path string,
	stdout io.Writer,
	logger *slog.Logger,
	tel *infrastructure.Telemetry,
	metrics *infrastructure.IngestMetrics,
) (*domain.RunSummary, error) {
	validator := validation.NewFileValidator(infrastructure.WithComponent(logger, "validation"))
	if err := validator.ValidateInputFile(path); err != nil {
		return nil, err
	}
	if err := validator.ValidateOutputPath(cfg.Plot.Output); err != nil {
		return nil, err
	}

	pipeline := operations.NewPipeline(operations.Options{
		Delimiter:      cfg.Ingest.DelimiterRune(),
		Policy:         cfg.Ingest.Policy(),
		MaxSkipped:     cfg.Ingest.MaxSkipped,
		ReportEvery:    cfg.Ingest.ReportEvery,
		ReportInterval: cfg.Ingest.ReportInterval,
		UpperLimit:     cfg.Ingest.UpperLimit,
		LowerLimit:     cfg.Ingest.LowerLimit,
		Meta:           exporter.DefaultMeta(cfg.Plot.Run),
	}, sink,
		operations.WithOutput(stdout),
		operations.WithLogger(infrastructure.WithComponent(logger, "pipeline")),
		operations.WithTracer(tel.Tracer),
		operations.WithMetrics(metrics),
	)
	return pipeline.Run(ctx, path)
}
