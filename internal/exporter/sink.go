package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"anubis/internal/config"
	apperrors "anubis/internal/errors"
	"anubis/internal/operations"
)

// Options configures the sink built by New
type Options struct {
	Width         int
	Height        int
	ChromePath    string
	RenderTimeout time.Duration
	Logger        *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = config.PlotWidth
	}
	if o.Height <= 0 {
		o.Height = config.PlotHeight
	}
	if o.RenderTimeout <= 0 {
		o.RenderTimeout = config.DefaultRenderTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// New returns the sink that writes path, chosen by its extension
func New(path string, opts Options) (operations.Sink, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.With("component", "exporter", "output", path)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return &PDFSink{
			Path:    path,
			Width:   opts.Width,
			Height:  opts.Height,
			Chrome:  opts.ChromePath,
			Timeout: opts.RenderTimeout,
			Logger:  logger,
		}, nil
	case ".svg":
		return &ChartSink{Path: path, Provider: chart.SVG, Width: opts.Width, Height: opts.Height, Logger: logger}, nil
	case ".png":
		return &ChartSink{Path: path, Provider: chart.PNG, Width: opts.Width, Height: opts.Height, Logger: logger}, nil
	case ".xlsx":
		return &XLSXSink{Path: path, Width: opts.Width, Height: opts.Height, Logger: logger}, nil
	case ".csv":
		return &CSVSink{Path: path, BOM: true, Logger: logger}, nil
	default:
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("unsupported output format %q (want .pdf, .svg, .png, .xlsx or .csv)", ext), nil).
			WithContext("output", path)
	}
}

// writeFileAtomic writes path through a temporary file in the same directory,
// so a failed render never leaves a partial artifact behind.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
