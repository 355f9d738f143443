package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	apperrors "anubis/internal/errors"
	"anubis/pkg/contracts/domain"
)

// ChartSink renders the series as a line chart with go-chart
type ChartSink struct {
	Path     string
	Provider chart.RendererProvider
	Width    int
	Height   int
	Logger   *slog.Logger
}

// Render writes the chart to Path. An empty series produces no file.
func (s *ChartSink) Render(ctx context.Context, series *domain.Series, meta domain.PlotMeta) error {
	if series.Len() == 0 {
		s.Logger.WarnContext(ctx, "No samples to plot, chart not written")
		return nil
	}

	err := writeFileAtomic(s.Path, func(w io.Writer) error {
		return renderChart(w, s.Provider, series, meta, s.Width, s.Height)
	})
	if err != nil {
		return apperrors.NewRenderError("failed to write chart", err).WithContext("output", s.Path)
	}

	s.Logger.InfoContext(ctx, "Chart written", slog.Int("samples", series.Len()))
	return nil
}

func renderChart(w io.Writer, provider chart.RendererProvider, series *domain.Series, meta domain.PlotMeta, width, height int) error {
	ch := buildChart(series, meta, width, height)
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("go-chart: %w", err)
	}
	return nil
}

// buildChart lays out voltage against sample index, plus one dashed
// horizontal line per limit
func buildChart(series *domain.Series, meta domain.PlotMeta, width, height int) chart.Chart {
	xs, ys := series.XValues(), series.YValues()
	xRange, yRange := axisRanges(series, meta.Limits)

	dataStyle := chart.Style{
		StrokeColor: chart.ColorBlue,
		StrokeWidth: 1.5,
	}
	if len(xs) == 1 {
		// a single point has no segment to stroke
		dataStyle.DotColor = chart.ColorBlue
		dataStyle.DotWidth = 4
	}

	plotted := []chart.Series{
		chart.ContinuousSeries{Name: "Voltage", XValues: xs, YValues: ys, Style: dataStyle},
	}

	lo, hi := xs[0], xs[len(xs)-1]
	if xRange != nil {
		lo, hi = xRange.Min, xRange.Max
	}
	for _, l := range meta.Limits {
		plotted = append(plotted, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%s (%s V)", l.Name, formatVoltage(l.Value)),
			XValues: []float64{lo, hi},
			YValues: []float64{l.Value, l.Value},
			Style: chart.Style{
				StrokeColor:     limitColor,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 3},
			},
		})
	}

	ch := chart.Chart{
		Title:      meta.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: meta.XLabel},
		YAxis:      chart.YAxis{Name: meta.YLabel},
		Series:     plotted,
	}
	if xRange != nil {
		ch.XAxis.Range = xRange
	}
	if yRange != nil {
		ch.YAxis.Range = yRange
	}
	if len(meta.Limits) > 0 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

var limitColor = drawing.Color{R: 0xd9, G: 0x3f, B: 0x3f, A: 0xff}

// axisRanges returns explicit ranges for the axes whose data span is zero,
// which go-chart cannot scale on its own. Nil means let go-chart decide.
func axisRanges(series *domain.Series, limits []domain.Limit) (x, y *chart.ContinuousRange) {
	n := series.Len()
	if n == 1 {
		i := float64(series.At(0).Index)
		x = &chart.ContinuousRange{Min: i - 0.5, Max: i + 0.5}
	}

	lo, hi, _ := series.Stats()
	for _, l := range limits {
		lo = min(lo, l.Value)
		hi = max(hi, l.Value)
	}
	if hi <= lo {
		y = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return x, y
}
