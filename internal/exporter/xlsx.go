package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "anubis/internal/errors"
	"anubis/pkg/contracts/domain"
)

const (
	samplesSheet = "Voltage"
	summarySheet = "Summary"
)

// XLSXSink writes the series to a workbook with a native line chart
type XLSXSink struct {
	Path   string
	Width  int
	Height int
	Logger *slog.Logger
}

// Render writes Path. An empty series still produces a workbook with headers.
func (s *XLSXSink) Render(ctx context.Context, series *domain.Series, meta domain.PlotMeta) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.Logger.WarnContext(ctx, "Failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	if err := s.build(f, series, meta); err != nil {
		return apperrors.NewRenderError("failed to build workbook", err).WithContext("output", s.Path)
	}

	err := writeFileAtomic(s.Path, func(w io.Writer) error {
		return f.Write(w)
	})
	if err != nil {
		return apperrors.NewRenderError("failed to write workbook", err).WithContext("output", s.Path)
	}

	s.Logger.InfoContext(ctx, "Workbook written", slog.Int("samples", series.Len()))
	return nil
}

func (s *XLSXSink) build(f *excelize.File, series *domain.Series, meta domain.PlotMeta) error {
	if err := f.SetSheetName("Sheet1", samplesSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(samplesSheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(1, 2, 16); err != nil {
		return err
	}
	header := []interface{}{"Index", meta.YLabel}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return err
	}
	for i := 0; i < series.Len(); i++ {
		sample := series.At(i)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{sample.Index, sample.Value}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	if series.Len() > 0 {
		if err := s.addChart(f, series.Len(), meta); err != nil {
			return err
		}
	}
	return s.addSummary(f, series, meta, bold)
}

func (s *XLSXSink) addChart(f *excelize.File, n int, meta domain.PlotMeta) error {
	last := n + 1
	return f.AddChart(samplesSheet, "D2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", samplesSheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", samplesSheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", samplesSheet, last),
			Marker:     excelize.ChartMarker{Symbol: "none"},
		}},
		Title:     []excelize.RichTextRun{{Text: meta.Title}},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: meta.XLabel}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: meta.YLabel}}},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: uint(s.Width), Height: uint(s.Height)},
	})
}

func (s *XLSXSink) addSummary(f *excelize.File, series *domain.Series, meta domain.PlotMeta, bold int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Title", meta.Title},
		{"Samples", series.Len()},
	}
	if series.Len() > 0 {
		lo, hi, mean := series.Stats()
		rows = append(rows,
			[]interface{}{"Min", lo},
			[]interface{}{"Max", hi},
			[]interface{}{"Mean", mean})
	}
	for _, l := range meta.Limits {
		rows = append(rows, []interface{}{l.Name, l.Value})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 14); err != nil {
		return err
	}
	return f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(rows)), bold)
}
