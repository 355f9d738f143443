package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	apperrors "anubis/internal/errors"
	"anubis/pkg/contracts/domain"
)

// utf8BOM helps Excel recognise UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSink writes the series as index,voltage rows
type CSVSink struct {
	Path   string
	BOM    bool
	Logger *slog.Logger
}

// Render writes Path. An empty series still produces the header row.
func (s *CSVSink) Render(ctx context.Context, series *domain.Series, meta domain.PlotMeta) error {
	err := writeFileAtomic(s.Path, func(w io.Writer) error {
		sw, err := NewStreamWriter(w, []string{"index", "voltage"}, s.BOM)
		if err != nil {
			return err
		}
		for i := 0; i < series.Len(); i++ {
			sample := series.At(i)
			if err := sw.WriteRecord([]string{formatIndex(sample.Index), formatVoltage(sample.Value)}); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		return sw.Flush()
	})
	if err != nil {
		return apperrors.NewRenderError("failed to write CSV", err).WithContext("output", s.Path)
	}

	s.Logger.InfoContext(ctx, "CSV written", slog.Int("record_count", series.Len()))
	return nil
}

// StreamWriter writes CSV records one at a time
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and the headers to w
func NewStreamWriter(w io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush writes any buffered records and reports the first write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
