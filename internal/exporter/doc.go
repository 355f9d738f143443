// Package exporter provides the sinks that turn a completed voltage series
// into a file.
//
// New picks the sink from the output extension:
//
//	.pdf   PDFSink: go-chart SVG printed to PDF by headless Chrome
//	.svg   ChartSink with the SVG renderer
//	.png   ChartSink with the PNG renderer
//	.xlsx  XLSXSink: samples, a native line chart and a summary sheet
//	.csv   CSVSink: index,voltage rows
//
// Every sink writes through a temporary file and renames it into place, so a
// failed render leaves no partial output. The chart sinks write nothing for
// an empty series; the tabular sinks write their headers.
//
// Example usage:
//
//	sink, err := exporter.New("total_realtime.pdf", exporter.Options{Logger: logger})
//	if err != nil {
//		return err
//	}
//	err = sink.Render(ctx, series, meta)
package exporter
