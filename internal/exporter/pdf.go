package exporter

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	chart "github.com/wcharczuk/go-chart/v2"

	apperrors "anubis/internal/errors"
	"anubis/pkg/contracts/domain"
)

// cssPixelsPerInch converts chart pixels to PDF paper inches
const cssPixelsPerInch = 96.0

// PDFSink renders the chart as SVG and prints it to a one-page PDF with
// headless Chrome
type PDFSink struct {
	Path    string
	Width   int
	Height  int
	Chrome  string
	Timeout time.Duration
	Logger  *slog.Logger
}

var pdfPage = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>@page{size:{{.Width}}px {{.Height}}px;margin:0}html,body{margin:0;padding:0;background:#fff}svg{display:block}</style>
</head><body>{{.SVG}}</body></html>`))

// Render writes Path. An empty series produces no file.
func (s *PDFSink) Render(ctx context.Context, series *domain.Series, meta domain.PlotMeta) error {
	if series.Len() == 0 {
		s.Logger.WarnContext(ctx, "No samples to plot, PDF not written")
		return nil
	}

	doc, err := s.document(series, meta)
	if err != nil {
		return apperrors.NewRenderError("failed to build chart", err).WithContext("output", s.Path)
	}

	start := time.Now()
	pdf, err := s.print(ctx, doc)
	if err != nil {
		return apperrors.NewRenderError("failed to print PDF", err).WithContext("output", s.Path)
	}

	err = writeFileAtomic(s.Path, func(w io.Writer) error {
		_, err := w.Write(pdf)
		return err
	})
	if err != nil {
		return apperrors.NewRenderError("failed to write PDF", err).WithContext("output", s.Path)
	}

	s.Logger.InfoContext(ctx, "PDF written",
		slog.Int("samples", series.Len()),
		slog.Int("bytes", len(pdf)),
		slog.Duration("print_duration", time.Since(start)))
	return nil
}

// document wraps the SVG chart in a page sized to the chart
func (s *PDFSink) document(series *domain.Series, meta domain.PlotMeta) (string, error) {
	var svg bytes.Buffer
	if err := renderChart(&svg, chart.SVG, series, meta, s.Width, s.Height); err != nil {
		return "", err
	}

	var doc bytes.Buffer
	err := pdfPage.Execute(&doc, struct {
		Title         string
		Width, Height int
		SVG           template.HTML
	}{meta.Title, s.Width, s.Height, template.HTML(svg.String())})
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return doc.String(), nil
}

func (s *PDFSink) print(ctx context.Context, doc string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
	)
	if s.Chrome != "" {
		opts = append(opts, chromedp.ExecPath(s.Chrome))
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, s.Timeout)
	defer cancelTimeout()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(float64(s.Width) / cssPixelsPerInch).
				WithPaperHeight(float64(s.Height) / cssPixelsPerInch).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPageRanges("1").
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
