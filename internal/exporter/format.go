package exporter

import (
	"fmt"
	"strconv"

	"anubis/internal/config"
	"anubis/pkg/contracts/domain"
)

// formatVoltage formats a sample value with the shortest exact representation
func formatVoltage(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatIndex formats a sample index
func formatIndex(i int) string {
	return strconv.Itoa(i)
}

// titleWithRun appends the run label to a plot title
func titleWithRun(title, run string) string {
	if run == "" {
		return title
	}
	return fmt.Sprintf("%s (run %s)", title, run)
}

// DefaultMeta returns the fixed plot labelling, titled for run if given
func DefaultMeta(run string) domain.PlotMeta {
	return domain.PlotMeta{
		Title:  titleWithRun(config.PlotTitle, run),
		XLabel: config.PlotXLabel,
		YLabel: config.PlotYLabel,
	}
}
