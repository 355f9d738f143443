package operations

import (
	"context"

	"anubis/pkg/contracts/domain"
)

// Sink renders a completed series. It is called exactly once per successful
// run, after the pipeline reaches StateComplete, and may receive an empty series.
type Sink interface {
	Render(ctx context.Context, series *domain.Series, meta domain.PlotMeta) error
}

// ProgressReporter receives periodic progress snapshots during the parse pass
type ProgressReporter interface {
	Report(ctx context.Context, snap domain.ProgressSnapshot) ProgressReport
	Finish()
}
