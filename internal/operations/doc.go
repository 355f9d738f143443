// Package operations runs the two-pass voltage ingest.
//
// A Pipeline takes one input path through a fixed sequence of states:
//
//	Idle -> Counting -> Parsing -> Complete
//
// with Failed reachable from Counting and Parsing. The counting pass reports
// the number of physical lines; the parsing pass reopens the file, decodes
// each record and appends the accepted voltages to a Series. Progress is
// reported through a ProgressReporter, rate limited by sample count and by
// wall clock. Once the series is sealed it is handed to the Sink exactly once.
//
// Malformed records are handled by the configured ErrorPolicy: skip logs the
// record and continues (up to MaxSkipped), fail stops the run with a PARSING
// error naming the line.
//
// Example usage:
//
//	p := operations.NewPipeline(opts, sink,
//		operations.WithLogger(logger),
//		operations.WithMetrics(metrics),
//	)
//	summary, err := p.Run(ctx, "voltage.csv")
//
// A Pipeline is single use; calling Run twice panics.
//
// RunManifest records the outcome of a run as JSON for later inspection.
package operations
