// Package domain holds the data types shared by the ingest pipeline and its sinks.
package domain

import (
	"math"
	"time"
)

// Sample is one point of a voltage time series.
// Index is the ordinal of the sample among successfully parsed records,
// not the line number it came from.
type Sample struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Series is the ordered sequence of samples produced by one ingest run.
// Once Seal has been called the series must not be appended to.
type Series struct {
	samples []Sample
	sealed  bool
}

// NewSeries creates an empty series with room for capacity samples
func NewSeries(capacity int) *Series {
	if capacity < 0 {
		capacity = 0
	}
	return &Series{samples: make([]Sample, 0, capacity)}
}

// Append adds value as the next sample and returns it.
// The index is always the current length, so indexes never have gaps.
func (s *Series) Append(value float64) Sample {
	if s.sealed {
		panic("domain: append to sealed series")
	}
	sample := Sample{Index: len(s.samples), Value: value}
	s.samples = append(s.samples, sample)
	return sample
}

// Seal marks the series complete
func (s *Series) Seal() { s.sealed = true }

// Sealed reports whether the series is complete
func (s *Series) Sealed() bool { return s.sealed }

// Len returns the number of samples
func (s *Series) Len() int { return len(s.samples) }

// At returns the i-th sample
func (s *Series) At(i int) Sample { return s.samples[i] }

// Samples returns a copy of the samples
func (s *Series) Samples() []Sample {
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// XValues returns the sample indexes as float64, suitable for plotting
func (s *Series) XValues() []float64 {
	xs := make([]float64, len(s.samples))
	for i, sm := range s.samples {
		xs[i] = float64(sm.Index)
	}
	return xs
}

// YValues returns the sample values
func (s *Series) YValues() []float64 {
	ys := make([]float64, len(s.samples))
	for i, sm := range s.samples {
		ys[i] = sm.Value
	}
	return ys
}

// Stats returns min, max and mean of the values. All are zero for an empty series.
func (s *Series) Stats() (minV, maxV, mean float64) {
	if len(s.samples) == 0 {
		return 0, 0, 0
	}
	minV, maxV = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, sm := range s.samples {
		minV = math.Min(minV, sm.Value)
		maxV = math.Max(maxV, sm.Value)
		sum += sm.Value
	}
	return minV, maxV, sum / float64(len(s.samples))
}

// PlotMeta carries the labels handed to a plotting sink together with a series
type PlotMeta struct {
	Title  string
	XLabel string
	YLabel string
	// Limits are horizontal reference lines (upper/lower voltage thresholds).
	Limits []Limit
}

// Limit is a named horizontal reference line
type Limit struct {
	Name  string
	Value float64
}

// RunSummary describes the outcome of one ingest run
type RunSummary struct {
	TotalLines       int           `json:"total_lines"`
	Records          int           `json:"records"`
	Samples          int           `json:"samples"`
	Skipped          int           `json:"skipped"`
	Blank            int           `json:"blank"`
	Violations       int           `json:"violations"`
	ViolationIndexes []int         `json:"violation_indexes,omitempty"`
	Min              float64       `json:"min"`
	Max              float64       `json:"max"`
	Mean             float64       `json:"mean"`
	Elapsed          time.Duration `json:"elapsed"`
}
