package dataprocessing

import (
	"anubis/pkg/contracts/domain"
)

// maxRetainedViolations bounds the indexes kept for the run summary
const maxRetainedViolations = 100

// Violation is a sample outside the configured voltage limits
type Violation struct {
	Sample domain.Sample
	// Limit is the bound that was crossed
	Limit float64
	Above bool
}

// ThresholdMonitor flags samples above Upper or below Lower. A nil bound is
// not checked.
type ThresholdMonitor struct {
	Upper *float64
	Lower *float64

	count   int
	indexes []int
}

// NewThresholdMonitor creates a monitor for the given bounds
func NewThresholdMonitor(upper, lower *float64) *ThresholdMonitor {
	return &ThresholdMonitor{Upper: upper, Lower: lower}
}

// Enabled reports whether any bound is set
func (m *ThresholdMonitor) Enabled() bool {
	return m != nil && (m.Upper != nil || m.Lower != nil)
}

// Check records and returns a violation for s, if any
func (m *ThresholdMonitor) Check(s domain.Sample) (Violation, bool) {
	if !m.Enabled() {
		return Violation{}, false
	}

	var v Violation
	switch {
	case m.Upper != nil && s.Value > *m.Upper:
		v = Violation{Sample: s, Limit: *m.Upper, Above: true}
	case m.Lower != nil && s.Value < *m.Lower:
		v = Violation{Sample: s, Limit: *m.Lower}
	default:
		return Violation{}, false
	}

	m.count++
	if len(m.indexes) < maxRetainedViolations {
		m.indexes = append(m.indexes, s.Index)
	}
	return v, true
}

// Count returns the number of violations seen
func (m *ThresholdMonitor) Count() int {
	if m == nil {
		return 0
	}
	return m.count
}

// Indexes returns the sample indexes of the first violations, oldest first
func (m *ThresholdMonitor) Indexes() []int {
	if m == nil {
		return nil
	}
	return append([]int(nil), m.indexes...)
}

// Limits returns the bounds as plot reference lines
func (m *ThresholdMonitor) Limits() []domain.Limit {
	if m == nil {
		return nil
	}
	var limits []domain.Limit
	if m.Upper != nil {
		limits = append(limits, domain.Limit{Name: "Upper limit", Value: *m.Upper})
	}
	if m.Lower != nil {
		limits = append(limits, domain.Limit{Name: "Lower limit", Value: *m.Lower})
	}
	return limits
}
