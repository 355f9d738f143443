package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anubis/pkg/contracts/domain"
)

func ptr(v float64) *float64 { return &v }

func TestThresholdMonitor(t *testing.T) {
	m := NewThresholdMonitor(ptr(1.0), ptr(0.2))
	require.True(t, m.Enabled())

	samples := []domain.Sample{
		{Index: 0, Value: 0.5},
		{Index: 1, Value: 1.2},
		{Index: 2, Value: 0.1},
		{Index: 3, Value: 1.0},
		{Index: 4, Value: 0.2},
	}

	var got []Violation
	for _, s := range samples {
		if v, ok := m.Check(s); ok {
			got = append(got, v)
		}
	}

	require.Len(t, got, 2)
	assert.True(t, got[0].Above)
	assert.Equal(t, 1.0, got[0].Limit)
	assert.Equal(t, 1, got[0].Sample.Index)
	assert.False(t, got[1].Above)
	assert.Equal(t, 0.2, got[1].Limit)

	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []int{1, 2}, m.Indexes())
	assert.Equal(t, []domain.Limit{{Name: "Upper limit", Value: 1.0}, {Name: "Lower limit", Value: 0.2}}, m.Limits())
}

func TestThresholdMonitor_Disabled(t *testing.T) {
	var nilMonitor *ThresholdMonitor
	assert.False(t, nilMonitor.Enabled())
	assert.Zero(t, nilMonitor.Count())
	assert.Nil(t, nilMonitor.Limits())

	m := NewThresholdMonitor(nil, nil)
	_, ok := m.Check(domain.Sample{Value: 1e9})
	assert.False(t, ok)
	assert.Empty(t, m.Limits())
}

func TestThresholdMonitor_RetainsBoundedIndexes(t *testing.T) {
	m := NewThresholdMonitor(ptr(0), nil)
	for i := 0; i < maxRetainedViolations+10; i++ {
		m.Check(domain.Sample{Index: i, Value: 1})
	}
	assert.Equal(t, maxRetainedViolations+10, m.Count())
	assert.Len(t, m.Indexes(), maxRetainedViolations)
}
