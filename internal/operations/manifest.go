package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"anubis/pkg/contracts/domain"
)

// Run statuses recorded in a manifest
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunManifest is the JSON record of one run, written next to the plot
type RunManifest struct {
	RunID     string             `json:"run_id"`
	Input     string             `json:"input"`
	Output    string             `json:"output"`
	StartTime time.Time          `json:"start_time"`
	EndTime   *time.Time         `json:"end_time,omitempty"`
	Duration  string             `json:"duration,omitempty"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	Summary   *domain.RunSummary `json:"summary,omitempty"`
}

// NewRunManifest starts a manifest for a run beginning at start
func NewRunManifest(runID, input, output string, start time.Time) *RunManifest {
	return &RunManifest{
		RunID:     runID,
		Input:     input,
		Output:    output,
		StartTime: start,
		Status:    RunStatusRunning,
	}
}

// Finish records the outcome. summary may be set even when err is not,
// for a run that parsed but failed to render.
func (m *RunManifest) Finish(end time.Time, summary *domain.RunSummary, err error) {
	m.EndTime = &end
	m.Duration = end.Sub(m.StartTime).String()
	m.Summary = summary
	if err != nil {
		m.Status = RunStatusFailed
		m.Error = err.Error()
		return
	}
	m.Status = RunStatusCompleted
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}
