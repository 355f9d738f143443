package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a file under dir with content
func CreateTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

// CreateVoltageFile writes one line per entry into a temporary input file
func CreateVoltageFile(t *testing.T, lines ...string) string {
	t.Helper()

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	return CreateTestFile(t, t.TempDir(), "voltage.csv", content)
}

// GenerateVoltageLines returns n well-formed records
func GenerateVoltageLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "1.0,2.0"
	}
	return lines
}
