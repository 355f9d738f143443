package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "anubis/internal/errors"
)

func newValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.DiscardHandler))
}

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "voltage.csv")
	require.NoError(t, os.WriteFile(file, []byte("1.0\n"), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "regular file", path: file},
		{name: "missing file", path: filepath.Join(dir, "missing.csv"), wantErr: "does not exist"},
		{name: "directory", path: dir, wantErr: "is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator().ValidateInputFile(tt.path)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIO))
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	dir := t.TempDir()

	out := filepath.Join(dir, "plots", "run", "total_realtime.pdf")
	require.NoError(t, newValidator().ValidateOutputPath(out))
	assert.DirExists(t, filepath.Dir(out))

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	err = newValidator().ValidateOutputPath(filepath.Join(blocker, "plot.pdf"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIO))
}

func TestNewFileValidator_DefaultLogger(t *testing.T) {
	v := NewFileValidator(nil)
	assert.NotNil(t, v.logger)
}
