package dataprocessing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "anubis/internal/errors"
	"anubis/pkg/contracts/domain"
)

type scanResult struct {
	outcomes []Outcome
	err      error
}

func scanAll(ctx context.Context, s *RecordScanner, input string) scanResult {
	var res scanResult
	for out, err := range s.Scan(ctx, strings.NewReader(input)) {
		if err != nil {
			res.err = err
			break
		}
		res.outcomes = append(res.outcomes, out)
	}
	return res
}

func values(outcomes []Outcome) []float64 {
	var vs []float64
	for _, o := range outcomes {
		if o.Kind == OutcomeSample {
			vs = append(vs, o.Value)
		}
	}
	return vs
}

func TestRecordScanner_ValidInput(t *testing.T) {
	s := NewRecordScanner(ScannerOptions{})
	res := scanAll(context.Background(), s, "1.5,A\n2.5,B\n3.5,C\n")

	require.NoError(t, res.err)
	require.Len(t, res.outcomes, 3)
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, values(res.outcomes))
	for i, o := range res.outcomes {
		assert.Equal(t, OutcomeSample, o.Kind)
		assert.Equal(t, i+1, o.Record.Line)
	}
}

func TestRecordScanner_SkipPolicy(t *testing.T) {
	var logs bytes.Buffer
	s := NewRecordScanner(ScannerOptions{
		Delimiter: ',',
		Policy:    domain.ErrorPolicySkip,
		Logger:    slog.New(slog.NewJSONHandler(&logs, nil)),
	})

	res := scanAll(context.Background(), s, "1.5,A\nxyz,1\n\n,,,\n2.5,B\n")
	require.NoError(t, res.err)
	require.Len(t, res.outcomes, 5)

	kinds := make([]OutcomeKind, len(res.outcomes))
	for i, o := range res.outcomes {
		kinds[i] = o.Kind
	}
	assert.Equal(t, []OutcomeKind{OutcomeSample, OutcomeSkipped, OutcomeBlank, OutcomeSkipped, OutcomeSample}, kinds)
	assert.Equal(t, []float64{1.5, 2.5}, values(res.outcomes))

	skipped := res.outcomes[1]
	require.Error(t, skipped.Err)
	assert.True(t, apperrors.IsType(skipped.Err, apperrors.ErrTypeParsing))
	assert.Contains(t, skipped.Err.Error(), "line 2")
	assert.ErrorIs(t, res.outcomes[3].Err, ErrNoFields)

	assert.Equal(t, 2, strings.Count(logs.String(), "Skipping malformed record"))
	assert.Contains(t, logs.String(), `"raw":"xyz,1"`)
}

func TestRecordScanner_FailPolicy(t *testing.T) {
	s := NewRecordScanner(ScannerOptions{Policy: domain.ErrorPolicyFail})
	res := scanAll(context.Background(), s, "1.5,A\nxyz,1\n2.5,B\n")

	require.Error(t, res.err)
	assert.Equal(t, []float64{1.5}, values(res.outcomes))

	var appErr *apperrors.AppError
	require.ErrorAs(t, res.err, &appErr)
	assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
	assert.Equal(t, 2, appErr.Context["line"])
	assert.Equal(t, "xyz,1", appErr.Context["raw"])
}

func TestRecordScanner_FailPolicyStillSkipsBlankLines(t *testing.T) {
	s := NewRecordScanner(ScannerOptions{Policy: domain.ErrorPolicyFail})
	res := scanAll(context.Background(), s, "1\n\r\n2")

	require.NoError(t, res.err)
	assert.Equal(t, []float64{1, 2}, values(res.outcomes))
	assert.Equal(t, OutcomeBlank, res.outcomes[1].Kind)

	// ideographic and no-break spaces are whitespace too
	res = scanAll(context.Background(), s, "1.0\n \u3000\u00a0\n2.0\n")
	require.NoError(t, res.err)
	assert.Equal(t, []float64{1, 2}, values(res.outcomes))
	require.Len(t, res.outcomes, 3)
	assert.Equal(t, OutcomeBlank, res.outcomes[1].Kind)
}

func TestRecordScanner_MaxSkipped(t *testing.T) {
	s := NewRecordScanner(ScannerOptions{MaxSkipped: 1, Logger: slog.New(slog.DiscardHandler)})
	res := scanAll(context.Background(), s, "a\n1\nb\n2\n")

	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, ErrTooManySkipped)
	assert.Equal(t, []float64{1}, values(res.outcomes))
}

func TestRecordScanner_StopsEarly(t *testing.T) {
	s := NewRecordScanner(ScannerOptions{})
	n := 0
	for range s.Scan(context.Background(), strings.NewReader("1\n2\n3\n")) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestRecordScanner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := scanAll(ctx, NewRecordScanner(ScannerOptions{}), "1\n2\n")
	assert.ErrorIs(t, res.err, context.Canceled)
	assert.Empty(t, res.outcomes)
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "sample", OutcomeSample.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "blank", OutcomeBlank.String())
	assert.Equal(t, "OutcomeKind(9)", OutcomeKind(9).String())
}
