package dataprocessing

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anubis/pkg/contracts/domain"
)

func readAll(t *testing.T, input string) []domain.Record {
	t.Helper()
	dec := NewDecoder(strings.NewReader(input), ',')
	var recs []domain.Record
	for {
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return recs
		}
		require.NoError(t, err)
		recs = append(recs, rec)
	}
}

func TestDecoder_Next(t *testing.T) {
	recs := readAll(t, "1.5,A\n2.5,B\r\n3.5,C")
	require.Len(t, recs, 3)

	assert.Equal(t, domain.Record{Line: 1, Raw: "1.5,A", Fields: []string{"1.5", "A"}}, recs[0])
	assert.Equal(t, domain.Record{Line: 2, Raw: "2.5,B", Fields: []string{"2.5", "B"}}, recs[1])
	// no terminator on the last line: nothing is cut off
	assert.Equal(t, domain.Record{Line: 3, Raw: "3.5,C", Fields: []string{"3.5", "C"}}, recs[2])
}

func TestDecoder_BlankLines(t *testing.T) {
	recs := readAll(t, "1\n\n  \n2\n")
	require.Len(t, recs, 4)
	assert.False(t, recs[0].Blank())
	assert.True(t, recs[1].Blank())
	assert.True(t, recs[2].Blank())
	assert.Equal(t, 4, recs[3].Line)
}

func TestDecoder_LongLine(t *testing.T) {
	long := "9.75," + strings.Repeat("x", 3*readBufferSize)
	recs := readAll(t, long+"\n1\n")
	require.Len(t, recs, 2)
	assert.Equal(t, "9.75", recs[0].Fields[0])
	assert.Len(t, recs[0].Raw, len(long))
}

func TestDecoder_ReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	dec := NewDecoder(iotest.ErrReader(boom), ',')
	_, err := dec.Next()
	assert.ErrorIs(t, err, boom)
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: "", want: 0},
		{name: "terminated lines", input: "1.5,A\n2.5,B\n3.5,C\n", want: 3},
		{name: "unterminated last line", input: "1.5,A\n2.5,B\n3.5,C", want: 3},
		{name: "single line without terminator", input: "42", want: 1},
		{name: "blank lines count", input: "\n\n\n", want: 3},
		{name: "crlf", input: "1\r\n2\r\n", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountLines(context.Background(), strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			// the count pass and the parse pass agree
			assert.Len(t, readAll(t, tt.input), tt.want)
		})
	}
}

func TestCountLines_SmallReads(t *testing.T) {
	input := "1\n2\n3\n4"
	got, err := CountLines(context.Background(), iotest.OneByteReader(strings.NewReader(input)))
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestCountLines_Errors(t *testing.T) {
	boom := errors.New("unreadable")
	_, err := CountLines(context.Background(), iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CountLines(ctx, strings.NewReader("1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
