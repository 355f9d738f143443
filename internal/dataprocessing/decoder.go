package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"

	"anubis/pkg/contracts/domain"
)

const readBufferSize = 64 * 1024

// Decoder reads delimiter separated records one line at a time.
// Lines may be arbitrarily long; the last line needs no terminator.
type Decoder struct {
	r     *bufio.Reader
	delim rune
	line  int
}

// NewDecoder returns a decoder reading from r and splitting fields on delim
func NewDecoder(r io.Reader, delim rune) *Decoder {
	return &Decoder{
		r:     bufio.NewReaderSize(r, readBufferSize),
		delim: delim,
	}
}

// Next returns the next record, or io.EOF once the input is exhausted
func (d *Decoder) Next() (domain.Record, error) {
	raw, err := d.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return domain.Record{}, err
	}
	if raw == "" && errors.Is(err, io.EOF) {
		return domain.Record{}, io.EOF
	}

	d.line++
	raw = TrimLineTerminator(raw)
	return domain.Record{
		Line:   d.line,
		Raw:    raw,
		Fields: Split(raw, d.delim),
	}, nil
}

// Line returns the number of records returned so far
func (d *Decoder) Line() int { return d.line }

// CountLines counts the records a Decoder would return for r without keeping
// any content: every "\n" ends a line, and trailing bytes after the last one
// form one more. It checks ctx between buffer fills.
func CountLines(ctx context.Context, r io.Reader) (int, error) {
	buf := make([]byte, readBufferSize)
	var (
		count   int
		pending bool
	)

	for {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			count += bytes.Count(chunk, []byte{'\n'})
			pending = chunk[n-1] != '\n'
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}
	}

	if pending {
		count++
	}
	return count, nil
}
