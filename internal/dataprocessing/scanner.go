package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	apperrors "anubis/internal/errors"
	"anubis/pkg/contracts/domain"
)

// ErrTooManySkipped is returned once the skip policy's budget is exhausted
var ErrTooManySkipped = errors.New("too many malformed records")

// OutcomeKind tells what happened to a record
type OutcomeKind int

const (
	// OutcomeSample means the record produced a value
	OutcomeSample OutcomeKind = iota
	// OutcomeSkipped means the record was malformed and dropped
	OutcomeSkipped
	// OutcomeBlank means the record held only whitespace
	OutcomeBlank
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSample:
		return "sample"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeBlank:
		return "blank"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of reading one record
type Outcome struct {
	Kind   OutcomeKind
	Record domain.Record
	// Value is set when Kind is OutcomeSample
	Value float64
	// Err is the parse error when Kind is OutcomeSkipped
	Err error
}

// ScannerOptions configures a RecordScanner
type ScannerOptions struct {
	Delimiter rune
	Policy    domain.ErrorPolicy
	// MaxSkipped aborts a skip-policy scan once more records than this have
	// been dropped. Zero means no limit.
	MaxSkipped int
	Logger     *slog.Logger
}

// RecordScanner turns an input stream into a lazy sequence of outcomes,
// applying the error policy to malformed records.
type RecordScanner struct {
	opts ScannerOptions
}

// NewRecordScanner creates a scanner. A zero delimiter means comma and an
// empty policy means skip.
func NewRecordScanner(opts ScannerOptions) *RecordScanner {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Policy == "" {
		opts.Policy = domain.ErrorPolicySkip
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &RecordScanner{opts: opts}
}

// Scan yields one outcome per input line. Iteration stops after the first
// non-nil error: a read failure, a cancelled ctx, a malformed record under
// the fail policy, or an exhausted skip budget.
func (s *RecordScanner) Scan(ctx context.Context, r io.Reader) iter.Seq2[Outcome, error] {
	return func(yield func(Outcome, error) bool) {
		dec := NewDecoder(r, s.opts.Delimiter)
		skipped := 0

		for {
			if err := ctx.Err(); err != nil {
				yield(Outcome{}, err)
				return
			}

			rec, err := dec.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Outcome{}, apperrors.NewIOError("failed to read input", err).WithContext("line", dec.Line()+1))
				return
			}

			if rec.Blank() {
				if !yield(Outcome{Kind: OutcomeBlank, Record: rec}, nil) {
					return
				}
				continue
			}

			value, err := ParseValue(rec.Fields)
			if err != nil {
				err = annotate(err, rec)
				if s.opts.Policy == domain.ErrorPolicyFail {
					yield(Outcome{Kind: OutcomeSkipped, Record: rec, Err: err}, err)
					return
				}

				skipped++
				s.opts.Logger.WarnContext(ctx, "Skipping malformed record",
					slog.Int("line", rec.Line),
					slog.String("raw", rec.Raw),
					slog.String("error", err.Error()))

				if s.opts.MaxSkipped > 0 && skipped > s.opts.MaxSkipped {
					limitErr := apperrors.NewParsingError(
						fmt.Sprintf("skipped %d malformed records, limit is %d", skipped, s.opts.MaxSkipped),
						ErrTooManySkipped).WithContext("line", rec.Line)
					yield(Outcome{Kind: OutcomeSkipped, Record: rec, Err: err}, limitErr)
					return
				}

				if !yield(Outcome{Kind: OutcomeSkipped, Record: rec, Err: err}, nil) {
					return
				}
				continue
			}

			if !yield(Outcome{Kind: OutcomeSample, Record: rec, Value: value}, nil) {
				return
			}
		}
	}
}

// annotate prefixes a parse error with the line it came from
func annotate(err error, rec domain.Record) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		appErr.Message = fmt.Sprintf("line %d: %s", rec.Line, appErr.Message)
		appErr.WithContext("line", rec.Line).WithContext("raw", rec.Raw)
	}
	return err
}
