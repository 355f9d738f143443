package domain

import (
	"strings"
	"unicode"
)

// Record is one raw input line
type Record struct {
	// Line is the 1-based line number in the input file
	Line int
	// Raw is the line text with its terminator removed
	Raw string
	// Fields are the delimiter separated, trimmed, non-empty tokens of Raw
	Fields []string
}

// Blank reports whether the record holds nothing but whitespace
func (r Record) Blank() bool {
	return strings.TrimFunc(r.Raw, unicode.IsSpace) == ""
}

// ErrorPolicy decides what happens to a record whose value cannot be parsed
type ErrorPolicy string

const (
	// ErrorPolicySkip drops the record, logs it and keeps going
	ErrorPolicySkip ErrorPolicy = "skip"
	// ErrorPolicyFail aborts the run on the first malformed record
	ErrorPolicyFail ErrorPolicy = "fail"
)

// Valid reports whether p is a known policy
func (p ErrorPolicy) Valid() bool {
	return p == ErrorPolicySkip || p == ErrorPolicyFail
}

// ProgressSnapshot is the transient state handed to a progress reporter
type ProgressSnapshot struct {
	ElapsedSeconds float64
	Processed      int
	Total          int
}
