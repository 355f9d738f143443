package dataprocessing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split breaks line on delim and returns the trimmed, non-empty fields in order.
// Consecutive delimiters collapse and a trailing delimiter adds nothing, so
// "1,,2," gives ["1" "2"] and a line of only delimiters gives no fields.
func Split(line string, delim rune) []string {
	var (
		fields []string
		start  = 0
	)

	emit := func(end int) {
		if f := strings.TrimFunc(line[start:end], unicode.IsSpace); f != "" {
			fields = append(fields, f)
		}
	}

	for i := 0; i < len(line); {
		c, width := utf8.DecodeRuneInString(line[i:])
		if c == delim {
			emit(i)
			start = i + width
		}
		i += width
	}
	emit(len(line))

	return fields
}

// TrimLineTerminator removes one trailing "\n" and then one trailing "\r",
// each only if present. A last line without a terminator is left intact.
func TrimLineTerminator(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
