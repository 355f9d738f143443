package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		delim rune
		want  []string
	}{
		{name: "value and timestamp", line: "1.5,A", delim: ',', want: []string{"1.5", "A"}},
		{name: "consecutive and trailing delimiters collapse", line: "1,,2,", delim: ',', want: []string{"1", "2"}},
		{name: "leading delimiters", line: ",,,3", delim: ',', want: []string{"3"}},
		{name: "only delimiters", line: ",,,,", delim: ',', want: nil},
		{name: "empty line", line: "", delim: ',', want: nil},
		{name: "no delimiter", line: "0.00015", delim: ',', want: []string{"0.00015"}},
		{name: "fields are trimmed", line: " 2.5 ,\t[2017 8 30 12 1]  ", delim: ',', want: []string{"2.5", "[2017 8 30 12 1]"}},
		{name: "whitespace only fields drop", line: "4, ,5", delim: ',', want: []string{"4", "5"}},
		{name: "other delimiter", line: "7;8;;9", delim: ';', want: []string{"7", "8", "9"}},
		{name: "multibyte delimiter", line: "1§2§§3", delim: '§', want: []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.line, tt.delim)
			assert.Equal(t, tt.want, got)
			for _, f := range got {
				assert.NotEmpty(t, f)
			}
		})
	}
}

func TestTrimLineTerminator(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1.5,A\n", want: "1.5,A"},
		{in: "1.5,A\r\n", want: "1.5,A"},
		{in: "1.5,A", want: "1.5,A"},
		{in: "1.5,A\r", want: "1.5,A"},
		{in: "\n", want: ""},
		{in: "", want: ""},
		{in: "x\n\n", want: "x\n"},
		{in: "3", want: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimLineTerminator(tt.in))
		})
	}
}
