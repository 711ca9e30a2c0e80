package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"Empty", "", nil},
		{"NoTrailingNewline", "hello world\nbye", []string{"hello world", "bye"}},
		{"TrailingNewlineDropped", "hello world\nbye\n", []string{"hello world", "bye"}},
		{"BlankLinesKept", "a\n\nb\n", []string{"a", "", "b"}},
		{"OnlyNewlines", "\n\n", []string{"", ""}},
		{"CRLF", "x\r\n\r\ny\r\n", []string{"x", "", "y"}},
		{"MixedEndings", "one\ntwo\r\nthree", []string{"one", "two", "three"}},
		{"CRInsideLineKept", "a\rb\r\nc", []string{"a\rb", "c"}},
		{"MultiByte", "héllo\nwörld", []string{"héllo", "wörld"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.input))
		})
	}
}

func TestSplitLinesNumbering(t *testing.T) {
	lines := SplitLines("zero\r\none\ntwo\r\nthree\nfour\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "one", lines[1])
	assert.Equal(t, "four", lines[4])
}
