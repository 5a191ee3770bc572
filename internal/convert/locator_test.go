package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindLastItem(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		offset int
		found  bool
	}{
		{name: "empty", line: "", offset: 0, found: false},
		{name: "shorter than trigger", line: "3|0", offset: 0, found: false},
		{name: "trigger only", line: "3|0|", offset: 0, found: false},
		{name: "plain item", line: "3|0|6|Hello", offset: 4, found: true},
		{name: "unknown item", line: "3|0|x|y", offset: 4, found: true},
		{name: "empty item stops", line: "3|0||6|x", offset: 0, found: false},
		{name: "ifs wrapper", line: "3|0|4|17|0|1|2|6|Message text", offset: 15, found: true},
		{name: "ifs wrapper without subtype pipe", line: "3|0|417|0|1|2|6|x", offset: 14, found: true},
		{name: "ifs without subtype pipe and four arguments", line: "3|0|417|a|b|c|d|6|Message text", offset: 14, found: true},
		{name: "doubled pipe after system command", line: "3|0|4||17|0|1|2|6|x", offset: 4, found: true},
		{name: "tripled pipe after system command", line: "3|0|4|||17|0|1|2|6|x", offset: 4, found: true},
		{name: "doubled pipe after wheel command", line: "3|0|16||4|0|1|5|6|x", offset: 4, found: true},
		{name: "tripled pipe after wheel command", line: "3|0|16|||4|0|1|5|6|x", offset: 4, found: true},
		{name: "ifs 18", line: "3|0|4|18|0|1|2|6|x", offset: 15, found: true},
		{name: "ifbox wrapper", line: "3|0|4|24|1|2|3|4|6|x", offset: 17, found: true},
		{name: "ifself wrapper", line: "3|0|4|25|1|6|x", offset: 11, found: true},
		{name: "ifself 27", line: "3|0|4|27|1|6|x", offset: 11, found: true},
		{name: "wheel set item", line: "3|0|16|4|0|1|5|6|x", offset: 15, found: true},
		{name: "nested wrappers", line: "3|0|4|17|1|2|3|4|25|0|6|Hi", offset: 22, found: true},
		{name: "truncated wrapper resolves to wrapper", line: "3|0|4|17|1|2", offset: 4, found: true},
		{name: "system command that is not a wrapper", line: "3|0|4|3|1", offset: 4, found: true},
		{name: "four one is not a wrapper", line: "3|0|4|1|7|6|x", offset: 4, found: true},
		{name: "wheel name item", line: "3|0|16|0|0|1|Name", offset: 4, found: true},
		{name: "shop item", line: "3|0|17|1|0|1|Title", offset: 4, found: true},
		{name: "resource item", line: "3|0|1|5", offset: 4, found: true},
		{name: "commented out statement", line: "// 3|0|6|x", offset: 0, found: false},
		{name: "comment after trigger", line: "3|0 // |6|x", offset: 0, found: false},
		{name: "non statement", line: "Flags: a, b", offset: 0, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, found := FindLastItem(tt.line)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestSkipParts(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		n      int
		offset int
		found  bool
	}{
		{name: "zero parts", s: "abc", n: 0, offset: 0, found: true},
		{name: "two parts", s: "a|b|c", n: 2, offset: 4, found: true},
		{name: "exact pipe count", s: "a|b|", n: 2, offset: 4, found: true},
		{name: "empty parts", s: "||", n: 2, offset: 2, found: true},
		{name: "too few pipes", s: "a|b", n: 2, offset: 0, found: false},
		{name: "no pipes", s: "a", n: 1, offset: 0, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, found := SkipParts(tt.s, tt.n)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.offset, offset)
		})
	}
}
