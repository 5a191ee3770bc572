package convert

import (
	"strings"
	"unicode"
)

const flagsPrefix = "Flags:"

// StringifyFlags quotes each comma-separated value of a "Flags:" line, empty
// values included. Whitespace around a value and the commas themselves stay
// where they are.
func StringifyFlags(line string) string {
	if !strings.HasPrefix(line, flagsPrefix) {
		return line
	}

	start := len(flagsPrefix)
	for {
		limit := EffectiveEnd(line, start)
		start += len(line[start:limit]) - len(strings.TrimLeftFunc(line[start:limit], unicode.IsSpace))

		end, more := limit, false
		if i := strings.IndexByte(line[start:limit], ','); i >= 0 {
			end, more = start+i, true
		}

		valueEnd := start + len(strings.TrimRightFunc(line[start:end], unicode.IsSpace))
		next := end + 1
		if !isQuoted(line[start:valueEnd]) {
			line = StringifyRange(line, start, valueEnd)
			next += 2
		}

		if !more {
			return line
		}
		start = next
	}
}
