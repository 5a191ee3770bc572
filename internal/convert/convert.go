// Package convert rewrites header script statements so that their
// human-readable fields become quoted string literals.
//
// Every function in this package is pure and total: malformed statements are
// returned unchanged rather than rejected.
package convert

import (
	"strings"
	"unicode"

	"wotwrh-convert/internal/textutil"
)

const commentMarker = "//"

// lineStringifiers run in this order on every line. Each one locates its
// range on the line as the previous one left it.
var lineStringifiers = []func(string) string{
	StringifyFlags,
	StringifyMessage,
	StringifyIcon,
	StringifyDisplayText,
}

// Convert converts a whole header script. Lines are separated by '\n' and the
// run of trailing newlines is reproduced exactly.
func Convert(input string) string {
	trailing := textutil.TrailingNewlines(input)
	body := input[:len(input)-trailing]
	if body == "" {
		return input
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = ConvertLine(line)
	}

	return strings.Join(lines, "\n") + strings.Repeat("\n", trailing)
}

// ConvertLine converts a single statement.
func ConvertLine(line string) string {
	for _, stringify := range lineStringifiers {
		line = stringify(line)
	}
	return line
}

// StringifyRange wraps line[start:end] in quotation marks.
func StringifyRange(line string, start, end int) string {
	return splice(line, start, end, quote(line[start:end]))
}

// EffectiveEnd returns the end of the field starting at start: the offset
// after its last non-whitespace byte before a // comment or the end of the
// line. It is never less than start.
func EffectiveEnd(line string, start int) int {
	rest := line[start:]
	if i := strings.Index(rest, commentMarker); i >= 0 {
		rest = rest[:i]
	}
	return start + len(strings.TrimRightFunc(rest, unicode.IsSpace))
}

func quote(s string) string {
	return `"` + s + `"`
}

func splice(line string, start, end int, replacement string) string {
	return line[:start] + replacement + line[end:]
}

func isQuoted(field string) bool {
	return strings.HasPrefix(field, `"`)
}

// commandArgument matches statements of the form "<command> <argument>" and
// returns the offset of the argument.
func commandArgument(line, command string) (int, bool) {
	if !strings.HasPrefix(line, command+" ") {
		return 0, false
	}
	return len(command) + 1, true
}

// markerArgumentParts is how many parts follow an item marker before the
// quoted argument (wheel and position, or uber group and id).
const markerArgumentParts = 2

// markerArgument matches a terminal item against markers and returns the
// offset of the argument that follows the marker's two leading parts.
func markerArgument(line string, markers []string) (int, bool) {
	item, ok := FindLastItem(line)
	if !ok {
		return 0, false
	}
	for _, marker := range markers {
		if !strings.HasPrefix(line[item:], marker) {
			continue
		}
		args := item + len(marker)
		offset, ok := SkipParts(line[args:EffectiveEnd(line, args)], markerArgumentParts)
		if !ok {
			return 0, false
		}
		return args + offset, true
	}
	return 0, false
}
