package convert

import "strings"

const (
	iconCommand = "!!icon"
	filePrefix  = "file:"
)

// Shop icon and wheel icon items.
var iconMarkers = []string{"17|0|", "16|2|"}

// StringifyIcon quotes an icon path given as "file:<path>", dropping the
// file: prefix. Built-in icon references are left alone.
func StringifyIcon(line string) string {
	start, ok := commandArgument(line, iconCommand)
	if !ok {
		start, ok = markerArgument(line, iconMarkers)
	}
	if !ok || !strings.HasPrefix(line[start:], filePrefix) {
		return line
	}

	path := start + len(filePrefix)
	end := EffectiveEnd(line, path)
	return splice(line, start, end, quote(line[path:end]))
}
