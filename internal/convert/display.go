package convert

var displayCommands = []string{"!!name", "!!display", "!!description"}

// Wheel name, wheel description, shop title and shop description items.
var displayMarkers = []string{"16|0|", "16|1|", "17|1|", "17|2|"}

// StringifyDisplayText quotes names, titles and descriptions shown to the
// player, up to a trailing comment.
func StringifyDisplayText(line string) string {
	start, ok := displayStart(line)
	if !ok {
		return line
	}

	end := EffectiveEnd(line, start)
	if isQuoted(line[start:end]) {
		return line
	}
	return StringifyRange(line, start, end)
}

func displayStart(line string) (int, bool) {
	for _, command := range displayCommands {
		if start, ok := commandArgument(line, command); ok {
			return start, true
		}
	}
	return markerArgument(line, displayMarkers)
}
