package convert

import "strings"

const messageMarker = "6|"

var messageFlagWords = map[string]bool{
	"mute":    true,
	"instant": true,
	"quiet":   true,
	"noclear": true,
}

func isMessageFlag(part string) bool {
	return strings.HasPrefix(part, "f=") || strings.HasPrefix(part, "p=") || messageFlagWords[part]
}

// StringifyMessage quotes the text of a message item. Text parts are joined
// inside the quotes; flag parts follow the literal in their original order.
//
//	6|Hello|f=1|instant|World  ->  6|"Hello|World"|f=1|instant
func StringifyMessage(line string) string {
	item, ok := FindLastItem(line)
	if !ok || !strings.HasPrefix(line[item:], messageMarker) {
		return line
	}

	start := item + len(messageMarker)
	end := EffectiveEnd(line, start)
	payload := line[start:end]
	if isQuotedMessage(payload) {
		return line
	}

	var text, flags []string
	for _, part := range strings.Split(payload, "|") {
		if isMessageFlag(part) {
			flags = append(flags, part)
		} else {
			text = append(text, part)
		}
	}

	replacement := quote(strings.Join(text, "|"))
	if len(flags) > 0 {
		replacement += "|" + strings.Join(flags, "|")
	}
	return splice(line, start, end, replacement)
}

// isQuotedMessage reports whether payload already has the converted shape: a
// quoted literal followed by nothing but flag parts.
func isQuotedMessage(payload string) bool {
	if !isQuoted(payload) {
		return false
	}
	for i := 1; i < len(payload); i++ {
		if payload[i] != '"' {
			continue
		}
		rest := payload[i+1:]
		if rest == "" {
			return true
		}
		if rest[0] == '|' && allMessageFlags(strings.Split(rest[1:], "|")) {
			return true
		}
	}
	return false
}

func allMessageFlags(parts []string) bool {
	for _, part := range parts {
		if !isMessageFlag(part) {
			return false
		}
	}
	return true
}
