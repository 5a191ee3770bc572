package convert

import "strings"

// scanState tells FindLastItem what the next non-skipped byte means.
type scanState int

const (
	// stateItem expects the first byte of a new item.
	stateItem scanState = iota
	// stateItem1 follows a leading '1' and expects the '6' of a wheel command.
	stateItem1
	// stateCommand follows a leading '4' (system command).
	stateCommand
	// stateCommandPipe follows "4|" and expects the subtype's first digit.
	stateCommandPipe
	// stateCommand1 expects the second digit of 4|17, 4|18 or 4|19.
	stateCommand1
	// stateCommand2 expects the second digit of 4|24 through 4|27.
	stateCommand2
	// stateWheelCommand follows 16 and expects the wheel subcommand.
	stateWheelCommand
	// stateWheelPipe follows "16|" and expects the wheel subcommand.
	stateWheelPipe
)

// triggerParts is the fixed width of the trigger that opens every statement.
const triggerParts = 2

// Number of pipes a wrapper command spans before its nested item begins.
const (
	skipIfs       = 4 // 4|17, 4|18, 4|19
	skipIfBox     = 5 // 4|24
	skipIfSelf    = 2 // 4|25, 4|26, 4|27
	skipWheelItem = 4 // 16|4
)

// FindLastItem returns the offset of the first byte of the statement's
// terminal item, the one left after every wrapper command has been unwrapped.
//
// The boolean is false when no item after the trigger was reached. Callers
// must not treat offset 0 as an item: it belongs to the trigger.
//
// Scanning stops at the first byte that does not fit the current state, so a
// truncated wrapper resolves to the wrapper itself. Bytes after a // comment
// marker are never scanned.
func FindLastItem(line string) (int, bool) {
	end := contentEnd(line)
	skip := triggerParts
	state := stateItem
	last, found := 0, false

scan:
	for i := 0; i < end; i++ {
		c := line[i]

		if skip > 0 {
			if c == '|' {
				skip--
				if skip == 0 {
					state = stateItem
				}
			}
			continue
		}

		switch state {
		case stateItem:
			if c == '|' {
				break scan
			}
			last, found = i, true
			switch c {
			case '1':
				state = stateItem1
			case '4':
				state = stateCommand
			default:
				break scan
			}

		case stateItem1:
			if c != '6' {
				break scan
			}
			state = stateWheelCommand

		case stateCommand, stateCommandPipe:
			switch c {
			case '|':
				if state == stateCommandPipe {
					break scan
				}
				state = stateCommandPipe
			case '1':
				state = stateCommand1
			case '2':
				state = stateCommand2
			default:
				break scan
			}

		case stateCommand1:
			switch c {
			case '7', '8', '9':
				skip = skipIfs
			default:
				break scan
			}

		case stateCommand2:
			switch c {
			case '4':
				skip = skipIfBox
			case '5', '6', '7':
				skip = skipIfSelf
			default:
				break scan
			}

		case stateWheelCommand, stateWheelPipe:
			switch c {
			case '|':
				if state == stateWheelPipe {
					break scan
				}
				state = stateWheelPipe
			case '4':
				skip = skipWheelItem
			default:
				break scan
			}
		}
	}

	return last, found
}

// SkipParts returns the offset just past the n-th '|' in s.
func SkipParts(s string, n int) (int, bool) {
	offset := 0
	for ; n > 0; n-- {
		i := strings.IndexByte(s[offset:], '|')
		if i < 0 {
			return 0, false
		}
		offset += i + 1
	}
	return offset, true
}

// contentEnd is the offset of the line's comment marker, or its length.
func contentEnd(line string) int {
	if i := strings.Index(line, commentMarker); i >= 0 {
		return i
	}
	return len(line)
}
