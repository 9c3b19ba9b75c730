package merge

import (
	"errors"
	"strings"
)

// ErrEmptyLine is returned by ParseLine for lines without any token.
var ErrEmptyLine = errors.New("line is empty or malformed")

// Fields is a line split into its timestamp token and data payload.
type Fields struct {
	// Timestamp is the first whitespace-delimited token. It is compared
	// byte for byte and never interpreted.
	Timestamp string

	// Data is the rest of the tokens joined by single spaces. May be empty.
	Data string
}

// ParseLine splits line on whitespace runs. Leading and trailing whitespace
// is ignored and internal runs collapse to one space in Data.
func ParseLine(line string) (Fields, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Fields{}, ErrEmptyLine
	}
	return Fields{
		Timestamp: tokens[0],
		Data:      strings.Join(tokens[1:], " "),
	}, nil
}
