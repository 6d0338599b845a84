package xopen

import "fmt"

// opKind distinguishes the three stream directions.
type opKind int

const (
	opRead opKind = iota
	opWrite
	opAppend
)

// fileMode is a parsed mode string.
type fileMode struct {
	op   opKind
	text bool
}

// parseMode parses a mode string: "r", "w" or "a", optionally suffixed
// with "t" (text, the default) or "b" (binary).
func parseMode(s string) (fileMode, error) {
	m := fileMode{text: true}
	base := s
	if len(s) == 2 {
		switch s[1] {
		case 't':
			base = s[:1]
		case 'b':
			m.text = false
			base = s[:1]
		}
	}
	switch base {
	case "r":
		m.op = opRead
	case "w":
		m.op = opWrite
	case "a":
		m.op = opAppend
	default:
		return fileMode{}, fmt.Errorf("xopen: mode is %q, but it must be 'r', 'rt', 'rb', 'w', 'wt', 'wb', 'a', 'at' or 'ab'", s)
	}
	return m, nil
}
