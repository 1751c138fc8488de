package messages

import "strings"

type Style int

const (
	// Plain drops colour codes.
	Plain Style = iota
	// ANSI turns colour codes into terminal escapes.
	ANSI
)

const colorMarker = '&'

var ansiCodes = map[byte]string{
	'0': "30", '1': "34", '2': "32", '3': "36",
	'4': "31", '5': "35", '6': "33", '7': "37",
	'8': "90", '9': "94", 'a': "92", 'b': "96",
	'c': "91", 'd': "95", 'e': "93", 'f': "97",
	'k': "", 'l': "1", 'm': "9", 'n': "4", 'o': "3", 'r': "0",
}

// Render rewrites "&<code>" sequences. A marker not followed by a known
// code is left as is.
func Render(text string, style Style) string {
	var b strings.Builder
	b.Grow(len(text))
	colored := false

	for i := 0; i < len(text); i++ {
		if text[i] == colorMarker && i+1 < len(text) {
			code, ok := ansiCodes[lower(text[i+1])]
			if ok {
				if style == ANSI && code != "" {
					b.WriteString("\x1b[" + code + "m")
					colored = true
				}
				i++
				continue
			}
		}
		b.WriteByte(text[i])
	}

	if colored {
		b.WriteString("\x1b[0m")
	}
	return b.String()
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
