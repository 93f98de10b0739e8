package ical

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxLineOctets = 75

// fold wraps writer so every content line ends with CRLF and lines longer
// than 75 octets continue on the next line after a single space. Lines are
// never split inside a UTF-8 sequence.
func fold(writer func(string)) func(string) {
	return func(line string) {
		for len(line) > maxLineOctets {
			cut := maxLineOctets
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			writer(line[:cut] + "\r\n")
			line = " " + line[cut:]
		}
		writer(line + "\r\n")
	}
}

// TEXT values escape backslashes, separators and newlines.
func escapeText(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\r\n", `\n`,
		"\n", `\n`,
	).Replace(s)
}

func quoteParam(s string) string {
	s = strings.NewReplacer(`"`, "'", "\r", "", "\n", " ").Replace(s)
	return `"` + s + `"`
}

// YYYYMMDDTHHMMSSZ
func unixToDatetime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("20060102T150405Z")
}
