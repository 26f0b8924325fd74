package bot

import (
	"strings"
	"unicode/utf16"
)

// Telegram rejects messages longer than this many UTF-16 code units.
const maxMessageLength = 4096

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `\._[](){}#|!+-=*~>` + "`"

const truncationMark = '…'

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2Lookup = func() [128]bool {
	var m [128]bool
	for i := range len(mdV2SpecialChars) {
		m[mdV2SpecialChars[i]] = true
	}
	return m
}()

func mdV2Special(r rune) bool {
	return r < 128 && mdV2Lookup[r]
}

// escapedLength is the UTF-16 length of r once escaped.
func escapedLength(r rune) int {
	n := utf16.RuneLen(r)
	if n < 0 {
		n = 1
	}
	if mdV2Special(r) {
		n++
	}
	return n
}

// escapeMarkdownV2 escapes input for MarkdownV2. When the escaped text does
// not fit in limit UTF-16 units it is cut at a rune boundary, never between
// a backslash and the character it escapes, and ends with an ellipsis.
func escapeMarkdownV2(input string, limit int) string {
	total := 0
	for _, r := range input {
		total += escapedLength(r)
	}

	budget := limit
	if total > limit {
		budget = limit - utf16.RuneLen(truncationMark)
	}

	var b strings.Builder
	b.Grow(len(input) + len(input)/4)

	used := 0
	for _, r := range input {
		n := escapedLength(r)
		if used+n > budget {
			break
		}

		if mdV2Special(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
		used += n
	}

	if total > limit {
		b.WriteRune(truncationMark)
	}

	return b.String()
}
