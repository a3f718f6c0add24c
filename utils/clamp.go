package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field bounds, counted in characters (runes).
const (
	MaxTitleLen   = 140
	MaxAuthorLen  = 32
	MaxPostLen    = 5000
	MaxCommentLen = 2000
)

// DefaultAuthor replaces blank author names.
const DefaultAuthor = "anon"

const ellipsis = "…"

// Clamp bounds text to maxLen characters. Longer input keeps its first maxLen-1
// characters, loses trailing whitespace and gets a single ellipsis.
func Clamp(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	return strings.TrimRightFunc(string(runes[:maxLen-1]), unicode.IsSpace) + ellipsis
}

// NormalizeField trims surrounding whitespace and clamps to maxLen.
func NormalizeField(raw string, maxLen int) string {
	return Clamp(strings.TrimSpace(raw), maxLen)
}

// NormalizeAuthor is NormalizeField for author names, with blank names replaced by
// DefaultAuthor.
func NormalizeAuthor(raw string) string {
	author := strings.TrimSpace(raw)
	if author == "" {
		author = DefaultAuthor
	}
	return Clamp(author, MaxAuthorLen)
}
