package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Defaults used when the caller passes a zero value.
const (
	DefaultWordsPerMinute = 200
	DefaultMaxDescription = 200
	DefaultPlaceholder    = "暂无描述"

	minSentenceRunes = 20
	ellipsis         = "…"
)

// Ordered markdown stripping rules. Heading lines are dropped whole so that
// a title never leaks into the synopsis.
var stripRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?m)^#{1,6}[ \t]+[^\n]*`), ""},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.+?)\*`), "$1"},
	{regexp.MustCompile("`(.+?)`"), "$1"},
	{regexp.MustCompile(`\[(.+?)\]\(.+?\)`), "$1"},
	{regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*>[ \t]*`), ""},
	{regexp.MustCompile(`[\s\p{Z}]+`), " "},
}

// PlainText strips markdown syntax from body and collapses whitespace.
func PlainText(body string) string {
	out := body
	for _, r := range stripRules {
		out = r.re.ReplaceAllString(out, r.repl)
	}
	return strings.TrimSpace(out)
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '。', '.', '!', '?':
		return true
	}
	return false
}

// ExtractDescription returns the first sentence of body longer than 20 runes,
// or the whole cleaned text when none qualifies, truncated to maxRunes with an
// ellipsis. An empty body yields placeholder.
func ExtractDescription(body string, maxRunes int, placeholder string) string {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxDescription
	}
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	clean := PlainText(body)

	var desc string
	for _, sentence := range strings.FieldsFunc(clean, isSentenceEnd) {
		s := strings.TrimSpace(sentence)
		if utf8.RuneCountInString(s) > minSentenceRunes {
			desc = s
			break
		}
	}
	if desc == "" {
		desc = clean
	}

	if utf8.RuneCountInString(desc) > maxRunes {
		desc = strings.TrimSpace(string([]rune(desc)[:maxRunes])) + ellipsis
	}
	if desc == "" {
		return placeholder
	}
	return desc
}

// CountTokens counts Han ideographs and runs of ASCII letters; both weigh the
// same when estimating reading time.
func CountTokens(body string) int {
	n := 0
	inWord := false
	for _, r := range body {
		switch {
		case unicode.Is(unicode.Han, r):
			n++
			inWord = false
		case r < utf8.RuneSelf && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			if !inWord {
				n++
				inWord = true
			}
		default:
			inWord = false
		}
	}
	return n
}

// ReadTime formats the estimated reading time of body as "N min", rounding up.
func ReadTime(body string, wordsPerMinute int) string {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	tokens := CountTokens(body)
	minutes := (tokens + wordsPerMinute - 1) / wordsPerMinute
	return fmt.Sprintf("%d min", minutes)
}
