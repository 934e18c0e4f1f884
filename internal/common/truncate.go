package common

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Ellipsis is appended to text cut by Truncate. It counts against the budget.
const Ellipsis = "…"

// Len is the length measure used for every platform limit: the number of
// runes in s.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate returns s unchanged when it fits in budget runes. Otherwise it cuts
// s on a grapheme cluster boundary and appends Ellipsis, so that the result
// never exceeds budget and never splits a multi-rune character.
func Truncate(s string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if Len(s) <= budget {
		return s
	}

	ellipsisLen := Len(Ellipsis)
	if budget <= ellipsisLen {
		return cut(s, budget)
	}

	kept := strings.TrimRightFunc(cut(s, budget-ellipsisLen), unicode.IsSpace)
	return kept + Ellipsis
}

// cut returns the longest prefix of s made of whole grapheme clusters whose
// rune count is at most limit.
func cut(s string, limit int) string {
	var (
		b strings.Builder
		n int
	)
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		size := Len(cluster)
		if n+size > limit {
			break
		}
		b.WriteString(cluster)
		n += size
	}
	return b.String()
}
