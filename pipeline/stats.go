package pipeline

import (
	"strings"
	"unicode/utf8"
)

// queryListStats derives per-item statistics over the all_queries list:
// character length, comma count, and word count per item.
func queryListStats(queries []string) (chars, commas, words []int) {
	chars = make([]int, len(queries))
	commas = make([]int, len(queries))
	words = make([]int, len(queries))
	for i, q := range queries {
		chars[i] = utf8.RuneCountInString(q)
		commas[i] = strings.Count(strings.TrimSpace(q), ",")
		words[i] = wordCount(q)
	}
	return chars, commas, words
}

// wordCount counts words in a query variant. An item containing neither a
// space nor a comma counts as exactly one word; otherwise commas are replaced
// with spaces and the item is split on whitespace.
func wordCount(q string) int {
	if !strings.ContainsAny(q, " ,") {
		return 1
	}
	fields := strings.Fields(strings.ReplaceAll(strings.TrimSpace(q), ",", " "))
	if len(fields) == 0 {
		return 1
	}
	return len(fields)
}
