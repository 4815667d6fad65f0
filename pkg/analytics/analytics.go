// Package analytics computes word-frequency statistics over normalized
// prose, feeding the top-keywords section of the run summary.
package analytics

import (
	"fmt"
	"sort"
	"strings"
)

type Analytics struct{}

// commonWords are frequent English words skipped during frequency analysis.
var commonWords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"because": {}, "been": {}, "before": {}, "but": {}, "by": {},
	"can": {}, "cannot": {}, "could": {}, "do": {}, "does": {},
	"each": {}, "for": {}, "from": {}, "has": {}, "have": {}, "how": {},
	"if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"like": {}, "may": {}, "more": {}, "most": {}, "must": {}, "no": {},
	"not": {}, "of": {}, "on": {}, "one": {}, "only": {}, "or": {},
	"other": {}, "our": {}, "out": {}, "over": {}, "same": {},
	"should": {}, "so": {}, "some": {}, "such": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "to": {}, "under": {}, "up": {}, "use": {},
	"used": {}, "using": {}, "was": {}, "we": {}, "well": {},
	"were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "will": {}, "with": {}, "within": {}, "without": {},
	"would": {}, "you": {}, "your": {},
}

// WordFrequency counts non-stopword tokens in text. Tokens are lowercased
// and stripped of surrounding punctuation.
func (a *Analytics) WordFrequency(text string) map[string]int {
	words := strings.Fields(strings.ToLower(text))
	frequencies := make(map[string]int)

	for _, word := range words {
		word = strings.TrimFunc(word, func(r rune) bool {
			return ('a' > r || r > 'z') && ('0' > r || r > '9')
		})
		if _, exists := commonWords[word]; exists || word == "" {
			continue
		}
		frequencies[word]++
	}

	return frequencies
}

// Merge aggregates per-document frequency maps into one.
func Merge(intermediate []map[string]int) map[string]int {
	final := make(map[string]int)
	for _, counts := range intermediate {
		for word, count := range counts {
			final[word] += count
		}
	}
	return final
}

// isValidKeyword filters obviously broken tokens: trailing operators and
// unmatched delimiters or quotes that slipped through tokenization.
func isValidKeyword(word string) bool {
	if strings.HasSuffix(word, ":") || strings.HasSuffix(word, "=") {
		return false
	}
	if strings.Contains(word, "(") != strings.Contains(word, ")") {
		return false
	}
	if strings.Contains(word, "[") != strings.Contains(word, "]") {
		return false
	}
	if strings.Count(word, `"`)%2 != 0 || strings.Count(word, "'")%2 != 0 {
		return false
	}
	return true
}

// TopKeywords returns the n most frequent keywords as "word:count" strings,
// sorted by count descending with ties broken alphabetically so output is
// stable across runs.
func TopKeywords(wordCounts map[string]int, n int) []string {
	type kv struct {
		Key   string
		Value int
	}

	var ss []kv
	for k, v := range wordCounts {
		if isValidKeyword(k) {
			ss = append(ss, kv{k, v})
		}
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	if len(ss) > n {
		ss = ss[:n]
	}
	keywords := make([]string, len(ss))
	for i, item := range ss {
		keywords[i] = fmt.Sprintf("%s:%d", item.Key, item.Value)
	}
	return keywords
}
