package explore

import (
	_ "embed"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

//go:embed stopwords_en.txt
var englishStopwords string

// songInterjections are filler words common enough in lyrics to drown out
// everything else.
var songInterjections = []string{"oh", "yeah", "hey", "la", "na", "da", "woah", "ooh", "ah", "ha"}

// DefaultStopwords returns the English stopword list plus song
// interjections.
func DefaultStopwords() map[string]bool {
	stop := make(map[string]bool)
	for _, w := range strings.Fields(englishStopwords) {
		stop[w] = true
	}
	for _, w := range songInterjections {
		stop[w] = true
	}
	return stop
}

type WordCount struct {
	Word  string
	Count int
}

// TopWords counts whitespace-separated, lower-cased, purely alphabetic
// tokens longer than two characters that are not stopwords, and returns the
// n most frequent. Ties keep the order in which words were first seen.
func TopWords(lyrics []string, n int, stop map[string]bool) []WordCount {
	counts := make(map[string]int)
	var order []string
	for _, text := range lyrics {
		for _, token := range strings.Fields(strings.ToLower(text)) {
			if !isAlpha(token) || utf8.RuneCountInString(token) <= 2 || stop[token] {
				continue
			}
			if counts[token] == 0 {
				order = append(order, token)
			}
			counts[token]++
		}
	}

	words := make([]WordCount, len(order))
	for i, w := range order {
		words[i] = WordCount{Word: w, Count: counts[w]}
	}
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Count > words[j].Count
	})
	if n >= 0 && len(words) > n {
		words = words[:n]
	}
	return words
}

// WordLengths returns the whitespace word count of every non-empty lyric.
func WordLengths(lyrics []string) []float64 {
	lengths := make([]float64, 0, len(lyrics))
	for _, text := range lyrics {
		if text == "" {
			continue
		}
		lengths = append(lengths, float64(len(strings.Fields(text))))
	}
	return lengths
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
