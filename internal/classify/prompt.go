package classify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ademuri/lyrics-tools/internal/dataset"
)

// BuildPrompt assembles the text sent to the model: the profile instruction,
// then up to MaxExamples few-shot examples, then the lyrics truncated to
// MaxLyricChars.
func BuildPrompt(p *Profile, examples []dataset.ManualExample, lyrics string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(p.Prompt))

	n := len(examples)
	if n > p.MaxExamples {
		n = p.MaxExamples
	}
	for i := 0; i < n; i++ {
		ex := examples[i]
		fmt.Fprintf(&b, "\n\nExemplo %d:\nTrecho: %s\n%s: %s\nJustificativa: %s",
			i+1,
			truncate(strings.TrimSpace(ex.Lyrics), p.ExampleChars),
			p.ValueColumn(),
			strings.TrimSpace(ex.Label),
			strings.TrimSpace(ex.Justification))
	}

	b.WriteString("\n\nLyrics:\n")
	b.WriteString(truncate(lyrics, p.MaxLyricChars))
	return b.String()
}

// truncate cuts s to at most n runes. n <= 0 leaves s whole.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
