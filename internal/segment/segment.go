// Package segment splits extracted text into ordered sentences.
package segment

import (
	"strings"

	"github.com/ppiankov/intercept/internal/model"
)

// Split segments text into trimmed, non-empty sentences. A boundary falls
// immediately after a sentence-terminal punctuation mark followed by
// whitespace. Exact inter-sentence whitespace is not preserved; downstream
// matching is whitespace-insensitive and never reconstructs the input.
func Split(text string) []model.Sentence {
	var sentences []model.Sentence
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, model.Sentence{Text: s, Order: len(sentences)})
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)

		if isTerminal(r) && i+1 < len(runes) && isSpace(runes[i+1]) {
			flush()
		}
	}
	flush()

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
