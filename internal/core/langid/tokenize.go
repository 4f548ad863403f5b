// Package langid ties the pipeline together: tokenize the input, run the
// feature channels, score with the embedding network and turn the softmax
// distribution into a language decision
package langid

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"langid/internal/core/featurize"
)

// maxInputBytes caps how much text a single query will look at. Language
// is decided long before that many bytes; the cap keeps latency flat on
// pathological inputs
const maxInputBytes = 10000

// folding casers are stateful, so they go through a pool
var foldPool = sync.Pool{
	New: func() any {
		c := cases.Fold()
		return &c
	},
}

// Tokenize case-folds the text and splits it into letter runs. Digits,
// punctuation and whitespace all act as separators; invalid UTF-8 is
// dropped before folding
func Tokenize(text string) []featurize.Token {
	if text == "" {
		return nil
	}
	text = truncate(text, maxInputBytes)
	text = strings.ToValidUTF8(text, "")

	c := foldPool.Get().(*cases.Caser)
	folded := c.String(text)
	foldPool.Put(c)

	var out []featurize.Token
	start := -1
	for i, r := range folded {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, featurize.Token{Value: folded[start:i]})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, featurize.Token{Value: folded[start:]})
	}
	return out
}

// truncate cuts s to at most n bytes without splitting a codepoint
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
