// Package textnorm provides the text normalization shared by every matcher
// in the routing pipeline. Keeping a single implementation guarantees that
// the intent classifier, the rule engine and the retrieval engine all agree
// on what a message looks like after folding.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases the text, applies canonical decomposition and drops
// combining marks, so "Atención" becomes "atencion". Digits, punctuation and
// every other character pass through untouched. The function is total and
// idempotent.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	// transform.Transformer carries state, so the chain is built per call
	// rather than shared across goroutines.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, lowered)
	if err != nil {
		return lowered
	}
	return out
}

// Tokenize normalizes the text and splits it on whitespace, dropping empty
// tokens. No stemming, no stopword removal.
func Tokenize(text string) []string {
	return strings.Fields(Normalize(text))
}
