// Package rules implements the keyword rule engine: ordered canned replies
// triggered by substring matches against the normalized message.
package rules

import (
	"strings"

	"github.com/kalambet/vecino/internal/textnorm"
)

// Source tags where a reply came from, for provenance on the wire.
type Source string

const (
	SourceFAQ      Source = "faq"
	SourceFallback Source = "fallback"
)

// Rule is a deterministic keyword-triggered reply. Keywords are stems
// matched as substrings of the normalized text. MinMatches relaxes the
// default AND semantics: a rule with MinMatches = k matches when at least k
// keywords occur. Zero means all keywords are required.
type Rule struct {
	Keywords   []string
	Response   string
	Source     Source
	MinMatches int
}

// Matches reports whether the rule fires against already-normalized text.
func (r Rule) Matches(normalized string) bool {
	if len(r.Keywords) == 0 {
		return false
	}
	required := len(r.Keywords)
	if r.MinMatches > 0 {
		required = r.MinMatches
		if required > len(r.Keywords) {
			required = len(r.Keywords)
		}
	}
	hits := 0
	for _, kw := range r.Keywords {
		if strings.Contains(normalized, kw) {
			hits++
		}
	}
	return hits >= required
}

// Engine evaluates an ordered rule list. First satisfying rule wins; there
// is no scoring. An engine with zero rules simply never matches.
type Engine struct {
	rules []Rule
}

// NewEngine creates an Engine over the given rules. Passing nil installs the
// built-in default rule set.
func NewEngine(rules []Rule) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Respond normalizes the message and returns the reply and source of the
// first matching rule. The boolean is false when no rule fires.
func (e *Engine) Respond(message string) (string, Source, bool) {
	normalized := textnorm.Normalize(message)
	for _, r := range e.rules {
		if r.Matches(normalized) {
			return r.Response, r.Source, true
		}
	}
	return "", "", false
}

// Len returns the number of effective rules.
func (e *Engine) Len() int {
	return len(e.rules)
}
