// Package intent classifies incoming messages into coarse routing intents
// using ordered keyword patterns.
package intent

import (
	"strings"
	"sync/atomic"

	"github.com/kalambet/vecino/internal/textnorm"
)

// Name is a coarse message category that decides which response source the
// orchestrator tries first.
type Name string

const (
	FAQ       Name = "faq"
	RAG       Name = "rag"
	Handoff   Name = "handoff"
	Smalltalk Name = "smalltalk"
	Unknown   Name = "unknown"
)

// Pattern matches a message when every keyword occurs as a substring of the
// normalized text. Patterns are evaluated in order; put multi-keyword
// patterns before broad single-keyword ones so a bare "2" does not capture
// "opcion 2" first.
type Pattern struct {
	Intent     Name
	Keywords   []string
	Confidence float64
}

// Matches reports whether every keyword of the pattern occurs in the
// normalized text.
func (p Pattern) Matches(normalized string) bool {
	for _, kw := range p.Keywords {
		if !strings.Contains(normalized, kw) {
			return false
		}
	}
	return len(p.Keywords) > 0
}

// Prediction is the classification result. Confidence is informational only;
// routing never thresholds on it.
type Prediction struct {
	Intent     Name
	Confidence float64
}

// Classifier scans an ordered pattern list and returns the first match.
// The pattern set can be swapped at runtime; readers always observe a
// consistent snapshot, so Classify is safe for concurrent use.
type Classifier struct {
	patterns atomic.Pointer[[]Pattern]
}

// NewClassifier creates a Classifier over the given patterns. Passing nil
// installs the built-in default set.
func NewClassifier(patterns []Pattern) *Classifier {
	c := &Classifier{}
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	c.Swap(patterns)
	return c
}

// Classify normalizes the message and returns the intent of the first
// matching pattern. Absence of a match is not an error: the result is
// {Unknown, 0.0}.
func (c *Classifier) Classify(message string) Prediction {
	normalized := textnorm.Normalize(message)
	for _, p := range *c.patterns.Load() {
		if p.Matches(normalized) {
			return Prediction{Intent: p.Intent, Confidence: p.Confidence}
		}
	}
	return Prediction{Intent: Unknown, Confidence: 0.0}
}

// Swap atomically replaces the active pattern set. In-flight classifications
// keep the snapshot they started with; subsequent calls see the new set. The
// snapshot is detached from the caller's slices, keyword lists included.
func (c *Classifier) Swap(patterns []Pattern) {
	snapshot := make([]Pattern, len(patterns))
	for i, p := range patterns {
		p.Keywords = append([]string(nil), p.Keywords...)
		snapshot[i] = p
	}
	c.patterns.Store(&snapshot)
}

// Patterns returns a copy of the active pattern set. Mutating it, keyword
// slices included, leaves the active set untouched.
func (c *Classifier) Patterns() []Pattern {
	active := *c.patterns.Load()
	out := make([]Pattern, len(active))
	for i, p := range active {
		p.Keywords = append([]string(nil), p.Keywords...)
		out[i] = p
	}
	return out
}
