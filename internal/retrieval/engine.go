// Package retrieval implements the lexical retrieval engine: cosine
// similarity search over precomputed bag-of-words vectors, without learned
// embeddings. A production-scale deployment would swap in an indexed vector
// store behind the same Search contract.
package retrieval

import "strings"

// Entry is one knowledge-base item. Entries are immutable once loaded; the
// engine only derives vectors from them.
type Entry struct {
	UID      string   `json:"uid"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
}

// Index holds knowledge entries together with their precomputed vectors.
// Vectorization happens once per Index, not per query, and the result is
// read-only afterwards, so an Index is safe to share across any number of
// Engines and goroutines.
type Index struct {
	entries []Entry
	vectors []Vector
}

// NewIndex vectorizes the given entries. Each entry is embedded from its
// question concatenated with its tags; tags carry extra recall signal.
func NewIndex(entries []Entry) *Index {
	ix := &Index{
		entries: make([]Entry, len(entries)),
		vectors: make([]Vector, len(entries)),
	}
	copy(ix.entries, entries)
	for i, e := range ix.entries {
		ix.vectors[i] = Vectorize(strings.Join(append([]string{e.Question}, e.Tags...), " "))
	}
	return ix
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Engine wraps an Index with a similarity threshold. Construction is cheap:
// re-wrapping the same Index under a different threshold never re-tokenizes.
type Engine struct {
	index     *Index
	threshold float64
}

// NewEngine creates a search engine over the index. The threshold is clamped
// into [0, 1]; values below it never produce a match.
func NewEngine(index *Index, threshold float64) *Engine {
	threshold = min(max(threshold, 0.0), 1.0)
	return &Engine{index: index, threshold: threshold}
}

// Threshold returns the clamped similarity threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Search vectorizes the message, linearly scans all entries for the maximum
// cosine score and returns that entry's answer. Ties break toward the first
// entry in insertion order. The boolean is false when the query has no
// tokens, no entry scores above zero, or the best score is strictly below
// the threshold.
func (e *Engine) Search(message string) (string, bool) {
	query := Vectorize(message)
	if len(query) == 0 {
		// No tokens, no signal to compare.
		return "", false
	}

	bestScore := 0.0
	bestAnswer := ""
	found := false
	for i, vec := range e.index.vectors {
		score := Cosine(query, vec)
		if score > bestScore {
			bestScore = score
			bestAnswer = e.index.entries[i].Answer
			found = true
		}
	}

	if !found || bestScore < e.threshold {
		return "", false
	}
	return bestAnswer, true
}
