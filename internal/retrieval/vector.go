package retrieval

import (
	"math"

	"github.com/kalambet/vecino/internal/textnorm"
)

// Vector is a sparse bag-of-words representation: token → weight. Weights
// are plain term frequency (each token contributes 1/tokenCount), with no
// IDF, stemming or stopword removal. Intentionally the simplest baseline
// that still separates topically distinct entries.
type Vector map[string]float64

// Vectorize builds the sparse vector for a text. The text is normalized and
// whitespace-tokenized the same way every matcher in the pipeline does it.
// An empty or whitespace-only text yields a nil vector.
func Vectorize(text string) Vector {
	tokens := textnorm.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	total := float64(len(tokens))
	vec := make(Vector, len(tokens))
	for _, tok := range tokens {
		vec[tok] += 1.0 / total
	}
	return vec
}

// Cosine computes cosine similarity between two sparse vectors over the
// intersection of their nonzero tokens. All weights are non-negative, so the
// result lies in [0, 1]. Degenerate cases (empty vector, zero dot product,
// zero norm) score exactly 0.0.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	// Iterate over the smaller vector for the intersection.
	if len(b) < len(a) {
		a, b = b, a
	}
	dot := 0.0
	for tok, wa := range a {
		if wb, ok := b[tok]; ok {
			dot += wa * wb
		}
	}
	if dot == 0 {
		return 0.0
	}

	normA := norm(a)
	normB := norm(b)
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (normA * normB)
}

func norm(v Vector) float64 {
	sum := 0.0
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}
