// Package retriever ranks embedded passages against a query vector by
// cosine similarity.
package retriever

import (
	"fmt"
	"math"
	"sort"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
)

// Match pairs a passage with its similarity score.
type Match struct {
	// Passage is the matched embedded passage.
	Passage domain.EmbeddedPassage

	// Score is the cosine similarity to the query vector, in [-1, 1].
	Score float64
}

// FindSimilar returns the top limit passages from corpus ordered by
// descending cosine similarity to query. Exactly equal scores keep the
// original corpus order. An empty corpus returns an empty result, not
// an error.
//
// This is a full linear scan over the supplied corpus: the simplest
// correct baseline, O(n) per query. An approximate nearest-neighbour
// index can replace it behind the same signature.
func FindSimilar(query []float32, corpus []domain.EmbeddedPassage, limit int) ([]Match, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}
	if len(corpus) == 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, len(corpus))
	for _, p := range corpus {
		score, err := CosineSimilarity(query, p.Vector)
		if err != nil {
			return nil, fmt.Errorf("score passage %s: %w", p.ID, err)
		}
		matches = append(matches, Match{Passage: p, Score: score})
	}

	// Stable sort keeps first-seen corpus order on exact ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

// CosineSimilarity computes the normalised dot product of a and b.
// It fails when the vectors differ in dimension or either has zero
// magnitude, for which the metric is undefined.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}

	if magA == 0 || magB == 0 {
		return 0, domain.ErrZeroVector
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}
