package selector

import (
	"github.com/sandevgo/workbot/internal/core"
)

// Scored is a message with its similarity to the current query.
type Scored struct {
	Message *core.Message
	Score   float64

	// position in chronological order, used as the last tie-break
	position int
}

// RelevanceFilter returns the messages scoring at least threshold against
// queryVec, oldest first. Messages without an embedding are never relevant.
func RelevanceFilter(history []*core.Message, queryVec []float32, threshold float64) []Scored {
	return relevant(chronological(history), queryVec, threshold)
}

func relevant(sorted []*core.Message, queryVec []float32, threshold float64) []Scored {
	var out []Scored
	for i, m := range sorted {
		vec, ok := m.Embedding.Vector()
		if !ok {
			continue
		}
		score := CosineSimilarity(queryVec, vec)
		if score >= threshold {
			out = append(out, Scored{Message: m, Score: score, position: i})
		}
	}
	return out
}
