package selector

import (
	"cmp"
	"slices"

	"github.com/sandevgo/workbot/internal/core"
)

// chronological returns a copy of history sorted ascending by CreatedAt.
// Messages with equal timestamps keep their input order.
func chronological(history []*core.Message) []*core.Message {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b *core.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return sorted
}

// tail returns the last n messages of an already sorted slice.
func tail(sorted []*core.Message, n int) []*core.Message {
	if n <= 0 {
		return []*core.Message{}
	}
	n = min(n, len(sorted))
	return slices.Clone(sorted[len(sorted)-n:])
}

// RecencyWindow returns the chronologically last n messages, oldest first.
func RecencyWindow(history []*core.Message, n int) []*core.Message {
	return tail(chronological(history), n)
}

// TimeBasedFallback selects the last min(maxTurns, len(history)) messages by time.
// It never looks at embeddings.
func TimeBasedFallback(history []*core.Message, maxTurns int) []*core.Message {
	return RecencyWindow(history, maxTurns)
}

// inOrder keeps the members of set, in the order they appear in sorted.
func inOrder(sorted []*core.Message, set map[*core.Message]struct{}) []*core.Message {
	out := make([]*core.Message, 0, len(set))
	for _, m := range sorted {
		if _, ok := set[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

func newerFirst(a, b *core.Message) int {
	return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
}
