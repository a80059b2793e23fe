package selector

import (
	"cmp"
	"slices"

	"github.com/sandevgo/workbot/internal/core"
)

// Fuse unions the recency and relevance tiers and enforces maxTurns.
//
// Recency members are never dropped. When the union is over the cap, relevance
// members are dropped lowest priority first: priority is score descending, then
// newer CreatedAt, then later position in the history. The result is sorted
// ascending by CreatedAt.
func Fuse(recent []*core.Message, relevant []Scored, maxTurns int) []*core.Message {
	set := fuse(recent, relevant, maxTurns)

	out := make([]*core.Message, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b *core.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

func fuse(recent []*core.Message, relevant []Scored, maxTurns int) map[*core.Message]struct{} {
	set := make(map[*core.Message]struct{}, maxTurns)
	for _, m := range recent {
		set[m] = struct{}{}
	}

	extras := make([]Scored, 0, len(relevant))
	for _, s := range relevant {
		if _, protected := set[s.Message]; protected {
			continue
		}
		extras = append(extras, s)
	}

	slices.SortStableFunc(extras, byPriority)

	budget := max(maxTurns-len(set), 0)
	for _, s := range extras[:min(budget, len(extras))] {
		set[s.Message] = struct{}{}
	}
	return set
}

func byPriority(a, b Scored) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := newerFirst(a.Message, b.Message); c != 0 {
		return c
	}
	return cmp.Compare(b.position, a.position)
}
