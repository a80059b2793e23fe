package selector

import (
	"github.com/sandevgo/workbot/internal/core"
)

// CollapseStats describes what duplicate collapsing did to a candidate set.
type CollapseStats struct {
	Groups  int  // duplicate groups with more than one question
	Removed int  // messages removed, questions and their answers
	Skipped bool // a candidate had no embedding, nothing was collapsed
}

// CollapseDuplicates keeps only the newest question of every group of
// near-duplicate user questions in candidates. Questions are grouped
// transitively: A~B and B~C put A, B and C in one group.
//
// The answer to a dropped question, the message right after it in history
// when that message is an assistant turn, is dropped too if it is a candidate.
// history is the full conversation the candidates were taken from, in any order.
//
// If any candidate lacks an embedding, candidates are returned unchanged.
func CollapseDuplicates(candidates, history []*core.Message, threshold float64) ([]*core.Message, CollapseStats) {
	sorted := chronological(history)

	set := make(map[*core.Message]struct{}, len(candidates))
	for _, m := range candidates {
		set[m] = struct{}{}
	}

	stats := collapse(set, sorted, threshold)
	return inOrder(sorted, set), stats
}

// collapse removes duplicate questions and their answers from set in place.
func collapse(set map[*core.Message]struct{}, sorted []*core.Message, threshold float64) CollapseStats {
	var questions []*core.Message
	for _, m := range sorted {
		if _, ok := set[m]; !ok {
			continue
		}
		if _, ok := m.Embedding.Vector(); !ok {
			return CollapseStats{Skipped: true}
		}
		if m.Role == core.RoleUser {
			questions = append(questions, m)
		}
	}

	groups := groupDuplicates(questions, threshold)

	var stats CollapseStats
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		stats.Groups++

		// questions are in chronological order, so the last member is the newest
		for _, q := range group[:len(group)-1] {
			delete(set, q)
			stats.Removed++

			if answer := answerTo(q, sorted); answer != nil {
				if _, ok := set[answer]; ok {
					delete(set, answer)
					stats.Removed++
				}
			}
		}
	}
	return stats
}

// groupDuplicates returns the connected components of the "similarity >= threshold"
// graph over questions. Members of each component keep the input order.
func groupDuplicates(questions []*core.Message, threshold float64) [][]*core.Message {
	uf := newUnionFind(len(questions))

	for i := 0; i < len(questions); i++ {
		a, _ := questions[i].Embedding.Vector()
		for j := i + 1; j < len(questions); j++ {
			b, _ := questions[j].Embedding.Vector()
			if CosineSimilarity(a, b) >= threshold {
				uf.union(i, j)
			}
		}
	}

	byRoot := make(map[int][]*core.Message)
	var roots []int
	for i, q := range questions {
		root := uf.find(i)
		if _, seen := byRoot[root]; !seen {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], q)
	}

	groups := make([][]*core.Message, 0, len(roots))
	for _, root := range roots {
		groups = append(groups, byRoot[root])
	}
	return groups
}

func answerTo(question *core.Message, sorted []*core.Message) *core.Message {
	for i, m := range sorted {
		if m != question {
			continue
		}
		if i+1 < len(sorted) && sorted[i+1].Role == core.RoleAssistant {
			return sorted[i+1]
		}
		return nil
	}
	return nil
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
