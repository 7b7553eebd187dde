package menu

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FindSubmenu resolves query to an enabled submenu. Exact ids win, then exact
// labels, then the closest fuzzy label match; ties go to the shallower and
// earlier node.
func (t *Tree) FindSubmenu(query string) (*Node, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, false
	}
	if n, ok := t.Find(q); ok && n.Kind == KindSubmenu && !n.Disabled {
		return n, true
	}
	if n, ok := t.Find(strings.ToLower(q)); ok && n.Kind == KindSubmenu && !n.Disabled {
		return n, true
	}

	var candidates []*Node
	t.Walk(func(n *Node) bool {
		if n.Kind == KindSubmenu && !n.Disabled {
			candidates = append(candidates, n)
		}
		return true
	})
	if len(candidates) == 0 {
		return nil, false
	}
	labels := make([]string, len(candidates))
	for i, n := range candidates {
		labels[i] = n.Label
		if strings.EqualFold(n.Label, q) {
			return n, true
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(q, labels)
	if len(ranks) == 0 {
		return nil, false
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		di := candidates[ranks[i].OriginalIndex].Depth()
		dj := candidates[ranks[j].OriginalIndex].Depth()
		if di != dj {
			return di < dj
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	return candidates[ranks[0].OriginalIndex], true
}
