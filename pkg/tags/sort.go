package tags

import (
	"sort"

	"github.com/mattsolo1/grove-tasks/pkg/models"
)

// Sort orders items in place: by Rank ascending, then by non-system tag
// count descending. Remaining ties keep their incoming order.
func (v *Vocabulary) Sort(items []models.Item) {
	ranks := make([]int, len(items))
	counts := make([]int, len(items))
	idx := make([]int, len(items))
	for i := range items {
		ranks[i] = v.Rank(items[i].Tags)
		counts[i] = v.NonSystemCount(items[i].Tags)
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if ranks[ia] != ranks[ib] {
			return ranks[ia] < ranks[ib]
		}
		return counts[ia] > counts[ib]
	})

	sorted := make([]models.Item, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}
