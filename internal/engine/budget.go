package engine

import (
	"sort"

	"github.com/alexanderramin/pilotage/internal/domain"
)

// DuplicateBudgetLines returns the rows to remove so that each exact
// duplicate group keeps only its oldest member.
func DuplicateBudgetLines(lines []*domain.BudgetLineItem) []*domain.BudgetLineItem {
	sorted := append([]*domain.BudgetLineItem(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	kept := make(map[string]bool)
	var dupes []*domain.BudgetLineItem
	for _, l := range sorted {
		key := l.DedupeKey()
		if kept[key] {
			dupes = append(dupes, l)
			continue
		}
		kept[key] = true
	}
	return dupes
}
