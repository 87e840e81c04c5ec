// Package catalog implements the exercise picker: filtering the exercise
// catalog by free text and category, and selecting exercises to add to a plan.
package catalog

import (
	"sort"
	"strings"

	"fieldready/pt-coach/internal/domain"
)

// Query is the picker's filter input. An empty Category means no category filter.
type Query struct {
	Text     string
	Category string
}

// Filter returns the exercises whose name contains q.Text (case-insensitive)
// and, when q.Category is set, whose category equals it exactly.
// Catalog order is preserved; the result is neither deduplicated nor re-sorted.
func Filter(exercises []domain.Exercise, q Query) []domain.Exercise {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]domain.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if q.Category != "" && ex.Category != q.Category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(ex.Name), needle) {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// Categories derives the sorted set of categories present in the catalog.
// Exercises without a category do not contribute an entry.
func Categories(exercises []domain.Exercise) []string {
	seen := make(map[string]struct{}, len(exercises))
	out := make([]string, 0)
	for _, ex := range exercises {
		if ex.Category == "" {
			continue
		}
		if _, ok := seen[ex.Category]; ok {
			continue
		}
		seen[ex.Category] = struct{}{}
		out = append(out, ex.Category)
	}
	sort.Strings(out)
	return out
}
