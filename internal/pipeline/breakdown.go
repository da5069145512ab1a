package pipeline

import (
	"math"
	"sort"

	"finanzas/internal/core"
)

// Top-N truncations used by the two consumers of the breakdown.
const (
	TopCategoriesWidget = 5 // sidebar widget
	TopCategoriesPanel  = 8 // full statistics panel
)

// chartColors is the fallback palette for categories without a stored color.
var chartColors = []string{
	"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#8884D8",
	"#82CA9D", "#FFC658", "#FF7C7C", "#8DD1E1", "#D084D0",
}

// OtherBucket collects expenses with no category reference.
const OtherBucket = "Other"

// CategoryBucket is one slice of the expense-by-category breakdown.
type CategoryBucket struct {
	Name       string
	Amount     core.Money // non-negative magnitude
	Percentage float64    // share of the summed total, one-decimal precision
	Color      string
}

// CategoryLookup resolves a category id to its record; nil lookups fall back
// to the id itself and the default palette.
type CategoryLookup func(id string) (core.Category, bool)

// ExpensesByCategory groups expense transactions by category, sums absolute
// amounts, and returns buckets sorted by amount descending with each
// bucket's share of the total. topN <= 0 disables truncation.
func ExpensesByCategory(ts []core.Transaction, lookup CategoryLookup, topN int) []CategoryBucket {
	totals := make(map[string]int64)
	order := make([]string, 0)
	for _, t := range ts {
		if t.Type != core.Expense {
			continue
		}
		key := t.CategoryID
		if key == "" {
			key = OtherBucket
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += t.Amount.Abs().Cents
	}
	if len(totals) == 0 {
		return []CategoryBucket{}
	}

	var sum int64
	for _, v := range totals {
		sum += v
	}

	buckets := make([]CategoryBucket, 0, len(totals))
	for i, key := range order {
		b := CategoryBucket{
			Name:   key,
			Amount: core.Money{Cents: totals[key]},
			Color:  chartColors[i%len(chartColors)],
		}
		if lookup != nil && key != OtherBucket {
			if cat, ok := lookup(key); ok {
				b.Name = cat.Name
				if cat.Color != "" {
					b.Color = cat.Color
				}
			}
		}
		if sum > 0 {
			pct := float64(totals[key]) / float64(sum) * 100
			b.Percentage = math.Round(pct*10) / 10
		}
		buckets = append(buckets, b)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Amount.Cents > buckets[j].Amount.Cents
	})
	if topN > 0 && len(buckets) > topN {
		buckets = buckets[:topN]
	}
	return buckets
}
