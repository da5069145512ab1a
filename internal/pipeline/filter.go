// Package pipeline derives every view the dashboard renders from the
// in-memory transaction list: filtered and paginated tables, aggregate
// statistics, period comparisons, category breakdowns and chart series.
// All functions are pure; callers re-run them on every input change.
package pipeline

import (
	"sort"
	"strings"

	"finanzas/internal/core"
)

// All is the sentinel that disables the type and status predicates.
const All = "all"

// Filter is the set of optional predicates applied to a transaction list.
// Zero-valued fields are inactive; active predicates are ANDed.
type Filter struct {
	Search     string
	Type       string // transaction type, or "all"/"" for any
	Status     string // transaction status, or "all"/"" for any
	CategoryID string
	DateFrom   core.Date
	DateTo     core.Date
	MinAmount  *core.Money // inclusive bound on the raw signed amount
	MaxAmount  *core.Money
}

// CategoryNamer resolves a category id to its display name. It may be nil,
// in which case search cannot match on category names.
type CategoryNamer func(id string) string

// Active reports whether any predicate is set.
func (f Filter) Active() bool {
	return f.Search != "" ||
		(f.Type != "" && f.Type != All) ||
		(f.Status != "" && f.Status != All) ||
		f.CategoryID != "" ||
		!f.DateFrom.IsZero() || !f.DateTo.IsZero() ||
		f.MinAmount != nil || f.MaxAmount != nil
}

// Apply returns the transactions matching every active predicate, sorted by
// date descending. Ties keep their input order. The input slice is not
// modified.
func Apply(ts []core.Transaction, f Filter, names CategoryNamer) []core.Transaction {
	out := make([]core.Transaction, 0, len(ts))
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, t := range ts {
		if !f.matches(t, search, names) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

func (f Filter) matches(t core.Transaction, search string, names CategoryNamer) bool {
	if search != "" && !matchesSearch(t, search, names) {
		return false
	}
	if f.Type != "" && f.Type != All && string(t.Type) != f.Type {
		return false
	}
	if f.Status != "" && f.Status != All && string(t.Status) != f.Status {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if !t.Date.Within(f.DateFrom, f.DateTo) {
		return false
	}
	if f.MinAmount != nil && t.Amount.Cents < f.MinAmount.Cents {
		return false
	}
	if f.MaxAmount != nil && t.Amount.Cents > f.MaxAmount.Cents {
		return false
	}
	return true
}

// matchesSearch does a case-insensitive substring match against the
// description, the id and the category name.
func matchesSearch(t core.Transaction, search string, names CategoryNamer) bool {
	if strings.Contains(strings.ToLower(t.Description), search) {
		return true
	}
	if strings.Contains(strings.ToLower(t.ID), search) {
		return true
	}
	if names != nil && t.CategoryID != "" {
		if name := names(t.CategoryID); name != "" {
			return strings.Contains(strings.ToLower(name), search)
		}
	}
	return false
}

// DateRange keeps only transactions whose date falls inside [from, to].
// Used by the export path, whose range is independent of the table filters.
func DateRange(ts []core.Transaction, from, to core.Date) []core.Transaction {
	if from.IsZero() && to.IsZero() {
		return ts
	}
	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		if t.Date.Within(from, to) {
			out = append(out, t)
		}
	}
	return out
}
