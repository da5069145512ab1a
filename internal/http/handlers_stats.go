package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/pipeline"
)

// statsKey canonicalizes a filter into a cache key, so equivalent requests
// with reordered or sentinel-valued parameters share an entry.
func statsKey(f pipeline.Filter) string {
	typ := f.Type
	if typ == pipeline.All {
		typ = ""
	}
	status := f.Status
	if status == pipeline.All {
		status = ""
	}
	var min, max string
	if f.MinAmount != nil {
		min = strconv.FormatInt(f.MinAmount.Cents, 10)
	}
	if f.MaxAmount != nil {
		max = strconv.FormatInt(f.MaxAmount.Cents, 10)
	}
	return strings.Join([]string{
		strings.ToLower(f.Search), typ, status, f.CategoryID,
		f.DateFrom.String(), f.DateTo.String(), min, max,
	}, "|")
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	cacheKey := "stats:" + statsKey(f)
	if cached, ok := s.statsCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, toStatsJSON(cached))
		return
	}

	filtered := pipeline.Apply(s.transactions.All(), f, pipeline.CategoryNamer(s.categories.Namer()))
	stats := pipeline.ComputeStats(filtered)
	s.statsCache.Set(cacheKey, stats)

	writeJSON(w, http.StatusOK, toStatsJSON(stats))
}

type summaryResponse struct {
	Period         string `json:"period"`
	Balance        string `json:"balance"`
	Income         string `json:"income"`
	Expenses       string `json:"expenses"`
	BalanceChange  string `json:"balance_change"`
	IncomeChange   string `json:"income_change"`
	ExpensesChange string `json:"expenses_change"`
}

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	period := pipeline.ComparisonPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = pipeline.ThisMonth
	}
	if !period.Valid() {
		writeError(w, fmt.Errorf("%w: unknown period %q", errBadRequest, period))
		return
	}

	now := core.Date{Time: time.Now()}
	c := pipeline.Compare(s.transactions.All(), period, now)

	writeJSON(w, http.StatusOK, summaryResponse{
		Period:         string(period),
		Balance:        c.Balance.Decimal(),
		Income:         c.Income.Decimal(),
		Expenses:       c.Expenses.Decimal(),
		BalanceChange:  c.BalanceChange,
		IncomeChange:   c.IncomeChange,
		ExpensesChange: c.ExpensesChange,
	})
}

type chartBucketJSON struct {
	Label   string `json:"label"`
	Date    string `json:"date"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

func (s *Server) handleStatsChart(w http.ResponseWriter, r *http.Request) {
	period := pipeline.ChartPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = pipeline.Month
	}
	if !period.Valid() {
		writeError(w, fmt.Errorf("%w: unknown period %q", errBadRequest, period))
		return
	}

	cacheKey := "chart:" + string(period)
	buckets, ok := s.chartCache.Get(cacheKey)
	if !ok {
		now := core.Date{Time: time.Now()}
		buckets = pipeline.TimeSeries(s.transactions.All(), period, now)
		s.chartCache.Set(cacheKey, buckets)
	}

	out := make([]chartBucketJSON, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, chartBucketJSON{
			Label:   b.Label,
			Date:    b.Date.String(),
			Income:  b.Income.Decimal(),
			Expense: b.Expense.Decimal(),
			Net:     b.Net.Decimal(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryBucketJSON struct {
	Name       string  `json:"name"`
	Amount     string  `json:"amount"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

func (s *Server) handleStatsCategories(w http.ResponseWriter, r *http.Request) {
	topN := pipeline.TopCategoriesPanel
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, fmt.Errorf("%w: top must be a positive integer", errBadRequest))
			return
		}
		topN = n
	}

	f, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	filtered := pipeline.Apply(s.transactions.All(), f, pipeline.CategoryNamer(s.categories.Namer()))
	buckets := pipeline.ExpensesByCategory(filtered, pipeline.CategoryLookup(s.categories.Lookup()), topN)

	out := make([]categoryBucketJSON, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, categoryBucketJSON{
			Name:       b.Name,
			Amount:     b.Amount.Decimal(),
			Percentage: b.Percentage,
			Color:      b.Color,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
