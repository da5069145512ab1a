package pipeline

import (
	"testing"

	"finanzas/internal/core"
)

func TestTimeSeriesBucketCounts(t *testing.T) {
	now := core.NewDate(2024, 3, 15)
	tests := []struct {
		period ChartPeriod
		want   int
	}{
		{Week, 7},
		{Month, 30},
		{Quarter, 12},
		{Year, 12},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got := TimeSeries(nil, tt.period, now)
			if len(got) != tt.want {
				t.Errorf("bucket count = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestTimeSeriesWeekAggregation(t *testing.T) {
	now := core.NewDate(2024, 3, 15)
	list := []core.Transaction{
		tx("today-in", core.Income, 1000, core.NewDate(2024, 3, 15)),
		tx("today-out", core.Expense, -400, core.NewDate(2024, 3, 15)),
		tx("old", core.Expense, -9999, core.NewDate(2024, 3, 1)), // outside the 7 days
	}

	got := TimeSeries(list, Week, now)
	if len(got) != 7 {
		t.Fatalf("bucket count = %d, want 7", len(got))
	}

	last := got[6]
	if !last.Date.SameDay(now) {
		t.Fatalf("last bucket dated %s, want today", last.Date)
	}
	if last.Income.Cents != 1000 || last.Expense.Cents != 400 || last.Net.Cents != 600 {
		t.Errorf("today bucket = %+v, want income 1000 expense 400 net 600", last)
	}

	var total int64
	for _, b := range got {
		total += b.Income.Cents + b.Expense.Cents
	}
	if total != 1400 {
		t.Errorf("series total = %d, out-of-window transaction leaked in", total)
	}
}

func TestTimeSeriesMonthlyBucketsFromMonthEnd(t *testing.T) {
	// stepping back from Mar 31 must land on Feb, not skip it
	now := core.NewDate(2024, 3, 31)
	list := []core.Transaction{
		tx("feb", core.Expense, -700, core.NewDate(2024, 2, 10)),
	}

	got := TimeSeries(list, Year, now)
	if len(got) != 12 {
		t.Fatalf("bucket count = %d, want 12", len(got))
	}
	if !got[11].Date.SameMonth(now) {
		t.Errorf("last bucket = %s, want March 2024", got[11].Date)
	}
	if got[10].Expense.Cents != 700 {
		t.Errorf("February bucket expense = %d, want 700", got[10].Expense.Cents)
	}
}

func TestTimeSeriesBucketsAreChronological(t *testing.T) {
	now := core.NewDate(2024, 3, 15)
	for _, p := range []ChartPeriod{Week, Month, Quarter, Year} {
		got := TimeSeries(nil, p, now)
		for i := 1; i < len(got); i++ {
			if !got[i].Date.After(got[i-1].Date.Time) {
				t.Errorf("%s: bucket %d not after bucket %d", p, i, i-1)
			}
		}
	}
}
