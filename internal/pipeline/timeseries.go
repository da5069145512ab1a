package pipeline

import "finanzas/internal/core"

// TimeBucket is one aggregation unit of the chart series: a calendar day for
// week/month periods, a calendar month for quarter/year periods.
type TimeBucket struct {
	Label   string
	Date    core.Date
	Income  core.Money
	Expense core.Money // non-negative magnitude
	Net     core.Money // income minus expense
}

// TimeSeries buckets the transaction list for the selected chart period,
// ending at now: 7 daily buckets for week, 30 for month, 12 monthly buckets
// for quarter and year. Every bucket is emitted even when empty.
func TimeSeries(ts []core.Transaction, p ChartPeriod, now core.Date) []TimeBucket {
	var buckets []TimeBucket
	switch p {
	case Week:
		buckets = dailyBuckets(now, 7)
	case Month:
		buckets = dailyBuckets(now, 30)
	case Quarter, Year:
		buckets = monthlyBuckets(now, 12)
	default:
		return nil
	}

	daily := p == Week || p == Month
	for _, t := range ts {
		for i := range buckets {
			var in bool
			if daily {
				in = t.Date.SameDay(buckets[i].Date)
			} else {
				in = t.Date.SameMonth(buckets[i].Date)
			}
			if !in {
				continue
			}
			switch t.Type {
			case core.Income:
				buckets[i].Income.Cents += t.Amount.Abs().Cents
			case core.Expense:
				buckets[i].Expense.Cents += t.Amount.Abs().Cents
			}
			break
		}
	}
	for i := range buckets {
		buckets[i].Net.Cents = buckets[i].Income.Cents - buckets[i].Expense.Cents
	}
	return buckets
}

func dailyBuckets(now core.Date, n int) []TimeBucket {
	out := make([]TimeBucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		d := core.Date{Time: now.AddDate(0, 0, -i)}
		out = append(out, TimeBucket{
			Label: d.Format("Jan 02"),
			Date:  d,
		})
	}
	return out
}

func monthlyBuckets(now core.Date, n int) []TimeBucket {
	// Step from the first of the current month so month arithmetic cannot
	// overflow on short months.
	base := firstOfMonth(now.Time)
	out := make([]TimeBucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		d := core.Date{Time: base.AddDate(0, -i, 0)}
		out = append(out, TimeBucket{
			Label: d.Format("Jan 2006"),
			Date:  d,
		})
	}
	return out
}
