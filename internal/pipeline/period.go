package pipeline

import (
	"time"

	"finanzas/internal/core"
)

// ComparisonPeriod names a dashboard comparison window. It is deliberately a
// distinct type from ChartPeriod: the two vocabularies come from different
// views and do not overlap.
type ComparisonPeriod string

const (
	ThisMonth    ComparisonPeriod = "this-month"
	LastMonth    ComparisonPeriod = "last-month"
	ThisYear     ComparisonPeriod = "this-year"
	Last12Months ComparisonPeriod = "last-12-months"
)

func (p ComparisonPeriod) Valid() bool {
	switch p {
	case ThisMonth, LastMonth, ThisYear, Last12Months:
		return true
	}
	return false
}

// Window returns the inclusive date bounds of the current period relative to
// now. Last12Months spans the 12 calendar months ending with now's month.
func (p ComparisonPeriod) Window(now core.Date) (from, to core.Date) {
	y, m, _ := now.Date()
	switch p {
	case ThisMonth:
		return monthBounds(y, m)
	case LastMonth:
		return monthBounds(prevMonth(y, m))
	case ThisYear:
		return core.NewDate(y, 1, 1), core.NewDate(y, 12, 31)
	case Last12Months:
		base := firstOfMonth(now.Time)
		from = core.Date{Time: base.AddDate(0, -11, 0)}
		_, to = monthBounds(y, m)
		return from, to
	}
	return core.Date{}, core.Date{}
}

// PreviousWindow returns the calendar period immediately preceding the
// current one, at the same granularity.
func (p ComparisonPeriod) PreviousWindow(now core.Date) (from, to core.Date) {
	y, m, _ := now.Date()
	switch p {
	case ThisMonth:
		return monthBounds(prevMonth(y, m))
	case LastMonth:
		py, pm := prevMonth(y, m)
		return monthBounds(prevMonth(py, pm))
	case ThisYear:
		return core.NewDate(y-1, 1, 1), core.NewDate(y-1, 12, 31)
	case Last12Months:
		base := firstOfMonth(now.Time)
		from = core.Date{Time: base.AddDate(0, -23, 0)}
		to = lastOfMonth(base.AddDate(0, -12, 0))
		return from, to
	}
	return core.Date{}, core.Date{}
}

// ChartPeriod selects the bucketing of the statistics charts.
type ChartPeriod string

const (
	Week    ChartPeriod = "week"
	Month   ChartPeriod = "month"
	Quarter ChartPeriod = "quarter"
	Year    ChartPeriod = "year"
)

func (p ChartPeriod) Valid() bool {
	switch p {
	case Week, Month, Quarter, Year:
		return true
	}
	return false
}

func monthBounds(y int, m time.Month) (core.Date, core.Date) {
	from := core.NewDate(y, int(m), 1)
	to := core.Date{Time: from.AddDate(0, 1, -1)}
	return from, to
}

func prevMonth(y int, m time.Month) (int, time.Month) {
	if m == time.January {
		return y - 1, time.December
	}
	return y, m - 1
}

func firstOfMonth(t time.Time) core.Date {
	return core.NewDate(t.Year(), int(t.Month()), 1)
}

func lastOfMonth(t time.Time) core.Date {
	first := firstOfMonth(t)
	return core.Date{Time: first.AddDate(0, 1, -1)}
}
