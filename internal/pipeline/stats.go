package pipeline

import (
	"fmt"

	"finanzas/internal/core"
)

// Stats are the aggregate figures shown on the statistics panel. Income and
// expenses are non-negative magnitudes; Balance is income minus expenses.
type Stats struct {
	TotalIncome         core.Money
	TotalExpenses       core.Money
	Balance             core.Money
	TransactionCount    int
	AverageTransaction  core.Money
	PendingTransactions int
}

// ComputeStats aggregates a transaction list. Transfers count toward the
// transaction count and average but not toward income or expenses.
func ComputeStats(ts []core.Transaction) Stats {
	var s Stats
	var sum int64
	for _, t := range ts {
		switch t.Type {
		case core.Income:
			s.TotalIncome.Cents += t.Amount.Abs().Cents
		case core.Expense:
			s.TotalExpenses.Cents += t.Amount.Abs().Cents
		}
		sum += t.Amount.Cents
		if t.Status == core.StatusPending {
			s.PendingTransactions++
		}
	}
	s.Balance.Cents = s.TotalIncome.Cents - s.TotalExpenses.Cents
	s.TransactionCount = len(ts)
	if len(ts) > 0 {
		s.AverageTransaction.Cents = sum / int64(len(ts))
	}
	return s
}

// PercentChange formats the period-over-period change between two values as
// a signed percentage with one decimal. A zero previous value yields
// "+100.0%" when the current value is positive and "0.0%" otherwise.
func PercentChange(current, previous core.Money) string {
	if previous.Cents == 0 {
		if current.Cents > 0 {
			return "+100.0%"
		}
		return "0.0%"
	}
	change := (current.Float() - previous.Float()) / previous.Float() * 100
	if change >= 0 {
		return fmt.Sprintf("+%.1f%%", change)
	}
	return fmt.Sprintf("%.1f%%", change)
}

// Comparison pairs a current-period stat with its change against the
// immediately preceding period of the same granularity.
type Comparison struct {
	Balance        core.Money
	Income         core.Money
	Expenses       core.Money
	BalanceChange  string
	IncomeChange   string
	ExpensesChange string
}

// Compare derives the dashboard header figures for the selected comparison
// period: totals for the current window and percentage changes against the
// previous window.
func Compare(ts []core.Transaction, p ComparisonPeriod, now core.Date) Comparison {
	curFrom, curTo := p.Window(now)
	prevFrom, prevTo := p.PreviousWindow(now)

	cur := ComputeStats(DateRange(ts, curFrom, curTo))
	prev := ComputeStats(DateRange(ts, prevFrom, prevTo))

	return Comparison{
		Balance:        cur.Balance,
		Income:         cur.TotalIncome,
		Expenses:       cur.TotalExpenses,
		BalanceChange:  PercentChange(cur.Balance, prev.Balance),
		IncomeChange:   PercentChange(cur.TotalIncome, prev.TotalIncome),
		ExpensesChange: PercentChange(cur.TotalExpenses, prev.TotalExpenses),
	}
}
