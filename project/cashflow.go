package project

import (
	"github.com/shopspring/decimal"

	"github.com/warp/viability/schedule"
)

// CashFlow is the month-by-month sum of the receivable and expense matrices.
// It carries no discounting.
type CashFlow struct {
	Receivables schedule.Vector
	Expenses    schedule.Vector
	Net         schedule.Vector
	Cumulative  schedule.Vector
}

// CashFlow sums the financing and expense schedules per month.
func (p *Project) CashFlow() (CashFlow, error) {
	financing, err := p.FinancingSchedule()
	if err != nil {
		return CashFlow{}, err
	}
	expenses, err := p.ExpenseSchedule()
	if err != nil {
		return CashFlow{}, err
	}

	horizon := p.timeline.Total()
	in := schedule.Zeros(horizon).Add(financing.Totals())
	out := schedule.Zeros(horizon).Add(expenses.Totals())
	net := in.Sub(out)

	cumulative := make(schedule.Vector, len(net))
	running := decimal.Zero
	for i, x := range net {
		running = running.Add(x)
		cumulative[i] = running
	}

	return CashFlow{Receivables: in, Expenses: out, Net: net, Cumulative: cumulative}, nil
}

// MaxExposure returns the deepest point of the cumulative cash flow, as a
// positive amount (zero if the project never goes negative).
func (c CashFlow) MaxExposure() decimal.Decimal {
	worst := decimal.Zero
	for _, x := range c.Cumulative {
		if x.LessThan(worst) {
			worst = x
		}
	}
	return worst.Neg()
}
