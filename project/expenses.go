package project

import (
	"github.com/shopspring/decimal"

	"github.com/warp/viability/schedule"
)

// Row labels the expense matrix adds on top of the input expense lines.
const (
	LabelConstructionCost = "Construction Cost"
	LabelBrokerCommission = "Brokerage Commission"
)

// =============================================================================
// EXPENSE SCHEDULE
// =============================================================================

// ExpenseSchedule assembles every outflow on the project horizon, in order:
//  1. development expenses, scoped to the pre-construction window
//  2. the construction cost, spread linearly over the construction window
//  3. post-construction expenses, scoped to the post-construction window
//  4. brokerage commission on each month's sales revenue
//  5. recurring expenses, repeated over the whole horizon
func (p *Project) ExpenseSchedule() (schedule.Matrix, error) {
	horizon := p.timeline.Total()
	var out schedule.Matrix

	pre := p.timeline.Window(schedule.PhasePreConstruction)
	if err := appendPhaseLines(&out, p.development, pre, horizon); err != nil {
		return schedule.Matrix{}, err
	}

	ramp, err := p.constructionRamp()
	if err != nil {
		return schedule.Matrix{}, err
	}
	out.Append(LabelConstructionCost, ramp)

	post := p.timeline.Window(schedule.PhasePostConstruction)
	if err := appendPhaseLines(&out, p.post, post, horizon); err != nil {
		return schedule.Matrix{}, err
	}

	commission, err := p.CommissionSchedule()
	if err != nil {
		return schedule.Matrix{}, err
	}
	out.Append(LabelBrokerCommission, commission)

	for _, r := range p.recurring {
		v, err := schedule.Recurring(r.Label, r.MonthlyAmount, horizon)
		if err != nil {
			return schedule.Matrix{}, err
		}
		out.Append(r.Label, v)
	}
	return out, nil
}

func appendPhaseLines(out *schedule.Matrix, lines []ExpenseLine, w schedule.Window, horizon int) error {
	for _, line := range lines {
		v, err := schedule.Allocate(line.Label, line.Policy, line.Amount, w, horizon)
		if err != nil {
			return err
		}
		out.Append(line.Label, v)
	}
	return nil
}

// constructionRamp spreads the total construction cost over the construction
// window. A project with no construction phase and no cost gets a zero row.
func (p *Project) constructionRamp() (schedule.Vector, error) {
	horizon := p.timeline.Total()
	w := p.timeline.Window(schedule.PhaseConstruction)
	if w.Empty() && p.totalCost.IsZero() {
		return schedule.Zeros(horizon), nil
	}
	return schedule.Allocate(LabelConstructionCost, schedule.PolicyLinear, p.totalCost, w, horizon)
}

// CommissionSchedule returns the brokerage commission per month: units sold
// times per-unit value, summed across unit types, times the commission rate.
func (p *Project) CommissionSchedule() (schedule.Vector, error) {
	revenue, err := p.SalesRevenue()
	if err != nil {
		return nil, err
	}
	return revenue.Scale(p.sales.CommissionRate), nil
}

// SalesRevenue returns the contracted sales value recognized each month.
func (p *Project) SalesRevenue() (schedule.Vector, error) {
	sales, err := p.SalesSchedule()
	if err != nil {
		return nil, err
	}
	revenue := schedule.Zeros(p.timeline.Total())
	for _, row := range sales.Rows {
		unit, _ := p.Unit(row.UnitType)
		revenue = revenue.Add(schedule.FromInts(row.Counts).Scale(unit.PerUnitValue()))
	}
	return revenue, nil
}

// CommissionRate returns the configured brokerage rate.
func (p *Project) CommissionRate() decimal.Decimal { return p.sales.CommissionRate }
