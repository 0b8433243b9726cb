package project

import (
	"github.com/warp/viability/schedule"
)

// =============================================================================
// FINANCING SCHEDULE - One receivable row per unit sold
// =============================================================================

// FinancingSchedule expands every sale event into one row per unit sold.
// Each row is the receivable plan applied to that unit type's per-unit value;
// prices are already scaled by the price multiplier and are not scaled again.
//
// Rows carry their unit type as label. Summing the rows of a type and
// dividing by the units sold gives the plan's percentage-of-price shape;
// summing all rows gives project receivables per month.
func (p *Project) FinancingSchedule() (schedule.Matrix, error) {
	plan, err := p.financing.Plan()
	if err != nil {
		return schedule.Matrix{}, err
	}

	// The whole sales matrix is computed before any receivable is.
	sales, err := p.SalesSchedule()
	if err != nil {
		return schedule.Matrix{}, err
	}

	horizon := p.timeline.Total()
	var out schedule.Matrix
	for _, row := range sales.Rows {
		unit, _ := p.Unit(row.UnitType)
		price := unit.PerUnitValue()
		for _, event := range schedule.SaleEvents(row.Counts) {
			vectors, err := plan.Receivables(row.UnitType, event, price, horizon)
			if err != nil {
				return schedule.Matrix{}, err
			}
			for _, v := range vectors {
				out.Append(row.UnitType, v)
			}
		}
	}
	return out, nil
}
