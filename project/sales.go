package project

import (
	"sort"

	"github.com/warp/viability/schedule"
)

// =============================================================================
// SALES SCHEDULE - Units sold per unit type per month
// =============================================================================

// SalesRow is the monthly sales count of one unit type.
type SalesRow struct {
	UnitType string
	Counts   []int
}

// SalesMatrix holds one row per unit type, in product-line order.
type SalesMatrix struct {
	Rows []SalesRow
}

// Counts returns the sales vector of a unit type.
func (m SalesMatrix) Counts(unitType string) ([]int, bool) {
	for _, r := range m.Rows {
		if r.UnitType == unitType {
			return r.Counts, true
		}
	}
	return nil, false
}

// Matrix converts the counts into a labeled decimal matrix.
func (m SalesMatrix) Matrix() schedule.Matrix {
	var out schedule.Matrix
	for _, r := range m.Rows {
		out.Append(r.UnitType, schedule.FromInts(r.Counts))
	}
	return out
}

// SalesSchedule phases every unit type's inventory over the horizon at its
// configured pace, starting at the first sale month.
func (p *Project) SalesSchedule() (SalesMatrix, error) {
	if err := p.checkPaceShape(); err != nil {
		return SalesMatrix{}, err
	}

	horizon := p.timeline.Total()
	out := SalesMatrix{Rows: make([]SalesRow, 0, len(p.units))}
	for _, u := range p.units {
		counts, err := schedule.PhaseSales(u.UnitType, u.UnitCount, p.sales.Pace[u.UnitType], p.sales.FirstSaleMonth, horizon)
		if err != nil {
			return SalesMatrix{}, err
		}
		out.Rows = append(out.Rows, SalesRow{UnitType: u.UnitType, Counts: counts})
	}
	return out, nil
}

// checkPaceShape requires exactly one pace entry per unit type.
func (p *Project) checkPaceShape() error {
	for _, u := range p.units {
		if _, ok := p.sales.Pace[u.UnitType]; !ok {
			return &schedule.InputShapeError{Subject: u.UnitType, Reason: "no sales pace for unit type"}
		}
	}
	var unknown []string
	for unitType := range p.sales.Pace {
		if _, ok := p.unitIndex[unitType]; !ok {
			unknown = append(unknown, unitType)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &schedule.InputShapeError{Subject: unknown[0], Reason: "sales pace given for an unknown unit type"}
	}
	return nil
}
