package project

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/viability/schedule"
)

// =============================================================================
// PROJECT - The immutable context every schedule is computed from
// =============================================================================

// Project holds the inputs of one development after sensitivity scaling.
// It is built once by New and never mutated; every schedule method is a pure
// function of it, so repeated calls return identical matrices.
type Project struct {
	name      string
	timeline  schedule.Timeline
	units     []SaleUnit
	unitIndex map[string]int
	costLines []CostLine
	totalCost decimal.Decimal

	development []ExpenseLine
	post        []ExpenseLine
	recurring   []RecurringExpense

	financing FinancingTerms
	sales     SalesAssumptions
}

// New validates the timeline, applies the sensitivity multipliers exactly
// once and returns the project context.
func New(in Inputs) (*Project, error) {
	tl, err := schedule.NewTimeline(
		in.Phases.PreConstructionMonths,
		in.Phases.ConstructionMonths,
		in.Phases.PostConstructionMonths,
	)
	if err != nil {
		return nil, err
	}

	priceMul := multiplierOrOne(in.PriceMultiplier)
	costMul := multiplierOrOne(in.CostMultiplier)

	p := &Project{
		name:        in.Name,
		timeline:    tl,
		units:       make([]SaleUnit, 0, len(in.Units)),
		unitIndex:   make(map[string]int, len(in.Units)),
		costLines:   append([]CostLine(nil), in.CostLines...),
		development: append([]ExpenseLine(nil), in.DevelopmentExpenses...),
		post:        append([]ExpenseLine(nil), in.PostConstructionExpenses...),
		recurring:   append([]RecurringExpense(nil), in.RecurringExpenses...),
		financing:   copyTerms(in.Financing),
		sales:       copySales(in.Sales),
	}

	for _, u := range in.Units {
		if _, dup := p.unitIndex[u.UnitType]; dup {
			return nil, &schedule.InputShapeError{
				Subject: u.UnitType,
				Reason:  "unit type appears on more than one product line",
			}
		}
		p.unitIndex[u.UnitType] = len(p.units)
		p.units = append(p.units, u.withPriceMultiplier(priceMul))
	}

	total := decimal.Zero
	for _, c := range p.costLines {
		total = total.Add(c.FullCost)
	}
	p.totalCost = total.Mul(costMul)

	return p, nil
}

func multiplierOrOne(m decimal.Decimal) decimal.Decimal {
	if m.IsZero() {
		return decimal.NewFromInt(1)
	}
	return m
}

func copyTerms(f FinancingTerms) FinancingTerms {
	if f == nil {
		return nil
	}
	out := make(FinancingTerms, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func copySales(s SalesAssumptions) SalesAssumptions {
	out := s
	if s.Pace != nil {
		out.Pace = make(map[string]int, len(s.Pace))
		for k, v := range s.Pace {
			out.Pace[k] = v
		}
	}
	return out
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// Timeline returns the phase durations.
func (p *Project) Timeline() schedule.Timeline { return p.timeline }

// TotalMonths returns the horizon length every matrix is indexed on.
func (p *Project) TotalMonths() int { return p.timeline.Total() }

// Units returns the sale units with prices already scaled.
func (p *Project) Units() []SaleUnit { return append([]SaleUnit(nil), p.units...) }

// Unit looks up the product line of a unit type.
func (p *Project) Unit(unitType string) (SaleUnit, bool) {
	i, ok := p.unitIndex[unitType]
	if !ok {
		return SaleUnit{}, false
	}
	return p.units[i], true
}

// TotalConstructionCost returns the sum of every cost line's full cost times
// the cost multiplier.
func (p *Project) TotalConstructionCost() decimal.Decimal { return p.totalCost }

// TotalSellableValue returns the sum of sellable area x unit price.
func (p *Project) TotalSellableValue() decimal.Decimal {
	total := decimal.Zero
	for _, u := range p.units {
		total = total.Add(u.SellableValue())
	}
	return total
}

// TotalUnits returns the number of physical units for sale.
func (p *Project) TotalUnits() int {
	n := 0
	for _, u := range p.units {
		n += u.UnitCount
	}
	return n
}

func (p *Project) String() string {
	name := p.name
	if name == "" {
		name = "unnamed project"
	}
	return fmt.Sprintf("%s: %d unit types, %d units, %d months (%d pre / %d construction / %d post)",
		name, len(p.units), p.TotalUnits(), p.timeline.Total(),
		p.timeline.PreConstruction, p.timeline.Construction, p.timeline.PostConstruction)
}
