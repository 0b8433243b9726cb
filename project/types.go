/*
Package project models the financial viability of one real-estate
development.

PURPOSE:
  Turns static project inputs (unit inventory, construction cost lines,
  sales pace, financing terms, expense schedules) into time-indexed
  cash-flow matrices covering pre-construction, construction and
  post-construction.

KEY DIFFERENCES FROM THE SCHEDULE ENGINE:
  schedule/ knows vectors, windows and policies. This package knows what a
  sale unit, a cost line and an expense line are, which phase each expense
  list belongs to, and how sales drive both receivables and commission.

OPERATIONS:
  TotalConstructionCost: sum of cost lines x cost multiplier
  TotalSellableValue:    sum of sellable area x unit price
  SalesSchedule:         units sold per unit type per month
  FinancingSchedule:     one receivable row per unit sold
  ExpenseSchedule:       development, construction, post-construction,
                         commission and recurring rows
  CashFlow:              receivables, expenses and net per month

EXAMPLE FLOW:
  p, err := project.New(inputs)
  sales, err := p.SalesSchedule()
  receivables, err := p.FinancingSchedule()
  expenses, err := p.ExpenseSchedule()

SEE ALSO:
  - schedule/: the period engine
  - factory/: JSON documents to Inputs
  - workbook/: spreadsheet workbooks to Inputs
*/
package project

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/viability/schedule"
)

// =============================================================================
// INVENTORY - Sale units and construction cost lines
// =============================================================================

// SaleUnit is one product line of the development.
type SaleUnit struct {
	ID           string          `json:"id"`
	UnitType     string          `json:"unit_type"`
	UnitCount    int             `json:"unit_count"`
	AreaM2       decimal.Decimal `json:"area_m2"`
	SellableArea decimal.Decimal `json:"sellable_area"` // whole product line
	UnitPrice    decimal.Decimal `json:"unit_price"`    // per m2 of sellable area

	// UnitValue is the price of one physical unit. Zero means derive it from
	// SellableArea x UnitPrice / UnitCount.
	UnitValue decimal.Decimal `json:"unit_value"`
}

// SellableValue returns SellableArea x UnitPrice.
func (u SaleUnit) SellableValue() decimal.Decimal {
	return u.SellableArea.Mul(u.UnitPrice)
}

// PerUnitValue returns the price one buyer pays for one unit.
func (u SaleUnit) PerUnitValue() decimal.Decimal {
	if u.UnitValue.IsPositive() {
		return u.UnitValue
	}
	if u.UnitCount <= 0 {
		return decimal.Zero
	}
	return u.SellableValue().Div(decimal.NewFromInt(int64(u.UnitCount)))
}

// withPriceMultiplier re-derives the unit with scaled prices.
func (u SaleUnit) withPriceMultiplier(m decimal.Decimal) SaleUnit {
	u.UnitPrice = u.UnitPrice.Mul(m)
	u.UnitValue = u.UnitValue.Mul(m)
	return u
}

// CostLine is one row of the construction budget.
type CostLine struct {
	Floor          string          `json:"floor"`
	UnitType       string          `json:"unit_type"`
	PrivateArea    decimal.Decimal `json:"private_area"`
	CoveredArea    decimal.Decimal `json:"covered_area"`
	UncoveredArea  decimal.Decimal `json:"uncovered_area"`
	CoveredEquiv   decimal.Decimal `json:"covered_equiv"`
	UncoveredEquiv decimal.Decimal `json:"uncovered_equiv"`
	TotalArea      decimal.Decimal `json:"total_area"`
	RawCost        decimal.Decimal `json:"raw_cost"`
	FullCost       decimal.Decimal `json:"full_cost"`
}

// =============================================================================
// EXPENSES
// =============================================================================

// ExpenseLine is one phase-scoped expense category.
type ExpenseLine struct {
	Label  string                    `json:"label"`
	Amount decimal.Decimal           `json:"amount"`
	Policy schedule.AllocationPolicy `json:"policy"`
}

// RecurringExpense is a flat monthly amount paid over the whole horizon.
type RecurringExpense struct {
	Label         string          `json:"label"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
}

// =============================================================================
// ASSUMPTIONS
// =============================================================================

// PhaseDurations are the phase lengths in months.
type PhaseDurations struct {
	PreConstructionMonths  int `json:"pre_construction_months"`
	ConstructionMonths     int `json:"construction_months"`
	PostConstructionMonths int `json:"post_construction_months"`
}

// Financing term names.
const (
	TermDownPayment  = "down_payment_fraction"
	TermInstallment  = "installment_fraction"
	TermFinalPayment = "final_payment_fraction"
)

// FinancingTerms maps a term name to a fraction of the unit price.
type FinancingTerms map[string]decimal.Decimal

// Plan converts the terms into a receivable plan. Every term must be present.
func (f FinancingTerms) Plan() (schedule.ReceivablePlan, error) {
	var missing []string
	get := func(name string) decimal.Decimal {
		v, ok := f[name]
		if !ok {
			missing = append(missing, name)
		}
		return v
	}
	plan := schedule.ReceivablePlan{
		DownPayment: get(TermDownPayment),
		Installment: get(TermInstallment),
		Final:       get(TermFinalPayment),
	}
	if len(missing) > 0 {
		return schedule.ReceivablePlan{}, &schedule.ConfigurationError{
			Subject: "financing terms",
			Month:   schedule.NoMonth,
			Reason:  "fractions not provided: " + strings.Join(missing, ", "),
		}
	}
	return plan, nil
}

// SalesAssumptions drive the sales phasing and the commission charge.
type SalesAssumptions struct {
	Pace           map[string]int  `json:"pace"`             // units per month by unit type
	FirstSaleMonth int             `json:"first_sale_month"` // 1-indexed
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

// =============================================================================
// INPUTS - Everything a loader hands to New
// =============================================================================

// Inputs are the typed records a loader produces.
type Inputs struct {
	Name string `json:"name"`

	Units     []SaleUnit `json:"units"`
	CostLines []CostLine `json:"cost_lines"`

	// Sensitivity multipliers; zero means 1.
	CostMultiplier  decimal.Decimal `json:"cost_multiplier"`
	PriceMultiplier decimal.Decimal `json:"price_multiplier"`

	Phases PhaseDurations `json:"phases"`

	DevelopmentExpenses      []ExpenseLine      `json:"development_expenses"`
	PostConstructionExpenses []ExpenseLine      `json:"post_construction_expenses"`
	RecurringExpenses        []RecurringExpense `json:"recurring_expenses"`

	Financing FinancingTerms   `json:"financing"`
	Sales     SalesAssumptions `json:"sales"`
}

// Clone returns a deep copy of the inputs. The copy shares no slice or map
// with the receiver.
func (in Inputs) Clone() Inputs {
	out := in
	out.Units = append([]SaleUnit(nil), in.Units...)
	out.CostLines = append([]CostLine(nil), in.CostLines...)
	out.DevelopmentExpenses = append([]ExpenseLine(nil), in.DevelopmentExpenses...)
	out.PostConstructionExpenses = append([]ExpenseLine(nil), in.PostConstructionExpenses...)
	out.RecurringExpenses = append([]RecurringExpense(nil), in.RecurringExpenses...)
	out.Financing = copyTerms(in.Financing)
	out.Sales = copySales(in.Sales)
	return out
}
