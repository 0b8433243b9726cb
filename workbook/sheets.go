/*
Package workbook reads project inputs from, and writes schedules to, Excel
workbooks.

PURPOSE:
  Development assumptions usually live in a spreadsheet. This package maps a
  fixed workbook layout onto project.Inputs and renders the computed
  matrices back into sheets an analyst can open.

WORKBOOK LAYOUT:
  units                       header row, one product line per row
                              id | unit_type | unit_count | area_m2 |
                              sellable_area | unit_price | unit_value
  construction_cost           header row, one cost line per row
                              floor | unit_type | private_area | covered_area |
                              uncovered_area | covered_equiv | uncovered_equiv |
                              total_area | raw_cost | full_cost
  assumptions                 key | value (no header)
  development_expenses        label | amount | policy (no header)
  post_construction_expenses  label | amount | policy (no header)
  recurring_expenses          label | monthly_amount (no header)
  financing                   term | fraction (no header)
  sales_pace                  header row: unit_type | monthly_pace

  Optional sheets (recurring_expenses, post_construction_expenses) may be
  absent; every other sheet is required.

SEE ALSO:
  - loader.go: workbook -> Inputs
  - writer.go: Inputs -> workbook
  - exporter.go: schedules -> workbook
*/
package workbook

import "errors"

// Sheet names of the input workbook.
const (
	SheetUnits            = "units"
	SheetConstructionCost = "construction_cost"
	SheetAssumptions      = "assumptions"
	SheetDevelopment      = "development_expenses"
	SheetPostConstruction = "post_construction_expenses"
	SheetRecurring        = "recurring_expenses"
	SheetFinancing        = "financing"
	SheetSalesPace        = "sales_pace"
)

// Keys of the assumptions sheet.
const (
	KeyName                   = "name"
	KeyPreConstructionMonths  = "pre_construction_months"
	KeyConstructionMonths     = "construction_months"
	KeyPostConstructionMonths = "post_construction_months"
	KeyFirstSaleMonth         = "first_sale_month"
	KeyCommissionRate         = "commission_rate"
	KeyCostMultiplier         = "cost_multiplier"
	KeyPriceMultiplier        = "price_multiplier"
)

var (
	unitColumns = []string{"id", "unit_type", "unit_count", "area_m2", "sellable_area", "unit_price", "unit_value"}
	costColumns = []string{"floor", "unit_type", "private_area", "covered_area", "uncovered_area",
		"covered_equiv", "uncovered_equiv", "total_area", "raw_cost", "full_cost"}
	paceColumns = []string{"unit_type", "monthly_pace"}
)

var (
	// ErrUnreadable is returned when the file is not a readable workbook.
	ErrUnreadable = errors.New("unreadable workbook")

	// ErrMissingSheet is returned when a required sheet is absent.
	ErrMissingSheet = errors.New("missing sheet")

	// ErrMissingColumn is returned when a header row lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrBadCell is returned when a cell cannot be parsed.
	ErrBadCell = errors.New("unparseable cell")
)
