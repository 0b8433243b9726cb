/*
Package factory provides JSON to Go project input conversion.

PURPOSE:
  Converts JSON project documents into project.Inputs. Analysts can keep a
  development's assumptions in a plain document (or post it to the API) and
  the factory turns it into typed records with decimal amounts and parsed
  allocation policies.

JSON SCHEMA:
  {
    "name": "Riverside Tower",
    "phases": {"pre_construction": 4, "construction": 18, "post_construction": 6},
    "units": [
      {"id": "1", "unit_type": "2BR", "unit_count": 40, "area_m2": 72,
       "sellable_area": 2880, "unit_price": 9500}
    ],
    "cost_lines": [{"floor": "typical", "unit_type": "2BR", "full_cost": 9800000}],
    "cost_multiplier": 1.0,
    "price_multiplier": 1.0,
    "development_expenses": [{"label": "Permits", "amount": 120000, "policy": "l"}],
    "post_construction_expenses": [{"label": "Handover", "amount": 40000, "policy": "f"}],
    "recurring_expenses": [{"label": "Insurance", "monthly_amount": 1500}],
    "financing": {"down_payment_fraction": 0.2, "installment_fraction": 0.5,
                  "final_payment_fraction": 0.3},
    "sales": {"pace": {"2BR": 4}, "first_sale_month": 3, "commission_rate": 0.04}
  }

KEY FEATURES:
  - Policy codes accept i/l/f and initial/linear/final
  - Unknown policy codes fail with the expense label
  - Absent multipliers default to 1 in project.New

USAGE:
  in, err := factory.ParseInputs(data)
  p, err := project.New(in)

SEE ALSO:
  - project/types.go: Inputs definition
  - workbook/: the spreadsheet loader producing the same Inputs
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/viability/project"
	"github.com/warp/viability/schedule"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// InputsJSON is the JSON representation of a project's inputs.
type InputsJSON struct {
	Name            string                 `json:"name"`
	Phases          PhasesJSON             `json:"phases"`
	Units           []UnitJSON             `json:"units"`
	CostLines       []CostLineJSON         `json:"cost_lines,omitempty"`
	CostMultiplier  float64                `json:"cost_multiplier,omitempty"`
	PriceMultiplier float64                `json:"price_multiplier,omitempty"`
	Development     []ExpenseJSON          `json:"development_expenses,omitempty"`
	PostConstruct   []ExpenseJSON          `json:"post_construction_expenses,omitempty"`
	Recurring       []RecurringExpenseJSON `json:"recurring_expenses,omitempty"`
	Financing       map[string]float64     `json:"financing"`
	Sales           SalesJSON              `json:"sales"`
}

// PhasesJSON holds phase lengths in months.
type PhasesJSON struct {
	PreConstruction  int `json:"pre_construction"`
	Construction     int `json:"construction"`
	PostConstruction int `json:"post_construction"`
}

// UnitJSON is one product line.
type UnitJSON struct {
	ID           string  `json:"id"`
	UnitType     string  `json:"unit_type"`
	UnitCount    int     `json:"unit_count"`
	AreaM2       float64 `json:"area_m2"`
	SellableArea float64 `json:"sellable_area"`
	UnitPrice    float64 `json:"unit_price"`
	UnitValue    float64 `json:"unit_value,omitempty"`
}

// CostLineJSON is one construction budget line.
type CostLineJSON struct {
	Floor          string  `json:"floor"`
	UnitType       string  `json:"unit_type"`
	PrivateArea    float64 `json:"private_area,omitempty"`
	CoveredArea    float64 `json:"covered_area,omitempty"`
	UncoveredArea  float64 `json:"uncovered_area,omitempty"`
	CoveredEquiv   float64 `json:"covered_equiv,omitempty"`
	UncoveredEquiv float64 `json:"uncovered_equiv,omitempty"`
	TotalArea      float64 `json:"total_area,omitempty"`
	RawCost        float64 `json:"raw_cost,omitempty"`
	FullCost       float64 `json:"full_cost"`
}

// ExpenseJSON is a phase-scoped expense with its policy code.
type ExpenseJSON struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Policy string  `json:"policy"` // i, l, f
}

// RecurringExpenseJSON is a flat monthly expense.
type RecurringExpenseJSON struct {
	Label         string  `json:"label"`
	MonthlyAmount float64 `json:"monthly_amount"`
}

// SalesJSON holds the sales assumptions.
type SalesJSON struct {
	Pace           map[string]int `json:"pace"`
	FirstSaleMonth int            `json:"first_sale_month"`
	CommissionRate float64        `json:"commission_rate"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// ParseInputs parses a JSON document into project inputs.
func ParseInputs(data []byte) (project.Inputs, error) {
	var doc InputsJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return project.Inputs{}, fmt.Errorf("failed to parse project JSON: %w", err)
	}
	return FromJSON(doc)
}

// FromJSON converts an InputsJSON document into project inputs.
func FromJSON(doc InputsJSON) (project.Inputs, error) {
	in := project.Inputs{
		Name:            doc.Name,
		CostMultiplier:  dec(doc.CostMultiplier),
		PriceMultiplier: dec(doc.PriceMultiplier),
		Phases: project.PhaseDurations{
			PreConstructionMonths:  doc.Phases.PreConstruction,
			ConstructionMonths:     doc.Phases.Construction,
			PostConstructionMonths: doc.Phases.PostConstruction,
		},
		Sales: project.SalesAssumptions{
			Pace:           doc.Sales.Pace,
			FirstSaleMonth: doc.Sales.FirstSaleMonth,
			CommissionRate: dec(doc.Sales.CommissionRate),
		},
	}

	for _, u := range doc.Units {
		in.Units = append(in.Units, project.SaleUnit{
			ID:           u.ID,
			UnitType:     u.UnitType,
			UnitCount:    u.UnitCount,
			AreaM2:       dec(u.AreaM2),
			SellableArea: dec(u.SellableArea),
			UnitPrice:    dec(u.UnitPrice),
			UnitValue:    dec(u.UnitValue),
		})
	}

	for _, c := range doc.CostLines {
		in.CostLines = append(in.CostLines, project.CostLine{
			Floor:          c.Floor,
			UnitType:       c.UnitType,
			PrivateArea:    dec(c.PrivateArea),
			CoveredArea:    dec(c.CoveredArea),
			UncoveredArea:  dec(c.UncoveredArea),
			CoveredEquiv:   dec(c.CoveredEquiv),
			UncoveredEquiv: dec(c.UncoveredEquiv),
			TotalArea:      dec(c.TotalArea),
			RawCost:        dec(c.RawCost),
			FullCost:       dec(c.FullCost),
		})
	}

	var err error
	if in.DevelopmentExpenses, err = parseExpenses(doc.Development); err != nil {
		return project.Inputs{}, err
	}
	if in.PostConstructionExpenses, err = parseExpenses(doc.PostConstruct); err != nil {
		return project.Inputs{}, err
	}

	for _, r := range doc.Recurring {
		in.RecurringExpenses = append(in.RecurringExpenses, project.RecurringExpense{
			Label:         r.Label,
			MonthlyAmount: dec(r.MonthlyAmount),
		})
	}

	if doc.Financing != nil {
		in.Financing = make(project.FinancingTerms, len(doc.Financing))
		for name, fraction := range doc.Financing {
			in.Financing[name] = dec(fraction)
		}
	}

	return in, nil
}

func parseExpenses(lines []ExpenseJSON) ([]project.ExpenseLine, error) {
	out := make([]project.ExpenseLine, 0, len(lines))
	for _, e := range lines {
		policy, err := schedule.ParseAllocationPolicy(e.Label, e.Policy)
		if err != nil {
			return nil, err
		}
		out = append(out, project.ExpenseLine{Label: e.Label, Amount: dec(e.Amount), Policy: policy})
	}
	return out, nil
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// =============================================================================
// REVERSE CONVERSION - For API responses
// =============================================================================

// ToJSON converts project inputs back into their JSON document.
func ToJSON(in project.Inputs) InputsJSON {
	doc := InputsJSON{
		Name:            in.Name,
		CostMultiplier:  in.CostMultiplier.InexactFloat64(),
		PriceMultiplier: in.PriceMultiplier.InexactFloat64(),
		Phases: PhasesJSON{
			PreConstruction:  in.Phases.PreConstructionMonths,
			Construction:     in.Phases.ConstructionMonths,
			PostConstruction: in.Phases.PostConstructionMonths,
		},
		Sales: SalesJSON{
			Pace:           in.Sales.Pace,
			FirstSaleMonth: in.Sales.FirstSaleMonth,
			CommissionRate: in.Sales.CommissionRate.InexactFloat64(),
		},
	}
	for _, u := range in.Units {
		doc.Units = append(doc.Units, UnitJSON{
			ID:           u.ID,
			UnitType:     u.UnitType,
			UnitCount:    u.UnitCount,
			AreaM2:       u.AreaM2.InexactFloat64(),
			SellableArea: u.SellableArea.InexactFloat64(),
			UnitPrice:    u.UnitPrice.InexactFloat64(),
			UnitValue:    u.UnitValue.InexactFloat64(),
		})
	}
	for _, c := range in.CostLines {
		doc.CostLines = append(doc.CostLines, CostLineJSON{
			Floor:          c.Floor,
			UnitType:       c.UnitType,
			PrivateArea:    c.PrivateArea.InexactFloat64(),
			CoveredArea:    c.CoveredArea.InexactFloat64(),
			UncoveredArea:  c.UncoveredArea.InexactFloat64(),
			CoveredEquiv:   c.CoveredEquiv.InexactFloat64(),
			UncoveredEquiv: c.UncoveredEquiv.InexactFloat64(),
			TotalArea:      c.TotalArea.InexactFloat64(),
			RawCost:        c.RawCost.InexactFloat64(),
			FullCost:       c.FullCost.InexactFloat64(),
		})
	}
	doc.Development = expensesJSON(in.DevelopmentExpenses)
	doc.PostConstruct = expensesJSON(in.PostConstructionExpenses)
	for _, r := range in.RecurringExpenses {
		doc.Recurring = append(doc.Recurring, RecurringExpenseJSON{Label: r.Label, MonthlyAmount: r.MonthlyAmount.InexactFloat64()})
	}
	if in.Financing != nil {
		doc.Financing = make(map[string]float64, len(in.Financing))
		for name, fraction := range in.Financing {
			doc.Financing[name] = fraction.InexactFloat64()
		}
	}
	return doc
}

func expensesJSON(lines []project.ExpenseLine) []ExpenseJSON {
	var out []ExpenseJSON
	for _, e := range lines {
		out = append(out, ExpenseJSON{Label: e.Label, Amount: e.Amount.InexactFloat64(), Policy: string(e.Policy)})
	}
	return out
}
