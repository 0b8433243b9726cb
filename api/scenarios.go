/*
scenarios.go - Bundled sample projects for demos and smoke tests

PURPOSE:
  Provides ready-made project inputs so a fresh server has something to
  evaluate. Loading a scenario saves it as a new project; nothing else in
  the store is touched.

AVAILABLE SCENARIOS:
  riverside-tower:   20-month tower, three unit types, every expense policy
  garden-townhouses: short build, one unit type, recurring costs only
  price-stress:      riverside-tower with prices down 10% and costs up 8%

USAGE VIA API:
  GET  /api/scenarios
  POST /api/scenarios/load
  {"scenario_id": "riverside-tower"}

ADDING NEW SCENARIOS:
  1. Add to 'scenarios' with ID, name, description
  2. Add its inputs to scenarioInputs

SEE ALSO:
  - handlers.go: create() shared with POST /api/projects
  - factory/inputs.go: InputsJSON schema
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/viability/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "riverside-tower",
		Name:        "Riverside Tower",
		Description: "Three unit types over a 20-month horizon with initial, linear and final expenses",
	},
	{
		ID:          "garden-townhouses",
		Name:        "Garden Townhouses",
		Description: "Single unit type, short construction, recurring site costs",
	},
	{
		ID:          "price-stress",
		Name:        "Riverside Tower (stress)",
		Description: "Riverside Tower with a 0.9 price multiplier and a 1.08 cost multiplier",
	},
}

func riversideTower() factory.InputsJSON {
	return factory.InputsJSON{
		Name:   "Riverside Tower",
		Phases: factory.PhasesJSON{PreConstruction: 4, Construction: 10, PostConstruction: 6},
		Units: []factory.UnitJSON{
			{ID: "1", UnitType: "1BR", UnitCount: 12, AreaM2: 52, SellableArea: 624, UnitPrice: 3100},
			{ID: "2", UnitType: "2BR", UnitCount: 8, AreaM2: 78, SellableArea: 624, UnitPrice: 2950},
			{ID: "3", UnitType: "PH", UnitCount: 2, AreaM2: 140, SellableArea: 280, UnitPrice: 4200, UnitValue: 600000},
		},
		CostLines: []factory.CostLineJSON{
			{Floor: "ground", UnitType: "1BR", TotalArea: 900, RawCost: 1150000, FullCost: 1380000},
			{Floor: "typical", UnitType: "2BR", TotalArea: 860, RawCost: 1020000, FullCost: 1224000},
			{Floor: "roof", UnitType: "PH", TotalArea: 320, RawCost: 450000, FullCost: 540000},
		},
		Development: []factory.ExpenseJSON{
			{Label: "Land", Amount: 850000, Policy: "i"},
			{Label: "Permits", Amount: 64000, Policy: "l"},
			{Label: "Design", Amount: 120000, Policy: "l"},
			{Label: "Bank fees", Amount: 18000, Policy: "f"},
		},
		PostConstruct: []factory.ExpenseJSON{
			{Label: "Handover", Amount: 36000, Policy: "l"},
			{Label: "Final inspection", Amount: 9000, Policy: "f"},
		},
		Recurring: []factory.RecurringExpenseJSON{
			{Label: "Insurance", MonthlyAmount: 1800},
			{Label: "Site management", MonthlyAmount: 2500},
		},
		Financing: map[string]float64{
			"down_payment_fraction":  0.2,
			"installment_fraction":   0.5,
			"final_payment_fraction": 0.3,
		},
		Sales: factory.SalesJSON{
			Pace:           map[string]int{"1BR": 2, "2BR": 1, "PH": 1},
			FirstSaleMonth: 3,
			CommissionRate: 0.03,
		},
	}
}

func gardenTownhouses() factory.InputsJSON {
	return factory.InputsJSON{
		Name:   "Garden Townhouses",
		Phases: factory.PhasesJSON{PreConstruction: 2, Construction: 6, PostConstruction: 4},
		Units: []factory.UnitJSON{
			{ID: "1", UnitType: "TH", UnitCount: 6, AreaM2: 120, SellableArea: 720, UnitPrice: 2400},
		},
		CostLines: []factory.CostLineJSON{
			{Floor: "all", UnitType: "TH", TotalArea: 780, RawCost: 820000, FullCost: 960000},
		},
		Development: []factory.ExpenseJSON{
			{Label: "Land", Amount: 300000, Policy: "initial"},
		},
		Recurring: []factory.RecurringExpenseJSON{
			{Label: "Site security", MonthlyAmount: 1200},
		},
		Financing: map[string]float64{
			"down_payment_fraction":  0.3,
			"installment_fraction":   0.4,
			"final_payment_fraction": 0.3,
		},
		Sales: factory.SalesJSON{
			Pace:           map[string]int{"TH": 2},
			FirstSaleMonth: 2,
			CommissionRate: 0.025,
		},
	}
}

func priceStress() factory.InputsJSON {
	doc := riversideTower()
	doc.Name = "Riverside Tower (stress)"
	doc.PriceMultiplier = 0.9
	doc.CostMultiplier = 1.08
	return doc
}

var scenarioInputs = map[string]func() factory.InputsJSON{
	"riverside-tower":   riversideTower,
	"garden-townhouses": gardenTownhouses,
	"price-stress":      priceStress,
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario saves the selected scenario as a new project.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	build, ok := scenarioInputs[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}
	in, err := factory.FromJSON(build())
	if err != nil {
		h.writeFailure(w, r, "Invalid scenario", err)
		return
	}
	h.create(w, r, in)
}
