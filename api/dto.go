/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the project model from the external API contract. Money travels as
  decimal strings ("1250.50") so no precision is lost to float64.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Projects:  ProjectDTO, ProjectDetailDTO
  Schedules: SummaryDTO, SalesDTO, MatrixDTO, CashFlowDTO, EvaluateResponse
  Scenarios: ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - factory/inputs.go: InputsJSON request body
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/viability/factory"
	"github.com/warp/viability/project"
	"github.com/warp/viability/schedule"
)

// =============================================================================
// PROJECTS
// =============================================================================

// ProjectDTO is a saved project in list responses.
type ProjectDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectDetailDTO carries the stored inputs as well.
type ProjectDetailDTO struct {
	ProjectDTO
	Inputs factory.InputsJSON `json:"inputs"`
}

func toProjectDTO(rec project.Record) ProjectDTO {
	return ProjectDTO{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
}

// =============================================================================
// SCHEDULES
// =============================================================================

// SummaryDTO is the headline view of a project.
type SummaryDTO struct {
	Name                  string          `json:"name"`
	Months                int             `json:"months"`
	PreConstruction       int             `json:"pre_construction_months"`
	Construction          int             `json:"construction_months"`
	PostConstruction      int             `json:"post_construction_months"`
	Units                 int             `json:"units"`
	TotalConstructionCost decimal.Decimal `json:"total_construction_cost"`
	TotalSellableValue    decimal.Decimal `json:"total_sellable_value"`
	TotalReceivables      decimal.Decimal `json:"total_receivables"`
	TotalExpenses         decimal.Decimal `json:"total_expenses"`
	Net                   decimal.Decimal `json:"net"`
	MaxExposure           decimal.Decimal `json:"max_exposure"`
}

// SalesRowDTO is one unit type's monthly sales counts.
type SalesRowDTO struct {
	UnitType string `json:"unit_type"`
	Counts   []int  `json:"counts"`
	Total    int    `json:"total"`
}

// SalesDTO is the sales matrix.
type SalesDTO struct {
	Months int           `json:"months"`
	Rows   []SalesRowDTO `json:"rows"`
}

// RowDTO is one labeled row of a money matrix.
type RowDTO struct {
	Label  string            `json:"label"`
	Values []decimal.Decimal `json:"values"`
	Total  decimal.Decimal   `json:"total"`
}

// MatrixDTO is a money matrix with its column totals.
type MatrixDTO struct {
	Months int               `json:"months"`
	Rows   []RowDTO          `json:"rows"`
	Totals []decimal.Decimal `json:"totals"`
}

// CashFlowDTO is the per-month aggregate of receivables and expenses.
type CashFlowDTO struct {
	Receivables []decimal.Decimal `json:"receivables"`
	Expenses    []decimal.Decimal `json:"expenses"`
	Net         []decimal.Decimal `json:"net"`
	Cumulative  []decimal.Decimal `json:"cumulative"`
	MaxExposure decimal.Decimal   `json:"max_exposure"`
}

// EvaluateResponse carries every schedule of one evaluation.
type EvaluateResponse struct {
	Summary   SummaryDTO  `json:"summary"`
	Sales     SalesDTO    `json:"sales"`
	Financing MatrixDTO   `json:"financing"`
	Expenses  MatrixDTO   `json:"expenses"`
	CashFlow  CashFlowDTO `json:"cash_flow"`
}

func toSalesDTO(m project.SalesMatrix, months int) SalesDTO {
	out := SalesDTO{Months: months, Rows: make([]SalesRowDTO, 0, len(m.Rows))}
	for _, row := range m.Rows {
		out.Rows = append(out.Rows, SalesRowDTO{
			UnitType: row.UnitType,
			Counts:   row.Counts,
			Total:    schedule.TotalSold(row.Counts),
		})
	}
	return out
}

func toMatrixDTO(m schedule.Matrix, months int) MatrixDTO {
	out := MatrixDTO{
		Months: months,
		Rows:   make([]RowDTO, 0, m.Len()),
		Totals: schedule.Zeros(months).Add(m.Totals()),
	}
	for _, row := range m.Rows {
		out.Rows = append(out.Rows, RowDTO{Label: row.Label, Values: row.Values, Total: row.Values.Sum()})
	}
	return out
}

func toCashFlowDTO(c project.CashFlow) CashFlowDTO {
	return CashFlowDTO{
		Receivables: c.Receivables,
		Expenses:    c.Expenses,
		Net:         c.Net,
		Cumulative:  c.Cumulative,
		MaxExposure: c.MaxExposure(),
	}
}

func toSummaryDTO(p *project.Project, c project.CashFlow) SummaryDTO {
	tl := p.Timeline()
	return SummaryDTO{
		Name:                  p.Name(),
		Months:                p.TotalMonths(),
		PreConstruction:       tl.PreConstruction,
		Construction:          tl.Construction,
		PostConstruction:      tl.PostConstruction,
		Units:                 p.TotalUnits(),
		TotalConstructionCost: p.TotalConstructionCost(),
		TotalSellableValue:    p.TotalSellableValue(),
		TotalReceivables:      c.Receivables.Sum(),
		TotalExpenses:         c.Expenses.Sum(),
		Net:                   c.Net.Sum(),
		MaxExposure:           c.MaxExposure(),
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a bundled sample project.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a sample project to save.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Subject string `json:"subject,omitempty"`
	Month   *int   `json:"month,omitempty"`
}
