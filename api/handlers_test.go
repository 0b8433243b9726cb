/*
handlers_test.go - HTTP tests for the API

Tests for:
- Stateless evaluation and its error mapping
- Project lifecycle (create, list, get, update, delete)
- Schedule endpoints and xlsx export/import
- Scenario loading
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/viability/api"
	"github.com/warp/viability/factory"
	"github.com/warp/viability/store/memory"
	"github.com/warp/viability/workbook"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const towerJSON = `{
  "name": "Harbor Point",
  "phases": {"pre_construction": 2, "construction": 6, "post_construction": 4},
  "units": [
    {"id": "1", "unit_type": "A", "unit_count": 5, "area_m2": 60, "sellable_area": 300, "unit_price": 1000},
    {"id": "2", "unit_type": "B", "unit_count": 2, "area_m2": 90, "sellable_area": 180, "unit_price": 1500, "unit_value": 140000}
  ],
  "cost_lines": [{"floor": "ground", "unit_type": "A", "full_cost": 240000}],
  "development_expenses": [
    {"label": "Permits", "amount": 1000, "policy": "l"},
    {"label": "Land", "amount": 30000, "policy": "i"}
  ],
  "post_construction_expenses": [{"label": "Handover", "amount": 2000, "policy": "f"}],
  "recurring_expenses": [{"label": "Insurance", "monthly_amount": 50}],
  "financing": {"down_payment_fraction": 0.2, "installment_fraction": 0.5, "final_payment_fraction": 0.3},
  "sales": {"pace": {"A": 2, "B": 1}, "first_sale_month": 2, "commission_rate": 0.04}
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := api.NewHandler(memory.New(), nil, workbook.DefaultExportOptions())
	srv := httptest.NewServer(api.NewRouter(h, nil))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, contentType string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func create(t *testing.T, srv *httptest.Server, doc string) api.ProjectDTO {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/api/projects", "application/json", []byte(doc))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var dto api.ProjectDTO
	decode(t, resp, &dto)
	return dto
}

// withPace rewrites the sales pace of towerJSON.
func withPace(t *testing.T, pace map[string]int, firstMonth int) string {
	t.Helper()
	var doc factory.InputsJSON
	require.NoError(t, json.Unmarshal([]byte(towerJSON), &doc))
	doc.Sales.Pace = pace
	doc.Sales.FirstSaleMonth = firstMonth
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(out)
}

// =============================================================================
// EVALUATE
// =============================================================================

func TestEvaluate_ReturnsEverySchedule(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/evaluate", "application/json", []byte(towerJSON))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.EvaluateResponse
	decode(t, resp, &out)

	assert.Equal(t, 12, out.Summary.Months)
	assert.Equal(t, 7, out.Summary.Units)
	assert.Equal(t, "240000", out.Summary.TotalConstructionCost.String())
	assert.Equal(t, "570000", out.Summary.TotalSellableValue.String())

	require.Len(t, out.Sales.Rows, 2)
	assert.Equal(t, []int{0, 2, 2, 1, 0, 0, 0, 0, 0, 0, 0, 0}, out.Sales.Rows[0].Counts)
	assert.Equal(t, 5, out.Sales.Rows[0].Total)

	// One financing row per unit sold
	assert.Len(t, out.Financing.Rows, 7)
	assert.Len(t, out.Financing.Totals, 12)

	labels := make([]string, 0, len(out.Expenses.Rows))
	for _, row := range out.Expenses.Rows {
		labels = append(labels, row.Label)
	}
	assert.Equal(t, []string{"Permits", "Land", "Construction Cost", "Handover", "Brokerage Commission", "Insurance"}, labels)

	assert.Len(t, out.CashFlow.Cumulative, 12)
	assert.True(t, out.CashFlow.MaxExposure.IsPositive())
}

func TestEvaluate_ErrorMapping(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name    string
		body    string
		status  int
		subject string
	}{
		{
			name:   "malformed JSON",
			body:   `{"units": [`,
			status: http.StatusBadRequest,
		},
		{
			name:    "unknown policy code",
			body:    strings.Replace(towerJSON, `"policy": "l"`, `"policy": "q"`, 1),
			status:  http.StatusUnprocessableEntity,
			subject: "Permits",
		},
		{
			name:    "pace overruns horizon",
			body:    withPace(t, map[string]int{"A": 1, "B": 1}, 9),
			status:  http.StatusUnprocessableEntity,
			subject: "A",
		},
		{
			name:    "unit type without pace",
			body:    withPace(t, map[string]int{"A": 2}, 2),
			status:  http.StatusUnprocessableEntity,
			subject: "B",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/api/evaluate", "application/json", []byte(tt.body))
			assert.Equal(t, tt.status, resp.StatusCode)

			var e api.ErrorResponse
			decode(t, resp, &e)
			assert.NotEmpty(t, e.Error)
			assert.Equal(t, tt.subject, e.Subject)
		})
	}
}

func TestEvaluate_OverrunReportsMonth(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/evaluate", "application/json",
		[]byte(withPace(t, map[string]int{"A": 1, "B": 1}, 9)))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var e api.ErrorResponse
	decode(t, resp, &e)
	require.NotNil(t, e.Month)
	// 8 idle months + 5 full months + tail month = 14 months needed
	assert.Equal(t, 13, *e.Month)
}

// =============================================================================
// PROJECTS
// =============================================================================

func TestProjects_Lifecycle(t *testing.T) {
	srv := newServer(t)

	// GIVEN: a saved project
	created := create(t, srv, towerJSON)
	assert.Equal(t, "Harbor Point", created.Name)
	base := srv.URL + "/api/projects/" + created.ID

	// THEN: it is listed and readable with its inputs
	resp := do(t, http.MethodGet, srv.URL+"/api/projects", "", nil)
	var list []api.ProjectDTO
	decode(t, resp, &list)
	require.Len(t, list, 1)

	resp = do(t, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail api.ProjectDetailDTO
	decode(t, resp, &detail)
	assert.Equal(t, 6, detail.Inputs.Phases.Construction)
	assert.Equal(t, "linear", detail.Inputs.Development[0].Policy)

	// WHEN: the inputs are replaced
	renamed := strings.Replace(towerJSON, "Harbor Point", "Harbor Point II", 1)
	resp = do(t, http.MethodPut, base, "application/json", []byte(renamed))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated api.ProjectDTO
	decode(t, resp, &updated)
	assert.Equal(t, "Harbor Point II", updated.Name)

	// WHEN: it is deleted
	resp = do(t, http.MethodDelete, base, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// THEN: it is gone
	resp = do(t, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, http.MethodGet, base+"/summary", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProjects_InvalidModelNotSaved(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/projects", "application/json",
		[]byte(withPace(t, map[string]int{"A": 2, "B": 1, "C": 1}, 2)))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/projects", "", nil)
	var list []api.ProjectDTO
	decode(t, resp, &list)
	assert.Empty(t, list)
}

func TestProjects_ScheduleEndpoints(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/projects/" + create(t, srv, towerJSON).ID

	resp := do(t, http.MethodGet, base+"/summary", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary api.SummaryDTO
	decode(t, resp, &summary)
	assert.Equal(t, "Harbor Point", summary.Name)

	resp = do(t, http.MethodGet, base+"/sales", "", nil)
	var sales api.SalesDTO
	decode(t, resp, &sales)
	assert.Equal(t, 12, sales.Months)

	resp = do(t, http.MethodGet, base+"/financing", "", nil)
	var financing api.MatrixDTO
	decode(t, resp, &financing)
	assert.Len(t, financing.Rows, 7)
	assert.Equal(t, "A", financing.Rows[0].Label)

	resp = do(t, http.MethodGet, base+"/expenses", "", nil)
	var expenses api.MatrixDTO
	decode(t, resp, &expenses)
	assert.Len(t, expenses.Rows, 6)

	resp = do(t, http.MethodGet, base+"/cashflow", "", nil)
	var cash api.CashFlowDTO
	decode(t, resp, &cash)
	require.Len(t, cash.Net, 12)
	assert.True(t, cash.Receivables[1].IsPositive(), "down payments land in the first sale month")
}

// =============================================================================
// WORKBOOKS
// =============================================================================

func TestProjects_ExportWorkbook(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/projects/" + create(t, srv, towerJSON).ID

	resp := do(t, http.MethodGet, base+"/export.xlsx", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "schedules.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), workbook.SheetCashFlowOut)
}

func TestProjects_ImportRoundTrip(t *testing.T) {
	srv := newServer(t)
	original := create(t, srv, towerJSON)

	// GIVEN: the inputs downloaded as a workbook
	resp := do(t, http.MethodGet, srv.URL+"/api/projects/"+original.ID+"/inputs.xlsx", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var xlsx bytes.Buffer
	_, err := xlsx.ReadFrom(resp.Body)
	require.NoError(t, err)

	// WHEN: the workbook is uploaded under a new name
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("workbook", "inputs.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.WriteField("name", "Harbor Point copy"))
	require.NoError(t, form.Close())

	resp = do(t, http.MethodPost, srv.URL+"/api/projects/import", form.FormDataContentType(), body.Bytes())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var imported api.ProjectDTO
	decode(t, resp, &imported)
	assert.Equal(t, "Harbor Point copy", imported.Name)

	// THEN: both projects produce the same summary totals
	var a, b api.SummaryDTO
	decode(t, do(t, http.MethodGet, srv.URL+"/api/projects/"+original.ID+"/summary", "", nil), &a)
	decode(t, do(t, http.MethodGet, srv.URL+"/api/projects/"+imported.ID+"/summary", "", nil), &b)
	assert.True(t, a.Net.Equal(b.Net), "want %s, got %s", a.Net, b.Net)
}

func TestProjects_ImportRejectsNonWorkbook(t *testing.T) {
	srv := newServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("workbook", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a spreadsheet"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp := do(t, http.MethodPost, srv.URL+"/api/projects/import", form.FormDataContentType(), body.Bytes())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_LoadEveryScenario(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/scenarios", "", nil)
	var list []api.ScenarioDTO
	decode(t, resp, &list)
	require.NotEmpty(t, list)

	for _, s := range list {
		body, err := json.Marshal(api.LoadScenarioRequest{ScenarioID: s.ID})
		require.NoError(t, err)
		resp := do(t, http.MethodPost, srv.URL+"/api/scenarios/load", "application/json", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode, s.ID)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/projects", "", nil)
	var projects []api.ProjectDTO
	decode(t, resp, &projects)
	assert.Len(t, projects, len(list))

	body, _ := json.Marshal(api.LoadScenarioRequest{ScenarioID: "missing"})
	resp = do(t, http.MethodPost, srv.URL+"/api/scenarios/load", "application/json", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
