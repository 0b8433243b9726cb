package workbook

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/warp/viability/project"
	"github.com/warp/viability/schedule"
)

// =============================================================================
// LOADER - Workbook to project inputs
// =============================================================================

// Loader reads project inputs from a workbook. It is the single load step:
// the returned Inputs are handed to project.New and the workbook is not read
// again.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load opens the workbook at path.
func (l *Loader) Load(path string) (project.Inputs, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return project.Inputs{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	in, err := l.read(f)
	if err != nil {
		return project.Inputs{}, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// LoadReader reads a workbook from r (an upload, an in-memory buffer).
func (l *Loader) LoadReader(r io.Reader) (project.Inputs, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return project.Inputs{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()
	return l.read(f)
}

func (l *Loader) read(f *excelize.File) (project.Inputs, error) {
	var in project.Inputs
	var err error

	if err = l.readAssumptions(f, &in); err != nil {
		return in, err
	}
	if in.Units, err = l.readUnits(f); err != nil {
		return in, err
	}
	if in.CostLines, err = l.readCostLines(f); err != nil {
		return in, err
	}
	if in.DevelopmentExpenses, err = l.readExpenses(f, SheetDevelopment, true); err != nil {
		return in, err
	}
	if in.PostConstructionExpenses, err = l.readExpenses(f, SheetPostConstruction, false); err != nil {
		return in, err
	}
	if in.RecurringExpenses, err = l.readRecurring(f); err != nil {
		return in, err
	}
	if in.Financing, err = l.readFinancing(f); err != nil {
		return in, err
	}
	if in.Sales.Pace, err = l.readPace(f); err != nil {
		return in, err
	}

	l.logger.Debug("workbook loaded",
		zap.String("name", in.Name),
		zap.Int("units", len(in.Units)),
		zap.Int("cost_lines", len(in.CostLines)),
		zap.Int("development_expenses", len(in.DevelopmentExpenses)),
		zap.Int("post_construction_expenses", len(in.PostConstructionExpenses)),
		zap.Int("recurring_expenses", len(in.RecurringExpenses)))
	return in, nil
}

// =============================================================================
// SHEET READERS
// =============================================================================

func (l *Loader) rows(f *excelize.File, sheet string, required bool) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if required {
			return nil, fmt.Errorf("%w: %s", ErrMissingSheet, sheet)
		}
		l.logger.Debug("optional sheet absent", zap.String("sheet", sheet))
		return nil, nil
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return nonEmpty(rows), nil
}

func (l *Loader) readAssumptions(f *excelize.File, in *project.Inputs) error {
	rows, err := l.rows(f, SheetAssumptions, true)
	if err != nil {
		return err
	}
	c := cells{sheet: SheetAssumptions}
	for i, row := range rows {
		key := strings.ToLower(strings.TrimSpace(cell(row, 0)))
		c.row = i + 1
		value := cell(row, 1)
		switch key {
		case KeyName:
			in.Name = strings.TrimSpace(value)
		case KeyPreConstructionMonths:
			in.Phases.PreConstructionMonths = c.integer(key, value)
		case KeyConstructionMonths:
			in.Phases.ConstructionMonths = c.integer(key, value)
		case KeyPostConstructionMonths:
			in.Phases.PostConstructionMonths = c.integer(key, value)
		case KeyFirstSaleMonth:
			in.Sales.FirstSaleMonth = c.integer(key, value)
		case KeyCommissionRate:
			in.Sales.CommissionRate = c.dec(key, value)
		case KeyCostMultiplier:
			in.CostMultiplier = c.dec(key, value)
		case KeyPriceMultiplier:
			in.PriceMultiplier = c.dec(key, value)
		default:
			l.logger.Debug("ignoring assumption", zap.String("key", key))
		}
	}
	return c.err
}

func (l *Loader) readUnits(f *excelize.File) ([]project.SaleUnit, error) {
	rows, err := l.rows(f, SheetUnits, true)
	if err != nil {
		return nil, err
	}
	t, err := newTable(SheetUnits, rows, unitColumns[:6])
	if err != nil {
		return nil, err
	}
	var out []project.SaleUnit
	for t.next() {
		out = append(out, project.SaleUnit{
			ID:           t.str("id"),
			UnitType:     t.str("unit_type"),
			UnitCount:    t.int("unit_count"),
			AreaM2:       t.decimal("area_m2"),
			SellableArea: t.decimal("sellable_area"),
			UnitPrice:    t.decimal("unit_price"),
			UnitValue:    t.decimal("unit_value"),
		})
	}
	return out, t.err
}

func (l *Loader) readCostLines(f *excelize.File) ([]project.CostLine, error) {
	rows, err := l.rows(f, SheetConstructionCost, true)
	if err != nil {
		return nil, err
	}
	t, err := newTable(SheetConstructionCost, rows, []string{"full_cost"})
	if err != nil {
		return nil, err
	}
	var out []project.CostLine
	for t.next() {
		out = append(out, project.CostLine{
			Floor:          t.str("floor"),
			UnitType:       t.str("unit_type"),
			PrivateArea:    t.decimal("private_area"),
			CoveredArea:    t.decimal("covered_area"),
			UncoveredArea:  t.decimal("uncovered_area"),
			CoveredEquiv:   t.decimal("covered_equiv"),
			UncoveredEquiv: t.decimal("uncovered_equiv"),
			TotalArea:      t.decimal("total_area"),
			RawCost:        t.decimal("raw_cost"),
			FullCost:       t.decimal("full_cost"),
		})
	}
	return out, t.err
}

func (l *Loader) readExpenses(f *excelize.File, sheet string, required bool) ([]project.ExpenseLine, error) {
	rows, err := l.rows(f, sheet, required)
	if err != nil {
		return nil, err
	}
	c := cells{sheet: sheet}
	var out []project.ExpenseLine
	for i, row := range rows {
		c.row = i + 1
		label := strings.TrimSpace(cell(row, 0))
		policy, err := schedule.ParseAllocationPolicy(label, cell(row, 2))
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", sheet, c.row, err)
		}
		out = append(out, project.ExpenseLine{
			Label:  label,
			Amount: c.dec("amount", cell(row, 1)),
			Policy: policy,
		})
	}
	return out, c.err
}

func (l *Loader) readRecurring(f *excelize.File) ([]project.RecurringExpense, error) {
	rows, err := l.rows(f, SheetRecurring, false)
	if err != nil {
		return nil, err
	}
	c := cells{sheet: SheetRecurring}
	var out []project.RecurringExpense
	for i, row := range rows {
		c.row = i + 1
		out = append(out, project.RecurringExpense{
			Label:         strings.TrimSpace(cell(row, 0)),
			MonthlyAmount: c.dec("monthly_amount", cell(row, 1)),
		})
	}
	return out, c.err
}

func (l *Loader) readFinancing(f *excelize.File) (project.FinancingTerms, error) {
	rows, err := l.rows(f, SheetFinancing, true)
	if err != nil {
		return nil, err
	}
	c := cells{sheet: SheetFinancing}
	terms := make(project.FinancingTerms, len(rows))
	for i, row := range rows {
		c.row = i + 1
		name := strings.TrimSpace(cell(row, 0))
		terms[name] = c.dec(name, cell(row, 1))
	}
	return terms, c.err
}

func (l *Loader) readPace(f *excelize.File) (map[string]int, error) {
	rows, err := l.rows(f, SheetSalesPace, true)
	if err != nil {
		return nil, err
	}
	t, err := newTable(SheetSalesPace, rows, paceColumns)
	if err != nil {
		return nil, err
	}
	pace := make(map[string]int)
	for t.next() {
		unitType := t.str("unit_type")
		if _, dup := pace[unitType]; dup {
			return nil, &schedule.InputShapeError{Subject: unitType, Reason: "duplicate sales pace row"}
		}
		pace[unitType] = t.int("monthly_pace")
	}
	return pace, t.err
}

// =============================================================================
// CELL PARSING
// =============================================================================

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func nonEmpty(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// cells parses values and keeps the first error with its location.
type cells struct {
	sheet string
	row   int
	err   error
}

func (c *cells) fail(column, raw string) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: sheet %s row %d column %s: %q", ErrBadCell, c.sheet, c.row, column, raw)
	}
}

func (c *cells) dec(column, raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		c.fail(column, raw)
		return decimal.Zero
	}
	return v
}

func (c *cells) integer(column, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	// Spreadsheets store whole numbers as floats ("12.0").
	v, err := decimal.NewFromString(raw)
	if err != nil || !v.IsInteger() {
		c.fail(column, raw)
		return 0
	}
	return int(v.IntPart())
}

// table walks a sheet with a header row.
type table struct {
	cells
	columns map[string]int
	rows    [][]string
	current []string
}

func newTable(sheet string, rows [][]string, required []string) (*table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s has no header row", ErrMissingColumn, sheet)
	}
	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: sheet %s: %s", ErrMissingColumn, sheet, name)
		}
	}
	return &table{cells: cells{sheet: sheet, row: 1}, columns: columns, rows: rows[1:]}, nil
}

func (t *table) next() bool {
	if len(t.rows) == 0 {
		return false
	}
	t.current, t.rows = t.rows[0], t.rows[1:]
	t.row++
	return true
}

func (t *table) raw(column string) string {
	i, ok := t.columns[column]
	if !ok {
		return ""
	}
	return cell(t.current, i)
}

func (t *table) str(column string) string { return strings.TrimSpace(t.raw(column)) }

func (t *table) decimal(column string) decimal.Decimal {
	return t.cells.dec(column, t.raw(column))
}

func (t *table) int(column string) int {
	return t.cells.integer(column, t.raw(column))
}
