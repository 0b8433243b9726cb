package workbook

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/warp/viability/project"
	"github.com/warp/viability/schedule"
)

// =============================================================================
// EXPORTER - Computed schedules to a workbook
// =============================================================================

// Sheet names of the exported workbook.
const (
	SheetSummary        = "Summary"
	SheetSalesOut       = "Sales"
	SheetFinancingOut   = "Financing"
	SheetExpensesOut    = "Expenses"
	SheetCashFlowOut    = "Cash Flow"
	defaultNumberFormat = "#,##0.00"
)

// ExportOptions configures the exported workbook.
type ExportOptions struct {
	NumberFormat string
	FreezeHeader bool
	HeaderFill   string
}

// DefaultExportOptions returns the options used by the API and the CLI.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		NumberFormat: defaultNumberFormat,
		FreezeHeader: true,
		HeaderFill:   "4472C4",
	}
}

// Exporter renders a project's schedules, one sheet per matrix.
type Exporter struct {
	options ExportOptions
	logger  *zap.Logger
}

// NewExporter creates an exporter. A nil logger disables logging.
func NewExporter(options ExportOptions, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.NumberFormat == "" {
		options.NumberFormat = defaultNumberFormat
	}
	return &Exporter{options: options, logger: logger}
}

// Export computes every schedule of p and writes the workbook to w.
func (e *Exporter) Export(w io.Writer, p *project.Project) error {
	f, err := e.File(p)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// File computes every schedule of p into an in-memory workbook. Model errors
// from the engines are returned unwrapped so callers can classify them.
func (e *Exporter) File(p *project.Project) (*excelize.File, error) {
	sales, err := p.SalesSchedule()
	if err != nil {
		return nil, err
	}
	financing, err := p.FinancingSchedule()
	if err != nil {
		return nil, err
	}
	expenses, err := p.ExpenseSchedule()
	if err != nil {
		return nil, err
	}
	cash, err := p.CashFlow()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	s, err := e.newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	var cashRows schedule.Matrix
	cashRows.Append("Receivables", cash.Receivables)
	cashRows.Append("Expenses", cash.Expenses)
	cashRows.Append("Net", cash.Net)
	cashRows.Append("Cumulative", cash.Cumulative)

	steps := []struct {
		sheet string
		m     schedule.Matrix
	}{
		{SheetSalesOut, sales.Matrix()},
		{SheetFinancingOut, financing},
		{SheetExpensesOut, expenses},
		{SheetCashFlowOut, cashRows},
	}

	if err := e.writeSummary(f, s, p, cash); err != nil {
		f.Close()
		return nil, err
	}
	for _, step := range steps {
		if err := e.writeMatrix(f, s, step.sheet, step.m, p.TotalMonths()); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	e.logger.Debug("schedules exported",
		zap.String("project", p.Name()),
		zap.Int("months", p.TotalMonths()),
		zap.Int("financing_rows", financing.Len()),
		zap.Int("expense_rows", expenses.Len()))
	return f, nil
}

// MonthHeader returns the column headers of an exported matrix sheet.
func MonthHeader(months int) []string {
	header := make([]string, 0, months+2)
	header = append(header, "label")
	for m := 0; m < months; m++ {
		header = append(header, fmt.Sprintf("M%d", m))
	}
	return append(header, "total")
}

// =============================================================================
// SHEETS
// =============================================================================

type styles struct {
	header int
	number int
}

func (e *Exporter) newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.options.HeaderFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create header style: %w", err)
	}
	format := e.options.NumberFormat
	number, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create number style: %w", err)
	}
	return styles{header: header, number: number}, nil
}

func (e *Exporter) writeMatrix(f *excelize.File, s styles, sheet string, m schedule.Matrix, months int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	header := MonthHeader(months)
	if err := e.writeHeader(f, s, sheet, header); err != nil {
		return err
	}

	for i, row := range m.Rows {
		values := make([]any, 0, months+2)
		values = append(values, row.Label)
		for col := 0; col < months; col++ {
			x := decimal.Zero
			if col < len(row.Values) {
				x = row.Values[col]
			}
			values = append(values, x.InexactFloat64())
		}
		values = append(values, row.Values.Sum().InexactFloat64())

		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cellRef, err)
		}
	}

	if m.Len() > 0 {
		first, _ := excelize.CoordinatesToCellName(2, 2)
		last, _ := excelize.CoordinatesToCellName(len(header), m.Len()+1)
		if err := f.SetCellStyle(sheet, first, last, s.number); err != nil {
			return fmt.Errorf("failed to style %s: %w", sheet, err)
		}
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}

func (e *Exporter) writeSummary(f *excelize.File, s styles, p *project.Project, cash project.CashFlow) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetSummary, err)
	}
	if err := e.writeHeader(f, s, SheetSummary, []string{"metric", "value"}); err != nil {
		return err
	}
	rows := [][]any{
		{"project", p.Name()},
		{"months", p.TotalMonths()},
		{"units", p.TotalUnits()},
		{"construction_cost", p.TotalConstructionCost().InexactFloat64()},
		{"sellable_value", p.TotalSellableValue().InexactFloat64()},
		{"receivables", cash.Receivables.Sum().InexactFloat64()},
		{"expenses", cash.Expenses.Sum().InexactFloat64()},
		{"net", cash.Net.Sum().InexactFloat64()},
		{"max_exposure", cash.MaxExposure().InexactFloat64()},
	}
	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetSummary, cellRef, &row); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", SheetSummary, cellRef, err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "B5", fmt.Sprintf("B%d", len(rows)+1), s.number); err != nil {
		return fmt.Errorf("failed to style %s: %w", SheetSummary, err)
	}
	return f.SetColWidth(SheetSummary, "A", "B", 20)
}

func (e *Exporter) writeHeader(f *excelize.File, s styles, sheet string, columns []string) error {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, s.header); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	if !e.options.FreezeHeader {
		return nil
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
