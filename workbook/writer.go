package workbook

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/warp/viability/project"
)

// =============================================================================
// WRITER - Project inputs to a workbook the Loader can read back
// =============================================================================

// SaveInputs writes in as an input workbook.
func SaveInputs(w io.Writer, in project.Inputs) error {
	f, err := InputsFile(in)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// InputsFile builds an input workbook in memory.
func InputsFile(in project.Inputs) (*excelize.File, error) {
	f := excelize.NewFile()
	sw := sheetWriter{f: f}

	sw.sheet(SheetAssumptions)
	sw.row("A", KeyName, in.Name)
	sw.row("A", KeyPreConstructionMonths, in.Phases.PreConstructionMonths)
	sw.row("A", KeyConstructionMonths, in.Phases.ConstructionMonths)
	sw.row("A", KeyPostConstructionMonths, in.Phases.PostConstructionMonths)
	sw.row("A", KeyFirstSaleMonth, in.Sales.FirstSaleMonth)
	sw.row("A", KeyCommissionRate, in.Sales.CommissionRate.InexactFloat64())
	sw.row("A", KeyCostMultiplier, in.CostMultiplier.InexactFloat64())
	sw.row("A", KeyPriceMultiplier, in.PriceMultiplier.InexactFloat64())

	sw.sheet(SheetUnits)
	sw.header(unitColumns)
	for _, u := range in.Units {
		sw.row("A", u.ID, u.UnitType, u.UnitCount, u.AreaM2.InexactFloat64(), u.SellableArea.InexactFloat64(),
			u.UnitPrice.InexactFloat64(), u.UnitValue.InexactFloat64())
	}

	sw.sheet(SheetConstructionCost)
	sw.header(costColumns)
	for _, c := range in.CostLines {
		sw.row("A", c.Floor, c.UnitType, c.PrivateArea.InexactFloat64(), c.CoveredArea.InexactFloat64(),
			c.UncoveredArea.InexactFloat64(), c.CoveredEquiv.InexactFloat64(), c.UncoveredEquiv.InexactFloat64(),
			c.TotalArea.InexactFloat64(), c.RawCost.InexactFloat64(), c.FullCost.InexactFloat64())
	}

	for _, scoped := range []struct {
		sheet string
		lines []project.ExpenseLine
	}{
		{SheetDevelopment, in.DevelopmentExpenses},
		{SheetPostConstruction, in.PostConstructionExpenses},
	} {
		sw.sheet(scoped.sheet)
		for _, e := range scoped.lines {
			sw.row("A", e.Label, e.Amount.InexactFloat64(), string(e.Policy))
		}
	}

	sw.sheet(SheetRecurring)
	for _, r := range in.RecurringExpenses {
		sw.row("A", r.Label, r.MonthlyAmount.InexactFloat64())
	}

	sw.sheet(SheetFinancing)
	for _, name := range sortedKeys(in.Financing) {
		sw.row("A", name, in.Financing[name].InexactFloat64())
	}

	sw.sheet(SheetSalesPace)
	sw.header(paceColumns)
	types := make([]string, 0, len(in.Sales.Pace))
	for t := range in.Sales.Pace {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		sw.row("A", t, in.Sales.Pace[t])
	}

	if sw.err != nil {
		f.Close()
		return nil, sw.err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	return f, nil
}

func sortedKeys(terms project.FinancingTerms) []string {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sheetWriter appends rows to the current sheet and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	name string
	next int
	err  error
}

func (s *sheetWriter) sheet(name string) {
	if s.err != nil {
		return
	}
	if _, err := s.f.NewSheet(name); err != nil {
		s.err = fmt.Errorf("failed to create sheet %s: %w", name, err)
		return
	}
	s.name, s.next = name, 1
}

func (s *sheetWriter) header(columns []string) {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	s.row("A", values...)
}

func (s *sheetWriter) row(col string, values ...any) {
	if s.err != nil {
		return
	}
	cellRef := fmt.Sprintf("%s%d", col, s.next)
	if err := s.f.SetSheetRow(s.name, cellRef, &values); err != nil {
		s.err = fmt.Errorf("failed to write %s!%s: %w", s.name, cellRef, err)
		return
	}
	s.next++
}
