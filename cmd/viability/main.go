/*
main.go - One-shot command line evaluation

PURPOSE:
  Loads project inputs from a workbook (or a JSON document), computes every
  schedule and either prints a summary or writes the schedules to a new
  workbook. The template command converts any input into an editable
  input workbook.

USAGE:
  viability summary  -in project.xlsx
  viability summary  -in project.json
  viability export   -in project.xlsx -out schedules.xlsx
  viability template -in project.json -out inputs.xlsx

EXIT CODES:
  0  success
  1  invalid usage or unreadable input
  2  the model itself is invalid (configuration or input shape error)

SEE ALSO:
  - workbook/: workbook layout
  - factory/inputs.go: JSON layout
*/
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/warp/viability/factory"
	"github.com/warp/viability/logging"
	"github.com/warp/viability/project"
	"github.com/warp/viability/schedule"
	"github.com/warp/viability/workbook"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	in := fs.String("in", "", "input workbook (.xlsx) or JSON document")
	out := fs.String("out", "", "output workbook")
	level := fs.String("log-level", "warn", "log level")
	fs.Parse(os.Args[2:])

	logger, err := logging.New(*level, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cmd, *in, *out, logger, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if schedule.IsModelError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: viability <summary|export|template> -in FILE [-out FILE]")
}

func run(cmd, in, out string, logger *zap.Logger, stdout io.Writer) error {
	if in == "" {
		return fmt.Errorf("-in is required")
	}
	inputs, err := readInputs(in, logger)
	if err != nil {
		return err
	}

	switch cmd {
	case "summary":
		p, err := project.New(inputs)
		if err != nil {
			return err
		}
		return printSummary(stdout, p)
	case "export":
		if out == "" {
			return fmt.Errorf("-out is required")
		}
		p, err := project.New(inputs)
		if err != nil {
			return err
		}
		return writeFile(out, func(w io.Writer) error {
			return workbook.NewExporter(workbook.DefaultExportOptions(), logger).Export(w, p)
		})
	case "template":
		if out == "" {
			return fmt.Errorf("-out is required")
		}
		return writeFile(out, func(w io.Writer) error {
			return workbook.SaveInputs(w, inputs)
		})
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func readInputs(path string, logger *zap.Logger) (project.Inputs, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return project.Inputs{}, err
		}
		return factory.ParseInputs(data)
	}
	return workbook.NewLoader(logger).Load(path)
}

// writeFile renders fully before touching path, so a failed export leaves
// no partial file behind.
func writeFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func printSummary(w io.Writer, p *project.Project) error {
	cash, err := p.CashFlow()
	if err != nil {
		return err
	}
	expenses, err := p.ExpenseSchedule()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, p.String())
	fmt.Fprintf(tw, "construction cost\t%s\n", p.TotalConstructionCost().StringFixed(2))
	fmt.Fprintf(tw, "sellable value\t%s\n", p.TotalSellableValue().StringFixed(2))
	fmt.Fprintf(tw, "receivables\t%s\n", cash.Receivables.Sum().StringFixed(2))
	fmt.Fprintf(tw, "expenses\t%s\n", cash.Expenses.Sum().StringFixed(2))
	totals := expenses.RowTotals()
	for i, row := range expenses.Rows {
		fmt.Fprintf(tw, "  %s\t%s\n", row.Label, totals[i].StringFixed(2))
	}
	fmt.Fprintf(tw, "net\t%s\n", cash.Net.Sum().StringFixed(2))
	fmt.Fprintf(tw, "max exposure\t%s\n", cash.MaxExposure().StringFixed(2))
	return tw.Flush()
}
