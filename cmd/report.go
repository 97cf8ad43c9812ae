package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	finkitty "github.com/jeanflower/FinKitty-sub001"
	"github.com/jeanflower/FinKitty-sub001/renderer"
)

type reportCmd struct {
	view     finkitty.View
	detail   string
	chart    string
	currency string
	pdfFile  string
}

func (*reportCmd) Name() string { return "report" }
func (*reportCmd) Synopsis() string {
	return "simulate the model and report aggregated series"
}
func (*reportCmd) Usage() string {
	return `fk report -s <start> -e <end> [-f monthly|annually] [-detail totalled|coarse|fine]
          [-focus <name>] [-chart val|+|-|+-] [-cpi <rate>] [-pdf <file>]

  Simulates the model and prints the aggregated report: one table per entity
  kind, the tax summary and the settings values. With -pdf the report is
  additionally written as a PDF document.
`
}

func (p *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.view.ROIStart, "s", "", "Start of the reported window (date or trigger name).")
	f.StringVar(&p.view.ROIEnd, "e", "", "End of the reported window (date or trigger name).")
	f.StringVar(&p.view.Frequency, "f", "annually", "Bucket frequency (monthly, annually).")
	f.StringVar(&p.detail, "detail", "coarse", "Series grouping (totalled, coarse, fine).")
	f.StringVar(&p.view.Focus, "focus", "All", "Focus on one category or item.")
	f.StringVar(&p.chart, "chart", "val", "Point semantics (val, +, -, +-).")
	f.Float64Var(&p.view.CPI, "cpi", 0, "Annual inflation in percent.")
	f.BoolVar(&p.view.TaxChartShowNet, "tax-net", false, "Add per-person net income to the tax table.")
	f.StringVar(&p.view.BirthDate, "birth", "", "Birth date, adds ages to bucket labels.")
	f.StringVar(&p.currency, "currency", "GBP", "ISO currency code used for amounts.")
	f.StringVar(&p.pdfFile, "pdf", "", "Also write the report as a PDF to this file.")
}

func (p *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p.view.Detail = finkitty.DetailLevel(p.detail)
	p.view.ChartView = finkitty.ChartView(p.chart)

	m, err := LoadModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	rules, err := LoadRules()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	report, err := finkitty.Evaluate(m, p.view, rules)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	opts := renderer.Options{Currency: p.currency, SkipTable: true}
	printMarkdown(renderer.ReportMarkdown(report, opts))

	if p.pdfFile != "" {
		doc, err := renderer.ReportPDF(report, m.Name, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing PDF: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(p.pdfFile, doc, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing PDF file %q: %v\n", p.pdfFile, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", p.pdfFile)
	}
	return subcommands.ExitSuccess
}
