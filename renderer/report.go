package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	finkitty "github.com/jeanflower/FinKitty-sub001"
)

// ReportMarkdown renders a full evaluation report as a markdown document:
// one table per entity kind, the tax summary, the settings values, and
// optionally the detailed change table.
func ReportMarkdown(r *finkitty.Report, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Evaluation")

	renderSeriesSection(doc, "assets", r.Assets, opts)
	renderSeriesSection(doc, "debts", r.Debts, opts)
	renderSeriesSection(doc, "incomes", r.Incomes, opts)
	renderSeriesSection(doc, "expenses", r.Expenses, opts)
	renderSeriesSection(doc, "tax", r.Tax, opts)
	renderSettings(doc, r.Settings)
	if !opts.SkipTable {
		renderChangeTable(doc, r.Table, opts)
	}
	return doc.String()
}

func renderSeriesSection(doc *md.Markdown, kind string, series []finkitty.ChartSeries, opts Options) {
	if len(series) == 0 {
		return
	}
	doc.H2(sectionTitle(kind))

	labels, names, cells := seriesColumns(series)
	alignment := make([]md.TableAlignment, 0, len(names)+1)
	alignment = append(alignment, md.AlignLeft)
	header := append([]string{"Date"}, names...)
	for range names {
		alignment = append(alignment, md.AlignRight)
	}
	table := md.TableSet{Alignment: alignment, Header: header, Rows: [][]string{}}
	for i, label := range labels {
		row := []string{label}
		for _, name := range names {
			row = append(row, opts.Amount(cells[name][i]))
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)
}

func renderSettings(doc *md.Markdown, settings []finkitty.SettingValue) {
	if len(settings) == 0 {
		return
	}
	doc.H2("Settings")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft},
		Header:    []string{"Name", "Today's value", "Hint"},
		Rows:      [][]string{},
	}
	for _, s := range settings {
		table.Rows = append(table.Rows, []string{s.Name, s.Value, s.Hint})
	}
	doc.Table(table)
}

func renderChangeTable(doc *md.Markdown, changes []finkitty.ValueChange, opts Options) {
	if len(changes) == 0 {
		return
	}
	doc.H2("Changes")
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft,
			md.AlignRight, md.AlignRight, md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Date", "Name", "Change", "Old", "New", "Source"},
		Rows:   [][]string{},
	}
	for _, c := range changes {
		table.Rows = append(table.Rows, []string{
			c.Date.String(),
			c.Name,
			opts.Amount(c.Change),
			opts.Amount(c.Old),
			opts.Amount(c.New),
			changeSource(c),
		})
	}
	doc.Table(table)
}

// TaxMarkdown renders the ledger's cumulative position per person and kind
// as of a date.
func TaxMarkdown(run *finkitty.Run, asOf string, opts Options) (string, error) {
	day, err := parseDay(asOf)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Tax position as of %s", day))

	ledger := run.Tax()
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Person", "Kind", "Taxable", "Charged"},
		Rows:      [][]string{},
	}
	for _, person := range ledger.People() {
		for _, kind := range []finkitty.TaxKind{finkitty.TaxIncome, finkitty.TaxNI, finkitty.TaxCGT} {
			taxable := ledger.Taxable(person, kind, day)
			charged := ledger.Charged(person, kind, day)
			if taxable == 0 && charged == 0 {
				continue
			}
			table.Rows = append(table.Rows, []string{
				person, string(kind), opts.Amount(taxable), opts.Amount(charged),
			})
		}
	}
	doc.Table(table)
	return doc.String(), nil
}
