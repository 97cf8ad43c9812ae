// Package renderer turns evaluation reports into markdown and PDF documents.
package renderer

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"

	finkitty "github.com/jeanflower/FinKitty-sub001"
	"github.com/jeanflower/FinKitty-sub001/date"
)

// Options configures rendering of an evaluation report.
type Options struct {
	Currency  string // ISO code used for amounts, "GBP" when empty
	SkipTable bool   // do not render the detailed change table
}

func (o Options) currency() string {
	if o.Currency == "" {
		return "GBP"
	}
	return o.Currency
}

// Amount formats a value in the report currency, e.g. "£1,234.56".
func (o Options) Amount(v float64) string {
	units := int64(math.Round(v * 100))
	return money.New(units, o.currency()).Display()
}

// seriesColumns flattens a slice of chart series into a shared label column
// plus one value column per series. All series of one report kind carry the
// same bucket labels.
func seriesColumns(series []finkitty.ChartSeries) (labels []string, names []string, cells map[string][]float64) {
	names = make([]string, 0, len(series))
	cells = make(map[string][]float64, len(series))
	for _, s := range series {
		names = append(names, s.Name)
		col := make([]float64, 0, len(s.DataPoints))
		for _, p := range s.DataPoints {
			col = append(col, p.Y)
		}
		cells[s.Name] = col
		if labels == nil {
			for _, p := range s.DataPoints {
				labels = append(labels, p.Label)
			}
		}
	}
	return labels, names, cells
}

// sectionTitle names a report section for humans.
func sectionTitle(kind string) string {
	switch kind {
	case "assets":
		return "Assets"
	case "debts":
		return "Debts"
	case "incomes":
		return "Incomes"
	case "expenses":
		return "Expenses"
	case "tax":
		return "Tax"
	}
	return kind
}

func parseDay(s string) (date.Date, error) { return date.Parse(s) }

// changeSource abbreviates long generated transaction names in the table.
func changeSource(c finkitty.ValueChange) string {
	const max = 40
	if len(c.Source) <= max {
		return c.Source
	}
	return fmt.Sprintf("%s...", c.Source[:max-3])
}
