package renderer

import (
	"strings"
	"testing"

	finkitty "github.com/jeanflower/FinKitty-sub001"
	"github.com/jeanflower/FinKitty-sub001/date"
)

func TestOptions_Amount(t *testing.T) {
	tests := []struct {
		opts Options
		v    float64
		want string
	}{
		{Options{}, 1234.56, "£1,234.56"},
		{Options{}, -50, "-£50.00"},
		{Options{Currency: "EUR"}, 12, "€12.00"},
	}
	for _, tc := range tests {
		if got := tc.opts.Amount(tc.v); got != tc.want {
			t.Errorf("Amount(%v) in %q = %q, want %q", tc.v, tc.opts.currency(), got, tc.want)
		}
	}
}

func TestChangesLog(t *testing.T) {
	changes := []finkitty.ValueChange{
		{Date: date.MustParse("2020-01-01"), Name: "salary", Change: 1000, Old: 1000, New: 1000, Source: "payment"},
		{Date: date.MustParse("2020-01-01"), Name: "Cash", Change: 1000, Old: 0, New: 1000, Source: "salary"},
		{Date: date.MustParse("2020-02-01"), Name: "stocks", Change: 1, Old: 100, New: 101, Source: "growth"},
		{Date: date.MustParse("2020-03-01"), Name: "Cash", Change: -500, Old: 1000, New: 500, Source: "buy stocks"},
	}

	out := ChangesLog(changes, false, Options{})
	if !strings.Contains(out, "## 2020-01-01") || !strings.Contains(out, "## 2020-03-01") {
		t.Errorf("missing date headings in:\n%s", out)
	}
	if strings.Contains(out, "growth") {
		t.Errorf("growth rows not folded in:\n%s", out)
	}
	if !strings.Contains(out, "salary paid £1,000.00") {
		t.Errorf("flow row not rendered as a payment in:\n%s", out)
	}
	if !strings.Contains(out, "£1,000.00 -> £500.00 (buy stocks)") {
		t.Errorf("value change row missing in:\n%s", out)
	}

	verbose := ChangesLog(changes, true, Options{})
	if !strings.Contains(verbose, "growth") {
		t.Errorf("verbose log should keep growth rows:\n%s", verbose)
	}
}

func TestReportMarkdown(t *testing.T) {
	rep := &finkitty.Report{
		Assets: []finkitty.ChartSeries{{
			Name: "stocks", Type: "stackedColumn", ShowInLegend: true,
			DataPoints: []finkitty.DataPoint{{Label: "2020-12-31", Y: 1234.5, Ttip: "stocks: 1234.50"}},
		}},
		Settings: []finkitty.SettingValue{{Name: "cpi", Value: "2.5"}},
		Table: []finkitty.ValueChange{{
			Date: date.MustParse("2020-06-01"), Name: "Cash", Change: 100, Old: 0, New: 100, Source: "top up",
		}},
	}

	out := ReportMarkdown(rep, Options{})
	for _, want := range []string{"# Evaluation", "## Assets", "## Settings", "## Changes", "stocks", "£1,234.50", "2020-12-31"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "## Debts") {
		t.Errorf("empty section rendered:\n%s", out)
	}

	slim := ReportMarkdown(rep, Options{SkipTable: true})
	if strings.Contains(slim, "## Changes") {
		t.Errorf("change table rendered despite SkipTable:\n%s", slim)
	}
}

func TestChangeSource_truncates(t *testing.T) {
	long := strings.Repeat("x", 60)
	got := changeSource(finkitty.ValueChange{Source: long})
	if len(got) != 40 || !strings.HasSuffix(got, "...") {
		t.Errorf("changeSource = %q (len %d)", got, len(got))
	}
	if got := changeSource(finkitty.ValueChange{Source: "short"}); got != "short" {
		t.Errorf("short source mangled: %q", got)
	}
}
