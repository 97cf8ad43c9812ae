package finkitty

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jeanflower/FinKitty-sub001/date"
)

// DetailLevel selects how series are grouped: one total, one per category,
// or one per named item.
type DetailLevel string

const (
	DetailTotalled DetailLevel = "totalled"
	DetailCoarse   DetailLevel = "coarse"
	DetailFine     DetailLevel = "fine"
)

// ChartView selects what each point reports: the value itself, only
// additions, only reductions, or the net change.
type ChartView string

const (
	ViewVal        ChartView = "val"
	ViewAdditions  ChartView = "+"
	ViewReductions ChartView = "-"
	ViewDeltas     ChartView = "+-"
)

// View is the caller's report configuration. Dates accept the same human
// formats as the model, including trigger names.
type View struct {
	ROIStart        string      `json:"roiStart"`
	ROIEnd          string      `json:"roiEnd"`
	Frequency       string      `json:"frequency"` // monthly or annually
	Detail          DetailLevel `json:"detail"`
	Focus           string      `json:"focus,omitempty"` // all, a category, or an item
	ChartView       ChartView   `json:"chartView,omitempty"`
	CPI             float64     `json:"cpi"`
	TaxChartShowNet bool        `json:"taxChartShowNet,omitempty"`
	BirthDate       string      `json:"birthDate,omitempty"`
}

// DataPoint is one charted point.
type DataPoint struct {
	Label string  `json:"label"`
	Y     float64 `json:"y"`
	Ttip  string  `json:"ttip"`
}

// ChartSeries is one stacked column of the chart.
type ChartSeries struct {
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	ShowInLegend bool        `json:"showInLegend"`
	DataPoints   []DataPoint `json:"dataPoints"`
}

// SettingValue is one row of the "today's values" table.
type SettingValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Hint  string `json:"hint,omitempty"`
}

// Report is the full output of one evaluation: chart series per entity kind,
// tax series per person and liability kind, the flat change table, and the
// settings values as of the horizon start.
type Report struct {
	Assets   []ChartSeries  `json:"assets"`
	Debts    []ChartSeries  `json:"debts"`
	Incomes  []ChartSeries  `json:"incomes"`
	Expenses []ChartSeries  `json:"expenses"`
	Tax      []ChartSeries  `json:"tax"`
	Table    []ValueChange  `json:"table"`
	Settings []SettingValue `json:"settings"`
}

// Evaluate simulates the model and aggregates the run into a report per the
// view. It is a pure function of its inputs.
func Evaluate(m *Model, view View, rules TaxRules) (*Report, error) {
	triggers := NewTriggers(m)
	from, err := triggers.ResolveDate(view.ROIStart)
	if err != nil {
		return nil, fmt.Errorf("roiStart: %w", err)
	}
	to, err := triggers.ResolveDate(view.ROIEnd)
	if err != nil {
		return nil, fmt.Errorf("roiEnd: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("roiEnd %s is before roiStart %s", to, from)
	}
	period, err := date.ParsePeriod(view.Frequency)
	if err != nil {
		return nil, err
	}
	horizon := date.Range{From: from, To: to}

	run, err := Simulate(m, horizon, view.CPI, rules)
	if err != nil {
		return nil, err
	}
	return run.Report(view, horizon, period)
}

// Report aggregates an already-completed run. Split from Evaluate so one
// simulation can be sliced several ways.
func (r *Run) Report(view View, horizon date.Range, period date.Period) (*Report, error) {
	var buckets []date.Date
	for b := range horizon.Buckets(period) {
		buckets = append(buckets, b)
	}
	chartView := view.ChartView
	if chartView == "" {
		chartView = ViewVal
	}

	rep := &Report{
		Assets:   r.series(kindAsset, view, chartView, buckets),
		Debts:    r.series(kindDebt, view, chartView, buckets),
		Incomes:  r.series(kindIncome, view, chartView, buckets),
		Expenses: r.series(kindExpense, view, chartView, buckets),
		Tax:      r.taxSeries(view, buckets),
		Settings: r.settingValues(horizon.From),
	}
	for _, c := range r.changes {
		if horizon.Contains(c.Date) {
			rep.Table = append(rep.Table, c)
		}
	}
	return rep, nil
}

type entityKind int

const (
	kindAsset entityKind = iota
	kindDebt
	kindIncome
	kindExpense
)

// classify returns the kind and category of a named entity, or ok=false for
// names outside the model (the implicit cash asset counts as an asset).
func (r *Run) classify(name string) (kind entityKind, category string, ok bool) {
	if a := r.model.Asset(name); a != nil {
		if a.IsDebt {
			return kindDebt, a.Category, true
		}
		return kindAsset, a.Category, true
	}
	if name == CashName {
		return kindAsset, "", true
	}
	if in := r.model.Income(name); in != nil {
		return kindIncome, in.Category, true
	}
	if e := r.model.Expense(name); e != nil {
		return kindExpense, e.Category, true
	}
	return 0, "", false
}

// inFocus reports whether the entity is within the view's focus: everything,
// one category, or one named item.
func inFocus(focus, name, category string) bool {
	switch focus {
	case "", "All", "all":
		return true
	case name, category:
		return true
	}
	return false
}

// seriesKey groups an entity into its chart series per the detail level.
// Coarse grouping falls back to the item name for uncategorized entities.
func seriesKey(detail DetailLevel, name, category string) string {
	switch detail {
	case DetailTotalled:
		return "Total"
	case DetailCoarse:
		if category != "" {
			return category
		}
	}
	return name
}

func (r *Run) series(kind entityKind, view View, chartView ChartView, buckets []date.Date) []ChartSeries {
	grouped := map[string][]string{}
	for _, name := range r.Names() {
		k, category, ok := r.classify(name)
		if !ok || k != kind {
			continue
		}
		if !inFocus(view.Focus, name, category) {
			continue
		}
		key := seriesKey(view.Detail, name, category)
		grouped[key] = append(grouped[key], name)
	}
	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []ChartSeries
	for _, key := range keys {
		points := make([]DataPoint, 0, len(buckets))
		prev := date.Date{}
		for _, b := range buckets {
			y := 0.0
			for _, name := range grouped[key] {
				y += r.pointValue(kind, name, chartView, prev, b)
			}
			points = append(points, newDataPoint(key, b, y, view))
			prev = b
		}
		out = append(out, ChartSeries{Name: key, Type: "stackedColumn", ShowInLegend: true, DataPoints: points})
	}
	return out
}

// pointValue computes one entity's contribution to a bucket ending at b.
// Stored values sample the last value in the bucket; flows and deltas sum
// the changes that landed inside it. Debts and expenses report positive
// magnitudes.
func (r *Run) pointValue(kind entityKind, name string, chartView ChartView, prev, b date.Date) float64 {
	flow := kind == kindIncome || kind == kindExpense
	if chartView == ViewVal && !flow {
		v := r.Value(name, b)
		if kind == kindDebt {
			return -v
		}
		return v
	}
	sum := 0.0
	for _, c := range r.changes {
		if c.Name != name || !c.Date.After(prev) || c.Date.After(b) {
			continue
		}
		if flow && c.Source != "payment" {
			continue
		}
		switch chartView {
		case ViewAdditions:
			if c.Change > 0 {
				sum += c.Change
			}
		case ViewReductions:
			if c.Change < 0 {
				sum -= c.Change
			}
		default:
			sum += c.Change
		}
	}
	if chartView == ViewVal && kind == kindExpense {
		return -sum
	}
	return sum
}

func (r *Run) taxSeries(view View, buckets []date.Date) []ChartSeries {
	var out []ChartSeries
	for _, person := range r.ledger.People() {
		for _, kind := range []TaxKind{TaxIncome, TaxNI, TaxCGT} {
			h := r.ledger.ChargedHistory(person, kind)
			if h == nil || h.Len() == 0 {
				continue
			}
			name := fmt.Sprintf("%s %s", string(kind), person)
			points := make([]DataPoint, 0, len(buckets))
			prev := date.Date{}
			for _, b := range buckets {
				y := r.ledger.Charged(person, kind, b) - r.ledger.Charged(person, kind, prev)
				points = append(points, newDataPoint(name, b, y, view))
				prev = b
			}
			out = append(out, ChartSeries{Name: name, Type: "stackedColumn", ShowInLegend: true, DataPoints: points})
		}
		if view.TaxChartShowNet {
			name := fmt.Sprintf("net income %s", person)
			points := make([]DataPoint, 0, len(buckets))
			prev := date.Date{}
			for _, b := range buckets {
				y := r.ledger.TaxableNet(person, TaxIncome, b) - r.ledger.TaxableNet(person, TaxIncome, prev)
				points = append(points, newDataPoint(name, b, y, view))
				prev = b
			}
			out = append(out, ChartSeries{Name: name, Type: "stackedColumn", ShowInLegend: true, DataPoints: points})
		}
	}
	return out
}

// settingValues resolves every model setting as of the horizon start.
// Non-numeric settings (view preferences and the like) report their raw
// latest string.
func (r *Run) settingValues(asOf date.Date) []SettingValue {
	out := make([]SettingValue, 0, len(r.model.Settings))
	for _, s := range r.model.Settings {
		row := SettingValue{Name: s.Name, Hint: s.Hint}
		if v, err := r.settings.Resolve(s.Name, asOf); err == nil {
			row.Value = decimal.NewFromFloat(v).Round(2).String()
		} else if h := r.settings.histories[s.Name]; h != nil {
			raw, _ := h.ValueAsOf(asOf)
			row.Value = raw
		}
		out = append(out, row)
	}
	return out
}

// newDataPoint labels a bucket with its date, adding the modelled person's
// age when the view carries a birth date. Tooltip amounts are rounded to two
// decimals.
func newDataPoint(name string, b date.Date, y float64, view View) DataPoint {
	label := b.String()
	if view.BirthDate != "" {
		if birth, err := date.Parse(view.BirthDate); err == nil {
			age := b.Year() - birth.Year()
			if b.Month() < birth.Month() || (b.Month() == birth.Month() && b.Day() < birth.Day()) {
				age--
			}
			label = fmt.Sprintf("%s (age %d)", label, age)
		}
	}
	return DataPoint{
		Label: label,
		Y:     y,
		Ttip:  fmt.Sprintf("%s: %s", name, decimal.NewFromFloat(y).Round(2).StringFixed(2)),
	}
}
