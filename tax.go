package finkitty

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jeanflower/FinKitty-sub001/date"
)

// TaxKind is one of the liability kinds a person can owe.
type TaxKind string

const (
	TaxIncome TaxKind = "incomeTax"
	TaxNI     TaxKind = "NI"
	TaxCGT    TaxKind = "CGT"
)

// liabilityRE matches one liability mark, "Person(kind)".
var liabilityRE = regexp.MustCompile(`^(.+)\((incomeTax|NI|CGT)\)$`)

// Liability names a person and the kind of tax they owe on an income or an
// asset's gains.
type Liability struct {
	Person string
	Kind   TaxKind
}

// ParseLiabilities decodes a liability field: marks like "Joe(incomeTax)"
// joined by "/". An empty field is an empty list, not an error.
func ParseLiabilities(s string) ([]Liability, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "/")
	out := make([]Liability, 0, len(parts))
	for _, part := range parts {
		match := liabilityRE.FindStringSubmatch(strings.TrimSpace(part))
		if match == nil {
			return nil, fmt.Errorf("malformed liability %q", part)
		}
		out = append(out, Liability{Person: match[1], Kind: TaxKind(match[2])})
	}
	return out, nil
}

// taxKey identifies one accumulator: a person and a liability kind.
type taxKey struct {
	person string
	kind   TaxKind
}

// TaxYearEndMonth and TaxYearEndDay fix the UK tax year boundary, April 5.
const (
	TaxYearEndMonth = time.April
	TaxYearEndDay   = 5
)

// TaxYearEnd returns the end date of the tax year containing day.
func TaxYearEnd(day date.Date) date.Date {
	end := date.New(day.Year(), TaxYearEndMonth, TaxYearEndDay)
	if day.After(end) {
		return end.AddYears(1)
	}
	return end
}

// TaxLedger accumulates taxable amounts per (person, kind, tax year) as the
// clock posts taxable events, and settles each year's charge at the tax year
// boundary. All queries are by simulated date; the ledger never looks at the
// wall clock.
type TaxLedger struct {
	rules TaxRules

	pending map[taxKey]float64         // current tax year, not yet settled
	byYear  map[taxKey]map[int]float64 // settled gross per tax year (keyed by end year)

	accrued map[taxKey]*date.History[float64] // cumulative taxable amounts
	charged map[taxKey]*date.History[float64] // cumulative tax charged
	totals  map[taxKey]float64                // running totals behind the histories
	chTotal map[taxKey]float64
}

// NewTaxLedger creates an empty ledger charging under the given rules.
func NewTaxLedger(rules TaxRules) *TaxLedger {
	return &TaxLedger{
		rules:   rules,
		pending: make(map[taxKey]float64),
		byYear:  make(map[taxKey]map[int]float64),
		accrued: make(map[taxKey]*date.History[float64]),
		charged: make(map[taxKey]*date.History[float64]),
		totals:  make(map[taxKey]float64),
		chTotal: make(map[taxKey]float64),
	}
}

// Accrue posts a taxable amount for a person. Negative amounts model
// pension contributions that reduce taxable (or NIable) income.
func (l *TaxLedger) Accrue(person string, kind TaxKind, on date.Date, amount float64) {
	key := taxKey{person, kind}
	l.pending[key] += amount
	l.totals[key] += amount
	h, ok := l.accrued[key]
	if !ok {
		h = &date.History[float64]{}
		l.accrued[key] = h
	}
	h.Append(on, l.totals[key])
}

// Charge is the settlement callback: person owes amount of kind, to be paid
// out of cash by the clock.
type Charge struct {
	Person string
	Kind   TaxKind
	Amount float64
}

// SettleYear closes the tax year ending on yearEnd: it computes each
// person's charge from the year's accumulations, records them, resets the
// accumulators and returns the charges in a deterministic order. Amounts are
// rounded to whole pennies.
func (l *TaxLedger) SettleYear(yearEnd date.Date) []Charge {
	keys := make([]taxKey, 0, len(l.pending))
	for key := range l.pending {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].person != keys[j].person {
			return keys[i].person < keys[j].person
		}
		return keys[i].kind < keys[j].kind
	})

	var charges []Charge
	for _, key := range keys {
		gross := l.pending[key]
		delete(l.pending, key)
		if l.byYear[key] == nil {
			l.byYear[key] = make(map[int]float64)
		}
		l.byYear[key][yearEnd.Year()] = gross

		var due float64
		switch key.kind {
		case TaxIncome:
			due = l.rules.IncomeTax(gross)
		case TaxNI:
			due = l.rules.NI(gross)
		case TaxCGT:
			due = l.rules.CapitalGains(gross)
		}
		due, _ = decimal.NewFromFloat(due).Round(2).Float64()
		if due == 0 {
			continue
		}
		l.chTotal[key] += due
		h, ok := l.charged[key]
		if !ok {
			h = &date.History[float64]{}
			l.charged[key] = h
		}
		h.Append(yearEnd, l.chTotal[key])
		charges = append(charges, Charge{Person: key.person, Kind: key.kind, Amount: due})
	}
	return charges
}

// Taxable returns the cumulative taxable amount posted for a person and kind
// up to a simulated date.
func (l *TaxLedger) Taxable(person string, kind TaxKind, asOf date.Date) float64 {
	if h, ok := l.accrued[taxKey{person, kind}]; ok {
		v, _ := h.ValueAsOf(asOf)
		return v
	}
	return 0
}

// Charged returns the cumulative tax charged for a person and kind up to a
// simulated date.
func (l *TaxLedger) Charged(person string, kind TaxKind, asOf date.Date) float64 {
	if h, ok := l.charged[taxKey{person, kind}]; ok {
		v, _ := h.ValueAsOf(asOf)
		return v
	}
	return 0
}

// TaxableNet returns the cumulative taxable amount net of the tax-free
// allowance for each settled year (the taxChartShowNet view). Only income
// tax has an allowance; other kinds return the gross figure.
func (l *TaxLedger) TaxableNet(person string, kind TaxKind, asOf date.Date) float64 {
	if kind != TaxIncome {
		return l.Taxable(person, kind, asOf)
	}
	settled := l.byYear[taxKey{person, kind}]
	years := make([]int, 0, len(settled))
	for year := range settled {
		years = append(years, year)
	}
	// Float addition is order-sensitive, so map order would make repeated
	// queries disagree in the last bits.
	sort.Ints(years)
	var net float64
	for _, year := range years {
		if date.New(year, TaxYearEndMonth, TaxYearEndDay).After(asOf) {
			continue
		}
		if over := settled[year] - l.rules.PersonalAllowance; over > 0 {
			net += over
		}
	}
	return net
}

// People returns every person the ledger has seen, sorted.
func (l *TaxLedger) People() []string {
	seen := make(map[string]struct{})
	for key := range l.accrued {
		seen[key.person] = struct{}{}
	}
	people := make([]string, 0, len(seen))
	for p := range seen {
		people = append(people, p)
	}
	sort.Strings(people)
	return people
}

// ChargedHistory iterates the cumulative charge history for a person/kind.
func (l *TaxLedger) ChargedHistory(person string, kind TaxKind) *date.History[float64] {
	if h, ok := l.charged[taxKey{person, kind}]; ok {
		return h
	}
	return &date.History[float64]{}
}
