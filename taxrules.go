package finkitty

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default-rules.yaml
var defaultRulesYAML []byte

// TaxBand is one slice of a banded charge. Upper == 0 means unbounded.
type TaxBand struct {
	Name  string  `yaml:"name"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
	Rate  float64 `yaml:"rate"`
}

// CGTRules parameterizes capital gains: gains above the annual exempt amount
// are charged at a flat rate.
type CGTRules struct {
	AnnualExempt float64 `yaml:"annualExempt"`
	Rate         float64 `yaml:"rate"`
}

// TaperRules removes personal allowance for high incomes: one unit of
// allowance lost per 1/rate units of income over the threshold.
type TaperRules struct {
	Threshold float64 `yaml:"threshold"`
	Rate      float64 `yaml:"rate"`
}

// TaxRules carries all jurisdiction data the ledger needs, so the engine
// itself stays free of hard-coded rates. Loaded from YAML; the embedded
// default describes UK 2024/25.
type TaxRules struct {
	PersonalAllowance float64    `yaml:"personalAllowance"`
	Taper             TaperRules `yaml:"taper"`
	IncomeTaxBands    []TaxBand  `yaml:"incomeTaxBands"`
	NIBands           []TaxBand  `yaml:"niBands"`
	CGT               CGTRules   `yaml:"cgt"`
}

// DefaultTaxRules returns the embedded rule set.
func DefaultTaxRules() TaxRules {
	var r TaxRules
	if err := yaml.Unmarshal(defaultRulesYAML, &r); err != nil {
		panic(fmt.Sprintf("embedded tax rules are broken: %v", err))
	}
	return r
}

// LoadTaxRules reads a rule set from a YAML file.
func LoadTaxRules(path string) (TaxRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TaxRules{}, fmt.Errorf("could not read tax rules: %w", err)
	}
	var r TaxRules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return TaxRules{}, fmt.Errorf("could not parse tax rules %q: %w", path, err)
	}
	return r, nil
}

// taperedAllowance returns the personal allowance after high-income taper.
func (r TaxRules) taperedAllowance(income float64) float64 {
	if r.Taper.Threshold == 0 || income <= r.Taper.Threshold {
		return r.PersonalAllowance
	}
	reduction := (income - r.Taper.Threshold) * r.Taper.Rate
	return math.Max(0, r.PersonalAllowance-reduction)
}

// chargeBanded applies a banded charge to an amount.
func chargeBanded(amount float64, bands []TaxBand) float64 {
	if amount <= 0 {
		return 0
	}
	var total float64
	for _, band := range bands {
		upper := band.Upper
		if upper == 0 {
			upper = math.Inf(1)
		}
		if amount <= band.Lower {
			break
		}
		slice := math.Min(amount, upper) - band.Lower
		if slice > 0 {
			total += slice * band.Rate
		}
	}
	return total
}

// IncomeTax computes the income tax due on a year's taxable income,
// including allowance taper. The band table's thresholds already include the
// standard allowance as a zero-rate band; taper shifts its upper edge down.
func (r TaxRules) IncomeTax(income float64) float64 {
	allowance := r.taperedAllowance(income)
	if allowance == r.PersonalAllowance {
		return chargeBanded(income, r.IncomeTaxBands)
	}
	adjusted := make([]TaxBand, len(r.IncomeTaxBands))
	copy(adjusted, r.IncomeTaxBands)
	for i := range adjusted {
		if adjusted[i].Rate == 0 && adjusted[i].Lower == 0 {
			adjusted[i].Upper = allowance
		} else if i > 0 && adjusted[i-1].Rate == 0 {
			adjusted[i].Lower = allowance
		}
	}
	return chargeBanded(income, adjusted)
}

// NI computes the national insurance due on a year's NIable income.
func (r TaxRules) NI(income float64) float64 {
	return chargeBanded(income, r.NIBands)
}

// CapitalGains computes the CGT due on a year's gains.
func (r TaxRules) CapitalGains(gains float64) float64 {
	taxable := gains - r.CGT.AnnualExempt
	if taxable <= 0 {
		return 0
	}
	return taxable * r.CGT.Rate
}
