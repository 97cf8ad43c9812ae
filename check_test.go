package finkitty

import "testing"

// validModel is a small model that passes every check, used as the base each
// broken-model case perturbs.
func validModel() *Model {
	return &Model{
		Name: "test",
		Triggers: []Trigger{
			{Name: "retire", Date: "2035-01-01"},
		},
		Incomes: []Income{{
			Name: "salary", Start: "2020-01-01", End: "retire",
			Value: "2500", ValueSetDate: "2020-01-01",
			Liability: "Joe(incomeTax)/Joe(NI)",
		}},
		Expenses: []Expense{{
			Name: "rent", Start: "2020-01-01", End: "retire",
			Value: "800", ValueSetDate: "2020-01-01",
		}},
		Assets: []Asset{
			{Name: "Cash", Start: "2020-01-01", Value: "1000"},
			{Name: "stocks", Start: "2020-01-01", Value: "5000", Growth: "stockGrowth"},
		},
		Transactions: []Transaction{{
			Name: "buy stocks", From: "Cash", FromValue: "100", FromAbsolute: true,
			To: "stocks", Date: "2020-06-01", Recurrence: "1m", StopDate: "retire",
		}},
		Settings: []Setting{
			{Name: "stockGrowth", Value: "4", Kind: SettingAdjustable},
		},
	}
}

func TestCheckModel_valid(t *testing.T) {
	issues := CheckModel(validModel())
	for _, issue := range issues {
		t.Errorf("unexpected issue: %s", issue.Message())
	}
}

func TestCheckModel_broken(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Model)
		want   string
	}{
		{
			"empty asset name",
			func(m *Model) { m.Assets[1].Name = "" },
			`asset: name should be not empty`,
		},
		{
			"bad recurrence suffix",
			func(m *Model) { m.Transactions[0].Recurrence = "1x" },
			`transaction "buy stocks": recurrence "1x" must end in w, m or y`,
		},
		{
			"bad recurrence number",
			func(m *Model) { m.Transactions[0].Recurrence = "manym" },
			`transaction "buy stocks": recurrence "manym" must be a number ending in w, m or y`,
		},
		{
			"unknown transaction target",
			func(m *Model) { m.Transactions[0].To = "stcoks" },
			`transaction "buy stocks": TO "stcoks": unrecognised asset (could be typo or before asset start date?)`,
		},
		{
			"target starts after transaction",
			func(m *Model) { m.Assets[1].Start = "2021-01-01" },
			`transaction "buy stocks": TO "stocks": unrecognised asset (could be typo or before asset start date?)`,
		},
		{
			"non-integer quantity",
			func(m *Model) { m.Assets[1].Quantity = "2.5" },
			`asset "stocks": QUANTITY "2.5" is not a number or recognized setting (not an integer)`,
		},
		{
			"NI without income tax",
			func(m *Model) { m.Incomes[0].Liability = "Joe(NI)" },
			`income "salary": NI liability for "Joe" needs a matching income tax liability`,
		},
		{
			"malformed liability",
			func(m *Model) { m.Incomes[0].Liability = "Joe(councilTax)" },
			`income "salary": liability "Joe(councilTax)" must list Person(incomeTax), Person(NI) or Person(CGT) parts separated by /`,
		},
		{
			"income ends before it starts",
			func(m *Model) { m.Incomes[0].End = "2019-01-01" },
			`income "salary": end "2019-01-01" is before start "2020-01-01"`,
		},
		{
			"conditional must pay to cash or a debt",
			func(m *Model) {
				m.Transactions = append(m.Transactions, Transaction{
					Name: "Conditional sell stocks", From: "stocks", FromValue: "1.0",
					To: "stocks", Date: "2020-06-01",
				})
			},
			`transaction "Conditional sell stocks": conditional transaction must pay to Cash or pay off a debt`,
		},
		{
			"pension fraction above one",
			func(m *Model) {
				m.Transactions = append(m.Transactions, Transaction{
					Name: "PensionJoe", From: "salary", FromValue: "1.5",
					To: "stocks", Date: "2020-06-01",
				})
			},
			`transaction "PensionJoe": pension contribution fraction "1.5" is above 1`,
		},
		{
			"revaluation before entity start",
			func(m *Model) {
				m.Transactions = append(m.Transactions, Transaction{
					Name: "Revalue stocks 1", To: "stocks", ToValue: "6000", Date: "2019-06-01",
				})
			},
			`transaction "Revalue stocks 1": dated before start of "stocks"`,
		},
		{
			"revaluation without a value",
			func(m *Model) {
				m.Transactions = append(m.Transactions, Transaction{
					Name: "Revalue stocks 1", To: "stocks", Date: "2020-06-01",
				})
			},
			`transaction "Revalue stocks 1": TO_VALUE "" is not a number or recognized setting (empty)`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := validModel()
			tc.mutate(m)
			issues := CheckModel(m)
			if len(issues) == 0 {
				t.Fatalf("expected an issue, got none")
			}
			var found bool
			for _, issue := range issues {
				if issue.Message() == tc.want {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("issue %q not reported; got:", tc.want)
				for _, issue := range issues {
					t.Errorf("  %s", issue.Message())
				}
			}
		})
	}
}

func TestCheckModel_badDates(t *testing.T) {
	m := validModel()
	m.Assets[1].Start = "not a date"
	issues := CheckModel(m)
	var found bool
	for _, issue := range issues {
		if issue.Kind == IssueBadDate && issue.Entity == `asset "stocks"` {
			found = true
		}
	}
	if !found {
		t.Errorf("bad asset start date not reported; got %d issues", len(issues))
	}
}
