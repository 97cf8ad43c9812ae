package finkitty

import (
	"math"
	"testing"

	"github.com/jeanflower/FinKitty-sub001/date"
)

func simulate(t *testing.T, m *Model, from, to string) *Run {
	t.Helper()
	horizon := date.Range{From: date.MustParse(from), To: date.MustParse(to)}
	run, err := Simulate(m, horizon, 0, DefaultTaxRules())
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	return run
}

func TestSimulate_incomeCreditsCash(t *testing.T) {
	m := &Model{
		Incomes: []Income{{
			Name: "salary", Start: "2020-01-01", End: "2021-01-01",
			Value: "1000", ValueSetDate: "2020-01-01",
		}},
	}
	run := simulate(t, m, "2020-01-01", "2020-12-31")

	got := run.Value(CashName, date.MustParse("2020-12-31"))
	if got != 12000 {
		t.Errorf("Cash at year end = %v, want 12000 (twelve monthly payments)", got)
	}
	// A mid-year sample sees only the payments made so far.
	if got := run.Value(CashName, date.MustParse("2020-03-15")); got != 3000 {
		t.Errorf("Cash mid March = %v, want 3000", got)
	}
}

func TestSimulate_deterministic(t *testing.T) {
	m := &Model{
		Incomes: []Income{{
			Name: "salary", Start: "2020-01-01", End: "2021-01-01",
			Value: "1000", ValueSetDate: "2020-01-01", Liability: "Joe(incomeTax)",
		}},
		Assets: []Asset{{Name: "stocks", Start: "2020-01-01", Value: "5000", Growth: "4"}},
		Expenses: []Expense{{
			Name: "rent", Start: "2020-01-01", End: "2021-01-01",
			Value: "700", ValueSetDate: "2020-01-01",
		}},
	}
	a := simulate(t, m, "2020-01-01", "2020-12-31").Changes()
	b := simulate(t, m, "2020-01-01", "2020-12-31").Changes()
	if len(a) != len(b) {
		t.Fatalf("change counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("change %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSimulate_growthCompoundsMonthly(t *testing.T) {
	m := &Model{
		Assets: []Asset{{Name: "stocks", Start: "2020-01-01", Value: "100", Growth: "12"}},
	}
	run := simulate(t, m, "2020-01-01", "2021-01-01")

	// Twelve monthly steps of (1.12)^(1/12) compound back to 12% annual.
	got := run.Value("stocks", date.MustParse("2021-01-01"))
	if math.Abs(got-112) > 1e-9 {
		t.Errorf("stocks after a year of 12%% growth = %v, want 112", got)
	}
	if got := run.Value("stocks", date.MustParse("2020-01-31")); got != 100 {
		t.Errorf("stocks before first growth step = %v, want 100", got)
	}
}

func TestSimulate_cpiCompoundsUnlessImmune(t *testing.T) {
	m := &Model{
		Assets: []Asset{
			{Name: "exposed", Start: "2020-01-01", Value: "100"},
			{Name: "shielded", Start: "2020-01-01", Value: "100", CPIImmune: true},
		},
	}
	horizon := date.Range{From: date.MustParse("2020-01-01"), To: date.MustParse("2021-01-01")}
	run, err := Simulate(m, horizon, 2.5, DefaultTaxRules())
	if err != nil {
		t.Fatal(err)
	}
	end := date.MustParse("2021-01-01")
	if got := run.Value("exposed", end); math.Abs(got-102.5) > 1e-9 {
		t.Errorf("exposed asset = %v, want 102.5 after a year of 2.5%% CPI", got)
	}
	if got := run.Value("shielded", end); got != 100 {
		t.Errorf("CPI-immune asset = %v, want 100", got)
	}
}

func TestSimulate_revaluationPinsValue(t *testing.T) {
	m := &Model{
		Assets: []Asset{{Name: "house", Start: "2020-01-01", Value: "100", Growth: "12"}},
		Transactions: []Transaction{{
			Name: "Revalue house 1", To: "house", ToValue: "500", Date: "2020-06-01",
		}},
	}
	run := simulate(t, m, "2020-01-01", "2020-12-31")

	// The revaluation lands before that day's growth step, which is skipped.
	if got := run.Value("house", date.MustParse("2020-06-01")); got != 500 {
		t.Errorf("house on revaluation day = %v, want exactly 500", got)
	}
	if got := run.Value("house", date.MustParse("2020-07-01")); got <= 500 {
		t.Errorf("house a month later = %v, want growth resumed above 500", got)
	}
}

func TestSimulate_percentSettingRevaluation(t *testing.T) {
	m := &Model{
		Settings: []Setting{{Name: "USD", Value: "2", Kind: SettingAdjustable}},
		Transactions: []Transaction{{
			Name: "Revalue USD 1", To: "USD", ToValue: "110%", Date: "2020-06-01",
			Kind: KindAutoRevaluation,
		}},
	}
	run := simulate(t, m, "2020-01-01", "2020-12-31")

	got, err := run.settings.Resolve("USD", date.MustParse("2020-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-2.2) > 1e-9 {
		t.Errorf("USD after 110%% revaluation = %v, want 2.2", got)
	}
}

func TestSimulate_percentageMove(t *testing.T) {
	m := &Model{
		Assets: []Asset{{Name: "stocks", Start: "2020-01-01", Value: "100"}},
		Transactions: []Transaction{{
			Name: "sell most", From: "stocks", FromValue: "90%", FromAbsolute: true,
			To: CashName, Date: "2020-06-01",
		}},
	}
	run := simulate(t, m, "2020-01-01", "2020-12-31")

	end := date.MustParse("2020-12-31")
	if got := run.Value("stocks", end); math.Abs(got-10) > 1e-9 {
		t.Errorf("stocks = %v, want 10 after selling 90%%", got)
	}
	if got := run.Value(CashName, end); math.Abs(got-90) > 1e-9 {
		t.Errorf("Cash = %v, want 90", got)
	}
}

func TestSimulate_moveClampsAtSourceBalance(t *testing.T) {
	m := &Model{
		Assets: []Asset{{Name: "savings", Start: "2020-01-01", Value: "100"}},
		Transactions: []Transaction{{
			Name: "raid savings", From: "savings", FromValue: "250", FromAbsolute: true,
			To: CashName, Date: "2020-06-01",
		}},
	}
	run := simulate(t, m, "2020-01-01", "2020-12-31")

	end := date.MustParse("2020-12-31")
	if got := run.Value("savings", end); got != 0 {
		t.Errorf("savings = %v, want 0 (move clamped, not driven negative)", got)
	}
	if got := run.Value(CashName, end); got != 100 {
		t.Errorf("Cash = %v, want 100", got)
	}
}

func TestSimulate_conditionalCuresDeficit(t *testing.T) {
	m := &Model{
		Assets: []Asset{{Name: "stocks", Start: "2020-01-01", Value: "1000"}},
		Expenses: []Expense{{
			Name: "bill", Start: "2020-02-01", End: "2020-02-15",
			Value: "100", ValueSetDate: "2020-01-01",
		}},
		Transactions: []Transaction{{
			Name: "Conditional sell stocks", From: "stocks", FromValue: "1.0",
			To: CashName, Date: "2020-01-01", Recurrence: "1m", StopDate: "2020-12-31",
		}},
	}
	run := simulate(t, m, "2020-01-01", "2020-12-31")

	// Conditionals run before same-day expenses, so February's bill leaves
	// cash negative until the March conditional liquidates cover.
	if got := run.Value(CashName, date.MustParse("2020-02-15")); got != -100 {
		t.Errorf("Cash after the bill = %v, want -100", got)
	}
	if got := run.Value(CashName, date.MustParse("2020-03-01")); got != 0 {
		t.Errorf("Cash after the conditional = %v, want 0", got)
	}
	if got := run.Value("stocks", date.MustParse("2020-12-31")); got != 900 {
		t.Errorf("stocks = %v, want 900 (only the deficit liquidated)", got)
	}
}

func TestSimulate_debtPayoffNeverOvershoots(t *testing.T) {
	m := &Model{
		Assets: []Asset{
			{Name: "Cash", Start: "2020-01-01", Value: "1000"},
			{Name: "loan", Start: "2020-01-01", Value: "-300", IsDebt: true, CanBeNegative: true},
		},
		Transactions: []Transaction{{
			Name: "pay off loan", From: "Cash", FromValue: "500", FromAbsolute: true,
			To: "loan", Date: "2020-06-01",
		}},
	}
	run := simulate(t, m, "2020-01-01", "2020-12-31")

	end := date.MustParse("2020-12-31")
	if got := run.Value("loan", end); got != 0 {
		t.Errorf("loan = %v, want 0 (payoff capped at the amount owed)", got)
	}
	if got := run.Value(CashName, end); got != 700 {
		t.Errorf("Cash = %v, want 700 (only the amount owed leaves cash)", got)
	}
}

func TestSimulate_crystallization(t *testing.T) {
	m := &Model{
		Assets: []Asset{
			{Name: "PensionJoe", Start: "2020-01-01", Value: "1000"},
			{Name: "TaxFree Joe", Start: "2020-01-01", Value: "0"},
			{Name: "CrystallizedPensionJoe", Start: "2020-01-01", Value: "0"},
		},
		Transactions: []Transaction{
			{
				Name: "crystallize Joe", From: "PensionJoe", FromValue: "1.0",
				To: "CrystallizedPensionJoe", Date: "2020-06-01",
			},
			{
				Name: "draw down", From: "CrystallizedPensionJoe", FromValue: "1.0",
				To: CashName, Date: "2020-09-01",
			},
		},
	}
	run := simulate(t, m, "2020-01-01", "2020-12-31")

	end := date.MustParse("2020-12-31")
	if got := run.Value("PensionJoe", end); got != 0 {
		t.Errorf("pension pot = %v, want 0 after crystallizing", got)
	}
	if got := run.Value("TaxFree Joe", end); got != 250 {
		t.Errorf("tax-free pot = %v, want 250 (a quarter of the pot)", got)
	}
	if got := run.Value("CrystallizedPensionJoe", end); got != 0 {
		t.Errorf("crystallized pot = %v, want 0 after drawing down", got)
	}
	if got := run.Value(CashName, end); got != 750 {
		t.Errorf("Cash = %v, want 750", got)
	}
	// The drawdown is taxable income for Joe; the tax-free quarter is not.
	if got := run.Tax().Taxable("Joe", TaxIncome, end); got != 750 {
		t.Errorf("taxable income = %v, want 750", got)
	}
}

func TestSimulate_pensionContribution(t *testing.T) {
	m := &Model{
		Incomes: []Income{{
			Name: "salary", Start: "2020-01-01", End: "2020-04-01",
			Value: "1000", ValueSetDate: "2020-01-01", Liability: "Joe(incomeTax)/Joe(NI)",
		}},
		Assets: []Asset{{Name: "PensionJoe", Start: "2020-01-01", Value: "0"}},
		Transactions: []Transaction{{
			// 5% of salary in, employer matches to triple the member share.
			Name: "PensionSS salary", From: "salary", FromValue: "0.05",
			To: "PensionJoe", ToValue: "3.0",
			Date: "2020-01-01", Recurrence: "1m", StopDate: "2020-03-15",
		}},
	}
	run := simulate(t, m, "2020-01-01", "2020-03-31")

	end := date.MustParse("2020-03-31")
	// Three payments of 1000, three member contributions of 50.
	if got := run.Value(CashName, end); math.Abs(got-2850) > 1e-9 {
		t.Errorf("Cash = %v, want 2850", got)
	}
	if got := run.Value("PensionJoe", end); math.Abs(got-450) > 1e-9 {
		t.Errorf("pension pot = %v, want 450 (three contributions of 150)", got)
	}
	// Salary sacrifice shrinks both taxable and NIable income.
	if got := run.Tax().Taxable("Joe", TaxIncome, end); math.Abs(got-2850) > 1e-9 {
		t.Errorf("taxable income = %v, want 2850", got)
	}
	if got := run.Tax().Taxable("Joe", TaxNI, end); math.Abs(got-2850) > 1e-9 {
		t.Errorf("NIable income = %v, want 2850", got)
	}
}

func TestSimulate_earlyTransactionsRunBeforeViewStart(t *testing.T) {
	// The view opens in 2021 but the model's history starts in 2020; the
	// simulation must replay it so the opening values are right.
	m := &Model{
		Assets: []Asset{{Name: "savings", Start: "2020-01-01", Value: "100"}},
		Transactions: []Transaction{{
			Name: "top up", To: "savings", ToValue: "400", ToAbsolute: true,
			Date: "2020-06-01",
		}},
	}
	run := simulate(t, m, "2021-01-01", "2021-12-31")

	if got := run.Value("savings", date.MustParse("2021-01-01")); got != 500 {
		t.Errorf("savings at view start = %v, want 500", got)
	}
}

func TestSimulate_names(t *testing.T) {
	m := &Model{
		Assets: []Asset{{Name: "stocks", Start: "2020-01-01", Value: "100"}},
	}
	run := simulate(t, m, "2020-01-01", "2020-12-31")

	names := run.Names()
	if len(names) != 2 || names[0] != CashName || names[1] != "stocks" {
		t.Errorf("Names() = %v, want [Cash stocks]", names)
	}
}
