package finkitty

import (
	"strings"
	"testing"
)

// A saved model in the uppercase-keyed, Y/N-flagged file format.
const sampleModelJSON = `{
  "name": "simple",
  "triggers": [{"NAME": "retire", "DATE": "2035-01-01"}],
  "incomes": [{
    "NAME": "salary", "START": "2020-01-01", "END": "retire",
    "VALUE": "2500", "VALUE_SET": "2020-01-01",
    "CPI_IMMUNE": "N", "LIABILITY": "Joe(incomeTax)/Joe(NI)"
  }],
  "expenses": [],
  "assets": [{
    "NAME": "stocks", "CATEGORY": "Investments", "START": "2020-01-01",
    "VALUE": "5000", "GROWTH": "4", "CPI_IMMUNE": "Y"
  }],
  "transactions": [{
    "NAME": "buy stocks", "FROM": "Cash", "FROM_ABSOLUTE": true,
    "FROM_VALUE": "100", "TO": "stocks", "TO_ABSOLUTE": false,
    "DATE": "2020-06-01", "RECURRENCE": "1m", "TYPE": "custom"
  }],
  "settings": [{"NAME": "cpi", "VALUE": "2.5", "TYPE": "adjustable"}]
}`

func TestDecodeModel(t *testing.T) {
	m, err := DecodeModel([]byte(sampleModelJSON))
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}
	if m.Name != "simple" {
		t.Errorf("name = %q", m.Name)
	}
	if len(m.Incomes) != 1 || m.Incomes[0].Liability != "Joe(incomeTax)/Joe(NI)" {
		t.Errorf("incomes = %+v", m.Incomes)
	}
	if m.Incomes[0].CPIImmune {
		t.Error(`"N" flag decoded as true`)
	}
	a := m.Asset("stocks")
	if a == nil || !a.CPIImmune {
		t.Errorf(`"Y" flag lost: %+v`, a)
	}
	tx := m.Transactions[0]
	if !bool(tx.FromAbsolute) || bool(tx.ToAbsolute) || tx.Kind != KindCustom {
		t.Errorf("transaction flags = %+v", tx)
	}
	if issues := CheckModel(m); len(issues) != 0 {
		t.Errorf("sample model fails its own check: %v", issues[0].Message())
	}
}

func TestEncodeModel_roundTrip(t *testing.T) {
	m, err := DecodeModel([]byte(sampleModelJSON))
	if err != nil {
		t.Fatal(err)
	}
	out, err := m.EncodeModel()
	if err != nil {
		t.Fatalf("EncodeModel: %v", err)
	}
	again, err := DecodeModel(out)
	if err != nil {
		t.Fatalf("re-decoding encoded model: %v", err)
	}
	if again.Name != m.Name ||
		len(again.Incomes) != len(m.Incomes) ||
		len(again.Assets) != len(m.Assets) ||
		len(again.Transactions) != len(m.Transactions) {
		t.Errorf("round trip lost sections: %+v", again)
	}
	if again.Incomes[0].Liability != m.Incomes[0].Liability {
		t.Errorf("liability = %q", again.Incomes[0].Liability)
	}
}

func TestEncodeModel_canonicalOrder(t *testing.T) {
	m := &Model{Name: "ordered"}
	out, err := m.EncodeModel()
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	order := []string{`"name"`, `"triggers"`, `"incomes"`, `"expenses"`, `"assets"`, `"transactions"`, `"settings"`}
	last := -1
	for _, key := range order {
		i := strings.Index(s, key)
		if i < 0 {
			t.Fatalf("missing section %s in %s", key, s)
		}
		if i < last {
			t.Errorf("section %s out of order", key)
		}
		last = i
	}
	// Empty sections stay as [] so saved files diff cleanly.
	if strings.Contains(s, "null") {
		t.Errorf("empty sections encoded as null: %s", s)
	}
	if !strings.HasSuffix(s, "\n") {
		t.Error("missing trailing newline")
	}
}
