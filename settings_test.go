package finkitty

import (
	"errors"
	"math"
	"testing"

	"github.com/jeanflower/FinKitty-sub001/date"
)

func newTestSettings(t *testing.T, m *Model) *Settings {
	t.Helper()
	s, err := NewSettings(m, NewTriggers(m))
	if err != nil {
		t.Fatalf("NewSettings: %v", err)
	}
	return s
}

func TestSettings_Resolve(t *testing.T) {
	m := &Model{
		Settings: []Setting{
			{Name: "USD", Value: "2", Kind: SettingAdjustable},
			{Name: "house", Value: "50USD", Kind: SettingConst},
			{Name: "alias", Value: "house", Kind: SettingConst},
		},
	}
	s := newTestSettings(t, m)
	asOf := date.MustParse("2020-06-01")

	tests := []struct {
		name string
		want float64
	}{
		{"USD", 2},
		{"house", 100}, // 50 times the USD setting
		{"alias", 100},
	}
	for _, tc := range tests {
		got, err := s.Resolve(tc.name, asOf)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Resolve(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSettings_RevaluationMovesSetting(t *testing.T) {
	m := &Model{
		Settings: []Setting{{Name: "USD", Value: "2", Kind: SettingAdjustable}},
		Transactions: []Transaction{{
			Name:    "Revalue USD 1",
			To:      "USD",
			ToValue: "3",
			Date:    "2021-01-01",
			Kind:    KindAutoRevaluation,
		}},
	}
	s := newTestSettings(t, m)

	before, err := s.Resolve("USD", date.MustParse("2020-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	after, err := s.Resolve("USD", date.MustParse("2021-01-01"))
	if err != nil {
		t.Fatal(err)
	}
	if before != 2 || after != 3 {
		t.Errorf("USD = %v before, %v after revaluation, want 2 then 3", before, after)
	}
}

func TestSettings_PercentRevaluationScalesPrior(t *testing.T) {
	m := &Model{
		Settings: []Setting{{Name: "USD", Value: "2", Kind: SettingAdjustable}},
		Transactions: []Transaction{
			{
				Name: "Revalue USD 1", To: "USD", ToValue: "110%",
				Date: "2021-01-01", Kind: KindAutoRevaluation,
			},
			{
				Name: "Revalue USD 2", To: "USD", ToValue: "50%",
				Date: "2022-01-01", Kind: KindAutoRevaluation,
			},
		},
	}
	s := newTestSettings(t, m)

	tests := []struct {
		asOf string
		want float64
	}{
		{"2020-12-31", 2},
		{"2021-01-01", 2.2}, // 110% of 2
		{"2022-06-01", 1.1}, // 50% of 2.2
	}
	for _, tc := range tests {
		got, err := s.Resolve("USD", date.MustParse(tc.asOf))
		if err != nil {
			t.Fatalf("Resolve as of %s: %v", tc.asOf, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("USD as of %s = %v, want %v", tc.asOf, got, tc.want)
		}
	}
}

func TestSettings_Errors(t *testing.T) {
	m := &Model{
		Settings: []Setting{
			{Name: "A", Value: "1B", Kind: SettingConst},
			{Name: "B", Value: "1A", Kind: SettingConst},
			{Name: "pct", Value: "90%", Kind: SettingConst},
			{Name: "junk", Value: "not a number", Kind: SettingConst},
		},
	}
	s := newTestSettings(t, m)
	asOf := date.MustParse("2020-01-01")

	if _, err := s.Resolve("A", asOf); !errors.Is(err, ErrCyclicSetting) {
		t.Errorf("cyclic resolve: got %v, want ErrCyclicSetting", err)
	}
	if _, err := s.Resolve("missing", asOf); !errors.Is(err, ErrUnresolvedSetting) {
		t.Errorf("missing resolve: got %v, want ErrUnresolvedSetting", err)
	}
	if _, err := s.Resolve("pct", asOf); !errors.Is(err, ErrMalformedValue) {
		t.Errorf("percent resolve: got %v, want ErrMalformedValue", err)
	}
	if _, err := s.Resolve("junk", asOf); !errors.Is(err, ErrMalformedValue) {
		t.Errorf("junk resolve: got %v, want ErrMalformedValue", err)
	}
}

func TestSettings_ResolveAmount(t *testing.T) {
	s := newTestSettings(t, &Model{})
	asOf := date.MustParse("2020-01-01")

	got, err := s.ResolveAmount("90%", asOf, 200)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-180) > 1e-9 {
		t.Errorf("ResolveAmount(90%%, base 200) = %v, want 180", got)
	}

	got, err = s.ResolveAmount("150", asOf, 200)
	if err != nil {
		t.Fatal(err)
	}
	if got != 150 {
		t.Errorf("ResolveAmount(150) = %v, want 150", got)
	}

	if _, err := s.ResolveNumber("90%", asOf); !errors.Is(err, ErrMalformedValue) {
		t.Errorf("ResolveNumber(90%%): got %v, want ErrMalformedValue", err)
	}
}
