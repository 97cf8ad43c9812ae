package finkitty

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// TransactionKind separates hand-written transactions from the ones the
// model editor generates for pension mechanics, revaluations, conditional
// liquidation or debt payoff, and bond issue/maturity.
type TransactionKind string

const (
	KindCustom           TransactionKind = "custom"
	KindAutoPension      TransactionKind = "pension"
	KindAutoRevaluation  TransactionKind = "revalueSetting"
	KindAutoLiquidation  TransactionKind = "liquidate"
	KindAutoPayoffDebt   TransactionKind = "payOffDebt"
	KindAutoBondInvest   TransactionKind = "bondInvest"
	KindAutoBondMaturity TransactionKind = "bondMature"
)

// SettingKind distinguishes constants from view preferences and from
// settings that revaluation transactions may move over time.
type SettingKind string

const (
	SettingConst      SettingKind = "const"
	SettingView       SettingKind = "view"
	SettingAdjustable SettingKind = "adjustable"
)

// Flag is a boolean that also accepts the legacy "Y"/"N" strings saved by
// older model files.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "Y", "y", "T", "True", "true":
			*f = true
			return nil
		case "N", "n", "F", "False", "false", "":
			*f = false
			return nil
		}
		return fmt.Errorf("invalid Y/N flag %q", s)
	}
	return fmt.Errorf("invalid Y/N flag %s", string(data))
}

func (f Flag) MarshalJSON() ([]byte, error) { return json.Marshal(bool(f)) }

// Setting is a named, possibly time-varying value. The value string may be a
// plain number, a percentage, or a number with a currency-setting suffix
// such as "50USD" (50 times the current value of setting "USD").
type Setting struct {
	Name  string      `json:"NAME"`
	Value string      `json:"VALUE"`
	Hint  string      `json:"HINT,omitempty"`
	Kind  SettingKind `json:"TYPE"`
}

// Trigger is a named date. The date is a literal in any accepted format, or
// a ternary comparison over two other trigger names ("A<B?B:A"), which lets
// a model say "the later of A and B".
type Trigger struct {
	Name string `json:"NAME"`
	Date string `json:"DATE"`
}

// Asset covers plain assets, pension pots and, with IsDebt, debts. Value and
// Growth may be settings formulas. Liability names the person owing CGT when
// the asset is sold with a PurchasePrice set. Pension sub-kinds and
// crystallization state are carried by name prefixes decoded by DecodeName.
type Asset struct {
	Name          string `json:"NAME"`
	Category      string `json:"CATEGORY,omitempty"`
	Start         string `json:"START"`
	Value         string `json:"VALUE"`
	Quantity      string `json:"QUANTITY,omitempty"`
	Growth        string `json:"GROWTH,omitempty"`
	CPIImmune     Flag   `json:"CPI_IMMUNE,omitempty"`
	CanBeNegative Flag   `json:"CAN_BE_NEGATIVE,omitempty"`
	IsDebt        Flag   `json:"IS_A_DEBT,omitempty"`
	Liability     string `json:"LIABILITY,omitempty"`
	PurchasePrice string `json:"PURCHASE_PRICE,omitempty"`
}

// Income is a recurring monthly receipt. Liability names the person(s) owing
// income tax and NI on it, e.g. "Joe(incomeTax)/Joe(NI)".
type Income struct {
	Name         string `json:"NAME"`
	Category     string `json:"CATEGORY,omitempty"`
	Start        string `json:"START"`
	End          string `json:"END"`
	Value        string `json:"VALUE"`
	ValueSetDate string `json:"VALUE_SET"`
	CPIImmune    Flag   `json:"CPI_IMMUNE,omitempty"`
	Growth       string `json:"GROWTH,omitempty"`
	Liability    string `json:"LIABILITY,omitempty"`
}

// Expense is a recurring monthly outgoing.
type Expense struct {
	Name         string `json:"NAME"`
	Category     string `json:"CATEGORY,omitempty"`
	Start        string `json:"START"`
	End          string `json:"END"`
	Value        string `json:"VALUE"`
	ValueSetDate string `json:"VALUE_SET"`
	CPIImmune    Flag   `json:"CPI_IMMUNE,omitempty"`
	Growth       string `json:"GROWTH,omitempty"`
}

// Transaction moves value between entities, revalues them, or applies
// pension mechanics, depending on its decoded role. FromAbsolute selects
// between a literal FromValue amount and a percentage of the source's
// current value; ToAbsolute does the same on the destination side.
// Recurrence is "" for a one-off or "<number>[w|m|y]", fractional month
// counts allowed.
type Transaction struct {
	Name         string          `json:"NAME"`
	From         string          `json:"FROM,omitempty"`
	FromAbsolute Flag            `json:"FROM_ABSOLUTE"`
	FromValue    string          `json:"FROM_VALUE,omitempty"`
	To           string          `json:"TO,omitempty"`
	ToAbsolute   Flag            `json:"TO_ABSOLUTE"`
	ToValue      string          `json:"TO_VALUE,omitempty"`
	Date         string          `json:"DATE"`
	StopDate     string          `json:"STOP_DATE,omitempty"`
	Recurrence   string          `json:"RECURRENCE,omitempty"`
	Category     string          `json:"CATEGORY,omitempty"`
	Kind         TransactionKind `json:"TYPE,omitempty"`
}

// Role returns the decoded role of the transaction name.
func (t *Transaction) Role() Role { return DecodeName(t.Name).Role }

// Model is the closed graph handed to the engine: every from/to/liability
// reference resolves to the cash asset, a setting, a trigger, or another
// entity in the same model. The engine treats it as an immutable snapshot.
type Model struct {
	Name         string        `json:"name,omitempty"`
	Triggers     []Trigger     `json:"triggers"`
	Incomes      []Income      `json:"incomes"`
	Expenses     []Expense     `json:"expenses"`
	Assets       []Asset       `json:"assets"`
	Transactions []Transaction `json:"transactions"`
	Settings     []Setting     `json:"settings"`
}

// Asset returns the asset with the given name, or nil.
func (m *Model) Asset(name string) *Asset {
	for i := range m.Assets {
		if m.Assets[i].Name == name {
			return &m.Assets[i]
		}
	}
	return nil
}

// Income returns the income with the given name, or nil.
func (m *Model) Income(name string) *Income {
	for i := range m.Incomes {
		if m.Incomes[i].Name == name {
			return &m.Incomes[i]
		}
	}
	return nil
}

// Expense returns the expense with the given name, or nil.
func (m *Model) Expense(name string) *Expense {
	for i := range m.Expenses {
		if m.Expenses[i].Name == name {
			return &m.Expenses[i]
		}
	}
	return nil
}

// Setting returns the setting with the given name, or nil.
func (m *Model) Setting(name string) *Setting {
	for i := range m.Settings {
		if m.Settings[i].Name == name {
			return &m.Settings[i]
		}
	}
	return nil
}

// Trigger returns the trigger with the given name, or nil.
func (m *Model) Trigger(name string) *Trigger {
	for i := range m.Triggers {
		if m.Triggers[i].Name == name {
			return &m.Triggers[i]
		}
	}
	return nil
}

// HasEntity reports whether name refers to the cash asset or any asset,
// income or expense in the model.
func (m *Model) HasEntity(name string) bool {
	if name == CashName {
		return true
	}
	return m.Asset(name) != nil || m.Income(name) != nil || m.Expense(name) != nil
}
