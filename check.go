package finkitty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeanflower/FinKitty-sub001/date"
)

// CheckModel runs the fixed battery of referential and well-formedness
// checks over a model and returns every failure found, first-failure-style
// per entity. It never mutates the model and is purely advisory: callers
// decide whether to block on a non-empty result. Date and value fields are
// pushed through the trigger and settings resolvers, so indirection is
// checked as thoroughly as literals.
func CheckModel(m *Model) []CheckIssue {
	c := &checker{model: m, triggers: NewTriggers(m)}

	settings, err := NewSettings(m, c.triggers)
	if err != nil {
		// A revaluation with a broken date; report it against the settings
		// battery and keep checking what we can with an empty timeline.
		c.issues = append(c.issues, CheckIssue{
			Kind: IssueBadDate, Entity: "settings", Field: "DATE", Detail: err.Error(),
		})
		settings, _ = NewSettings(&Model{}, c.triggers)
	}
	c.settings = settings

	for i := range m.Settings {
		c.checkSetting(&m.Settings[i])
	}
	for i := range m.Triggers {
		c.checkTrigger(&m.Triggers[i])
	}
	for i := range m.Assets {
		c.checkAsset(&m.Assets[i])
	}
	for i := range m.Incomes {
		c.checkIncome(&m.Incomes[i])
	}
	for i := range m.Expenses {
		c.checkExpense(&m.Expenses[i])
	}
	for i := range m.Transactions {
		c.checkTransaction(&m.Transactions[i])
	}
	return c.issues
}

type checker struct {
	model    *Model
	triggers *Triggers
	settings *Settings
	issues   []CheckIssue
}

// report records the first failure for an entity and tells the caller to
// move on.
func (c *checker) report(issue CheckIssue) bool {
	c.issues = append(c.issues, issue)
	return false
}

func (c *checker) checkSetting(s *Setting) bool {
	entity := fmt.Sprintf("setting %q", s.Name)
	if strings.TrimSpace(s.Name) == "" {
		return c.report(CheckIssue{Kind: IssueEmptyName, Entity: "setting"})
	}
	if strings.TrimSpace(s.Value) == "" {
		return c.report(CheckIssue{Kind: IssueBadNumber, Entity: entity, Field: "VALUE", Value: s.Value, Detail: "empty"})
	}
	return true
}

func (c *checker) checkTrigger(t *Trigger) bool {
	entity := fmt.Sprintf("trigger %q", t.Name)
	if strings.TrimSpace(t.Name) == "" {
		return c.report(CheckIssue{Kind: IssueEmptyName, Entity: "trigger"})
	}
	if _, err := c.triggers.Resolve(t.Name); err != nil {
		return c.report(CheckIssue{Kind: IssueBadDate, Entity: entity, Field: "DATE", Value: t.Date, Detail: err.Error()})
	}
	return true
}

// checkDate verifies one date field, reporting against the entity on failure.
func (c *checker) checkDate(entity, field, value string) (date.Date, bool) {
	on, err := c.triggers.ResolveDate(value)
	if err != nil {
		c.report(CheckIssue{Kind: IssueBadDate, Entity: entity, Field: field, Value: value, Detail: err.Error()})
		return date.Date{}, false
	}
	return on, true
}

// checkNumber verifies one numeric-or-formula field as of a date.
func (c *checker) checkNumber(entity, field, value string, asOf date.Date) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	if _, err := c.settings.ResolveNumber(value, asOf); err != nil {
		return c.report(CheckIssue{Kind: IssueBadNumber, Entity: entity, Field: field, Value: value, Detail: err.Error()})
	}
	return true
}

func (c *checker) checkAsset(a *Asset) bool {
	if strings.TrimSpace(a.Name) == "" {
		return c.report(CheckIssue{Kind: IssueEmptyName, Entity: "asset"})
	}
	entity := fmt.Sprintf("asset %q", a.Name)
	start, ok := c.checkDate(entity, "START", a.Start)
	if !ok {
		return false
	}
	if !c.checkNumber(entity, "VALUE", a.Value, start) {
		return false
	}
	if !c.checkNumber(entity, "GROWTH", a.Growth, start) {
		return false
	}
	if !c.checkNumber(entity, "PURCHASE_PRICE", a.PurchasePrice, start) {
		return false
	}
	if a.Quantity != "" {
		if _, err := strconv.Atoi(a.Quantity); err != nil {
			return c.report(CheckIssue{Kind: IssueBadNumber, Entity: entity, Field: "QUANTITY", Value: a.Quantity, Detail: "not an integer"})
		}
	}
	if _, err := ParseLiabilities(a.Liability); err != nil {
		return c.report(CheckIssue{Kind: IssueBadLiability, Entity: entity, Value: a.Liability})
	}
	return true
}

func (c *checker) checkIncome(in *Income) bool {
	if strings.TrimSpace(in.Name) == "" {
		return c.report(CheckIssue{Kind: IssueEmptyName, Entity: "income"})
	}
	entity := fmt.Sprintf("income %q", in.Name)
	start, ok := c.checkDate(entity, "START", in.Start)
	if !ok {
		return false
	}
	end, ok := c.checkDate(entity, "END", in.End)
	if !ok {
		return false
	}
	if end.Before(start) {
		return c.report(CheckIssue{Kind: IssueEndBeforeStart, Entity: entity, Value: in.End, Detail: in.Start})
	}
	if _, ok := c.checkDate(entity, "VALUE_SET", in.ValueSetDate); !ok {
		return false
	}
	if !c.checkNumber(entity, "VALUE", in.Value, start) {
		return false
	}
	if !c.checkNumber(entity, "GROWTH", in.Growth, start) {
		return false
	}
	liabilities, err := ParseLiabilities(in.Liability)
	if err != nil {
		return c.report(CheckIssue{Kind: IssueBadLiability, Entity: entity, Value: in.Liability})
	}
	// NI on its own makes no sense: an income NIable for a person must also
	// be income-taxable for them.
	for _, l := range liabilities {
		if l.Kind != TaxNI {
			continue
		}
		var hasIncomeTax bool
		for _, other := range liabilities {
			if other.Person == l.Person && other.Kind == TaxIncome {
				hasIncomeTax = true
				break
			}
		}
		if !hasIncomeTax {
			return c.report(CheckIssue{Kind: IssueNIWithoutIncomeTax, Entity: entity, Value: l.Person})
		}
	}
	return true
}

func (c *checker) checkExpense(e *Expense) bool {
	if strings.TrimSpace(e.Name) == "" {
		return c.report(CheckIssue{Kind: IssueEmptyName, Entity: "expense"})
	}
	entity := fmt.Sprintf("expense %q", e.Name)
	start, ok := c.checkDate(entity, "START", e.Start)
	if !ok {
		return false
	}
	end, ok := c.checkDate(entity, "END", e.End)
	if !ok {
		return false
	}
	if end.Before(start) {
		return c.report(CheckIssue{Kind: IssueEndBeforeStart, Entity: entity, Value: e.End, Detail: e.Start})
	}
	if _, ok := c.checkDate(entity, "VALUE_SET", e.ValueSetDate); !ok {
		return false
	}
	if !c.checkNumber(entity, "VALUE", e.Value, start) {
		return false
	}
	return c.checkNumber(entity, "GROWTH", e.Growth, start)
}

// checkReference verifies a from/to/incomeSource style reference: it must be
// empty, the cash asset, a setting, or an entity whose start is not after
// the transaction date.
func (c *checker) checkReference(entity, field, name string, txDate date.Date) bool {
	if name == "" || name == CashName || c.settings.Has(name) {
		return true
	}
	if a := c.model.Asset(name); a != nil {
		if start, err := c.triggers.ResolveDate(a.Start); err == nil && start.After(txDate) {
			return c.report(CheckIssue{Kind: IssueUnknownReference, Entity: entity, Field: field, Value: name})
		}
		return true
	}
	if c.model.Income(name) != nil || c.model.Expense(name) != nil {
		return true
	}
	return c.report(CheckIssue{Kind: IssueUnknownReference, Entity: entity, Field: field, Value: name})
}

func (c *checker) checkTransaction(tx *Transaction) bool {
	if strings.TrimSpace(tx.Name) == "" {
		return c.report(CheckIssue{Kind: IssueEmptyName, Entity: "transaction"})
	}
	entity := fmt.Sprintf("transaction %q", tx.Name)

	if _, err := ParseRecurrence(tx.Recurrence); err != nil {
		kind := IssueBadRecurrenceSuffix
		if strings.Contains(err.Error(), "must be a number") {
			kind = IssueBadRecurrenceNumber
		}
		return c.report(CheckIssue{Kind: kind, Entity: entity, Value: tx.Recurrence})
	}
	when, ok := c.checkDate(entity, "DATE", tx.Date)
	if !ok {
		return false
	}
	if tx.StopDate != "" {
		if _, ok := c.checkDate(entity, "STOP_DATE", tx.StopDate); !ok {
			return false
		}
	}

	decoded := DecodeName(tx.Name)
	switch decoded.Role {
	case RoleRevaluation:
		return c.checkRevaluation(entity, tx, when)
	case RoleConditional:
		if !c.checkConditionalTarget(entity, tx) {
			return false
		}
	case RolePensionDC, RolePensionSS:
		// Contribution fractions above 1 would contribute more than the whole
		// salary; rejected rather than silently accepted.
		if !bool(tx.FromAbsolute) && tx.FromValue != "" {
			if frac, err := c.settings.ResolveAmount(tx.FromValue, when, 1); err == nil && frac > 1 {
				return c.report(CheckIssue{Kind: IssuePensionFraction, Entity: entity, Value: tx.FromValue})
			}
		}
	}

	if !c.checkReference(entity, "FROM", tx.From, when) {
		return false
	}
	if !c.checkReference(entity, "TO", tx.To, when) {
		return false
	}
	if tx.FromValue != "" {
		if _, err := c.settings.ResolveAmount(tx.FromValue, when, 1); err != nil {
			return c.report(CheckIssue{Kind: IssueBadNumber, Entity: entity, Field: "FROM_VALUE", Value: tx.FromValue, Detail: err.Error()})
		}
	}
	if tx.ToValue != "" {
		if _, err := c.settings.ResolveAmount(tx.ToValue, when, 1); err != nil {
			return c.report(CheckIssue{Kind: IssueBadNumber, Entity: entity, Field: "TO_VALUE", Value: tx.ToValue, Detail: err.Error()})
		}
	}
	return true
}

// checkRevaluation verifies a revaluation target: a setting, or an entity
// that already exists on the revaluation date.
func (c *checker) checkRevaluation(entity string, tx *Transaction, when date.Date) bool {
	if c.settings.Has(tx.To) {
		return true
	}
	start, ok := c.entityStart(tx.To)
	if !ok {
		return c.report(CheckIssue{Kind: IssueUnknownReference, Entity: entity, Field: "TO", Value: tx.To})
	}
	if when.Before(start) {
		return c.report(CheckIssue{Kind: IssueRevalueBeforeStart, Entity: entity, Value: tx.To})
	}
	if tx.ToValue == "" {
		return c.report(CheckIssue{Kind: IssueBadNumber, Entity: entity, Field: "TO_VALUE", Value: tx.ToValue, Detail: "empty"})
	}
	if _, err := c.settings.ResolveAmount(tx.ToValue, when, 1); err != nil {
		return c.report(CheckIssue{Kind: IssueBadNumber, Entity: entity, Field: "TO_VALUE", Value: tx.ToValue, Detail: err.Error()})
	}
	return true
}

// checkConditionalTarget enforces liquidate-to-cash consistency: a
// conditional either tops up the cash asset or pays off a debt.
func (c *checker) checkConditionalTarget(entity string, tx *Transaction) bool {
	if tx.To == CashName {
		return true
	}
	if a := c.model.Asset(tx.To); a != nil && bool(a.IsDebt) {
		return true
	}
	return c.report(CheckIssue{Kind: IssueConditionalTarget, Entity: entity})
}

// entityStart returns the resolved start date of a named asset, income or
// expense.
func (c *checker) entityStart(name string) (date.Date, bool) {
	var start string
	switch {
	case name == CashName:
		return date.Date{}, true
	case c.model.Asset(name) != nil:
		start = c.model.Asset(name).Start
	case c.model.Income(name) != nil:
		start = c.model.Income(name).Start
	case c.model.Expense(name) != nil:
		start = c.model.Expense(name).Start
	default:
		return date.Date{}, false
	}
	on, err := c.triggers.ResolveDate(start)
	if err != nil {
		return date.Date{}, false
	}
	return on, true
}
