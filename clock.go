package finkitty

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jeanflower/FinKitty-sub001/date"
)

// ValueChange is one row of the run's report table: a single dated change to
// one entity, with the value before and after and the name of whatever caused
// it (an income, a transaction, "growth", a tax charge).
type ValueChange struct {
	Date   date.Date `json:"date"`
	Name   string    `json:"name"`
	Change float64   `json:"change"`
	Old    float64   `json:"oldValue"`
	New    float64   `json:"newValue"`
	Source string    `json:"source"`
}

// Run is one completed simulation: the per-entity value histories, the flat
// change table, and the tax ledger, all private to this run. The model is an
// immutable input; two runs over the same model and horizon produce
// bit-identical results.
type Run struct {
	model    *Model
	horizon  date.Range
	cpi      float64
	triggers *Triggers
	settings *Settings
	ledger   *TaxLedger

	values   map[string]*date.History[float64]
	purchase map[string]float64 // remaining purchase cost, for capital gains
	revalued map[string]date.Date
	changes  []ValueChange
}

// Simulate runs the model over the view horizon. The simulation itself starts
// at the earliest entity start so that values are fully grown by the time the
// horizon opens; cpi is the annual inflation rate in percent, compounded
// monthly into every entity not marked CPI-immune. An unresolved trigger,
// setting or entity reference aborts the run.
func Simulate(m *Model, horizon date.Range, cpi float64, rules TaxRules) (*Run, error) {
	triggers := NewTriggers(m)
	settings, err := NewSettings(m, triggers)
	if err != nil {
		return nil, err
	}
	r := &Run{
		model:    m,
		horizon:  horizon,
		cpi:      cpi,
		triggers: triggers,
		settings: settings,
		ledger:   NewTaxLedger(rules),
		values:   make(map[string]*date.History[float64]),
		purchase: make(map[string]float64),
		revalued: make(map[string]date.Date),
	}

	if m.Asset(CashName) == nil {
		h := &date.History[float64]{}
		h.Append(date.Date{}, 0)
		r.values[CashName] = h
	}

	moments, err := r.buildMoments(date.Range{From: r.simStart(horizon.From), To: horizon.To})
	if err != nil {
		return nil, err
	}
	for _, mo := range moments {
		if err := r.apply(mo); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// simStart pushes the simulation back from the view start to the earliest
// dated thing in the model, so that values are fully evolved when the
// reported window opens. Unresolvable dates are ignored here; buildMoments
// reports them properly.
func (r *Run) simStart(viewStart date.Date) date.Date {
	earliest := viewStart
	consider := func(raw string) {
		if raw == "" {
			return
		}
		if on, err := r.triggers.ResolveDate(raw); err == nil {
			earliest = date.Min(earliest, on)
		}
	}
	for i := range r.model.Assets {
		consider(r.model.Assets[i].Start)
	}
	for i := range r.model.Incomes {
		consider(r.model.Incomes[i].ValueSetDate)
		consider(r.model.Incomes[i].Start)
	}
	for i := range r.model.Expenses {
		consider(r.model.Expenses[i].ValueSetDate)
		consider(r.model.Expenses[i].Start)
	}
	for i := range r.model.Transactions {
		consider(r.model.Transactions[i].Date)
	}
	return earliest
}

// Value returns the entity's value as of a date, zero before any history.
func (r *Run) Value(name string, asOf date.Date) float64 {
	h, ok := r.values[name]
	if !ok {
		return 0
	}
	v, _ := h.ValueAsOf(asOf)
	return v
}

// History returns the entity's full value history, or nil.
func (r *Run) History(name string) *date.History[float64] { return r.values[name] }

// Changes returns the report table in simulation order.
func (r *Run) Changes() []ValueChange { return r.changes }

// Tax returns the run's tax ledger.
func (r *Run) Tax() *TaxLedger { return r.ledger }

// Names returns every entity that held a value during the run, sorted.
func (r *Run) Names() []string {
	names := make([]string, 0, len(r.values))
	for name := range r.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Run) apply(mo moment) error {
	switch mo.kind {
	case momentStart:
		return r.applyStart(mo)
	case momentRevalue:
		return r.applyRevaluation(mo)
	case momentConditional:
		return r.applyConditional(mo)
	case momentIncome:
		return r.applyIncome(mo)
	case momentExpense:
		return r.applyExpense(mo)
	case momentTransaction:
		return r.applyTransaction(mo)
	case momentGrowth:
		return r.applyGrowth(mo)
	case momentTaxYearEnd:
		return r.applyTaxYearEnd(mo)
	}
	return fmt.Errorf("unknown moment kind %d", mo.kind)
}

func (r *Run) applyStart(mo moment) error {
	if a := r.model.Asset(mo.name); a != nil {
		v, err := r.settings.ResolveNumber(a.Value, mo.on)
		if err != nil {
			return fmt.Errorf("asset %q value: %w", a.Name, err)
		}
		if a.Quantity != "" {
			q, err := r.settings.ResolveNumber(a.Quantity, mo.on)
			if err != nil {
				return fmt.Errorf("asset %q quantity: %w", a.Name, err)
			}
			v *= q
		}
		if a.PurchasePrice != "" {
			p, err := r.settings.ResolveNumber(a.PurchasePrice, mo.on)
			if err != nil {
				return fmt.Errorf("asset %q purchase price: %w", a.Name, err)
			}
			r.purchase[a.Name] = p
		}
		r.set(a.Name, mo.on, v, "start")
		return nil
	}
	if in := r.model.Income(mo.name); in != nil {
		v, err := r.settings.ResolveNumber(in.Value, mo.on)
		if err != nil {
			return fmt.Errorf("income %q value: %w", in.Name, err)
		}
		r.set(in.Name, mo.on, v, "start")
		return nil
	}
	if e := r.model.Expense(mo.name); e != nil {
		v, err := r.settings.ResolveNumber(e.Value, mo.on)
		if err != nil {
			return fmt.Errorf("expense %q value: %w", e.Name, err)
		}
		r.set(e.Name, mo.on, v, "start")
		return nil
	}
	return fmt.Errorf("start of unknown entity %q", mo.name)
}

// applyGrowth compounds one month of the entity's own growth rate, plus CPI
// unless the entity is CPI-immune. Skipped when the entity was revalued on
// the same date, so a revaluation pins the value for that step.
func (r *Run) applyGrowth(mo moment) error {
	if r.revalued[mo.name] == mo.on {
		return nil
	}
	factor, err := r.growthFactor(mo.name, mo.on)
	if err != nil {
		return err
	}
	old := r.Value(mo.name, mo.on)
	if factor == 1 || old == 0 {
		return nil
	}
	r.set(mo.name, mo.on, old*factor, "growth")
	return nil
}

// growthFactor returns the one-month compounding factor as of a date. Growth
// strings are annual percentages ("5" and "5%" both mean five percent a
// year) or settings references resolving to one.
func (r *Run) growthFactor(name string, on date.Date) (float64, error) {
	var raw string
	immune := false
	switch {
	case r.model.Asset(name) != nil:
		a := r.model.Asset(name)
		raw, immune = a.Growth, bool(a.CPIImmune)
	case r.model.Income(name) != nil:
		in := r.model.Income(name)
		raw, immune = in.Growth, bool(in.CPIImmune)
	case r.model.Expense(name) != nil:
		e := r.model.Expense(name)
		raw, immune = e.Growth, bool(e.CPIImmune)
	}
	annual := 0.0
	if raw != "" {
		v, pct, err := r.settings.parse(raw, on, map[string]bool{})
		if err != nil {
			return 0, fmt.Errorf("growth of %q: %w", name, err)
		}
		if pct {
			annual = v // parse already divided by 100
		} else {
			annual = v / 100
		}
	}
	factor := math.Pow(1+annual, 1.0/12)
	if !immune && r.cpi != 0 {
		factor *= math.Pow(1+r.cpi/100, 1.0/12)
	}
	return factor, nil
}

func (r *Run) applyIncome(mo moment) error {
	in := r.model.Income(mo.name)
	amount := r.Value(in.Name, mo.on)
	if amount == 0 {
		return nil
	}
	r.credit(CashName, mo.on, amount, in.Name)
	v := r.Value(in.Name, mo.on)
	r.changes = append(r.changes, ValueChange{Date: mo.on, Name: in.Name, Change: amount, Old: v, New: v, Source: "payment"})
	liabilities, err := ParseLiabilities(in.Liability)
	if err != nil {
		return fmt.Errorf("income %q: %w", in.Name, err)
	}
	for _, l := range liabilities {
		r.ledger.Accrue(l.Person, l.Kind, mo.on, amount)
	}
	return nil
}

func (r *Run) applyExpense(mo moment) error {
	e := r.model.Expense(mo.name)
	amount := r.Value(e.Name, mo.on)
	if amount == 0 {
		return nil
	}
	r.credit(CashName, mo.on, -amount, e.Name)
	v := r.Value(e.Name, mo.on)
	r.changes = append(r.changes, ValueChange{Date: mo.on, Name: e.Name, Change: -amount, Old: v, New: v, Source: "payment"})
	return nil
}

// applyRevaluation overwrites the target's value. Setting targets are already
// folded into the settings timeline by NewSettings; here they only produce a
// report table row.
func (r *Run) applyRevaluation(mo moment) error {
	tx := mo.tx
	if r.settings.Has(tx.To) {
		old, err := r.settings.Resolve(tx.To, mo.on.Add(-1))
		if err != nil && !errors.Is(err, ErrUnresolvedSetting) {
			return fmt.Errorf("revaluation %q: %w", tx.Name, err)
		}
		now, err := r.settings.Resolve(tx.To, mo.on)
		if err != nil {
			return fmt.Errorf("revaluation %q: %w", tx.Name, err)
		}
		r.changes = append(r.changes, ValueChange{Date: mo.on, Name: tx.To, Change: now - old, Old: old, New: now, Source: tx.Name})
		return nil
	}
	if !r.model.HasEntity(tx.To) {
		return fmt.Errorf("revaluation %q: unknown target %q", tx.Name, tx.To)
	}
	old := r.Value(tx.To, mo.on)
	v, pct, err := r.settings.parse(tx.ToValue, mo.on, map[string]bool{})
	if err != nil {
		return fmt.Errorf("revaluation %q: %w", tx.Name, err)
	}
	now := v
	if pct {
		now = old * v
	}
	r.set(tx.To, mo.on, now, tx.Name)
	r.revalued[tx.To] = mo.on
	return nil
}

// applyConditional liquidates from the source only if the target would
// otherwise stay negative: a negative cash balance, or a debt still owed.
func (r *Run) applyConditional(mo moment) error {
	tx := mo.tx
	need := -r.Value(tx.To, mo.on)
	if need <= 0 {
		return nil
	}
	available := r.Value(tx.From, mo.on)
	if available <= 0 {
		return nil
	}
	most, err := r.fromAmount(tx, mo.on)
	if err != nil {
		return err
	}
	take := math.Min(need, math.Min(most, available))
	if take <= 0 {
		return nil
	}
	r.credit(tx.From, mo.on, -take, tx.Name)
	r.credit(tx.To, mo.on, take, tx.Name)
	r.disposalGains(tx.From, mo.on, take, available)
	return nil
}

func (r *Run) applyTransaction(mo moment) error {
	tx := mo.tx
	switch tx.Role() {
	case RolePensionDC, RolePensionSS:
		return r.applyContribution(mo, tx.Role() == RolePensionSS)
	case RolePensionDB:
		return r.applyDefinedBenefit(mo)
	case RolePensionDBTransfer:
		return r.applyIncomeTransfer(mo)
	}
	return r.applyMove(mo)
}

// applyMove is the ordinary from/to transfer, with crystallization and
// capital gains side effects decided by the decoded roles of the endpoints.
func (r *Run) applyMove(mo moment) error {
	tx := mo.tx
	if tx.To != "" && !r.model.HasEntity(tx.To) {
		return fmt.Errorf("transaction %q: unknown destination %q", tx.Name, tx.To)
	}
	amount := 0.0
	before := 0.0
	if tx.From != "" {
		if !r.model.HasEntity(tx.From) {
			return fmt.Errorf("transaction %q: unknown source %q", tx.Name, tx.From)
		}
		var err error
		amount, err = r.fromAmount(tx, mo.on)
		if err != nil {
			return err
		}
		before = r.Value(tx.From, mo.on)
		if a := r.model.Asset(tx.From); a != nil && !bool(a.CanBeNegative) && !bool(a.IsDebt) && amount > before {
			amount = math.Max(before, 0)
		}
		// A straight transfer paying off a debt never overshoots past zero;
		// the cap applies to the source side too, so no value vanishes.
		if to := r.model.Asset(tx.To); to != nil && bool(to.IsDebt) && tx.ToValue == "" {
			if owed := -r.Value(tx.To, mo.on); amount > owed {
				amount = math.Max(owed, 0)
			}
		}
		if amount == 0 {
			return nil
		}
		r.credit(tx.From, mo.on, -amount, tx.Name)
	}

	if tx.To == "" {
		return nil
	}
	delivered, err := r.toAmount(tx, mo.on, amount)
	if err != nil {
		return err
	}
	if to := r.model.Asset(tx.To); to != nil && bool(to.IsDebt) {
		if owed := -r.Value(tx.To, mo.on); delivered > owed {
			delivered = math.Max(owed, 0)
		}
	}

	from, to := DecodeName(tx.From), DecodeName(tx.To)
	switch {
	case from.Role == RolePensionDC && to.Role == RoleCrystallizedTaxable:
		// Crystallization: a quarter of the pot goes to the tax-free pot
		// when the model declares one, the rest stays taxable on the way out.
		taxFree := EncodeName(RoleCrystallizedTaxFree, from.Base)
		if r.model.Asset(taxFree) != nil {
			r.credit(taxFree, mo.on, delivered*0.25, tx.Name)
			delivered *= 0.75
		}
	case from.Role == RoleCrystallizedTaxable && tx.To == CashName:
		r.ledger.Accrue(from.Base, TaxIncome, mo.on, amount)
	case from.Role == RoleCrystallizedTransfer || to.Role == RoleCrystallizedTransfer:
		// Ownership transfer between people, no tax event.
	default:
		r.disposalGains(tx.From, mo.on, amount, before)
	}
	r.credit(tx.To, mo.on, delivered, tx.Name)
	return nil
}

// applyContribution routes a pension contribution out of a salary: cash
// drops by the employee's share, the pot gains the full (possibly
// employer-matched) amount, and the taxable income shrinks. Salary
// sacrifice additionally shrinks the NI-able income.
func (r *Run) applyContribution(mo moment, sacrifice bool) error {
	tx := mo.tx
	in := r.model.Income(tx.From)
	if in == nil {
		return fmt.Errorf("contribution %q: source %q is not an income", tx.Name, tx.From)
	}
	contribution, err := r.fromAmount(tx, mo.on)
	if err != nil {
		return err
	}
	if contribution == 0 {
		return nil
	}
	potAdd, err := r.toAmount(tx, mo.on, contribution)
	if err != nil {
		return err
	}
	r.credit(CashName, mo.on, -contribution, tx.Name)
	r.credit(tx.To, mo.on, potAdd, tx.Name)
	liabilities, err := ParseLiabilities(in.Liability)
	if err != nil {
		return fmt.Errorf("income %q: %w", in.Name, err)
	}
	for _, l := range liabilities {
		if l.Kind == TaxIncome || (sacrifice && l.Kind == TaxNI) {
			r.ledger.Accrue(l.Person, l.Kind, mo.on, -contribution)
		}
	}
	return nil
}

// applyDefinedBenefit accrues pension entitlement from a salary: the member
// contribution leaves cash and taxable income, and the accrual raises the
// pension income's monthly value.
func (r *Run) applyDefinedBenefit(mo moment) error {
	tx := mo.tx
	in := r.model.Income(tx.From)
	if in == nil {
		return fmt.Errorf("pension accrual %q: source %q is not an income", tx.Name, tx.From)
	}
	pension := r.model.Income(tx.To)
	if pension == nil {
		return fmt.Errorf("pension accrual %q: target %q is not an income", tx.Name, tx.To)
	}
	contribution, err := r.fromAmount(tx, mo.on)
	if err != nil {
		return err
	}
	accrual, err := r.toAmount(tx, mo.on, r.Value(in.Name, mo.on))
	if err != nil {
		return err
	}
	if contribution != 0 {
		r.credit(CashName, mo.on, -contribution, tx.Name)
		liabilities, err := ParseLiabilities(in.Liability)
		if err != nil {
			return fmt.Errorf("income %q: %w", in.Name, err)
		}
		for _, l := range liabilities {
			if l.Kind == TaxIncome {
				r.ledger.Accrue(l.Person, l.Kind, mo.on, -contribution)
			}
		}
	}
	if accrual != 0 {
		r.credit(pension.Name, mo.on, accrual, tx.Name)
	}
	return nil
}

// applyIncomeTransfer moves accrued pension income between people, e.g. a
// widow's share of a defined benefit scheme.
func (r *Run) applyIncomeTransfer(mo moment) error {
	tx := mo.tx
	from := r.model.Income(tx.From)
	to := r.model.Income(tx.To)
	if from == nil || to == nil {
		return fmt.Errorf("pension transfer %q: endpoints must be incomes", tx.Name)
	}
	amount, err := r.fromAmount(tx, mo.on)
	if err != nil {
		return err
	}
	delivered, err := r.toAmount(tx, mo.on, amount)
	if err != nil {
		return err
	}
	r.credit(from.Name, mo.on, -amount, tx.Name)
	r.credit(to.Name, mo.on, delivered, tx.Name)
	return nil
}

func (r *Run) applyTaxYearEnd(mo moment) error {
	for _, charge := range r.ledger.SettleYear(mo.on) {
		if charge.Amount == 0 {
			continue
		}
		source := fmt.Sprintf("%s %s", string(charge.Kind), charge.Person)
		r.credit(CashName, mo.on, -charge.Amount, source)
	}
	return nil
}

// fromAmount evaluates the source side of a transaction as of a date: an
// absolute number, or a fraction/percentage of the source's current value.
func (r *Run) fromAmount(tx *Transaction, on date.Date) (float64, error) {
	if tx.FromValue == "" {
		return 0, nil
	}
	v, pct, err := r.settings.parse(tx.FromValue, on, map[string]bool{})
	if err != nil {
		return 0, fmt.Errorf("transaction %q from value: %w", tx.Name, err)
	}
	if bool(tx.FromAbsolute) && !pct {
		return v, nil
	}
	return v * r.Value(tx.From, on), nil
}

// toAmount evaluates the destination side: absolute, or a fraction of the
// amount taken from the source (1 when unspecified, above 1 for employer
// pension matches).
func (r *Run) toAmount(tx *Transaction, on date.Date, moved float64) (float64, error) {
	if tx.ToValue == "" {
		return moved, nil
	}
	v, pct, err := r.settings.parse(tx.ToValue, on, map[string]bool{})
	if err != nil {
		return 0, fmt.Errorf("transaction %q to value: %w", tx.Name, err)
	}
	if bool(tx.ToAbsolute) && !pct {
		return v, nil
	}
	return v * moved, nil
}

// disposalGains accrues capital gains when value leaves an asset with a
// tracked purchase price: gain is proceeds minus the pro-rated share of the
// remaining purchase cost. Pension pots never generate gains.
func (r *Run) disposalGains(name string, on date.Date, proceeds, before float64) {
	remaining, ok := r.purchase[name]
	if !ok || before <= 0 || proceeds <= 0 {
		return
	}
	if d := DecodeName(name); d.Role != RolePlain {
		return
	}
	a := r.model.Asset(name)
	if a == nil || a.Liability == "" {
		return
	}
	share := remaining * math.Min(proceeds/before, 1)
	gain := proceeds - share
	r.purchase[name] = remaining - share
	person := a.Liability
	if liabilities, err := ParseLiabilities(a.Liability); err == nil && len(liabilities) > 0 {
		person = liabilities[0].Person
	} else {
		person = strings.TrimSpace(person)
	}
	r.ledger.Accrue(person, TaxCGT, on, gain)
}

// credit adjusts an entity's value by delta and records the change.
func (r *Run) credit(name string, on date.Date, delta float64, source string) {
	if delta == 0 {
		return
	}
	old := r.Value(name, on)
	r.set(name, on, old+delta, source)
}

// set writes a new value into the entity's history and records the change.
func (r *Run) set(name string, on date.Date, v float64, source string) {
	h, ok := r.values[name]
	if !ok {
		h = &date.History[float64]{}
		r.values[name] = h
	}
	old, _ := h.ValueAsOf(on)
	h.Append(on, v)
	r.record(on, name, v-old, v, source)
}

func (r *Run) record(on date.Date, name string, change, now float64, source string) {
	r.changes = append(r.changes, ValueChange{Date: on, Name: name, Change: change, Old: now - change, New: now, Source: source})
}
