package finkitty

import (
	"fmt"
	"sort"

	"github.com/jeanflower/FinKitty-sub001/date"
)

// momentKind orders what happens within one simulated date. Revaluations
// come before conditionals, conditionals before ordinary transactions, and
// growth last, so a revalued entity is not also grown in the same step.
type momentKind int

const (
	momentStart momentKind = iota
	momentRevalue
	momentConditional
	momentIncome
	momentExpense
	momentTransaction
	momentGrowth
	momentTaxYearEnd
)

// moment is one atomic, dated thing for the clock to do. The full sorted
// moment list is the run's script: walking it start to end is the whole
// simulation.
type moment struct {
	on   date.Date
	kind momentKind
	seq  int // declaration order within the kind, for stable ties
	name string
	tx   *Transaction
}

// buildMoments compiles the model into the chronological moment list for
// the horizon. Everything here is derived from the immutable model snapshot:
// entity starts, expanded transaction instances, monthly income and expense
// occurrences, monthly growth points anchored on each entity's start day,
// and tax year boundaries.
func (r *Run) buildMoments(horizon date.Range) ([]moment, error) {
	var moments []moment

	for i := range r.model.Assets {
		a := &r.model.Assets[i]
		start, err := r.triggers.ResolveDate(a.Start)
		if err != nil {
			return nil, fmt.Errorf("asset %q start: %w", a.Name, err)
		}
		moments = append(moments, moment{on: start, kind: momentStart, seq: i, name: a.Name})
		moments = append(moments, monthlyMoments(momentGrowth, a.Name, i, start, horizon.To)...)
	}

	for i := range r.model.Incomes {
		in := &r.model.Incomes[i]
		set, err := r.triggers.ResolveDate(in.ValueSetDate)
		if err != nil {
			return nil, fmt.Errorf("income %q value set date: %w", in.Name, err)
		}
		start, err := r.triggers.ResolveDate(in.Start)
		if err != nil {
			return nil, fmt.Errorf("income %q start: %w", in.Name, err)
		}
		end, err := r.triggers.ResolveDate(in.End)
		if err != nil {
			return nil, fmt.Errorf("income %q end: %w", in.Name, err)
		}
		moments = append(moments, moment{on: set, kind: momentStart, seq: len(r.model.Assets) + i, name: in.Name})
		// The value grows from the day it was set, not from the first payment.
		moments = append(moments, monthlyMoments(momentGrowth, in.Name, len(r.model.Assets)+i, set, horizon.To)...)
		moments = append(moments, monthlyMoments(momentIncome, in.Name, i, start, date.Min(end, horizon.To))...)
	}

	offset := len(r.model.Assets) + len(r.model.Incomes)
	for i := range r.model.Expenses {
		e := &r.model.Expenses[i]
		set, err := r.triggers.ResolveDate(e.ValueSetDate)
		if err != nil {
			return nil, fmt.Errorf("expense %q value set date: %w", e.Name, err)
		}
		start, err := r.triggers.ResolveDate(e.Start)
		if err != nil {
			return nil, fmt.Errorf("expense %q start: %w", e.Name, err)
		}
		end, err := r.triggers.ResolveDate(e.End)
		if err != nil {
			return nil, fmt.Errorf("expense %q end: %w", e.Name, err)
		}
		moments = append(moments, moment{on: set, kind: momentStart, seq: offset + i, name: e.Name})
		moments = append(moments, monthlyMoments(momentGrowth, e.Name, offset+i, set, horizon.To)...)
		moments = append(moments, monthlyMoments(momentExpense, e.Name, i, start, date.Min(end, horizon.To))...)
	}

	for i := range r.model.Transactions {
		tx := &r.model.Transactions[i]
		instances, err := Expand(tx, i, r.triggers, horizon)
		if err != nil {
			return nil, err
		}
		kind := momentTransaction
		switch tx.Role() {
		case RoleRevaluation:
			kind = momentRevalue
		case RoleConditional:
			kind = momentConditional
		}
		for inst := range instances {
			moments = append(moments, moment{on: inst.Date, kind: kind, seq: i, tx: tx, name: tx.Name})
		}
	}

	for end := TaxYearEnd(horizon.From); !end.After(horizon.To); end = end.AddYears(1) {
		moments = append(moments, moment{on: end, kind: momentTaxYearEnd})
	}

	sort.SliceStable(moments, func(i, j int) bool {
		if moments[i].on != moments[j].on {
			return moments[i].on.Before(moments[j].on)
		}
		if moments[i].kind != moments[j].kind {
			return moments[i].kind < moments[j].kind
		}
		return moments[i].seq < moments[j].seq
	})
	return moments, nil
}

// monthlyMoments yields one moment per calendar month anchored on the start
// day, from the month after start (for growth) or start itself (for
// occurrences) up to last.
func monthlyMoments(kind momentKind, name string, seq int, start, last date.Date) []moment {
	var moments []moment
	k := 0
	if kind == momentGrowth {
		k = 1 // the starting value has not grown yet
	}
	for ; ; k++ {
		on := start.AddMonths(k)
		if on.After(last) {
			return moments
		}
		moments = append(moments, moment{on: on, kind: kind, seq: seq, name: name})
	}
}
