package finkitty

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jeanflower/FinKitty-sub001/date"
)

// Resolution failure kinds. Callers test with errors.Is; the wrapped message
// carries the offending name.
var (
	ErrUnresolvedSetting = errors.New("unresolved setting")
	ErrCyclicSetting     = errors.New("cyclic setting reference")
	ErrMalformedValue    = errors.New("malformed value")
)

// numberWithSuffixRE matches a number glued to a setting-name suffix,
// e.g. "50USD" or "-1.5EUR".
var numberWithSuffixRE = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)(\D.*)$`)

// Settings resolves setting values at a point in time. Each setting owns an
// append-only history of string values keyed by date: the initial model value
// at the dawn of time, plus one entry per revaluation transaction that moves
// it. Resolution follows currency-style suffix references recursively with an
// explicit open-set guard, so it always terminates.
type Settings struct {
	histories map[string]*date.History[string]
}

// NewSettings builds the settings timeline for a model: initial values, plus
// the step changes contributed by revaluation transactions targeting a
// setting. Trigger-dated revaluations are resolved through the given
// Triggers.
func NewSettings(m *Model, triggers *Triggers) (*Settings, error) {
	s := &Settings{histories: make(map[string]*date.History[string], len(m.Settings))}
	for _, st := range m.Settings {
		h := &date.History[string]{}
		h.Append(date.Date{}, st.Value) // zero date: from the dawn of time
		s.histories[st.Name] = h
	}
	type reval struct {
		on date.Date
		tx *Transaction
	}
	var revals []reval
	for i := range m.Transactions {
		tx := &m.Transactions[i]
		if tx.Role() != RoleRevaluation {
			continue
		}
		if _, ok := s.histories[tx.To]; !ok {
			continue // revalues an asset or income, not a setting
		}
		on, err := triggers.ResolveDate(tx.Date)
		if err != nil {
			return nil, fmt.Errorf("revaluation %q: %w", tx.Name, err)
		}
		revals = append(revals, reval{on, tx})
	}
	// A percentage revaluation scales the setting's prior value, so it has
	// to be folded into a number against the history built so far. Date
	// order, stable across equal dates by declaration order.
	sort.SliceStable(revals, func(i, j int) bool { return revals[i].on.Before(revals[j].on) })
	for _, rv := range revals {
		raw := rv.tx.ToValue
		if v, pct, err := s.parse(raw, rv.on, map[string]bool{}); err == nil && pct {
			prior, err := s.Resolve(rv.tx.To, rv.on)
			if err != nil {
				return nil, fmt.Errorf("revaluation %q: %w", rv.tx.Name, err)
			}
			raw = strconv.FormatFloat(prior*v, 'g', -1, 64)
		}
		s.histories[rv.tx.To].Append(rv.on, raw)
	}
	return s, nil
}

// Has reports whether a setting with that name exists.
func (s *Settings) Has(name string) bool {
	_, ok := s.histories[name]
	return ok
}

// Resolve returns the numeric value of a setting as of a date. A percentage
// value is an error here: percentages are only meaningful in transaction
// contexts where a base is supplied (use ResolveAmount).
func (s *Settings) Resolve(name string, asOf date.Date) (float64, error) {
	v, pct, err := s.resolve(name, asOf, map[string]bool{})
	if err != nil {
		return 0, err
	}
	if pct {
		return 0, fmt.Errorf("%w: setting %q resolves to a percentage out of any transaction context", ErrMalformedValue, name)
	}
	return v, nil
}

func (s *Settings) resolve(name string, asOf date.Date, open map[string]bool) (value float64, isPercent bool, err error) {
	if open[name] {
		return 0, false, fmt.Errorf("%w involving %q", ErrCyclicSetting, name)
	}
	h, ok := s.histories[name]
	if !ok {
		return 0, false, fmt.Errorf("%w %q", ErrUnresolvedSetting, name)
	}
	raw, ok := h.ValueAsOf(asOf)
	if !ok {
		return 0, false, fmt.Errorf("%w %q", ErrUnresolvedSetting, name)
	}
	open[name] = true
	defer delete(open, name)
	return s.parse(raw, asOf, open)
}

// parse decodes a value string: plain number, percentage, number with a
// setting suffix, or a bare reference to another setting.
func (s *Settings) parse(raw string, asOf date.Date, open map[string]bool) (value float64, isPercent bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, fmt.Errorf("%w: empty value", ErrMalformedValue)
	}

	if pct, ok := strings.CutSuffix(raw, "%"); ok {
		d, derr := decimal.NewFromString(strings.TrimSpace(pct))
		if derr != nil {
			return 0, false, fmt.Errorf("%w %q", ErrMalformedValue, raw)
		}
		v, _ := d.Float64()
		return v / 100, true, nil
	}

	if d, derr := decimal.NewFromString(raw); derr == nil {
		v, _ := d.Float64()
		return v, false, nil
	}

	if match := numberWithSuffixRE.FindStringSubmatch(raw); match != nil {
		d, _ := decimal.NewFromString(match[1])
		suffix := strings.TrimSpace(match[2])
		unit, pct, err := s.resolve(suffix, asOf, open)
		if err != nil {
			return 0, false, err
		}
		n, _ := d.Float64()
		return n * unit, pct, nil
	}

	// Not numeric at all: maybe a bare reference to another setting.
	if s.Has(raw) {
		return s.resolve(raw, asOf, open)
	}
	return 0, false, fmt.Errorf("%w %q", ErrMalformedValue, raw)
}

// ResolveAmount evaluates a free-form value string the way transaction
// amounts are evaluated: a plain number stands alone, a percentage applies
// to the supplied base, and setting references resolve as of the given date.
func (s *Settings) ResolveAmount(raw string, asOf date.Date, base float64) (float64, error) {
	v, pct, err := s.parse(raw, asOf, map[string]bool{})
	if err != nil {
		return 0, err
	}
	if pct {
		return v * base, nil
	}
	return v, nil
}

// ResolveNumber evaluates a value string that must not be a percentage, such
// as an asset's starting value or a growth rate.
func (s *Settings) ResolveNumber(raw string, asOf date.Date) (float64, error) {
	v, pct, err := s.parse(raw, asOf, map[string]bool{})
	if err != nil {
		return 0, err
	}
	if pct {
		return 0, fmt.Errorf("%w: %q is a percentage where a number is required", ErrMalformedValue, raw)
	}
	return v, nil
}
