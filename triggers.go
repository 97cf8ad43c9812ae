package finkitty

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jeanflower/FinKitty-sub001/date"
)

var (
	ErrUnknownTrigger = errors.New("unknown trigger")
	ErrInvalidDate    = errors.New("invalid date")
)

// ternaryRE matches the date-comparison form "A<B?X:Y" where A, B, X and Y
// are trigger names or literal dates.
var ternaryRE = regexp.MustCompile(`^([^<>?]+)<([^<>?]+)\?([^:]+):(.+)$`)

// Triggers resolves named dates. A trigger's date string is either a literal
// date or a ternary comparison over two other triggers, so editing one
// trigger propagates everywhere the model mentions it.
type Triggers struct {
	byName map[string]string
}

// NewTriggers indexes the model's triggers by name.
func NewTriggers(m *Model) *Triggers {
	t := &Triggers{byName: make(map[string]string, len(m.Triggers))}
	for _, tr := range m.Triggers {
		t.byName[tr.Name] = tr.Date
	}
	return t
}

// Has reports whether a trigger with that name exists.
func (t *Triggers) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Resolve returns the date of a named trigger.
func (t *Triggers) Resolve(name string) (date.Date, error) {
	return t.resolve(name, map[string]bool{})
}

// ResolveDate evaluates a date field: a trigger name resolves through the
// trigger table, anything else must parse as a literal date.
func (t *Triggers) ResolveDate(str string) (date.Date, error) {
	return t.resolveDate(str, map[string]bool{})
}

func (t *Triggers) resolve(name string, open map[string]bool) (date.Date, error) {
	if open[name] {
		return date.Date{}, fmt.Errorf("%w: cycle involving %q", ErrUnknownTrigger, name)
	}
	expr, ok := t.byName[name]
	if !ok {
		return date.Date{}, fmt.Errorf("%w %q", ErrUnknownTrigger, name)
	}
	open[name] = true
	defer delete(open, name)
	return t.eval(expr, open)
}

func (t *Triggers) resolveDate(str string, open map[string]bool) (date.Date, error) {
	str = strings.TrimSpace(str)
	if t.Has(str) {
		return t.resolve(str, open)
	}
	return t.eval(str, open)
}

// eval evaluates a date expression: the ternary comparison form, a trigger
// name, or a literal date.
func (t *Triggers) eval(expr string, open map[string]bool) (date.Date, error) {
	expr = strings.TrimSpace(expr)
	if match := ternaryRE.FindStringSubmatch(expr); match != nil {
		a, err := t.resolveDate(match[1], open)
		if err != nil {
			return date.Date{}, err
		}
		b, err := t.resolveDate(match[2], open)
		if err != nil {
			return date.Date{}, err
		}
		x, err := t.resolveDate(match[3], open)
		if err != nil {
			return date.Date{}, err
		}
		y, err := t.resolveDate(match[4], open)
		if err != nil {
			return date.Date{}, err
		}
		if a.Before(b) {
			return x, nil
		}
		return y, nil
	}
	if t.Has(expr) {
		return t.resolve(expr, open)
	}
	on, err := date.Parse(expr)
	if err != nil {
		return date.Date{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return on, nil
}
