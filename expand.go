package finkitty

import (
	"fmt"
	"iter"
	"math"
	"regexp"
	"strconv"

	"github.com/jeanflower/FinKitty-sub001/date"
)

// recurrenceRE matches "<number><unit>" where unit is w, m or y.
var recurrenceRE = regexp.MustCompile(`^(.*)([wmy])$`)

// Recurrence is a parsed transaction recurrence: a possibly fractional count
// of weeks, months or years. The zero value means one-off.
type Recurrence struct {
	Count float64
	Unit  byte // 'w', 'm' or 'y'; 0 for one-off
}

// IsOneOff reports whether the recurrence describes a single occurrence.
func (r Recurrence) IsOneOff() bool { return r.Unit == 0 }

// ParseRecurrence parses "" (one-off) or "<number>[w|m|y]", accepting
// fractional counts such as "5.5m".
func ParseRecurrence(s string) (Recurrence, error) {
	if s == "" {
		return Recurrence{}, nil
	}
	match := recurrenceRE.FindStringSubmatch(s)
	if match == nil {
		return Recurrence{}, fmt.Errorf("recurrence %q must end in w, m or y", s)
	}
	n, err := strconv.ParseFloat(match[1], 64)
	if err != nil || n <= 0 {
		return Recurrence{}, fmt.Errorf("recurrence %q must be a number ending in w, m or y", s)
	}
	return Recurrence{Count: n, Unit: match[2][0]}, nil
}

// at returns the date of the k-th occurrence (k=0 is the anchor itself).
// Fractional counts accumulate before rounding, so "5.5m" advances by 6, 11,
// 17... months: non-uniform steps, but strictly increasing dates.
func (r Recurrence) at(anchor date.Date, k int) date.Date {
	f := float64(k) * r.Count
	switch r.Unit {
	case 'w':
		return anchor.Add(int(math.Round(f * 7)))
	case 'm':
		return anchor.AddMonths(int(math.Round(f)))
	case 'y':
		return anchor.AddMonths(int(math.Round(f * 12)))
	default:
		return anchor
	}
}

// Instance is one concrete occurrence of a transaction within a horizon.
type Instance struct {
	Tx   *Transaction
	Seq  int // declaration index in the model, for stable tie-breaks
	Date date.Date
}

// Expand turns a transaction template into its concrete, strictly
// date-increasing occurrences within the horizon. The sequence is lazy,
// finite and restartable. A one-off yields at most one instance; a recurring
// transaction yields one instance per period from its date up to and
// including min(stopDate, horizon end). Dates and the recurrence must
// already have been validated; Expand returns an error for unresolvable
// fields so the clock can abort rather than default.
func Expand(tx *Transaction, seq int, triggers *Triggers, horizon date.Range) (iter.Seq[Instance], error) {
	rec, err := ParseRecurrence(tx.Recurrence)
	if err != nil {
		return nil, fmt.Errorf("transaction %q: %w", tx.Name, err)
	}
	anchor, err := triggers.ResolveDate(tx.Date)
	if err != nil {
		return nil, fmt.Errorf("transaction %q date: %w", tx.Name, err)
	}
	last := horizon.To
	if tx.StopDate != "" {
		stop, err := triggers.ResolveDate(tx.StopDate)
		if err != nil {
			return nil, fmt.Errorf("transaction %q stop date: %w", tx.Name, err)
		}
		last = date.Min(last, stop)
	}

	return func(yield func(Instance) bool) {
		if rec.IsOneOff() {
			if horizon.Contains(anchor) && !anchor.After(last) {
				yield(Instance{Tx: tx, Seq: seq, Date: anchor})
			}
			return
		}
		prev := date.Date{}
		for k := 0; ; k++ {
			on := rec.at(anchor, k)
			if on.After(last) {
				return
			}
			if k > 0 && !on.After(prev) {
				continue // rounding collision, keep dates strictly increasing
			}
			prev = on
			if on.Before(horizon.From) {
				continue
			}
			if !yield(Instance{Tx: tx, Seq: seq, Date: on}) {
				return
			}
		}
	}, nil
}
