package date

import (
	"fmt"
	"iter"
	"strings"
	"time"
)

// Period is a reporting bucket size.
type Period int

const (
	Monthly Period = iota
	Annually
)

func (p Period) String() string {
	switch p {
	case Monthly:
		return "monthly"
	case Annually:
		return "annually"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// ParsePeriod parses a period name, accepting a few aliases.
func ParsePeriod(p string) (Period, error) {
	switch strings.ToLower(p) {
	case "monthly", "month", "m":
		return Monthly, nil
	case "annually", "annual", "yearly", "year", "y":
		return Annually, nil
	default:
		return Monthly, fmt.Errorf("unknown period %q", p)
	}
}

// StartOf returns the date of the beginning of the period containing d.
func (d Date) StartOf(period Period) Date {
	switch period {
	case Monthly:
		return New(d.Year(), d.Month(), 1)
	case Annually:
		return New(d.Year(), time.January, 1)
	default:
		panic("unknown period")
	}
}

// EndOf returns the date of the end of the period containing d.
func (d Date) EndOf(period Period) Date {
	switch period {
	case Monthly:
		return New(d.Year(), d.Month()+1, 0)
	case Annually:
		return New(d.Year()+1, time.January, 0)
	default:
		panic("unknown period")
	}
}

// Buckets iterates over the period end dates that cover the range r, in
// chronological order. The first bucket is the one containing r.From.
func (r Range) Buckets(period Period) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for on := r.From.EndOf(period); !on.After(r.To.EndOf(period)); on = on.Add(1).EndOf(period) {
			if !yield(on) {
				return
			}
		}
	}
}
