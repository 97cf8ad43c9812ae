package renderer

import (
	"fmt"
	"strings"

	finkitty "github.com/jeanflower/FinKitty-sub001"
	"github.com/jeanflower/FinKitty-sub001/date"
)

// ChangesLog renders the change table as a chronological narrative, one
// heading per simulated date. Growth rows are folded away unless verbose,
// they dominate the table and rarely carry news.
func ChangesLog(changes []finkitty.ValueChange, verbose bool, opts Options) string {
	r := &logRenderer{Builder: &strings.Builder{}}
	var day date.Date
	for _, c := range changes {
		if !verbose && c.Source == "growth" {
			continue
		}
		if c.Date != day {
			day = c.Date
			r.Printf("\n## %s\n\n", day)
		}
		if c.Old == c.New {
			// A flow: the stored value did not move.
			r.Printf("- %s paid %s\n", c.Name, opts.Amount(c.Change))
			continue
		}
		r.Printf("- %s: %s -> %s (%s)\n", c.Name, opts.Amount(c.Old), opts.Amount(c.New), c.Source)
	}
	return r.String()
}

type logRenderer struct {
	*strings.Builder
}

func (r *logRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}
