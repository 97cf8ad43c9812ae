package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	finkitty "github.com/jeanflower/FinKitty-sub001"
	"github.com/jeanflower/FinKitty-sub001/date"
	"github.com/jeanflower/FinKitty-sub001/renderer"
)

type runCmd struct {
	start    string
	end      string
	cpi      float64
	currency string
	verbose  bool
}

func (*runCmd) Name() string { return "run" }
func (*runCmd) Synopsis() string {
	return "simulate the model and log every value change"
}
func (*runCmd) Usage() string {
	return `fk run -s <start> -e <end> [-cpi <rate>] [-v]

  Simulates the model over the given horizon and prints a chronological log
  of every value change: payments, transactions, revaluations, tax charges.
  Growth rows are folded away unless -v is given.
`
}

func (p *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.start, "s", "", "Start of the horizon (date or trigger name).")
	f.StringVar(&p.end, "e", "", "End of the horizon (date or trigger name).")
	f.Float64Var(&p.cpi, "cpi", 0, "Annual inflation in percent.")
	f.StringVar(&p.currency, "currency", "GBP", "ISO currency code used for amounts.")
	f.BoolVar(&p.verbose, "v", false, "Include monthly growth in the log.")
}

func (p *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, err := LoadModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	rules, err := LoadRules()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	triggers := finkitty.NewTriggers(m)
	from, err := triggers.ResolveDate(p.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitFailure
	}
	to, err := triggers.ResolveDate(p.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitFailure
	}

	run, err := finkitty.Simulate(m, date.Range{From: from, To: to}, p.cpi, rules)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	opts := renderer.Options{Currency: p.currency}
	printMarkdown(renderer.ChangesLog(run.Changes(), p.verbose, opts))
	return subcommands.ExitSuccess
}
