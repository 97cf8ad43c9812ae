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

type taxCmd struct {
	start    string
	end      string
	cpi      float64
	currency string
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "show the cumulative tax position" }
func (*taxCmd) Usage() string {
	return `fk tax -s <start> -e <end> [-cpi <rate>]

  Simulates the model over the horizon and prints the cumulative taxable
  amounts and charges, per person and liability kind, as of the horizon end.
`
}

func (p *taxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.start, "s", "", "Start of the horizon (date or trigger name).")
	f.StringVar(&p.end, "e", "", "End of the horizon (date or trigger name).")
	f.Float64Var(&p.cpi, "cpi", 0, "Annual inflation in percent.")
	f.StringVar(&p.currency, "currency", "GBP", "ISO currency code used for amounts.")
}

func (p *taxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	doc, err := renderer.TaxMarkdown(run, to.String(), renderer.Options{Currency: p.currency})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
