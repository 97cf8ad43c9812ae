package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	finkitty "github.com/jeanflower/FinKitty-sub001"
)

type settingsCmd struct {
	asOf string
}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "show the settings values as of a date" }
func (*settingsCmd) Usage() string {
	return `fk settings [-d <date>]

  Resolves every model setting as of the given date (today when omitted) and
  prints them with their hints.
`
}

func (p *settingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.asOf, "d", "", "The date to resolve at (date or trigger name).")
}

func (p *settingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, err := LoadModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	asOf := p.asOf
	if asOf == "" {
		asOf = time.Now().Format("2006-01-02")
	}
	view := finkitty.View{ROIStart: asOf, ROIEnd: asOf, Frequency: "annually", Detail: finkitty.DetailCoarse}
	rules, err := LoadRules()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	report, err := finkitty.Evaluate(m, view, rules)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	doc := "# Settings\n\n| Name | Value | Hint |\n|:---|---:|:---|\n"
	for _, s := range report.Settings {
		doc += fmt.Sprintf("| %s | %s | %s |\n", s.Name, s.Value, s.Hint)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
