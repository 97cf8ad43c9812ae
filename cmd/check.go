package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	finkitty "github.com/jeanflower/FinKitty-sub001"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate the model" }
func (*checkCmd) Usage() string {
	return `fk check

  Runs the full battery of referential and format checks over the model and
  prints one message per problem found, or a single success message.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, err := LoadModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	issues := finkitty.CheckModel(m)
	if len(issues) == 0 {
		fmt.Println(finkitty.CheckOKMessage)
		return subcommands.ExitSuccess
	}
	for _, issue := range issues {
		fmt.Println(issue.Message())
	}
	return subcommands.ExitFailure
}
