package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/jeanflower/FinKitty-sub001/cmd"
)

// completion describes the CLI for shell completion. It runs and exits
// early when invoked by the shell, before flag parsing.
func completion() {
	globalFlags := map[string]complete.Predictor{
		"model":     predict.Files("*.json"),
		"tax-rules": predict.Files("*.yaml"),
	}
	c := &complete.Command{
		Flags: globalFlags,
		Sub: map[string]*complete.Command{
			"check":    {Flags: globalFlags},
			"fmt":      {Flags: globalFlags},
			"query":    {Flags: globalFlags},
			"run":      {Flags: globalFlags},
			"report":   {Flags: globalFlags},
			"settings": {Flags: globalFlags},
			"tax":      {Flags: globalFlags},
			"serve":    {Flags: globalFlags},
			"assist":   {Flags: globalFlags},
			"topic":    {},
		},
	}
	c.Complete("fk")
}

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
