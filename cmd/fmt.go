package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type fmtCmd struct {
	outputFile string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "rewrites the model file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `fk fmt [-o <file>]

  Reads the model, normalizing legacy Y/N flags and section order, and
  writes it back indented with the sections in canonical order. By default
  the model file is rewritten in place.
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.outputFile, "o", "", "Write to this file instead of rewriting in place.")
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, err := LoadModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	out, err := m.EncodeModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	target := p.outputFile
	if target == "" {
		target = *modelFile
	}
	if err := os.WriteFile(target, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing model file %q: %v\n", target, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted model written to %s\n", target)
	return subcommands.ExitSuccess
}
