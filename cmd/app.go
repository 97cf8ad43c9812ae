// Package cmd implements the CLI application to edit, check and simulate
// financial models.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	finkitty "github.com/jeanflower/FinKitty-sub001"
)

// Register the subcommands.
// A main package calls Register() to install them, then Execute() runs the
// user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&checkCmd{}, "model")
	c.Register(&fmtCmd{}, "model")
	c.Register(&queryCmd{}, "model")

	c.Register(&runCmd{}, "simulation")
	c.Register(&reportCmd{}, "simulation")
	c.Register(&settingsCmd{}, "simulation")
	c.Register(&taxCmd{}, "simulation")

	c.Register(&serveCmd{}, "service")
	c.Register(&assistCmd{}, "service")
	c.Register(&topicCmd{}, "")
}

// as a CLI application it is short lived, so global flags are fine.

var modelFile = flag.String("model", "model.json", "Path to the model file (JSON)")
var rulesFile = flag.String("tax-rules", "", "Path to a tax rules file (YAML); built-in UK rules when empty")

// LoadModel reads and decodes the app's model file.
func LoadModel() (*finkitty.Model, error) {
	data, err := os.ReadFile(*modelFile)
	if err != nil {
		return nil, fmt.Errorf("could not read model file %q: %w", *modelFile, err)
	}
	return finkitty.DecodeModel(data)
}

// LoadRules loads the tax rules selected by the -tax-rules flag.
func LoadRules() (finkitty.TaxRules, error) {
	if *rulesFile == "" {
		return finkitty.DefaultTaxRules(), nil
	}
	return finkitty.LoadTaxRules(*rulesFile)
}
