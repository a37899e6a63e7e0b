package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/etnz/paytracker"
	"github.com/etnz/paytracker/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	rates rateFlags
	raw   bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the net traffic of a payment file" }
func (*summaryCmd) Usage() string {
	return `ptrack summary [-raw] [-ref USD] [<file>]

Reads all payments of <file>, or of the standard input if no file is given,
and displays the net amount per currency as a table.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.rates.SetFlags(f)
	f.BoolVar(&c.raw, "raw", false, "print raw markdown instead of rendering it for the terminal")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "At most one input file is expected.")
		return subcommands.ExitUsageError
	}
	if err := c.rates.init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var (
		source string
		lines  []string
		err    error
	)
	if f.NArg() == 1 {
		source = f.Arg(0)
		lines, err = paytracker.LoadFile(source)
	} else {
		lines, err = paytracker.ReadLines(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file with payments: %v\n", err)
		return subcommands.ExitFailure
	}

	var rates paytracker.RateTable
	if gw := c.rates.gateway(); gw != nil {
		ctx, cancel := context.WithTimeout(ctx, c.rates.timeout)
		rates, err = gw.Fetch(ctx)
		cancel()
		if err != nil {
			log.Printf("Error updating exchange rates: %v", err)
		}
	}

	md := renderer.RenderSummary(renderer.NewSummary(source, lines, c.rates.reference, rates))
	if c.raw {
		fmt.Print(md)
	} else {
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}
