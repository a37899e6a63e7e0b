package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type ratesCmd struct {
	rates rateFlags
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "fetch and print the current exchange rates" }
func (*ratesCmd) Usage() string {
	return `ptrack rates [-ref USD] [-api-key <key>] [<code>...]

Fetches the current exchange rates and prints them, one currency per line,
as units of that currency for one unit of the reference currency.

If codes are given, only their rates are printed.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	c.rates.SetFlags(f)
}

func (c *ratesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.rates.init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	gw := c.rates.gateway()
	if gw == nil {
		return subcommands.ExitUsageError
	}

	ctx, cancel := context.WithTimeout(ctx, c.rates.timeout)
	defer cancel()
	rates, err := gw.Fetch(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching exchange rates: %v\n", err)
		return subcommands.ExitFailure
	}

	codes := f.Args()
	if len(codes) == 0 {
		codes = rates.Codes()
	}
	for _, code := range codes {
		code = strings.ToUpper(code)
		rate, ok := rates.Rate(code)
		if !ok {
			fmt.Fprintf(os.Stderr, "Warning: no rate for %q\n", code)
			continue
		}
		fmt.Printf("%s %s\n", code, rate)
	}
	return subcommands.ExitSuccess
}
