// Package cmd implements the CLI application to track payments.
package cmd

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/etnz/paytracker"
	"github.com/etnz/paytracker/apilayer"
	"github.com/google/subcommands"
)

const (
	EnvAPIKey   = "PTRACK_API_KEY"
	EnvRatesURL = "PTRACK_RATES_URL"
)

// Commands is the list of ptrack subcommands.
var Commands = []subcommands.Command{
	&trackCmd{},
	&summaryCmd{},
	&ratesCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	for _, cmd := range Commands {
		group := "payments"
		if cmd.Name() == "topic" {
			group = "documentation"
		}
		c.Register(cmd, group)
	}
}

// rateFlags holds the flags shared by every command that converts amounts.
type rateFlags struct {
	apiKey    string
	ratesURL  string
	reference string
	timeout   time.Duration
}

func (r *rateFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.apiKey, "api-key", "", "apilayer access key. This flag takes precedence over the "+EnvAPIKey+" environment variable.")
	f.StringVar(&r.ratesURL, "rates-url", "", "live quotes endpoint. This flag takes precedence over the "+EnvRatesURL+" environment variable, defaults to "+apilayer.DefaultURL)
	f.StringVar(&r.reference, "ref", paytracker.DefaultReference, "reference currency of the exchange rates")
	f.DurationVar(&r.timeout, "fetch-timeout", paytracker.DefaultFetchTimeout, "maximum duration of an exchange rate fetch")
}

// init checks the flags and resolves the environment fallbacks.
func (r *rateFlags) init() error {
	if err := paytracker.ValidateCurrency(r.reference); err != nil {
		return err
	}
	if r.apiKey == "" {
		r.apiKey = os.Getenv(EnvAPIKey)
	}
	if r.ratesURL == "" {
		r.ratesURL = os.Getenv(EnvRatesURL)
	}
	return nil
}

// gateway returns the configured rate gateway, or nil if there is no access
// key to use one.
func (r *rateFlags) gateway() paytracker.RateGateway {
	if r.apiKey == "" {
		log.Printf("warning, no apilayer access key (-api-key or %s), conversions to %s are disabled", EnvAPIKey, r.reference)
		return nil
	}
	return &apilayer.Gateway{
		URL:       r.ratesURL,
		APIKey:    r.apiKey,
		Reference: r.reference,
	}
}
